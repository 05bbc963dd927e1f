package app

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/stagecraft/internal/engine/entity"
	"github.com/Faultbox/stagecraft/internal/engine/picking"
	"github.com/Faultbox/stagecraft/internal/logger"
)

// Shortcut is an editor action bound to a key.
type Shortcut int

const (
	ShortcutSave             Shortcut = iota // Ctrl+S
	ShortcutImport                           // Ctrl+O, static model
	ShortcutImportAnimated                   // Ctrl+Shift+O
	ShortcutDelete                           // Delete, selected entity
	ShortcutNextEntity                       // Tab
	ShortcutFocus                            // F, frame the selected entity
	ShortcutToggleCollisions                 // F3
	ShortcutScreenshot                       // F12
)

func (a *App) handleShortcuts(shortcuts []Shortcut) {
	for _, sc := range shortcuts {
		switch sc {
		case ShortcutSave:
			if err := a.scene.Save(); err != nil {
				logger.Warn("save failed", zap.Error(err))
			}
		case ShortcutImport:
			a.importModel(entity.KindObject)
		case ShortcutImportAnimated:
			a.importModel(entity.KindAnimated)
		case ShortcutDelete:
			if id := a.ui.Selected(); id != 0 {
				a.scene.ScheduleDeletion(id)
			}
		case ShortcutNextEntity:
			a.ui.SelectNext()
		case ShortcutFocus:
			if e := a.scene.Find(a.ui.Selected()); e != nil && e.IsLoaded() {
				a.camera.FitToBounds(e.WorldBounds())
			}
		case ShortcutToggleCollisions:
			a.ShowCollisions = !a.ShowCollisions
		case ShortcutScreenshot:
			a.screenshot()
		}
	}
}

func (a *App) importModel(kind entity.Kind) {
	if a.pickModel == nil {
		return
	}
	path, err := a.pickModel()
	if err != nil {
		logger.Warn("file dialog failed", zap.Error(err))
		return
	}
	if path == "" {
		return
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	e := a.scene.ImportModel(kind, name, path, false)
	a.scene.SetPhysics(e, true)
}

func (a *App) screenshot() {
	if a.screenshots == nil {
		return
	}
	pixels, w, h := a.renderer.ReadPixels()
	if len(pixels) == 0 {
		return
	}
	name, err := a.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("file", name))
}

// selectAt picks the nearest entity under the cursor. Clicking empty space
// clears the selection.
func (a *App) selectAt(x, y float32) {
	w, h := a.renderer.Size()
	if w <= 0 || h <= 0 {
		return
	}
	u := a.FrameUniforms()
	ray := picking.ScreenToRay(x, y, float32(w), float32(h), u.Projection.Mul4(u.View).Inv())
	var id entity.ID
	if e := picking.Pick(ray, a.scene.All()); e != nil {
		id = e.ID()
	}
	a.ui.Select(id)
}
