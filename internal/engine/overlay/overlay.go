// Package overlay draws the editor's 2D layer on top of the viewport: the
// toolbox entity list, import progress, transient warnings and an FPS
// counter. Layout builds a vertex batch on the CPU; only Flush talks to GL.
package overlay

import (
	"fmt"
	"sync"
	"time"

	"github.com/Faultbox/stagecraft/internal/engine/entity"
	"github.com/Faultbox/stagecraft/internal/engine/scene"
)

const (
	maxWarnings = 8
	textScale   = 1.5
	rowPadding  = 4
	panelWidth  = 260
	margin      = 8
)

type warning struct {
	text    string
	expires time.Time
}

// Overlay is the editor UI. Warn may be called from any goroutine; the
// rest runs on the render thread.
type Overlay struct {
	mu         sync.Mutex
	warnings   []warning
	warningTTL time.Duration
	now        func() time.Time

	ShowFPS bool
	frames  int
	fpsFrom time.Time
	fps     float64

	selected entity.ID
	entries  []scene.ToolboxEntry

	atlas         *Atlas
	batch         []float32
	width, height int

	gpu *gpuState
}

func newOverlay(width, height int, warningTTL time.Duration, now func() time.Time) *Overlay {
	return &Overlay{
		warningTTL: warningTTL,
		now:        now,
		ShowFPS:    true,
		fpsFrom:    now(),
		atlas:      NewAtlas(),
		batch:      make([]float32, 0, 4096),
		width:      width,
		height:     height,
	}
}

// Warn queues a message for WarningSeconds. Installed as the logger's
// warning sink.
func (o *Overlay) Warn(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.warnings = append(o.warnings, warning{text: msg, expires: o.now().Add(o.warningTTL)})
	if len(o.warnings) > maxWarnings {
		o.warnings = o.warnings[len(o.warnings)-maxWarnings:]
	}
}

// Warnings returns the messages that have not expired, oldest first.
func (o *Overlay) Warnings() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	live := o.warnings[:0]
	for _, w := range o.warnings {
		if now.Before(w.expires) {
			live = append(live, w)
		}
	}
	o.warnings = live

	out := make([]string, len(live))
	for i, w := range live {
		out[i] = w.text
	}
	return out
}

// FPS returns the frame rate measured over the last full second.
func (o *Overlay) FPS() float64 {
	return o.fps
}

// Selected returns the highlighted toolbox entity, or zero.
func (o *Overlay) Selected() entity.ID {
	return o.selected
}

// Select highlights id.
func (o *Overlay) Select(id entity.ID) {
	o.selected = id
}

// SelectNext moves the highlight down the toolbox, wrapping at the end.
func (o *Overlay) SelectNext() {
	if len(o.entries) == 0 {
		o.selected = 0
		return
	}
	for i, e := range o.entries {
		if e.ID == o.selected {
			o.selected = o.entries[(i+1)%len(o.entries)].ID
			return
		}
	}
	o.selected = o.entries[0].ID
}

// Resize updates the screen dimensions.
func (o *Overlay) Resize(width, height int) {
	o.width, o.height = width, height
}

// Begin starts a UI frame and advances the FPS counter.
func (o *Overlay) Begin() {
	o.batch = o.batch[:0]

	o.frames++
	now := o.now()
	if elapsed := now.Sub(o.fpsFrom); elapsed >= time.Second {
		o.fps = float64(o.frames) / elapsed.Seconds()
		o.frames = 0
		o.fpsFrom = now
	}
}

// Render lays out the panels for s.
func (o *Overlay) Render(s *scene.Scene) {
	o.entries = append(o.entries[:0], s.Toolbox...)
	if o.selected != 0 && s.Find(o.selected) == nil {
		o.selected = 0
	}

	o.toolbox(s)
	o.warningList()
	if o.ShowFPS {
		label := fmt.Sprintf("%.0f FPS", o.fps)
		w, _ := o.atlas.MeasureText(label, textScale)
		o.text(float32(o.width)-w-margin, margin, label, ColorText)
	}
}

// End uploads and draws the batch.
func (o *Overlay) End() {
	if o.gpu != nil {
		o.gpu.flush(o.batch, o.width, o.height)
	}
}

func (o *Overlay) rowHeight() float32 {
	return float32(o.atlas.GlyphH)*textScale + rowPadding
}

func (o *Overlay) toolbox(s *scene.Scene) {
	rh := o.rowHeight()
	rows := len(o.entries) + 1
	jobs := len(s.InFlight())
	if jobs > 0 {
		rows++
	}

	x, y := float32(margin), float32(margin)
	h := float32(rows)*rh + rowPadding
	o.rect(x, y, panelWidth, h, ColorPanelBg)
	o.outline(x, y, panelWidth, h, ColorBorder)

	y += rowPadding
	o.text(x+rowPadding, y, "Toolbox: "+s.Meta.Name, ColorHighlight)
	y += rh

	for _, entry := range o.entries {
		if entry.ID == o.selected {
			o.rect(x+1, y-rowPadding/2, panelWidth-2, rh, ColorHighlight.WithAlpha(0.4))
		}
		label := fmt.Sprintf("%s [%s]", entry.Name, entry.Kind)
		c := ColorText
		if e := s.Find(entry.ID); e != nil && !e.IsLoaded() {
			label += " ..."
			c = ColorTextDim
		}
		o.text(x+rowPadding, y, label, c)
		y += rh
	}

	if jobs > 0 {
		o.text(x+rowPadding, y, fmt.Sprintf("importing %d", jobs), ColorTextDim)
	}
}

func (o *Overlay) warningList() {
	warnings := o.Warnings()
	rh := o.rowHeight()
	y := float32(o.height) - margin - float32(len(warnings))*rh
	for _, w := range warnings {
		o.text(margin, y, w, ColorWarning)
		y += rh
	}
}

// Vertex format: x, y, u, v, r, g, b, a (8 floats).
const floatsPerVertex = 8

func (o *Overlay) quad(x, y, w, h, u0, v0, u1, v1 float32, c Color) {
	o.batch = append(o.batch,
		x, y, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y, u1, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, u1, v1, c.R, c.G, c.B, c.A,
		x, y, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, u1, v1, c.R, c.G, c.B, c.A,
		x, y+h, u0, v1, c.R, c.G, c.B, c.A,
	)
}

func (o *Overlay) rect(x, y, w, h float32, c Color) {
	u, v := o.atlas.SolidUV()
	o.quad(x, y, w, h, u, v, u, v, c)
}

func (o *Overlay) outline(x, y, w, h float32, c Color) {
	o.rect(x, y, w, 1, c)
	o.rect(x, y+h-1, w, 1, c)
	o.rect(x, y+1, 1, h-2, c)
	o.rect(x+w-1, y+1, 1, h-2, c)
}

func (o *Overlay) text(x, y float32, s string, c Color) {
	cw := float32(o.atlas.GlyphW) * textScale
	ch := float32(o.atlas.GlyphH) * textScale
	curX := x
	for _, r := range s {
		if r == '\n' {
			curX = x
			y += ch
			continue
		}
		if r != ' ' {
			u0, v0, u1, v1 := o.atlas.GlyphUV(r)
			o.quad(curX, y, cw, ch, u0, v0, u1, v1, c)
		}
		curX += cw
	}
}
