package scene

import (
	"fmt"
	"os"
	"path/filepath"
)

// Folders is the on-disk layout of a project.
type Folders struct {
	Root           string
	Assets         string
	Sound          string
	ImportedModels string
	Configuration  string
	Packages       string
	Main           string
}

// NewFolders derives the project layout from its root directory.
func NewFolders(root string) Folders {
	if root == "" {
		root = "."
	}
	assets := filepath.Join(root, "Assets")
	return Folders{
		Root:           root,
		Assets:         assets,
		Sound:          filepath.Join(assets, "Sound"),
		ImportedModels: filepath.Join(assets, "ImportedModels"),
		Configuration:  filepath.Join(root, "Configuration"),
		Packages:       filepath.Join(root, "Packages"),
		Main:           filepath.Join(root, "Main"),
	}
}

func (f Folders) all() []string {
	return []string{f.Root, f.Assets, f.Sound, f.ImportedModels, f.Configuration, f.Packages, f.Main}
}

// EnsureProjectFolders creates any missing project directory.
func (s *Scene) EnsureProjectFolders() error {
	for _, dir := range s.Folders.all() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating project folder %s: %w", dir, err)
		}
	}
	return nil
}

// Path returns the scene file location: the file last loaded, otherwise
// <root>/<name>.yml.
func (s *Scene) Path() string {
	if s.file != "" {
		return s.file
	}
	return filepath.Join(s.Folders.Root, s.Meta.Name+".yml")
}
