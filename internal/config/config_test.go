package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Editor.ImportWorkers != 4 {
		t.Errorf("expected 4 import workers, got %d", cfg.Editor.ImportWorkers)
	}
	if cfg.Editor.ShowCollisions {
		t.Error("expected collision outlines to be off by default")
	}

	if cfg.Project.Renderer != "OpenGL4" {
		t.Errorf("expected renderer OpenGL4, got %s", cfg.Project.Renderer)
	}
	if cfg.Project.SceneType != "Scene3D" {
		t.Errorf("expected scene type Scene3D, got %s", cfg.Project.SceneType)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

editor:
  import_workers: 2
  show_collisions: true
  camera_speed: 12.5

project:
  folder: "/tmp/demo"
  scene_name: "arena"
  author: "mira"
  renderer: "OpenGL3_3"
  scene_type: "Scene2D"

audio:
  master_volume: 0.5
  muted: true

logging:
  level: "debug"
  log_file: "editor.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Window.VSync {
		t.Error("expected vsync to be false")
	}
	// Untouched keys keep their defaults.
	if cfg.Window.Title != "Stagecraft" {
		t.Errorf("expected default title, got %q", cfg.Window.Title)
	}

	if cfg.Editor.ImportWorkers != 2 {
		t.Errorf("expected 2 import workers, got %d", cfg.Editor.ImportWorkers)
	}
	if cfg.Editor.CameraSpeed != 12.5 {
		t.Errorf("expected camera speed 12.5, got %f", cfg.Editor.CameraSpeed)
	}

	if cfg.Project.Folder != "/tmp/demo" || cfg.Project.SceneName != "arena" {
		t.Errorf("unexpected project %+v", cfg.Project)
	}
	if cfg.Project.Renderer != "OpenGL3_3" || cfg.Project.SceneType != "Scene2D" {
		t.Errorf("unexpected renderer/type %s/%s", cfg.Project.Renderer, cfg.Project.SceneType)
	}

	if !cfg.Audio.Muted {
		t.Error("expected muted to be true")
	}
	if cfg.Logging.LogFile != "editor.log" {
		t.Errorf("expected log file 'editor.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantErr: false},
		{name: "zero width", mutate: func(c *Config) { c.Window.Width = 0 }, wantErr: true},
		{name: "no workers", mutate: func(c *Config) { c.Editor.ImportWorkers = 0 }, wantErr: true},
		{name: "unknown renderer", mutate: func(c *Config) { c.Project.Renderer = "Vulkan" }, wantErr: true},
		{name: "unknown scene type", mutate: func(c *Config) { c.Project.SceneType = "Scene4D" }, wantErr: true},
		{name: "empty scene name", mutate: func(c *Config) { c.Project.SceneName = "" }, wantErr: true},
		{name: "legacy renderer", mutate: func(c *Config) { c.Project.Renderer = "OpenGL3_3" }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Editor.ShowCollisions {
					t.Error("expected collision outlines with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "project and scene flags",
			setup: func() {
				*flagProject = "/work/game"
				*flagScene = "level1"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Project.Folder != "/work/game" {
					t.Errorf("expected project /work/game, got %s", cfg.Project.Folder)
				}
				if cfg.Project.SceneName != "level1" {
					t.Errorf("expected scene level1, got %s", cfg.Project.SceneName)
				}
			},
			teardown: func() {
				*flagProject = ""
				*flagScene = ""
			},
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag, height from file.
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Project.SceneName = "saved"
	cfg.Editor.ImportWorkers = 7
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Project.SceneName != "saved" || loaded.Editor.ImportWorkers != 7 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
