// Package config handles editor configuration loading and management.
package config

// Config holds all editor settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Editor  EditorConfig  `yaml:"editor"`
	Project ProjectConfig `yaml:"project"`
	Audio   AudioConfig   `yaml:"audio"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// EditorConfig holds viewport and tooling settings.
type EditorConfig struct {
	ImportWorkers    int     `yaml:"import_workers"` // Concurrent model imports
	ShowFPS          bool    `yaml:"show_fps"`
	ShowCollisions   bool    `yaml:"show_collisions"` // Draw AABB outlines
	WarningSeconds   float64 `yaml:"warning_seconds"` // Overlay warning lifetime
	CameraSpeed      float32 `yaml:"camera_speed"`    // Units per second
	MouseSensitivity float32 `yaml:"mouse_sensitivity"`
	ScreenshotDir    string  `yaml:"screenshot_dir"`
}

// ProjectConfig selects the project folder and scene opened at startup.
type ProjectConfig struct {
	Folder    string `yaml:"folder"`
	SceneName string `yaml:"scene_name"`
	Author    string `yaml:"author"`
	Renderer  string `yaml:"renderer"`   // OpenGL3_3 or OpenGL4
	SceneType string `yaml:"scene_type"` // Scene2D or Scene3D
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	MasterVolume float32 `yaml:"master_volume"`
	Muted        bool    `yaml:"muted"`
	FalloffRange float32 `yaml:"falloff_range"` // Distance at which sources go silent
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Stagecraft",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Editor: EditorConfig{
			ImportWorkers:    4,
			ShowFPS:          true,
			ShowCollisions:   false,
			WarningSeconds:   6,
			CameraSpeed:      5,
			MouseSensitivity: 0.1,
			ScreenshotDir:    "screenshots",
		},
		Project: ProjectConfig{
			Folder:    "project",
			SceneName: "main",
			Author:    "",
			Renderer:  "OpenGL4",
			SceneType: "Scene3D",
		},
		Audio: AudioConfig{
			MasterVolume: 0.8,
			Muted:        false,
			FalloffRange: 50,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
