package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port          string
	Environment   string
	ReadTimeout   int
	WriteTimeout  int
	DBPath        string
	CommitURL     string
	CommitRetries int
	CommitTimeout int
	AllowOrigins  []string
	Editor        EditorConfig
}

// EditorConfig - параметры редактора раскладки, секция editor: в YAML.
type EditorConfig struct {
	ZoomMin        float64 `yaml:"zoom_min"`
	ZoomMax        float64 `yaml:"zoom_max"`
	RotationStep   float64 `yaml:"rotation_step"`
	ArrangeColumns int     `yaml:"arrange_columns"`
	ArrangeSpacing float64 `yaml:"arrange_spacing"`
	ArrangeMargin  float64 `yaml:"arrange_margin"`
	GridWidth      float64 `yaml:"grid_width"`
	GridHeight     float64 `yaml:"grid_height"`
	SnapToGrid     bool    `yaml:"snap_to_grid"`
}

type fileConfig struct {
	Editor EditorConfig `yaml:"editor"`
}

func defaultEditorConfig() EditorConfig {
	return EditorConfig{
		ZoomMin:        0.5,
		ZoomMax:        2.0,
		RotationStep:   45,
		ArrangeColumns: 5,
		ArrangeSpacing: 100,
		ArrangeMargin:  50,
		GridWidth:      20,
		GridHeight:     20,
		SnapToGrid:     true,
	}
}

// Load загружает конфигурацию из переменных окружения и, если задан
// LAYOUT_CONFIG, из YAML файла.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "3000"),
		Environment:   getEnv("ENV", "development"),
		ReadTimeout:   getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout:  getEnvAsInt("WRITE_TIMEOUT", 10),
		DBPath:        getEnv("LAYOUT_DB_PATH", "data/db/layout.db"),
		CommitURL:     getEnv("COMMIT_URL", ""),
		CommitRetries: getEnvAsInt("COMMIT_RETRIES", 0),
		CommitTimeout: getEnvAsInt("COMMIT_TIMEOUT", 10),
		AllowOrigins:  splitList(getEnv("ALLOW_ORIGINS", "*")),
		Editor:        defaultEditorConfig(),
	}
	if path := os.Getenv("LAYOUT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	fc := fileConfig{Editor: c.Editor}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if fc.Editor.ZoomMin <= 0 || fc.Editor.ZoomMax < fc.Editor.ZoomMin {
		return fmt.Errorf("parse config %s: invalid zoom range [%v, %v]", path, fc.Editor.ZoomMin, fc.Editor.ZoomMax)
	}
	c.Editor = fc.Editor
	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
