package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/maskroute/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := model.DefaultAppConfig()
			cfg.Escape.CopiesX = 12
			cfg.Escape.Sides = 2
			cfg.Escape.Selector = "y"
			cfg.Search.Smoothing = false
			cfg.DRC.Rules = []model.LayerRule{{Layer: "Metal", MinFeatureSize: 3, MinSpacing: 4}}
			cfg.RecentLayouts = []string{"/tmp/a.dxf", "/tmp/b.dxf"}

			if err := SaveAppConfig(path, cfg); err != nil {
				t.Fatalf("SaveAppConfig failed: %v", err)
			}

			loaded, err := LoadAppConfig(path)
			if err != nil {
				t.Fatalf("LoadAppConfig failed: %v", err)
			}

			if loaded.Escape.CopiesX != 12 || loaded.Escape.Selector != "y" {
				t.Errorf("escape settings not restored: %+v", loaded.Escape)
			}
			if loaded.Search.Smoothing {
				t.Error("expected smoothing=false")
			}
			if len(loaded.DRC.Rules) != 1 || loaded.DRC.Rules[0].MinSpacing != 4 {
				t.Errorf("unexpected rules %+v", loaded.DRC.Rules)
			}
			if len(loaded.RecentLayouts) != 2 {
				t.Errorf("expected 2 recent layouts, got %d", len(loaded.RecentLayouts))
			}
			if err := loaded.Validate(); err != nil {
				t.Errorf("loaded config should validate: %v", err)
			}
		})
	}
}

func TestSaveAppConfigFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	jsonPath := filepath.Join(dir, "config.json")
	cfg := model.DefaultAppConfig()

	if err := SaveAppConfig(yamlPath, cfg); err != nil {
		t.Fatal(err)
	}
	if err := SaveAppConfig(jsonPath, cfg); err != nil {
		t.Fatal(err)
	}

	y, _ := os.ReadFile(yamlPath)
	j, _ := os.ReadFile(jsonPath)
	if !strings.Contains(string(y), "copies_x: 8") {
		t.Errorf("expected YAML output, got:\n%s", y)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(j)), "{") {
		t.Errorf("expected JSON output, got:\n%s", j)
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.yaml")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := model.DefaultAppConfig()
	if cfg.Escape.PitchX != defaults.Escape.PitchX {
		t.Errorf("expected default pitch %f, got %f", defaults.Escape.PitchX, cfg.Escape.PitchX)
	}
	if len(cfg.Layers) != len(defaults.Layers) {
		t.Errorf("expected %d default layers, got %d", len(defaults.Layers), len(cfg.Layers))
	}
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("escape:\n  copies_x: 3\n  copies_y: 2\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.Escape.CopiesX != 3 || cfg.Escape.CopiesY != 2 {
		t.Errorf("expected 3x2 array, got %dx%d", cfg.Escape.CopiesX, cfg.Escape.CopiesY)
	}
	if cfg.Escape.TraceWidth != model.DefaultEscapeSettings().TraceWidth {
		t.Errorf("unset trace width should keep its default, got %f", cfg.Escape.TraceWidth)
	}
	if cfg.Search.GridSpacing != model.DefaultSearchSettings().GridSpacing {
		t.Errorf("unset search section should keep defaults")
	}
}

func TestLoadAppConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"config.json": "not valid json{{{",
		"config.yaml": "escape: [unterminated",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadAppConfig(path); err == nil {
			t.Errorf("%s: expected parse error, got nil", name)
		}
	}
}

func TestSaveAppConfigCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "config.yaml")

	if err := SaveAppConfig(path, model.DefaultAppConfig()); err != nil {
		t.Fatalf("SaveAppConfig should create parent dirs: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestLoadAppConfigNilRecentLayouts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	data := []byte(`{"recent_layouts":null}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.RecentLayouts == nil {
		t.Error("RecentLayouts should not be nil after loading")
	}
}

func TestAddRecentLayout(t *testing.T) {
	cfg := model.DefaultAppConfig()
	AddRecentLayout(&cfg, "a.dxf")
	AddRecentLayout(&cfg, "b.dxf")
	AddRecentLayout(&cfg, "a.dxf")

	if len(cfg.RecentLayouts) != 2 || cfg.RecentLayouts[0] != "a.dxf" || cfg.RecentLayouts[1] != "b.dxf" {
		t.Errorf("unexpected recent list %v", cfg.RecentLayouts)
	}

	for i := 0; i < 20; i++ {
		AddRecentLayout(&cfg, filepath.Join("l", string(rune('a'+i))))
	}
	if len(cfg.RecentLayouts) != maxRecentLayouts {
		t.Errorf("expected list trimmed to %d, got %d", maxRecentLayouts, len(cfg.RecentLayouts))
	}
}
