package model

import "testing"

func TestDefaultAppConfigIsValid(t *testing.T) {
	cfg := DefaultAppConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.RecentLayouts == nil {
		t.Error("RecentLayouts should not be nil")
	}
	if cfg.Escape != DefaultEscapeSettings() {
		t.Error("escape section should match DefaultEscapeSettings")
	}
}

func TestAppConfigValidateJoinsSectionErrors(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.Escape.TraceWidth = 0
	cfg.Search.GridSpacing = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 2 {
		t.Errorf("expected both section errors to be reported, got %v", err)
	}
}

func TestLayerNumber(t *testing.T) {
	cfg := DefaultAppConfig()
	n, ok := cfg.LayerNumber("Pads")
	if !ok || n != 2 {
		t.Errorf("expected Pads=2, got %d %v", n, ok)
	}
	if _, ok := cfg.LayerNumber("Missing"); ok {
		t.Error("unknown layer should not resolve")
	}
}
