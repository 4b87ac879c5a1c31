package main

import (
	"path/filepath"
	"testing"

	"github.com/iwvelando/property-forecast/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name      string
		logging   config.LoggingConfig
		override  string
		expectErr bool
	}{
		{"Defaults", config.LoggingConfig{}, "", false},
		{"Console debug", config.LoggingConfig{Level: "debug", Format: "console"}, "", false},
		{"Override wins", config.LoggingConfig{Level: "verbose"}, "warn", false},
		{"Invalid level", config.LoggingConfig{Level: "verbose"}, "", true},
		{"Invalid format", config.LoggingConfig{Format: "xml"}, "", true},
		{"Log file", config.LoggingConfig{OutputFile: filepath.Join(t.TempDir(), "logs", "forecast.log")}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.logging, tt.override)
			if tt.expectErr {
				if err == nil {
					t.Errorf("initializeLogger() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("initializeLogger() unexpected error: %v", err)
			}
			if logger == nil {
				t.Errorf("initializeLogger() returned nil logger")
			}
		})
	}
}

func TestResolveOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		override   string
		expected   string
		expectErr  bool
	}{
		{"Default", "", "", "pretty", false},
		{"Configured", "csv", "", "csv", false},
		{"Override", "csv", "json", "json", false},
		{"Invalid", "xml", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flagOutputFormat = tt.override
			defer func() { flagOutputFormat = "" }()

			got, err := resolveOutputFormat(tt.configured)
			if tt.expectErr {
				if err == nil {
					t.Errorf("resolveOutputFormat(%q) expected error, got nil", tt.configured)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveOutputFormat(%q) unexpected error: %v", tt.configured, err)
			}
			if got != tt.expected {
				t.Errorf("resolveOutputFormat(%q) = %s, expected %s", tt.configured, got, tt.expected)
			}
		})
	}
}
