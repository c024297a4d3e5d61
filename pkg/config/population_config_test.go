package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPopulationConfig(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantErr   bool
		wantTotal int
	}{
		{
			name:      "two herds",
			yaml:      "herds:\n  - {archetype: jumper, species: lynx, count: 2, x: 1, z: 2, radius: 3}\n  - {archetype: companion, species: dog, count: 1}\n",
			wantTotal: 3,
		},
		{name: "unknown archetype", yaml: "herds:\n  - {archetype: dragon, count: 1}\n", wantErr: true},
		{name: "negative count", yaml: "herds:\n  - {archetype: jumper, count: -1}\n", wantErr: true},
		{name: "negative radius", yaml: "herds:\n  - {archetype: jumper, count: 1, radius: -2}\n", wantErr: true},
		{name: "malformed", yaml: "herds: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "population.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadPopulationConfig(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadPopulationConfig() error: %v", err)
			}
			if cfg.Total() != tt.wantTotal {
				t.Errorf("Total() = %d, want %d", cfg.Total(), tt.wantTotal)
			}
		})
	}
}

func TestDefaultPopulationCoversEveryArchetype(t *testing.T) {
	cfg := DefaultPopulationConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default population invalid: %v", err)
	}
	seen := make(map[string]bool)
	for _, h := range cfg.Herds {
		seen[h.Archetype] = true
	}
	for _, a := range []string{
		"passive_very_easy", "passive_simple", "passive_full",
		"aggressive_1", "aggressive_2", "aggressive_3", "aggressive_4",
		"companion", "pack_hunter", "jumper",
	} {
		if !seen[a] {
			t.Errorf("default population has no %s herd", a)
		}
	}
}
