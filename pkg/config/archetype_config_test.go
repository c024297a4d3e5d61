package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decker502/wildlife/pkg/types"
)

func TestParseArchetypeConfigPartialOverrides(t *testing.T) {
	data := []byte(`
defaults:
  walkSpeed: 2.0
  detectionRange: 9
archetypes:
  aggressive_3:
    chargeSpeed: 14
    maxChargeAttempts: 2
  jumper:
    footSearchRadii: [2, 4]
`)
	cfg, err := ParseArchetypeConfig(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	builtin := DefaultAgentTuning()

	charger := cfg.For(types.ArchetypeAggressive3)
	if charger.ChargeSpeed != 14 || charger.MaxChargeAttempts != 2 {
		t.Errorf("override not applied: speed=%f attempts=%d", charger.ChargeSpeed, charger.MaxChargeAttempts)
	}
	if charger.WalkSpeed != 2.0 || charger.DetectionRange != 9 {
		t.Errorf("defaults not inherited: walk=%f detection=%f", charger.WalkSpeed, charger.DetectionRange)
	}
	if charger.RunSpeed != builtin.RunSpeed {
		t.Errorf("builtin default lost: runSpeed=%f want %f", charger.RunSpeed, builtin.RunSpeed)
	}

	passive := cfg.For(types.ArchetypePassiveSimple)
	if passive.ChargeSpeed != builtin.ChargeSpeed {
		t.Errorf("override leaked to other archetype: %f", passive.ChargeSpeed)
	}

	jumper := cfg.For(types.ArchetypeJumper)
	if len(jumper.FootSearchRadii) != 2 || jumper.FootSearchRadii[1] != 4 {
		t.Errorf("slice override not applied: %v", jumper.FootSearchRadii)
	}
}

func TestParseArchetypeConfigErrors(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		errContains string
	}{
		{"unknown archetype", "archetypes:\n  dragon:\n    walkSpeed: 1\n", "unknown archetype"},
		{"invalid defaults", "defaults:\n  walkSpeed: -1\n", "walkSpeed"},
		{"invalid override", "archetypes:\n  pack_hunter:\n    maxPackSize: 0\n", "maxPackSize"},
		{"malformed", "defaults: [1, 2\n", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArchetypeConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q does not contain %q", err, tt.errContains)
			}
		})
	}
}

func TestForReturnsIndependentCopies(t *testing.T) {
	cfg := DefaultArchetypeConfig()
	a := cfg.For(types.ArchetypeJumper)
	a.FootSearchRadii[0] = 99
	b := cfg.For(types.ArchetypeJumper)
	if b.FootSearchRadii[0] == 99 {
		t.Error("For must return a deep copy")
	}
}

func TestLoadArchetypeConfigFromRepoData(t *testing.T) {
	path := filepath.Join("..", "..", "data", "archetypes.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("data file not available: %v", err)
	}
	cfg, err := LoadArchetypeConfig(path)
	if err != nil {
		t.Fatalf("failed to load shipped config: %v", err)
	}
	for _, a := range types.AllArchetypes() {
		tuning := cfg.For(a)
		if err := tuning.Validate(); err != nil {
			t.Errorf("%s: %v", a, err)
		}
	}
}

func TestLoadArchetypeConfigMissingFile(t *testing.T) {
	_, err := LoadArchetypeConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("expected read error, got %v", err)
	}
}
