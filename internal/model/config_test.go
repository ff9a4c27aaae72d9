package model

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDurationUnmarshalsHumanForm(t *testing.T) {
	var cfg HTTPConfig
	if err := yaml.Unmarshal([]byte("timeout: 30s\n"), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Timeout.Std() != 30*time.Second {
		t.Errorf("expected 30s, got %v", cfg.Timeout.Std())
	}
}

func TestDurationMarshalsHumanForm(t *testing.T) {
	cfg := EndpointConfig{Name: "np", Timeout: Duration(45 * time.Second)}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "timeout: 45s") {
		t.Errorf("expected human-readable timeout, got:\n%s", out)
	}
	if strings.Contains(string(out), "45000000000") {
		t.Errorf("timeout must not marshal as nanoseconds:\n%s", out)
	}
}

func TestDurationRejectsGarbage(t *testing.T) {
	var cfg HTTPConfig
	if err := yaml.Unmarshal([]byte("timeout: soonish\n"), &cfg); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}
