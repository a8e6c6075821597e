package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Retries int `env:"HARVEST_TEST_RETRIES" envDefault:"3"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Retries != 3 {
		t.Fatalf("expected default retries 3, got %d", cfg.Retries)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("HARVEST_TEST_RETRIES", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
