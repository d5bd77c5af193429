package config

import (
	"os"
	"testing"
)

func TestExpandPlaceholders_UsesEnvValue(t *testing.T) {
	t.Setenv("TREKSAFER_TEST_VAR", "value-from-env")
	out := expandPlaceholders([]byte("key: ${TREKSAFER_TEST_VAR}"))
	if string(out) != "key: value-from-env" {
		t.Fatalf("unexpected expansion: %s", out)
	}
}

func TestExpandPlaceholders_FallsBackToDefault(t *testing.T) {
	os.Unsetenv("TREKSAFER_MISSING_VAR")
	out := expandPlaceholders([]byte("key: ${TREKSAFER_MISSING_VAR:-fallback}"))
	if string(out) != "key: fallback" {
		t.Fatalf("unexpected expansion: %s", out)
	}
}

func TestExpandPlaceholders_MissingNoDefaultIsEmpty(t *testing.T) {
	os.Unsetenv("TREKSAFER_MISSING_VAR")
	out := expandPlaceholders([]byte("key: ${TREKSAFER_MISSING_VAR}"))
	if string(out) != "key: " {
		t.Fatalf("unexpected expansion: %s", out)
	}
}

func TestValidate_RejectsIncompleteEnabledSocketTransport(t *testing.T) {
	s := &Settings{Transports: []TransportConfig{{Type: "socket", Enabled: true}}}
	if err := s.Validate(); err == nil {
		t.Fatal("expected validation error for incomplete socket transport")
	}
}

func TestValidate_RejectsIncompleteEnabledSMSTransport(t *testing.T) {
	s := &Settings{Transports: []TransportConfig{{Type: "sms", Enabled: true, ProjectID: "p"}}}
	if err := s.Validate(); err == nil {
		t.Fatal("expected validation error for incomplete sms transport")
	}
}

func TestValidate_AllowsDisabledIncompleteTransport(t *testing.T) {
	s := &Settings{Transports: []TransportConfig{{Type: "socket", Enabled: false}}}
	if err := s.Validate(); err != nil {
		t.Fatalf("disabled transport should not be validated: %v", err)
	}
}

func TestValidate_RejectsUnknownProviderKind(t *testing.T) {
	s := &Settings{Avalanche: AvalancheConfig{Providers: []AvalancheProviderConfig{{Region: "x", Kind: "bogus"}}}}
	if err := s.Validate(); err == nil {
		t.Fatal("expected validation error for unrecognized provider kind")
	}
}

func TestProviderBufferKM_FallsBackToGlobal(t *testing.T) {
	s := &Settings{AvalancheDistanceBufferKM: 25}
	if got := s.ProviderBufferKM(AvalancheProviderConfig{}); got != 25 {
		t.Fatalf("expected global default 25, got %v", got)
	}
	if got := s.ProviderBufferKM(AvalancheProviderConfig{BufferKM: 10}); got != 10 {
		t.Fatalf("expected override 10, got %v", got)
	}
}
