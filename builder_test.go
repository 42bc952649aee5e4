package credkit

import (
	"errors"
	"testing"
	"time"
)

func TestBuildRequiresSecret(t *testing.T) {
	_, err := New().Build()
	if !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}
}

func TestBuildDefaultsTokenTTL(t *testing.T) {
	m, err := New().WithSecret([]byte("test-secret")).Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(m.Close)

	if m.config.Token.TTL != DefaultTokenTTL {
		t.Fatalf("expected default TTL %v, got %v", DefaultTokenTTL, m.config.Token.TTL)
	}
}

func TestBuildRejectsReuse(t *testing.T) {
	builder := New().WithSecret([]byte("test-secret"))
	m, err := builder.Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(m.Close)

	if _, err := builder.Build(); !errors.Is(err, ErrBuilderReused) {
		t.Fatalf("expected ErrBuilderReused, got %v", err)
	}
}

func TestBuildValidatesConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Token.Leeway = 5 * time.Minute

	if _, err := New().WithConfig(cfg).WithSecret([]byte("test-secret")).Build(); err == nil {
		t.Fatal("expected oversized leeway to be rejected")
	}

	cfg = defaultConfig()
	cfg.Password.Cost = 99
	if _, err := New().WithConfig(cfg).WithSecret([]byte("test-secret")).Build(); err == nil {
		t.Fatal("expected out-of-range bcrypt cost to be rejected")
	}
}

func TestWithSecretCopiesInput(t *testing.T) {
	secret := []byte("mutable-secret")
	builder := New().WithSecret(secret)
	secret[0] = 'X'

	m, err := builder.Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(m.Close)

	token, err := m.GenerateToken("u1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	// A manager built from the original secret value must accept the token.
	other, err := New().WithSecret([]byte("mutable-secret")).Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(other.Close)

	if _, ok := other.VerifyToken(token); !ok {
		t.Fatal("expected secret to be copied at WithSecret time")
	}
}

func TestWithConfigKeepsAuditSinkEnabled(t *testing.T) {
	sink := NewChannelSink(1)
	m, err := New().
		WithSecret([]byte("test-secret")).
		WithAuditSink(sink).
		WithConfig(defaultConfig()).
		Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(m.Close)

	if m.audit == nil {
		t.Fatal("expected WithConfig after WithAuditSink to keep audit enabled")
	}
}

func TestWithAuditSinkEnablesAudit(t *testing.T) {
	sink := NewChannelSink(1)
	m, err := New().WithSecret([]byte("test-secret")).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(m.Close)

	if m.audit == nil {
		t.Fatal("expected audit dispatcher to be constructed when a sink is supplied")
	}
}
