package credkit

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fastConfig keeps bcrypt at its minimum cost so the suite stays quick.
func fastConfig() Config {
	cfg := defaultConfig()
	cfg.Password.Cost = 4
	return cfg
}

func buildTestManager(t *testing.T, secret []byte, clock *fixedClock) *Manager {
	t.Helper()

	builder := New().WithConfig(fastConfig()).WithSecret(secret)
	if clock != nil {
		builder = builder.WithClock(clock)
	}

	m, err := builder.Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(m.Close)

	return m
}

func TestPasswordRoundTrip(t *testing.T) {
	m := buildTestManager(t, []byte("test-secret"), nil)

	hash, err := m.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	if !m.VerifyPassword("correct-horse", hash) {
		t.Fatal("expected original password to verify")
	}
	if m.VerifyPassword("wrong-horse", hash) {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	m := buildTestManager(t, []byte("test-secret"), nil)

	first, err := m.HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := m.HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	if first == second {
		t.Fatal("expected fresh salt to produce distinct hashes")
	}
	if !m.VerifyPassword("same-password", first) || !m.VerifyPassword("same-password", second) {
		t.Fatal("expected both hashes to verify")
	}
}

func TestVerifyPasswordMalformedHashIsFalse(t *testing.T) {
	m := buildTestManager(t, []byte("test-secret"), nil)

	for _, malformed := range []string{"", "garbage", "$argon2id$v=19$m=65536,t=3,p=2$abc$def"} {
		if m.VerifyPassword("any", malformed) {
			t.Fatalf("expected malformed hash %q to verify as false", malformed)
		}
	}
}

func TestHashPasswordEncodingError(t *testing.T) {
	m := buildTestManager(t, []byte("test-secret"), nil)

	_, err := m.HashPassword(strings.Repeat("x", 73))
	if err == nil {
		t.Fatal("expected overlong password to fail")
	}
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected encoding error, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := buildTestManager(t, []byte("test-secret"), nil)

	token, err := m.GenerateToken("42")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	userID, ok := m.VerifyToken(token)
	if !ok {
		t.Fatal("expected freshly issued token to verify")
	}
	if userID != "42" {
		t.Fatalf("expected user id 42, got %q", userID)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := buildTestManager(t, []byte("test-secret"), clock)

	token, err := m.GenerateToken("u1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	clock.Advance(24*time.Hour - time.Second)
	if _, ok := m.VerifyToken(token); !ok {
		t.Fatal("expected token to verify just before the 24h expiry")
	}

	clock.Advance(2 * time.Second)
	if userID, ok := m.VerifyToken(token); ok {
		t.Fatalf("expected expired token to be rejected, got user %q", userID)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	issuer := buildTestManager(t, []byte("secret-one"), nil)
	verifier := buildTestManager(t, []byte("secret-two"), nil)

	token, err := issuer.GenerateToken("u1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, ok := verifier.VerifyToken(token); ok {
		t.Fatal("expected token signed under a different secret to be rejected")
	}
}

func TestVerifyTokenTamperedSignature(t *testing.T) {
	m := buildTestManager(t, []byte("test-secret"), nil)

	token, err := m.GenerateToken("42")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, ok := m.VerifyToken(token); !ok {
		t.Fatal("expected untampered token to verify")
	}

	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	if _, ok := m.VerifyToken(string(tampered)); ok {
		t.Fatal("expected tampered token to be rejected")
	}
}

func TestVerifyTokenGarbageInput(t *testing.T) {
	m := buildTestManager(t, []byte("test-secret"), nil)

	for _, bad := range []string{"", "not-a-token", "a.b.c", "a.b"} {
		if _, ok := m.VerifyToken(bad); ok {
			t.Fatalf("expected garbage token %q to be rejected", bad)
		}
	}
}

func TestGenerateTokenEmptyIdentifier(t *testing.T) {
	m := buildTestManager(t, []byte("test-secret"), nil)

	_, err := m.GenerateToken("")
	if err == nil {
		t.Fatal("expected empty identifier to fail")
	}
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected encoding error, got %v", err)
	}
}

func TestNeedsRehash(t *testing.T) {
	m := buildTestManager(t, []byte("test-secret"), nil)

	hash, err := m.HashPassword("some-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	upgrade, err := m.NeedsRehash(hash)
	if err != nil {
		t.Fatalf("needs rehash: %v", err)
	}
	if upgrade {
		t.Fatal("expected same-cost hash to not need rehash")
	}
}

func TestManagerConcurrentUse(t *testing.T) {
	m := buildTestManager(t, []byte("test-secret"), nil)

	hash, err := m.HashPassword("parallel-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	token, err := m.GenerateToken("u1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	const goroutines = 16

	var wg sync.WaitGroup
	errCh := make(chan error, goroutines)
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if !m.VerifyPassword("parallel-password", hash) {
				errCh <- errors.New("password verification failed")
				return
			}
			if _, ok := m.VerifyToken(token); !ok {
				errCh <- errors.New("token verification failed")
				return
			}
			if _, err := m.GenerateToken("u2"); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Fatalf("concurrent use: %v", err)
	}
}

func TestManagerMetricsCount(t *testing.T) {
	builder := New().WithConfig(fastConfig()).WithSecret([]byte("test-secret")).WithMetricsEnabled(true)
	m, err := builder.Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(m.Close)

	hash, err := m.HashPassword("metrics-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	m.VerifyPassword("metrics-password", hash)
	m.VerifyPassword("wrong", hash)

	token, err := m.GenerateToken("u1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	m.VerifyToken(token)
	m.VerifyToken("forged")

	snap := m.MetricsSnapshot()
	expect := map[MetricID]uint64{
		MetricPasswordHashed:       1,
		MetricPasswordVerifyOK:     1,
		MetricPasswordVerifyFailed: 1,
		MetricTokenIssued:          1,
		MetricTokenAccepted:        1,
		MetricTokenRejected:        1,
	}
	for id, want := range expect {
		if got := snap.Counters[id]; got != want {
			t.Fatalf("metric %d: expected %d, got %d", id, want, got)
		}
	}
}

func TestManagerEmitsAuditEvents(t *testing.T) {
	sink := NewChannelSink(16)
	builder := New().WithConfig(fastConfig()).WithSecret([]byte("test-secret")).WithAuditSink(sink)
	m, err := builder.Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}

	token, err := m.GenerateToken("u1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	m.VerifyToken(token)
	m.Close()

	seen := map[string]bool{}
	for {
		select {
		case event := <-sink.Events():
			seen[event.EventType] = true
			if event.EventType == EventTokenIssue && event.UserID != "u1" {
				t.Fatalf("expected issue event for u1, got %q", event.UserID)
			}
		default:
			if !seen[EventTokenIssue] || !seen[EventTokenVerify] {
				t.Fatalf("expected issue and verify events, saw %v", seen)
			}
			return
		}
	}
}
