package credkit

import (
	"context"
	"fmt"
	"time"

	"github.com/credkit/credkit/jwt"
	"github.com/credkit/credkit/password"
)

// Manager is the credential manager facade: password hashing and verification
// plus stateless session-token issuance and validation, all bound to the single
// immutable secret supplied at construction.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config  Config
	hasher  *password.Hasher
	tokens  *jwt.Manager
	metrics *Metrics
	audit   *auditDispatcher
}

// HashPassword describes the hashpassword operation and its observable behavior.
//
// HashPassword may return an error when input validation, dependency calls, or security checks fail.
// HashPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) HashPassword(pw string) (string, error) {
	hash, err := m.hasher.Hash(pw)
	if err != nil {
		m.metrics.Inc(MetricPasswordHashFailed)
		m.emit(EventPasswordHash, "", false, err)
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	m.metrics.Inc(MetricPasswordHashed)
	m.emit(EventPasswordHash, "", true, nil)

	return hash, nil
}

// VerifyPassword reports whether pw reproduces the digest embedded in hashed.
// A malformed hash is treated as a non-match, never an error: credential
// rejection is an expected failure path communicated by the return value.
//
// VerifyPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) VerifyPassword(pw string, hashed string) bool {
	ok, err := m.hasher.Verify(pw, hashed)
	if err != nil || !ok {
		m.metrics.Inc(MetricPasswordVerifyFailed)
		m.emit(EventPasswordVerify, "", false, err)
		return false
	}

	m.metrics.Inc(MetricPasswordVerifyOK)
	m.emit(EventPasswordVerify, "", true, nil)

	return true
}

// NeedsRehash describes the needsrehash operation and its observable behavior.
//
// NeedsRehash may return an error when input validation, dependency calls, or security checks fail.
// NeedsRehash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) NeedsRehash(hashed string) (bool, error) {
	return m.hasher.NeedsRehash(hashed)
}

// GenerateToken describes the generatetoken operation and its observable behavior.
//
// GenerateToken may return an error when input validation, dependency calls, or security checks fail.
// GenerateToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) GenerateToken(userID string) (string, error) {
	token, err := m.tokens.Issue(userID)
	if err != nil {
		m.metrics.Inc(MetricTokenIssueFailed)
		m.emit(EventTokenIssue, userID, false, err)
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	m.metrics.Inc(MetricTokenIssued)
	m.emit(EventTokenIssue, userID, true, nil)

	return token, nil
}

// VerifyToken validates the signature and expiry of token against the
// manager's secret and returns the embedded user identifier. Expired,
// forged, malformed, and wrong-algorithm tokens all collapse into the same
// ("", false) result; callers cannot distinguish why a token was rejected.
//
// VerifyToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) VerifyToken(token string) (string, bool) {
	start := time.Now()
	claims, err := m.tokens.Parse(token)
	m.metrics.Observe(MetricVerifyLatency, time.Since(start))

	if err != nil {
		m.metrics.Inc(MetricTokenRejected)
		m.emit(EventTokenVerify, "", false, err)
		return "", false
	}

	m.metrics.Inc(MetricTokenAccepted)
	m.emit(EventTokenVerify, claims.UserID, true, nil)

	return claims.UserID, true
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	if m.audit != nil {
		m.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

// emit never carries plaintext passwords or hash material, only outcomes.
func (m *Manager) emit(eventType string, userID string, success bool, err error) {
	if m.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	m.audit.Emit(context.Background(), event)
}
