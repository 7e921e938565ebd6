// Package audit records who changed which meter reading, device or
// provider contract, and when.
package audit

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"
)

// Resource types covered by the audit trail.
const (
	ResourceReading  = "reading"
	ResourceDevice   = "device"
	ResourceProvider = "provider"
)

// Actions covered by the audit trail.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Entry represents an audit log entry.
type Entry struct {
	ID            string
	HouseholdID   string
	Actor         string
	Role          string
	Action        string
	ResourceType  string
	ResourceID    string
	Metadata      json.RawMessage
	PayloadDigest string
	IP            string
	UserAgent     string
	CreatedAt     time.Time
}

// Logger writes audit entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// NewID generates a random audit id.
func NewID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "audit-" + hex.EncodeToString(buf)
}

// DigestJSON computes a SHA256 hex digest for metadata payloads.
func DigestJSON(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// RequestOrigin derives the client address and user agent an entry should
// record for an HTTP mutation. Proxy headers win over the socket address;
// a forwarded chain is attributed to its first hop.
func RequestOrigin(r *http.Request) (ip, userAgent string) {
	if r == nil {
		return "", ""
	}
	ip = r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	for _, header := range []string{"X-Forwarded-For", "X-Real-IP"} {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		if i := strings.IndexByte(value, ','); i >= 0 {
			value = value[:i]
		}
		ip = strings.TrimSpace(value)
		break
	}
	return ip, r.UserAgent()
}

// Nop is a Logger that discards entries. Useful when auditing is disabled.
type Nop struct{}

// Log implements Logger.
func (Nop) Log(ctx context.Context, entry Entry) error {
	_ = ctx
	_ = entry
	return nil
}
