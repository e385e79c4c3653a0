package club

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ID identifies a record within its collection. Backends disagree on whether
// ids are strings or numbers, so ID decodes from either JSON form and is
// always compared as a string.
type ID string

// String returns the id as a plain string.
func (id ID) String() string { return string(id) }

// Matches compares two ids by their string form.
func (id ID) Matches(other ID) bool {
	return strings.TrimSpace(string(id)) == strings.TrimSpace(string(other))
}

// IsZero reports whether no id has been assigned.
func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	if n, err := strconv.ParseInt(string(trimmed), 10, 64); err == nil {
		*id = IDFrom(n)
		return nil
	}
	f, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil {
		return fmt.Errorf("decode id %s: not a string or number", trimmed)
	}
	*id = IDFrom(f)
	return nil
}

// IDFrom converts a loosely typed id into an ID. Integral floats lose their
// fraction so 42.0 and "42" refer to the same record.
func IDFrom(v any) ID {
	switch val := v.(type) {
	case ID:
		return val
	case string:
		return ID(val)
	case int:
		return ID(strconv.Itoa(val))
	case int32:
		return ID(strconv.FormatInt(int64(val), 10))
	case int64:
		return ID(strconv.FormatInt(val, 10))
	case uint64:
		return ID(strconv.FormatUint(val, 10))
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return ID(strconv.FormatInt(int64(val), 10))
		}
		return ID(strconv.FormatFloat(val, 'f', -1, 64))
	case json.Number:
		return ID(val.String())
	case fmt.Stringer:
		return ID(val.String())
	case nil:
		return ""
	default:
		return ID(fmt.Sprint(val))
	}
}

// IDGenerator produces fresh ids for records created on this side.
type IDGenerator interface {
	NewID() ID
}

// TimestampIDs issues millisecond timestamp tokens. Tokens are strictly
// increasing even when several are requested within one millisecond.
type TimestampIDs struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewID returns the next timestamp token.
func (g *TimestampIDs) NewID() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now
	if g.now != nil {
		now = g.now
	}
	ms := now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return ID(strconv.FormatInt(ms, 10))
}

// UUIDv7IDs issues time-ordered UUIDs.
type UUIDv7IDs struct{}

// NewID returns a version 7 UUID, falling back to a random one.
func (UUIDv7IDs) NewID() ID {
	u, err := uuid.NewV7()
	if err != nil {
		return ID(uuid.NewString())
	}
	return ID(u.String())
}

// NewIDGenerator returns the generator for a configured id scheme.
func NewIDGenerator(scheme string) (IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", "timestamp":
		return &TimestampIDs{}, nil
	case "uuid7", "uuid":
		return UUIDv7IDs{}, nil
	}
	return nil, fmt.Errorf("unknown id scheme %q", scheme)
}
