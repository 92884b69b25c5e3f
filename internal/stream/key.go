package stream

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidKey reports an entry key string that does not parse as
// "<timestamp>" or "<timestamp>-<sequence>".
var ErrInvalidKey = errors.New("invalid entry key")

// EntryKey identifies and totally orders entries within a log: a
// millisecond timestamp plus a tie-breaking sequence number. Keys compare
// by timestamp first, then sequence.
type EntryKey struct {
	Ts  int64
	Seq int64
}

// ParseKey parses "ts" or "ts-seq". A missing sequence defaults to 0.
// Extra dash-separated components beyond the second are ignored.
func ParseKey(s string) (EntryKey, error) {
	parts := strings.Split(s, "-")
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return EntryKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	if len(parts) == 1 {
		return EntryKey{Ts: ts}, nil
	}
	seq, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return EntryKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return EntryKey{Ts: ts, Seq: seq}, nil
}

// parseCursorKey parses a group cursor position: "$" resolves to the zero
// key, anything else must be a valid entry key.
func parseCursorKey(s string) (EntryKey, error) {
	if s == "$" {
		return EntryKey{}, nil
	}
	return ParseKey(s)
}

// Encode returns the canonical "ts-seq" form. It round-trips with ParseKey.
func (k EntryKey) Encode() string {
	return strconv.FormatInt(k.Ts, 10) + "-" + strconv.FormatInt(k.Seq, 10)
}

// Compare returns -1, 0, or 1 ordering by (ts, seq).
func (k EntryKey) Compare(other EntryKey) int {
	switch {
	case k.Ts < other.Ts:
		return -1
	case k.Ts > other.Ts:
		return 1
	case k.Seq < other.Seq:
		return -1
	case k.Seq > other.Seq:
		return 1
	}
	return 0
}

// Less reports whether k orders strictly before other.
func (k EntryKey) Less(other EntryKey) bool { return k.Compare(other) < 0 }

// maxKey returns the later of two keys.
func maxKey(a, b EntryKey) EntryKey {
	if a.Compare(b) >= 0 {
		return a
	}
	return b
}
