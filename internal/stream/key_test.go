package stream

import (
	"errors"
	"testing"
)

func TestParseKeyFull(t *testing.T) {
	k, err := ParseKey("1526919030474-55")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if k.Ts != 1526919030474 || k.Seq != 55 {
		t.Fatalf("unexpected key: %+v", k)
	}
}

func TestParseKeyDefaultsSequence(t *testing.T) {
	k, err := ParseKey("42")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if k.Ts != 42 || k.Seq != 0 {
		t.Fatalf("sequence should default to 0: %+v", k)
	}
}

func TestParseKeyRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "abc", "5-x", "-", "x-1"} {
		if _, err := ParseKey(s); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("expected ErrInvalidKey for %q, got %v", s, err)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, s := range []string{"0-0", "5-0", "1526919030474-55"} {
		k, err := ParseKey(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if got := k.Encode(); got != s {
			t.Fatalf("round trip %q -> %q", s, got)
		}
	}
	// Canonical form adds the zero sequence.
	k, err := ParseKey("7")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := k.Encode(); got != "7-0" {
		t.Fatalf("canonical form: got %q", got)
	}
}

func TestKeyOrderingIsNumeric(t *testing.T) {
	// "9-0" < "10-0" numerically even though it sorts after as a string.
	a := EntryKey{Ts: 9}
	b := EntryKey{Ts: 10}
	if !a.Less(b) {
		t.Fatalf("expected 9-0 < 10-0")
	}
	if (EntryKey{Ts: 5, Seq: 2}).Compare(EntryKey{Ts: 5, Seq: 10}) >= 0 {
		t.Fatalf("sequence should break timestamp ties")
	}
	if (EntryKey{Ts: 5, Seq: 2}).Compare(EntryKey{Ts: 5, Seq: 2}) != 0 {
		t.Fatalf("equal keys should compare equal")
	}
}

func TestParseCursorKeyDollar(t *testing.T) {
	k, err := parseCursorKey("$")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if k != (EntryKey{}) {
		t.Fatalf("$ should resolve to the zero key: %+v", k)
	}
}
