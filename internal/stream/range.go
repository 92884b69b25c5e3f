package stream

import "strings"

type boundKind int

const (
	boundKey boundKind = iota
	boundBeforeAll
	boundAfterAll
)

// RangeBound is one endpoint of a range query: either a concrete key with
// an exclusivity flag, or one of the two open-ended sentinels. The
// sentinels never appear as stored keys.
type RangeBound struct {
	kind      boundKind
	key       EntryKey
	exclusive bool
}

// BeforeAll returns the bound that sorts before every real key.
func BeforeAll() RangeBound { return RangeBound{kind: boundBeforeAll} }

// AfterAll returns the bound that sorts after every real key.
func AfterAll() RangeBound { return RangeBound{kind: boundAfterAll} }

// KeyBound returns a concrete-key bound.
func KeyBound(key EntryKey, exclusive bool) RangeBound {
	return RangeBound{key: key, exclusive: exclusive}
}

// DecodeRangeBound parses a range endpoint string: "-" is before-all, "+"
// is after-all, a "("-prefixed key is exclusive, and anything else is a
// plain key carrying the supplied exclusivity.
func DecodeRangeBound(s string, exclusive bool) (RangeBound, error) {
	switch {
	case s == "-":
		return RangeBound{kind: boundBeforeAll, exclusive: true}, nil
	case s == "+":
		return RangeBound{kind: boundAfterAll, exclusive: true}, nil
	case strings.HasPrefix(s, "("):
		k, err := ParseKey(s[1:])
		if err != nil {
			return RangeBound{}, err
		}
		return RangeBound{key: k, exclusive: true}, nil
	}
	k, err := ParseKey(s)
	if err != nil {
		return RangeBound{}, err
	}
	return RangeBound{key: k, exclusive: exclusive}, nil
}

// resolveBound maps a bound to an index into the entry slice. An exclusive
// bound that matched an entry exactly is shifted past it.
func (l *Log) resolveBound(b RangeBound, fromLeft bool) int {
	switch b.kind {
	case boundBeforeAll:
		return 0
	case boundAfterAll:
		return len(l.entries)
	}
	idx, found := l.FindIndex(b.key, fromLeft)
	if found && b.exclusive {
		idx++
	}
	return idx
}

// Range returns the formatted entries between start and stop, reversed if
// requested.
func (l *Log) Range(start, stop RangeBound, reverse bool) []Record {
	lo := l.resolveBound(start, true)
	hi := l.resolveBound(stop, false)
	if lo >= hi {
		return nil
	}
	out := make([]Record, 0, hi-lo)
	if reverse {
		for i := hi - 1; i >= lo; i-- {
			out = append(out, l.entries[i].Record())
		}
		return out
	}
	for i := lo; i < hi; i++ {
		out = append(out, l.entries[i].Record())
	}
	return out
}
