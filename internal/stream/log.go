package stream

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrTrimSelector reports a Trim call that did not supply exactly one of
// the max-length or min-key selectors.
var ErrTrimSelector = errors.New("trim requires exactly one of max length or min key")

// Log is an ordered sequence of entries, strictly increasing by key.
// It carries no locking of its own: the owning Stream serializes access.
type Log struct {
	entries       []Entry
	entriesAdded  int64
	maxDeletedKey EntryKey
	nowMs         NowFunc
}

// NewLog returns an empty log. A nil clock defaults to the system clock.
func NewLog(now NowFunc) *Log {
	if now == nil {
		now = SystemNow
	}
	return &Log{nowMs: now}
}

// Len returns the number of entries currently stored.
func (l *Log) Len() int { return len(l.entries) }

// At returns the entry at index i.
func (l *Log) At(i int) Entry { return l.entries[i] }

// EntriesAdded returns the lifetime append counter. It is never decremented
// by trims or deletes.
func (l *Log) EntriesAdded() int64 { return l.entriesAdded }

// MaxDeletedKey returns the highest key ever removed by an explicit delete.
func (l *Log) MaxDeletedKey() EntryKey { return l.maxDeletedKey }

// LastKey returns the key of the newest entry, if any.
func (l *Log) LastKey() (EntryKey, bool) {
	if len(l.entries) == 0 {
		return EntryKey{}, false
	}
	return l.entries[len(l.entries)-1].Key, true
}

// LastID returns the encoded key of the newest entry, or "0-0" when empty.
func (l *Log) LastID() string {
	if k, ok := l.LastKey(); ok {
		return k.Encode()
	}
	return "0-0"
}

// Add appends an entry. keySpec is "*" (or empty) for a fully generated
// key, "<ts>-*" for a generated sequence under an explicit timestamp, or an
// explicit "<ts>-<seq>" key used verbatim.
//
// A key that does not sort strictly after the current last key is rejected:
// Add returns added=false and the log is unchanged. Rejection is not an
// error; errors are reserved for unparsable key specs.
//
// The field list must have even length; an odd-length list is a caller
// contract violation and panics.
func (l *Log) Add(fields [][]byte, keySpec string) (EntryKey, bool, error) {
	if len(fields)%2 != 0 {
		panic("stream: field list must have even length")
	}

	var key EntryKey
	switch {
	case keySpec == "" || keySpec == "*":
		key = EntryKey{Ts: l.nowMs()}
		if last, ok := l.LastKey(); ok && last.Ts == key.Ts {
			key.Seq = last.Seq + 1
		}
	case strings.HasSuffix(keySpec, "*"):
		// "<ts>-*": explicit timestamp, generated sequence.
		parts := strings.Split(keySpec, "-")
		if len(parts) != 2 {
			return EntryKey{}, false, nil
		}
		ts, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return EntryKey{}, false, fmt.Errorf("%w: %q", ErrInvalidKey, keySpec)
		}
		key = EntryKey{Ts: ts}
		if last, ok := l.LastKey(); ok && last.Ts == ts {
			key.Seq = last.Seq + 1
		}
	default:
		k, err := ParseKey(keySpec)
		if err != nil {
			return EntryKey{}, false, err
		}
		key = k
	}

	if last, ok := l.LastKey(); ok && last.Compare(key) >= 0 {
		return EntryKey{}, false, nil
	}

	cp := make([][]byte, len(fields))
	copy(cp, fields)
	l.entries = append(l.entries, Entry{Key: key, Fields: cp})
	l.entriesAdded++
	return key, true, nil
}

// Delete removes the entries whose encoded keys appear in keys, skipping
// keys that are not present. It returns the number of entries removed and
// updates the max-deleted-key watermark.
func (l *Log) Delete(keys []string) (int, error) {
	deleted := 0
	for _, k := range keys {
		idx, found, err := l.findIndexKeyStr(k)
		if err != nil {
			return deleted, err
		}
		if !found {
			continue
		}
		l.maxDeletedKey = maxKey(l.maxDeletedKey, l.entries[idx].Key)
		l.entries = append(l.entries[:idx], l.entries[idx+1:]...)
		deleted++
	}
	return deleted, nil
}

// TrimOptions selects entries to discard from the front of the log.
// Exactly one of MaxLen or MinKey must be set; Limit optionally caps how
// many entries may be removed.
type TrimOptions struct {
	MaxLen *int
	MinKey *string
	Limit  *int
}

// Trim discards the oldest entries per opts and returns how many were
// removed. A cut point past either end of the log is clamped.
func (l *Log) Trim(opts TrimOptions) (int, error) {
	if (opts.MaxLen != nil) == (opts.MinKey != nil) {
		return 0, ErrTrimSelector
	}
	var cut int
	if opts.MaxLen != nil {
		cut = len(l.entries) - *opts.MaxLen
	} else {
		idx, _, err := l.findIndexKeyStr(*opts.MinKey)
		if err != nil {
			return 0, err
		}
		cut = idx
	}
	if opts.Limit != nil && cut > *opts.Limit {
		cut = *opts.Limit
	}
	if cut < 0 {
		cut = 0
	}
	if cut > len(l.entries) {
		cut = len(l.entries)
	}
	l.entries = l.entries[cut:]
	return cut, nil
}

// FindIndex binary-searches for key. With fromLeft it returns the first
// index whose key is >= key; otherwise the first index whose key is > key.
// The bool reports whether the entry at the returned index matches exactly.
func (l *Log) FindIndex(key EntryKey, fromLeft bool) (int, bool) {
	if len(l.entries) == 0 {
		return 0, false
	}
	var idx int
	if fromLeft {
		idx = sort.Search(len(l.entries), func(i int) bool {
			return l.entries[i].Key.Compare(key) >= 0
		})
	} else {
		idx = sort.Search(len(l.entries), func(i int) bool {
			return l.entries[i].Key.Compare(key) > 0
		})
	}
	return idx, idx < len(l.entries) && l.entries[idx].Key == key
}

// findIndexKeyStr resolves an encoded key to an index. "$" resolves to the
// last entry.
func (l *Log) findIndexKeyStr(s string) (int, bool, error) {
	if s == "$" {
		if len(l.entries) == 0 {
			return 0, false, nil
		}
		return len(l.entries) - 1, true, nil
	}
	key, err := ParseKey(s)
	if err != nil {
		return 0, false, err
	}
	idx, found := l.FindIndex(key, true)
	return idx, found, nil
}

// ReadFrom returns up to count entries strictly after start; an exact match
// on start is skipped. count <= 0 means unbounded.
//
// The returned slice aliases the log and is only valid until the next
// mutation; callers that retain results should format them into Records.
func (l *Log) ReadFrom(start EntryKey, count int) []Entry {
	idx, found := l.FindIndex(start, true)
	if found {
		idx++
	}
	if idx >= len(l.entries) {
		return nil
	}
	end := len(l.entries)
	if count > 0 && idx+count < end {
		end = idx + count
	}
	return l.entries[idx:end]
}
