package stream

import (
	"sort"
	"sync"
)

// Stream owns one ordered entry log and its consumer groups, and exposes
// the operation set consumed by a command-dispatch layer. Every exported
// operation serializes on an internal mutex; operations on different
// streams are independent.
type Stream struct {
	mu     sync.Mutex
	name   string
	log    *Log
	groups map[string]*Group
	nowMs  NowFunc
}

// Option configures a Stream.
type Option func(*Stream)

// WithClock overrides the wall-clock source, mainly for tests.
func WithClock(now NowFunc) Option {
	return func(s *Stream) { s.nowMs = now }
}

// New creates an empty stream.
func New(name string, opts ...Option) *Stream {
	s := &Stream{name: name, groups: make(map[string]*Group), nowMs: SystemNow}
	for _, o := range opts {
		o(s)
	}
	s.log = NewLog(s.nowMs)
	return s
}

// Name returns the stream name.
func (s *Stream) Name() string { return s.name }

// Len returns the number of entries currently stored.
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Len()
}

// LastID returns the encoded key of the newest entry, or "0-0" when empty.
func (s *Stream) LastID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.LastID()
}

// Add appends an entry; see Log.Add for key-spec semantics. It returns the
// encoded key and whether the entry was added. A rejected (non-increasing)
// key yields added=false with no error.
func (s *Stream) Add(fields [][]byte, keySpec string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, added, err := s.log.Add(fields, keySpec)
	if err != nil || !added {
		return "", false, err
	}
	return key.Encode(), true, nil
}

// Delete removes entries by encoded key, skipping absent keys, and returns
// the number removed.
func (s *Stream) Delete(keys []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Delete(keys)
}

// Trim discards the oldest entries per opts; see Log.Trim.
func (s *Stream) Trim(opts TrimOptions) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Trim(opts)
}

// ReadFrom returns up to count entries strictly after start, formatted;
// count <= 0 means unbounded. This is the plain cursor read used for
// position-based (non-group) consumption.
func (s *Stream) ReadFrom(start EntryKey, count int) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.log.ReadFrom(start, count)
	out := make([]Record, 0, len(items))
	for _, e := range items {
		out = append(out, e.Record())
	}
	return out
}

// Range returns the formatted entries between start and stop.
func (s *Stream) Range(start, stop RangeBound, reverse bool) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Range(start, stop, reverse)
}

// RangeFilter is Range with a CEL predicate applied to each entry before
// it is included. A zero Filter matches everything.
func (s *Stream) RangeFilter(start, stop RangeBound, reverse bool, f Filter) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	lo := s.log.resolveBound(start, true)
	hi := s.log.resolveBound(stop, false)
	if lo >= hi {
		return nil
	}
	now := s.nowMs()
	out := make([]Record, 0, hi-lo)
	if reverse {
		for i := hi - 1; i >= lo; i-- {
			if e := s.log.At(i); f.Eval(e, now) {
				out = append(out, e.Record())
			}
		}
		return out
	}
	for i := lo; i < hi; i++ {
		if e := s.log.At(i); f.Eval(e, now) {
			out = append(out, e.Record())
		}
	}
	return out
}

// GroupCreate registers a consumer group. startID "$" places the cursor at
// the current last entry (or the zero key on an empty stream); any other
// value must parse as an entry key. Re-creating an existing group resets it.
func (s *Stream) GroupCreate(name, startID string, entriesRead *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var startKey EntryKey
	if startID == "$" {
		startKey, _ = s.log.LastKey()
	} else {
		k, err := ParseKey(startID)
		if err != nil {
			return err
		}
		startKey = k
	}
	s.groups[name] = newGroup(s, name, startKey, entriesRead)
	return nil
}

// GroupGet looks up a group by name. A missing group is not an error.
func (s *Stream) GroupGet(name string) (*Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[name]
	return g, ok
}

// GroupDelete removes a group, returning 1 if it existed and 0 otherwise.
func (s *Stream) GroupDelete(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[name]; !ok {
		return 0
	}
	delete(s.groups, name)
	return 1
}

// GroupNames returns the registered group names, sorted.
func (s *Stream) GroupNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupNames()
}

func (s *Stream) groupNames() []string {
	names := make([]string, 0, len(s.groups))
	for name := range s.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GroupsInfo summarizes every group, sorted by name.
func (s *Stream) GroupsInfo() []GroupInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupsInfo()
}

func (s *Stream) groupsInfo() []GroupInfo {
	out := make([]GroupInfo, 0, len(s.groups))
	for _, name := range s.groupNames() {
		out = append(out, s.groups[name].info())
	}
	return out
}

// StreamInfo is the stream-level summary. Entries and GroupDump are only
// populated for full dumps.
type StreamInfo struct {
	Length               int
	Groups               int
	FirstEntry           *Record
	LastEntry            *Record
	MaxDeletedID         string
	EntriesAdded         int64
	RecordedFirstEntryID string
	Entries              []Record
	GroupDump            []GroupInfo
	Full                 bool
}

// Reply flattens the summary into the conventional alternating key/value
// form. In full mode the groups value carries the group dump instead of the
// count, and the entry dump is appended.
func (si StreamInfo) Reply() []any {
	var first, last any
	if si.FirstEntry != nil {
		first = si.FirstEntry.Reply()
	}
	if si.LastEntry != nil {
		last = si.LastEntry.Reply()
	}
	groups := any(si.Groups)
	if si.Full {
		dump := make([]any, 0, len(si.GroupDump))
		for _, gi := range si.GroupDump {
			dump = append(dump, gi.Reply())
		}
		groups = dump
	}
	out := []any{
		"length", si.Length,
		"groups", groups,
		"first-entry", first,
		"last-entry", last,
		"max-deleted-entry-id", si.MaxDeletedID,
		"entries-added", si.EntriesAdded,
		"recorded-first-entry-id", si.RecordedFirstEntryID,
	}
	if si.Full {
		entries := make([]any, 0, len(si.Entries))
		for _, r := range si.Entries {
			entries = append(entries, r.Reply())
		}
		out = append(out, "entries", entries)
	}
	return out
}

// Info summarizes the stream. With full set, the complete entry list and
// per-group details are included.
func (s *Stream) Info(full bool) StreamInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	si := StreamInfo{
		Length:               s.log.Len(),
		Groups:               len(s.groups),
		MaxDeletedID:         s.log.MaxDeletedKey().Encode(),
		EntriesAdded:         s.log.EntriesAdded(),
		RecordedFirstEntryID: "0-0",
		Full:                 full,
	}
	if s.log.Len() > 0 {
		first := s.log.At(0).Record()
		last := s.log.At(s.log.Len() - 1).Record()
		si.FirstEntry = &first
		si.LastEntry = &last
		si.RecordedFirstEntryID = s.log.At(0).Key.Encode()
	}
	if full {
		si.Entries = make([]Record, 0, s.log.Len())
		for i := 0; i < s.log.Len(); i++ {
			si.Entries = append(si.Entries, s.log.At(i).Record())
		}
		si.GroupDump = s.groupsInfo()
	}
	return si
}
