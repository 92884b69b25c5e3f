package stream

import "sort"

// Group is a named consumer-group cursor over a stream: the start key it
// was registered with, the highest key delivered so far, the set of
// delivered-but-unacknowledged keys (the PEL), and per-consumer state.
//
// The back-reference to the owning stream is used for serialization and
// lookup only; the stream owns its groups outright.
type Group struct {
	s    *Stream
	name string

	startKey         EntryKey
	lastDeliveredKey EntryKey
	// lastAckKey is set at creation and reset by SetID; no acknowledgment
	// path advances it. Info's pending estimate depends on that.
	lastAckKey  EntryKey
	entriesRead *int64

	pel       map[EntryKey]struct{}
	consumers map[string]*consumerState
}

func newGroup(s *Stream, name string, startKey EntryKey, entriesRead *int64) *Group {
	return &Group{
		s:                s,
		name:             name,
		startKey:         startKey,
		lastDeliveredKey: startKey,
		lastAckKey:       startKey,
		entriesRead:      copyEntriesRead(entriesRead),
		pel:              make(map[EntryKey]struct{}),
		consumers:        make(map[string]*consumerState),
	}
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// LastDeliveredID returns the encoded cursor position.
func (g *Group) LastDeliveredID() string {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	return g.lastDeliveredKey.Encode()
}

// PendingCount returns the current size of the PEL.
func (g *Group) PendingCount() int {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	return len(g.pel)
}

// SetID repositions the group cursor: the start key is reset to the parsed
// id ("$" meaning the zero key) and the delivered cursor is recomputed from
// the resolved start index offset by entriesRead, clamped to the last entry.
func (g *Group) SetID(lastDeliveredStr string, entriesRead *int64) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	return g.setID(lastDeliveredStr, entriesRead)
}

func (g *Group) setID(lastDeliveredStr string, entriesRead *int64) error {
	key, err := parseCursorKey(lastDeliveredStr)
	if err != nil {
		return err
	}
	g.startKey = key
	g.entriesRead = copyEntriesRead(entriesRead)
	startIdx, _ := g.s.log.FindIndex(key, true)
	idx := startIdx + int(derefEntriesRead(entriesRead))
	if last := g.s.log.Len() - 1; idx > last {
		idx = last
	}
	if idx < 0 {
		// Empty log: nothing to point the cursor at.
		g.lastDeliveredKey = key
		return nil
	}
	g.lastDeliveredKey = g.s.log.At(idx).Key
	return nil
}

// AddConsumer registers a consumer, reporting whether it was newly created.
func (g *Group) AddConsumer(name string) bool {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	if _, ok := g.consumers[name]; ok {
		return false
	}
	g.consumers[name] = newConsumerState(name, g.s.nowMs())
	return true
}

// DelConsumer removes a consumer and returns how many pending entries it
// held, 0 if it did not exist. The PEL itself is untouched; redistributing
// or clearing those entries is the caller's decision.
func (g *Group) DelConsumer(name string) int64 {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	c, ok := g.consumers[name]
	if !ok {
		return 0
	}
	delete(g.consumers, name)
	return c.pending
}

// Read delivers entries to a consumer, auto-creating it when unseen.
//
// startID ">" reads new entries past the group cursor; an explicit id is
// clamped to be no earlier than the cursor, so a group read never
// re-delivers from before its own cursor. Unless noack is set, every
// returned key is recorded in the PEL. The cursor, the group's entries-read
// counter, and the consumer's pending/attempt bookkeeping advance on every
// successful call.
func (g *Group) Read(consumer, startID string, count int, noack bool) ([]Record, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	return g.read(consumer, startID, count, noack)
}

func (g *Group) read(consumer, startID string, count int, noack bool) ([]Record, error) {
	c, ok := g.consumers[consumer]
	if !ok {
		c = newConsumerState(consumer, g.s.nowMs())
		g.consumers[consumer] = c
	}

	var startKey EntryKey
	if startID == ">" {
		startKey = g.lastDeliveredKey
	} else {
		k, err := ParseKey(startID)
		if err != nil {
			return nil, err
		}
		startKey = maxKey(k, g.lastDeliveredKey)
	}

	items := g.s.log.ReadFrom(startKey, count)
	if !noack {
		for _, e := range items {
			g.pel[e.Key] = struct{}{}
		}
	}
	if len(items) > 0 {
		g.lastDeliveredKey = maxKey(g.lastDeliveredKey, items[len(items)-1].Key)
		er := derefEntriesRead(g.entriesRead) + int64(len(items))
		g.entriesRead = &er
	}

	now := g.s.nowMs()
	c.lastAttempt = now
	c.lastSuccess = now
	c.pending += int64(len(items))

	out := make([]Record, 0, len(items))
	for _, e := range items {
		out = append(out, e.Record())
	}
	return out, nil
}

// Ack removes the given ids from the PEL, returning how many were pending.
// Ids that are not pending are skipped. The advisory last-ack key is not
// advanced.
func (g *Group) Ack(ids []string) (int, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	acked := 0
	for _, id := range ids {
		key, err := ParseKey(id)
		if err != nil {
			return acked, err
		}
		if _, ok := g.pel[key]; ok {
			delete(g.pel, key)
			acked++
		}
	}
	return acked, nil
}

// PendingKeys returns the PEL contents in key order.
func (g *Group) PendingKeys() []EntryKey {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	keys := make([]EntryKey, 0, len(g.pel))
	for k := range g.pel {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// GroupInfo is the reply shape for one group. Pending is estimated from
// index arithmetic between the delivered and acked cursors rather than the
// PEL size, and Lag can go negative when entries-read overcounts a trimmed
// log; both formulas are kept for compatibility with existing clients.
type GroupInfo struct {
	Name            string
	Consumers       int
	Pending         int
	LastDeliveredID string
	EntriesRead     *int64
	Lag             int64
}

// Reply flattens the info into the conventional alternating key/value form.
// A nil entries-read is reported as a nil value.
func (gi GroupInfo) Reply() []any {
	var entriesRead any
	if gi.EntriesRead != nil {
		entriesRead = *gi.EntriesRead
	}
	return []any{
		"name", gi.Name,
		"consumers", gi.Consumers,
		"pending", gi.Pending,
		"last-delivered-id", gi.LastDeliveredID,
		"entries-read", entriesRead,
		"lag", gi.Lag,
	}
}

// Info summarizes the group.
func (g *Group) Info() GroupInfo {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	return g.info()
}

func (g *Group) info() GroupInfo {
	logLen := int64(g.s.log.Len())
	startIdx, _ := g.s.log.FindIndex(g.startKey, true)
	deliveredIdx, _ := g.s.log.FindIndex(g.lastDeliveredKey, true)
	ackedIdx, _ := g.s.log.FindIndex(g.lastAckKey, true)

	er := derefEntriesRead(g.entriesRead)
	var lag int64
	if int64(startIdx)+er > logLen {
		lag = logLen - int64(startIdx) - er
	} else {
		lag = logLen - 1 - int64(deliveredIdx)
	}

	return GroupInfo{
		Name:            g.name,
		Consumers:       len(g.consumers),
		Pending:         deliveredIdx - ackedIdx,
		LastDeliveredID: g.lastDeliveredKey.Encode(),
		EntriesRead:     copyEntriesRead(g.entriesRead),
		Lag:             lag,
	}
}

// ConsumersInfo summarizes every consumer in the group, sorted by name.
func (g *Group) ConsumersInfo() []ConsumerInfo {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	now := g.s.nowMs()
	names := make([]string, 0, len(g.consumers))
	for name := range g.consumers {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]ConsumerInfo, 0, len(names))
	for _, name := range names {
		out = append(out, g.consumers[name].info(now))
	}
	return out
}

func derefEntriesRead(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

// copyEntriesRead detaches a caller-supplied counter so later mutations of
// the caller's value cannot reach group state.
func copyEntriesRead(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
