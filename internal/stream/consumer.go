package stream

// consumerState tracks delivery bookkeeping for one named consumer inside
// a group.
type consumerState struct {
	name        string
	pending     int64
	lastAttempt int64
	lastSuccess int64
}

func newConsumerState(name string, nowMs int64) *consumerState {
	return &consumerState{name: name, lastAttempt: nowMs, lastSuccess: nowMs}
}

// ConsumerInfo is the reply shape for one consumer: pending count plus idle
// and inactive durations in milliseconds.
type ConsumerInfo struct {
	Name       string
	Pending    int64
	IdleMs     int64
	InactiveMs int64
}

// Reply flattens the info into the conventional alternating key/value form.
func (ci ConsumerInfo) Reply() []any {
	return []any{
		"name", ci.Name,
		"pending", ci.Pending,
		"idle", ci.IdleMs,
		"inactive", ci.InactiveMs,
	}
}

func (c *consumerState) info(nowMs int64) ConsumerInfo {
	return ConsumerInfo{
		Name:       c.name,
		Pending:    c.pending,
		IdleMs:     nowMs - c.lastAttempt,
		InactiveMs: nowMs - c.lastSuccess,
	}
}
