package stream

// Entry is an immutable log record: a key plus an alternating
// field-name/field-value list. Entries are only ever removed from a log,
// never mutated in place.
type Entry struct {
	Key    EntryKey
	Fields [][]byte
}

// Record is the formatted reply shape for one entry: the encoded key and
// the alternating field/value list.
type Record struct {
	ID     string
	Fields [][]byte
}

// Record formats the entry for replies. Fields are copied so callers can
// hold the result across later log mutations.
func (e Entry) Record() Record {
	fields := make([][]byte, len(e.Fields))
	copy(fields, e.Fields)
	return Record{ID: e.Key.Encode(), Fields: fields}
}

// Reply flattens the record into the conventional [id, field-list] shape.
func (r Record) Reply() []any {
	return []any{r.ID, r.Fields}
}
