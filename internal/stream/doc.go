// Package stream implements an in-memory, ordered, append-mostly entry log
// with consumer groups: the data-structure core of a stream primitive in a
// key/value store emulation.
//
// # Overview
//
// Entries are keyed by (timestamp, sequence) pairs with a deterministic
// total order and a canonical "ts-seq" text form. The Log keeps them in a
// sorted growable array; all lookups resolve indices by binary search.
// Consumer groups layer delivery cursors, a pending-entries list (PEL), and
// per-consumer bookkeeping on top of the log.
//
// API surface (internal)
//
//	s := stream.New("orders")
//	// Append with a generated, partially generated, or explicit key
//	id, added, _ := s.Add([][]byte{[]byte("k"), []byte("v")}, "*")
//	_, _, _ = s.Add(fields, "5-*")
//	_, _, _ = s.Add(fields, "5-3")
//
//	// Range queries with open-ended or exclusive bounds
//	recs := s.Range(stream.BeforeAll(), stream.AfterAll(), false)
//	b, _ := stream.DecodeRangeBound("(5-0", false)
//	recs = s.Range(b, stream.AfterAll(), true)
//
//	// Consumer groups
//	_ = s.GroupCreate("workers", "$", nil)
//	g, _ := s.GroupGet("workers")
//	recs, _ = g.Read("c1", ">", 10, false)
//	_, _ = g.Ack([]string{recs[0].ID})
//
// # Concurrency
//
// One mutex per Stream serializes every operation on that stream; streams
// are independent. The Log itself carries no locking and must only be used
// through its owning Stream. Time is read once per operation through an
// injectable NowFunc so tests can drive a ManualClock.
//
// # Reply shapes
//
// Query results are plain Records and Info structs; their Reply() methods
// flatten to the alternating key/value arrays the dispatch layer serializes.
// This package performs no I/O and no protocol encoding.
package stream
