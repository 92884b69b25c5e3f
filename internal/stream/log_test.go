package stream

import (
	"errors"
	"testing"
)

func newTestStream(t *testing.T) (*Stream, *ManualClock) {
	t.Helper()
	clk := NewManualClock(1_000)
	return New("orders", WithClock(clk.Now)), clk
}

func fieldList(kv ...string) [][]byte {
	fields := make([][]byte, 0, len(kv))
	for _, v := range kv {
		fields = append(fields, []byte(v))
	}
	return fields
}

func mustAdd(t *testing.T, s *Stream, keySpec string, kv ...string) string {
	t.Helper()
	id, added, err := s.Add(fieldList(kv...), keySpec)
	if err != nil {
		t.Fatalf("add %q: %v", keySpec, err)
	}
	if !added {
		t.Fatalf("add %q: not added", keySpec)
	}
	return id
}

func i64(v int64) *int64 { return &v }

func TestAddPartialKeyBumpsSequence(t *testing.T) {
	s, _ := newTestStream(t)
	if id := mustAdd(t, s, "5-*", "a", "1"); id != "5-0" {
		t.Fatalf("first add: got %q", id)
	}
	if id := mustAdd(t, s, "5-*", "a", "2"); id != "5-1" {
		t.Fatalf("second add: got %q", id)
	}
}

func TestAddGeneratedKeyUsesClock(t *testing.T) {
	s, clk := newTestStream(t)
	if id := mustAdd(t, s, "*", "a", "1"); id != "1000-0" {
		t.Fatalf("got %q", id)
	}
	if id := mustAdd(t, s, "*", "a", "2"); id != "1000-1" {
		t.Fatalf("same-millisecond add should bump sequence: got %q", id)
	}
	clk.Advance(5)
	if id := mustAdd(t, s, "", "a", "3"); id != "1005-0" {
		t.Fatalf("empty key spec should behave like *: got %q", id)
	}
}

func TestAddRejectsNonIncreasingKey(t *testing.T) {
	s, _ := newTestStream(t)
	mustAdd(t, s, "5-1", "a", "1")

	for _, spec := range []string{"5-1", "5-0", "4-9"} {
		id, added, err := s.Add(fieldList("a", "2"), spec)
		if err != nil {
			t.Fatalf("add %q: %v", spec, err)
		}
		if added || id != "" {
			t.Fatalf("add %q should be rejected", spec)
		}
	}
	if s.Len() != 1 {
		t.Fatalf("rejected adds must not change the log: len=%d", s.Len())
	}
	info := s.Info(false)
	if info.EntriesAdded != 1 {
		t.Fatalf("entries-added should count only successful appends: %d", info.EntriesAdded)
	}
}

func TestAddMalformedSpec(t *testing.T) {
	s, _ := newTestStream(t)
	if _, _, err := s.Add(fieldList("a", "1"), "x-1"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if _, _, err := s.Add(fieldList("a", "1"), "x-*"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for bad partial spec, got %v", err)
	}
	// A bare "*" suffix without a timestamp component is a silent no-op,
	// not a parse failure.
	if _, added, err := s.Add(fieldList("a", "1"), "123*"); err != nil || added {
		t.Fatalf("expected silent rejection, got added=%v err=%v", added, err)
	}
}

func TestAddOddFieldsPanics(t *testing.T) {
	s, _ := newTestStream(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for odd-length field list")
		}
	}()
	_, _, _ = s.Add([][]byte{[]byte("a")}, "*")
}

func TestDeleteCountsAndWatermark(t *testing.T) {
	s, _ := newTestStream(t)
	mustAdd(t, s, "5-0", "a", "1")
	mustAdd(t, s, "6-0", "a", "2")

	n, err := s.Delete([]string{"5-0"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 deleted, got %d", n)
	}
	n, err = s.Delete([]string{"5-0"})
	if err != nil || n != 0 {
		t.Fatalf("second delete should be a no-op: n=%d err=%v", n, err)
	}
	if got := s.Info(false).MaxDeletedID; got != "5-0" {
		t.Fatalf("max-deleted-entry-id: got %q", got)
	}
	if s.Len() != 1 {
		t.Fatalf("len after delete: %d", s.Len())
	}
}

func TestDeleteMalformedKey(t *testing.T) {
	s, _ := newTestStream(t)
	mustAdd(t, s, "5-0", "a", "1")
	if _, err := s.Delete([]string{"bogus"}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestDeleteDollarRemovesLast(t *testing.T) {
	s, _ := newTestStream(t)
	mustAdd(t, s, "5-0", "a", "1")
	mustAdd(t, s, "6-0", "a", "2")
	n, err := s.Delete([]string{"$"})
	if err != nil || n != 1 {
		t.Fatalf("delete $: n=%d err=%v", n, err)
	}
	if s.LastID() != "5-0" {
		t.Fatalf("last entry should have been removed: %s", s.LastID())
	}
	// $ on an empty log is a no-op.
	if _, err := s.Delete([]string{"$"}); err != nil {
		t.Fatalf("delete $ again: %v", err)
	}
}

func TestFindIndexBisect(t *testing.T) {
	s, _ := newTestStream(t)
	l := s.log
	if idx, found := l.FindIndex(EntryKey{Ts: 5}, true); idx != 0 || found {
		t.Fatalf("empty log should yield (0,false): %d %v", idx, found)
	}
	for _, spec := range []string{"2-0", "4-0", "6-0"} {
		mustAdd(t, s, spec, "a", "1")
	}
	if idx, found := l.FindIndex(EntryKey{Ts: 4}, true); idx != 1 || !found {
		t.Fatalf("bisect-left exact: %d %v", idx, found)
	}
	if idx, found := l.FindIndex(EntryKey{Ts: 4}, false); idx != 2 || found {
		t.Fatalf("bisect-right moves past equal run: %d %v", idx, found)
	}
	if idx, found := l.FindIndex(EntryKey{Ts: 5}, true); idx != 2 || found {
		t.Fatalf("absent key insertion point: %d %v", idx, found)
	}
	if idx, _ := l.FindIndex(EntryKey{Ts: 99}, true); idx != 3 {
		t.Fatalf("past-the-end insertion point: %d", idx)
	}
}

func TestLogStaysSortedUnderMutation(t *testing.T) {
	s, clk := newTestStream(t)
	assertSorted := func() {
		t.Helper()
		for i := 1; i < s.log.Len(); i++ {
			if !s.log.At(i - 1).Key.Less(s.log.At(i).Key) {
				t.Fatalf("log out of order at %d: %v !< %v", i, s.log.At(i-1).Key, s.log.At(i).Key)
			}
		}
	}
	for i := 0; i < 50; i++ {
		_, _, err := s.Add(fieldList("n", "v"), "*")
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if i%3 == 0 {
			clk.Advance(1)
		}
		assertSorted()
	}
	if _, err := s.Delete([]string{s.LastID()}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertSorted()
	max := 10
	if _, err := s.Trim(TrimOptions{MaxLen: &max}); err != nil {
		t.Fatalf("trim: %v", err)
	}
	assertSorted()
	if s.Len() != 10 {
		t.Fatalf("trim result: %d", s.Len())
	}
}

func TestReadFromSkipsExactMatch(t *testing.T) {
	s, _ := newTestStream(t)
	for _, spec := range []string{"1-0", "2-0", "3-0"} {
		mustAdd(t, s, spec, "a", "1")
	}
	items := s.log.ReadFrom(EntryKey{Ts: 1}, 0)
	if len(items) != 2 || items[0].Key.Ts != 2 {
		t.Fatalf("exact start key must be skipped: %v", items)
	}
	items = s.log.ReadFrom(EntryKey{Ts: 0}, 2)
	if len(items) != 2 || items[1].Key.Ts != 2 {
		t.Fatalf("count should cap the read: %v", items)
	}
	if items = s.log.ReadFrom(EntryKey{Ts: 3}, 0); items != nil {
		t.Fatalf("read past the end should be empty: %v", items)
	}
}
