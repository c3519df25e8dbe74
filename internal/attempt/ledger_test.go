package attempt

import (
	"testing"

	"github.com/google/uuid"
)

func TestLedgerRecordAndGet(t *testing.T) {
	l := NewLedger()
	q1 := uuid.New()

	if _, ok := l.Get(q1); ok {
		t.Fatal("expected no entry before Record")
	}

	l.Record(q1, "a")
	got, ok := l.Get(q1)
	if !ok || got != "a" {
		t.Fatalf("Get = (%q, %v), want (a, true)", got, ok)
	}
	if l.Count() != 1 {
		t.Fatalf("Count = %d, want 1", l.Count())
	}
}

func TestLedgerIdempotentRecord(t *testing.T) {
	l := NewLedger()
	q1 := uuid.New()

	l.Record(q1, "a")
	before := l.Snapshot()
	l.Record(q1, "a")
	after := l.Snapshot()

	if len(before) != len(after) {
		t.Fatalf("snapshot size changed: %d -> %d", len(before), len(after))
	}
	if before[0] != after[0] {
		t.Fatalf("snapshot content changed: %v -> %v", before[0], after[0])
	}
}

func TestLedgerLastWriteWins(t *testing.T) {
	l := NewLedger()
	q1, q2 := uuid.New(), uuid.New()

	l.Record(q1, "a")
	l.Record(q2, "b")
	l.Record(q1, "c")

	got, _ := l.Get(q1)
	if got != "c" {
		t.Fatalf("Get(q1) = %q, want c", got)
	}
	if l.Count() != 2 {
		t.Fatalf("Count = %d, want 2", l.Count())
	}

	// Re-answering must not move q1 out of first-answered position.
	snap := l.Snapshot()
	if len(snap) != 2 || snap[0].QuestionID != q1 || snap[0].OptionID != "c" || snap[1].QuestionID != q2 {
		t.Fatalf("unexpected snapshot order: %v", snap)
	}
}

func TestLedgerSnapshotStableOrder(t *testing.T) {
	l := NewLedger()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, id := range ids {
		l.Record(id, string(rune('a'+i)))
	}

	snap := l.Snapshot()
	for i, id := range ids {
		if snap[i].QuestionID != id {
			t.Fatalf("snapshot[%d] = %s, want %s", i, snap[i].QuestionID, id)
		}
	}
}
