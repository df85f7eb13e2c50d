package sequence

import (
	"encoding/json"
	"testing"
)

func payload(s string) json.RawMessage {
	return json.RawMessage(`"` + s + `"`)
}

func TestProcess_InOrder(t *testing.T) {
	b := NewBuffer()

	got, ok := b.Process("sub1", 1, payload("a"))
	if !ok || string(got) != `"a"` {
		t.Errorf("Process(1) = (%s, %v), want (\"a\", true)", got, ok)
	}
	got, ok = b.Process("sub1", 2, payload("b"))
	if !ok || string(got) != `"b"` {
		t.Errorf("Process(2) = (%s, %v), want (\"b\", true)", got, ok)
	}
	got, ok = b.Process("sub1", 3, payload("c"))
	if !ok || string(got) != `"c"` {
		t.Errorf("Process(3) = (%s, %v), want (\"c\", true)", got, ok)
	}
	if b.LastSeq("sub1") != 3 {
		t.Errorf("LastSeq = %d, want 3", b.LastSeq("sub1"))
	}
}

func TestProcess_OutOfOrderFlush(t *testing.T) {
	b := NewBuffer()

	if _, ok := b.Process("sub1", 1, payload("a")); !ok {
		t.Fatal("seq 1 not applied")
	}

	// Gap: 3 arrives before 2 and is buffered.
	if got, ok := b.Process("sub1", 3, payload("c")); ok {
		t.Errorf("Process(3) = (%s, true), want buffered", got)
	}
	if b.PendingCount("sub1") != 1 {
		t.Errorf("PendingCount = %d, want 1", b.PendingCount("sub1"))
	}

	// 2 fills the gap; buffered 3 flushes and its payload wins.
	got, ok := b.Process("sub1", 2, payload("b"))
	if !ok || string(got) != `"c"` {
		t.Errorf("Process(2) = (%s, %v), want (\"c\", true)", got, ok)
	}
	if b.LastSeq("sub1") != 3 {
		t.Errorf("LastSeq = %d, want 3", b.LastSeq("sub1"))
	}
	if b.PendingCount("sub1") != 0 {
		t.Errorf("PendingCount = %d, want 0", b.PendingCount("sub1"))
	}
}

func TestProcess_Duplicate(t *testing.T) {
	b := NewBuffer()

	b.Process("sub1", 1, payload("a"))
	if got, ok := b.Process("sub1", 1, payload("dup")); ok {
		t.Errorf("duplicate seq applied: %s", got)
	}
	if b.LastSeq("sub1") != 1 {
		t.Errorf("LastSeq = %d, want 1", b.LastSeq("sub1"))
	}
}

func TestProcess_Stale(t *testing.T) {
	b := NewBuffer()

	b.Process("sub1", 1, payload("a"))
	b.Process("sub1", 2, payload("b"))
	if _, ok := b.Process("sub1", 1, payload("old")); ok {
		t.Error("stale seq applied")
	}
}

func TestProcess_PendingDeduplicated(t *testing.T) {
	b := NewBuffer()

	b.Process("sub1", 3, payload("c1"))
	b.Process("sub1", 3, payload("c2"))
	if b.PendingCount("sub1") != 1 {
		t.Errorf("PendingCount = %d, want 1 (dedup by seq)", b.PendingCount("sub1"))
	}
}

func TestProcess_FirstMessageGap(t *testing.T) {
	b := NewBuffer()

	// Fresh subscription expects seq 1; a higher start is buffered, not
	// applied.
	if _, ok := b.Process("sub1", 5, payload("e")); ok {
		t.Error("seq 5 applied on fresh subscription")
	}
	if b.LastSeq("sub1") != 0 {
		t.Errorf("LastSeq = %d, want 0", b.LastSeq("sub1"))
	}
	if b.PendingCount("sub1") != 1 {
		t.Errorf("PendingCount = %d, want 1", b.PendingCount("sub1"))
	}
}

func TestProcess_MultiStepFlush(t *testing.T) {
	b := NewBuffer()

	b.Process("sub1", 2, payload("b"))
	b.Process("sub1", 3, payload("c"))
	b.Process("sub1", 5, payload("e"))

	got, ok := b.Process("sub1", 1, payload("a"))
	if !ok || string(got) != `"c"` {
		t.Errorf("Process(1) = (%s, %v), want (\"c\", true)", got, ok)
	}
	if b.LastSeq("sub1") != 3 {
		t.Errorf("LastSeq = %d, want 3", b.LastSeq("sub1"))
	}
	if b.PendingCount("sub1") != 1 {
		t.Errorf("PendingCount = %d, want 1 (seq 5 still gapped)", b.PendingCount("sub1"))
	}
}

func TestSubscriptionsIndependent(t *testing.T) {
	b := NewBuffer()

	b.Process("sub1", 1, payload("a"))
	if _, ok := b.Process("sub2", 1, payload("x")); !ok {
		t.Error("sub2 seq 1 not applied")
	}
	if b.LastSeq("sub1") != 1 || b.LastSeq("sub2") != 1 {
		t.Errorf("LastSeq = (%d, %d), want (1, 1)",
			b.LastSeq("sub1"), b.LastSeq("sub2"))
	}
}

func TestClear(t *testing.T) {
	b := NewBuffer()

	b.Process("sub1", 1, payload("a"))
	b.Process("sub2", 1, payload("x"))

	b.Clear("sub1")
	if b.LastSeq("sub1") != 0 {
		t.Errorf("LastSeq after Clear = %d, want 0", b.LastSeq("sub1"))
	}
	if b.LastSeq("sub2") != 1 {
		t.Errorf("sub2 affected by Clear(sub1)")
	}

	b.ClearAll()
	if b.LastSeq("sub2") != 0 {
		t.Errorf("LastSeq after ClearAll = %d, want 0", b.LastSeq("sub2"))
	}
}
