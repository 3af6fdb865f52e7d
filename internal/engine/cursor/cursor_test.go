package cursor

import "testing"

// Selection Tests

func TestNewSelection(t *testing.T) {
	s := NewSelection(10, 20)
	if s.Anchor != 10 || s.Head != 20 {
		t.Errorf("expected anchor=10, head=20, got anchor=%d, head=%d", s.Anchor, s.Head)
	}
}

func TestNewCursorSelection(t *testing.T) {
	s := NewCursorSelection(15)
	if s.Anchor != 15 || s.Head != 15 {
		t.Errorf("expected anchor=head=15, got anchor=%d, head=%d", s.Anchor, s.Head)
	}
	if !s.IsEmpty() {
		t.Error("cursor selection should be empty")
	}
}

func TestSelectionStartEnd(t *testing.T) {
	forward := NewSelection(10, 20)
	backward := NewSelection(20, 10)

	for _, s := range []Selection{forward, backward} {
		if s.Start() != 10 || s.End() != 20 {
			t.Errorf("%v: expected start=10, end=20, got start=%d, end=%d", s, s.Start(), s.End())
		}
		if s.Len() != 10 {
			t.Errorf("%v: expected len 10, got %d", s, s.Len())
		}
		if r := s.Range(); r.Start != 10 || r.End != 20 {
			t.Errorf("%v: expected range [10:20), got %v", s, r)
		}
	}

	if forward.IsBackward() {
		t.Error("forward selection should not be backward")
	}
	if !backward.IsBackward() {
		t.Error("backward selection should be backward")
	}
}

func TestSelectionOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Selection
		want bool
	}{
		{"overlapping ranges", NewSelection(0, 10), NewSelection(5, 15), true},
		{"disjoint ranges", NewSelection(0, 10), NewSelection(20, 30), false},
		{"touching ranges", NewSelection(0, 10), NewSelection(10, 20), false},
		{"caret inside range", NewSelection(0, 10), NewCursorSelection(5), true},
		{"caret at range start", NewSelection(5, 10), NewCursorSelection(5), false},
		{"caret at range end", NewSelection(5, 10), NewCursorSelection(10), false},
		{"same caret", NewCursorSelection(4), NewCursorSelection(4), true},
		{"different carets", NewCursorSelection(4), NewCursorSelection(5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("%v.Overlaps(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("%v.Overlaps(%v) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestSelectionMerge(t *testing.T) {
	merged := NewSelection(15, 5).Merge(NewSelection(10, 20))
	if merged.Anchor != 5 || merged.Head != 20 {
		t.Errorf("expected merged 5→20, got %v", merged)
	}
}

func TestCursorSetMergesOverlappingBackwardForward(t *testing.T) {
	cs := NewCursorSetFromSlice([]Selection{
		NewSelection(6, 2),
		NewSelection(9, 4),
	})

	if cs.Count() != 1 {
		t.Fatalf("expected one merged selection, got %v", cs.All())
	}
	if got := cs.Primary(); !got.Equals(NewSelection(2, 9)) {
		t.Errorf("expected forward 2→9, got %v", got)
	}
}

func TestSelectionClamp(t *testing.T) {
	s := NewSelection(-5, 50).Clamp(30)
	if s.Anchor != 0 || s.Head != 30 {
		t.Errorf("expected clamped 0→30, got %v", s)
	}
}

func TestSelectionString(t *testing.T) {
	tests := []struct {
		sel  Selection
		want string
	}{
		{NewCursorSelection(3), "Cursor(3)"},
		{NewSelection(3, 6), "Selection(3→6)"},
		{NewSelection(6, 3), "Selection(6←3)"},
	}

	for _, tt := range tests {
		if got := tt.sel.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

// CursorSet Tests

func TestNewEmptyCursorSet(t *testing.T) {
	cs := NewEmptyCursorSet()
	if cs.Count() != 0 {
		t.Errorf("expected empty set, got %d selections", cs.Count())
	}
	if cs.HasSelection() {
		t.Error("empty set should have no selection")
	}
	if !cs.Primary().Equals(Selection{}) {
		t.Errorf("expected zero primary, got %v", cs.Primary())
	}
}

func TestCursorSetAddSorts(t *testing.T) {
	cs := NewEmptyCursorSet()
	cs.Add(NewCursorSelection(30))
	cs.Add(NewCursorSelection(10))
	cs.Add(NewSelection(25, 20))

	want := []Selection{
		NewCursorSelection(10),
		NewSelection(25, 20),
		NewCursorSelection(30),
	}
	got := cs.All()
	if len(got) != len(want) {
		t.Fatalf("expected %d selections, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equals(want[i]) {
			t.Errorf("selection %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestCursorSetAddMerge(t *testing.T) {
	cs := NewCursorSet(NewSelection(0, 10))
	cs.Add(NewSelection(5, 15))

	if cs.Count() != 1 {
		t.Fatalf("expected 1 merged selection, got %d", cs.Count())
	}
	if sel := cs.Primary(); sel.Start() != 0 || sel.End() != 15 {
		t.Errorf("expected merged [0:15), got %v", sel)
	}
}

func TestCursorSetDuplicateCaret(t *testing.T) {
	cs := NewEmptyCursorSet()
	cs.Add(NewCursorSelection(4))
	cs.Add(NewCursorSelection(4))

	if cs.Count() != 1 {
		t.Errorf("expected duplicate carets to collapse, got %d", cs.Count())
	}
}

func TestAdjacentSelectionsStaySeparate(t *testing.T) {
	cs := NewCursorSetFromSlice([]Selection{
		NewSelection(10, 20),
		NewSelection(0, 10),
		NewCursorSelection(20),
	})

	if cs.Count() != 3 {
		t.Fatalf("expected touching selections to stay separate, got %d", cs.Count())
	}
	if cs.Get(0).Start() != 0 || cs.Get(1).Start() != 10 || cs.Get(2).Start() != 20 {
		t.Errorf("unexpected order: %v", cs.All())
	}
}

func TestCaretSortsBeforeRangeAtSameStart(t *testing.T) {
	cs := NewCursorSetFromSlice([]Selection{
		NewSelection(3, 6),
		NewCursorSelection(3),
	})

	if cs.Count() != 2 {
		t.Fatalf("expected 2 selections, got %d", cs.Count())
	}
	if !cs.Get(0).IsEmpty() {
		t.Errorf("expected caret first, got %v", cs.Get(0))
	}
}

func TestCursorSetCaretInsideRangeMerges(t *testing.T) {
	cs := NewCursorSetFromSlice([]Selection{
		NewSelection(3, 6),
		NewCursorSelection(4),
	})

	if cs.Count() != 1 {
		t.Fatalf("expected caret to merge into range, got %v", cs.All())
	}
	if !cs.Primary().Equals(NewSelection(3, 6)) {
		t.Errorf("expected [3→6], got %v", cs.Primary())
	}
}

func TestCursorSetKeepsDirectionOfDuplicates(t *testing.T) {
	cs := NewCursorSetFromSlice([]Selection{
		NewSelection(6, 3),
		NewSelection(6, 3),
	})

	if cs.Count() != 1 || !cs.Primary().IsBackward() {
		t.Errorf("expected one backward selection, got %v", cs.All())
	}
}

func TestCursorSetClamp(t *testing.T) {
	cs := NewCursorSetFromSlice([]Selection{
		NewCursorSelection(50),
		NewSelection(5, 100),
	})
	cs.Clamp(30)

	for _, sel := range cs.All() {
		if sel.End() > 30 {
			t.Errorf("selection %v exceeds clamp bound", sel)
		}
	}
}

func TestCursorSetClone(t *testing.T) {
	cs := NewCursorSet(NewCursorSelection(10))
	clone := cs.Clone()
	clone.Add(NewCursorSelection(20))

	if cs.Count() != 1 {
		t.Error("original should be unchanged by clone modification")
	}
	if clone.Count() != 2 {
		t.Error("clone should have 2 selections")
	}
}

func TestCursorSetForEach(t *testing.T) {
	cs := NewCursorSetFromSlice([]Selection{
		NewCursorSelection(9),
		NewCursorSelection(3),
	})

	var offsets []ByteOffset
	cs.ForEach(func(index int, sel Selection) {
		if index != len(offsets) {
			t.Errorf("unexpected index %d", index)
		}
		offsets = append(offsets, sel.Head)
	})

	if len(offsets) != 2 || offsets[0] != 3 || offsets[1] != 9 {
		t.Errorf("expected offsets [3 9], got %v", offsets)
	}
}

func TestCursorSetEquals(t *testing.T) {
	a := NewCursorSetFromSlice([]Selection{NewCursorSelection(1), NewSelection(3, 5)})
	b := NewCursorSetFromSlice([]Selection{NewSelection(3, 5), NewCursorSelection(1)})

	if !a.Equals(b) {
		t.Error("sets with same selections should be equal")
	}
	if a.Equals(nil) {
		t.Error("set should not equal nil")
	}
	b.Add(NewCursorSelection(9))
	if a.Equals(b) {
		t.Error("sets with different counts should not be equal")
	}
}
