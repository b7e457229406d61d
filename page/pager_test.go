package page

import "testing"

func TestPagerPages(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		length int
		want   int
	}{
		{"empty array has one page", 12, 0, 1},
		{"exact fit", 12, 24, 2},
		{"remainder adds a page", 12, 25, 3},
		{"single item", 10, 1, 1},
		{"one under a boundary", 20, 19, 1},
		{"one over a boundary", 20, 21, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPager(tt.size)
			p.SetLength(tt.length)
			if got := p.Pages(); got != tt.want {
				t.Errorf("Pages() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPagerNextPrevBounds(t *testing.T) {
	p := NewPager(10)
	p.SetLength(25) // 3 pages

	if p.CanPrev() {
		t.Error("CanPrev() = true on first page")
	}
	p.Prev() // no-op
	if p.Page() != 0 {
		t.Errorf("Page() = %d after Prev on first page, want 0", p.Page())
	}

	p.Next()
	p.Next()
	if p.Page() != 2 {
		t.Errorf("Page() = %d, want 2", p.Page())
	}
	if p.CanNext() {
		t.Error("CanNext() = true on last page")
	}
	p.Next() // no-op
	if p.Page() != 2 {
		t.Errorf("Page() = %d after Next on last page, want 2", p.Page())
	}
}

func TestPagerReclampOnShrink(t *testing.T) {
	p := NewPager(10)
	p.SetLength(100)
	for range 9 {
		p.Next()
	}
	if p.Page() != 9 {
		t.Fatalf("Page() = %d, want 9", p.Page())
	}

	// Content refresh shrinks the array; the index must re-clamp.
	p.SetLength(15)
	if p.Page() != 1 {
		t.Errorf("Page() = %d after shrink to 15, want 1", p.Page())
	}

	p.SetLength(0)
	if p.Page() != 0 {
		t.Errorf("Page() = %d after shrink to 0, want 0", p.Page())
	}
}

func TestPagerIndexAlwaysInRange(t *testing.T) {
	// Property: after any mutation of L, page is in [0, Pages()-1].
	p := NewPager(12)
	lengths := []int{0, 1, 11, 12, 13, 100, 3, 0, 50, 24}
	for _, l := range lengths {
		p.SetLength(l)
		p.Next()
		p.Next()
		if p.Page() < 0 || p.Page() > p.Pages()-1 {
			t.Errorf("length %d: page %d out of range [0, %d]", l, p.Page(), p.Pages()-1)
		}
	}
}

func TestPagerBounds(t *testing.T) {
	p := NewPager(12)
	p.SetLength(30)

	lo, hi := p.Bounds()
	if lo != 0 || hi != 12 {
		t.Errorf("Bounds() = [%d, %d), want [0, 12)", lo, hi)
	}

	p.Next()
	p.Next()
	lo, hi = p.Bounds()
	if lo != 24 || hi != 30 {
		t.Errorf("Bounds() = [%d, %d) on last page, want [24, 30)", lo, hi)
	}
}

func TestExpansionToggle(t *testing.T) {
	var e Expansion

	if e.Expanded(1) {
		t.Error("fresh expansion reports page 1 expanded")
	}

	e.Toggle(3)
	if !e.Expanded(3) {
		t.Error("page 3 not expanded after Toggle")
	}

	// Expanding another row collapses the first: at most one at a time.
	e.Toggle(5)
	if e.Expanded(3) {
		t.Error("page 3 still expanded after toggling page 5")
	}
	if !e.Expanded(5) {
		t.Error("page 5 not expanded")
	}

	// Toggling the expanded row collapses it.
	e.Toggle(5)
	if e.Expanded(5) {
		t.Error("page 5 still expanded after second Toggle")
	}
}

func TestExpansionSync(t *testing.T) {
	var e Expansion
	e.Toggle(4)

	// Same row still present after refresh: expansion survives.
	e.Sync([]int{1, 2, 3, 4, 5})
	if !e.Expanded(4) {
		t.Error("expansion lost although page 4 is still present")
	}

	// Row gone after refresh: expansion clears.
	e.Sync([]int{1, 2, 3})
	if e.Expanded(4) {
		t.Error("expansion retained although page 4 disappeared")
	}
}
