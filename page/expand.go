package page

// Expansion tracks the single expanded BOM row, keyed by its 1-based page
// number. At most one row is expanded at a time; expansion state is
// independent of pagination state.
type Expansion struct {
	page     int
	expanded bool
}

// Toggle expands the row for pageNo, or collapses it if it was already
// expanded. Expanding one row collapses any other.
func (e *Expansion) Toggle(pageNo int) {
	if e.expanded && e.page == pageNo {
		e.expanded = false
		return
	}
	e.page = pageNo
	e.expanded = true
}

// Expanded reports whether the row for pageNo is expanded.
func (e *Expansion) Expanded(pageNo int) bool {
	return e.expanded && e.page == pageNo
}

// Collapse clears the expansion.
func (e *Expansion) Collapse() {
	e.expanded = false
}

// Sync reconciles the expansion with refreshed page content: the expansion
// survives only if the same page number is still present.
func (e *Expansion) Sync(present []int) {
	if !e.expanded {
		return
	}
	for _, pageNo := range present {
		if pageNo == e.page {
			return
		}
	}
	e.expanded = false
}
