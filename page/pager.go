// Package page implements the pagination and row-expansion state for the
// result viewers. Three independent pagers slice the preview arrays; page
// sizes are fixed, not user-configurable.
package page

// Fixed page sizes for the three viewer slices.
const (
	ImagePageSize  = 12
	BomPageSize    = 20
	VlmBomPageSize = 10
)

// Pager tracks a zero-based page index over a slice of known length.
// The index is always clamped to [0, Pages()-1]; mutating the underlying
// length via SetLength re-clamps so a refresh can never strand the viewer
// on an out-of-range page.
type Pager struct {
	size   int
	length int
	page   int
}

// NewPager creates a pager with the given fixed page size.
// Sizes below 1 are treated as 1.
func NewPager(size int) *Pager {
	if size < 1 {
		size = 1
	}
	return &Pager{size: size}
}

// SetLength updates the underlying array length and re-clamps the page index.
func (p *Pager) SetLength(n int) {
	if n < 0 {
		n = 0
	}
	p.length = n
	p.clamp()
}

// Size returns the fixed page size.
func (p *Pager) Size() int { return p.size }

// Length returns the underlying array length.
func (p *Pager) Length() int { return p.length }

// Page returns the current zero-based page index.
func (p *Pager) Page() int { return p.page }

// Pages returns the page count: ceil(length/size), minimum 1.
// An empty array still has one (empty) page so the index stays valid.
func (p *Pager) Pages() int {
	if p.length == 0 {
		return 1
	}
	return (p.length + p.size - 1) / p.size
}

// CanNext reports whether a next page exists.
func (p *Pager) CanNext() bool { return p.page < p.Pages()-1 }

// CanPrev reports whether a previous page exists.
func (p *Pager) CanPrev() bool { return p.page > 0 }

// Next advances one page. No-op on the last page.
func (p *Pager) Next() {
	if p.CanNext() {
		p.page++
	}
}

// Prev goes back one page. No-op on the first page.
func (p *Pager) Prev() {
	if p.CanPrev() {
		p.page--
	}
}

// Bounds returns the half-open slice window [lo, hi) for the current page.
func (p *Pager) Bounds() (lo, hi int) {
	lo = p.page * p.size
	if lo > p.length {
		lo = p.length
	}
	hi = lo + p.size
	if hi > p.length {
		hi = p.length
	}
	return lo, hi
}

func (p *Pager) clamp() {
	last := p.Pages() - 1
	if p.page > last {
		p.page = last
	}
	if p.page < 0 {
		p.page = 0
	}
}
