package diag

import (
	"math"
	"sort"

	"fortio.org/safecast"
)

type Bag struct {
	items []Diagnostic
	max   uint16

	dropped    int
	droppedErr bool
}

// NewBag creates a bag holding at most max diagnostics. Values outside
// uint16 are clamped.
func NewBag(max int) *Bag {
	limit, err := safecast.Conv[uint16](max)
	if err != nil {
		limit = math.MaxUint16
		if max < 0 {
			limit = 0
		}
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(int(limit), 64)),
		max:   limit,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		b.dropped++
		b.droppedErr = b.droppedErr || d.Severity.Fails()
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// Dropped reports how many diagnostics Add refused because of the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	if b.droppedErr {
		return true
	}
	for i := range b.items {
		if b.items[i].Severity.Fails() {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Notes flattens the bag into notes, used to nest one bag under a parent
// diagnostic. Nested notes of each item follow it in order.
func (b *Bag) Notes() []Note {
	out := make([]Note, 0, len(b.items))
	for _, d := range b.items {
		out = append(out, Note{Span: d.Primary, Msg: d.Message})
		out = append(out, d.Notes...)
	}
	return out
}

// Merge объединяет диагностики из другого Bag.
func (b *Bag) Merge(other *Bag) {
	newTotal := len(b.items) + len(other.items)
	if limit, err := safecast.Conv[uint16](newTotal); err == nil && limit > b.max {
		b.max = limit
	} else if err != nil {
		b.max = math.MaxUint16
	}
	b.items = append(b.items, other.items...)
}

// Sort сортирует диагностики по: file, start, end, severity (desc), code (asc)
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Filter keeps diagnostics accepted by keep.
func (b *Bag) Filter(keep func(Diagnostic) bool) {
	items := b.items[:0]
	for _, d := range b.items {
		if keep(d) {
			items = append(items, d)
		}
	}
	b.items = items
}
