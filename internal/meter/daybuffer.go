package meter

import (
	"fmt"
	"sync"
	"time"
)

// DefaultWidth is the nominal day-view width in pixel columns. At 480 slots
// one bucket covers three minutes of a 24-hour day.
const DefaultWidth = 480

// DayBuffer holds up to width closed buckets, one per horizontal pixel of
// the day view, strictly time-ordered. Appends come from the single producer
// goroutine; readers take consistent snapshots under an RWMutex, so they see
// the buffer either before or after a scroll, never a torn mix.
type DayBuffer struct {
	mu       sync.RWMutex
	slots    []Bucket
	width    int
	scrollBy int
	scrolls  uint64
}

// NewDayBuffer creates a buffer of the given width. When the buffer fills,
// the oldest ceil(width/8) buckets (one eighth of the day) are discarded
// to make room, which reads as the display scrolling left.
func NewDayBuffer(width int) (*DayBuffer, error) {
	if width <= 0 {
		return nil, fmt.Errorf("day buffer width must be positive, got %d", width)
	}
	return &DayBuffer{
		slots:    make([]Bucket, 0, width),
		width:    width,
		scrollBy: (width + 7) / 8,
	}, nil
}

// Width returns the maximum number of closed slots.
func (d *DayBuffer) Width() int { return d.width }

// ScrollBy returns how many buckets one scroll discards.
func (d *DayBuffer) ScrollBy() int { return d.scrollBy }

// Len returns the current number of closed buckets.
func (d *DayBuffer) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.slots)
}

// Scrolls returns how many times the buffer has scrolled.
func (d *DayBuffer) Scrolls() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.scrolls
}

// Append places a closed bucket at the next free slot, scrolling first when
// the buffer is full. Only closed buckets may enter the buffer.
func (d *DayBuffer) Append(b Bucket) error {
	if !b.Closed {
		return fmt.Errorf("cannot append an open bucket (start %s)", b.Start)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.slots) >= d.width {
		// Shift the remaining buckets left over the same backing array;
		// temporal order is untouched.
		n := copy(d.slots, d.slots[d.scrollBy:])
		d.slots = d.slots[:n]
		d.scrolls++
	}

	d.slots = append(d.slots, b)
	return nil
}

// Span returns the wall-clock range covered by the closed buckets.
func (d *DayBuffer) Span() (start, end time.Time) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.slots) == 0 {
		return
	}
	return d.slots[0].Start, d.slots[len(d.slots)-1].End
}

// Buckets returns a snapshot copy of the closed buckets, oldest first.
func (d *DayBuffer) Buckets() []Bucket {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Bucket(nil), d.slots...)
}

// MinMaxTrack projects the closed buckets onto the level track consumed by
// the rendering collaborator.
func (d *DayBuffer) MinMaxTrack() MinMaxTrack {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return NewMinMaxTrack(d.slots)
}

// SpectrumTrack projects the closed buckets onto the mean-spectrum track.
// Empty buckets carry a nil magnitude slice.
func (d *DayBuffer) SpectrumTrack() SpectrumTrack {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return NewSpectrumTrack(d.slots)
}
