// Package window implements a time-windowed sliding aggregation buffer: a
// growable circular buffer of timestamped samples with O(1) count, sum,
// average and latest queries, plus an eviction-ordered history of everything
// that has aged out of the window.
//
// A Buffer has a single logical owner. It does no locking; concurrent use
// requires external mutual exclusion.
package window

import (
	"math"
	"time"

	"github.com/gammazero/deque"
	"github.com/pkg/errors"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
)

// DefaultCapacity is the recommended initial capacity for a Buffer.
const DefaultCapacity = 32

// Buffer holds live samples in a ring over an explicitly sized store.
// Insertion order is time order; the caller is expected (but not required)
// to push in non-decreasing timestamp order. Expire only ever evicts a
// prefix of the oldest samples, so out-of-order input degrades windowing to
// partial eviction rather than failing.
type Buffer struct {
	data []schema.Sample
	head int
	size int
	sum  float64

	expired *deque.Deque[schema.Sample]
}

// New returns an empty Buffer with the given initial capacity. Capacities
// below 1 are clamped to 1. The buffer grows (doubling) as needed and never
// shrinks.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		data:    make([]schema.Sample, capacity),
		expired: deque.New[schema.Sample](0, 64),
	}
}

// Push appends a sample at the logical tail. Amortized O(1). Non-finite
// values are rejected rather than corrupting the running sum.
func (b *Buffer) Push(value float64, timestamp time.Time) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return errors.Errorf("non-finite value: %v", value)
	}

	if b.size == len(b.data) {
		b.grow()
	}

	b.data[(b.head+b.size)%len(b.data)] = schema.Sample{
		Timestamp: timestamp,
		Value:     value,
	}
	b.size++
	b.sum += value
	return nil
}

// grow reallocates the store at double capacity, copying live samples to the
// front in logical order.
func (b *Buffer) grow() {
	data := make([]schema.Sample, 2*len(b.data))
	for i := 0; i < b.size; i++ {
		data[i] = b.data[(b.head+i)%len(b.data)]
	}
	b.data = data
	b.head = 0
}

// Expire evicts live samples with timestamps strictly before cutoff,
// stopping at the first sample at or after it. Evicted samples move to the
// expired history in eviction order. Calling again with the same cutoff is a
// no-op.
func (b *Buffer) Expire(cutoff time.Time) {
	for b.size > 0 {
		s := b.data[b.head]
		if !s.Timestamp.Before(cutoff) {
			break
		}
		b.data[b.head] = schema.Sample{}
		b.head = (b.head + 1) % len(b.data)
		b.size--
		b.sum -= s.Value
		b.expired.PushBack(s)
	}
	if b.size == 0 {
		b.sum = 0 // clear accumulated float error
	}
}

// Len returns the number of live samples.
func (b *Buffer) Len() int {
	return b.size
}

// Sum returns the sum of all live values; 0 when empty.
func (b *Buffer) Sum() float64 {
	return b.sum
}

// Latest returns the newest live value. ok is false when empty.
func (b *Buffer) Latest() (float64, bool) {
	if b.size == 0 {
		return 0, false
	}
	return b.data[(b.head+b.size-1)%len(b.data)].Value, true
}

// Average returns Sum()/Len(). ok is false when empty. No rounding; display
// formatting is the consumer's concern.
func (b *Buffer) Average() (float64, bool) {
	if b.size == 0 {
		return 0, false
	}
	return b.sum / float64(b.size), true
}

// History returns a copy of the live samples in time order. Callers may
// mutate the result freely.
func (b *Buffer) History() []schema.Sample {
	result := make([]schema.Sample, b.size)
	for i := 0; i < b.size; i++ {
		result[i] = b.data[(b.head+i)%len(b.data)]
	}
	return result
}

// Values returns a copy of the live values in the same order as History.
func (b *Buffer) Values() []float64 {
	result := make([]float64, b.size)
	for i := 0; i < b.size; i++ {
		result[i] = b.data[(b.head+i)%len(b.data)].Value
	}
	return result
}

// Expired returns a copy of every sample evicted so far, oldest first. The
// history grows without bound until DrainExpired is called.
func (b *Buffer) Expired() []schema.Sample {
	result := make([]schema.Sample, b.expired.Len())
	for i := 0; i < b.expired.Len(); i++ {
		result[i] = b.expired.At(i)
	}
	return result
}

// ExpiredLen returns the number of samples in the expired history.
func (b *Buffer) ExpiredLen() int {
	return b.expired.Len()
}

// DrainExpired removes and returns the expired history, oldest first. This
// is the only way expired samples leave the buffer; callers use it to bound
// memory over long runs.
func (b *Buffer) DrainExpired() []schema.Sample {
	result := b.Expired()
	b.expired.Clear()
	return result
}
