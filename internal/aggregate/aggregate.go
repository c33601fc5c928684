// Package aggregate accumulates stack samples into two statistical tables.
//
// Rooted leaf counts record, per root function, how many samples landed on
// each (function, line) leaf. There is at most one counter per root and
// leaf line, so the table stays small and is never capped.
//
// Stack counts record one counter per unique call stack shape. Distinct
// shapes are combinatorial, so this table is bounded: once MaxStacks
// shapes have been admitted, novel shapes only bump a skipped counter
// while already-admitted shapes keep counting.
package aggregate

import (
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/stackscope/stackscope/internal/frame"
	"github.com/stackscope/stackscope/internal/snapshot"
)

// DefaultMaxStacks bounds the distinct-stack table unless configured
// otherwise.
const DefaultMaxStacks = 10000

type (
	// LeafKey identifies the innermost position of a sampled stack.
	LeafKey struct {
		Location frame.Location
		Line     uint32
	}

	// RootedLeafCounts maps the root (outermost) code location of each
	// sampled stack to per-leaf sample counts.
	RootedLeafCounts map[frame.Location]map[LeafKey]uint64

	// StackSamples is one unique stack shape and the number of times it
	// was observed. Frames are ordered outermost first.
	StackSamples struct {
		Frames []frame.Frame `json:"frames"`
		Count  uint64        `json:"count"`
	}

	// Data is an independent copy of the aggregator's state, taken at one
	// atomic observation point. All read-side views operate on it.
	Data struct {
		RootedLeafCounts    RootedLeafCounts `json:"rooted_leaf_counts"`
		StackCounts         []StackSamples   `json:"stack_counts"`
		SampleCount         uint64           `json:"sample_count"`
		SkippedStackSamples uint64           `json:"skipped_stack_samples"`
	}

	// Aggregator owns both tables and the counters for its lifetime.
	// LiveDataCopy may be called concurrently with Sample; Sample calls
	// themselves are serialized by the trigger strategy driving them.
	Aggregator struct {
		provider  snapshot.Provider
		maxStacks int

		mu      sync.Mutex
		rooted  RootedLeafCounts
		entries []*StackSamples
		index   map[uint64]int // stack fingerprint to entries offset
		samples uint64
		skipped uint64
		hasher  *xxh3.Hasher
	}
)

func New(provider snapshot.Provider, maxStacks int) *Aggregator {
	if maxStacks <= 0 {
		maxStacks = DefaultMaxStacks
	}
	return &Aggregator{
		provider:  provider,
		maxStacks: maxStacks,
		rooted:    make(RootedLeafCounts),
		index:     make(map[uint64]int),
		hasher:    xxh3.New(),
	}
}

// Sample performs one sampling pass: it captures every live goroutine's
// stack once and folds each stack into both tables. It never fails; a
// goroutine the provider could not capture simply does not contribute to
// this pass.
func (a *Aggregator) Sample() {
	stacks := a.provider.Snapshot()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.samples++
	for _, stack := range stacks {
		if len(stack) == 0 {
			continue
		}
		a.recordLeaf(stack)
		a.recordStack(stack)
	}
}

func (a *Aggregator) recordLeaf(stack []frame.Frame) {
	root := stack[0].Location()
	leaf := stack[len(stack)-1]
	counts := a.rooted[root]
	if counts == nil {
		counts = make(map[LeafKey]uint64)
		a.rooted[root] = counts
	}
	counts[LeafKey{Location: leaf.Location(), Line: leaf.Line}]++
}

func (a *Aggregator) recordStack(stack []frame.Frame) {
	fp := a.fingerprint(stack)
	if i, seen := a.index[fp]; seen {
		// An admitted stack keeps counting even once the table is full.
		a.entries[i].Count++
		return
	}
	if len(a.entries) >= a.maxStacks {
		a.skipped++
		return
	}
	frames := make([]frame.Frame, len(stack))
	copy(frames, stack)
	a.index[fp] = len(a.entries)
	a.entries = append(a.entries, &StackSamples{Frames: frames, Count: 1})
}

func (a *Aggregator) fingerprint(stack []frame.Frame) uint64 {
	a.hasher.Reset()
	for _, f := range stack {
		f.WriteToHash(a.hasher)
	}
	return a.hasher.Sum64()
}

// LiveDataCopy returns a copy of both tables and both counters, deep
// enough to be independent of further sampling. The copy is taken under
// the aggregator's lock, so it never observes a half-applied pass and is
// mutually consistent across the tables.
func (a *Aggregator) LiveDataCopy() Data {
	a.mu.Lock()
	defer a.mu.Unlock()

	rooted := make(RootedLeafCounts, len(a.rooted))
	for root, counts := range a.rooted {
		c := make(map[LeafKey]uint64, len(counts))
		for key, count := range counts {
			c[key] = count
		}
		rooted[root] = c
	}
	stacks := make([]StackSamples, len(a.entries))
	for i, entry := range a.entries {
		frames := make([]frame.Frame, len(entry.Frames))
		copy(frames, entry.Frames)
		stacks[i] = StackSamples{Frames: frames, Count: entry.Count}
	}
	return Data{
		RootedLeafCounts:    rooted,
		StackCounts:         stacks,
		SampleCount:         a.samples,
		SkippedStackSamples: a.skipped,
	}
}

// MarshalText lets maps keyed by LeafKey serialize to JSON.
func (k LeafKey) MarshalText() ([]byte, error) {
	b, err := k.Location.MarshalText()
	if err != nil {
		return nil, err
	}
	b = append(b, ':')
	return strconv.AppendUint(b, uint64(k.Line), 10), nil
}
