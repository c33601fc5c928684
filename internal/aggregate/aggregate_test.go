package aggregate

import (
	"sync"
	"testing"

	"github.com/stackscope/stackscope/internal/frame"
	"github.com/stackscope/stackscope/internal/snapshot"
	"github.com/stackscope/stackscope/internal/testutil"
)

var (
	rootFrame   = frame.Frame{Function: "main.run", File: "/app/main.go", Line: 12}
	middleFrame = frame.Frame{Function: "main.handle", File: "/app/handler.go", Line: 34}
	leafFrame   = frame.Frame{Function: "main.parse", File: "/app/parser.go", Line: 56}
	otherLeaf   = frame.Frame{Function: "main.encode", File: "/app/encoder.go", Line: 78}
)

func fixedProvider(stacks map[uint64][]frame.Frame) snapshot.Provider {
	return snapshot.Func(func() map[uint64][]frame.Frame {
		return stacks
	})
}

func TestSampleCountsPerPass(t *testing.T) {
	a := New(fixedProvider(map[uint64][]frame.Frame{
		1: {rootFrame, middleFrame, leafFrame},
		2: {rootFrame, otherLeaf},
	}), 0)

	const passes = 7
	for i := 0; i < passes; i++ {
		a.Sample()
	}

	data := a.LiveDataCopy()
	if data.SampleCount != passes {
		t.Fatalf("sample count: got %d, want %d", data.SampleCount, passes)
	}

	var leafTotal uint64
	for _, counts := range data.RootedLeafCounts {
		for _, count := range counts {
			leafTotal += count
		}
	}
	// Two goroutines per pass.
	if want := uint64(passes * 2); leafTotal != want {
		t.Fatalf("leaf total: got %d, want %d", leafTotal, want)
	}

	root := rootFrame.Location()
	want := map[LeafKey]uint64{
		{Location: leafFrame.Location(), Line: leafFrame.Line}: passes,
		{Location: otherLeaf.Location(), Line: otherLeaf.Line}: passes,
	}
	if diff := testutil.Diff(data.RootedLeafCounts[root], want); diff != "" {
		t.Fatalf("rooted leaf counts mismatch: %s", diff)
	}
}

func TestEmptyStackIsNoOp(t *testing.T) {
	a := New(fixedProvider(map[uint64][]frame.Frame{1: {}}), 0)
	a.Sample()
	data := a.LiveDataCopy()
	if data.SampleCount != 1 {
		t.Fatalf("sample count: got %d, want 1", data.SampleCount)
	}
	if len(data.RootedLeafCounts) != 0 || len(data.StackCounts) != 0 {
		t.Fatalf("empty stack must not reach the tables: %+v", data)
	}
}

func TestStackTableCap(t *testing.T) {
	first := map[uint64][]frame.Frame{1: {rootFrame, leafFrame}}
	second := map[uint64][]frame.Frame{1: {rootFrame, middleFrame, leafFrame}}
	current := first
	a := New(snapshot.Func(func() map[uint64][]frame.Frame {
		return current
	}), 1)

	a.Sample()
	current = second
	a.Sample()
	a.Sample()
	current = first
	a.Sample()

	data := a.LiveDataCopy()
	if len(data.StackCounts) != 1 {
		t.Fatalf("distinct stacks: got %d, want 1", len(data.StackCounts))
	}
	// The second shape was seen twice past the cap.
	if data.SkippedStackSamples != 2 {
		t.Fatalf("skipped samples: got %d, want 2", data.SkippedStackSamples)
	}
	// The admitted shape kept counting after the cap was reached.
	if data.StackCounts[0].Count != 2 {
		t.Fatalf("admitted stack count: got %d, want 2", data.StackCounts[0].Count)
	}
}

func TestLiveDataCopyIsIndependent(t *testing.T) {
	a := New(fixedProvider(map[uint64][]frame.Frame{
		1: {rootFrame, leafFrame},
	}), 0)
	a.Sample()

	before := a.LiveDataCopy()
	a.Sample()
	a.Sample()
	after := a.LiveDataCopy()

	root := rootFrame.Location()
	key := LeafKey{Location: leafFrame.Location(), Line: leafFrame.Line}
	if got := before.RootedLeafCounts[root][key]; got != 1 {
		t.Fatalf("copy mutated by later sampling: got %d, want 1", got)
	}
	if got := after.RootedLeafCounts[root][key]; got != 3 {
		t.Fatalf("later copy: got %d, want 3", got)
	}
	if before.StackCounts[0].Count != 1 || after.StackCounts[0].Count != 3 {
		t.Fatalf("stack counts: before %d, after %d",
			before.StackCounts[0].Count, after.StackCounts[0].Count)
	}
}

func TestLiveDataCopyMonotonicUnderConcurrency(t *testing.T) {
	a := New(fixedProvider(map[uint64][]frame.Frame{
		1: {rootFrame, middleFrame, leafFrame},
	}), 0)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				a.Sample()
			}
		}
	}()

	var last uint64
	for i := 0; i < 200; i++ {
		data := a.LiveDataCopy()
		var total uint64
		for _, counts := range data.RootedLeafCounts {
			for _, count := range counts {
				total += count
			}
		}
		if total < last {
			t.Errorf("total went backwards: %d after %d", total, last)
			break
		}
		if total != data.SampleCount {
			// one goroutine per pass, so totals track the pass count
			t.Errorf("torn copy: leaf total %d, sample count %d", total, data.SampleCount)
			break
		}
		last = total
	}
	close(done)
	wg.Wait()
}
