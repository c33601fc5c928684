package aggregate

import (
	"sort"

	"github.com/stackscope/stackscope/internal/frame"
)

// Hotspot is a leaf position ranked by how often it was sampled across
// all roots.
type Hotspot struct {
	Location frame.Location `json:"location"`
	Line     uint32         `json:"line"`
	Count    uint64         `json:"count"`
}

// RootedSamplesByFile sums leaf counts per source file, grouped by root.
// Useful for answering questions like "which files are hot in which
// thread of work?".
func (d Data) RootedSamplesByFile() map[frame.Location]map[string]uint64 {
	byFile := make(map[frame.Location]map[string]uint64, len(d.RootedLeafCounts))
	for root, counts := range d.RootedLeafCounts {
		cur := make(map[string]uint64)
		for key, count := range counts {
			cur[key.Location.File] += count
		}
		byFile[root] = cur
	}
	return byFile
}

// RootedSamplesByLine filters leaf counts to one file and sums them per
// line, grouped by root. Useful for side-by-side views of source code
// and samples. Entries for other files are dropped, not merged.
func (d Data) RootedSamplesByLine(file string) map[frame.Location]map[uint32]uint64 {
	byLine := make(map[frame.Location]map[uint32]uint64, len(d.RootedLeafCounts))
	for root, counts := range d.RootedLeafCounts {
		cur := make(map[uint32]uint64)
		for key, count := range counts {
			if key.Location.File != file {
				continue
			}
			cur[key.Line] += count
		}
		byLine[root] = cur
	}
	return byLine
}

// Hotspots merges leaf counts across all roots and returns them ordered
// from most to least sampled. Tie order between equal counts is not part
// of the contract.
func (d Data) Hotspots() []Hotspot {
	merged := make(map[LeafKey]uint64)
	for _, counts := range d.RootedLeafCounts {
		for key, count := range counts {
			merged[key] += count
		}
	}
	hotspots := make([]Hotspot, 0, len(merged))
	for key, count := range merged {
		hotspots = append(hotspots, Hotspot{
			Location: key.Location,
			Line:     key.Line,
			Count:    count,
		})
	}
	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].Count > hotspots[j].Count
	})
	return hotspots
}

// Convenience pass-throughs; each takes its own consistent copy.

func (a *Aggregator) RootedSamplesByFile() map[frame.Location]map[string]uint64 {
	return a.LiveDataCopy().RootedSamplesByFile()
}

func (a *Aggregator) RootedSamplesByLine(file string) map[frame.Location]map[uint32]uint64 {
	return a.LiveDataCopy().RootedSamplesByLine(file)
}

func (a *Aggregator) Hotspots() []Hotspot {
	return a.LiveDataCopy().Hotspots()
}
