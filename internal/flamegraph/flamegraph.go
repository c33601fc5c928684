// Package flamegraph folds the unique-stack table into the textual
// format consumed by flame graph tooling
// (https://github.com/brendangregg/FlameGraph).
package flamegraph

import (
	"sort"
	"strconv"
	"strings"

	"github.com/stackscope/stackscope/internal/aggregate"
	"github.com/stackscope/stackscope/internal/frame"
)

// FlameMap folds every unique stack into a semicolon-joined sequence of
// "root`file`function" tokens, outermost frame first, with the root
// frame's function name prefixed to every token. Distinct raw stacks
// that fold to the same key (they differ only in line numbers) have
// their counts summed.
func FlameMap(data aggregate.Data) map[string]uint64 {
	folded := make(map[string]uint64, len(data.StackCounts))
	for _, stack := range data.StackCounts {
		if len(stack.Frames) == 0 {
			continue
		}
		folded[foldKey(stack.Frames)] += stack.Count
	}
	return folded
}

func foldKey(frames []frame.Frame) string {
	root := frames[0].Function
	var b strings.Builder
	for i, f := range frames {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(root)
		b.WriteByte('`')
		b.WriteString(f.File)
		b.WriteByte('`')
		b.WriteString(f.Function)
	}
	return b.String()
}

// Folded renders a flame map one "key count" line at a time, heaviest
// stacks first, ties ordered by key so the output is deterministic.
func Folded(folded map[string]uint64) []byte {
	keys := make([]string, 0, len(folded))
	for key := range folded {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if folded[keys[i]] != folded[keys[j]] {
			return folded[keys[i]] > folded[keys[j]]
		}
		return keys[i] < keys[j]
	})
	var b []byte
	for _, key := range keys {
		b = append(b, key...)
		b = append(b, ' ')
		b = strconv.AppendUint(b, folded[key], 10)
		b = append(b, '\n')
	}
	return b
}
