package snapshot

import (
	"bytes"
	"runtime"
	"strconv"

	"github.com/stackscope/stackscope/internal/frame"
)

type (
	// Provider returns, on demand, the current call stack of every live
	// goroutine except the caller's own, keyed by goroutine id. Stacks are
	// ordered outermost (root) first.
	Provider interface {
		Snapshot() map[uint64][]frame.Frame
	}

	// Func adapts a plain function to the Provider interface.
	Func func() map[uint64][]frame.Frame

	// Runtime is the default Provider, backed by runtime.Stack. The capture
	// buffer is retained and grown geometrically so that steady-state
	// sampling does not allocate. Not safe for concurrent use; the
	// aggregator serializes calls.
	Runtime struct {
		buf []byte
	}
)

func (f Func) Snapshot() map[uint64][]frame.Frame {
	return f()
}

const (
	initialBufSize = 64 << 10
	maxBufSize     = 16 << 20
)

func NewRuntime() *Runtime {
	return &Runtime{buf: make([]byte, initialBufSize)}
}

func (r *Runtime) Snapshot() map[uint64][]frame.Frame {
	for {
		n := runtime.Stack(r.buf, true)
		if n < len(r.buf) {
			return parse(r.buf[:n])
		}
		if len(r.buf) >= maxBufSize {
			// Truncated capture: parse what we have, dropping the last,
			// possibly partial, goroutine record.
			return parse(r.buf)
		}
		r.buf = make([]byte, len(r.buf)*2)
	}
}

var (
	goroutineHeader = []byte("goroutine ")
	createdByPrefix = []byte("created by ")
	elidedMarker    = []byte("...additional frames elided...")
)

// parse decodes the text produced by runtime.Stack(buf, true). The first
// record is always the calling goroutine and is dropped so the sampler
// never observes itself. Records that do not decode cleanly are skipped
// for this capture only.
func parse(buf []byte) map[uint64][]frame.Frame {
	stacks := make(map[uint64][]frame.Frame)
	for i, record := range bytes.Split(buf, []byte("\n\n")) {
		if i == 0 {
			continue
		}
		id, stack, ok := parseRecord(record)
		if !ok || len(stack) == 0 {
			continue
		}
		stacks[id] = stack
	}
	return stacks
}

func parseRecord(record []byte) (uint64, []frame.Frame, bool) {
	lines := bytes.Split(bytes.TrimRight(record, "\n"), []byte("\n"))
	if len(lines) == 0 || !bytes.HasPrefix(lines[0], goroutineHeader) {
		return 0, nil, false
	}
	header := lines[0][len(goroutineHeader):]
	sp := bytes.IndexByte(header, ' ')
	if sp < 0 {
		return 0, nil, false
	}
	id, err := strconv.ParseUint(string(header[:sp]), 10, 64)
	if err != nil {
		return 0, nil, false
	}

	// Frame pairs are listed innermost first; the trailing "created by"
	// pair describes the go statement, not a running frame. Past the
	// runtime's traceback limit the outermost frames are replaced by an
	// elided-frames marker: the innermost frames parsed so far are still
	// exact, with the outermost parsed frame standing in as root.
	var stack []frame.Frame
	for j := 1; j+1 < len(lines); j += 2 {
		if bytes.HasPrefix(lines[j], createdByPrefix) ||
			bytes.Equal(lines[j], elidedMarker) {
			break
		}
		f, ok := parseFrame(lines[j], lines[j+1])
		if !ok {
			return 0, nil, false
		}
		stack = append(stack, f)
	}
	reverse(stack)
	return id, stack, true
}

func parseFrame(funcLine, fileLine []byte) (frame.Frame, bool) {
	if len(fileLine) == 0 || fileLine[0] != '\t' {
		return frame.Frame{}, false
	}
	function := funcLine
	if paren := bytes.LastIndexByte(function, '('); paren > 0 {
		function = function[:paren]
	}
	loc := fileLine[1:]
	if sp := bytes.IndexByte(loc, ' '); sp >= 0 {
		loc = loc[:sp]
	}
	colon := bytes.LastIndexByte(loc, ':')
	if colon <= 0 {
		return frame.Frame{}, false
	}
	line, err := strconv.ParseUint(string(loc[colon+1:]), 10, 32)
	if err != nil {
		return frame.Frame{}, false
	}
	return frame.Frame{
		Function: string(function),
		File:     string(loc[:colon]),
		Line:     uint32(line),
	}, true
}

func reverse(stack []frame.Frame) {
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
}
