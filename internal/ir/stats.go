package ir

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// StatKind enumerates the fixed set of events the optimizer counts. Like the
// ART optimizing compiler's stats table this is a small closed enum indexed
// into an array, not a map keyed by arbitrary strings: every pass declares
// its counters up front instead of inventing string keys at call sites.
type StatKind int

const (
	StatFormBottomLoop StatKind = iota
	StatFormBottomLoopRejectedNoPreheader
	StatFormBottomLoopRejectedMultiBackEdge
	StatFormBottomLoopRejectedNoExit
	StatFormBottomLoopRejectedUnclonableHeader
	StatFormBottomLoopRejectedPhiCycle
	StatFormBottomLoopAlreadyBottomTested
	StatFormBottomLoopCapped
	StatConstantFolded
	StatDeadCodeEliminated
	StatCommonSubexpressionEliminated

	statKindCount
)

var statNames = [statKindCount]string{
	StatFormBottomLoop:                         "FormBottomLoop",
	StatFormBottomLoopRejectedNoPreheader:       "FormBottomLoopRejectedNoPreheader",
	StatFormBottomLoopRejectedMultiBackEdge:     "FormBottomLoopRejectedMultiBackEdge",
	StatFormBottomLoopRejectedNoExit:            "FormBottomLoopRejectedNoExit",
	StatFormBottomLoopRejectedUnclonableHeader:  "FormBottomLoopRejectedUnclonableHeader",
	StatFormBottomLoopRejectedPhiCycle:          "FormBottomLoopRejectedPhiCycle",
	StatFormBottomLoopAlreadyBottomTested:       "FormBottomLoopAlreadyBottomTested",
	StatFormBottomLoopCapped:                    "FormBottomLoopCapped",
	StatConstantFolded:                          "ConstantFolded",
	StatDeadCodeEliminated:                      "DeadCodeEliminated",
	StatCommonSubexpressionEliminated:           "CommonSubexpressionEliminated",
}

func (k StatKind) String() string {
	if k < 0 || k >= statKindCount {
		return "Unknown"
	}
	return statNames[k]
}

// Stats is a fixed-size, concurrency-safe counter bank. One Stats is shared
// by every function in a Program so the CLI's whole-module statistics dump
// under `-v` is just one pass over the array.
type Stats struct {
	counters [statKindCount]int64
}

func NewStats() *Stats { return &Stats{} }

// Bump increments kind's counter by one and returns the new value.
func (s *Stats) Bump(kind StatKind) int64 {
	return atomic.AddInt64(&s.counters[kind], 1)
}

// Count returns kind's current value.
func (s *Stats) Count(kind StatKind) int64 {
	return atomic.LoadInt64(&s.counters[kind])
}

// String renders every nonzero counter, one per line, sorted by enum order.
func (s *Stats) String() string {
	var b strings.Builder
	for k := StatKind(0); k < statKindCount; k++ {
		if v := s.Count(k); v != 0 {
			fmt.Fprintf(&b, "%s: %d\n", k, v)
		}
	}
	return b.String()
}
