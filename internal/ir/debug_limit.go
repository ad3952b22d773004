package ir

import (
	"os"
	"strconv"
	"sync"
	"sync/atomic"
)

// bottomMaxEnv names the environment variable that caps how many loops
// FormBottomLoops will convert in a single compilation, mirroring the
// original pass's debug-only transform counter (dex2oat.bottom.max). It
// exists to bisect miscompiles during development; unset, there is no cap.
const bottomMaxEnv = "LOOPC_BOTTOM_MAX"

var (
	bottomMaxOnce  sync.Once
	bottomMaxValue int
	bottomMaxSet   bool
)

// bottomMax reads the cap once per process and caches it, since the
// environment cannot meaningfully change between compilations within one
// run and re-parsing it on every loop would be pointless work.
func bottomMax() (limit int, ok bool) {
	bottomMaxOnce.Do(func() {
		raw, present := os.LookupEnv(bottomMaxEnv)
		if !present {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return
		}
		bottomMaxValue = n
		bottomMaxSet = true
	})
	return bottomMaxValue, bottomMaxSet
}

// bottomTransformCount is process-wide, not per-function or per-Apply-call:
// LOOPC_BOTTOM_MAX caps the total number of loops FormBottomLoops will ever
// convert across an entire compiler invocation, matching the original pass's
// debug counter semantics.
var bottomTransformCount int64

func bumpBottomTransformCount() int64 {
	return atomic.AddInt64(&bottomTransformCount, 1)
}
