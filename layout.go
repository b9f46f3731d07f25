package rcuhash

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize bounds the padding inserted into each bucket to keep adjacent buckets' writer mutexes from false-sharing a cache
// line, mirroring the teacher's own cache-line-padding convention
// (mapof_opt_cachelinesize.go).
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})
