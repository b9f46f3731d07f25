//go:build !rcuhash_nodebug

package rcuhash

// assertEven and assertOdd guard the RCU epoch parity contract from
// spec.md §4.2/§7: an unbalanced ReadLock/ReadUnlock pair is a contract
// violation, undefined behaviour that release builds (tag
// rcuhash_nodebug) are free to skip checking.
func assertEven(v uint64, where string) {
	if v&1 != 0 {
		panic("rcuhash: " + where + " called with an odd epoch: unbalanced read lock/unlock")
	}
}

func assertOdd(v uint64, where string) {
	if v&1 == 0 {
		panic("rcuhash: " + where + " called with an even epoch: unbalanced read lock/unlock")
	}
}
