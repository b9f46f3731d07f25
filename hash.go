package rcuhash

import (
	"math/rand/v2"
	"unsafe"
)

// hashFunc is the low-level (pointer, seed) -> hash shape Go's own builtin
// map hasher uses internally. Adapted from the teacher's defaultHasher
// (mapof.go), trimmed to the key-only case: this module copies values out
// on every lookup rather than keeping an equality function around for
// in-place updates.
type hashFunc func(unsafe.Pointer, uintptr) uintptr

// defaultHasher builds a hash(K) uint64 function by reusing Go's own
// builtin map hash implementation for K, the same trick the teacher uses
// (mapof.go's defaultHasherUsingBuiltIn) to avoid writing and maintaining
// a bespoke hasher per key type. A random per-table seed, drawn the same
// way the teacher seeds its MapOf (math/rand/v2), defends against
// hash-flooding across different HashTable instances.
func defaultHasher[K comparable]() func(K) uint64 {
	var m map[K]struct{}
	keyHash := builtinMapHasher(m)
	seed := uintptr(rand.Uint64())

	return func(key K) uint64 {
		return uint64(keyHash(noescape(unsafe.Pointer(&key)), seed))
	}
}

func builtinMapHasher[K comparable](m map[K]struct{}) hashFunc {
	return iTypeOf(m).mapType().Hasher
}

// The following mirror the subset of Go's runtime type layout needed to
// reach a map type's built-in Hasher field, exactly as the teacher does
// in mapof.go's iType/iMapType/iTypeOf. This relies on Go's internal type
// representation and should be re-checked against each Go release, same
// caveat the teacher documents.
type iTFlag uint8
type iKind uint8
type iNameOff int32
type iTypeOff int32

type iType struct {
	Size_       uintptr
	PtrBytes    uintptr
	Hash        uint32
	TFlag       iTFlag
	Align_      uint8
	FieldAlign_ uint8
	Kind_       iKind
	Equal       func(unsafe.Pointer, unsafe.Pointer) bool
	GCData      *byte
	Str         iNameOff
	PtrToThis   iTypeOff
}

func (t *iType) mapType() *iMapType {
	return (*iMapType)(unsafe.Pointer(t))
}

type iMapType struct {
	iType
	Key    *iType
	Elem   *iType
	Group  *iType
	Hasher func(unsafe.Pointer, uintptr) uintptr
}

type iEmptyInterface struct {
	Type *iType
	Data unsafe.Pointer
}

func iTypeOf(a any) *iType {
	eface := *(*iEmptyInterface)(unsafe.Pointer(&a))
	return (*iType)(noescape(unsafe.Pointer(eface.Type)))
}
