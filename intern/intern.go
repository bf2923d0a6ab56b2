// Package intern implements the interned string table (C2): every
// IRI, blank node label, and literal is interned once into a stable
// {hash, length, type flags, datatype hash} value; equality of two
// references is hash-and-length equality, never a byte compare.
package intern

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// TypeFlag is the disjoint type tag carried on every StringRef.
type TypeFlag uint8

const (
	FlagIRI TypeFlag = 1 << iota
	FlagBlankNode
	FlagLiteral
)

// StringRef is the value object described in spec.md §3. It is a
// plain value: copyable, comparable with ==, and owned by nothing —
// the interner owns the byte storage behind it.
type StringRef struct {
	Hash         uint32
	Length       uint32
	TypeFlags    TypeFlag
	DatatypeHash uint32
}

// Equal reports whether two references denote the same interned
// string: hash equality plus length equality, per spec.md §3's
// invariant ("equal strings have equal references").
func (r StringRef) Equal(o StringRef) bool {
	return r.Hash == o.Hash && r.Length == o.Length
}

// IsZero reports whether r is the zero value (never returned by a
// successful Intern call).
func (r StringRef) IsZero() bool {
	return r == StringRef{}
}

// entry is the interner's private record: the reference plus the
// original bytes, needed to resolve collisions and to implement
// Resolve.
type entry struct {
	ref   StringRef
	bytes []byte
}

// Interner maps byte strings to stable StringRefs. Hashing is xxhash,
// a non-cryptographic fast hash (spec.md §4.2); collisions — two
// distinct byte strings sharing a 64-bit hash — are resolved by a byte
// compare against each entry in the hash's bucket, which every lookup
// (hit or miss) performs.
type Interner struct {
	mu     sync.RWMutex
	byHash map[uint64][]*entry
	byRef  map[StringRef]*entry
}

// New returns an empty Interner.
func New() *Interner {
	return &Interner{
		byHash: make(map[uint64][]*entry),
		byRef:  make(map[StringRef]*entry),
	}
}

// Intern returns the StringRef for b, interning it on first sight.
// Byte-identical inputs always return equal StringRefs (bytewise
// equal ⇔ intern(a) == intern(b), spec.md §8).
func (in *Interner) Intern(b []byte, flags TypeFlag, datatypeHash uint32) StringRef {
	h := xxhash.Sum64(b)

	in.mu.RLock()
	if ref, ok := in.lookupLocked(h, b); ok {
		in.mu.RUnlock()
		return ref
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	// Re-check under the write lock: another goroutine may have
	// interned the same bytes between the RUnlock above and this Lock.
	if ref, ok := in.lookupLocked(h, b); ok {
		return ref
	}

	owned := make([]byte, len(b))
	copy(owned, b)
	ref := StringRef{
		Hash:         uint32(h),
		Length:       uint32(len(b)),
		TypeFlags:    flags,
		DatatypeHash: datatypeHash,
	}
	e := &entry{ref: ref, bytes: owned}
	in.byHash[h] = append(in.byHash[h], e)
	in.byRef[ref] = e
	return ref
}

func (in *Interner) lookupLocked(h uint64, b []byte) (StringRef, bool) {
	for _, e := range in.byHash[h] {
		if len(e.bytes) == len(b) && string(e.bytes) == string(b) {
			return e.ref, true
		}
	}
	return StringRef{}, false
}

// Resolve returns the original bytes behind ref, or (nil, false) if
// ref was never produced by this interner. O(1): StringRef itself is
// comparable, so it doubles as the lookup key.
func (in *Interner) Resolve(ref StringRef) ([]byte, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	e, ok := in.byRef[ref]
	if !ok {
		return nil, false
	}
	return e.bytes, true
}

// Len returns the number of distinct strings interned so far.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.byRef)
}
