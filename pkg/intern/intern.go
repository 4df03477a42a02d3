// Package intern provides a string interner that hands out stable 16-bit ids.
//
// Strings live in one append-only byte arena. Lookup goes through a Robin
// Hood open-addressing table whose buckets carry a 16-bit hash, the string
// length and the displacement, so most mismatches are rejected without
// touching the arena.
package intern

import (
	"bytes"
	"errors"
)

// NoID is never assigned to a string.
const NoID uint16 = 0xFFFF

// Limits.
const (
	MaxStrings = 65535 // ids 0..65534
	MaxLength  = 255
)

// Errors returned by Insert. None of them changes the interned strings.
var (
	ErrStringTooLong  = errors.New("intern: string longer than 255 bytes")
	ErrTooManyStrings = errors.New("intern: more than 65535 strings")
	ErrHashCrowded    = errors.New("intern: too many strings share one hash")
)

const (
	initialBuckets = 128
	maxBuckets     = 1 << 18
	maxDist        = 255
	fibonacci32    = 0x9E3779B1
	fibonacci64    = 0x9E3779B97F4A7C15
)

// bucket is one table slot. dist 0 marks an empty slot, 1 the home slot.
type bucket struct {
	id     uint16
	hash   uint16
	length uint8
	dist   uint8
}

type span struct {
	off uint32
	n   uint8
}

// Interner maps byte strings to dense ids. It is not safe for concurrent use.
type Interner struct {
	arena   []byte
	strs    []span
	buckets []bucket
	shift   uint32
}

// New returns an empty interner.
func New() *Interner {
	in := &Interner{}
	in.reset(initialBuckets)
	return in
}

func (in *Interner) reset(n int) {
	in.buckets = make([]bucket, n)
	in.shift = 64 - log2(n)
}

func log2(n int) uint32 {
	var b uint32
	for n > 1 {
		n >>= 1
		b++
	}
	return b
}

// Hash folds FNV-1a 32 down to 16 bits with a Fibonacci multiply. The
// table index is a second, 64-bit Fibonacci hash of this value.
func Hash(b []byte) uint16 {
	h := uint32(2166136261)
	for _, c := range b {
		h ^= uint32(c)
		h *= 16777619
	}
	return uint16((h * fibonacci32) >> 16)
}

func (in *Interner) home(h uint16) int {
	return int((uint64(h) * fibonacci64) >> in.shift)
}

// Len returns the number of interned strings.
func (in *Interner) Len() int {
	return len(in.strs)
}

// Bytes returns the interned bytes for id. The slice aliases the arena and
// must not be modified.
func (in *Interner) Bytes(id uint16) []byte {
	if int(id) >= len(in.strs) {
		return nil
	}
	s := in.strs[id]
	return in.arena[s.off : s.off+uint32(s.n) : s.off+uint32(s.n)]
}

// String returns the interned text for id, or "" for an unknown id.
func (in *Interner) String(id uint16) string {
	return string(in.Bytes(id))
}

// Search returns the id of b without inserting it.
func (in *Interner) Search(b []byte) (uint16, bool) {
	if len(b) > MaxLength {
		return NoID, false
	}
	return in.find(b, Hash(b))
}

// SearchString is Search for a string.
func (in *Interner) SearchString(s string) (uint16, bool) {
	return in.Search([]byte(s))
}

func (in *Interner) find(b []byte, h uint16) (uint16, bool) {
	mask := len(in.buckets) - 1
	i := in.home(h)
	for dist := 1; dist <= maxDist; dist++ {
		bk := in.buckets[i]
		if bk.dist == 0 || int(bk.dist) < dist {
			return NoID, false
		}
		if bk.hash == h && int(bk.length) == len(b) && bytes.Equal(in.Bytes(bk.id), b) {
			return bk.id, true
		}
		i = (i + 1) & mask
	}
	return NoID, false
}

// Insert returns the id of b, interning it first if needed.
func (in *Interner) Insert(b []byte) (uint16, error) {
	if len(b) > MaxLength {
		return NoID, ErrStringTooLong
	}
	h := Hash(b)
	if id, ok := in.find(b, h); ok {
		return id, nil
	}
	return in.add(b, h)
}

// InsertString is Insert for a string.
func (in *Interner) InsertString(s string) (uint16, error) {
	return in.Insert([]byte(s))
}

// InsertUnique interns b without looking for an existing copy. The caller
// guarantees b is not yet present; it is used to preload fixed tables whose
// ids must be consecutive.
func (in *Interner) InsertUnique(b []byte) (uint16, error) {
	if len(b) > MaxLength {
		return NoID, ErrStringTooLong
	}
	return in.add(b, Hash(b))
}

func (in *Interner) add(b []byte, h uint16) (uint16, error) {
	if len(in.strs) >= MaxStrings {
		return NoID, ErrTooManyStrings
	}
	// Equal hashes share a home slot at every table size.
	if in.sameHash(h) >= maxDist {
		return NoID, ErrHashCrowded
	}
	if (len(in.strs)+1)*4 > len(in.buckets)*3 {
		in.grow()
	}

	id := uint16(len(in.strs))
	carry := bucket{id: id, hash: h, length: uint8(len(b))}
	for !in.robinHood(carry, false) {
		if !in.grow() {
			return NoID, ErrHashCrowded
		}
	}
	in.robinHood(carry, true)
	in.strs = append(in.strs, span{off: uint32(len(in.arena)), n: uint8(len(b))})
	in.arena = append(in.arena, b...)
	return id, nil
}

// robinHood runs the Robin Hood insertion of b and reports whether it completes
// within maxDist. With write false the table is only read, so a failed run
// leaves it untouched.
func (in *Interner) robinHood(b bucket, write bool) bool {
	mask := len(in.buckets) - 1
	i := in.home(b.hash)
	b.dist = 1
	for {
		cur := in.buckets[i]
		if cur.dist == 0 {
			if write {
				in.buckets[i] = b
			}
			return true
		}
		if cur.dist < b.dist {
			if write {
				in.buckets[i] = b
			}
			b = cur
		}
		if b.dist == maxDist {
			return false
		}
		b.dist++
		i = (i + 1) & mask
	}
}

// sameHash counts the buckets in h's run that carry hash h.
func (in *Interner) sameHash(h uint16) int {
	mask := len(in.buckets) - 1
	i := in.home(h)
	n := 0
	for dist := 1; dist <= maxDist; dist++ {
		bk := in.buckets[i]
		if bk.dist == 0 || int(bk.dist) < dist {
			break
		}
		if bk.hash == h {
			n++
		}
		i = (i + 1) & mask
	}
	return n
}

// grow doubles the table and reinserts every live bucket from its home slot.
// It reports false, keeping the current table, when the table is at its
// maximum size or a bucket does not fit in the larger one.
func (in *Interner) grow() bool {
	n := len(in.buckets) * 2
	if n > maxBuckets {
		return false
	}
	old, oldShift := in.buckets, in.shift
	in.reset(n)
	for _, b := range old {
		if b.dist == 0 {
			continue
		}
		if !in.robinHood(b, true) {
			in.buckets, in.shift = old, oldShift
			return false
		}
	}
	return true
}

// Stats describes the table for diagnostics and tests.
type Stats struct {
	Strings int
	Buckets int
	Bytes   int
	MaxDist int
}

// Stats reports table occupancy.
func (in *Interner) Stats() Stats {
	st := Stats{Strings: len(in.strs), Buckets: len(in.buckets), Bytes: len(in.arena)}
	for _, b := range in.buckets {
		if int(b.dist) > st.MaxDist {
			st.MaxDist = int(b.dist)
		}
	}
	return st
}
