package batch

import (
	"fmt"
	"math"
)

// FromUint32 converts a batch id from the contract's 32-bit domain.
func FromUint32(v uint32) ID {
	return ID(v)
}

// ToUint32 converts the id to the contract's 32-bit domain. It fails with
// ErrOutOfUint32Range instead of dropping high bits.
func (id ID) ToUint32() (uint32, error) {
	if id > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d", ErrOutOfUint32Range, uint64(id))
	}
	return uint32(id), nil
}

// TruncateUint32 returns the low 32 bits of the id.
//
// Ids past 2^32 alias smaller ones. Prefer ToUint32.
func (id ID) TruncateUint32() uint32 {
	return uint32(id)
}

// EqualUint32 reports whether the low 32 bits of the id equal v. This is the
// comparison the settlement contract performs; it is not ID equality and
// gives false positives once ids exceed the 32-bit range.
func (id ID) EqualUint32(v uint32) bool {
	return id.TruncateUint32() == v
}
