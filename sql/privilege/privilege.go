// Package privilege defines the closed set of privilege kinds an
// authorization object can grant, and the packed 32-bit cache-bits word
// used throughout sql/grantgraph and sql/privcache.
//
// The bit layout follows the teacher's Permission pattern (auth.Permission
// in the example pack): a small integer type with one bit per named kind,
// combined with bitwise OR, and a String() method for diagnostics.
package privilege

import (
	"strings"

	"github.com/CUBRID/cubrid-sub018/internal/bitset"
)

// Kind is a single privilege bit. The iota order fixes the bit layout;
// the error-selection scan order is orderedKinds below.
type Kind uint32

const (
	Select Kind = 1 << iota
	Insert
	Update
	Delete
	Alter
	Index
	Execute
)

// GrantShift is the bit offset between a privilege's basic bit and its
// grant-option bit within a cache-bits word.
const GrantShift = 7

// All is the OR of every privilege bit ("grant-all").
const All Kind = Select | Insert | Update | Delete | Alter | Index | Execute

// orderedKinds lists every kind in the fixed scan order used by error
// selection (§4.4 step 4): basic bits before grant-option bits, SELECT
// first.
var orderedKinds = []Kind{Select, Alter, Update, Insert, Delete, Index, Execute}

// OrderedKinds returns the fixed scan order used when selecting the most
// informative authorization-failure error.
func OrderedKinds() []Kind {
	out := make([]Kind, len(orderedKinds))
	copy(out, orderedKinds)
	return out
}

// label is the on-disk textual representation of a kind, bit-exact with
// spec.md §6.
var label = map[Kind]string{
	Select:  "SELECT",
	Insert:  "INSERT",
	Update:  "UPDATE",
	Delete:  "DELETE",
	Alter:   "ALTER",
	Index:   "INDEX",
	Execute: "EXECUTE",
}

// String renders a (possibly combined) mask as a comma-joined label list.
func (k Kind) String() string {
	var parts []string
	for _, kind := range orderedKinds {
		if k&kind != 0 {
			parts = append(parts, label[kind])
		}
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, ", ")
}

// Label returns the single on-disk textual label for exactly one bit.
// The caller must pass a single-bit mask; a multi-bit mask returns "".
func Label(k Kind) string {
	return label[k]
}

// FromLabel recovers a Kind from its on-disk label using the
// first-letter-plus-third-letter discriminator from spec.md §4.1,
// preserved for on-disk compatibility instead of a plain map lookup.
func FromLabel(s string) (Kind, bool) {
	if len(s) == 0 {
		return 0, false
	}
	switch s[0] {
	case 'A':
		return Alter, true
	case 'D':
		return Delete, true
	case 'E':
		return Execute, true
	case 'S':
		return Select, true
	case 'U':
		return Update, true
	case 'I':
		if len(s) < 3 {
			return 0, false
		}
		switch s[2] {
		case 'D': // INDEX
			return Index, true
		case 'S': // INSERT
			return Insert, true
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}

// ObjectClass distinguishes which privilege kinds are admissible on an
// object (spec.md §3 "Privilege kinds").
type ObjectClass int

const (
	ClassTableOrView ObjectClass = iota
	ClassProcedure
)

// Admissible returns the mask of privilege kinds that may be granted on
// objects of the given class.
func Admissible(class ObjectClass) Kind {
	switch class {
	case ClassProcedure:
		return Execute
	default:
		return All &^ Execute
	}
}

// CacheBits packs a granted mask and a grant-option mask into the single
// 32-bit word used by grant entries and privilege-cache entries.
type CacheBits uint32

// Invalid is the sentinel for a stale/uncomputed privilege-cache entry.
const Invalid CacheBits = 0xFFFFFFFF

// Pack combines a basic privilege mask with the subset of it that also
// carries the grant option, placing the grant-option bits GrantShift
// positions higher, matching AU_GRANT_SHIFT in the original engine.
func Pack(granted, grantable Kind) CacheBits {
	grantable &= granted
	return CacheBits(bitset.Pack(uint32(granted), uint32(grantable), GrantShift))
}

// Basic returns the granted-privilege half of a cache-bits word.
func (c CacheBits) Basic() Kind {
	return Kind(uint32(c)) & All
}

// GrantOption returns the grant-option half of a cache-bits word,
// shifted back down to the basic bit positions.
func (c CacheBits) GrantOption() Kind {
	return Kind(bitset.Unpack(uint32(c), GrantShift)) & All
}

// Has reports whether every bit of want is present in the basic mask.
func (c CacheBits) Has(want Kind) bool {
	return bitset.Has(uint32(c.Basic()), uint32(want))
}

// HasGrantOption reports whether every bit of want carries the grant
// option.
func (c CacheBits) HasGrantOption(want Kind) bool {
	return bitset.Has(uint32(c.GrantOption()), uint32(want))
}

// Clear returns c with every bit of mask (basic and its grant-option
// twin) removed — the inverse operation used by revoke.
func (c CacheBits) Clear(mask Kind) CacheBits {
	clearMask := bitset.Pack(uint32(mask), uint32(mask), GrantShift)
	return CacheBits(bitset.Clear(uint32(c), clearMask))
}

// IsZero reports whether no privilege bit at all remains set.
func (c CacheBits) IsZero() bool {
	return c.Basic() == 0
}

// Merge ORs two cache-bits words together, used when a principal's own
// grant entries are combined with those of its groups.
func (c CacheBits) Merge(other CacheBits) CacheBits {
	return CacheBits(uint32(c) | uint32(other))
}
