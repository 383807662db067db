package validator

import "github.com/CUBRID/cubrid-sub018/sql/autherrors"

// Coercibility is the four-level collation-coercibility lattice from
// spec.md §4.5 ("Union/intersection/difference compatibility"),
// ordered least to most coercible.
type Coercibility int

const (
	CoercibilityExplicit Coercibility = iota
	CoercibilityImplicit
	CoercibilityCoercible
	CoercibilityNotCoercible
)

// leastCoercible returns the less coercible (more "sticky") of the two,
// matching SQL's collation-derivation rule: the less coercible side
// wins and the more coercible side gets the implicit cast.
func leastCoercible(a, b Coercibility) Coercibility {
	if a < b {
		return a
	}
	return b
}

// ValidateUnionArm checks one pair of corresponding columns across two
// arms of a UNION/INTERSECT/EXCEPT for type compatibility, returning
// which side (if either) needs an inferred CAST inserted.
func ValidateUnionArm(leftType, rightType string, leftCoerc, rightCoerc Coercibility, leftArm, rightArm int) (castLeft, castRight bool, err error) {
	if leftType == rightType {
		return false, false, nil
	}
	if leftType == "NULL" || rightType == "NULL" {
		return false, false, nil
	}

	winner := leastCoercible(leftCoerc, rightCoerc)
	if winner == CoercibilityNotCoercible && leftCoerc == rightCoerc {
		return false, false, autherrors.ErrUnionIncompatibleTypes.New(leftArm, rightArm)
	}

	if leftCoerc <= rightCoerc {
		return false, true, nil
	}
	return true, false, nil
}
