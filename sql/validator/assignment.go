package validator

import "github.com/CUBRID/cubrid-sub018/sql/autherrors"

// ValidateAssignmentArity checks a multi-column assignment
// `(a, b, ...) = <rhs>` for arity match (spec.md §4.5 "Assignment/
// insert compatibility"; §8 scenario 6).
func ValidateAssignmentArity(targetCount, valueCount int) error {
	if targetCount != valueCount {
		return autherrors.ErrIllegalLHS.New(targetCount, valueCount)
	}
	return nil
}

// ValidateOrderByPosition checks an integer ORDER BY item against the
// select list length (spec.md §4.5 "Order-by validation"; §8
// "Boundaries").
func ValidateOrderByPosition(position, selectListLen int) error {
	if position < 1 || position > selectListLen {
		return autherrors.ErrSortSpecRangeErr.New(position, selectListLen)
	}
	return nil
}
