package validator

import (
	"fmt"

	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
)

// PartitionKind is the closed set of partitioning strategies from
// spec.md §4.5.
type PartitionKind int

const (
	PartitionHash PartitionKind = iota
	PartitionList
	PartitionRange
)

// RangeBound is one partition's upper bound for RANGE partitioning.
// IsMaxValue represents the literal MAXVALUE keyword, permitted only
// on the last partition.
type RangeBound struct {
	Value      float64
	IsMaxValue bool
}

// PartitionDef is one partition of a PARTITION BY clause.
type PartitionDef struct {
	Name       string
	RangeBound RangeBound     // used when Kind == PartitionRange
	ListValues []interface{} // used when Kind == PartitionList
}

// PartitionSpec is the full PARTITION BY clause under validation.
type PartitionSpec struct {
	Kind       PartitionKind
	Partitions []PartitionDef
}

// ValidatePartitionSpec checks a PARTITION BY clause against spec.md
// §4.5's per-kind rules, and the MAX_PARTITIONS boundary from §8.
func (v *Validator) ValidatePartitionSpec(spec PartitionSpec) error {
	if len(spec.Partitions) > v.Config.MaxPartitions {
		return autherrors.ErrInvalidPartitionSize.New(len(spec.Partitions), v.Config.MaxPartitions)
	}
	if len(spec.Partitions) == 0 {
		return autherrors.ErrInvalidPartitionSize.New(0, v.Config.MaxPartitions)
	}

	switch spec.Kind {
	case PartitionHash:
		return nil // count already bounded above; HASH has no further shape rule.
	case PartitionList:
		return validateListPartitions(spec.Partitions)
	case PartitionRange:
		return validateRangePartitions(spec.Partitions)
	default:
		return autherrors.ErrGeneric.New("unknown partition kind")
	}
}

func validateListPartitions(partitions []PartitionDef) error {
	seen := make(map[string]bool)
	for _, p := range partitions {
		for _, v := range p.ListValues {
			key := fmt.Sprintf("%v", v)
			if seen[key] {
				return autherrors.ErrPartitionDuplicateValue.New(v)
			}
			seen[key] = true
		}
	}
	return nil
}

func validateRangePartitions(partitions []PartitionDef) error {
	var prev float64
	havePrev := false
	for i, p := range partitions {
		if p.RangeBound.IsMaxValue {
			if i != len(partitions)-1 {
				return autherrors.ErrPartitionRangeError.New(p.Name)
			}
			continue
		}
		if havePrev && p.RangeBound.Value <= prev {
			return autherrors.ErrPartitionRangeError.New(p.Name)
		}
		prev = p.RangeBound.Value
		havePrev = true
	}
	return nil
}
