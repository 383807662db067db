// Package showmeta restores the SHOW-command metadata registry
// described only by contract in spec.md §6 ("SHOW ... introspection
// commands whose result schemas are fixed per command"). It is a
// SUPPLEMENT per SPEC_FULL.md §6: original_source/show_meta.c /
// show_meta.h enumerate the exact column layouts, which the spec.md
// distillation dropped down to a one-line mention.
//
// No storage-engine internals are implemented here — only the
// authorization-adjacent contract each SHOW command carries: whether
// it requires administrative membership, its declared argument arity/
// types, and an optional semantic-check hook (mirroring
// pt_check_access_status in the original).
package showmeta

import (
	"context"
	"strconv"

	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
)

// ColumnType is the closed set of column types a SHOW result column
// may declare.
type ColumnType int

const (
	ColumnInt ColumnType = iota
	ColumnBigint
	ColumnVarchar
	ColumnFloat
	ColumnTimestamp
)

// Column is one column of a SHOW command's fixed result schema.
type Column struct {
	Name string
	Type ColumnType
}

// ArgType is the closed set of argument types a SHOW command accepts.
type ArgType int

const (
	ArgString ArgType = iota
	ArgInt
)

// NamedArg is one positional or keyword argument a SHOW command
// accepts, with its declared type.
type NamedArg struct {
	Name     string
	Type     ArgType
	Required bool
}

// OrderBySpec names a default ordering column for a SHOW command's
// result set.
type OrderBySpec struct {
	Column string
	Desc   bool
}

// SemanticCheck runs command-specific semantic validation over the
// argument values supplied with a SHOW statement, analogous to the
// original's pt_check_access_status hook (e.g. a transaction-id
// argument must name a live transaction).
type SemanticCheck func(ctx context.Context, args map[string]string) error

// ShowType identifies one registered SHOW command.
type ShowType string

const (
	ShowVolumeHeader          ShowType = "VOLUME HEADER"
	ShowActiveLogHeader       ShowType = "ACTIVE LOG HEADER"
	ShowArchiveLogHeader      ShowType = "ARCHIVE LOG HEADER"
	ShowSlottedPageHeader     ShowType = "SLOTTED PAGE HEADER"
	ShowSlottedPageSlots      ShowType = "SLOTTED PAGE SLOTS"
	ShowAccessStatus          ShowType = "ACCESS STATUS"
	ShowHeapHeader            ShowType = "HEAP HEADER"
	ShowHeapCapacity          ShowType = "HEAP CAPACITY"
	ShowAllHeapHeader         ShowType = "ALL HEAP HEADER"
	ShowAllHeapCapacity       ShowType = "ALL HEAP CAPACITY"
	ShowIndexHeader           ShowType = "INDEX HEADER"
	ShowIndexCapacity         ShowType = "INDEX CAPACITY"
	ShowAllIndexHeader        ShowType = "ALL INDEX HEADER"
	ShowAllIndexCapacity      ShowType = "ALL INDEX CAPACITY"
	ShowGlobalCriticalSection ShowType = "GLOBAL CRITICAL SECTION"
	ShowJobQueues             ShowType = "JOB QUEUES"
	ShowTimezones             ShowType = "TIMEZONES"
	ShowFullTimezones         ShowType = "TIMEZONES FULL"
	ShowTransactionTables     ShowType = "TRANSACTION TABLES"
	ShowThreads               ShowType = "THREADS"
)

// Metadata is the registry entry for one SHOW command, mirroring
// SHOWSTMT_METADATA in show_meta.h.
type Metadata struct {
	Type          ShowType
	DBAOnly       bool
	Columns       []Column
	OrderBy       []OrderBySpec
	Args          []NamedArg
	SemanticCheck SemanticCheck
}

// Registry is the full set of SHOW commands known to the engine,
// keyed by ShowType.
type Registry map[ShowType]Metadata

// Lookup resolves name to its metadata entry, or an error if the
// command is not registered.
func (r Registry) Lookup(name ShowType) (Metadata, error) {
	m, ok := r[name]
	if !ok {
		return Metadata{}, autherrors.ErrGeneric.New("unknown SHOW command " + string(name))
	}
	return m, nil
}

// CheckArgs verifies that every required argument is present, that no
// unknown argument was supplied, and that every ArgInt argument parses
// as an integer, before any SemanticCheck runs.
func (m Metadata) CheckArgs(args map[string]string) error {
	declared := make(map[string]NamedArg, len(m.Args))
	for _, a := range m.Args {
		declared[a.Name] = a
	}
	for name, a := range declared {
		if a.Required {
			if _, ok := args[name]; !ok {
				return autherrors.ErrGeneric.New("missing required argument " + name)
			}
		}
	}
	for name, value := range args {
		a, ok := declared[name]
		if !ok {
			return autherrors.ErrGeneric.New("unknown argument " + name)
		}
		if a.Type == ArgInt {
			if _, err := strconv.Atoi(value); err != nil {
				return autherrors.ErrGeneric.New("argument " + name + " must be an integer")
			}
		}
	}
	return nil
}

// Authorize enforces the DBAOnly gate; callerIsDBA is supplied by the
// caller's session state.
func (m Metadata) Authorize(callerIsDBA bool) error {
	if m.DBAOnly && !callerIsDBA {
		return autherrors.ErrDBAOnly.New(string(m.Type))
	}
	return nil
}
