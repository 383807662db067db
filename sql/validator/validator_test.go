package validator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
	"github.com/CUBRID/cubrid-sub018/sql/catalog"
	"github.com/CUBRID/cubrid-sub018/sql/privilege"
)

type stubCatalog struct {
	views     map[string]string
	principal map[string]bool
	owner     catalog.PrincipalRef
}

func (s *stubCatalog) ResolveClass(ctx context.Context, name string) (catalog.ObjectRef, error) {
	return catalog.ObjectRef{Kind: catalog.KindClass, Name: strings.ToUpper(name)}, nil
}
func (s *stubCatalog) OwnerOf(ctx context.Context, object catalog.ObjectRef) (catalog.PrincipalRef, error) {
	return s.owner, nil
}
func (s *stubCatalog) ViewDefinition(ctx context.Context, name string) (string, bool, error) {
	def, ok := s.views[strings.ToUpper(name)]
	return def, ok, nil
}
func (s *stubCatalog) PrincipalExists(ctx context.Context, name string) bool {
	return s.principal[strings.ToUpper(name)]
}

func TestScenario4CyclicViewReferenceIsRejected(t *testing.T) {
	cat := &stubCatalog{views: map[string]string{
		"T": "SELECT a, b FROM V",
	}}
	v := New(NewConfig(), cat)

	err := v.DetectCyclicView(context.Background(), "V", "SELECT a, b FROM T")
	require.Error(t, err)
	require.True(t, autherrors.ErrCyclicReferenceViewSpec.Is(err))
}

func TestNonCyclicViewReferencePasses(t *testing.T) {
	cat := &stubCatalog{views: map[string]string{
		"T": "SELECT a, b FROM BASE",
	}}
	v := New(NewConfig(), cat)

	err := v.DetectCyclicView(context.Background(), "V", "SELECT a, b FROM T")
	require.NoError(t, err)
}

func TestScenario5PartitionRangeOutOfOrderIsRejected(t *testing.T) {
	v := New(NewConfig(), &stubCatalog{})
	spec := PartitionSpec{
		Kind: PartitionRange,
		Partitions: []PartitionDef{
			{Name: "p1", RangeBound: RangeBound{Value: 10}},
			{Name: "p2", RangeBound: RangeBound{Value: 5}},
		},
	}
	err := v.ValidatePartitionSpec(spec)
	require.Error(t, err)
	require.True(t, autherrors.ErrPartitionRangeError.Is(err))
}

func TestPartitionRangeStrictlyIncreasingPasses(t *testing.T) {
	v := New(NewConfig(), &stubCatalog{})
	spec := PartitionSpec{
		Kind: PartitionRange,
		Partitions: []PartitionDef{
			{Name: "p1", RangeBound: RangeBound{Value: 5}},
			{Name: "p2", RangeBound: RangeBound{Value: 10}},
			{Name: "p3", RangeBound: RangeBound{IsMaxValue: true}},
		},
	}
	require.NoError(t, v.ValidatePartitionSpec(spec))
}

func TestPartitionMaxValueOnlyAllowedLast(t *testing.T) {
	v := New(NewConfig(), &stubCatalog{})
	spec := PartitionSpec{
		Kind: PartitionRange,
		Partitions: []PartitionDef{
			{Name: "p1", RangeBound: RangeBound{IsMaxValue: true}},
			{Name: "p2", RangeBound: RangeBound{Value: 10}},
		},
	}
	err := v.ValidatePartitionSpec(spec)
	require.True(t, autherrors.ErrPartitionRangeError.Is(err))
}

func TestPartitionCountBoundary(t *testing.T) {
	v := New(NewConfig(WithMaxPartitions(2)), &stubCatalog{})
	ok := PartitionSpec{Kind: PartitionHash, Partitions: []PartitionDef{{Name: "p1"}, {Name: "p2"}}}
	require.NoError(t, v.ValidatePartitionSpec(ok))

	tooMany := PartitionSpec{Kind: PartitionHash, Partitions: []PartitionDef{{Name: "p1"}, {Name: "p2"}, {Name: "p3"}}}
	err := v.ValidatePartitionSpec(tooMany)
	require.True(t, autherrors.ErrInvalidPartitionSize.Is(err))
}

func TestListPartitionDuplicateValueRejected(t *testing.T) {
	v := New(NewConfig(), &stubCatalog{})
	spec := PartitionSpec{
		Kind: PartitionList,
		Partitions: []PartitionDef{
			{Name: "p1", ListValues: []interface{}{"A", "B"}},
			{Name: "p2", ListValues: []interface{}{"B", "C"}},
		},
	}
	err := v.ValidatePartitionSpec(spec)
	require.True(t, autherrors.ErrPartitionDuplicateValue.Is(err))
}

func TestScenario6AssignmentArityMismatchRejected(t *testing.T) {
	require.NoError(t, ValidateAssignmentArity(2, 2))
	err := ValidateAssignmentArity(2, 3)
	require.True(t, autherrors.ErrIllegalLHS.Is(err))
}

func TestOrderByPositionBoundary(t *testing.T) {
	require.NoError(t, ValidateOrderByPosition(1, 3))
	require.NoError(t, ValidateOrderByPosition(3, 3))
	require.True(t, autherrors.ErrSortSpecRangeErr.Is(ValidateOrderByPosition(0, 3)))
	require.True(t, autherrors.ErrSortSpecRangeErr.Is(ValidateOrderByPosition(4, 3)))
}

func TestValidatePrivilegeKindsRejectsExecuteOnTable(t *testing.T) {
	err := ValidatePrivilegeKinds([]string{"EXECUTE"}, privilege.ClassTableOrView)
	require.True(t, autherrors.ErrAuthorizationFailure.Is(err))

	require.NoError(t, ValidatePrivilegeKinds([]string{"SELECT", "INSERT"}, privilege.ClassTableOrView))
	require.NoError(t, ValidatePrivilegeKinds([]string{"EXECUTE"}, privilege.ClassProcedure))
}

func TestValidateGranteesRejectsUnknownPrincipal(t *testing.T) {
	cat := &stubCatalog{principal: map[string]bool{"ALICE": true}}
	v := New(NewConfig(), cat)

	require.NoError(t, v.ValidateGrantees(context.Background(), []string{"alice"}))
	err := v.ValidateGrantees(context.Background(), []string{"ghost"})
	require.True(t, autherrors.ErrInvalidUser.Is(err))
}

func TestUnionArmExactMatchNeedsNoCast(t *testing.T) {
	castLeft, castRight, err := ValidateUnionArm("INT", "INT", CoercibilityImplicit, CoercibilityImplicit, 0, 1)
	require.NoError(t, err)
	require.False(t, castLeft)
	require.False(t, castRight)
}

func TestUnionArmMismatchInsertsCastOnMoreCoercibleSide(t *testing.T) {
	castLeft, castRight, err := ValidateUnionArm("INT", "VARCHAR", CoercibilityImplicit, CoercibilityCoercible, 0, 1)
	require.NoError(t, err)
	require.False(t, castLeft)
	require.True(t, castRight)
}
