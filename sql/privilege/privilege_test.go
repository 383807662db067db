package privilege

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackAndUnpack(t *testing.T) {
	bits := Pack(Select|Insert, Select)
	require.True(t, bits.Has(Select))
	require.True(t, bits.Has(Insert))
	require.False(t, bits.Has(Update))
	require.True(t, bits.HasGrantOption(Select))
	require.False(t, bits.HasGrantOption(Insert))
}

func TestGrantOptionNeverExceedsGranted(t *testing.T) {
	// Asking for a grant option on a bit that isn't granted is dropped,
	// matching the "grantable &= granted" normalization.
	bits := Pack(Select, Select|Update)
	require.True(t, bits.HasGrantOption(Select))
	require.False(t, bits.HasGrantOption(Update))
}

func TestClearRemovesBothHalves(t *testing.T) {
	bits := Pack(Select|Insert, Select|Insert)
	cleared := bits.Clear(Select)
	require.False(t, cleared.Has(Select))
	require.False(t, cleared.HasGrantOption(Select))
	require.True(t, cleared.Has(Insert))
	require.True(t, cleared.HasGrantOption(Insert))
	require.False(t, cleared.IsZero())

	fullyCleared := cleared.Clear(Insert)
	require.True(t, fullyCleared.IsZero())
}

func TestMergeOrsBothHalves(t *testing.T) {
	a := Pack(Select, Select)
	b := Pack(Insert, 0)
	merged := a.Merge(b)
	require.True(t, merged.Has(Select))
	require.True(t, merged.Has(Insert))
	require.True(t, merged.HasGrantOption(Select))
	require.False(t, merged.HasGrantOption(Insert))
}

func TestFromLabelDiscriminator(t *testing.T) {
	tests := []struct {
		label string
		want  Kind
	}{
		{"ALTER", Alter},
		{"DELETE", Delete},
		{"EXECUTE", Execute},
		{"SELECT", Select},
		{"UPDATE", Update},
		{"INDEX", Index},
		{"INSERT", Insert},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := FromLabel(tt.label)
			require.True(t, ok)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.label, Label(tt.want))
		})
	}
}

func TestAdmissibleByClass(t *testing.T) {
	require.Equal(t, All&^Execute, Admissible(ClassTableOrView))
	require.Equal(t, Execute, Admissible(ClassProcedure))
}

func TestOrderedKindsIsSelectFirst(t *testing.T) {
	ordered := OrderedKinds()
	require.Equal(t, Select, ordered[0])
	require.Len(t, ordered, 7)
}

func TestStringJoinsLabels(t *testing.T) {
	require.Equal(t, "NONE", Kind(0).String())
	require.Equal(t, "SELECT, INSERT", (Select | Insert).String())
}
