package showmeta

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CUBRID/cubrid-sub018/sql/autherrors"
)

func TestDefaultRegistryCoversEveryCommand(t *testing.T) {
	r := DefaultRegistry()
	want := []ShowType{
		ShowVolumeHeader, ShowActiveLogHeader, ShowArchiveLogHeader,
		ShowSlottedPageHeader, ShowSlottedPageSlots, ShowAccessStatus,
		ShowHeapHeader, ShowHeapCapacity, ShowAllHeapHeader, ShowAllHeapCapacity,
		ShowIndexHeader, ShowIndexCapacity, ShowAllIndexHeader, ShowAllIndexCapacity,
		ShowGlobalCriticalSection, ShowJobQueues, ShowTimezones, ShowFullTimezones,
		ShowTransactionTables, ShowThreads,
	}
	for _, w := range want {
		_, err := r.Lookup(w)
		require.NoError(t, err, "missing metadata for %s", w)
	}
}

func TestLookupUnknownCommandFails(t *testing.T) {
	r := DefaultRegistry()
	_, err := r.Lookup(ShowType("NOT A COMMAND"))
	require.Error(t, err)
}

func TestAuthorizeRejectsNonDBAForRestrictedCommand(t *testing.T) {
	r := DefaultRegistry()
	m, err := r.Lookup(ShowThreads)
	require.NoError(t, err)

	require.True(t, autherrors.ErrDBAOnly.Is(m.Authorize(false)))
	require.NoError(t, m.Authorize(true))
}

func TestTimezonesIsNotDBAOnly(t *testing.T) {
	r := DefaultRegistry()
	m, err := r.Lookup(ShowTimezones)
	require.NoError(t, err)
	require.NoError(t, m.Authorize(false))
}

func TestCheckArgsRejectsMissingRequired(t *testing.T) {
	r := DefaultRegistry()
	m, err := r.Lookup(ShowVolumeHeader)
	require.NoError(t, err)

	require.Error(t, m.CheckArgs(map[string]string{}))
	require.NoError(t, m.CheckArgs(map[string]string{"volume_id": "0"}))
}

func TestCheckArgsRejectsUnknownArgument(t *testing.T) {
	r := DefaultRegistry()
	m, err := r.Lookup(ShowVolumeHeader)
	require.NoError(t, err)

	err = m.CheckArgs(map[string]string{"volume_id": "0", "bogus": "1"})
	require.Error(t, err)
}

func TestAllHeapHeaderDoesNotRequireClassName(t *testing.T) {
	r := DefaultRegistry()
	m, err := r.Lookup(ShowAllHeapHeader)
	require.NoError(t, err)
	require.NoError(t, m.CheckArgs(map[string]string{}))
}
