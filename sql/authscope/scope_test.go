package authscope

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBeginEndToggles(t *testing.T) {
	s := New()
	require.False(t, s.Disabled())

	end := s.Begin()
	require.True(t, s.Disabled())
	end()
	require.False(t, s.Disabled())
}

func TestNestedScopesOnlyCloseOnOutermostEnd(t *testing.T) {
	s := New()
	endOuter := s.Begin()
	endInner := s.Begin()
	require.True(t, s.Disabled())

	endInner()
	require.True(t, s.Disabled(), "outer scope should still be open")

	endOuter()
	require.False(t, s.Disabled())
}

func TestTeardownGuaranteedOnErrorPath(t *testing.T) {
	s := New()
	errQuery := errors.New("internal query failed")
	err := func() (err error) {
		end := s.Begin()
		defer end()
		if err := assertAlwaysRuns(s); err != nil {
			return err
		}
		return errQuery
	}()
	require.ErrorIs(t, err, errQuery)
	require.False(t, s.Disabled())
}

func assertAlwaysRuns(s *Scope) error {
	if !s.Disabled() {
		panic("scope should be disabled inside the window")
	}
	return nil
}

func TestEndIsIdempotent(t *testing.T) {
	s := New()
	end := s.Begin()
	end()
	end()
	require.False(t, s.Disabled())
}
