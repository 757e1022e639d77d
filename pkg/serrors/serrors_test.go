package serrors_test

import (
	"errors"
	"testing"

	"privuploads/pkg/serrors"

	"github.com/stretchr/testify/require"
)

func TestKindsDistinct(t *testing.T) {
	kinds := []serrors.Kind{
		serrors.ErrUnauthorized,
		serrors.ErrForbidden,
		serrors.ErrNotFound,
		serrors.ErrBadRequest,
		serrors.ErrInternal,
		serrors.ErrUnavailable,
		serrors.ErrCorrupt,
	}
	seen := map[serrors.Kind]bool{}
	for i, k := range kinds {
		require.NotNil(t, k, "kind at index %d is nil", i)
		require.False(t, seen[k], "kind at index %d is duplicate: %v", i, k)
		seen[k] = true
	}
}

func TestErrorFormatting(t *testing.T) {
	base := errors.New("connection refused")

	e1 := serrors.With(serrors.ErrNotFound, "file %q not found", "a.pdf")
	require.Equal(t, `file "a.pdf" not found`, e1.Error())

	e2 := serrors.Wrap(serrors.ErrUnavailable, base, "probing directory")
	require.Equal(t, "probing directory: connection refused", e2.Error())

	e3 := serrors.KindOnly(serrors.ErrForbidden)
	require.Equal(t, "FORBIDDEN", e3.Error())
}

func TestIsMatchesKindAndCause(t *testing.T) {
	base := errors.New("boom")
	err := serrors.Wrap(serrors.ErrInternal, base, "resolving uploads root")

	require.ErrorIs(t, err, serrors.ErrInternal)
	require.ErrorIs(t, err, base)
	require.NotErrorIs(t, err, serrors.ErrNotFound)
}

func TestAsFindsWrappedType(t *testing.T) {
	err := serrors.With(serrors.ErrCorrupt, "bad cached verdict")

	var sErr *serrors.Error
	require.ErrorAs(t, error(err), &sErr)
	require.Equal(t, serrors.ErrCorrupt, sErr.Kind())
}
