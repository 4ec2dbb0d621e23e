package apierr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_HTTPStatusMapping(t *testing.T) {
	t.Parallel()

	require.Equal(t, 400, KindValidation.HTTPStatus())
	require.Equal(t, 404, KindNotFound.HTTPStatus())
	require.Equal(t, 409, KindConflict.HTTPStatus())
	require.Equal(t, 500, KindInternal.HTTPStatus())
}

func TestError_IsMatchesByKind(t *testing.T) {
	t.Parallel()

	err := New(KindNotFound, "run abc123 not found")
	require.True(t, errors.Is(err, New(KindNotFound, "")))
	require.False(t, errors.Is(err, New(KindConflict, "")))
}

func TestWrap_UnwrapPreservesChain(t *testing.T) {
	t.Parallel()

	inner := errors.New("disk full")
	wrapped := Wrap(KindInternal, "failed to persist receipt", inner)

	require.ErrorIs(t, wrapped, inner)
	require.Equal(t, inner, errors.Unwrap(wrapped))
}

func TestKindOf_DefaultsToInternal(t *testing.T) {
	t.Parallel()

	require.Equal(t, KindInternal, KindOf(errors.New("plain error")))
	require.Equal(t, KindConflict, KindOf(New(KindConflict, "run is still active")))
}
