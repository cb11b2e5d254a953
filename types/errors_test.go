package types

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestErrKind(t *testing.T) {
	err := Errorf(KindPaymentFailed, "signature rejected")
	require.Equal(t, KindPaymentFailed, Kind(err))

	// Wrapping with xerrors context keeps the kind recoverable.
	wrapped := xerrors.Errorf("stage 2: %w", err)
	require.Equal(t, KindPaymentFailed, Kind(wrapped))

	// Re-tagging keeps the innermost classification.
	retagged := WrapErr(KindUploadFailed, wrapped)
	require.Equal(t, KindPaymentFailed, Kind(retagged))

	require.Equal(t, KindUnknown, Kind(xerrors.New("anonymous")))
	require.NoError(t, WrapErr(KindReadFailed, nil))
}
