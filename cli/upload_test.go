package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/go-filpay/types"
)

func TestParseMetadata(t *testing.T) {
	m, err := parseMetadata(nil)
	require.NoError(t, err)
	require.Nil(t, m)

	m, err = parseMetadata([]string{"origin=camera", "album=trip=2026"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"origin": "camera", "album": "trip=2026"}, m)

	_, err = parseMetadata([]string{"noseparator"})
	require.Error(t, err)
	require.Equal(t, types.KindInvalidInput, types.Kind(err))

	_, err = parseMetadata([]string{"a=1", "b=2", "c=3", "d=4", "e=5"})
	require.Error(t, err)
	require.Equal(t, types.KindInvalidInput, types.Kind(err))
}
