package sync

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVersionPrefix checks truncation of the patch component and rejection of
// malformed version strings.
func TestVersionPrefix(t *testing.T) {
	t.Parallel()

	prefix, err := VersionPrefix("115.0.5790.102")
	require.NoError(t, err)
	require.Equal(t, "115.0.5790", prefix)

	prefix, err = VersionPrefix(" 120.0.6099.109 ")
	require.NoError(t, err)
	require.Equal(t, "120.0.6099", prefix)

	for _, malformed := range []string{"", "115", "115.0.5790", "115.0.5790.102.7", "a.b.c.d"} {
		_, err = VersionPrefix(malformed)
		require.Error(t, err, malformed)

		status, ok := StatusFromError(err)
		require.True(t, ok)
		require.Equal(t, StatusBrowserNotFound, status)
	}
}
