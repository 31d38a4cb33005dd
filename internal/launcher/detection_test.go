// internal/launcher/detection_test.go
package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultExecutable(t *testing.T) {
	t.Run("should prefer an environment override", func(t *testing.T) {
		fake := filepath.Join(t.TempDir(), "chrome")
		require.NoError(t, os.WriteFile(fake, []byte("#!/bin/sh\n"), 0o755))
		t.Setenv("CHROME", fake)

		path, err := DefaultExecutable()
		require.NoError(t, err)
		assert.Equal(t, fake, path)
	})

	t.Run("should skip an override that does not exist", func(t *testing.T) {
		t.Setenv("CHROME", filepath.Join(t.TempDir(), "missing"))

		path, err := DefaultExecutable()
		if err != nil {
			assert.ErrorIs(t, err, ErrNoExecutable)
			return
		}
		// A real browser on this machine is fine; it must just not be the
		// dangling override.
		assert.NotEqual(t, os.Getenv("CHROME"), path)
	})
}
