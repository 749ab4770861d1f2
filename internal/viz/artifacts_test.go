package viz

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, os.WriteFile(path, []byte("fake png bytes"), 0644))

	payload, err := EncodeArtifact(path)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(payload, "data:image/png;base64,"))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(payload, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, "fake png bytes", string(decoded))
}

func TestEncodeArtifactMissingFile(t *testing.T) {
	_, err := EncodeArtifact(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestEncodeAllSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	require.NoError(t, os.WriteFile(good, []byte("png"), 0644))

	encoded := EncodeAll([]string{good, filepath.Join(dir, "missing.png"), good})
	assert.Len(t, encoded, 2)
}

func TestEncodeAllEmpty(t *testing.T) {
	assert.Empty(t, EncodeAll(nil))
}
