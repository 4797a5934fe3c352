package bufconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexdima/edcore-sub000/buffer"
)

func TestSaveAndLoadPolicyFileJSON(t *testing.T) {
	p := buffer.Policy{IdealLeafLength: 1024, MaxLeafLength: 2048, MinLeafLength: 512}

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bufconfig", "policy.json")

	require.NoError(t, SavePolicyFile(path, p))

	loaded, err := LoadPolicyFile(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestSaveAndLoadPolicyFileYAML(t *testing.T) {
	p := buffer.Policy{IdealLeafLength: 4096, MaxLeafLength: 8192, MinLeafLength: 2048}

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "policy.yaml")

	require.NoError(t, SavePolicyFile(path, p))

	loaded, err := LoadPolicyFile(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestLoadPolicyFileMissingFile(t *testing.T) {
	_, err := LoadPolicyFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoadPolicyFileFillsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"idealLeafLength": 9999}`), 0644))

	loaded, err := LoadPolicyFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, loaded.IdealLeafLength)
	assert.Equal(t, buffer.DefaultPolicy().MaxLeafLength, loaded.MaxLeafLength)
}
