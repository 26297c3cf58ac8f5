package prelude

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberc/emberc/internal/externs"
)

func TestLoadDefaultManifest(t *testing.T) {
	sigs, err := Load(filepath.Join(".", "stdlib.yaml"))
	require.NoError(t, err)
	require.Len(t, sigs, 3)

	byName := make(map[string]externs.Signature)
	for _, s := range sigs {
		byName[s.Name] = s
	}

	printf, ok := byName["printf"]
	require.True(t, ok, "expected printf in the default manifest")
	require.Equal(t, "i32", printf.ReturnIR)
	require.True(t, printf.Variadic)
	require.Equal(t, "i8*", printf.Params[0].IRType)

	malloc, ok := byName["malloc"]
	require.True(t, ok, "expected malloc in the default manifest")
	require.Equal(t, "i8*", malloc.ReturnIR)
	require.False(t, malloc.Variadic)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(".", "does-not-exist.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("externs: [this is not valid: [yaml"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadIntoRegistersSignatures(t *testing.T) {
	table := externs.New()
	require.NoError(t, LoadInto(filepath.Join(".", "stdlib.yaml"), table))

	sig, ok := table.Lookup("free")
	require.True(t, ok)
	require.Equal(t, "void", sig.ReturnIR)
}
