package reference

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func Test_LoadTypeCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "numpy.yaml", `
name: numpy
types:
  - name: numpy.float16
    kind: float32
  - name: numpy.int8
    kind: int8
`)
	writeFile(t, dir, "clock.yml", `
types:
  - name: timestamp
    kind: time
`)
	writeFile(t, dir, "README.md", "ignored")

	c, err := LoadTypeCatalog(dir)
	require.NoError(t, err)
	assert.Contains(t, c.Groups, "numpy")
	assert.Contains(t, c.Groups, "clock")
	assert.Equal(t, []string{"numpy.float16", "numpy.int8", "timestamp"}, c.Names())

	types, err := c.Types()
	require.NoError(t, err)
	assert.Equal(t, reflect.Float32, types["numpy.float16"].Kind())
	assert.Equal(t, reflect.Int8, types["numpy.int8"].Kind())
	assert.Equal(t, "time.Time", types["timestamp"].String())
}

func Test_LoadTypeCatalogErrors(t *testing.T) {
	t.Run("duplicate name", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.yaml", "types: [{name: x, kind: int8}]")
		writeFile(t, dir, "b.yaml", "types: [{name: x, kind: int16}]")
		_, err := LoadTypeCatalog(dir)
		assert.ErrorContains(t, err, `type "x" declared in both`)
	})
	t.Run("unknown kind", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.yaml", "types: [{name: x, kind: float128}]")
		c, err := LoadTypeCatalog(dir)
		require.NoError(t, err)
		_, err = c.Types()
		assert.ErrorContains(t, err, "float128")
	})
	t.Run("missing dir", func(t *testing.T) {
		_, err := LoadTypeCatalog(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})
	t.Run("bad yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.yaml", "types: [")
		_, err := LoadTypeCatalog(dir)
		assert.Error(t, err)
	})
}
