package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shun-okamoto/pybundle/internal/model"
)

// specManifest returns a representative manifest for spec rendering tests.
func specManifest() *Manifest {
	onefile := true
	upx := true
	return &Manifest{
		Name:          "LLM Translation Tool",
		Entry:         "app.py",
		Onefile:       &onefile,
		UPX:           &upx,
		Datas:         []model.DataEntry{{Src: "config", Dst: "config"}},
		HiddenImports: []string{"PyQt5.QtCore", "PyQt5.QtGui", "openai"},
	}
}

// TestRenderSpec verifies the generated spec file carries the manifest
// values in PyInstaller's expected shape.
func TestRenderSpec(t *testing.T) {
	content, err := RenderSpec(specManifest())
	require.NoError(t, err)

	spec := string(content)
	assert.Contains(t, spec, "a = Analysis(")
	assert.Contains(t, spec, "['app.py']")
	assert.Contains(t, spec, "('config', 'config'),")
	assert.Contains(t, spec, "'PyQt5.QtCore',")
	assert.Contains(t, spec, "name='LLM Translation Tool',")
	assert.Contains(t, spec, "console=False,")
	assert.Contains(t, spec, "upx=True,")
	assert.Contains(t, spec, "icon=None,")
	// The coding declaration must survive so non-ASCII names render.
	assert.Contains(t, spec, "coding: utf-8")
}

// TestRenderSpecOnefile verifies the default single-executable layout:
// everything folded into one EXE, no COLLECT stage.
func TestRenderSpecOnefile(t *testing.T) {
	content, err := RenderSpec(specManifest())
	require.NoError(t, err)

	spec := string(content)
	assert.Contains(t, spec, "runtime_tmpdir=None,")
	assert.NotContains(t, spec, "COLLECT(")
	assert.NotContains(t, spec, "exclude_binaries")
}

// TestRenderSpecOnedir verifies onefile=false switches to the directory
// layout: a thin EXE plus a COLLECT tree carrying the binaries and data.
func TestRenderSpecOnedir(t *testing.T) {
	m := specManifest()
	onefile := false
	m.Onefile = &onefile

	content, err := RenderSpec(m)
	require.NoError(t, err)

	spec := string(content)
	assert.Contains(t, spec, "exclude_binaries=True,")
	assert.Contains(t, spec, "coll = COLLECT(")
	assert.Contains(t, spec, "name='LLM Translation Tool',")
	assert.NotContains(t, spec, "runtime_tmpdir")

	// The two layouts must actually differ.
	onefileContent, err := RenderSpec(specManifest())
	require.NoError(t, err)
	assert.NotEqual(t, string(onefileContent), spec)
}

// TestRenderSpecIconAndConsole verifies the optional icon path and the
// console flag are rendered when set.
func TestRenderSpecIconAndConsole(t *testing.T) {
	m := specManifest()
	m.Icon = "assets/app.ico"
	m.Console = true

	content, err := RenderSpec(m)
	require.NoError(t, err)

	spec := string(content)
	assert.Contains(t, spec, "icon='assets/app.ico',")
	assert.Contains(t, spec, "console=True,")
}

// TestRenderSpecEscaping verifies single quotes and backslashes in
// manifest values produce valid Python string literals.
func TestRenderSpecEscaping(t *testing.T) {
	m := specManifest()
	m.Name = `it's a \tool`

	content, err := RenderSpec(m)
	require.NoError(t, err)
	assert.Contains(t, string(content), `name='it\'s a \\tool',`)
}

// TestWriteSpec verifies the spec file lands on disk at the given path.
func TestWriteSpec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultSpecName)

	err := WriteSpec(specManifest(), path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pyz = PYZ(")
}
