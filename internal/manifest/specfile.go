// specfile.go generates the PyInstaller spec file from a Manifest.
//
// The spec file is a small Python program that PyInstaller executes to
// learn what to bundle. pybundle regenerates it on every build from the
// manifest, so the manifest stays the single source of truth and the
// spec file is a disposable build artifact.
package manifest

import (
	"fmt"
	"os"
	"strings"
	"text/template"
)

// specTemplate renders the PyInstaller spec file. The layout follows the
// stock specs PyInstaller itself generates: an Analysis over the entry
// script, a PYZ archive, and either a single self-extracting EXE
// (onefile) or a thin EXE plus a COLLECT directory tree (onedir).
var specTemplate = template.Must(template.New("spec").Funcs(template.FuncMap{
	"py":     pyQuote,
	"pyBool": pyBool,
}).Parse(`# -*- mode: python ; coding: utf-8 -*-
# Generated by pybundle from {{ .ManifestName }}. Do not edit; regenerated on every build.

block_cipher = None

a = Analysis(
    [{{ py .Entry }}],
    pathex=[],
    binaries=[],
    datas=[
{{- range .Datas }}
        ({{ py .Src }}, {{ py .Dst }}),
{{- end }}
    ],
    hiddenimports=[
{{- range .HiddenImports }}
        {{ py . }},
{{- end }}
    ],
    hookspath=[],
    hooksconfig={},
    runtime_hooks=[],
    excludes=[
{{- range .Excludes }}
        {{ py . }},
{{- end }}
    ],
    win_no_prefer_redirects=False,
    win_private_assemblies=False,
    cipher=block_cipher,
    noarchive=False,
)

pyz = PYZ(a.pure, a.zipped_data, cipher=block_cipher)

{{ if .Onefile -}}
exe = EXE(
    pyz,
    a.scripts,
    a.binaries,
    a.zipfiles,
    a.datas,
    [],
    name={{ py .Name }},
    debug=False,
    bootloader_ignore_signals=False,
    strip=False,
    upx={{ pyBool .UPX }},
    upx_exclude=[],
    runtime_tmpdir=None,
    console={{ pyBool .Console }},
    disable_windowed_traceback=False,
    argv_emulation=False,
    target_arch=None,
    codesign_identity=None,
    entitlements_file=None,
    icon={{ .IconExpr }},
)
{{ else -}}
exe = EXE(
    pyz,
    a.scripts,
    [],
    exclude_binaries=True,
    name={{ py .Name }},
    debug=False,
    bootloader_ignore_signals=False,
    strip=False,
    upx={{ pyBool .UPX }},
    console={{ pyBool .Console }},
    disable_windowed_traceback=False,
    argv_emulation=False,
    target_arch=None,
    codesign_identity=None,
    entitlements_file=None,
    icon={{ .IconExpr }},
)

coll = COLLECT(
    exe,
    a.binaries,
    a.zipfiles,
    a.datas,
    strip=False,
    upx={{ pyBool .UPX }},
    upx_exclude=[],
    name={{ py .Name }},
)
{{ end -}}
`))

// specData is the flattened view of a Manifest the template consumes.
type specData struct {
	ManifestName  string
	Name          string
	Entry         string
	Datas         []struct{ Src, Dst string }
	HiddenImports []string
	Excludes      []string
	Onefile       bool
	UPX           bool
	Console       bool
	IconExpr      string
}

// RenderSpec produces the PyInstaller spec file contents for the manifest.
func RenderSpec(m *Manifest) ([]byte, error) {
	data := specData{
		ManifestName:  "defaults",
		Name:          m.Name,
		Entry:         m.Entry,
		HiddenImports: m.HiddenImports,
		Excludes:      m.Excludes,
		Onefile:       m.OnefileEnabled(),
		UPX:           m.UPXEnabled(),
		Console:       m.Console,
		IconExpr:      "None",
	}
	if m.Path != "" {
		data.ManifestName = m.Path
	}
	if m.Icon != "" {
		data.IconExpr = pyQuote(m.Icon)
	}
	for _, d := range m.Datas {
		data.Datas = append(data.Datas, struct{ Src, Dst string }{d.Src, d.Dst})
	}

	var sb strings.Builder
	if err := specTemplate.Execute(&sb, data); err != nil {
		return nil, fmt.Errorf("failed to render spec file: %w", err)
	}
	return []byte(sb.String()), nil
}

// WriteSpec renders the spec file and writes it to path.
func WriteSpec(m *Manifest, path string) error {
	content, err := RenderSpec(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write spec file %s: %w", path, err)
	}
	return nil
}

// pyQuote renders a Go string as a single-quoted Python string literal.
// Backslashes and single quotes are escaped; everything else (including
// non-ASCII application names) passes through, since the spec file is
// declared UTF-8.
func pyQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

// pyBool renders a Go bool as a Python boolean literal.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
