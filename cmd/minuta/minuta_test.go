package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/minuta/internal/core"
	"github.com/JonMunkholm/minuta/internal/docx"
)

const templateXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p><w:r><w:t>Portaria {{NUMERO_BOLETIM}} de {{ORGAO}}</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>INSERIR CAMPO PORTARIAS</w:t></w:r></w:p>` +
	`<w:sectPr/></w:body></w:document>`

const sheetCSV = "Nome;Matrícula;Portaria\nAna;100;2/2024\nBia;200;1/2024\n"

func writeInputs(t *testing.T) (dir string) {
	t.Helper()
	dir = t.TempDir()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   templateXML,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "modelo.docx"), buf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "servidores.csv"), []byte(sheetCSV), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func bodyTexts(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := docx.Open(data)
	require.NoError(t, err)
	var out []string
	for _, p := range doc.Paragraphs(core.ScopeBody) {
		out = append(out, p.Text())
	}
	return out
}

func TestGenerateCommand(t *testing.T) {
	dir := writeInputs(t)
	out := filepath.Join(dir, "saida.docx")
	listing := filepath.Join(dir, "colunas.txt")

	stdout, stderr, err := execute(t, "generate",
		"--template", filepath.Join(dir, "modelo.docx"),
		"--sheet", filepath.Join(dir, "servidores.csv"),
		"--out", out,
		"--columns-out", listing,
		"--marker-block",
		"--marker-columns", "NOME,NUMERO_PORTARIA",
		"--global", "NUMERO_BOLETIM=7",
		"--global", "orgao=DGP",
	)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "2 records")
	assert.Contains(t, stdout, "ordered by NUMERO_PORTARIA")

	assert.Equal(t, []string{"Portaria 7 de DGP", "Bia - 1/2024", "Ana - 2/2024", ""}, bodyTexts(t, out))

	cols, err := os.ReadFile(listing)
	require.NoError(t, err)
	assert.Equal(t, "NOME\nMATRICULA\nNUMERO_PORTARIA\n", string(cols))
}

func TestGenerateCommand_Job(t *testing.T) {
	dir := writeInputs(t)
	jobPath := filepath.Join(dir, "portaria.yaml")
	require.NoError(t, os.WriteFile(jobPath, []byte(`
template: modelo.docx
sheet: servidores.csv
output: job.docx
use_marker_block: true
marker_columns: [MATRICULA]
extra_globals:
  NUMERO_BOLETIM: "9"
  ORGAO: CPRH
`), 0o644))

	_, stderr, err := execute(t, "generate", "--job", jobPath)
	require.NoError(t, err, stderr)
	assert.Equal(t, []string{"Portaria 9 de CPRH", "200", "100", ""}, bodyTexts(t, filepath.Join(dir, "job.docx")))
}

func TestGenerateCommand_MarkerMissing(t *testing.T) {
	dir := writeInputs(t)

	jobPath := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(jobPath, []byte("template: modelo.docx\nsheet: servidores.csv\nuse_marker_block: true\nmarker_text: OUTRO MARCADOR\n"), 0o644))
	_, stderr, err := execute(t, "generate", "--job", jobPath)
	require.Error(t, err)
	var notFound *core.MarkerNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Contains(t, stderr, "DOC001")
	_, statErr := os.Stat(filepath.Join(dir, "modelo_preenchido.docx"))
	assert.True(t, os.IsNotExist(statErr), "no output on failure")
}

func TestGenerateCommand_RequiresInputs(t *testing.T) {
	_, stderr, err := execute(t, "generate")
	require.Error(t, err)
	assert.Contains(t, stderr, "--template and --sheet are required")
}

func TestColumnsCommand(t *testing.T) {
	dir := writeInputs(t)
	stdout, stderr, err := execute(t, "columns", "--sheet", filepath.Join(dir, "servidores.csv"))
	require.NoError(t, err, stderr)
	assert.Equal(t, "NOME\nMATRICULA\nNUMERO_PORTARIA\n", stdout)
}

func TestColumnsCommand_EmptySheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vazia.csv")
	require.NoError(t, os.WriteFile(path, []byte("Nome,Matrícula\n"), 0o644))

	_, stderr, err := execute(t, "columns", "--sheet", path)
	require.Error(t, err)
	assert.True(t, strings.Contains(stderr, "SHEET001"), stderr)
}

func TestParseJob(t *testing.T) {
	defaults := core.DefaultOptions()
	defaults.ExtraGlobals = map[string]string{"ORGAO": "DGP", "ANO": "2024"}

	j, err := parseJob([]byte(`
template: a.docx
sheet: b.xlsx
order_column: ATESTO
label_columns: true
extra_globals:
  ANO: "2025"
`), defaults)
	require.NoError(t, err)

	assert.Equal(t, "a.docx", j.Template)
	assert.Equal(t, "b.xlsx", j.Sheet)
	assert.Equal(t, "ATESTO", j.Options.OrderColumn)
	assert.True(t, j.Options.LabelColumns)
	assert.Equal(t, core.DefaultMarkerText, j.Options.MarkerText, "absent keys keep defaults")
	assert.Equal(t, " - ", j.Options.LineSeparator)
	assert.Equal(t, map[string]string{"ORGAO": "DGP", "ANO": "2025"}, j.Options.ExtraGlobals)
	assert.Equal(t, "2024", defaults.ExtraGlobals["ANO"], "defaults are not mutated")
}

func TestParseJob_Errors(t *testing.T) {
	_, err := parseJob([]byte("templte: a.docx\n"), core.DefaultOptions())
	assert.Error(t, err, "unknown keys are rejected")

	j, err := parseJob(nil, core.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, core.DefaultOptions(), j.Options)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "", resolvePath("/jobs", ""))
	assert.Equal(t, "/abs/x.docx", resolvePath("/jobs", "/abs/x.docx"))
	assert.Equal(t, filepath.Join("/jobs", "x.docx"), resolvePath("/jobs", "x.docx"))
}

func TestParseGlobalFlags(t *testing.T) {
	got, err := parseGlobalFlags([]string{"A=1", " B =x=y", "C="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "x=y", "C": ""}, got)

	_, err = parseGlobalFlags([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseGlobalFlags([]string{"=v"})
	assert.Error(t, err)
}
