package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var portariaRows = [][]string{
	{"Nome", "Matrícula", "Nº Portaria", "Texto Portaria"},
	{"Ana", "123", "45/2024", "Designar Ana."},
	{"Bruno", "456", "3/2024", "Designar Bruno."},
}

const portariaTemplate = "Boletim de {{NOME}}\nINSERIR CAMPO PORTARIAS\n{{ORGAO}}"

func TestGenerate_MarkerBlock(t *testing.T) {
	codec := &fakeCodec{}
	svc := newTestService(t, fakeSheets{rows: portariaRows}, codec)

	opts := svc.DefaultOptions()
	opts.UseMarkerBlock = true
	opts.ExtraGlobals = map[string]string{"orgao": "PMSP"}

	res, err := svc.Generate(context.Background(), Request{
		TemplateName: "modelos/boletim.docx",
		Template:     []byte(portariaTemplate),
		SheetName:    "dados.xlsx",
		Options:      opts,
	})
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"Boletim de Ana",
		"Portaria nº 3/2024", "Designar Bruno.", "",
		"Portaria nº 45/2024", "Designar Ana.", "",
		"",
		"PMSP",
	}, "\n"), string(res.Document))

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "boletim_preenchido.docx", res.Filename)
	assert.Equal(t, DocxMimeType, res.MimeType)
	assert.Equal(t, FieldNumeroPortaria, res.OrderColumn)
	assert.Equal(t, 2, res.Records)
	assert.Equal(t, 6, res.Inserted)
	assert.Len(t, res.Edits, 2)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, []Stage{
		StageSheetLoaded, StageColumnsNormalized, StageContextBuilt, StageRecordsSorted,
		StagePlaceholdersSubstituted, StageMarkerInserted, StageDone,
	}, res.Stages)
}

func TestGenerate_MarkerColumns(t *testing.T) {
	svc := newTestService(t, fakeSheets{rows: portariaRows}, &fakeCodec{})

	opts := svc.DefaultOptions()
	opts.UseMarkerBlock = true
	opts.MarkerColumns = []string{"Nome", "Matrícula", "Posto"}

	res, err := svc.Generate(context.Background(), Request{
		TemplateName: "t.docx",
		Template:     []byte("INSERIR CAMPO PORTARIAS"),
		Options:      opts,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bruno - 456\nAna - 123\n", string(res.Document))
	assert.Equal(t, []string{"Posto: column does not exist (resolved as POSTO) (marker_columns)"}, res.Warnings)
}

func TestGenerate_NoBlockKeepsMarkerAndWarnsUnresolved(t *testing.T) {
	svc := newTestService(t, fakeSheets{rows: portariaRows}, &fakeCodec{})

	res, err := svc.Generate(context.Background(), Request{
		TemplateName: "t.docx",
		Template:     []byte(portariaTemplate),
		Options:      svc.DefaultOptions(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Boletim de Ana\nINSERIR CAMPO PORTARIAS\n{{ORGAO}}", string(res.Document))
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "ORGAO")
	assert.NotContains(t, res.Stages, StageMarkerInserted)
}

func TestGenerate_EmptySheetFailsBeforeTemplate(t *testing.T) {
	codec := &fakeCodec{}
	svc := newTestService(t, fakeSheets{rows: [][]string{{"NOME"}}}, codec)

	res, err := svc.Generate(context.Background(), Request{SheetName: "vazia.csv", Options: svc.DefaultOptions()})
	assert.Nil(t, res)

	var empty *EmptyInputError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, "vazia.csv", empty.Sheet)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageSheetLoaded, stageErr.Stage)
	assert.Equal(t, 0, codec.calls, "template never decoded")
}

func TestGenerate_MarkerMissing(t *testing.T) {
	svc := newTestService(t, fakeSheets{rows: portariaRows}, &fakeCodec{})

	opts := svc.DefaultOptions()
	opts.UseMarkerBlock = true
	res, err := svc.Generate(context.Background(), Request{Template: []byte("sem marcador"), Options: opts})

	assert.Nil(t, res)
	var notFound *MarkerNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "DOC001", MapError(err).Code)
}

func TestGenerate_OrderColumn(t *testing.T) {
	rows := [][]string{{"Nome", "Observação"}, {"Ana", "x"}}

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
		wantCol string
	}{
		{name: "no guess without block", mutate: func(*Options) {}},
		{name: "no guess with block", mutate: func(o *Options) { o.UseMarkerBlock = true }, wantErr: true},
		{name: "explicit missing column", mutate: func(o *Options) { o.OrderColumn = "Seq" }, wantErr: true},
		{name: "explicit column normalized", mutate: func(o *Options) { o.OrderColumn = "observação" }, wantCol: "OBSERVACAO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, fakeSheets{rows: rows}, &fakeCodec{})
			opts := svc.DefaultOptions()
			tt.mutate(&opts)

			res, err := svc.Generate(context.Background(), Request{Template: []byte("{{NOME}}"), Options: opts})
			if tt.wantErr {
				var noOrder *NoOrderableColumnError
				require.True(t, errors.As(err, &noOrder), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCol, res.OrderColumn)
		})
	}
}

func TestGenerate_DecodeErrors(t *testing.T) {
	svc := newTestService(t, fakeSheets{err: errors.New("zip: not a valid zip file")}, &fakeCodec{})
	_, err := svc.Generate(context.Background(), Request{SheetName: "x.xlsx", Options: svc.DefaultOptions()})
	assert.Equal(t, "FILE002", MapError(err).Code)

	svc = newTestService(t, fakeSheets{rows: portariaRows}, &fakeCodec{err: errors.New("missing word/document.xml")})
	_, err = svc.Generate(context.Background(), Request{Options: svc.DefaultOptions()})
	assert.Equal(t, "FILE003", MapError(err).Code)
}

func TestGenerate_InvalidOptions(t *testing.T) {
	svc := newTestService(t, fakeSheets{rows: portariaRows}, &fakeCodec{})
	opts := svc.DefaultOptions()
	opts.SpaceAfterPt = -1

	_, err := svc.Generate(context.Background(), Request{Options: opts})
	assert.Equal(t, "GEN004", MapError(err).Code)
}

func TestGenerate_CanceledContext(t *testing.T) {
	svc := newTestService(t, fakeSheets{rows: portariaRows}, &fakeCodec{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx, Request{Template: []byte("x"), Options: svc.DefaultOptions()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestService_Columns(t *testing.T) {
	svc := newTestService(t, fakeSheets{rows: portariaRows}, &fakeCodec{})
	set, err := svc.Columns(context.Background(), "dados.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"NOME", "MATRICULA", "NUMERO_PORTARIA", "TEXTO_PORTARIA"}, set.ColumnNames())
}

func TestNewService_AliasesFile(t *testing.T) {
	path := t.TempDir() + "/aliases.yaml"
	require.NoError(t, writeFile(path, "fields:\n  - name: NOME\n    aliases: [AGENTE]\n"))

	cfg := testConfig()
	cfg.Generate.AliasesFile = path
	svc, err := NewService(cfg, fakeSheets{rows: [][]string{{"Agente"}, {"Ana"}}}, &fakeCodec{})
	require.NoError(t, err)

	set, err := svc.Columns(context.Background(), "a.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"NOME"}, set.ColumnNames())

	cfg.Generate.AliasesFile = path + ".missing"
	_, err = NewService(cfg, fakeSheets{}, &fakeCodec{})
	assert.Error(t, err)
}

func TestOutputFilename(t *testing.T) {
	assert.Equal(t, "modelo_preenchido.docx", outputFilename("modelo.docx"))
	assert.Equal(t, "modelo_preenchido.docx", outputFilename(`c/modelo.DOCX`))
	assert.Equal(t, "documento_preenchido.docx", outputFilename(""))
}
