package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/minuta/internal/core"
)

type generateOptions struct {
	template    string
	sheet       string
	output      string
	jobFile     string
	columnsOut  string
	orderColumn string
	markerBlock bool
	markerCols  []string
	markerScope string
	globals     []string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	o := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fill a DOCX template with spreadsheet data",
		Example: "  minuta generate --template modelo.docx --sheet servidores.xlsx --out portaria.docx\n" +
			"  minuta generate --job portaria.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.template, "template", "", "DOCX template")
	f.StringVar(&o.sheet, "sheet", "", "spreadsheet (.xlsx, .xlsm or .csv)")
	f.StringVarP(&o.output, "out", "o", "", "output path (default: <template>_preenchido.docx)")
	f.StringVar(&o.jobFile, "job", "", "YAML job file with paths and options")
	f.StringVar(&o.columnsOut, "columns-out", "", "also write the resolved column listing to this file")
	f.StringVar(&o.orderColumn, "order-column", "", "column to sort by (default: guessed)")
	f.BoolVar(&o.markerBlock, "marker-block", false, "insert the list block at the marker paragraph")
	f.StringSliceVar(&o.markerCols, "marker-columns", nil, "columns composing each block line")
	f.StringVar(&o.markerScope, "marker-scope", "", "where to look for the marker: body or all")
	f.StringArrayVar(&o.globals, "global", nil, "extra placeholder value as KEY=value (repeatable)")
	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, o *generateOptions) error {
	svc, err := root.service(cmd)
	if err != nil {
		return report(cmd, err)
	}

	j := &job{Options: svc.DefaultOptions()}
	if o.jobFile != "" {
		if j, err = loadJob(o.jobFile, svc.DefaultOptions()); err != nil {
			return report(cmd, err)
		}
	}
	if err := o.apply(cmd, j); err != nil {
		return report(cmd, err)
	}
	if j.Template == "" || j.Sheet == "" {
		return report(cmd, fmt.Errorf("--template and --sheet are required (directly or through --job)"))
	}

	tmpl, err := os.ReadFile(j.Template)
	if err != nil {
		return report(cmd, err)
	}
	data, err := os.ReadFile(j.Sheet)
	if err != nil {
		return report(cmd, err)
	}

	res, err := svc.Generate(cmd.Context(), core.Request{
		TemplateName: filepath.Base(j.Template),
		Template:     tmpl,
		SheetName:    filepath.Base(j.Sheet),
		Sheet:        data,
		Options:      j.Options,
	})
	if err != nil {
		return report(cmd, err)
	}

	out := j.Output
	if out == "" {
		out = filepath.Join(filepath.Dir(j.Template), res.Filename)
	}
	if err := os.WriteFile(out, res.Document, 0o644); err != nil {
		return report(cmd, err)
	}
	if o.columnsOut != "" {
		if err := os.WriteFile(o.columnsOut, []byte(res.Listing), 0o644); err != nil {
			return report(cmd, err)
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d records, %d paragraphs edited", out, res.Records, len(res.Edits))
	if res.OrderColumn != "" {
		fmt.Fprintf(w, ", ordered by %s", res.OrderColumn)
	}
	if res.Inserted > 0 {
		fmt.Fprintf(w, ", %d block lines", res.Inserted)
	}
	fmt.Fprintln(w)
	for _, warning := range res.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warning)
	}
	return nil
}

// apply overlays flags that were set explicitly on the job.
func (o *generateOptions) apply(cmd *cobra.Command, j *job) error {
	f := cmd.Flags()
	if f.Changed("template") {
		j.Template = o.template
	}
	if f.Changed("sheet") {
		j.Sheet = o.sheet
	}
	if f.Changed("out") {
		j.Output = o.output
	}
	if f.Changed("order-column") {
		j.Options.OrderColumn = o.orderColumn
	}
	if f.Changed("marker-block") {
		j.Options.UseMarkerBlock = o.markerBlock
	}
	if f.Changed("marker-columns") {
		j.Options.MarkerColumns = o.markerCols
	}
	if f.Changed("marker-scope") {
		j.Options.MarkerScope = o.markerScope
	}
	if len(o.globals) > 0 {
		globals, err := parseGlobalFlags(o.globals)
		if err != nil {
			return err
		}
		if j.Options.ExtraGlobals == nil {
			j.Options.ExtraGlobals = make(map[string]string, len(globals))
		}
		for k, v := range globals {
			j.Options.ExtraGlobals[k] = v
		}
	}
	return nil
}
