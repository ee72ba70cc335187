package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/minuta/internal/core"
)

// job is a saved generation. Paths are relative to the job file.
//
//	template: modelo.docx
//	sheet: servidores.xlsx
//	output: portaria.docx
//	use_marker_block: true
//	marker_columns: [NOME, MATRICULA, CARGO]
//	extra_globals:
//	  NUMERO_PORTARIA: "123/2024"
type job struct {
	Template string       `yaml:"template"`
	Sheet    string       `yaml:"sheet"`
	Output   string       `yaml:"output"`
	Options  core.Options `yaml:",inline"`
}

// loadJob reads a job file over defaults. Keys absent from the file keep
// their default value; extra_globals are merged.
func loadJob(path string, defaults core.Options) (*job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job: %w", err)
	}
	j, err := parseJob(data, defaults)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	j.Template = resolvePath(dir, j.Template)
	j.Sheet = resolvePath(dir, j.Sheet)
	j.Output = resolvePath(dir, j.Output)
	return j, nil
}

func parseJob(data []byte, defaults core.Options) (*job, error) {
	j := &job{Options: defaults.Clone()}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(j); err != nil {
		if errors.Is(err, io.EOF) {
			return j, nil
		}
		return nil, fmt.Errorf("parse job: %w", err)
	}
	return j, nil
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// parseGlobalFlags reads repeated --global KEY=value flags.
func parseGlobalFlags(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid option: --global %q must be KEY=value", p)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}
