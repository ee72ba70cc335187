package core

// alias.go reconciles spreadsheet header spellings with the canonical field
// vocabulary used by the templates.
//
// Operators build their sheets by hand, so the same field shows up as
// "Matrícula", "Mat.", "Nº Matrícula" and so on. After normalization each
// variant is looked up in the field's ordered alias list; the first one present
// in the sheet is renamed to the canonical name.

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Canonical field names.
const (
	FieldPosto          = "POSTO"
	FieldQuadro         = "QUADRO"
	FieldMatricula      = "MATRICULA"
	FieldNome           = "NOME"
	FieldAtesto         = "ATESTO"
	FieldNumeroPortaria = "NUMERO_PORTARIA"
	FieldTextoPortaria  = "TEXTO_PORTARIA"
	FieldDataPortaria   = "DATA_PORTARIA"
)

// FieldAliases lists the accepted header variants for one canonical field.
type FieldAliases struct {
	Field    string   `yaml:"name" json:"name"`
	Variants []string `yaml:"aliases" json:"aliases"`
}

// Vocabulary is an ordered set of canonical fields and their aliases.
// It is immutable once built and safe to share between generations.
type Vocabulary struct {
	fields []FieldAliases
}

// DefaultVocabulary returns the built-in field vocabulary.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary([]FieldAliases{
		{Field: FieldPosto, Variants: []string{"POSTO_GRADUACAO", "POSTO_GRAD", "POSTO_E_GRADUACAO", "GRADUACAO", "P_G", "PG"}},
		{Field: FieldQuadro, Variants: []string{"QUADRO_ARMA", "QUADRO_SERVICO", "QUADRO_ESPECIALIDADE", "QUADRO_QUALIFICACAO"}},
		{Field: FieldMatricula, Variants: []string{"NO_MATRICULA", "N_MATRICULA", "NUMERO_MATRICULA", "MAT", "ID_FUNCIONAL", "MATRICULA_SIAPE"}},
		{Field: FieldNome, Variants: []string{"NOME_COMPLETO", "NOME_DO_SERVIDOR", "NOME_DO_MILITAR", "SERVIDOR", "MILITAR"}},
		{Field: FieldAtesto, Variants: []string{"NO_ATESTO", "N_ATESTO", "NUMERO_ATESTO", "NUMERO_DO_ATESTO", "NO_DO_ATESTO", "N_DO_ATESTO"}},
		{Field: FieldNumeroPortaria, Variants: []string{"NO_PORTARIA", "N_PORTARIA", "NUMERO_DA_PORTARIA", "NO_DA_PORTARIA", "N_DA_PORTARIA", "PORTARIA", "NUMERO"}},
		{Field: FieldTextoPortaria, Variants: []string{"TEXTO", "TEXTO_DA_PORTARIA", "TEOR", "TEOR_DA_PORTARIA", "CONTEUDO"}},
		{Field: FieldDataPortaria, Variants: []string{"DATA", "DATA_DA_PORTARIA", "DATA_PUBLICACAO"}},
	})
}

// NewVocabulary builds a vocabulary, normalizing field names and variants.
// Fields with an empty name are dropped.
func NewVocabulary(fields []FieldAliases) *Vocabulary {
	v := &Vocabulary{fields: make([]FieldAliases, 0, len(fields))}
	for _, f := range fields {
		name := NormalizeKey(f.Field)
		if name == "" {
			continue
		}
		variants := make([]string, 0, len(f.Variants))
		for _, alias := range f.Variants {
			if k := NormalizeKey(alias); k != "" && k != name {
				variants = append(variants, k)
			}
		}
		v.fields = append(v.fields, FieldAliases{Field: name, Variants: variants})
	}
	return v
}

// vocabularyFile is the YAML layout accepted by LoadVocabulary.
type vocabularyFile struct {
	Fields []FieldAliases `yaml:"fields"`
}

// LoadVocabulary reads a YAML vocabulary:
//
//	fields:
//	  - name: NOME
//	    aliases: [NOME_COMPLETO, SERVIDOR]
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	var file vocabularyFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse alias vocabulary: %w", err)
	}
	if len(file.Fields) == 0 {
		return nil, fmt.Errorf("parse alias vocabulary: no fields defined")
	}
	return NewVocabulary(file.Fields), nil
}

// Fields returns a copy of the vocabulary entries.
func (v *Vocabulary) Fields() []FieldAliases {
	out := make([]FieldAliases, len(v.fields))
	for i, f := range v.fields {
		out[i] = FieldAliases{Field: f.Field, Variants: append([]string(nil), f.Variants...)}
	}
	return out
}

// Resolve decides which sheet columns are renamed to canonical fields.
// The returned map goes from sheet key to canonical field name.
//
// A canonical field already present verbatim is never aliased. Otherwise the
// first variant found among keys wins. A sheet column is renamed at most once.
func (v *Vocabulary) Resolve(keys []string) map[string]string {
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}

	renames := make(map[string]string)
	for _, f := range v.fields {
		if present[f.Field] {
			continue
		}
		for _, variant := range f.Variants {
			if !present[variant] {
				continue
			}
			if _, taken := renames[variant]; taken {
				continue
			}
			renames[variant] = f.Field
			present[f.Field] = true
			break
		}
	}
	return renames
}

// Apply returns keys with the resolved renames applied, in the same order.
func (v *Vocabulary) Apply(keys []string) []string {
	renames := v.Resolve(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		if to, ok := renames[k]; ok {
			out[i] = to
		} else {
			out[i] = k
		}
	}
	return out
}

// Canonical maps a single operator-supplied name onto the final column name
// it would have in a sheet with the given final columns.
func (v *Vocabulary) Canonical(name string, columns []string) string {
	key := NormalizeKey(name)
	for _, c := range columns {
		if c == key {
			return key
		}
	}
	for _, f := range v.fields {
		if f.Field == key {
			return key
		}
		for _, variant := range f.Variants {
			if variant == key {
				return f.Field
			}
		}
	}
	return key
}
