package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/JonMunkholm/minuta/internal/config"
)

// SheetDecoder turns spreadsheet bytes into rows of string cells, header first.
type SheetDecoder interface {
	Decode(name string, data []byte) ([][]string, error)
}

// DocumentCodec decodes template bytes into a mutable Document.
type DocumentCodec interface {
	Decode(data []byte) (Document, error)
}

// Service runs generations. It holds only immutable configuration and the
// concurrency limiter; every generation gets its own records and document.
type Service struct {
	sheets   SheetDecoder
	docs     DocumentCodec
	vocab    *Vocabulary
	limiter  *Limiter
	defaults Options
	timeout  time.Duration
}

// NewService creates a service from configuration. When ALIASES_FILE is set the
// vocabulary is loaded from it; otherwise the built-in vocabulary is used.
func NewService(cfg *config.Config, sheets SheetDecoder, docs DocumentCodec) (*Service, error) {
	vocab := DefaultVocabulary()
	if path := cfg.Generate.AliasesFile; path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open alias vocabulary: %w", err)
		}
		defer f.Close()

		vocab, err = LoadVocabulary(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		slog.Info("alias vocabulary loaded", "path", path, "fields", len(vocab.Fields()))
	}

	defaults := DefaultOptions()
	defaults.MarkerText = cfg.Generate.MarkerText
	defaults.MarkerScope = cfg.Generate.MarkerScope
	defaults.LineSeparator = cfg.Generate.LineSeparator
	defaults.SpaceAfterPt = cfg.Generate.SpaceAfterPt
	if len(cfg.Generate.Globals) > 0 {
		defaults.ExtraGlobals = make(map[string]string, len(cfg.Generate.Globals))
		for k, v := range cfg.Generate.Globals {
			defaults.ExtraGlobals[k] = v
		}
	}
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("default generation options: %w", err)
	}

	return &Service{
		sheets:   sheets,
		docs:     docs,
		vocab:    vocab,
		limiter:  NewLimiter(cfg.Generate.MaxConcurrent, cfg.Generate.MaxWaitTime),
		defaults: defaults,
		timeout:  cfg.Generate.Timeout,
	}, nil
}

// DefaultOptions returns a copy of the configured default options.
func (s *Service) DefaultOptions() Options {
	return s.defaults.Clone()
}

// Vocabulary returns the alias vocabulary in use.
func (s *Service) Vocabulary() *Vocabulary {
	return s.vocab
}

// LimiterStatus reports generation slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForGenerations blocks until in-flight generations finish or ctx is done.
func (s *Service) WaitForGenerations(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Columns decodes a sheet and returns its resolved columns without touching
// any template. Used by operators to check placeholder names.
func (s *Service) Columns(ctx context.Context, name string, data []byte) (*RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sheets.Decode(name, data)
	if err != nil {
		return nil, asDecodeError("sheet", name, err)
	}
	set, err := LoadRecords(rows, s.vocab)
	if err != nil {
		return nil, withSheetName(err, name)
	}
	return set, nil
}
