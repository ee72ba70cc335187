package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/minuta/internal/core"
	"github.com/JonMunkholm/minuta/internal/logging"
	"github.com/JonMunkholm/minuta/internal/sheet"
	"github.com/JonMunkholm/minuta/internal/web/templates"
)

// errNoFile is mapped to FILE004 by core.MapError.
var errNoFile = errors.New("no file provided")

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	defaults := s.service.DefaultOptions()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Index(templates.IndexParams{
		MarkerText:    defaults.MarkerText,
		MarkerScope:   defaults.MarkerScope,
		LineSeparator: defaults.LineSeparator,
		SpaceAfterPt:  defaults.SpaceAfterPt,
		MaxFileSizeMB: s.cfg.Generate.MaxFileSize >> 20,
		Available:     s.service.LimiterStatus().Available,
	}).Render(r.Context(), w)
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status      string             `json:"status"`
	Generations core.LimiterStatus `json:"generations"`
}

// handleHealthz reports liveness and generation slot usage.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, HealthResponse{Status: "ok", Generations: s.service.LimiterStatus()})
}

// handleDefaultOptions returns the options a generation starts from.
func (s *Server) handleDefaultOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.service.DefaultOptions())
}

// handleGenerate fills the uploaded template with the uploaded sheet and
// returns the document as an attachment.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 2); err != nil {
		respondError(w, r, err)
		return
	}

	tmplName, tmpl, err := readFormFile(r, "template")
	if err != nil {
		respondError(w, r, err)
		return
	}
	sheetName, sheetData, err := readFormFile(r, "sheet")
	if err != nil {
		respondError(w, r, err)
		return
	}

	opts, err := parseOptions(r, s.service.DefaultOptions())
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.Generate(ctx, core.Request{
		TemplateName: tmplName,
		Template:     tmpl,
		SheetName:    sheetName,
		Sheet:        sheetData,
		Options:      opts,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	for _, warning := range res.Warnings {
		logging.FromContext(r.Context()).Info("generation warning", "generation_id", res.ID, "warning", warning)
	}

	w.Header().Set("Content-Type", res.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Document)))
	w.Header().Set("X-Generation-ID", res.ID)
	w.Header().Set("X-Order-Column", res.OrderColumn)
	w.Header().Set("X-Records", strconv.Itoa(res.Records))
	w.Header().Set("X-Warnings", strconv.Itoa(len(res.Warnings)))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Document)
}

// ColumnsResponse is the JSON body of POST /api/columns.
type ColumnsResponse struct {
	Sheet       string        `json:"sheet"`
	Records     int           `json:"records"`
	Columns     []core.Column `json:"columns"`
	OrderColumn string        `json:"order_column,omitempty"`
}

// handleColumns lists the resolved column names of an uploaded sheet so the
// operator can check the {{KEY}} placeholders in their template.
// ?format=text returns one name per line; HTMX requests get a table fragment.
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 1); err != nil {
		respondError(w, r, err)
		return
	}

	name, data, err := readFormFile(r, "sheet")
	if err != nil {
		respondError(w, r, err)
		return
	}

	set, err := s.service.Columns(r.Context(), name, data)
	if err != nil {
		respondError(w, r, err)
		return
	}

	switch {
	case r.URL.Query().Get("format") == "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, set.Listing())
	case isHTMX(r):
		rows := make([]templates.ColumnRow, 0, len(set.Columns()))
		for _, c := range set.Columns() {
			rows = append(rows, templates.ColumnRow{Raw: c.Raw, Final: c.Final})
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.ColumnList(name, set.Len(), rows).Render(r.Context(), w)
	default:
		writeJSON(w, r, ColumnsResponse{
			Sheet:       name,
			Records:     set.Len(),
			Columns:     set.Columns(),
			OrderColumn: core.GuessOrderColumn(set.ColumnNames()),
		})
	}
}

// parseForm caps the body at files * MaxFileSize and parses the multipart form.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, files int64) error {
	maxSize := s.cfg.Generate.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, files*maxSize+1<<20)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("file too large: %w", err)
		}
		return fmt.Errorf("%w: %v", errNoFile, err)
	}
	return nil
}

// readFormFile reads one uploaded file fully into memory.
func readFormFile(r *http.Request, field string) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, fmt.Errorf("%w: %s", errNoFile, field)
		}
		return "", nil, fmt.Errorf("read %s: %w", field, err)
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if field == "sheet" && !sheet.Supported(name) {
		return "", nil, &core.DecodeError{Source: "sheet", Name: name, Err: sheet.ErrUnsupportedFormat}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", field, err)
	}
	return name, data, nil
}

// parseOptions overlays form fields on defaults. An "options" field holding
// JSON is applied first, then the individual fields.
func parseOptions(r *http.Request, opts core.Options) (core.Options, error) {
	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			return opts, fmt.Errorf("invalid option: options is not valid JSON: %w", err)
		}
	}

	if v := strings.TrimSpace(r.FormValue("order_column")); v != "" {
		opts.OrderColumn = v
	}
	if v, ok := formBool(r, "use_marker_block"); ok {
		opts.UseMarkerBlock = v
	}
	if v := r.FormValue("marker_text"); strings.TrimSpace(v) != "" {
		opts.MarkerText = v
	}
	if v := r.FormValue("marker_columns"); strings.TrimSpace(v) != "" {
		opts.MarkerColumns = splitColumns(v)
	}
	if v, ok := formBool(r, "label_columns"); ok {
		opts.LabelColumns = v
	}
	if _, ok := r.MultipartForm.Value["line_separator"]; ok {
		opts.LineSeparator = r.FormValue("line_separator")
	}
	if v := strings.TrimSpace(r.FormValue("space_after_pt")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid option: space_after_pt %q is not a number", v)
		}
		opts.SpaceAfterPt = n
	}
	if v := strings.TrimSpace(r.FormValue("marker_scope")); v != "" {
		opts.MarkerScope = v
	}
	if v := r.FormValue("extra_globals"); strings.TrimSpace(v) != "" {
		globals, err := parseGlobals(v)
		if err != nil {
			return opts, err
		}
		if opts.ExtraGlobals == nil {
			opts.ExtraGlobals = make(map[string]string, len(globals))
		}
		for k, val := range globals {
			opts.ExtraGlobals[k] = val
		}
	}
	return opts, nil
}

// formBool reads a checkbox-style field. ok is false when the field is absent.
func formBool(r *http.Request, field string) (value, ok bool) {
	if _, present := r.MultipartForm.Value[field]; !present {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(r.FormValue(field))) {
	case "1", "true", "on", "yes", "sim":
		return true, true
	}
	return false, true
}

// splitColumns accepts comma or newline separated column names.
func splitColumns(v string) []string {
	fields := strings.FieldsFunc(v, func(c rune) bool { return c == ',' || c == '\n' || c == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseGlobals reads KEY=value lines.
func parseGlobals(v string) (map[string]string, error) {
	out := make(map[string]string)
	for _, line := range strings.Split(strings.ReplaceAll(v, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		k, val, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid option: extra_globals line %q must be KEY=value", line)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(val)
	}
	return out, nil
}
