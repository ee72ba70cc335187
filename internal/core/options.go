package core

import (
	"fmt"
	"strings"
)

// Options are the operator's choices for one generation. The yaml tags are the
// CLI job-file keys; the json tags are used by the web API.
type Options struct {
	// OrderColumn is the field records are sorted by. Empty means guess.
	OrderColumn string `yaml:"order_column" json:"order_column"`

	// ExtraGlobals are merged into the placeholder context and override
	// values from the first row.
	ExtraGlobals map[string]string `yaml:"extra_globals" json:"extra_globals"`

	// UseMarkerBlock enables the list block inserted at MarkerText.
	UseMarkerBlock bool `yaml:"use_marker_block" json:"use_marker_block"`

	// MarkerText is the literal text replaced by the list block.
	MarkerText string `yaml:"marker_text" json:"marker_text"`

	// MarkerColumns are the fields composing each generated line, in order.
	MarkerColumns []string `yaml:"marker_columns" json:"marker_columns"`

	// LabelColumns prefixes each value with "FIELD: ".
	LabelColumns bool `yaml:"label_columns" json:"label_columns"`

	// LineSeparator joins the fields of one line.
	LineSeparator string `yaml:"line_separator" json:"line_separator"`

	// SpaceAfterPt is the spacing after each inserted paragraph, in points.
	SpaceAfterPt int `yaml:"space_after_pt" json:"space_after_pt"`

	// MarkerScope is "body" (top-level body paragraphs) or "all".
	MarkerScope string `yaml:"marker_scope" json:"marker_scope"`
}

// DefaultOptions returns the options used when the operator changes nothing.
func DefaultOptions() Options {
	return Options{
		MarkerText:    DefaultMarkerText,
		LineSeparator: " - ",
		SpaceAfterPt:  6,
		MarkerScope:   ScopeBody.String(),
	}
}

// Validate checks option ranges. Errors start with "invalid option".
func (o Options) Validate() error {
	var errs []string
	if o.SpaceAfterPt < 0 {
		errs = append(errs, fmt.Sprintf("space_after_pt (%d) must be non-negative", o.SpaceAfterPt))
	}
	switch o.MarkerScope {
	case "", "body", "all":
	default:
		errs = append(errs, fmt.Sprintf("marker_scope (%q) must be one of: body, all", o.MarkerScope))
	}
	if o.UseMarkerBlock && strings.TrimSpace(o.MarkerText) == "" {
		errs = append(errs, "marker_text is required when use_marker_block is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid option: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Clone returns a deep copy.
func (o Options) Clone() Options {
	c := o
	if o.ExtraGlobals != nil {
		c.ExtraGlobals = make(map[string]string, len(o.ExtraGlobals))
		for k, v := range o.ExtraGlobals {
			c.ExtraGlobals[k] = v
		}
	}
	c.MarkerColumns = append([]string(nil), o.MarkerColumns...)
	return c
}
