package domain

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	SlugThermalConductivity = "therm-conductivity-metal-rod"
	SlugNaturalConvection   = "natural-convection-vertical-tube"
)

// Constant is one named experiment constant as stored with the experiment definition.
type Constant struct {
	Value       any    `json:"value" yaml:"value"`
	Unit        string `json:"unit" yaml:"unit"`
	Description string `json:"description" yaml:"description"`
}

// UnmarshalJSON also accepts the short "desc" key used by older definitions.
func (c *Constant) UnmarshalJSON(b []byte) error {
	var aux struct {
		Value       any    `json:"value"`
		Unit        string `json:"unit"`
		Description string `json:"description"`
		Desc        string `json:"desc"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c.Value = aux.Value
	c.Unit = aux.Unit
	c.Description = aux.Description
	if c.Description == "" {
		c.Description = aux.Desc
	}
	return nil
}

type Constants map[string]Constant

// Lookup returns the constant and whether it was defined.
func (c Constants) Lookup(name string) (Constant, bool) {
	if c == nil {
		return Constant{}, false
	}
	v, ok := c[name]
	return v, ok
}

// RawInputs is the form-like submission: field name to text or number.
type RawInputs map[string]any

// Get returns the value under key and whether it is present and non-blank.
func (r RawInputs) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[key]
	if !ok || IsBlank(v) {
		return nil, false
	}
	return v, true
}

// String returns the trimmed text form of a present value, or "".
func (r RawInputs) String(key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.Trim(string(b), `"`)
}

// Has reports whether key exists at all, blank or not.
func (r RawInputs) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r[key]
	return ok
}

// IsBlank reports nil values and whitespace-only strings.
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Experiment is a stored experiment definition.
type Experiment struct {
	ID      int     `json:"id" yaml:"-"`
	Slug    string  `json:"slug" yaml:"slug"`
	Title   string  `json:"title" yaml:"title"`
	Content Content `json:"content" yaml:"content"`
}

// Content mirrors the JSON document stored with each experiment.
type Content struct {
	Aim         string      `json:"aim,omitempty" yaml:"aim"`
	Apparatus   string      `json:"apparatus,omitempty" yaml:"apparatus"`
	Description string      `json:"description,omitempty" yaml:"description"`
	Theory      string      `json:"theory,omitempty" yaml:"theory"`
	Procedure   []string    `json:"procedure,omitempty" yaml:"procedure"`
	Inputs      []InputSpec `json:"inputs,omitempty" yaml:"inputs"`
	Constants   Constants   `json:"constants" yaml:"constants"`
	Viva        []Viva      `json:"viva,omitempty" yaml:"viva"`
}

// InputSpec describes one form field of an experiment.
type InputSpec struct {
	Name     string   `json:"name" yaml:"name"`
	Label    string   `json:"label" yaml:"label"`
	Unit     string   `json:"unit,omitempty" yaml:"unit"`
	Type     string   `json:"type,omitempty" yaml:"type"`
	Group    string   `json:"group,omitempty" yaml:"group"`
	Options  []Option `json:"options,omitempty" yaml:"options"`
	Required *bool    `json:"required,omitempty" yaml:"required"`
}

type Option struct {
	Value    string `json:"value" yaml:"value"`
	Label    string `json:"label" yaml:"label"`
	Selected bool   `json:"selected,omitempty" yaml:"selected"`
}

// Viva is a question and model answer for the oral examination.
type Viva struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Run is one saved student submission.
type Run struct {
	ID           int             `json:"id"`
	ExperimentID int             `json:"experiment_id"`
	Slug         string          `json:"slug,omitempty"`
	StudentName  string          `json:"student_name"`
	USN          string          `json:"usn"`
	Date         time.Time       `json:"date"`
	Inputs       json.RawMessage `json:"inputs"`
	Results      json.RawMessage `json:"results"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalExperiments int `json:"total_experiments"`
	TotalRuns        int `json:"total_runs"`
}
