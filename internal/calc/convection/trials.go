package convection

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"Thermolab/internal/calc/numparse"
	"Thermolab/internal/domain"
)

// Observation is one trial as read from the submission. A nil temperature
// means the reading was not supplied.
type Observation struct {
	Trial int         `json:"trial"`
	V     float64     `json:"v"`
	I     float64     `json:"i"`
	Temps [6]*float64 `json:"temps"`
	Ta    *float64    `json:"ta"`

	// Unreadable names the fields whose text could not be parsed.
	Unreadable []string `json:"-"`
}

// Missing reports whether any surface or ambient temperature is absent.
func (o Observation) Missing() bool {
	if o.Ta == nil {
		return true
	}
	for _, t := range o.Temps {
		if t == nil {
			return true
		}
	}
	return false
}

var trialKey = regexp.MustCompile(`(?i)^trial_(\d+)_(v|i|t[1-7]|ta)$`)

var singleTrialKeys = []string{"v", "i", "voltage", "current", "t1", "t2", "t3", "t4", "t5", "t6", "t7", "ta"}

// ParseObservations reads trials from the submission. Three shapes are
// accepted, in order: an "observations" list (or its JSON text), flattened
// trial_N_field keys, and a single unlabelled trial.
func ParseObservations(raw domain.RawInputs) []Observation {
	if v, ok := raw["observations"]; ok {
		if rows, ok := observationRows(v); ok {
			out := make([]Observation, 0, len(rows))
			for i, row := range rows {
				out = append(out, observationFromRow(row, i+1))
			}
			return out
		}
	}

	if obs := flattenedTrials(raw); len(obs) > 0 {
		return obs
	}

	lower := lowerKeys(raw)
	for _, k := range singleTrialKeys {
		if _, ok := lower[k]; ok {
			return []Observation{observationFromRow(lower, 1)}
		}
	}
	return nil
}

// observationRows accepts a decoded list or the JSON text of one. Entries
// that are not objects are skipped.
func observationRows(v any) ([]map[string]any, bool) {
	if s, ok := v.(string); ok {
		var decoded []any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, true
		}
		v = decoded
	}
	switch list := v.(type) {
	case []map[string]any:
		return list, true
	case []any:
		rows := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				rows = append(rows, m)
			}
		}
		return rows, true
	}
	return nil, false
}

func observationFromRow(row map[string]any, position int) Observation {
	lower := lowerKeys(row)
	o := Observation{Trial: position}
	if n, ok := trialNumber(lower["trial"]); ok {
		o.Trial = n
	}
	o.V = o.number("v", first(lower, "v", "voltage"))
	o.I = o.number("i", first(lower, "i", "current"))
	for i := range o.Temps {
		key := "t" + strconv.Itoa(i+1)
		o.Temps[i] = o.reading(key, lower[key])
	}
	o.Ta = o.reading("t7", first(lower, "t7", "ta"))
	return o
}

func flattenedTrials(raw domain.RawInputs) []Observation {
	byTrial := make(map[int]map[string]any)
	for key, val := range raw {
		m := trialKey.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if byTrial[idx] == nil {
			byTrial[idx] = make(map[string]any)
		}
		byTrial[idx][strings.ToLower(m[2])] = val
	}
	if len(byTrial) == 0 {
		return nil
	}
	idxs := make([]int, 0, len(byTrial))
	for idx := range byTrial {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	out := make([]Observation, 0, len(idxs))
	for _, idx := range idxs {
		o := observationFromRow(byTrial[idx], idx)
		o.Trial = idx
		out = append(out, o)
	}
	return out
}

func (o *Observation) number(field string, v any) float64 {
	f, ok := numparse.ParseStrict(v)
	if !ok {
		o.Unreadable = append(o.Unreadable, fmt.Sprintf("%s=%v", field, v))
	}
	return f
}

func (o *Observation) reading(field string, v any) *float64 {
	if domain.IsBlank(v) {
		return nil
	}
	f := o.number(field, v)
	return &f
}

func trialNumber(v any) (int, bool) {
	if domain.IsBlank(v) {
		return 0, false
	}
	f, ok := numparse.ParseStrict(v)
	if !ok || f < 1 {
		return 0, false
	}
	return int(f), true
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && !domain.IsBlank(v) {
			return v
		}
	}
	return nil
}

func lowerKeys[M ~map[string]any](m M) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
