// Package importer reads observation sheets exported from the lab's
// spreadsheets.
//
// A natural-convection workbook has a header row (trial, v, i, t1..t7) and
// one trial per row. A metal-rod workbook is a key/value sheet: field name,
// value and an optional unit column.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"Thermolab/internal/calc/units"
	"Thermolab/internal/domain"
)

var (
	ErrEmptySheet  = errors.New("importer: sheet has no data rows")
	ErrUnsupported = errors.New("importer: experiment has no sheet layout")
	ErrNoHeader    = errors.New("importer: header row has no known columns")
)

// trialColumns are the header names understood for convection sheets.
var trialColumns = map[string]string{
	"trial": "trial", "no": "trial", "#": "trial",
	"v": "v", "voltage": "v",
	"i": "i", "current": "i",
	"t1": "t1", "t2": "t2", "t3": "t3", "t4": "t4", "t5": "t5", "t6": "t6", "t7": "t7",
	"ta": "ta",
}

// rodUnitKeys maps a rod field to the input that carries its unit.
var rodUnitKeys = map[string]string{
	"flow_rate_value": "flow_rate_unit",
	"d_rod":           "rod_diameter_unit",
	"l1":              "l1_unit",
	"l2":              "l2_unit",
	"l3":              "l3_unit",
	"ri":              "ri_unit",
	"ro":              "ro_unit",
	"dx":              "dx_unit",
	"rho":             "rho_unit",
	"cpw":             "cpw_unit",
}

// Read parses the first sheet of an xlsx workbook into raw inputs for slug.
func Read(r io.Reader, slug string) (domain.RawInputs, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("importer: open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("importer: read sheet: %w", err)
	}
	return FromRows(rows, slug)
}

// FromRows converts sheet rows into raw inputs for slug.
func FromRows(rows [][]string, slug string) (domain.RawInputs, error) {
	switch slug {
	case domain.SlugNaturalConvection:
		return trials(rows)
	case domain.SlugThermalConductivity:
		return rodReadings(rows)
	}
	return nil, ErrUnsupported
}

func trials(rows [][]string) (domain.RawInputs, error) {
	if len(rows) < 2 {
		return nil, ErrEmptySheet
	}
	cols := make(map[int]string, len(rows[0]))
	for i, h := range rows[0] {
		if name, ok := trialColumns[cell(h)]; ok {
			cols[i] = name
		}
	}
	if len(cols) == 0 {
		return nil, ErrNoHeader
	}

	obs := make([]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]any, len(cols))
		for i, name := range cols {
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				rec[name] = strings.TrimSpace(row[i])
			}
		}
		if len(rec) == 0 {
			continue
		}
		obs = append(obs, rec)
	}
	if len(obs) == 0 {
		return nil, ErrEmptySheet
	}
	return domain.RawInputs{"observations": obs}, nil
}

func rodReadings(rows [][]string) (domain.RawInputs, error) {
	out := make(domain.RawInputs)
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		key := cell(row[0])
		if key == "" || (i == 0 && (key == "field" || key == "key" || key == "name")) {
			continue
		}
		value := strings.TrimSpace(row[1])
		if value == "" {
			continue
		}
		out[key] = value
		if len(row) > 2 {
			if unit := strings.TrimSpace(row[2]); unit != "" {
				if uk, ok := rodUnitKeys[key]; ok {
					out[uk] = rodUnit(uk, unit)
				}
			}
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptySheet
	}
	return out, nil
}

// rodUnit canonicalises recognised flow units; other units are passed on
// for the normaliser to judge.
func rodUnit(key, unit string) string {
	if key == "flow_rate_unit" {
		if c, ok := units.CanonicalFlowUnit(unit); ok {
			return c
		}
	}
	return unit
}

func cell(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
