package convection

import (
	"strings"

	"Thermolab/internal/calc/airprops"
	"Thermolab/internal/calc/diag"
	"Thermolab/internal/calc/numparse"
	"Thermolab/internal/domain"
)

// Mode selects where air properties come from.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
)

// ParseMode reads the air_props_mode field; anything starting with "man" is manual.
func ParseMode(v any) Mode {
	s, _ := v.(string)
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "man") {
		return ModeManual
	}
	return ModeAuto
}

// ManualProps are the air properties typed in by the student. Zero means
// not supplied.
type ManualProps struct {
	Rho float64 `json:"rho_air"`
	Cp  float64 `json:"cp_air"`
	K   float64 `json:"k_air"`
	Mu  float64 `json:"mu_air"`
	Nu  float64 `json:"nu_air"`
	Pr  float64 `json:"pr_air"`
}

func readManual(raw domain.RawInputs, d *diag.Diagnostics) ManualProps {
	get := func(key string) float64 {
		v, ok := raw.Get(key)
		if !ok {
			return 0
		}
		f, parsed := numparse.ParseStrict(v)
		if !parsed {
			d.Flag(key, "%s: could not read %v as a number; treating it as missing.", key, v)
		}
		return f
	}
	m := ManualProps{
		Rho: get("rho_air"),
		Cp:  get("cp_air"),
		K:   get("k_air"),
		Mu:  get("mu_air"),
		Nu:  get("nu_air"),
		Pr:  get("pr_air"),
	}
	if m.Mu == 0 && m.Nu != 0 && m.Rho != 0 {
		m.Mu = m.Nu * m.Rho
	}
	if m.Nu == 0 && m.Mu != 0 && m.Rho != 0 {
		m.Nu = m.Mu / m.Rho
	}
	if m.Pr == 0 && m.Cp != 0 && m.Mu != 0 && m.K != 0 {
		m.Pr = m.Cp * m.Mu / m.K
	}
	return m
}

// check reports gaps in the manual set once per calculation.
func (m ManualProps) check(d *diag.Diagnostics) {
	incomplete := false
	if m.Rho == 0 || m.K == 0 {
		incomplete = true
		d.Warn("Manual properties are incomplete; rho and k are required for accurate results.")
	}
	if m.Mu == 0 && m.Nu == 0 {
		incomplete = true
		d.Warn("Manual properties missing viscosity; provide mu or nu.")
	}
	if m.Pr == 0 {
		incomplete = true
		d.Warn("Manual properties missing Prandtl number; using computed value if possible.")
	}
	if incomplete {
		d.Warn("Manual properties are incomplete; auto values will be used for missing fields.")
	}
}

// Resolved is the property set used for one trial.
type Resolved struct {
	airprops.Properties
	// Substituted lists the properties taken from the reference table in
	// manual mode.
	Substituted []string `json:"substituted,omitempty"`
}

// UsedTable reports whether any value came from the reference table.
func (r Resolved) UsedTable(mode Mode) bool {
	return mode == ModeAuto || len(r.Substituted) > 0
}

// resolve returns the properties at film temperature tf. Manual values are
// back-filled first from each other, then from the table.
func resolve(mode Mode, m ManualProps, tf float64) Resolved {
	auto := airprops.At(tf)
	if mode == ModeAuto {
		return Resolved{Properties: auto}
	}

	var r Resolved
	p := airprops.Properties{Rho: m.Rho, Cp: m.Cp, K: m.K, Mu: m.Mu, Nu: m.Nu, Pr: m.Pr}
	sub := func(name string, dst *float64, v float64) {
		*dst = v
		r.Substituted = append(r.Substituted, name)
	}

	if p.Rho == 0 && p.Mu != 0 && p.Nu != 0 {
		p.Rho = p.Mu / p.Nu
	}
	if p.Rho == 0 {
		sub("rho", &p.Rho, auto.Rho)
	}
	if p.Cp == 0 {
		sub("cp", &p.Cp, auto.Cp)
	}
	if p.K == 0 {
		sub("k_air", &p.K, auto.K)
	}
	if p.Mu == 0 && p.Nu != 0 {
		p.Mu = p.Nu * p.Rho
	}
	if p.Nu == 0 && p.Mu != 0 {
		p.Nu = p.Mu / p.Rho
	}
	if p.Mu == 0 && p.Nu == 0 {
		sub("mu", &p.Mu, auto.Mu)
		sub("nu", &p.Nu, auto.Nu)
	}
	if p.Pr == 0 && p.Mu != 0 && p.K != 0 {
		p.Pr = p.Cp * p.Mu / p.K
	}
	if p.Pr == 0 {
		sub("pr", &p.Pr, auto.Pr)
	}
	r.Properties = p
	return r
}
