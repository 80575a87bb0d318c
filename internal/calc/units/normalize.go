// Package units normalises the raw rod-experiment submission into SI values.
//
// Every quantity may come from the submission or fall back to the experiment
// constants. Unknown units are reported and replaced with the default unit;
// geometry that lands outside a plausible window after conversion is flagged
// together with the unit field that most likely caused it.
package units

import (
	"math"

	"Thermolab/internal/calc/diag"
	"Thermolab/internal/calc/numfmt"
	"Thermolab/internal/calc/numparse"
	"Thermolab/internal/domain"
)

const (
	DefaultWaterDensity = 1000.0
	DefaultWaterCp      = 4180.0
	DefaultSpacing      = 0.06

	minPlausibleLength = 1e-6
	maxPlausibleLength = 5.0
	minPlausibleCp     = 1000.0
)

// InsulationTemps are the radial thermocouples around the rod, in °C.
// Section XX reads T12/T13, YY reads T8/T9 and ZZ reads T6/T7.
type InsulationTemps struct {
	T6  float64 `json:"t6"`
	T7  float64 `json:"t7"`
	T8  float64 `json:"t8"`
	T9  float64 `json:"t9"`
	T12 float64 `json:"t12"`
	T13 float64 `json:"t13"`
}

// RodInputs is the canonical record every rod calculation runs on.
// Lengths are metres, flow is m^3/s and kg/s, temperatures are °C.
type RodInputs struct {
	FlowRateValue float64 `json:"flow_rate_value"`
	FlowRateUnit  string  `json:"flow_rate_unit"`
	Rho           float64 `json:"rho"`
	Cpw           float64 `json:"cpw"`
	Kins          float64 `json:"kins"`

	DRod float64 `json:"d_rod"`
	L1   float64 `json:"l1"`
	L2   float64 `json:"l2"`
	L3   float64 `json:"l3"`
	Ri   float64 `json:"ri"`
	Ro   float64 `json:"ro"`
	Dx   float64 `json:"dx"`

	TWaterIn  float64         `json:"t_wi"`
	TWaterOut float64         `json:"t_wo"`
	TRod      [5]float64      `json:"t_rod"`
	TIns      InsulationTemps `json:"t_ins"`

	VdotM3s  float64 `json:"vdot_m3s"`
	MDot     float64 `json:"m_dot"`
	FlowLmin float64 `json:"flow_lmin"`
	Area     float64 `json:"area"`
}

// RawRodInputs keeps the values as entered (after kJ->J rescaling) with their
// resolved unit labels, for audit display.
type RawRodInputs struct {
	FlowRateValue   float64         `json:"flow_rate_value"`
	FlowRateUnit    string          `json:"flow_rate_unit"`
	Rho             float64         `json:"rho"`
	RhoUnit         string          `json:"rho_unit"`
	Cpw             float64         `json:"cpw"`
	CpwUnit         string          `json:"cpw_unit"`
	Kins            float64         `json:"kins"`
	DRod            float64         `json:"d_rod"`
	RodDiameterUnit string          `json:"rod_diameter_unit"`
	L1              float64         `json:"l1"`
	L1Unit          string          `json:"l1_unit"`
	L2              float64         `json:"l2"`
	L2Unit          string          `json:"l2_unit"`
	L3              float64         `json:"l3"`
	L3Unit          string          `json:"l3_unit"`
	Ri              float64         `json:"ri"`
	RiUnit          string          `json:"ri_unit"`
	Ro              float64         `json:"ro"`
	RoUnit          string          `json:"ro_unit"`
	Dx              float64         `json:"dx"`
	DxUnit          string          `json:"dx_unit"`
	TWaterIn        float64         `json:"t_wi"`
	TWaterOut       float64         `json:"t_wo"`
	TRod            [5]float64      `json:"t_rod"`
	TIns            InsulationTemps `json:"t_ins"`
}

// Result is the output of Normalize.
type Result struct {
	Raw        RawRodInputs `json:"raw_inputs"`
	Normalized RodInputs    `json:"normalized"`
}

// GeometryUnitFields lists the unit fields blamed when the overall result is
// implausible and nothing more specific was flagged.
var GeometryUnitFields = []string{
	"flow_rate_unit", "rod_diameter_unit", "l1_unit", "l2_unit", "l3_unit", "ri_unit", "ro_unit",
}

type reader struct {
	raw    domain.RawInputs
	consts domain.Constants
	d      *diag.Diagnostics
}

// num reads key from the submission. Unparsable text is reported and read as 0.
func (r reader) num(key string) (float64, bool) {
	v, ok := r.raw.Get(key)
	if !ok {
		return 0, false
	}
	f, parsed := numparse.ParseStrict(v)
	if !parsed {
		r.d.Flag(key, "%s: could not read %v as a number; using 0.", key, v)
	}
	return f, true
}

func (r reader) numOr(key string, def float64) float64 {
	if f, ok := r.num(key); ok {
		return f
	}
	return def
}

func (r reader) constNum(key string, def float64) float64 {
	c, ok := r.consts.Lookup(key)
	if !ok || domain.IsBlank(c.Value) {
		return def
	}
	return numparse.Parse(c.Value)
}

func (r reader) constUnit(key, def string) string {
	if c, ok := r.consts.Lookup(key); ok && c.Unit != "" {
		return c.Unit
	}
	return def
}

// unit resolves a unit label from the submission, then the constants, then def.
func (r reader) unit(rawKey, constKey, def string, table map[string]string, label string) string {
	u := r.raw.String(rawKey)
	if u == "" {
		u = r.constUnit(constKey, "")
	}
	c, ok := canonical(u, table, def)
	if !ok {
		r.d.Flag(rawKey, "Unknown %s unit '%s'. Assuming %s.", label, u, def)
	}
	return c
}

type lengthSpec struct {
	name    string
	unitKey string
	def     float64
}

var lengthSpecs = [...]lengthSpec{
	{"d_rod", "rod_diameter_unit", 0},
	{"l1", "l1_unit", 0},
	{"l2", "l2_unit", 0},
	{"l3", "l3_unit", 0},
	{"ri", "ri_unit", 0},
	{"ro", "ro_unit", 0},
	{"dx", "dx_unit", DefaultSpacing},
}

// Normalize converts raw rod readings and constants into RodInputs.
func Normalize(raw domain.RawInputs, consts domain.Constants, d *diag.Diagnostics) Result {
	r := reader{raw: raw, consts: consts, d: d}
	var out RawRodInputs
	var n RodInputs

	flowValue, flowUnit := r.flow()

	out.Rho = r.numOr("rho", r.constNum("rho", DefaultWaterDensity))
	out.RhoUnit = r.unit("rho_unit", "rho", KgPerM3, densityUnits, "density")

	out.CpwUnit = r.unit("cpw_unit", "cpw", JPerKgK, specificHeatUnits, "specific heat")
	out.Cpw = r.numOr("cpw", r.constNum("cpw", DefaultWaterCp))
	if out.CpwUnit == KJPerKgK {
		out.Cpw *= 1000.0
	}
	if out.Cpw != 0 && out.Cpw < minPlausibleCp {
		d.Flag("cpw", "Cp value is very low; check if kJ/kgK was entered without unit conversion.")
	}

	out.Kins = r.numOr("kins", r.constNum("kins", 0))

	lengths := make(map[string]float64, len(lengthSpecs))
	for _, spec := range lengthSpecs {
		v := r.numOr(spec.name, r.constNum(spec.name, spec.def))
		u := r.unit(spec.unitKey, spec.name, Meter, lengthUnits, spec.name)
		m := ToMeters(v, u)
		lengths[spec.name] = m
		out.setLength(spec.name, v, u)
		checkLength(d, spec, m)
	}

	out.FlowRateValue, out.FlowRateUnit = flowValue, flowUnit
	out.TWaterIn = r.numOr("t_wi", 0)
	out.TWaterOut = r.numOr("t_wo", 0)
	for i := range out.TRod {
		out.TRod[i] = r.numOr(rodKeys[i], 0)
	}
	out.TIns = InsulationTemps{
		T6:  r.numOr("t6", 0),
		T7:  r.numOr("t7", 0),
		T8:  r.numOr("t8", 0),
		T9:  r.numOr("t9", 0),
		T12: r.numOr("t12", 0),
		T13: r.numOr("t13", 0),
	}

	n.FlowRateValue, n.FlowRateUnit = flowValue, flowUnit
	n.Rho, n.Cpw, n.Kins = out.Rho, out.Cpw, out.Kins
	n.DRod, n.L1, n.L2, n.L3 = lengths["d_rod"], lengths["l1"], lengths["l2"], lengths["l3"]
	n.Ri, n.Ro, n.Dx = lengths["ri"], lengths["ro"], lengths["dx"]
	n.TWaterIn, n.TWaterOut = out.TWaterIn, out.TWaterOut
	n.TRod, n.TIns = out.TRod, out.TIns
	n.VdotM3s, n.MDot, n.FlowLmin = convertFlow(flowValue, flowUnit, n.Rho)
	n.Area = CrossSectionArea(n.DRod)

	return Result{Raw: out, Normalized: n}
}

var rodKeys = [5]string{"t1", "t2", "t3", "t4", "t5"}

// flow resolves the flow reading. Older forms send "vol_flow" in cc/min or a
// bare "flow" in L/min.
func (r reader) flow() (float64, string) {
	value, ok := r.num("flow_rate_value")
	legacyCC := !ok && r.raw.Has("vol_flow")
	if !ok {
		if legacyCC {
			value = r.numOr("vol_flow", 0)
		} else {
			value = r.numOr("flow", 0)
		}
	}
	u := r.raw.String("flow_rate_unit")
	if u == "" {
		if legacyCC {
			return value, CCPerMin
		}
		return value, LitersPerMin
	}
	c, known := CanonicalFlowUnit(u)
	if !known {
		r.d.Flag("flow_rate_unit", "Unknown flow unit '%s'. Assuming L/min.", u)
	}
	return value, c
}

// convertFlow returns volumetric flow (m^3/s), mass flow (kg/s) and the flow
// in L/min for the guardrail checks.
func convertFlow(value float64, unit string, rho float64) (vdot, mdot, lmin float64) {
	switch unit {
	case LitersPerMin, MillilitersPerMin, CCPerMin:
		factor := 1e-3
		lmin = value
		if unit != LitersPerMin {
			factor = 1e-6
			lmin = value / 1000.0
		}
		vdot = value * factor / 60.0
		mdot = rho * vdot
	case KgPerSec, KgPerMin:
		mdot = value
		if unit == KgPerMin {
			mdot = value / 60.0
		}
		if rho != 0 {
			vdot = mdot / rho
			lmin = vdot * 60.0 / 1e-3
		}
	}
	return vdot, mdot, lmin
}

// CrossSectionArea is pi d^2 / 4, or 0 for a zero diameter.
func CrossSectionArea(d float64) float64 {
	if d == 0 {
		return 0
	}
	return math.Pi * d * d / 4.0
}

func checkLength(d *diag.Diagnostics, spec lengthSpec, m float64) {
	if m == 0 {
		return
	}
	if m > maxPlausibleLength || m < minPlausibleLength {
		d.Flag(spec.unitKey, "%s normalized to %s m. Likely unit mismatch.", spec.name, numfmt.Num(m))
	}
}

func (o *RawRodInputs) setLength(name string, v float64, unit string) {
	switch name {
	case "d_rod":
		o.DRod, o.RodDiameterUnit = v, unit
	case "l1":
		o.L1, o.L1Unit = v, unit
	case "l2":
		o.L2, o.L2Unit = v, unit
	case "l3":
		o.L3, o.L3Unit = v, unit
	case "ri":
		o.Ri, o.RiUnit = v, unit
	case "ro":
		o.Ro, o.RoUnit = v, unit
	case "dx":
		o.Dx, o.DxUnit = v, unit
	}
}
