package units

import "strings"

// Canonical unit labels.
const (
	Meter      = "m"
	Millimeter = "mm"

	LitersPerMin      = "L/min"
	MillilitersPerMin = "mL/min"
	CCPerMin          = "cc/min"
	KgPerSec          = "kg/s"
	KgPerMin          = "kg/min"

	KgPerM3 = "kg/m^3"

	JPerKgK  = "J/kgK"
	KJPerKgK = "kJ/kgK"
)

var lengthUnits = map[string]string{
	"m":           Meter,
	"meter":       Meter,
	"meters":      Meter,
	"metre":       Meter,
	"metres":      Meter,
	"mm":          Millimeter,
	"millimeter":  Millimeter,
	"millimeters": Millimeter,
	"millimetre":  Millimeter,
	"millimetres": Millimeter,
}

var flowUnits = map[string]string{
	"l/min":           LitersPerMin,
	"lpm":             LitersPerMin,
	"liter/min":       LitersPerMin,
	"liters/min":      LitersPerMin,
	"litre/min":       LitersPerMin,
	"litres/min":      LitersPerMin,
	"ml/min":          MillilitersPerMin,
	"milliliter/min":  MillilitersPerMin,
	"milliliters/min": MillilitersPerMin,
	"millilitre/min":  MillilitersPerMin,
	"millilitres/min": MillilitersPerMin,
	"cc/min":          CCPerMin,
	"cm^3/min":        CCPerMin,
	"cm3/min":         CCPerMin,
	"kg/s":            KgPerSec,
	"kg/sec":          KgPerSec,
	"kg/min":          KgPerMin,
}

var densityUnits = map[string]string{
	"kg/m3":  KgPerM3,
	"kg/m^3": KgPerM3,
}

var specificHeatUnits = map[string]string{
	"j/kgk":  JPerKgK,
	"kj/kgk": KJPerKgK,
}

// unitKey folds case, whitespace and the usual separators so that
// "J/(kg·K)", "j/kg-k" and "J/kgK" compare equal.
func unitKey(unit string) string {
	k := strings.ToLower(strings.TrimSpace(unit))
	k = strings.Join(strings.Fields(k), "")
	return strings.NewReplacer("(", "", ")", "", "·", "", "*", "", "-", "", ".", "").Replace(k)
}

// canonical maps unit through table. An empty unit yields def; an
// unrecognised one yields def and ok=false.
func canonical(unit string, table map[string]string, def string) (string, bool) {
	if strings.TrimSpace(unit) == "" {
		return def, true
	}
	if c, ok := table[unitKey(unit)]; ok {
		return c, true
	}
	return def, false
}

// CanonicalFlowUnit is exported for the importer, which reads unit cells.
func CanonicalFlowUnit(unit string) (string, bool) {
	return canonical(unit, flowUnits, LitersPerMin)
}

// ToMeters converts a length given in a canonical length unit.
func ToMeters(v float64, unit string) float64 {
	if unit == Millimeter {
		return v / 1000.0
	}
	return v
}
