// Package airprops holds the reference properties of dry air at atmospheric
// pressure, tabulated by absolute temperature.
package airprops

type Property string

const (
	Density             Property = "density"
	SpecificHeat        Property = "specific_heat"
	ThermalConductivity Property = "thermal_conductivity"
	DynamicViscosity    Property = "dynamic_viscosity"
	Prandtl             Property = "prandtl"
)

// Breakpoint is one row of the reference table.
type Breakpoint struct {
	T   float64 // K
	Rho float64 // kg/m^3
	Cp  float64 // J/(kg K)
	K   float64 // W/(m K)
	Mu  float64 // Pa s
	Pr  float64
}

func (b Breakpoint) value(p Property) float64 {
	switch p {
	case Density:
		return b.Rho
	case SpecificHeat:
		return b.Cp
	case ThermalConductivity:
		return b.K
	case DynamicViscosity:
		return b.Mu
	case Prandtl:
		return b.Pr
	}
	return 0
}

var table = [...]Breakpoint{
	{T: 250, Rho: 1.394, Cp: 1006, K: 0.0223, Mu: 1.70e-5, Pr: 0.71},
	{T: 300, Rho: 1.177, Cp: 1007, K: 0.02624, Mu: 1.846e-5, Pr: 0.707},
	{T: 350, Rho: 1.007, Cp: 1009, K: 0.0300, Mu: 2.08e-5, Pr: 0.70},
	{T: 400, Rho: 0.882, Cp: 1012, K: 0.0339, Mu: 2.29e-5, Pr: 0.69},
	{T: 450, Rho: 0.784, Cp: 1015, K: 0.0370, Mu: 2.50e-5, Pr: 0.69},
	{T: 500, Rho: 0.707, Cp: 1017, K: 0.0400, Mu: 2.70e-5, Pr: 0.69},
}

// MinTemp and MaxTemp bound the tabulated range in kelvin.
func MinTemp() float64 { return table[0].T }
func MaxTemp() float64 { return table[len(table)-1].T }

// InRange reports whether tempK lies inside the table without clamping.
func InRange(tempK float64) bool {
	return tempK >= MinTemp() && tempK <= MaxTemp()
}

// Interpolate returns property p at tempK, linear between breakpoints and
// clamped to the end rows outside the table.
func Interpolate(tempK float64, p Property) float64 {
	first, last := table[0], table[len(table)-1]
	if tempK <= first.T {
		return first.value(p)
	}
	if tempK >= last.T {
		return last.value(p)
	}
	for i := 0; i < len(table)-1; i++ {
		lo, hi := table[i], table[i+1]
		if tempK > hi.T {
			continue
		}
		if tempK == hi.T {
			return hi.value(p)
		}
		frac := (tempK - lo.T) / (hi.T - lo.T)
		v0, v1 := lo.value(p), hi.value(p)
		return v0 + frac*(v1-v0)
	}
	return last.value(p)
}

// Properties is a full set of air properties at one temperature.
type Properties struct {
	Rho float64 `json:"rho"`
	Cp  float64 `json:"cp"`
	K   float64 `json:"k_air"`
	Mu  float64 `json:"mu"`
	Nu  float64 `json:"nu"`
	Pr  float64 `json:"pr"`
}

// At interpolates every property at tempK. Kinematic viscosity is mu/rho.
func At(tempK float64) Properties {
	p := Properties{
		Rho: Interpolate(tempK, Density),
		Cp:  Interpolate(tempK, SpecificHeat),
		K:   Interpolate(tempK, ThermalConductivity),
		Mu:  Interpolate(tempK, DynamicViscosity),
		Pr:  Interpolate(tempK, Prandtl),
	}
	p.Nu = KinematicViscosity(p.Mu, p.Rho)
	return p
}

// KinematicViscosity returns mu/rho, or 0 when rho is 0.
func KinematicViscosity(mu, rho float64) float64 {
	if rho == 0 {
		return 0
	}
	return mu / rho
}
