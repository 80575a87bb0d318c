package conduction

// Row is one line of the audit table shown next to the derivation.
type Row struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// TraceTable flattens the calculation into labelled rows in derivation order.
func TraceTable(out Output) []Row {
	tr := out.Trace
	return []Row{
		{"Vdot", out.Normalized.VdotM3s, "m^3/s"},
		{"m_dot", out.Normalized.MDot, "kg/s"},
		{"Qw", tr.Qw, "W"},
		{"Area", tr.Area, "m^2"},
		{"(dT/dx)_xx", tr.Grads[0], "K/m"},
		{"(dT/dx)_yy", tr.Grads[1], "K/m"},
		{"(dT/dx)_zz", tr.Grads[2], "K/m"},
		{"ln(ro/ri)", tr.LnRoRi, "-"},
		{"Loss_xx", tr.LossXX, "W"},
		{"Loss_yy", tr.LossYY, "W"},
		{"Loss_zz", tr.LossZZ, "W"},
		{"Qxx", tr.Qs[0], "W"},
		{"Qyy", tr.Qs[1], "W"},
		{"Qzz", tr.Qs[2], "W"},
		{"Kxx", tr.Ks[0], "W/mK"},
		{"Kyy", tr.Ks[1], "W/mK"},
		{"Kzz", tr.Ks[2], "W/mK"},
		{"K_avg", tr.KAvg, "W/mK"},
	}
}

// RodProfile is the axial temperature series T1..T5 for plotting.
func RodProfile(out Output) []float64 {
	p := out.Normalized.TRod
	return p[:]
}
