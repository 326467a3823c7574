package sensitivity

// DefaultTableSize covers 0..256 px/s at one sample per px/s.
const DefaultTableSize = 257

// Table precomputes the curve at integer speeds; index i holds Evaluate(i).
func Table(n int, p CurveParameters) []float32 {
	if n <= 0 {
		return nil
	}
	table := make([]float32, n)
	for i := range table {
		table[i] = Evaluate(float32(i), p)
	}
	return table
}

// Lookup reads a precomputed table, clamping the speed to the table bounds.
func Lookup(table []float32, speed float32) float32 {
	if len(table) == 0 {
		return 0
	}
	idx := int(speed)
	if speed < 0 {
		idx = 0
	}
	if idx > len(table)-1 {
		idx = len(table) - 1
	}
	return table[idx]
}

// Points returns the table as (speed, multiplier) pairs for plotting.
func Points(table []float32) [][2]float32 {
	pts := make([][2]float32, len(table))
	for i, v := range table {
		pts[i] = [2]float32{float32(i), v}
	}
	return pts
}
