package analysis

import (
	"strings"
)

// BifurcationPoint represents the attractor found for one value of c
type BifurcationPoint struct {
	Param  float64
	Values []float64 // distinct attractor values, empty if the orbit escaped
}

// BifurcationDiagram sweeps c along the real axis and records the values
// the orbit of x -> x^2 + c visits after settling.
//
// Parameters:
// - cMin, cMax: range to sweep, normally within [-2, 0.25]
// - steps: number of c values to test
// - transient, record: iterations to discard, then to record
func BifurcationDiagram(cMin, cMax float64, steps, transient, record int) []BifurcationPoint {
	if steps <= 1 {
		steps = 2 // Prevent division by zero
	}
	results := make([]BifurcationPoint, 0, steps)
	step := (cMax - cMin) / float64(steps-1)

	for i := 0; i < steps; i++ {
		c := cMin + float64(i)*step
		results = append(results, BifurcationPoint{
			Param:  c,
			Values: attractor(c, transient, record),
		})
	}
	return results
}

func attractor(c float64, transient, record int) []float64 {
	x := c
	for i := 0; i < transient; i++ {
		x = x*x + c
		if x > 2 || x < -2 {
			return nil
		}
	}

	values := make([]float64, 0, 16)
	seen := make(map[int]bool)
	for i := 0; i < record; i++ {
		x = x*x + c
		if x > 2 || x < -2 {
			return nil
		}
		// Quantize to find distinct values
		key := int(x * 1000)
		if !seen[key] {
			seen[key] = true
			values = append(values, x)
		}
	}
	return values
}

// BifurcationToASCII converts bifurcation data to ASCII art
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	// Find value range - need at least one valid value
	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Values {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
			} else {
				if v < minVal {
					minVal = v
				}
				if v > maxVal {
					maxVal = v
				}
			}
		}
	}
	if !foundFirst {
		return "" // No values to plot
	}

	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}

		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var b strings.Builder
	for _, row := range canvas {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}
