package metrics

// MeanEscape is the mean iteration count over escaped pixels only.
type MeanEscape struct {
	name    string
	sum     float64
	samples int
}

func NewMeanEscape() *MeanEscape {
	return &MeanEscape{
		name: "mean_escape",
	}
}

func (m *MeanEscape) Name() string {
	return m.name
}

func (m *MeanEscape) Observe(n, maxIter int) {
	if n >= maxIter {
		return
	}
	m.sum += float64(n)
	m.samples++
}

func (m *MeanEscape) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanEscape) Reset() {
	m.sum = 0
	m.samples = 0
}

// MaxEscape is the slowest escape seen, a hint for whether the cap is
// too low for the current zoom.
type MaxEscape struct {
	name string
	max  int
}

func NewMaxEscape() *MaxEscape {
	return &MaxEscape{name: "max_escape"}
}

func (m *MaxEscape) Name() string { return m.name }

func (m *MaxEscape) Observe(n, maxIter int) {
	if n < maxIter && n > m.max {
		m.max = n
	}
}

func (m *MaxEscape) Value() float64 { return float64(m.max) }
func (m *MaxEscape) Reset()         { m.max = 0 }
