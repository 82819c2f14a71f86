package metrics

// Interior is the fraction of pixels that never escaped.
type Interior struct {
	name     string
	interior int
	samples  int
}

func NewInterior() *Interior {
	return &Interior{
		name: "interior_fraction",
	}
}

func (i *Interior) Name() string {
	return i.name
}

func (i *Interior) Observe(n, maxIter int) {
	i.samples++
	if n >= maxIter {
		i.interior++
	}
}

func (i *Interior) Value() float64 {
	if i.samples == 0 {
		return 0
	}
	return float64(i.interior) / float64(i.samples)
}

func (i *Interior) Reset() {
	i.interior = 0
	i.samples = 0
}
