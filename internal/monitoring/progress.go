package monitoring

// DefaultProgressStep reports at most roughly a hundred times per stream.
const DefaultProgressStep = 0.01

// Progress throttles fractional progress updates so that a callback fires
// only when the fraction moved by more than Step since the last report.
// The zero value is usable and silent.
type Progress struct {
	Step     float64
	OnUpdate func(fraction float64)

	last     float64
	finished bool
}

// NewProgress returns a Progress that calls fn in DefaultProgressStep increments.
func NewProgress(fn func(fraction float64)) *Progress {
	return &Progress{Step: DefaultProgressStep, OnUpdate: fn}
}

// Update reports done out of total units.
func (p *Progress) Update(done, total int64) {
	if p == nil || p.OnUpdate == nil || total <= 0 || p.finished {
		return
	}
	fraction := float64(done) / float64(total)
	if fraction > 1 {
		fraction = 1
	}
	step := p.Step
	if step <= 0 {
		step = DefaultProgressStep
	}
	if fraction-p.last > step {
		p.last = fraction
		p.OnUpdate(fraction)
	}
}

// Finish reports completion exactly once.
func (p *Progress) Finish() {
	if p == nil || p.OnUpdate == nil || p.finished {
		return
	}
	p.finished = true
	p.last = 1
	p.OnUpdate(1)
}
