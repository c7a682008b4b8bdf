package synth

import "math"

// DelayLine reproduces constant sensor-reporting latency with a fixed-size
// circular buffer. Capacity is ceil(delay/tick); a zero delay yields the
// identity.
//
// Warm-start: the first sample fills the entire buffer, so the line starts in
// steady state rather than draining zeros. Once warmed, output at tick k
// equals input at tick k-N.
type DelayLine struct {
	buf    []float64
	cursor int
	warmed bool
}

// NewDelayLine creates a delay line for the given delay and tick interval,
// both in seconds.
func NewDelayLine(delay, tickInterval float64) *DelayLine {
	if delay <= 0 || tickInterval <= 0 {
		return &DelayLine{}
	}
	n := int(math.Ceil(delay / tickInterval))
	if n <= 0 {
		return &DelayLine{}
	}
	return &DelayLine{buf: make([]float64, n)}
}

// Capacity returns the number of ticks of latency the line introduces.
func (d *DelayLine) Capacity() int { return len(d.buf) }

// Apply pushes v into the line and returns the delayed sample.
func (d *DelayLine) Apply(v float64) float64 {
	if len(d.buf) == 0 {
		return v
	}
	if !d.warmed {
		for i := range d.buf {
			d.buf[i] = v
		}
		d.warmed = true
	}
	out := d.buf[d.cursor]
	d.buf[d.cursor] = v
	d.cursor = (d.cursor + 1) % len(d.buf)
	return out
}
