package meter

// defaultDamperDepth bounds how many falling readings feed the average.
const defaultDamperDepth = 16

// Damper smooths the live meter's descent: a reading lower than the previous
// one is averaged with the recent run of falling readings so the needle sinks
// gradually instead of flickering. A rising reading passes through untouched
// and clears the run.
type Damper struct {
	last  float64
	run   []float64
	depth int
	seen  bool
}

// NewDamper creates a damper averaging over at most depth falling readings.
func NewDamper(depth int) *Damper {
	if depth <= 0 {
		depth = defaultDamperDepth
	}
	return &Damper{depth: depth}
}

// Damp returns the display value for a new level reading.
func (d *Damper) Damp(db float64) float64 {
	if !d.seen || db >= d.last {
		d.seen = true
		d.last = db
		d.run = d.run[:0]
		return db
	}

	if len(d.run) >= d.depth {
		d.run = d.run[1:]
	}
	d.run = append(d.run, db)

	sum := 0.0
	for _, v := range d.run {
		sum += v
	}
	damped := sum / float64(len(d.run))

	d.last = damped
	return damped
}
