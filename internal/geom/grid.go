package geom

// Grid is a row-major 2D grid of material fractions in [0,1].
// Once handed to the predictor a Grid is treated as read-only; transforms
// allocate fresh output instead of mutating in place.
type Grid struct {
	W, H int
	Pix  []float32
}

// New returns a zero-filled grid of the given dimensions.
func New(w, h int) Grid {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Grid{W: w, H: h, Pix: make([]float32, w*h)}
}

// Empty reports whether the grid has no pixels.
func (g Grid) Empty() bool { return g.W == 0 || g.H == 0 }

// At returns the value at (x, y). Callers must stay in bounds.
func (g Grid) At(x, y int) float32 { return g.Pix[y*g.W+x] }

// Set writes the value at (x, y). Used during construction only.
func (g Grid) Set(x, y int, v float32) { g.Pix[y*g.W+x] = v }

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	out := Grid{W: g.W, H: g.H, Pix: make([]float32, len(g.Pix))}
	copy(out.Pix, g.Pix)
	return out
}

// Uniform returns a grid with every pixel set to v.
func Uniform(w, h int, v float32) Grid {
	g := New(w, h)
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

// Binarize thresholds a probability map at 0.5 into {0,1}.
// Idempotent: binarizing a binary grid returns an equal grid.
func Binarize(g Grid) Grid {
	out := Grid{W: g.W, H: g.H, Pix: make([]float32, len(g.Pix))}
	for i, v := range g.Pix {
		if v >= 0.5 {
			out.Pix[i] = 1
		}
	}
	return out
}

// Uncertainty maps each probability p to 1 - 2*|0.5-p|: maximal (1) at
// p=0.5, zero where the prediction is certain (p exactly 0 or 1).
func Uncertainty(g Grid) Grid {
	out := Grid{W: g.W, H: g.H, Pix: make([]float32, len(g.Pix))}
	for i, p := range g.Pix {
		d := 0.5 - p
		if d < 0 {
			d = -d
		}
		u := 1 - 2*d
		if u < 0 {
			u = 0
		}
		out.Pix[i] = u
	}
	return out
}
