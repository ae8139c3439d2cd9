package basis

import (
	"fmt"
	"math"
)

// Harmonics evaluates real spherical harmonics Y_lm of the direction of a
// displacement vector, together with the exact Cartesian gradients of
// Y_lm(d/|d|) with respect to the components of d. Values are indexed
// lm = l*l + l + m for m in [-l, l]; gradients are stored three per entry.
// Instances carry scratch buffers and are not safe for concurrent use.
type Harmonics struct {
	lMax int
	norm []float64 // orthonormalization factors, m >= 0
	p    []float64 // solid associated Legendre values, m >= 0
	dp   []float64 // their Cartesian partials, three per entry
	am   []float64 // Re (x+iy)^m
	bm   []float64 // Im (x+iy)^m
}

// NumHarmonics returns the number of real harmonics through order lMax.
func NumHarmonics(lMax int) int { return (lMax + 1) * (lMax + 1) }

// tri indexes the (l, m >= 0) triangle.
func tri(l int) int { return l * (l + 1) / 2 }

func NewHarmonics(lMax int) *Harmonics {
	if lMax < 0 {
		panic(fmt.Sprintf("basis: negative lMax %d", lMax))
	}
	n := tri(lMax + 1)
	h := &Harmonics{
		lMax: lMax,
		norm: make([]float64, n),
		p:    make([]float64, n),
		dp:   make([]float64, 3*n),
		am:   make([]float64, lMax+1),
		bm:   make([]float64, lMax+1),
	}
	for l := 0; l <= lMax; l++ {
		h.norm[tri(l)] = math.Sqrt(float64(2*l+1) / (4 * math.Pi))
		ratio := 1.0
		for m := 1; m <= l; m++ {
			ratio /= float64((l - m + 1) * (l + m))
			h.norm[tri(l)+m] = math.Sqrt(float64(2*l+1) / (2 * math.Pi) * ratio)
		}
	}
	return h
}

func (h *Harmonics) LMax() int { return h.lMax }

// Eval writes the harmonics of direction d = (x, y, z) into vals (length
// NumHarmonics) and their gradients into grads (grads[3*lm+c]). d must be
// nonzero.
func (h *Harmonics) Eval(x, y, z float64, vals, grads []float64) {
	nh := NumHarmonics(h.lMax)
	if len(vals) < nh || len(grads) < 3*nh {
		panic("basis: harmonics output buffers too short")
	}
	r2 := x*x + y*y + z*z
	r := math.Sqrt(r2)

	// Powers of (x+iy).
	h.am[0], h.bm[0] = 1, 0
	for m := 1; m <= h.lMax; m++ {
		h.am[m] = x*h.am[m-1] - y*h.bm[m-1]
		h.bm[m] = x*h.bm[m-1] + y*h.am[m-1]
	}

	// Solid associated Legendre functions and their partials. Every entry
	// is a polynomial in x, y, z, so the recursion differentiates cleanly.
	h.p[0] = 1
	h.dp[0], h.dp[1], h.dp[2] = 0, 0, 0
	dfact := 1.0
	for m := 0; m <= h.lMax; m++ {
		im := tri(m) + m
		if m > 0 {
			dfact *= float64(2*m - 1)
			h.p[im] = dfact
			h.dp[3*im], h.dp[3*im+1], h.dp[3*im+2] = 0, 0, 0
		}
		if m+1 <= h.lMax {
			i1 := tri(m+1) + m
			c := float64(2*m + 1)
			h.p[i1] = c * z * h.p[im]
			h.dp[3*i1] = 0
			h.dp[3*i1+1] = 0
			h.dp[3*i1+2] = c * h.p[im]
		}
		for l := m + 2; l <= h.lMax; l++ {
			i0 := tri(l-2) + m
			i1 := tri(l-1) + m
			i2 := tri(l) + m
			inv := 1 / float64(l-m)
			c1 := float64(2*l-1) * inv
			c2 := float64(l+m-1) * inv
			p0, p1 := h.p[i0], h.p[i1]
			h.p[i2] = c1*z*p1 - c2*r2*p0
			h.dp[3*i2] = c1*z*h.dp[3*i1] - c2*(2*x*p0+r2*h.dp[3*i0])
			h.dp[3*i2+1] = c1*z*h.dp[3*i1+1] - c2*(2*y*p0+r2*h.dp[3*i0+1])
			h.dp[3*i2+2] = c1*(p1+z*h.dp[3*i1+2]) - c2*(2*z*p0+r2*h.dp[3*i0+2])
		}
	}

	// Assemble solid harmonics S_lm and project onto the unit sphere:
	// Y = S / r^l, dY/da = dS/da / r^l - l S a / r^(l+2).
	rl := 1.0
	for l := 0; l <= h.lMax; l++ {
		if l > 0 {
			rl *= r
		}
		invRl := 1 / rl
		proj := float64(l) * invRl / r2
		base := l*l + l
		for m := 0; m <= l; m++ {
			i := tri(l) + m
			f := h.norm[i]
			pv := h.p[i]
			dpx, dpy, dpz := h.dp[3*i], h.dp[3*i+1], h.dp[3*i+2]
			if m == 0 {
				s := f * pv
				vals[base] = s * invRl
				grads[3*base] = f*dpx*invRl - s*x*proj
				grads[3*base+1] = f*dpy*invRl - s*y*proj
				grads[3*base+2] = f*dpz*invRl - s*z*proj
				continue
			}
			a, b := h.am[m], h.bm[m]
			da := float64(m) * h.am[m-1]
			db := float64(m) * h.bm[m-1]

			// Cosine component at +m.
			s := f * pv * a
			sx := f * (dpx*a + pv*da)
			sy := f * (dpy*a - pv*db)
			sz := f * dpz * a
			idx := base + m
			vals[idx] = s * invRl
			grads[3*idx] = sx*invRl - s*x*proj
			grads[3*idx+1] = sy*invRl - s*y*proj
			grads[3*idx+2] = sz*invRl - s*z*proj

			// Sine component at -m.
			s = f * pv * b
			sx = f * (dpx*b + pv*db)
			sy = f * (dpy*b + pv*da)
			sz = f * dpz * b
			idx = base - m
			vals[idx] = s * invRl
			grads[3*idx] = sx*invRl - s*x*proj
			grads[3*idx+1] = sy*invRl - s*y*proj
			grads[3*idx+2] = sz*invRl - s*z*proj
		}
	}
}
