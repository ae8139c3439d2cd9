package descriptor_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stevetorr/flare-pp/internal/basis"
	"github.com/stevetorr/flare-pp/internal/descriptor"
)

// rotate applies a Rodrigues rotation about axis by angle to v.
func rotate(axis [3]float64, angle float64, v [3]float64) [3]float64 {
	n := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	kx, ky, kz := axis[0]/n, axis[1]/n, axis[2]/n
	c, s := math.Cos(angle), math.Sin(angle)
	dot := kx*v[0] + ky*v[1] + kz*v[2]
	cross := [3]float64{
		ky*v[2] - kz*v[1],
		kz*v[0] - kx*v[2],
		kx*v[1] - ky*v[0],
	}
	return [3]float64{
		v[0]*c + cross[0]*s + kx*dot*(1-c),
		v[1]*c + cross[1]*s + ky*dot*(1-c),
		v[2]*c + cross[2]*s + kz*dot*(1-c),
	}
}

var _ = Describe("power spectrum invariance", func() {
	const (
		nSpecies = 2
		nMax     = 3
		lMax     = 3
		cutoff   = 4.5
	)

	var (
		eng *descriptor.B2
		rng *rand.Rand
	)

	BeforeEach(func() {
		eng = descriptor.NewB2(basis.RadialChebyshev, basis.CutoffQuadratic, cutoff, nSpecies, nMax, lMax)
		rng = rand.New(rand.NewSource(7))
	})

	// randomEnv places the central atom at the origin with n neighbors
	// in a shell safely inside the cutoff.
	randomEnv := func(n int) ([]float64, []int) {
		pos := make([]float64, 3*(n+1))
		species := make([]int, n+1)
		species[0] = rng.Intn(nSpecies)
		for j := 1; j <= n; j++ {
			r := 0.8 + rng.Float64()*(0.9*cutoff-0.8)
			theta := math.Acos(2*rng.Float64() - 1)
			phi := 2 * math.Pi * rng.Float64()
			pos[3*j] = r * math.Sin(theta) * math.Cos(phi)
			pos[3*j+1] = r * math.Sin(theta) * math.Sin(phi)
			pos[3*j+2] = r * math.Cos(theta)
			species[j] = rng.Intn(nSpecies)
		}
		return pos, species
	}

	gather := func(pos []float64, species []int, order []int) *descriptor.Neighborhood {
		nb := &descriptor.Neighborhood{}
		nb.Gather(0, pos, species, order, cutoff)
		return nb
	}

	naturalOrder := func(n int) []int {
		order := make([]int, n)
		for j := range order {
			order[j] = j + 1
		}
		return order
	}

	It("is invariant under neighbor permutation", func() {
		pos, species := randomEnv(8)
		order := naturalOrder(8)

		var ref, shuffled descriptor.Result
		eng.Compute(gather(pos, species, order), &ref)

		perm := append([]int(nil), order...)
		rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		eng.Compute(gather(pos, species, perm), &shuffled)

		for d := range ref.B {
			Expect(shuffled.B[d]).To(BeNumerically("~", ref.B[d], 1e-11*(1+math.Abs(ref.B[d]))),
				"descriptor entry %d changed under permutation", d)
		}
		Expect(shuffled.Norm2).To(BeNumerically("~", ref.Norm2, 1e-11*(1+ref.Norm2)))
	})

	It("keys gradient rows to the permuted neighbor order", func() {
		pos, species := randomEnv(6)
		order := naturalOrder(6)

		var ref, shuffled descriptor.Result
		refNb := gather(pos, species, order)
		eng.Compute(refNb, &ref)

		perm := append([]int(nil), order...)
		rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		permNb := gather(pos, species, perm)
		eng.Compute(permNb, &shuffled)

		nDesc := eng.NumDescriptors()
		for q, nbr := range permNb.List {
			refRow := -1
			for p, orig := range refNb.List {
				if orig.Index == nbr.Index {
					refRow = p
					break
				}
			}
			Expect(refRow).To(BeNumerically(">=", 0))
			for c := 0; c < 3; c++ {
				for d := 0; d < nDesc; d++ {
					want := ref.Dervs[(3*refRow+c)*nDesc+d]
					got := shuffled.Dervs[(3*q+c)*nDesc+d]
					Expect(got).To(BeNumerically("~", want, 1e-11*(1+math.Abs(want))))
				}
			}
		}
	})

	It("is invariant under rigid rotation", func() {
		pos, species := randomEnv(10)
		order := naturalOrder(10)

		var ref, rotated descriptor.Result
		eng.Compute(gather(pos, species, order), &ref)

		axis := [3]float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		angle := 2 * math.Pi * rng.Float64()
		rpos := make([]float64, len(pos))
		for j := 0; j <= 10; j++ {
			v := rotate(axis, angle, [3]float64{pos[3*j], pos[3*j+1], pos[3*j+2]})
			rpos[3*j], rpos[3*j+1], rpos[3*j+2] = v[0], v[1], v[2]
		}
		eng.Compute(gather(rpos, species, order), &rotated)

		for d := range ref.B {
			Expect(rotated.B[d]).To(BeNumerically("~", ref.B[d], 1e-9*(1+math.Abs(ref.B[d]))),
				"descriptor entry %d changed under rotation", d)
		}
		Expect(rotated.Norm2).To(BeNumerically("~", ref.Norm2, 1e-9*(1+ref.Norm2)))
	})

	It("returns zeros for an isolated atom", func() {
		pos, species := randomEnv(3)
		var res descriptor.Result
		eng.Compute(gather(pos, species, nil), &res)
		Expect(res.Norm2).To(BeZero())
		for _, v := range res.B {
			Expect(v).To(BeZero())
		}
	})
})
