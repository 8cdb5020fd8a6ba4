// Package sphere maps sequence indices to points on the unit 4-sphere.
//
// The construction is a Fibonacci lattice on S² composed with an inverse
// Hopf lift: the lattice spreads base points evenly over the 2-sphere with
// a golden-ratio longitude, and an independent plastic-constant fiber
// phase lifts each base point to S³. The two multipliers are incommensurate
// irrationals, so the base angle and fiber angle never fall into rational
// resonance and no two indices collide or cluster.
package sphere

import (
	"fmt"
	"math"
)

const (
	// goldenRatio drives the S² longitude.
	goldenRatio = 1.6180339887498948482

	// plastic drives the Hopf fiber phase. The plastic constant (real
	// root of x³ = x + 1) is incommensurate with the golden ratio.
	plastic = 1.3247179572447460260
)

// NormTolerance is the maximum allowed deviation of a position from unit
// norm. Exceeding it after renormalization is an internal invariant
// violation.
const NormTolerance = 1e-6

// Point returns the S³ position for sequence index i of n. The midpoint
// rule (i+0.5)/n keeps every index off the poles, where the Hopf fiber
// degenerates. Pure function: identical (i, n) reproduce identical output
// bit for bit.
func Point(i, n int) [4]float64 {
	t := (float64(i) + 0.5) / float64(n)

	// Fibonacci lattice on S², y as the polar axis.
	y := 1 - 2*t
	theta := 2 * math.Pi * t * goldenRatio

	// Inverse Hopf lift: base point at polar angle alpha, azimuth theta,
	// fiber phase psi.
	alpha := math.Acos(math.Max(-1, math.Min(1, y)))
	psi := 2 * math.Pi * t * plastic

	sinHalf, cosHalf := math.Sincos(alpha / 2)
	sinPsi, cosPsi := math.Sincos(psi)
	sinTP, cosTP := math.Sincos(theta + psi)

	p := [4]float64{
		cosHalf * cosPsi,
		cosHalf * sinPsi,
		sinHalf * cosTP,
		sinHalf * sinTP,
	}
	return normalize(p)
}

// Norm returns the Euclidean norm of a position.
func Norm(p [4]float64) float64 {
	return math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2] + p[3]*p[3])
}

// CheckUnit returns an error when a position has drifted off the unit
// sphere beyond tolerance.
func CheckUnit(p [4]float64) error {
	if d := math.Abs(Norm(p) - 1); d > NormTolerance {
		return fmt.Errorf("position off unit sphere by %g", d)
	}
	return nil
}

func normalize(p [4]float64) [4]float64 {
	n := Norm(p)
	if n == 0 {
		return p
	}
	inv := 1 / n
	return [4]float64{p[0] * inv, p[1] * inv, p[2] * inv, p[3] * inv}
}
