// Copyright 2024 The Structex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package modal implements modal response analysis of linear structural
// systems: generalized eigen-decomposition into natural modes,
// participation factors, modal damping ratios, and the superposition of
// per-mode peak responses obtained from an acceleration spectrum.
package modal

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"
)

// SpectrumFn returns the spectral acceleration for a natural period and a
// damping ratio. Spectrum functions are supplied by seismic-load
// collaborators and consumed uninterpreted.
type SpectrumFn func(period, damping float64) float64

// imtol limits the relative imaginary part accepted on eigenvalues before
// the decomposition is rejected
const imtol = 1e-9

// NormalModes solves the generalized eigenproblem k·φ = λ·m·φ and returns
// the natural angular frequencies ω = √λ on a diagonal matrix, ascending,
// with the matching mode shapes as columns of φ. The mode shapes keep
// whatever scaling the decomposition produces; downstream formulas do not
// assume mass-normalization. Pairs yielding complex or non-positive
// eigenvalues are rejected since they cannot come from a valid
// mass/stiffness pair.
func NormalModes(m, k *mat.Dense) (om *mat.DiagDense, phi *mat.Dense, err error) {
	n, err := square("modal", "mass", m)
	if err != nil {
		return
	}
	if _, err = square("modal", "stiffness", k); err != nil {
		return
	}
	if kr, _ := k.Dims(); kr != n {
		err = chk.Err("modal: %dx%d stiffness matrix does not match %dx%d mass matrix", kr, kr, n, n)
		return
	}

	// reduce to the standard problem (m⁻¹k)·φ = λ·φ
	var lu mat.LU
	lu.Factorize(m)
	var a mat.Dense
	if e := lu.SolveTo(&a, false, k); e != nil {
		err = chk.Err("modal: mass matrix is singular: %v", e)
		return
	}
	var eig mat.Eigen
	if !eig.Factorize(&a, mat.EigenRight) {
		err = chk.Err("modal: eigen-decomposition of the %dx%d system failed", n, n)
		return
	}
	vals := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	lams := make([]float64, n)
	idx := make([]int, n)
	for j := 0; j < n; j++ {
		re, im := real(vals[j]), imag(vals[j])
		if math.Abs(im) > imtol*(1+math.Abs(re)) {
			err = chk.Err("modal: eigenvalue %v is not real: mass and stiffness do not form a positive-definite pair", vals[j])
			return
		}
		if re <= 0 {
			err = chk.Err("modal: eigenvalue %g is not positive: mass and stiffness do not form a positive-definite pair", re)
			return
		}
		lams[j] = re
		idx[j] = j
	}
	sort.Slice(idx, func(a, b int) bool { return lams[idx[a]] < lams[idx[b]] })

	omega := make([]float64, n)
	phi = mat.NewDense(n, n, nil)
	for jj, j := range idx {
		omega[jj] = math.Sqrt(lams[j])
		for i := 0; i < n; i++ {
			phi.Set(i, jj, real(vecs.At(i, j)))
		}
	}
	om = mat.NewDiagDense(n, omega)
	return
}

// ParticipationFactors solves (φᵀ·m·φ)·β = φᵀ·m·r for the participation
// factor β of each mode under the spatial load-influence vector r. Off-
// diagonal generalized masses are carried, so the result is exact for any
// scaling of the mode-shape columns.
func ParticipationFactors(phi, m *mat.Dense, r *mat.VecDense) (*mat.VecDense, error) {
	n, err := square("modal", "mass", m)
	if err != nil {
		return nil, err
	}
	if phi == nil {
		return nil, chk.Err("modal: mode-shape matrix must not be nil")
	}
	pr, pc := phi.Dims()
	if pr != n {
		return nil, chk.Err("modal: %dx%d mode-shape matrix does not match %dx%d mass matrix", pr, pc, n, n)
	}
	if r == nil || r.Len() != n {
		return nil, chk.Err("modal: load-influence vector does not match %dx%d mass matrix", n, n)
	}
	var mphi mat.Dense
	mphi.Mul(m, phi)
	var gm mat.Dense
	gm.Mul(phi.T(), &mphi)
	var b mat.VecDense
	b.MulVec(mphi.T(), r)
	var beta mat.VecDense
	if e := beta.SolveVec(&gm, &b); e != nil {
		return nil, chk.Err("modal: generalized mass matrix is singular: %v", e)
	}
	return &beta, nil
}

// DampingRatios diagonalizes the damping matrix in modal coordinates and
// returns the per-mode damping ratios
//
//	h_j = φ_jᵀ·c·φ_j / (2 ω_j φ_jᵀ·m·φ_j)
func DampingRatios(phi, c, m *mat.Dense, om *mat.DiagDense) (*mat.VecDense, error) {
	n, err := square("modal", "mass", m)
	if err != nil {
		return nil, err
	}
	if _, err = square("modal", "damping", c); err != nil {
		return nil, err
	}
	if cr, _ := c.Dims(); cr != n {
		return nil, chk.Err("modal: %dx%d damping matrix does not match %dx%d mass matrix", cr, cr, n, n)
	}
	if phi == nil {
		return nil, chk.Err("modal: mode-shape matrix must not be nil")
	}
	pr, pc := phi.Dims()
	if pr != n {
		return nil, chk.Err("modal: %dx%d mode-shape matrix does not match %dx%d mass matrix", pr, pc, n, n)
	}
	if om == nil || om.Diag() != pc {
		return nil, chk.Err("modal: natural frequencies do not match %d mode shapes", pc)
	}
	h := mat.NewVecDense(pc, nil)
	for j := 0; j < pc; j++ {
		w := om.At(j, j)
		if w <= 0 {
			return nil, chk.Err("modal: natural frequency %g of mode %d is not positive", w, j)
		}
		cj := mat.NewVecDense(n, mat.Col(nil, j, phi))
		gm := mat.Inner(cj, m, cj)
		if gm <= 0 {
			return nil, chk.Err("modal: generalized mass %g of mode %d is not positive", gm, j)
		}
		h.SetVec(j, mat.Inner(cj, c, cj)/(2*w*gm))
	}
	return h, nil
}

// ModeCorrelationCoefficients returns the correlation matrix used by the
// complete quadratic combination for natural frequencies ω and damping
// ratios h. Diagonal entries are 1; entry (j,k) follows the closed form
//
//	ρ_jk = 8 √(h_j h_k) (h_j + r h_k) r^1.5 / ((1-r²)² + 4 h_j h_k r (1+r²) + 4 (h_j²+h_k²) r²)
//
// with the frequency ratio r = ω_j/ω_k. Coincident undamped modes, where
// numerator and denominator both vanish, take the limit value 1.
func ModeCorrelationCoefficients(om *mat.DiagDense, h *mat.VecDense) (*mat.Dense, error) {
	if om == nil {
		return nil, chk.Err("modal: natural frequencies must not be nil")
	}
	n := om.Diag()
	if h == nil || h.Len() != n {
		return nil, chk.Err("modal: damping ratios do not match %d modes", n)
	}
	for j := 0; j < n; j++ {
		if om.At(j, j) <= 0 {
			return nil, chk.Err("modal: natural frequency %g of mode %d is not positive", om.At(j, j), j)
		}
		if h.AtVec(j) < 0 {
			return nil, chk.Err("modal: damping ratio %g of mode %d is negative", h.AtVec(j), j)
		}
	}
	rho := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		rho.Set(j, j, 1)
		for k := 0; k < n; k++ {
			if k == j {
				continue
			}
			r := om.At(j, j) / om.At(k, k)
			hj, hk := h.AtVec(j), h.AtVec(k)
			den := (1-r*r)*(1-r*r) + 4*hj*hk*r*(1+r*r) + 4*(hj*hj+hk*hk)*r*r
			if den == 0 {
				rho.Set(j, k, 1)
				continue
			}
			rho.Set(j, k, 8*math.Sqrt(hj*hk)*(hj+r*hk)*r*math.Sqrt(r)/den)
		}
	}
	return rho, nil
}

// Superimpose combines the per-mode responses q into a response per degree
// of freedom. Three schemes are available: "direct" sums the signed modal
// contributions φ·q, "srss" takes the square root of the sum of squares of
// each mode's contribution, and "cqc" weighs the cross-mode products by the
// correlation matrix rho (ignored by the other schemes).
func Superimpose(q *mat.VecDense, method string, phi *mat.Dense, rho *mat.Dense) (*mat.VecDense, error) {
	if phi == nil {
		return nil, chk.Err("modal: mode-shape matrix must not be nil")
	}
	nd, nm := phi.Dims()
	if q == nil || q.Len() != nm {
		return nil, chk.Err("modal: modal responses do not match %d mode shapes", nm)
	}
	res := mat.NewVecDense(nd, nil)
	switch method {
	case "direct":
		res.MulVec(phi, q)
		return res, nil
	case "srss":
		for i := 0; i < nd; i++ {
			s := 0.0
			for j := 0; j < nm; j++ {
				rij := phi.At(i, j) * q.AtVec(j)
				s += rij * rij
			}
			res.SetVec(i, math.Sqrt(s))
		}
		return res, nil
	case "cqc":
		if rho == nil {
			return nil, chk.Err("modal: cqc superposition requires mode-correlation coefficients")
		}
		rr, rc := rho.Dims()
		if rr != nm || rc != nm {
			return nil, chk.Err("modal: %dx%d correlation matrix does not match %d modes", rr, rc, nm)
		}
		for i := 0; i < nd; i++ {
			s := 0.0
			for j := 0; j < nm; j++ {
				for k := 0; k < nm; k++ {
					s += rho.At(j, k) * phi.At(i, j) * q.AtVec(j) * phi.At(i, k) * q.AtVec(k)
				}
			}
			if s < 0 {
				return nil, chk.Err("modal: cqc quadratic form is negative at degree %d: correlation coefficients are invalid", i)
			}
			res.SetVec(i, math.Sqrt(s))
		}
		return res, nil
	}
	return nil, chk.Err("modal: superposition method %q is invalid: must be direct, srss or cqc", method)
}

// LinearModalResponse computes the peak response of the linear system
// (m, c, k) under the load-influence vector r and an acceleration spectrum:
// the natural modes, their participation factors and damping ratios, one
// spectrum evaluation per mode at the period T_j = 2π/ω_j, the modal peak
// displacements
//
//	q_j = β_j Sa(T_j, h_j) / ω_j²
//
// and the superposition of the modal peaks. Peaks of distinct modes do not
// occur simultaneously, so only the statistical combinations are accepted:
// method must be "srss" or "cqc".
func LinearModalResponse(m, c, k *mat.Dense, r *mat.VecDense, spectrum SpectrumFn, method string) (*mat.VecDense, error) {
	if method != "srss" && method != "cqc" {
		return nil, chk.Err("modal: response method %q is invalid: must be srss or cqc", method)
	}
	if spectrum == nil {
		return nil, chk.Err("modal: spectrum function must not be nil")
	}
	om, phi, err := NormalModes(m, k)
	if err != nil {
		return nil, err
	}
	beta, err := ParticipationFactors(phi, m, r)
	if err != nil {
		return nil, err
	}
	h, err := DampingRatios(phi, c, m, om)
	if err != nil {
		return nil, err
	}
	n := om.Diag()
	q := mat.NewVecDense(n, nil)
	for j := 0; j < n; j++ {
		w := om.At(j, j)
		sa := spectrum(2*math.Pi/w, h.AtVec(j))
		q.SetVec(j, beta.AtVec(j)*sa/(w*w))
	}
	var rho *mat.Dense
	if method == "cqc" {
		if rho, err = ModeCorrelationCoefficients(om, h); err != nil {
			return nil, err
		}
	}
	return Superimpose(q, method, phi, rho)
}

// square returns the dimension of a square matrix or an error mentioning
// the caller and the matrix name
func square(caller, name string, a *mat.Dense) (int, error) {
	if a == nil {
		return 0, chk.Err("%s: %s matrix must not be nil", caller, name)
	}
	r, c := a.Dims()
	if r != c {
		return 0, chk.Err("%s: %s matrix is %dx%d but must be square", caller, name, r, c)
	}
	return r, nil
}
