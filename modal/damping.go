// Copyright 2024 The Structex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modal

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"
)

// StiffnessProportional builds the damping matrix c = (2 ζ / ω) k. A system
// damped this way has modal damping ratios growing linearly with the
// natural frequencies, equal to ζ at the reference frequency ω.
func StiffnessProportional(k *mat.Dense, om, zeta float64) (*mat.Dense, error) {
	if _, err := square("modal", "stiffness", k); err != nil {
		return nil, err
	}
	if om <= 0 {
		return nil, chk.Err("modal: reference frequency must be positive. ω=%g is invalid", om)
	}
	if zeta < 0 {
		return nil, chk.Err("modal: damping ratio must not be negative. ζ=%g is invalid", zeta)
	}
	var c mat.Dense
	c.Scale(2*zeta/om, k)
	return &c, nil
}

// MassProportional builds the damping matrix c = (2 ζ ω) m. A system damped
// this way has modal damping ratios decaying with the natural frequencies,
// equal to ζ at the reference frequency ω.
func MassProportional(m *mat.Dense, om, zeta float64) (*mat.Dense, error) {
	if _, err := square("modal", "mass", m); err != nil {
		return nil, err
	}
	if om <= 0 {
		return nil, chk.Err("modal: reference frequency must be positive. ω=%g is invalid", om)
	}
	if zeta < 0 {
		return nil, chk.Err("modal: damping ratio must not be negative. ζ=%g is invalid", zeta)
	}
	var c mat.Dense
	c.Scale(2*zeta*om, m)
	return &c, nil
}

// StrainElem is one element's contribution to the strain-energy-weighted
// damping ratio: the local stiffness, the local distortion it is strained
// to, and the element's equivalent damping ratio at that distortion.
type StrainElem struct {
	K    *mat.Dense    // local stiffness
	D    *mat.VecDense // local distortion
	Zeta float64       // equivalent damping ratio
}

// StrainEnergyProportional returns the strain-energy-weighted average
// damping ratio
//
//	ζ = Σ E_i ζ_i / Σ E_i      with E_i = d_iᵀ·K_i·d_i
//
// An undistorted structure stores no strain energy, leaving the average
// undefined; this returns an error so callers can decide the undistorted
// damping themselves.
func StrainEnergyProportional(elems []StrainElem) (float64, error) {
	if len(elems) == 0 {
		return 0, chk.Err("modal: at least one element is required to weight damping ratios")
	}
	sumE, sumEz := 0.0, 0.0
	for i, e := range elems {
		n, err := square("modal", io.Sf("element %d stiffness", i), e.K)
		if err != nil {
			return 0, err
		}
		if e.D == nil || e.D.Len() != n {
			return 0, chk.Err("modal: distortion of element %d does not match its %dx%d stiffness", i, n, n)
		}
		if e.Zeta < 0 {
			return 0, chk.Err("modal: damping ratio %g of element %d is negative", e.Zeta, i)
		}
		E := mat.Inner(e.D, e.K, e.D)
		if E < 0 {
			return 0, chk.Err("modal: strain energy %g of element %d is negative", E, i)
		}
		sumE += E
		sumEz += E * e.Zeta
	}
	if sumE == 0 {
		return 0, chk.Err("modal: total strain energy is zero")
	}
	return sumEz / sumE, nil
}
