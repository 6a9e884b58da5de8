// Copyright 2024 The Structex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mhyst

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Degrading is the equivalent linearization of a stiffness-degrading
// (peak-oriented) skeleton: beyond yield the secant stiffness decays with
// the square root of the ductility
//
//	Keq = K0 / √μ      with ductility μ = |δ|/Dy
//
// and the hysteretic damping grows from H0 toward H0+C as the loop fattens.
type Degrading struct {
	K0 float64 // elastic stiffness
	Dy float64 // yield distortion
	C  float64 // hysteretic damping gain
	H0 float64 // inherent damping ratio
}

// Init initializes and validates the model parameters: K0 and Dy (required),
// C and H0
func (o *Degrading) Init(prms map[string]float64) (err error) {
	for name, v := range prms {
		switch name {
		case "K0":
			o.K0 = v
		case "Dy":
			o.Dy = v
		case "C":
			o.C = v
		case "H0":
			o.H0 = v
		default:
			return chk.Err("degrading: parameter named %q is incorrect", name)
		}
	}
	if o.K0 <= 0 {
		return chk.Err("degrading: stiffness must be positive. K0=%g is invalid", o.K0)
	}
	if o.Dy <= 0 {
		return chk.Err("degrading: yield distortion must be positive. Dy=%g is invalid", o.Dy)
	}
	if o.C < 0 {
		return chk.Err("degrading: damping gain must not be negative. C=%g is invalid", o.C)
	}
	if o.H0 < 0 {
		return chk.Err("degrading: damping ratio must not be negative. H0=%g is invalid", o.H0)
	}
	return
}

// EquivalentStiffness returns the degraded secant stiffness at the
// distortion amplitude δ; below yield this is the elastic stiffness
func (o *Degrading) EquivalentStiffness(δ float64) float64 {
	μ := math.Abs(δ) / o.Dy
	if μ <= 1 {
		return o.K0
	}
	return o.K0 / math.Sqrt(μ)
}

// EquivalentDampingRatio returns the damping ratio at the distortion
// amplitude δ, approaching H0+C at large ductility
func (o *Degrading) EquivalentDampingRatio(δ float64) float64 {
	μ := math.Abs(δ) / o.Dy
	if μ <= 1 {
		return o.H0
	}
	return o.H0 + o.C*(1-1/math.Sqrt(μ))
}

func init() {
	allocators["degrading"] = func() Model { return new(Degrading) }
}
