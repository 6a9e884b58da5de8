// Copyright 2024 The Structex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mhyst

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Bilinear is the equivalent linearization of a bilinear skeleton with
// yield distortion Dy and post-yield stiffness ratio R. Beyond yield the
// stiffness is the secant to the skeleton
//
//	Keq = K0 (1 + R (μ-1)) / μ      with ductility μ = |δ|/Dy
//
// and the damping ratio adds the dissipation of the steady bilinear loop,
// normalized by 4π times the peak strain energy, to the inherent H0.
type Bilinear struct {
	K0 float64 // elastic stiffness
	Dy float64 // yield distortion
	R  float64 // post-yield to elastic stiffness ratio
	H0 float64 // inherent damping ratio
}

// Init initializes and validates the model parameters: K0 and Dy (required),
// R and H0
func (o *Bilinear) Init(prms map[string]float64) (err error) {
	for name, v := range prms {
		switch name {
		case "K0":
			o.K0 = v
		case "Dy":
			o.Dy = v
		case "R":
			o.R = v
		case "H0":
			o.H0 = v
		default:
			return chk.Err("bilinear: parameter named %q is incorrect", name)
		}
	}
	if o.K0 <= 0 {
		return chk.Err("bilinear: stiffness must be positive. K0=%g is invalid", o.K0)
	}
	if o.Dy <= 0 {
		return chk.Err("bilinear: yield distortion must be positive. Dy=%g is invalid", o.Dy)
	}
	if o.R < 0 || o.R >= 1 {
		return chk.Err("bilinear: post-yield stiffness ratio must be within [0, 1). R=%g is invalid", o.R)
	}
	if o.H0 < 0 {
		return chk.Err("bilinear: damping ratio must not be negative. H0=%g is invalid", o.H0)
	}
	return
}

// EquivalentStiffness returns the secant stiffness of the skeleton at the
// distortion amplitude δ; below yield this is the elastic stiffness
func (o *Bilinear) EquivalentStiffness(δ float64) float64 {
	μ := math.Abs(δ) / o.Dy
	if μ <= 1 {
		return o.K0
	}
	return o.K0 * (1 + o.R*(μ-1)) / μ
}

// EquivalentDampingRatio returns H0 plus the hysteretic damping of the
// bilinear loop at the distortion amplitude δ
func (o *Bilinear) EquivalentDampingRatio(δ float64) float64 {
	μ := math.Abs(δ) / o.Dy
	if μ <= 1 {
		return o.H0
	}
	return o.H0 + 2/math.Pi*(1-o.R)*(μ-1)/(μ*(1+o.R*(μ-1)))
}

func init() {
	allocators["bilinear"] = func() Model { return new(Bilinear) }
}
