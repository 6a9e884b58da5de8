// Copyright 2024 The Structex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mhyst

import "github.com/cpmech/gosl/chk"

// Elastic is the trivial model: constant stiffness and constant damping
// ratio at any distortion amplitude
type Elastic struct {
	K0 float64 // elastic stiffness
	H0 float64 // inherent damping ratio
}

// Init initializes and validates the model parameters: K0 (required) and H0
func (o *Elastic) Init(prms map[string]float64) (err error) {
	for name, v := range prms {
		switch name {
		case "K0":
			o.K0 = v
		case "H0":
			o.H0 = v
		default:
			return chk.Err("elastic: parameter named %q is incorrect", name)
		}
	}
	if o.K0 <= 0 {
		return chk.Err("elastic: stiffness must be positive. K0=%g is invalid", o.K0)
	}
	if o.H0 < 0 {
		return chk.Err("elastic: damping ratio must not be negative. H0=%g is invalid", o.H0)
	}
	return
}

// EquivalentStiffness returns K0 regardless of distortion
func (o *Elastic) EquivalentStiffness(δ float64) float64 {
	return o.K0
}

// EquivalentDampingRatio returns H0 regardless of distortion
func (o *Elastic) EquivalentDampingRatio(δ float64) float64 {
	return o.H0
}

func init() {
	allocators["elastic"] = func() Model { return new(Elastic) }
}
