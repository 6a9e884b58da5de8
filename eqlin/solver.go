// Copyright 2024 The Structex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package eqlin implements the equivalent linearization solver: fixed-point
// iteration of a distortion-dependent linear system through modal response
// analysis until the assumed distortion converges.
package eqlin

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/h-ikeda/structex/modal"
)

// Model maps an assumed distortion vector to the equivalent linear system
// (mass, damping, stiffness) at that distortion amplitude
type Model func(d *mat.VecDense) (m, c, k *mat.Dense, err error)

// Control holds the iteration control parameters
type Control struct {
	NmaxIt int     // maximum number of iterations
	Atol   float64 // absolute tolerance on the distortion increment
	Rtol   float64 // relative tolerance on the distortion increment
	ShowR  bool    // show iteration table
}

// SetDefault sets default control values
func (o *Control) SetDefault() {
	o.NmaxIt = 40
	o.Atol = 1e-8
	o.Rtol = 1e-6
	o.ShowR = false
}

// LimitStrengthResponse iterates the equivalent linear model against the
// acceleration spectrum until the distortion stabilizes: each pass builds
// the linear system at the current distortion, computes its peak response
// under a rigid-base load pattern via modal superposition (method "srss" or
// "cqc"), and feeds the response back as the next distortion. Convergence
// requires every entry of the increment to satisfy
//
//	|Δd_i| ≤ Atol + Rtol |d_i|
//
// nit reports the number of passes. A nil ctl takes the defaults. When
// NmaxIt is exhausted the last iterate is returned along with a
// non-convergence error, so callers can report the state they stalled at.
func LimitStrengthResponse(model Model, d0 *mat.VecDense, spectrum modal.SpectrumFn, method string, ctl *Control) (d *mat.VecDense, nit int, err error) {
	if model == nil {
		err = chk.Err("eqlin: model function must not be nil")
		return
	}
	if d0 == nil || d0.Len() < 1 {
		err = chk.Err("eqlin: initial distortion must have at least one degree of freedom")
		return
	}
	var c Control
	if ctl == nil {
		c.SetDefault()
	} else {
		c = *ctl
		if c.NmaxIt < 1 {
			err = chk.Err("eqlin: maximum number of iterations must be at least 1. NmaxIt=%d is invalid", c.NmaxIt)
			return
		}
		if c.Atol < 0 || c.Rtol < 0 || c.Atol+c.Rtol == 0 {
			err = chk.Err("eqlin: tolerances are invalid. Atol=%g, Rtol=%g", c.Atol, c.Rtol)
			return
		}
	}
	n := d0.Len()
	ones := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		ones.SetVec(i, 1)
	}
	if c.ShowR {
		io.Pf("\n%4s%23s%23s\n", "it", "max|Δd|", "max|d|")
	}
	d = mat.VecDenseCopyOf(d0)
	delta := make([]float64, n)
	for nit = 1; nit <= c.NmaxIt; nit++ {
		mm, cc, kk, e := model(d)
		if e != nil {
			err = chk.Err("eqlin: model failed at iteration %d: %v", nit, e)
			return
		}
		if err = checkSquare("mass", mm, n); err != nil {
			return
		}
		if err = checkSquare("damping", cc, n); err != nil {
			return
		}
		if err = checkSquare("stiffness", kk, n); err != nil {
			return
		}
		dnew, e := modal.LinearModalResponse(mm, cc, kk, ones, spectrum, method)
		if e != nil {
			err = e
			return
		}
		conv := true
		for i := 0; i < n; i++ {
			delta[i] = math.Abs(dnew.AtVec(i) - d.AtVec(i))
			if delta[i] > c.Atol+c.Rtol*math.Abs(dnew.AtVec(i)) {
				conv = false
			}
		}
		d = dnew
		if c.ShowR {
			big := 0.0
			for i := 0; i < n; i++ {
				big = utl.Max(big, math.Abs(d.AtVec(i)))
			}
			io.Pf("%4d%23.15e%23.15e\n", nit, floats.Max(delta), big)
		}
		if conv {
			return
		}
	}
	nit = c.NmaxIt
	if c.ShowR {
		io.PfMag("max number of iterations reached: it = %d\n", nit)
	}
	err = chk.Err("eqlin: distortion did not converge after %d iterations", c.NmaxIt)
	return
}

// checkSquare verifies one matrix returned by the model
func checkSquare(name string, a *mat.Dense, n int) error {
	if a == nil {
		return chk.Err("eqlin: model returned no %s matrix", name)
	}
	r, c := a.Dims()
	if r != n || c != n {
		return chk.Err("eqlin: model returned %dx%d %s matrix for %d degrees of freedom", r, c, name, n)
	}
	return nil
}
