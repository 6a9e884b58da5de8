// Copyright 2024 The Structex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mhyst implements hysteresis models for equivalent linearization:
// each model maps a distortion amplitude to the secant (equivalent)
// stiffness and the equivalent viscous damping ratio of one structural
// element cycling at that amplitude.
package mhyst

import (
	"sort"

	"github.com/cpmech/gosl/chk"
)

// Model defines the equivalent linear behavior of a hysteretic element
type Model interface {

	// Init initializes and validates the model parameters
	Init(prms map[string]float64) error

	// EquivalentStiffness returns the secant stiffness at the distortion
	// amplitude δ
	EquivalentStiffness(δ float64) float64

	// EquivalentDampingRatio returns the equivalent viscous damping ratio at
	// the distortion amplitude δ
	EquivalentDampingRatio(δ float64) float64
}

// allocators holds the available model allocators
var allocators = map[string]func() Model{}

// New returns a new model of the given name. The model still requires Init.
func New(name string) (Model, error) {
	alloc, ok := allocators[name]
	if !ok {
		return nil, chk.Err("mhyst: model %q is not available", name)
	}
	return alloc(), nil
}

// Models returns the names of the available models, sorted
func Models() []string {
	names := make([]string, 0, len(allocators))
	for name := range allocators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
