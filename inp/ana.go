// Copyright 2024 The Structex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.ana) JSON file
package inp

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"

	"github.com/h-ikeda/structex/eqs"
)

// NodeData holds the input data of one lumped node
type NodeData struct {
	Id   int       `json:"id"`   // node identifier
	Mass []float64 `json:"mass"` // mass per degree of freedom
	Bcs  []string  `json:"bcs"`  // boundary condition per degree of freedom: "free" or "fixed"
}

// Pattern parses the boundary condition tags of this node
func (o *NodeData) Pattern() (pat []eqs.BC, err error) {
	pat = make([]eqs.BC, len(o.Bcs))
	for i, tag := range o.Bcs {
		if pat[i], err = eqs.ParseBC(tag); err != nil {
			return nil, chk.Err("inp: node %d: %v", o.Id, err)
		}
	}
	return
}

// ElemData holds the input data of one hysteretic element coupling one
// degree of freedom of two nodes
type ElemData struct {
	Nodes []int              `json:"nodes"` // ids of the two coupled nodes
	Dofs  []int              `json:"dofs"`  // coupled degree within each node; empty means the first degree
	Model string             `json:"model"` // hysteresis model name
	Prms  map[string]float64 `json:"prms"`  // model parameters
}

// SolverData holds the iteration control and superposition settings
type SolverData struct {
	Method string  `json:"method"` // modal superposition method: "srss" or "cqc"
	NmaxIt int     `json:"nmaxit"` // maximum number of iterations
	Atol   float64 `json:"atol"`   // absolute tolerance on the distortion increment
	Rtol   float64 `json:"rtol"`   // relative tolerance on the distortion increment
	ShowR  bool    `json:"showR"`  // show iteration table
	Zeta0  float64 `json:"zeta0"`  // damping ratio of the undistorted structure
}

// SetDefault sets defaults
func (o *SolverData) SetDefault() {
	o.Method = "cqc"
	o.NmaxIt = 40
	o.Atol = 1e-8
	o.Rtol = 1e-6
	o.Zeta0 = 0.05
}

// Analysis holds all input data of one analysis
type Analysis struct {
	Desc   string      `json:"desc"`   // description of analysis
	Nodes  []*NodeData `json:"nodes"`  // lumped nodes
	Elems  []*ElemData `json:"elems"`  // hysteretic elements
	Solver SolverData  `json:"solver"` // solver settings
}

// Node returns the node with the given id, or nil
func (o *Analysis) Node(id int) *NodeData {
	for _, nd := range o.Nodes {
		if nd.Id == id {
			return nd
		}
	}
	return nil
}

// ReadAnalysis reads and validates an analysis definition from a JSON file
func ReadAnalysis(dir, fn string) (*Analysis, error) {
	b, err := os.ReadFile(filepath.Join(dir, fn))
	if err != nil {
		return nil, chk.Err("ReadAnalysis: cannot read analysis file %q", fn)
	}
	var o Analysis
	o.Solver.SetDefault()
	if err = json.Unmarshal(b, &o); err != nil {
		return nil, chk.Err("ReadAnalysis: cannot unmarshal analysis file %q: %v", fn, err)
	}
	if err = o.Check(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Check validates the analysis definition
func (o *Analysis) Check() error {

	// nodes
	if len(o.Nodes) < 1 {
		return chk.Err("inp: analysis must define at least one node")
	}
	seen := make(map[int]bool)
	for _, nd := range o.Nodes {
		if seen[nd.Id] {
			return chk.Err("inp: node id %d is duplicated", nd.Id)
		}
		seen[nd.Id] = true
		if len(nd.Mass) < 1 || len(nd.Mass) != len(nd.Bcs) {
			return chk.Err("inp: node %d must list one mass and one boundary condition per degree of freedom", nd.Id)
		}
		pat, err := nd.Pattern()
		if err != nil {
			return err
		}
		for i, m := range nd.Mass {
			if pat[i] == eqs.Free && m <= 0 {
				return chk.Err("inp: mass of node %d must be positive on free degrees. mass[%d]=%g is invalid", nd.Id, i, m)
			}
			if m < 0 {
				return chk.Err("inp: mass of node %d must not be negative. mass[%d]=%g is invalid", nd.Id, i, m)
			}
		}
	}

	// elements
	if len(o.Elems) < 1 {
		return chk.Err("inp: analysis must define at least one element")
	}
	for ie, ed := range o.Elems {
		if len(ed.Nodes) != 2 {
			return chk.Err("inp: element %d must couple exactly two nodes", ie)
		}
		if len(ed.Dofs) != 0 && len(ed.Dofs) != 2 {
			return chk.Err("inp: element %d must list one coupled degree per node", ie)
		}
		for i, id := range ed.Nodes {
			nd := o.Node(id)
			if nd == nil {
				return chk.Err("inp: element %d references unknown node %d", ie, id)
			}
			dof := 0
			if len(ed.Dofs) == 2 {
				dof = ed.Dofs[i]
			}
			if dof < 0 || dof >= len(nd.Mass) {
				return chk.Err("inp: element %d couples degree %d of node %d but the node has %d degrees", ie, dof, id, len(nd.Mass))
			}
		}
		if ed.Model == "" {
			return chk.Err("inp: element %d has no hysteresis model", ie)
		}
	}

	// solver settings
	switch o.Solver.Method {
	case "srss", "cqc":
	default:
		return chk.Err("inp: superposition method %q is invalid: must be srss or cqc", o.Solver.Method)
	}
	if o.Solver.NmaxIt < 1 {
		return chk.Err("inp: maximum number of iterations must be at least 1. nmaxit=%d is invalid", o.Solver.NmaxIt)
	}
	if o.Solver.Atol < 0 || o.Solver.Rtol < 0 || o.Solver.Atol+o.Solver.Rtol == 0 {
		return chk.Err("inp: tolerances are invalid. atol=%g, rtol=%g", o.Solver.Atol, o.Solver.Rtol)
	}
	if o.Solver.Zeta0 < 0 {
		return chk.Err("inp: undistorted damping ratio must not be negative. zeta0=%g is invalid", o.Solver.Zeta0)
	}
	return nil
}
