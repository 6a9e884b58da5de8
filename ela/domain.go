// Copyright 2024 The Structex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ela implements the equivalent linear analysis of lumped
// structural models: it assembles the global system from the input
// definition, couples the hysteresis models to the equation containers,
// and drives the equivalent linearization solver.
package ela

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"

	"github.com/h-ikeda/structex/eqlin"
	"github.com/h-ikeda/structex/eqs"
	"github.com/h-ikeda/structex/inp"
	"github.com/h-ikeda/structex/mhyst"
	"github.com/h-ikeda/structex/modal"
)

// Node is one lumped node of the analysis domain
type Node struct {
	Id   int       // node identifier
	Key  string    // key within the equation assemblies
	Pat  []eqs.BC  // boundary condition per degree of freedom
	Mass []float64 // mass per degree of freedom
}

// Elem is one hysteretic element coupling one degree of freedom of two nodes
type Elem struct {
	Na, Nb int         // ids of the coupled nodes
	Da, Db int         // coupled degree within each node
	Mdl    mhyst.Model // hysteresis model
}

// Domain holds the assembled analysis: nodes, elements, the global index
// ranges and the boundary-eliminated system containers
type Domain struct {

	// input data
	Ana   *inp.Analysis // analysis definition
	Nodes []*Node       // nodes in input order
	Elems []*Elem       // elements in input order

	// global system
	Ranges map[int]eqs.Range // node id → index range in the raw global ordering
	M      *mat.Dense        // mass matrix with fixed degrees eliminated

	// auxiliary
	nmap map[int]*Node // node id → node
	ka   *eqs.Assembly // matrix assembly performing the elimination
	va   *eqs.Assembly // vector assembly mapping solutions back to nodes
	rawN int           // raw global size including fixed degrees
}

// NewDomain builds the analysis domain from the input definition: it
// instantiates the hysteresis models, registers the node keys on the
// equation assemblies, fixes the global index ranges from the node order
// and composes the eliminated mass matrix.
func NewDomain(ana *inp.Analysis) (o *Domain, err error) {
	if ana == nil {
		return nil, chk.Err("ela: analysis definition must not be nil")
	}
	if err = ana.Check(); err != nil {
		return nil, err
	}
	o = &Domain{Ana: ana, nmap: make(map[int]*Node), ka: eqs.New(2), va: eqs.New(1)}

	// nodes and assembly keys
	for _, nd := range ana.Nodes {
		pat, e := nd.Pattern()
		if e != nil {
			return nil, e
		}
		nod := &Node{Id: nd.Id, Key: io.Sf("%d", nd.Id), Pat: pat, Mass: nd.Mass}
		o.Nodes = append(o.Nodes, nod)
		o.nmap[nod.Id] = nod
		if err = o.ka.PutKey(nod.Key, pat); err != nil {
			return nil, err
		}
		if err = o.va.PutKey(nod.Key, pat); err != nil {
			return nil, err
		}
	}

	// elements and hysteresis models
	for ie, ed := range ana.Elems {
		mdl, e := mhyst.New(ed.Model)
		if e != nil {
			return nil, chk.Err("ela: element %d: %v", ie, e)
		}
		if e = mdl.Init(ed.Prms); e != nil {
			return nil, chk.Err("ela: element %d: %v", ie, e)
		}
		el := &Elem{Na: ed.Nodes[0], Nb: ed.Nodes[1], Mdl: mdl}
		if len(ed.Dofs) == 2 {
			el.Da, el.Db = ed.Dofs[0], ed.Dofs[1]
		}
		o.Elems = append(o.Elems, el)
	}

	// the mass composition fixes the global ranges in node input order
	contribs := make([]*eqs.Contrib, len(o.Nodes))
	for i, nod := range o.Nodes {
		b := mat.NewDense(len(nod.Mass), len(nod.Mass), nil)
		for j, m := range nod.Mass {
			b.Set(j, j, m)
		}
		contribs[i] = &eqs.Contrib{Blocks: [][]*mat.Dense{{b}}, Nodes: []int{nod.Id}}
	}
	rawM, ranges, err := eqs.Compose(contribs, nil)
	if err != nil {
		return nil, err
	}
	o.Ranges = ranges
	for _, r := range ranges {
		if r.Start+r.Size > o.rawN {
			o.rawN = r.Start + r.Size
		}
	}
	if err = o.putBlocks(rawM); err != nil {
		return nil, err
	}
	if o.M, err = o.ka.AssembledMat(); err != nil {
		return nil, err
	}
	if o.M == nil {
		return nil, chk.Err("ela: analysis has no free degrees of freedom")
	}
	return
}

// Nfree returns the number of free degrees of freedom
func (o *Domain) Nfree() int {
	n, _ := o.M.Dims()
	return n
}

// Model returns the equivalent linear model of the domain: a function
// mapping an assumed distortion vector (free degrees only) to the mass,
// damping and stiffness of the equivalent linear system at that amplitude.
// The damping matrix is stiffness-proportional, referenced at the first
// natural frequency with the strain-energy-weighted ratio of the element
// models; the undistorted structure takes the configured zeta0.
func (o *Domain) Model() eqlin.Model {
	return func(d *mat.VecDense) (m, c, k *mat.Dense, err error) {
		drift, u, err := o.distortions(d)
		if err != nil {
			return
		}

		// secant stiffness of every element at its distortion
		contribs := make([]*eqs.Contrib, len(o.Elems))
		selems := make([]modal.StrainElem, len(o.Elems))
		for ie, el := range o.Elems {
			ke := el.Mdl.EquivalentStiffness(drift[ie])
			he := el.Mdl.EquivalentDampingRatio(drift[ie])
			na, nb := o.nmap[el.Na], o.nmap[el.Nb]
			baa := mat.NewDense(len(na.Mass), len(na.Mass), nil)
			bab := mat.NewDense(len(na.Mass), len(nb.Mass), nil)
			bba := mat.NewDense(len(nb.Mass), len(na.Mass), nil)
			bbb := mat.NewDense(len(nb.Mass), len(nb.Mass), nil)
			baa.Set(el.Da, el.Da, ke)
			bab.Set(el.Da, el.Db, -ke)
			bba.Set(el.Db, el.Da, -ke)
			bbb.Set(el.Db, el.Db, ke)
			contribs[ie] = &eqs.Contrib{
				Blocks: [][]*mat.Dense{{baa, bab}, {bba, bbb}},
				Nodes:  []int{el.Na, el.Nb},
			}
			ua, ub := u[el.Na][el.Da], u[el.Nb][el.Db]
			selems[ie] = modal.StrainElem{
				K:    mat.NewDense(2, 2, []float64{ke, -ke, -ke, ke}),
				D:    mat.NewVecDense(2, []float64{ua, ub}),
				Zeta: he,
			}
		}
		rawK, _, err := eqs.Compose(contribs, o.Ranges)
		if err != nil {
			return
		}
		if err = o.putBlocks(rawK); err != nil {
			return
		}
		if k, err = o.ka.AssembledMat(); err != nil {
			return
		}

		// strain-energy-weighted damping ratio; an undistorted structure
		// stores no energy and takes zeta0
		zeta, e := modal.StrainEnergyProportional(selems)
		if e != nil {
			zeta = o.Ana.Solver.Zeta0
		}
		om, _, err := modal.NormalModes(o.M, k)
		if err != nil {
			return
		}
		if c, err = modal.StiffnessProportional(k, om.At(0, 0), zeta); err != nil {
			return
		}
		m = o.M
		return
	}
}

// Results holds the converged response of the domain
type Results struct {
	D     *mat.VecDense     // distortion vector over the free degrees
	Nit   int               // number of iterations to convergence
	Node  map[int][]float64 // displacement per node degree; fixed degrees are zero
	Drift []float64         // distortion per element, in input order
}

// Run drives the equivalent linearization solver from the undistorted
// state and maps the converged response back to nodes and elements
func (o *Domain) Run(spectrum modal.SpectrumFn) (*Results, error) {
	ctl := &eqlin.Control{
		NmaxIt: o.Ana.Solver.NmaxIt,
		Atol:   o.Ana.Solver.Atol,
		Rtol:   o.Ana.Solver.Rtol,
		ShowR:  o.Ana.Solver.ShowR,
	}
	d0 := mat.NewVecDense(o.Nfree(), nil)
	d, nit, err := eqlin.LimitStrengthResponse(o.Model(), d0, spectrum, o.Ana.Solver.Method, ctl)
	if err != nil {
		return nil, err
	}
	drift, u, err := o.distortions(d)
	if err != nil {
		return nil, err
	}
	return &Results{D: d, Nit: nit, Node: u, Drift: drift}, nil
}

// distortions maps the free-degree solution vector to per-element
// distortions and per-node local displacements
func (o *Domain) distortions(d *mat.VecDense) (drift []float64, u map[int][]float64, err error) {
	if err = o.va.PutAssembledVec(d); err != nil {
		return
	}
	u = make(map[int][]float64, len(o.Nodes))
	for _, nod := range o.Nodes {
		v, e := o.va.GetVec(nod.Key)
		if e != nil {
			return nil, nil, e
		}
		vals := make([]float64, v.Len())
		for i := range vals {
			vals[i] = v.AtVec(i)
		}
		u[nod.Id] = vals
	}
	drift = make([]float64, len(o.Elems))
	for ie, el := range o.Elems {
		drift[ie] = u[el.Na][el.Da] - u[el.Nb][el.Db]
	}
	return
}

// putBlocks distributes a raw global matrix into the keyed assembly,
// eliminating fixed degrees on the way in. Raw matrices smaller than the
// full ordering (composed from few elements) are zero-padded.
func (o *Domain) putBlocks(raw *mat.Dense) (err error) {
	full := raw
	if raw == nil {
		full = mat.NewDense(o.rawN, o.rawN, nil)
	} else if r, _ := raw.Dims(); r < o.rawN {
		full = mat.NewDense(o.rawN, o.rawN, nil)
		full.Slice(0, r, 0, r).(*mat.Dense).Copy(raw)
	}
	for _, ni := range o.Nodes {
		ri := o.Ranges[ni.Id]
		for _, nj := range o.Nodes {
			rj := o.Ranges[nj.Id]
			b := mat.DenseCopyOf(full.Slice(ri.Start, ri.Start+ri.Size, rj.Start, rj.Start+rj.Size))
			if err = o.ka.PutMat(ni.Key, nj.Key, b); err != nil {
				return
			}
		}
	}
	return
}
