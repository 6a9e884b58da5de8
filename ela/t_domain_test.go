// Copyright 2024 The Structex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ela

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"

	"github.com/h-ikeda/structex/inp"
	"github.com/h-ikeda/structex/modal"
)

func twostory(tst *testing.T) *Domain {
	ana, err := inp.ReadAnalysis("data", "twostory.ana")
	if err != nil {
		tst.Errorf("ReadAnalysis failed:\n%v", err)
		return nil
	}
	dom, err := NewDomain(ana)
	if err != nil {
		tst.Errorf("NewDomain failed:\n%v", err)
		return nil
	}
	return dom
}

func Test_dom01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dom01. two-story domain: ranges, mass and initial stiffness")

	dom := twostory(tst)
	if dom == nil {
		return
	}
	chk.IntAssert(len(dom.Nodes), 3)
	chk.IntAssert(len(dom.Elems), 2)

	// the raw ordering follows the node input order: node 1, node 2
	// (two degrees), then the fixed base node 0
	chk.IntAssert(len(dom.Ranges), 3)
	chk.IntAssert(dom.Ranges[1].Start, 0)
	chk.IntAssert(dom.Ranges[1].Size, 1)
	chk.IntAssert(dom.Ranges[2].Start, 1)
	chk.IntAssert(dom.Ranges[2].Size, 2)
	chk.IntAssert(dom.Ranges[0].Start, 3)
	chk.IntAssert(dom.Ranges[0].Size, 1)

	// two of the four degrees survive the elimination
	chk.IntAssert(dom.Nfree(), 2)
	chk.Deep2(tst, "M", 1e-15, matvals(dom.M), [][]float64{
		{10.2, 0},
		{0, 20.4},
	})

	// the undistorted walls respond with their initial stiffness
	m, c, k, err := dom.Model()(mat.NewVecDense(2, nil))
	if err != nil {
		tst.Errorf("model failed:\n%v", err)
		return
	}
	io.Pforan("K(0) = %v\n", mat.Formatted(k, mat.Prefix("       ")))
	chk.Deep2(tst, "K(0)", 1e-13, matvals(k), [][]float64{
		{100, -100},
		{-100, 280},
	})
	chk.Deep2(tst, "m", 1e-15, matvals(m), matvals(dom.M))

	// without stored energy the damping falls back to zeta0 = 0.05,
	// referenced at the first natural frequency
	om, _, err := modal.NormalModes(dom.M, k)
	if err != nil {
		tst.Errorf("NormalModes failed:\n%v", err)
		return
	}
	cc := mat.DenseCopyOf(k)
	cc.Scale(2*0.05/om.At(0, 0), cc)
	chk.Deep2(tst, "C(0)", 1e-14, matvals(c), matvals(cc))
}

func Test_dom02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dom02. two-story limit strength response")

	dom := twostory(tst)
	if dom == nil {
		return
	}
	spectrum := func(T, h float64) float64 {
		return (2.0 - 0.35*T) * 1.5 / (1 + 10*h)
	}
	res, err := dom.Run(spectrum)
	if err != nil {
		tst.Errorf("Run failed:\n%v", err)
		return
	}
	io.Pforan("d = %v after %d iterations\n", mat.Formatted(res.D.T()), res.Nit)
	chk.IntAssert(res.Nit, 18)
	chk.Array(tst, "d", 1e-8, vecvals(res.D), []float64{0.113352072485486, 0.082969520729032})

	// element distortions are story drifts here
	chk.Array(tst, "drift", 1e-8, res.Drift, []float64{0.030382551756454, 0.082969520729032})

	// node map carries the fixed degrees as zeros
	chk.Array(tst, "node 1", 1e-8, res.Node[1], []float64{0.113352072485486})
	chk.Array(tst, "node 2", 1e-8, res.Node[2], []float64{0.082969520729032, 0})
	chk.Array(tst, "node 0", 1e-15, res.Node[0], []float64{0})

	// the upper wall stays elastic while the lower one yields
	chk.Float64(tst, "upper wall stiffness", 1e-12, dom.Elems[0].Mdl.EquivalentStiffness(res.Drift[0]), 100)
	chk.Float64(tst, "lower wall stiffness", 1e-8, dom.Elems[1].Mdl.EquivalentStiffness(res.Drift[1]), 96.100969404932)

	// reaching the max number of iterations surfaces as an error
	dom.Ana.Solver.NmaxIt = 2
	if _, err = dom.Run(spectrum); err == nil {
		tst.Errorf("non-convergence error expected\n")
		return
	}
	io.Pf("OK: %v\n", err)
}

func Test_dom03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dom03. domain input validation")

	if _, err := NewDomain(nil); err == nil {
		tst.Errorf("error expected for nil analysis\n")
		return
	}

	newAna := func() *inp.Analysis {
		ana := &inp.Analysis{
			Nodes: []*inp.NodeData{
				{Id: 1, Mass: []float64{2}, Bcs: []string{"free"}},
				{Id: 0, Mass: []float64{0}, Bcs: []string{"fixed"}},
			},
			Elems: []*inp.ElemData{
				{Nodes: []int{1, 0}, Model: "elastic", Prms: map[string]float64{"K0": 8, "H0": 0.05}},
			},
		}
		ana.Solver.SetDefault()
		return ana
	}

	// the base case must build
	dom, err := NewDomain(newAna())
	if err != nil {
		tst.Errorf("NewDomain failed:\n%v", err)
		return
	}
	chk.IntAssert(dom.Nfree(), 1)

	// definition errors are caught before assembly
	ana := newAna()
	ana.Nodes[0].Mass = []float64{0}
	if _, err = NewDomain(ana); err == nil {
		tst.Errorf("error expected for massless free degree\n")
		return
	}
	io.Pf("OK: %v\n", err)

	// unregistered hysteresis model
	ana = newAna()
	ana.Elems[0].Model = "plastic"
	if _, err = NewDomain(ana); err == nil {
		tst.Errorf("error expected for unknown model\n")
		return
	}
	io.Pf("OK: %v\n", err)

	// incorrect model parameters
	ana = newAna()
	ana.Elems[0].Prms = map[string]float64{"K0": -8}
	if _, err = NewDomain(ana); err == nil {
		tst.Errorf("error expected for invalid parameters\n")
		return
	}
	io.Pf("OK: %v\n", err)

	// a structure without free degrees cannot respond
	ana = newAna()
	ana.Nodes[0].Bcs = []string{"fixed"}
	ana.Nodes[0].Mass = []float64{0}
	if _, err = NewDomain(ana); err == nil {
		tst.Errorf("error expected for fully fixed structure\n")
		return
	}
	io.Pf("OK: %v\n", err)
}
