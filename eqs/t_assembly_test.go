// Copyright 2024 The Structex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eqs

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"
)

func Test_assembly01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("assembly01. key registration and matrix blocks")

	// three keys: "top" all free, "mid" half fixed, "bot" all fixed
	a := New(2)
	if err := a.PutKey("top", []BC{Free}); err != nil {
		tst.Errorf("PutKey failed: %v\n", err)
		return
	}
	if err := a.PutKey("mid", []BC{Free, Fixed}); err != nil {
		tst.Errorf("PutKey failed: %v\n", err)
		return
	}
	if err := a.PutKey("bot", []BC{Fixed}); err != nil {
		tst.Errorf("PutKey failed: %v\n", err)
		return
	}
	chk.IntAssert(a.Order(), 2)
	chk.IntAssert(a.Dim(), 2)
	chk.Strings(tst, "keys", a.Keys(), []string{"top", "mid", "bot"})
	nmid, _ := a.BlockSize("mid")
	fmid, _ := a.FreeCount("mid")
	fbot, _ := a.FreeCount("bot")
	chk.IntAssert(nmid, 2)
	chk.IntAssert(fmid, 1)
	chk.IntAssert(fbot, 0)

	// blocks start zeroed
	b, err := a.GetMat("mid", "mid")
	if err != nil {
		tst.Errorf("GetMat failed: %v\n", err)
		return
	}
	chk.Deep2(tst, "mid-mid zero", 1e-17, matvals(b), [][]float64{{0, 0}, {0, 0}})

	// only free/free positions land in the backing storage
	a.PutMat("mid", "mid", mat.NewDense(2, 2, []float64{4, 5, 6, 7}))
	a.PutMat("top", "mid", mat.NewDense(1, 2, []float64{8, 9}))
	b, _ = a.GetMat("mid", "mid")
	chk.Deep2(tst, "mid-mid", 1e-17, matvals(b), [][]float64{{4, 0}, {0, 0}})
	b, _ = a.GetMat("top", "mid")
	chk.Deep2(tst, "top-mid", 1e-17, matvals(b), [][]float64{{8, 0}})
	b, _ = a.GetMat("bot", "bot")
	chk.Deep2(tst, "bot-bot", 1e-17, matvals(b), [][]float64{{0}})

	t, err := a.AssembledMat()
	if err != nil {
		tst.Errorf("AssembledMat failed: %v\n", err)
		return
	}
	io.Pforan("assembled = %v\n", mat.Formatted(t))
	chk.Deep2(tst, "assembled", 1e-17, matvals(t), [][]float64{{0, 8}, {0, 4}})

	// misuse
	if _, err := a.GetMat("top", "zzz"); err == nil {
		tst.Errorf("error expected for unknown key\n")
		return
	}
	if _, err := a.GetVec("top"); err == nil {
		tst.Errorf("error expected for vector access on matrix assembly\n")
		return
	}
	if err := a.PutMat("top", "mid", mat.NewDense(2, 2, nil)); err == nil {
		tst.Errorf("error expected for block shape mismatch\n")
		return
	}
	if err := a.PutKey("bad", nil); err == nil {
		tst.Errorf("error expected for empty degree pattern\n")
		return
	}
	if err := a.PutKey("bad", []BC{Free, BC(7)}); err == nil {
		tst.Errorf("error expected for invalid boundary condition\n")
		return
	}
}

func Test_assembly02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("assembly02. key deletion and re-registration")

	a := New(2)
	a.PutKey("a", []BC{Free, Free})
	a.PutKey("b", []BC{Free})
	a.PutKey("c", []BC{Free, Fixed, Free})
	chk.IntAssert(a.Dim(), 5)

	vals := make([]float64, 25)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			vals[i*5+j] = float64(10*(i+1) + j + 1)
		}
	}
	if err := a.PutAssembledMat(mat.NewDense(5, 5, vals)); err != nil {
		tst.Errorf("PutAssembledMat failed: %v\n", err)
		return
	}

	// deleting "b" drops its row/column band and shifts "c" down
	if err := a.DeleteKey("b"); err != nil {
		tst.Errorf("DeleteKey failed: %v\n", err)
		return
	}
	chk.IntAssert(a.Dim(), 4)
	chk.Strings(tst, "keys", a.Keys(), []string{"a", "c"})
	t, _ := a.AssembledMat()
	chk.Deep2(tst, "assembled after delete", 1e-17, matvals(t), [][]float64{
		{11, 12, 14, 15},
		{21, 22, 24, 25},
		{41, 42, 44, 45},
		{51, 52, 54, 55},
	})
	b, err := a.GetMat("c", "a")
	if err != nil {
		tst.Errorf("GetMat failed: %v\n", err)
		return
	}
	chk.Deep2(tst, "c-a", 1e-17, matvals(b), [][]float64{{41, 42}, {0, 0}, {51, 52}})

	// re-registering "a" discards its values and moves it to the end
	if err := a.PutKey("a", []BC{Fixed, Free}); err != nil {
		tst.Errorf("PutKey failed: %v\n", err)
		return
	}
	chk.IntAssert(a.Dim(), 3)
	chk.Strings(tst, "keys", a.Keys(), []string{"c", "a"})
	t, _ = a.AssembledMat()
	chk.Deep2(tst, "assembled after re-registration", 1e-17, matvals(t), [][]float64{
		{44, 45, 0},
		{54, 55, 0},
		{0, 0, 0},
	})

	// deleting everything resets the backing storage
	a.DeleteKey("c")
	a.DeleteKey("a")
	chk.IntAssert(a.Dim(), 0)
	t, err = a.AssembledMat()
	if err != nil || t != nil {
		tst.Errorf("empty assembly must return nil matrix\n")
		return
	}
	if err := a.PutAssembledMat(nil); err != nil {
		tst.Errorf("nil matrix must be accepted by empty assembly: %v\n", err)
		return
	}
	if err := a.PutAssembledMat(mat.NewDense(1, 1, nil)); err == nil {
		tst.Errorf("error expected for matrix put into empty assembly\n")
		return
	}
	if err := a.DeleteKey("zzz"); err == nil {
		tst.Errorf("error expected for unknown key\n")
		return
	}
}

func Test_assembly03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("assembly03. vector blocks")

	a := New(1)
	a.PutKey("n1", []BC{Free, Fixed})
	a.PutKey("n2", []BC{Free})
	chk.IntAssert(a.Dim(), 2)

	a.PutVec("n1", mat.NewVecDense(2, []float64{3, 9}))
	v, err := a.GetVec("n1")
	if err != nil {
		tst.Errorf("GetVec failed: %v\n", err)
		return
	}
	chk.Array(tst, "n1", 1e-17, vecvals(v), []float64{3, 0})

	if err := a.PutAssembledVec(mat.NewVecDense(2, []float64{5, 7})); err != nil {
		tst.Errorf("PutAssembledVec failed: %v\n", err)
		return
	}
	v, _ = a.GetVec("n1")
	chk.Array(tst, "n1", 1e-17, vecvals(v), []float64{5, 0})
	v, _ = a.GetVec("n2")
	chk.Array(tst, "n2", 1e-17, vecvals(v), []float64{7})

	a.UpdateVec("n2", func(b *mat.VecDense) { b.ScaleVec(2, b) })
	w, _ := a.AssembledVec()
	chk.Array(tst, "assembled", 1e-17, vecvals(w), []float64{5, 14})

	v, err = a.PopVec("n1")
	if err != nil {
		tst.Errorf("PopVec failed: %v\n", err)
		return
	}
	chk.Array(tst, "popped", 1e-17, vecvals(v), []float64{5, 0})
	w, _ = a.AssembledVec()
	chk.Array(tst, "assembled after pop", 1e-17, vecvals(w), []float64{0, 14})

	a.UpdateAssembledVec(func(b *mat.VecDense) {
		for i := 0; i < b.Len(); i++ {
			b.SetVec(i, b.AtVec(i)+1)
		}
	})
	w, _ = a.AssembledVec()
	chk.Array(tst, "assembled after update", 1e-17, vecvals(w), []float64{1, 15})

	// misuse
	if _, err := a.GetMat("n1", "n1"); err == nil {
		tst.Errorf("error expected for matrix access on vector assembly\n")
		return
	}
	if err := a.PutVec("n2", mat.NewVecDense(3, nil)); err == nil {
		tst.Errorf("error expected for vector length mismatch\n")
		return
	}
}

func Test_assembly04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("assembly04. matrix update and pop")

	a := New(2)
	a.PutKey("a", []BC{Free})
	a.PutKey("b", []BC{Free})
	a.PutMat("a", "a", mat.NewDense(1, 1, []float64{2}))
	a.PutMat("a", "b", mat.NewDense(1, 1, []float64{3}))
	a.PutMat("b", "a", mat.NewDense(1, 1, []float64{4}))
	a.PutMat("b", "b", mat.NewDense(1, 1, []float64{5}))

	a.UpdateMat("a", "b", func(b *mat.Dense) { b.Set(0, 0, b.At(0, 0)+10) })
	t, _ := a.AssembledMat()
	chk.Deep2(tst, "assembled after update", 1e-17, matvals(t), [][]float64{{2, 13}, {4, 5}})

	b, err := a.PopMat("a", "a")
	if err != nil {
		tst.Errorf("PopMat failed: %v\n", err)
		return
	}
	chk.Deep2(tst, "popped", 1e-17, matvals(b), [][]float64{{2}})
	t, _ = a.AssembledMat()
	chk.Deep2(tst, "assembled after pop", 1e-17, matvals(t), [][]float64{{0, 13}, {4, 5}})

	a.UpdateAssembledMat(func(m *mat.Dense) { m.Scale(2, m) })
	t, _ = a.AssembledMat()
	chk.Deep2(tst, "assembled after scale", 1e-17, matvals(t), [][]float64{{0, 26}, {8, 10}})
}
