// Copyright 2024 The Structex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ela

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func matvals(a *mat.Dense) [][]float64 {
	r, c := a.Dims()
	res := make([][]float64, r)
	for i := 0; i < r; i++ {
		res[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			res[i][j] = a.At(i, j)
		}
	}
	return res
}

func vecvals(v *mat.VecDense) []float64 {
	res := make([]float64, v.Len())
	for i := range res {
		res[i] = v.AtVec(i)
	}
	return res
}
