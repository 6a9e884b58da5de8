// Copyright 2024 The Structex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eqs

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"
)

// Range is one contiguous block of global indices assigned to a node
type Range struct {
	Start int // first global index
	Size  int // number of degrees of freedom
}

// Contrib is the contribution of one element to the global system: an n by n
// grid of local matrices coupling the n listed nodes pairwise. Blocks[a][b]
// couples Nodes[a] (rows) to Nodes[b] (columns).
type Contrib struct {
	Blocks [][]*mat.Dense // [n][n] local coupling matrices
	Nodes  []int          // n node ids addressing the grid
}

// Compose assembles element contributions into a single square global
// matrix. Node ids present in seed keep their index ranges; every id met for
// the first time is assigned the next contiguous range, in the order the
// contributions list it, sized by its blocks. Contributions addressing the
// same node pair accumulate by elementwise addition and the matrix grows
// zero-padded as new nodes appear. Returns the assembled matrix (nil when
// nothing was composed) and the complete node-range map.
func Compose(contribs []*Contrib, seed map[int]Range) (*mat.Dense, map[int]Range, error) {
	ranges := make(map[int]Range)
	next := 0
	for id, r := range seed {
		if r.Start < 0 || r.Size < 1 {
			return nil, nil, chk.Err("eqs: seed range of node %d is invalid: start=%d, size=%d", id, r.Start, r.Size)
		}
		ranges[id] = r
		if r.Start+r.Size > next {
			next = r.Start + r.Size
		}
	}
	ids := make([]int, 0, len(ranges))
	for id := range ranges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ranges[ids[a]].Start < ranges[ids[b]].Start })
	for i := 1; i < len(ids); i++ {
		p, q := ranges[ids[i-1]], ranges[ids[i]]
		if p.Start+p.Size > q.Start {
			return nil, nil, chk.Err("eqs: seed ranges of nodes %d and %d overlap", ids[i-1], ids[i])
		}
	}
	var t *mat.Dense
	dim := 0
	for ic, cb := range contribs {
		n := len(cb.Nodes)
		if n == 0 {
			return nil, nil, chk.Err("eqs: contribution %d has no nodes", ic)
		}
		if len(cb.Blocks) != n {
			return nil, nil, chk.Err("eqs: contribution %d has %d block rows for %d nodes", ic, len(cb.Blocks), n)
		}

		// establish the block size of every listed node
		sizes := make([]int, n)
		for ia := 0; ia < n; ia++ {
			if len(cb.Blocks[ia]) != n {
				return nil, nil, chk.Err("eqs: contribution %d has %d block columns in row %d for %d nodes", ic, len(cb.Blocks[ia]), ia, n)
			}
			for jb := 0; jb < n; jb++ {
				b := cb.Blocks[ia][jb]
				if b == nil {
					return nil, nil, chk.Err("eqs: contribution %d has no block coupling nodes %d and %d", ic, cb.Nodes[ia], cb.Nodes[jb])
				}
				r, c := b.Dims()
				if sizes[ia] == 0 {
					sizes[ia] = r
				}
				if sizes[jb] == 0 {
					sizes[jb] = c
				}
				if r != sizes[ia] || c != sizes[jb] {
					return nil, nil, chk.Err("eqs: contribution %d blocks disagree on the sizes of nodes %d and %d", ic, cb.Nodes[ia], cb.Nodes[jb])
				}
			}
		}

		// assign ranges to nodes met for the first time
		for ia, id := range cb.Nodes {
			if r, ok := ranges[id]; ok {
				if r.Size != sizes[ia] {
					return nil, nil, chk.Err("eqs: contribution %d sizes node %d with %d degrees but its range has %d", ic, id, sizes[ia], r.Size)
				}
				continue
			}
			ranges[id] = Range{Start: next, Size: sizes[ia]}
			next += sizes[ia]
		}

		// grow the matrix to cover the involved ranges
		req := dim
		for _, id := range cb.Nodes {
			if end := ranges[id].Start + ranges[id].Size; end > req {
				req = end
			}
		}
		if req > dim {
			nm := mat.NewDense(req, req, nil)
			if dim > 0 {
				nm.Slice(0, dim, 0, dim).(*mat.Dense).Copy(t)
			}
			t, dim = nm, req
		}

		// accumulate
		for ia, ida := range cb.Nodes {
			ra := ranges[ida]
			for jb, idb := range cb.Nodes {
				rb := ranges[idb]
				b := cb.Blocks[ia][jb]
				for i := 0; i < ra.Size; i++ {
					for j := 0; j < rb.Size; j++ {
						t.Set(ra.Start+i, rb.Start+j, t.At(ra.Start+i, rb.Start+j)+b.At(i, j))
					}
				}
			}
		}
	}
	return t, ranges, nil
}
