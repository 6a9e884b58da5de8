// Copyright 2024 The Structex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package eqs implements the global system-of-equations containers used by
// structural analyses: a keyed block assembly performing boundary-condition
// elimination, and a composer building global matrices from element
// contributions indexed by node ids.
package eqs

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/mat"
)

// BC defines the boundary condition of one degree of freedom within a key's
// local block: Free degrees are mapped to the backing storage whereas Fixed
// degrees are eliminated and always read as zero.
type BC int

const (
	Free BC = iota
	Fixed
)

func (o BC) String() string {
	switch o {
	case Free:
		return "free"
	case Fixed:
		return "fixed"
	}
	return io.Sf("BC(%d)", int(o))
}

// ParseBC converts a tag ("free" or "fixed") to a BC value
func ParseBC(tag string) (BC, error) {
	switch tag {
	case "free":
		return Free, nil
	case "fixed":
		return Fixed, nil
	}
	return 0, chk.Err("eqs: boundary condition tag %q is invalid: must be \"free\" or \"fixed\"", tag)
}

// run maps one contiguous sequence of free degrees within a key's local
// block onto the key's region of the backing storage
type run struct {
	lo int // first local position of the run
	bo int // offset of the run within the key's backing region
	n  int // number of degrees in the run
}

// kentry holds the registration data of one key
type kentry struct {
	size  int   // local block size = length of the registered degree pattern
	off   int   // starting offset of the key's region within the backing axis
	runs  []run // contiguous free runs, ascending
	nfree int   // total number of free degrees
}

// Assembly is a square block container assembling named sub-blocks into a
// single dense backing tensor while eliminating fixed degrees of freedom.
// Keys are registered with a free/fixed degree pattern; block reads and
// writes are expressed in full local-block coordinates and the container
// maps free positions to the backing storage, leaving fixed positions at
// zero. The backing tensor has the same length along every axis (the sum of
// free counts over all keys, over every axis alike) and is exclusively owned
// by the container: reads return copies and writes copy values in.
type Assembly struct {
	order int                // tensor rank: 1 (vectors) or 2 (matrices)
	dim   int                // axis length of the backing tensor
	keys  map[string]*kentry // registered keys
	seq   []string           // keys in registration order
	m     *mat.Dense         // order 2 backing; nil while dim == 0
	v     *mat.VecDense      // order 1 backing; nil while dim == 0
}

// New creates an empty Assembly of the given tensor order: 1 for assembling
// vectors, 2 for matrices
func New(order int) *Assembly {
	if order != 1 && order != 2 {
		chk.Panic("eqs: assembly order must be 1 (vectors) or 2 (matrices). order=%d is invalid", order)
	}
	return &Assembly{order: order, keys: make(map[string]*kentry)}
}

// Order returns the tensor rank of this container
func (o *Assembly) Order() int { return o.order }

// Dim returns the axis length of the backing tensor
func (o *Assembly) Dim() int { return o.dim }

// Keys returns the registered keys in registration order
func (o *Assembly) Keys() []string {
	res := make([]string, len(o.seq))
	copy(res, o.seq)
	return res
}

// BlockSize returns the local block size of key
func (o *Assembly) BlockSize(key string) (int, error) {
	e, err := o.entry(key)
	if err != nil {
		return 0, err
	}
	return e.size, nil
}

// FreeCount returns the number of free degrees of key
func (o *Assembly) FreeCount(key string) (int, error) {
	e, err := o.entry(key)
	if err != nil {
		return 0, err
	}
	return e.nfree, nil
}

// PutKey registers key with a pattern of free/fixed degree tags. An already
// registered key is first removed, discarding its stored values. The backing
// tensor grows by the number of free degrees along every axis; values stored
// for other keys are preserved.
func (o *Assembly) PutKey(key string, pattern []BC) (err error) {
	if len(pattern) == 0 {
		return chk.Err("eqs: degree pattern of key %q must not be empty", key)
	}
	for i, p := range pattern {
		if p != Free && p != Fixed {
			return chk.Err("eqs: degree %d of key %q has invalid boundary condition %v", i, key, p)
		}
	}
	if _, ok := o.keys[key]; ok {
		o.DeleteKey(key)
	}
	e := &kentry{size: len(pattern), off: o.dim}
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != Free {
			continue
		}
		n := 1
		for i+n < len(pattern) && pattern[i+n] == Free {
			n++
		}
		e.runs = append(e.runs, run{lo: i, bo: e.nfree, n: n})
		e.nfree += n
		i += n - 1
	}
	o.keys[key] = e
	o.seq = append(o.seq, key)
	if e.nfree > 0 {
		o.grow(o.dim + e.nfree)
	}
	return
}

// DeleteKey removes the registration of key, discarding its stored values.
// Offsets of keys beyond the removed region shift down by the removed free
// count and the backing tensor is rebuilt from the complement of the removed
// range. Removing the last key, or the last free degrees, resets the backing
// tensor to no storage.
func (o *Assembly) DeleteKey(key string) (err error) {
	e, err := o.entry(key)
	if err != nil {
		return
	}
	delete(o.keys, key)
	for i, k := range o.seq {
		if k == key {
			o.seq = append(o.seq[:i], o.seq[i+1:]...)
			break
		}
	}
	if len(o.seq) == 0 {
		o.dim, o.m, o.v = 0, nil, nil
		return
	}
	if e.nfree == 0 {
		return
	}
	for _, k := range o.seq {
		r := o.keys[k]
		if r.off > e.off {
			r.off -= e.nfree
		}
	}
	newDim := o.dim - e.nfree
	if newDim == 0 {
		o.dim, o.m, o.v = 0, nil, nil
		return
	}
	keep := make([]int, 0, newDim)
	for i := 0; i < o.dim; i++ {
		if i < e.off || i >= e.off+e.nfree {
			keep = append(keep, i)
		}
	}
	switch o.order {
	case 1:
		nv := mat.NewVecDense(newDim, nil)
		for a, i := range keep {
			nv.SetVec(a, o.v.AtVec(i))
		}
		o.v = nv
	case 2:
		nm := mat.NewDense(newDim, newDim, nil)
		for a, i := range keep {
			for b, j := range keep {
				nm.Set(a, b, o.m.At(i, j))
			}
		}
		o.m = nm
	}
	o.dim = newDim
	return
}

// matrix blocks //////////////////////////////////////////////////////////////

// GetMat returns a copy of the local block addressed by the key pair: ki
// along the rows, kj along the columns. Free/free positions are read from
// the backing tensor; positions fixed on either key are zero.
func (o *Assembly) GetMat(ki, kj string) (*mat.Dense, error) {
	if err := o.matCheck(); err != nil {
		return nil, err
	}
	ei, err := o.entry(ki)
	if err != nil {
		return nil, err
	}
	ej, err := o.entry(kj)
	if err != nil {
		return nil, err
	}
	b := mat.NewDense(ei.size, ej.size, nil)
	for _, ri := range ei.runs {
		for _, rj := range ej.runs {
			for a := 0; a < ri.n; a++ {
				for c := 0; c < rj.n; c++ {
					b.Set(ri.lo+a, rj.lo+c, o.m.At(ei.off+ri.bo+a, ej.off+rj.bo+c))
				}
			}
		}
	}
	return b, nil
}

// PutMat writes the local block b at the key pair (ki, kj). Only free/free
// positions reach the backing tensor; values at positions fixed on either
// key are ignored since they have no backing cell.
func (o *Assembly) PutMat(ki, kj string, b *mat.Dense) error {
	if err := o.matCheck(); err != nil {
		return err
	}
	ei, err := o.entry(ki)
	if err != nil {
		return err
	}
	ej, err := o.entry(kj)
	if err != nil {
		return err
	}
	r, c := b.Dims()
	if r != ei.size || c != ej.size {
		return chk.Err("eqs: %dx%d block does not fit keys %q (%d degrees) and %q (%d degrees)", r, c, ki, ei.size, kj, ej.size)
	}
	for _, ri := range ei.runs {
		for _, rj := range ej.runs {
			for a := 0; a < ri.n; a++ {
				for cc := 0; cc < rj.n; cc++ {
					o.m.Set(ei.off+ri.bo+a, ej.off+rj.bo+cc, b.At(ri.lo+a, rj.lo+cc))
				}
			}
		}
	}
	return nil
}

// UpdateMat applies fn to a copy of the local block at (ki, kj) and writes
// the mutated block back through the free/free mapping
func (o *Assembly) UpdateMat(ki, kj string, fn func(b *mat.Dense)) error {
	b, err := o.GetMat(ki, kj)
	if err != nil {
		return err
	}
	fn(b)
	return o.PutMat(ki, kj, b)
}

// PopMat returns the local block at (ki, kj) and zeroes its free/free
// positions in the backing tensor
func (o *Assembly) PopMat(ki, kj string) (*mat.Dense, error) {
	b, err := o.GetMat(ki, kj)
	if err != nil {
		return nil, err
	}
	ei, _ := o.entry(ki)
	ej, _ := o.entry(kj)
	for _, ri := range ei.runs {
		for _, rj := range ej.runs {
			for a := 0; a < ri.n; a++ {
				for c := 0; c < rj.n; c++ {
					o.m.Set(ei.off+ri.bo+a, ej.off+rj.bo+c, 0)
				}
			}
		}
	}
	return b, nil
}

// AssembledMat returns a copy of the whole backing matrix, or nil when no
// key has free degrees
func (o *Assembly) AssembledMat() (*mat.Dense, error) {
	if err := o.matCheck(); err != nil {
		return nil, err
	}
	if o.dim == 0 {
		return nil, nil
	}
	return mat.DenseCopyOf(o.m), nil
}

// PutAssembledMat bulk-replaces the backing matrix with a copy of a. The
// shape must match the backing storage; a container without free degrees
// accepts only nil.
func (o *Assembly) PutAssembledMat(a *mat.Dense) error {
	if err := o.matCheck(); err != nil {
		return err
	}
	if o.dim == 0 {
		if a == nil {
			return nil
		}
		r, c := a.Dims()
		return chk.Err("eqs: cannot put %dx%d matrix into assembly without free degrees", r, c)
	}
	if a == nil {
		return chk.Err("eqs: assembled matrix must not be nil")
	}
	r, c := a.Dims()
	if r != o.dim || c != o.dim {
		return chk.Err("eqs: assembled matrix is %dx%d but backing storage is %dx%d", r, c, o.dim, o.dim)
	}
	o.m.Copy(a)
	return nil
}

// UpdateAssembledMat applies fn to a copy of the backing matrix and replaces
// the storage with the result; fn must keep the shape. No-op without storage.
func (o *Assembly) UpdateAssembledMat(fn func(a *mat.Dense)) error {
	if err := o.matCheck(); err != nil {
		return err
	}
	if o.dim == 0 {
		return nil
	}
	a := mat.DenseCopyOf(o.m)
	fn(a)
	return o.PutAssembledMat(a)
}

// vector blocks //////////////////////////////////////////////////////////////

// GetVec returns a copy of the local vector block of key. Free positions are
// read from the backing tensor; fixed positions are zero.
func (o *Assembly) GetVec(key string) (*mat.VecDense, error) {
	if err := o.vecCheck(); err != nil {
		return nil, err
	}
	e, err := o.entry(key)
	if err != nil {
		return nil, err
	}
	b := mat.NewVecDense(e.size, nil)
	for _, r := range e.runs {
		for a := 0; a < r.n; a++ {
			b.SetVec(r.lo+a, o.v.AtVec(e.off+r.bo+a))
		}
	}
	return b, nil
}

// PutVec writes the local vector block b at key. Only free positions reach
// the backing tensor.
func (o *Assembly) PutVec(key string, b *mat.VecDense) error {
	if err := o.vecCheck(); err != nil {
		return err
	}
	e, err := o.entry(key)
	if err != nil {
		return err
	}
	if b.Len() != e.size {
		return chk.Err("eqs: vector block of length %d does not fit key %q (%d degrees)", b.Len(), key, e.size)
	}
	for _, r := range e.runs {
		for a := 0; a < r.n; a++ {
			o.v.SetVec(e.off+r.bo+a, b.AtVec(r.lo+a))
		}
	}
	return nil
}

// UpdateVec applies fn to a copy of the local vector block of key and writes
// the mutated block back through the free mapping
func (o *Assembly) UpdateVec(key string, fn func(b *mat.VecDense)) error {
	b, err := o.GetVec(key)
	if err != nil {
		return err
	}
	fn(b)
	return o.PutVec(key, b)
}

// PopVec returns the local vector block of key and zeroes its free positions
// in the backing tensor
func (o *Assembly) PopVec(key string) (*mat.VecDense, error) {
	b, err := o.GetVec(key)
	if err != nil {
		return nil, err
	}
	e, _ := o.entry(key)
	for _, r := range e.runs {
		for a := 0; a < r.n; a++ {
			o.v.SetVec(e.off+r.bo+a, 0)
		}
	}
	return b, nil
}

// AssembledVec returns a copy of the whole backing vector, or nil when no
// key has free degrees
func (o *Assembly) AssembledVec() (*mat.VecDense, error) {
	if err := o.vecCheck(); err != nil {
		return nil, err
	}
	if o.dim == 0 {
		return nil, nil
	}
	return mat.VecDenseCopyOf(o.v), nil
}

// PutAssembledVec bulk-replaces the backing vector with a copy of a. The
// length must match the backing storage; a container without free degrees
// accepts only nil.
func (o *Assembly) PutAssembledVec(a *mat.VecDense) error {
	if err := o.vecCheck(); err != nil {
		return err
	}
	if o.dim == 0 {
		if a == nil {
			return nil
		}
		return chk.Err("eqs: cannot put length %d vector into assembly without free degrees", a.Len())
	}
	if a == nil {
		return chk.Err("eqs: assembled vector must not be nil")
	}
	if a.Len() != o.dim {
		return chk.Err("eqs: assembled vector has length %d but backing storage has %d", a.Len(), o.dim)
	}
	o.v.CopyVec(a)
	return nil
}

// UpdateAssembledVec applies fn to a copy of the backing vector and replaces
// the storage with the result; fn must keep the length. No-op without storage.
func (o *Assembly) UpdateAssembledVec(fn func(a *mat.VecDense)) error {
	if err := o.vecCheck(); err != nil {
		return err
	}
	if o.dim == 0 {
		return nil
	}
	a := mat.VecDenseCopyOf(o.v)
	fn(a)
	return o.PutAssembledVec(a)
}

// auxiliary //////////////////////////////////////////////////////////////////

// grow reallocates the backing tensor to the new axis length, copying the
// existing region and zero-padding the rest
func (o *Assembly) grow(newDim int) {
	switch o.order {
	case 1:
		nv := mat.NewVecDense(newDim, nil)
		if o.dim > 0 {
			nv.SliceVec(0, o.dim).(*mat.VecDense).CopyVec(o.v)
		}
		o.v = nv
	case 2:
		nm := mat.NewDense(newDim, newDim, nil)
		if o.dim > 0 {
			nm.Slice(0, o.dim, 0, o.dim).(*mat.Dense).Copy(o.m)
		}
		o.m = nm
	}
	o.dim = newDim
}

func (o *Assembly) entry(key string) (*kentry, error) {
	e, ok := o.keys[key]
	if !ok {
		return nil, chk.Err("eqs: key %q is not registered", key)
	}
	return e, nil
}

func (o *Assembly) matCheck() error {
	if o.order != 2 {
		return chk.Err("eqs: order %d assembly does not hold matrix blocks", o.order)
	}
	return nil
}

func (o *Assembly) vecCheck() error {
	if o.order != 1 {
		return chk.Err("eqs: order %d assembly does not hold vector blocks", o.order)
	}
	return nil
}
