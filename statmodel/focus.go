package statmodel

import (
	"fmt"
)

// FocusData produces single-covariate views of a dataset, in which the
// linear effects of all covariates except one are collapsed into an
// offset.  Its main use is in coordinate optimization, e.g. for elastic
// net regression.  The focused dataset has a covariate column named "x",
// an offset column named "off", and any retained additional columns; the
// x and off columns are rewritten in place on every call to Focus, so a
// model built over the focused dataset sees the new values without
// copying.
type FocusData struct {

	// The columns of the source dataset
	data [][]Dtype

	// Positions of the covariates in the source dataset
	xpos []int

	// Position of an actual offset in the source data, or -1
	offsetPos int

	// Names and positions of additional source variables retained
	// in the focused dataset
	otherNames []string
	otherPos   []int

	// The focus covariate
	x []Dtype

	// The actual offset combined with the effects of all non-focus
	// covariates
	offset []Dtype

	// The focused dataset, sharing the x and offset buffers
	ds *Dataset
}

// NewFocusData constructs a focusable view of the dataset.  The columns
// in positions xpos are the covariates that can be focused on.
func NewFocusData(ds *Dataset, xpos []int) *FocusData {

	return &FocusData{
		data:      ds.Data(),
		xpos:      xpos,
		offsetPos: -1,
	}
}

// Offset sets the position of an actual offset variable in the source
// data, if one is present.
func (f *FocusData) Offset(pos int) *FocusData {
	f.offsetPos = pos
	return f
}

// Other provides the names and positions of additional variables to
// retain in the focused dataset (e.g. the outcome and weights).
func (f *FocusData) Other(names []string, pos []int) *FocusData {
	f.otherNames = names
	f.otherPos = pos
	return f
}

// Done completes configuration of the FocusData and allocates its
// buffers.
func (f *FocusData) Done() *FocusData {

	n := len(f.data[f.xpos[0]])
	f.x = make([]Dtype, n)
	f.offset = make([]Dtype, n)

	cols := [][]Dtype{f.x, f.offset}
	names := []string{"x", "off"}
	for j, na := range f.otherNames {
		cols = append(cols, f.data[f.otherPos[j]])
		names = append(names, na)
	}

	var err error
	f.ds, err = NewDataset(cols, names)
	if err != nil {
		panic(fmt.Sprintf("statmodel: focus dataset: %v", err))
	}

	return f
}

// Data returns the focused dataset.  Its x and off columns reflect the
// most recent call to Focus.
func (f *FocusData) Data() *Dataset {
	return f.ds
}

// Focus rewrites the focused dataset so that its covariate is the
// covariate in position fpos, and its offset holds the actual offset (if
// any) plus the linear effects of all other covariates at the given
// coefficients.
func (f *FocusData) Focus(fpos int, coeff []float64) {

	if f.offsetPos != -1 {
		copy(f.offset, f.data[f.offsetPos])
	} else {
		zero(f.offset)
	}

	for j, k := range f.xpos {
		z := f.data[k]
		if j == fpos {
			copy(f.x, z)
			continue
		}
		for i, u := range z {
			f.offset[i] += float64(u) * coeff[j]
		}
	}
}

// zero sets all elements of the slice to 0.
func zero(x []float64) {
	for i := range x {
		x[i] = 0
	}
}
