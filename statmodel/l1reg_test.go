package statmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

// lsqModel is a least squares regression model used to test the
// coordinate descent fitter.  The first dataset column is the outcome,
// an optional column named "off" is an offset, and all other columns
// are covariates.
type lsqModel struct {
	ds   *Dataset
	ypos int
	xpos []int
	opos int

	fd *FocusData
	fm *lsqModel
}

func newLsqModel(ds *Dataset, yname string) *lsqModel {

	m := &lsqModel{
		ds:   ds,
		opos: -1,
	}

	for j, na := range ds.Names() {
		switch na {
		case yname:
			m.ypos = j
		case "off":
			m.opos = j
		default:
			m.xpos = append(m.xpos, j)
		}
	}

	return m
}

func (m *lsqModel) NumParams() int {
	return len(m.xpos)
}

func (m *lsqModel) NumObs() int {
	return m.ds.NumObs()
}

func (m *lsqModel) Xpos() []int {
	return m.xpos
}

func (m *lsqModel) Dataset() [][]Dtype {
	return m.ds.Data()
}

// resid returns the residuals at the given coefficients.
func (m *lsqModel) resid(coeff []float64) []float64 {

	da := m.ds.Data()
	y := da[m.ypos]

	r := make([]float64, len(y))
	copy(r, y)
	if m.opos != -1 {
		floats.Sub(r, da[m.opos])
	}
	for j, k := range m.xpos {
		floats.AddScaled(r, -coeff[j], da[k])
	}

	return r
}

func (m *lsqModel) LogLike(par Parameter, exact bool) float64 {
	r := m.resid(par.GetCoeff())
	return -floats.Dot(r, r) / 2
}

func (m *lsqModel) Score(par Parameter, score []float64) {
	r := m.resid(par.GetCoeff())
	da := m.ds.Data()
	for j, k := range m.xpos {
		score[j] = floats.Dot(r, da[k])
	}
}

func (m *lsqModel) Hessian(par Parameter, ht HessType, hess []float64) {
	da := m.ds.Data()
	p := len(m.xpos)
	for j1, k1 := range m.xpos {
		for j2, k2 := range m.xpos {
			hess[j1*p+j2] = -floats.Dot(da[k1], da[k2])
		}
	}
}

func (m *lsqModel) Focus(pos int, coeff []float64, l2pen float64) RegFitter {

	if m.fm == nil {
		fd := NewFocusData(m.ds, m.xpos).Other([]string{"y"}, []int{m.ypos})
		if m.opos != -1 {
			fd = fd.Offset(m.opos)
		}
		m.fd = fd.Done()
		m.fm = newLsqModel(m.fd.Data(), "y")
	}

	m.fd.Focus(pos, coeff)
	return m.fm
}

type lsqParam struct {
	coeff []float64
}

func (p *lsqParam) GetCoeff() []float64 {
	return p.coeff
}

func (p *lsqParam) SetCoeff(coeff []float64) {
	p.coeff = coeff
}

func (p *lsqParam) Clone() Parameter {
	coeff := make([]float64, len(p.coeff))
	copy(coeff, p.coeff)
	return &lsqParam{coeff}
}

// With a single constant covariate the lasso solution soft-thresholds
// the least squares solution.
func TestFitL1RegSoftThreshold(t *testing.T) {

	y := []float64{1, 2, 3, 2}
	x := []float64{1, 1, 1, 1}
	ds, err := NewDataset([][]Dtype{y, x}, []string{"y", "x"})
	assert.NoError(t, err)

	m := newLsqModel(ds, "y")

	par := FitL1Reg(m, &lsqParam{make([]float64, 1)}, []float64{0.25}, nil, false)
	assert.InDelta(t, 1.75, par.GetCoeff()[0], 1e-8)

	// A heavy enough penalty drives the coefficient to zero.
	m2 := newLsqModel(ds, "y")
	par = FitL1Reg(m2, &lsqParam{make([]float64, 1)}, []float64{5}, nil, false)
	assert.Equal(t, 0.0, par.GetCoeff()[0])
}

// With orthogonal covariates every coordinate soft-thresholds
// independently.
func TestFitL1RegOrthogonal(t *testing.T) {

	y := []float64{3, -3, 1, 1}
	x1 := []float64{1, -1, 0, 0}
	x2 := []float64{0, 0, 1, -1}
	ds, err := NewDataset([][]Dtype{y, x1, x2}, []string{"y", "x1", "x2"})
	assert.NoError(t, err)

	m := newLsqModel(ds, "y")

	// The least squares solution is (3, 0); with penalty weight w
	// the first coordinate moves to 3 - 4w/2 and the second stays at
	// zero.
	par := FitL1Reg(m, &lsqParam{make([]float64, 2)}, []float64{0.25, 0.25}, nil, false)
	assert.InDelta(t, 2.5, par.GetCoeff()[0], 1e-8)
	assert.Equal(t, 0.0, par.GetCoeff()[1])
}

func TestFocusData(t *testing.T) {

	y := []float64{1, 2, 3}
	x1 := []float64{1, 1, 1}
	x2 := []float64{1, 2, 4}
	off := []float64{1, 1, 2}
	ds, err := NewDataset([][]Dtype{y, x1, x2, off}, []string{"y", "x1", "x2", "off"})
	assert.NoError(t, err)

	fd := NewFocusData(ds, []int{1, 2}).Offset(3).Other([]string{"y"}, []int{0}).Done()

	fd.Focus(0, []float64{2, 3})
	fds := fd.Data()
	assert.Equal(t, []Dtype{1, 1, 1}, fds.Col("x"))
	assert.Equal(t, []Dtype{4, 7, 14}, fds.Col("off"))
	assert.Equal(t, y, fds.Col("y"))

	fd.Focus(1, []float64{2, 3})
	assert.Equal(t, []Dtype{1, 2, 4}, fds.Col("x"))
	assert.Equal(t, []Dtype{3, 3, 4}, fds.Col("off"))
}
