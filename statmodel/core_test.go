package statmodel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseResults(t *testing.T) {

	y := []float64{1, 2, 3, 4}
	x1 := []float64{1, 1, 1, 1}
	x2 := []float64{1, 2, 3, 4}
	ds, err := NewDataset([][]Dtype{y, x1, x2}, []string{"y", "x1", "x2"})
	assert.NoError(t, err)

	m := newLsqModel(ds, "y")

	params := []float64{2, 1}
	vcov := []float64{4, 0, 0, 1}
	rslt := NewBaseResults(m, -4, params, []string{"x1", "x2"}, vcov)

	assert.Equal(t, params, rslt.Params())
	assert.Equal(t, []string{"x1", "x2"}, rslt.Names())
	assert.Equal(t, -4.0, rslt.LogLike())
	assert.Equal(t, []float64{2, 1}, rslt.StdErr())
	assert.Equal(t, []float64{1, 1}, rslt.ZScores())

	pv := rslt.PValues()
	assert.InDelta(t, 0.3173, pv[0], 1e-3)
	assert.InDelta(t, 0.3173, pv[1], 1e-3)

	fv := rslt.FittedValues(nil)
	assert.Equal(t, []float64{3, 4, 5, 6}, fv)
}

func TestGetVcov(t *testing.T) {

	y := []float64{1, 2, 3, 4}
	x1 := []float64{1, 0, 0, 0}
	x2 := []float64{0, 1, 0, 0}
	ds, err := NewDataset([][]Dtype{y, x1, x2}, []string{"y", "x1", "x2"})
	assert.NoError(t, err)

	m := newLsqModel(ds, "y")

	// The Hessian is -I here, so the vcov is the identity.
	vcov, err := GetVcov(m, &lsqParam{[]float64{0, 0}})
	assert.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0, 0, 1}, vcov, 1e-10)
}

func TestSummaryTable(t *testing.T) {

	st := &SummaryTable{
		Title:    "Linear model analysis",
		Top:      []string{"Num obs: 4", "Method: OLS"},
		ColNames: []string{"Variable", "Estimate"},
		ColFmt: []Fmter{
			func(x interface{}, h string) []string {
				return x.([]string)
			},
			func(x interface{}, h string) []string {
				var z []string
				for range x.([]float64) {
					z = append(z, " 1.0")
				}
				return z
			},
		},
		Cols: []interface{}{
			[]string{"x1    ", "x2    "},
			[]float64{1, 1},
		},
		Msg: []string{"All values are simulated"},
	}

	s := st.String()
	assert.True(t, strings.Contains(s, "Linear model analysis"))
	assert.True(t, strings.Contains(s, "Num obs: 4"))
	assert.True(t, strings.Contains(s, "Estimate"))
	assert.True(t, strings.Contains(s, "All values are simulated"))
}
