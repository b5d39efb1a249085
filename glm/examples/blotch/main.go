/*
This example follows the leaf blotch analysis in McCullagh and
Nelder's GLM book.

The data are proportions between 0 and 1, arranged in a complete
two-way layout of 10 varieties grown at 9 sites.  The mean model is an
additive factorial model, fit with a binomial GLM using the logit link.
Since the data are proportions rather than binary values, this is a
quasi-likelihood analysis and the dispersion is estimated rather than
fixed at 1.

With the default binomial variance function the scale parameter
estimate is very small and the standardized residuals fan out with the
fitted mean.  Replacing the variance function with the square of the
binomial variance gives residuals that are roughly constant with
respect to the mean, and a scale estimate close to 1.

Residual / mean plots are written for both fits.
*/

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kshedden/dstream/dstream"
	"github.com/kshedden/dstream/formula"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/statfit/statmodel/glm"
	"github.com/statfit/statmodel/statmodel"
)

// Percent of leaf area affected, varieties in rows and sites in
// columns.
var raw = `0.05,0.00,1.25,2.50,5.50,1.00,5.00,5.00,17.50
0.00,0.05,1.25,0.50,1.00,5.00,0.10,10.00,25.00
0.00,0.05,2.50,0.01,6.00,5.00,5.00,5.00,42.50
0.10,0.30,16.60,3.00,1.10,5.00,5.00,5.00,50.00
0.25,0.75,2.50,2.50,2.50,5.00,50.00,25.00,37.50
0.05,0.30,2.50,0.01,8.00,5.00,10.00,75.00,95.00
0.50,3.00,0.00,25.00,16.50,10.00,50.00,50.00,62.50
1.30,7.50,20.00,55.00,29.50,5.00,25.00,75.00,95.00
1.50,1.00,37.50,5.00,20.00,50.00,50.00,75.00,95.00
1.50,12.70,26.25,40.00,43.50,75.00,75.00,75.00,95.00`

// squaredBinom is the square of the usual binomial variance function.
var squaredBinom = glm.Variance{
	Name: "SquaredBinomial",
	Var: func(mn, va []float64) {
		for i := range mn {
			va[i] = mn[i] * mn[i] * (1 - mn[i]) * (1 - mn[i])
		}
	},
	Deriv: func(mn, va []float64) {
		for i := range mn {
			va[i] = 2*mn[i] - 6*mn[i]*mn[i] + 4*mn[i]*mn[i]*mn[i]
		}
	},
}

// setup converts the two-way layout to long form, expands the variety
// and site factors to indicators, and returns the result as a dataset.
func setup() *statmodel.Dataset {

	var y []float64
	var vty, site []string

	for i, line := range strings.Split(raw, "\n") {
		for j, f := range strings.Split(line, ",") {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				panic(err)
			}
			y = append(y, v/100)
			vty = append(vty, fmt.Sprintf("%d", i))
			site = append(site, fmt.Sprintf("%d", j))
		}
	}

	dx := []interface{}{vty, site, y}
	dz := dstream.NewFromFlat(dx, []string{"vty", "site", "y"})
	dz = formula.New("vty + site", dz).Keep("y").Done()
	dz = dstream.MemCopy(dz, true)

	// Drop one site indicator so the design has full rank.
	dz = dstream.DropCols(dz, "site[8]")

	ds, err := statmodel.FromDstream(dz)
	if err != nil {
		panic(err)
	}

	return ds
}

func residPlot(lp, resid []float64, title, filename string) {

	p := plot.New()

	p.Title.Text = title
	p.X.Label.Text = "Linear predictor"
	p.Y.Label.Text = "Pearson residual"

	pts := make(plotter.XYs, len(lp))
	for i := range lp {
		pts[i].X = lp[i]
		pts[i].Y = resid[i]
	}

	if err := plotutil.AddScatters(p, pts); err != nil {
		panic(err)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		panic(err)
	}
}

func main() {

	ds := setup()

	// Default variance function, the scale estimate is around 0.09.
	model := glm.NewGLM(ds, "y").Family(glm.NewFamily(glm.BinomialFamily))
	model = model.DispersionForm(glm.DispersionFree)
	model = model.Done()
	result := model.Fit()
	residPlot(result.LinearPredictor(nil), result.PearsonResid(nil),
		"Default variance", "defvar.pdf")
	fmt.Printf("%v\n", result.Summary())

	// Squared variance function, the scale estimate is close to 1.
	model = glm.NewGLM(ds, "y").Family(glm.NewFamily(glm.BinomialFamily))
	model = model.DispersionForm(glm.DispersionFree)
	model = model.VarFunc(&squaredBinom)
	model = model.Done()
	result = model.Fit()
	residPlot(result.LinearPredictor(nil), result.PearsonResid(nil),
		"Squared variance", "sqvar.pdf")
	fmt.Printf("%v\n", result.Summary())
}
