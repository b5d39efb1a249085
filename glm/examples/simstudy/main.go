/*
This example fits GLMs to simulated data.

A Poisson regression and a logistic regression are simulated from known
population structures and then fit, so the parameter estimates in the
printed summaries can be compared to the values used to generate the
data.  The logistic fit is repeated with a lasso penalty to show the
coefficients shrinking toward zero.
*/

package main

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/statfit/statmodel/glm"
	"github.com/statfit/statmodel/statmodel"
)

const n = 2000

// covariates simulates an intercept and two standard normal covariates.
func covariates(rng rand.Source) [][]float64 {

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}

	icept := make([]float64, n)
	x1 := make([]float64, n)
	x2 := make([]float64, n)
	for i := 0; i < n; i++ {
		icept[i] = 1
		x1[i] = normal.Rand()
		x2[i] = normal.Rand()
	}

	return [][]float64{icept, x1, x2}
}

// simPoisson simulates from a Poisson regression with coefficients
// (-1, 0.5, 0.3).
func simPoisson(rng rand.Source) *statmodel.Dataset {

	xm := covariates(rng)

	y := make([]float64, n)
	for i := 0; i < n; i++ {
		lp := -1 + 0.5*xm[1][i] + 0.3*xm[2][i]
		pois := distuv.Poisson{Lambda: math.Exp(lp), Src: rng}
		y[i] = pois.Rand()
	}

	ds, err := statmodel.NewDataset([][]float64{y, xm[0], xm[1], xm[2]},
		[]string{"y", "icept", "x1", "x2"})
	if err != nil {
		panic(err)
	}

	return ds
}

// simLogistic simulates from a logistic regression with coefficients
// (0.5, 1, -0.5).
func simLogistic(rng rand.Source) *statmodel.Dataset {

	xm := covariates(rng)

	unif := distuv.Uniform{Min: 0, Max: 1, Src: rng}

	y := make([]float64, n)
	for i := 0; i < n; i++ {
		lp := 0.5 + xm[1][i] - 0.5*xm[2][i]
		pr := 1 / (1 + math.Exp(-lp))
		if unif.Rand() < pr {
			y[i] = 1
		}
	}

	ds, err := statmodel.NewDataset([][]float64{y, xm[0], xm[1], xm[2]},
		[]string{"y", "icept", "x1", "x2"})
	if err != nil {
		panic(err)
	}

	return ds
}

func main() {

	rng := rand.NewSource(4523)

	ds := simPoisson(rng)
	rslt := glm.NewGLM(ds, "y").SetFamily(glm.PoissonFamily).Done().Fit()
	fmt.Printf("Poisson regression, population coefficients (-1, 0.5, 0.3):\n")
	fmt.Printf("%v\n", rslt.Summary())

	ds = simLogistic(rng)
	rslt = glm.NewGLM(ds, "y").SetFamily(glm.BinomialFamily).Done().Fit()
	fmt.Printf("Logistic regression, population coefficients (0.5, 1, -0.5):\n")
	fmt.Printf("%v\n", rslt.Summary())

	// The same logistic fit with a lasso penalty.
	l1 := []float64{0.01, 0.01, 0.01}
	rslt = glm.NewGLM(ds, "y").SetFamily(glm.BinomialFamily).L1Weight(l1).Done().Fit()
	fmt.Printf("Lasso penalized logistic regression:\n")
	fmt.Printf("%v\n", rslt.Summary())
}
