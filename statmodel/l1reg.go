package statmodel

import (
	"fmt"
	"math"
)

// Focuser is a regression model that can be restricted to a single
// covariate, with the effects of the remaining covariates absorbed into
// an offset.
type Focuser interface {

	// Number of parameters in the model.
	NumParams() int

	// Number of observations in the data set.
	NumObs() int

	// Focus returns a single-covariate version of the model, with
	// the effects of all covariates except the one in position pos
	// held fixed at the given coefficients.  A positive l2pen adds
	// a ridge penalty on the focus coefficient.
	Focus(pos int, coeff []float64, l2pen float64) RegFitter
}

// FitL1Reg fits the model with an L1 (lasso) penalty using coordinate
// descent.  The l1wgt vector gives the per-covariate penalty weights,
// l2wgt (optional, may be nil) adds per-covariate ridge penalties.  The
// starting parameter value is mutated in place and returned.  If
// checkstep is true, every coordinate update is verified to not increase
// the penalized objective, falling back to a line search when the local
// quadratic approximation oversteps; this is not needed when the
// log-likelihood is exactly quadratic.
func FitL1Reg(model Focuser, param Parameter, l1wgt, l2wgt []float64, checkstep bool) Parameter {

	maxiter := 400

	// A parameter for the 1-d focused model.
	param1d := param.Clone()
	param1d.SetCoeff([]float64{0})

	nvar := model.NumParams()
	nobs := model.NumObs()

	// The log-likelihood is not normalized by the sample size, so
	// the convergence tolerance can scale with it.
	tol := 1e-7 * float64(nobs)
	if tol > 0.1 {
		tol = 0.1
	}

	coeff := param.GetCoeff()

	// Outer coordinate descent loop.
	for iter := 0; iter < maxiter; iter++ {

		// L-infinity norm of the increment in the parameter vector
		px := 0.0

		for j := 0; j < nvar; j++ {

			var l2pen float64
			if l2wgt != nil {
				l2pen = l2wgt[j]
			}

			fmodel := model.Focus(j, coeff, l2pen)
			np := opt1d(fmodel, coeff[j], param1d, float64(nobs)*l1wgt[j], checkstep)

			d := math.Abs(np - coeff[j])
			if d > px {
				px = d
			}

			coeff[j] = np
		}

		if px < tol {
			break
		}
	}

	return param
}

// opt1d minimizes the penalized negative log-likelihood of a
// single-covariate model using a local quadratic approximation, falling
// back to a line search if needed.
func opt1d(m1 RegFitter, coeff float64, par Parameter, l1wgt float64, checkstep bool) float64 {

	// Quadratic approximation coefficients
	bv := make([]float64, 1)
	par.SetCoeff([]float64{coeff})
	m1.Score(par, bv)
	b := -bv[0]
	cv := make([]float64, 1)
	m1.Hessian(par, ObsHess, cv)
	c := -cv[0]

	// The optimum point of the quadratic approximation
	d := b - c*coeff

	if l1wgt > math.Abs(d) {
		// The optimum is achieved by hard thresholding to zero
		return 0
	}

	// coeff + h is the minimizer of Q(z) + l1wgt*abs(z)
	var h float64
	if d >= 0 {
		h = (l1wgt - b) / c
	} else {
		h = -(l1wgt + b) / c
	}

	if !checkstep {
		return coeff + h
	}

	// Check whether the new point improves the target function.
	// This check is somewhat expensive and not needed when the loss
	// is quadratic.
	par.SetCoeff([]float64{coeff})
	f0 := -m1.LogLike(par, false) + l1wgt*math.Abs(coeff)
	par.SetCoeff([]float64{coeff + h})
	f1 := -m1.LogLike(par, false) + l1wgt*math.Abs(coeff+h)
	if f1 <= f0+1e-10 {
		return coeff + h
	}

	// Wrap the penalized objective so it takes a scalar argument.
	fw := func(z float64) float64 {
		par.SetCoeff([]float64{z})
		return -m1.LogLike(par, false) + l1wgt*math.Abs(z)
	}

	// Fallback for models where the loss is not quadratic
	return bisection(fw, coeff-1, coeff+1, 1e-7)
}

// bisection minimizes f using bracketed bisection.
func bisection(f func(float64) float64, xl, xu, tol float64) float64 {

	var x0, x1, x2, f0, f1, f2 float64

	// Try to find a bracket.
	success := false
	x0, x2 = xl, xu
	x1 = (x0 + x2) / 2
	for k := 0; k < 100; k++ {

		f0 = f(x0)
		f1 = f(x1)
		f2 = f(x2)

		if f1 < f0 && f1 < f2 {
			success = true
			break
		}

		if f0 > f1 && f1 > f2 {
			// Slide right
			x0 = x1
			x1 = x2
			x2 += 1.5 * (x1 - x0)
			continue
		}

		if f0 < f1 && f1 < f2 {
			// Slide left
			x2 = x1
			x1 = x0
			x0 -= 1.5 * (x2 - x1)
			continue
		}

		x0 = x1 - 2*(x1-x0)
		x2 = x1 + 2*(x2-x1)
	}

	if !success {
		fmt.Printf("l1reg: did not find a bracket\n")
		switch {
		case f0 < f1 && f0 < f2:
			return x0
		case f1 < f0 && f1 < f2:
			return x1
		default:
			return x2
		}
	}

	for x2-x0 > tol {
		if x1-x0 > x2-x1 {
			xx := (x0 + x1) / 2
			ff := f(xx)
			if ff < f1 {
				x2 = x1
				x1, f1 = xx, ff
			} else {
				x0 = xx
			}
		} else {
			xx := (x1 + x2) / 2
			ff := f(xx)
			if ff < f1 {
				x0 = x1
				x1, f1 = xx, ff
			} else {
				x2 = xx
			}
		}
	}

	return x1
}
