package glm

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Convergence tolerances for IRLS.  Fitting stops when the deviance
// changes by less than devTol between iterations, or when no
// coefficient moves by more than coeffTol.
const (
	irlsDevTol   = 1e-8
	irlsCoeffTol = 1e-10
)

// The deviance criterion is not checked before this many iterations
// have completed, since the deviance can stall early in a fit.
const irlsMinIter = 3

// workTable holds the per-observation state of an IRLS fit.  The y,
// wgt, and off columns alias the model dataset and are never written;
// the remaining columns are recomputed in full on every iteration from
// the current linear predictor.
type workTable struct {

	// Observed responses
	y []float64

	// Case weights, nil if the model is unweighted
	wgt []float64

	// Offsets, nil if the model has no offset
	off []float64

	// Current linear predictor
	linpred []float64

	// Fitted means
	mu []float64

	// Per-observation deviance contributions
	dev []float64

	// Square roots of the working weights
	rtwwt []float64

	// Weighted working responses
	wwresp []float64
}

func newWorkTable(n int) *workTable {
	return &workTable{
		linpred: make([]float64, n),
		mu:      make([]float64, n),
		dev:     make([]float64, n),
		rtwwt:   make([]float64, n),
		wwresp:  make([]float64, n),
	}
}

// deviance returns the total model deviance, weighting the
// per-observation contributions by the case weights if present.
func (wt *workTable) deviance() float64 {
	var dev float64
	if wt.wgt == nil {
		for _, d := range wt.dev {
			dev += d
		}
	} else {
		for i, d := range wt.dev {
			dev += wt.wgt[i] * d
		}
	}
	return dev
}

// A tableUpdater recomputes the derived columns of a work table (mu,
// dev, rtwwt, wwresp) from the current linear predictor, over the row
// range [lo, hi).
type tableUpdater interface {
	update(wt *workTable, lo, hi int)
}

// bernoulliLogitUpdater updates the work table for a binomial model
// with the logit link.  Everything is derived from exp(-linpred),
// which is computed once per row by squaring the half exponent, so the
// inner loop has a single call to math.Exp.
type bernoulliLogitUpdater struct{}

func (bernoulliLogitUpdater) update(wt *workTable, lo, hi int) {

	for i := lo; i < hi; i++ {

		lp := wt.linpred[i]
		y := wt.y[i]

		rex := math.Exp(-lp / 2)
		rexp := rex * rex

		mu := 1 / (1 + rexp)
		wt.mu[i] = mu

		if lp >= 0 {
			wt.dev[i] = 2 * ((1-y)*lp + math.Log1p(rexp))
		} else {
			wt.dev[i] = 2 * (-y*lp + math.Log1p(1/rexp))
		}

		if wt.off != nil {
			lp -= wt.off[i]
		}

		sw := 1.0
		if wt.wgt != nil {
			sw = math.Sqrt(wt.wgt[i])
		}

		rt := rex * mu
		wt.rtwwt[i] = sw * rt
		wt.wwresp[i] = sw * ((y-mu)/rt + rt*lp)
	}
}

// genericUpdater updates the work table for any family, link, and
// variance function, using scratch columns for the link derivative and
// variance values.
type genericUpdater struct {
	fam  *Family
	link *Link
	vari *Variance

	lderiv []float64
	va     []float64
}

func (u *genericUpdater) update(wt *workTable, lo, hi int) {

	u.link.InvLink(wt.linpred[lo:hi], wt.mu[lo:hi])
	u.fam.DevUnit(wt.y[lo:hi], wt.mu[lo:hi], wt.dev[lo:hi])
	u.link.Deriv(wt.mu[lo:hi], u.lderiv[lo:hi])
	u.vari.Var(wt.mu[lo:hi], u.va[lo:hi])

	for i := lo; i < hi; i++ {

		d := u.lderiv[i]
		rt := 1 / (d * math.Sqrt(u.va[i]))
		if wt.wgt != nil {
			rt *= math.Sqrt(wt.wgt[i])
		}

		lp := wt.linpred[i]
		if wt.off != nil {
			lp -= wt.off[i]
		}

		wt.rtwwt[i] = rt
		wt.wwresp[i] = rt*lp + (wt.y[i]-wt.mu[i])*d*rt
	}
}

// newTableUpdater returns the table updater for the model's family,
// link, and variance function.  The binomial/logit combination has a
// dedicated updater; everything else goes through the generic one.
func (glm *GLM) newTableUpdater() tableUpdater {

	if glm.fam.TypeCode == BinomialFamily && glm.link.TypeCode == LogitLink &&
		glm.vari.Name == "Binomial" {
		return bernoulliLogitUpdater{}
	}

	n := glm.NumObs()
	return &genericUpdater{
		fam:    glm.fam,
		link:   glm.link,
		vari:   glm.vari,
		lderiv: make([]float64, n),
		va:     make([]float64, n),
	}
}

// updateTable recomputes the derived work table columns from the
// current linear predictor, splitting the rows across goroutines when
// the dataset is large enough.
func (glm *GLM) updateTable(upd tableUpdater, wt *workTable) {

	n := len(wt.linpred)

	if n < glm.concurrentIRLS {
		upd.update(wt, 0, n)
		return
	}

	nw := runtime.NumCPU()
	bs := (n + nw - 1) / nw

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += bs {
		hi := lo + bs
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			upd.update(wt, lo, hi)
			wg.Done()
		}(lo, hi)
	}
	wg.Wait()
}

// updateCoeff solves the weighted least squares problem for the
// current work table, overwriting coeff with the new value and saving
// the old value in prev.  The rows of wx are filled with the covariate
// values scaled by the root working weights, and the system is solved
// through a QR factorization.  An error is returned if the weighted
// design matrix is rank deficient.
func (glm *GLM) updateCoeff(wt *workTable, wx *mat.Dense, coeff, prev []float64) error {

	n, p := wx.Dims()

	for j, k := range glm.xpos {
		x := glm.data[k]
		f := 1 / glm.xn[j]
		for i := 0; i < n; i++ {
			wx.Set(i, j, wt.rtwwt[i]*float64(x[i])*f)
		}
	}

	var qr mat.QR
	qr.Factorize(wx)

	copy(prev, coeff)

	cv := mat.NewVecDense(p, coeff)
	wr := mat.NewVecDense(n, wt.wwresp)
	if err := qr.SolveVecTo(cv, false, wr); err != nil {
		return fmt.Errorf("glm: IRLS weighted least squares failed: %w", err)
	}

	return nil
}

// startingMu returns starting values for the fitted means, shrinking
// the observed responses toward a common central value.
func (glm *GLM) startingMu(mn []float64) {

	y := glm.data[glm.ypos]

	var q float64
	if glm.fam.TypeCode == BinomialFamily {
		q = 0.5
	} else {
		for _, v := range y {
			q += float64(v)
		}
		q /= float64(len(y))
	}

	for i := range mn {
		mn[i] = (float64(y[i]) + q) / 2
		if mn[i] < 0.1 {
			mn[i] = 0.1
		}
	}
}

// fitIRLS fits the model by iteratively reweighted least squares and
// returns the estimated coefficients on the original scale of the
// covariates.
func (glm *GLM) fitIRLS(start []float64, maxiter int) []float64 {

	n := glm.NumObs()
	p := glm.NumParams()

	wt := newWorkTable(n)
	wt.y = glm.data[glm.ypos]
	if glm.weightpos != -1 {
		wt.wgt = glm.data[glm.weightpos]
	}
	if glm.offsetpos != -1 {
		wt.off = glm.data[glm.offsetpos]
	}

	upd := glm.newTableUpdater()

	coeff := make([]float64, p)
	prev := make([]float64, p)

	if start != nil {
		copy(coeff, start)
		glm.linpred(coeff, wt.linpred)
	} else {
		glm.startingMu(wt.mu)
		glm.link.Link(wt.mu, wt.linpred)
	}

	wx := mat.NewDense(n, p, nil)

	var dev, devp float64
	var converged bool

	for iter := 0; iter < maxiter; iter++ {

		glm.updateTable(upd, wt)
		dev = wt.deviance()

		if glm.log != nil {
			glm.log.Printf("Iteration %d, deviance=%.10f\n", iter+1, dev)
		}

		if iter >= irlsMinIter && math.Abs(dev-devp) < irlsDevTol {
			converged = true
			break
		}
		devp = dev

		if err := glm.updateCoeff(wt, wx, coeff, prev); err != nil {
			panic(err)
		}

		if iter > 0 {
			var dc float64
			for j := range coeff {
				if d := math.Abs(coeff[j] - prev[j]); d > dc {
					dc = d
				}
			}
			if dc < irlsCoeffTol {
				converged = true
				break
			}
		}

		glm.linpred(coeff, wt.linpred)
	}

	if !converged && glm.log != nil {
		glm.log.Printf("IRLS did not converge in %d iterations\n", maxiter)
	}

	// Return to the original scale of the covariates.
	params := make([]float64, p)
	for j := range coeff {
		params[j] = coeff[j] / glm.xn[j]
	}

	return params
}
