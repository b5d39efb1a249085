package glm

import (
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/statfit/statmodel/statmodel"
)

// GLM represents a generalized linear model.
type GLM struct {

	// The dataset being modeled
	ds *statmodel.Dataset

	// The dataset columns
	data [][]statmodel.Dtype

	// Positions of the covariates
	xpos []int

	// Name and position of the outcome variable
	yname string
	ypos  int

	// Name and position of the offset variable, if present
	offsetname string
	offsetpos  int

	// Name and position of the weight variable, if present
	weightname string
	weightpos  int

	// The GLM family
	fam *Family

	// The GLM link function
	link *Link

	// The GLM variance function
	vari *Variance

	// Either IRLS (default) or gradient.  L1-penalized fits always
	// use coordinate descent.
	fitMethod string

	// Starting values, optional
	start []float64

	// L1 (lasso) penalty weights.  FitMethod is ignored if present.
	l1wgt []float64

	// L2 (ridge) penalty weights, optional.  Fitting uses the
	// gradient method if present.
	l2wgt []float64

	// The norm of every covariate.  If scaling is in effect,
	// calculations are done on normalized covariates.
	xn []float64

	// The internal scaling of the covariates
	scaletype statmodel.ScaleType

	// Optimization settings for gradient fitting
	settings *optimize.Settings

	// Optimization method for gradient fitting
	method optimize.Method

	// If not nil, write progress messages here
	log *log.Logger

	// Use concurrent calculations in IRLS if the number of
	// observations is at least as large as this value.
	concurrentIRLS int

	// Reusable buffers of length NumObs
	pool [][]float64

	// Lazily constructed single-covariate view for coordinate descent
	focusData  *statmodel.FocusData
	focusModel *GLM
}

// GLMParams represents the model parameters for a GLM.
type GLMParams struct {
	coeff []float64
	scale float64
}

// GetCoeff returns the coefficients (slopes for individual covariates)
// from the parameter.
func (p *GLMParams) GetCoeff() []float64 {
	return p.coeff
}

// SetCoeff sets the coefficients (slopes for individual covariates) for
// the parameter.
func (p *GLMParams) SetCoeff(coeff []float64) {
	p.coeff = coeff
}

// Clone produces a deep copy of the parameter value.
func (p *GLMParams) Clone() statmodel.Parameter {
	coeff := make([]float64, len(p.coeff))
	copy(coeff, p.coeff)
	return &GLMParams{
		coeff: coeff,
		scale: p.scale,
	}
}

// GLMResults describes the results of a fitted generalized linear model.
type GLMResults struct {
	statmodel.BaseResults

	scale float64
}

// Scale returns the estimated scale parameter.
func (rslt *GLMResults) Scale() float64 {
	return rslt.scale
}

// LinearPredictor returns the fitted linear predictor, including the
// offset if one is present.  If da is nil the training data are used,
// otherwise the provided columns must be laid out like the training
// data.
func (rslt *GLMResults) LinearPredictor(da [][]statmodel.Dtype) []float64 {

	model := rslt.Model().(*GLM)

	lp := rslt.FittedValues(da)

	if model.offsetpos != -1 {
		if da == nil {
			da = model.data
		}
		off := da[model.offsetpos]
		for i := range lp {
			lp[i] += float64(off[i])
		}
	}

	return lp
}

// Mean returns the fitted means of the model.
func (rslt *GLMResults) Mean(da [][]statmodel.Dtype) []float64 {

	model := rslt.Model().(*GLM)

	lp := rslt.LinearPredictor(da)
	mn := make([]float64, len(lp))
	model.link.InvLink(lp, mn)

	return mn
}

// PearsonResid returns the Pearson residuals, which are the residuals
// standardized by the square root of the variance function.
func (rslt *GLMResults) PearsonResid(da [][]statmodel.Dtype) []float64 {

	model := rslt.Model().(*GLM)

	mn := rslt.Mean(da)
	if da == nil {
		da = model.data
	}
	y := da[model.ypos]

	va := make([]float64, len(mn))
	model.vari.Var(mn, va)

	resid := make([]float64, len(mn))
	for i := range resid {
		resid[i] = (float64(y[i]) - mn[i]) / math.Sqrt(va[i])
	}

	return resid
}

// NewGLM creates a new GLM for the given dataset and outcome variable.
// All other variables in the dataset become covariates unless claimed by
// Weight or Offset.
func NewGLM(ds *statmodel.Dataset, yname string) *GLM {

	return &GLM{
		ds:             ds,
		data:           ds.Data(),
		yname:          yname,
		fitMethod:      "irls",
		concurrentIRLS: 1000,
	}
}

// Log sets a logger to which fitting progress is written.
func (glm *GLM) Log(log *log.Logger) *GLM {
	glm.log = log
	return glm
}

// NumParams returns the number of covariates in the model.
func (glm *GLM) NumParams() int {
	return len(glm.xpos)
}

// NumObs returns the number of observations in the model's dataset.
func (glm *GLM) NumObs() int {
	return glm.ds.NumObs()
}

// Xpos returns the positions of the covariates in the model's dataset.
func (glm *GLM) Xpos() []int {
	return glm.xpos
}

// Dataset returns the columns of the dataset used to fit the model.
func (glm *GLM) Dataset() [][]statmodel.Dtype {
	return glm.data
}

// ConcurrentIRLS sets the minimum number of observations for which
// concurrent calculations are used during IRLS.
func (glm *GLM) ConcurrentIRLS(n int) *GLM {
	glm.concurrentIRLS = n
	return glm
}

// CovariateScale determines the type of internal scaling of the
// covariates.  The default is to do no rescaling.
func (glm *GLM) CovariateScale(scaletype statmodel.ScaleType) *GLM {
	glm.scaletype = scaletype
	return glm
}

// FitMethod sets the fitting method, either IRLS or gradient.
func (glm *GLM) FitMethod(method string) *GLM {
	lmethod := strings.ToLower(method)
	if lmethod != "irls" && lmethod != "gradient" {
		panic(fmt.Sprintf("GLM fitting method %s not allowed.\n", method))
	}
	glm.fitMethod = lmethod
	return glm
}

// Offset sets the name of the offset variable.
func (glm *GLM) Offset(name string) *GLM {
	glm.offsetname = name
	return glm
}

// Weight sets the name of the case weight variable.
func (glm *GLM) Weight(name string) *GLM {
	glm.weightname = name
	return glm
}

// Family sets the GLM family.
func (glm *GLM) Family(fam *Family) *GLM {
	glm.fam = fam
	return glm
}

// Link sets the link function.  The family must be set first.
func (glm *GLM) Link(link *Link) *GLM {

	if glm.fam == nil {
		panic("GLM: must set family before setting link.\n")
	}
	if !glm.fam.IsValidLink(link) {
		panic(fmt.Sprintf("GLM: link %s is not valid for family %s.\n", link.Name, glm.fam.Name))
	}
	glm.link = link

	if glm.fam.TypeCode == NegBinomFamily {
		// The negative binomial likelihood depends on the link,
		// so the family must be rebuilt when the link changes.
		glm.fam = NewNegBinomFamily(glm.fam.alpha, link)
	}

	return glm
}

// VarFunc sets the GLM variance function.
func (glm *GLM) VarFunc(va *Variance) *GLM {
	glm.vari = va
	return glm
}

// DispersionForm determines how the dispersion parameter is handled
// after fitting.  Freeing the dispersion of a one-parameter family
// gives a quasi-likelihood analysis.  The family must be set first.
func (glm *GLM) DispersionForm(form DispersionForm) *GLM {

	if glm.fam == nil {
		panic("GLM: must set family before setting the dispersion form.\n")
	}

	fam := *glm.fam
	fam.dispersionMethod = form
	if form == DispersionFree {
		fam.dispersionValue = 0
	}
	glm.fam = &fam

	return glm
}

// L2Weight sets the L2 penalty weights used for ridge regularization.
func (glm *GLM) L2Weight(l2wgt []float64) *GLM {
	glm.l2wgt = l2wgt
	return glm
}

// L1Weight sets the L1 penalty weights used for lasso regularization.
func (glm *GLM) L1Weight(l1wgt []float64) *GLM {
	glm.l1wgt = l1wgt
	return glm
}

// Start sets starting values for the fitting algorithm.
func (glm *GLM) Start(start []float64) *GLM {
	glm.start = start
	return glm
}

// OptSettings sets the optimization settings for gradient fitting.
func (glm *GLM) OptSettings(s *optimize.Settings) *GLM {
	glm.settings = s
	return glm
}

// OptMethod sets the optimization method from gonum optimize.
func (glm *GLM) OptMethod(method optimize.Method) *GLM {
	glm.method = method
	return glm
}

// SetFamily is a convenience method that sets the family, link, and
// variance function to their canonical values for the given family.
func (glm *GLM) SetFamily(fam FamilyType) *GLM {

	switch fam {
	case BinomialFamily:
		glm.fam = &binomial
		glm.link = NewLink(LogitLink)
		glm.vari = NewVariance(BinomialVar)
	case PoissonFamily:
		glm.fam = &poisson
		glm.link = NewLink(LogLink)
		glm.vari = NewVariance(IdentityVar)
	case QuasiPoissonFamily:
		glm.fam = &quasiPoisson
		glm.link = NewLink(LogLink)
		glm.vari = NewVariance(IdentityVar)
	case GaussianFamily:
		glm.fam = &gaussian
		glm.link = NewLink(IdentityLink)
		glm.vari = NewVariance(ConstantVar)
	case GammaFamily:
		glm.fam = &gamma
		glm.link = NewLink(RecipLink)
		glm.vari = NewVariance(SquaredVar)
	case InvGaussianFamily:
		glm.fam = &invGaussian
		glm.link = NewLink(RecipSquaredLink)
		glm.vari = NewVariance(CubedVar)
	default:
		panic(fmt.Sprintf("GLM: can't set family %v using SetFamily", fam))
	}

	return glm
}

func (glm *GLM) findvars() {

	glm.offsetpos = -1
	glm.weightpos = -1
	glm.ypos = -1
	glm.xpos = glm.xpos[0:0]

	for k, na := range glm.ds.Names() {
		switch na {
		case glm.yname:
			glm.ypos = k
		case glm.weightname:
			glm.weightpos = k
		case glm.offsetname:
			glm.offsetpos = k
		default:
			glm.xpos = append(glm.xpos, k)
		}
	}

	if glm.ypos == -1 {
		panic(fmt.Sprintf("Outcome variable '%s' not found.", glm.yname))
	}
	if glm.weightpos == -1 && glm.weightname != "" {
		panic(fmt.Sprintf("Weight variable '%s' not found.", glm.weightname))
	}
	if glm.offsetpos == -1 && glm.offsetname != "" {
		panic(fmt.Sprintf("Offset variable '%s' not found.", glm.offsetname))
	}
}

// doScale calculates covariate scaling factors.
func (glm *GLM) doScale() {

	glm.xn = make([]float64, len(glm.xpos))

	if glm.scaletype == statmodel.NoScale {
		one(glm.xn)
		return
	}

	n := float64(glm.NumObs())
	for j, k := range glm.xpos {
		x := glm.data[k]
		for i := range x {
			glm.xn[j] += float64(x[i] * x[i])
		}
	}

	for j := range glm.xn {

		// A covariate with no variation cannot be scaled.
		if glm.xn[j] == 0 {
			name := glm.ds.Names()[glm.xpos[j]]
			panic(fmt.Sprintf("Variable %s has zero variance.\n", name))
		}

		switch glm.scaletype {
		case statmodel.L2Norm:
			glm.xn[j] = math.Sqrt(glm.xn[j])
		case statmodel.Variance:
			glm.xn[j] = math.Sqrt(glm.xn[j] / n)
		default:
			panic("unknown scale type")
		}
	}
}

func (glm *GLM) setup() {

	if glm.link == nil {
		if glm.fam.link != nil {
			glm.link = glm.fam.link
		} else {
			glm.link = NewLink(glm.fam.validLinks[0])
		}
	}

	if glm.vari == nil {
		switch glm.fam.TypeCode {
		case BinomialFamily:
			glm.vari = NewVariance(BinomialVar)
		case PoissonFamily, QuasiPoissonFamily:
			glm.vari = NewVariance(IdentityVar)
		case GaussianFamily:
			glm.vari = NewVariance(ConstantVar)
		case GammaFamily:
			glm.vari = NewVariance(SquaredVar)
		case InvGaussianFamily:
			glm.vari = NewVariance(CubedVar)
		case NegBinomFamily:
			glm.vari = NewNegBinomVariance(glm.fam.alpha)
		case TweedieFamily:
			glm.vari = NewTweedieVariance(glm.fam.alpha)
		default:
			panic(fmt.Sprintf("Unknown GLM family: %s\n", glm.fam.Name))
		}
	}
}

func (glm *GLM) check() {

	if glm.l1wgt != nil && len(glm.l1wgt) != len(glm.xpos) {
		panic(fmt.Sprintf("GLM: the L1 weight vector has length %d, but the model has %d covariates.\n",
			len(glm.l1wgt), len(glm.xpos)))
	}

	if glm.l2wgt != nil && len(glm.l2wgt) != len(glm.xpos) {
		panic(fmt.Sprintf("GLM: the L2 weight vector has length %d, but the model has %d covariates.\n",
			len(glm.l2wgt), len(glm.xpos)))
	}

	if glm.l1wgt != nil && glm.scaletype != statmodel.NoScale {
		panic("GLM: covariate scaling cannot be combined with L1 regularization.\n")
	}

	if glm.start != nil && len(glm.start) != len(glm.xpos) {
		panic(fmt.Sprintf("GLM: the start vector has length %d, but the model has %d covariates.\n",
			len(glm.start), len(glm.xpos)))
	}
}

// Done completes the definition of a GLM.  After calling Done the GLM
// can be fit by calling Fit.
func (glm *GLM) Done() *GLM {

	if glm.fam == nil {
		panic("GLM: the family must be defined before calling Done.\n")
	}

	glm.findvars()
	glm.doScale()
	glm.setup()
	glm.check()

	return glm
}

// getNslice returns a zeroed buffer of length NumObs, reusing a pooled
// buffer when one is available.
func (glm *GLM) getNslice() []float64 {
	if k := len(glm.pool); k > 0 {
		s := glm.pool[k-1]
		glm.pool = glm.pool[:k-1]
		zero(s)
		return s
	}
	return make([]float64, glm.NumObs())
}

func (glm *GLM) putNslice(s []float64) {
	glm.pool = append(glm.pool, s)
}

// linpred computes the linear predictor for the given coefficients into
// lp, including the offset if one is present.
func (glm *GLM) linpred(coeff, lp []float64) {

	zero(lp)
	for j, k := range glm.xpos {
		floats.AddScaled(lp, coeff[j]/glm.xn[j], glm.data[k])
	}
	if glm.offsetpos != -1 {
		floats.Add(lp, glm.data[glm.offsetpos])
	}
}

// LogLike returns the log-likelihood of the model at the given parameter
// value.  If exact is false, terms that are constant with respect to the
// mean structure may be omitted.
func (glm *GLM) LogLike(params statmodel.Parameter, exact bool) float64 {

	gpar := params.(*GLMParams)
	coeff := gpar.coeff
	scale := gpar.scale

	var wgt []float64
	yda := glm.data[glm.ypos]
	if glm.weightpos != -1 {
		wgt = glm.data[glm.weightpos]
	}

	lp := glm.getNslice()
	mn := glm.getNslice()
	defer glm.putNslice(lp)
	defer glm.putNslice(mn)

	glm.linpred(coeff, lp)
	glm.link.InvLink(lp, mn)

	ll := glm.fam.LogLike(yda, mn, wgt, scale, exact)

	// Account for the L2 penalty
	if glm.l2wgt != nil {
		nobs := float64(glm.NumObs())
		for j, v := range glm.l2wgt {
			ll -= nobs * v * coeff[j] * coeff[j] / 2
		}
	}

	return ll
}

// Score computes the score vector of the model at the given parameter
// value, storing it into score.
func (glm *GLM) Score(params statmodel.Parameter, score []float64) {

	gpar := params.(*GLMParams)
	coeff := gpar.coeff
	scale := gpar.scale

	var wgt []float64
	yda := glm.data[glm.ypos]
	if glm.weightpos != -1 {
		wgt = glm.data[glm.weightpos]
	}

	lp := glm.getNslice()
	mn := glm.getNslice()
	deriv := glm.getNslice()
	va := glm.getNslice()
	fac := glm.getNslice()
	defer glm.putNslice(lp)
	defer glm.putNslice(mn)
	defer glm.putNslice(deriv)
	defer glm.putNslice(va)
	defer glm.putNslice(fac)

	glm.linpred(coeff, lp)
	glm.link.InvLink(lp, mn)
	glm.link.Deriv(mn, deriv)
	glm.vari.Var(mn, va)

	for i, y := range yda {
		fac[i] = (float64(y) - mn[i]) / (scale * deriv[i] * va[i])
		if wgt != nil {
			fac[i] *= float64(wgt[i])
		}
	}

	zero(score)
	for j, k := range glm.xpos {
		score[j] = floats.Dot(fac, glm.data[k]) / glm.xn[j]
	}

	// Account for the L2 penalty
	if glm.l2wgt != nil {
		nobs := float64(glm.NumObs())
		for j, v := range glm.l2wgt {
			score[j] -= nobs * v * coeff[j]
		}
	}
}

// Hessian computes the Hessian matrix of the model at the given
// parameter value, storing its vectorized form into hess.  Either the
// observed or expected Hessian can be calculated.
func (glm *GLM) Hessian(param statmodel.Parameter, ht statmodel.HessType, hess []float64) {

	gpar := param.(*GLMParams)
	coeff := gpar.coeff
	scale := gpar.scale

	nvar := glm.NumParams()

	var wgt []float64
	yda := glm.data[glm.ypos]
	if glm.weightpos != -1 {
		wgt = glm.data[glm.weightpos]
	}

	lp := glm.getNslice()
	mn := glm.getNslice()
	deriv := glm.getNslice()
	va := glm.getNslice()
	fac := glm.getNslice()
	defer glm.putNslice(lp)
	defer glm.putNslice(mn)
	defer glm.putNslice(deriv)
	defer glm.putNslice(va)
	defer glm.putNslice(fac)

	glm.linpred(coeff, lp)
	glm.link.InvLink(lp, mn)
	glm.link.Deriv(mn, deriv)
	glm.vari.Var(mn, va)

	// Factor for the expected Hessian
	for i := range fac {
		fac[i] = 1 / (deriv[i] * deriv[i] * va[i])
	}

	// Adjust the factor for the observed Hessian
	if ht == statmodel.ObsHess {
		deriv2 := glm.getNslice()
		vad := glm.getNslice()
		glm.link.Deriv2(mn, deriv2)
		glm.vari.Deriv(mn, vad)

		for i, y := range yda {
			h := vad[i]*deriv[i] + va[i]*deriv2[i]
			h *= (float64(y) - mn[i]) / (va[i] * deriv[i])
			fac[i] *= 1 + h
		}

		glm.putNslice(deriv2)
		glm.putNslice(vad)
	}

	if wgt != nil {
		for i := range fac {
			fac[i] *= float64(wgt[i])
		}
	}

	zero(hess)
	for j1 := range glm.xpos {
		x1 := glm.data[glm.xpos[j1]]
		for j2 := 0; j2 <= j1; j2++ {
			x2 := glm.data[glm.xpos[j2]]
			var u float64
			for i := range x1 {
				u += fac[i] * float64(x1[i]*x2[i])
			}
			hess[j1*nvar+j2] = -u / (scale * glm.xn[j1] * glm.xn[j2])
		}
	}

	// Fill in the upper triangle
	for j1 := range glm.xpos {
		for j2 := 0; j2 < j1; j2++ {
			hess[j2*nvar+j1] = hess[j1*nvar+j2]
		}
	}

	// Account for the L2 penalty
	if glm.l2wgt != nil {
		nobs := float64(glm.NumObs())
		for j, v := range glm.l2wgt {
			hess[j*nvar+j] -= nobs * v
		}
	}
}

// EstimateScale returns an estimate of the GLM scale parameter at the
// given coefficient values, using the Pearson statistic.  Families with
// a fixed dispersion return the fixed value.
func (glm *GLM) EstimateScale(coeff []float64) float64 {

	if glm.fam.dispersionMethod == DispersionFixed {
		return glm.fam.dispersionValue
	}

	var wgt []float64
	yda := glm.data[glm.ypos]
	if glm.weightpos != -1 {
		wgt = glm.data[glm.weightpos]
	}

	lp := glm.getNslice()
	mn := glm.getNslice()
	va := glm.getNslice()
	defer glm.putNslice(lp)
	defer glm.putNslice(mn)
	defer glm.putNslice(va)

	glm.linpred(coeff, lp)
	glm.link.InvLink(lp, mn)
	glm.vari.Var(mn, va)

	var scale, ws float64
	for i, y := range yda {
		r := float64(y) - mn[i]
		if wgt == nil {
			scale += r * r / va[i]
			ws++
		} else {
			scale += float64(wgt[i]) * r * r / va[i]
			ws += float64(wgt[i])
		}
	}

	return scale / (ws - float64(glm.NumParams()))
}

// Fit estimates the parameters of the GLM and returns a results object.
// Unregularized fits and fits involving L2 regularization can be
// obtained with Fit; if L1 regularization is in effect, coordinate
// descent is used instead.
func (glm *GLM) Fit() *GLMResults {

	if glm.l1wgt != nil {
		return glm.fitRegularized()
	}

	maxiter := 20

	if glm.l2wgt != nil {
		glm.fitMethod = "gradient"
	}

	var params []float64
	if glm.fitMethod == "gradient" {
		if glm.log != nil {
			glm.log.Print("Unregularized fitting using gradient optimization\n")
		}
		params, _ = glm.fitGradient(glm.start)
	} else {
		if glm.log != nil {
			glm.log.Print("Unregularized fitting using IRLS\n")
		}
		params = glm.fitIRLS(glm.start, maxiter)
	}

	// Everything remaining is done on the original scale of the
	// covariates.
	one(glm.xn)

	scale := glm.EstimateScale(params)

	vcov, err := statmodel.GetVcov(glm, &GLMParams{params, scale})
	if err != nil && glm.log != nil {
		glm.log.Print(err)
	}

	ll := glm.LogLike(&GLMParams{params, scale}, true)

	results := &GLMResults{
		BaseResults: statmodel.NewBaseResults(glm, ll, params, glm.xnames(), vcov),
		scale:       scale,
	}

	return results
}

// xnames returns the names of the covariates, in model order.
func (glm *GLM) xnames() []string {
	var xna []string
	na := glm.ds.Names()
	for _, j := range glm.xpos {
		xna = append(xna, na[j])
	}
	return xna
}

// fitGradient uses gradient-based optimization to obtain the fitted GLM
// parameters.
func (glm *GLM) fitGradient(start []float64) ([]float64, float64) {

	nvar := glm.NumParams()

	p := optimize.Problem{
		Func: func(x []float64) float64 {
			return -glm.LogLike(&GLMParams{x, 1}, false)
		},
		Grad: func(grad, x []float64) {
			glm.Score(&GLMParams{x, 1}, grad)
			floats.Scale(-1, grad)
		},
	}

	if glm.settings == nil {
		glm.settings = &optimize.Settings{
			GradientThreshold: 1e-6,
		}
	}

	if glm.method == nil {
		glm.method = &optimize.BFGS{}
	}

	x0 := make([]float64, nvar)
	copy(x0, start)

	optrslt, err := optimize.Minimize(p, x0, glm.settings, glm.method)
	if err != nil {
		glm.failMessage(optrslt)
		panic(err)
	}
	if err = optrslt.Status.Err(); err != nil {
		panic(err)
	}

	params := make([]float64, nvar)
	for j := range optrslt.X {
		params[j] = optrslt.X[j] / glm.xn[j]
	}

	return params, -optrslt.F
}

// failMessage writes information that can help diagnose optimization
// failures.
func (glm *GLM) failMessage(optrslt *optimize.Result) {

	if optrslt == nil {
		return
	}

	xnames := glm.xnames()
	os.Stderr.WriteString("Current point and gradient:\n")
	for j, x := range optrslt.X {
		os.Stderr.WriteString(fmt.Sprintf("%16.8f %16.8f %s\n", x, optrslt.Gradient[j], xnames[j]))
	}
}

// fitRegularized estimates the parameters of the GLM using L1
// regularization (optionally combined with L2 regularization), via
// coordinate descent.
func (glm *GLM) fitRegularized() *GLMResults {

	if glm.log != nil {
		glm.log.Print("Regularized fitting using coordinate descent\n")
	}

	coeff := make([]float64, glm.NumParams())
	copy(coeff, glm.start)
	start := &GLMParams{coeff: coeff, scale: 1}

	// The quadratic approximation is exact for Gaussian models, so
	// the step check can be skipped.
	checkstep := glm.fam.TypeCode != GaussianFamily

	par := statmodel.FitL1Reg(glm, start, glm.l1wgt, glm.l2wgt, checkstep)
	params := par.GetCoeff()

	scale := glm.EstimateScale(params)
	ll := glm.LogLike(&GLMParams{params, scale}, true)

	results := &GLMResults{
		BaseResults: statmodel.NewBaseResults(glm, ll, params, glm.xnames(), nil),
		scale:       scale,
	}

	return results
}

// Focus returns a single-covariate version of the model, used by
// coordinate descent.  The effects of the remaining covariates at the
// given coefficients are absorbed into the focused model's offset.
func (glm *GLM) Focus(pos int, coeff []float64, l2pen float64) statmodel.RegFitter {

	if glm.focusModel == nil {
		glm.buildFocus()
	}

	glm.focusData.Focus(pos, coeff)

	if l2pen > 0 {
		glm.focusModel.l2wgt = []float64{l2pen}
	} else {
		glm.focusModel.l2wgt = nil
	}

	return glm.focusModel
}

func (glm *GLM) buildFocus() {

	names := []string{glm.yname}
	pos := []int{glm.ypos}
	if glm.weightpos != -1 {
		names = append(names, glm.weightname)
		pos = append(pos, glm.weightpos)
	}

	fd := statmodel.NewFocusData(glm.ds, glm.xpos).Other(names, pos)
	if glm.offsetpos != -1 {
		fd = fd.Offset(glm.offsetpos)
	}
	glm.focusData = fd.Done()

	fm := NewGLM(glm.focusData.Data(), glm.yname).Family(glm.fam).Link(glm.link).VarFunc(glm.vari).Offset("off")
	if glm.weightpos != -1 {
		fm = fm.Weight(glm.weightname)
	}
	glm.focusModel = fm.Done()
}

// zero sets all elements of the slice to 0.
func zero(x []float64) {
	for i := range x {
		x[i] = 0
	}
}

// one sets all elements of the slice to 1.
func one(x []float64) {
	for i := range x {
		x[i] = 1
	}
}

// GLMSummary summarizes a fitted generalized linear model.
type GLMSummary struct {

	// The model
	glm *GLM

	// The results being summarized
	results *GLMResults

	// Transform the parameters with this function.  If nil, no
	// transformation is applied.  If paramXform is provided, the
	// standard error and Z-score are not shown.
	paramXform func(float64) float64

	// Messages that are appended to the table
	messages []string
}

// SetScale sets the scale on which the parameter results are displayed
// in the summary.  xf maps parameters and confidence limits from the
// linear scale to the desired scale.  msg is appended to the summary
// table.
func (gs *GLMSummary) SetScale(xf func(float64) float64, msg string) *GLMSummary {
	gs.paramXform = xf
	gs.messages = append(gs.messages, msg)
	return gs
}

// Summary displays a summary table of the model results.
func (rslt *GLMResults) Summary() *GLMSummary {

	glm := rslt.Model().(*GLM)

	return &GLMSummary{
		glm:     glm,
		results: rslt,
	}
}

// String returns a string representation of a summary table for the
// model.
func (gs *GLMSummary) String() string {

	xf := func(x float64) float64 {
		return x
	}

	if gs.paramXform != nil {
		xf = gs.paramXform
	}

	sum := &statmodel.SummaryTable{
		Msg: gs.messages,
	}

	sum.Title = "Generalized linear model analysis"

	sum.Top = []string{
		fmt.Sprintf("Family:   %s", gs.glm.fam.Name),
		fmt.Sprintf("Link:     %s", gs.glm.link.Name),
		fmt.Sprintf("Variance: %s", gs.glm.vari.Name),
		fmt.Sprintf("Num obs:  %d", gs.glm.NumObs()),
		fmt.Sprintf("Scale:    %f", gs.results.scale),
	}

	l1 := gs.glm.l1wgt != nil || gs.results.VCov() == nil

	switch {
	case l1:
		sum.ColNames = []string{"Variable   ", "Parameter"}
	case gs.paramXform == nil:
		sum.ColNames = []string{"Variable   ", "Parameter", "SE", "LCB", "UCB", "Z-score", "P-value"}
	default:
		sum.ColNames = []string{"Variable   ", "Parameter", "LCB", "UCB", "P-value"}
	}

	// String formatter
	fs := func(x interface{}, h string) []string {
		y := x.([]string)
		m := len(h)
		for i := range y {
			if len(y[i]) > m {
				m = len(y[i])
			}
		}
		var z []string
		c := fmt.Sprintf("%%-%ds", m)
		for i := range y {
			z = append(z, fmt.Sprintf(c, y[i]))
		}
		return z
	}

	// Number formatter
	fn := func(x interface{}, h string) []string {
		y := x.([]float64)
		var s []string
		for i := range y {
			s = append(s, fmt.Sprintf("%10.4f", y[i]))
		}
		return s
	}

	switch {
	case l1:
		sum.ColFmt = []statmodel.Fmter{fs, fn}
		sum.Cols = []interface{}{
			gs.results.Names(),
			gs.results.Params(),
		}
	default:
		// Parameter estimates with confidence limits
		var par, lcb, ucb []float64
		pax := gs.results.Params()
		std := gs.results.StdErr()
		for j := range pax {
			par = append(par, xf(pax[j]))
			lcb = append(lcb, xf(pax[j]-2*std[j]))
			ucb = append(ucb, xf(pax[j]+2*std[j]))
		}

		if gs.paramXform == nil {
			sum.ColFmt = []statmodel.Fmter{fs, fn, fn, fn, fn, fn, fn}
			sum.Cols = []interface{}{
				gs.results.Names(),
				par,
				gs.results.StdErr(),
				lcb,
				ucb,
				gs.results.ZScores(),
				gs.results.PValues(),
			}
		} else {
			sum.ColFmt = []statmodel.Fmter{fs, fn, fn, fn, fn}
			sum.Cols = []interface{}{
				gs.results.Names(),
				par,
				lcb,
				ucb,
				gs.results.PValues(),
			}
		}
	}

	return sum.String()
}
