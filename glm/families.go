package glm

import (
	"fmt"
	"math"
)

// FamilyType is the type of GLM family used in a model.
type FamilyType uint8

// BinomialFamily, ... are the supported families for a GLM.
const (
	BinomialFamily FamilyType = iota
	PoissonFamily
	QuasiPoissonFamily
	GaussianFamily
	GammaFamily
	InvGaussianFamily
	NegBinomFamily
	TweedieFamily
)

// DispersionForm determines how the dispersion (scale) parameter of a
// family is handled after fitting.
type DispersionForm uint8

// DispersionFree indicates that the dispersion is estimated from the
// Pearson residuals, DispersionFixed that it is held at a fixed value.
const (
	DispersionFree DispersionForm = iota
	DispersionFixed
)

// LogLikeFunc evaluates and returns the log-likelihood for a GLM.  The
// arguments are the response data, the mean values, the weights, the
// scale parameter, and the exact flag.  If the exact flag is false,
// terms that are constant with respect to the mean may be omitted.  The
// weights may be nil, in which case all weights are taken to be 1.
type LogLikeFunc func([]float64, []float64, []float64, float64, bool) float64

// UnitDevianceFunc fills the third argument with the per-observation
// deviance contributions for the given response and mean values.  Unit
// deviances are nonnegative and are zero only at a perfect fit.
type UnitDevianceFunc func([]float64, []float64, []float64)

// Family represents a generalized linear model family.
type Family struct {

	// The name of the family
	Name string

	// The numeric code for the family
	TypeCode FamilyType

	// The log-likelihood function for the family
	LogLike LogLikeFunc

	// The per-observation deviance function for the family
	DevUnit UnitDevianceFunc

	// How the dispersion parameter is handled after fitting
	dispersionMethod DispersionForm

	// The dispersion value when the dispersion is fixed
	dispersionValue float64

	// The type codes of valid links for this family.  The first
	// listed link is the canonical link.
	validLinks []LinkType

	// The link in use by the family, only set for the negative
	// binomial and Tweedie families, whose likelihoods depend on it.
	link *Link

	// Auxiliary parameter: negative binomial dispersion or Tweedie
	// variance power.
	alpha float64
}

// NewFamily returns a family object corresponding to the given type
// code.  The negative binomial and Tweedie families carry parameters and
// must be constructed with NewNegBinomFamily and NewTweedieFamily.
func NewFamily(fam FamilyType) *Family {

	switch fam {
	case PoissonFamily:
		return &poisson
	case QuasiPoissonFamily:
		return &quasiPoisson
	case BinomialFamily:
		return &binomial
	case GaussianFamily:
		return &gaussian
	case GammaFamily:
		return &gamma
	case InvGaussianFamily:
		return &invGaussian
	default:
		panic(fmt.Sprintf("Unknown family: %v", fam))
	}
}

// IsValidLink returns true if the link is valid for the family.
func (fam *Family) IsValidLink(link *Link) bool {

	for _, q := range fam.validLinks {
		if link.TypeCode == q {
			return true
		}
	}

	return false
}

// Deviance returns the total deviance for the family, which is the
// weighted sum of the unit deviances divided by the scale parameter.
func (fam *Family) Deviance(y, mn, wt []float64, scale float64) float64 {

	dev := make([]float64, len(y))
	fam.DevUnit(y, mn, dev)

	var total float64
	if wt != nil {
		for i := range dev {
			total += wt[i] * dev[i]
		}
	} else {
		for i := range dev {
			total += dev[i]
		}
	}

	return total / scale
}

var poisson = Family{
	Name:             "Poisson",
	TypeCode:         PoissonFamily,
	LogLike:          poissonLogLike,
	DevUnit:          poissonDevUnit,
	validLinks:       []LinkType{LogLink, IdentityLink},
	dispersionMethod: DispersionFixed,
	dispersionValue:  1,
}

// quasiPoisson is the same as poisson, except that the scale parameter
// is estimated.
var quasiPoisson = Family{
	Name:             "QuasiPoisson",
	TypeCode:         QuasiPoissonFamily,
	LogLike:          poissonLogLike,
	DevUnit:          poissonDevUnit,
	validLinks:       []LinkType{LogLink, IdentityLink},
	dispersionMethod: DispersionFree,
}

var binomial = Family{
	Name:             "Binomial",
	TypeCode:         BinomialFamily,
	LogLike:          binomialLogLike,
	DevUnit:          binomialDevUnit,
	validLinks:       []LinkType{LogitLink, LogLink, CloglogLink, IdentityLink},
	dispersionMethod: DispersionFixed,
	dispersionValue:  1,
}

var gaussian = Family{
	Name:             "Gaussian",
	TypeCode:         GaussianFamily,
	LogLike:          gaussianLogLike,
	DevUnit:          gaussianDevUnit,
	validLinks:       []LinkType{IdentityLink, LogLink, RecipLink},
	dispersionMethod: DispersionFree,
}

var gamma = Family{
	Name:             "Gamma",
	TypeCode:         GammaFamily,
	LogLike:          gammaLogLike,
	DevUnit:          gammaDevUnit,
	validLinks:       []LinkType{RecipLink, LogLink, IdentityLink},
	dispersionMethod: DispersionFree,
}

var invGaussian = Family{
	Name:             "InvGaussian",
	TypeCode:         InvGaussianFamily,
	LogLike:          invGaussLogLike,
	DevUnit:          invGaussDevUnit,
	validLinks:       []LinkType{RecipSquaredLink, RecipLink, LogLink, IdentityLink},
	dispersionMethod: DispersionFree,
}

func poissonLogLike(y, mn, wt []float64, scale float64, exact bool) float64 {

	var ll float64
	var w float64 = 1
	for i := range y {
		if wt != nil {
			w = wt[i]
		}
		ll += w * (y[i]*math.Log(mn[i]) - mn[i])
	}

	if exact {
		for i := range y {
			if wt != nil {
				w = wt[i]
			}
			g, _ := math.Lgamma(y[i] + 1)
			ll -= w * g
		}
	}

	return ll
}

func binomialLogLike(y, mn, wt []float64, scale float64, exact bool) float64 {

	var ll float64
	var w float64 = 1
	for i := range y {
		if wt != nil {
			w = wt[i]
		}
		r := mn[i]/(1-mn[i]) + 1e-200
		ll += w * (y[i]*math.Log(r) + math.Log(1-mn[i]))
	}

	return ll
}

func gaussianLogLike(y, mn, wt []float64, scale float64, exact bool) float64 {

	var ll float64
	var w float64 = 1
	var ws float64
	for i := range y {
		if wt != nil {
			w = wt[i]
		}
		r := y[i] - mn[i]
		ll -= w * r * r / (2 * scale)
		ws += w
	}
	ll -= ws * math.Log(2*math.Pi*scale) / 2

	return ll
}

func gammaLogLike(y, mn, wt []float64, scale float64, exact bool) float64 {

	var ll float64
	var w float64 = 1
	for i := range y {
		if wt != nil {
			w = wt[i]
		}
		ll -= w * (y[i]/mn[i] + math.Log(mn[i])) / scale
	}

	if exact {
		for i := range y {
			if wt != nil {
				w = wt[i]
			}
			v := (scale - 1) * math.Log(y[i])
			g, _ := math.Lgamma(1 / scale)
			v += math.Log(scale) + scale*g
			ll -= w * v / scale
		}
	}

	return ll
}

func invGaussLogLike(y, mn, wt []float64, scale float64, exact bool) float64 {

	var ll float64
	var w float64 = 1
	var ws float64
	for i := range y {
		if wt != nil {
			w = wt[i]
		}
		r := y[i] - mn[i]
		ll -= 0.5 * w * r * r / (y[i] * mn[i] * mn[i] * scale)
		ws += w
	}
	ll -= 0.5 * ws * math.Log(2*math.Pi)

	if exact {
		for i := range y {
			if wt != nil {
				w = wt[i]
			}
			ll -= 0.5 * w * math.Log(scale*y[i]*y[i]*y[i])
		}
	}

	return ll
}

func poissonDevUnit(y, mn, dev []float64) {
	for i := range y {
		if y[i] > 0 {
			dev[i] = 2 * (y[i]*math.Log(y[i]/mn[i]) - (y[i] - mn[i]))
		} else {
			dev[i] = 2 * mn[i]
		}
	}
}

func binomialDevUnit(y, mn, dev []float64) {
	for i := range y {
		dev[i] = -2 * (y[i]*math.Log(mn[i]) + (1-y[i])*math.Log(1-mn[i]))
	}
}

func gaussianDevUnit(y, mn, dev []float64) {
	for i := range y {
		r := y[i] - mn[i]
		dev[i] = r * r
	}
}

func gammaDevUnit(y, mn, dev []float64) {
	for i := range y {
		dev[i] = 2 * ((y[i]-mn[i])/mn[i] - math.Log(y[i]/mn[i]))
	}
}

func invGaussDevUnit(y, mn, dev []float64) {
	for i := range y {
		r := y[i] - mn[i]
		dev[i] = r * r / (y[i] * mn[i] * mn[i])
	}
}

// NewNegBinomFamily returns a new family object for the negative
// binomial family, using the given dispersion parameter alpha and link
// function.
func NewNegBinomFamily(alpha float64, link *Link) *Family {

	loglike := func(y, mn, wt []float64, scale float64, exact bool) float64 {

		var ll float64
		var w float64 = 1

		lp := make([]float64, len(y))
		link.Link(mn, lp)
		c3, _ := math.Lgamma(1 / alpha)

		for i := range y {

			if wt != nil {
				w = wt[i]
			}

			elp := math.Exp(lp[i])

			c1, _ := math.Lgamma(y[i] + 1/alpha)
			c2, _ := math.Lgamma(y[i] + 1)
			c := c1 - c2 - c3

			v := y[i] * math.Log(alpha*elp/(1+alpha*elp))
			v -= math.Log(1+alpha*elp) / alpha

			ll += w * (v + c)
		}

		return ll
	}

	devunit := func(y, mn, dev []float64) {
		for i := range y {
			if y[i] > 0 {
				z := y[i] * math.Log(y[i]/mn[i])
				z -= (y[i] + 1/alpha) * math.Log((1+alpha*y[i])/(1+alpha*mn[i]))
				dev[i] = 2 * z
			} else {
				dev[i] = 2 * math.Log(1+alpha*mn[i]) / alpha
			}
		}
	}

	return &Family{
		Name:             "NegBinom",
		TypeCode:         NegBinomFamily,
		LogLike:          loglike,
		DevUnit:          devunit,
		alpha:            alpha,
		validLinks:       []LinkType{LogLink, IdentityLink},
		link:             link,
		dispersionMethod: DispersionFree,
	}
}

// NewTweedieFamily returns a new family object for the Tweedie family,
// using the given variance power and link function.  The variance power
// determines the mean/variance relationship, variance = mean^pw.  If
// link is nil, the canonical link is used, which is a power link with
// exponent 1-pw.  Passing NewLink(LogLink) gives the log link, which
// avoids domain violations.
func NewTweedieFamily(pw float64, link *Link) *Family {

	if pw <= 1 || pw >= 2 {
		panic("NewTweedieFamily: variance power must be in (1, 2)")
	}

	if link == nil {
		link = NewPowerLink(1 - pw)
	}

	loglike := func(y, mn, wt []float64, scale float64, exact bool) float64 {

		var ll float64
		var w float64 = 1
		for i := range y {
			if wt != nil {
				w = wt[i]
			}
			lmn := math.Log(mn[i])
			ll += w * (y[i]*math.Exp((1-pw)*lmn)/(1-pw) - math.Exp((2-pw)*lmn)/(2-pw))
		}
		ll /= scale

		if exact {
			ll += tweedieScalingFactor(y, wt, pw, scale)
		}

		return ll
	}

	devunit := func(y, mn, dev []float64) {
		for i := range y {
			u1 := math.Pow(y[i], 2-pw) / ((1 - pw) * (2 - pw))
			u2 := y[i] * math.Pow(mn[i], 1-pw) / (1 - pw)
			u3 := math.Pow(mn[i], 2-pw) / (2 - pw)
			dev[i] = 2 * (u1 - u2 + u3)
		}
	}

	return &Family{
		Name:             "Tweedie",
		TypeCode:         TweedieFamily,
		LogLike:          loglike,
		DevUnit:          devunit,
		alpha:            pw,
		validLinks:       []LinkType{LogLink, PowerLink},
		link:             link,
		dispersionMethod: DispersionFree,
	}
}

// tweedieScalingFactor evaluates the part of the Tweedie log-likelihood
// that does not depend on the mean, by summing the series expansion of
// the density's normalizing term around its largest element.
func tweedieScalingFactor(y, wt []float64, pw, scale float64) float64 {

	var ll float64
	var w float64 = 1

	alp := (2 - pw) / (1 - pw)
	lscale := math.Log(scale)

	for i := range y {
		if wt != nil {
			w = wt[i]
		}

		// The scaling factor is 1 when y is zero.
		if y[i] == 0 {
			continue
		}

		lz := -alp*math.Log(y[i]) + alp*math.Log(pw-1) - math.Log(2-pw) - (1-alp)*lscale

		// Index of the approximately largest series term.
		kf := math.Pow(y[i], 2-pw) / (scale * (2 - pw))
		k := int(math.Round(kf))
		if k < 1 {
			k = 1
		}

		w0 := float64(k)*lz - lgamma(float64(k+1)) - lgamma(-alp*float64(k))
		ws := 1.0

		// Sum the upper tail.
		for j := k + 1; j < 200; j++ {
			w1 := float64(j)*lz - lgamma(float64(j+1)) - lgamma(-alp*float64(j))
			if w1 < w0-37 {
				break
			}
			ws += math.Exp(w1 - w0)
		}

		// Sum the lower tail.
		for j := k - 1; j > 0; j-- {
			w1 := float64(j)*lz - lgamma(float64(j+1)) - lgamma(-alp*float64(j))
			if w1 < w0-37 {
				break
			}
			ws += math.Exp(w1 - w0)
		}

		ll -= w * math.Log(y[i])
		ll += w * (w0 + math.Log(ws))
	}

	return ll
}

func lgamma(x float64) float64 {
	u, _ := math.Lgamma(x)
	return u
}
