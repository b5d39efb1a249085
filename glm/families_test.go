package glm

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// Unit deviances are nonnegative, and vanish when the mean is pinned at
// the observed response.
func TestDevUnit(t *testing.T) {

	type devCase struct {
		fam *Family
		y   []float64
		mn  []float64
	}

	for _, c := range []devCase{
		{NewFamily(GaussianFamily), []float64{-1, 0, 2}, []float64{0.5, 1, 1.5}},
		{NewFamily(PoissonFamily), []float64{0, 1, 3}, []float64{0.5, 1, 1.5}},
		{NewFamily(BinomialFamily), []float64{0, 1, 1}, []float64{0.2, 0.5, 0.9}},
		{NewFamily(GammaFamily), []float64{0.5, 1, 3}, []float64{0.5, 1, 1.5}},
		{NewFamily(InvGaussianFamily), []float64{0.5, 1, 3}, []float64{0.5, 1, 1.5}},
		{NewNegBinomFamily(1.5, NewLink(LogLink)), []float64{0, 1, 3}, []float64{0.5, 1, 1.5}},
		{NewTweedieFamily(1.5, NewLink(LogLink)), []float64{0, 1, 3}, []float64{0.5, 1, 1.5}},
	} {
		dev := make([]float64, len(c.y))
		c.fam.DevUnit(c.y, c.mn, dev)
		for i, d := range dev {
			if d < 0 {
				t.Errorf("%s: negative unit deviance %v at y=%v, mean=%v",
					c.fam.Name, d, c.y[i], c.mn[i])
			}
		}

		// Perfect fit.  The binomial unit deviance is the binary
		// cross entropy, which vanishes only at binary responses,
		// so it is checked separately below.
		if c.fam.TypeCode == BinomialFamily {
			continue
		}
		c.fam.DevUnit(c.mn, c.mn, dev)
		for i, d := range dev {
			if math.Abs(d) > 1e-10 {
				t.Errorf("%s: unit deviance %v at a perfect fit with mean %v",
					c.fam.Name, d, c.mn[i])
			}
		}
	}

	// Binomial perfect fit at binary responses.
	fam := NewFamily(BinomialFamily)
	y := []float64{0, 1}
	mn := []float64{1e-12, 1 - 1e-12}
	dev := make([]float64, 2)
	fam.DevUnit(y, mn, dev)
	for i, d := range dev {
		if math.Abs(d) > 1e-10 {
			t.Errorf("Binomial: unit deviance %v at a perfect fit with mean %v", d, mn[i])
		}
	}
}

func TestDeviance(t *testing.T) {

	fam := NewFamily(GaussianFamily)

	y := []float64{1, 2, 3}
	mn := []float64{1, 1, 1}
	wt := []float64{1, 2, 1}

	// Weighted sum of squared residuals: 0 + 2*1 + 4.
	d := fam.Deviance(y, mn, wt, 1)
	if math.Abs(d-6) > 1e-10 {
		t.Errorf("unexpected deviance: %v", d)
	}

	d = fam.Deviance(y, mn, nil, 2)
	if math.Abs(d-2.5) > 1e-10 {
		t.Errorf("unexpected deviance: %v", d)
	}
}

// Link and InvLink are inverse functions of each other.
func TestLinkRoundTrip(t *testing.T) {

	type linkCase struct {
		link *Link
		mn   []float64
	}

	for _, c := range []linkCase{
		{NewLink(LogLink), []float64{0.1, 1, 5}},
		{NewLink(IdentityLink), []float64{-2, 0.1, 5}},
		{NewLink(LogitLink), []float64{0.05, 0.5, 0.95}},
		{NewLink(CloglogLink), []float64{0.05, 0.5, 0.95}},
		{NewLink(RecipLink), []float64{0.1, 1, 5}},
		{NewLink(RecipSquaredLink), []float64{0.1, 1, 5}},
		{NewPowerLink(0.5), []float64{0.1, 1, 5}},
	} {
		lp := make([]float64, len(c.mn))
		mn := make([]float64, len(c.mn))
		c.link.Link(c.mn, lp)
		c.link.InvLink(lp, mn)

		if !floats.EqualApprox(c.mn, mn, 1e-8) {
			t.Errorf("%s: round trip %v gave %v", c.link.Name, c.mn, mn)
		}
	}
}

func TestValidLinks(t *testing.T) {

	fam := NewFamily(BinomialFamily)
	if !fam.IsValidLink(NewLink(LogitLink)) {
		t.Errorf("logit is not accepted by the binomial family")
	}
	if fam.IsValidLink(NewLink(RecipLink)) {
		t.Errorf("reciprocal link is accepted by the binomial family")
	}
}
