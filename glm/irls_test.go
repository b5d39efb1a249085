package glm

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/statfit/statmodel/statmodel"
)

func logitTable(linpred, y []float64) *workTable {
	wt := newWorkTable(len(linpred))
	copy(wt.linpred, linpred)
	wt.y = y
	return wt
}

func TestLogitTableCenter(t *testing.T) {

	// A linear predictor of zero corresponds to a mean of 1/2.
	wt := logitTable([]float64{0, 0}, []float64{0, 1})
	bernoulliLogitUpdater{}.update(wt, 0, 2)

	for i := range wt.mu {
		if math.Abs(wt.mu[i]-0.5) > 1e-12 {
			t.Errorf("mu=%v at eta=0, expected 0.5", wt.mu[i])
		}
		if math.Abs(wt.dev[i]-2*math.Log(2)) > 1e-12 {
			t.Errorf("dev=%v at eta=0, expected 2*log(2)", wt.dev[i])
		}
	}
}

func TestLogitTableRange(t *testing.T) {

	n := 101
	linpred := make([]float64, n)
	y := make([]float64, n)
	for i := range linpred {
		linpred[i] = -25 + 0.5*float64(i)
		y[i] = float64(i % 2)
	}

	wt := logitTable(linpred, y)
	bernoulliLogitUpdater{}.update(wt, 0, n)

	for i := range wt.mu {
		if wt.mu[i] <= 0 || wt.mu[i] >= 1 {
			t.Errorf("mu=%v at eta=%v is outside (0, 1)", wt.mu[i], linpred[i])
		}
		if i > 0 && wt.mu[i] <= wt.mu[i-1] {
			t.Errorf("mu is not increasing in eta at %v", linpred[i])
		}
		if wt.dev[i] < 0 {
			t.Errorf("dev=%v at eta=%v is negative", wt.dev[i], linpred[i])
		}
		if wt.rtwwt[i] <= 0 {
			t.Errorf("rtwwt=%v at eta=%v is not positive", wt.rtwwt[i], linpred[i])
		}
	}
}

func TestLogitTablePerfectFit(t *testing.T) {

	// When the mean is pinned at the observed response the deviance
	// contribution vanishes.
	wt := logitTable([]float64{40, -40}, []float64{1, 0})
	bernoulliLogitUpdater{}.update(wt, 0, 2)

	for i := range wt.dev {
		if wt.dev[i] > 1e-15 {
			t.Errorf("dev=%v at a perfect fit, expected 0", wt.dev[i])
		}
	}
}

func TestLogitTableRecompute(t *testing.T) {

	// Recomputing the table from the same linear predictor must
	// reproduce it exactly.
	n := 50
	linpred := make([]float64, n)
	y := make([]float64, n)
	rng := rand.New(rand.NewSource(50))
	for i := range linpred {
		linpred[i] = 2 * rng.NormFloat64()
		y[i] = float64(rng.Intn(2))
	}

	wt := logitTable(linpred, y)
	bernoulliLogitUpdater{}.update(wt, 0, n)

	mu := make([]float64, n)
	dev := make([]float64, n)
	rtwwt := make([]float64, n)
	wwresp := make([]float64, n)
	copy(mu, wt.mu)
	copy(dev, wt.dev)
	copy(rtwwt, wt.rtwwt)
	copy(wwresp, wt.wwresp)

	bernoulliLogitUpdater{}.update(wt, 0, n)

	if !floats.Equal(mu, wt.mu) || !floats.Equal(dev, wt.dev) ||
		!floats.Equal(rtwwt, wt.rtwwt) || !floats.Equal(wwresp, wt.wwresp) {
		t.Errorf("recomputing the work table changed its values")
	}
}

func TestLogitTableGeneric(t *testing.T) {

	// The dedicated binomial/logit updater agrees with the generic
	// one.
	n := 50
	linpred := make([]float64, n)
	y := make([]float64, n)
	rng := rand.New(rand.NewSource(23))
	for i := range linpred {
		linpred[i] = 3 * rng.NormFloat64()
		y[i] = float64(rng.Intn(2))
	}

	wt1 := logitTable(linpred, y)
	bernoulliLogitUpdater{}.update(wt1, 0, n)

	wt2 := logitTable(linpred, y)
	gu := &genericUpdater{
		fam:    NewFamily(BinomialFamily),
		link:   NewLink(LogitLink),
		vari:   NewVariance(BinomialVar),
		lderiv: make([]float64, n),
		va:     make([]float64, n),
	}
	gu.update(wt2, 0, n)

	if !floats.EqualApprox(wt1.mu, wt2.mu, 1e-10) {
		t.Errorf("mu disagrees between updaters")
	}
	if !floats.EqualApprox(wt1.dev, wt2.dev, 1e-10) {
		t.Errorf("dev disagrees between updaters")
	}
	if !floats.EqualApprox(wt1.rtwwt, wt2.rtwwt, 1e-10) {
		t.Errorf("rtwwt disagrees between updaters")
	}
	if !floats.EqualApprox(wt1.wwresp, wt2.wwresp, 1e-10) {
		t.Errorf("wwresp disagrees between updaters")
	}
}

func TestUpdateCoeffOLS(t *testing.T) {

	// With unit working weights the coefficient update is ordinary
	// least squares.
	glm := NewGLM(data1(), "y").SetFamily(GaussianFamily).Done()

	n := glm.NumObs()
	p := glm.NumParams()

	wt := newWorkTable(n)
	wt.y = glm.data[glm.ypos]
	one(wt.rtwwt)
	copy(wt.wwresp, wt.y)

	wx := mat.NewDense(n, p, nil)
	coeff := make([]float64, p)
	prev := make([]float64, p)
	if err := glm.updateCoeff(wt, wx, coeff, prev); err != nil {
		t.Fatal(err)
	}

	if !floats.EqualApprox(coeff, []float64{0.5, 1.4}, 1e-10) {
		t.Errorf("unexpected coefficients: %v", coeff)
	}
}

func TestUpdateCoeffSingular(t *testing.T) {

	// A duplicated covariate makes the weighted design rank
	// deficient, which must surface as an error.
	y := []float64{2, 3, 5, 6}
	x1 := []float64{1, 2, 3, 4}
	x2 := []float64{2, 4, 6, 8}
	ds, err := statmodel.NewDataset([][]float64{y, x1, x2}, []string{"y", "x1", "x2"})
	if err != nil {
		panic(err)
	}

	glm := NewGLM(ds, "y").SetFamily(GaussianFamily).Done()

	n := glm.NumObs()
	p := glm.NumParams()

	wt := newWorkTable(n)
	wt.y = glm.data[glm.ypos]
	one(wt.rtwwt)
	copy(wt.wwresp, wt.y)

	wx := mat.NewDense(n, p, nil)
	coeff := make([]float64, p)
	prev := make([]float64, p)
	if err := glm.updateCoeff(wt, wx, coeff, prev); err == nil {
		t.Errorf("expected an error for a rank deficient design")
	}
}

func TestConcurrentTableUpdate(t *testing.T) {

	// The concurrent row-block update agrees with the serial one.
	n := 5000
	linpred := make([]float64, n)
	y := make([]float64, n)
	rng := rand.New(rand.NewSource(99))
	for i := range linpred {
		linpred[i] = rng.NormFloat64()
		y[i] = float64(rng.Intn(2))
	}

	wt1 := logitTable(linpred, y)
	bernoulliLogitUpdater{}.update(wt1, 0, n)

	icept := make([]float64, n)
	one(icept)
	ds, err := statmodel.NewDataset([][]float64{y, icept}, []string{"y", "icept"})
	if err != nil {
		panic(err)
	}
	glm := NewGLM(ds, "y").SetFamily(BinomialFamily).ConcurrentIRLS(100).Done()

	wt2 := logitTable(linpred, y)
	glm.updateTable(glm.newTableUpdater(), wt2)

	if !floats.Equal(wt1.mu, wt2.mu) || !floats.Equal(wt1.wwresp, wt2.wwresp) {
		t.Errorf("concurrent and serial table updates disagree")
	}
}

func simLogit(n int, rng *rand.Rand) *statmodel.Dataset {

	y := make([]float64, n)
	icept := make([]float64, n)
	x1 := make([]float64, n)
	x2 := make([]float64, n)

	for i := 0; i < n; i++ {
		icept[i] = 1
		x1[i] = rng.NormFloat64()
		x2[i] = rng.NormFloat64()
		lp := 0.5 + x1[i] - 0.5*x2[i]
		pr := 1 / (1 + math.Exp(-lp))
		if rng.Float64() < pr {
			y[i] = 1
		}
	}

	ds, err := statmodel.NewDataset([][]float64{y, icept, x1, x2}, []string{"y", "icept", "x1", "x2"})
	if err != nil {
		panic(err)
	}
	return ds
}

func TestIRLSGradientAgree(t *testing.T) {

	rng := rand.New(rand.NewSource(4523))
	ds := simLogit(500, rng)

	r1 := NewGLM(ds, "y").SetFamily(BinomialFamily).Done().Fit()
	r2 := NewGLM(ds, "y").SetFamily(BinomialFamily).FitMethod("gradient").Done().Fit()

	if !floats.EqualApprox(r1.Params(), r2.Params(), 1e-5) {
		t.Errorf("IRLS and gradient fits disagree: %v %v", r1.Params(), r2.Params())
	}
}

func BenchmarkUpdateTable(b *testing.B) {

	n := 10000
	linpred := make([]float64, n)
	y := make([]float64, n)
	rng := rand.New(rand.NewSource(1))
	for i := range linpred {
		linpred[i] = rng.NormFloat64()
		y[i] = float64(rng.Intn(2))
	}
	wt := logitTable(linpred, y)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bernoulliLogitUpdater{}.update(wt, 0, n)
	}
}

func BenchmarkUpdateCoeff(b *testing.B) {

	rng := rand.New(rand.NewSource(2))
	ds := simLogit(10000, rng)
	glm := NewGLM(ds, "y").SetFamily(BinomialFamily).Done()

	n := glm.NumObs()
	p := glm.NumParams()

	wt := newWorkTable(n)
	wt.y = glm.data[glm.ypos]
	glm.startingMu(wt.mu)
	glm.link.Link(wt.mu, wt.linpred)
	glm.updateTable(glm.newTableUpdater(), wt)

	wx := mat.NewDense(n, p, nil)
	coeff := make([]float64, p)
	prev := make([]float64, p)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := glm.updateCoeff(wt, wx, coeff, prev); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFitIRLS(b *testing.B) {

	rng := rand.New(rand.NewSource(3))
	ds := simLogit(10000, rng)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		glm := NewGLM(ds, "y").SetFamily(BinomialFamily).Done()
		glm.fitIRLS(nil, 20)
	}
}
