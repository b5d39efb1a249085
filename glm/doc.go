// Package glm supports fitting generalized linear models to data, with
// capabilities similar to the GLM implementations in R, Python
// (statsmodels), Stata, and other statistical packages.
//
// The model is defined by a family, a link function, and a variance
// function.  The standard exponential families are supported, along
// with quasi-likelihood analogues, the negative binomial family, and
// the Tweedie family.  Fitting defaults to iteratively reweighted
// least squares, with gradient optimization and coordinate descent
// (for lasso-penalized fits) available as alternatives.
package glm
