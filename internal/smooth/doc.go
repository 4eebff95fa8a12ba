// Package smooth fits parametric cubic smoothing splines to traced paths.
//
// # Fitting
//
// A path of n points is parameterized by normalized cumulative chord length
// u in [0, 1]. Each coordinate is fitted with a natural cubic smoothing spline
// sharing one stiffness, chosen so that the summed squared distance between
// the input points and the curve equals the smoothing factor s. A factor of
// zero interpolates every point; when even a straight-line fit stays within
// s the stiffest (near-linear) curve is used.
//
// The curve is resampled at 2n evenly spaced parameter values, so the output
// of a successful fit is always twice as long as the input.
//
// # Error Handling
//
// Paths shorter than four points are not fitted. Fit reports them with
// ErrTooShort; Smooth passes them through untouched. Repeated consecutive
// points give ErrDegenerate and a numerically broken fit gives ErrNotFinite.
// Smooth never fails outright: it returns a Result whose Err tells the caller
// to keep the original points.
package smooth
