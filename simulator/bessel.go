package simulator

import "math"

// Polynomial approximations from Abramowitz & Stegun 9.8.1, 9.8.5 and 9.8.6.
// Absolute error below 1e-8 for x <= 2, relative error below 2e-7 above.

func besselI0(x float64) float64 {
	y := x / 3.75
	y *= y
	return 1 + y*(3.5156229+y*(3.0899424+y*(1.2067492+y*(0.2659732+y*(0.0360768+y*0.0045813)))))
}

// BesselK0 is the modified Bessel function of the second kind, order zero, for x > 0.
// It returns +Inf at 0 and NaN for negative x.
func BesselK0(x float64) float64 {
	switch {
	case x < 0 || math.IsNaN(x):
		return math.NaN()
	case x == 0:
		return math.Inf(1)
	case x <= 2:
		y := x * x / 4
		return -math.Log(x/2)*besselI0(x) +
			(-0.57721566 + y*(0.42278420+y*(0.23069756+y*(0.03488590+y*(0.00262698+y*(0.00010750+y*0.0000074))))))
	}
	return math.Exp(-x) * besselK0Tail(x)
}

// BesselK0Scaled returns exp(x)·K0(x), which stays finite for large x.
func BesselK0Scaled(x float64) float64 {
	if x > 2 {
		return besselK0Tail(x)
	}
	return math.Exp(x) * BesselK0(x)
}

func besselK0Tail(x float64) float64 {
	y := 2 / x
	return (1.25331414 + y*(-0.07832358+y*(0.02189568+y*(-0.01062446+y*(0.00587872+y*(-0.00251540+y*0.00053208)))))) /
		math.Sqrt(x)
}
