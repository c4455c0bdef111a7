package effects

// Lerp performs linear interpolation between a and b
func Lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// EaseInOutCubic applies smooth easing function
func EaseInOutCubic(t float64) float64 {
	t = Clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// EaseOutCubic decelerates into 1.
func EaseOutCubic(t float64) float64 {
	return 1 - pow(1-Clamp01(t), 3)
}

// EaseInCubic accelerates away from 0.
func EaseInCubic(t float64) float64 {
	return pow(Clamp01(t), 3)
}

// Clamp01 limits t to [0,1].
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
