package grip

import (
	"math"

	"ontokern/internal/model"
)

const gradientEpsilon = 1e-8

// Options configures an optimization run. Zero values pick the defaults.
type Options struct {
	MaxIterations int
	Tolerance     float64
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = 100
	}
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-6
	}
	return o
}

// Result carries the refined coefficient vector and its final grip.
type Result struct {
	Coefficients []float64
	Grip         model.GripMetric
	Iterations   int
}

// Optimize improves the coefficients by gradient ascent on the overall grip
// using a central-difference numeric gradient. The learning rate decays as
// 0.1 * 0.95^(iter/10). Stops when the gradient norm drops below the
// tolerance or iterations run out.
func Optimize(coeffs []float64, spec model.DomainSpec, opts Options) Result {
	opts = opts.withDefaults()
	current := append([]float64(nil), coeffs...)

	iterations := 0
	for iter := 0; iter < opts.MaxIterations; iter++ {
		gradient := numericGradient(current, spec)
		if vectorNorm(gradient) < opts.Tolerance {
			break
		}
		rate := 0.1 * math.Pow(0.95, float64(iter)/10)
		for i := range current {
			current[i] += rate * gradient[i]
		}
		iterations = iter + 1
	}

	return Result{
		Coefficients: current,
		Grip:         Measure(current, spec),
		Iterations:   iterations,
	}
}

// ConjugateGradientOptimize refines the coefficients with Polak-Ribiere
// direction updates and a backtracking line search: the step starts at 1.0
// and is halved up to 10 times until the grip improves.
func ConjugateGradientOptimize(coeffs []float64, spec model.DomainSpec, opts Options) Result {
	opts = opts.withDefaults()
	current := append([]float64(nil), coeffs...)

	gradient := numericGradient(current, spec)
	direction := append([]float64(nil), gradient...)

	iterations := 0
	for iter := 0; iter < opts.MaxIterations; iter++ {
		if vectorNorm(gradient) < opts.Tolerance {
			break
		}

		next, improved := lineSearch(current, direction, spec)
		if !improved {
			break
		}
		current = next
		iterations = iter + 1

		nextGradient := numericGradient(current, spec)
		beta := polakRibiere(gradient, nextGradient)
		for i := range direction {
			direction[i] = nextGradient[i] + beta*direction[i]
		}
		gradient = nextGradient
	}

	return Result{
		Coefficients: current,
		Grip:         Measure(current, spec),
		Iterations:   iterations,
	}
}

func lineSearch(current, direction []float64, spec model.DomainSpec) ([]float64, bool) {
	base := Measure(current, spec).Overall
	step := 1.0
	for attempt := 0; attempt < 10; attempt++ {
		candidate := make([]float64, len(current))
		for i := range current {
			candidate[i] = current[i] + step*direction[i]
		}
		if Measure(candidate, spec).Overall > base {
			return candidate, true
		}
		step /= 2
	}
	return nil, false
}

func polakRibiere(previous, next []float64) float64 {
	denominator := 0.0
	numerator := 0.0
	for i := range previous {
		denominator += previous[i] * previous[i]
		numerator += next[i] * (next[i] - previous[i])
	}
	if denominator <= 0 {
		return 0
	}
	beta := numerator / denominator
	if beta < 0 {
		return 0
	}
	return beta
}

func numericGradient(coeffs []float64, spec model.DomainSpec) []float64 {
	gradient := make([]float64, len(coeffs))
	probe := append([]float64(nil), coeffs...)
	for i := range coeffs {
		probe[i] = coeffs[i] + gradientEpsilon
		plus := Measure(probe, spec).Overall
		probe[i] = coeffs[i] - gradientEpsilon
		minus := Measure(probe, spec).Overall
		probe[i] = coeffs[i]
		gradient[i] = (plus - minus) / (2 * gradientEpsilon)
	}
	return gradient
}

func vectorNorm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
