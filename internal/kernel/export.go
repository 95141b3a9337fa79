package kernel

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ontokern/internal/model"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Export renders a kernel in one of the supported formats: json (full
// structural dump), ggml (fixed text template), or scheme (S-expression
// template). Templates are whitespace-significant.
func Export(k model.Kernel, format string) (string, error) {
	switch format {
	case "json":
		payload, err := json.MarshalIndent(k, "", "  ")
		if err != nil {
			return "", err
		}
		return string(payload), nil
	case "ggml":
		return exportGGML(k), nil
	case "scheme":
		return exportScheme(k), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func exportGGML(k model.Kernel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "GGML Kernel %s\n", k.Domain.Type)
	fmt.Fprintf(&b, "Order: %d\n", k.Order)
	fmt.Fprintf(&b, "Coefficients: [%s]\n", joinCoefficients(k.Coefficients, ", "))
	fmt.Fprintf(&b, "Grip: %.4f\n", k.Grip.Overall)
	fmt.Fprintf(&b, "Trees: %d\n", len(k.Trees))
	return b.String()
}

func exportScheme(k model.Kernel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(define %s-kernel\n", k.Domain.Type)
	fmt.Fprintf(&b, "  '((order . %d)\n", k.Order)
	fmt.Fprintf(&b, "    (trees . %d)\n", len(k.Trees))
	fmt.Fprintf(&b, "    (coefficients . (%s))\n", joinCoefficients(k.Coefficients, " "))
	fmt.Fprintf(&b, "    (grip . %.4f)\n", k.Grip.Overall)
	fmt.Fprintf(&b, "    (symmetry . %q)))\n", k.Domain.Symmetry)
	return b.String()
}

func joinCoefficients(coeffs []float64, separator string) string {
	parts := make([]string, len(coeffs))
	for i, c := range coeffs {
		parts[i] = strconv.FormatFloat(c, 'g', -1, 64)
	}
	return strings.Join(parts, separator)
}
