package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

// periodParam accepts an int, or a float64 carrying an integral value (decoded JSON numbers).
func periodParam(name string, v any) (int, error) {
	var period int

	switch p := v.(type) {
	case int:
		period = p
	case int64:
		period = int(p)
	case float64:
		if p != math.Trunc(p) {
			return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid value for %s parameter, expected an integer, got %v", name, p)
		}

		period = int(p)
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int", name)
	}

	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", name, period)
	}

	return period, nil
}

func floatParam(name string, v any) (float64, error) {
	switch p := v.(type) {
	case float64:
		return p, nil
	case int:
		return float64(p), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected float64", name)
	}
}
