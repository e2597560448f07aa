package decom

import "fmt"

// ListConversionFunc builds a point Conversion from a contiguous-range
// enumeration.
func ListConversionFunc(c ListConversion) func(any) (any, error) {
	return func(v any) (any, error) {
		raw, err := toInt(v)
		if err != nil {
			return nil, err
		}
		i := raw - c.LowIndex
		if i < 0 || i >= len(c.Values) {
			return nil, fmt.Errorf("decom: value %d out of range for enumeration %s", raw, c.Name)
		}
		return c.Values[i], nil
	}
}

// MapConversionFunc builds a point Conversion from a non-contiguous
// index-to-string enumeration.
func MapConversionFunc(c MapConversion) func(any) (any, error) {
	return func(v any) (any, error) {
		raw, err := toInt(v)
		if err != nil {
			return nil, err
		}
		for i, idx := range c.Indices {
			if idx == raw {
				return c.Values[i], nil
			}
		}
		return nil, fmt.Errorf("decom: value %d not found in enumeration %s", raw, c.Name)
	}
}

// RangeConversionFunc builds a point Conversion from contiguous
// [Low,High] ranges mapping to strings.
func RangeConversionFunc(c RangeConversion) func(any) (any, error) {
	return func(v any) (any, error) {
		raw, err := toInt(v)
		if err != nil {
			return nil, err
		}
		for _, r := range c.Ranges {
			if raw >= r.Low && raw <= r.High {
				return r.Value, nil
			}
		}
		return nil, fmt.Errorf("decom: value %d not covered by any range in %s", raw, c.Name)
	}
}

// PolynomialConversionFunc builds a point Conversion evaluating
// sum(Coefficients[i] * raw^i).
func PolynomialConversionFunc(c PolynomialConversion) func(any) (any, error) {
	return func(v any) (any, error) {
		x, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		var result, pow float64 = 0, 1
		for _, coef := range c.Coefficients {
			result += coef * pow
			pow *= x
		}
		return result, nil
	}
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case int8:
		return int(t), nil
	case int16:
		return int(t), nil
	case int32:
		return int(t), nil
	case uint8:
		return int(t), nil
	case uint16:
		return int(t), nil
	case uint32:
		return int(t), nil
	case uint64:
		return int(t), nil
	case int:
		return t, nil
	default:
		return 0, fmt.Errorf("decom: cannot convert %T to int", v)
	}
}

func toFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case float32:
		return float64(t), nil
	case float64:
		return t, nil
	default:
		n, err := toInt(v)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}
}
