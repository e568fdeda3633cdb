package field

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Coercion errors. Assign wraps one of them.
var (
	ErrOutOfRange  = errors.New("value out of range")
	ErrNotIntegral = errors.New("value is not integral")
	ErrConversion  = errors.New("unsupported conversion")
)

// TypeOf returns the field type a pointer destination holds,
// or TypeInvalid when the pointer is not a supported field pointer.
func TypeOf(ptr any) Type {
	switch ptr.(type) {
	case *string:
		return TypeString
	case *int:
		return TypeInt
	case *int32:
		return TypeInt32
	case *int64:
		return TypeInt64
	case *float32:
		return TypeFloat32
	case *float64:
		return TypeFloat64
	case *bool:
		return TypeBool
	default:
		return TypeInvalid
	}
}

// ValueType returns the field type of a field value.
func ValueType(v any) Type {
	switch v.(type) {
	case string:
		return TypeString
	case int:
		return TypeInt
	case int32:
		return TypeInt32
	case int64:
		return TypeInt64
	case float32:
		return TypeFloat32
	case float64:
		return TypeFloat64
	case bool:
		return TypeBool
	default:
		return TypeInvalid
	}
}

// Assign coerces a raw driver value into the field pointer dst.
// Numeric widening is allowed; narrowing fails with ErrOutOfRange, a
// fractional value assigned to an integer fails with ErrNotIntegral.
// dst is not modified when Assign fails. A nil src is not accepted;
// callers handle NULL before coercing.
func Assign(dst, src any) error {
	if src == nil {
		return fmt.Errorf("%w: nil into %T", ErrConversion, dst)
	}
	switch d := dst.(type) {
	case *string:
		s, err := toString(src)
		if err != nil {
			return err
		}
		*d = s
	case *int:
		n, err := toInt64(src)
		if err != nil {
			return err
		}
		if n < math.MinInt || n > math.MaxInt {
			return fmt.Errorf("%w: %d overflows int", ErrOutOfRange, n)
		}
		*d = int(n)
	case *int32:
		n, err := toInt64(src)
		if err != nil {
			return err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return fmt.Errorf("%w: %d overflows int32", ErrOutOfRange, n)
		}
		*d = int32(n)
	case *int64:
		n, err := toInt64(src)
		if err != nil {
			return err
		}
		*d = n
	case *float32:
		f, err := toFloat64(src)
		if err != nil {
			return err
		}
		if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
			return fmt.Errorf("%w: %g overflows float32", ErrOutOfRange, f)
		}
		*d = float32(f)
	case *float64:
		f, err := toFloat64(src)
		if err != nil {
			return err
		}
		*d = f
	case *bool:
		b, err := toBool(src)
		if err != nil {
			return err
		}
		*d = b
	default:
		return fmt.Errorf("%w: destination %T", ErrConversion, dst)
	}
	return nil
}

func toString(src any) (string, error) {
	if v, ok := src.(uint64); ok {
		return strconv.FormatUint(v, 10), nil
	}
	if n, ok, err := integer(src); ok {
		return strconv.FormatInt(n, 10), err
	}
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	default:
		return "", fmt.Errorf("%w: %T to string", ErrConversion, src)
	}
}

// integer reports whether src is a Go integer and returns it as int64.
func integer(src any) (n int64, ok bool, err error) {
	switch v := src.(type) {
	case int64:
		return v, true, nil
	case int:
		return int64(v), true, nil
	case int32:
		return int64(v), true, nil
	case int16:
		return int64(v), true, nil
	case int8:
		return int64(v), true, nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, true, fmt.Errorf("%w: %d overflows int64", ErrOutOfRange, v)
		}
		return int64(v), true, nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, true, fmt.Errorf("%w: %d overflows int64", ErrOutOfRange, v)
		}
		return int64(v), true, nil
	case uint32:
		return int64(v), true, nil
	case uint16:
		return int64(v), true, nil
	case uint8:
		return int64(v), true, nil
	}
	return 0, false, nil
}

func toInt64(src any) (int64, error) {
	if n, ok, err := integer(src); ok {
		return n, err
	}
	switch v := src.(type) {
	case float64:
		return floatToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return parseInt64(string(v))
	case string:
		return parseInt64(v)
	default:
		return 0, fmt.Errorf("%w: %T to integer", ErrConversion, src)
	}
}

func parseInt64(s string) (int64, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q overflows int64", ErrOutOfRange, s)
	}
	// Decimal text such as "5.0" from DECIMAL columns.
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return 0, fmt.Errorf("%w: %q to integer", ErrConversion, s)
	}
	return floatToInt64(f)
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %g", ErrNotIntegral, f)
	}
	// float64(math.MaxInt64) rounds up to 2^63.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %g overflows int64", ErrOutOfRange, f)
	}
	return int64(f), nil
}

func toFloat64(src any) (float64, error) {
	if v, ok := src.(uint64); ok {
		return float64(v), nil
	}
	if n, ok, err := integer(src); ok {
		return float64(n), err
	}
	switch v := src.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case []byte:
		return parseFloat64(string(v))
	case string:
		return parseFloat64(v)
	default:
		return 0, fmt.Errorf("%w: %T to floating-point", ErrConversion, src)
	}
}

func parseFloat64(s string) (float64, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q overflows float64", ErrOutOfRange, s)
		}
		return 0, fmt.Errorf("%w: %q to floating-point", ErrConversion, s)
	}
	return f, nil
}

func toBool(src any) (bool, error) {
	if n, ok, err := integer(src); ok {
		if err != nil {
			return false, err
		}
		return intToBool(n)
	}
	switch v := src.(type) {
	case bool:
		return v, nil
	case []byte:
		return parseBool(string(v))
	case string:
		return parseBool(v)
	default:
		return false, fmt.Errorf("%w: %T to boolean", ErrConversion, src)
	}
}

func intToBool(n int64) (bool, error) {
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %d is not a boolean", ErrOutOfRange, n)
	}
}

func parseBool(s string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("%w: %q to boolean", ErrConversion, s)
	}
	return b, nil
}
