package tagops

import (
	"fmt"
	"math"

	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/config"
)

// param is one stored extra argument of an override.
type param struct {
	format byte
	value  cell.Cell
	text   string
}

// push returns the cell to push for p. Strings are pooled for the duration
// of the call; temp reports that the caller must release the handle.
func (p param) push(rt *Runtime, kind OpKind) (c cell.Cell, temp bool) {
	switch p.format {
	case config.ArgOp:
		return cell.Cell(kind), false
	case config.ArgString:
		return rt.NewString(p.text), true
	default:
		return p.value, false
	}
}

func parseParams(format string, args []any) ([]param, error) {
	params := make([]param, 0, len(format))
	next := 0
	for i := 0; i < len(format); i++ {
		f := format[i]
		if f == config.ArgOp {
			params = append(params, param{format: f})
			continue
		}
		if next >= len(args) {
			return nil, fmt.Errorf("%w: %q at %d has no value", ErrBadFormat, f, i)
		}
		p, err := makeParam(f, args[next])
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %v", ErrBadFormat, next, err)
		}
		params = append(params, p)
		next++
	}
	if next != len(args) {
		return nil, fmt.Errorf("%w: %d unused arguments", ErrBadFormat, len(args)-next)
	}
	return params, nil
}

func makeParam(f byte, arg any) (param, error) {
	switch f {
	case config.ArgString:
		s, ok := arg.(string)
		if !ok {
			return param{}, fmt.Errorf("want string, got %T", arg)
		}
		return param{format: f, text: s}, nil
	case config.ArgFloat:
		switch v := arg.(type) {
		case float32:
			return param{format: f, value: cell.FromFloat(v)}, nil
		case float64:
			return param{format: f, value: cell.FromFloat(float32(v))}, nil
		}
		if n, ok := intValue(arg); ok {
			return param{format: f, value: cell.FromFloat(float32(n))}, nil
		}
		return param{format: f}, fmt.Errorf("want float, got %T", arg)
	case config.ArgInt, config.ArgDec, config.ArgChar, config.ArgBool, config.ArgHex:
		if b, ok := arg.(bool); ok {
			return param{format: f, value: cell.Bool(b)}, nil
		}
		if n, ok := intValue(arg); ok {
			if n < math.MinInt32 || n > math.MaxInt32 {
				return param{}, fmt.Errorf("%d does not fit a cell", n)
			}
			return param{format: f, value: cell.Cell(n)}, nil
		}
		return param{}, fmt.Errorf("want integer, got %T", arg)
	}
	return param{}, fmt.Errorf("unknown format %q", f)
}

// intValue widens any Go integer. Unsigned values above MaxInt64 report
// MaxInt64, which is out of cell range anyway.
func intValue(arg any) (int64, bool) {
	switch v := arg.(type) {
	case cell.Cell:
		return int64(v), true
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return clampUint(uint64(v)), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return clampUint(v), true
	}
	return 0, false
}

func clampUint(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
