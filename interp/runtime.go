package interp

import (
	"bytes"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/pkg/errors"
)

// callExternal invokes the external function with the given arguments.
func (mc *machine) callExternal(f *ir.Func, args []Value) (Value, error) {
	switch f.Name() {
	case "printf":
		return mc.printf(args)
	default:
		return Value{}, errors.Errorf("call to undefined external function %q", f.Name())
	}
}

// printf formats according to the format descriptor of the first argument and
// writes to the configured output. It supports the %d, %s and %% verbs, and
// returns the number of bytes written.
func (mc *machine) printf(args []Value) (Value, error) {
	if len(args) == 0 {
		return Value{}, errors.New("printf: missing format descriptor")
	}
	format, err := cString(args[0].P)
	if err != nil {
		return Value{}, errors.WithStack(err)
	}
	args = args[1:]
	buf := &bytes.Buffer{}
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			buf.WriteByte(c)
			continue
		}
		i++
		if i >= len(format) {
			return Value{}, errors.Errorf("printf: trailing %% in format %q", format)
		}
		verb := format[i]
		if verb == '%' {
			buf.WriteByte('%')
			continue
		}
		if len(args) == 0 {
			return Value{}, errors.Errorf("printf: missing argument for %%%c in format %q", verb, format)
		}
		arg := args[0]
		args = args[1:]
		switch verb {
		case 'd', 'i':
			buf.WriteString(strconv.FormatInt(int64(int32(arg.I)), 10))
		case 's':
			s, err := cString(arg.P)
			if err != nil {
				return Value{}, errors.WithStack(err)
			}
			buf.WriteString(s)
		default:
			return Value{}, errors.Errorf("printf: support for verb %%%c not implemented", verb)
		}
	}
	n, err := mc.cfg.Stdout.Write(buf.Bytes())
	if err != nil {
		return Value{}, errors.WithStack(err)
	}
	return Value{I: int64(n)}, nil
}

// cString returns the NUL-terminated string starting at p.
func cString(p *Pointer) (string, error) {
	if p == nil {
		return "", errors.New("string access through null pointer")
	}
	if p.Obj.scalar {
		return "", errors.New("string access through pointer to scalar object")
	}
	data := p.Obj.data
	if p.Off < 0 || p.Off > int64(len(data)) {
		return "", errors.Errorf("string access out of bounds at offset %d", p.Off)
	}
	data = data[p.Off:]
	end := bytes.IndexByte(data, 0)
	if end == -1 {
		return "", errors.Errorf("unterminated string at offset %d", p.Off)
	}
	return string(data[:end]), nil
}
