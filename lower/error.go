package lower

import (
	"github.com/mewspring/tiny/ast"
)

// errorf returns a compilation error of the given kind. The message is
// formatted according to a format specifier.
func (gen *Generator) errorf(kind ast.Kind, format string, a ...interface{}) error {
	err := ast.Errorf(kind, format, a...)
	dbg.Println(err)
	return err
}
