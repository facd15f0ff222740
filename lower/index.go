package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// Names of runtime entities.
const (
	// printfName is the name of the external formatting routine.
	printfName = "printf"
	// fmtIntName is the name of the format descriptor of integer values.
	fmtIntName = "fmt.int"
	// fmtStrName is the name of the format descriptor of string values.
	fmtStrName = "fmt.str"
)

// indexRuntime declares the runtime call surface assumed present in the
// target environment: the variadic printf routine and its two fixed format
// descriptors.
func (gen *Generator) indexRuntime() {
	// declare i32 @printf(i8*, ...)
	format := ir.NewParam("format", i8ptr)
	printf := gen.m.NewFunc(printfName, types.I32, format)
	printf.Sig.Variadic = true
	gen.funcs[printfName] = printf
	gen.printf = printf
	// Format descriptors are pooled like any other string constant, so a
	// program literal of identical content shares their storage.
	gen.fmtInt = gen.newString(fmtIntName, "%d\n")
	gen.fmtStr = gen.newString(fmtStrName, "%s\n")
}
