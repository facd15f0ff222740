// Package mdtest extracts test cases of tiny programs from Markdown documents.
//
// Each test case starts with a heading of the form "Test: name", followed by a
// fenced code block with the "tiny" info string holding the program, and one
// of an "output" fence holding the expected output of the program, or an
// "error" fence holding a substring of the expected compilation error.
//
//	## Test: hello
//
//	```tiny
//	print "hello";
//	```
//
//	```output
//	hello
//	```
package mdtest

import (
	"bytes"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fence info strings.
const (
	FenceProgram = "tiny"
	FenceOutput  = "output"
	FenceError   = "error"
)

// headingPrefix is the prefix of test case headings.
const headingPrefix = "Test: "

// TestCase is a test case extracted from a Markdown document.
type TestCase struct {
	// Test case name, from the heading.
	Name string
	// Line number of the heading.
	Line int
	// Source code of the program.
	Program string
	// Expected output of the program; valid if WantErr is empty.
	Output string
	// Expected substring of the compilation error; empty if the program is
	// expected to compile.
	WantErr string
}

// ParseFile extracts the test cases of the given Markdown file.
func ParseFile(path string) ([]TestCase, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cases, err := Parse(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return cases, nil
}

// Parse extracts the test cases of the given Markdown document.
func Parse(source []byte) ([]TestCase, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))
	var (
		cases []TestCase
		cur   *caseBuilder
	)
	flush := func() error {
		if cur == nil {
			return nil
		}
		tc, err := cur.build()
		if err != nil {
			return err
		}
		cases = append(cases, tc)
		cur = nil
		return nil
	}
	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			if !strings.HasPrefix(heading, headingPrefix) {
				return ast.WalkSkipChildren, nil
			}
			if err := flush(); err != nil {
				return ast.WalkStop, err
			}
			cur = &caseBuilder{
				TestCase: TestCase{
					Name: strings.TrimSpace(strings.TrimPrefix(heading, headingPrefix)),
					Line: lineOf(n, source),
				},
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			lang := string(n.Language(source))
			line := lineOf(n, source)
			if cur == nil {
				if len(lang) > 0 {
					return ast.WalkStop, errors.Errorf("line %d: %q fence outside of test case", line, lang)
				}
				return ast.WalkContinue, nil
			}
			if err := cur.add(lang, fenceContent(n, source), line); err != nil {
				return ast.WalkStop, err
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

// caseBuilder tracks the fences seen for a test case under construction.
type caseBuilder struct {
	TestCase
	hasProgram bool
	hasOutput  bool
	hasError   bool
}

// add records the contents of a fence of the given language.
func (b *caseBuilder) add(lang, content string, line int) error {
	switch lang {
	case FenceProgram:
		if b.hasProgram {
			return errors.Errorf("line %d: multiple %q fences in test %q", line, lang, b.Name)
		}
		b.Program, b.hasProgram = content, true
	case FenceOutput:
		if b.hasOutput {
			return errors.Errorf("line %d: multiple %q fences in test %q", line, lang, b.Name)
		}
		b.Output, b.hasOutput = content, true
	case FenceError:
		if b.hasError {
			return errors.Errorf("line %d: multiple %q fences in test %q", line, lang, b.Name)
		}
		b.WantErr, b.hasError = strings.TrimSpace(content), true
	case "":
		// Plain code blocks are commentary.
	default:
		return errors.Errorf("line %d: unknown fence %q in test %q", line, lang, b.Name)
	}
	return nil
}

// build validates the test case.
func (b *caseBuilder) build() (TestCase, error) {
	switch {
	case !b.hasProgram:
		return TestCase{}, errors.Errorf("line %d: test %q has no %q fence", b.Line, b.Name, FenceProgram)
	case b.hasOutput == b.hasError:
		return TestCase{}, errors.Errorf("line %d: test %q must have exactly one of %q or %q fences", b.Line, b.Name, FenceOutput, FenceError)
	case b.hasError && len(b.WantErr) == 0:
		return TestCase{}, errors.Errorf("line %d: test %q has an empty %q fence", b.Line, b.Name, FenceError)
	}
	return b.TestCase, nil
}

// nodeText returns the plain text contents of the node.
func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// fenceContent returns the contents of the fenced code block.
func fenceContent(n *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineOf returns the line number of the node, starting at 1.
func lineOf(n ast.Node, source []byte) int {
	var start int
	switch {
	case n.Lines().Len() > 0:
		start = n.Lines().At(0).Start
	case n.Type() == ast.TypeBlock && n.HasChildren():
		if t, ok := n.FirstChild().(*ast.Text); ok {
			start = t.Segment.Start
		}
	}
	return 1 + bytes.Count(source[:start], []byte("\n"))
}
