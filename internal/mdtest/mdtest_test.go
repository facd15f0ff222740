package mdtest

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestParse(t *testing.T) {
	const doc = "# Scenarios\n" +
		"\n" +
		"Some commentary.\n" +
		"\n" +
		"## Test: print\n" +
		"\n" +
		"```tiny\n" +
		"print 1;\n" +
		"print \"a\";\n" +
		"```\n" +
		"\n" +
		"```output\n" +
		"1\n" +
		"a\n" +
		"```\n" +
		"\n" +
		"## Test: mismatch\n" +
		"\n" +
		"```\n" +
		"not part of the test\n" +
		"```\n" +
		"\n" +
		"```tiny\n" +
		"x: Int = true;\n" +
		"```\n" +
		"\n" +
		"```error\n" +
		"type mismatch\n" +
		"```\n"
	cases, err := Parse([]byte(doc))
	be.Err(t, err, nil)
	be.Equal(t, 2, len(cases))

	be.Equal(t, "print", cases[0].Name)
	be.Equal(t, 5, cases[0].Line)
	be.Equal(t, "print 1;\nprint \"a\";\n", cases[0].Program)
	be.Equal(t, "1\na\n", cases[0].Output)
	be.Equal(t, "", cases[0].WantErr)

	be.Equal(t, "mismatch", cases[1].Name)
	be.Equal(t, 17, cases[1].Line)
	be.Equal(t, "x: Int = true;\n", cases[1].Program)
	be.Equal(t, "type mismatch", cases[1].WantErr)
}

func TestParseEmptyOutput(t *testing.T) {
	const doc = "## Test: silent\n\n```tiny\nskip;\n```\n\n```output\n```\n"
	cases, err := Parse([]byte(doc))
	be.Err(t, err, nil)
	be.Equal(t, 1, len(cases))
	be.Equal(t, "", cases[0].Output)
}

func TestParseErrors(t *testing.T) {
	golden := []struct {
		doc  string
		want string
	}{
		{
			doc:  "```tiny\nskip;\n```\n",
			want: "outside of test case",
		},
		{
			doc:  "## Test: a\n\n```output\n1\n```\n",
			want: "has no \"tiny\" fence",
		},
		{
			doc:  "## Test: a\n\n```tiny\nskip;\n```\n",
			want: "exactly one of",
		},
		{
			doc:  "## Test: a\n\n```tiny\nskip;\n```\n\n```output\n```\n\n```error\nx\n```\n",
			want: "exactly one of",
		},
		{
			doc:  "## Test: a\n\n```tiny\nskip;\n```\n\n```tiny\nskip;\n```\n",
			want: "multiple \"tiny\" fences",
		},
		{
			doc:  "## Test: a\n\n```go\nskip;\n```\n",
			want: "unknown fence \"go\"",
		},
	}
	for _, g := range golden {
		_, err := Parse([]byte(g.doc))
		be.True(t, err != nil)
		be.True(t, strings.Contains(err.Error(), g.want))
	}
}
