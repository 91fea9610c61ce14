// Package syntax parses the attribute and type syntax the host platform hands over
// for every exported function, keeping byte-accurate spans for each sub-node.
package syntax

import "fmt"

// Span locates a syntax node inside a source file. Offset and End are byte offsets
// (half-open), Line and Column are 1-based and describe the first byte.
type Span struct {
	File   string `yaml:"file" json:"file,omitempty"`
	Line   int    `yaml:"line" json:"line"`
	Column int    `yaml:"column" json:"column"`
	Offset int    `yaml:"offset" json:"offset"`
	End    int    `yaml:"end" json:"end"`
}

// IsValid reports whether the span points at actual source text.
func (s Span) IsValid() bool {
	return s.End > s.Offset
}

func (s Span) String() string {
	if s.File == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Sub returns the span of the text s[start:end], relative to the start of s.
// Node text never spans lines, so the column moves together with the offset.
func (s Span) Sub(start, end int) Span {
	return Span{
		File:   s.File,
		Line:   s.Line,
		Column: s.Column + start,
		Offset: s.Offset + start,
		End:    s.Offset + end,
	}
}

// WithLength returns a copy of s covering n bytes from its start.
func (s Span) WithLength(n int) Span {
	s.End = s.Offset + n
	return s
}
