// Package csource tokenizes C source text and recovers the structural facts
// the rules work on: header guards, includes, macro definitions, typedefs,
// brace initializers and function declarations. Recovery is local and
// heuristic; there is no preprocessor and no full grammar, so malformed or
// partial files still produce tokens and facts.
package csource

import (
	"path/filepath"
	"strings"
)

// SourceFile is one scanned input file
type SourceFile struct {
	Path    string
	Content []byte
	Tokens  []Token
}

// NewSourceFile scans content and returns the resulting SourceFile
func NewSourceFile(path string, content []byte) *SourceFile {
	return &SourceFile{
		Path:    path,
		Content: content,
		Tokens:  Tokenize(path, content),
	}
}

// IsHeader reports whether the file is a C header
func (f *SourceFile) IsHeader() bool {
	return IsHeaderPath(f.Path)
}

// IsHeaderPath reports whether path names a C header
func IsHeaderPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".h")
}

// IsSourcePath reports whether path names a C source or header file. The
// extension is matched without regard to case, as in IsHeaderPath.
func IsSourcePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c", ".h":
		return true
	default:
		return false
	}
}

// Token returns the token at index i, or the trailing EOF token when i is
// out of range.
func (f *SourceFile) Token(i int) Token {
	if i < 0 || i >= len(f.Tokens) {
		return f.Tokens[len(f.Tokens)-1]
	}
	return f.Tokens[i]
}

// Significant returns the indexes of significant tokens within span
func (f *SourceFile) Significant(span Span) []int {
	idxs := make([]int, 0, span.Len())
	for i := span.Start; i < span.End && i < len(f.Tokens); i++ {
		if f.Tokens[i].IsSignificant() {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// Text returns the raw source text covered by span
func (f *SourceFile) Text(span Span) string {
	if span.Len() == 0 {
		return ""
	}
	start := f.Tokens[span.Start].Pos.Offset
	end := f.Tokens[span.End-1].End.Offset
	return string(f.Content[start:end])
}

// EOF returns the position just past the end of the file
func (f *SourceFile) EOF() Position {
	return f.Tokens[len(f.Tokens)-1].Pos
}

// Span is a half-open range of token indexes [Start, End)
type Span struct {
	Start int
	End   int
}

// Len returns the number of tokens in the span
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}
