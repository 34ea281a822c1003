package csource

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

const eof = -1

// TokenKind represents the kind of a lexical token
type TokenKind string

const (
	TokenIdentifier  TokenKind = "IDENTIFIER"
	TokenKeyword     TokenKind = "KEYWORD"
	TokenPunctuation TokenKind = "PUNCTUATION"
	TokenNumber      TokenKind = "NUMBER"
	TokenString      TokenKind = "STRING"
	TokenChar        TokenKind = "CHAR"
	TokenHeaderName  TokenKind = "HEADER_NAME"
	TokenComment     TokenKind = "COMMENT"
	TokenDirective   TokenKind = "DIRECTIVE"
	TokenWhitespace  TokenKind = "WHITESPACE"
	TokenNewline     TokenKind = "NEWLINE"
	TokenEOF         TokenKind = "EOF"
	TokenError       TokenKind = "ERROR"
)

// Position represents a location in a source file.
// Line and Column are 1-based; Column counts runes.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Token represents a lexical token
type Token struct {
	Kind    TokenKind
	Text    string
	Pos     Position
	End     Position // position just past the last character
	Message string   // set on error tokens

	unterminated bool
}

// IsSignificant reports whether the token carries code, i.e. it is not
// whitespace, a newline or a comment.
func (t Token) IsSignificant() bool {
	switch t.Kind {
	case TokenWhitespace, TokenNewline, TokenComment, TokenEOF:
		return false
	default:
		return true
	}
}

// Is reports whether the token has the given kind and text
func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// IsPunct reports whether the token is the given punctuator
func (t Token) IsPunct(text string) bool {
	return t.Is(TokenPunctuation, text)
}

// DirectiveName returns the name of a directive token ("define" for "# define").
// It returns "" for other kinds and for the null directive.
func (t Token) DirectiveName() string {
	if t.Kind != TokenDirective {
		return ""
	}
	name := strings.TrimPrefix(t.Text, "#")
	name = strings.ReplaceAll(name, "\\\r\n", "")
	name = strings.ReplaceAll(name, "\\\n", "")
	return strings.TrimSpace(name)
}

// ErrorPosition returns where an error token should be reported. Unterminated
// constructs are reported where the input ran out.
func (t Token) ErrorPosition() Position {
	if t.unterminated {
		return t.End
	}
	return t.Pos
}

// Scanner is a lexical scanner for C source text. It never fails: malformed
// input is returned as TokenError tokens and scanning continues after them.
type Scanner struct {
	src      []byte
	filename string

	ch     rune // current character, eof at end of input
	width  int  // byte width of ch
	offset int  // byte offset of ch
	line   int  // line of ch
	column int  // column of ch

	lineStart    bool // no significant token seen yet on the current line
	expectHeader bool // an include directive awaits its <header-name>
}

// NewScanner creates a new Scanner over content
func NewScanner(filename string, content []byte) *Scanner {
	s := &Scanner{
		src:       content,
		filename:  filename,
		line:      1,
		column:    1,
		lineStart: true,
	}
	s.read()
	return s
}

// Tokens returns the lazy token sequence of content. The sequence ends with
// a single TokenEOF token and can be ranged over any number of times.
func Tokens(filename string, content []byte) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		s := NewScanner(filename, content)
		for {
			tok := s.Next()
			if !yield(tok) || tok.Kind == TokenEOF {
				return
			}
		}
	}
}

// Tokenize scans content to completion, including the trailing EOF token
func Tokenize(filename string, content []byte) []Token {
	tokens := make([]Token, 0, len(content)/3+1)
	for tok := range Tokens(filename, content) {
		tokens = append(tokens, tok)
	}
	return tokens
}

// read decodes the character at s.offset into s.ch
func (s *Scanner) read() {
	if s.offset >= len(s.src) {
		s.ch, s.width = eof, 0
		return
	}
	r, w := rune(s.src[s.offset]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.offset:])
	}
	s.ch, s.width = r, w
}

// next advances to the next character and updates the line/column position
func (s *Scanner) next() {
	if s.ch == eof {
		return
	}
	if s.ch == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	s.offset += s.width
	s.read()
}

// peek returns the byte k bytes after the current offset, or 0
func (s *Scanner) peek(k int) byte {
	if s.offset+k < len(s.src) {
		return s.src[s.offset+k]
	}
	return 0
}

func (s *Scanner) pos() Position {
	return Position{Filename: s.filename, Line: s.line, Column: s.column, Offset: s.offset}
}

// atContinuation reports whether the scanner sits on a backslash-newline
func (s *Scanner) atContinuation() bool {
	if s.ch != '\\' {
		return false
	}
	return s.peek(1) == '\n' || (s.peek(1) == '\r' && s.peek(2) == '\n')
}

func (s *Scanner) skipContinuation() {
	s.next() // '\'
	if s.ch == '\r' {
		s.next()
	}
	s.next() // '\n'
}

func (s *Scanner) token(kind TokenKind, start Position) Token {
	return Token{
		Kind: kind,
		Text: string(s.src[start.Offset:s.offset]),
		Pos:  start,
		End:  s.pos(),
	}
}

func (s *Scanner) errorToken(start Position, unterminated bool, format string, args ...interface{}) Token {
	tok := s.token(TokenError, start)
	tok.Message = fmt.Sprintf(format, args...)
	tok.unterminated = unterminated
	return tok
}

// Next returns the next token. After the input is exhausted it keeps
// returning TokenEOF.
func (s *Scanner) Next() Token {
	start := s.pos()

	switch {
	case s.ch == eof:
		return Token{Kind: TokenEOF, Pos: start, End: start}
	case s.ch == '\n':
		s.next()
		s.lineStart = true
		s.expectHeader = false
		return s.token(TokenNewline, start)
	case isSpace(s.ch) || s.atContinuation():
		for isSpace(s.ch) || s.atContinuation() {
			if s.ch == '\\' {
				s.skipContinuation()
			} else {
				s.next()
			}
		}
		return s.token(TokenWhitespace, start)
	case s.ch == '/' && (s.peek(1) == '/' || s.peek(1) == '*'):
		return s.scanComment(start)
	}

	// Everything below is a significant token
	lineStart := s.lineStart
	s.lineStart = false
	expectHeader := s.expectHeader
	s.expectHeader = false

	switch {
	case s.ch == '#' && lineStart:
		return s.scanDirective(start)
	case s.ch == '<' && expectHeader:
		return s.scanHeaderName(start)
	case isLetter(s.ch):
		return s.scanIdentifier(start)
	case isDigit(s.ch) || (s.ch == '.' && isDigit(rune(s.peek(1)))):
		return s.scanNumber(start)
	case s.ch == '"':
		return s.scanQuoted(start, '"', TokenString)
	case s.ch == '\'':
		return s.scanQuoted(start, '\'', TokenChar)
	case s.ch < utf8.RuneSelf && s.ch > ' ' && s.ch != 0x7f:
		return s.scanPunctuation(start)
	default:
		ch := s.ch
		s.next()
		return s.errorToken(start, false, "unexpected character %q", ch)
	}
}

// scanComment scans a line or block comment
func (s *Scanner) scanComment(start Position) Token {
	s.next() // '/'
	if s.ch == '/' {
		for s.ch != eof && s.ch != '\n' {
			if s.atContinuation() {
				s.skipContinuation()
				continue
			}
			s.next()
		}
		return s.token(TokenComment, start)
	}

	s.next() // '*'
	for {
		switch {
		case s.ch == eof:
			return s.errorToken(start, true, "unterminated block comment")
		case s.ch == '*' && s.peek(1) == '/':
			s.next()
			s.next()
			return s.token(TokenComment, start)
		default:
			s.next()
		}
	}
}

// scanDirective scans '#' and the directive name that follows it
func (s *Scanner) scanDirective(start Position) Token {
	s.next() // '#'
	for s.ch == ' ' || s.ch == '\t' || s.atContinuation() {
		if s.ch == '\\' {
			s.skipContinuation()
		} else {
			s.next()
		}
	}
	for isLetter(s.ch) || isDigit(s.ch) {
		s.next()
	}

	tok := s.token(TokenDirective, start)
	switch tok.DirectiveName() {
	case "include", "include_next", "import":
		s.expectHeader = true
	}
	return tok
}

// scanHeaderName scans a <header> argument of an include directive
func (s *Scanner) scanHeaderName(start Position) Token {
	s.next() // '<'
	for s.ch != '>' {
		if s.ch == eof || s.ch == '\n' {
			return s.errorToken(start, true, "unterminated header name")
		}
		s.next()
	}
	s.next() // '>'
	return s.token(TokenHeaderName, start)
}

// scanIdentifier scans an identifier, a keyword, or a prefixed literal
func (s *Scanner) scanIdentifier(start Position) Token {
	for isLetter(s.ch) || isDigit(s.ch) {
		s.next()
	}

	text := string(s.src[start.Offset:s.offset])
	if encodingPrefixes[text] {
		switch s.ch {
		case '"':
			return s.scanQuoted(start, '"', TokenString)
		case '\'':
			return s.scanQuoted(start, '\'', TokenChar)
		}
	}

	if keywords[text] {
		return s.token(TokenKeyword, start)
	}
	return s.token(TokenIdentifier, start)
}

// scanNumber scans a preprocessing number
func (s *Scanner) scanNumber(start Position) Token {
	var prev rune
	for {
		switch {
		case (s.ch == '+' || s.ch == '-') && (prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P'):
		case isLetter(s.ch) || isDigit(s.ch) || s.ch == '.':
		case s.ch == '\'' && isAlnum(s.peek(1)) && prev != 0:
			// C23 digit separator
		default:
			return s.token(TokenNumber, start)
		}
		prev = s.ch
		s.next()
	}
}

// scanQuoted scans a string or character literal. An unterminated literal
// ends at the end of its logical line.
func (s *Scanner) scanQuoted(start Position, quote rune, kind TokenKind) Token {
	s.next() // opening quote
	for {
		switch {
		case s.ch == quote:
			s.next()
			return s.token(kind, start)
		case s.ch == eof || s.ch == '\n':
			if kind == TokenChar {
				return s.errorToken(start, true, "unterminated character literal")
			}
			return s.errorToken(start, true, "unterminated string literal")
		case s.atContinuation():
			s.skipContinuation()
		case s.ch == '\\':
			s.next()
			if s.ch != eof && s.ch != '\n' {
				s.next()
			}
		default:
			s.next()
		}
	}
}

// scanPunctuation scans the longest punctuator at the current position
func (s *Scanner) scanPunctuation(start Position) Token {
	rest := s.src[s.offset:]
	n := 1
	for _, p := range punctuators {
		if len(p) <= len(rest) && string(rest[:len(p)]) == p {
			n = len(p)
			break
		}
	}
	for i := 0; i < n; i++ {
		s.next()
	}
	return s.token(TokenPunctuation, start)
}

// punctuators holds multi-character punctuators, longest first
var punctuators = []string{
	"<<=", ">>=", "...",
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"*=", "/=", "%=", "+=", "-=", "&=", "^=", "|=", "##", "::",
}

var encodingPrefixes = map[string]bool{
	"L": true, "u": true, "U": true, "u8": true,
}

var keywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "typedef": true, "union": true,
	"unsigned": true, "void": true, "volatile": true, "while": true,
	"_Alignas": true, "_Alignof": true, "_Atomic": true, "_Bool": true,
	"_Complex": true, "_Generic": true, "_Imaginary": true, "_Noreturn": true,
	"_Static_assert": true, "_Thread_local": true,
	"alignas": true, "alignof": true, "bool": true, "constexpr": true,
	"false": true, "nullptr": true, "static_assert": true, "thread_local": true,
	"true": true, "typeof": true, "typeof_unqual": true,
}

// IsKeyword reports whether word is a C keyword
func IsKeyword(word string) bool {
	return keywords[word]
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\v' || ch == '\f'
}

func isLetter(ch rune) bool {
	return ch == '_' || ch == '$' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') ||
		(ch >= utf8.RuneSelf && ch != utf8.RuneError && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isAlnum(b byte) bool {
	return isDigit(rune(b)) || isLetter(rune(b))
}
