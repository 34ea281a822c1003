package csource

import (
	"bytes"
	"strings"
)

// Directive is one preprocessor directive line
type Directive struct {
	Name string
	Tok  int  // index of the directive token
	Args Span // tokens after the directive name up to the end of the line
	Line int
}

// Conditional pairs an #if/#ifdef/#ifndef with its #endif
type Conditional struct {
	Open  int // index into Facts.Directives
	Close int // index into Facts.Directives, -1 when unterminated
}

// HeaderGuard is the #ifndef/#define/#endif triple protecting a header
type HeaderGuard struct {
	Macro       string // name tested by #ifndef
	DefineName  string // name defined by the following #define
	IfndefTok   int
	NameTok     int
	DefineTok   int
	EndifTok    int // -1 when the guard is never closed
	StartLine   int
	EndLine     int
	TrailingTok int // first significant token after the closing #endif, -1 when none
	DefineCount int // number of #define directives for Macro
}

// IncludeDirective is one #include line
type IncludeDirective struct {
	HeaderName      string
	IsSystemHeader  bool
	IsComputed      bool // #include MACRO
	Tok             int
	Line            int
	BlankLineBefore bool // a blank line separates it from the previous include
	InConditional   bool // nested in a conditional other than the header guard
}

// MacroDefinition is one #define line
type MacroDefinition struct {
	Name           string
	NameTok        int
	IsFunctionLike bool
	Params         []string
	IsVariadic     bool
	Body           Span
	Line           int
}

// FunctionDecl is a file-scope function definition or prototype
type FunctionDecl struct {
	Name          string
	NameTok       int
	Params        Span // tokens between the parentheses
	IsDefinition  bool
	Body          Span // braces included, empty for prototypes
	Line          int
	BodyStartLine int
	BodyEndLine   int
}

// InitElement is one top-level element of a brace initializer
type InitElement struct {
	Span       Span
	Designated bool
}

// BraceInitializer is a brace-enclosed initializer list
type BraceInitializer struct {
	TypeName          string
	IsAggregate       bool // struct/union type, directly or through a typedef in this file
	IsArray           bool
	IsCompoundLiteral bool
	Open              int
	Close             int
	Elements          []InitElement
	Line              int
}

// TypedefName is one declarator of a typedef
type TypedefName struct {
	Name              string
	Tok               int
	IsPointer         bool
	IsFunctionPointer bool
}

// TypedefDecl is one typedef declaration
type TypedefDecl struct {
	Kind    string // "struct", "union", "enum", or "" for other types
	Tag     string
	TagTok  int
	HasBody bool
	Names   []TypedefName
	Tok     int
	Line    int
}

// Ambiguity marks a region the parser could not analyze confidently
type Ambiguity struct {
	Tok    int
	Pos    Position
	Reason string
}

// Facts holds the structure recovered from one file's tokens. Every fact
// refers to tokens by index into SourceFile.Tokens.
type Facts struct {
	Directives   []Directive
	Conditionals []Conditional
	Guard        *HeaderGuard
	PragmaOnce   int // token index of #pragma once, -1 when absent
	Includes     []IncludeDirective
	Macros       []MacroDefinition
	Functions    []FunctionDecl
	Typedefs     []TypedefDecl
	Initializers []BraceInitializer
	Ambiguities  []Ambiguity
	Code         []int // significant tokens outside directives
}

type parser struct {
	file  *SourceFile
	facts *Facts

	match      []int // code position of the matching bracket, -1 when none
	depth      []int // bracket nesting depth before each code position
	guardCond  int
	blankLines map[int]bool
	aggregates map[string]bool
}

// ExtractFacts recovers structural facts from a scanned file using bracket
// depth tracking and directive recognition. It never fails: regions that
// cannot be analyzed are recorded as ambiguities and skipped.
func ExtractFacts(file *SourceFile) *Facts {
	p := &parser{
		file:       file,
		facts:      &Facts{PragmaOnce: -1},
		guardCond:  -1,
		aggregates: make(map[string]bool),
	}

	p.collectDirectives()
	p.collectCode()
	p.matchBrackets()
	p.collectConditionals()
	p.collectGuard()
	p.collectIncludes()
	p.collectMacros()
	p.collectTypedefs()
	p.collectFunctions()
	p.collectInitializers()

	return p.facts
}

func (p *parser) ambiguity(tokIdx int, reason string) {
	p.facts.Ambiguities = append(p.facts.Ambiguities, Ambiguity{
		Tok:    tokIdx,
		Pos:    p.file.Token(tokIdx).Pos,
		Reason: reason,
	})
}

// tok returns the token at code position cp
func (p *parser) tok(cp int) Token {
	if cp < 0 || cp >= len(p.facts.Code) {
		return p.file.Token(len(p.file.Tokens) - 1)
	}
	return p.file.Tokens[p.facts.Code[cp]]
}

func (p *parser) collectDirectives() {
	toks := p.file.Tokens
	for i := 0; i < len(toks); i++ {
		if toks[i].Kind != TokenDirective {
			continue
		}
		end := i + 1
		for end < len(toks) && toks[end].Kind != TokenNewline && toks[end].Kind != TokenEOF {
			end++
		}
		p.facts.Directives = append(p.facts.Directives, Directive{
			Name: toks[i].DirectiveName(),
			Tok:  i,
			Args: Span{Start: i + 1, End: end},
			Line: toks[i].Pos.Line,
		})
		i = end
	}
}

func (p *parser) collectCode() {
	toks := p.file.Tokens
	d := 0
	for i := 0; i < len(toks); i++ {
		if d < len(p.facts.Directives) && i == p.facts.Directives[d].Tok {
			i = p.facts.Directives[d].Args.End - 1
			d++
			continue
		}
		if toks[i].IsSignificant() {
			p.facts.Code = append(p.facts.Code, i)
		}
	}
}

var closers = map[string]string{")": "(", "]": "[", "}": "{"}

func (p *parser) matchBrackets() {
	n := len(p.facts.Code)
	p.match = make([]int, n)
	p.depth = make([]int, n)
	for i := range p.match {
		p.match[i] = -1
	}

	var stack []int
	for cp := 0; cp < n; cp++ {
		p.depth[cp] = len(stack)
		t := p.tok(cp)
		if t.Kind != TokenPunctuation {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			stack = append(stack, cp)
		case ")", "]", "}":
			open := closers[t.Text]
			j := len(stack) - 1
			for j >= 0 && p.tok(stack[j]).Text != open {
				j--
			}
			if j < 0 {
				p.ambiguity(p.facts.Code[cp], "unmatched '"+t.Text+"'")
				continue
			}
			for k := len(stack) - 1; k > j; k-- {
				p.ambiguity(p.facts.Code[stack[k]], "unclosed '"+p.tok(stack[k]).Text+"'")
			}
			p.match[stack[j]] = cp
			p.match[cp] = stack[j]
			stack = stack[:j]
			p.depth[cp] = len(stack)
		}
	}
	for _, open := range stack {
		p.ambiguity(p.facts.Code[open], "unclosed '"+p.tok(open).Text+"'")
	}
}

func (p *parser) collectConditionals() {
	var stack []int
	for di, d := range p.facts.Directives {
		switch d.Name {
		case "if", "ifdef", "ifndef":
			stack = append(stack, len(p.facts.Conditionals))
			p.facts.Conditionals = append(p.facts.Conditionals, Conditional{Open: di, Close: -1})
		case "endif":
			if len(stack) == 0 {
				p.ambiguity(d.Tok, "#endif without matching #if")
				continue
			}
			p.facts.Conditionals[stack[len(stack)-1]].Close = di
			stack = stack[:len(stack)-1]
		}
	}
	for _, ci := range stack {
		p.ambiguity(p.facts.Directives[p.facts.Conditionals[ci].Open].Tok, "unterminated conditional directive")
	}
}

// args returns the significant argument tokens of a directive
func (p *parser) args(d Directive) []int {
	return p.file.Significant(d.Args)
}

// firstSignificant returns the first significant token index at or after i, or -1
func (p *parser) firstSignificant(i int) int {
	for ; i < len(p.file.Tokens); i++ {
		t := p.file.Tokens[i]
		if t.Kind == TokenEOF {
			return -1
		}
		if t.IsSignificant() {
			return i
		}
	}
	return -1
}

func (p *parser) directiveAt(tokIdx int) int {
	for di, d := range p.facts.Directives {
		if d.Tok == tokIdx {
			return di
		}
	}
	return -1
}

// guardMacro returns the macro tested by "#ifndef X" or "#if !defined(X)"
func (p *parser) guardMacro(d Directive) (string, int) {
	args := p.args(d)
	toks := p.file.Tokens
	switch d.Name {
	case "ifndef":
		if len(args) == 1 && toks[args[0]].Kind == TokenIdentifier {
			return toks[args[0]].Text, args[0]
		}
	case "if":
		if len(args) == 3 && toks[args[0]].IsPunct("!") && toks[args[1]].Text == "defined" &&
			toks[args[2]].Kind == TokenIdentifier {
			return toks[args[2]].Text, args[2]
		}
		if len(args) == 5 && toks[args[0]].IsPunct("!") && toks[args[1]].Text == "defined" &&
			toks[args[2]].IsPunct("(") && toks[args[3]].Kind == TokenIdentifier && toks[args[4]].IsPunct(")") {
			return toks[args[3]].Text, args[3]
		}
	}
	return "", -1
}

func (p *parser) collectGuard() {
	for _, d := range p.facts.Directives {
		if d.Name != "pragma" {
			continue
		}
		if args := p.args(d); len(args) > 0 && p.file.Tokens[args[0]].Text == "once" {
			p.facts.PragmaOnce = d.Tok
			break
		}
	}

	first := p.firstSignificant(0)
	if first >= 0 && first == p.facts.PragmaOnce {
		first = p.firstSignificant(p.facts.Directives[p.directiveAt(first)].Args.End)
	}
	di := p.directiveAt(first)
	if di < 0 {
		return
	}
	open := p.facts.Directives[di]
	macro, nameTok := p.guardMacro(open)
	if macro == "" {
		return
	}

	next := p.firstSignificant(open.Args.End)
	ddi := p.directiveAt(next)
	if ddi < 0 || p.facts.Directives[ddi].Name != "define" {
		return
	}
	def := p.facts.Directives[ddi]

	guard := &HeaderGuard{
		Macro:       macro,
		IfndefTok:   open.Tok,
		NameTok:     nameTok,
		DefineTok:   def.Tok,
		EndifTok:    -1,
		StartLine:   open.Line,
		TrailingTok: -1,
	}
	if args := p.args(def); len(args) > 0 {
		guard.DefineName = p.file.Tokens[args[0]].Text
	}

	for ci, c := range p.facts.Conditionals {
		if c.Open != di || c.Close < 0 {
			continue
		}
		p.guardCond = ci
		endif := p.facts.Directives[c.Close]
		guard.EndifTok = endif.Tok
		guard.EndLine = endif.Line
		guard.TrailingTok = p.firstSignificant(endif.Args.End)
	}

	for _, d := range p.facts.Directives {
		if d.Name != "define" {
			continue
		}
		if args := p.args(d); len(args) > 0 && p.file.Tokens[args[0]].Text == macro {
			guard.DefineCount++
		}
	}

	p.facts.Guard = guard
}

func (p *parser) computeBlankLines() {
	p.blankLines = make(map[int]bool)
	for i, line := range bytes.Split(p.file.Content, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			p.blankLines[i+1] = true
		}
	}
}

func (p *parser) inNonGuardConditional(di int) bool {
	for ci, c := range p.facts.Conditionals {
		if ci == p.guardCond {
			continue
		}
		if c.Open < di && (c.Close < 0 || di < c.Close) {
			return true
		}
	}
	return false
}

func (p *parser) collectIncludes() {
	p.computeBlankLines()
	prevLine := 0
	toks := p.file.Tokens

	for di, d := range p.facts.Directives {
		switch d.Name {
		case "include", "include_next", "import":
		default:
			continue
		}
		args := p.args(d)
		if len(args) == 0 {
			p.ambiguity(d.Tok, "#"+d.Name+" without argument")
			continue
		}

		inc := IncludeDirective{
			Tok:           d.Tok,
			Line:          d.Line,
			InConditional: p.inNonGuardConditional(di),
		}
		first := toks[args[0]]
		switch first.Kind {
		case TokenHeaderName:
			inc.HeaderName = strings.TrimSuffix(strings.TrimPrefix(first.Text, "<"), ">")
			inc.IsSystemHeader = true
		case TokenString:
			inc.HeaderName = strings.Trim(first.Text, "\"")
		default:
			inc.HeaderName = p.file.Text(Span{Start: args[0], End: args[len(args)-1] + 1})
			inc.IsComputed = true
		}

		if prevLine > 0 {
			for line := prevLine + 1; line < d.Line; line++ {
				if p.blankLines[line] {
					inc.BlankLineBefore = true
					break
				}
			}
		}
		prevLine = d.Line
		p.facts.Includes = append(p.facts.Includes, inc)
	}
}

func (p *parser) collectMacros() {
	toks := p.file.Tokens
	for _, d := range p.facts.Directives {
		if d.Name != "define" {
			continue
		}
		args := p.args(d)
		if len(args) == 0 || (toks[args[0]].Kind != TokenIdentifier && toks[args[0]].Kind != TokenKeyword) {
			p.ambiguity(d.Tok, "malformed #define")
			continue
		}

		n := args[0]
		m := MacroDefinition{
			Name:    toks[n].Text,
			NameTok: n,
			Line:    d.Line,
			Body:    Span{Start: n + 1, End: d.Args.End},
		}

		// Function-like only when '(' immediately follows the name
		if n+1 < d.Args.End && toks[n+1].IsPunct("(") {
			m.IsFunctionLike = true
			closed := false
			i := n + 2
		params:
			for ; i < d.Args.End; i++ {
				t := toks[i]
				switch {
				case !t.IsSignificant(), t.IsPunct(","):
				case t.IsPunct(")"):
					closed = true
					break params
				case t.IsPunct("..."):
					m.IsVariadic = true
				case t.Kind == TokenIdentifier || t.Kind == TokenKeyword:
					m.Params = append(m.Params, t.Text)
				default:
					break params
				}
			}
			if !closed {
				p.ambiguity(n, "malformed parameter list of macro "+m.Name)
				continue
			}
			m.Body.Start = i + 1
		}

		p.facts.Macros = append(p.facts.Macros, m)
	}
}

// statementEnd returns the code position of the ';' ending the statement
// that starts at cp, skipping bracketed groups, or -1.
func (p *parser) statementEnd(cp int) int {
	for ; cp < len(p.facts.Code); cp++ {
		t := p.tok(cp)
		if t.Kind != TokenPunctuation {
			continue
		}
		switch t.Text {
		case ";":
			return cp
		case "(", "[", "{":
			if p.match[cp] < 0 {
				return -1
			}
			cp = p.match[cp]
		case ")", "]", "}":
			return -1
		}
	}
	return -1
}

func isQualifier(t Token) bool {
	switch t.Text {
	case "const", "volatile", "restrict", "_Atomic", "static", "extern", "register", "inline", "_Thread_local", "thread_local":
		return t.Kind == TokenKeyword
	}
	return false
}

func isTagKeyword(t Token) bool {
	return t.Kind == TokenKeyword && (t.Text == "struct" || t.Text == "union" || t.Text == "enum")
}

func (p *parser) collectTypedefs() {
	for cp := 0; cp < len(p.facts.Code); cp++ {
		t := p.tok(cp)
		if !t.Is(TokenKeyword, "typedef") {
			continue
		}
		end := p.statementEnd(cp + 1)
		if end < 0 {
			p.ambiguity(p.facts.Code[cp], "could not find the end of typedef")
			continue
		}

		td := TypedefDecl{Tok: p.facts.Code[cp], Line: t.Pos.Line, TagTok: -1}
		j := cp + 1
		for j < end && isQualifier(p.tok(j)) {
			j++
		}
		if j < end && isTagKeyword(p.tok(j)) {
			td.Kind = p.tok(j).Text
			j++
			if j < end && p.tok(j).Kind == TokenIdentifier {
				td.Tag = p.tok(j).Text
				td.TagTok = p.facts.Code[j]
				j++
			}
			if j < end && p.tok(j).IsPunct("{") {
				td.HasBody = true
				j = p.match[j] + 1
			}
		}

		start := j
		for k := j; k <= end; k++ {
			if k < end && p.match[k] > k {
				k = p.match[k]
				continue
			}
			if k == end || p.tok(k).IsPunct(",") {
				if name, ok := p.typedefName(start, k); ok {
					td.Names = append(td.Names, name)
				}
				start = k + 1
			}
		}

		if td.Kind == "struct" || td.Kind == "union" {
			for _, n := range td.Names {
				if !n.IsPointer && !n.IsFunctionPointer {
					p.aggregates[n.Name] = true
				}
			}
		}

		p.facts.Typedefs = append(p.facts.Typedefs, td)
		cp = end
	}
}

// typedefName parses one declarator in code positions [from, to)
func (p *parser) typedefName(from, to int) (TypedefName, bool) {
	pointer := false
	nameCP := -1
	for k := from; k < to; k++ {
		t := p.tok(k)
		if t.IsPunct("(") {
			m := p.match[k]
			if m < 0 {
				return TypedefName{}, false
			}
			if k+1 < m && (p.tok(k+1).IsPunct("*") || p.tok(k+1).IsPunct("^")) {
				for i := k + 1; i < m; i++ {
					if p.tok(i).Kind == TokenIdentifier {
						return TypedefName{Name: p.tok(i).Text, Tok: p.facts.Code[i], IsFunctionPointer: true}, true
					}
				}
				return TypedefName{}, false
			}
			break
		}
		if t.IsPunct("[") {
			break
		}
		if t.IsPunct("*") {
			pointer = true
		}
		if t.Kind == TokenIdentifier {
			nameCP = k
		}
	}
	if nameCP < 0 {
		return TypedefName{}, false
	}
	return TypedefName{
		Name:      p.tok(nameCP).Text,
		Tok:       p.facts.Code[nameCP],
		IsPointer: pointer,
	}, true
}

func (p *parser) collectFunctions() {
	for cp := 0; cp+1 < len(p.facts.Code); cp++ {
		if p.depth[cp] != 0 || p.tok(cp).Kind != TokenIdentifier || !p.tok(cp+1).IsPunct("(") {
			continue
		}
		if cp > 0 && (p.tok(cp-1).IsPunct("=") || p.tok(cp-1).IsPunct(".") || p.tok(cp-1).IsPunct("->")) {
			continue
		}
		rp := p.match[cp+1]
		if rp < 0 {
			continue
		}

		// Skip trailing attributes such as __attribute__((noreturn))
		k := rp + 1
		for k+1 < len(p.facts.Code) && (p.tok(k).Kind == TokenIdentifier || p.tok(k).Kind == TokenKeyword) &&
			p.tok(k+1).IsPunct("(") && p.match[k+1] > 0 {
			k = p.match[k+1] + 1
		}

		fn := FunctionDecl{
			Name:    p.tok(cp).Text,
			NameTok: p.facts.Code[cp],
			Params:  Span{Start: p.facts.Code[cp+1] + 1, End: p.facts.Code[rp]},
			Line:    p.tok(cp).Pos.Line,
		}
		switch {
		case p.tok(k).IsPunct("{") && p.match[k] > k:
			closeCP := p.match[k]
			fn.IsDefinition = true
			fn.Body = Span{Start: p.facts.Code[k], End: p.facts.Code[closeCP] + 1}
			fn.BodyStartLine = p.tok(k).Pos.Line
			fn.BodyEndLine = p.tok(closeCP).Pos.Line
			p.facts.Functions = append(p.facts.Functions, fn)
			cp = closeCP
		case p.tok(k).IsPunct(";") || p.tok(k).IsPunct(","):
			p.facts.Functions = append(p.facts.Functions, fn)
			cp = k
		}
	}
}

// declarationBefore returns the first code position of the declaration
// whose declarator ends right before cp.
func (p *parser) declarationBefore(cp int) int {
	k := cp - 1
	for k >= 0 {
		t := p.tok(k)
		if t.Kind == TokenPunctuation {
			switch t.Text {
			case ";", ",", "=", ":", "(", "[", "{":
				return k + 1
			case ")", "]":
				if p.match[k] < 0 {
					return k + 1
				}
				k = p.match[k] - 1
				continue
			case "}":
				open := p.match[k]
				if open < 1 {
					return k + 1
				}
				before := p.tok(open - 1)
				if isTagKeyword(before) || (before.Kind == TokenIdentifier && open >= 2 && isTagKeyword(p.tok(open-2))) {
					k = open - 1
					continue
				}
				return k + 1
			}
		}
		k--
	}
	return 0
}

// elements splits the initializer list between code positions open and close
func (p *parser) elements(open, close int) []InitElement {
	var elems []InitElement
	emit := func(from, to int) {
		if from >= to {
			return
		}
		first := p.tok(from)
		designated := first.IsPunct("[") || (first.IsPunct(".") && from+1 < to && p.tok(from+1).Kind == TokenIdentifier)
		elems = append(elems, InitElement{
			Span:       Span{Start: p.facts.Code[from], End: p.facts.Code[to-1] + 1},
			Designated: designated,
		})
	}

	start := open + 1
	for k := open + 1; k < close; k++ {
		if p.match[k] > k {
			k = p.match[k]
			continue
		}
		if p.tok(k).IsPunct(",") {
			emit(start, k)
			start = k + 1
		}
	}
	emit(start, close)
	return elems
}

// declaredType inspects declaration tokens [from, to) and returns the
// declared type name, whether it is an aggregate, and whether the declarator
// is an array.
func (p *parser) declaredType(from, to int) (name string, aggregate, array bool) {
	var idents []string
	for k := from; k < to; k++ {
		t := p.tok(k)
		switch {
		case isTagKeyword(t):
			if t.Text == "enum" {
				return "", false, false
			}
			if k+1 < to && p.tok(k+1).Kind == TokenIdentifier && name == "" {
				name = t.Text + " " + p.tok(k+1).Text
				aggregate = true
				k++
			}
		case t.IsPunct("["):
			array = true
			if p.match[k] > k {
				k = p.match[k]
			}
		case t.IsPunct("(") || t.IsPunct("."):
			return "", false, false
		case t.Kind == TokenIdentifier:
			idents = append(idents, t.Text)
		}
	}
	if name == "" && len(idents) >= 2 {
		name = idents[0]
		aggregate = p.aggregates[name]
	}
	return name, aggregate, array
}

func (p *parser) collectInitializers() {
	for cp := 0; cp+1 < len(p.facts.Code); cp++ {
		t := p.tok(cp)
		switch {
		case t.IsPunct("=") && p.tok(cp+1).IsPunct("{"):
			closeCP := p.match[cp+1]
			if closeCP < 0 {
				continue
			}
			from := p.declarationBefore(cp)
			name, aggregate, array := p.declaredType(from, cp)
			if name == "" {
				continue
			}
			p.facts.Initializers = append(p.facts.Initializers, BraceInitializer{
				TypeName:    name,
				IsAggregate: aggregate,
				IsArray:     array,
				Open:        p.facts.Code[cp+1],
				Close:       p.facts.Code[closeCP],
				Elements:    p.elements(cp+1, closeCP),
				Line:        p.tok(cp+1).Pos.Line,
			})

		case t.IsPunct("("):
			rp := p.match[cp]
			if rp < 0 || rp+1 >= len(p.facts.Code) || !p.tok(rp+1).IsPunct("{") || p.match[rp+1] < 0 {
				continue
			}
			if cp > 0 {
				prev := p.tok(cp - 1)
				if prev.Kind == TokenIdentifier || prev.IsPunct(")") || prev.IsPunct("]") ||
					(prev.Kind == TokenKeyword && prev.Text != "return") {
					continue
				}
			}
			name, aggregate, array := p.compoundLiteralType(cp+1, rp)
			if name == "" {
				continue
			}
			closeCP := p.match[rp+1]
			p.facts.Initializers = append(p.facts.Initializers, BraceInitializer{
				TypeName:          name,
				IsAggregate:       aggregate,
				IsArray:           array,
				IsCompoundLiteral: true,
				Open:              p.facts.Code[rp+1],
				Close:             p.facts.Code[closeCP],
				Elements:          p.elements(rp+1, closeCP),
				Line:              p.tok(rp+1).Pos.Line,
			})
		}
	}
}

// compoundLiteralType recognizes "(struct tag)" and "(type_t)" casts in [from, to)
func (p *parser) compoundLiteralType(from, to int) (name string, aggregate, array bool) {
	k := from
	for k < to && isQualifier(p.tok(k)) {
		k++
	}
	switch {
	case k+1 < to && isTagKeyword(p.tok(k)) && p.tok(k).Text != "enum" && p.tok(k+1).Kind == TokenIdentifier:
		name = p.tok(k).Text + " " + p.tok(k+1).Text
		aggregate = true
		k += 2
	case k < to && p.tok(k).Kind == TokenIdentifier && p.aggregates[p.tok(k).Text]:
		name = p.tok(k).Text
		aggregate = true
		k++
	default:
		return "", false, false
	}
	if k < to && p.tok(k).IsPunct("[") {
		array = true
		if p.match[k] >= 0 {
			k = p.match[k] + 1
		}
	}
	if k != to {
		return "", false, false
	}
	return name, aggregate, array
}
