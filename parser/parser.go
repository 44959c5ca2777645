package parser

import (
	"fmt"

	"github.com/wangzhaode/jinja2go/lexer"
)

// SyntaxError is a compile-time failure, carrying the source position
// at which it was detected.
type SyntaxError struct {
	Pos lexer.Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s (line %d, column %d)", e.Msg, e.Pos.Line, e.Pos.Column)
}

// Parser turns a token stream into a []Stmt tree.
type Parser struct {
	lex    *lexer.Lexer
	buf    []lexer.Token
	lastErr error
}

// Parse tokenizes and parses src, returning the top-level statement
// sequence or the first SyntaxError encountered.
func Parse(src string) ([]Stmt, error) {
	p := &Parser{lex: lexer.New(src)}
	body, stop, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if stop != "" {
		return nil, &SyntaxError{Pos: p.at(0).Pos, Msg: fmt.Sprintf("unexpected {%% %s %%} at top level", stop)}
	}
	return body, nil
}

func (p *Parser) fill(n int) error {
	for len(p.buf) <= n {
		tok, err := p.lex.Next()
		if err != nil {
			return p.wrapLexErr(err)
		}
		p.buf = append(p.buf, tok)
		if tok.Kind == lexer.KindEOF {
			break
		}
	}
	return nil
}

func (p *Parser) wrapLexErr(err error) error {
	if le, ok := err.(*lexer.LexError); ok {
		return &SyntaxError{Pos: le.Pos, Msg: le.Msg}
	}
	return err
}

func (p *Parser) at(n int) lexer.Token {
	if err := p.fill(n); err != nil {
		p.lastErr = err
		return lexer.Token{Kind: lexer.KindEOF}
	}
	if n >= len(p.buf) {
		return lexer.Token{Kind: lexer.KindEOF}
	}
	return p.buf[n]
}

func (p *Parser) advance() lexer.Token {
	tok := p.at(0)
	if len(p.buf) > 0 {
		p.buf = p.buf[1:]
	}
	return tok
}

func (p *Parser) expect(k lexer.Kind, what string) (lexer.Token, error) {
	tok := p.at(0)
	if p.lastErr != nil {
		return tok, p.lastErr
	}
	if tok.Kind != k {
		return tok, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("expected %s, found %s %q", what, tok.Kind, tok.Text)}
	}
	return p.advance(), nil
}

func (p *Parser) expectPunct(s string) error {
	tok := p.at(0)
	if tok.Kind != lexer.KindPunct || tok.Text != s {
		return &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("expected %q, found %q", s, tok.Text)}
	}
	p.advance()
	return nil
}

func (p *Parser) isKeyword(tok lexer.Token, kw string) bool {
	return tok.Kind == lexer.KindName && tok.Text == kw
}

// parseBody parses statements until EOF or a STMT_START whose keyword
// is one of the "soft" continuation/terminator words this grammar
// recognizes at any nesting level (elif/else/endif/endfor/endset/
// endmacro/endcall/endraw). On return, if stop is non-empty, the
// STMT_START and keyword NAME tokens have already been consumed; the
// caller is responsible for consuming the matching STMT_END (for hard
// end-tags) or continuing to parse that branch's content (for
// elif/else).
func (p *Parser) parseBody() ([]Stmt, string, error) {
	var body []Stmt
	for {
		tok := p.at(0)
		if p.lastErr != nil {
			return nil, "", p.lastErr
		}
		switch tok.Kind {
		case lexer.KindEOF:
			return body, "", nil
		case lexer.KindText:
			p.advance()
			body = append(body, &Text{base{tok.Pos}, tok.Text})
		case lexer.KindExprStart:
			p.advance()
			e, err := p.parseExpr()
			if err != nil {
				return nil, "", err
			}
			if _, err := p.expect(lexer.KindExprEnd, "'}}'"); err != nil {
				return nil, "", err
			}
			body = append(body, &Output{base{tok.Pos}, e})
		case lexer.KindStmtStart:
			p.advance()
			nameTok, err := p.expect(lexer.KindName, "statement keyword")
			if err != nil {
				return nil, "", err
			}
			if isBodyTerminator(nameTok.Text) {
				return body, nameTok.Text, nil
			}
			stmt, err := p.parseTag(tok.Pos, nameTok.Text)
			if err != nil {
				return nil, "", err
			}
			body = append(body, stmt)
		default:
			return nil, "", &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("unexpected token %q", tok.Text)}
		}
	}
}

func isBodyTerminator(kw string) bool {
	switch kw {
	case "elif", "else", "endif", "endfor", "endset", "endmacro", "endcall", "endraw":
		return true
	default:
		return false
	}
}

func (p *Parser) parseTag(pos lexer.Position, kw string) (Stmt, error) {
	switch kw {
	case "if":
		return p.parseIf(pos)
	case "for":
		return p.parseFor(pos)
	case "set":
		return p.parseSet(pos)
	case "macro":
		return p.parseMacroDef(pos)
	case "call":
		return p.parseMacroCall(pos)
	case "raw":
		return p.parseRaw(pos)
	default:
		return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unknown tag %q", kw)}
	}
}

func (p *Parser) expectStmtEnd() error {
	_, err := p.expect(lexer.KindStmtEnd, "'%}'")
	return err
}

func (p *Parser) parseIf(pos lexer.Position) (Stmt, error) {
	node := &If{base: base{pos}}
	for {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectStmtEnd(); err != nil {
			return nil, err
		}
		body, stop, err := p.parseBody()
		if err != nil {
			return nil, err
		}
		node.Branches = append(node.Branches, IfBranch{Cond: cond, Body: body})
		switch stop {
		case "elif":
			continue
		case "else":
			if err := p.expectStmtEnd(); err != nil {
				return nil, err
			}
			elseBody, stop2, err := p.parseBody()
			if err != nil {
				return nil, err
			}
			if stop2 != "endif" {
				return nil, &SyntaxError{Pos: pos, Msg: "expected {% endif %}"}
			}
			if err := p.expectStmtEnd(); err != nil {
				return nil, err
			}
			node.Else = elseBody
			return node, nil
		case "endif":
			if err := p.expectStmtEnd(); err != nil {
				return nil, err
			}
			return node, nil
		default:
			return nil, &SyntaxError{Pos: pos, Msg: "unterminated {% if %}"}
		}
	}
}

func (p *Parser) parseNameList() ([]string, error) {
	var names []string
	for {
		tok, err := p.expect(lexer.KindName, "loop target name")
		if err != nil {
			return nil, err
		}
		names = append(names, tok.Text)
		if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "," {
			p.advance()
			continue
		}
		break
	}
	return names, nil
}

func (p *Parser) parseFor(pos lexer.Position) (Stmt, error) {
	node := &For{base: base{pos}}
	targets, err := p.parseNameList()
	if err != nil {
		return nil, err
	}
	node.Targets = targets
	if !p.isKeyword(p.at(0), "in") {
		tok := p.at(0)
		return nil, &SyntaxError{Pos: tok.Pos, Msg: "expected 'in' in for loop"}
	}
	p.advance()
	iter, err := p.parseOr() // iterable expr; stop before a bare 'if' filter at or-level and below
	if err != nil {
		return nil, err
	}
	node.Iter = iter
	if p.isKeyword(p.at(0), "if") {
		p.advance()
		filt, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		node.Filter = filt
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	body, stop, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	node.Body = body
	switch stop {
	case "else":
		if err := p.expectStmtEnd(); err != nil {
			return nil, err
		}
		elseBody, stop2, err := p.parseBody()
		if err != nil {
			return nil, err
		}
		if stop2 != "endfor" {
			return nil, &SyntaxError{Pos: pos, Msg: "expected {% endfor %}"}
		}
		if err := p.expectStmtEnd(); err != nil {
			return nil, err
		}
		node.Else = elseBody
		return node, nil
	case "endfor":
		if err := p.expectStmtEnd(); err != nil {
			return nil, err
		}
		return node, nil
	default:
		return nil, &SyntaxError{Pos: pos, Msg: "unterminated {% for %}"}
	}
}

func (p *Parser) parseSet(pos lexer.Position) (Stmt, error) {
	if p.at(0).Kind == lexer.KindName && p.at(1).Kind == lexer.KindPunct && p.at(1).Text == "." {
		nameTok := p.advance()
		p.advance() // '.'
		fieldTok, err := p.expect(lexer.KindName, "namespace attribute name")
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("="); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectStmtEnd(); err != nil {
			return nil, err
		}
		return &Set{base: base{pos}, Targets: []string{nameTok.Text}, Attr: fieldTok.Text, Expr: expr}, nil
	}
	targets, err := p.parseNameList()
	if err != nil {
		return nil, err
	}
	if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "=" {
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectStmtEnd(); err != nil {
			return nil, err
		}
		return &Set{base: base{pos}, Targets: targets, Expr: expr}, nil
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	body, stop, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if stop != "endset" {
		return nil, &SyntaxError{Pos: pos, Msg: "expected {% endset %}"}
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	return &Set{base: base{pos}, Targets: targets, Body: body}, nil
}

func (p *Parser) parseMacroDef(pos lexer.Position) (Stmt, error) {
	nameTok, err := p.expect(lexer.KindName, "macro name")
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []MacroParam
	for {
		if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == ")" {
			p.advance()
			break
		}
		pnTok, err := p.expect(lexer.KindName, "parameter name")
		if err != nil {
			return nil, err
		}
		param := MacroParam{Name: pnTok.Text}
		if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "=" {
			p.advance()
			def, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		params = append(params, param)
		if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "," {
			p.advance()
			continue
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		break
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	body, stop, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if stop != "endmacro" {
		return nil, &SyntaxError{Pos: pos, Msg: "expected {% endmacro %}"}
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	return &MacroDef{base: base{pos}, Name: nameTok.Text, Params: params, Body: body}, nil
}

func (p *Parser) parseArgs() ([]Expr, []Arg, error) {
	var args []Expr
	var kwargs []Arg
	if err := p.expectPunct("("); err != nil {
		return nil, nil, err
	}
	for {
		if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == ")" {
			p.advance()
			break
		}
		if p.at(0).Kind == lexer.KindName && p.at(1).Kind == lexer.KindPunct && p.at(1).Text == "=" {
			nameTok := p.advance()
			p.advance() // '='
			val, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			kwargs = append(kwargs, Arg{Name: nameTok.Text, Value: val})
		} else {
			val, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			args = append(args, val)
		}
		if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "," {
			p.advance()
			continue
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, nil, err
		}
		break
	}
	return args, kwargs, nil
}

func (p *Parser) parseMacroCall(pos lexer.Position) (Stmt, error) {
	calleeTok, err := p.expect(lexer.KindName, "macro name")
	if err != nil {
		return nil, err
	}
	callee := Expr(&Name{base{calleeTok.Pos}, calleeTok.Text})
	var args []Expr
	var kwargs []Arg
	if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "(" {
		args, kwargs, err = p.parseArgs()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	body, stop, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if stop != "endcall" {
		return nil, &SyntaxError{Pos: pos, Msg: "expected {% endcall %}"}
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	if body == nil {
		body = []Stmt{}
	}
	return &MacroCall{base: base{pos}, Callee: callee, Args: args, Kwargs: kwargs, CallerBody: body}, nil
}

func (p *Parser) parseRaw(pos lexer.Position) (Stmt, error) {
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	if len(p.buf) != 0 {
		return nil, &SyntaxError{Pos: pos, Msg: "internal error: lookahead buffered across {% raw %}"}
	}
	text, err := p.lex.ReadRawUntilEndRaw()
	if err != nil {
		return nil, p.wrapLexErr(err)
	}
	return &Raw{base{pos}, text}, nil
}
