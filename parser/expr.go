package parser

import (
	"fmt"

	"github.com/wangzhaode/jinja2go/lexer"
)

// parseExpr is the top of the Pratt chain: ternary `x if c else y`.
func (p *Parser) parseExpr() (Expr, error) {
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.isKeyword(p.at(0), "if") {
		pos := p.advance().Pos
		cond, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		var elseExpr Expr
		if p.isKeyword(p.at(0), "else") {
			p.advance()
			elseExpr, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		return &Ternary{base{pos}, cond, e, elseExpr}, nil
	}
	return e, nil
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isKeyword(p.at(0), "or") {
		pos := p.advance().Pos
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{base{pos}, "or", left, right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isKeyword(p.at(0), "and") {
		pos := p.advance().Pos
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &Binary{base{pos}, "and", left, right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.isKeyword(p.at(0), "not") {
		pos := p.advance().Pos
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Unary{base{pos}, "not", x}, nil
	}
	return p.parseCompare()
}

var compareOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

func (p *Parser) parseCompare() (Expr, error) {
	left, err := p.parseMath1()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.at(0)
		switch {
		case tok.Kind == lexer.KindPunct && compareOps[tok.Text]:
			p.advance()
			right, err := p.parseMath1()
			if err != nil {
				return nil, err
			}
			left = &Binary{base{tok.Pos}, tok.Text, left, right}
		case p.isKeyword(tok, "in"):
			p.advance()
			right, err := p.parseMath1()
			if err != nil {
				return nil, err
			}
			left = &Binary{base{tok.Pos}, "in", left, right}
		case p.isKeyword(tok, "not") && p.isKeyword(p.at(1), "in"):
			p.advance()
			p.advance()
			right, err := p.parseMath1()
			if err != nil {
				return nil, err
			}
			left = &Unary{base{tok.Pos}, "not", &Binary{base{tok.Pos}, "in", left, right}}
		case p.isKeyword(tok, "is"):
			p.advance()
			negated := false
			if p.isKeyword(p.at(0), "not") {
				p.advance()
				negated = true
			}
			nameTok, err := p.expect(lexer.KindName, "test name")
			if err != nil {
				return nil, err
			}
			var args []Expr
			if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "(" {
				args, _, err = p.parseArgs()
				if err != nil {
					return nil, err
				}
			} else if isPrimaryStart(p.at(0)) {
				// `is divisibleby 3` form without parens
				arg, err := p.parseMath2()
				if err != nil {
					return nil, err
				}
				args = []Expr{arg}
			}
			left = &Test{base{tok.Pos}, left, nameTok.Text, args, negated}
		default:
			return left, nil
		}
	}
}

func isPrimaryStart(tok lexer.Token) bool {
	switch tok.Kind {
	case lexer.KindName, lexer.KindString, lexer.KindInt, lexer.KindFloat:
		return !lexer.IsKeyword(tok.Text) || tok.Text == "true" || tok.Text == "false" || tok.Text == "none" ||
			tok.Text == "True" || tok.Text == "False" || tok.Text == "None"
	case lexer.KindPunct:
		return tok.Text == "(" || tok.Text == "[" || tok.Text == "{" || tok.Text == "-" || tok.Text == "+"
	default:
		return false
	}
}

func (p *Parser) parseMath1() (Expr, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.at(0)
		if tok.Kind != lexer.KindPunct || (tok.Text != "+" && tok.Text != "-") {
			return left, nil
		}
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = &Binary{base{tok.Pos}, tok.Text, left, right}
	}
}

func (p *Parser) parseConcat() (Expr, error) {
	left, err := p.parseMath2()
	if err != nil {
		return nil, err
	}
	for p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "~" {
		pos := p.advance().Pos
		right, err := p.parseMath2()
		if err != nil {
			return nil, err
		}
		left = &Binary{base{pos}, "~", left, right}
	}
	return left, nil
}

var math2Ops = map[string]bool{"*": true, "/": true, "//": true, "%": true}

func (p *Parser) parseMath2() (Expr, error) {
	left, err := p.parsePow()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.at(0)
		if tok.Kind != lexer.KindPunct || !math2Ops[tok.Text] {
			return left, nil
		}
		p.advance()
		right, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		left = &Binary{base{tok.Pos}, tok.Text, left, right}
	}
}

// parsePow is right-associative `**`, binding looser than unary/filter.
func (p *Parser) parsePow() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "**" {
		pos := p.advance().Pos
		right, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		return &Binary{base{pos}, "**", left, right}, nil
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	tok := p.at(0)
	if tok.Kind == lexer.KindPunct && (tok.Text == "-" || tok.Text == "+") {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{base{tok.Pos}, tok.Text, x}, nil
	}
	return p.parseFilterOrTest()
}

// parseFilterOrTest handles the `|` filter pipeline, which binds
// tighter than arithmetic (at the unary/postfix level), matching real
// Jinja2's grammar: `x + 1 | string` parses as `x + (1 | string)`.
func (p *Parser) parseFilterOrTest() (Expr, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "|" {
		pos := p.advance().Pos
		nameTok, err := p.expect(lexer.KindName, "filter name")
		if err != nil {
			return nil, err
		}
		var args []Expr
		var kwargs []Arg
		if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "(" {
			args, kwargs, err = p.parseArgs()
			if err != nil {
				return nil, err
			}
		}
		left = &Filter{base{pos}, left, nameTok.Text, args, kwargs}
	}
	return left, nil
}

func (p *Parser) parsePostfix() (Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.at(0)
		if tok.Kind != lexer.KindPunct {
			return e, nil
		}
		switch tok.Text {
		case ".":
			p.advance()
			fieldTok, err := p.expect(lexer.KindName, "attribute name")
			if err != nil {
				return nil, err
			}
			e = &GetAttr{base{tok.Pos}, e, fieldTok.Text}
		case "[":
			p.advance()
			e, err = p.parseIndexOrSlice(tok.Pos, e)
			if err != nil {
				return nil, err
			}
		case "(":
			args, kwargs, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			e = &Call{base{tok.Pos}, e, args, kwargs}
		default:
			return e, nil
		}
	}
}

func (p *Parser) parseIndexOrSlice(pos lexer.Position, obj Expr) (Expr, error) {
	var start, stop, step Expr
	isSlice := false

	parsePart := func() (Expr, error) {
		if p.at(0).Kind == lexer.KindPunct && (p.at(0).Text == ":" || p.at(0).Text == "]") {
			return nil, nil
		}
		return p.parseExpr()
	}

	var err error
	start, err = parsePart()
	if err != nil {
		return nil, err
	}
	if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == ":" {
		isSlice = true
		p.advance()
		stop, err = parsePart()
		if err != nil {
			return nil, err
		}
		if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == ":" {
			p.advance()
			step, err = parsePart()
			if err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	if isSlice {
		return &Slice{base{pos}, obj, start, stop, step}, nil
	}
	if start == nil {
		return nil, &SyntaxError{Pos: pos, Msg: "empty index expression"}
	}
	return &GetItem{base{pos}, obj, start}, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.at(0)
	switch tok.Kind {
	case lexer.KindInt:
		p.advance()
		return &IntLit{base{tok.Pos}, tok.Int}, nil
	case lexer.KindFloat:
		p.advance()
		return &FloatLit{base{tok.Pos}, tok.Float}, nil
	case lexer.KindString:
		p.advance()
		return p.maybeAdjacentStringConcat(tok)
	case lexer.KindName:
		switch tok.Text {
		case "true", "True":
			p.advance()
			return &BoolLit{base{tok.Pos}, true}, nil
		case "false", "False":
			p.advance()
			return &BoolLit{base{tok.Pos}, false}, nil
		case "none", "None":
			p.advance()
			return &NullLit{base{tok.Pos}}, nil
		default:
			p.advance()
			return &Name{base{tok.Pos}, tok.Text}, nil
		}
	case lexer.KindPunct:
		switch tok.Text {
		case "(":
			return p.parseParenOrTuple(tok.Pos)
		case "[":
			return p.parseListLit(tok.Pos)
		case "{":
			return p.parseDictLit(tok.Pos)
		}
	}
	return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("unexpected token %q in expression", tok.Text)}
}

// maybeAdjacentStringConcat implements Python/Jinja2-style implicit
// concatenation of adjacent string literals ("a" "b" == "ab").
func (p *Parser) maybeAdjacentStringConcat(first lexer.Token) (Expr, error) {
	s := first.Text
	for p.at(0).Kind == lexer.KindString {
		s += p.advance().Text
	}
	return &StrLit{base{first.Pos}, s}, nil
}

func (p *Parser) parseParenOrTuple(pos lexer.Position) (Expr, error) {
	p.advance() // '('
	if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == ")" {
		p.advance()
		return &TupleLit{base{pos}, nil}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "," {
		items := []Expr{first}
		for p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "," {
			p.advance()
			if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == ")" {
				break
			}
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			items = append(items, e)
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return &TupleLit{base{pos}, items}, nil
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return first, nil
}

func (p *Parser) parseListLit(pos lexer.Position) (Expr, error) {
	p.advance() // '['
	var items []Expr
	for {
		if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "]" {
			p.advance()
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, e)
		if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "," {
			p.advance()
			continue
		}
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		break
	}
	return &ListLit{base{pos}, items}, nil
}

func (p *Parser) parseDictLit(pos lexer.Position) (Expr, error) {
	p.advance() // '{'
	var keys, vals []Expr
	for {
		if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "}" {
			p.advance()
			break
		}
		var key Expr
		var err error
		if p.at(0).Kind == lexer.KindName {
			nameTok := p.advance()
			key = &StrLit{base{nameTok.Pos}, nameTok.Text}
		} else {
			key, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		vals = append(vals, val)
		if p.at(0).Kind == lexer.KindPunct && p.at(0).Text == "," {
			p.advance()
			continue
		}
		if err := p.expectPunct("}"); err != nil {
			return nil, err
		}
		break
	}
	return &DictLit{base{pos}, keys, vals}, nil
}
