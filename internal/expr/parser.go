package expr

import (
	"fmt"
	"strings"
)

// maxDepth bounds nesting so hostile input cannot exhaust the stack.
const maxDepth = 200

// Grammar, lowest precedence first:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("-" | "+") unary | power
//	power   = primary [ "**" unary ]
//	primary = number | name | name "(" args ")" | "(" expr ")"
//
// Unary minus binds looser than "**", so -x**2 is -(x**2).
type parser struct {
	src   string
	toks  []token
	pos   int
	depth int
}

func parse(src string) (Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	if p.peek().kind == tokEOF {
		return nil, p.errorf(p.peek(), "empty formula")
	}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %s", describe(t))
	}
	return n, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorf(t, "expected %s, found %s", kind, describe(t))
	}
	return t, nil
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &CompileError{Source: p.src, Offset: t.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return p.errorf(p.peek(), "expression nested deeper than %d", maxDepth)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) expr() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokPlus && t.kind != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: t.text[0], Left: left, Right: right}
	}
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokStar && t.kind != tokSlash {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: t.text[0], Left: left, Right: right}
	}
}

func (p *parser) unary() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	switch p.peek().kind {
	case tokMinus:
		p.next()
		arg, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Neg{Arg: arg}, nil
	case tokPlus:
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokPow {
		return base, nil
	}
	p.next()
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return Pow{Base: base, Exp: exp}, nil
}

func (p *parser) primary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return Num{Value: t.num}, nil
	case tokLParen:
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return n, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.call(t)
		}
		return p.name(t)
	}
	return nil, p.errorf(t, "unexpected %s", describe(t))
}

// name resolves x, a qualified constant, or a bare pi/e exposed by
// implicit multiplication.
func (p *parser) name(t token) (Node, error) {
	if t.text == "x" {
		return Var{}, nil
	}
	member, qualified := stripNamespace(t.text)
	if !qualified && member != "e" && !strings.EqualFold(member, "pi") {
		return nil, p.errorf(t, "unknown identifier %q", t.text)
	}
	v, ok := constants[strings.ToLower(member)]
	if !ok {
		return nil, p.errorf(t, "unknown constant %q", t.text)
	}
	return Const{Name: strings.ToLower(member), Value: v}, nil
}

func (p *parser) call(t token) (Node, error) {
	member, qualified := stripNamespace(t.text)
	if !qualified {
		return nil, p.errorf(t, "unknown function %q", t.text)
	}
	fn, ok := functions[member]
	if !ok {
		return nil, p.errorf(t, "unknown function %q", t.text)
	}
	p.next() // (

	var args []Node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	if !fn.accepts(len(args)) {
		return nil, p.errorf(t, "%s takes %s, got %d", fn.Name, arity(fn), len(args))
	}
	return Call{Fn: fn, Args: args}, nil
}

// stripNamespace splits "math.sin" or "Math.sin" into "sin", true.
func stripNamespace(name string) (string, bool) {
	for _, ns := range []string{"math.", "Math."} {
		if rest, ok := strings.CutPrefix(name, ns); ok && !strings.Contains(rest, ".") {
			return rest, true
		}
	}
	return name, false
}

func arity(fn *Func) string {
	switch {
	case fn.MaxArgs < 0:
		return fmt.Sprintf("at least %d argument(s)", fn.MinArgs)
	case fn.MinArgs == fn.MaxArgs && fn.MinArgs == 1:
		return "1 argument"
	case fn.MinArgs == fn.MaxArgs:
		return fmt.Sprintf("%d arguments", fn.MinArgs)
	}
	return fmt.Sprintf("%d to %d arguments", fn.MinArgs, fn.MaxArgs)
}

func describe(t token) string {
	if t.kind == tokEOF {
		return t.kind.String()
	}
	return fmt.Sprintf("%q", t.text)
}
