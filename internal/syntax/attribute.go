package syntax

import (
	"fmt"
	"strings"
)

// TypeArg is one generic type argument of an attribute, e.g. `IsConst<IsPtrConst>`
// inside `ConstMeta<IsConst<IsPtrConst>, IsNotConst>`.
type TypeArg struct {
	Name     string
	FullName string
	Args     []TypeArg
	Span     Span
	NameSpan Span
	// ArgsSpan covers the `<...>` list, brackets included. Zero when Args is empty.
	ArgsSpan Span
}

// NamedArg is an attribute argument. Positional arguments have an empty Name.
type NamedArg struct {
	Name  string
	Value string
	Span  Span
}

// Attribute is the parsed form of one attribute application.
type Attribute struct {
	Name     string
	FullName string
	Args     []TypeArg
	Named    []NamedArg
	Span     Span
	NameSpan Span
	ArgsSpan Span
	// NamedSpan covers the `(...)` argument list, parentheses included.
	NamedSpan Span
}

// ShortName strips the namespace qualifier and the conventional "Attribute" suffix,
// so `BUTR.NativeAOT.Shared.IsConstAttribute` and `IsConst` compare equal.
func ShortName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimPrefix(name, "@")
	if name != "Attribute" {
		name = strings.TrimSuffix(name, "Attribute")
	}
	return name
}

// Arity returns the number of generic type arguments.
func (a *Attribute) Arity() int {
	return len(a.Args)
}

// NamedArgument returns the argument with the given name.
func (a *Attribute) NamedArgument(name string) (NamedArg, bool) {
	for _, arg := range a.Named {
		if arg.Name == name {
			return arg, true
		}
	}
	return NamedArg{}, false
}

// ParseAttribute parses attribute text such as `IsConst<IsPtrConst>` or
// `IsConst(PointsToConstant = true)`. at locates the first byte of text.
func ParseAttribute(text string, at Span) (*Attribute, error) {
	p, err := newParser(text, at)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", text, err)
	}

	attr, err := p.parseAttribute()
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", text, err)
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, fmt.Errorf("attribute %q: unexpected %s at offset %d", text, tok.kind, tok.start)
	}

	return attr, nil
}

func (p *parser) parseAttribute() (*Attribute, error) {
	name, err := p.expect(tokenIdent)
	if err != nil {
		return nil, err
	}

	attr := &Attribute{
		Name:     ShortName(name.text),
		FullName: name.text,
		NameSpan: p.span(name.start, name.end),
	}
	end := name.end

	if p.peek().kind == tokenLess {
		args, argsStart, argsEnd, err := p.parseTypeArgs()
		if err != nil {
			return nil, err
		}
		attr.Args = args
		attr.ArgsSpan = p.span(argsStart, argsEnd)
		end = argsEnd
	}

	if lparen, ok := p.accept(tokenLParen); ok {
		for p.peek().kind != tokenRParen {
			arg, err := p.parseNamedArg()
			if err != nil {
				return nil, err
			}
			attr.Named = append(attr.Named, arg)
			if _, ok := p.accept(tokenComma); !ok {
				break
			}
		}
		rparen, err := p.expect(tokenRParen)
		if err != nil {
			return nil, err
		}
		attr.NamedSpan = p.span(lparen.start, rparen.end)
		end = rparen.end
	}

	attr.Span = p.span(name.start, end)
	return attr, nil
}

func (p *parser) parseTypeArgs() ([]TypeArg, int, int, error) {
	less, err := p.expect(tokenLess)
	if err != nil {
		return nil, 0, 0, err
	}

	var args []TypeArg
	for {
		arg, err := p.parseTypeArg()
		if err != nil {
			return nil, 0, 0, err
		}
		args = append(args, arg)
		if _, ok := p.accept(tokenComma); !ok {
			break
		}
	}

	greater, err := p.expect(tokenGreater)
	if err != nil {
		return nil, 0, 0, err
	}
	return args, less.start, greater.end, nil
}

func (p *parser) parseTypeArg() (TypeArg, error) {
	name, err := p.expect(tokenIdent)
	if err != nil {
		return TypeArg{}, err
	}

	arg := TypeArg{
		Name:     ShortName(name.text),
		FullName: name.text,
		NameSpan: p.span(name.start, name.end),
	}
	end := name.end

	if p.peek().kind == tokenLess {
		args, argsStart, argsEnd, err := p.parseTypeArgs()
		if err != nil {
			return TypeArg{}, err
		}
		arg.Args = args
		arg.ArgsSpan = p.span(argsStart, argsEnd)
		end = argsEnd
	}

	arg.Span = p.span(name.start, end)
	return arg, nil
}

func (p *parser) parseNamedArg() (NamedArg, error) {
	first := p.advance()
	if first.kind != tokenIdent && first.kind != tokenLiteral {
		return NamedArg{}, fmt.Errorf("expected argument, found %s at offset %d", first.kind, first.start)
	}

	if first.kind == tokenIdent {
		if _, ok := p.accept(tokenAssign); ok {
			value := p.advance()
			if value.kind != tokenIdent && value.kind != tokenLiteral {
				return NamedArg{}, fmt.Errorf("expected value for %s, found %s at offset %d", first.text, value.kind, value.start)
			}
			return NamedArg{Name: first.text, Value: value.text, Span: p.span(first.start, value.end)}, nil
		}
	}

	return NamedArg{Value: first.text, Span: p.span(first.start, first.end)}, nil
}
