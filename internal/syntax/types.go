package syntax

import (
	"fmt"
	"strings"
)

type TypeExprKind int

const (
	TypeName TypeExprKind = iota
	TypePointer
	TypeFunctionPointer
)

// TypeExpr is a parsed parameter or return type as written in the source.
type TypeExpr struct {
	Kind TypeExprKind
	// Name is set for TypeName.
	Name string
	// Elem is the pointee for TypePointer.
	Elem *TypeExpr
	// Unmanaged and Conventions describe `delegate* unmanaged[Cdecl, SuppressGCTransition]`.
	Unmanaged   bool
	Conventions []string
	// Params holds the function pointer parameter types followed by the return type.
	Params []*TypeExpr
	Span   Span
}

// Return returns the function pointer return type.
func (t *TypeExpr) Return() *TypeExpr {
	if t.Kind != TypeFunctionPointer || len(t.Params) == 0 {
		return nil
	}
	return t.Params[len(t.Params)-1]
}

// Parameters returns the function pointer parameter types, return type excluded.
func (t *TypeExpr) Parameters() []*TypeExpr {
	if t.Kind != TypeFunctionPointer || len(t.Params) == 0 {
		return nil
	}
	return t.Params[:len(t.Params)-1]
}

func (t *TypeExpr) String() string {
	switch t.Kind {
	case TypePointer:
		return t.Elem.String() + "*"
	case TypeFunctionPointer:
		var b strings.Builder
		b.WriteString("delegate*")
		if t.Unmanaged {
			b.WriteString(" unmanaged")
			if len(t.Conventions) > 0 {
				b.WriteString("[" + strings.Join(t.Conventions, ", ") + "]")
			}
		}
		b.WriteString("<")
		for i, param := range t.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(param.String())
		}
		b.WriteString(">")
		return b.String()
	}
	return t.Name
}

// ParseType parses a type such as `char*` or `delegate* unmanaged[Cdecl]<char*, void>`.
func ParseType(text string, at Span) (*TypeExpr, error) {
	p, err := newParser(text, at)
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", text, err)
	}

	expr, err := p.parseType()
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", text, err)
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, fmt.Errorf("type %q: unexpected %s at offset %d", text, tok.kind, tok.start)
	}

	return expr, nil
}

func (p *parser) parseType() (*TypeExpr, error) {
	start := p.peek().start
	expr, err := p.parsePrimaryType()
	if err != nil {
		return nil, err
	}

	for {
		star, ok := p.accept(tokenStar)
		if !ok {
			return expr, nil
		}
		expr = &TypeExpr{Kind: TypePointer, Elem: expr, Span: p.span(start, star.end)}
	}
}

func (p *parser) parsePrimaryType() (*TypeExpr, error) {
	name, err := p.expect(tokenIdent)
	if err != nil {
		return nil, err
	}
	if name.text != "delegate" {
		return &TypeExpr{Kind: TypeName, Name: name.text, Span: p.span(name.start, name.end)}, nil
	}

	if _, err := p.expect(tokenStar); err != nil {
		return nil, err
	}

	expr := &TypeExpr{Kind: TypeFunctionPointer}
	if kind := p.peek(); kind.kind == tokenIdent {
		switch kind.text {
		case "unmanaged":
			p.advance()
			expr.Unmanaged = true
			if _, ok := p.accept(tokenLBracket); ok {
				for {
					conv, err := p.expect(tokenIdent)
					if err != nil {
						return nil, err
					}
					expr.Conventions = append(expr.Conventions, conv.text)
					if _, ok := p.accept(tokenComma); !ok {
						break
					}
				}
				if _, err := p.expect(tokenRBracket); err != nil {
					return nil, err
				}
			}
		case "managed":
			p.advance()
		default:
			return nil, fmt.Errorf("unexpected calling convention %q at offset %d", kind.text, kind.start)
		}
	}

	if _, err := p.expect(tokenLess); err != nil {
		return nil, err
	}
	for {
		param, err := p.parseType()
		if err != nil {
			return nil, err
		}
		expr.Params = append(expr.Params, param)
		if _, ok := p.accept(tokenComma); !ok {
			break
		}
	}
	greater, err := p.expect(tokenGreater)
	if err != nil {
		return nil, err
	}

	expr.Span = p.span(name.start, greater.end)
	return expr, nil
}
