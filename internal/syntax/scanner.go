package syntax

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenLiteral
	tokenLess
	tokenGreater
	tokenComma
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenAssign
	tokenStar
	tokenColon
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of input"
	case tokenIdent:
		return "identifier"
	case tokenLiteral:
		return "literal"
	case tokenLess:
		return "'<'"
	case tokenGreater:
		return "'>'"
	case tokenComma:
		return "','"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenLBracket:
		return "'['"
	case tokenRBracket:
		return "']'"
	case tokenAssign:
		return "'='"
	case tokenStar:
		return "'*'"
	case tokenColon:
		return "':'"
	}
	return "unknown token"
}

type token struct {
	kind  tokenKind
	text  string
	start int
	end   int
}

var punctuation = map[byte]tokenKind{
	'<': tokenLess,
	'>': tokenGreater,
	',': tokenComma,
	'(': tokenLParen,
	')': tokenRParen,
	'[': tokenLBracket,
	']': tokenRBracket,
	'=': tokenAssign,
	'*': tokenStar,
	':': tokenColon,
}

// scan splits src into tokens. Identifiers may contain dots so qualified names
// come through as a single token.
func scan(src string) ([]token, error) {
	tokens := make([]token, 0, 8)
	pos := 0
	for pos < len(src) {
		r, size := utf8.DecodeRuneInString(src[pos:])
		switch {
		case unicode.IsSpace(r):
			pos += size

		case r == '_' || r == '@' || unicode.IsLetter(r):
			start := pos
			pos += size
			for pos < len(src) {
				r, size = utf8.DecodeRuneInString(src[pos:])
				if r != '_' && r != '.' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					break
				}
				pos += size
			}
			tokens = append(tokens, token{kind: tokenIdent, text: src[start:pos], start: start, end: pos})

		case unicode.IsDigit(r) || r == '-':
			start := pos
			pos += size
			for pos < len(src) {
				r, size = utf8.DecodeRuneInString(src[pos:])
				if !unicode.IsDigit(r) && r != '.' && !unicode.IsLetter(r) {
					break
				}
				pos += size
			}
			tokens = append(tokens, token{kind: tokenLiteral, text: src[start:pos], start: start, end: pos})

		case r == '"':
			start := pos
			pos++
			closed := false
			for pos < len(src) {
				if src[pos] == '\\' {
					pos += 2
					continue
				}
				if src[pos] == '"' {
					pos++
					closed = true
					break
				}
				pos++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated string literal at offset %d", start)
			}
			tokens = append(tokens, token{kind: tokenLiteral, text: src[start:pos], start: start, end: pos})

		default:
			kind, ok := punctuation[src[pos]]
			if !ok {
				return nil, fmt.Errorf("unexpected character %q at offset %d", r, pos)
			}
			tokens = append(tokens, token{kind: kind, text: src[pos : pos+1], start: pos, end: pos + 1})
			pos++
		}
	}

	tokens = append(tokens, token{kind: tokenEOF, start: len(src), end: len(src)})
	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
	base   Span
}

func newParser(text string, at Span) (*parser, error) {
	tokens, err := scan(text)
	if err != nil {
		return nil, err
	}
	return &parser{tokens: tokens, base: at}, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(kind tokenKind) (token, bool) {
	if p.peek().kind != kind {
		return token{}, false
	}
	return p.advance(), true
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.peek()
	if tok.kind != kind {
		return token{}, fmt.Errorf("expected %s, found %s at offset %d", kind, tok.kind, tok.start)
	}
	return p.advance(), nil
}

func (p *parser) span(start, end int) Span {
	return p.base.Sub(start, end)
}
