package parse

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	tcss "github.com/tdewolff/parse/v2/css"
)

// TokenType discriminates the token union. Tokens are produced by the
// external tokenizer and read only from here on.
type TokenType uint8

const (
	TokenIdent TokenType = iota
	TokenFunction
	TokenURI
	TokenHash
	TokenString
	TokenNumber
	TokenPercentage
	TokenDimension
	TokenChar
	TokenWhitespace
)

// Token is one CSS component token. Value holds the payload : the
// identifier or function name (without the opening parenthesis), the
// unresolved url, the hash digits (without '#'), the unquoted string,
// or the numeric text. Percentage values do not include the '%'.
type Token struct {
	Type  TokenType
	Value string
}

// IsChar reports whether t is the single delimiter c.
func (t *Token) IsChar(c byte) bool {
	return t.Type == TokenChar && len(t.Value) == 1 && t.Value[0] == c
}

// IsIdent reports a caseless identifier match.
func (t *Token) IsIdent(name string) bool {
	return t.Type == TokenIdent && strings.EqualFold(t.Value, name)
}

// IsFunction reports a caseless function name match.
func (t *Token) IsFunction(name string) bool {
	return t.Type == TokenFunction && strings.EqualFold(t.Value, name)
}

// Vector is the shared, read only token sequence a property parser
// walks with an explicit cursor.
type Vector []Token

// Peek returns the token at the cursor without advancing, or nil at
// the end.
func (v Vector) Peek(ctx int) *Token {
	if ctx < 0 || ctx >= len(v) {
		return nil
	}
	return &v[ctx]
}

// Iterate returns the token at the cursor and advances by exactly one,
// or returns nil at the end.
func (v Vector) Iterate(ctx *int) *Token {
	t := v.Peek(*ctx)
	if t != nil {
		*ctx++
	}
	return t
}

// ConsumeWhitespace advances the cursor past whitespace tokens.
func (v Vector) ConsumeWhitespace(ctx *int) {
	for {
		t := v.Peek(*ctx)
		if t == nil || t.Type != TokenWhitespace {
			return
		}
		*ctx++
	}
}

// Tokenize runs the lexer on a raw value string and adapts its tokens
// to the vector contract.
func Tokenize(css string) Vector {
	l := tcss.NewLexer(parse.NewInputString(css))
	var out Vector
	for {
		tt, data := l.Next()
		switch tt {
		case tcss.ErrorToken:
			return out
		case tcss.CommentToken:
			// dropped, like the reference tokenizer in skip mode
		case tcss.WhitespaceToken:
			out = append(out, Token{Type: TokenWhitespace, Value: " "})
		case tcss.IdentToken, tcss.CustomPropertyNameToken:
			out = append(out, Token{Type: TokenIdent, Value: string(data)})
		case tcss.FunctionToken:
			name := strings.TrimSuffix(string(data), "(")
			out = append(out, Token{Type: TokenFunction, Value: name})
		case tcss.URLToken:
			out = append(out, Token{Type: TokenURI, Value: unwrapURL(string(data))})
		case tcss.HashToken:
			out = append(out, Token{Type: TokenHash, Value: strings.TrimPrefix(string(data), "#")})
		case tcss.StringToken:
			out = append(out, Token{Type: TokenString, Value: unquote(string(data))})
		case tcss.NumberToken:
			out = append(out, Token{Type: TokenNumber, Value: string(data)})
		case tcss.PercentageToken:
			out = append(out, Token{Type: TokenPercentage, Value: strings.TrimSuffix(string(data), "%")})
		case tcss.DimensionToken:
			out = append(out, Token{Type: TokenDimension, Value: string(data)})
		case tcss.CommaToken:
			out = append(out, Token{Type: TokenChar, Value: ","})
		case tcss.LeftParenthesisToken:
			out = append(out, Token{Type: TokenChar, Value: "("})
		case tcss.RightParenthesisToken:
			out = append(out, Token{Type: TokenChar, Value: ")"})
		default:
			out = append(out, Token{Type: TokenChar, Value: string(data)})
		}
	}
}

// unwrapURL strips the url( ... ) wrapper and optional quotes.
func unwrapURL(s string) string {
	if len(s) >= 4 && strings.EqualFold(s[:4], "url(") {
		s = s[4:]
	}
	s = strings.TrimSuffix(s, ")")
	s = strings.TrimSpace(s)
	return unquote(s)
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// Serialize reconstructs a raw value text from tokens, used to store
// custom property values verbatim.
func Serialize(v Vector) string {
	var sb strings.Builder
	for _, t := range v {
		switch t.Type {
		case TokenFunction:
			sb.WriteString(t.Value)
			sb.WriteByte('(')
		case TokenURI:
			sb.WriteString("url(")
			sb.WriteString(t.Value)
			sb.WriteByte(')')
		case TokenHash:
			sb.WriteByte('#')
			sb.WriteString(t.Value)
		case TokenString:
			sb.WriteByte('"')
			sb.WriteString(t.Value)
			sb.WriteByte('"')
		case TokenPercentage:
			sb.WriteString(t.Value)
			sb.WriteByte('%')
		default:
			sb.WriteString(t.Value)
		}
	}
	return strings.TrimSpace(sb.String())
}
