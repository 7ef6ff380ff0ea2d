package nbt

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrSyntax is returned for malformed SNBT.
var ErrSyntax = errors.New("nbt: snbt syntax error")

const (
	maxSNBTDepth  = 512
	errUnexpected = "unexpected %q at offset %d"
)

var (
	doublePlain  = regexp.MustCompile(`(?i)^[-+]?(?:[0-9]+[.]|[0-9]*[.][0-9]+)(?:e[-+]?[0-9]+)?$`)
	doubleSuffix = regexp.MustCompile(`(?i)^[-+]?(?:[0-9]+[.]?|[0-9]*[.][0-9]+)(?:e[-+]?[0-9]+)?d$`)
	floatSuffix  = regexp.MustCompile(`(?i)^[-+]?(?:[0-9]+[.]?|[0-9]*[.][0-9]+)(?:e[-+]?[0-9]+)?f$`)
	byteSuffix   = regexp.MustCompile(`(?i)^[-+]?(?:0|[1-9][0-9]*)b$`)
	shortSuffix  = regexp.MustCompile(`(?i)^[-+]?(?:0|[1-9][0-9]*)s$`)
	longSuffix   = regexp.MustCompile(`(?i)^[-+]?(?:0|[1-9][0-9]*)l$`)
	intPlain     = regexp.MustCompile(`^[-+]?(?:0|[1-9][0-9]*)$`)
	unquotedSafe = regexp.MustCompile(`^[0-9A-Za-z_\-.+]+$`)
)

// ParseSNBT parses any stringified tag.
func ParseSNBT(s string) (Tag, error) {
	p := &snbtParser{src: s}
	t, err := p.value(0)
	if err != nil {
		return nil, err
	}
	p.skip()
	if p.pos != len(p.src) {
		return nil, p.errorf(errUnexpected, p.src[p.pos:], p.pos)
	}
	return t, nil
}

// ParseCompound parses SNBT that must describe a compound.
func ParseCompound(s string) (Compound, error) {
	t, err := ParseSNBT(s)
	if err != nil {
		return nil, err
	}
	c, ok := t.(Compound)
	if !ok {
		return nil, fmt.Errorf("%w: expected compound, found %s", ErrSyntax, t.Type())
	}
	return c, nil
}

type snbtParser struct {
	src string
	pos int
}

func (p *snbtParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSyntax, fmt.Sprintf(format, args...))
}

func (p *snbtParser) skip() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *snbtParser) peek() (byte, bool) {
	p.skip()
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *snbtParser) expect(c byte) error {
	got, ok := p.peek()
	if !ok {
		return p.errorf("expected %q, found end of input", c)
	}
	if got != c {
		return p.errorf("expected %q at offset %d, found %q", c, p.pos, got)
	}
	p.pos++
	return nil
}

func (p *snbtParser) value(depth int) (Tag, error) {
	if depth > maxSNBTDepth {
		return nil, ErrTooDeep
	}
	c, ok := p.peek()
	if !ok {
		return nil, p.errorf("expected value, found end of input")
	}
	switch c {
	case '{':
		return p.compound(depth)
	case '[':
		if p.pos+2 < len(p.src) && p.src[p.pos+2] == ';' {
			return p.array()
		}
		return p.list(depth)
	case '"', '\'':
		s, err := p.quoted()
		return String(s), err
	default:
		tok := p.unquoted()
		if tok == "" {
			return nil, p.errorf(errUnexpected, string(c), p.pos)
		}
		return classify(tok), nil
	}
}

func (p *snbtParser) compound(depth int) (Tag, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	out := make(Compound)
	if c, ok := p.peek(); ok && c == '}' {
		p.pos++
		return out, nil
	}
	for {
		key, err := p.key()
		if err != nil {
			return nil, err
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		out[key] = v
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated compound")
		}
		p.pos++
		switch c {
		case ',':
			continue
		case '}':
			return out, nil
		default:
			return nil, p.errorf(errUnexpected, string(c), p.pos-1)
		}
	}
}

func (p *snbtParser) key() (string, error) {
	c, ok := p.peek()
	if !ok {
		return "", p.errorf("expected key, found end of input")
	}
	if c == '"' || c == '\'' {
		return p.quoted()
	}
	tok := p.unquoted()
	if tok == "" {
		return "", p.errorf("expected key at offset %d", p.pos)
	}
	return tok, nil
}

func (p *snbtParser) list(depth int) (Tag, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	out := NewList()
	if c, ok := p.peek(); ok && c == ']' {
		p.pos++
		return out, nil
	}
	for {
		at := p.pos
		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		if !out.Add(v) {
			return nil, p.errorf("cannot insert %s into list of %s at offset %d", v.Type(), out.Elem, at)
		}
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated list")
		}
		p.pos++
		switch c {
		case ',':
			continue
		case ']':
			return out, nil
		default:
			return nil, p.errorf(errUnexpected, string(c), p.pos-1)
		}
	}
}

func (p *snbtParser) array() (Tag, error) {
	p.pos++ // [
	kind := p.src[p.pos]
	p.pos += 2
	var (
		bytesOut []byte
		intsOut  []int32
		longsOut []int64
	)
	if c, ok := p.peek(); ok && c == ']' {
		p.pos++
	} else {
		for {
			tok := p.unquoted()
			if tok == "" {
				return nil, p.errorf("expected array element at offset %d", p.pos)
			}
			n, ok := classify(tok).(Number)
			if !ok {
				return nil, p.errorf("array element %q is not a number", tok)
			}
			switch kind {
			case 'B', 'b':
				if _, isByte := n.(Byte); !isByte {
					return nil, p.errorf("byte array element %q is not a byte", tok)
				}
				bytesOut = append(bytesOut, byte(n.Int64()))
			case 'I', 'i':
				if _, isInt := n.(Int); !isInt {
					return nil, p.errorf("int array element %q is not an int", tok)
				}
				intsOut = append(intsOut, int32(n.Int64()))
			case 'L', 'l':
				switch n.(type) {
				case Long, Int:
				default:
					return nil, p.errorf("long array element %q is not a long", tok)
				}
				longsOut = append(longsOut, n.Int64())
			default:
				return nil, p.errorf("unknown array type %q", kind)
			}
			c, ok := p.peek()
			if !ok {
				return nil, p.errorf("unterminated array")
			}
			p.pos++
			if c == ']' {
				break
			}
			if c != ',' {
				return nil, p.errorf(errUnexpected, string(c), p.pos-1)
			}
		}
	}
	switch kind {
	case 'B', 'b':
		return ByteArray(nonNil(bytesOut)), nil
	case 'I', 'i':
		return IntArray(nonNil(intsOut)), nil
	case 'L', 'l':
		return LongArray(nonNil(longsOut)), nil
	default:
		return nil, p.errorf("unknown array type %q", kind)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (p *snbtParser) quoted() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++
		switch {
		case c == '\\':
			if p.pos >= len(p.src) {
				return "", p.errorf("unterminated escape")
			}
			sb.WriteByte(p.src[p.pos])
			p.pos++
		case c == quote:
			return sb.String(), nil
		default:
			sb.WriteByte(c)
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *snbtParser) unquoted() string {
	p.skip()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			c == '_' || c == '-' || c == '.' || c == '+' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

// classify turns an unquoted token into a typed scalar; anything that is not
// a well-formed number becomes a string.
func classify(tok string) Tag {
	trim := func() string { return tok[:len(tok)-1] }
	switch {
	case floatSuffix.MatchString(tok):
		if f, err := strconv.ParseFloat(trim(), 32); err == nil {
			return Float(f)
		}
	case byteSuffix.MatchString(tok):
		if v, err := strconv.ParseInt(trim(), 10, 8); err == nil {
			return Byte(v)
		}
	case longSuffix.MatchString(tok):
		if v, err := strconv.ParseInt(trim(), 10, 64); err == nil {
			return Long(v)
		}
	case shortSuffix.MatchString(tok):
		if v, err := strconv.ParseInt(trim(), 10, 16); err == nil {
			return Short(v)
		}
	case intPlain.MatchString(tok):
		if v, err := strconv.ParseInt(tok, 10, 32); err == nil {
			return Int(v)
		}
	case doubleSuffix.MatchString(tok):
		if f, err := strconv.ParseFloat(trim(), 64); err == nil {
			return Double(f)
		}
	case doublePlain.MatchString(tok):
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			return Double(f)
		}
	case strings.EqualFold(tok, "true"):
		return Byte(1)
	case strings.EqualFold(tok, "false"):
		return Byte(0)
	}
	return String(tok)
}

// Stringify renders t as SNBT with compound keys in sorted order, so equal
// trees always produce identical text.
func Stringify(t Tag) string {
	var sb strings.Builder
	writeSNBT(&sb, t)
	return sb.String()
}

func writeSNBT(sb *strings.Builder, t Tag) {
	switch v := t.(type) {
	case nil, End:
		sb.WriteString("END")
	case Byte:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
		sb.WriteByte('b')
	case Short:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
		sb.WriteByte('s')
	case Int:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case Long:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
		sb.WriteByte('L')
	case Float:
		sb.WriteString(formatFloat(float64(v), 32))
		sb.WriteByte('f')
	case Double:
		sb.WriteString(formatFloat(float64(v), 64))
		sb.WriteByte('d')
	case String:
		sb.WriteString(QuoteString(string(v)))
	case ByteArray:
		sb.WriteString("[B;")
		for i, b := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(int64(int8(b)), 10))
			sb.WriteByte('B')
		}
		sb.WriteByte(']')
	case IntArray:
		sb.WriteString("[I;")
		for i, x := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(int64(x), 10))
		}
		sb.WriteByte(']')
	case LongArray:
		sb.WriteString("[L;")
		for i, x := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(x, 10))
			sb.WriteByte('L')
		}
		sb.WriteByte(']')
	case *List:
		sb.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeSNBT(sb, item)
		}
		sb.WriteByte(']')
	case Compound:
		sb.WriteByte('{')
		for i, k := range v.SortedKeys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			if unquotedSafe.MatchString(k) {
				sb.WriteString(k)
			} else {
				sb.WriteString(QuoteString(k))
			}
			sb.WriteByte(':')
			writeSNBT(sb, v[k])
		}
		sb.WriteByte('}')
	}
}

func formatFloat(f float64, bits int) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "0"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// QuoteString quotes s for SNBT, preferring double quotes.
func QuoteString(s string) string {
	quote := byte('"')
	if strings.IndexByte(s, '"') >= 0 && strings.IndexByte(s, '\'') < 0 {
		quote = '\''
	}
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte(quote)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' || c == quote {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	sb.WriteByte(quote)
	return sb.String()
}
