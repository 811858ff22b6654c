// Package parse builds span-annotated ir.Value trees from event sources.
package parse

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spanyaml/spanyaml/ir"
	"github.com/spanyaml/spanyaml/scan"
	"github.com/spanyaml/spanyaml/token"
)

// DuplicateKey is a policy decision for one duplicated mapping key.
type DuplicateKey int

const (
	// DuplicateKeyError rejects the document.
	DuplicateKeyError DuplicateKey = iota
	// DuplicateKeyFirst keeps the first occurrence.
	DuplicateKeyFirst
	// DuplicateKeyLast keeps the last occurrence, at the first
	// occurrence's position.
	DuplicateKeyLast
)

// DuplicateKeyPolicy decides what to do when a mapping key repeats. path is
// the position of the enclosing mapping; existing and incoming are the two
// values competing for the key.
type DuplicateKeyPolicy func(path *ir.Path, existing, incoming *ir.Value) DuplicateKey

// Option configures parsing.
type Option func(*config)

type config struct {
	policy DuplicateKeyPolicy
}

// WithDuplicateKeyPolicy installs a duplicate-key policy. Without one,
// duplicated keys are an error.
func WithDuplicateKeyPolicy(p DuplicateKeyPolicy) Option {
	return func(c *config) { c.policy = p }
}

// Parse parses one document from src.
func Parse(src []byte, opts ...Option) (*ir.Value, error) {
	return FromSource(scan.New(src), opts...)
}

// ParseString parses one document from s.
func ParseString(s string, opts ...Option) (*ir.Value, error) {
	return Parse([]byte(s), opts...)
}

// ParseReader parses one document from r.
func ParseReader(r io.Reader, opts ...Option) (*ir.Value, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(src, opts...)
}

// FromSource drains src into a value tree. Any event source works: the
// native scanner or an adapter around another parser's events.
func FromSource(src scan.Source, opts ...Option) (*ir.Value, error) {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}
	p := &parser{
		src:     src,
		cfg:     cfg,
		anchors: map[string]*ir.Value{},
	}
	root := ir.RootPath()
	v, err := p.value(&root)
	if err != nil {
		return nil, err
	}
	if ev, err := src.Next(); err == nil {
		return nil, p.errorf(ev.Start, "unexpected %s event after document", ev.Kind)
	} else if err != io.EOF {
		return nil, err
	}
	return v, nil
}

type parser struct {
	src     scan.Source
	cfg     *config
	cursor  token.Cursor
	anchors map[string]*ir.Value
}

func (p *parser) next() (*scan.Event, error) {
	ev, err := p.src.Next()
	if err == io.EOF {
		m, ok := p.cursor.Position()
		if !ok {
			m = token.Start()
		}
		return nil, p.errorf(m, "unexpected end of event stream")
	}
	if err != nil {
		return nil, err
	}
	p.cursor.SetPosition(ev.End)
	return ev, nil
}

func (p *parser) errorf(m token.Marker, format string, args ...any) error {
	return &ir.ParseError{
		Msg:      fmt.Sprintf(format, args...),
		NodeSpan: token.Span{Start: m, End: m},
	}
}

func (p *parser) value(path *ir.Path) (*ir.Value, error) {
	ev, err := p.next()
	if err != nil {
		return nil, err
	}
	return p.valueFrom(ev, path)
}

func (p *parser) valueFrom(ev *scan.Event, path *ir.Path) (*ir.Value, error) {
	var v *ir.Value
	var err error
	switch ev.Kind {
	case scan.EventScalar:
		v = resolveScalar(ev)
	case scan.EventSequenceStart:
		v, err = p.sequence(ev, path)
	case scan.EventMappingStart:
		v, err = p.mapping(ev, path)
	case scan.EventAlias:
		anchored, ok := p.anchors[ev.Value]
		if !ok {
			return nil, p.errorf(ev.Start, "unresolved alias *%s", ev.Value)
		}
		v = anchored.Clone()
		v.Span = token.Span{Start: ev.Start, End: ev.End}
		return v, nil
	default:
		return nil, p.errorf(ev.Start, "unexpected %s event", ev.Kind)
	}
	if err != nil {
		return nil, err
	}
	if ev.Anchor != "" {
		p.anchors[ev.Anchor] = v
	}
	return v, nil
}

func (p *parser) sequence(start *scan.Event, path *ir.Path) (*ir.Value, error) {
	var elems []*ir.Value
	for {
		ev, err := p.next()
		if err != nil {
			return nil, err
		}
		if ev.Kind == scan.EventSequenceEnd {
			span := token.Span{Start: start.Start, End: ev.End}
			v := ir.FromSeq(elems...).WithSpan(span)
			if start.Tag != "" {
				v = ir.FromTagged(start.Tag, v).WithSpan(span)
			}
			return v, nil
		}
		child := path.Seq(len(elems))
		elem, err := p.valueFrom(ev, &child)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
}

func (p *parser) mapping(start *scan.Event, path *ir.Path) (*ir.Value, error) {
	m := ir.NewMapping()
	for {
		ev, err := p.next()
		if err != nil {
			return nil, err
		}
		if ev.Kind == scan.EventMappingEnd {
			span := token.Span{Start: start.Start, End: ev.End}
			v := ir.FromMapping(m).WithSpan(span)
			if start.Tag != "" {
				v = ir.FromTagged(start.Tag, v).WithSpan(span)
			}
			return v, nil
		}
		key, err := p.valueFrom(ev, path)
		if err != nil {
			return nil, err
		}
		child := childPath(path, key)
		val, err := p.value(&child)
		if err != nil {
			return nil, err
		}
		if existing := m.Get(key); existing != nil {
			decision := DuplicateKeyError
			if p.cfg.policy != nil {
				decision = p.cfg.policy(path, existing, val)
			}
			switch decision {
			case DuplicateKeyFirst:
				continue
			case DuplicateKeyLast:
				m.SetAt(m.IndexOf(key), val)
				continue
			default:
				return nil, &ir.ParseError{
					Msg:      fmt.Sprintf("duplicate entry with key %s at %s", keyLabel(key), child.String()),
					NodeSpan: key.Span,
				}
			}
		}
		m.Append(key, val)
	}
}

func childPath(path *ir.Path, key *ir.Value) ir.Path {
	if key.Kind == ir.StringKind {
		return path.Map(key.Str)
	}
	return path.Unknown()
}

func keyLabel(key *ir.Value) string {
	switch key.Kind {
	case ir.StringKind:
		return strconv.Quote(key.Str)
	case ir.BoolKind:
		return strconv.FormatBool(key.Bool)
	case ir.NumberKind:
		return key.Number.String()
	default:
		return key.Kind.String()
	}
}

func resolveScalar(ev *scan.Event) *ir.Value {
	var v *ir.Value
	if ev.Style != scan.Plain {
		v = ir.FromString(ev.Value)
	} else {
		v = resolvePlain(ev.Value)
	}
	span := token.Span{Start: ev.Start, End: ev.End}
	v.Span = span
	if ev.Tag != "" {
		v = ir.FromTagged(ev.Tag, v)
	}
	return v.WithSpan(span)
}

// resolvePlain applies core-schema resolution to an unquoted scalar.
func resolvePlain(s string) *ir.Value {
	switch s {
	case "", "~", "null", "Null", "NULL":
		return ir.Null()
	case "true", "True", "TRUE":
		return ir.FromBool(true)
	case "false", "False", "FALSE":
		return ir.FromBool(false)
	case ".nan", ".NaN", ".NAN":
		return ir.FromFloat(math.NaN())
	case ".inf", "+.inf", ".Inf", "+.Inf", ".INF", "+.INF":
		return ir.FromFloat(math.Inf(1))
	case "-.inf", "-.Inf", "-.INF":
		return ir.FromFloat(math.Inf(-1))
	}
	if v, ok := resolveInt(s); ok {
		return v
	}
	if looksLikeFloat(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return ir.FromFloat(f)
		}
	}
	return ir.FromString(s)
}

func resolveInt(s string) (*ir.Value, bool) {
	body := s
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		body = s[1:]
	case strings.HasPrefix(s, "+"):
		body = s[1:]
	}
	if body == "" {
		return nil, false
	}
	base := 10
	digits := body
	switch {
	case strings.HasPrefix(body, "0x"), strings.HasPrefix(body, "0X"):
		base = 16
		digits = body[2:]
	case strings.HasPrefix(body, "0o"), strings.HasPrefix(body, "0O"):
		base = 8
		digits = body[2:]
	default:
		// A leading zero means the writer wanted a string, not an
		// octal literal.
		if len(body) > 1 && body[0] == '0' {
			return nil, false
		}
	}
	if digits == "" {
		return nil, false
	}
	if neg {
		i, err := strconv.ParseInt("-"+digits, base, 64)
		if err != nil {
			return nil, false
		}
		return ir.FromInt(i), true
	}
	u, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return nil, false
	}
	return ir.FromUint(u), true
}

// looksLikeFloat gates ParseFloat so that plain words like "Inf" or
// underscore forms never resolve as numbers.
func looksLikeFloat(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits, dot, exp := false, false, false
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits = true
		case c == '.' && !dot && !exp:
			dot = true
		case (c == 'e' || c == 'E') && digits && !exp:
			exp = true
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				i++
			}
			digits = false
		default:
			return false
		}
	}
	return digits && (dot || exp)
}
