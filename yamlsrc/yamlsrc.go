// Package yamlsrc adapts a goccy/go-yaml AST into the engine's event
// stream, so documents can be parsed with a full external YAML parser and
// still carry spans. Byte offsets are recomputed from the parser's
// line/column positions against a newline index of the source.
package yamlsrc

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/spanyaml/spanyaml/ir"
	"github.com/spanyaml/spanyaml/scan"
	"github.com/spanyaml/spanyaml/token"
)

// Source is a scan.Source fed by a goccy/go-yaml parse of one document.
type Source struct {
	events []*scan.Event
	next   int
	err    error
}

// New parses src and returns an event source over its first document.
func New(src []byte) *Source {
	s := &Source{}
	file, err := parser.ParseBytes(src, 0)
	if err != nil {
		s.err = &ir.ParseError{Msg: fmt.Sprintf("yaml: %v", err)}
		return s
	}
	b := &builder{index: token.NewLineIndex(src), last: token.Start()}
	if file == nil || len(file.Docs) == 0 || file.Docs[0].Body == nil {
		m := token.Start()
		b.emit(&scan.Event{Kind: scan.EventScalar, Start: m, End: m, Style: scan.Plain})
	} else {
		s.err = b.node(file.Docs[0].Body, "", "")
	}
	s.events = b.events
	return s
}

// Next implements scan.Source.
func (s *Source) Next() (*scan.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.next >= len(s.events) {
		return nil, io.EOF
	}
	ev := s.events[s.next]
	s.next++
	return ev, nil
}

type builder struct {
	index  *token.LineIndex
	events []*scan.Event
	last   token.Marker
}

func (b *builder) emit(ev *scan.Event) {
	b.events = append(b.events, ev)
	b.last = ev.End
}

func (b *builder) markAt(line, column int) token.Marker {
	return token.Marker{
		Offset: b.index.Offset(line, column),
		Line:   line,
		Column: column,
	}
}

func (b *builder) tokenSpan(n ast.Node, width int) (token.Marker, token.Marker) {
	tok := n.GetToken()
	if tok == nil || tok.Position == nil {
		return b.last, b.last
	}
	start := b.markAt(tok.Position.Line, tok.Position.Column)
	end := b.markAt(tok.Position.Line, tok.Position.Column+width)
	return start, end
}

func (b *builder) node(n ast.Node, anchor, tag string) error {
	switch x := n.(type) {
	case *ast.AnchorNode:
		return b.node(x.Value, x.Name.GetToken().Value, tag)
	case *ast.TagNode:
		return b.node(x.Value, anchor, x.Start.Value)
	case *ast.AliasNode:
		name := x.Value.GetToken().Value
		start, end := b.tokenSpan(x, len(name)+1)
		b.emit(&scan.Event{Kind: scan.EventAlias, Start: start, End: end, Value: name})
		return nil
	case *ast.StringNode:
		// goccy already resolved the node as a string; a quoted style
		// keeps the downstream resolver from re-typing it.
		start, end := b.tokenSpan(x, len(x.Value))
		b.emit(&scan.Event{Kind: scan.EventScalar, Start: start, End: end,
			Value: x.Value, Style: scan.DoubleQuoted, Anchor: anchor, Tag: tag})
		return nil
	case *ast.LiteralNode:
		var text string
		if x.Value != nil {
			text = x.Value.Value
		}
		start, end := b.tokenSpan(x, 1)
		b.emit(&scan.Event{Kind: scan.EventScalar, Start: start, End: end,
			Value: text, Style: scan.DoubleQuoted, Anchor: anchor, Tag: tag})
		return nil
	case *ast.MappingNode:
		start, _ := b.tokenSpan(x, 0)
		b.emit(&scan.Event{Kind: scan.EventMappingStart, Start: start, End: start, Anchor: anchor, Tag: tag})
		for _, pair := range x.Values {
			if err := b.pair(pair); err != nil {
				return err
			}
		}
		b.emit(&scan.Event{Kind: scan.EventMappingEnd, Start: b.last, End: b.last})
		return nil
	case *ast.MappingValueNode:
		// A single-pair mapping parses to the pair node directly.
		start, _ := b.tokenSpan(x, 0)
		b.emit(&scan.Event{Kind: scan.EventMappingStart, Start: start, End: start, Anchor: anchor, Tag: tag})
		if err := b.pair(x); err != nil {
			return err
		}
		b.emit(&scan.Event{Kind: scan.EventMappingEnd, Start: b.last, End: b.last})
		return nil
	case *ast.SequenceNode:
		start, _ := b.tokenSpan(x, 0)
		b.emit(&scan.Event{Kind: scan.EventSequenceStart, Start: start, End: start, Anchor: anchor, Tag: tag})
		for _, e := range x.Values {
			if err := b.node(e, "", ""); err != nil {
				return err
			}
		}
		b.emit(&scan.Event{Kind: scan.EventSequenceEnd, Start: b.last, End: b.last})
		return nil
	case nil:
		b.emit(&scan.Event{Kind: scan.EventScalar, Start: b.last, End: b.last,
			Style: scan.Plain, Anchor: anchor, Tag: tag})
		return nil
	default:
		// Null, bool, number, infinity, nan, and merge-key nodes all
		// carry their raw text in the token; the downstream resolver
		// types them.
		tok := n.GetToken()
		if tok == nil {
			return &ir.ParseError{Msg: fmt.Sprintf("yaml: unsupported node %T", n)}
		}
		start, end := b.tokenSpan(n, len(tok.Value))
		b.emit(&scan.Event{Kind: scan.EventScalar, Start: start, End: end,
			Value: tok.Value, Style: scan.Plain, Anchor: anchor, Tag: tag})
		return nil
	}
}

func (b *builder) pair(pair *ast.MappingValueNode) error {
	if err := b.node(pair.Key, "", ""); err != nil {
		return err
	}
	return b.node(pair.Value, "", "")
}
