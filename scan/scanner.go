package scan

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spanyaml/spanyaml/ir"
	"github.com/spanyaml/spanyaml/token"
)

// Scanner turns one document into a flat event stream. The whole source is
// scanned on the first call to Next; subsequent calls pop queued events.
//
// The accepted surface is the block and flow styles of the core schema:
// block mappings and sequences by indentation, flow collections, plain and
// quoted scalars, comments, anchors, aliases, tags, and an optional leading
// `---` / trailing `...` pair. Block scalars (`|`, `>`) are not accepted.
type Scanner struct {
	src []byte

	pos  int
	line int
	col  int

	events []*Event
	next   int
	ran    bool
	err    error
}

// New returns a Scanner over src.
func New(src []byte) *Scanner {
	return &Scanner{src: src, line: 1, col: 1}
}

// Next implements Source.
func (s *Scanner) Next() (*Event, error) {
	if !s.ran {
		s.ran = true
		s.err = s.run()
	}
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

func (s *Scanner) run() error {
	s.skipToToken()
	if s.atDocumentMarker("---") {
		s.skipLine()
		s.skipToToken()
	}
	if s.eof() || s.atDocumentMarker("...") {
		s.emit(&Event{Kind: EventScalar, Start: s.mark(), End: s.mark(), Style: Plain})
		return nil
	}
	if err := s.parseNode(1, true); err != nil {
		return err
	}
	s.skipToToken()
	if s.atDocumentMarker("...") {
		s.skipLine()
		s.skipToToken()
	}
	if !s.eof() {
		return s.errorf("unexpected content after document")
	}
	return nil
}

func (s *Scanner) emit(ev *Event) { s.events = append(s.events, ev) }

func (s *Scanner) mark() token.Marker {
	return token.Marker{Offset: s.pos, Line: s.line, Column: s.col}
}

func (s *Scanner) errorf(format string, args ...any) error {
	m := s.mark()
	return &ir.ParseError{
		Msg:      fmt.Sprintf(format, args...),
		NodeSpan: token.Span{Start: m, End: m},
	}
}

func (s *Scanner) eof() bool { return s.pos >= len(s.src) }

func (s *Scanner) cur() byte { return s.src[s.pos] }

func (s *Scanner) peekAt(n int) byte {
	if s.pos+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos+n]
}

func (s *Scanner) adv() {
	c := s.src[s.pos]
	switch {
	case c == '\n':
		s.line++
		s.col = 1
	case c&0xC0 != 0x80:
		// Continuation bytes stay in the current column; columns count
		// runes, offsets count bytes.
		s.col++
	}
	s.pos++
}

func isInline(c byte) bool { return c == ' ' || c == '\t' || c == '\r' }

// skipInline consumes spaces and tabs on the current line.
func (s *Scanner) skipInline() {
	for !s.eof() && isInline(s.cur()) {
		s.adv()
	}
}

// skipToToken consumes whitespace, newlines, and comments up to the next
// token or end of input.
func (s *Scanner) skipToToken() {
	for !s.eof() {
		c := s.cur()
		switch {
		case isInline(c) || c == '\n':
			s.adv()
		case c == '#':
			s.skipLine()
		default:
			return
		}
	}
}

// skipLine consumes to and including the next newline.
func (s *Scanner) skipLine() {
	for !s.eof() && s.cur() != '\n' {
		s.adv()
	}
	if !s.eof() {
		s.adv()
	}
}

func (s *Scanner) atDocumentMarker(m string) bool {
	if s.col != 1 || s.pos+len(m) > len(s.src) {
		return false
	}
	if string(s.src[s.pos:s.pos+len(m)]) != m {
		return false
	}
	c := s.peekAt(len(m))
	return c == 0 || c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// atEOL reports whether the current position ends the line's tokens: end of
// input, a newline, or a comment.
func (s *Scanner) atEOL() bool {
	return s.eof() || s.cur() == '\n' || s.cur() == '\r' || s.cur() == '#'
}

// atColonSep reports whether the current position is a `:` acting as a
// mapping separator.
func (s *Scanner) atColonSep() bool {
	if s.eof() || s.cur() != ':' {
		return false
	}
	c := s.peekAt(1)
	return c == 0 || c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// atDashEntry reports whether the current position is a `-` starting a
// block sequence entry.
func (s *Scanner) atDashEntry() bool {
	if s.eof() || s.cur() != '-' {
		return false
	}
	c := s.peekAt(1)
	return c == 0 || c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isAnchorChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '-'
}

func (s *Scanner) scanAnchorName() (string, error) {
	begin := s.pos
	for !s.eof() && isAnchorChar(s.cur()) {
		s.adv()
	}
	if s.pos == begin {
		return "", s.errorf("expected anchor name")
	}
	return string(s.src[begin:s.pos]), nil
}

// scanProperties consumes any `&anchor` and `!tag` properties before a
// node, in either order, possibly on their own lines.
func (s *Scanner) scanProperties() (anchor, tag string, err error) {
	for !s.eof() {
		switch s.cur() {
		case '&':
			if anchor != "" {
				return "", "", s.errorf("second anchor on one node")
			}
			s.adv()
			anchor, err = s.scanAnchorName()
			if err != nil {
				return "", "", err
			}
			s.skipToToken()
		case '!':
			if tag != "" {
				return "", "", s.errorf("second tag on one node")
			}
			begin := s.pos
			for !s.eof() && !isInline(s.cur()) && s.cur() != '\n' &&
				s.cur() != ',' && s.cur() != ']' && s.cur() != '}' {
				s.adv()
			}
			tag = string(s.src[begin:s.pos])
			s.skipToToken()
		default:
			return anchor, tag, nil
		}
	}
	return anchor, tag, nil
}

// parseNode parses one node starting at the current token. minCol is the
// leftmost column the node's own text may start at; content left of it
// belongs to an enclosing construct, making the node an empty scalar.
// allowMap permits the node to begin a block mapping; it is false for
// values written on the same line as their key.
func (s *Scanner) parseNode(minCol int, allowMap bool) error {
	start := s.mark()
	startLine := s.line
	anchor, tag, err := s.scanProperties()
	if err != nil {
		return err
	}
	if s.line > startLine {
		// Properties ended their line, as in `key: &a` with the value
		// indented below it; the node starts in line-start context,
		// where block collections are allowed again.
		allowMap = true
	}
	if s.eof() || s.col < minCol || s.atDocumentMarker("...") {
		// Properties with no node, as in `key: !tag` followed by a
		// sibling key.
		end := start
		if anchor == "" && tag == "" {
			end = s.mark()
			start = end
		}
		s.emit(&Event{Kind: EventScalar, Start: start, End: end, Style: Plain, Anchor: anchor, Tag: tag})
		return nil
	}
	if anchor == "" && tag == "" {
		start = s.mark()
	}

	switch {
	case s.cur() == '*':
		s.adv()
		name, err := s.scanAnchorName()
		if err != nil {
			return err
		}
		s.emit(&Event{Kind: EventAlias, Start: start, End: s.mark(), Value: name})
		return nil
	case s.cur() == '[':
		return s.flowSeq(start, anchor, tag)
	case s.cur() == '{':
		return s.flowMap(start, anchor, tag)
	case s.atDashEntry():
		if !allowMap {
			return s.errorf("block sequence entries are not allowed here")
		}
		return s.blockSeq(start, s.col, anchor, tag)
	default:
		ev, err := s.scanScalarToken(false)
		if err != nil {
			return err
		}
		s.skipInline()
		if s.atColonSep() {
			if !allowMap {
				return s.errorf("mapping values are not allowed here")
			}
			return s.blockMap(start, ev, anchor, tag)
		}
		ev.Start, ev.Anchor, ev.Tag = start, anchor, tag
		s.emit(ev)
		return nil
	}
}

// blockMap parses a block mapping whose first key has already been scanned.
// The current position is at the `:` separator after that key.
func (s *Scanner) blockMap(start token.Marker, firstKey *Event, anchor, tag string) error {
	col := firstKey.Start.Column
	s.emit(&Event{Kind: EventMappingStart, Start: start, End: start, Anchor: anchor, Tag: tag})
	key := firstKey
	for {
		s.emit(key)
		s.adv() // ':'
		s.skipInline()
		if s.atEOL() {
			afterKey := s.mark()
			s.skipToToken()
			switch {
			case s.eof() || s.col < col || s.atDocumentMarker("..."):
				s.emit(&Event{Kind: EventScalar, Start: afterKey, End: afterKey, Style: Plain})
			case s.col == col && s.atDashEntry():
				// A sequence value may sit at the key's own column.
				if err := s.blockSeq(s.mark(), col, "", ""); err != nil {
					return err
				}
			case s.col == col:
				s.emit(&Event{Kind: EventScalar, Start: afterKey, End: afterKey, Style: Plain})
			default:
				if err := s.parseNode(col+1, true); err != nil {
					return err
				}
			}
		} else {
			if err := s.parseNode(col+1, false); err != nil {
				return err
			}
		}
		s.skipToToken()
		if s.eof() || s.col < col || s.atDocumentMarker("...") {
			m := s.mark()
			s.emit(&Event{Kind: EventMappingEnd, Start: m, End: m})
			return nil
		}
		if s.col > col {
			return s.errorf("bad indentation of a mapping entry")
		}
		if s.atDashEntry() {
			return s.errorf("expected a mapping key")
		}
		next, err := s.scanScalarToken(false)
		if err != nil {
			return err
		}
		s.skipInline()
		if !s.atColonSep() {
			return s.errorf("expected ':' after mapping key")
		}
		key = next
	}
}

// blockSeq parses a block sequence whose first `-` is at the current
// position, at column col.
func (s *Scanner) blockSeq(start token.Marker, col int, anchor, tag string) error {
	s.emit(&Event{Kind: EventSequenceStart, Start: start, End: start, Anchor: anchor, Tag: tag})
	for {
		s.adv() // '-'
		s.skipInline()
		if s.atEOL() {
			afterDash := s.mark()
			s.skipToToken()
			if s.eof() || s.col <= col || s.atDocumentMarker("...") {
				s.emit(&Event{Kind: EventScalar, Start: afterDash, End: afterDash, Style: Plain})
			} else if err := s.parseNode(col+1, true); err != nil {
				return err
			}
		} else {
			if err := s.parseNode(col+1, true); err != nil {
				return err
			}
		}
		s.skipToToken()
		if s.eof() || s.col < col || s.atDocumentMarker("...") {
			m := s.mark()
			s.emit(&Event{Kind: EventSequenceEnd, Start: m, End: m})
			return nil
		}
		if s.col > col {
			return s.errorf("bad indentation of a sequence entry")
		}
		if !s.atDashEntry() {
			// Continuation of an enclosing mapping at the same column.
			m := s.mark()
			s.emit(&Event{Kind: EventSequenceEnd, Start: m, End: m})
			return nil
		}
	}
}

func (s *Scanner) flowSeq(start token.Marker, anchor, tag string) error {
	s.emit(&Event{Kind: EventSequenceStart, Start: start, End: start, Anchor: anchor, Tag: tag})
	s.adv() // '['
	for {
		s.skipToToken()
		if s.eof() {
			return s.errorf("unexpected end of input in flow sequence")
		}
		if s.cur() == ']' {
			s.adv()
			m := s.mark()
			s.emit(&Event{Kind: EventSequenceEnd, Start: m, End: m})
			return nil
		}
		if err := s.flowNode(); err != nil {
			return err
		}
		s.skipToToken()
		if s.eof() {
			return s.errorf("unexpected end of input in flow sequence")
		}
		switch s.cur() {
		case ',':
			s.adv()
		case ']':
		default:
			return s.errorf("expected ',' or ']' in flow sequence")
		}
	}
}

func (s *Scanner) flowMap(start token.Marker, anchor, tag string) error {
	s.emit(&Event{Kind: EventMappingStart, Start: start, End: start, Anchor: anchor, Tag: tag})
	s.adv() // '{'
	for {
		s.skipToToken()
		if s.eof() {
			return s.errorf("unexpected end of input in flow mapping")
		}
		if s.cur() == '}' {
			s.adv()
			m := s.mark()
			s.emit(&Event{Kind: EventMappingEnd, Start: m, End: m})
			return nil
		}
		key, err := s.scanScalarToken(true)
		if err != nil {
			return err
		}
		s.emit(key)
		s.skipToToken()
		if s.eof() || s.cur() != ':' {
			return s.errorf("expected ':' in flow mapping")
		}
		s.adv()
		s.skipToToken()
		if !s.eof() && (s.cur() == ',' || s.cur() == '}') {
			m := s.mark()
			s.emit(&Event{Kind: EventScalar, Start: m, End: m, Style: Plain})
		} else if err := s.flowNode(); err != nil {
			return err
		}
		s.skipToToken()
		if s.eof() {
			return s.errorf("unexpected end of input in flow mapping")
		}
		switch s.cur() {
		case ',':
			s.adv()
		case '}':
		default:
			return s.errorf("expected ',' or '}' in flow mapping")
		}
	}
}

// flowNode parses one node in flow context.
func (s *Scanner) flowNode() error {
	start := s.mark()
	anchor, tag, err := s.scanProperties()
	if err != nil {
		return err
	}
	if anchor == "" && tag == "" {
		start = s.mark()
	}
	if s.eof() {
		return s.errorf("unexpected end of input in flow collection")
	}
	switch s.cur() {
	case '*':
		s.adv()
		name, err := s.scanAnchorName()
		if err != nil {
			return err
		}
		s.emit(&Event{Kind: EventAlias, Start: start, End: s.mark(), Value: name})
		return nil
	case '[':
		return s.flowSeq(start, anchor, tag)
	case '{':
		return s.flowMap(start, anchor, tag)
	default:
		ev, err := s.scanScalarToken(true)
		if err != nil {
			return err
		}
		ev.Start, ev.Anchor, ev.Tag = start, anchor, tag
		s.emit(ev)
		return nil
	}
}

// scanScalarToken scans one plain or quoted scalar on the current line and
// returns it as an unemitted event.
func (s *Scanner) scanScalarToken(inFlow bool) (*Event, error) {
	start := s.mark()
	switch s.cur() {
	case '\'':
		return s.scanSingleQuoted(start)
	case '"':
		return s.scanDoubleQuoted(start)
	case ',', ']', '}', '\n':
		return nil, s.errorf("unexpected character %q", s.cur())
	}
	begin := s.pos
	for !s.eof() {
		c := s.cur()
		if c == '\n' {
			break
		}
		if c == '#' && s.pos > begin && isInline(s.src[s.pos-1]) {
			break
		}
		if c == ':' {
			n := s.peekAt(1)
			if n == 0 || n == ' ' || n == '\t' || n == '\r' || n == '\n' ||
				inFlow && (n == ',' || n == ']' || n == '}') {
				break
			}
		}
		if inFlow && (c == ',' || c == ']' || c == '}' || c == '[' || c == '{') {
			break
		}
		s.adv()
	}
	raw := s.src[begin:s.pos]
	trimmed := strings.TrimRight(string(raw), " \t\r")
	if trimmed == "" {
		return nil, s.errorf("expected a scalar")
	}
	end := token.Marker{
		Offset: begin + len(trimmed),
		Line:   start.Line,
		Column: start.Column + utf8.RuneCountInString(trimmed),
	}
	return &Event{Kind: EventScalar, Start: start, End: end, Value: trimmed, Style: Plain}, nil
}

func (s *Scanner) scanSingleQuoted(start token.Marker) (*Event, error) {
	s.adv() // opening quote
	var b strings.Builder
	for {
		if s.eof() || s.cur() == '\n' {
			return nil, s.errorf("unterminated single-quoted scalar")
		}
		if s.cur() == '\'' {
			if s.peekAt(1) == '\'' {
				b.WriteByte('\'')
				s.adv()
				s.adv()
				continue
			}
			s.adv()
			return &Event{Kind: EventScalar, Start: start, End: s.mark(), Value: b.String(), Style: SingleQuoted}, nil
		}
		b.WriteByte(s.cur())
		s.adv()
	}
}

func (s *Scanner) scanDoubleQuoted(start token.Marker) (*Event, error) {
	s.adv() // opening quote
	var b strings.Builder
	for {
		if s.eof() || s.cur() == '\n' {
			return nil, s.errorf("unterminated double-quoted scalar")
		}
		c := s.cur()
		switch c {
		case '"':
			s.adv()
			return &Event{Kind: EventScalar, Start: start, End: s.mark(), Value: b.String(), Style: DoubleQuoted}, nil
		case '\\':
			s.adv()
			if s.eof() {
				return nil, s.errorf("unterminated escape sequence")
			}
			switch e := s.cur(); e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case '\\', '"', '\'', '/':
				b.WriteByte(e)
			default:
				return nil, s.errorf("unsupported escape sequence \\%c", e)
			}
			s.adv()
		default:
			b.WriteByte(c)
			s.adv()
		}
	}
}
