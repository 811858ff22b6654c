package ir

import (
	"fmt"
	"strings"
)

type pathKind uint8

const (
	rootPath pathKind = iota
	seqPath
	mapPath
	aliasPath
	unknownPath
)

// Path describes a position in a value tree, for diagnostics and callbacks
// only. Paths are chained through parent pointers into the caller's stack
// frames: a child Path is built on entry to a recursive decode step and
// discarded when that step returns.
type Path struct {
	parent *Path
	kind   pathKind
	index  int
	key    string
}

// RootPath returns the path of the document root.
func RootPath() Path {
	return Path{kind: rootPath}
}

// Seq returns the path of the element at index under p.
func (p *Path) Seq(index int) Path {
	return Path{parent: p, kind: seqPath, index: index}
}

// Map returns the path of the entry under key under p.
func (p *Path) Map(key string) Path {
	return Path{parent: p, kind: mapPath, key: key}
}

// Alias returns the path of an alias use under p.
func (p *Path) Alias() Path {
	return Path{parent: p, kind: aliasPath}
}

// Unknown returns the path of an unidentifiable position under p.
func (p *Path) Unknown() Path {
	return Path{parent: p, kind: unknownPath}
}

// String renders the path like `a.b[2].c`; the root renders as `.` and
// unknown segments render with a trailing `?`.
func (p Path) String() string {
	var b strings.Builder
	p.render(&b)
	return b.String()
}

func (p *Path) render(b *strings.Builder) {
	switch p.kind {
	case rootPath:
		b.WriteByte('.')
	case seqPath:
		p.parent.render(b)
		fmt.Fprintf(b, "[%d]", p.index)
	case mapPath:
		p.parent.renderPrefix(b)
		b.WriteString(p.key)
	case aliasPath:
		p.parent.render(b)
	case unknownPath:
		p.parent.renderPrefix(b)
		b.WriteByte('?')
	}
}

// renderPrefix renders the parent followed by a dot separator, except for
// the root, which contributes nothing.
func (p *Path) renderPrefix(b *strings.Builder) {
	if p.kind == rootPath {
		return
	}
	p.render(b)
	b.WriteByte('.')
}
