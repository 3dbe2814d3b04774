package pptx

import (
	"fmt"
	"path"
	"strings"
)

const relationshipsNS = "http://schemas.openxmlformats.org/package/2006/relationships"

// scopeRoot is the pseudo-part owning the package-level relationships
// serialized to _rels/.rels.
const scopeRoot = ""

type relEntry struct {
	id      string
	relType string
	target  string // package-absolute, no leading slash
}

type relScope struct {
	source  string
	next    int
	entries []relEntry
}

// relGraph allocates and serializes typed relationships between parts. Each
// scope owns an independent rId counter starting at 1; ids are only unique
// within their scope. Built fresh per export.
type relGraph struct {
	scopes map[string]*relScope
}

func newRelGraph() *relGraph {
	return &relGraph{scopes: make(map[string]*relScope)}
}

// newScope opens the relationship scope owned by sourcePart. Opening an
// already-open scope returns it unchanged.
func (g *relGraph) newScope(sourcePart string) *relScope {
	if s, ok := g.scopes[sourcePart]; ok {
		return s
	}
	s := &relScope{source: sourcePart, next: 1}
	g.scopes[sourcePart] = s
	return s
}

// add allocates the next id in sourcePart's scope for an edge to targetPart.
// The returned id is exactly what the referencing XML must embed; callers
// must never precompute ids.
func (g *relGraph) add(sourcePart, targetPart, relType string) (string, error) {
	s, ok := g.scopes[sourcePart]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScope, sourcePart)
	}
	id := fmt.Sprintf("rId%d", s.next)
	s.next++
	s.entries = append(s.entries, relEntry{id: id, relType: relType, target: targetPart})
	return id, nil
}

// serialize emits sourcePart's .rels file. Targets are written relative to
// the owning part's directory.
func (g *relGraph) serialize(sourcePart string) ([]byte, error) {
	s, ok := g.scopes[sourcePart]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScope, sourcePart)
	}
	var b strings.Builder
	b.WriteString(xmlDecl)
	b.WriteString(`<Relationships xmlns="` + relationshipsNS + `">`)
	for _, e := range s.entries {
		b.WriteString(`<Relationship Id="` + e.id + `" Type="` + escapeXML(e.relType) + `" Target="` + escapeXML(relativeTarget(s.source, e.target)) + `"/>`)
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String()), nil
}

// relsPartFor returns the path of the .rels part owning sourcePart's
// relationships, e.g. "ppt/slides/slide1.xml" -> "ppt/slides/_rels/slide1.xml.rels".
func relsPartFor(sourcePart string) string {
	if sourcePart == scopeRoot {
		return partRootRels
	}
	dir, name := path.Split(sourcePart)
	return dir + "_rels/" + name + ".rels"
}

// relativeTarget rewrites a package-absolute target relative to the source
// part's directory, the form OPC .rels files use.
func relativeTarget(source, target string) string {
	srcDir := path.Dir(source)
	if source == scopeRoot || srcDir == "." {
		return target
	}
	src := strings.Split(srcDir, "/")
	tgt := strings.Split(target, "/")
	shared := 0
	for shared < len(src) && shared < len(tgt)-1 && src[shared] == tgt[shared] {
		shared++
	}
	segs := make([]string, 0, len(src)-shared+len(tgt)-shared)
	for i := shared; i < len(src); i++ {
		segs = append(segs, "..")
	}
	segs = append(segs, tgt[shared:]...)
	return strings.Join(segs, "/")
}
