package pptx

import (
	"fmt"
	"strings"
)

const contentTypesNS = "http://schemas.openxmlformats.org/package/2006/content-types"

type ctDefault struct {
	ext  string
	mime string
}

type ctOverride struct {
	part string // package-absolute, no leading slash
	mime string
}

// contentTypes accumulates the [Content_Types].xml manifest. Entries
// serialize in insertion order so equal decks produce equal bytes.
type contentTypes struct {
	defaults  []ctDefault
	overrides []ctOverride
	byExt     map[string]string
	byPart    map[string]int // index into overrides
}

func newContentTypes() *contentTypes {
	return &contentTypes{
		byExt:  make(map[string]string),
		byPart: make(map[string]int),
	}
}

// registerDefault declares the MIME type for a file extension. Registering
// the same (ext, mime) pair again is a no-op; a different mime for a seen
// extension is a caller bug.
func (ct *contentTypes) registerDefault(ext, mime string) error {
	ext = strings.ToLower(ext)
	if prev, ok := ct.byExt[ext]; ok {
		if prev != mime {
			return fmt.Errorf("%w: extension %q already registered as %q, got %q", ErrContentTypeConflict, ext, prev, mime)
		}
		return nil
	}
	ct.byExt[ext] = mime
	ct.defaults = append(ct.defaults, ctDefault{ext: ext, mime: mime})
	return nil
}

// registerOverride declares the MIME type for one exact part. Last write
// wins; the entry keeps its original position.
func (ct *contentTypes) registerOverride(part, mime string) {
	if i, ok := ct.byPart[part]; ok {
		ct.overrides[i].mime = mime
		return
	}
	ct.byPart[part] = len(ct.overrides)
	ct.overrides = append(ct.overrides, ctOverride{part: part, mime: mime})
}

// serialize emits [Content_Types].xml: every Default first, then every
// Override, each in insertion order.
func (ct *contentTypes) serialize() []byte {
	var b strings.Builder
	b.WriteString(xmlDecl)
	b.WriteString(`<Types xmlns="` + contentTypesNS + `">`)
	for _, d := range ct.defaults {
		b.WriteString(`<Default Extension="` + escapeXML(d.ext) + `" ContentType="` + escapeXML(d.mime) + `"/>`)
	}
	for _, o := range ct.overrides {
		b.WriteString(`<Override PartName="/` + escapeXML(o.part) + `" ContentType="` + escapeXML(o.mime) + `"/>`)
	}
	b.WriteString(`</Types>`)
	return []byte(b.String())
}
