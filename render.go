package pptx

import (
	"fmt"
	"strings"
)

const xmlDecl = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// OOXML namespaces referenced by presentation parts.
const (
	nsDrawing  = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsRelsAttr = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPresent  = "http://schemas.openxmlformats.org/presentationml/2006/main"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// escapeXML escapes user text before it is embedded in a part. Unescaped
// text yields a package most viewers reject without diagnostic, so every
// string that originates outside this package goes through here.
func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

type box struct {
	x, y, cx, cy int64
}

// Fixed text and image geometry in EMU. Image boxes are keyed by position
// hint only; the source image's aspect ratio is deliberately not consulted.
var (
	titleBox = box{x: 457200, y: 274638, cx: 8229600, cy: 1143000}
	bodyBox  = box{x: 457200, y: 1600200, cx: 8229600, cy: 4525963}

	imageBoxes = map[ImagePosition]box{
		ImageRight:  {x: 4800600, y: 1600200, cx: 3886200, cy: 2971800},
		ImageLeft:   {x: 457200, y: 1600200, cx: 3886200, cy: 2971800},
		ImageTop:    {x: 2971800, y: 274638, cx: 3200400, cy: 2400300},
		ImageBottom: {x: 2971800, y: 4183063, cx: 3200400, cy: 2400300},
		ImageCenter: {x: 2514600, y: 1943100, cx: 4114800, cy: 2971800},
	}
)

func slidePart(n int) string { return fmt.Sprintf("ppt/slides/slide%d.xml", n) }
func mediaPart(n int) string { return fmt.Sprintf("ppt/media/image%d.png", n) }

func writeXfrm(b *strings.Builder, g box) {
	fmt.Fprintf(b, `<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, g.x, g.y, g.cx, g.cy)
}

// spTree boilerplate every cSld carries before its shapes.
const spTreeHeader = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

func openTag(root string) string {
	return `<p:` + root + ` xmlns:a="` + nsDrawing + `" xmlns:r="` + nsRelsAttr + `" xmlns:p="` + nsPresent + `">`
}

// renderSlideXML produces one slide part. imageRelID is the relationship id
// allocated for the slide's image, empty when the slide has none; the
// caller allocates it so the id embedded here always matches the slide's
// .rels file.
func renderSlideXML(s *Slide, imageRelID, bulletFont string) ([]byte, error) {
	bg, err := normalizeHexColor(s.Design.BackgroundColor)
	if err != nil {
		return nil, fmt.Errorf("%w: background color: %v", ErrValidation, err)
	}
	txt, err := normalizeHexColor(s.Design.TextColor)
	if err != nil {
		return nil, fmt.Errorf("%w: text color: %v", ErrValidation, err)
	}
	sizes, ok := tierSizes[s.Design.FontSize]
	if !ok {
		return nil, fmt.Errorf("%w: unknown font size tier %d", ErrValidation, s.Design.FontSize)
	}
	titlePts, bodyPts := sizes[0], sizes[1]

	var b strings.Builder
	b.WriteString(xmlDecl)
	b.WriteString(openTag("sld"))
	b.WriteString(`<p:cSld>`)

	// Solid background from the validated hex.
	b.WriteString(`<p:bg><p:bgPr><a:solidFill><a:srgbClr val="` + bg + `"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`)

	b.WriteString(`<p:spTree>`)
	b.WriteString(spTreeHeader)

	writeTitleShape(&b, s, titlePts, txt)
	writeBodyShape(&b, s, bodyPts, txt, bulletFont)
	if s.Image != nil && imageRelID != "" {
		writeImageShape(&b, s, imageRelID)
	}

	b.WriteString(`</p:spTree>`)
	b.WriteString(`</p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:sld>`)
	return []byte(b.String()), nil
}

func writeTitleShape(b *strings.Builder, s *Slide, pts int, txtColor string) {
	b.WriteString(`<p:sp>`)
	b.WriteString(`<p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>`)
	b.WriteString(`<p:spPr>`)
	writeXfrm(b, titleBox)
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`)
	b.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/><a:p>`)
	writeRun(b, s.Title, pts, true, txtColor, s.Design.FontFamily)
	b.WriteString(`</a:p></p:txBody>`)
	b.WriteString(`</p:sp>`)
}

func writeBodyShape(b *strings.Builder, s *Slide, pts int, txtColor, bulletFont string) {
	b.WriteString(`<p:sp>`)
	b.WriteString(`<p:nvSpPr><p:cNvPr id="3" name="Content 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr>`)
	b.WriteString(`<p:spPr>`)
	writeXfrm(b, bodyBox)
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`)
	b.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/>`)

	wrote := false
	for _, line := range strings.Split(s.Body, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		wrote = true
		b.WriteString(`<a:p><a:pPr>`)
		if glyph, ok := bulletGlyphs[s.Design.Bullet]; ok {
			b.WriteString(`<a:buFont typeface="` + escapeXML(bulletFont) + `"/><a:buChar char="` + escapeXML(glyph) + `"/>`)
		} else {
			b.WriteString(`<a:buNone/>`)
		}
		b.WriteString(`</a:pPr>`)
		writeRun(b, line, pts, false, txtColor, s.Design.FontFamily)
		b.WriteString(`</a:p>`)
	}
	if !wrote {
		// A txBody must contain at least one paragraph.
		b.WriteString(`<a:p><a:endParaRPr lang="en-US"/></a:p>`)
	}
	b.WriteString(`</p:txBody>`)
	b.WriteString(`</p:sp>`)
}

func writeRun(b *strings.Builder, text string, pts int, bold bool, txtColor, family string) {
	// sz is hundredths of a point.
	fmt.Fprintf(b, `<a:r><a:rPr lang="en-US" sz="%d"`, pts*100)
	if bold {
		b.WriteString(` b="1"`)
	}
	b.WriteString(`><a:solidFill><a:srgbClr val="` + txtColor + `"/></a:solidFill>`)
	if family != "" {
		b.WriteString(`<a:latin typeface="` + escapeXML(family) + `"/>`)
	}
	b.WriteString(`</a:rPr><a:t>` + escapeXML(text) + `</a:t></a:r>`)
}

func writeImageShape(b *strings.Builder, s *Slide, relID string) {
	g := imageBoxes[s.Design.ImagePos]
	b.WriteString(`<p:pic>`)
	fmt.Fprintf(b, `<p:nvPicPr><p:cNvPr id="4" name="Image %d"/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`, s.Number)
	b.WriteString(`<p:blipFill><a:blip r:embed="` + relID + `"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`)
	b.WriteString(`<p:spPr>`)
	writeXfrm(b, g)
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`)
	b.WriteString(`</p:pic>`)
}

// renderPresentationXML lists the master and every slide by its allocated
// relationship id, in deck order, on the fixed 4:3 canvas.
func renderPresentationXML(masterRelID string, slideRelIDs []string) []byte {
	var b strings.Builder
	b.WriteString(xmlDecl)
	b.WriteString(openTag("presentation"))
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="` + masterRelID + `"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i, id := range slideRelIDs {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="%s"/>`, 256+i, id)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d" type="screen4x3"/>`, slideWidthEMU, slideHeightEMU)
	fmt.Fprintf(&b, `<p:notesSz cx="%d" cy="%d"/>`, notesWidthEMU, notesHeightEMU)
	b.WriteString(`</p:presentation>`)
	return []byte(b.String())
}

// renderSlideMasterXML emits a minimal master that defers styling to the
// theme and declares the single layout.
func renderSlideMasterXML(layoutRelID string) []byte {
	var b strings.Builder
	b.WriteString(xmlDecl)
	b.WriteString(openTag("sldMaster"))
	b.WriteString(`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg><p:spTree>`)
	b.WriteString(spTreeHeader)
	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`)
	b.WriteString(`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="` + layoutRelID + `"/></p:sldLayoutIdLst>`)
	b.WriteString(`</p:sldMaster>`)
	return []byte(b.String())
}

func renderSlideLayoutXML() []byte {
	var b strings.Builder
	b.WriteString(xmlDecl)
	b.WriteString(`<p:sldLayout xmlns:a="` + nsDrawing + `" xmlns:r="` + nsRelsAttr + `" xmlns:p="` + nsPresent + `" type="blank" preserve="1">`)
	b.WriteString(`<p:cSld name="Blank"><p:spTree>`)
	b.WriteString(spTreeHeader)
	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:sldLayout>`)
	return []byte(b.String())
}

// renderThemeXML emits a minimal office theme. majorFont seeds both font
// schemes; everything else is the fixed default palette.
func renderThemeXML(fontFamily string) []byte {
	if fontFamily == "" {
		fontFamily = "Calibri"
	}
	font := escapeXML(fontFamily)
	var b strings.Builder
	b.WriteString(xmlDecl)
	b.WriteString(`<a:theme xmlns:a="` + nsDrawing + `" name="Office Theme">`)
	b.WriteString(`<a:themeElements>`)
	b.WriteString(`<a:clrScheme name="Office">` +
		`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>` +
		`<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>` +
		`<a:dk2><a:srgbClr val="44546A"/></a:dk2>` +
		`<a:lt2><a:srgbClr val="E7E6E6"/></a:lt2>` +
		`<a:accent1><a:srgbClr val="4472C4"/></a:accent1>` +
		`<a:accent2><a:srgbClr val="ED7D31"/></a:accent2>` +
		`<a:accent3><a:srgbClr val="A5A5A5"/></a:accent3>` +
		`<a:accent4><a:srgbClr val="FFC000"/></a:accent4>` +
		`<a:accent5><a:srgbClr val="5B9BD5"/></a:accent5>` +
		`<a:accent6><a:srgbClr val="70AD47"/></a:accent6>` +
		`<a:hlink><a:srgbClr val="0563C1"/></a:hlink>` +
		`<a:folHlink><a:srgbClr val="954F72"/></a:folHlink>` +
		`</a:clrScheme>`)
	b.WriteString(`<a:fontScheme name="Office">` +
		`<a:majorFont><a:latin typeface="` + font + `"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
		`<a:minorFont><a:latin typeface="` + font + `"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
		`</a:fontScheme>`)
	b.WriteString(`<a:fmtScheme name="Office">` +
		`<a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst>` +
		`<a:lnStyleLst>` +
		`<a:ln w="6350" cap="flat" cmpd="sng" algn="ctr"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:prstDash val="solid"/></a:ln>` +
		`<a:ln w="12700" cap="flat" cmpd="sng" algn="ctr"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:prstDash val="solid"/></a:ln>` +
		`<a:ln w="19050" cap="flat" cmpd="sng" algn="ctr"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:prstDash val="solid"/></a:ln>` +
		`</a:lnStyleLst>` +
		`<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>` +
		`<a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst>` +
		`</a:fmtScheme>`)
	b.WriteString(`</a:themeElements>`)
	b.WriteString(`</a:theme>`)
	return []byte(b.String())
}

// renderCorePropsXML emits docProps/core.xml. Timestamps are deliberately
// omitted so equal decks export to byte-identical archives.
func renderCorePropsXML(title, creator string) []byte {
	var b strings.Builder
	b.WriteString(xmlDecl)
	b.WriteString(`<cp:coreProperties` +
		` xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/"` +
		` xmlns:dcterms="http://purl.org/dc/terms/"` +
		` xmlns:dcmitype="http://purl.org/dc/dcmitype/"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	b.WriteString(`<dc:title>` + escapeXML(title) + `</dc:title>`)
	if creator != "" {
		b.WriteString(`<dc:creator>` + escapeXML(creator) + `</dc:creator>`)
	}
	b.WriteString(`</cp:coreProperties>`)
	return []byte(b.String())
}

func renderAppPropsXML(slideCount int) []byte {
	var b strings.Builder
	b.WriteString(xmlDecl)
	b.WriteString(`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"` +
		` xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">`)
	b.WriteString(`<Application>go-pptx</Application>`)
	fmt.Fprintf(&b, `<Slides>%d</Slides>`, slideCount)
	b.WriteString(`<PresentationFormat>On-screen Show (4:3)</PresentationFormat>`)
	b.WriteString(`</Properties>`)
	return []byte(b.String())
}
