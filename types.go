package pptx

// OPC part paths. Targets inside .rels files are written relative to the
// owning part's directory; these constants are always package-absolute.
const (
	partContentTypes     = "[Content_Types].xml"
	partRootRels         = "_rels/.rels"
	partPresentation     = "ppt/presentation.xml"
	partPresentationRels = "ppt/_rels/presentation.xml.rels"
	partSlideMaster      = "ppt/slideMasters/slideMaster1.xml"
	partSlideMasterRels  = "ppt/slideMasters/_rels/slideMaster1.xml.rels"
	partSlideLayout      = "ppt/slideLayouts/slideLayout1.xml"
	partSlideLayoutRels  = "ppt/slideLayouts/_rels/slideLayout1.xml.rels"
	partTheme            = "ppt/theme/theme1.xml"
	partCoreProps        = "docProps/core.xml"
	partAppProps         = "docProps/app.xml"
)

// MIME types declared in [Content_Types].xml.
const (
	mimeRels         = "application/vnd.openxmlformats-package.relationships+xml"
	mimeXML          = "application/xml"
	mimePNG          = "image/png"
	mimePresentation = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	mimeSlide        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	mimeSlideMaster  = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	mimeSlideLayout  = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	mimeTheme        = "application/vnd.openxmlformats-officedocument.theme+xml"
	mimeCoreProps    = "application/vnd.openxmlformats-package.core-properties+xml"
	mimeAppProps     = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

// Relationship type URIs.
const (
	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeSlideLayout    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeTheme          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeAppProps       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
)

// Canvas geometry in EMU (914400 per inch). The 4:3 canvas and the portrait
// notes size are fixed.
const (
	emuPerInch = 914400

	slideWidthEMU  = 9144000
	slideHeightEMU = 6858000
	notesWidthEMU  = 6858000
	notesHeightEMU = 9144000
)

// FontSizeTier selects the title/body point sizes for a slide.
type FontSizeTier uint8

const (
	TierSmall FontSizeTier = iota
	TierMedium
	TierLarge
	TierExtraLarge
)

// tierSizes maps a tier to (title, body) sizes in points.
var tierSizes = map[FontSizeTier][2]int{
	TierSmall:      {32, 18},
	TierMedium:     {44, 22},
	TierLarge:      {60, 28},
	TierExtraLarge: {72, 32},
}

// BulletStyle selects the glyph prefixed to each body paragraph.
type BulletStyle uint8

const (
	BulletDisc BulletStyle = iota
	BulletCircle
	BulletSquare
	BulletDash
	BulletArrow
	BulletCheckmark
	BulletNone
)

// bulletGlyphs is the closed glyph table. BulletNone is absent on purpose:
// it emits <a:buNone/> instead of a character bullet.
var bulletGlyphs = map[BulletStyle]string{
	BulletDisc:      "●",
	BulletCircle:    "○",
	BulletSquare:    "■",
	BulletDash:      "–",
	BulletArrow:     "→",
	BulletCheckmark: "✓",
}

// ImagePosition hints where on the canvas a slide image is placed. Placement
// uses fixed geometry per hint; the image's real aspect ratio is not
// consulted.
type ImagePosition uint8

const (
	ImageRight ImagePosition = iota
	ImageLeft
	ImageTop
	ImageBottom
	ImageCenter
)

// DesignSpec is the resolved visual styling for one slide, supplied by an
// external design-selection component.
type DesignSpec struct {
	Layout          string
	BackgroundColor string // 6 hex digits, leading '#' optional
	TextColor       string // 6 hex digits, leading '#' optional
	FontSize        FontSizeTier
	FontFamily      string
	ImagePos        ImagePosition
	Bullet          BulletStyle
}

// ImageSource supplies the encoded bytes of a slide image. Bytes is called
// at most once per export, so implementations may read lazily.
type ImageSource interface {
	Bytes() ([]byte, error)
}

// ImageBytes is an in-memory ImageSource.
type ImageBytes []byte

func (b ImageBytes) Bytes() ([]byte, error) { return []byte(b), nil }

// SlideImage attaches PNG data to a slide. Width and Height are the source
// pixel dimensions; they are informational and do not affect placement.
type SlideImage struct {
	Source ImageSource
	Width  int
	Height int
}

// Slide is one fully-resolved slide. Body is newline-delimited; blank lines
// are dropped during rendering.
type Slide struct {
	Number int // 1-based, contiguous across the deck
	Title  string
	Body   string
	Image  *SlideImage
	Design DesignSpec
}

// Deck is an ordered, fully-resolved slide deck.
//
// Slide numbers MUST be contiguous 1..N and list order defines display
// order. A Deck is consumed fresh per Export call; no identifier state is
// retained across calls.
type Deck struct {
	Title  string
	Slides []Slide
}
