package pptx

import (
	"context"
	"fmt"
)

// structuralSteps counts the package-level progress steps reported after the
// per-slide work: content types, root relationships, presentation
// relationships, presentation part.
const structuralSteps = 4

type exportState uint8

const (
	stateIdle exportState = iota
	stateStaging
	stateArchiving
	stateDone
	stateFailed
)

// exporter is the single-export pipeline. All identifier state (relationship
// counters, content-type maps) lives here and dies with the call; nothing is
// shared across exports.
type exporter struct {
	cfg     exportConfig
	deck    *Deck
	rels    *relGraph
	types   *contentTypes
	st      *stager
	state   exportState
	current int
	total   int
}

// Export builds a presentation package from deck and writes it to
// outputPath, overwriting any existing file. On failure outputPath is left
// untouched: the archive is materialized only after full staging succeeds,
// and the staging tree is removed regardless of outcome.
//
// Cancellation via ctx is cooperative and checked once per slide boundary.
func Export(ctx context.Context, deck *Deck, outputPath string, opts ...ExportOption) error {
	cfg := exportConfig{
		limits:      defaultLimits(),
		compression: CompressionDeflate,
		bulletFont:  "Arial",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()

	e := &exporter{
		cfg:   cfg,
		deck:  deck,
		rels:  newRelGraph(),
		types: newContentTypes(),
		state: stateIdle,
	}
	err := e.run(ctx, outputPath)
	if err != nil {
		e.state = stateFailed
		return err
	}
	e.state = stateDone
	return nil
}

func (e *exporter) run(ctx context.Context, outputPath string) error {
	// Validation happens before any write so a bad deck never touches disk.
	if err := validateDeck(e.deck, e.cfg.limits); err != nil {
		return exportErr(0, "validate", err)
	}
	e.total = len(e.deck.Slides) + structuralSteps

	st, err := newStager(e.cfg.stagingDir)
	if err != nil {
		return exportErr(0, "stage", err)
	}
	e.st = st
	defer st.cleanup()
	e.state = stateStaging

	if err := e.types.registerDefault("rels", mimeRels); err != nil {
		return exportErr(0, "content types", err)
	}
	if err := e.types.registerDefault("xml", mimeXML); err != nil {
		return exportErr(0, "content types", err)
	}
	e.rels.newScope(scopeRoot)
	e.rels.newScope(partPresentation)
	masterRelID, err := e.rels.add(partPresentation, partSlideMaster, relTypeSlideMaster)
	if err != nil {
		return exportErr(0, "relationships", err)
	}

	slideRelIDs := make([]string, 0, len(e.deck.Slides))
	imageCount := 0
	for i := range e.deck.Slides {
		s := &e.deck.Slides[i]
		if cerr := ctx.Err(); cerr != nil {
			return exportErr(s.Number, "cancelled", cerr)
		}
		if err := e.stageSlide(s, &imageCount); err != nil {
			return err
		}
		relID, err := e.rels.add(partPresentation, slidePart(s.Number), relTypeSlide)
		if err != nil {
			return exportErr(s.Number, "relationships", err)
		}
		slideRelIDs = append(slideRelIDs, relID)
		e.report()
	}

	if err := e.stageStructural(masterRelID, slideRelIDs); err != nil {
		return err
	}

	e.state = stateArchiving
	if err := e.st.archive(outputPath, e.cfg.compression); err != nil {
		return exportErr(0, "archive", err)
	}
	return nil
}

// stageSlide renders and stages one slide part, its .rels file, and its
// image blob if present.
func (e *exporter) stageSlide(s *Slide, imageCount *int) error {
	part := slidePart(s.Number)
	e.rels.newScope(part)
	if _, err := e.rels.add(part, partSlideLayout, relTypeSlideLayout); err != nil {
		return exportErr(s.Number, "relationships", err)
	}

	imageRelID := ""
	imagePath := ""
	var imageData []byte
	if s.Image != nil {
		data, err := s.Image.Source.Bytes()
		if err != nil {
			return exportErr(s.Number, "read image", fmt.Errorf("%w: %v", ErrPackagingIO, err))
		}
		if uint64(len(data)) > e.cfg.limits.MaxImageBytes {
			return exportErr(s.Number, "read image", fmt.Errorf("%w: image too large", ErrLimitExceeded))
		}
		*imageCount++
		imagePath = mediaPart(*imageCount)
		imageData = data
		imageRelID, err = e.rels.add(part, imagePath, relTypeImage)
		if err != nil {
			return exportErr(s.Number, "relationships", err)
		}
		if err := e.types.registerDefault("png", mimePNG); err != nil {
			return exportErr(s.Number, "content types", err)
		}
	}

	xml, err := renderSlideXML(s, imageRelID, e.cfg.bulletFont)
	if err != nil {
		return exportErr(s.Number, "render", err)
	}
	if err := e.st.stage(part, xml); err != nil {
		return exportErr(s.Number, "stage", err)
	}
	rels, err := e.rels.serialize(part)
	if err != nil {
		return exportErr(s.Number, "relationships", err)
	}
	if err := e.st.stage(relsPartFor(part), rels); err != nil {
		return exportErr(s.Number, "stage", err)
	}
	if imagePath != "" {
		if err := e.st.stage(imagePath, imageData); err != nil {
			return exportErr(s.Number, "stage", err)
		}
	}
	e.types.registerOverride(part, mimeSlide)
	return nil
}

// stageStructural renders and stages the package-level parts, reporting one
// progress step per structural group.
func (e *exporter) stageStructural(masterRelID string, slideRelIDs []string) error {
	// Content types. Every override must be registered before serializing.
	e.types.registerOverride(partPresentation, mimePresentation)
	e.types.registerOverride(partSlideMaster, mimeSlideMaster)
	e.types.registerOverride(partSlideLayout, mimeSlideLayout)
	e.types.registerOverride(partTheme, mimeTheme)
	e.types.registerOverride(partCoreProps, mimeCoreProps)
	e.types.registerOverride(partAppProps, mimeAppProps)
	if err := e.st.stage(partContentTypes, e.types.serialize()); err != nil {
		return exportErr(0, "content types", err)
	}
	e.report()

	// Root relationships.
	if _, err := e.rels.add(scopeRoot, partPresentation, relTypeOfficeDocument); err != nil {
		return exportErr(0, "relationships", err)
	}
	if _, err := e.rels.add(scopeRoot, partCoreProps, relTypeCoreProps); err != nil {
		return exportErr(0, "relationships", err)
	}
	if _, err := e.rels.add(scopeRoot, partAppProps, relTypeAppProps); err != nil {
		return exportErr(0, "relationships", err)
	}
	rootRels, err := e.rels.serialize(scopeRoot)
	if err != nil {
		return exportErr(0, "relationships", err)
	}
	if err := e.st.stage(partRootRels, rootRels); err != nil {
		return exportErr(0, "stage", err)
	}
	e.report()

	// Presentation relationships.
	presRels, err := e.rels.serialize(partPresentation)
	if err != nil {
		return exportErr(0, "relationships", err)
	}
	if err := e.st.stage(partPresentationRels, presRels); err != nil {
		return exportErr(0, "stage", err)
	}
	e.report()

	// Presentation part plus the structural skeleton it depends on.
	if err := e.st.stage(partPresentation, renderPresentationXML(masterRelID, slideRelIDs)); err != nil {
		return exportErr(0, "stage", err)
	}
	if err := e.stageSkeleton(); err != nil {
		return err
	}
	e.report()
	return nil
}

// stageSkeleton stages the master, layout, theme, and document-property
// parts every conforming package carries.
func (e *exporter) stageSkeleton() error {
	e.rels.newScope(partSlideMaster)
	layoutRelID, err := e.rels.add(partSlideMaster, partSlideLayout, relTypeSlideLayout)
	if err != nil {
		return exportErr(0, "relationships", err)
	}
	if _, err := e.rels.add(partSlideMaster, partTheme, relTypeTheme); err != nil {
		return exportErr(0, "relationships", err)
	}
	e.rels.newScope(partSlideLayout)
	if _, err := e.rels.add(partSlideLayout, partSlideMaster, relTypeSlideMaster); err != nil {
		return exportErr(0, "relationships", err)
	}

	fontFamily := ""
	if len(e.deck.Slides) > 0 {
		fontFamily = e.deck.Slides[0].Design.FontFamily
	}

	staged := []struct {
		part string
		data []byte
	}{
		{partSlideMaster, renderSlideMasterXML(layoutRelID)},
		{partSlideLayout, renderSlideLayoutXML()},
		{partTheme, renderThemeXML(fontFamily)},
		{partCoreProps, renderCorePropsXML(e.deck.Title, e.cfg.creator)},
		{partAppProps, renderAppPropsXML(len(e.deck.Slides))},
	}
	for _, p := range staged {
		if err := e.st.stage(p.part, p.data); err != nil {
			return exportErr(0, "stage", err)
		}
	}
	for _, scopePart := range []string{partSlideMaster, partSlideLayout} {
		rels, err := e.rels.serialize(scopePart)
		if err != nil {
			return exportErr(0, "relationships", err)
		}
		if err := e.st.stage(relsPartFor(scopePart), rels); err != nil {
			return exportErr(0, "stage", err)
		}
	}
	return nil
}

// report delivers the next (current, total) progress pair. Calls are
// strictly increasing in current.
func (e *exporter) report() {
	e.current++
	if e.cfg.progress != nil {
		e.cfg.progress(e.current, e.total)
	}
}
