// Package pptx writes standards-conformant presentation packages (.pptx),
// the ZIP-based OOXML/OPC container opened by PowerPoint, Keynote, and
// Google Slides, from an in-memory fully-resolved slide deck.
//
// # Package Structure
//
// A produced package contains:
//   - A [Content_Types].xml manifest declaring every part's MIME type
//   - A relationship graph (.rels files) with identifiers scoped per part
//   - One slide part per input slide, plus the presentation, slide master,
//     slide layout, and theme parts every conforming package carries
//   - A media part per slide image
//
// The internal layout is load-bearing: wrong paths or missing relationships
// produce a file that silently fails to open in real viewers.
//
// # Basic Usage
//
//	deck := &pptx.Deck{
//		Title: "Quarterly Review",
//		Slides: []pptx.Slide{
//			{
//				Number: 1,
//				Title:  "Welcome",
//				Body:   "First point\nSecond point",
//				Design: pptx.DesignSpec{
//					BackgroundColor: "#FFFFFF",
//					TextColor:       "1A1A2E",
//					FontSize:        pptx.TierMedium,
//					FontFamily:      "Calibri",
//					Bullet:          pptx.BulletDisc,
//				},
//			},
//		},
//	}
//	err := pptx.Export(context.Background(), deck, "out.pptx")
//
// # Failure Semantics
//
// Input is validated before any disk write. Any packaging failure aborts the
// export, removes the staging tree, and leaves the output path untouched;
// the archive is renamed into place only after staging fully succeeds.
// Errors wrap the sentinel values in errors.go and carry slide-level context
// via [ExportError].
//
// # What This Package Does Not Do
//
// Reading or editing existing packages, animations, charts, and audio/video
// embedding are out of scope. Image placement uses fixed per-hint geometry
// rather than the image's real aspect ratio.
package pptx
