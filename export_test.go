package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func sampleDeck(slides int) *Deck {
	d := &Deck{Title: "Sample Deck"}
	for i := 1; i <= slides; i++ {
		d.Slides = append(d.Slides, Slide{
			Number: i,
			Title:  fmt.Sprintf("Slide %d", i),
			Body:   "First point\nSecond point",
			Design: plainDesign(),
		})
	}
	return d
}

// readArchive opens a produced package and returns its entries by name.
func readArchive(t *testing.T, p string) map[string][]byte {
	t.Helper()
	zr, err := zip.OpenReader(p)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		rc.Close()
		if _, dup := out[f.Name]; dup {
			t.Fatalf("duplicate entry %s", f.Name)
		}
		out[f.Name] = buf.Bytes()
	}
	return out
}

type typesManifest struct {
	Defaults []struct {
		Extension   string `xml:"Extension,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Default"`
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

type relsManifest struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

func TestExport_ThreeSlidesNoImages(t *testing.T) {
	out := filepath.Join(t.TempDir(), "deck.pptx")
	if err := Export(context.Background(), sampleDeck(3), out); err != nil {
		t.Fatal(err)
	}
	entries := readArchive(t, out)

	for _, want := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/slide3.xml",
		"ppt/slides/_rels/slide1.xml.rels",
		"ppt/slides/_rels/slide2.xml.rels",
		"ppt/slides/_rels/slide3.xml.rels",
	} {
		if _, ok := entries[want]; !ok {
			t.Errorf("missing entry %s", want)
		}
	}
	for name := range entries {
		if strings.HasPrefix(name, "ppt/slides/slide") && !strings.Contains(name, "_rels") {
			n := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
			if n != "1" && n != "2" && n != "3" {
				t.Errorf("unexpected slide part %s", name)
			}
		}
		if strings.HasPrefix(name, "ppt/media/") {
			t.Errorf("unexpected media entry %s in imageless deck", name)
		}
	}

	// Slide rels carry only layout boilerplate.
	var rels relsManifest
	if err := xml.Unmarshal(entries["ppt/slides/_rels/slide1.xml.rels"], &rels); err != nil {
		t.Fatal(err)
	}
	if len(rels.Relationships) != 1 || rels.Relationships[0].Type != relTypeSlideLayout {
		t.Fatalf("imageless slide rels should hold layout only: %+v", rels.Relationships)
	}

	// Presentation lists slide relationship ids in deck order.
	pres := string(entries["ppt/presentation.xml"])
	var presRels relsManifest
	if err := xml.Unmarshal(entries["ppt/_rels/presentation.xml.rels"], &presRels); err != nil {
		t.Fatal(err)
	}
	idFor := make(map[string]string) // target -> id
	for _, r := range presRels.Relationships {
		idFor[r.Target] = r.ID
	}
	last := -1
	for n := 1; n <= 3; n++ {
		id := idFor[fmt.Sprintf("slides/slide%d.xml", n)]
		if id == "" {
			t.Fatalf("presentation rels missing slide %d: %+v", n, presRels.Relationships)
		}
		i := strings.Index(pres, `r:id="`+id+`"`)
		if i < 0 {
			t.Fatalf("presentation.xml does not reference %s:\n%s", id, pres)
		}
		if i < last {
			t.Fatalf("slide ids out of deck order:\n%s", pres)
		}
		last = i
	}
}

func TestExport_SlideWithImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 1, 2, 3, 4, 5, 6} // 10 bytes
	deck := &Deck{
		Title: "Img",
		Slides: []Slide{{
			Number: 1,
			Title:  `A & B`,
			Body:   "Line <1>\nLine 2",
			Image:  &SlideImage{Source: ImageBytes(png)},
			Design: DesignSpec{
				BackgroundColor: "FFFFFF",
				TextColor:       "000000",
				FontSize:        TierMedium,
				FontFamily:      "Calibri",
				Bullet:          BulletCheckmark,
			},
		}},
	}
	out := filepath.Join(t.TempDir(), "deck.pptx")
	if err := Export(context.Background(), deck, out); err != nil {
		t.Fatal(err)
	}
	entries := readArchive(t, out)

	slideXML := string(entries["ppt/slides/slide1.xml"])
	if !strings.Contains(slideXML, "A &amp; B") {
		t.Errorf("title not escaped:\n%s", slideXML)
	}
	if !strings.Contains(slideXML, "Line &lt;1&gt;") {
		t.Errorf("body not escaped:\n%s", slideXML)
	}
	if got := strings.Count(slideXML, `<a:buChar char="✓"/>`); got != 2 {
		t.Errorf("expected 2 checkmark paragraphs, got %d:\n%s", got, slideXML)
	}
	if got := strings.Count(slideXML, "<p:pic>"); got != 1 {
		t.Errorf("expected 1 image element, got %d", got)
	}

	var rels relsManifest
	if err := xml.Unmarshal(entries["ppt/slides/_rels/slide1.xml.rels"], &rels); err != nil {
		t.Fatal(err)
	}
	images := 0
	for _, r := range rels.Relationships {
		if r.Type == relTypeImage {
			images++
		}
	}
	if images != 1 {
		t.Errorf("expected 1 image relationship, got %d: %+v", images, rels.Relationships)
	}

	if !bytes.Equal(entries["ppt/media/image1.png"], png) {
		t.Errorf("image bytes not preserved: %v", entries["ppt/media/image1.png"])
	}
}

func TestExport_BadColorFailsBeforeWrite(t *testing.T) {
	deck := sampleDeck(1)
	deck.Slides[0].Design.BackgroundColor = "red"
	dir := t.TempDir()
	out := filepath.Join(dir, "deck.pptx")
	staging := filepath.Join(dir, "staging")
	if err := os.Mkdir(staging, 0o755); err != nil {
		t.Fatal(err)
	}

	err := Export(context.Background(), deck, out, WithStagingDir(staging))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, serr := os.Stat(out); !os.IsNotExist(serr) {
		t.Error("output path must be untouched")
	}
	left, err := os.ReadDir(staging)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("validation failure must not write anything, found %v", left)
	}
}

func TestExport_EmptyDeck(t *testing.T) {
	out := filepath.Join(t.TempDir(), "deck.pptx")
	err := Export(context.Background(), &Deck{Title: "empty"}, out)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, serr := os.Stat(out); !os.IsNotExist(serr) {
		t.Error("output path must be untouched")
	}
}

func TestExport_StagingFailure(t *testing.T) {
	orig := osWriteFile
	calls := 0
	osWriteFile = func(name string, data []byte, perm os.FileMode) error {
		calls++
		if calls == 3 {
			return errors.New("no space left on device")
		}
		return orig(name, data, perm)
	}
	defer func() { osWriteFile = orig }()

	dir := t.TempDir()
	out := filepath.Join(dir, "deck.pptx")
	staging := filepath.Join(dir, "staging")
	if err := os.Mkdir(staging, 0o755); err != nil {
		t.Fatal(err)
	}

	err := Export(context.Background(), sampleDeck(3), out, WithStagingDir(staging))
	if !errors.Is(err, ErrPackagingIO) {
		t.Fatalf("expected ErrPackagingIO, got %v", err)
	}
	if _, serr := os.Stat(out); !os.IsNotExist(serr) {
		t.Error("output path must be untouched on staging failure")
	}
	left, rerr := os.ReadDir(staging)
	if rerr != nil {
		t.Fatal(rerr)
	}
	if len(left) != 0 {
		t.Errorf("staging tree must be cleaned up, found %v", left)
	}
}

func TestExport_Idempotent(t *testing.T) {
	deck := sampleDeck(2)
	deck.Slides[1].Image = &SlideImage{Source: ImageBytes{9, 9, 9}}
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pptx")
	b := filepath.Join(dir, "b.pptx")
	if err := Export(context.Background(), deck, a); err != nil {
		t.Fatal(err)
	}
	if err := Export(context.Background(), deck, b); err != nil {
		t.Fatal(err)
	}
	ab, err := os.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	bb, err := os.ReadFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ab, bb) {
		t.Fatal("exporting the same deck twice must yield byte-identical archives")
	}
}

func TestExport_OverwritesExistingOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "deck.pptx")
	if err := os.WriteFile(out, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Export(context.Background(), sampleDeck(1), out); err != nil {
		t.Fatal(err)
	}
	entries := readArchive(t, out)
	if _, ok := entries["ppt/slides/slide1.xml"]; !ok {
		t.Fatal("existing file was not replaced by the new archive")
	}
}

var refPattern = regexp.MustCompile(`r:(?:id|embed)="(rId[0-9]+)"`)

func TestExport_RelationshipIntegrity(t *testing.T) {
	deck := sampleDeck(3)
	deck.Slides[0].Image = &SlideImage{Source: ImageBytes{1, 2}}
	deck.Slides[2].Image = &SlideImage{Source: ImageBytes{3, 4}}
	out := filepath.Join(t.TempDir(), "deck.pptx")
	if err := Export(context.Background(), deck, out); err != nil {
		t.Fatal(err)
	}
	entries := readArchive(t, out)

	check := func(part string) {
		relsName := relsPartFor(part)
		var rels relsManifest
		if err := xml.Unmarshal(entries[relsName], &rels); err != nil {
			t.Fatalf("%s: %v", relsName, err)
		}
		byID := make(map[string]string)
		for _, r := range rels.Relationships {
			resolved := path.Join(path.Dir(part), r.Target)
			if _, ok := entries[resolved]; !ok {
				t.Errorf("%s: relationship %s targets missing part %s", relsName, r.ID, resolved)
			}
			byID[r.ID] = resolved
		}
		for _, m := range refPattern.FindAllStringSubmatch(string(entries[part]), -1) {
			if _, ok := byID[m[1]]; !ok {
				t.Errorf("%s references %s with no matching relationship", part, m[1])
			}
		}
	}
	check("ppt/presentation.xml")
	for n := 1; n <= 3; n++ {
		check(slidePart(n))
	}
}

func TestExport_ContentTypeCompleteness(t *testing.T) {
	deck := sampleDeck(2)
	deck.Slides[0].Image = &SlideImage{Source: ImageBytes{1}}
	out := filepath.Join(t.TempDir(), "deck.pptx")
	if err := Export(context.Background(), deck, out); err != nil {
		t.Fatal(err)
	}
	entries := readArchive(t, out)

	manifests := 0
	for name := range entries {
		if name == "[Content_Types].xml" {
			manifests++
		}
	}
	if manifests != 1 {
		t.Fatalf("expected exactly one [Content_Types].xml, got %d", manifests)
	}

	var types typesManifest
	if err := xml.Unmarshal(entries["[Content_Types].xml"], &types); err != nil {
		t.Fatal(err)
	}
	defaults := make(map[string]bool)
	for _, d := range types.Defaults {
		defaults[d.Extension] = true
	}
	overrides := make(map[string]bool)
	for _, o := range types.Overrides {
		overrides[o.PartName] = true
	}
	for name := range entries {
		if name == "[Content_Types].xml" {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
		if !defaults[ext] && !overrides["/"+name] {
			t.Errorf("entry %s has neither a Default for %q nor an Override", name, ext)
		}
	}
}

func TestExport_ProgressOrder(t *testing.T) {
	deck := sampleDeck(4)
	var pairs [][2]int
	out := filepath.Join(t.TempDir(), "deck.pptx")
	err := Export(context.Background(), deck, out, WithProgress(func(current, total int) {
		pairs = append(pairs, [2]int{current, total})
	}))
	if err != nil {
		t.Fatal(err)
	}
	wantTotal := len(deck.Slides) + structuralSteps
	if len(pairs) != wantTotal {
		t.Fatalf("expected %d progress calls, got %d", wantTotal, len(pairs))
	}
	for i, p := range pairs {
		if p[1] != wantTotal {
			t.Errorf("call %d reported total %d, want %d", i, p[1], wantTotal)
		}
		if p[0] != i+1 {
			t.Errorf("call %d reported current %d, want %d", i, p[0], i+1)
		}
	}
}

func TestExport_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := filepath.Join(t.TempDir(), "deck.pptx")
	err := Export(ctx, sampleDeck(2), out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, serr := os.Stat(out); !os.IsNotExist(serr) {
		t.Error("output path must be untouched after cancellation")
	}
}

type failingSource struct{}

func (failingSource) Bytes() ([]byte, error) { return nil, errors.New("backend unavailable") }

func TestExport_SlideContextInError(t *testing.T) {
	deck := sampleDeck(3)
	deck.Slides[1].Image = &SlideImage{Source: failingSource{}}
	out := filepath.Join(t.TempDir(), "deck.pptx")
	err := Export(context.Background(), deck, out)
	if err == nil {
		t.Fatal("expected error")
	}
	var ee *ExportError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *ExportError, got %T: %v", err, err)
	}
	if ee.Slide != 2 {
		t.Fatalf("expected failure at slide 2, got slide %d", ee.Slide)
	}
	if !strings.Contains(err.Error(), "slide 2") {
		t.Fatalf("error should name the failing slide: %v", err)
	}
}

func TestExport_StoreCompression(t *testing.T) {
	out := filepath.Join(t.TempDir(), "deck.pptx")
	if err := Export(context.Background(), sampleDeck(1), out, WithCompressionMethod(CompressionStore)); err != nil {
		t.Fatal(err)
	}
	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Method != zip.Store {
			t.Errorf("entry %s uses method %d, want Store", f.Name, f.Method)
		}
	}
}

func TestExport_ImageTooLarge(t *testing.T) {
	deck := sampleDeck(1)
	deck.Slides[0].Image = &SlideImage{Source: ImageBytes(make([]byte, 32))}
	out := filepath.Join(t.TempDir(), "deck.pptx")
	err := Export(context.Background(), deck, out, WithLimits(Limits{MaxImageBytes: 16}))
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
}
