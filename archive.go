package pptx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
)

// Function variables for testing injection.
var (
	osMkdirAll      = os.MkdirAll
	osWriteFile     = os.WriteFile
	osReadFile      = os.ReadFile
	osRename        = os.Rename
	osRemoveAll     = os.RemoveAll
	zipCreateHeader = func(zw *zip.Writer, h *zip.FileHeader) (io.Writer, error) { return zw.CreateHeader(h) }
	zipClose        = func(zw *zip.Writer) error { return zw.Close() }
)

// archiveEpoch is the fixed timestamp stamped on every archive entry so
// exporting the same deck twice yields byte-identical files.
var archiveEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// stager owns one export's staging tree. The tree is exclusive to a single
// in-flight export; concurrent exports get distinct directories. Part order
// is recorded at stage time and reused during archiving, which keeps the
// archive layout deterministic.
type stager struct {
	root  string
	parts []string // package paths, staging order
}

func newStager(parent string) (*stager, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	root := filepath.Join(parent, "pptx-"+uuid.NewString())
	if err := osMkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create staging dir: %v", ErrPackagingIO, err)
	}
	return &stager{root: root}, nil
}

// stage writes one rendered part (or image blob) into the staging tree,
// creating intermediate directories as needed.
func (st *stager) stage(part string, data []byte) error {
	disk := filepath.Join(st.root, filepath.FromSlash(part))
	if err := osMkdirAll(filepath.Dir(disk), 0o755); err != nil {
		return fmt.Errorf("%w: stage %s: %v", ErrPackagingIO, part, err)
	}
	if err := osWriteFile(disk, data, 0o644); err != nil {
		return fmt.Errorf("%w: stage %s: %v", ErrPackagingIO, part, err)
	}
	st.parts = append(st.parts, part)
	return nil
}

// staged reports whether part has been written to the staging tree.
func (st *stager) staged(part string) bool {
	for _, p := range st.parts {
		if p == part {
			return true
		}
	}
	return false
}

// archive compresses the staged parts into a ZIP at outputPath. Entry names
// are the package paths themselves, so the package root is the archive
// root. The archive is built beside outputPath and renamed into place only
// after a successful close; a failed export never touches outputPath.
func (st *stager) archive(outputPath string, method CompressionMethod) (err error) {
	tmp := outputPath + ".partial-" + uuid.NewString()
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: create archive: %v", ErrPackagingIO, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = osRemoveAll(tmp)
		}
	}()

	zipMethod := zip.Store
	zw := zip.NewWriter(f)
	if method == CompressionDeflate {
		zipMethod = zip.Deflate
		zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, flate.DefaultCompression)
		})
	}

	for _, part := range st.parts {
		data, rerr := osReadFile(filepath.Join(st.root, filepath.FromSlash(part)))
		if rerr != nil {
			_ = zipClose(zw)
			return fmt.Errorf("%w: read staged %s: %v", ErrPackagingIO, part, rerr)
		}
		hdr := &zip.FileHeader{Name: part, Method: zipMethod, Modified: archiveEpoch}
		w, werr := zipCreateHeader(zw, hdr)
		if werr != nil {
			_ = zipClose(zw)
			return fmt.Errorf("%w: archive %s: %v", ErrPackagingIO, part, werr)
		}
		if _, werr := w.Write(data); werr != nil {
			_ = zipClose(zw)
			return fmt.Errorf("%w: archive %s: %v", ErrPackagingIO, part, werr)
		}
	}
	if cerr := zipClose(zw); cerr != nil {
		return fmt.Errorf("%w: close archive: %v", ErrPackagingIO, cerr)
	}
	if cerr := f.Close(); cerr != nil {
		return fmt.Errorf("%w: close archive: %v", ErrPackagingIO, cerr)
	}
	if rerr := osRename(tmp, outputPath); rerr != nil {
		_ = osRemoveAll(tmp)
		return fmt.Errorf("%w: move archive into place: %v", ErrPackagingIO, rerr)
	}
	return nil
}

// cleanup removes the staging tree. Safe to call more than once; runs
// regardless of export outcome.
func (st *stager) cleanup() {
	_ = osRemoveAll(st.root)
}
