package pptx

// ProgressFunc receives (current, total) step counts during an export. Total
// is the slide count plus the fixed structural steps; calls arrive in
// non-decreasing order.
type ProgressFunc func(current, total int)

// CompressionMethod selects how archive entries are stored. OPC permits any
// ZIP method; this writer supports Store and Deflate.
type CompressionMethod uint8

const (
	CompressionDeflate CompressionMethod = iota
	CompressionStore
)

type exportConfig struct {
	limits      Limits
	progress    ProgressFunc
	stagingDir  string // parent for the per-export staging directory
	compression CompressionMethod
	bulletFont  string
	creator     string
}

type ExportOption func(*exportConfig)

// WithProgress registers a callback invoked after each completed step.
func WithProgress(fn ProgressFunc) ExportOption {
	return func(c *exportConfig) { c.progress = fn }
}

// WithLimits sets custom input size limits. Zero fields keep their defaults.
func WithLimits(l Limits) ExportOption {
	return func(c *exportConfig) { c.limits = l }
}

// WithStagingDir sets the parent directory for the per-export staging tree.
// Defaults to the system temporary directory. Each export stages under a
// unique subdirectory, so a shared parent is safe for concurrent exports.
func WithStagingDir(dir string) ExportOption {
	return func(c *exportConfig) { c.stagingDir = dir }
}

// WithCompressionMethod selects the archive entry compression.
func WithCompressionMethod(m CompressionMethod) ExportOption {
	return func(c *exportConfig) { c.compression = m }
}

// WithBulletFont overrides the typeface used for bullet glyphs. All bullet
// styles share one font; default is Arial.
func WithBulletFont(name string) ExportOption {
	return func(c *exportConfig) { c.bulletFont = name }
}

// WithCreator sets the dc:creator written to docProps/core.xml.
func WithCreator(name string) ExportOption {
	return func(c *exportConfig) { c.creator = name }
}
