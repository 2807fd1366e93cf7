package domain

import "time"

// DOCX pagination modes.
const (
	// DocxModeAuto splits at native page breaks when any are present,
	// otherwise chunks by paragraph count.
	DocxModeAuto = "auto"

	// DocxModePageBreaks always splits at native page breaks.
	DocxModePageBreaks = "page-breaks"

	// DocxModeFixed always chunks by paragraph count.
	DocxModeFixed = "fixed"
)

// Default pipeline settings.
const (
	DefaultMinUsableChars        = 1
	DefaultConverterChunkChars   = 2000
	DefaultDocxParagraphsPerPage = 40
	DefaultTxtLinesPerPage       = 50
	DefaultConversionTimeout     = 120 * time.Second
	DefaultOCRMaxPages           = 5
	DefaultOCRDPI                = 200
	DefaultJobTimeout            = 10 * time.Minute
	DefaultImportParallelism     = 4
	DefaultMaxFileBytes          = 50 * 1024 * 1024
)

// Storage drivers.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// PipelineConfig carries every externally configured resource of the
// pipeline. It is passed explicitly to each component; nothing reads
// configuration from globals.
type PipelineConfig struct {
	Extraction ExtractionConfig
	Pagination PaginationConfig
	Conversion ConversionConfig
	OCR        OCRConfig
	Jobs       JobsConfig
	Import     ImportConfig
	Limits     LimitsConfig
	Storage    StorageConfig
	MCP        MCPConfig
}

// ExtractionConfig controls the cascade.
type ExtractionConfig struct {
	// MinUsableChars is the single usable-output threshold applied to
	// every strategy: stripped text must hold at least this many runes.
	MinUsableChars int

	// PlaceholderOnFailure stores one explanatory page when every
	// strategy fails, instead of leaving the document with zero pages.
	PlaceholderOnFailure bool
}

// PaginationConfig controls the kind-specific chunking rules.
type PaginationConfig struct {
	ConverterChunkChars   int
	DocxParagraphsPerPage int
	DocxMode              string
	TxtLinesPerPage       int
}

// ConversionConfig controls the headless office suite.
type ConversionConfig struct {
	// Binary overrides the candidate-path probe when set.
	Binary string

	// Timeout bounds one conversion process.
	Timeout time.Duration

	// MaxLaunchesPerSecond throttles process launches; 0 disables.
	MaxLaunchesPerSecond float64
}

// OCRConfig controls the rasterise-and-recognise fallback.
type OCRConfig struct {
	Enabled   bool
	Languages []string
	MaxPages  int
	DPI       int
}

// JobsConfig controls the background derivation worker pool.
type JobsConfig struct {
	// Workers is the pool size; 0 means one per CPU.
	Workers int
	Timeout time.Duration
}

// ImportConfig controls batch imports.
type ImportConfig struct {
	Parallelism int
}

// LimitsConfig bounds accepted uploads.
type LimitsConfig struct {
	MaxFileBytes int64
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Driver is one of StorageSQLite, StoragePostgres or StorageMemory.
	Driver string
	DSN    string

	// DataDir holds the sqlite database and the file library.
	DataDir string
}

// MCPConfig controls the MCP server.
type MCPConfig struct {
	// AllowedDir is the only tree extract_text may read from. Empty means
	// the document library under the data dir.
	AllowedDir string
}

// DefaultPipelineConfig returns the configuration used when no file overrides it.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Extraction: ExtractionConfig{
			MinUsableChars: DefaultMinUsableChars,
		},
		Pagination: PaginationConfig{
			ConverterChunkChars:   DefaultConverterChunkChars,
			DocxParagraphsPerPage: DefaultDocxParagraphsPerPage,
			DocxMode:              DocxModeAuto,
			TxtLinesPerPage:       DefaultTxtLinesPerPage,
		},
		Conversion: ConversionConfig{
			Timeout: DefaultConversionTimeout,
		},
		OCR: OCRConfig{
			Enabled:   true,
			Languages: []string{"eng", "uzb", "rus"},
			MaxPages:  DefaultOCRMaxPages,
			DPI:       DefaultOCRDPI,
		},
		Jobs: JobsConfig{
			Timeout: DefaultJobTimeout,
		},
		Import: ImportConfig{
			Parallelism: DefaultImportParallelism,
		},
		Limits: LimitsConfig{
			MaxFileBytes: DefaultMaxFileBytes,
		},
		Storage: StorageConfig{
			Driver: StorageSQLite,
		},
	}
}

// Normalise replaces zero or invalid values with defaults.
func (c *PipelineConfig) Normalise() {
	def := DefaultPipelineConfig()
	if c.Extraction.MinUsableChars < 1 {
		c.Extraction.MinUsableChars = def.Extraction.MinUsableChars
	}
	if c.Pagination.ConverterChunkChars <= 0 {
		c.Pagination.ConverterChunkChars = def.Pagination.ConverterChunkChars
	}
	if c.Pagination.DocxParagraphsPerPage <= 0 {
		c.Pagination.DocxParagraphsPerPage = def.Pagination.DocxParagraphsPerPage
	}
	switch c.Pagination.DocxMode {
	case DocxModeAuto, DocxModePageBreaks, DocxModeFixed:
	default:
		c.Pagination.DocxMode = def.Pagination.DocxMode
	}
	if c.Pagination.TxtLinesPerPage <= 0 {
		c.Pagination.TxtLinesPerPage = def.Pagination.TxtLinesPerPage
	}
	if c.Conversion.Timeout <= 0 {
		c.Conversion.Timeout = def.Conversion.Timeout
	}
	if c.Conversion.MaxLaunchesPerSecond < 0 {
		c.Conversion.MaxLaunchesPerSecond = 0
	}
	if len(c.OCR.Languages) == 0 {
		c.OCR.Languages = def.OCR.Languages
	}
	if c.OCR.MaxPages <= 0 {
		c.OCR.MaxPages = def.OCR.MaxPages
	}
	if c.OCR.DPI <= 0 {
		c.OCR.DPI = def.OCR.DPI
	}
	if c.Jobs.Workers < 0 {
		c.Jobs.Workers = 0
	}
	if c.Jobs.Timeout <= 0 {
		c.Jobs.Timeout = def.Jobs.Timeout
	}
	if c.Import.Parallelism <= 0 {
		c.Import.Parallelism = def.Import.Parallelism
	}
	if c.Limits.MaxFileBytes <= 0 {
		c.Limits.MaxFileBytes = def.Limits.MaxFileBytes
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = def.Storage.Driver
	}
}
