package domain

import (
	"strconv"
	"strings"
)

// Configuration keys, in flattened dot notation.
const (
	KeyMinUsableChars        = "extraction.min_usable_chars"
	KeyPlaceholderOnFailure  = "extraction.placeholder_on_failure"
	KeyConverterChunkChars   = "pagination.converter_chunk_chars"
	KeyDocxParagraphsPerPage = "pagination.docx_paragraphs_per_page"
	KeyDocxMode              = "pagination.docx_mode"
	KeyTxtLinesPerPage       = "pagination.txt_lines_per_page"
	KeyConversionBinary      = "conversion.binary"
	KeyConversionTimeout     = "conversion.timeout"
	KeyMaxLaunchesPerSecond  = "conversion.max_launches_per_second"
	KeyOCREnabled            = "ocr.enabled"
	KeyOCRLanguages          = "ocr.languages"
	KeyOCRMaxPages           = "ocr.max_pages"
	KeyOCRDPI                = "ocr.dpi"
	KeyJobWorkers            = "jobs.workers"
	KeyJobTimeout            = "jobs.timeout"
	KeyImportParallelism     = "import.parallelism"
	KeyMaxFileBytes          = "limits.max_file_bytes"
	KeyStorageDriver         = "storage.driver"
	KeyStorageDSN            = "storage.dsn"
	KeyStorageDataDir        = "storage.data_dir"
	KeyMCPAllowedDir         = "mcp.allowed_dir"
)

// SettingType is the value type of a configuration key.
type SettingType int

const (
	SettingString SettingType = iota
	SettingInt
	SettingFloat
	SettingBool
	SettingDuration
	SettingList
)

var settingTypeNames = map[SettingType]string{
	SettingString:   "string",
	SettingInt:      "int",
	SettingFloat:    "float",
	SettingBool:     "bool",
	SettingDuration: "duration",
	SettingList:     "list",
}

// String returns the type name shown by the config command.
func (t SettingType) String() string {
	if name, ok := settingTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// SettingSpec describes one configuration key.
type SettingSpec struct {
	Key  string
	Type SettingType

	// Choices restricts a string setting to a fixed set of values.
	Choices []string

	// Default is the built-in value rendered as text. Empty means unset.
	Default string
}

// Setting is the effective value of a configuration key.
type Setting struct {
	SettingSpec
	Value string

	// Explicit reports whether the value comes from the config file
	// rather than the built-in default.
	Explicit bool
}

// SettingSpecs lists every configuration key in file order.
func SettingSpecs() []SettingSpec {
	def := DefaultPipelineConfig()
	itoa := strconv.Itoa
	return []SettingSpec{
		{Key: KeyMinUsableChars, Type: SettingInt, Default: itoa(def.Extraction.MinUsableChars)},
		{Key: KeyPlaceholderOnFailure, Type: SettingBool, Default: strconv.FormatBool(def.Extraction.PlaceholderOnFailure)},
		{Key: KeyConverterChunkChars, Type: SettingInt, Default: itoa(def.Pagination.ConverterChunkChars)},
		{Key: KeyDocxParagraphsPerPage, Type: SettingInt, Default: itoa(def.Pagination.DocxParagraphsPerPage)},
		{
			Key:     KeyDocxMode,
			Type:    SettingString,
			Choices: []string{DocxModeAuto, DocxModePageBreaks, DocxModeFixed},
			Default: def.Pagination.DocxMode,
		},
		{Key: KeyTxtLinesPerPage, Type: SettingInt, Default: itoa(def.Pagination.TxtLinesPerPage)},
		{Key: KeyConversionBinary, Type: SettingString},
		{Key: KeyConversionTimeout, Type: SettingDuration, Default: def.Conversion.Timeout.String()},
		{Key: KeyMaxLaunchesPerSecond, Type: SettingFloat, Default: "0"},
		{Key: KeyOCREnabled, Type: SettingBool, Default: strconv.FormatBool(def.OCR.Enabled)},
		{Key: KeyOCRLanguages, Type: SettingList, Default: strings.Join(def.OCR.Languages, ",")},
		{Key: KeyOCRMaxPages, Type: SettingInt, Default: itoa(def.OCR.MaxPages)},
		{Key: KeyOCRDPI, Type: SettingInt, Default: itoa(def.OCR.DPI)},
		{Key: KeyJobWorkers, Type: SettingInt, Default: "0"},
		{Key: KeyJobTimeout, Type: SettingDuration, Default: def.Jobs.Timeout.String()},
		{Key: KeyImportParallelism, Type: SettingInt, Default: itoa(def.Import.Parallelism)},
		{Key: KeyMaxFileBytes, Type: SettingInt, Default: strconv.FormatInt(def.Limits.MaxFileBytes, 10)},
		{
			Key:     KeyStorageDriver,
			Type:    SettingString,
			Choices: []string{StorageSQLite, StoragePostgres, StorageMemory},
			Default: def.Storage.Driver,
		},
		{Key: KeyStorageDSN, Type: SettingString},
		{Key: KeyStorageDataDir, Type: SettingString},
		{Key: KeyMCPAllowedDir, Type: SettingString},
	}
}

// LookupSetting returns the description of a configuration key.
func LookupSetting(key string) (SettingSpec, bool) {
	for _, spec := range SettingSpecs() {
		if spec.Key == key {
			return spec, true
		}
	}
	return SettingSpec{}, false
}
