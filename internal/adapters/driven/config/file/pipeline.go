package file

import (
	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
)

// LoadPipelineConfig maps a configuration store onto a PipelineConfig.
// Keys absent from the store keep their defaults; invalid values are
// normalised back to defaults.
func LoadPipelineConfig(store driven.ConfigStore) domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()
	if store == nil {
		return cfg
	}

	has := func(key string) bool {
		_, ok := store.Get(key)
		return ok
	}

	if has(domain.KeyMinUsableChars) {
		cfg.Extraction.MinUsableChars = store.GetInt(domain.KeyMinUsableChars)
	}
	if has(domain.KeyPlaceholderOnFailure) {
		cfg.Extraction.PlaceholderOnFailure = store.GetBool(domain.KeyPlaceholderOnFailure)
	}
	if has(domain.KeyConverterChunkChars) {
		cfg.Pagination.ConverterChunkChars = store.GetInt(domain.KeyConverterChunkChars)
	}
	if has(domain.KeyDocxParagraphsPerPage) {
		cfg.Pagination.DocxParagraphsPerPage = store.GetInt(domain.KeyDocxParagraphsPerPage)
	}
	if has(domain.KeyDocxMode) {
		cfg.Pagination.DocxMode = store.GetString(domain.KeyDocxMode)
	}
	if has(domain.KeyTxtLinesPerPage) {
		cfg.Pagination.TxtLinesPerPage = store.GetInt(domain.KeyTxtLinesPerPage)
	}
	cfg.Conversion.Binary = store.GetString(domain.KeyConversionBinary)
	if has(domain.KeyConversionTimeout) {
		cfg.Conversion.Timeout = store.GetDuration(domain.KeyConversionTimeout)
	}
	cfg.Conversion.MaxLaunchesPerSecond = store.GetFloat(domain.KeyMaxLaunchesPerSecond)
	if has(domain.KeyOCREnabled) {
		cfg.OCR.Enabled = store.GetBool(domain.KeyOCREnabled)
	}
	if has(domain.KeyOCRLanguages) {
		cfg.OCR.Languages = store.GetStringSlice(domain.KeyOCRLanguages)
	}
	if has(domain.KeyOCRMaxPages) {
		cfg.OCR.MaxPages = store.GetInt(domain.KeyOCRMaxPages)
	}
	if has(domain.KeyOCRDPI) {
		cfg.OCR.DPI = store.GetInt(domain.KeyOCRDPI)
	}
	cfg.Jobs.Workers = store.GetInt(domain.KeyJobWorkers)
	if has(domain.KeyJobTimeout) {
		cfg.Jobs.Timeout = store.GetDuration(domain.KeyJobTimeout)
	}
	if has(domain.KeyImportParallelism) {
		cfg.Import.Parallelism = store.GetInt(domain.KeyImportParallelism)
	}
	if has(domain.KeyMaxFileBytes) {
		cfg.Limits.MaxFileBytes = int64(store.GetInt(domain.KeyMaxFileBytes))
	}
	if has(domain.KeyStorageDriver) {
		cfg.Storage.Driver = store.GetString(domain.KeyStorageDriver)
	}
	cfg.Storage.DSN = store.GetString(domain.KeyStorageDSN)
	cfg.Storage.DataDir = store.GetString(domain.KeyStorageDataDir)
	cfg.MCP.AllowedDir = store.GetString(domain.KeyMCPAllowedDir)

	cfg.Normalise()
	return cfg
}
