// Package extractors provides the text extraction strategies and the
// registry that assembles them into per-kind cascades.
//
// Each sub-package implements driven.Strategy for one technique:
//
//   - docx: paragraph reader for Office Open XML documents
//   - plaintext: UTF-8 text files
//   - pdf: structured layout reader and plain text-layer reader
//   - soffice: headless office suite conversion
//   - ocr: rasterise and recognise for scanned PDFs
//
// Strategies backed by external programs are registered only when the
// program is present on the host.
package extractors
