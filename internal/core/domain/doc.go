// Package domain defines the core business entities for pagesmith.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Kind: The closed set of document formats, sniffed from the filename
//   - Document: A library entry owning one uploaded file and its full text
//   - Page: One numbered unit of derived text belonging to a Document
//   - ExtractionResult: The transient output of one extraction strategy
//   - PipelineConfig: Every externally configured knob of the pipeline
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
