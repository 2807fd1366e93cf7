package extractors

import (
	"fmt"
	"os/exec"

	"github.com/cloudstore/pagesmith/internal/adapters/driven/process"
	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
	"github.com/cloudstore/pagesmith/internal/extractors/docx"
	"github.com/cloudstore/pagesmith/internal/extractors/ocr"
	"github.com/cloudstore/pagesmith/internal/extractors/pdf"
	"github.com/cloudstore/pagesmith/internal/extractors/plaintext"
	"github.com/cloudstore/pagesmith/internal/extractors/soffice"
)

// Binaries probed for the OCR tier.
const (
	RasterizerBinary = "pdftoppm"
	RecognizerBinary = "tesseract"
)

// officeKinds are converted by the office suite alone.
var officeKinds = []domain.Kind{
	domain.KindDOC,
	domain.KindODT,
	domain.KindRTF,
	domain.KindSpreadsheet,
	domain.KindPresentation,
}

// Registry builds the per-kind strategy cascades after checking which
// external programs are installed.
type Registry struct {
	runner       driven.CommandRunner
	locateOffice func(configured string) (string, error)
	lookPath     func(name string) (string, error)
	tempDir      string

	capabilities []domain.Capability
}

// Option configures a Registry.
type Option func(*Registry)

// WithOfficeLocator replaces the office suite probe.
func WithOfficeLocator(fn func(configured string) (string, error)) Option {
	return func(r *Registry) {
		r.locateOffice = fn
	}
}

// WithPathLookup replaces the PATH lookup used for the OCR tools.
func WithPathLookup(fn func(name string) (string, error)) Option {
	return func(r *Registry) {
		r.lookPath = fn
	}
}

// WithTempDir sets the parent directory for conversion scratch space.
func WithTempDir(dir string) Option {
	return func(r *Registry) {
		r.tempDir = dir
	}
}

// NewRegistry creates a registry whose subprocess strategies share runner.
func NewRegistry(runner driven.CommandRunner, opts ...Option) *Registry {
	r := &Registry{
		runner:       runner,
		locateOffice: locateOffice,
		lookPath:     exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// locateOffice resolves the configured binary, or probes the usual
// install locations when none is configured.
func locateOffice(configured string) (string, error) {
	if configured != "" {
		return process.LocateBinary([]string{configured}, configured)
	}
	return process.LocateBinary(process.OfficeCandidates(), "soffice", "libreoffice")
}

// Build assembles the cascades for every supported kind.
// Strategies whose backend is missing are left out and reported by
// Unavailable. Build may be called again after the host changes.
func (r *Registry) Build(cfg domain.PipelineConfig) map[domain.Kind][]driven.Strategy {
	r.capabilities = nil
	cascades := make(map[domain.Kind][]driven.Strategy)

	officeBinary, officeErr := r.locateOffice(cfg.Conversion.Binary)
	office := func(kind domain.Kind) (driven.Strategy, error) {
		if officeErr != nil {
			return nil, officeErr
		}
		return soffice.New(r.runner, officeBinary, soffice.TargetFor(kind),
			soffice.WithTempDir(r.tempDir),
			soffice.WithInputFilter(soffice.InputFilterFor(kind))), nil
	}

	add := func(kind domain.Kind, name string, method domain.Method, build func() (driven.Strategy, error)) {
		strategy, err := build()
		if err != nil {
			r.capabilities = append(r.capabilities, domain.Capability{
				Kind:     kind,
				Strategy: name,
				Method:   method,
				Reason:   err.Error(),
			})
			return
		}
		cascades[kind] = append(cascades[kind], strategy)
		r.capabilities = append(r.capabilities, domain.Capability{
			Kind:      kind,
			Strategy:  name,
			Method:    method,
			Priority:  len(cascades[kind]),
			Available: true,
		})
	}

	add(domain.KindPDF, pdf.LayoutName, domain.MethodLayout, func() (driven.Strategy, error) {
		return pdf.NewLayout(), nil
	})
	add(domain.KindPDF, pdf.TextLayerName, domain.MethodTextLayer, func() (driven.Strategy, error) {
		return pdf.NewTextLayer(), nil
	})
	add(domain.KindPDF, soffice.Name, domain.MethodConverter, func() (driven.Strategy, error) {
		return office(domain.KindPDF)
	})
	add(domain.KindPDF, ocr.Name, domain.MethodOCR, func() (driven.Strategy, error) {
		return r.buildOCR(cfg.OCR)
	})

	add(domain.KindDOCX, docx.Name, domain.MethodNative, func() (driven.Strategy, error) {
		return docx.New(), nil
	})
	add(domain.KindTXT, plaintext.Name, domain.MethodNative, func() (driven.Strategy, error) {
		return plaintext.New(), nil
	})

	for _, kind := range officeKinds {
		add(kind, soffice.Name, domain.MethodConverter, func() (driven.Strategy, error) {
			return office(kind)
		})
	}

	return cascades
}

func (r *Registry) buildOCR(cfg domain.OCRConfig) (driven.Strategy, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("disabled by configuration: %w", domain.ErrStrategyUnavailable)
	}
	rasterizer, err := r.lookPath(RasterizerBinary)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", RasterizerBinary, domain.ErrBinaryNotFound)
	}
	recognizer, err := r.lookPath(RecognizerBinary)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", RecognizerBinary, domain.ErrBinaryNotFound)
	}
	return ocr.New(r.runner, ocr.Config{
		Rasterizer: rasterizer,
		Recognizer: recognizer,
		Languages:  cfg.Languages,
		MaxPages:   cfg.MaxPages,
		DPI:        cfg.DPI,
		TempDir:    r.tempDir,
	}), nil
}

// Capabilities returns every strategy considered by the last Build, in
// kind and priority order.
func (r *Registry) Capabilities() []domain.Capability {
	out := make([]domain.Capability, len(r.capabilities))
	copy(out, r.capabilities)
	return out
}

// Unavailable returns the strategies the last Build skipped.
func (r *Registry) Unavailable() []domain.Capability {
	var out []domain.Capability
	for _, c := range r.capabilities {
		if !c.Available {
			out = append(out, c)
		}
	}
	return out
}
