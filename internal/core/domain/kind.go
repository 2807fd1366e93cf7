package domain

import (
	"path/filepath"
	"sort"
	"strings"
)

// Kind is the closed-set document format classification derived from the
// file extension. No content inspection is performed: extension trust is an
// accepted risk.
type Kind int

const (
	// KindUnknown short-circuits the pipeline with no pages produced.
	KindUnknown Kind = iota
	KindPDF
	KindDOCX
	KindDOC
	KindTXT
	KindODT
	KindRTF
	KindSpreadsheet
	KindPresentation
)

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindPDF:          "pdf",
	KindDOCX:         "docx",
	KindDOC:          "doc",
	KindTXT:          "txt",
	KindODT:          "odt",
	KindRTF:          "rtf",
	KindSpreadsheet:  "spreadsheet",
	KindPresentation: "presentation",
}

var extensionKinds = map[string]Kind{
	".pdf":  KindPDF,
	".docx": KindDOCX,
	".doc":  KindDOC,
	".txt":  KindTXT,
	".odt":  KindODT,
	".rtf":  KindRTF,
	".xls":  KindSpreadsheet,
	".xlsx": KindSpreadsheet,
	".ods":  KindSpreadsheet,
	".csv":  KindSpreadsheet,
	".ppt":  KindPresentation,
	".pptx": KindPresentation,
	".odp":  KindPresentation,
}

// Sniff returns the document kind for a filename using its lower-cased
// extension suffix.
func Sniff(filename string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	if kind, ok := extensionKinds[ext]; ok {
		return kind
	}
	return KindUnknown
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Supported reports whether the kind can enter the pipeline.
func (k Kind) Supported() bool {
	return k > KindUnknown && k <= KindPresentation
}

// ParseKind resolves a kind name case-insensitively.
// Returns KindUnknown and false for unrecognised names.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range kindNames {
		if n == name {
			return kind, kind != KindUnknown
		}
	}
	return KindUnknown, false
}

// AllKinds returns every supported kind in declaration order.
func AllKinds() []Kind {
	return []Kind{
		KindPDF, KindDOCX, KindDOC, KindTXT, KindODT,
		KindRTF, KindSpreadsheet, KindPresentation,
	}
}

// Extensions returns the extensions mapped to a kind, sorted.
func (k Kind) Extensions() []string {
	var exts []string
	for ext, kind := range extensionKinds {
		if kind == k {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}
