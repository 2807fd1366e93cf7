// Package pdf implements the two in-process PDF extraction tiers.
//
// LayoutStrategy reads positioned text with github.com/ledongthuc/pdf and
// additionally recovers table-like rows, appending them to the page text
// with cells joined by " | ". TextLayerStrategy walks each page's content
// stream through github.com/pdfcpu/pdfcpu and decodes the text-showing
// operators. Both return one source page per PDF page.
package pdf
