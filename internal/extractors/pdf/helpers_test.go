package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildTextPDF assembles a minimal valid PDF with one Helvetica text line
// per page.
func buildTextPDF(pages ...string) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	n := len(pages)
	// Objects: 1 catalog, 2 pages, 3 font, then page/content pairs.
	total := 3 + 2*n
	offsets := make([]int, total+1)

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), n)

	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	for i, text := range pages {
		pageObj, contentObj := 4+2*i, 5+2*i
		escaped := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(text)
		stream := "BT\n/F1 12 Tf\n72 720 Td\n(" + escaped + ") Tj\nET"

		offsets[pageObj] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>\nendobj\n", pageObj, contentObj)

		offsets[contentObj] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", contentObj, len(stream), stream)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", total+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= total; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)

	return []byte(b.String())
}

func writePDF(t *testing.T, pages ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, buildTextPDF(pages...), 0644))
	return path
}

func writeGarbage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf at all"), 0644))
	return path
}
