package sample

import (
	"bytes"
	"fmt"
	"strings"
)

// DischargeSummary renders a minimal but structurally valid single-page PDF
// containing the discharge summary text. The cross-reference table carries
// real byte offsets so strict readers accept the file.
func DischargeSummary(v Values) ([]byte, string, error) {
	lines := []string{
		"DISCHARGE SUMMARY",
		"",
		fmt.Sprintf("Patient: %s", v.PatientName),
		fmt.Sprintf("Date of discharge: %s", v.Date()),
		fmt.Sprintf("Attending: %s %s %s %s", v.AuthorTitle, v.AuthorGiven, v.AuthorFamily, v.AuthorSuffix),
		"",
		"Hospital course: The patient was admitted for observation and",
		"monitored without complication. Symptoms resolved with supportive",
		"care and the patient remained hemodynamically stable throughout.",
		"",
		"Discharge condition: Stable, ambulating independently.",
		"Discharge instructions: Resume home medications. Follow up with",
		"primary care within one week.",
		"",
		fmt.Sprintf("Generated by %s on %s", v.AppName, v.Timestamp()),
	}

	var content bytes.Buffer
	content.WriteString("BT\n/F1 11 Tf\n72 720 Td\n14 TL\n")
	for i, line := range lines {
		if i > 0 {
			content.WriteString("T*\n")
		}
		fmt.Fprintf(&content, "(%s) Tj\n", escapePDFString(line))
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&out, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefStart)

	return out.Bytes(), "discharge-summary.pdf", nil
}

var pdfEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

func escapePDFString(s string) string {
	return pdfEscaper.Replace(s)
}
