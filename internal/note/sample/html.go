package sample

import (
	"fmt"
	"html"
	"strings"
)

// HistoryAndPhysical renders an HTML history & physical note.
func HistoryAndPhysical(v Values) ([]byte, string, error) {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	fmt.Fprintf(&b, "  <meta charset=\"utf-8\">\n  <title>History and Physical - %s</title>\n", html.EscapeString(v.PatientName))
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "  <h1>History and Physical</h1>\n")
	fmt.Fprintf(&b, "  <p><strong>Patient:</strong> %s</p>\n", html.EscapeString(v.PatientName))
	fmt.Fprintf(&b, "  <p><strong>Date:</strong> %s</p>\n", v.DateLong())
	fmt.Fprintf(&b, "  <p><strong>Author:</strong> %s</p>\n", html.EscapeString(v.AuthorName))
	b.WriteString("  <h2>Chief Complaint</h2>\n  <p>Routine follow-up visit.</p>\n")
	b.WriteString("  <h2>History of Present Illness</h2>\n")
	fmt.Fprintf(&b, "  <p>%s presents for scheduled follow-up. No interval events reported.</p>\n", html.EscapeString(v.PatientGiven))
	b.WriteString("  <h2>Physical Exam</h2>\n  <p>Well appearing, in no acute distress. Exam within normal limits.</p>\n")
	b.WriteString("  <h2>Assessment and Plan</h2>\n  <p>Stable. Continue current regimen; follow up as scheduled.</p>\n")
	fmt.Fprintf(&b, "  <hr>\n  <p><small>Generated by %s on %s</small></p>\n", html.EscapeString(v.AppName), v.Timestamp())
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String()), "history-and-physical.html", nil
}

// XHTMLNote renders a consultation note as a standalone XHTML document.
func XHTMLNote(v Values) ([]byte, string, error) {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<html xmlns=\"http://www.w3.org/1999/xhtml\" lang=\"en\" xml:lang=\"en\">\n<head>\n")
	fmt.Fprintf(&b, "  <title>Consultation Note - %s</title>\n", html.EscapeString(v.PatientName))
	b.WriteString("</head>\n<body>\n")
	b.WriteString("  <h1>Consultation Note</h1>\n")
	fmt.Fprintf(&b, "  <p>Patient: %s</p>\n", html.EscapeString(v.PatientName))
	fmt.Fprintf(&b, "  <p>Date: %s</p>\n", v.Date())
	fmt.Fprintf(&b, "  <p>Consultant: %s</p>\n", html.EscapeString(v.AuthorName))
	b.WriteString("  <h2>Reason for Consultation</h2>\n")
	b.WriteString("  <p>Evaluation requested by the primary care team.</p>\n")
	b.WriteString("  <h2>Impression</h2>\n")
	b.WriteString("  <p>Findings discussed with the referring provider; recommendations documented below.</p>\n")
	b.WriteString("  <h2>Recommendations</h2>\n")
	b.WriteString("  <p>Continue current therapy. Repeat laboratory studies in four weeks.</p>\n")
	fmt.Fprintf(&b, "  <p>Generated by %s on %s</p>\n", html.EscapeString(v.AppName), v.Timestamp())
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String()), "consultation-note.xhtml", nil
}
