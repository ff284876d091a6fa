package sample

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"testing"
	"time"
)

func testValues() Values {
	return Values{
		PatientName:   "Alice Newman",
		PatientGiven:  "Alice",
		PatientFamily: "Newman",
		AuthorName:    "Dr. Susan Clark, MD",
		AuthorGiven:   "Susan",
		AuthorFamily:  "Clark",
		AuthorSuffix:  "MD",
		AuthorTitle:   "Dr.",
		AppName:       "notekit",
		Now:           time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestValues_Formats(t *testing.T) {
	v := testValues()
	if v.Date() != "2026-03-14" {
		t.Errorf("Date() = %s", v.Date())
	}
	if v.DateLong() != "March 14, 2026" {
		t.Errorf("DateLong() = %s", v.DateLong())
	}
	if v.Time() != "09:26" {
		t.Errorf("Time() = %s", v.Time())
	}
	if v.TimestampCompact() != "20260314092653" {
		t.Errorf("TimestampCompact() = %s", v.TimestampCompact())
	}
}

func TestProgressNote(t *testing.T) {
	data, filename, err := ProgressNote(testValues())
	if err != nil {
		t.Fatalf("ProgressNote: %v", err)
	}
	if filename != "progress-note.txt" {
		t.Errorf("filename = %s", filename)
	}
	text := string(data)
	for _, want := range []string{"Alice Newman", "Susan", "Clark", "2026-03-14", "notekit"} {
		if !strings.Contains(text, want) {
			t.Errorf("note missing %q", want)
		}
	}
}

func TestLargeNote_Size(t *testing.T) {
	data, _, err := LargeNote(testValues())
	if err != nil {
		t.Fatalf("LargeNote: %v", err)
	}
	if len(data) < largeNoteTarget {
		t.Errorf("large note is %d bytes, want at least %d", len(data), largeNoteTarget)
	}
	if !strings.Contains(string(data[:512]), "Alice Newman") {
		t.Error("large note header missing patient name")
	}
}

func TestDischargeSummary_ValidPDFStructure(t *testing.T) {
	data, filename, err := DischargeSummary(testValues())
	if err != nil {
		t.Fatalf("DischargeSummary: %v", err)
	}
	if filename != "discharge-summary.pdf" {
		t.Errorf("filename = %s", filename)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-1.4")) {
		t.Error("missing PDF header")
	}
	if !bytes.Contains(data, []byte("%%EOF")) {
		t.Error("missing PDF trailer")
	}
	if !bytes.Contains(data, []byte("Alice Newman")) {
		t.Error("missing patient name in content stream")
	}
	// The startxref value must point at the xref keyword.
	idx := bytes.Index(data, []byte("startxref\n"))
	if idx < 0 {
		t.Fatal("missing startxref")
	}
	rest := data[idx+len("startxref\n"):]
	end := bytes.IndexByte(rest, '\n')
	var offset int
	if _, err := fmt.Sscanf(string(rest[:end]), "%d", &offset); err != nil {
		t.Fatalf("parse startxref offset: %v", err)
	}
	if !bytes.HasPrefix(data[offset:], []byte("xref")) {
		t.Errorf("startxref offset %d does not point at the xref table", offset)
	}
}

func TestEscapePDFString(t *testing.T) {
	got := escapePDFString(`a (b) \c`)
	want := `a \(b\) \\c`
	if got != want {
		t.Errorf("escapePDFString = %q, want %q", got, want)
	}
}

func TestConsultationNoteCDA_ParsesAsXML(t *testing.T) {
	data, filename, err := ConsultationNoteCDA(testValues())
	if err != nil {
		t.Fatalf("ConsultationNoteCDA: %v", err)
	}
	if filename != "consultation-note.xml" {
		t.Errorf("filename = %s", filename)
	}
	if !strings.HasPrefix(string(data), "<?xml") {
		t.Error("missing XML declaration")
	}
	var doc clinicalDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("generated CDA does not parse: %v", err)
	}
	if doc.Code == nil || doc.Code.Code != loincConsultNote {
		t.Errorf("document code = %+v", doc.Code)
	}
	if doc.RecordTarget == nil {
		t.Fatal("missing recordTarget")
	}
	if doc.RecordTarget.PatientRole.Patient.Name.Family != "Newman" {
		t.Errorf("patient family = %q", doc.RecordTarget.PatientRole.Patient.Name.Family)
	}
	if doc.EffectiveTime == nil || doc.EffectiveTime.Value != "20260314092653" {
		t.Errorf("effectiveTime = %+v", doc.EffectiveTime)
	}
}

func TestHTMLGenerators_EscapeAndInclude(t *testing.T) {
	v := testValues()
	v.PatientName = "Alice <Newman>"

	htmlData, _, err := HistoryAndPhysical(v)
	if err != nil {
		t.Fatalf("HistoryAndPhysical: %v", err)
	}
	if strings.Contains(string(htmlData), "<Newman>") {
		t.Error("HTML output does not escape the patient name")
	}
	if !strings.Contains(string(htmlData), "Alice &lt;Newman&gt;") {
		t.Error("HTML output missing escaped patient name")
	}

	xhtmlData, _, err := XHTMLNote(v)
	if err != nil {
		t.Fatalf("XHTMLNote: %v", err)
	}
	if !strings.Contains(string(xhtmlData), `xmlns="http://www.w3.org/1999/xhtml"`) {
		t.Error("XHTML output missing namespace")
	}
}
