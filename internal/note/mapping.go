package note

import (
	"fmt"
	"sort"
	"strings"

	"github.com/notekit/notekit/internal/note/sample"
	"github.com/notekit/notekit/pkg/fhirmodels"
)

// Mapping describes how one document type is localized: which template to
// fill, where the content comes from, and how the content is typed. Exactly
// one of ContentFile and Generator is set.
type Mapping struct {
	// Template is the DocumentReference template path, relative to the
	// asset directory.
	Template string
	// ContentFile is a static sample content path, relative to the asset
	// directory. Empty when Generator is set.
	ContentFile string
	// Generator produces the content artifact in memory. Nil when
	// ContentFile is set.
	Generator sample.Generator
	// ContentType is the MIME type embedded in content.attachment.contentType.
	ContentType string
	// NoteTypeCode and NoteTypeDisplay identify the note class (LOINC).
	NoteTypeCode    string
	NoteTypeDisplay string
}

var mappings = map[string]Mapping{
	"text": {
		Template:        "templates/document-reference.json",
		ContentFile:     "content/progress-note.txt",
		ContentType:     fhirmodels.MimePlainText,
		NoteTypeCode:    fhirmodels.LoincProgressNote,
		NoteTypeDisplay: "Progress Note",
	},
	"pdf": {
		Template:        "templates/document-reference.json",
		Generator:       sample.DischargeSummary,
		ContentType:     fhirmodels.MimePDF,
		NoteTypeCode:    fhirmodels.LoincDischargeSummary,
		NoteTypeDisplay: "Discharge Summary",
	},
	"cda": {
		Template:        "templates/document-reference.json",
		Generator:       sample.ConsultationNoteCDA,
		ContentType:     fhirmodels.MimeCDA,
		NoteTypeCode:    fhirmodels.LoincConsultationNote,
		NoteTypeDisplay: "Consultation Note",
	},
	"xhtml": {
		Template:        "templates/document-reference.json",
		Generator:       sample.XHTMLNote,
		ContentType:     fhirmodels.MimeXHTML,
		NoteTypeCode:    fhirmodels.LoincConsultationNote,
		NoteTypeDisplay: "Consultation Note",
	},
	"html": {
		Template:        "templates/document-reference.json",
		Generator:       sample.HistoryAndPhysical,
		ContentType:     fhirmodels.MimeHTML,
		NoteTypeCode:    fhirmodels.LoincHistoryAndPhysical,
		NoteTypeDisplay: "History and Physical",
	},
	"large-text": {
		Template:        "templates/document-reference.json",
		Generator:       sample.LargeNote,
		ContentType:     fhirmodels.MimePlainText,
		NoteTypeCode:    fhirmodels.LoincOperativeNote,
		NoteTypeDisplay: "Operative Note",
	},
}

// TypeKeys returns the supported document type keys, sorted.
func TypeKeys() []string {
	keys := make([]string, 0, len(mappings))
	for k := range mappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup resolves a document type to its mapping. Unknown types fail with an
// error enumerating the valid keys.
func Lookup(docType string) (Mapping, error) {
	m, ok := mappings[docType]
	if !ok {
		return Mapping{}, fmt.Errorf("unknown document type %q (valid types: %s)",
			docType, strings.Join(TypeKeys(), ", "))
	}
	return m, nil
}
