package sample

import (
	"encoding/xml"
	"fmt"

	"github.com/google/uuid"
)

// CDA OIDs used by the generated consultation note.
const (
	cdaNamespace     = "urn:hl7-org:v3"
	xsiNamespace     = "http://www.w3.org/2001/XMLSchema-instance"
	oidUSRealmHeader = "2.16.840.1.113883.10.20.22.1.1"
	oidConsultNote   = "2.16.840.1.113883.10.20.22.1.4"
	oidLOINC         = "2.16.840.1.113883.6.1"
	oidConfidential  = "2.16.840.1.113883.5.25"
	loincConsultNote = "11488-4"
	loincAssessPlan  = "51847-2"
)

// clinicalDocument is the root element of a CDA R2 consultation note. Only
// the header and a single narrative section are populated; entry-level
// discrete data is out of scope for sample content.
type clinicalDocument struct {
	XMLName             xml.Name      `xml:"urn:hl7-org:v3 ClinicalDocument"`
	XSI                 string        `xml:"xmlns:xsi,attr"`
	RealmCode           *cdaCode      `xml:"realmCode,omitempty"`
	TypeID              *cdaTypeID    `xml:"typeId,omitempty"`
	TemplateIDs         []cdaID       `xml:"templateId,omitempty"`
	ID                  *cdaID        `xml:"id,omitempty"`
	Code                *cdaCode      `xml:"code,omitempty"`
	Title               string        `xml:"title,omitempty"`
	EffectiveTime       *cdaTime      `xml:"effectiveTime,omitempty"`
	ConfidentialityCode *cdaCode      `xml:"confidentialityCode,omitempty"`
	LanguageCode        *cdaCode      `xml:"languageCode,omitempty"`
	RecordTarget        *recordTarget `xml:"recordTarget,omitempty"`
	Author              *cdaAuthor    `xml:"author,omitempty"`
	Component           *component    `xml:"component,omitempty"`
}

type cdaTypeID struct {
	Root      string `xml:"root,attr"`
	Extension string `xml:"extension,attr"`
}

type cdaID struct {
	Root      string `xml:"root,attr"`
	Extension string `xml:"extension,attr,omitempty"`
}

type cdaCode struct {
	Code           string `xml:"code,attr,omitempty"`
	CodeSystem     string `xml:"codeSystem,attr,omitempty"`
	CodeSystemName string `xml:"codeSystemName,attr,omitempty"`
	DisplayName    string `xml:"displayName,attr,omitempty"`
}

type cdaTime struct {
	Value string `xml:"value,attr,omitempty"`
}

type recordTarget struct {
	PatientRole patientRole `xml:"patientRole"`
}

type patientRole struct {
	ID      *cdaID     `xml:"id,omitempty"`
	Patient cdaPatient `xml:"patient"`
}

type cdaPatient struct {
	Name personName `xml:"name"`
}

type personName struct {
	Given  string `xml:"given"`
	Family string `xml:"family"`
	Suffix string `xml:"suffix,omitempty"`
}

type cdaAuthor struct {
	Time           *cdaTime       `xml:"time,omitempty"`
	AssignedAuthor assignedAuthor `xml:"assignedAuthor"`
}

type assignedAuthor struct {
	ID             *cdaID          `xml:"id,omitempty"`
	AssignedPerson *assignedPerson `xml:"assignedPerson,omitempty"`
}

type assignedPerson struct {
	Name personName `xml:"name"`
}

type component struct {
	StructuredBody structuredBody `xml:"structuredBody"`
}

type structuredBody struct {
	Components []sectionComponent `xml:"component"`
}

type sectionComponent struct {
	Section cdaSection `xml:"section"`
}

type cdaSection struct {
	Code  *cdaCode `xml:"code,omitempty"`
	Title string   `xml:"title,omitempty"`
	Text  cdaText  `xml:"text"`
}

type cdaText struct {
	Paragraphs []string `xml:"paragraph"`
}

// ConsultationNoteCDA renders a CDA R2 consultation note document.
func ConsultationNoteCDA(v Values) ([]byte, string, error) {
	doc := &clinicalDocument{
		XSI:       xsiNamespace,
		RealmCode: &cdaCode{Code: "US"},
		TypeID: &cdaTypeID{
			Root:      "2.16.840.1.113883.1.3",
			Extension: "POCD_HD000040",
		},
		TemplateIDs: []cdaID{
			{Root: oidUSRealmHeader},
			{Root: oidConsultNote},
		},
		ID: &cdaID{Root: uuid.New().String()},
		Code: &cdaCode{
			Code:           loincConsultNote,
			CodeSystem:     oidLOINC,
			CodeSystemName: "LOINC",
			DisplayName:    "Consultation Note",
		},
		Title:               fmt.Sprintf("Consultation Note - %s", v.PatientName),
		EffectiveTime:       &cdaTime{Value: v.TimestampCompact()},
		ConfidentialityCode: &cdaCode{Code: "N", CodeSystem: oidConfidential},
		LanguageCode:        &cdaCode{Code: "en-US"},
		RecordTarget: &recordTarget{
			PatientRole: patientRole{
				Patient: cdaPatient{
					Name: personName{Given: v.PatientGiven, Family: v.PatientFamily},
				},
			},
		},
		Author: &cdaAuthor{
			Time: &cdaTime{Value: v.TimestampCompact()},
			AssignedAuthor: assignedAuthor{
				ID: &cdaID{Root: uuid.New().String()},
				AssignedPerson: &assignedPerson{
					Name: personName{Given: v.AuthorGiven, Family: v.AuthorFamily, Suffix: v.AuthorSuffix},
				},
			},
		},
		Component: &component{
			StructuredBody: structuredBody{
				Components: []sectionComponent{
					{Section: cdaSection{
						Code: &cdaCode{
							Code:           loincAssessPlan,
							CodeSystem:     oidLOINC,
							CodeSystemName: "LOINC",
							DisplayName:    "Assessment and Plan",
						},
						Title: "Assessment and Plan",
						Text: cdaText{Paragraphs: []string{
							fmt.Sprintf("%s was seen in consultation on %s.", v.PatientName, v.DateLong()),
							"Assessment: clinically stable with no acute findings.",
							"Plan: continue current therapy and follow up with the referring provider.",
							fmt.Sprintf("Electronically generated by %s.", v.AppName),
						}},
					}},
				},
			},
		},
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("cda: failed to marshal XML: %w", err)
	}

	result := append([]byte(xml.Header), output...)
	return result, "consultation-note.xml", nil
}
