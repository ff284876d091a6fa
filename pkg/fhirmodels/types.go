package fhirmodels

// Common FHIR value set constants used across the application.

// DocumentReferenceStatus values per FHIR R4.
const (
	DocRefStatusCurrent        = "current"
	DocRefStatusSuperseded     = "superseded"
	DocRefStatusEnteredInError = "entered-in-error"
)

// Composition/docStatus values per FHIR R4.
const (
	DocStatusPreliminary    = "preliminary"
	DocStatusFinal          = "final"
	DocStatusAmended        = "amended"
	DocStatusEnteredInError = "entered-in-error"
)

// LOINC note type codes for the clinical note document classes exercised
// during connectathon write testing.
const (
	LoincProgressNote       = "11506-3"
	LoincDischargeSummary   = "18842-5"
	LoincConsultationNote   = "11488-4"
	LoincHistoryAndPhysical = "34117-2"
	LoincProcedureNote      = "28570-0"
	LoincOperativeNote      = "11504-8"
	LoincReferralNote       = "57133-1"
)

// Coding systems.
const (
	SystemLOINC          = "http://loinc.org"
	SystemDocRefCategory = "http://hl7.org/fhir/us/core/CodeSystem/us-core-documentreference-category"
	CategoryClinicalNote = "clinical-note"
)

// Attachment MIME types for generated and static sample content.
const (
	MimePlainText = "text/plain"
	MimeHTML      = "text/html"
	MimeXHTML     = "application/xhtml+xml"
	MimePDF       = "application/pdf"
	MimeCDA       = "application/cda+xml"
	MimeFHIRJSON  = "application/fhir+json"
)
