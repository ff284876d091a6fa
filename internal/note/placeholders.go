package note

import (
	"strconv"
	"strings"
	"time"

	"github.com/notekit/notekit/internal/note/sample"
)

// Placeholder substitution is plain text replacement: the tokens are a fixed
// literal set injected into JSON, XML and PDF byte streams, so a template
// engine's escaping rules would corrupt the payload.

func contentTokenPairs(v sample.Values) []string {
	return []string{
		"{{PATIENT_NAME}}", v.PatientName,
		"{{PATIENT_GIVEN}}", v.PatientGiven,
		"{{PATIENT_FAMILY}}", v.PatientFamily,
		"{{AUTHOR_NAME}}", v.AuthorName,
		"{{AUTHOR_GIVEN}}", v.AuthorGiven,
		"{{AUTHOR_FAMILY}}", v.AuthorFamily,
		"{{AUTHOR_SUFFIX}}", v.AuthorSuffix,
		"{{AUTHOR_TITLE}}", v.AuthorTitle,
		"{{DATE}}", v.Date(),
		"{{DATE_LONG}}", v.DateLong(),
		"{{TIME}}", v.Time(),
		"{{TIMESTAMP}}", v.Timestamp(),
		"{{TIMESTAMP_COMPACT}}", v.TimestampCompact(),
		"{{APP_NAME}}", v.AppName,
	}
}

// ReplaceContentTokens runs the content-level substitution pass. Both static
// sample files and generated artifacts go through it, so static content may
// carry the same tokens the generators resolve directly.
func ReplaceContentTokens(text string, v sample.Values) string {
	return strings.NewReplacer(contentTokenPairs(v)...).Replace(text)
}

// templateValues carries the template-level substitutions beyond the shared
// content tokens.
type templateValues struct {
	IdentifierSystem   string
	IdentifierValue    string
	PatientID          string
	AuthorReference    string
	AuthorDisplay      string
	PeriodStart        time.Time
	PeriodEnd          time.Time
	ContentType        string
	ContentData        string
	ContentSize        int
	NoteTypeCode       string
	NoteTypeDisplay    string
	EncounterReference string
	EncounterDisplay   string
}

// ReplaceTemplateTokens runs the template-level substitution pass over the
// DocumentReference template text.
func ReplaceTemplateTokens(text string, v sample.Values, tv templateValues) string {
	pairs := append(contentTokenPairs(v),
		"{{IDENTIFIER_SYSTEM}}", tv.IdentifierSystem,
		"{{IDENTIFIER_VALUE}}", tv.IdentifierValue,
		"{{PATIENT_ID}}", tv.PatientID,
		"{{AUTHOR_REFERENCE}}", tv.AuthorReference,
		"{{AUTHOR_DISPLAY}}", tv.AuthorDisplay,
		"{{PERIOD_START}}", tv.PeriodStart.Format(time.RFC3339),
		"{{PERIOD_END}}", tv.PeriodEnd.Format(time.RFC3339),
		"{{CONTENT_TYPE}}", tv.ContentType,
		"{{CONTENT_DATA}}", tv.ContentData,
		"{{CONTENT_SIZE}}", strconv.Itoa(tv.ContentSize),
		"{{NOTE_TYPE_CODE}}", tv.NoteTypeCode,
		"{{NOTE_TYPE_DISPLAY}}", tv.NoteTypeDisplay,
		"{{ENCOUNTER_REFERENCE}}", tv.EncounterReference,
		"{{ENCOUNTER_DISPLAY}}", tv.EncounterDisplay,
	)
	return strings.NewReplacer(pairs...).Replace(text)
}
