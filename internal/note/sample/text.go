package sample

import (
	"fmt"
	"strings"
)

// ProgressNote renders a short plaintext progress note.
func ProgressNote(v Values) ([]byte, string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "PROGRESS NOTE\n\n")
	fmt.Fprintf(&b, "Patient: %s\n", v.PatientName)
	fmt.Fprintf(&b, "Date of note: %s %s\n", v.Date(), v.Time())
	fmt.Fprintf(&b, "Author: %s %s %s %s\n\n", v.AuthorTitle, v.AuthorGiven, v.AuthorFamily, v.AuthorSuffix)
	fmt.Fprintf(&b, "Subjective: %s reports feeling well today with no new complaints.\n", v.PatientGiven)
	fmt.Fprintf(&b, "Objective: Vital signs stable. Afebrile. Exam unremarkable.\n")
	fmt.Fprintf(&b, "Assessment: Stable, improving as expected.\n")
	fmt.Fprintf(&b, "Plan: Continue current management. Follow up in two weeks.\n\n")
	fmt.Fprintf(&b, "Generated by %s on %s\n", v.AppName, v.Timestamp())
	return []byte(b.String()), "progress-note.txt", nil
}

// largeNoteTarget is the approximate size of the large plaintext artifact,
// used to exercise server-side payload limits.
const largeNoteTarget = 1 << 20

// LargeNote renders an operative note padded with repeated narrative text
// until it reaches roughly one mebibyte.
func LargeNote(v Values) ([]byte, string, error) {
	para := fmt.Sprintf(
		"Operative findings for %s were documented in detail by %s %s. "+
			"The procedure proceeded without complication and the patient "+
			"tolerated it well. Estimated blood loss minimal. ",
		v.PatientName, v.AuthorGiven, v.AuthorFamily)

	var b strings.Builder
	b.Grow(largeNoteTarget + len(para))
	fmt.Fprintf(&b, "OPERATIVE NOTE (large payload test)\n\n")
	fmt.Fprintf(&b, "Patient: %s\nDate: %s\nAuthor: %s\n\n", v.PatientName, v.Date(), v.AuthorName)
	for b.Len() < largeNoteTarget {
		b.WriteString(para)
	}
	fmt.Fprintf(&b, "\nGenerated by %s on %s\n", v.AppName, v.Timestamp())
	return []byte(b.String()), "operative-note-large.txt", nil
}
