// Package sample produces clinical note content in the formats exercised
// during DocumentReference write testing: plaintext, PDF, CDA XML, XHTML and
// HTML. Generators are pure functions returning the artifact bytes and a
// suggested filename; nothing is written to disk and no process state is
// mutated.
package sample

import "time"

// Values holds the substituted values a generator renders into its output.
// The caller resolves placeholders before invoking a generator, so generated
// artifacts never carry unreplaced tokens.
type Values struct {
	PatientName   string
	PatientGiven  string
	PatientFamily string

	AuthorName   string
	AuthorGiven  string
	AuthorFamily string
	AuthorSuffix string
	AuthorTitle  string

	AppName string
	Now     time.Time
}

// Generator materializes one content artifact in memory.
type Generator func(v Values) (data []byte, filename string, err error)

// Date formats used across generated content. FHIR instants require a
// timezone, so Timestamp keeps the offset.
func (v Values) Date() string      { return v.Now.Format("2006-01-02") }
func (v Values) DateLong() string  { return v.Now.Format("January 2, 2006") }
func (v Values) Time() string      { return v.Now.Format("15:04") }
func (v Values) Timestamp() string { return v.Now.Format(time.RFC3339) }

// TimestampCompact is the HL7/CDA effectiveTime form.
func (v Values) TimestampCompact() string { return v.Now.Format("20060102150405") }
