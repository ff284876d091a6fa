// Package note localizes DocumentReference templates: it fills patient- and
// encounter-specific placeholder values, embeds base64 sample content, and
// writes the finished resource to disk for submission to a FHIR server.
package note

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/samply/golang-fhir-models/fhir-models/fhir"

	"github.com/notekit/notekit/internal/fhirconfig"
	"github.com/notekit/notekit/internal/note/sample"
)

// Fallback literals used when the caller supplies no value. They are fixed
// at substitution time and never persisted.
const (
	defaultPatientName      = "Alice Newman"
	defaultAuthorDisplay    = "Dr. Susan Clark, MD"
	defaultAuthorReference  = "Practitioner/notekit-author"
	defaultIdentifierSystem = "urn:notekit:document-id"
	defaultAppName          = "notekit"
)

// Contained carries an encounter resource destined for the document's
// contained array, either as raw JSON or as an already-parsed object.
type Contained struct {
	raw string
	obj map[string]interface{}
}

// ContainedJSON wraps a raw JSON string; it is parsed during localization
// and a parse failure is fatal.
func ContainedJSON(raw string) Contained { return Contained{raw: raw} }

// ContainedObject wraps an already-parsed resource.
func ContainedObject(obj map[string]interface{}) Contained { return Contained{obj: obj} }

func (c Contained) isZero() bool { return c.raw == "" && c.obj == nil }

// resolve normalizes the union into a single object representation.
func (c Contained) resolve() (map[string]interface{}, error) {
	if c.obj != nil {
		return c.obj, nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(c.raw), &obj); err != nil {
		return nil, fmt.Errorf("contained resource is not valid JSON (%q): %w", c.raw, err)
	}
	return obj, nil
}

// Options are the caller-supplied localization parameters. Type, PatientID
// and Server are required; everything else falls back to fixed literals.
type Options struct {
	Type      string
	PatientID string
	Server    string

	PatientName        string
	AuthorReference    string
	AuthorDisplay      string
	EncounterReference string
	EncounterDisplay   string
	EncounterContained Contained
	IdentifierSystem   string

	// OutputDir overrides the default <projectRoot>/localized/<server>.
	OutputDir string
	// AssetDir holds templates/ and content/; defaults to "assets" under
	// the project root.
	AssetDir string
	// SkipWrite suppresses writing the document to disk.
	SkipWrite bool

	AppName string
	Logger  *zerolog.Logger
	// Now pins the clock; zero means time.Now.
	Now time.Time
}

// Document is the localization result.
type Document struct {
	Resource    map[string]interface{}
	Bytes       []byte
	Path        string
	ContentType string
	Identifier  string
}

// Localize fills the template mapped to opts.Type and returns the finished
// DocumentReference, writing it to disk unless opts.SkipWrite is set.
func Localize(opts Options) (*Document, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	// Validation happens before any I/O.
	mapping, err := Lookup(opts.Type)
	if err != nil {
		return nil, err
	}
	if opts.PatientID == "" {
		return nil, fmt.Errorf("patient id is required")
	}
	if opts.Server == "" {
		return nil, fmt.Errorf("server name is required")
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	values := buildValues(opts, now)

	projectRoot, rootErr := fhirconfig.FindProjectRoot(".", fhirconfig.DefaultDirName)
	if rootErr != nil {
		projectRoot = "."
	}
	assetDir := resolveDir(opts.AssetDir, "assets", projectRoot)

	// Content acquisition: generated in memory or read from the asset
	// directory. Both paths then run the same content-level substitution
	// pass, so static files and generated artifacts may carry the same
	// tokens.
	var raw []byte
	if mapping.Generator != nil {
		data, filename, err := mapping.Generator(values)
		if err != nil {
			return nil, fmt.Errorf("generate %s content: %w", opts.Type, err)
		}
		logger.Info().Str("type", opts.Type).Str("artifact", filename).Int("bytes", len(data)).Msg("generated sample content")
		raw = data
	} else {
		path := filepath.Join(assetDir, mapping.ContentFile)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read content file %s: %w", path, err)
		}
		raw = data
	}
	content := ReplaceContentTokens(string(raw), values)
	encoded := base64.StdEncoding.EncodeToString([]byte(content))

	templatePath := filepath.Join(assetDir, mapping.Template)
	templateText, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", templatePath, err)
	}

	identifierSystem := opts.IdentifierSystem
	if identifierSystem == "" {
		identifierSystem = defaultIdentifierSystem
	}
	// Identifier values are unique only to timestamp granularity; callers
	// needing global uniqueness supply their own identifier system.
	identifier := fmt.Sprintf("%s-%s", opts.Type, values.TimestampCompact())

	substituted := ReplaceTemplateTokens(string(templateText), values, templateValues{
		IdentifierSystem:   identifierSystem,
		IdentifierValue:    identifier,
		PatientID:          opts.PatientID,
		AuthorReference:    stringOr(opts.AuthorReference, defaultAuthorReference),
		AuthorDisplay:      stringOr(opts.AuthorDisplay, defaultAuthorDisplay),
		PeriodStart:        now.Add(-time.Hour),
		PeriodEnd:          now,
		ContentType:        mapping.ContentType,
		ContentData:        encoded,
		ContentSize:        len(content),
		NoteTypeCode:       mapping.NoteTypeCode,
		NoteTypeDisplay:    mapping.NoteTypeDisplay,
		EncounterReference: opts.EncounterReference,
		EncounterDisplay:   opts.EncounterDisplay,
	})

	var resource map[string]interface{}
	if err := json.Unmarshal([]byte(substituted), &resource); err != nil {
		return nil, fmt.Errorf("template %s produced invalid JSON after substitution: %w", mapping.Template, err)
	}

	pruneEmptyEncounters(resource)

	if !opts.EncounterContained.isZero() {
		obj, err := opts.EncounterContained.resolve()
		if err != nil {
			return nil, err
		}
		contained, _ := resource["contained"].([]interface{})
		resource["contained"] = append(contained, obj)
	}

	out, err := json.MarshalIndent(resource, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}
	out = append(out, '\n')

	// Typed shape check: the finished document must still be a structurally
	// valid DocumentReference.
	if _, err := fhir.UnmarshalDocumentReference(out); err != nil {
		return nil, fmt.Errorf("localized document is not a valid DocumentReference: %w", err)
	}

	doc := &Document{
		Resource:    resource,
		Bytes:       out,
		ContentType: mapping.ContentType,
		Identifier:  identifier,
	}

	if !opts.SkipWrite {
		outDir := opts.OutputDir
		if outDir == "" {
			outDir = filepath.Join(projectRoot, "localized", opts.Server)
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory %s: %w", outDir, err)
		}
		doc.Path = filepath.Join(outDir, opts.Type+"-note.json")
		if err := os.WriteFile(doc.Path, out, 0o644); err != nil {
			return nil, fmt.Errorf("write document %s: %w", doc.Path, err)
		}
		logger.Info().Str("type", opts.Type).Str("path", doc.Path).Msg("localized document written")
	}

	return doc, nil
}

func buildValues(opts Options, now time.Time) sample.Values {
	patientDisplay := stringOr(opts.PatientName, defaultPatientName)
	authorDisplay := stringOr(opts.AuthorDisplay, defaultAuthorDisplay)
	patient := ParseDisplayName(patientDisplay)
	author := ParseDisplayName(authorDisplay)

	return sample.Values{
		PatientName:   patientDisplay,
		PatientGiven:  patient.Given,
		PatientFamily: patient.Family,
		AuthorName:    authorDisplay,
		AuthorGiven:   author.Given,
		AuthorFamily:  author.Family,
		AuthorSuffix:  author.Suffix,
		AuthorTitle:   author.Title,
		AppName:       stringOr(opts.AppName, defaultAppName),
		Now:           now,
	}
}

// pruneEmptyEncounters drops context.encounter entries whose reference is
// empty (unfilled placeholders) and removes the field entirely when nothing
// remains, so empty placeholder arrays never leak into output.
func pruneEmptyEncounters(resource map[string]interface{}) {
	ctx, ok := resource["context"].(map[string]interface{})
	if !ok {
		return
	}
	entries, ok := ctx["encounter"].([]interface{})
	if !ok {
		return
	}
	var kept []interface{}
	for _, e := range entries {
		entry, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		if ref, _ := entry["reference"].(string); ref != "" {
			kept = append(kept, entry)
		}
	}
	if len(kept) == 0 {
		delete(ctx, "encounter")
		return
	}
	ctx["encounter"] = kept
}

// resolveDir resolves a possibly-relative directory against the project root.
func resolveDir(dir, fallback, projectRoot string) string {
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(projectRoot, dir)
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
