package note

import "strings"

// ParsedName holds the components extracted from a human display name.
type ParsedName struct {
	Given  string
	Family string
	Suffix string
	Title  string
}

// ParseDisplayName splits a display name on whitespace: the first token is
// the given name and the last token is the family name. A leading "Dr. "
// prefix becomes the title, and any "MD" credential becomes the suffix and
// is removed before splitting so it cannot be mistaken for a family name.
func ParseDisplayName(display string) ParsedName {
	var n ParsedName
	s := strings.TrimSpace(display)
	if strings.HasPrefix(s, "Dr. ") {
		n.Title = "Dr."
		s = strings.TrimPrefix(s, "Dr. ")
	}
	if strings.Contains(s, "MD") {
		n.Suffix = "MD"
		s = strings.TrimSpace(strings.ReplaceAll(s, "MD", ""))
		s = strings.TrimRight(s, ",")
	}
	fields := strings.Fields(s)
	if len(fields) > 0 {
		n.Given = fields[0]
		n.Family = fields[len(fields)-1]
	}
	return n
}
