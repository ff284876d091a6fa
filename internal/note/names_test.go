package note

import "testing"

func TestParseDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		display string
		want    ParsedName
	}{
		{
			name:    "plain two-part name",
			display: "Alice Newman",
			want:    ParsedName{Given: "Alice", Family: "Newman"},
		},
		{
			name:    "three-part name keeps first and last",
			display: "Mary Jane Watson",
			want:    ParsedName{Given: "Mary", Family: "Watson"},
		},
		{
			name:    "doctor prefix stripped into title",
			display: "Dr. Susan Clark",
			want:    ParsedName{Given: "Susan", Family: "Clark", Title: "Dr."},
		},
		{
			name:    "MD credential becomes suffix",
			display: "Susan Clark, MD",
			want:    ParsedName{Given: "Susan", Family: "Clark", Suffix: "MD"},
		},
		{
			name:    "doctor prefix and MD suffix together",
			display: "Dr. Susan Clark, MD",
			want:    ParsedName{Given: "Susan", Family: "Clark", Suffix: "MD", Title: "Dr."},
		},
		{
			name:    "single token",
			display: "Cher",
			want:    ParsedName{Given: "Cher", Family: "Cher"},
		},
		{
			name:    "empty",
			display: "",
			want:    ParsedName{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDisplayName(tt.display)
			if got != tt.want {
				t.Errorf("ParseDisplayName(%q) = %+v, want %+v", tt.display, got, tt.want)
			}
		})
	}
}
