package errors

import (
	"strings"
	"testing"
)

func TestValidateFullName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "anthropics/skills", false},
		{"dots and dashes", "some-user/my.skill_pack", false},

		{"empty", "", true},
		{"no slash", "anthropics", true},
		{"empty owner", "/skills", true},
		{"empty repo", "anthropics/", true},
		{"dot dot repo", "anthropics/..", true},
		{"owner with dot", "an.thropics/skills", true},
		{"extra segment", "anthropics/skills/extra", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFullName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFullName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "pdf", false},
		{"hyphenated", "owner-pdf-tools-2", false},

		{"empty", "", true},
		{"uppercase", "PDF", true},
		{"traversal", "../etc/passwd", true},
		{"slash", "a/b", true},
		{"double hyphen", "a--b", true},
		{"leading hyphen", "-a", true},
		{"too long", strings.Repeat("a", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlug(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSlug(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidSlug) {
				t.Errorf("ValidateSlug(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidSlug)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"file", "SKILL.md", false},
		{"nested", "pdf/SKILL.md", false},
		{"hidden dir", ".claude-plugin/marketplace.json", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "pdf/../../secret", true},
		{"backslash", "pdf\\SKILL.md", true},
		{"control char", "pdf\x01", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://api.github.com", false},
		{"http", "http://localhost:9000", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
