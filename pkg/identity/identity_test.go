package identity

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
)

func TestComputeID(t *testing.T) {
	id := ComputeID("anthropics/skills", "pdf")

	if len(id) != IDLength {
		t.Fatalf("len(ComputeID()) = %d, want %d", len(id), IDLength)
	}
	if !regexp.MustCompile(`^[0-9a-f]+$`).MatchString(id) {
		t.Errorf("ComputeID() = %q, want lowercase hex", id)
	}
	if again := ComputeID("anthropics/skills", "pdf"); again != id {
		t.Errorf("ComputeID() not stable: %q vs %q", id, again)
	}
	if cased := ComputeID("Anthropics/Skills", "PDF"); cased != id {
		t.Errorf("ComputeID() should ignore case: %q vs %q", id, cased)
	}
	if other := ComputeID("anthropics/skills", "docx"); other == id {
		t.Error("ComputeID() should differ for different sub-paths")
	}
	if whole := ComputeID("anthropics/skills", ""); whole == id {
		t.Error("ComputeID() should differ between repository and sub-path")
	}
}

func TestComputeIDKnownValue(t *testing.T) {
	// sha256("owner/repo:") truncated; published IDs depend on it.
	const want = "0003f267270187dc"
	if got := ComputeID("Owner/Repo", ""); got != want {
		t.Errorf("ComputeID() = %q, want %q", got, want)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"PDF Tools", "pdf-tools"},
		{"  Hello,  World!  ", "hello-world"},
		{"snake_case_name", "snake-case-name"},
		{"--leading and trailing--", "leading-and-trailing"},
		{"a - b _ c", "a-b-c"},
		{"Café Crème", "cafe-creme"},
		{"日本語", ""},
		{"", ""},
		{"C++ & Go", "c-go"},
		{strings.Repeat("ab ", 40), strings.Repeat("ab-", 16) + "ab"},
		{strings.Repeat("a", 50) + " b", strings.Repeat("a", 50)},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyProperties(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	inputs := []string{
		"Claude Code Skills",
		"x" + strings.Repeat("-y", 60),
		strings.Repeat("word ", 20) + "tail",
		"Émoji 🚀 launcher",
		"___",
		"MiXeD__case--and  spaces",
		strings.Repeat("a", 49) + " b",
	}

	for _, in := range inputs {
		got := Slugify(in)
		if got == "" {
			continue
		}
		if len(got) > MaxSlugLength {
			t.Errorf("Slugify(%q) length = %d, want <= %d", in, len(got), MaxSlugLength)
		}
		if !valid.MatchString(got) {
			t.Errorf("Slugify(%q) = %q, want lowercase alphanumerics and single hyphens", in, got)
		}
	}
}

func TestAssignUniqueSlug(t *testing.T) {
	existing := SlugSet{"pdf": {}}

	if got := AssignUniqueSlug("Docx", "anthropics", existing); got != "docx" {
		t.Errorf("free name: got %q, want %q", got, "docx")
	}
	if got := AssignUniqueSlug("PDF", "alice", existing); got != "alice-pdf" {
		t.Errorf("collision: got %q, want %q", got, "alice-pdf")
	}

	existing.Add("alice-pdf")
	if got := AssignUniqueSlug("PDF", "alice", existing); got != "alice-pdf-2" {
		t.Errorf("second collision: got %q, want %q", got, "alice-pdf-2")
	}

	existing.Add("alice-pdf-2")
	if got := AssignUniqueSlug("PDF", "alice", existing); got != "alice-pdf-3" {
		t.Errorf("third collision: got %q, want %q", got, "alice-pdf-3")
	}

	if len(existing) != 3 {
		t.Errorf("AssignUniqueSlug should not modify the set, len = %d", len(existing))
	}
}

func TestAssignUniqueSlugEmptyName(t *testing.T) {
	set := NewSlugSet()
	if got := set.Claim("日本語", "someone"); got != "skill" {
		t.Errorf("Claim() = %q, want %q", got, "skill")
	}
	if got := set.Claim("中文", "someone"); got != "someone-skill" {
		t.Errorf("Claim() = %q, want %q", got, "someone-skill")
	}
}

func TestSlugSetClaimDeterministic(t *testing.T) {
	type in struct{ name, author string }
	inputs := []in{
		{"PDF", "anthropics"},
		{"PDF", "alice"},
		{"PDF", "alice"},
		{"pdf", "bob"},
		{"Git Helper", "carol"},
		{"git-helper", "carol"},
	}

	run := func() []string {
		set := NewSlugSet()
		var out []string
		for _, x := range inputs {
			out = append(out, set.Claim(x.name, x.author))
		}
		return out
	}

	first, second := run(), run()
	seen := map[string]bool{}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("run %d: %q vs %q", i, first[i], second[i])
		}
		if seen[first[i]] {
			t.Errorf("duplicate slug %q", first[i])
		}
		seen[first[i]] = true
	}

	want := []string{"pdf", "alice-pdf", "alice-pdf-2", "bob-pdf", "git-helper", "carol-git-helper"}
	if fmt.Sprint(first) != fmt.Sprint(want) {
		t.Errorf("Claim sequence = %v, want %v", first, want)
	}
}

func TestExtractSkillName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"claude-pdf-tools", "Pdf Tools"},
		{"cc-git-helper-skill", "Git Helper"},
		{"skills-writing-claude", "Writing"},
		{"Skill-Test-Runner-Code", "Test Runner"},
		{"webapp-testing", "Webapp Testing"},
		{"mcp-builder", "Mcp Builder"},
		{"GitHub-sync", "GitHub Sync"},
		{"skill", "Skill"},
	}

	for _, tt := range tests {
		if got := ExtractSkillName(tt.in); got != tt.want {
			t.Errorf("ExtractSkillName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func ExampleSlugSet_Claim() {
	slugs := NewSlugSet()
	fmt.Println(slugs.Claim("PDF", "anthropics"))
	fmt.Println(slugs.Claim("PDF", "alice"))
	fmt.Println(slugs.Claim("PDF", "alice"))
	// Output:
	// pdf
	// alice-pdf
	// alice-pdf-2
}
