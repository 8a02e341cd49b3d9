package merge

import (
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/identity"
)

var collected = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func cand(fullName string, stars int, source catalog.Source, tags ...string) catalog.Candidate {
	owner, repo, _ := strings.Cut(fullName, "/")
	return catalog.Candidate{
		FullName:    fullName,
		Name:        repo,
		Description: string(source) + " description",
		Author:      owner,
		Stars:       stars,
		Tags:        tags,
		Source:      source,
		Category:    catalog.CategoryOther,
		Tier:        3,
		Status:      catalog.StatusMaintained,
	}
}

func sortedTags(tags []string) string {
	s := append([]string(nil), tags...)
	sort.Strings(s)
	return strings.Join(s, ",")
}

func TestMergeScenario(t *testing.T) {
	in := []catalog.Candidate{
		cand("a/x", 50, catalog.SourceTopic, "claude-skills"),
		cand("A/X", 50, catalog.SourceSearch, "cli"),
	}
	got := Merge(in, collected)

	if len(got) != 1 {
		t.Fatalf("Merge() = %d entries, want 1", len(got))
	}
	e := got[0]
	if e.RepoFullName != "a/x" {
		t.Errorf("RepoFullName = %q, want casing from the topic record", e.RepoFullName)
	}
	if sortedTags(e.Tags) != "claude-skills,cli" {
		t.Errorf("Tags = %v", e.Tags)
	}
	if e.Source != catalog.SourceTopic {
		t.Errorf("Source = %q", e.Source)
	}
}

func TestMergeFieldPriority(t *testing.T) {
	curated := cand("anthropics/skills", 100, catalog.SourceOfficial, "official")
	curated.Description = "curated"
	topic := cand("Anthropics/Skills", 100, catalog.SourceTopic, "claude-skills")
	topic.Description = "topic"

	// Lower-priority record first: source priority decides, not input order.
	got := Merge([]catalog.Candidate{topic, curated}, collected)

	if len(got) != 1 {
		t.Fatalf("Merge() = %d entries, want 1", len(got))
	}
	if got[0].Description != "curated" {
		t.Errorf("Description = %q, want curated", got[0].Description)
	}
	if sortedTags(got[0].Tags) != "claude-skills,official" {
		t.Errorf("Tags = %v, want union", got[0].Tags)
	}
}

func TestMergeKeepsFirstWithinSamePriority(t *testing.T) {
	first := cand("o/r", 10, catalog.SourceSearch)
	first.Description = "first"
	second := cand("O/R", 99, catalog.SourceSearch)
	second.Description = "second"

	got := Merge([]catalog.Candidate{first, second}, collected)
	if len(got) != 1 || got[0].Description != "first" || got[0].Stars != 10 {
		t.Errorf("Merge() = %+v", got)
	}
}

func TestMergeSubPathsShareRepository(t *testing.T) {
	pdf := cand("anthropics/skills", 9000, catalog.SourceOfficial, "official")
	pdf.Path, pdf.Name = "pdf", "PDF"
	docx := cand("anthropics/skills", 9000, catalog.SourceOfficial, "docx")
	docx.Path, docx.Name = "docx", "DOCX"
	repo := cand("Anthropics/Skills", 9000, catalog.SourceTopic, "claude-skills")

	got := Merge([]catalog.Candidate{repo, pdf, docx}, collected)
	if len(got) != 1 {
		t.Fatalf("Merge() = %d entries, want 1 per repository", len(got))
	}
	e := got[0]
	if e.Name != "PDF" || e.Path != "pdf" {
		t.Errorf("winner = %q at %q, want first official candidate", e.Name, e.Path)
	}
	if e.ID != identity.ComputeID("anthropics/skills", "pdf") {
		t.Errorf("ID = %q, want id of the winning sub-path", e.ID)
	}
	if sortedTags(e.Tags) != "claude-skills,docx,official" {
		t.Errorf("Tags = %v, want union", e.Tags)
	}
}

func TestMergeIDUsesListingRelativePath(t *testing.T) {
	c := cand("anthropics/claude-code", 30000, catalog.SourceOfficial)
	c.Path, c.IDPath = "plugins/commit-commands", "commit-commands"

	got := Merge([]catalog.Candidate{c}, collected)
	if got[0].ID != identity.ComputeID("anthropics/claude-code", "commit-commands") {
		t.Errorf("ID = %q, want id of the listing-relative path", got[0].ID)
	}
	if got[0].Path != "plugins/commit-commands" {
		t.Errorf("Path = %q", got[0].Path)
	}
}

func TestMergeUniqueFullNames(t *testing.T) {
	in := []catalog.Candidate{
		cand("anthropics/skills", 10, catalog.SourceOfficial),
		cand("ANTHROPICS/skills", 10, catalog.SourceSearch),
		cand("a/x", 1, catalog.SourceTopic),
		cand("A/X", 1, catalog.SourceManual),
	}
	in[0].Path = "pdf"

	seen := map[string]bool{}
	for _, e := range Merge(in, collected) {
		k := strings.ToLower(e.RepoFullName)
		if seen[k] {
			t.Errorf("duplicate entry for %s", k)
		}
		seen[k] = true
	}
	if len(seen) != 2 {
		t.Errorf("got %d repositories, want 2", len(seen))
	}
}

func TestMergeOrderAndSlugs(t *testing.T) {
	in := []catalog.Candidate{
		cand("carol/pdf", 5, catalog.SourceSearch),
		cand("bob/pdf", 50, catalog.SourceTopic),
		cand("alice/pdf", 50, catalog.SourceTopic),
		cand("dave/pdf", 500, catalog.SourceSearch),
	}
	got := Merge(in, collected)

	var order, slugs []string
	for _, e := range got {
		order = append(order, e.RepoFullName)
		slugs = append(slugs, e.Slug)
	}
	if want := "dave/pdf alice/pdf bob/pdf carol/pdf"; strings.Join(order, " ") != want {
		t.Errorf("order = %v, want %s", order, want)
	}
	if want := "pdf alice-pdf bob-pdf carol-pdf"; strings.Join(slugs, " ") != want {
		t.Errorf("slugs = %v, want %s", slugs, want)
	}
}

func TestMergeDeterministic(t *testing.T) {
	var in []catalog.Candidate
	for i := range 40 {
		src := []catalog.Source{catalog.SourceTopic, catalog.SourceSearch, catalog.SourceManual}[i%3]
		in = append(in, cand(fmt.Sprintf("user%d/skill", i%7), (i*37)%11, src, fmt.Sprintf("t%d", i)))
	}

	a, b := Merge(in, collected), Merge(in, collected)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	slugs := map[string]bool{}
	keys := map[string]bool{}
	for i := range a {
		if a[i].Slug != b[i].Slug || a[i].ID != b[i].ID {
			t.Errorf("entry %d differs: %s/%s vs %s/%s", i, a[i].Slug, a[i].ID, b[i].Slug, b[i].ID)
		}
		if slugs[a[i].Slug] {
			t.Errorf("duplicate slug %q", a[i].Slug)
		}
		slugs[a[i].Slug] = true
		k := strings.ToLower(a[i].RepoFullName)
		if keys[k] {
			t.Errorf("duplicate full name %q", k)
		}
		keys[k] = true
	}
	if len(a) != 7 {
		t.Errorf("Merge() = %d entries, want 7", len(a))
	}
}

func TestMergeEntryFields(t *testing.T) {
	c := cand("o/r", 3, catalog.SourceSearch)
	c.PushedAt = collected.AddDate(0, 0, -3)
	c.Category = catalog.CategoryCoding

	got := Merge([]catalog.Candidate{c}, collected)[0]
	if !got.LastCommitAt.Equal(c.PushedAt) {
		t.Errorf("LastCommitAt = %v", got.LastCommitAt)
	}
	if !got.CollectedAt.Equal(collected) {
		t.Errorf("CollectedAt = %v", got.CollectedAt)
	}
	if len(got.Categories) != 1 || got.Categories[0] != catalog.CategoryCoding {
		t.Errorf("Categories = %v", got.Categories)
	}
	if got.Tags == nil {
		t.Error("Tags should be empty, not nil")
	}
	if got.ID != identity.ComputeID("o/r", "") {
		t.Errorf("ID = %q", got.ID)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	in := []catalog.Candidate{
		cand("a/x", 1, catalog.SourceSearch, "one"),
		cand("a/x", 1, catalog.SourceTopic, "two"),
	}
	Merge(in, collected)
	if in[0].Source != catalog.SourceSearch || len(in[1].Tags) != 1 {
		t.Errorf("input modified: %+v", in)
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil, collected); len(got) != 0 {
		t.Errorf("Merge(nil) = %v", got)
	}
}

func TestUnionTags(t *testing.T) {
	got := UnionTags([]string{"a", "b"}, []string{"b", "", " c ", "a"})
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("UnionTags() = %v", got)
	}
}

func ExampleMerge() {
	in := []catalog.Candidate{
		{FullName: "a/x", Name: "X", Author: "a", Stars: 50, Source: catalog.SourceTopic, Tags: []string{"claude-skills"}},
		{FullName: "A/X", Name: "X", Author: "a", Stars: 50, Source: catalog.SourceSearch, Tags: []string{"cli"}},
	}
	for _, e := range Merge(in, time.Time{}) {
		fmt.Println(e.RepoFullName, e.Slug, e.Tags)
	}
	// Output:
	// a/x x [claude-skills cli]
}
