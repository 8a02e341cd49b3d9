// Package classify maps free text to a catalogue category.
//
// Classification is a priority list, not a scored match: rules are evaluated
// in [Rules] order against the lower-cased text and the first match wins.
// Patterns are plain substring alternations, so "ci" also matches inside
// longer words. That looseness is accepted; the table is the contract.
package classify

import (
	"regexp"
	"strings"

	"github.com/matzehuels/skillcat/pkg/catalog"
)

// Rule maps a keyword pattern to a category.
type Rule struct {
	Category catalog.Category
	Pattern  *regexp.Regexp
}

// Rules is the fixed, ordered rule table.
var Rules = []Rule{
	{catalog.CategoryTesting, regexp.MustCompile(`test|spec|jest|mocha|cypress|playwright`)},
	{catalog.CategoryDevOps, regexp.MustCompile(`docker|kubernetes|k8s|ci|cd|deploy|aws|azure|gcp|devops`)},
	{catalog.CategoryAutomation, regexp.MustCompile(`automat|script|workflow|task|cron`)},
	{catalog.CategoryWriting, regexp.MustCompile(`write|blog|document|markdown|content|readme`)},
	{catalog.CategoryDocumentation, regexp.MustCompile(`doc|documentation|api.?doc`)},
	{catalog.CategoryProductivity, regexp.MustCompile(`productiv|todo|note|organiz|gtd`)},
	{catalog.CategorySecurity, regexp.MustCompile(`security|auth|encrypt|vulnerab|pentest`)},
	{catalog.CategoryAIML, regexp.MustCompile(`ai|ml|machine.?learn|llm|gpt|model|train`)},
	{catalog.CategoryCoding, regexp.MustCompile(`code|debug|refactor|lint|format|git|api|program`)},
}

// Categorize returns the category of the first rule matching text, or
// [catalog.CategoryOther].
func Categorize(text string) catalog.Category {
	lower := strings.ToLower(text)
	for _, r := range Rules {
		if r.Pattern.MatchString(lower) {
			return r.Category
		}
	}
	return catalog.CategoryOther
}

// Classify returns the primary category of text together with every
// matching category in rule order. The list always starts with the primary
// category.
func Classify(text string) (catalog.Category, []catalog.Category) {
	lower := strings.ToLower(text)
	var all []catalog.Category
	for _, r := range Rules {
		if r.Pattern.MatchString(lower) {
			all = append(all, r.Category)
		}
	}
	if len(all) == 0 {
		return catalog.CategoryOther, []catalog.Category{catalog.CategoryOther}
	}
	return all[0], all
}

// Text joins a name and description the way the classifier expects them.
func Text(name, description string) string {
	return name + " " + description
}
