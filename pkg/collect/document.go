package collect

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// Document is the name and description extracted from a skill document or
// plugin manifest. Empty fields were not found.
type Document struct {
	Name        string
	Description string
}

type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

var headingLine = regexp.MustCompile(`^#\s+(.+?)(?:\s+#+)?\s*$`)

// ParseDocument extracts a name and description from a markdown skill
// document. The name is the first level-one heading, falling back to the
// frontmatter name. The description is the first paragraph after that
// heading with inline HTML removed, falling back to the frontmatter
// description.
func ParseDocument(text string) Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	meta, body := splitFrontmatter(text)

	var doc Document
	heading := false
	var para []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !heading {
			if m := headingLine.FindStringSubmatch(trimmed); m != nil {
				doc.Name = m[1]
				heading = true
			}
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			break
		}
		if trimmed == "" {
			if len(para) > 0 {
				break
			}
			continue
		}
		para = append(para, trimmed)
	}
	doc.Description = stripHTML(strings.Join(para, " "))

	if doc.Name == "" {
		doc.Name = strings.TrimSpace(meta.Name)
	}
	if doc.Description == "" {
		doc.Description = stripHTML(meta.Description)
	}
	doc.Description = Truncate(doc.Description, MaxDescription)
	return doc
}

// splitFrontmatter separates a leading YAML block delimited by "---" lines.
// Unparseable frontmatter is ignored.
func splitFrontmatter(text string) (frontmatter, string) {
	var meta frontmatter
	if !strings.HasPrefix(text, "---\n") {
		return meta, text
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return meta, text
	}
	_ = yaml.Unmarshal([]byte(rest[:end]), &meta)

	body := rest[end+len("\n---"):]
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	return meta, body
}

// stripHTML returns the text content of s with tags removed and whitespace
// collapsed.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}

// ParseManifest extracts name and description from a plugin or marketplace
// manifest. ok is false when data is not a JSON object.
func ParseManifest(data []byte) (doc Document, ok bool) {
	var m struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(data), &m); err != nil {
		return Document{}, false
	}
	return Document{
		Name:        strings.TrimSpace(m.Name),
		Description: Truncate(stripHTML(m.Description), MaxDescription),
	}, true
}
