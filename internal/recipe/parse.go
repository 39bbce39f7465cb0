package recipe

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"
)

// Document is a vault entry read back from disk: parsed frontmatter plus
// the body sections the duplicate detector cares about. It is the exact
// inverse of Render for the Ingredients/Instructions sections (shared test
// fixtures keep the pair in lockstep).
type Document struct {
	Metadata     RecipeMetadata
	Ingredients  []string
	Instructions []string
	Notes        string
}

// ParseDocument parses a rendered recipe file back into its metadata and
// body sections. Files not produced by Render may parse partially; callers
// comparing ingredients should treat a parse failure as a conflict, not a
// match.
func ParseDocument(content string) (*Document, error) {
	fmRaw, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(fmRaw), &fm); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	doc := &Document{
		Metadata: RecipeMetadata{
			Title:           fm.Title,
			PrepTimeMinutes: fm.PrepTimeMinutes,
			CookTimeMinutes: fm.CookTimeMinutes,
			Servings:        fm.Servings,
			Cuisine:         fm.Cuisine,
			Tags:            fm.Tags,
			Macros:          fm.Macros,
			SourceURL:       fm.SourceURL,
		},
	}
	if fm.Created != "" {
		if created, err := time.Parse(time.RFC3339, fm.Created); err == nil {
			doc.Metadata.Created = created
		}
	}

	parseBody(body, doc)
	return doc, nil
}

// splitFrontmatter separates the leading YAML block from the markdown body.
func splitFrontmatter(content string) (string, string, error) {
	if !strings.HasPrefix(content, "---\n") {
		return "", "", fmt.Errorf("missing frontmatter delimiter")
	}
	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		// Frontmatter may close at end of file without trailing content
		if strings.HasSuffix(rest, "\n---") {
			return rest[:len(rest)-len("---")], "", nil
		}
		return "", "", fmt.Errorf("unterminated frontmatter block")
	}
	return rest[:end+1], rest[end+len("\n---\n"):], nil
}

// parseBody walks the markdown AST and collects list items under the
// Ingredients and Instructions headings, and freeform text under Notes.
// Item text is read from the raw source segments so markdown
// metacharacters survive the round trip.
func parseBody(body string, doc *Document) {
	src := []byte(body)
	root := goldmark.New().Parser().Parse(gtext.NewReader(src))

	section := ""
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 2 {
				section = strings.ToLower(strings.TrimSpace(rawLines(node, src)))
			} else {
				section = ""
			}
			return ast.WalkSkipChildren, nil

		case *ast.List:
			switch section {
			case "ingredients":
				doc.Ingredients = append(doc.Ingredients, listItems(node, src)...)
			case "instructions":
				doc.Instructions = append(doc.Instructions, listItems(node, src)...)
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			if section == "notes" {
				if doc.Notes != "" {
					doc.Notes += "\n\n"
				}
				doc.Notes += rawLines(node, src)
			}
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})
}

// listItems extracts the raw text of each item in a list.
func listItems(list *ast.List, src []byte) []string {
	var items []string
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		var parts []string
		for child := li.FirstChild(); child != nil; child = child.NextSibling() {
			if text := rawLines(child, src); text != "" {
				parts = append(parts, text)
			}
		}
		if item := strings.TrimSpace(strings.Join(parts, " ")); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// rawLines returns the raw source text covered by a block node's lines.
func rawLines(n ast.Node, src []byte) string {
	lines := n.Lines()
	var parts []string
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, strings.TrimSpace(string(src[seg.Start:seg.Stop])))
	}
	return strings.Join(parts, " ")
}
