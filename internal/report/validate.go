package report

import (
	"bytes"
	"fmt"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// validateStructure checks the generated Markdown before it is written:
// non-empty content, exactly one H1, and no skipped heading levels.
// It uses AST parsing for correctness.
func validateStructure(content []byte) error {
	if len(bytes.TrimSpace(content)) == 0 {
		return fmt.Errorf("report content is empty")
	}

	p := parser.New()
	doc := markdown.Parse(content, p)

	var headings []*ast.Heading
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if heading, ok := node.(*ast.Heading); ok && entering {
			headings = append(headings, heading)
		}
		return ast.GoToNext
	})

	h1Count := 0
	for _, h := range headings {
		if h.Level == 1 {
			h1Count++
		}
	}
	if h1Count != 1 {
		return fmt.Errorf("report has %d H1 headings, expected exactly one", h1Count)
	}

	prevLevel := 0
	for _, h := range headings {
		if h.Level > prevLevel+1 && prevLevel != 0 {
			return fmt.Errorf("heading level skipped: H%d follows H%d", h.Level, prevLevel)
		}
		prevLevel = h.Level
	}

	return nil
}
