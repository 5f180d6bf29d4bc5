// Package markdown renders blog post bodies to HTML.
package markdown

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Raw HTML in post bodies is dropped; only markdown produces markup.
var engine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

// Heading is one entry of a post's table of contents.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

// Document is rendered markdown plus its outline.
type Document struct {
	HTML     string    `json:"html"`
	Headings []Heading `json:"headings"`
}

// Render converts markdown to HTML. On a conversion error the escaped source is returned.
func Render(markdownText string) Document {
	src := []byte(strings.TrimSpace(markdownText))
	doc := Document{Headings: []Heading{}}
	if len(src) == 0 {
		return doc
	}

	root := engine.Parser().Parse(text.NewReader(src))
	doc.Headings = headings(root, src)

	var out bytes.Buffer
	if err := engine.Renderer().Render(&out, src, root); err != nil {
		doc.HTML = template.HTMLEscapeString(string(src))
		return doc
	}
	doc.HTML = out.String()
	return doc
}

func headings(root ast.Node, src []byte) []Heading {
	out := []Heading{}
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		item := Heading{Level: h.Level, Text: string(h.Text(src))}
		if id, ok := h.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				item.ID = string(b)
			}
		}
		out = append(out, item)
		return ast.WalkSkipChildren, nil
	})
	return out
}
