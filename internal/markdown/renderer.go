// Package markdown renders assistant-authored markdown into HTML for the chat view. The
// session only ever produces plain markdown strings; everything about how a node kind is
// formatted lives in the renderer configuration here.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

type config struct {
	highlightStyle string
	hardWraps      bool
	allowRawHTML   bool
}

// Option adjusts how a node kind is rendered.
type Option func(*config)

// WithHighlightStyle sets the chroma style used for fenced code blocks.
func WithHighlightStyle(style string) Option {
	return func(c *config) { c.highlightStyle = style }
}

// WithHardWraps renders single newlines as line breaks, matching how streamed replies
// use them.
func WithHardWraps() Option {
	return func(c *config) { c.hardWraps = true }
}

// WithRawHTML passes raw HTML in the source through. Off by default: assistant output is
// untrusted.
func WithRawHTML() Option {
	return func(c *config) { c.allowRawHTML = true }
}

// Renderer converts markdown to HTML. Safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a Renderer. The defaults handle everything the guru emits: GFM tables and
// autolinks, numbered lists, and highlighted fenced code blocks.
func New(opts ...Option) *Renderer {
	cfg := config{highlightStyle: "monokai"}
	for _, opt := range opts {
		opt(&cfg)
	}

	rendererOpts := []goldmark.Option{
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(cfg.highlightStyle),
			),
		),
	}

	var htmlOpts []renderer.Option
	if cfg.hardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}
	if cfg.allowRawHTML {
		htmlOpts = append(htmlOpts, html.WithUnsafe())
	}
	if len(htmlOpts) > 0 {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(htmlOpts...))
	}

	return &Renderer{md: goldmark.New(rendererOpts...)}
}

// Render converts one markdown document to HTML. It is applied to both final messages
// and the partial accumulations streamed during a reply.
func (r *Renderer) Render(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
