package notify

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Renderer renders the embedded e-mail templates.
type Renderer struct {
	engine *html.Engine
}

// NewRenderer loads the embedded templates.
func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open templates: %w", err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Renderer{engine: engine}, nil
}

// Render executes the named template, without extension.
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Render(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}

	return buf.String(), nil
}
