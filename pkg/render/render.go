// Package render turns resolution results into HTML and HTTP status codes.
// Successful content is written byte-for-byte; failures become a small
// error fragment that names what was attempted and where to look.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path/filepath"

	"github.com/anams/page-server/pkg/document"
	"github.com/anams/page-server/pkg/registry"
)

//go:embed templates/*.html
var templatesFS embed.FS

// EmptyRegistryWarning is shown when a registry lists no documents
const EmptyRegistryWarning = "No documents are registered. Check the configured document list or the asset directory."

// StatusCode maps a resolution to the HTTP status it is served with
func StatusCode(res document.Resolved) int {
	if res.OK() {
		return http.StatusOK
	}
	switch res.Failure.Reason {
	case document.NotFound:
		return http.StatusNotFound
	case document.EmptyContent:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Page is the data for the sidebar layout
type Page struct {
	Title    string
	Entries  []registry.Entry
	Selected document.ID
	Warning  string
	Body     template.HTML
}

// Renderer executes the embedded templates
type Renderer struct {
	tmpl     *template.Template
	assetDir string
}

// New parses the embedded templates. assetDir is named in remediation hints.
func New(assetDir string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, assetDir: assetDir}, nil
}

type failureView struct {
	Reason       string
	Heading      string
	ID           document.ID
	Location     string
	ShowLocation bool
	Detail       string
	Hint         string
}

func (r *Renderer) view(res document.Resolved) failureView {
	v := failureView{
		Reason:   res.Failure.Reason.String(),
		ID:       res.ID,
		Location: res.Location,
		Detail:   res.Failure.Detail,
	}
	switch res.Failure.Reason {
	case document.NotFound:
		v.Heading = "File not found"
		v.ShowLocation = true
		v.Hint = fmt.Sprintf("Check that %s exists in the %s directory.", filepath.Base(res.Location), r.assetDir)
	case document.ReadError:
		v.Heading = "Failed to load the document"
		v.ShowLocation = true
	case document.EmptyContent:
		v.Heading = "The document is empty"
	}
	return v
}

// Document writes the content of a successful resolution unchanged, or the
// error fragment for a failed one.
func (r *Renderer) Document(w io.Writer, res document.Resolved) error {
	if res.OK() {
		_, err := io.WriteString(w, res.Content)
		return err
	}
	return r.tmpl.ExecuteTemplate(w, "failure", r.view(res))
}

// RouteNotFound writes the fragment for a path that no route serves
func (r *Renderer) RouteNotFound(w io.Writer, path string) error {
	return r.tmpl.ExecuteTemplate(w, "route", path)
}

// Fragment renders res for embedding in the layout
func (r *Renderer) Fragment(res document.Resolved) (template.HTML, error) {
	if res.OK() {
		// asset content is trusted and shown as authored
		return template.HTML(res.Content), nil
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "failure", r.view(res)); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Layout writes the sidebar page
func (r *Renderer) Layout(w io.Writer, p Page) error {
	if p.Warning == "" && len(p.Entries) == 0 {
		p.Warning = EmptyRegistryWarning
	}
	return r.tmpl.ExecuteTemplate(w, "layout", p)
}
