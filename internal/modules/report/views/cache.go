// Package views holds the report templates and the cache that loads them.
package views

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"sideseeing-report/internal/errs"
)

// Layout names a built-in template.
type Layout string

const (
	LayoutDataset  Layout = "dataset.html"
	LayoutNotebook Layout = "notebook.html"
)

// Template is a parsed template together with the name to execute.
type Template struct {
	tmpl *template.Template
	name string
	// Path is the resolved file path, empty for a built-in layout.
	Path string
}

func (t *Template) Execute(w io.Writer, data any) error {
	return t.tmpl.ExecuteTemplate(w, t.name, data)
}

// Cache parses each template once per run. Built-in layouts are parsed on
// first use; override files are keyed by their absolute path. Templates never
// change during a run, so entries are never invalidated.
type Cache struct {
	mu       sync.Mutex
	fsys     fs.FS
	dir      string
	defaults *template.Template
	byPath   map[string]*Template
}

func NewCache() *Cache {
	return newCacheFromFS(viewsFS, "templates")
}

// newCacheFromFS is used by tests to supply broken built-in templates.
func newCacheFromFS(fsys fs.FS, dir string) *Cache {
	return &Cache{fsys: fsys, dir: dir, byPath: make(map[string]*Template)}
}

// Get returns the template for layout. A non-empty path overrides the
// built-in layout and must name an existing file (ErrTemplateNotFound
// otherwise); a parse failure is ErrRender.
func (c *Cache) Get(layout Layout, path string) (*Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if path == "" {
		return c.builtin(layout)
	}

	resolved, err := Resolve(path)
	if err != nil {
		return nil, err
	}
	if t, ok := c.byPath[resolved]; ok {
		return t, nil
	}
	name := filepath.Base(resolved)
	tmpl, err := template.New(name).Funcs(Funcs()).ParseFiles(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: parse template %s: %v", errs.ErrRender, resolved, err)
	}
	t := &Template{tmpl: tmpl, name: name, Path: resolved}
	c.byPath[resolved] = t
	return t, nil
}

// Len is the number of parsed override templates.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byPath)
}

func (c *Cache) builtin(layout Layout) (*Template, error) {
	if c.defaults == nil {
		sub, err := fs.Sub(c.fsys, c.dir)
		if err != nil {
			return nil, fmt.Errorf("%w: built-in templates: %v", errs.ErrRender, err)
		}
		tmpl, err := template.New("").Funcs(Funcs()).ParseFS(sub, "*.html", "partials/*.html")
		if err != nil {
			return nil, fmt.Errorf("%w: built-in templates: %v", errs.ErrRender, err)
		}
		c.defaults = tmpl
	}
	if c.defaults.Lookup(string(layout)) == nil {
		return nil, fmt.Errorf("%w: no built-in layout %q", errs.ErrTemplateNotFound, layout)
	}
	return &Template{tmpl: c.defaults, name: string(layout)}, nil
}

// Resolve returns the absolute path of an existing template file.
func Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", errs.ErrTemplateNotFound, path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errs.ErrTemplateNotFound, path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", errs.ErrTemplateNotFound, path)
	}
	return abs, nil
}

// Funcs are available to built-in and override templates alike.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"pngURI":  PNGDataURI,
		"js":      func(raw json.RawMessage) template.JS { return template.JS(raw) },
		"seconds": FormatSeconds,
		"join":    strings.Join,
	}
}

// PNGDataURI embeds a PNG inline as a data: URL.
func PNGDataURI(b []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(b))
}

// FormatSeconds renders a duration with at most two decimals, e.g. "21" or "8.5".
func FormatSeconds(s float64) string {
	return strconv.FormatFloat(math.Round(s*100)/100, 'f', -1, 64)
}
