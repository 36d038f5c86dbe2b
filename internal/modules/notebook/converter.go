// Package notebook converts a Jupyter notebook into report components.
package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"sideseeing-report/internal/errs"
	"sideseeing-report/internal/modules/report"
	"sideseeing-report/internal/utils"
)

const (
	mimeHTML  = "text/html"
	mimePNG   = "image/png"
	mimePlain = "text/plain"
)

type Converter struct {
	md     goldmark.Markdown
	logger *slog.Logger
}

func NewConverter(logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		// Notebook markdown routinely embeds raw HTML.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Converter{md: md, logger: logger.With("component", "notebook")}
}

// ConvertFile reads the notebook at path. The title defaults to the file
// name without its extension.
func (c *Converter) ConvertFile(path string) (string, []report.Component, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidInputPath, path, err)
	}
	if !info.Mode().IsRegular() {
		return "", nil, fmt.Errorf("%w: %s is not a notebook file", errs.ErrInvalidInputPath, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidInputPath, path, err)
	}
	defer f.Close()

	base := filepath.Base(path)
	title, comps, err := c.Convert(f, strings.TrimSuffix(base, filepath.Ext(base)))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	return title, comps, nil
}

// Convert walks cells in order. Non-empty markdown cells become markdown
// components and the first <h1> among them becomes the title. Each code
// output contributes at most one component.
func (c *Converter) Convert(r io.Reader, defaultTitle string) (string, []report.Component, error) {
	var nb Notebook
	if err := json.NewDecoder(r).Decode(&nb); err != nil {
		return "", nil, fmt.Errorf("%w: decode notebook: %v", errs.ErrInvalidInputPath, err)
	}

	title := defaultTitle
	titleFound := false
	var comps []report.Component

	for i, cell := range nb.Cells {
		switch cell.CellType {
		case "markdown":
			if cell.Source == "" {
				continue
			}
			var buf bytes.Buffer
			if err := c.md.Convert([]byte(cell.Source), &buf); err != nil {
				return "", nil, fmt.Errorf("%w: cell %d markdown: %v", errs.ErrRender, i, err)
			}
			if !titleFound {
				if h1, ok, err := utils.FirstElementText(bytes.NewReader(buf.Bytes()), "h1"); err == nil && ok && h1 != "" {
					title = h1
					titleFound = true
				}
			}
			comps = append(comps, report.Component{Kind: report.ComponentMarkdown, Data: buf.String()})
		case "code":
			for j, out := range cell.Outputs {
				comp, ok, err := selectOutput(out)
				if err != nil {
					return "", nil, fmt.Errorf("%w: cell %d output %d: %v", errs.ErrInvalidInputPath, i, j, err)
				}
				if !ok {
					c.logger.Debug("output skipped, no supported representation", "cell", i, "output", j)
					continue
				}
				comps = append(comps, comp)
			}
		}
	}
	return title, comps, nil
}

// selectOutput picks one representation: HTML, then PNG, then plain text,
// then stream text.
func selectOutput(out Output) (report.Component, bool, error) {
	for _, pick := range []struct {
		mime string
		kind report.ComponentKind
	}{
		{mimeHTML, report.ComponentHTML},
		{mimePNG, report.ComponentImage},
		{mimePlain, report.ComponentText},
	} {
		data, ok, err := out.text(pick.mime)
		if err != nil {
			return report.Component{}, false, err
		}
		if ok {
			return report.Component{Kind: pick.kind, Data: data}, true, nil
		}
	}
	if out.Text != nil {
		return report.Component{Kind: report.ComponentText, Data: out.Text.String()}, true, nil
	}
	return report.Component{}, false, nil
}
