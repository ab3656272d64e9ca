// CLAUDE:SUMMARY Core pipeline engine that dispatches uploaded-document extraction by format (pdf, txt, html).
// Package docpipe extracts structured text from uploaded listing documents.
//
// Supported formats:
//   - .pdf   — PDF text extraction (cross-reference + content stream decoding)
//   - .txt   — Plain text (passthrough with whitespace normalization)
//   - .html  — HTML (visible text, boilerplate stripped)
//
// Uploads are handled in memory: a listing dossier or agency PDF is a few
// hundred kilobytes, never a corpus.
//
// Usage:
//
//	pipe := docpipe.New(docpipe.Config{})
//	doc, err := pipe.Extract(ctx, "dossier.pdf", data)
//	fmt.Println(doc.Title, len(doc.Sections), "sections")
package docpipe

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Pipeline is the document extraction engine.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// Detect returns the document format based on the upload's filename.
func (p *Pipeline) Detect(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".txt", ".text":
		return FormatTXT, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", ext)
	}
}

// Extract parses an uploaded document and returns structured sections.
func (p *Pipeline) Extract(ctx context.Context, name string, data []byte) (*Document, error) {
	if int64(len(data)) > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("upload too large: %d bytes (max %d)", len(data), p.cfg.MaxFileSize)
	}

	format, err := p.Detect(name)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("extracting document", "name", name, "format", format, "size", len(data))

	var sections []Section
	var title string

	switch format {
	case FormatPDF:
		title, sections, err = extractPDF(data)
	case FormatTXT:
		title, sections, err = extractText(data)
	case FormatHTML:
		title, sections, err = extractHTML(data)
	default:
		return nil, fmt.Errorf("no parser for format: %s", format)
	}

	if err != nil {
		return nil, fmt.Errorf("extract %s (%s): %w", name, format, err)
	}

	// Build raw text from sections.
	var sb strings.Builder
	for i, s := range sections {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if s.Title != "" {
			sb.WriteString(s.Title)
			sb.WriteByte('\n')
		}
		sb.WriteString(s.Text)
	}

	return &Document{
		Name:     name,
		Format:   format,
		Title:    title,
		Sections: sections,
		RawText:  sb.String(),
	}, nil
}

// SupportedFormats returns all supported format extensions.
func SupportedFormats() []string {
	return []string{"pdf", "txt", "html"}
}
