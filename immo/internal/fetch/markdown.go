package fetch

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

// markdownConverter turns listing-page HTML into markdown. Markdown keeps
// the structure the model needs (headings, price tables) at a fraction of
// the raw HTML's character count.
type markdownConverter struct {
	sanitizer *bluemonday.Policy
	conv      *converter.Converter
}

func newMarkdownConverter() *markdownConverter {
	return &markdownConverter{
		sanitizer: bluemonday.UGCPolicy(),
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// convert produces markdown from HTML. If conversion fails or produces
// empty output, returns the sanitized HTML so the caller still has text
// to feed the model.
func (m *markdownConverter) convert(html string, sourceURL string) string {
	if html == "" {
		return ""
	}
	clean := m.sanitizer.Sanitize(html)
	result, err := m.conv.ConvertString(clean, converter.WithDomain(sourceURL))
	if err != nil || strings.TrimSpace(result) == "" {
		return strings.TrimSpace(clean)
	}
	return strings.TrimSpace(result)
}
