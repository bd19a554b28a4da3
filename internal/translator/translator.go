// Package translator converts WordPress post bodies to Markdown.
package translator

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	"github.com/mrlokans/wp2md/internal/utils"
)

// ImagesDir is the folder, relative to a record file, holding its images.
const ImagesDir = "images"

var (
	captionShortcode = regexp.MustCompile(`(?s)\[caption[^\]]*\](.*?)\[/caption\]`)
	captionImage     = regexp.MustCompile(`(?s)^\s*((?:<a[^>]*>)?\s*<img[^>]*>\s*(?:</a>)?)(.*)$`)
	blockStart       = regexp.MustCompile(`(?i)^<(?:p|div|ul|ol|li|h[1-6]|blockquote|pre|table|figure|iframe|script|hr|dl|form|section|!--)[\s>/]`)
	imageSource      = regexp.MustCompile(`(?i)\.(gif|jpe?g|png)$`)
	blankLines       = regexp.MustCompile(`\n\s*\n`)
)

const nbsp = "\u00a0"

// Options controls translation.
type Options struct {
	// RewriteImageSources points <img> tags at the record's local images folder.
	RewriteImageSources bool
}

// Translator is safe for concurrent use and meant to be shared by every
// record of a run.
type Translator struct {
	conv *md.Converter
	opts Options
}

// New creates a Translator.
func New(opts Options) *Translator {
	conv := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		CodeBlockStyle:   "fenced",
		Fence:            "```",
		BulletListMarker: "-",
		EmDelimiter:      "_",
		StrongDelimiter:  "**",
	})
	conv.Use(plugin.GitHubFlavored())

	t := &Translator{conv: conv, opts: opts}
	conv.AddRules(
		md.Rule{Filter: []string{"iframe", "script"}, Replacement: passthrough},
		md.Rule{Filter: []string{"figcaption"}, Replacement: figcaption},
		md.Rule{Filter: []string{"img"}, Replacement: t.image},
	)
	return t
}

// Translate converts a raw post body to Markdown.
func (t *Translator) Translate(rawBody string) (string, error) {
	if strings.TrimSpace(rawBody) == "" {
		return "", nil
	}

	html := autop(expandCaptions(rawBody))
	out, err := t.conv.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert body: %w", err)
	}
	return cleanNbsp(out), nil
}

func (t *Translator) image(content string, selec *goquery.Selection, opt *md.Options) *string {
	if !t.opts.RewriteImageSources {
		return nil
	}
	src, ok := selec.Attr("src")
	if !ok || !imageSource.MatchString(src) {
		return nil
	}
	// same name the downloader stores the file under
	filename := utils.ImageFilename(src)
	if filename == "" {
		return nil
	}
	alt := strings.TrimSpace(selec.AttrOr("alt", ""))
	return md.String(fmt.Sprintf("![%s](%s/%s)", alt, ImagesDir, url.PathEscape(filename)))
}

func passthrough(content string, selec *goquery.Selection, opt *md.Options) *string {
	html, err := goquery.OuterHtml(selec)
	if err != nil {
		return nil
	}
	return md.String("\n\n" + html + "\n\n")
}

func figcaption(content string, selec *goquery.Selection, opt *md.Options) *string {
	text := strings.TrimSpace(content)
	if text == "" {
		return md.String("")
	}
	return md.String("\n\n" + text + "\n\n")
}

// expandCaptions turns [caption] shortcodes into <figure> elements.
func expandCaptions(body string) string {
	return captionShortcode.ReplaceAllStringFunc(body, func(shortcode string) string {
		inner := captionShortcode.FindStringSubmatch(shortcode)[1]
		parts := captionImage.FindStringSubmatch(inner)
		if parts == nil {
			return inner
		}
		return fmt.Sprintf("<figure>%s<figcaption>%s</figcaption></figure>",
			strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]))
	})
}

// autop wraps blank-line separated text in paragraphs, the way WordPress
// renders bodies saved without explicit <p> tags.
func autop(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	chunks := blankLines.Split(body, -1)

	var b strings.Builder
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if blockStart.MatchString(chunk) {
			b.WriteString(chunk)
		} else {
			b.WriteString("<p>")
			b.WriteString(strings.ReplaceAll(chunk, "\n", "<br>\n"))
			b.WriteString("</p>")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// cleanNbsp drops non-breaking spaces left at line ends and lines holding
// nothing else.
func cleanNbsp(out string) string {
	lines := strings.Split(out, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimRight(line, nbsp)
		if trimmed != line && strings.TrimSpace(trimmed) == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
