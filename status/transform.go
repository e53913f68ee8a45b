package status

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mimusdev/mimus/domain"
	"github.com/mimusdev/mimus/markup"
	"github.com/mimusdev/mimus/util"
)

// Feed-relayed posts get cut down to this many codepoints.
const feedTextLimit = 1000

// Rendered is the client-facing content of one post: derived plain text,
// display HTML, the inline image list, and optionally positioned entities.
type Rendered struct {
	Text        string
	Html        string
	Attachments []AttachmentView
	Entities    *EntityViews
}

var (
	reBrRun        = regexp.MustCompile(`(?:<br\s*/?>\s*){2,}`)
	reBrBeforeH    = regexp.MustCompile(`<br\s*/?>\s*<(h[1-6]|blockquote)`)
	reBrAfterH     = regexp.MustCompile(`(</(?:h[1-6]|blockquote)>)\s*(?:<br\s*/?>)+`)
	reLeadingBr    = regexp.MustCompile(`^(\s*<br\s*/?>)+`)
	reTrailingBr   = regexp.MustCompile(`(<br\s*/?>\s*)+$`)
	reInlineImgSrc = regexp.MustCompile(`(?i)(<img[^>]*src=")([^"]*)(")`)
)

// Transform converts one stored post into its client-facing content.
// Entities are populated only when the request opts in; otherwise inline
// image URLs are rewritten to the caching-proxy form instead.
func Transform(post *domain.Post, includeEntities bool, conf *util.AppConfig) *Rendered {
	// Plain text comes from the simplified body rendered to HTML and
	// flattened back down.
	simplified := markup.SimplifyPictureLinks(post.Body)
	_, text := markup.Render(simplified)
	text = strings.TrimSpace(text)

	if post.Title != "" && !strings.Contains(text, post.Title) {
		text = post.Title + "\n\n" + text
	}

	if post.NetworkOrigin == domain.NetworkFeed && utf8.RuneCountInString(text) > feedTextLimit {
		runes := []rune(text)
		text = string(runes[:feedTextLimit]) + "... " + post.Uri
	}

	html := normalizeDisplayHtml(markup.ToHTML(post.Body))

	if strings.TrimSpace(post.Body) == "" && post.NetworkOrigin == domain.NetworkFeed {
		html = fmt.Sprintf(`<a href="%s">%s</a>`, post.Uri, post.Uri)
	}

	entities := ExtractEntities(text, post.Body, conf)

	rendered := &Rendered{
		Text:        text,
		Html:        html,
		Attachments: attachmentsFromMedia(entities.Media),
	}

	if includeEntities {
		rendered.Entities = entities
	} else if !conf.Conf.NoProxy {
		rendered.Html = reInlineImgSrc.ReplaceAllStringFunc(rendered.Html, func(m string) string {
			parts := reInlineImgSrc.FindStringSubmatch(m)
			return parts[1] + ProxyUrl(conf, parts[2]) + parts[3]
		})
	}

	return rendered
}

// normalizeDisplayHtml applies the fixed substitution set that keeps
// limited client HTML parsers from rendering stray blank lines around
// block elements.
func normalizeDisplayHtml(html string) string {
	out := reBrBeforeH.ReplaceAllString(html, "<$1")
	out = reBrAfterH.ReplaceAllString(out, "$1")
	out = reBrRun.ReplaceAllString(out, "<br />")
	out = reLeadingBr.ReplaceAllString(out, "")
	out = reTrailingBr.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

func attachmentsFromMedia(media []MediaEntityView) []AttachmentView {
	var attachments []AttachmentView
	for _, m := range media {
		attachments = append(attachments, AttachmentView{
			Url:      m.Url,
			Mimetype: guessImageMime(m.Url),
		})
	}
	return attachments
}

func guessImageMime(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
