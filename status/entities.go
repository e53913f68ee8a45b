package status

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mimusdev/mimus/markup"
	"github.com/mimusdev/mimus/util"
)

const displayUrlMax = 25

// The four thumbnail breakpoints of the media size table, in pixels.
var sizeBreakpoints = []struct {
	name  string
	width int
}{
	{"thumb", 150},
	{"small", 340},
	{"medium", 600},
	{"large", 1024},
}

var (
	reUrlMarker     = regexp.MustCompile(`(?s)\[url=([^\]]+)\](.*?)\[/url\]|\[url\](.*?)\[/url\]`)
	reImgMarker     = regexp.MustCompile(`(?s)\[img\](.*?)\[/img\]`)
	reMentionMarker = regexp.MustCompile(`@\[url=([^\]]+)\](.*?)\[/url\]`)
	reHashtagPlain  = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	reBareUrl       = regexp.MustCompile(`^https?://`)
)

// nextOccurrence locates the first occurrence of needle in plain at or after
// the byte offset from, returning codepoint indices and the byte offset at
// which the next search must resume. The advancing offset is what keeps two
// identical needles from resolving to the same span.
func nextOccurrence(plain, needle string, from int) ([2]int, int, bool) {
	if needle == "" || from >= len(plain) {
		return [2]int{}, from, false
	}
	idx := strings.Index(plain[from:], needle)
	if idx < 0 {
		return [2]int{}, from, false
	}
	byteStart := from + idx
	startCp := utf8.RuneCountInString(plain[:byteStart])
	endCp := startCp + utf8.RuneCountInString(needle)
	return [2]int{startCp, endCp}, byteStart + len(needle), true
}

// displayForm derives the human display form of a link: scheme and www.
// stripped, truncated to 25 codepoints with an ellipsis. A display title
// that is not itself a bare URL is used verbatim instead.
func displayForm(href, title string) string {
	if title != "" && title != href && !reBareUrl.MatchString(title) {
		return title
	}
	display := reBareUrl.ReplaceAllString(href, "")
	display = strings.TrimPrefix(display, "www.")
	if utf8.RuneCountInString(display) > displayUrlMax {
		runes := []rune(display)
		display = string(runes[:displayUrlMax]) + "…"
	}
	return display
}

// ExtractEntities runs the link, media, mention and hashtag passes over the
// derived plain text and the raw markup body. Spans come out in ascending
// startOffset order per pass and never overlap within a pass.
func ExtractEntities(plain string, rawBody string, conf *util.AppConfig) *EntityViews {
	entities := &EntityViews{
		Urls:         []UrlEntityView{},
		Hashtags:     []HashtagEntityView{},
		UserMentions: []MentionEntityView{},
	}

	normalized := markup.NormalizeLinks(rawBody)
	dims := markup.CollectImageDims(rawBody)

	// Link pass. Image markers are resolved separately, so drop them first.
	linkSource := reImgMarker.ReplaceAllString(normalized, "")
	cursor := 0
	for _, m := range reUrlMarker.FindAllStringSubmatch(linkSource, -1) {
		href, title := m[1], m[2]
		if href == "" {
			href, title = m[3], m[3]
		}

		indices, next, ok := nextOccurrence(plain, href, cursor)
		if !ok {
			// The body showed a title instead of the raw URL.
			indices, next, ok = nextOccurrence(plain, title, cursor)
		}
		if !ok {
			// Offset lookup failures never fail the request.
			continue
		}
		cursor = next

		entities.Urls = append(entities.Urls, UrlEntityView{
			Url:         href,
			ExpandedUrl: href,
			DisplayUrl:  displayForm(href, title),
			Indices:     indices,
		})
	}

	// Media pass, with its own advancing offset.
	cursor = 0
	for i, m := range reImgMarker.FindAllStringSubmatch(normalized, -1) {
		src := m[1]
		indices, next, ok := nextOccurrence(plain, src, cursor)
		if !ok {
			continue
		}
		cursor = next

		media := MediaEntityView{
			Id:            int64(i + 1),
			MediaUrl:      src,
			MediaUrlHttps: src,
			Url:           src,
			DisplayUrl:    displayForm(src, ""),
			ExpandedUrl:   src,
			Type:          "photo",
			Indices:       indices,
		}

		if d, known := dims[src]; known {
			media.Sizes = scaledSizes(d, conf.Conf.NoProxy)
		}
		if !conf.Conf.NoProxy {
			media.MediaUrlHttps = ProxyUrl(conf, src)
		}

		entities.Media = append(entities.Media, media)
	}

	// Mention pass over the raw body markup.
	cursor = 0
	for _, m := range reMentionMarker.FindAllStringSubmatch(rawBody, -1) {
		profile, name := m[1], m[2]
		indices, next, ok := nextOccurrence(plain, name, cursor)
		if !ok {
			continue
		}
		cursor = next
		entities.UserMentions = append(entities.UserMentions, MentionEntityView{
			ScreenName: name,
			Name:       name,
			Indices:    indices,
		})
		_ = profile
	}

	// Hashtag pass directly over the plain text.
	for _, loc := range reHashtagPlain.FindAllStringSubmatchIndex(plain, -1) {
		start := utf8.RuneCountInString(plain[:loc[0]])
		end := utf8.RuneCountInString(plain[:loc[1]])
		entities.Hashtags = append(entities.Hashtags, HashtagEntityView{
			Text:    plain[loc[2]:loc[3]],
			Indices: [2]int{start, end},
		})
	}

	return entities
}

// scaledSizes builds the size table for a media entity. Each breakpoint is
// included only when the source width exceeds it; with the proxy disabled
// only the original dimensions are reported.
func scaledSizes(d markup.ImageDims, noProxy bool) map[string]MediaSizeView {
	sizes := map[string]MediaSizeView{
		"original": {W: d.Width, H: d.Height, Resize: "fit"},
	}
	if noProxy || d.Width <= 0 || d.Height <= 0 {
		return sizes
	}
	for _, bp := range sizeBreakpoints {
		if d.Width > bp.width {
			sizes[bp.name] = MediaSizeView{
				W:      bp.width,
				H:      d.Height * bp.width / d.Width,
				Resize: "fit",
			}
		}
	}
	return sizes
}

// ProxyUrl rewrites a remote media URL into its caching-proxy form.
func ProxyUrl(conf *util.AppConfig, remote string) string {
	return conf.BaseURL() + "/proxy?url=" + url.QueryEscape(remote)
}
