package markup

import (
	"fmt"
	"html"
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Render converts post body markup into display HTML and derived plain text.
// The translation engine treats this as a pure function: same body in, same
// pair out.
func Render(body string) (string, string) {
	htmlOut := ToHTML(body)
	return htmlOut, Flatten(htmlOut)
}

var (
	reBold      = regexp.MustCompile(`(?s)\[b\](.*?)\[/b\]`)
	reItalic    = regexp.MustCompile(`(?s)\[i\](.*?)\[/i\]`)
	reUnderline = regexp.MustCompile(`(?s)\[u\](.*?)\[/u\]`)
	reStrike    = regexp.MustCompile(`(?s)\[s\](.*?)\[/s\]`)
	reQuote     = regexp.MustCompile(`(?s)\[quote\](.*?)\[/quote\]`)
	reCode      = regexp.MustCompile(`(?s)\[code\](.*?)\[/code\]`)
	reHeading   = regexp.MustCompile(`(?s)\[h([1-6])\](.*?)\[/h[1-6]\]`)
	reUrlTitled = regexp.MustCompile(`(?s)\[url=([^\]]+)\](.*?)\[/url\]`)
	reUrlBare   = regexp.MustCompile(`(?s)\[url\](.*?)\[/url\]`)
	reImgSized  = regexp.MustCompile(`(?s)\[img=([0-9]+)x([0-9]+)\](.*?)\[/img\]`)
	reImgBare   = regexp.MustCompile(`(?s)\[img\](.*?)\[/img\]`)
	reBreak     = regexp.MustCompile(`(?i)<br\s*/?>`)
	reImgTag    = regexp.MustCompile(`(?i)<img[^>]*src="([^"]*)"[^>]*/?>`)
)

// ToHTML renders the bbcode subset used by stored posts into HTML.
func ToHTML(body string) string {
	out := body

	// The share wrapper renders as a quote with attribution.
	if share, ok := ParseShare(out); ok {
		out = fmt.Sprintf("[quote][url=%s]%s[/url] wrote:\n%s[/quote]", share.Profile, share.Author, share.Body)
	}

	out = reImgSized.ReplaceAllString(out, `<img src="$3" width="$1" height="$2" alt="" />`)
	out = reImgBare.ReplaceAllString(out, `<img src="$1" alt="" />`)
	out = reUrlTitled.ReplaceAllString(out, `<a href="$1">$2</a>`)
	out = reUrlBare.ReplaceAllString(out, `<a href="$1">$1</a>`)
	out = reBold.ReplaceAllString(out, `<strong>$1</strong>`)
	out = reItalic.ReplaceAllString(out, `<em>$1</em>`)
	out = reUnderline.ReplaceAllString(out, `<u>$1</u>`)
	out = reStrike.ReplaceAllString(out, `<del>$1</del>`)
	out = reQuote.ReplaceAllString(out, `<blockquote>$1</blockquote>`)
	out = reCode.ReplaceAllString(out, `<pre>$1</pre>`)
	out = reHeading.ReplaceAllString(out, `<h$1>$2</h$1>`)
	out = strings.Replace(out, "\n", "<br />", -1)

	return out
}

// Flatten strips an HTML fragment down to its plain text. Break markers
// survive as newlines and images as their source URL, so entity offsets
// line up with what text-only clients display.
func Flatten(htmlIn string) string {
	withBreaks := reBreak.ReplaceAllString(htmlIn, "\n")
	withBreaks = reImgTag.ReplaceAllString(withBreaks, "$1")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(withBreaks))
	if err != nil {
		// A fragment that does not even parse falls back to a tag strip.
		log.Printf("Flatten: unparsable fragment: %v", err)
		return html.UnescapeString(regexp.MustCompile(`<[^>]*>`).ReplaceAllString(withBreaks, ""))
	}

	return doc.Text()
}
