package markup

import (
	"regexp"
	"strconv"
)

var (
	rePictureLink = regexp.MustCompile(`(?s)\[url=[^\]]+\]\s*(\[img(=[0-9]+x[0-9]+)?\].*?\[/img\])\s*\[/url\]`)
	reBareLink    = regexp.MustCompile(`([^\]='"/]|^)(https?://[a-zA-Z0-9:/\-?&;.=_~#%$!+,@]+)`)
	reHashtagLink = regexp.MustCompile(`#\[url=([^\]]+)\](.*?)\[/url\]`)
	reBookmark    = regexp.MustCompile(`(?s)\[bookmark=([^\]]+)\](.*?)\[/bookmark\]`)
	reVideo       = regexp.MustCompile(`(?s)\[video\](.*?)\[/video\]`)
	reYoutube     = regexp.MustCompile(`(?s)\[youtube\](.*?)\[/youtube\]`)
	reVimeo       = regexp.MustCompile(`(?s)\[vimeo\](.*?)\[/vimeo\]`)
	reSizedImg    = regexp.MustCompile(`\[img=([0-9]+)x([0-9]+)\]([^\[]+)\[/img\]`)
)

// ImageDims records the declared source dimensions of a sized image marker.
type ImageDims struct {
	Width  int
	Height int
}

// SimplifyPictureLinks unwraps the picture-link pattern (an image wrapped in
// a link to its full-size variant) down to the bare image marker.
func SimplifyPictureLinks(body string) string {
	return rePictureLink.ReplaceAllString(body, "$1")
}

// NormalizeLinks prepares a raw body for the link entity pass: picture links
// simplified, bare http(s) substrings wrapped into link markup, hashtag and
// bookmark and video-provider markup unwrapped into plain link markup, and
// sized images reduced to unsized ones.
func NormalizeLinks(body string) string {
	out := SimplifyPictureLinks(body)
	out = reBareLink.ReplaceAllString(out, "$1[url=$2]$2[/url]")
	out = reHashtagLink.ReplaceAllString(out, "[url=$1]$2[/url]")
	out = reBookmark.ReplaceAllString(out, "[url=$1]$2[/url]")
	out = reVideo.ReplaceAllString(out, "[url=$1]$1[/url]")
	out = reYoutube.ReplaceAllString(out, "[url=$1]$1[/url]")
	out = reVimeo.ReplaceAllString(out, "[url=$1]$1[/url]")
	out = reSizedImg.ReplaceAllString(out, "[img]$3[/img]")
	return out
}

// CollectImageDims maps image source URLs to their declared dimensions,
// taken from sized image markers before normalization discards them.
func CollectImageDims(body string) map[string]ImageDims {
	dims := make(map[string]ImageDims)
	for _, m := range reSizedImg.FindAllStringSubmatch(body, -1) {
		w, _ := strconv.Atoi(m[1])
		h, _ := strconv.Atoi(m[2])
		dims[m[3]] = ImageDims{Width: w, Height: h}
	}
	return dims
}
