package status

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mimusdev/mimus/domain"
)

func TestTransformPlainText(t *testing.T) {
	post := &domain.Post{Body: "hello http://example.com/x", NetworkOrigin: domain.NetworkNative}
	rendered := Transform(post, true, testConf())

	if rendered.Text != "hello http://example.com/x" {
		t.Errorf("text = %q", rendered.Text)
	}
	if rendered.Entities == nil || len(rendered.Entities.Urls) != 1 {
		t.Fatal("expected one url entity")
	}
	if rendered.Entities.Urls[0].Indices != [2]int{6, 26} {
		t.Errorf("indices = %v, want [6 26]", rendered.Entities.Urls[0].Indices)
	}
}

func TestTransformTitlePrepended(t *testing.T) {
	post := &domain.Post{Body: "body text", Title: "A Title", NetworkOrigin: domain.NetworkNative}
	rendered := Transform(post, false, testConf())

	if rendered.Text != "A Title\n\nbody text" {
		t.Errorf("text = %q", rendered.Text)
	}
}

func TestTransformTitleAlreadyContained(t *testing.T) {
	post := &domain.Post{Body: "A Title and more", Title: "A Title", NetworkOrigin: domain.NetworkNative}
	rendered := Transform(post, false, testConf())

	if rendered.Text != "A Title and more" {
		t.Errorf("contained title must not be prepended, text = %q", rendered.Text)
	}
}

func TestTransformFeedTruncation(t *testing.T) {
	body := strings.Repeat("a", 1100)
	post := &domain.Post{
		Body:          body,
		Uri:           "https://feed.example/item/1",
		NetworkOrigin: domain.NetworkFeed,
	}
	rendered := Transform(post, false, testConf())

	want := strings.Repeat("a", 1000) + "... " + post.Uri
	if rendered.Text != want {
		t.Errorf("truncated length = %d, tail = %q", utf8.RuneCountInString(rendered.Text), rendered.Text[len(rendered.Text)-40:])
	}
}

func TestTransformShortFeedPostUntouched(t *testing.T) {
	post := &domain.Post{Body: "short feed item", Uri: "https://feed.example/item/2", NetworkOrigin: domain.NetworkFeed}
	rendered := Transform(post, false, testConf())

	if rendered.Text != "short feed item" {
		t.Errorf("text = %q", rendered.Text)
	}
}

func TestTransformEmptyFeedBody(t *testing.T) {
	post := &domain.Post{Body: "", Uri: "https://feed.example/item/3", NetworkOrigin: domain.NetworkFeed}
	rendered := Transform(post, false, testConf())

	want := `<a href="https://feed.example/item/3">https://feed.example/item/3</a>`
	if rendered.Html != want {
		t.Errorf("html = %q, want %q", rendered.Html, want)
	}
}

func TestTransformProxyRewriteWithoutEntities(t *testing.T) {
	post := &domain.Post{Body: "[img]http://pics.example/i.jpg[/img]", NetworkOrigin: domain.NetworkNative}
	rendered := Transform(post, false, testConf())

	if rendered.Entities != nil {
		t.Error("entities must be nil unless the request opts in")
	}
	if !strings.Contains(rendered.Html, "https://social.example/proxy?url=") {
		t.Errorf("inline image not proxied: %q", rendered.Html)
	}
}

func TestTransformEntitiesKeepOriginalImageUrl(t *testing.T) {
	post := &domain.Post{Body: "[img]http://pics.example/i.jpg[/img]", NetworkOrigin: domain.NetworkNative}
	rendered := Transform(post, true, testConf())

	if rendered.Entities == nil || len(rendered.Entities.Media) != 1 {
		t.Fatal("expected one media entity")
	}
	if !strings.Contains(rendered.Html, `src="http://pics.example/i.jpg"`) {
		t.Errorf("html must keep the original source: %q", rendered.Html)
	}
}

func TestTransformAttachments(t *testing.T) {
	post := &domain.Post{Body: "[img]http://pics.example/i.png[/img]", NetworkOrigin: domain.NetworkNative}
	rendered := Transform(post, false, testConf())

	if len(rendered.Attachments) != 1 {
		t.Fatalf("got %d attachments, want 1", len(rendered.Attachments))
	}
	a := rendered.Attachments[0]
	if a.Url != "http://pics.example/i.png" || a.Mimetype != "image/png" {
		t.Errorf("attachment = %+v", a)
	}
}

func TestNormalizeDisplayHtml(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"break run collapsed", "a<br /><br /><br />b", "a<br />b"},
		{"break before heading dropped", "a<br /><h2>s</h2>", "a<h2>s</h2>"},
		{"break after blockquote dropped", "<blockquote>q</blockquote><br />x", "<blockquote>q</blockquote>x"},
		{"leading and trailing trimmed", "<br />x<br />", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeDisplayHtml(tt.html); got != tt.want {
				t.Errorf("normalizeDisplayHtml(%q) = %q, want %q", tt.html, got, tt.want)
			}
		})
	}
}
