package web

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/mimusdev/mimus/status"
)

func TestMarshalXMLStatusList(t *testing.T) {
	views := []status.StatusView{
		{Id: 1, IdStr: "1", Text: "hi", User: &status.UserView{Id: 2, IdStr: "2", ScreenName: "alice"}},
	}

	out, err := marshalXML("statuses", views)
	if err != nil {
		t.Fatal(err)
	}
	body := string(out)

	if !strings.Contains(body, `xmlns:statusnet="http://status.net/schema/api/1/"`) {
		t.Errorf("missing vendor namespace: %s", body)
	}
	if !strings.Contains(body, `type="array"`) {
		t.Errorf("list root not typed as array: %s", body)
	}
	if !strings.Contains(body, "<status>") {
		t.Errorf("missing status item element: %s", body)
	}
	if !strings.Contains(body, "<favorited>false</favorited>") {
		t.Errorf("booleans must serialize as words: %s", body)
	}
	if !strings.Contains(body, "<screen_name>alice</screen_name>") {
		t.Errorf("nested user missing: %s", body)
	}
}

func TestMarshalXMLEmptyList(t *testing.T) {
	out, err := marshalXML("statuses", []status.StatusView{})
	if err != nil {
		t.Fatal(err)
	}
	body := string(out)
	if !strings.Contains(body, `type="array"`) || strings.Contains(body, "<status>") {
		t.Errorf("empty list = %s", body)
	}
}

func TestMarshalXMLBareRoot(t *testing.T) {
	out, err := marshalXML("ok", "ok")
	if err != nil {
		t.Fatal(err)
	}
	body := string(out)
	if body != "<ok>ok</ok>" {
		t.Errorf("body = %s", body)
	}
}

func TestFeedTitle(t *testing.T) {
	long := strings.Repeat("a", 90)

	tests := []struct {
		text string
		want string
	}{
		{"short one", "short one"},
		{"first line\nsecond line", "first line"},
		{long, strings.Repeat("a", 80) + "…"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := feedTitle(tt.text); got != tt.want {
			t.Errorf("feedTitle(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestStatusAsXML(t *testing.T) {
	rig := newTestRig()
	alice := rig.store.addActor("alice")
	post := rig.store.addPost(alice.Id, "xml please")

	w := rig.request("GET", fmt.Sprintf("/api/statuses/show/%d.xml", post.Id), nil, [2]string{})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	body := w.Body.String()
	if !strings.Contains(body, "<status ") || !strings.Contains(body, "xmlns:statusnet") {
		t.Errorf("root element wrong: %s", body)
	}
	if !strings.Contains(body, "<text>xml please</text>") {
		t.Errorf("text missing: %s", body)
	}
	if !strings.Contains(body, "<truncated>false</truncated>") {
		t.Errorf("booleans must serialize as words: %s", body)
	}
}

func TestErrorEnvelopeAsXML(t *testing.T) {
	rig := newTestRig()
	w := rig.request("GET", "/api/nonsense.xml", nil, [2]string{})

	if w.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<hash>") {
		t.Errorf("envelope root wrong: %s", body)
	}
	if !strings.Contains(body, "<code>501 Not Implemented</code>") {
		t.Errorf("code missing: %s", body)
	}
	if !strings.Contains(body, "<request>/api/nonsense.xml</request>") {
		t.Errorf("request missing: %s", body)
	}
}

func TestTimelineAsRSS(t *testing.T) {
	rig := newTestRig()
	alice := rig.store.addActor("alice")
	rig.store.addPost(alice.Id, "feed me")

	w := rig.request("GET", "/api/statuses/public_timeline.rss", nil, [2]string{})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/rss+xml" {
		t.Errorf("content type = %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "<rss") || !strings.Contains(body, "<item>") {
		t.Errorf("not an rss document: %s", body)
	}
	if !strings.Contains(body, "feed me") {
		t.Errorf("item content missing: %s", body)
	}
}

func TestTimelineAsAtom(t *testing.T) {
	rig := newTestRig()
	alice := rig.store.addActor("alice")
	rig.store.addPost(alice.Id, "feed me")

	w := rig.request("GET", "/api/statuses/public_timeline.atom", nil, [2]string{})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/atom+xml" {
		t.Errorf("content type = %q", ct)
	}
	if body := w.Body.String(); !strings.Contains(body, "<feed") || !strings.Contains(body, "<entry>") {
		t.Errorf("not an atom document: %s", body)
	}
}
