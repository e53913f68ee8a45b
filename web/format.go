package web

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/mimusdev/mimus/status"
	"github.com/mimusdev/mimus/util"
)

var formatContentTypes = map[string]string{
	"json": "application/json",
	"xml":  "text/xml",
	"rss":  "application/rss+xml",
	"atom": "application/atom+xml",
}

// Vendor namespace map attached to XML roots, except the bare ones.
var xmlNamespaces = map[string]string{
	"xmlns:statusnet": "http://status.net/schema/api/1/",
}

// Roots serialized without the namespace map.
var bareRoots = map[string]bool{
	"ok":      true,
	"version": true,
	"hash":    true,
	"config":  true,
}

// errorEnvelope is the uniform failure shape, emitted through the same
// negotiation path as success payloads.
type errorEnvelope struct {
	Error   string `json:"error" xml:"error"`
	Code    string `json:"code" xml:"code"`
	Request string `json:"request" xml:"request"`
}

// WriteResult emits a handler payload in the negotiated format.
func WriteResult(c *apiContext, root string, data interface{}) {
	writePayload(c, http.StatusOK, root, data)
}

// WriteError emits the error envelope with the fault's status line.
func WriteError(c *apiContext, fault *Fault) {
	if fault.Code == http.StatusUnauthorized {
		c.gin.Header("WWW-Authenticate", `Basic realm="`+util.Name+` API"`)
	}
	envelope := &errorEnvelope{
		Error:   fault.Message,
		Code:    fault.StatusLine(),
		Request: c.RequestLine(),
	}
	writePayload(c, fault.Code, "hash", envelope)
}

func writePayload(c *apiContext, code int, root string, data interface{}) {
	switch c.format {
	case "xml":
		writeXML(c, code, root, data)
	case "rss":
		writeFeed(c, code, root, data, false)
	case "atom":
		writeFeed(c, code, root, data, true)
	default:
		writeJSON(c, code, data)
	}
}

func writeJSON(c *apiContext, code int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Printf("JSON marshalling failed: %v", err)
		c.gin.Data(http.StatusInternalServerError, formatContentTypes["json"], []byte(`{"error":"serialization failed"}`))
		return
	}

	// A client-supplied callback name turns the response into JSONP.
	if callback := c.gin.Query("callback"); callback != "" {
		body = []byte(callback + "(" + string(body) + ");")
	}

	c.gin.Data(code, formatContentTypes["json"], body)
}

func writeXML(c *apiContext, code int, root string, data interface{}) {
	body, err := marshalXML(root, data)
	if err != nil {
		log.Printf("XML marshalling failed: %v", err)
		c.gin.Data(http.StatusInternalServerError, formatContentTypes["xml"], nil)
		return
	}
	out := []byte(xml.Header + string(body))
	c.gin.Data(code, formatContentTypes["xml"], out)
}

// marshalXML wraps the payload under the endpoint's root element, adding
// the vendor namespace map unless the root is a bare one.
func marshalXML(root string, data interface{}) ([]byte, error) {
	start := xml.StartElement{Name: xml.Name{Local: root}}
	if !bareRoots[root] {
		names := make([]string, 0, len(xmlNamespaces))
		for name := range xmlNamespaces {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: name}, Value: xmlNamespaces[name]})
		}
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	var err error
	switch v := data.(type) {
	case []status.StatusView:
		err = encodeXMLList(enc, start, "status", len(v), func(i int) interface{} { return v[i] })
	case []status.UserView:
		err = encodeXMLList(enc, start, "user", len(v), func(i int) interface{} { return v[i] })
	case []status.DirectMessageView:
		err = encodeXMLList(enc, start, "direct_message", len(v), func(i int) interface{} { return v[i] })
	case string:
		err = enc.EncodeElement(v, start)
	default:
		err = enc.EncodeElement(data, start)
	}
	if err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeXMLList(enc *xml.Encoder, start xml.StartElement, item string, n int, at func(int) interface{}) error {
	start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "type"}, Value: "array"})
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := enc.EncodeElement(at(i), xml.StartElement{Name: xml.Name{Local: item}}); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// writeFeed renders status payloads as RSS or Atom through gorilla/feeds.
// Payloads with no feed representation fall back to plain XML.
func writeFeed(c *apiContext, code int, root string, data interface{}, atom bool) {
	var statuses []status.StatusView
	switch v := data.(type) {
	case []status.StatusView:
		statuses = v
	case *status.StatusView:
		statuses = []status.StatusView{*v}
	default:
		writeXML(c, code, root, data)
		return
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s - %s", util.Name, root),
		Link:        &feeds.Link{Href: c.env.Conf.BaseURL() + c.gin.Request.URL.Path},
		Description: fmt.Sprintf("%s feed", root),
		Created:     time.Now(),
	}

	for _, s := range statuses {
		created, err := time.Parse(util.TwitterTimeFormat(), s.CreatedAt)
		if err != nil {
			created = time.Now()
		}
		item := &feeds.Item{
			Id:      s.IdStr,
			Title:   feedTitle(s.Text),
			Link:    &feeds.Link{Href: s.ExternalUrl},
			Content: s.StatusnetHtml,
			Created: created,
		}
		if s.User != nil {
			item.Author = &feeds.Author{Name: s.User.ScreenName}
		}
		feed.Items = append(feed.Items, item)
	}

	var out string
	var err error
	if atom {
		out, err = feed.ToAtom()
	} else {
		out, err = feed.ToRss()
	}
	if err != nil {
		log.Printf("Feed rendering failed: %v", err)
		c.gin.Data(http.StatusInternalServerError, formatContentTypes["xml"], nil)
		return
	}

	format := "rss"
	if atom {
		format = "atom"
	}
	c.gin.Data(code, formatContentTypes[format], []byte(out))
}

// feedTitle derives a feed item title from the status text.
func feedTitle(text string) string {
	line := text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	runes := []rune(line)
	if len(runes) > 80 {
		line = string(runes[:80]) + "…"
	}
	return line
}
