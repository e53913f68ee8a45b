package markup

import (
	"strings"
	"time"
)

// Share holds the attribution attributes of a reshare wrapper plus the
// wrapped inner body.
type Share struct {
	Author  string
	Profile string
	Avatar  string
	Link    string
	Posted  string
	Body    string
}

// PostedTime parses the wrapper's posted timestamp. A second return of false
// means the string did not parse under any accepted layout.
func (s *Share) PostedTime() (time.Time, bool) {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02T15:04:05-0700"} {
		if t, err := time.Parse(layout, s.Posted); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatShare builds the wrapper ParseShare reads back. The posted
// timestamp uses the first layout PostedTime accepts.
func FormatShare(author, profile, avatar, link string, posted time.Time, body string) string {
	var b strings.Builder
	b.WriteString("[share")
	for _, attr := range [][2]string{
		{"author", author},
		{"profile", profile},
		{"avatar", avatar},
		{"link", link},
		{"posted", posted.Format("2006-01-02 15:04:05")},
	} {
		if attr[1] == "" {
			continue
		}
		b.WriteString(" " + attr[0] + `="` + strings.ReplaceAll(attr[1], `"`, "'") + `"`)
	}
	b.WriteString("]" + strings.TrimSpace(body) + "[/share]")
	return b.String()
}

// ParseShare detects a reshare wrapper surrounding the body and extracts its
// attributes and inner content. The second return is false when the body is
// not a reshare, which includes every malformed or incomplete wrapper: a
// missing attribute never yields a partial result.
func ParseShare(body string) (*Share, bool) {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "[share") {
		return nil, false
	}

	headEnd := strings.Index(trimmed, "]")
	if headEnd < 0 {
		return nil, false
	}

	tail := strings.LastIndex(trimmed, "[/share]")
	if tail < 0 || tail < headEnd {
		return nil, false
	}

	attrs := parseAttributes(trimmed[len("[share"):headEnd])
	share := &Share{
		Author:  attrs["author"],
		Profile: attrs["profile"],
		Avatar:  attrs["avatar"],
		Link:    attrs["link"],
		Posted:  attrs["posted"],
		Body:    strings.TrimSpace(trimmed[headEnd+1 : tail]),
	}

	if share.Body == "" || share.Author == "" || share.Profile == "" || share.Avatar == "" || share.Posted == "" {
		return nil, false
	}

	return share, true
}

// parseAttributes reads a bounded key='value' / key="value" list. Unknown
// keys are kept, unquoted or unterminated values are skipped, the rest of
// the list is still consumed.
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	i := 0
	n := len(s)

	for i < n {
		// skip whitespace
		for i < n && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
			i++
		}
		if i >= n {
			break
		}

		// key runs up to '='
		keyStart := i
		for i < n && s[i] != '=' && s[i] != ' ' {
			i++
		}
		if i >= n || s[i] != '=' {
			continue
		}
		key := strings.ToLower(s[keyStart:i])
		i++ // consume '='

		if i >= n || (s[i] != '\'' && s[i] != '"') {
			// tolerate a bare value up to the next space
			valStart := i
			for i < n && s[i] != ' ' {
				i++
			}
			if key != "" {
				attrs[key] = s[valStart:i]
			}
			continue
		}

		quote := s[i]
		i++
		valStart := i
		for i < n && s[i] != quote {
			i++
		}
		if i >= n {
			// unterminated quote, drop the value
			break
		}
		if key != "" {
			attrs[key] = s[valStart:i]
		}
		i++ // consume closing quote
	}

	return attrs
}
