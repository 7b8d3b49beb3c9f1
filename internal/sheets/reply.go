package sheets

import (
	"encoding/json"
	"strings"
)

const snippetLimit = 200

type replyKind int

const (
	replyJSON replyKind = iota
	replyHTML
	replyUnparseable
)

// reply is the store's response body after classification
type reply struct {
	kind    replyKind
	status  string
	message string
	raw     string
}

var (
	// matched case-insensitively
	htmlTags = []string{"<!doctype html", "<html"}
	// matched as written; Google's access pages use these exact phrases
	accessPhrases = []string{"Access Denied", "You need access"}
)

// classifyReply inspects the raw body as text before attempting JSON.
// Apps Script serves an HTML error page on access or deployment problems.
func classifyReply(body string) reply {
	lower := strings.ToLower(body)
	for _, tag := range htmlTags {
		if strings.Contains(lower, tag) {
			return reply{kind: replyHTML, raw: body}
		}
	}
	for _, phrase := range accessPhrases {
		if strings.Contains(body, phrase) {
			return reply{kind: replyHTML, raw: body}
		}
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return reply{kind: replyUnparseable, raw: body}
	}

	r := reply{kind: replyJSON, raw: body}
	if obj, ok := parsed.(map[string]interface{}); ok {
		r.status, _ = obj["status"].(string)
		r.message, _ = obj["message"].(string)
	}
	return r
}

// err maps a classified reply onto the adapter's error taxonomy; nil means stored
func (r reply) err() error {
	switch r.kind {
	case replyHTML:
		return ErrAccessDenied
	case replyUnparseable:
		return &UnexpectedResponseError{Snippet: truncate(r.raw, snippetLimit)}
	}

	switch r.status {
	case "duplicate":
		return ErrDuplicate
	case "error":
		return &StoreError{Message: r.message}
	default:
		return nil
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
