package scanner

import "strings"

// Kind classifies decoded content.
type Kind string

const (
	KindURL   Kind = "url"
	KindEmail Kind = "email"
	KindPhone Kind = "phone"
	KindText  Kind = "text"
	KindOther Kind = "other"
)

// Code is one decoded QR payload.
type Code struct {
	Content string `json:"content"`
	Kind    Kind   `json:"type"`
}

// NewCode builds a Code, deriving the kind from the content.
func NewCode(content string) Code {
	return Code{Content: content, Kind: ClassifyContent(content)}
}

// ClassifyContent infers the kind of a decoded payload from its prefix.
func ClassifyContent(content string) Kind {
	switch {
	case strings.HasPrefix(content, "http://"), strings.HasPrefix(content, "https://"):
		return KindURL
	case strings.HasPrefix(content, "mailto:"):
		return KindEmail
	case strings.HasPrefix(content, "tel:"):
		return KindPhone
	case strings.Contains(content, "://"):
		return KindOther
	default:
		return KindText
	}
}
