package query

import (
	"net/url"
	"strings"
)

// Handoff carries search/chat navigation state in query parameters
// (?q=, ?type=, ?context=, ?professor=, ?course=).
type Handoff struct {
	Query     string `json:"q,omitempty" form:"q"`
	Type      string `json:"type,omitempty" form:"type"`
	Context   string `json:"context,omitempty" form:"context"`
	Professor string `json:"professor,omitempty" form:"professor"`
	Course    string `json:"course,omitempty" form:"course"`
}

func (h Handoff) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val = strings.TrimSpace(val); val != "" {
			v.Set(k, val)
		}
	}
	set("q", h.Query)
	set("type", h.Type)
	set("context", h.Context)
	set("professor", h.Professor)
	set("course", h.Course)
	return v
}

func ParseHandoff(v url.Values) Handoff {
	return Handoff{
		Query:     strings.TrimSpace(v.Get("q")),
		Type:      strings.TrimSpace(v.Get("type")),
		Context:   strings.TrimSpace(v.Get("context")),
		Professor: strings.TrimSpace(v.Get("professor")),
		Course:    strings.TrimSpace(v.Get("course")),
	}
}

// Link renders path?query with the handoff parameters, or path alone when
// there is nothing to carry.
func (h Handoff) Link(path string) string {
	enc := h.Values().Encode()
	if enc == "" {
		return path
	}
	return path + "?" + enc
}

func ChatLinkForSearch(q string) string {
	return Handoff{Context: q}.Link("/chat")
}

func ChatLinkForProfessor(professor, course string) string {
	return Handoff{Professor: professor, Course: course}.Link("/chat")
}
