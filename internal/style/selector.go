package style

import (
	"regexp"
	"strings"

	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/log"
	"github.com/andybalholm/cascadia"
)

// matcher decides whether an element matches a compiled selector
type matcher interface {
	match(r *Resolver, id dom.NodeID) bool
}

// simpleSelector covers tag, #id, .class and tag.class
type simpleSelector struct {
	tag   string
	id    string
	class string
}

var simplePattern = regexp.MustCompile(`^([a-zA-Z][\w-]*)?(?:#([\w-]+)|\.([\w-]+))?$`)

func (s simpleSelector) match(r *Resolver, id dom.NodeID) bool {
	doc := r.doc
	if s.tag != "" && doc.Tag(id) != s.tag {
		return false
	}
	if s.id != "" {
		v, ok := doc.Attr(id, "id")
		if !ok || v != s.id {
			return false
		}
	}
	if s.class != "" && !doc.HasClass(id, s.class) {
		return false
	}
	return true
}

// fallbackSelector is any selector the fast path cannot express. It is
// evaluated once as a whole-document query and then answered by membership.
type fallbackSelector struct {
	text     string
	compiled cascadia.Selector
}

func (f *fallbackSelector) match(r *Resolver, id dom.NodeID) bool {
	if f.compiled == nil {
		return false
	}
	members, ok := r.queries[f.text]
	if !ok {
		members = make(map[dom.NodeID]bool)
		m := r.mirror()
		for _, n := range f.compiled.MatchAll(m.Root) {
			if nid, ok := m.NodeID(n); ok {
				members[nid] = true
			}
		}
		r.queries[f.text] = members
	}
	return members[id]
}

// noMatch stands in for selectors that failed to compile
type noMatch struct{}

func (noMatch) match(*Resolver, dom.NodeID) bool { return false }

func compileSelector(text string) matcher {
	text = strings.TrimSpace(text)
	if text == "" {
		return noMatch{}
	}
	if m := simplePattern.FindStringSubmatch(text); m != nil {
		return simpleSelector{tag: strings.ToLower(m[1]), id: m[2], class: m[3]}
	}
	compiled, err := cascadia.Compile(text)
	if err != nil {
		log.Debug("Unsupported selector %q: %v", text, err)
		return noMatch{}
	}
	return &fallbackSelector{text: text, compiled: compiled}
}
