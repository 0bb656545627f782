// Package issues defines the record every check emits and the sink it is
// emitted through.
package issues

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"bennypowers.dev/a11yaudit/internal/dom"
)

// Severity ranks an issue
type Severity string

const (
	Minor    Severity = "minor"
	Major    Severity = "major"
	Critical Severity = "critical"
)

func (s Severity) rank() int {
	switch s {
	case Critical:
		return 3
	case Major:
		return 2
	case Minor:
		return 1
	}
	return 0
}

// ParseSeverity accepts minor, major or critical
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if sev.rank() == 0 {
		return "", fmt.Errorf("unknown severity %q", s)
	}
	return sev, nil
}

// AtLeast reports whether s is as severe as min
func (s Severity) AtLeast(min Severity) bool {
	return s.rank() >= min.rank()
}

// Issue is one finding
type Issue struct {
	Type          string   `json:"type"`
	WCAGCriterion string   `json:"wcag_criterion"`
	Severity      Severity `json:"severity"`
	// Element is dom.NoNode for document-level issues
	Element     dom.NodeID     `json:"-"`
	Selector    string         `json:"element,omitempty"`
	Line        uint           `json:"line,omitempty"`
	Snippet     string         `json:"snippet,omitempty"`
	Description string         `json:"description"`
	Location    map[string]any `json:"location,omitempty"`
}

// Sink receives issues as checks produce them
type Sink func(Issue)

// New fills the element fields of an issue from doc
func New(doc *dom.Document, id dom.NodeID, typ, criterion string, sev Severity, description string) Issue {
	is := Issue{
		Type:          typ,
		WCAGCriterion: criterion,
		Severity:      sev,
		Element:       id,
		Description:   description,
	}
	if id != dom.NoNode && doc.IsElement(id) {
		is.Selector = doc.Identifier(id)
		is.Line = doc.Node(id).Line
		is.Snippet = doc.StartTag(id)
	}
	return is
}

// Collector is a Sink that keeps what it receives. It is safe for
// concurrent use.
type Collector struct {
	mu     sync.Mutex
	issues []Issue
}

// Sink returns the collector's sink function
func (c *Collector) Sink() Sink {
	return c.Add
}

// Add records an issue
func (c *Collector) Add(is Issue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issues = append(c.issues, is)
}

// Issues returns the recorded issues in arrival order
func (c *Collector) Issues() []Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Issue(nil), c.issues...)
}

// Summary counts issues by severity and by type
type Summary struct {
	Total      int              `json:"total"`
	BySeverity map[Severity]int `json:"by_severity"`
	ByType     map[string]int   `json:"by_type"`
}

// Summarize counts issues
func Summarize(list []Issue) Summary {
	s := Summary{
		Total:      len(list),
		BySeverity: map[Severity]int{},
		ByType:     map[string]int{},
	}
	for _, is := range list {
		s.BySeverity[is.Severity]++
		s.ByType[is.Type]++
	}
	return s
}

// Filter keeps issues at or above min severity
func Filter(list []Issue, min Severity) []Issue {
	var out []Issue
	for _, is := range list {
		if is.Severity.AtLeast(min) {
			out = append(out, is)
		}
	}
	return out
}

// SortBySeverity orders issues most severe first, then by line
func SortBySeverity(list []Issue) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Severity.rank() != b.Severity.rank() {
			return a.Severity.rank() > b.Severity.rank()
		}
		return a.Line < b.Line
	})
}
