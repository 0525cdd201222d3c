package response

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedAnswer is answer text split into plain segments and citation
// markers, with follow-up questions pulled out.
type ParsedAnswer struct {
	Segments          []Segment
	Citations         []string // unique, in order of first appearance
	FollowupQuestions []string
}

// Segment is either plain text or a reference to Citations.
type Segment struct {
	Text          string
	CitationIndex int // 1-based position in Citations, 0 for plain text
}

// Answer markers:
// [source.pdf]          - citation of a retrieved source
// <<follow-up question>> - suggested next question
var (
	citationPattern = regexp.MustCompile(`\[([^\]]+)\]`)
	followupPattern = regexp.MustCompile(`<<([^<>]+)>>`)
)

// ParseAnswer extracts citations and follow-up questions from answer text.
// A trailing unterminated follow-up marker is dropped.
func ParseAnswer(text string) *ParsedAnswer {
	result := &ParsedAnswer{
		Segments:          make([]Segment, 0),
		Citations:         make([]string, 0),
		FollowupQuestions: make([]string, 0),
	}

	for _, match := range followupPattern.FindAllStringSubmatch(text, -1) {
		if q := strings.TrimSpace(match[1]); q != "" {
			result.FollowupQuestions = append(result.FollowupQuestions, q)
		}
	}
	body := followupPattern.ReplaceAllString(text, "")
	if i := strings.Index(body, "<<"); i >= 0 {
		body = body[:i]
	}
	body = strings.TrimSpace(body)

	positions := map[string]int{}
	last := 0
	for _, loc := range citationPattern.FindAllStringSubmatchIndex(body, -1) {
		if loc[0] > last {
			result.Segments = append(result.Segments, Segment{Text: body[last:loc[0]]})
		}
		name := strings.TrimSpace(body[loc[2]:loc[3]])
		pos, seen := positions[name]
		if !seen {
			result.Citations = append(result.Citations, name)
			pos = len(result.Citations)
			positions[name] = pos
		}
		result.Segments = append(result.Segments, Segment{Text: name, CitationIndex: pos})
		last = loc[1]
	}
	if last < len(body) {
		result.Segments = append(result.Segments, Segment{Text: body[last:]})
	}

	return result
}

// Plain renders the answer with citations as numbered footnote markers.
func (p *ParsedAnswer) Plain() string {
	var b strings.Builder
	for _, s := range p.Segments {
		if s.CitationIndex == 0 {
			b.WriteString(s.Text)
			continue
		}
		b.WriteString("[")
		b.WriteString(strconv.Itoa(s.CitationIndex))
		b.WriteString("]")
	}
	return b.String()
}
