// Package analyzer classifies shared-calendar events and resolves proposable
// session dates. Everything here is pure computation over its inputs; an
// Analyzer is immutable once built and safe for concurrent use.
package analyzer

import (
	"regexp"
	"strings"
	"time"

	"github.com/flumphworks/flumphbot/internal"
)

// AnalysisResult is the classifier's verdict for a single event.
type AnalysisResult struct {
	Event           *internal.CalendarEvent
	ShouldBeFree    bool
	IsPersonal      bool
	IsDndSession    bool
	MatchedKeywords []string
	Category        internal.EventCategory
}

type personalKeyword struct {
	keyword string
	re      *regexp.Regexp
}

type categoryRule struct {
	matches  func(*internal.CalendarEvent) bool
	category internal.EventCategory
}

// Analyzer maps calendar events to categories and busy/free recommendations.
// Reconfiguring keyword lists means building a new Analyzer, never mutating
// one in place.
type Analyzer struct {
	dnd      []string
	away     []string
	personal []personalKeyword
	rules    []categoryRule
}

func New(cfg internal.KeywordConfig) *Analyzer {
	a := &Analyzer{
		dnd:  lowered(cfg.Dnd),
		away: lowered(cfg.Away),
	}
	for _, kw := range cfg.Personal {
		// Word-boundary match, unlike the substring rules above, so that
		// e.g. "date" does not match "Updated plans".
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		a.personal = append(a.personal, personalKeyword{keyword: kw, re: re})
	}

	// First matching rule wins: an event carrying both a D&D and an away
	// keyword is a D&D session.
	a.rules = []categoryRule{
		{a.IsDndSession, internal.CategoryDndSession},
		{a.IsAwayEvent, internal.CategoryAway},
		{func(ev *internal.CalendarEvent) bool {
			return len(a.DetectPersonalKeywords(ev)) > 0
		}, internal.CategoryPersonal},
	}
	return a
}

func lowered(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = strings.ToLower(s)
	}
	return out
}

// IsDndSession reports whether the event title contains any configured D&D
// keyword. Plain substring containment, case-insensitive.
func (a *Analyzer) IsDndSession(ev *internal.CalendarEvent) bool {
	return containsAny(strings.ToLower(ev.Summary), a.dnd)
}

// IsAwayEvent reports whether the event title contains any configured
// away-time keyword.
func (a *Analyzer) IsAwayEvent(ev *internal.CalendarEvent) bool {
	return containsAny(strings.ToLower(ev.Summary), a.away)
}

func containsAny(title string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// DetectPersonalKeywords returns every personal keyword found in the event's
// title or description, in configured order.
func (a *Analyzer) DetectPersonalKeywords(ev *internal.CalendarEvent) []string {
	text := strings.ToLower(ev.Summary + " " + ev.Description)

	var matched []string
	for _, pk := range a.personal {
		if pk.re.MatchString(text) {
			matched = append(matched, pk.keyword)
		}
	}
	return matched
}

// Category returns the event's category, evaluating the priority rules in
// order with CategoryOther as the unconditional fallback.
func (a *Analyzer) Category(ev *internal.CalendarEvent) internal.EventCategory {
	for _, rule := range a.rules {
		if rule.matches(ev) {
			return rule.category
		}
	}
	return internal.CategoryOther
}

// ShouldBeFree is the calendar-hygiene policy: only D&D sessions may stay
// Busy; everything else should be Free so it does not block shared
// availability.
func (a *Analyzer) ShouldBeFree(ev *internal.CalendarEvent) bool {
	return !a.IsDndSession(ev)
}

// Analyze composes the individual checks into one result.
func (a *Analyzer) Analyze(ev *internal.CalendarEvent) AnalysisResult {
	matched := a.DetectPersonalKeywords(ev)
	return AnalysisResult{
		Event:           ev,
		ShouldBeFree:    a.ShouldBeFree(ev),
		IsPersonal:      len(matched) > 0,
		IsDndSession:    a.IsDndSession(ev),
		MatchedKeywords: matched,
		Category:        a.Category(ev),
	}
}

// FindEventsNeedingFix returns the events that should be Free but are
// currently marked Busy. This is the hygiene sync's repair queue.
func (a *Analyzer) FindEventsNeedingFix(events []*internal.CalendarEvent) []*internal.CalendarEvent {
	var needsFix []*internal.CalendarEvent
	for _, ev := range events {
		if a.ShouldBeFree(ev) && ev.Status == internal.StatusBusy {
			needsFix = append(needsFix, ev)
		}
	}
	return needsFix
}

// FindPersonalEvents returns analysis results for events that look personal.
func (a *Analyzer) FindPersonalEvents(events []*internal.CalendarEvent) []AnalysisResult {
	var personal []AnalysisResult
	for _, ev := range events {
		if res := a.Analyze(ev); res.IsPersonal {
			personal = append(personal, res)
		}
	}
	return personal
}

// FindAwayEvents returns events that look like away time: either an away
// keyword matches, or the event is all-day and spans more than one calendar
// day, which is treated as probable away time even without a keyword.
func (a *Analyzer) FindAwayEvents(events []*internal.CalendarEvent) []*internal.CalendarEvent {
	var away []*internal.CalendarEvent
	for _, ev := range events {
		if a.IsAwayEvent(ev) || ev.AllDay && ev.EndsAt.Sub(ev.StartsAt) > 24*time.Hour {
			away = append(away, ev)
		}
	}
	return away
}
