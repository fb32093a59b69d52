package intakeclient

import (
	"context"
	"strings"
	"sync"
)

// Limits shared by the selection groups. MaxOptions caps the visible option
// list, MaxFetches bounds the "request more" retry budget, MaxPerCall caps
// how many new suggestions one fetch may introduce, and MaxExclude bounds the
// exclusion list sent upstream.
const (
	MaxOptions = 24
	MaxFetches = 2
	MaxPerCall = 8
	MaxExclude = 32
)

// fetchResult is what a suggestion fetch hands back to the group: the new
// suggestions plus the record's authoritative lists for the resync.
type fetchResult struct {
	suggestions     []string
	recordSuggested []string
	recordSelected  []string
}

// SelectionGroup tracks one suggest/select/confirm cycle (antecedents,
// allergies, or drugs): the option list, the user's selections, user-typed
// custom entries, and the cumulative seen set used as the exclusion list.
//
// Network calls run outside the internal lock; a generation counter discards
// completions that arrive after a reset.
type SelectionGroup struct {
	mu sync.Mutex

	options  []string
	selected map[string]struct{}
	custom   map[string]struct{}
	seen     map[string]struct{}

	customText        string
	additionalFetches int
	isFetching        bool
	isSaving          bool
	saveMessage       string
	saveError         string

	generation uint64

	emptyError string
	fetch      func(ctx context.Context, selected, exclude []string) (*fetchResult, error)
	save       func(ctx context.Context, confirmed []string) (message string, recordSuggested, recordSelected []string, err error)
}

// SelectionSnapshot is a copy of the group's state for rendering.
type SelectionSnapshot struct {
	Options           []string
	Selected          []string
	Custom            []string
	CustomText        string
	AdditionalFetches int
	IsFetching        bool
	IsSaving          bool
	SaveMessage       string
	SaveError         string
}

func newSelectionGroup(emptyError string) *SelectionGroup {
	return &SelectionGroup{
		selected:   make(map[string]struct{}),
		custom:     make(map[string]struct{}),
		seen:       make(map[string]struct{}),
		emptyError: emptyError,
	}
}

// Toggle adds or removes an option from the selection. Any string is
// accepted, including ones not currently offered. Clears the last outcome
// feedback.
func (g *SelectionGroup) Toggle(option string, checked bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if checked {
		g.selected[option] = struct{}{}
	} else {
		delete(g.selected, option)
	}
	g.saveMessage = ""
	g.saveError = ""
}

// SetCustomText stores the pending free-text input.
func (g *SelectionGroup) SetCustomText(text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.customText = text
}

// AddCustom promotes the pending free-text input to a selected custom entry.
// Empty input is a no-op; input already selected just clears the field.
// Clears the last outcome feedback.
func (g *SelectionGroup) AddCustom() {
	g.mu.Lock()
	defer g.mu.Unlock()

	value := strings.TrimSpace(g.customText)
	if value == "" {
		return
	}
	g.saveMessage = ""
	g.saveError = ""
	if _, ok := g.selected[value]; ok {
		g.customText = ""
		return
	}
	g.custom[value] = struct{}{}
	g.selected[value] = struct{}{}
	g.customText = ""
}

// RemoveCustom drops a custom entry from both the custom and selected sets.
// Clears the last outcome feedback.
func (g *SelectionGroup) RemoveCustom(value string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.custom, value)
	delete(g.selected, value)
	g.saveMessage = ""
	g.saveError = ""
}

// CanRequestMore reports whether the "request more" action is still
// available: the retry budget is not exhausted and the option list is not
// full.
func (g *SelectionGroup) CanRequestMore() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.canRequestMoreLocked()
}

func (g *SelectionGroup) canRequestMoreLocked() bool {
	return g.additionalFetches < MaxFetches && len(g.options) < MaxOptions
}

// RequestMore fetches another batch of suggestions. It is a no-op while a
// fetch is in flight or once the budget is spent. The fetch counter is
// incremented optimistically and rolled back on failure.
func (g *SelectionGroup) RequestMore(ctx context.Context) {
	g.mu.Lock()
	if g.isFetching || !g.canRequestMoreLocked() || g.fetch == nil {
		g.mu.Unlock()
		return
	}
	g.additionalFetches++
	g.isFetching = true
	g.saveMessage = ""
	g.saveError = ""
	generation := g.generation
	selected := setToList(g.selected)
	exclude := lastN(g.seenList(), MaxExclude)
	g.mu.Unlock()

	result, err := g.fetch(ctx, selected, exclude)

	g.mu.Lock()
	defer g.mu.Unlock()
	if generation != g.generation {
		// The group was reset while the request was in flight.
		return
	}
	g.isFetching = false
	if err != nil {
		g.additionalFetches--
		g.saveError = errorMessage(err)
		return
	}
	g.mergeSuggestionsLocked(result.suggestions)
	if result.recordSuggested != nil || result.recordSelected != nil {
		g.syncLocked(result.recordSuggested, result.recordSelected)
	}
}

// InitialFetch populates the group for the first time without consuming the
// retry budget.
func (g *SelectionGroup) InitialFetch(ctx context.Context) error {
	g.mu.Lock()
	if g.isFetching || g.fetch == nil {
		g.mu.Unlock()
		return nil
	}
	g.isFetching = true
	generation := g.generation
	selected := setToList(g.selected)
	g.mu.Unlock()

	result, err := g.fetch(ctx, selected, nil)

	g.mu.Lock()
	defer g.mu.Unlock()
	if generation != g.generation {
		return nil
	}
	g.isFetching = false
	if err != nil {
		g.saveError = errorMessage(err)
		return err
	}
	g.mergeSuggestionsLocked(result.suggestions)
	if result.recordSuggested != nil || result.recordSelected != nil {
		g.syncLocked(result.recordSuggested, result.recordSelected)
	}
	return nil
}

// SaveConfirmation posts the union of selected and custom entries as the
// confirmed list. An empty union is a local validation error and issues no
// network call.
func (g *SelectionGroup) SaveConfirmation(ctx context.Context) error {
	g.mu.Lock()
	if g.isSaving || g.save == nil {
		g.mu.Unlock()
		return nil
	}
	confirmed := unionSets(g.selected, g.custom)
	if len(confirmed) == 0 {
		g.saveError = g.emptyError
		g.mu.Unlock()
		return nil
	}
	g.isSaving = true
	g.saveMessage = ""
	g.saveError = ""
	generation := g.generation
	g.mu.Unlock()

	message, recordSuggested, recordSelected, err := g.save(ctx, confirmed)

	g.mu.Lock()
	defer g.mu.Unlock()
	if generation != g.generation {
		return nil
	}
	g.isSaving = false
	if err != nil {
		g.saveError = errorMessage(err)
		return err
	}
	if recordSuggested != nil {
		g.syncLocked(recordSuggested, recordSelected)
	} else {
		// No server-side suggestion history for this group (antecedents):
		// keep the local options and seen set, resync only the selection.
		g.resyncSelectedLocked(recordSelected)
	}
	g.saveMessage = message
	return nil
}

func (g *SelectionGroup) resyncSelectedLocked(persistedSelected []string) {
	optionSet := make(map[string]struct{}, len(g.options))
	for _, option := range g.options {
		optionSet[option] = struct{}{}
	}
	g.selected = make(map[string]struct{})
	g.custom = make(map[string]struct{})
	for _, value := range persistedSelected {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		g.selected[value] = struct{}{}
		if _, suggestedToo := optionSet[value]; !suggestedToo {
			g.custom[value] = struct{}{}
		}
	}
}

// Sync replaces the group's view with the record's authoritative lists:
// options come from the accumulated suggestions, the selection from the
// persisted confirmed list, and custom entries are recomputed as selected
// minus options.
func (g *SelectionGroup) Sync(suggested, persistedSelected []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.syncLocked(suggested, persistedSelected)
}

func (g *SelectionGroup) syncLocked(suggested, persistedSelected []string) {
	g.options = uniqueCap(suggested, MaxOptions)
	g.seen = make(map[string]struct{}, len(g.options))
	for _, option := range g.options {
		g.seen[option] = struct{}{}
	}
	g.resyncSelectedLocked(persistedSelected)
}

// mergeSuggestionsLocked appends suggestions not seen before, capped per call
// and by the overall option limit, and records every incoming suggestion as
// seen.
func (g *SelectionGroup) mergeSuggestionsLocked(suggestions []string) {
	added := 0
	for _, suggestion := range suggestions {
		suggestion = strings.TrimSpace(suggestion)
		if suggestion == "" {
			continue
		}
		if _, ok := g.seen[suggestion]; ok {
			continue
		}
		g.seen[suggestion] = struct{}{}
		if added >= MaxPerCall || len(g.options) >= MaxOptions {
			continue
		}
		g.options = append(g.options, suggestion)
		added++
	}
}

// Reset clears every field to its initial empty state and invalidates any
// in-flight request.
func (g *SelectionGroup) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generation++
	g.options = nil
	g.selected = make(map[string]struct{})
	g.custom = make(map[string]struct{})
	g.seen = make(map[string]struct{})
	g.customText = ""
	g.additionalFetches = 0
	g.isFetching = false
	g.isSaving = false
	g.saveMessage = ""
	g.saveError = ""
}

// Snapshot returns a copy of the current state.
func (g *SelectionGroup) Snapshot() SelectionSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	options := make([]string, len(g.options))
	copy(options, g.options)
	return SelectionSnapshot{
		Options:           options,
		Selected:          setToList(g.selected),
		Custom:            setToList(g.custom),
		CustomText:        g.customText,
		AdditionalFetches: g.additionalFetches,
		IsFetching:        g.isFetching,
		IsSaving:          g.isSaving,
		SaveMessage:       g.saveMessage,
		SaveError:         g.saveError,
	}
}

// Confirmed returns the union of selected and custom entries.
func (g *SelectionGroup) Confirmed() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return unionSets(g.selected, g.custom)
}

func (g *SelectionGroup) seenList() []string {
	// Seen entries in option order first, then the rest.
	out := make([]string, 0, len(g.seen))
	listed := make(map[string]struct{}, len(g.seen))
	for _, option := range g.options {
		if _, ok := g.seen[option]; ok {
			out = append(out, option)
			listed[option] = struct{}{}
		}
	}
	for value := range g.seen {
		if _, ok := listed[value]; !ok {
			out = append(out, value)
		}
	}
	return out
}

func errorMessage(err error) string {
	if apiErr, ok := err.(*APIError); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericSubmissionError
}

func setToList(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for value := range set {
		out = append(out, value)
	}
	return out
}

func unionSets(a, b map[string]struct{}) []string {
	merged := make(map[string]struct{}, len(a)+len(b))
	for value := range a {
		merged[value] = struct{}{}
	}
	for value := range b {
		merged[value] = struct{}{}
	}
	return setToList(merged)
}

func uniqueCap(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func lastN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
