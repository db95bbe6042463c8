// Package banks owns the persisted content banks: the rotating caption
// bank and the hashtag bank.
//
// Bank functions are pure transformations: they take an input list,
// return a new list, and never mutate shared state, so rotation behavior
// is testable without touching storage.
package banks

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"postbundle/internal/errs"
)

// ErrEmptyBank reports a caption pick against a bank with zero entries.
var ErrEmptyBank = fmt.Errorf("%w: caption bank has no entries", errs.ErrDataBank)

// CaptionEntry is one row of the caption bank.
type CaptionEntry struct {
	ID     int        `json:"id"`
	Text   string     `json:"text"`
	Used   bool       `json:"used"`
	UsedAt *time.Time `json:"used_at"`
}

// UnmarshalJSON accepts both the structured record form and the legacy
// plain-string form still found in older bank files.
func (e *CaptionEntry) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*e = CaptionEntry{Text: text}
		return nil
	}

	type structured CaptionEntry
	var record structured
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}
	*e = CaptionEntry(record)
	return nil
}

// NormalizeCaptions returns the canonical form of a raw caption bank:
// blank entries dropped, text trimmed and NFC-normalized, and ids made
// dense ascending from 1. Entries without a positive id receive sequential
// fallback ids past the highest explicit id, so explicit ordering wins and
// legacy entries append behind it. Normalizing twice yields the same bank.
func NormalizeCaptions(raw []CaptionEntry) []CaptionEntry {
	kept := make([]CaptionEntry, 0, len(raw))
	maxID := 0
	for _, entry := range raw {
		text := norm.NFC.String(strings.TrimSpace(entry.Text))
		if text == "" {
			continue
		}
		entry.Text = text
		kept = append(kept, entry)
		if entry.ID > maxID {
			maxID = entry.ID
		}
	}

	fallback := maxID
	effective := make([]int, len(kept))
	for i, entry := range kept {
		if entry.ID > 0 {
			effective[i] = entry.ID
			continue
		}
		fallback++
		effective[i] = fallback
	}

	order := make([]int, len(kept))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return effective[order[a]] < effective[order[b]]
	})

	result := make([]CaptionEntry, len(kept))
	for rank, idx := range order {
		entry := kept[idx]
		entry.ID = rank + 1
		result[rank] = entry
	}
	return result
}

// PickCaption selects one caption for publication. When every entry has
// been used the whole bank resets to unused first, so rotation restarts
// only on exhaustion. The returned bank is a new list carrying the single
// mutation (one flip to used, possibly preceded by the reset) for the
// caller to persist.
func PickCaption(entries []CaptionEntry, rng *rand.Rand, now time.Time) (string, []CaptionEntry, error) {
	if len(entries) == 0 {
		return "", nil, ErrEmptyBank
	}

	updated := append([]CaptionEntry(nil), entries...)

	unused := make([]int, 0, len(updated))
	for i, entry := range updated {
		if !entry.Used {
			unused = append(unused, i)
		}
	}
	if len(unused) == 0 {
		for i := range updated {
			updated[i].Used = false
			updated[i].UsedAt = nil
			unused = append(unused, i)
		}
	}

	chosen := unused[rng.IntN(len(unused))]
	usedAt := now
	updated[chosen].Used = true
	updated[chosen].UsedAt = &usedAt
	return updated[chosen].Text, updated, nil
}
