package banks

import (
	"encoding/json"
	"math/rand/v2"
	"strings"

	"golang.org/x/text/unicode/norm"

	"postbundle/internal/compose"
)

// Hashtag pick-count bounds per job, clamped to the bank size.
const (
	minHashtags = 3
	maxHashtags = 5
)

// hashtagEntry tolerates structured records ({"tag": ...} or
// {"text": ...}) alongside the canonical plain-string storage form.
type hashtagEntry struct {
	value string
}

func (h *hashtagEntry) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		return json.Unmarshal(data, &h.value)
	}
	var record struct {
		Tag  string `json:"tag"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}
	h.value = record.Tag
	if h.value == "" {
		h.value = record.Text
	}
	return nil
}

// NormalizeHashtags coerces raw entries to canonical tags: NFC, trimmed,
// internal whitespace removed, exactly one leading #. Entries that
// normalize to nothing are dropped; duplicates are removed
// case-insensitively keeping the first occurrence's casing.
func NormalizeHashtags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	result := make([]string, 0, len(raw))
	for _, entry := range raw {
		tag := normalizeHashtag(entry)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, tag)
	}
	return result
}

func normalizeHashtag(raw string) string {
	cleaned := norm.NFC.String(strings.TrimSpace(raw))
	cleaned = strings.Join(strings.Fields(cleaned), "")
	cleaned = strings.TrimLeft(cleaned, "#")
	if cleaned == "" {
		return ""
	}
	return "#" + cleaned
}

// PickHashtags selects a random-size random subset of the bank. The size
// is uniform in [min(3,n), min(5,n)]; an empty bank yields an empty
// selection rather than an error.
func PickHashtags(bank []string, rng *rand.Rand) []string {
	n := len(bank)
	if n == 0 {
		return nil
	}
	lo := min(minHashtags, n)
	hi := min(maxHashtags, n)
	count := lo + rng.IntN(hi-lo+1)
	return compose.Sample(rng, bank, count)
}
