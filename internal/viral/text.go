package viral

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	maxKeywords = 10
	maxHashtags = 10
	titleWords  = 20
)

// stopWords are common function words excluded from keyword extraction
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "as": {}, "is": {}, "was": {},
	"are": {}, "were": {},
}

// platformTags are appended to every generated hashtag list
var platformTags = []string{"#viral", "#trending", "#fyp", "#foryou", "#mustwatch"}

// Fallback suggestions used when no transcript is available
var (
	DefaultTitles   = []string{"Amazing Video", "Must Watch!", "Incredible Content"}
	DefaultHashtags = []string{"#viral", "#trending", "#video"}
)

// Boundary anchors keep alphabetic runs inside mixed alphanumeric
// tokens ("abc123def") from counting as words
var wordPattern = regexp.MustCompile(`\b[a-z]+\b`)

// ExtractKeywords returns the ten most frequent content words of a
// transcript: lower-cased alphabetic tokens longer than three
// characters, stop words excluded. Ties keep first-occurrence order.
func ExtractKeywords(text string) []string {
	if text == "" {
		return nil
	}

	type entry struct {
		word  string
		count int
	}

	counts := make(map[string]int)
	var order []string

	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(word) <= 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	entries := make([]entry, 0, len(order))
	for _, word := range order {
		entries = append(entries, entry{word, counts[word]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})

	n := len(entries)
	if n > maxKeywords {
		n = maxKeywords
	}
	keywords := make([]string, n)
	for i := 0; i < n; i++ {
		keywords[i] = entries[i].word
	}
	return keywords
}

// SuggestTitles produces exactly three template titles interpolating
// slices of the transcript's first twenty words
func SuggestTitles(transcript string) []string {
	if transcript == "" {
		return DefaultTitles
	}

	words := strings.Fields(transcript)
	if len(words) > titleWords {
		words = words[:titleWords]
	}

	return []string{
		fmt.Sprintf("You Won't Believe What Happens Next! %s...", joinSlice(words, 0, 5)),
		fmt.Sprintf("The Truth About %s", joinSlice(words, 5, 8)),
		fmt.Sprintf("This Changed Everything: %s", joinSlice(words, 0, 7)),
	}
}

// SuggestHashtags builds hashtags from the top five keywords plus the
// fixed platform tags, truncated to ten. With no keywords the result is
// just the platform tags; the no-transcript default is the caller's
// decision.
func SuggestHashtags(keywords []string) []string {
	n := len(keywords)
	if n > 5 {
		n = 5
	}

	hashtags := make([]string, 0, n+len(platformTags))
	for _, kw := range keywords[:n] {
		hashtags = append(hashtags, "#"+kw)
	}
	hashtags = append(hashtags, platformTags...)

	if len(hashtags) > maxHashtags {
		hashtags = hashtags[:maxHashtags]
	}
	return hashtags
}

// joinSlice joins words[lo:hi] with bounds clamped to the slice
func joinSlice(words []string, lo, hi int) string {
	if lo > len(words) {
		lo = len(words)
	}
	if hi > len(words) {
		hi = len(words)
	}
	return strings.Join(words[lo:hi], " ")
}
