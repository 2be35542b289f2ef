package viral

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	text := "The rocket launch was incredible. The rocket cleared the tower " +
		"and the launch crowd cheered for the rocket."

	keywords := ExtractKeywords(text)

	if len(keywords) == 0 {
		t.Fatal("expected keywords")
	}
	if keywords[0] != "rocket" {
		t.Errorf("most frequent keyword = %q, want %q", keywords[0], "rocket")
	}
	for _, kw := range keywords {
		if len(kw) <= 3 {
			t.Errorf("keyword %q is too short", kw)
		}
		if _, stop := stopWords[kw]; stop {
			t.Errorf("stop word %q leaked into keywords", kw)
		}
	}
}

func TestExtractKeywordsTieOrder(t *testing.T) {
	// Equal counts keep first-occurrence order
	keywords := ExtractKeywords("alpha bravo alpha bravo charlie")

	want := []string{"alpha", "bravo", "charlie"}
	if !reflect.DeepEqual(keywords, want) {
		t.Errorf("keywords = %v, want %v", keywords, want)
	}
}

func TestExtractKeywordsLimit(t *testing.T) {
	var words []string
	for _, c := range "abcdefghijkl" {
		words = append(words, strings.Repeat(string(c), 5))
	}

	keywords := ExtractKeywords(strings.Join(words, " "))
	if len(keywords) != maxKeywords {
		t.Errorf("got %d keywords, want %d", len(keywords), maxKeywords)
	}
}

func TestExtractKeywordsSkipsMixedAlphanumerics(t *testing.T) {
	keywords := ExtractKeywords("abcd1234efgh launch h264 launch")

	want := []string{"launch"}
	if !reflect.DeepEqual(keywords, want) {
		t.Errorf("keywords = %v, want %v", keywords, want)
	}
}

func TestExtractKeywordsEmpty(t *testing.T) {
	if got := ExtractKeywords(""); got != nil {
		t.Errorf("expected nil for empty text, got %v", got)
	}
}

func TestSuggestTitlesTemplates(t *testing.T) {
	transcript := "one two three four five six seven eight nine ten " +
		"eleven twelve thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty extra"

	titles := SuggestTitles(transcript)

	want := []string{
		"You Won't Believe What Happens Next! one two three four five...",
		"The Truth About six seven eight",
		"This Changed Everything: one two three four five six seven",
	}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("titles = %v, want %v", titles, want)
	}
}

func TestSuggestTitlesShortTranscript(t *testing.T) {
	titles := SuggestTitles("just three words")

	if len(titles) != 3 {
		t.Fatalf("expected 3 titles, got %d", len(titles))
	}
	if titles[1] != "The Truth About " {
		t.Errorf("short transcript slice not clamped: %q", titles[1])
	}
}

func TestSuggestTitlesDefaults(t *testing.T) {
	titles := SuggestTitles("")
	if !reflect.DeepEqual(titles, DefaultTitles) {
		t.Errorf("titles = %v, want defaults %v", titles, DefaultTitles)
	}
}

func TestSuggestHashtags(t *testing.T) {
	keywords := []string{"rocket", "launch", "space", "orbit", "fuel", "extra", "more"}

	hashtags := SuggestHashtags(keywords)

	if len(hashtags) != maxHashtags {
		t.Fatalf("got %d hashtags, want %d", len(hashtags), maxHashtags)
	}
	want := []string{"#rocket", "#launch", "#space", "#orbit", "#fuel",
		"#viral", "#trending", "#fyp", "#foryou", "#mustwatch"}
	if !reflect.DeepEqual(hashtags, want) {
		t.Errorf("hashtags = %v, want %v", hashtags, want)
	}
}

func TestSuggestHashtagsFewKeywords(t *testing.T) {
	hashtags := SuggestHashtags([]string{"solo"})

	if hashtags[0] != "#solo" {
		t.Errorf("first hashtag = %q, want #solo", hashtags[0])
	}
	if len(hashtags) != 6 {
		t.Errorf("got %d hashtags, want 6", len(hashtags))
	}
}

func TestSuggestHashtagsNoKeywords(t *testing.T) {
	// Zero keywords still yields the full platform tag set, not the
	// no-transcript defaults
	hashtags := SuggestHashtags(nil)

	want := []string{"#viral", "#trending", "#fyp", "#foryou", "#mustwatch"}
	if !reflect.DeepEqual(hashtags, want) {
		t.Errorf("hashtags = %v, want %v", hashtags, want)
	}
}
