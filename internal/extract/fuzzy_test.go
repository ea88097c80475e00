package extract

import (
	"errors"
	"testing"

	"eduparser/internal/scraper"

	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	require.Equal(t, 1.0, Similarity("ОНЛАЙН Маркетинг", "  онлайн   маркетинг "))
	require.Equal(t, 1.0, Similarity("", ""))
	require.Equal(t, 0.0, Similarity("abc", "xyz"))

	drift := Similarity("ОНЛАЙН Искусственный интеллект", "ОНЛАЙН: Искусственный интеллект")
	require.Greater(t, drift, DefaultMinSimilarity)
	require.Less(t, drift, 1.0)

	require.Less(t, Similarity("ОНЛАЙН Кибербезопасность", "ОНЛАЙН Маркетинг"), DefaultMinSimilarity)
}

func TestMatchLabel(t *testing.T) {
	candidates := []string{
		"Образовательная программа",
		"",
		"ОНЛАЙН Маркетинг",
		"ОНЛАЙН Аналитика больших данных",
		"ОНЛАЙН Аналитика больших данных",
	}

	cases := []struct {
		name   string
		target string
		expect int
		fail   bool
	}{
		{name: "extra whitespace and case", target: "  ОНЛАЙН  аналитика больших данных ", expect: 3},
		{name: "exact", target: "ОНЛАЙН Маркетинг", expect: 2},
		{name: "different program", target: "ОНЛАЙН Кибербезопасность", fail: true},
		{name: "blank target", target: "   ", fail: true},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			idx, score, err := MatchLabel(test.target, candidates, 0)
			if test.fail {
				require.True(t, errors.Is(err, &scraper.ExtractionError{Kind: scraper.ExtractRowNotFound}), "%v", err)
				require.Equal(t, -1, idx)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expect, idx)
			require.Equal(t, 1.0, score)
		})
	}
}

func TestMatchLabelThreshold(t *testing.T) {
	candidates := []string{"ОНЛАЙН: Искусственный интеллект"}

	idx, _, err := MatchLabel("ОНЛАЙН Искусственный интеллект", candidates, DefaultMinSimilarity)
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	_, _, err = MatchLabel("ОНЛАЙН Искусственный интеллект", candidates, 0.999)
	require.Error(t, err)
}

func TestMatchLabelNoCandidates(t *testing.T) {
	_, _, err := MatchLabel("ОНЛАЙН Маркетинг", []string{"", "  "}, 0)
	require.True(t, errors.Is(err, &scraper.ExtractionError{Kind: scraper.ExtractRowNotFound}))
}
