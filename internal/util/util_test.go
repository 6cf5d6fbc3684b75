package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeExpr(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cases := map[string]time.Time{
		"2h":                   now.Add(-2 * time.Hour),
		"30m":                  now.Add(-30 * time.Minute),
		"3d":                   now.AddDate(0, 0, -3),
		"2w":                   now.AddDate(0, 0, -14),
		"1mo":                  now.AddDate(0, -1, 0),
		"2026-01-02T03:04:05Z": time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseTimeExpr(in, now)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: got %s want %s", in, got, want)
	}

	day, err := ParseTimeExpr("2026-01-02", now)
	require.NoError(t, err)
	assert.Equal(t, 2, day.Day())

	for _, bad := range []string{"", "xd", "soon", "2026/01/02"} {
		_, err := ParseTimeExpr(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestParseTimeRangeSwaps(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	s, u, err := ParseTimeRange("1d", "1w", now)
	require.NoError(t, err)
	assert.True(t, s.Before(u))

	s, u, err = ParseTimeRange("", "", now)
	require.NoError(t, err)
	assert.True(t, s.IsZero())
	assert.True(t, u.IsZero())

	_, _, err = ParseTimeRange("nope", "", now)
	assert.ErrorContains(t, err, "--since")
}

func TestScoreCompletions(t *testing.T) {
	cands := []string{"sea otters", "honey badgers", "star-nosed moles"}
	assert.Equal(t, cands, ScoreCompletions("", cands, 2))
	assert.Equal(t, []string{"sea otters"}, ScoreCompletions("otr", cands, 5))
	assert.Nil(t, ScoreCompletions("zzz", cands, 5))
	assert.Len(t, ScoreCompletions("s", cands, 1), 1)
}

func TestRankFuzzy(t *testing.T) {
	cands := []string{"alpha", "beta", "alphabet"}
	idx := RankFuzzy("alp", cands, 0)
	assert.ElementsMatch(t, []int{0, 2}, idx)
	assert.Nil(t, RankFuzzy("", cands, 0))
}
