package guard

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_BannedWinsAndIsNotCounted(t *testing.T) {
	g := New(Options{BannedWords: []string{" Casino "}})
	now := time.Now()

	assert.Equal(t, VerdictBanned, g.Classify("Best CASINO in town", 1, now))
	assert.Equal(t, 0, g.Tracked())
	assert.Equal(t, VerdictAllowed, g.Classify("hello", 1, now))
}

func TestClassify_RateLimitWithinWindow(t *testing.T) {
	g := New(Options{})
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < DefaultMaxMessages; i++ {
		assert.Equal(t, VerdictAllowed, g.Classify("hi", 7, start.Add(time.Duration(i)*time.Second)))
	}
	assert.Equal(t, VerdictRateLimited, g.Classify("hi", 7, start.Add(5*time.Second)))
	// other senders are independent
	assert.Equal(t, VerdictAllowed, g.Classify("hi", 8, start.Add(5*time.Second)))

	// once the early events leave the window the sender is allowed again
	assert.Equal(t, VerdictAllowed, g.Classify("hi", 7, start.Add(14*time.Second)))
}

func TestSweep_EvictsIdleSenders(t *testing.T) {
	g := New(Options{StaleAfter: time.Hour})
	now := time.Now()
	g.Classify("a", 1, now.Add(-2*time.Hour))
	g.Classify("b", 2, now.Add(-time.Minute))

	assert.Equal(t, 1, g.Sweep(now))
	assert.Equal(t, 1, g.Tracked())
}

func TestLoadBannedWords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.yaml")
	require.NoError(t, os.WriteFile(path, []byte("banned_words:\n  - casino\n  - free money\n"), 0o600))

	words, err := LoadBannedWords("spam, ,scam", path)
	require.NoError(t, err)
	assert.Equal(t, []string{"spam", "scam", "casino", "free money"}, words)

	_, err = LoadBannedWords("", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
