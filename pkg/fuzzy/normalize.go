// Package fuzzy normalises video titles and channel names so that re-uploads of the same
// song can be recognised.
package fuzzy

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	bracketRegex    = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	featRegex       = regexp.MustCompile(`(?i)\s(?:feat\.?|ft\.?|featuring)\s.*$`)
	noiseRegex      = regexp.MustCompile(`(?i)\b(?:official\s+(?:music\s+)?video|official\s+audio|lyrical(?:\s+video)?|lyrics?(?:\s+video)?|full\s+(?:video\s+)?song|audio|hd|4k|remaster(?:ed)?)\b`)
	channelRegex    = regexp.MustCompile(`(?i)(?:\s*-\s*topic|vevo|\s+official)$`)
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

const (
	// durationTolerance is the difference under which two durations count as equal.
	durationTolerance = 30 * time.Second
	// durationMaxDiff is the difference at which two durations no longer match at all.
	durationMaxDiff = 2 * time.Minute
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeChannel strips auto-generated channel suffixes such as "VEVO" and " - Topic".
func (n *Normalizer) NormalizeChannel(channel string) string {
	channel = channelRegex.ReplaceAllString(strings.TrimSpace(channel), "")
	channel = n.basicNormalize(channel)

	channel = strings.ReplaceAll(channel, " and ", " & ")
	return channel
}

// NormalizeTitle drops bracketed annotations, featured artists and upload noise like
// "Official Video" or "Lyrical" from a video title.
func (n *Normalizer) NormalizeTitle(title string) string {
	title = bracketRegex.ReplaceAllString(title, " ")
	title = featRegex.ReplaceAllString(title, "")
	title = noiseRegex.ReplaceAllString(title, " ")

	return n.basicNormalize(title)
}

func (n *Normalizer) basicNormalize(text string) string {
	text = norm.NFKD.String(text)

	var result strings.Builder
	for _, r := range text {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	text = result.String()

	text = punctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")

	text = strings.ToLower(text)
	text = strings.TrimSpace(text)

	return text
}

// CalculateSimilarity returns the longest common subsequence of s1 and s2 relative to the
// longer string, from 0 (nothing shared) to 1 (identical).
func (n *Normalizer) CalculateSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 || len(r2) == 0 {
		return 0.0
	}

	return float64(longestCommonSubsequence(r1, r2)) / float64(max(len(r1), len(r2)))
}

func longestCommonSubsequence(s1, s2 []rune) int {
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			if s1[i-1] == s2[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

// DurationTolerance scores how well two durations match: 1 within 30 seconds, falling
// linearly to 0 at a two minute difference.
func (n *Normalizer) DurationTolerance(d1, d2 time.Duration) float64 {
	diff := d1 - d2
	if diff < 0 {
		diff = -diff
	}

	if diff <= durationTolerance {
		return 1.0
	}
	if diff >= durationMaxDiff {
		return 0.0
	}

	return 1.0 - float64(diff-durationTolerance)/float64(durationMaxDiff-durationTolerance)
}
