package fuzzy

import (
	"math"
	"testing"
	"time"
)

// runStringTransformationTest is a helper to run tests for string transformation functions.
func runStringTransformationTest(t *testing.T, testName string,
	transformFunc func(string) string, testCases []struct {
		name     string
		input    string
		expected string
	}) {
	t.Helper()
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			result := transformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", testName, result, tt.expected)
			}
		})
	}
}

func TestNormalizer_NormalizeChannel(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple channel",
			input:    "The Beatles",
			expected: "the beatles",
		},
		{
			name:     "VEVO suffix",
			input:    "ArijitSinghVEVO",
			expected: "arijitsingh",
		},
		{
			name:     "Topic channel",
			input:    "Arijit Singh - Topic",
			expected: "arijit singh",
		},
		{
			name:     "Official suffix",
			input:    "Queen Official",
			expected: "queen",
		},
		{
			name:     "Channel with and",
			input:    "Simon and Garfunkel",
			expected: "simon & garfunkel",
		},
		{
			name:     "Channel with accents",
			input:    "Björk",
			expected: "bjork",
		},
	}

	runStringTransformationTest(t, "NormalizeChannel", normalizer.NormalizeChannel, tests)
}

func TestNormalizer_NormalizeTitle(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple title",
			input:    "Hey Jude",
			expected: "hey jude",
		},
		{
			name:     "Bracketed annotation and separator",
			input:    "Kesariya (Official Video) | Brahmastra",
			expected: "kesariya brahmastra",
		},
		{
			name:     "Square brackets",
			input:    "Song Title [Lyrical Video]",
			expected: "song title",
		},
		{
			name:     "Featuring in parentheses",
			input:    "Song Title (feat. Artist)",
			expected: "song title",
		},
		{
			name:     "Featuring without brackets",
			input:    "Song Title feat. Artist",
			expected: "song title",
		},
		{
			name:     "Upload noise after a dash",
			input:    "Song Title - Official Music Video",
			expected: "song title",
		},
		{
			name:     "Noise words only as whole words",
			input:    "Audioslave - Like a Stone HD",
			expected: "audioslave like a stone",
		},
		{
			name:     "Title with punctuation",
			input:    "Don't Stop Me Now!",
			expected: "don t stop me now",
		},
		{
			name:     "Title with multiple spaces",
			input:    "Song    Title",
			expected: "song title",
		},
	}

	runStringTransformationTest(t, "NormalizeTitle", normalizer.NormalizeTitle, tests)
}

func TestNormalizer_CalculateSimilarity(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name     string
		s1       string
		s2       string
		expected float64
	}{
		{"Identical strings", "hello", "hello", 1.0},
		{"Empty first", "", "hello", 0.0},
		{"Empty second", "hello", "", 0.0},
		{"Both empty", "", "", 1.0},
		{"Completely different", "abc", "xyz", 0.0},
		{"Half shared", "abcd", "abxy", 0.5},
		{"Subsequence", "kesariya", "kesariya brahmastra", 8.0 / 19.0},
		{"Multibyte runes count once", "björk", "bjork", 4.0 / 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizer.CalculateSimilarity(tt.s1, tt.s2)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("CalculateSimilarity(%q, %q) = %f, want %f", tt.s1, tt.s2, result, tt.expected)
			}
		})
	}
}

func TestNormalizer_DurationTolerance(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name     string
		d1       time.Duration
		d2       time.Duration
		expected float64
	}{
		{"Equal", 3 * time.Minute, 3 * time.Minute, 1.0},
		{"Within tolerance", 3 * time.Minute, 3*time.Minute + 20*time.Second, 1.0},
		{"Order does not matter", 3*time.Minute + 20*time.Second, 3 * time.Minute, 1.0},
		{"Halfway", 3 * time.Minute, 4*time.Minute + 15*time.Second, 0.5},
		{"Too far apart", 3 * time.Minute, 6 * time.Minute, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizer.DurationTolerance(tt.d1, tt.d2)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("DurationTolerance() = %f, want %f", result, tt.expected)
			}
		})
	}
}
