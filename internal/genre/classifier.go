// Package genre infers a coarse genre label from a track's title and channel text.
package genre

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Genre is a label from the fixed taxonomy.
type Genre string

const (
	Bollywood  Genre = "bollywood"
	Classical  Genre = "classical"
	Pop        Genre = "pop"
	Rock       Genre = "rock"
	Electronic Genre = "electronic"
	Jazz       Genre = "jazz"
	Folk       Genre = "folk"
	Devotional Genre = "devotional"
	Regional   Genre = "regional"
	// General is assigned when no keyword of any other genre matches.
	General Genre = "general"
)

// Entry pairs a genre with the keywords that select it.
type Entry struct {
	Genre    Genre
	Keywords []string
}

// Taxonomy is checked in slice order and the first entry with a keyword hit wins,
// so a title mentioning both "rock" and "pop" is classified as pop.
// Keywords must be lower case.
var Taxonomy = []Entry{
	{Genre: Bollywood, Keywords: []string{"bollywood", "hindi", "filmi", "desi"}},
	{Genre: Classical, Keywords: []string{"classical", "carnatic", "hindustani", "raga"}},
	{Genre: Pop, Keywords: []string{"pop", "mainstream", "chart", "hit"}},
	{Genre: Rock, Keywords: []string{"rock", "metal", "punk", "alternative"}},
	{Genre: Electronic, Keywords: []string{"electronic", "edm", "techno", "house", "dubstep"}},
	{Genre: Jazz, Keywords: []string{"jazz", "blues", "swing"}},
	{Genre: Folk, Keywords: []string{"folk", "traditional", "acoustic"}},
	{Genre: Devotional, Keywords: []string{"devotional", "bhajan", "kirtan", "spiritual"}},
	{Genre: Regional, Keywords: []string{"tamil", "telugu", "malayalam", "kannada", "punjabi", "bengali"}},
}

// All returns every genre label in taxonomy order, ending with General.
func All() []Genre {
	genres := make([]Genre, 0, len(Taxonomy)+1)
	for _, entry := range Taxonomy {
		genres = append(genres, entry.Genre)
	}
	return append(genres, General)
}

// Classify returns the first taxonomy genre whose keywords occur in the title or the
// channel, ignoring case. It returns General when nothing matches.
func Classify(title, channel string) Genre {
	title = fold(title)
	channel = fold(channel)

	for _, entry := range Taxonomy {
		for _, keyword := range entry.Keywords {
			if strings.Contains(title, keyword) || strings.Contains(channel, keyword) {
				return entry.Genre
			}
		}
	}

	return General
}

func fold(text string) string {
	return cases.Lower(language.Und).String(norm.NFKC.String(text))
}
