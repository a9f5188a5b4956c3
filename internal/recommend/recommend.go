// Package recommend picks the best card of a catalog for a user profile.
package recommend

import (
	"fmt"
	"strings"

	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/scoring"
)

const NotFoundMessage = "Sorry, I couldn't find a card that matches your profile right now."

// Match is a card augmented with its score for one profile.
type Match struct {
	Card   catalog.Card
	Result scoring.Result
}

// ScoreAll scores every card in catalog order. Zero-scoring cards are kept.
func ScoreAll(c *catalog.Catalog, p scoring.Profile) []Match {
	matches := make([]Match, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		card := c.At(i)
		matches = append(matches, Match{Card: card, Result: scoring.Score(card, p)})
	}
	return matches
}

// Recommend returns the highest-scoring card. Ties go to the card seen first.
// The boolean is false only for an empty catalog; a best score of 0 is still
// a recommendation.
func Recommend(c *catalog.Catalog, p scoring.Profile) (Match, bool) {
	return best(ScoreAll(c, p))
}

func best(matches []Match) (Match, bool) {
	if len(matches) == 0 {
		return Match{}, false
	}

	top := matches[0]
	for _, m := range matches[1:] {
		if m.Result.Score > top.Result.Score {
			top = m
		}
	}
	return top, true
}

// Answer is the outcome of a free-text query.
type Answer struct {
	Message    string
	Preference Preference
	Match      *Match
}

// Query is the text-driven variant of Recommend. The preference resolved from
// text is attached to the profile for context only. minScore is inclusive: a
// best score equal to minScore is a match. When the best score is below
// minScore, or the catalog is empty, the not-found message is returned and
// Match is nil.
func Query(c *catalog.Catalog, p scoring.Profile, text string, minScore int) Answer {
	pref := ResolvePreference(text)
	if pref != PreferenceNone {
		p.Preference = string(pref)
	}

	answer := Answer{Message: NotFoundMessage, Preference: pref}

	match, ok := Recommend(c, p)
	if !ok || match.Result.Score < minScore {
		return answer
	}

	answer.Message = FormatMatch(match)
	answer.Match = &match
	return answer
}

// FormatMatch renders the eligibility message shown to the user.
func FormatMatch(m Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You may be eligible for the **%s** card.\n\nReasons:", m.Card.Name)
	for _, r := range m.Result.Reasons {
		b.WriteString("\n- ")
		b.WriteString(r)
	}
	return b.String()
}
