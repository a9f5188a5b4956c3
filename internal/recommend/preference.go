package recommend

import "strings"

// Preference is a spending category hinted by the user.
type Preference string

const (
	PreferenceNone     Preference = ""
	PreferenceTravel   Preference = "travel"
	PreferenceCashback Preference = "cashback"
	PreferenceStudent  Preference = "student"
	PreferenceRewards  Preference = "rewards"
)

type keyword struct {
	word       string
	preference Preference
}

// keywords is matched top to bottom; the first keyword contained in the text wins.
var keywords = []keyword{
	{"travel", PreferenceTravel},
	{"flight", PreferenceTravel},
	{"airline", PreferenceTravel},
	{"lounge", PreferenceTravel},
	{"miles", PreferenceTravel},
	{"hotel", PreferenceTravel},
	{"cashback", PreferenceCashback},
	{"cash back", PreferenceCashback},
	{"grocer", PreferenceCashback},
	{"fuel", PreferenceCashback},
	{"student", PreferenceStudent},
	{"college", PreferenceStudent},
	{"university", PreferenceStudent},
	{"reward", PreferenceRewards},
	{"points", PreferenceRewards},
}

// ResolvePreference maps free text to a preference. Matching is a
// case-insensitive substring search over the keyword table in order.
func ResolvePreference(text string) Preference {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return PreferenceNone
	}

	for _, k := range keywords {
		if strings.Contains(text, k.word) {
			return k.preference
		}
	}
	return PreferenceNone
}
