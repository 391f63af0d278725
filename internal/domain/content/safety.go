package content

import "strings"

// blocklist holds keywords that make a topic inappropriate for young
// learners. Matching is deliberately coarse: a case-insensitive substring
// check, not tokenized. False positives on innocuous words containing a
// blocked substring are accepted behavior.
var blocklist = []string{
	// Violence & weapons
	"gun", "guns", "weapon", "weapons", "bomb", "bombs", "war", "wars",
	"kill", "killing", "murder", "death", "suicide",
	"violence", "violent", "fight", "fighting", "attack", "attacks",
	"terrorist", "terrorism", "shooting",

	// Mature/sexual content
	"sex", "sexual", "porn", "nude", "naked", "adult", "mature",
	"intimate", "romantic",

	// Drugs & substances
	"drug", "drugs", "alcohol", "beer", "wine", "cocaine", "marijuana",
	"smoking", "cigarette",

	// Disturbing content
	"scary", "horror", "ghost", "demon", "evil", "blood", "gore", "disturbing",
}

// IsAppropriate reports whether a free-text topic passes the keyword
// blocklist. Pure and stateless. Callers reject failing topics with a
// user-facing message asking for an educational topic, not a generic error.
func IsAppropriate(topic string) bool {
	lowered := strings.ToLower(strings.TrimSpace(topic))
	for _, keyword := range blocklist {
		if strings.Contains(lowered, keyword) {
			return false
		}
	}
	return true
}
