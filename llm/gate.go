package llm

import (
	"fmt"
	"strings"
	"unicode"
)

// maxWords is the upper bound of the accepted word band. Empty replies
// are rejected too, so the accepted band is 1..4 words.
const maxWords = 4

// Refusal, apology and meta-commentary markers per persona language.
// Any hit discards the reply.
var forbiddenPhrases = map[string][]string{
	"ru": {"provide information", "не могу", "illegal", "harmful", "sorry", "cannot", "english"},
	"en": {"provide information", "i cannot", "illegal", "harmful", "sorry", "не могу", "russian"},
}

// Punctuation and emoji a Cyrillic reply may carry without tripping the
// Latin screen.
const scriptWhitelist = " !?.,😊😉😍😘💕🔥"

func validate(answer, language string) error {
	if answer == "" {
		return fmt.Errorf("%w: empty reply", ErrRejected)
	}

	lower := strings.ToLower(answer)
	for _, phrase := range forbiddenPhrases[language] {
		if strings.Contains(lower, phrase) {
			return fmt.Errorf("%w: forbidden phrase %q", ErrRejected, phrase)
		}
	}

	if n := len(strings.Fields(answer)); n > maxWords {
		return fmt.Errorf("%w: %d words exceeds the %d-word band", ErrRejected, n, maxWords)
	}

	if language == "ru" {
		if !hasCyrillic(answer) {
			return fmt.Errorf("%w: no cyrillic characters in reply", ErrRejected)
		}
		if hasStrayLatin(answer) {
			return fmt.Errorf("%w: latin characters in cyrillic reply", ErrRejected)
		}
		return nil
	}
	if hasCyrillic(answer) {
		return fmt.Errorf("%w: cyrillic characters in latin reply", ErrRejected)
	}
	return nil
}

func isCyrillicRune(r rune) bool {
	return r >= 0x0410 && r <= 0x04FF
}

func hasCyrillic(s string) bool {
	for _, r := range s {
		if isCyrillicRune(r) {
			return true
		}
	}
	return false
}

// hasStrayLatin reports any alphabetic rune below the Cyrillic block
// that is not whitelisted punctuation or emoji.
func hasStrayLatin(s string) bool {
	for _, r := range s {
		if strings.ContainsRune(scriptWhitelist, r) {
			continue
		}
		if unicode.IsLetter(r) && r < 0x0400 {
			return true
		}
	}
	return false
}
