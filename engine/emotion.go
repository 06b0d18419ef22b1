package engine

import "strings"

// emotionRules classify the inbound message for observability only; the
// tag never influences which branch answers. Top-down, first match.
var emotionRules = []struct {
	keywords []string
	emotion  string
}{
	{[]string{"красив", "сексуальн", "привлекат", "beautiful", "gorgeous", "hot"}, "flirty"},
	{[]string{"люблю", "обожаю", "дорог", "love", "adore"}, "romantic"},
	{[]string{"хочу", "желаю", "страсть", "want", "desire", "horny"}, "seductive"},
	{[]string{"играть", "шалить", "веселье", "play", "naughty"}, "playful"},
}

// DetectEmotion tags the inbound message with a coarse emotion.
func DetectEmotion(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range emotionRules {
		if containsAny(lower, rule.keywords) {
			return rule.emotion
		}
	}
	return "neutral"
}
