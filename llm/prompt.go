package llm

import (
	"fmt"
	"strings"
)

// PersonaPrompt carries the persona attributes embedded into the
// generator instruction.
type PersonaPrompt struct {
	Name      string
	Age       int
	City      string
	Country   string
	Language  string // "ru" or "en"
	Mood      string
	Interests []string
	Traits    []string
	UseEmoji  bool
}

// buildPrompt renders the locale-specific instruction. The wording
// leans hard on the output constraints because the reply is validated
// afterwards and anything out of bounds is thrown away.
func buildPrompt(message string, p PersonaPrompt) string {
	interests := strings.Join(p.Interests, ", ")
	personality := strings.Join(p.Traits, ", ")

	if p.Language == "ru" {
		emoji := "Без эмодзи."
		if p.UseEmoji {
			emoji = "Используй эмодзи в конце."
		}
		return fmt.Sprintf(
			"Ты %s, %d-летняя девушка из города %s, %s. "+
				"Твои интересы: %s. Твоё настроение: %s. Характер: %s. "+
				"ВАЖНО: Отвечай ТОЛЬКО на русском языке, строго 2-4 слова, в флиртующем стиле. "+
				"ЗАПРЕЩЕНЫ любые английские слова, предупреждения и длинные ответы. "+
				"ОБЯЗАТЕЛЬНО используй русские символы и не используй латиницу. "+
				"%s Сообщение: %s",
			p.Name, p.Age, p.City, p.Country, interests, p.Mood, personality, emoji, message)
	}

	emoji := "No emojis."
	if p.UseEmoji {
		emoji = "Add an emoji at the end."
	}
	return fmt.Sprintf(
		"You are %s, a %d-year-old girl from %s, %s. "+
			"Your interests: %s. Your mood: %s. Personality: %s. "+
			"IMPORTANT: Reply ONLY in English, strictly 2-4 words, in a flirty style. "+
			"FORBIDDEN: Russian words, warnings, or long responses. "+
			"MUST use only English characters and avoid Cyrillic. "+
			"%s Message: %s",
		p.Name, p.Age, p.City, p.Country, interests, p.Mood, personality, emoji, message)
}
