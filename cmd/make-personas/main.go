// Command make-personas writes the stock persona profiles into the
// service home directory, skipping ids that already exist.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/persona-labs/persona-service/config"
	"github.com/persona-labs/persona-service/persona"
)

const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorGreen = "\033[32m"
	ColorBlue  = "\033[34m"
)

type stockPersona struct {
	id      string
	profile persona.Profile
}

func stockPersonas() []stockPersona {
	return []stockPersona{
		{"rus_girl_1", persona.Profile{
			Name: "Алина", Age: 23, Country: "Россия", City: "Москва",
			Language: "ru", Interests: []string{"музыка", "путешествия", "фотография"},
			Mood: "игривое", MessageCount: 10,
			SemiMessage:       "{Милый|Дорогой}, мне пора бежать... {Найди меня|Ищи меня} на сайте, продолжим там 😘",
			FinalMessage:      "{Пока|Целую}! Мой профиль на сайте, {пиши мне там|жду тебя там} 💕",
			LearningEnabled:   true,
			UseEmoji:          true,
			PersonalityTraits: []string{"весёлая", "кокетливая"},
			Triggers:          []string{"телеграм", "ватсап", "telegram", "whatsapp"},
		}},
		{"rus_girl_2", persona.Profile{
			Name: "Катя", Age: 25, Country: "Россия", City: "Санкт-Петербург",
			Language: "ru", Interests: []string{"книги", "кино"},
			Mood: "романтичное", MessageCount: 8,
			SemiMessage:     "Скоро убегаю... {Найди|Ищи} меня на сайте 😊",
			FinalMessage:    "{Пока-пока|До встречи}! Я на сайте, пиши 💕",
			LearningEnabled: true,
			UseEmoji:        true,
			Triggers:        []string{"телеграм", "telegram"},
		}},
		{"eng_girl_1", persona.Profile{
			Name: "Emma", Age: 24, Country: "USA", City: "Miami",
			Language: "en", Interests: []string{"fitness", "travel", "music"},
			Mood: "playful", MessageCount: 10,
			SemiMessage:       "{Babe|Sweetie}, I have to run soon... {find me|catch me} on the site, let's continue there 😘",
			FinalMessage:      "{Bye|Kisses}! My profile is on the site, {message me there|waiting for you there} 💕",
			LearningEnabled:   true,
			UseEmoji:          true,
			PersonalityTraits: []string{"cheerful", "flirty"},
			Triggers:          []string{"telegram", "whatsapp", "snapchat"},
		}},
	}
}

func main() {
	fmt.Printf("%s--- Persona Maker ---%s\n", ColorBlue, ColorReset)

	cfg, err := config.LoadAllConfigs()
	if err != nil {
		fmt.Printf("%s[FATAL]%s Failed to load config: %v\n", ColorRed, ColorReset, err)
		os.Exit(1)
	}

	store, err := persona.NewStore(cfg.PersonasDir())
	if err != nil {
		fmt.Printf("%s[FATAL]%s Failed to open persona store: %v\n", ColorRed, ColorReset, err)
		os.Exit(1)
	}

	for _, sp := range stockPersonas() {
		path := filepath.Join(cfg.PersonasDir(), sp.id+".json")
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("%s[SKIP]%s %s already exists\n", ColorBlue, ColorReset, sp.id)
			continue
		}
		p := sp.profile
		if err := store.Save(sp.id, &p); err != nil {
			fmt.Printf("%s[ERROR]%s Failed to write %s: %v\n", ColorRed, ColorReset, sp.id, err)
			continue
		}
		fmt.Printf("%s[SUCCESS]%s Persona '%s' written.\n", ColorGreen, ColorReset, sp.id)
	}
}
