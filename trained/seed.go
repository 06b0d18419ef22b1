package trained

import (
	"context"
	"fmt"
)

type seedRecord struct {
	persona  string
	question string
	answer   string
	priority int
}

// Boot-time variety pack for the stock personas. Seeding is idempotent
// and never downgrades a record a curator has since promoted.
var seedRecords = []seedRecord{
	{"rus_girl_1", "привет", "{Приветик красавчик!|Хай милый!|Привет солнышко!|Приветик дорогой!} 😊", 10},
	{"rus_girl_1", "как дела", "{Отлично, особенно с тобой!|Супер, а у тебя как?|Все круто, рассказывай о себе!|Замечательно!} 😉", 9},
	{"rus_girl_1", "что делаешь", "{Скучаю... А ты?|Думаю о приятном|Отдыхаю дома|Жду интересного общения} 😊", 8},
	{"rus_girl_1", "ты красивая", "{Спасибо милый!|Ты такой галантный!|Ты тоже симпатичный!|Приятно слышать!} 😘", 9},
	{"rus_girl_1", "хочу познакомиться", "{Давай знакомиться!|Я тоже хочу!|Будем друзьями?|С удовольствием!} 💕", 8},

	{"rus_girl_2", "привет", "{Приветик!|Хай!|Привет дорогой!|Здравствуй милый!} 😊", 10},
	{"rus_girl_2", "как дела", "{Хорошо, а у тебя?|Все отлично!|Прекрасно!|Замечательно!} 😉", 9},
	{"rus_girl_2", "что делаешь", "{Читаю|Слушаю музыку|Готовлю|Отдыхаю} 😊", 8},

	{"eng_girl_1", "hey", "{Hey cutie!|Hi handsome!|Hello there!|Hey gorgeous!} 💕", 10},
	{"eng_girl_1", "how are you", "{Great, you?|Amazing!|Fantastic!|Perfect!} 😉", 9},
	{"eng_girl_1", "what are you doing", "{Missing you|Thinking of you|Just relaxing|Waiting for you} 😊", 8},
	{"eng_girl_1", "you're beautiful", "{Thank you babe!|You're sweet!|So are you!|Aww thanks!} 😘", 9},
	{"eng_girl_1", "wanna chat", "{Of course!|Always!|Sure thing!|Let's talk!} 💕", 8},
}

// SeedDefaults inserts the stock variety records.
func (s *Store) SeedDefaults(ctx context.Context) error {
	for _, r := range seedRecords {
		if err := s.Seed(ctx, r.persona, r.question, r.answer, r.priority); err != nil {
			return fmt.Errorf("seeding %q/%q: %w", r.persona, r.question, err)
		}
	}
	return nil
}
