package engine

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/persona-labs/persona-service/persona"
)

type poolCategory string

const (
	poolGreetings poolCategory = "greetings"
	poolAge       poolCategory = "age_questions"
	poolLocation  poolCategory = "location_questions"
	poolFlirty    poolCategory = "flirty"
	poolDefault   poolCategory = "default"
)

// categoryRules pick the canned pool by sniffing the normalized
// message; evaluated top-down, first match wins. Extending a locale or
// category never touches the resolver.
var categoryRules = []struct {
	keywords []string
	category poolCategory
}{
	{[]string{"привет", "hi", "hey", "hello", "хай"}, poolGreetings},
	{[]string{"ск лет", "age", "сколько лет", "how old", "возраст"}, poolAge},
	{[]string{"откуда", "from", "город", "where", "city"}, poolLocation},
	{[]string{"шалить", "horny", "хочу", "want", "m or f", "naughty", "секс"}, poolFlirty},
}

var cannedEmojis = []string{"😘", "😊", "😉", "💕", "🔥", "😍"}

// cannedPools renders the per-locale candidate lists with the persona's
// own attributes baked in.
func cannedPools(p *persona.Profile) map[poolCategory][]string {
	if p.Language == "ru" {
		return map[poolCategory][]string{
			poolGreetings: {"Привет, красавчик! 😊", "Приветик! 😘", "Хай, как дела? 😉", "Привет милый! 💕", "Приветствую! 😍"},
			poolAge:       {fmt.Sprintf("%d, а тебе? 😉", p.Age), "Юная, а ты? 😘", "Возраст — секрет! 😍", fmt.Sprintf("Мне %d! 💕", p.Age), "Молодая! 😊"},
			poolLocation:  {fmt.Sprintf("Из %s! 😍", p.City), fmt.Sprintf("%s, ты где? 😉", p.City), fmt.Sprintf("%s! 💕", p.Country), fmt.Sprintf("Живу в %s! 😊", p.City)},
			poolFlirty:    {"Ого, смело! 😏", "Интересно, продолжай! 😉", "Ты интригуешь! 😍", "Жарко говоришь! 🔥", "Смелый какой! 😘"},
			poolDefault:   {"Круто! 😊", "Серьёзно? 😉", "Расскажи ещё! 😍", "Интересно! 💕", "Ого! 😘", "Здорово! 🔥"},
		}
	}
	return map[poolCategory][]string{
		poolGreetings: {"Hey handsome! 😊", "Hi there! 😘", "Yo, what's up? 😉", "Hello cutie! 💕", "Hi gorgeous! 😍"},
		poolAge:       {fmt.Sprintf("%d, you? 😉", p.Age), "Young, you? 😘", "Age's a secret! 😍", fmt.Sprintf("I'm %d! 💕", p.Age), "Young! 😊"},
		poolLocation:  {fmt.Sprintf("From %s! 😍", p.City), fmt.Sprintf("%s, you? 😉", p.City), fmt.Sprintf("%s! 💕", p.Country), fmt.Sprintf("Live in %s! 😊", p.City)},
		poolFlirty:    {"Oh, naughty! 😏", "Keep talking! 😉", "You're intriguing! 😍", "Hot talk! 🔥", "Bold boy! 😘"},
		poolDefault:   {"Cool! 😊", "Really? 😉", "Tell me more! 😍", "Interesting! 💕", "Wow! 😘", "Great! 🔥"},
	}
}

// picker is the engine's own random source for pool selection, guarded
// because resolves run request-parallel.
type picker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newPicker(src rand.Source) *picker {
	return &picker{rnd: rand.New(src)}
}

func (pk *picker) pick(options []string) string {
	pk.mu.Lock()
	defer pk.mu.Unlock()
	return options[pk.rnd.Intn(len(options))]
}

// canned selects a pool by sniffing the message and returns one
// candidate, appending an emoji when the persona wants one and the
// candidate has none.
func (r *Resolver) canned(p *persona.Profile, normalized string) string {
	category := poolDefault
	for _, rule := range categoryRules {
		if containsAny(normalized, rule.keywords) {
			category = rule.category
			break
		}
	}

	response := r.picker.pick(cannedPools(p)[category])

	if p.UseEmoji && !containsAny(response, cannedEmojis) {
		response += " " + r.picker.pick(cannedEmojis)
	}
	return response
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
