package persona

import "fmt"

// Profile is the complete configuration of a scripted persona. Profiles
// are replaced wholesale; there are no partial updates.
type Profile struct {
	Name              string   `json:"name"`
	Age               int      `json:"age"`
	Country           string   `json:"country"`
	City              string   `json:"city"`
	Language          string   `json:"language"` // "ru" or "en"
	Interests         []string `json:"interests"`
	Mood              string   `json:"mood"`
	MessageCount      int      `json:"message_count"` // scripted arc length
	SemiMessage       string   `json:"semi_message"`
	FinalMessage      string   `json:"final_message"`
	LearningEnabled   bool     `json:"learning_enabled"`
	ResponseLength    int      `json:"response_length"`
	UseEmoji          bool     `json:"use_emoji"`
	PersonalityTraits []string `json:"personality_traits"`
	Triggers          []string `json:"triggers"`
}

// Validate checks the invariants a profile must satisfy before it can
// be saved or used by the resolver.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.Language != "ru" && p.Language != "en" {
		return fmt.Errorf("unsupported language %q", p.Language)
	}
	if p.MessageCount < 1 {
		return fmt.Errorf("message_count must be at least 1, got %d", p.MessageCount)
	}
	if p.FinalMessage == "" {
		return fmt.Errorf("final_message is required")
	}
	return nil
}

// Summary is the listing form of a profile.
type Summary struct {
	ID          string `json:"name"`
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
	Country     string `json:"country"`
}
