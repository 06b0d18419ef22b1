// Package engine decides, for every inbound message, which response
// source wins and what exact text goes back to the user.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/persona-labs/persona-service/conversation"
	"github.com/persona-labs/persona-service/llm"
	"github.com/persona-labs/persona-service/persona"
	"github.com/persona-labs/persona-service/spintax"
	"github.com/persona-labs/persona-service/trained"
)

// Source classifies where the winning response text came from.
type Source string

const (
	SourceSemi      Source = "semi"
	SourceFinal     Source = "final"
	SourceTrained   Source = "trained"
	SourceGenerated Source = "generated"
	SourceDefault   Source = "default"
)

// Result is the resolved reply plus its classification metadata.
type Result struct {
	Text    string
	Turn    int
	Semi    bool
	Final   bool
	Emotion string
	Source  Source
}

// TrainedStore is the lookup surface the resolver needs from the
// trained response bank. A miss is trained.ErrNoMatch; anything else is
// a storage failure and aborts the request.
type TrainedStore interface {
	Lookup(ctx context.Context, message, personaID string) (string, trained.MatchKind, error)
}

// Generator is the external free-text generator gate. Both
// llm.ErrUnavailable and llm.ErrRejected fall through to the canned
// pools.
type Generator interface {
	Attempt(ctx context.Context, message string, p llm.PersonaPrompt) (string, error)
}

// Resolver orchestrates profiles, the ledger, the trained bank, the
// generator gate and the canned pools into one reply per message.
type Resolver struct {
	profiles  *persona.Store
	ledger    *conversation.Ledger
	trained   TrainedStore
	generator Generator
	expander  *spintax.Expander
	picker    *picker
	log       *log.Logger
}

func NewResolver(
	profiles *persona.Store,
	ledger *conversation.Ledger,
	trainedStore TrainedStore,
	generator Generator,
	expander *spintax.Expander,
	src rand.Source,
	logger *log.Logger,
) *Resolver {
	return &Resolver{
		profiles:  profiles,
		ledger:    ledger,
		trained:   trainedStore,
		generator: generator,
		expander:  expander,
		picker:    newPicker(src),
		log:       logger,
	}
}

// Resolve handles one inbound message: it records the turn, walks the
// decision chain and returns the expanded reply. The turn counter is
// bumped before branch evaluation, so the semi/final boundary sees the
// post-increment count.
func (r *Resolver) Resolve(ctx context.Context, personaID, userID, message string) (*Result, error) {
	p, err := r.profiles.Load(personaID)
	if err != nil {
		return nil, err
	}

	turn := r.ledger.RecordTurn(userID, personaID, message)
	res, err := r.decide(ctx, personaID, p, turn, message)
	if err != nil {
		return nil, fmt.Errorf("resolving persona %q user %q: %w", personaID, userID, err)
	}
	return res, nil
}

// Preview resolves a message against a throwaway turn counter of one,
// leaving the ledger untouched. Used by the model test endpoint.
func (r *Resolver) Preview(ctx context.Context, personaID, message string) (*Result, error) {
	p, err := r.profiles.Load(personaID)
	if err != nil {
		return nil, err
	}
	res, err := r.decide(ctx, personaID, p, 1, message)
	if err != nil {
		return nil, fmt.Errorf("previewing persona %q: %w", personaID, err)
	}
	return res, nil
}

func (r *Resolver) decide(ctx context.Context, personaID string, p *persona.Profile, turn int, message string) (*Result, error) {
	normalized := trained.Normalize(message)
	res := &Result{
		Turn:    turn,
		Emotion: DetectEmotion(message),
	}

	if trigger, ok := matchTrigger(p, normalized); ok {
		r.log.Info("trigger phrase detected", "persona", personaID, "trigger", trigger)
		res.Text = r.expander.Expand(p.FinalMessage)
		res.Final = true
		res.Source = SourceFinal
		return res, nil
	}

	if turn == p.MessageCount-1 {
		res.Text = r.expander.Expand(p.SemiMessage)
		res.Semi = true
		res.Source = SourceSemi
		return res, nil
	}

	if turn >= p.MessageCount {
		res.Text = r.expander.Expand(p.FinalMessage)
		res.Final = true
		res.Source = SourceFinal
		return res, nil
	}

	answer, kind, err := r.trained.Lookup(ctx, message, personaID)
	if err == nil {
		r.log.Debug("trained response hit", "persona", personaID, "tier", kind)
		res.Text = r.expander.Expand(answer)
		res.Source = SourceTrained
		return res, nil
	}
	if !errors.Is(err, trained.ErrNoMatch) {
		return nil, err
	}

	generated, err := r.generator.Attempt(ctx, message, promptFor(p))
	if err == nil {
		res.Text = r.expander.Expand(generated)
		res.Source = SourceGenerated
		return res, nil
	}
	if !errors.Is(err, llm.ErrUnavailable) && !errors.Is(err, llm.ErrRejected) {
		return nil, err
	}
	r.log.Debug("generator fell through", "persona", personaID, "reason", err)

	res.Text = r.expander.Expand(r.canned(p, normalized))
	res.Source = SourceDefault
	return res, nil
}

func matchTrigger(p *persona.Profile, normalized string) (string, bool) {
	for _, trigger := range p.Triggers {
		t := strings.ToLower(strings.TrimSpace(trigger))
		if t != "" && strings.Contains(normalized, t) {
			return trigger, true
		}
	}
	return "", false
}

func promptFor(p *persona.Profile) llm.PersonaPrompt {
	return llm.PersonaPrompt{
		Name:      p.Name,
		Age:       p.Age,
		City:      p.City,
		Country:   p.Country,
		Language:  p.Language,
		Mood:      p.Mood,
		Interests: p.Interests,
		Traits:    p.PersonalityTraits,
		UseEmoji:  p.UseEmoji,
	}
}
