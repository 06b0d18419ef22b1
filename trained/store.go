// Package trained stores curated question/answer records per persona
// and resolves inbound messages against them in three match tiers.
package trained

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
)

// ErrNoMatch is returned by Lookup when no tier yields a record.
var ErrNoMatch = errors.New("no trained response")

// MatchKind identifies which tier produced a lookup hit.
type MatchKind string

const (
	MatchExact   MatchKind = "exact"
	MatchKeyword MatchKind = "keyword"
	MatchPartial MatchKind = "partial"
)

// Record origin tags.
const (
	OriginManual = "manual"
	OriginAuto   = "auto"
	OriginFile   = "file"
	OriginSeed   = "seed"
)

// Record is one trained question/answer pair. Questions are stored
// normalized (trimmed, lowercased); answers keep their raw spintax.
type Record struct {
	ID        int64     `db:"id"`
	Persona   string    `db:"persona"`
	Question  string    `db:"question"`
	Answer    string    `db:"answer"`
	Priority  int       `db:"priority"`
	Origin    string    `db:"origin"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Store is the SQLite-backed trained response store.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Normalize is the canonical question/message form used for matching.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Train upserts a record for (persona, question). A later write for the
// same key overwrites the answer, priority and origin of the earlier
// one; the trained bank never grows duplicate keys.
func (s *Store) Train(ctx context.Context, personaID, question, answer string, priority int, origin string) error {
	if personaID == "" || strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return fmt.Errorf("persona, question and answer are all required")
	}
	if priority < 1 || priority > 10 {
		return fmt.Errorf("priority must be within [1,10], got %d", priority)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trained_responses (persona, question, answer, priority, origin, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(persona, question) DO UPDATE SET
			answer = excluded.answer,
			priority = excluded.priority,
			origin = excluded.origin,
			updated_at = excluded.updated_at`,
		personaID, Normalize(question), answer, priority, origin, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("could not train persona %q: %w", personaID, err)
	}
	return nil
}

// Seed upserts a record but never downgrades one that already holds a
// higher priority, so boot-time seeding cannot clobber curated data.
func (s *Store) Seed(ctx context.Context, personaID, question, answer string, priority int) error {
	if priority < 1 || priority > 10 {
		return fmt.Errorf("priority must be within [1,10], got %d", priority)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trained_responses (persona, question, answer, priority, origin, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(persona, question) DO UPDATE SET
			answer = excluded.answer,
			priority = excluded.priority,
			origin = excluded.origin,
			updated_at = excluded.updated_at
		WHERE excluded.priority >= trained_responses.priority`,
		personaID, Normalize(question), answer, priority, OriginSeed, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("could not seed persona %q: %w", personaID, err)
	}
	return nil
}

// Lookup resolves a message against the persona's records. Tiers are
// tried in order and the first tier with any candidate wins:
//
//  1. exact match on the normalized message;
//  2. keyword: for each whitespace token longer than three runes, in
//     message order, records whose question contains the token. The
//     first token with candidates wins even if a later token would
//     reach a higher-priority record (intentional precision bias);
//  3. partial: records whose question contains the whole message.
//
// Within a tier, highest priority wins and the most recent write breaks
// ties.
func (s *Store) Lookup(ctx context.Context, message, personaID string) (string, MatchKind, error) {
	normalized := Normalize(message)
	if normalized == "" {
		return "", "", ErrNoMatch
	}

	var answer string
	err := s.db.GetContext(ctx, &answer, `
		SELECT answer FROM trained_responses
		WHERE persona = ? AND question = ?
		ORDER BY priority DESC, updated_at DESC, id DESC
		LIMIT 1`, personaID, normalized)
	if err == nil {
		return answer, MatchExact, nil
	}
	if !isNoRows(err) {
		return "", "", fmt.Errorf("exact lookup for persona %q: %w", personaID, err)
	}

	for _, token := range strings.Fields(normalized) {
		if utf8.RuneCountInString(token) <= 3 {
			continue
		}
		err := s.db.GetContext(ctx, &answer, `
			SELECT answer FROM trained_responses
			WHERE persona = ? AND question LIKE '%' || ? || '%' ESCAPE '\'
			ORDER BY priority DESC, updated_at DESC, id DESC
			LIMIT 1`, personaID, escapeLike(token))
		if err == nil {
			return answer, MatchKeyword, nil
		}
		if !isNoRows(err) {
			return "", "", fmt.Errorf("keyword lookup for persona %q: %w", personaID, err)
		}
	}

	err = s.db.GetContext(ctx, &answer, `
		SELECT answer FROM trained_responses
		WHERE persona = ? AND question LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY priority DESC, updated_at DESC, id DESC
		LIMIT 1`, personaID, escapeLike(normalized))
	if err == nil {
		return answer, MatchPartial, nil
	}
	if !isNoRows(err) {
		return "", "", fmt.Errorf("partial lookup for persona %q: %w", personaID, err)
	}
	return "", "", ErrNoMatch
}

// Count reports how many trained records exist for a persona.
func (s *Store) Count(ctx context.Context, personaID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM trained_responses WHERE persona = ?`, personaID)
	if err != nil {
		return 0, fmt.Errorf("could not count trained responses for %q: %w", personaID, err)
	}
	return n, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
