package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Store runs the SQL side of analytics: the conversation log, ratings
// and the aggregate queries behind the statistics endpoints.
type Store struct {
	db  *sqlx.DB
	rdb *redis.Client
}

func NewStore(db *sqlx.DB, rdb *redis.Client) *Store {
	return &Store{db: db, rdb: rdb}
}

// Rating is one user verdict on a response.
type Rating struct {
	UserID   string
	Persona  string
	Message  string
	Response string
	Rating   int
}

// InsertConversation appends one resolved turn to the conversation log.
func (s *Store) InsertConversation(ctx context.Context, a Activity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations
			(id, user_id, persona, user_message, response, turn, is_semi, is_last, emotion, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Persona, a.Message, a.Response, a.Turn, a.Semi, a.Final, a.Emotion, a.Source, a.Timestamp)
	if err != nil {
		return fmt.Errorf("could not insert conversation for persona %q: %w", a.Persona, err)
	}
	return nil
}

// InsertRating stores a rating and bumps the per-persona counters.
func (s *Store) InsertRating(ctx context.Context, r Rating) error {
	if r.Rating < 1 || r.Rating > 10 {
		return fmt.Errorf("rating must be within [1,10], got %d", r.Rating)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ratings (id, user_id, persona, message, response, rating, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), r.UserID, r.Persona, r.Message, r.Response, r.Rating, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("could not insert rating for persona %q: %w", r.Persona, err)
	}

	if s.rdb != nil {
		pipe := s.rdb.Pipeline()
		pipe.HIncrBy(ctx, ratingsKey(), r.Persona+":total", 1)
		pipe.HIncrBy(ctx, ratingsKey(), r.Persona+":score", int64(r.Rating))
		if _, err := pipe.Exec(ctx); err != nil {
			// Counters are best-effort; SQLite already has the rating.
			return nil
		}
	}
	return nil
}

// TextCount is a response or question with its occurrence count.
type TextCount struct {
	Text  string `db:"text" json:"text"`
	Count int    `db:"n" json:"count"`
}

// PersonaAggregate summarizes one persona's conversations.
type PersonaAggregate struct {
	Persona       string  `db:"persona" json:"model"`
	Conversations int     `db:"n" json:"conversations"`
	AvgRating     float64 `json:"avg_rating"`
	TotalRatings  int     `json:"total_ratings"`
}

// ProblemQuestion is a low-rated exchange worth curator attention.
type ProblemQuestion struct {
	Persona  string `db:"persona" json:"model"`
	Message  string `db:"message" json:"message"`
	Response string `db:"response" json:"response"`
	Rating   int    `db:"rating" json:"rating"`
}

// Overview is the system-wide statistics payload.
type Overview struct {
	TotalConversations int                `json:"total_conversations"`
	TotalUsers         int                `json:"total_users"`
	ModelStats         []PersonaAggregate `json:"models_stats"`
	TopResponses       []TextCount        `json:"top_responses"`
	TopQuestions       []TextCount        `json:"top_questions"`
	ProblemQuestions   []ProblemQuestion  `json:"problem_questions"`
}

// PersonaStats is the per-persona statistics payload.
type PersonaStats struct {
	Persona            string            `json:"model"`
	TotalConversations int               `json:"total_conversations"`
	TotalUsers         int               `json:"total_users"`
	AvgRating          float64           `json:"avg_rating"`
	TotalRatings       int               `json:"total_ratings"`
	TrainedResponses   int               `json:"trained_responses"`
	TopResponses       []TextCount       `json:"top_responses"`
	TopQuestions       []TextCount       `json:"top_questions"`
	ProblemQuestions   []ProblemQuestion `json:"problem_questions"`
}

// Overview aggregates statistics across all personas.
func (s *Store) Overview(ctx context.Context) (*Overview, error) {
	o := &Overview{}

	if err := s.db.GetContext(ctx, &o.TotalConversations,
		`SELECT COUNT(*) FROM conversations`); err != nil {
		return nil, fmt.Errorf("could not count conversations: %w", err)
	}
	if err := s.db.GetContext(ctx, &o.TotalUsers,
		`SELECT COUNT(DISTINCT user_id) FROM conversations`); err != nil {
		return nil, fmt.Errorf("could not count users: %w", err)
	}

	type ratingRow struct {
		Persona string  `db:"persona"`
		Avg     float64 `db:"avg_rating"`
		Total   int     `db:"total"`
	}
	var perPersona []struct {
		Persona string `db:"persona"`
		N       int    `db:"n"`
	}
	if err := s.db.SelectContext(ctx, &perPersona,
		`SELECT persona, COUNT(*) AS n FROM conversations GROUP BY persona ORDER BY persona`); err != nil {
		return nil, fmt.Errorf("could not aggregate conversations: %w", err)
	}
	var ratings []ratingRow
	if err := s.db.SelectContext(ctx, &ratings, `
		SELECT persona, AVG(rating) AS avg_rating, COUNT(*) AS total
		FROM ratings GROUP BY persona ORDER BY persona`); err != nil {
		return nil, fmt.Errorf("could not aggregate ratings: %w", err)
	}
	byPersona := make(map[string]ratingRow, len(ratings))
	for _, r := range ratings {
		byPersona[r.Persona] = r
	}
	seen := make(map[string]bool, len(perPersona))
	for _, row := range perPersona {
		seen[row.Persona] = true
		agg := PersonaAggregate{Persona: row.Persona, Conversations: row.N}
		if r, ok := byPersona[row.Persona]; ok {
			agg.AvgRating = r.Avg
			agg.TotalRatings = r.Total
		}
		o.ModelStats = append(o.ModelStats, agg)
	}
	// A persona can accumulate ratings without any conversation rows,
	// for example after a purge or through out-of-band rating imports.
	for _, r := range ratings {
		if seen[r.Persona] {
			continue
		}
		o.ModelStats = append(o.ModelStats, PersonaAggregate{
			Persona:      r.Persona,
			AvgRating:    r.Avg,
			TotalRatings: r.Total,
		})
	}

	var err error
	if o.TopResponses, err = s.topTexts(ctx, "response", ""); err != nil {
		return nil, err
	}
	if o.TopQuestions, err = s.topTexts(ctx, "user_message", ""); err != nil {
		return nil, err
	}
	if o.ProblemQuestions, err = s.problemQuestions(ctx, ""); err != nil {
		return nil, err
	}
	return o, nil
}

// ForPersona aggregates statistics for one persona, including its
// trained-record count.
func (s *Store) ForPersona(ctx context.Context, personaID string) (*PersonaStats, error) {
	st := &PersonaStats{Persona: personaID}

	if err := s.db.GetContext(ctx, &st.TotalConversations,
		`SELECT COUNT(*) FROM conversations WHERE persona = ?`, personaID); err != nil {
		return nil, fmt.Errorf("could not count conversations for %q: %w", personaID, err)
	}
	if err := s.db.GetContext(ctx, &st.TotalUsers,
		`SELECT COUNT(DISTINCT user_id) FROM conversations WHERE persona = ?`, personaID); err != nil {
		return nil, fmt.Errorf("could not count users for %q: %w", personaID, err)
	}

	var agg struct {
		Avg   sql.NullFloat64 `db:"avg_rating"`
		Total int             `db:"total"`
	}
	if err := s.db.GetContext(ctx, &agg, `
		SELECT AVG(rating) AS avg_rating, COUNT(*) AS total
		FROM ratings WHERE persona = ?`, personaID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("could not aggregate ratings for %q: %w", personaID, err)
	}
	st.AvgRating = agg.Avg.Float64
	st.TotalRatings = agg.Total

	if err := s.db.GetContext(ctx, &st.TrainedResponses,
		`SELECT COUNT(*) FROM trained_responses WHERE persona = ?`, personaID); err != nil {
		return nil, fmt.Errorf("could not count trained responses for %q: %w", personaID, err)
	}

	var err error
	if st.TopResponses, err = s.topTexts(ctx, "response", personaID); err != nil {
		return nil, err
	}
	if st.TopQuestions, err = s.topTexts(ctx, "user_message", personaID); err != nil {
		return nil, err
	}
	if st.ProblemQuestions, err = s.problemQuestions(ctx, personaID); err != nil {
		return nil, err
	}
	return st, nil
}

// PurgeCounts reports what a purge removed.
type PurgeCounts struct {
	Conversations int64 `json:"conversations"`
	Ratings       int64 `json:"ratings"`
}

// Purge deletes the conversation log, ratings and redis activity for a
// persona. Trained responses are deliberately untouched: trained
// knowledge survives analytics resets.
func (s *Store) Purge(ctx context.Context, personaID string) (PurgeCounts, error) {
	var counts PurgeCounts

	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE persona = ?`, personaID)
	if err != nil {
		return counts, fmt.Errorf("could not purge conversations for %q: %w", personaID, err)
	}
	counts.Conversations, _ = res.RowsAffected()

	res, err = s.db.ExecContext(ctx, `DELETE FROM ratings WHERE persona = ?`, personaID)
	if err != nil {
		return counts, fmt.Errorf("could not purge ratings for %q: %w", personaID, err)
	}
	counts.Ratings, _ = res.RowsAffected()

	if s.rdb != nil {
		pipe := s.rdb.Pipeline()
		pipe.Del(ctx, activityKey(personaID))
		pipe.HDel(ctx, ratingsKey(), personaID+":total", personaID+":score")
		_, _ = pipe.Exec(ctx)
	}
	return counts, nil
}

func (s *Store) topTexts(ctx context.Context, column, personaID string) ([]TextCount, error) {
	query := `SELECT ` + column + ` AS text, COUNT(*) AS n FROM conversations`
	args := []any{}
	if personaID != "" {
		query += ` WHERE persona = ?`
		args = append(args, personaID)
	}
	query += ` GROUP BY ` + column + ` ORDER BY n DESC LIMIT 10`

	var out []TextCount
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("could not aggregate %s: %w", column, err)
	}
	return out, nil
}

func (s *Store) problemQuestions(ctx context.Context, personaID string) ([]ProblemQuestion, error) {
	query := `SELECT persona, message, response, rating FROM ratings WHERE rating <= 3`
	args := []any{}
	if personaID != "" {
		query += ` AND persona = ?`
		args = append(args, personaID)
	}
	query += ` ORDER BY rating ASC LIMIT 10`

	var out []ProblemQuestion
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("could not list problem questions: %w", err)
	}
	return out, nil
}
