package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persona-labs/persona-service/analytics"
	"github.com/persona-labs/persona-service/conversation"
	"github.com/persona-labs/persona-service/engine"
	"github.com/persona-labs/persona-service/health"
	"github.com/persona-labs/persona-service/llm"
	"github.com/persona-labs/persona-service/persona"
	"github.com/persona-labs/persona-service/settings"
	"github.com/persona-labs/persona-service/spintax"
	"github.com/persona-labs/persona-service/storage"
	"github.com/persona-labs/persona-service/trained"
)

// downGenerator simulates an unreachable generator, pushing every
// unmatched message to the canned pools.
type downGenerator struct{}

func (downGenerator) Attempt(context.Context, string, llm.PersonaPrompt) (string, error) {
	return "", llm.ErrUnavailable
}

type testEnv struct {
	server  *Server
	mux     http.Handler
	trained *trained.Store
	stats   *analytics.Store
	ledger  *conversation.Ledger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := log.New(io.Discard)

	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	profiles, err := persona.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, profiles.Save("emma", &persona.Profile{
		Name:            "Emma",
		Age:             24,
		Language:        "en",
		MessageCount:    10,
		FinalMessage:    "Bye! Find me on the site",
		SemiMessage:     "Almost done, find me on the site",
		LearningEnabled: true,
		UseEmoji:        true,
	}))

	ledger := conversation.NewLedger()
	trainedStore := trained.NewStore(db)
	statsStore := analytics.NewStore(db, nil)
	sink := analytics.NewSink(statsStore, nil, 1, 16, logger)
	t.Cleanup(sink.Close)

	resolver := engine.NewResolver(
		profiles, ledger, trainedStore, downGenerator{},
		spintax.New(rand.NewSource(1)), rand.NewSource(2), logger,
	)

	srv := NewServer(
		resolver, profiles, trainedStore, statsStore, sink,
		settings.NewStore(nil), health.NewChecker(db, nil), ledger, logger,
	)
	return &testEnv{
		server:  srv,
		mux:     srv.Router(),
		trained: trainedStore,
		stats:   statsStore,
		ledger:  ledger,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestChatResolvesAndCountsTurns(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/chat", chatRequest{
		UserID: "u1", Model: "emma", Message: "hello there",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res chatResponse
	decode(t, rec, &res)
	assert.Equal(t, 1, res.Turn)
	assert.NotEmpty(t, res.Response)
	assert.Equal(t, "default", res.Source)

	rec = env.do(t, http.MethodPost, "/api/chat", chatRequest{
		UserID: "u1", Model: "emma", Message: "and again",
	})
	decode(t, rec, &res)
	assert.Equal(t, 2, res.Turn)
}

func TestChatUnknownModelIs404(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/chat", chatRequest{
		UserID: "u1", Model: "ghost", Message: "hi",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/chat", chatRequest{Model: "emma", Message: "hi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/chat", chatRequest{UserID: "u1", Model: "emma"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTestEndpointLeavesLedgerAlone(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/test", testRequest{Model: "emma", Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	var res chatResponse
	decode(t, rec, &res)
	assert.Equal(t, 1, res.Turn)
	assert.Equal(t, 0, env.ledger.Active())
}

func TestRateHighRatingAutoTrains(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/rate", rateRequest{
		UserID: "u1", Model: "emma",
		Message: "what is your favorite color", Response: "Pink, obviously!",
		Rating: 9,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Trained bool `json:"trained"`
	}
	decode(t, rec, &res)
	assert.True(t, res.Trained)

	answer, kind, err := env.trained.Lookup(context.Background(), "what is your favorite color", "emma")
	require.NoError(t, err)
	assert.Equal(t, trained.MatchExact, kind)
	assert.Equal(t, "Pink, obviously!", answer)
}

func TestRateLearningDisabledRecordsButNeverTrains(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.server.profiles.Save("lena", &persona.Profile{
		Name: "Lena", Age: 22, Language: "ru",
		MessageCount: 5, FinalMessage: "Пока! Ищи меня на сайте",
		LearningEnabled: false,
	}))

	rec := env.do(t, http.MethodPost, "/api/rate", rateRequest{
		UserID: "u1", Model: "lena",
		Message: "как дела", Response: "Отлично, а у тебя?",
		Rating: 9,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Trained bool `json:"trained"`
	}
	decode(t, rec, &res)
	assert.False(t, res.Trained)

	_, _, err := env.trained.Lookup(context.Background(), "как дела", "lena")
	assert.ErrorIs(t, err, trained.ErrNoMatch, "learning-disabled persona must never gain trained records")

	st, err := env.stats.ForPersona(context.Background(), "lena")
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalRatings, "the rating itself is still recorded")
}

func TestRateLowRatingDoesNotTrain(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/rate", rateRequest{
		UserID: "u1", Model: "emma", Message: "hm", Response: "meh", Rating: 3,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	_, _, err := env.trained.Lookup(context.Background(), "hm", "emma")
	assert.ErrorIs(t, err, trained.ErrNoMatch)
}

func TestRateRejectsOutOfBandRating(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/rate", rateRequest{
		UserID: "u1", Model: "emma", Message: "hi", Rating: 42,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrainEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/train", trainRequest{
		Model: "emma", Question: "How are you?", Answer: "{Great|Fine}! 😊",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Count int `json:"trained_responses"`
	}
	decode(t, rec, &res)
	assert.Equal(t, 1, res.Count)
}

func TestTrainFileEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "pairs.txt")
	require.NoError(t, err)
	_, err = io.WriteString(part, strings.Join([]string{
		"how are you - Great, you?",
		"# a comment",
		"where are you from | Miami!",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/train-file?model=emma", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Imported int `json:"imported"`
	}
	decode(t, rec, &res)
	assert.Equal(t, 2, res.Imported)
}

func TestTrainFileRequiresModel(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/train-file", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModelRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	p := persona.Profile{
		Name: "Lena", Age: 22, Language: "ru",
		MessageCount: 5, FinalMessage: "Пока! Ищи меня на сайте",
	}
	rec := env.do(t, http.MethodPost, "/api/model/lena", p)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/model/lena", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got persona.Profile
	decode(t, rec, &got)
	assert.Equal(t, "Lena", got.Name)
	assert.Equal(t, "ru", got.Language)

	rec = env.do(t, http.MethodGet, "/api/models", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Models []persona.Summary `json:"models"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Models, 2)
	assert.Equal(t, "emma", list.Models[0].ID)
	assert.Equal(t, "lena", list.Models[1].ID)
}

func TestSaveModelRejectsInvalidProfile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/model/broken", persona.Profile{Language: "fr"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatisticsAndPurge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.stats.InsertConversation(ctx, analytics.Activity{
		ID: "c1", UserID: "u1", Persona: "emma", Message: "hi", Response: "hey", Turn: 1,
	}))
	require.NoError(t, env.trained.Train(ctx, "emma", "how are you", "Great!", 5, trained.OriginManual))

	rec := env.do(t, http.MethodGet, "/api/statistics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var overview analytics.Overview
	decode(t, rec, &overview)
	assert.Equal(t, 1, overview.TotalConversations)

	rec = env.do(t, http.MethodGet, "/api/statistics/emma", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats analytics.PersonaStats
	decode(t, rec, &stats)
	assert.Equal(t, 1, stats.TotalConversations)
	assert.Equal(t, 1, stats.TrainedResponses)

	rec = env.do(t, http.MethodDelete, "/api/statistics/emma", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/statistics/emma", nil)
	decode(t, rec, &stats)
	assert.Zero(t, stats.TotalConversations)
	assert.Equal(t, 1, stats.TrainedResponses, "purge must preserve trained data")
}

func TestStatisticsUnknownModelIs404(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/statistics/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingsDefaultsWithoutRedis(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc settings.Document
	decode(t, rec, &doc)
	assert.True(t, doc.AutoSave)
	assert.Empty(t, doc.DefaultModel)

	rec = env.do(t, http.MethodPost, "/api/settings", settings.Document{AutoSave: false})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthReportsDegradedWithoutRedis(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Status       string `json:"status"`
		ModelsLoaded int    `json:"models_loaded"`
	}
	decode(t, rec, &res)
	assert.Equal(t, "degraded", res.Status)
	assert.GreaterOrEqual(t, res.ModelsLoaded, 1)
}

func TestRootEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res map[string]string
	decode(t, rec, &res)
	assert.Equal(t, "running", res["status"])
}
