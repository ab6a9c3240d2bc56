package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewpaige1/engcard-api/cloudsync"
	"github.com/andrewpaige1/engcard-api/config"
	"github.com/andrewpaige1/engcard-api/models"
	"github.com/andrewpaige1/engcard-api/quiz"
	"github.com/andrewpaige1/engcard-api/store"
)

type testAPI struct {
	mux   *http.ServeMux
	cards *store.CardStore
}

func newTestAPI(t *testing.T, gistURL, token string) *testAPI {
	t.Helper()
	db, err := config.Connect(&config.Environment{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cards := store.NewCardStore(db)
	h := &Handler{
		Cards:    cards,
		Quiz:     quiz.NewEngine(cards, quiz.EngineConfig{Seed: 1}),
		Sessions: quiz.NewRegistry(),
		Sync:     cloudsync.NewService(cards, cloudsync.NewGistClient(gistURL, token, nil), ""),
	}
	mux := http.NewServeMux()
	h.Routes(mux)
	return &testAPI{mux: mux, cards: cards}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *testAPI) addCard(t *testing.T, jp, en, genre, memo string) models.Card {
	t.Helper()
	body, _ := json.Marshal(cardRequest{Japanese: jp, English: en, Genre: genre, Memo: memo})
	rec := a.do(t, http.MethodPost, "/api/cards", string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Card](t, rec)
}

func TestCardLifecycle(t *testing.T) {
	api := newTestAPI(t, "", "")

	card := api.addCard(t, "猫", "A cat.", "動物", "")
	assert.NotEmpty(t, card.ID)
	assert.False(t, card.Favorite)

	rec := api.do(t, http.MethodGet, "/api/cards/"+card.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/cards/"+card.ID, `{"japanese":"猫","english":"The cat.","genre":"動物, 日常","memo":"m"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "The cat.", decode[models.Card](t, rec).English)

	rec = api.do(t, http.MethodPost, "/api/cards/"+card.ID+"/favorite", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Card](t, rec).Favorite)

	rec = api.do(t, http.MethodGet, "/api/cards/favorites", "")
	assert.Len(t, decode[[]models.Card](t, rec), 1)

	rec = api.do(t, http.MethodGet, "/api/cards?genre="+url.QueryEscape("日常"), "")
	assert.Len(t, decode[[]models.Card](t, rec), 1)

	rec = api.do(t, http.MethodDelete, "/api/cards/"+card.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(t, http.MethodDelete, "/api/cards/"+card.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code, "delete is idempotent")

	rec = api.do(t, http.MethodGet, "/api/cards/"+card.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/cards", "")
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestCardErrors(t *testing.T) {
	api := newTestAPI(t, "", "")

	rec := api.do(t, http.MethodPost, "/api/cards", `{"japanese":"猫","english":"","genre":"動物"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/cards", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/cards/missing", `{"japanese":"a","english":"b","genre":"c"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/cards/missing/favorite", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenres(t *testing.T) {
	api := newTestAPI(t, "", "")
	api.addCard(t, "あ", "A.", "日常, 旅行", "")
	api.addCard(t, "い", "B.", "日常", "")

	rec := api.do(t, http.MethodGet, "/api/genres", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[genresResponse](t, rec)
	assert.Equal(t, []string{"旅行", "日常"}, resp.Genres)
	assert.Equal(t, []store.GenreCount{{Label: "旅行", Count: 1}, {Label: "日常", Count: 2}}, resp.Counts)
	assert.Zero(t, resp.Favorites)
	assert.Empty(t, resp.FavoritesGenre)
}

func TestExportImport(t *testing.T) {
	api := newTestAPI(t, "", "")
	api.addCard(t, "猫", "A cat.", "動物", "")

	rec := api.do(t, http.MethodGet, "/api/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "flashcards_export.json")
	exported := rec.Body.String()

	rec = api.do(t, http.MethodPost, "/api/import", exported)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"imported":1}`, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/import", `{"not":"an array"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMissedAndReset(t *testing.T) {
	api := newTestAPI(t, "", "")
	api.addCard(t, "猫", "A cat.", "動物", "")

	rec := api.do(t, http.MethodPost, "/api/quiz/sessions", `{"genre":"動物"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[quiz.View](t, rec).SessionID

	rec = api.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/wrong", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/cards/missed", "")
	missed := decode[[]models.Card](t, rec)
	require.Len(t, missed, 1)
	assert.Equal(t, 1, missed[0].WrongCount)

	rec = api.do(t, http.MethodPost, "/api/cards/missed/reset", "")
	assert.JSONEq(t, `{"reset":1}`, rec.Body.String())
}

func TestQuizFlow(t *testing.T) {
	api := newTestAPI(t, "", "")
	api.addCard(t, "おはよう", "Good morning to you.", "日常", "朝の挨拶")
	api.addCard(t, "またね", "See you again soon.", "日常", "")

	rec := api.do(t, http.MethodPost, "/api/quiz/sessions", `{"genre":"日常"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decode[quiz.View](t, rec)
	assert.Equal(t, 1, view.Number)
	assert.Empty(t, view.English)
	id := view.SessionID

	rec = api.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/reveal/cloze", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[quiz.View](t, rec).Cloze, `<span class="blank">`)

	rec = api.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/reveal/answer", "")
	view = decode[quiz.View](t, rec)
	assert.NotEmpty(t, view.English)
	assert.Equal(t, view.English, view.SpeechText)

	rec = api.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/reveal/everything", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/correct", "")
	require.Equal(t, http.StatusOK, rec.Code)
	mark := decode[markResponse](t, rec)
	assert.True(t, mark.Applied)
	assert.Equal(t, 2, mark.Number)

	rec = api.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/wrong", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/next", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[quiz.View](t, rec).Number, "a skip keeps the question number")

	rec = api.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/end", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[endResponse](t, rec)
	assert.Equal(t, 2, res.Answered)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 1, res.Wrong)
	assert.Equal(t, 50, res.Accuracy)
	assert.Equal(t, quiz.TierMid, res.Tier)
	require.Len(t, res.WrongCards, 1)
	assert.Equal(t, res.WrongCards[0].Japanese+"\n"+res.WrongCards[0].English, res.WrongCardsText)

	rec = api.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/restart", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	next := decode[quiz.View](t, rec)
	assert.NotEqual(t, id, next.SessionID)
	assert.Equal(t, 1, next.Number)

	rec = api.do(t, http.MethodGet, "/api/quiz/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "restart discards the old session")

	rec = api.do(t, http.MethodDelete, "/api/quiz/sessions/"+next.SessionID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(t, http.MethodGet, "/api/quiz/sessions/"+next.SessionID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuizEmptyPool(t *testing.T) {
	api := newTestAPI(t, "", "")
	api.addCard(t, "猫", "A cat.", "動物", "")

	rec := api.do(t, http.MethodPost, "/api/quiz/sessions", `{"genre":"日常"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/quiz/sessions", `{"genre":"`+quiz.FavoritesGenre+`"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRestartOnEmptyGenreDropsSession(t *testing.T) {
	api := newTestAPI(t, "", "")
	card := api.addCard(t, "猫", "A cat.", "動物", "")

	rec := api.do(t, http.MethodPost, "/api/quiz/sessions", `{"genre":"動物"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[quiz.View](t, rec).SessionID

	rec = api.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/end", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodDelete, "/api/cards/"+card.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/quiz/sessions/"+id+"/restart", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/quiz/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditRefreshesLiveSession(t *testing.T) {
	api := newTestAPI(t, "", "")
	card := api.addCard(t, "猫", "A cat.", "動物", "")

	rec := api.do(t, http.MethodPost, "/api/quiz/sessions", `{"genre":"動物"}`)
	id := decode[quiz.View](t, rec).SessionID

	rec = api.do(t, http.MethodPut, "/api/cards/"+card.ID, `{"japanese":"猫が寝る","english":"A cat sleeps.","genre":"動物"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/quiz/sessions/"+id, "")
	view := decode[quiz.View](t, rec)
	assert.Equal(t, "猫が寝る", view.Japanese)
	assert.Equal(t, "A cat sleeps.", view.SpeechText)
}

func TestSyncNotConfigured(t *testing.T) {
	api := newTestAPI(t, "http://127.0.0.1:1", "")

	rec := api.do(t, http.MethodPost, "/api/sync/upload", `{"passphrase":"pw"}`)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/sync/download", `{"passphrase":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncRoundTrip(t *testing.T) {
	var mu sync.Mutex
	var stored []byte
	gists := http.NewServeMux()
	gists.HandleFunc("POST /gists", func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)
		mu.Lock()
		stored = body.Bytes()
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"g1"}`))
	})
	gists.HandleFunc("GET /gists/g1", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		w.Write(stored)
	})
	srv := httptest.NewServer(gists)
	t.Cleanup(srv.Close)

	api := newTestAPI(t, srv.URL, "tok")
	api.addCard(t, "猫", "A cat.", "動物", "")

	rec := api.do(t, http.MethodPost, "/api/sync/upload", `{"passphrase":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[cloudsync.UploadResult](t, rec)
	assert.Equal(t, "g1", res.GistID)
	assert.True(t, res.Created)
	assert.Equal(t, 1, res.Cards)

	rec = api.do(t, http.MethodPost, "/api/sync/download", `{"passphrase":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/sync/download", `{"passphrase":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"imported":1}`, rec.Body.String())
}
