package question

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(store *fakeStore) *http.ServeMux {
	h := NewHTTPHandlers(newTestService(store, nil, nil, firstSource{}), zerolog.Nop())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /categories", h.ListCategories)
	mux.HandleFunc("GET /categories/{id}/questions", h.ListCategoryQuestions)
	mux.HandleFunc("GET /questions", h.ListQuestions)
	mux.HandleFunc("POST /questions", h.CreateQuestion)
	mux.HandleFunc("POST /questions/search", h.SearchQuestions)
	mux.HandleFunc("DELETE /questions/{id}", h.DeleteQuestion)
	mux.HandleFunc("POST /quizzes", h.PlayQuiz)
	return mux
}

func do(t *testing.T, mux http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestHTTPListCategories(t *testing.T) {
	rec, body := do(t, newTestMux(seededStore()), http.MethodGet, "/categories", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]interface{}{"1": "Science", "2": "Art", "3": "Geography"}, body["categories"])
}

func TestHTTPListQuestions(t *testing.T) {
	mux := newTestMux(seededStore())

	rec, body := do(t, mux, http.MethodGet, "/questions", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["questions"], 6)
	assert.Equal(t, float64(6), body["total_questions"])
	assert.Nil(t, body["current_category"])

	rec, body = do(t, mux, http.MethodGet, "/questions?page=abc&category_id=2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["questions"], 2)
	assert.Equal(t, "Art", body["current_category"])

	rec, body = do(t, mux, http.MethodGet, "/questions?page=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, body["questions"])

	rec, body = do(t, mux, http.MethodGet, "/questions?category_id=1000", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(404), body["error"])
	assert.Equal(t, MsgResourceNotFound, body["message"])
}

func TestHTTPListCategoryQuestions(t *testing.T) {
	mux := newTestMux(seededStore())

	rec, body := do(t, mux, http.MethodGet, "/categories/1/questions", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), body["total_questions"])
	assert.Equal(t, "Science", body["current_category"])

	rec, _ = do(t, mux, http.MethodGet, "/categories/1000/questions", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, mux, http.MethodGet, "/categories/abc/questions", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPCreateQuestion(t *testing.T) {
	store := newFakeStore()
	mux := newTestMux(store)

	rec, body := do(t, mux, http.MethodPost, "/questions", `{"question":"Q?","answer":"A.","category":"1","difficulty":3}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["created"])
	require.Len(t, store.questions, 1)
	assert.Equal(t, int32(1), store.questions[0].Category)
	assert.Equal(t, int32(3), store.questions[0].Difficulty)
}

func TestHTTPCreateQuestionValidation(t *testing.T) {
	mux := newTestMux(newFakeStore())

	for _, payload := range []string{
		`{"question":"","answer":"A.","category":1,"difficulty":3}`,
		`{"question":"Q?","answer":"A.","category":1,"difficulty":0}`,
		`{"question":"Q?","answer":"A.","category":null,"difficulty":3}`,
		`{}`,
		``,
	} {
		rec, body := do(t, mux, http.MethodPost, "/questions", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
		assert.Equal(t, float64(400), body["error"])
		assert.Equal(t, MsgQuestionFieldsRequired, body["message"])
	}
}

func TestHTTPMalformedJSON(t *testing.T) {
	mux := newTestMux(newFakeStore())

	for _, payload := range []string{`{"question":`, `{"category":"abc"}`, `[1,2]`} {
		rec, body := do(t, mux, http.MethodPost, "/questions", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
		assert.Equal(t, "invalid_payload", body["code"])
	}
}

func TestHTTPSearchQuestions(t *testing.T) {
	mux := newTestMux(seededStore())

	rec, body := do(t, mux, http.MethodPost, "/questions/search", `{"searchTerm":"WHAT"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), body["total_questions"])
	assert.Contains(t, body, "current_category")
	assert.Nil(t, body["current_category"])

	rec, body = do(t, mux, http.MethodPost, "/questions/search", `{"searchTerm":"zzzznotfound"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, body["questions"])

	rec, body = do(t, mux, http.MethodPost, "/questions/search", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgSearchTermRequired, body["message"])
	assert.Equal(t, "searchTerm", body["field"])
}

func TestHTTPDeleteQuestion(t *testing.T) {
	mux := newTestMux(seededStore())

	rec, body := do(t, mux, http.MethodDelete, "/questions/2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["deleted"])

	rec, body = do(t, mux, http.MethodDelete, "/questions/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgResourceNotFound, body["message"])

	rec, _ = do(t, mux, http.MethodDelete, "/questions/abc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPPlayQuiz(t *testing.T) {
	mux := newTestMux(seededStore())

	rec, body := do(t, mux, http.MethodPost, "/quizzes", `{"previous_questions":[1,2],"quiz_category":{"id":"1","type":"Science"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	question, ok := body["question"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), question["id"])

	rec, body = do(t, mux, http.MethodPost, "/quizzes", `{"previous_questions":[1,2,3],"quiz_category":{"id":1}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "question")
	assert.Nil(t, body["question"])

	rec, body = do(t, mux, http.MethodPost, "/quizzes", `{"quiz_category":{"type":"click"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, body["question"])

	rec, body = do(t, mux, http.MethodPost, "/quizzes", `{"previous_questions":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgQuizCategoryRequired, body["message"])
}

func TestHTTPStoreFailureIs500(t *testing.T) {
	store := seededStore()
	store.fail(errStoreDown)
	mux := newTestMux(store)

	rec, body := do(t, mux, http.MethodGet, "/questions", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", body["message"])
	assert.NotContains(t, rec.Body.String(), errStoreDown.Error())
}
