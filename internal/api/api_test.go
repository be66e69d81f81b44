package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/service"
	"github.com/lectio/lectio/internal/testutil"
)

const quizJSON = `{"questions":[{"question":"What is X?","options":["a","b","c","d"],"correctIndex":2,"explanation":"e"}],"notes":["note"]}`

const pageJSON = `{"outline":"o","keyPoints":["k"],"studyQuestion":"q"}`

// testEnv builds temp stores, the service and the router.
// authToken == "" means auth disabled.
func testEnv(t *testing.T, client *testutil.ScriptedClient, authToken string) http.Handler {
	t.Helper()
	stores := testutil.NewStores(t)
	svc := service.New(service.Deps{
		Notes:   stores.Notes,
		Quizzes: stores.Quizzes,
		Uploads: stores.Uploads,
		Client:  client,
	})
	return NewRouter(svc, authToken != "", authToken, nil)
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// uploadDeck posts a one-slide pptx through the API and returns the
// file id.
func uploadDeck(t *testing.T, router http.Handler, slideText string) string {
	t.Helper()
	deck, err := os.ReadFile(testutil.WritePPTX(t, slideText))
	if err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "deck.pptx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.Copy(fw, bytes.NewReader(deck)); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.FileID
}

func longSource() string {
	return strings.Repeat("The lecture covers graph algorithms in detail. ", 5)
}

func TestGenerateQuiz(t *testing.T) {
	client := testutil.NewScriptedClient(quizJSON)
	router := testEnv(t, client, "")

	w := postJSON(t, router, "/generate-quiz", map[string]any{"sourceText": longSource()})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var q models.Quiz
	if err := json.Unmarshal(w.Body.Bytes(), &q); err != nil {
		t.Fatal(err)
	}
	// The default question count lands in the prompt; the record
	// states how many questions the reply actually yielded.
	if prompts := client.Prompts(); len(prompts) != 1 || !strings.Contains(prompts[0], "5 questions total") {
		t.Errorf("prompts = %q, want default question count requested", prompts)
	}
	if q.NumQuestions != 1 {
		t.Errorf("numQuestions = %d, want stored question count", q.NumQuestions)
	}
	if q.Difficulty != "normal" {
		t.Errorf("default difficulty = %q", q.Difficulty)
	}
	if len(q.Questions) != 1 || q.Questions[0].CorrectIndex != 2 {
		t.Errorf("questions = %+v", q.Questions)
	}
}

func TestGenerateQuiz_Validation(t *testing.T) {
	router := testEnv(t, testutil.NewScriptedClient(quizJSON), "")

	cases := []map[string]any{
		{"sourceText": "short"},
		{"sourceText": longSource(), "numQuestions": 21},
		{"sourceText": longSource(), "numQuestions": -1},
		{"sourceText": longSource(), "difficulty": strings.Repeat("x", 33)},
		{},
	}
	for _, body := range cases {
		if w := postJSON(t, router, "/generate-quiz", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %v: status = %d, want 400", body, w.Code)
		}
	}
}

func TestGenerateQuiz_InvalidJSON(t *testing.T) {
	router := testEnv(t, testutil.NewScriptedClient(quizJSON), "")

	req := httptest.NewRequest(http.MethodPost, "/generate-quiz", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGenerateQuiz_BadModelResponse(t *testing.T) {
	router := testEnv(t, testutil.NewScriptedClient(`{"questions":[]}`), "")

	w := postJSON(t, router, "/generate-quiz", map[string]any{"sourceText": longSource()})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502, body = %s", w.Code, w.Body.String())
	}
}

func TestUploadAndQuizFromFile(t *testing.T) {
	router := testEnv(t, testutil.NewScriptedClient(quizJSON), "")
	fileID := uploadDeck(t, router, longSource())

	w := postJSON(t, router, "/generate-quiz-from-file", map[string]any{"fileId": fileID, "numQuestions": 3})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var q models.Quiz
	if err := json.Unmarshal(w.Body.Bytes(), &q); err != nil {
		t.Fatal(err)
	}
	if q.SourceType != models.QuizSourceFile || q.Reference.FileID != fileID {
		t.Errorf("quiz = %+v", q)
	}
}

func TestUpload_RejectsUnsupportedType(t *testing.T) {
	router := testEnv(t, testutil.NewScriptedClient(quizJSON), "")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "notes.txt")
	fw.Write([]byte("plain text"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGenerateAndGetLearningNote(t *testing.T) {
	client := testutil.NewScriptedClient(pageJSON, "### Pages 1-1\n- point (p1)")
	router := testEnv(t, client, "")
	fileID := uploadDeck(t, router, "lecture slide content")

	w := postJSON(t, router, "/generate-learning-note", map[string]any{"fileId": fileID, "windowSize": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d, body = %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/learning-note/"+fileID, nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("get status = %d", w2.Code)
	}
	var note models.LearningNote
	if err := json.Unmarshal(w2.Body.Bytes(), &note); err != nil {
		t.Fatal(err)
	}
	if note.FileID != fileID || !strings.Contains(note.Markdown, "### Pages 1-1") {
		t.Errorf("note = %+v", note)
	}
}

func TestGenerateLearningNote_Validation(t *testing.T) {
	router := testEnv(t, testutil.NewScriptedClient(pageJSON), "")

	cases := []map[string]any{
		{"fileId": "short"},
		{"fileId": "12345678.pptx", "windowSize": 8},
		{"fileId": "12345678.pptx", "windowSize": -1},
		{},
	}
	for _, body := range cases {
		if w := postJSON(t, router, "/generate-learning-note", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %v: status = %d, want 400", body, w.Code)
		}
	}
}

func TestGetLearningNote_NotFound(t *testing.T) {
	router := testEnv(t, testutil.NewScriptedClient(pageJSON), "")

	req := httptest.NewRequest(http.MethodGet, "/learning-note/17000_cafebabe.pdf", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestQuizListingAndFetch(t *testing.T) {
	router := testEnv(t, testutil.NewScriptedClient(quizJSON), "")
	for i := 0; i < 3; i++ {
		if w := postJSON(t, router, "/generate-quiz", map[string]any{"sourceText": longSource()}); w.Code != http.StatusCreated {
			t.Fatalf("seed quiz %d: status = %d", i, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/quizzes?limit=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list QuizListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 3 || len(list.Quizzes) != 2 {
		t.Fatalf("total = %d, len = %d", list.Total, len(list.Quizzes))
	}

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/quizzes/%d", list.Quizzes[0].ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/quizzes/999999", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing quiz status = %d, want 404", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/quizzes/abc", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := testEnv(t, testutil.NewScriptedClient(quizJSON), "secret")

	req := httptest.NewRequest(http.MethodGet, "/quizzes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/quizzes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/quizzes", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := testEnv(t, testutil.NewScriptedClient(quizJSON), "")

	req := httptest.NewRequest(http.MethodOptions, "/generate-quiz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}
