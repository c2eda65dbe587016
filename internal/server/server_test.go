package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/triage/internal/config"
	"github.com/agenthands/triage/internal/core"
	"github.com/agenthands/triage/internal/core/model"
)

func testRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Data.ModelPath = filepath.Join(t.TempDir(), "model.json")

	rows := []model.TrainingRow{
		{Disease: "flu", Symptoms: []string{"fever", "cough", "fatigue"}},
		{Disease: "flu", Symptoms: []string{"fever", "cough", "fatigue"}},
		{Disease: "flu", Symptoms: []string{"fever", "cough", "fatigue"}},
		{Disease: "migraine", Symptoms: []string{"headache", "nausea", "light_sensitivity"}},
		{Disease: "migraine", Symptoms: []string{"headache", "nausea", "light_sensitivity"}},
		{Disease: "migraine", Symptoms: []string{"headache", "nausea", "light_sensitivity"}},
	}

	engine, err := core.NewEngine(cfg, rows, nil)
	require.NoError(t, err)

	return (&Server{Engine: engine}).SetupRouter()
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStartInterview_ReturnsSessionAndQuestion(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, "POST", "/interviews", StartInterviewRequest{Symptoms: []string{"fever"}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SessionID string         `json:"session_id"`
		Question  model.Question `json:"question"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.False(t, resp.Question.Terminal)
	assert.NotEqual(t, "fever", resp.Question.Symptom)
}

func TestAnswer_UnknownSessionIs404(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, "POST", "/interviews/ghost/answer", AnswerRequest{Answer: "yes"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnswer_FullLoopEndsTerminal(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, "POST", "/interviews", StartInterviewRequest{Symptoms: []string{"fever"}})
	require.Equal(t, http.StatusOK, w.Code)

	var start struct {
		SessionID string         `json:"session_id"`
		Question  model.Question `json:"question"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &start))

	q := start.Question
	for turns := 0; !q.Terminal; turns++ {
		require.LessOrEqual(t, turns, 25, "interview did not terminate")
		w = doJSON(t, r, "POST", "/interviews/"+start.SessionID+"/answer", AnswerRequest{Answer: "yes"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Question model.Question `json:"question"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		q = resp.Question
	}

	assert.NotEmpty(t, q.Results)

	// Terminal answers drop the session.
	w = doJSON(t, r, "POST", "/interviews/"+start.SessionID+"/answer", AnswerRequest{Answer: "yes"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDiagnose_NoUsableSymptomsIs422(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, "POST", "/diagnose", DiagnoseRequest{Symptoms: []string{" "}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDiagnose_ReturnsReport(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, "POST", "/diagnose", DiagnoseRequest{Symptoms: []string{"fever", "cough"}})
	require.Equal(t, http.StatusOK, w.Code)

	var report model.DiagnosisReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.NotEmpty(t, report.Results)
	assert.NotEmpty(t, report.Disclaimer)
	assert.False(t, report.AdvisoryAvailable)
}

func TestSymptoms_ListsVocabulary(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, "GET", "/symptoms", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Symptoms []string `json:"symptoms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Symptoms, "fever")
	assert.Contains(t, resp.Symptoms, "headache")
}
