package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/triage/internal/config"
	"github.com/agenthands/triage/internal/core"
	"github.com/agenthands/triage/internal/core/classifier"
	"github.com/agenthands/triage/internal/core/model"
	"github.com/agenthands/triage/internal/driver"
	"github.com/agenthands/triage/internal/llm"
)

type Server struct {
	Engine *core.Engine
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Could not load %s: %v. Using built-in defaults", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	rows, err := classifier.LoadTrainingCSV(cfg.Data.TrainingCSV)
	if err != nil {
		log.Fatalf("Failed to load training data: %v", err)
	}

	advisory, err := llm.NewClient(context.Background(), cfg.Advisory)
	if err != nil {
		log.Fatalf("Failed to initialize advisory client: %v", err)
	}
	if advisory == nil {
		log.Println("No advisory provider configured, running statistical-only")
	}

	engine, err := core.NewEngine(cfg, rows, advisory)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	if cfg.Memgraph.Enabled {
		d, err := driver.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			log.Printf("Memgraph export skipped: %v", err)
		} else {
			if err := driver.ExportGraph(context.Background(), d, engine.Graph); err != nil {
				log.Printf("Memgraph export failed: %v", err)
			}
			if err := d.Close(context.Background()); err != nil {
				log.Printf("Failed to close Memgraph driver: %v", err)
			}
		}
	}

	return &Server{Engine: engine}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/interviews", s.StartInterview)
	r.POST("/interviews/:id/answer", s.Answer)
	r.POST("/diagnose", s.Diagnose)
	r.GET("/symptoms", s.Symptoms)

	return r
}

type StartInterviewRequest struct {
	Symptoms []string `json:"symptoms"`
}

func (s *Server) StartInterview(c *gin.Context) {
	var req StartInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	sessionID := uuid.New().String()
	question, err := s.Engine.StartInterview(sessionID, req.Symptoms)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"question":   question,
	})
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) Answer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	sessionID := c.Param("id")
	question, err := s.Engine.AnswerAndAdvance(c.Request.Context(), sessionID, req.Answer)
	if err != nil {
		writeError(c, err)
		return
	}

	if question.Terminal {
		s.Engine.EndInterview(sessionID)
	}

	c.JSON(http.StatusOK, gin.H{"question": question})
}

type DiagnoseRequest struct {
	Symptoms   []string `json:"symptoms"`
	Background string   `json:"background"`
}

func (s *Server) Diagnose(c *gin.Context) {
	var req DiagnoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	report, err := s.Engine.Diagnose(c.Request.Context(), req.Symptoms, req.Background)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) Symptoms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"symptoms": s.Engine.SymptomVocabulary()})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, model.ErrInsufficientSymptoms):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no recognizable symptoms provided"})
	default:
		log.Printf("Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
