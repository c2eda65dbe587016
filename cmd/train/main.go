package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/agenthands/triage/internal/config"
	"github.com/agenthands/triage/internal/core/classifier"
	"github.com/agenthands/triage/internal/core/graph"
	"github.com/agenthands/triage/internal/driver"
)

// Offline bootstrap: trains the classifier from the training CSV, persists
// the model artifact, and optionally exports the symptom graph to Memgraph.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

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
	log.Printf("Loaded %d training rows from %s", len(rows), cfg.Data.TrainingCSV)

	m, err := classifier.Train(rows)
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}
	log.Printf("Trained on %d symptoms across %d diseases (calibrated=%v)",
		len(m.Vocabulary), len(m.Classes), m.Calibrated)

	if err := m.Save(cfg.Data.ModelPath); err != nil {
		log.Fatalf("Failed to save model to %s: %v", cfg.Data.ModelPath, err)
	}
	log.Printf("Model saved to %s", cfg.Data.ModelPath)

	if !cfg.Memgraph.Enabled {
		return
	}

	g := graph.Build(rows, cfg.Hierarchy)
	g.EnsureNodes(m.Vocabulary)

	d, err := driver.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
	if err != nil {
		log.Fatalf("Failed to connect to Memgraph: %v", err)
	}
	defer d.Close(context.Background())

	if err := driver.ExportGraph(context.Background(), d, g); err != nil {
		log.Fatalf("Graph export failed: %v", err)
	}
	log.Printf("Exported %d symptom nodes to Memgraph", g.Len())
}
