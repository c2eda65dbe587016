package classifier

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/agenthands/triage/internal/core/model"
	"github.com/agenthands/triage/internal/core/vocab"
)

// LoadTrainingCSV reads the disease/symptom corpus: first column is the
// disease label, the remaining columns are positional symptom slots
// (Symptom_1..Symptom_N), sparse and variable length per row. Symptom values
// are free text and get normalized on read.
func LoadTrainingCSV(path string) ([]model.TrainingRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open training data '%s': %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse training data: %w", err)
	}

	var rows []model.TrainingRow
	for i, record := range records {
		if len(record) == 0 {
			continue
		}
		label := strings.TrimSpace(record[0])
		if i == 0 && isHeader(label) {
			continue
		}
		if label == "" {
			continue
		}

		var symptoms []string
		for _, cell := range record[1:] {
			if s := vocab.Normalize(cell); s != "" {
				symptoms = append(symptoms, s)
			}
		}
		if len(symptoms) == 0 {
			continue
		}
		rows = append(rows, model.TrainingRow{Disease: label, Symptoms: symptoms})
	}
	return rows, nil
}

func isHeader(firstCell string) bool {
	switch strings.ToLower(firstCell) {
	case "disease", "prognosis", "label":
		return true
	}
	return false
}
