package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/agenthands/triage/internal/core/model"
	"github.com/agenthands/triage/internal/core/vocab"
)

// confidenceFloor drops predictions below 1% from the returned ranking.
const confidenceFloor = 1.0

// Model is the persisted classifier artifact: the exact ordered feature
// vocabulary used at training time plus the fitted tree and, when the corpus
// allowed it, per-class isotonic calibrators.
type Model struct {
	Vocabulary  []string             `json:"vocabulary"`
	Classes     []string             `json:"classes"`
	Tree        *treeNode            `json:"tree"`
	Calibrators map[string]*Isotonic `json:"calibrators,omitempty"`
	Calibrated  bool                 `json:"calibrated"`
}

// Train fits the classifier on the corpus. Calibration folds follow the class
// sparsity ladder: every class with >=3 examples gets 3-fold isotonic
// calibration, a minimum class count of exactly 2 drops to 2-fold, and any
// singleton class skips calibration entirely (each fold must hold out at
// least one example of every class).
func Train(rows []model.TrainingRow) (*Model, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty training corpus", model.ErrModelUnavailable)
	}

	vocabulary, classes := collectVocabulary(rows)
	if len(vocabulary) == 0 {
		return nil, fmt.Errorf("%w: corpus has no symptoms", model.ErrModelUnavailable)
	}

	vectors, labels := vectorize(rows, vocabulary, classes)
	trainer := &treeTrainer{
		numClasses:   len(classes),
		numFeatures:  len(vocabulary),
		classWeights: balancedWeights(labels, len(classes)),
	}

	m := &Model{
		Vocabulary: vocabulary,
		Classes:    classes,
		Tree:       trainer.fit(vectors, labels),
	}

	folds := calibrationFolds(labels, len(classes))
	if folds > 1 {
		m.Calibrators = calibrate(vectors, labels, classes, folds)
		m.Calibrated = m.Calibrators != nil
	}
	return m, nil
}

// calibrationFolds applies the sparsity ladder: 3, 2, or 0 folds.
func calibrationFolds(labels []int, numClasses int) int {
	counts := make([]int, numClasses)
	for _, l := range labels {
		counts[l]++
	}
	min := counts[0]
	for _, c := range counts[1:] {
		if c < min {
			min = c
		}
	}
	switch {
	case min >= 3:
		return 3
	case min == 2:
		return 2
	default:
		return 0
	}
}

// calibrate fits per-class isotonic regressions on out-of-fold tree scores.
// Folds are stratified by dealing each class's rows round-robin, so every
// fold holds at least one example of every class.
func calibrate(vectors [][]uint8, labels []int, classes []string, folds int) map[string]*Isotonic {
	foldOf := make([]int, len(labels))
	perClass := make(map[int]int)
	for i, l := range labels {
		foldOf[i] = perClass[l] % folds
		perClass[l]++
	}

	scores := make([][]float64, len(labels)) // out-of-fold class distributions
	for f := 0; f < folds; f++ {
		var trainIdx []int
		for i := range labels {
			if foldOf[i] != f {
				trainIdx = append(trainIdx, i)
			}
		}
		trainer := &treeTrainer{
			numClasses:   len(classes),
			numFeatures:  len(vectors[0]),
			classWeights: balancedWeightsSubset(labels, trainIdx, len(classes)),
		}
		tree := trainer.grow(vectors, labels, trainIdx, 0)
		for i := range labels {
			if foldOf[i] == f {
				scores[i] = tree.predict(vectors[i])
			}
		}
	}

	calibrators := make(map[string]*Isotonic, len(classes))
	for c, name := range classes {
		x := make([]float64, len(labels))
		y := make([]float64, len(labels))
		for i := range labels {
			x[i] = scores[i][c]
			if labels[i] == c {
				y[i] = 1
			}
		}
		iso := fitIsotonic(x, y)
		if iso == nil {
			return nil
		}
		calibrators[name] = iso
	}
	return calibrators
}

// Classify maps a confirmed-symptom set to the top-3 disease probabilities.
// Unknown symptoms are ignored; if nothing maps to a known feature the caller
// gets ErrInsufficientSymptoms instead of a spurious prediction.
func (m *Model) Classify(symptoms []string) ([]model.Prediction, error) {
	vector := make([]uint8, len(m.Vocabulary))
	known := 0
	for _, s := range symptoms {
		n := vocab.Normalize(s)
		for i, v := range m.Vocabulary {
			if v == n {
				if vector[i] == 0 {
					vector[i] = 1
					known++
				}
				break
			}
		}
	}
	if known == 0 {
		return nil, model.ErrInsufficientSymptoms
	}

	raw := m.Tree.predict(vector)
	probs := make([]float64, len(raw))
	copy(probs, raw)

	if m.Calibrated {
		sum := 0.0
		for c, name := range m.Classes {
			probs[c] = m.Calibrators[name].Predict(raw[c])
			sum += probs[c]
		}
		if sum > 0 {
			for c := range probs {
				probs[c] /= sum
			}
		} else {
			copy(probs, raw)
		}
	}

	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if probs[order[i]] != probs[order[j]] {
			return probs[order[i]] > probs[order[j]]
		}
		return m.Classes[order[i]] < m.Classes[order[j]]
	})

	var out []model.Prediction
	for _, c := range order {
		if len(out) == 3 {
			break
		}
		confidence := probs[c] * 100
		if confidence < confidenceFloor {
			continue
		}
		out = append(out, model.Prediction{Disease: m.Classes[c], Confidence: confidence})
	}
	if len(out) == 0 {
		return nil, model.ErrInsufficientSymptoms
	}
	return out, nil
}

// Save persists the artifact as a JSON blob.
func (m *Model) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model artifact '%s': %w", path, err)
	}
	return nil
}

// LoadModel reads a persisted artifact, rejecting obviously truncated blobs.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact '%s': %w", path, err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}
	if len(m.Vocabulary) == 0 || len(m.Classes) == 0 || m.Tree == nil {
		return nil, fmt.Errorf("model artifact '%s' is malformed", path)
	}
	return &m, nil
}

// LoadOrTrain loads the cached artifact when present and valid, otherwise
// retrains from the corpus and persists the result. A failed persist is
// logged, not fatal: the in-memory model still serves.
func LoadOrTrain(path string, rows []model.TrainingRow) (*Model, error) {
	if m, err := LoadModel(path); err == nil {
		return m, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Printf("discarding model artifact: %v", err)
	}

	m, err := Train(rows)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := m.Save(path); err != nil {
			log.Printf("could not cache trained model: %v", err)
		}
	}
	return m, nil
}

func collectVocabulary(rows []model.TrainingRow) ([]string, []string) {
	symptomSet := make(map[string]bool)
	classSet := make(map[string]bool)
	for _, row := range rows {
		classSet[row.Disease] = true
		for _, s := range row.Symptoms {
			if n := vocab.Normalize(s); n != "" {
				symptomSet[n] = true
			}
		}
	}

	vocabulary := make([]string, 0, len(symptomSet))
	for s := range symptomSet {
		vocabulary = append(vocabulary, s)
	}
	sort.Strings(vocabulary)

	classes := make([]string, 0, len(classSet))
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return vocabulary, classes
}

func vectorize(rows []model.TrainingRow, vocabulary, classes []string) ([][]uint8, []int) {
	index := make(map[string]int, len(vocabulary))
	for i, s := range vocabulary {
		index[s] = i
	}
	classIndex := make(map[string]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}

	vectors := make([][]uint8, len(rows))
	labels := make([]int, len(rows))
	for i, row := range rows {
		v := make([]uint8, len(vocabulary))
		for _, s := range row.Symptoms {
			if idx, ok := index[vocab.Normalize(s)]; ok {
				v[idx] = 1
			}
		}
		vectors[i] = v
		labels[i] = classIndex[row.Disease]
	}
	return vectors, labels
}

func balancedWeights(labels []int, numClasses int) []float64 {
	indices := make([]int, len(labels))
	for i := range indices {
		indices[i] = i
	}
	return balancedWeightsSubset(labels, indices, numClasses)
}

// balancedWeightsSubset computes total/(numClasses*count) weights over the
// given sample subset, the usual class-balanced scheme.
func balancedWeightsSubset(labels []int, indices []int, numClasses int) []float64 {
	counts := make([]float64, numClasses)
	for _, i := range indices {
		counts[labels[i]]++
	}
	weights := make([]float64, numClasses)
	total := float64(len(indices))
	for c := range weights {
		if counts[c] > 0 {
			weights[c] = total / (float64(numClasses) * counts[c])
		}
	}
	return weights
}
