package classifier

// Decision tree over binary symptom-presence features. Depth and leaf size are
// bounded and classes are weighted inversely to their corpus frequency, since
// the corpus is typically skewed toward a handful of common diseases.

const (
	maxTreeDepth = 12
	minLeafSize  = 2
)

// treeNode is serialized as part of the model artifact. Feature is -1 on
// leaves; Probs is the weighted class distribution at the leaf, indexed like
// Model.Classes.
type treeNode struct {
	Feature int       `json:"feature"`
	Absent  *treeNode `json:"absent,omitempty"`
	Present *treeNode `json:"present,omitempty"`
	Probs   []float64 `json:"probs,omitempty"`
}

type treeTrainer struct {
	numClasses   int
	numFeatures  int
	classWeights []float64
}

// fit grows a tree on the given samples. vectors are 0/1 feature rows,
// labels are class indices.
func (t *treeTrainer) fit(vectors [][]uint8, labels []int) *treeNode {
	indices := make([]int, len(vectors))
	for i := range indices {
		indices[i] = i
	}
	return t.grow(vectors, labels, indices, 0)
}

func (t *treeTrainer) grow(vectors [][]uint8, labels []int, indices []int, depth int) *treeNode {
	dist := t.distribution(labels, indices)

	if depth >= maxTreeDepth || len(indices) < 2*minLeafSize || isPure(labels, indices) {
		return &treeNode{Feature: -1, Probs: dist}
	}

	feature, gain := t.bestSplit(vectors, labels, indices)
	if feature < 0 || gain <= 0 {
		return &treeNode{Feature: -1, Probs: dist}
	}

	var absent, present []int
	for _, i := range indices {
		if vectors[i][feature] == 0 {
			absent = append(absent, i)
		} else {
			present = append(present, i)
		}
	}
	if len(absent) < minLeafSize || len(present) < minLeafSize {
		return &treeNode{Feature: -1, Probs: dist}
	}

	return &treeNode{
		Feature: feature,
		Absent:  t.grow(vectors, labels, absent, depth+1),
		Present: t.grow(vectors, labels, present, depth+1),
	}
}

// bestSplit scans every feature and picks the largest weighted Gini decrease.
// Lower feature index wins ties, which keeps training deterministic.
func (t *treeTrainer) bestSplit(vectors [][]uint8, labels []int, indices []int) (int, float64) {
	parentGini, parentWeight := t.gini(labels, indices)

	parentCounts := make([]float64, t.numClasses)
	for _, i := range indices {
		parentCounts[labels[i]] += t.classWeights[labels[i]]
	}

	bestFeature := -1
	bestGain := 0.0

	counts := make([]float64, t.numClasses)
	for feature := 0; feature < t.numFeatures; feature++ {
		for i := range counts {
			counts[i] = 0
		}
		presentWeight := 0.0
		for _, i := range indices {
			if vectors[i][feature] == 1 {
				w := t.classWeights[labels[i]]
				counts[labels[i]] += w
				presentWeight += w
			}
		}
		if presentWeight == 0 || presentWeight == parentWeight {
			continue
		}

		absentWeight := parentWeight - presentWeight
		presentGini := 1.0
		absentGini := 1.0
		for c := 0; c < t.numClasses; c++ {
			p := counts[c] / presentWeight
			presentGini -= p * p
			q := (parentCounts[c] - counts[c]) / absentWeight
			absentGini -= q * q
		}

		gain := parentGini - (presentWeight*presentGini+absentWeight*absentGini)/parentWeight
		if gain > bestGain {
			bestGain = gain
			bestFeature = feature
		}
	}
	return bestFeature, bestGain
}

func (t *treeTrainer) gini(labels []int, indices []int) (float64, float64) {
	counts := make([]float64, t.numClasses)
	total := 0.0
	for _, i := range indices {
		w := t.classWeights[labels[i]]
		counts[labels[i]] += w
		total += w
	}
	g := 1.0
	for _, c := range counts {
		p := c / total
		g -= p * p
	}
	return g, total
}

func (t *treeTrainer) distribution(labels []int, indices []int) []float64 {
	counts := make([]float64, t.numClasses)
	total := 0.0
	for _, i := range indices {
		w := t.classWeights[labels[i]]
		counts[labels[i]] += w
		total += w
	}
	if total > 0 {
		for i := range counts {
			counts[i] /= total
		}
	}
	return counts
}

func isPure(labels []int, indices []int) bool {
	if len(indices) == 0 {
		return true
	}
	first := labels[indices[0]]
	for _, i := range indices[1:] {
		if labels[i] != first {
			return false
		}
	}
	return true
}

// predict walks the tree and returns the leaf class distribution.
func (n *treeNode) predict(vector []uint8) []float64 {
	node := n
	for node.Feature >= 0 {
		if vector[node.Feature] == 0 {
			node = node.Absent
		} else {
			node = node.Present
		}
	}
	return node.Probs
}
