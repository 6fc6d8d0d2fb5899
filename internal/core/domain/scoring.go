package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ScoringBatch is the test set split into feature records and labels.
type ScoringBatch struct {
	Columns []string
	Records []map[string]any
	Labels  []string
}

// Evaluation compares endpoint predictions against known labels.
type Evaluation struct {
	Total    int
	Correct  int
	Accuracy float64
	// Classes is sorted; Matrix[i][j] counts label Classes[i] predicted as Classes[j].
	Classes []string
	Matrix  [][]int
}

// Evaluate builds accuracy and a confusion matrix. Predictions are compared
// in their textual form so "1", 1 and 1.0 agree.
func Evaluate(labels []string, predictions []any) (*Evaluation, error) {
	if len(labels) != len(predictions) {
		return nil, fmt.Errorf("%w: %d labels, %d predictions",
			ErrPredictionCountMismatch, len(labels), len(predictions))
	}

	predicted := make([]string, len(predictions))
	seen := map[string]bool{}
	for i, p := range predictions {
		predicted[i] = PredictionString(p)
		seen[predicted[i]] = true
		seen[normalizeLabel(labels[i])] = true
	}

	classes := make([]string, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	matrix := make([][]int, len(classes))
	for i := range matrix {
		matrix[i] = make([]int, len(classes))
	}

	ev := &Evaluation{Total: len(labels), Classes: classes, Matrix: matrix}
	for i := range labels {
		actual := normalizeLabel(labels[i])
		matrix[index[actual]][index[predicted[i]]]++
		if actual == predicted[i] {
			ev.Correct++
		}
	}
	if ev.Total > 0 {
		ev.Accuracy = float64(ev.Correct) / float64(ev.Total)
	}
	return ev, nil
}

// PredictionString renders a decoded JSON prediction as a label.
func PredictionString(p any) string {
	switch v := p.(type) {
	case nil:
		return ""
	case string:
		return normalizeLabel(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func normalizeLabel(s string) string {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if strings.EqualFold(s, "true") || strings.EqualFold(s, "false") {
		return strings.ToLower(s)
	}
	return s
}
