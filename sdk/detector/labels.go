package detector

import (
	"fmt"
	"math"
)

// Probabilities represents the softmax of the classifier outputs mapped onto
// the two classes. Both values are in [0,1] and sum to 1.
type Probabilities struct {
	AI    float64
	Human float64
}

// Labels maps the classifier output indices onto the two classes.
type Labels struct {
	AI    int
	Human int
}

// DefaultLabels is the output order of the roberta-base-openai-detector
// classifier: index 0 is "Fake", index 1 is "Real".
var DefaultLabels = Labels{AI: 0, Human: 1}

// Validate checks both indices address one of n outputs and differ.
func (l Labels) Validate(n int) error {
	switch {
	case l.AI == l.Human:
		return fmt.Errorf("labels: ai and human share index %d", l.AI)

	case l.AI < 0 || l.AI >= n:
		return fmt.Errorf("labels: ai index %d out of range for %d outputs", l.AI, n)

	case l.Human < 0 || l.Human >= n:
		return fmt.Errorf("labels: human index %d out of range for %d outputs", l.Human, n)
	}

	return nil
}

// Map picks the two class probabilities out of the softmax output. When the
// classifier has more than two outputs the pair is renormalized.
func (l Labels) Map(probs []float64) (Probabilities, error) {
	if err := l.Validate(len(probs)); err != nil {
		return Probabilities{}, err
	}

	p := Probabilities{
		AI:    probs[l.AI],
		Human: probs[l.Human],
	}

	sum := p.AI + p.Human
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return Probabilities{}, fmt.Errorf("labels: invalid probability mass %v", sum)
	}

	if len(probs) > 2 {
		p.AI /= sum
		p.Human /= sum
	}

	return p, nil
}
