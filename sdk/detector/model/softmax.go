package model

import "math"

// Softmax converts logits into probabilities. The maximum logit is subtracted
// before exponentiation so large values cannot overflow.
func Softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}

	maxLogit := float64(logits[0])
	for _, v := range logits[1:] {
		maxLogit = math.Max(maxLogit, float64(v))
	}

	probs := make([]float64, len(logits))

	var sum float64
	for i, v := range logits {
		probs[i] = math.Exp(float64(v) - maxLogit)
		sum += probs[i]
	}

	for i := range probs {
		probs[i] /= sum
	}

	return probs
}
