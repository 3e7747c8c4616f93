package metrics

type usageData struct {
	InputTokens     int
	OriginalTokens  int
	TokensPerSecond float64
}

type usage struct {
	inputTokens     *avgMetric
	originalTokens  *avgMetric
	tokensPerSecond *avgMetric
}

func newUsage(name string) *usage {
	return &usage{
		inputTokens:     newAvgMetric(name + "_tkns_input"),
		originalTokens:  newAvgMetric(name + "_tkns_original"),
		tokensPerSecond: newAvgMetric(name + "_tkns_persecond"),
	}
}

func (u *usage) add(data usageData) {
	u.inputTokens.add(float64(data.InputTokens))
	u.originalTokens.add(float64(data.OriginalTokens))
	u.tokensPerSecond.add(data.TokensPerSecond)
}
