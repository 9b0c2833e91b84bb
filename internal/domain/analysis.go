package domain

// AnalysisResult is replaced wholesale by every analysis call.
type AnalysisResult struct {
	Prediction      string
	Confidence      float64
	SimilarCases    []CaseReference
	Explanation     string
	Recommendations []string
}

type CaseReference struct {
	Tribunal  string
	Expedient string
	Date      string
	Subject   string
	URL       string
}

// ConfidencePercent clamps Confidence to [0,1] and returns it as a percentage.
func (r AnalysisResult) ConfidencePercent() float64 {
	switch {
	case r.Confidence < 0:
		return 0
	case r.Confidence > 1:
		return 100
	default:
		return r.Confidence * 100
	}
}
