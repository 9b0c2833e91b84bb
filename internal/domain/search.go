package domain

type SearchResultSet struct {
	Judgments []JudgmentSummary
	Total     int
}

type JudgmentSummary struct {
	Tribunal  string
	Expedient string
	Date      string
	Subject   string
	Parties   string
	Excerpt   string
	URL       string
	Score     *float64
}

func (s SearchResultSet) IsEmpty() bool {
	return len(s.Judgments) == 0
}
