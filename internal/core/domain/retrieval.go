package domain

// NotFoundAnswer is returned verbatim when retrieval yields no candidates.
const NotFoundAnswer = "未检索到相关条文"

// RetrievedCandidate is one ranked retrieval hit for a question.
type RetrievedCandidate struct {
	// Similarity is 1 - cosine distance, clamped to 0 for distances above 1.
	Similarity float64 `json:"similarity"`

	ArticleID string `json:"article_id"`
	SpecName  string `json:"spec_name"`
	SpecAbbr  string `json:"spec_abbr"`
	Content   string `json:"content"`
}

// Answer is the composed response to a question.
type Answer struct {
	// Question is the question as asked.
	Question string `json:"question"`

	// Text is the generated answer, or NotFoundAnswer.
	Text string `json:"answer"`

	// References are the candidates the answer was grounded on.
	References []RetrievedCandidate `json:"references"`

	// NotFound is true when no candidate passed the similarity floor.
	NotFound bool `json:"not_found"`
}
