package candidates

import "encoding/json"

// Candidate is one detected question unit produced by the upstream merge step,
// prior to model cleanup. Blocks are raw OCR block records and are passed
// through to the model prompt verbatim.
type Candidate struct {
	Page    int               `json:"page"`
	QNum    *string           `json:"qnum"`
	Blocks  []json.RawMessage `json:"blocks"`
	ConfAvg *int              `json:"conf_avg,omitempty"`
}

// PageBatch groups the candidates sharing one page number. Batches are the
// unit of work sent to the model backend.
type PageBatch struct {
	Page       int
	Candidates []Candidate
}
