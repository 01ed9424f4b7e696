package models

import "time"

// SummaryScore is a calibration verdict over a fixed-size, chronologically
// contiguous, non-overlapping window of a user's resolved responses. The three
// probabilities describe how a perfectly calibrated predictor would compare to
// the observed correct count. The linked responses are frozen once created;
// a response participates in at most one summary per batch size.
type SummaryScore struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"-"`
	BatchSize       int       `json:"batch_size"`
	ActualCorrect   int       `json:"actual_correct"`
	ExpectedCorrect float64   `json:"expected_correct"`
	ProbFewer       float64   `json:"prob_fewer"`
	ProbSame        float64   `json:"prob_same"`
	ProbMore        float64   `json:"prob_more"`
	CreatedAt       time.Time `json:"creation_time"`
}

// SummarySeries is the chart-ready sequence of summaries for one batch size,
// oldest first.
type SummarySeries struct {
	BatchSize int            `json:"batch_size"`
	Summaries []SummaryScore `json:"summaries"`
}
