package models

type DifficultyCount struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// SubmissionStats counts raw submissions, not distinct problems.
type SubmissionStats struct {
	Accepted int `json:"accepted"`
	Total    int `json:"total"`
	Rate     int `json:"rate"`
}

// SubmissionSummary counts distinct problems.
type SubmissionSummary struct {
	TotalSolved      int `json:"totalSolved"`
	TotalAttempted   int `json:"totalAttempted"`
	TotalSubmissions int `json:"totalSubmissions"`
}

type RatingPoint struct {
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
	Timestamp int64  `json:"timestamp"`
}
