package models

type UpsolveEntry struct {
	Problem        Problem   `json:"problem"`
	Verdicts       []Verdict `json:"verdicts"`
	Notes          string    `json:"notes"`
	SubmissionTime int64     `json:"submissionTime"`
}

func (e UpsolveEntry) Key() ProblemKey {
	return e.Problem.Key()
}

// StruggledEntry is a solved problem that also has actionable failures.
type StruggledEntry struct {
	Problem      Problem   `json:"problem"`
	Verdicts     []Verdict `json:"verdicts"`
	Failures     int       `json:"failures"`
	AcceptedTime int64     `json:"acceptedTime"`
}

// Note is a persisted free-text annotation for a problem.
type Note struct {
	Key  ProblemKey `json:"key"`
	Text string     `json:"notes"`
}
