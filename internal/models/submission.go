package models

// Verdict is the judged outcome of a submission. The empty value means the
// verdict is absent (e.g. still testing).
type Verdict string

const (
	VerdictOK                  Verdict = "OK"
	VerdictWrongAnswer         Verdict = "WRONG_ANSWER"
	VerdictTimeLimitExceeded   Verdict = "TIME_LIMIT_EXCEEDED"
	VerdictMemoryLimitExceeded Verdict = "MEMORY_LIMIT_EXCEEDED"
	VerdictRuntimeError        Verdict = "RUNTIME_ERROR"
	VerdictCompilationError    Verdict = "COMPILATION_ERROR"
	VerdictSkipped             Verdict = "SKIPPED"
	VerdictUnknown             Verdict = ""
)

func (v Verdict) Accepted() bool {
	return v == VerdictOK
}

// Actionable reports whether the verdict qualifies a problem for upsolving.
func (v Verdict) Actionable() bool {
	switch v {
	case VerdictWrongAnswer, VerdictTimeLimitExceeded, VerdictRuntimeError, VerdictMemoryLimitExceeded:
		return true
	default:
		return false
	}
}

type Member struct {
	Handle string `json:"handle"`
	Name   string `json:"name,omitempty"`
}

type Author struct {
	ContestID        int      `json:"contestId"`
	Members          []Member `json:"members"`
	ParticipantType  string   `json:"participantType"`
	Ghost            bool     `json:"ghost"`
	Room             *int     `json:"room,omitempty"`
	StartTimeSeconds *int64   `json:"startTimeSeconds,omitempty"`
}

type Submission struct {
	ID                  int64   `json:"id"`
	ContestID           int     `json:"contestId"`
	CreationTimeSeconds int64   `json:"creationTimeSeconds"`
	RelativeTimeSeconds int64   `json:"relativeTimeSeconds"`
	Problem             Problem `json:"problem"`
	Author              Author  `json:"author"`
	ProgrammingLanguage string  `json:"programmingLanguage"`
	Verdict             Verdict `json:"verdict,omitempty"`
	Testset             string  `json:"testset"`
	PassedTestCount     int     `json:"passedTestCount"`
	TimeConsumedMillis  int64   `json:"timeConsumedMillis"`
	MemoryConsumedBytes int64   `json:"memoryConsumedBytes"`
}

func (s Submission) Key() ProblemKey {
	return s.Problem.Key()
}
