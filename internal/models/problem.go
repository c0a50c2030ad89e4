package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ProblemKey identifies a problem across submissions. Index comparison is
// case-sensitive.
type ProblemKey struct {
	ContestID int    `json:"contestId"`
	Index     string `json:"index"`
}

func (k ProblemKey) String() string {
	return fmt.Sprintf("%d-%s", k.ContestID, k.Index)
}

// ParseProblemKey parses the "<contest>-<index>" form produced by String.
func ParseProblemKey(s string) (ProblemKey, error) {
	contest, index, ok := strings.Cut(s, "-")
	if !ok || index == "" {
		return ProblemKey{}, fmt.Errorf("invalid problem key %q", s)
	}
	id, err := strconv.Atoi(contest)
	if err != nil {
		return ProblemKey{}, fmt.Errorf("invalid contest id in problem key %q: %w", s, err)
	}
	return ProblemKey{ContestID: id, Index: index}, nil
}

type Problem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Points    *float64 `json:"points,omitempty"`
	Rating    *int     `json:"rating,omitempty"`
	Tags      []string `json:"tags"`
}

func (p Problem) Key() ProblemKey {
	return ProblemKey{ContestID: p.ContestID, Index: p.Index}
}

// RatingValue returns the difficulty rating, or 0 when absent.
func (p Problem) RatingValue() int {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}
