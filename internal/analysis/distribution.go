package analysis

import (
	"slices"
	"sort"

	"github.com/vytor/cftracker/internal/models"
)

const (
	// TagLimit bounds the tag histogram.
	TagLimit = 10
	// PieTagLimit is the number of tags shown in the pie view.
	PieTagLimit = 8
)

// forEachSolved calls fn once per solved problem, in the order of its first
// submission in the input.
func forEachSolved(submissions []models.Submission, fn func(models.Problem)) {
	solved := Classify(submissions)
	credited := make(map[models.ProblemKey]struct{}, len(solved))
	for _, s := range submissions {
		key := s.Key()
		if !solved.Has(key) {
			continue
		}
		if _, done := credited[key]; done {
			continue
		}
		credited[key] = struct{}{}
		fn(s.Problem)
	}
}

// DifficultyDistribution counts solved problems per rating, ascending.
// Problems without a positive rating are left out.
func DifficultyDistribution(submissions []models.Submission) []models.DifficultyCount {
	counts := make(map[int]int)
	forEachSolved(submissions, func(p models.Problem) {
		if r := p.RatingValue(); r > 0 {
			counts[r]++
		}
	})

	out := make([]models.DifficultyCount, 0, len(counts))
	for rating, count := range counts {
		out = append(out, models.DifficultyCount{Rating: rating, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating < out[j].Rating })
	return out
}

// TagDistribution counts solved problems per tag, most frequent first,
// limited to TagLimit. Equal counts keep the order in which tags were first
// credited.
func TagDistribution(submissions []models.Submission) []models.TagCount {
	return TopTags(tagCounts(submissions), TagLimit)
}

// TopTags returns the first n entries of a sorted tag histogram, or all of
// them when n is negative. The result never shares memory with counts.
func TopTags(counts []models.TagCount, n int) []models.TagCount {
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	out := slices.Clone(counts)
	if out == nil {
		out = []models.TagCount{}
	}
	return out
}

func tagCounts(submissions []models.Submission) []models.TagCount {
	index := make(map[string]int)
	var out []models.TagCount
	forEachSolved(submissions, func(p models.Problem) {
		for _, tag := range p.Tags {
			i, ok := index[tag]
			if !ok {
				i = len(out)
				index[tag] = i
				out = append(out, models.TagCount{Tag: tag})
			}
			out[i].Count++
		}
	})
	if out == nil {
		out = []models.TagCount{}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
