package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/vytor/cftracker/internal/models"
)

const problemsetURL = "https://codeforces.com/problemset/problem/%d/%s"

var rankColors = map[string]string{
	"newbie":                    "text-gray-400",
	"pupil":                     "text-green-500",
	"specialist":                "text-cyan-400",
	"expert":                    "text-blue-600",
	"candidate master":          "text-purple-600",
	"master":                    "text-orange-500",
	"international master":      "text-orange-500",
	"grandmaster":               "text-red-600",
	"international grandmaster": "text-red-600",
	"legendary grandmaster":     "text-red-800",
}

// RankColor maps a Codeforces rank title to its display colour class.
func RankColor(rank string) string {
	if c, ok := rankColors[strings.ToLower(rank)]; ok {
		return c
	}
	return "text-gray-500"
}

func ProblemURL(key models.ProblemKey) string {
	return fmt.Sprintf(problemsetURL, key.ContestID, key.Index)
}

// FormatDate renders epoch seconds like "Jan 2, 2006" in UTC.
func FormatDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("Jan 2, 2006")
}

// TimeAgo renders epoch seconds relative to now; anything older than a week
// falls back to FormatDate.
func TimeAgo(ts int64, now time.Time) string {
	diff := now.Unix() - ts
	switch {
	case diff < 60:
		return "just now"
	case diff < 3600:
		return fmt.Sprintf("%dm ago", diff/60)
	case diff < 86400:
		return fmt.Sprintf("%dh ago", diff/3600)
	case diff < 604800:
		return fmt.Sprintf("%dd ago", diff/86400)
	}
	return FormatDate(ts)
}

const contestNameWidth = 15

// RatingTrajectory turns rating changes into chart points.
func RatingTrajectory(changes []models.RatingChange) []models.RatingPoint {
	points := make([]models.RatingPoint, 0, len(changes))
	for _, c := range changes {
		name := c.ContestName
		if r := []rune(name); len(r) > contestNameWidth {
			name = string(r[:contestNameWidth])
		}
		points = append(points, models.RatingPoint{
			Name:      name,
			Rating:    c.NewRating,
			Timestamp: c.RatingUpdateTimeSeconds,
		})
	}
	return points
}
