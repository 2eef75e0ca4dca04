package scoring

import "sort"

const (
	// Categories scoring below this are never cited as match reasons.
	reasonThreshold = 40
	maxReasons      = 4
)

// categoryPriority breaks contribution ties: skills > location > salary >
// experience > company.
var categoryPriority = map[string]int{
	"skills":     0,
	"location":   1,
	"salary":     2,
	"experience": 3,
	"company":    4,
}

type category struct {
	name   string
	score  int
	weight float64
	detail string
}

func (c category) contribution() float64 {
	return c.weight * float64(c.score)
}

// buildReasons picks up to four categories by weighted contribution and
// renders their detail strings, highest impact first. Categories without a
// rendered detail or below the low-value threshold are skipped.
func buildReasons(categories []category) []string {
	ordered := make([]category, 0, len(categories))
	for _, c := range categories {
		if c.score < reasonThreshold || c.detail == "" {
			continue
		}
		ordered = append(ordered, c)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		ci, cj := ordered[i].contribution(), ordered[j].contribution()
		if ci != cj {
			return ci > cj
		}
		return categoryPriority[ordered[i].name] < categoryPriority[ordered[j].name]
	})

	if len(ordered) > maxReasons {
		ordered = ordered[:maxReasons]
	}

	reasons := make([]string, 0, len(ordered))
	for _, c := range ordered {
		reasons = append(reasons, c.detail)
	}
	return reasons
}
