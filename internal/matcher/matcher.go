// Package matcher scores how well a resume covers the keywords of a job description.
package matcher

import (
	"sort"

	"atsgenie/internal/keywords"
)

// Result is the outcome of comparing a resume against a job description.
// Matched and Missing are sorted and partition JobKeywords.
type Result struct {
	Score          float64      `json:"score"`
	Matched        []string     `json:"matched"`
	Missing        []string     `json:"missing"`
	ResumeKeywords keywords.Set `json:"resumeKeywords"`
	JobKeywords    keywords.Set `json:"jobKeywords"`
}

// CalculateMatch extracts keywords from both texts and scores the resume by
// the share of job keywords it contains
func CalculateMatch(resumeText, jobText string) Result {
	return MatchKeywords(keywords.ExtractKeywords(resumeText), keywords.ExtractKeywords(jobText))
}

// MatchKeywords scores already extracted keyword sets.
// A job without keywords scores 0 with empty matched and missing lists.
func MatchKeywords(resumeKW, jobKW keywords.Set) Result {
	if resumeKW == nil {
		resumeKW = keywords.Set{}
	}
	if jobKW == nil {
		jobKW = keywords.Set{}
	}

	result := Result{
		Score:          0,
		Matched:        []string{},
		Missing:        []string{},
		ResumeKeywords: resumeKW,
		JobKeywords:    jobKW,
	}
	if jobKW.Len() == 0 {
		return result
	}

	matched := jobKW.Intersect(resumeKW)
	result.Matched = matched.Sorted()
	result.Missing = jobKW.Difference(resumeKW).Sorted()
	result.Score = RoundScore(matched.Len(), jobKW.Len())

	return result
}

// RoundScore returns matched/total as a percentage rounded to two decimals.
// Ties round half to even on the exact ratio, so 1/32 gives 3.12.
func RoundScore(matched, total int) float64 {
	if total <= 0 || matched <= 0 {
		return 0
	}
	if matched >= total {
		return 100
	}

	hundredths := int64(matched) * 10000
	quot := hundredths / int64(total)
	rem := hundredths % int64(total)

	switch twice := rem * 2; {
	case twice > int64(total):
		quot++
	case twice == int64(total) && quot%2 == 1:
		quot++
	}

	return float64(quot) / 100
}

// Job is a labeled job description for batch ranking
type Job struct {
	Label       string
	Description string
}

// Ranked pairs a job label with its match result
type Ranked struct {
	Label  string `json:"label"`
	Result Result `json:"result"`
}

// RankJobs scores one resume against every job and orders the results by
// score descending, then label ascending. Resume keywords are extracted once.
func RankJobs(resumeText string, jobs []Job) []Ranked {
	resumeKW := keywords.ExtractKeywords(resumeText)

	ranked := make([]Ranked, 0, len(jobs))
	for _, job := range jobs {
		ranked = append(ranked, Ranked{
			Label:  job.Label,
			Result: MatchKeywords(resumeKW, keywords.ExtractKeywords(job.Description)),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Result.Score != ranked[j].Result.Score {
			return ranked[i].Result.Score > ranked[j].Result.Score
		}
		return ranked[i].Label < ranked[j].Label
	})

	return ranked
}
