package analysis

// Ratings reported for a match score
const (
	RatingExcellent = "excellent"
	RatingGood      = "good"
	RatingAverage   = "average"
	RatingLow       = "low"
)

const (
	noMatchesMessage  = "No strong keyword matches found. Try adding more relevant terms."
	noMissingMessage  = "Great! You seem to cover most of the keywords from the job description."
	excellentBanner   = "Amazing! Your resume is highly aligned with this job."
	goodBanner        = "Good match. With a few tweaks, this can be great."
	averageBanner     = "Average match. You should customize your resume more."
	lowBanner         = "Low match. You need to tailor your resume significantly."
	excellentMinScore = 80
	goodMinScore      = 60
	averageMinScore   = 40
)

// StaticTips are shown with every report
var StaticTips = []string{
	"Use the missing keywords naturally in your experience/skills sections.",
	"Make sure your top skills appear in the summary, skills section and recent roles.",
	"Mirror the language and style of the job description, but don't lie.",
	"Customize your resume for each job you apply to.",
}

// Rating maps a score to its rating band
func Rating(score float64) string {
	switch {
	case score >= excellentMinScore:
		return RatingExcellent
	case score >= goodMinScore:
		return RatingGood
	case score >= averageMinScore:
		return RatingAverage
	default:
		return RatingLow
	}
}

// Banner returns the headline message for a rating
func Banner(rating string) string {
	switch rating {
	case RatingExcellent:
		return excellentBanner
	case RatingGood:
		return goodBanner
	case RatingAverage:
		return averageBanner
	default:
		return lowBanner
	}
}

func staticTips() []string {
	return append([]string(nil), StaticTips...)
}
