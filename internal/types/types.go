package types

// Input formats accepted for job descriptions
const (
	InputFormatText = "text"
	InputFormatHTML = "html"
)

// Tip sources reported on a MatchReport
const (
	TipSourceStatic = "static"
	TipSourceAI     = "ai"
)

// MatchInput represents a single resume / job description comparison request
type MatchInput struct {
	Resume         string `json:"resume" jsonschema:"plain text of the candidate resume"`
	JobDescription string `json:"jobDescription" jsonschema:"plain text or HTML of the job description"`
	InputFormat    string `json:"inputFormat,omitempty" jsonschema:"format of jobDescription: text (default) or html"`
	Details        bool   `json:"details,omitempty" jsonschema:"include keyword counts and full keyword lists"`
	AITips         bool   `json:"aiTips,omitempty" jsonschema:"request tailored tips from the configured AI provider"`
}

// MatchDetails is the diagnostic panel of a report
type MatchDetails struct {
	ResumeKeywordCount int      `json:"resumeKeywordCount"`
	JobKeywordCount    int      `json:"jobKeywordCount"`
	ResumeKeywords     []string `json:"resumeKeywords"`
	JobKeywords        []string `json:"jobKeywords"`
}

// MatchReport is the rendered outcome of a match
type MatchReport struct {
	AnalysisID     string        `json:"analysisId"`
	Score          float64       `json:"score"`
	Rating         string        `json:"rating"`
	Banner         string        `json:"banner"`
	Matched        []string      `json:"matched"`
	Missing        []string      `json:"missing"`
	MatchedMessage string        `json:"matchedMessage,omitempty"`
	MissingMessage string        `json:"missingMessage,omitempty"`
	Tips           []string      `json:"tips"`
	TipSource      string        `json:"tipSource"`
	Details        *MatchDetails `json:"details,omitempty"`
	CreatedAt      string        `json:"createdAt"`
}

// BatchJob is one labeled job description in a batch request
type BatchJob struct {
	Label       string `json:"label" jsonschema:"short name identifying the job"`
	Description string `json:"description" jsonschema:"job description text"`
}

// BatchInput represents one resume ranked against several job descriptions
type BatchInput struct {
	Resume      string     `json:"resume" jsonschema:"plain text of the candidate resume"`
	Jobs        []BatchJob `json:"jobs" jsonschema:"job descriptions to rank"`
	InputFormat string     `json:"inputFormat,omitempty" jsonschema:"format of job descriptions: text (default) or html"`
}

// BatchEntry is a ranked job in a batch report
type BatchEntry struct {
	Rank         int      `json:"rank"`
	Label        string   `json:"label"`
	Score        float64  `json:"score"`
	Rating       string   `json:"rating"`
	MatchedCount int      `json:"matchedCount"`
	MissingCount int      `json:"missingCount"`
	Matched      []string `json:"matched"`
	Missing      []string `json:"missing"`
}

// BatchReport ranks jobs by how well the resume covers them
type BatchReport struct {
	AnalysisID         string       `json:"analysisId"`
	ResumeKeywordCount int          `json:"resumeKeywordCount"`
	Entries            []BatchEntry `json:"entries"`
	CreatedAt          string       `json:"createdAt"`
}

// TipInput is what an AI provider sees when writing tailored tips
type TipInput struct {
	JobDescription string   `json:"jobDescription"`
	Matched        []string `json:"matched"`
	Missing        []string `json:"missing"`
	Score          float64  `json:"score"`
	MaxTips        int      `json:"maxTips"`
}

// TipOutput is the structured AI response
type TipOutput struct {
	Tips []string `json:"tips"`
}
