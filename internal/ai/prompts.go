package ai

import (
	"fmt"
	"strings"

	"atsgenie/internal/types"
)

// maxJobDescriptionChars bounds how much of the job description is sent to the model
const maxJobDescriptionChars = 8000

// DefaultSystemPrompt frames the model as an honest resume coach
const DefaultSystemPrompt = `You are a resume coach helping a candidate pass an applicant tracking system keyword screen.
Rules:
- Only suggest adding a keyword where the candidate can truthfully claim the skill or experience.
- Never suggest inventing employers, titles, certifications or dates.
- Each tip is one or two sentences, concrete, and names the keywords it addresses.`

// DefaultUserPrompt receives the score, matched keywords, missing keywords,
// the number of tips and the job description, in that order.
const DefaultUserPrompt = `The resume currently covers %.2f%% of the job description's keywords.

Keywords already present: %s
Keywords missing from the resume: %s

Write at most %d tips explaining where and how the candidate could work the missing keywords into
their resume. Prioritise keywords that look like hard skills or tools.

Job description:
%s`

// buildTipPrompt formats template with the match outcome
func buildTipPrompt(template string, input types.TipInput) string {
	if template == "" {
		template = DefaultUserPrompt
	}

	job := input.JobDescription
	if len(job) > maxJobDescriptionChars {
		job = strings.ToValidUTF8(job[:maxJobDescriptionChars], "") + "\n[truncated]"
	}

	return fmt.Sprintf(template,
		input.Score,
		joinOrNone(input.Matched),
		joinOrNone(input.Missing),
		input.MaxTips,
		job,
	)
}

func joinOrNone(words []string) string {
	if len(words) == 0 {
		return "(none)"
	}
	return strings.Join(words, ", ")
}
