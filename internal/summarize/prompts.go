package summarize

import (
	"fmt"
	"strings"

	"github.com/lectio/lectio/internal/models"
)

func pagePrompt(label, text string) string {
	return fmt.Sprintf(`You are a teaching assistant summarizing one page of lecture material. Produce a concrete outline of the page content.

Output format (JSON only):
{
  "outline": "two or three sentences summarizing the whole page",
  "keyPoints": ["key point 1", "key point 2", "key point 3"],
  "studyQuestion": "a question to ask yourself when reviewing"
}

Guidelines:
- Include facts, concepts and numbers actually present on the page
- keyPoints is 3-5 bullets, one sentence each
- studyQuestion is a single sentence

Page: %s
Content:
%s`, label, text)
}

func windowPrompt(pages []models.SummarizedPage) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		var bullets strings.Builder
		for _, kp := range p.Summary.KeyPoints {
			if kp == "" {
				continue
			}
			bullets.WriteString("- ")
			bullets.WriteString(kp)
			bullets.WriteString("\n")
		}
		parts = append(parts, fmt.Sprintf("Page p%d (%s):\nOutline: %s\nKey points:\n%sQuestion: %s",
			p.Index, p.Label, p.Summary.Outline, bullets.String(), p.Summary.StudyQuestion))
	}
	joined := strings.Join(parts, "\n\n")

	return fmt.Sprintf(`You are given summaries of consecutive pages of study material. Consolidate overlapping explanations and organize them as Markdown.

Rules:
- Each section heading uses the form `+"`### Pages start-end`"+`
- Tag every bullet with the contributing page indexes in parentheses, e.g. (p2,p3)
- Material already covered by a neighboring page is removed or folded into a single bullet
- Output Markdown only, no other text

Page summaries:
%s`, joined)
}
