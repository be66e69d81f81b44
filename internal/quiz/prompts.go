package quiz

import "fmt"

func textPrompt(source string, numQuestions int, difficulty string) string {
	return fmt.Sprintf(`You are a quiz author for university-level study material. Build a high-quality multiple-choice quiz from the study notes below.

Requirements:
- %d questions total
- Each question has exactly 4 options
- Difficulty: %s
- Output must be JSON only (no Markdown)

JSON schema:
{
  "questions": [
    {
      "question": "the question",
      "options": ["option 1", "option 2", "option 3", "option 4"],
      "correctIndex": 0,
      "explanation": "why the answer is correct"
    }
  ],
  "notes": [
    {
      "title": "concept name",
      "summary": "one-sentence summary",
      "details": ["key point 1", "key point 2"],
      "tip": "an extra study tip"
    }
  ]
}

Study notes:
%s`, numQuestions, difficulty, source)
}

func filePrompt(source string, numQuestions int) string {
	return fmt.Sprintf(`Extract the core concepts from the lecture material below and write a multiple-choice quiz.

Conditions:
- %d questions total
- 4 options per question
- A short explanation grounded in the source text for each answer
- 3-5 bullet concept notes the learner can use for review
- Do not include any text outside the JSON

Example JSON structure:
{
  "questions": [
    {
      "question": "...",
      "options": ["..."],
      "correctIndex": 0,
      "explanation": "..."
    }
  ],
  "notes": [
    {
      "title": "core topic",
      "summary": "one-line summary",
      "details": ["key point 1", "key point 2"],
      "tip": "a real-world example or study tip"
    }
  ]
}

Lecture material (excerpt):
%s`, numQuestions, source)
}
