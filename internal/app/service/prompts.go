package service

import (
	"fmt"
	"strconv"
	"strings"

	"mathquest/internal/domain/model"
	"mathquest/internal/llm"
)

const (
	tutorSystemPrompt = "You are a friendly math tutor for Primary 5 students (10-11 years old)."

	problemMaxTokens  = 1024
	hintMaxTokens     = 300
	feedbackMaxTokens = 600
)

var wordProblemSchema = &llm.Schema{
	Name:        "word-problem",
	Description: "A math word problem and its numeric final answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"problem_text": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The word problem shown to the student",
			},
			"final_answer": map[string]any{
				"type":        "number",
				"description": "The single numeric answer",
			},
		},
		"required": []any{"problem_text", "final_answer"},
	},
}

type generatedProblem struct {
	ProblemText string  `json:"problem_text"`
	FinalAnswer float64 `json:"final_answer"`
}

func problemPrompt(difficulty model.Difficulty, topic *model.Topic, op model.ProblemType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %s level math word problem suitable for a Primary 5 student", difficulty)
	if topic != nil {
		fmt.Fprintf(&b, " on the topic: %s", topic.Name)
	}
	fmt.Fprintf(&b, ". Solving it should mainly require %s.", op)
	b.WriteString(` The answer must be a single number. Return only valid JSON with no extra text or formatting: {"problem_text": "[word problem]", "final_answer": [numerical answer]}`)
	return b.String()
}

func hintPrompt(problemText string) string {
	return fmt.Sprintf(`Provide a subtle hint for this Primary 5 math word problem: "%s"

Keep the hint brief, encouraging, and age-appropriate for 10-11 year olds. Don't give away the answer, just guide them towards the solution.`, problemText)
}

func feedbackPrompt(problemText string, correctAnswer, userAnswer float64, isCorrect bool) string {
	guidance := "The student got it wrong. Explain the correct approach step-by-step, be encouraging, and suggest practicing similar problems."
	if isCorrect {
		guidance = "The student got it correct! Provide encouraging feedback and perhaps suggest a similar problem to try."
	}
	return fmt.Sprintf(`The student was given this problem: "%s"

The correct answer is: %s
The student answered: %s

%s

Keep your response concise, friendly, and age-appropriate for Primary 5 students (10-11 years old).`,
		problemText, formatNumber(correctAnswer), formatNumber(userAnswer), guidance)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
