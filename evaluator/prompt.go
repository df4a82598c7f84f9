package evaluator

import (
	"fmt"
	"strings"
)

const answerContract = `Return ONLY valid JSON in the following format.
DO NOT add explanations, markdown, or extra text.
DO NOT wrap in ` + "```" + `.

JSON schema:
{
  "score": number (0-100),
  "feedback": string
}`

// BuildContent builds the prompt for grading a text answer.
func BuildContent(question, answer, prompt string) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Instruction:\n%s\n\n", strings.TrimSpace(prompt)))
	builder.WriteString(fmt.Sprintf("Question:\n%s\n\n", strings.TrimSpace(question)))
	builder.WriteString(fmt.Sprintf("Answer:\n%s\n\n", strings.TrimSpace(answer)))
	builder.WriteString(answerContract)

	return builder.String()
}

// BuildVisualContent builds the prompt that accompanies a PDF document.
func BuildVisualContent(question, prompt string) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Instruction:\n%s\n\n", strings.TrimSpace(prompt)))
	builder.WriteString(fmt.Sprintf("Question:\n%s\n\n", strings.TrimSpace(question)))
	builder.WriteString("Use ONLY the provided visual document (PDF or images) to answer.\n")
	builder.WriteString("Do NOT rely on prior knowledge.\n")
	builder.WriteString("If information is missing, reflect that in the feedback.\n\n")
	builder.WriteString(answerContract)

	return builder.String()
}
