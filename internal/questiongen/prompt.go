package questiongen

import (
	"fmt"
	"strings"

	"adaptive-quiz-service/internal/app"
)

const systemPrompt = `You are an expert educator who specializes in adaptive learning and writes engaging multiple-choice quiz questions with increasing difficulty.

Rules:
- Every question has exactly 4 options and exactly one of them is correct.
- correct_answer must repeat the text of the correct option exactly.
- difficulty is an integer from 1 (easiest) to 10 (hardest).
- Every question includes a clear explanation and names the concept it tests.
- Do not repeat a question, and do not reuse the same correct answer twice in a batch.
- Respond with JSON only, no commentary and no Markdown.`

// buildUserMessage renders the per-batch instructions.
func buildUserMessage(req app.BatchRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create %d multiple-choice questions for a %s quiz at %s level with the following requirements:\n\n", req.Count, req.Subject, req.Level)
	fmt.Fprintf(&b, "1. Questions should be appropriate for %s level students/professionals\n", req.Level)
	fmt.Fprintf(&b, "2. Gradually increase difficulty within the %s level\n", req.Level)
	b.WriteString("3. Questions should build upon previous concepts\n")
	fmt.Fprintf(&b, "4. Final questions should be challenging for %s level\n\n", req.Level)

	fmt.Fprintf(&b, "For %s at %s level, ensure questions:\n", req.Subject, req.Level)
	fmt.Fprintf(&b, "- Are specific to %s concepts appropriate for %s\n", req.Subject, req.Level)
	b.WriteString("- Use real-world examples relevant to the level\n")
	b.WriteString("- Test both knowledge and understanding\n")
	b.WriteString("- Include clear explanations for learning\n\n")

	b.WriteString(`Return a JSON object in this exact format:
{"questions": [{"question": "...", "difficulty": 1, "options": ["...", "...", "...", "..."], "correct_answer": "...", "explanation": "...", "concept": "..."}]}`)
	fmt.Fprintf(&b, "\n\nOrder questions from easiest to hardest within the %s level.", req.Level)

	return b.String()
}
