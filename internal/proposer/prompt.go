package proposer

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a methodologist assessing risk of bias in published studies.
You answer signalling questions strictly from the study text you are given.
When the text does not say, answer NI. Never invent information.
You reply with JSON only.`

// BuildPrompt lists every signalling question of inst with its allowed
// tokens, followed by the study text.
func BuildPrompt(inst Instrument, study string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Assess the study below with %s.\n", inst.Title())
	sb.WriteString("Answer every question. Use only the tokens listed for that question. ")
	sb.WriteString("Use NA only where it is listed and the question's condition is not met.\n\n")
	sb.WriteString(`Reply with one JSON object keyed by domain ID, then question ID:
{"domain_1": {"1.1": {"answer": "Y", "justification": "quote or short reason"}}}`)
	sb.WriteString("\n\nQuestions:\n")

	for _, d := range inst.Domains() {
		fmt.Fprintf(&sb, "\n%s: %s\n", d.ID(), d.Name())
		for _, q := range d.Questions() {
			fmt.Fprintf(&sb, "  %s [%s] %s\n", q.ID, q.Alphabet, q.Text)
		}
	}

	sb.WriteString("\nStudy text:\n<<<\n")
	sb.WriteString(strings.TrimSpace(study))
	sb.WriteString("\n>>>\n")
	return sb.String()
}
