package intake

import (
	"fmt"
	"strings"
)

// BuildReviewSummary renders the full intake transcript as plain text:
// profile, the three confirmed lists, and every answered section in chain
// order. It is generated fresh from the record on each call.
func BuildReviewSummary(record *Record) string {
	var sb strings.Builder

	sb.WriteString("INTAKE REVIEW\n")
	sb.WriteString("=============\n\n")
	fmt.Fprintf(&sb, "Age: %d\n", record.Profile.Age)
	fmt.Fprintf(&sb, "Gender: %s\n", record.Profile.Gender)
	fmt.Fprintf(&sb, "Chief complaint: %s\n", strings.TrimSpace(record.Profile.ChiefComplaint))

	writeList := func(title string, items []string) {
		fmt.Fprintf(&sb, "\n%s:\n", title)
		if len(items) == 0 {
			sb.WriteString("  (none reported)\n")
			return
		}
		for _, item := range items {
			fmt.Fprintf(&sb, "  - %s\n", item)
		}
	}
	writeList("Antecedents", record.SelectedAntecedents)
	writeList("Allergies", record.SelectedAllergies)
	writeList("Medications", record.SelectedDrugs)

	for _, section := range Sections {
		questions := record.Questions(section.ID)
		if len(questions) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s\n", section.Title)
		sb.WriteString(strings.Repeat("-", len(section.Title)))
		sb.WriteString("\n")
		for _, q := range questions {
			answer := strings.TrimSpace(q.Answer)
			if answer == "" {
				answer = "(no answer)"
			}
			fmt.Fprintf(&sb, "Q: %s\nA: %s\n", q.Prompt, answer)
		}
	}

	return sb.String()
}
