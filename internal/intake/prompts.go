package intake

import (
	"fmt"
	"strings"
)

// Prompt builders for the generative model. Every prompt asks for a raw JSON
// array of strings; the answer still goes through the tolerant parser because
// models routinely wrap output in code fences or prose.

func promptHeader(profile PatientProfile) string {
	return fmt.Sprintf(
		"You are assisting with a clinical intake interview. The patient is %d years old, gender %s, and reports the following chief complaint: %q.",
		profile.Age, profile.Gender, strings.TrimSpace(profile.ChiefComplaint))
}

func promptExclusion(label string, exclude []string) string {
	if len(exclude) == 0 {
		return ""
	}
	return fmt.Sprintf(" Do not repeat any of these %s already shown: %s.", label, strings.Join(exclude, "; "))
}

// AntecedentPrompt asks for plausible personal medical history items.
func AntecedentPrompt(profile PatientProfile, exclude []string, count int) string {
	var sb strings.Builder
	sb.WriteString(promptHeader(profile))
	fmt.Fprintf(&sb,
		" List up to %d personal medical antecedents (chronic diseases, prior surgeries, relevant habits) that are plausible for this patient and worth confirming.",
		count)
	sb.WriteString(promptExclusion("antecedents", exclude))
	sb.WriteString(" Respond with only a JSON array of short strings, no explanations.")
	return sb.String()
}

// AllergyPrompt asks for plausible allergies given the confirmed antecedents.
func AllergyPrompt(profile PatientProfile, antecedents, exclude []string, count int) string {
	var sb strings.Builder
	sb.WriteString(promptHeader(profile))
	if len(antecedents) > 0 {
		fmt.Fprintf(&sb, " Confirmed antecedents: %s.", strings.Join(antecedents, "; "))
	}
	fmt.Fprintf(&sb,
		" List up to %d allergies (medications, foods, environmental) that are worth asking this patient about.",
		count)
	sb.WriteString(promptExclusion("allergies", exclude))
	sb.WriteString(" Respond with only a JSON array of short strings, no explanations.")
	return sb.String()
}

// DrugPrompt asks for medications the patient may plausibly be taking.
func DrugPrompt(profile PatientProfile, antecedents, allergies, exclude []string, count int) string {
	var sb strings.Builder
	sb.WriteString(promptHeader(profile))
	if len(antecedents) > 0 {
		fmt.Fprintf(&sb, " Confirmed antecedents: %s.", strings.Join(antecedents, "; "))
	}
	if len(allergies) > 0 {
		fmt.Fprintf(&sb, " Confirmed allergies: %s.", strings.Join(allergies, "; "))
	}
	fmt.Fprintf(&sb,
		" List up to %d medications this patient may plausibly be taking and worth confirming.",
		count)
	sb.WriteString(promptExclusion("medications", exclude))
	sb.WriteString(" Respond with only a JSON array of short strings, no explanations.")
	return sb.String()
}
