// Command wizard is an interactive terminal client for the intake service.
// It walks the full guided flow: patient profile, antecedent, allergy, and
// medication selection, then the ten questionnaire sections, and prints the
// final review summary.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/WailSalutem-Health-Care/intake-service/pkg/intakeclient"
)

func main() {
	_ = godotenv.Load()

	baseURL := os.Getenv("INTAKE_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	wizard := &wizard{
		workflow: intakeclient.NewWorkflow(intakeclient.NewClient(baseURL, 90*time.Second)),
		in:       bufio.NewScanner(os.Stdin),
	}
	if err := wizard.run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "wizard failed: %v\n", err)
		os.Exit(1)
	}
}

type wizard struct {
	workflow *intakeclient.Workflow
	in       *bufio.Scanner
}

func (z *wizard) run(ctx context.Context) error {
	fmt.Println("WailSalutem guided intake")
	fmt.Println("=========================")

	if err := z.stepProfile(ctx); err != nil {
		return err
	}
	if err := z.stepSelection(ctx, "Antecedents", z.workflow.Antecedents(),
		z.workflow.RequestMoreAntecedents, z.workflow.SaveConfirmedAntecedents); err != nil {
		return err
	}
	if err := z.stepSelection(ctx, "Allergies", z.workflow.Allergies(),
		z.workflow.RequestMoreAllergies, z.workflow.SaveConfirmedAllergies); err != nil {
		return err
	}
	if err := z.stepSelection(ctx, "Current medications", z.workflow.Drugs(),
		z.workflow.RequestMoreDrugs, z.workflow.SaveConfirmedDrugs); err != nil {
		return err
	}
	if err := z.stepQuestionnaire(ctx); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(z.workflow.ReviewSummary())
	return nil
}

func (z *wizard) stepProfile(ctx context.Context) error {
	form := z.workflow.Form()
	for {
		if age, ok := z.promptInt("Age [30]: "); ok {
			form.SetAge(age)
		}
		switch strings.ToLower(z.prompt("Gender (m/f) [f]: ")) {
		case "m", "male":
			form.SetGender(intakeclient.GenderMale)
		case "f", "female", "":
			form.SetGender(intakeclient.GenderFemale)
		}
		form.SetChiefComplaint(z.prompt("Chief complaint: "))

		fmt.Println("Fetching suggested antecedents...")
		err := z.workflow.Submit(ctx)
		if err == nil {
			return nil
		}
		if err == intakeclient.ErrInvalidForm {
			for _, message := range form.Snapshot().Errors {
				fmt.Println("  !", message)
			}
			continue
		}
		fmt.Println("  !", err)
		if !z.confirm("Try again? [y/N]: ") {
			return err
		}
	}
}

func (z *wizard) stepSelection(
	ctx context.Context,
	title string,
	group *intakeclient.SelectionGroup,
	requestMore func(context.Context),
	save func(context.Context) error,
) error {
	fmt.Println()
	fmt.Println(title)
	fmt.Println(strings.Repeat("-", len(title)))

	for {
		snap := group.Snapshot()
		for i, option := range snap.Options {
			marker := " "
			if contains(snap.Selected, option) {
				marker = "x"
			}
			fmt.Printf("  %2d. [%s] %s\n", i+1, marker, option)
		}
		for _, custom := range snap.Custom {
			fmt.Printf("      [x] %s (added)\n", custom)
		}
		if snap.SaveError != "" {
			fmt.Println("  !", snap.SaveError)
		}

		fmt.Println("Toggle by number, 'a <text>' to add, 'm' for more suggestions, 's' to save and continue.")
		input := z.prompt("> ")
		switch {
		case input == "s":
			if err := save(ctx); err != nil {
				fmt.Println("  !", group.Snapshot().SaveError)
				continue
			}
			if message := group.Snapshot().SaveMessage; message != "" {
				fmt.Println(" ", message)
				return nil
			}
			// Empty selection: the local validation error is shown next round.
		case input == "m":
			if !group.CanRequestMore() {
				fmt.Println("  No more suggestions available.")
				continue
			}
			fmt.Println("  Fetching more suggestions...")
			requestMore(ctx)
		case strings.HasPrefix(input, "a "):
			group.SetCustomText(strings.TrimPrefix(input, "a "))
			group.AddCustom()
		default:
			if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(snap.Options) {
				option := snap.Options[n-1]
				group.Toggle(option, !contains(snap.Selected, option))
			}
		}
	}
}

func (z *wizard) stepQuestionnaire(ctx context.Context) error {
	for z.workflow.Stage() == intakeclient.StageQuestionnaire {
		sectionID := z.workflow.CurrentSection()
		section := z.workflow.Section(sectionID)
		if section == nil {
			return fmt.Errorf("no section open for %q", sectionID)
		}

		fmt.Println()
		fmt.Printf("Section: %s\n", sectionID)
		for _, question := range section.Questions() {
			answer := z.prompt(fmt.Sprintf("  %s\n  > ", question.Prompt))
			z.workflow.UpdateAnswer(sectionID, question.ID, answer)
		}

		if err := z.workflow.SaveSection(ctx, sectionID); err != nil {
			fmt.Println("  !", section.Snapshot().SaveError)
			if !z.confirm("Retry this section? [y/N]: ") {
				return err
			}
			continue
		}
		fmt.Println(" ", section.Snapshot().SaveMessage)
	}
	return nil
}

func (z *wizard) prompt(label string) string {
	fmt.Print(label)
	if !z.in.Scan() {
		return ""
	}
	return strings.TrimSpace(z.in.Text())
}

func (z *wizard) promptInt(label string) (int, bool) {
	value := z.prompt(label)
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (z *wizard) confirm(label string) bool {
	answer := strings.ToLower(z.prompt(label))
	return answer == "y" || answer == "yes"
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
