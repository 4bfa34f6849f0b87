// Package prompt provides interactive terminal prompts using charmbracelet/huh.
package prompt

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// ErrCanceled is returned when the user cancels a prompt.
var ErrCanceled = errors.New("canceled by user")

// Verdict is the outcome of reviewing a held command.
type Verdict int

// Review verdicts.
const (
	VerdictSkip Verdict = iota
	VerdictApprove
	VerdictReject
)

// Prompter abstracts user interaction for testability.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/prompter.go . Prompter
type Prompter interface {
	// Print outputs text to the user.
	Print(message string)

	// Confirm prompts for yes/no confirmation.
	Confirm(title, description string) (bool, error)

	// Review asks whether to approve or reject a command held for approval.
	Review(instance, command string) (Verdict, error)
}

// HuhPrompter implements Prompter using charmbracelet/huh for interactive forms.
type HuhPrompter struct{}

// New creates a new HuhPrompter for interactive terminal prompts.
func New() *HuhPrompter {
	return &HuhPrompter{}
}

// Print outputs text to the user.
func (p *HuhPrompter) Print(message string) {
	fmt.Println(message)
}

// Confirm prompts for yes/no confirmation.
func (p *HuhPrompter) Confirm(title, description string) (bool, error) {
	var confirmed bool

	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed).
		Run()

	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrCanceled
		}
		return false, fmt.Errorf("confirm prompt: %w", err)
	}

	return confirmed, nil
}

// Review shows the held command and returns the chosen verdict.
func (p *HuhPrompter) Review(instance, command string) (Verdict, error) {
	verdict := VerdictSkip

	err := huh.NewSelect[Verdict]().
		Title(fmt.Sprintf("Instance %s wants to run:", instance)).
		Description(command).
		Options(
			huh.NewOption("Approve", VerdictApprove),
			huh.NewOption("Reject", VerdictReject),
			huh.NewOption("Leave pending", VerdictSkip),
		).
		Value(&verdict).
		Run()

	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return VerdictSkip, ErrCanceled
		}
		return VerdictSkip, fmt.Errorf("review prompt: %w", err)
	}

	return verdict, nil
}
