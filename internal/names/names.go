// Package names generates human-friendly labels for conversation threads.
package names

import (
	"fmt"
	"strings"

	"github.com/docker/docker/pkg/namesgenerator"
)

// defaultAttempts bounds UniqueLabel when the caller passes no limit.
const defaultAttempts = 100

// TakenFn reports whether a label is already in use.
type TakenFn func(label string) bool

// Label returns a random adjective-surname label such as "focused-turing".
func Label() string {
	return strings.ReplaceAll(namesgenerator.GetRandomName(0), "_", "-")
}

// UniqueLabel returns a label for which taken reports false. After
// maxAttempts random tries it falls back to numbered suffixes of the last
// candidate, so it only fails if every suffix is taken as well.
func UniqueLabel(taken TakenFn, maxAttempts int) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultAttempts
	}

	var label string
	for range maxAttempts {
		label = Label()
		if !taken(label) {
			return label, nil
		}
	}

	for i := 2; i <= maxAttempts+1; i++ {
		candidate := fmt.Sprintf("%s-%d", label, i)
		if !taken(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no free thread label after %d attempts", 2*maxAttempts)
}
