package ui

import (
	"fmt"

	survey "github.com/AlecAivazis/survey/v2"
)

// SelectOption is the interface for items offered in SelectOne.
type SelectOption interface {
	OptionLabel() string // what the user sees
	OptionID() string    // stable identifier for logic
}

// ToSelectOptions converts a slice of any SelectOption implementation into
// []SelectOption.
func ToSelectOptions[T SelectOption](items []T) []SelectOption {
	out := make([]SelectOption, len(items))
	for i := range items {
		out[i] = items[i]
	}
	return out
}

// SelectOne asks the user to choose one option with an arrow-key menu.
func (l *Logger) SelectOne(label string, options []SelectOption) (SelectOption, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("SelectOne: no options provided")
	}

	// A live progress line would corrupt the prompt's redraws.
	l.EndProgress()

	display := make([]string, len(options))
	for i, opt := range options {
		display[i] = opt.OptionLabel()
	}

	var chosen string
	prompt := &survey.Select{
		Message: label,
		Options: display,
	}
	if err := survey.AskOne(prompt, &chosen); err != nil {
		return nil, err
	}

	for i, d := range display {
		if d == chosen {
			return options[i], nil
		}
	}
	return nil, fmt.Errorf("SelectOne: answer %q not among options", chosen)
}

// Confirm asks a yes/no question, defaulting to no.
func (l *Logger) Confirm(text string) (bool, error) {
	l.EndProgress()

	var yes bool
	if err := survey.AskOne(&survey.Confirm{Message: text}, &yes); err != nil {
		return false, err
	}
	return yes, nil
}
