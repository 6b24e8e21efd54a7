package model

import "strings"

// Choice tags a descriptor value as a recognized option or free text. The
// stored payload keeps the collapsed plain string for compatibility; Classify
// re-tags it on the way out so callers can tell the difference.
type Choice struct {
	Option string // recognized option token, empty for free text
	Custom string // free text, empty for a recognized option
}

// Value collapses the choice back to the plain string used at the storage
// edge.
func (c Choice) Value() string {
	if c.Custom != "" {
		return c.Custom
	}
	return c.Option
}

// IsCustom reports whether the value was free text rather than a recognized
// option.
func (c Choice) IsCustom() bool {
	return c.Custom != ""
}

// Classify tags a stored string against an option list.
func Classify(value string, options []string) Choice {
	for _, opt := range options {
		if strings.EqualFold(opt, value) {
			return Choice{Option: opt}
		}
	}
	return Choice{Custom: value}
}

// CollapseChoice resolves an option plus its "Other" free-text override into
// the single string the record stores. The option token is not retained when
// the override wins.
func CollapseChoice(option, other string) string {
	if strings.EqualFold(option, "Other") && strings.TrimSpace(other) != "" {
		return strings.TrimSpace(other)
	}
	return option
}
