// Package models defines the domain types for golinks.
package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxSourceLength bounds the length of a source key.
const MaxSourceLength = 255

// Link maps a short source key to a destination URL or, when IsAlias is
// set, to another link's source.
type Link struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
	Source      string    `json:"source"`
	IsAlias     bool      `json:"is_alias"`
	Target      string    `json:"target"`
	Description string    `json:"description"`
}

// LinkInput carries the writable fields of a Link for create and update.
type LinkInput struct {
	Source      string `json:"source" yaml:"source"`
	IsAlias     bool   `json:"is_alias" yaml:"is_alias"`
	Target      string `json:"target" yaml:"target"`
	Description string `json:"description" yaml:"description"`
}

// Normalize trims surrounding whitespace from the key fields.
func (in *LinkInput) Normalize() {
	in.Source = strings.TrimSpace(in.Source)
	in.Target = strings.TrimSpace(in.Target)
}

// Validate checks the input. An alias must name a target source; a
// terminal link may be saved with an empty target.
func (in *LinkInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Source, validation.Required, validation.Length(1, MaxSourceLength)),
		validation.Field(&in.Target, validation.When(in.IsAlias, validation.Required, validation.Length(1, MaxSourceLength))),
	)
}

// Differs reports whether applying in to l would change any field.
func (in LinkInput) Differs(l Link) bool {
	return in.Source != l.Source ||
		in.IsAlias != l.IsAlias ||
		in.Target != l.Target ||
		in.Description != l.Description
}
