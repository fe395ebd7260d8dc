// Package quiz holds the ordered question catalog and answer checking.
package quiz

import (
	"errors"
	"strings"
)

var ErrQuestionNotFound = errors.New("question not found")

// Kind selects how a question is presented and answered.
type Kind string

const (
	KindText             Kind = "text"
	KindImageText        Kind = "image-text"
	KindImageChoiceText  Kind = "image-choice-text"
	KindImageChoiceImage Kind = "image-choice-image"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindImageText, KindImageChoiceText, KindImageChoiceImage:
		return true
	}
	return false
}

func (k Kind) hasImage() bool   { return k != KindText }
func (k Kind) hasChoices() bool { return k == KindImageChoiceText || k == KindImageChoiceImage }

// Choice is one option of a multiple-choice question. Image questions use
// Image instead of Label.
type Choice struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	Image string `json:"image,omitempty"`
}

// Question is a catalog entry. Answer never leaves the server.
type Question struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"q"`
	Kind    Kind     `json:"kind"`
	Answer  string   `json:"answer"`
	Image   string   `json:"questionImage,omitempty"`
	Choices []Choice `json:"options,omitempty"`
}

// PublicQuestion is the client view of a question.
type PublicQuestion struct {
	ID         int      `json:"id"`
	Prompt     string   `json:"q"`
	Type       string   `json:"type,omitempty"`
	AnswerType string   `json:"answerType,omitempty"`
	Image      string   `json:"questionImage,omitempty"`
	Choices    []Choice `json:"options,omitempty"`
}

// Public strips the answer and maps the kind onto the wire fields the
// client understands: type is text|image, answerType is text|options|image-options.
func (q Question) Public() PublicQuestion {
	p := PublicQuestion{ID: q.ID, Prompt: q.Prompt}
	switch q.Kind {
	case KindImageText:
		p.Type, p.AnswerType = "image", "text"
	case KindImageChoiceText:
		p.Type, p.AnswerType = "image", "options"
	case KindImageChoiceImage:
		p.Type, p.AnswerType = "image", "image-options"
	}
	if q.Kind.hasImage() {
		p.Image = q.Image
	}
	if q.Kind.hasChoices() {
		p.Choices = append([]Choice(nil), q.Choices...)
	}
	return p
}

// Normalize trims surrounding whitespace and folds case.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (q Question) accepts(answer string) bool {
	return Normalize(answer) == Normalize(q.Answer)
}
