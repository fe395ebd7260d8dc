package quiz

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed catalog.json
var defaultCatalog []byte

// Bank is an immutable, ordered question catalog. The order of the
// questions is the order players must answer them in.
type Bank struct {
	questions []Question
	index     map[int]int
}

// NewBank validates qs and builds a bank. IDs must be strictly increasing,
// every question needs a prompt and an answer, and multiple-choice answers
// must name one of the choice keys.
func NewBank(qs []Question) (*Bank, error) {
	if len(qs) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	b := &Bank{
		questions: make([]Question, len(qs)),
		index:     make(map[int]int, len(qs)),
	}
	for i, q := range qs {
		if q.Kind == "" {
			q.Kind = KindText
		}
		if !q.Kind.Valid() {
			return nil, fmt.Errorf("question %d: unknown kind %q", q.ID, q.Kind)
		}
		if i > 0 && q.ID <= qs[i-1].ID {
			return nil, fmt.Errorf("question %d: ids must be strictly increasing", q.ID)
		}
		if strings.TrimSpace(q.Prompt) == "" {
			return nil, fmt.Errorf("question %d: prompt is required", q.ID)
		}
		if Normalize(q.Answer) == "" {
			return nil, fmt.Errorf("question %d: answer is required", q.ID)
		}
		if q.Kind.hasImage() && q.Image == "" {
			return nil, fmt.Errorf("question %d: %s requires questionImage", q.ID, q.Kind)
		}
		if q.Kind.hasChoices() {
			if err := checkChoices(q); err != nil {
				return nil, err
			}
		}
		b.questions[i] = q
		b.index[q.ID] = i
	}
	return b, nil
}

func checkChoices(q Question) error {
	if len(q.Choices) < 2 {
		return fmt.Errorf("question %d: needs at least two options", q.ID)
	}
	seen := make(map[string]bool, len(q.Choices))
	for _, c := range q.Choices {
		k := Normalize(c.Key)
		if k == "" {
			return fmt.Errorf("question %d: option key is required", q.ID)
		}
		if seen[k] {
			return fmt.Errorf("question %d: duplicate option key %q", q.ID, c.Key)
		}
		seen[k] = true
	}
	if !seen[Normalize(q.Answer)] {
		return fmt.Errorf("question %d: answer %q is not an option key", q.ID, q.Answer)
	}
	return nil
}

// Default returns the embedded seven-question catalog.
func Default() (*Bank, error) {
	return Parse(defaultCatalog)
}

// Parse reads a JSON array of questions.
func Parse(data []byte) (*Bank, error) {
	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return NewBank(qs)
}

// Load reads a catalog from path, or the embedded one when path is empty.
func Load(path string) (*Bank, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Len is the number of questions.
func (b *Bank) Len() int { return len(b.questions) }

// At returns the question at position i in the answering order.
func (b *Bank) At(i int) (Question, bool) {
	if i < 0 || i >= len(b.questions) {
		return Question{}, false
	}
	return b.questions[i], true
}

// IndexOf returns the position of the question with the given id.
func (b *Bank) IndexOf(id int) (int, bool) {
	i, ok := b.index[id]
	return i, ok
}

// PublicList returns every question in order, without answers.
func (b *Bank) PublicList() []PublicQuestion {
	out := make([]PublicQuestion, len(b.questions))
	for i, q := range b.questions {
		out[i] = q.Public()
	}
	return out
}

// CheckAnswer compares answer with the expected answer of question id,
// ignoring case and surrounding whitespace. For multiple-choice questions
// answer is the option key.
func (b *Bank) CheckAnswer(id int, answer string) (bool, error) {
	i, ok := b.index[id]
	if !ok {
		return false, fmt.Errorf("question %d: %w", id, ErrQuestionNotFound)
	}
	return b.questions[i].accepts(answer), nil
}
