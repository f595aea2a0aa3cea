package entity

import "fmt"

// Label is one scored candidate label for one input sentence
type Label struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	// ID is the position of the label in the candidate list
	ID int `json:"id"`
	// Sentence is the index of the input in the batch
	Sentence int `json:"sentence"`
}

// Template turns a candidate label into a hypothesis sentence
type Template func(label string) string

// DefaultTemplate is used when no template is supplied
func DefaultTemplate(label string) string {
	return fmt.Sprintf("This example is %s.", label)
}

// Apply renders the hypothesis for label, falling back to DefaultTemplate
func (t Template) Apply(label string) string {
	if t == nil {
		return DefaultTemplate(label)
	}
	return t(label)
}
