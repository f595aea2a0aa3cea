package presenter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/krywicki/zeroshot/internal/domain/entity"
)

const (
	header    = "ZeroShot Results"
	separator = "============================"
)

// Text prints zero-shot results in the plain console format
type Text struct{}

// NewText creates a Text presenter
func NewText() *Text {
	return &Text{}
}

// Print writes the header and, for every input, its ranked labels.
// results[i] must belong to inputs[i]; the sentence text is looked up
// through each result's sentence index.
func (p *Text) Print(w io.Writer, inputs []string, results [][]entity.Label) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, header)
	fmt.Fprintln(bw, separator)
	fmt.Fprintln(bw)

	for _, labels := range results {
		if len(labels) == 0 {
			continue
		}
		sentence := labels[0].Sentence
		if sentence < 0 || sentence >= len(inputs) {
			return fmt.Errorf("result refers to sentence %d of %d", sentence, len(inputs))
		}
		fmt.Fprintf(bw, "- \"%s\"\n", inputs[sentence])

		for _, label := range labels {
			fmt.Fprintf(bw, "\tlabel: %s\n", label.Text)
			fmt.Fprintf(bw, "\tscore: %s\n", formatScore(label.Score))
			fmt.Fprintln(bw)
		}
	}

	return bw.Flush()
}

// formatScore prints the shortest decimal that round-trips
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
