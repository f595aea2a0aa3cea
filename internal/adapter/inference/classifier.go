package inference

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/krywicki/zeroshot/internal/domain/entity"
	"github.com/krywicki/zeroshot/internal/domain/service"
)

// Predictor returns raw class logits for sequence pairs
type Predictor interface {
	Predict(ctx context.Context, pairs []Pair, requestID string) (PredictResponse, error)
}

// Tokenizer prepares text for the model
type Tokenizer interface {
	Normalize(text string) string
	TruncatePair(premise, hypothesis string, maxLength int) (string, string, error)
}

// Classifier scores candidate labels with an NLI model: each input is the
// premise and each templated label the hypothesis.
type Classifier struct {
	predictor    Predictor
	tokenizer    Tokenizer
	labels       NLILabels
	maxPositions int
	logger       *zap.Logger
}

var _ service.ZeroShotClassifier = (*Classifier)(nil)

// NewClassifier creates a Classifier. maxPositions <= 0 disables the
// max length check.
func NewClassifier(predictor Predictor, tokenizer Tokenizer, labels NLILabels, maxPositions int, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		predictor:    predictor,
		tokenizer:    tokenizer,
		labels:       labels,
		maxPositions: maxPositions,
		logger:       logger,
	}
}

// PredictMultilabel scores each label independently against each input
func (c *Classifier) PredictMultilabel(
	ctx context.Context,
	inputs, labels []string,
	template entity.Template,
	maxLength int,
) ([][]entity.Label, error) {
	if len(labels) == 0 {
		return nil, service.ErrNoLabels
	}
	if len(inputs) == 0 {
		return [][]entity.Label{}, nil
	}
	if c.maxPositions > 0 && maxLength > c.maxPositions {
		return nil, fmt.Errorf("%w: max length %d exceeds model capacity %d", service.ErrInputTooLong, maxLength, c.maxPositions)
	}

	hypotheses := make([]string, len(labels))
	for i, label := range labels {
		hypotheses[i] = c.tokenizer.Normalize(template.Apply(label))
	}

	pairs := make([]Pair, 0, len(inputs)*len(labels))
	for _, input := range inputs {
		for _, hypothesis := range hypotheses {
			premise, hyp, err := c.tokenizer.TruncatePair(input, hypothesis, maxLength)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, Pair{premise, hyp})
		}
	}

	requestID := uuid.NewString()
	start := time.Now()

	resp, err := c.predictor.Predict(ctx, pairs, requestID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInference, err)
	}
	if len(resp) != len(pairs) {
		return nil, fmt.Errorf("%w: expected %d predictions, got %d", service.ErrInference, len(pairs), len(resp))
	}

	results := make([][]entity.Label, len(inputs))
	for i := range inputs {
		row := make([]entity.Label, len(labels))
		for j, label := range labels {
			score, err := c.entailmentScore(resp[i*len(labels)+j])
			if err != nil {
				return nil, err
			}
			row[j] = entity.Label{
				Text:     label,
				Score:    score,
				ID:       j,
				Sentence: i,
			}
		}
		// Stable, so tied labels keep candidate order
		sort.SliceStable(row, func(a, b int) bool {
			return row[a].Score > row[b].Score
		})
		results[i] = row
	}

	c.logger.Debug("Predicted labels",
		zap.String("request_id", requestID),
		zap.Int("inputs", len(inputs)),
		zap.Int("labels", len(labels)),
		zap.Duration("latency", time.Since(start)),
	)

	return results, nil
}

// entailmentScore is the softmax of the entailment logit over the
// [contradiction, entailment] pair.
func (c *Classifier) entailmentScore(predictions []Prediction) (float64, error) {
	entailment, contradiction := math.NaN(), math.NaN()
	for _, p := range predictions {
		switch {
		case strings.EqualFold(p.Label, c.labels.Entailment):
			entailment = p.Score
		case strings.EqualFold(p.Label, c.labels.Contradiction):
			contradiction = p.Score
		}
	}
	if math.IsNaN(entailment) || math.IsNaN(contradiction) {
		return 0, fmt.Errorf("%w: response lacks %q or %q scores", service.ErrInference, c.labels.Entailment, c.labels.Contradiction)
	}

	return math.Exp(entailment - floats.LogSumExp([]float64{contradiction, entailment})), nil
}
