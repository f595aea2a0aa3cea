package service

import (
	"context"

	"github.com/krywicki/zeroshot/internal/domain/entity"
)

// ZeroShotClassifier scores candidate labels against input sentences
type ZeroShotClassifier interface {
	// PredictMultilabel scores every label independently for every input.
	// The result has one slice per input, in input order, each sorted by
	// descending score and holding exactly one entry per label.
	PredictMultilabel(ctx context.Context, inputs, labels []string, template entity.Template, maxLength int) ([][]entity.Label, error)
}

// ModelLoader builds a ready classifier from a configuration
type ModelLoader interface {
	Load(ctx context.Context, cfg entity.ClassificationConfig) (ZeroShotClassifier, error)
}
