package usecase

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/krywicki/zeroshot/internal/domain/entity"
	"github.com/krywicki/zeroshot/internal/domain/service"
)

// ResultPrinter renders classification results
type ResultPrinter interface {
	Print(w io.Writer, inputs []string, results [][]entity.Label) error
}

// RunInput describes one classification run
type RunInput struct {
	ModelConfig entity.ModelConfig
	Labels      []string
	Inputs      []string
	Template    entity.Template
	MaxLength   int
}

// ZeroShotUsecase loads a classifier, scores the inputs and prints them
type ZeroShotUsecase interface {
	Run(ctx context.Context, input *RunInput) error
}

type zeroShotUsecase struct {
	loader  service.ModelLoader
	printer ResultPrinter
	out     io.Writer
	logger  *zap.Logger
}

// NewZeroShotUsecase creates a new zero-shot usecase printing to out
func NewZeroShotUsecase(loader service.ModelLoader, printer ResultPrinter, out io.Writer, logger *zap.Logger) ZeroShotUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &zeroShotUsecase{
		loader:  loader,
		printer: printer,
		out:     out,
		logger:  logger,
	}
}

// BuildConfig maps a model selector to its full configuration
func BuildConfig(selector entity.ModelConfig) entity.ClassificationConfig {
	switch selector {
	case entity.ModelConfigBartMNLI:
		merges := entity.BartMNLIMergesResource
		return entity.NewClassificationConfig(
			entity.ModelTypeBart,
			entity.BartMNLIModelResource,
			entity.BartMNLIConfigResource,
			entity.BartMNLIVocabResource,
			&merges,
			false,
			nil,
			nil,
		)
	default:
		return entity.DefaultClassificationConfig()
	}
}

// Run executes configure, load, predict and print, stopping at the first error
func (u *zeroShotUsecase) Run(ctx context.Context, input *RunInput) error {
	cfg := BuildConfig(input.ModelConfig)
	u.logger.Info("Loading model", zap.Stringer("model_config", input.ModelConfig), zap.String("model", cfg.ModelResource.String()))

	model, err := u.loader.Load(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}

	results, err := model.PredictMultilabel(ctx, input.Inputs, input.Labels, input.Template, input.MaxLength)
	if err != nil {
		return fmt.Errorf("failed to predict labels: %w", err)
	}

	if err := u.printer.Print(u.out, input.Inputs, results); err != nil {
		return fmt.Errorf("failed to print results: %w", err)
	}

	return nil
}
