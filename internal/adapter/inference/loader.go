package inference

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/krywicki/zeroshot/internal/domain/entity"
	"github.com/krywicki/zeroshot/internal/domain/service"
	"github.com/krywicki/zeroshot/internal/infrastructure/tokenizer"
)

// ResourceResolver turns resource references into local paths
type ResourceResolver interface {
	Resolve(ctx context.Context, res entity.Resource) (string, error)
	Check(ctx context.Context, res entity.Resource) error
}

// Server is the part of the inference server the loader talks to
type Server interface {
	Predictor
	Health(ctx context.Context) error
	Info(ctx context.Context) (*InfoResponse, error)
}

type tokenizerFactory func(vocabPath, mergesPath string, lowerCase bool) (Tokenizer, error)

func loadBPE(vocabPath, mergesPath string, lowerCase bool) (Tokenizer, error) {
	return tokenizer.LoadBPE(vocabPath, mergesPath, lowerCase)
}

// Loader builds classifiers backed by an inference server. The tokenizer
// and class names come from the configured resources; the weights are the
// ones the server has loaded.
type Loader struct {
	resolver     ResourceResolver
	server       Server
	newTokenizer tokenizerFactory
	logger       *zap.Logger
}

var _ service.ModelLoader = (*Loader)(nil)

// NewLoader creates a Loader
func NewLoader(resolver ResourceResolver, server Server, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		resolver:     resolver,
		server:       server,
		newTokenizer: loadBPE,
		logger:       logger,
	}
}

// Load resolves the configuration's resources and checks the server
func (l *Loader) Load(ctx context.Context, cfg entity.ClassificationConfig) (service.ZeroShotClassifier, error) {
	if !cfg.ModelType.UsesMerges() {
		return nil, fmt.Errorf("%w: unsupported model type %q", service.ErrModelLoad, cfg.ModelType)
	}
	if cfg.MergesResource == nil {
		return nil, fmt.Errorf("%w: model type %q requires a merges resource", service.ErrModelLoad, cfg.ModelType)
	}

	configPath, err := l.resolver.Resolve(ctx, cfg.ConfigResource)
	if err != nil {
		return nil, err
	}
	modelCfg, err := readModelConfig(configPath)
	if err != nil {
		return nil, err
	}
	if modelCfg.ModelType != "" && modelCfg.ModelType != string(cfg.ModelType) {
		return nil, fmt.Errorf("%w: config describes a %q model, expected %q", service.ErrModelLoad, modelCfg.ModelType, cfg.ModelType)
	}
	labels, err := modelCfg.nliLabels()
	if err != nil {
		return nil, err
	}

	vocabPath, err := l.resolver.Resolve(ctx, cfg.VocabResource)
	if err != nil {
		return nil, err
	}
	mergesPath, err := l.resolver.Resolve(ctx, *cfg.MergesResource)
	if err != nil {
		return nil, err
	}
	tok, err := l.newTokenizer(vocabPath, mergesPath, cfg.LowerCase)
	if err != nil {
		return nil, err
	}

	// Weights are served, so they are only checked for reachability
	if err := l.resolver.Check(ctx, cfg.ModelResource); err != nil {
		return nil, err
	}

	if err := l.checkServer(ctx, cfg.ModelResource); err != nil {
		return nil, err
	}

	if cfg.Device != nil {
		l.logger.Warn("Device override is not supported by the inference server backend", zap.String("device", string(*cfg.Device)))
	}
	if cfg.Precision != nil {
		l.logger.Warn("Precision override is not supported by the inference server backend", zap.String("precision", string(*cfg.Precision)))
	}

	l.logger.Info("Model loaded",
		zap.String("model_type", string(cfg.ModelType)),
		zap.String("model", cfg.ModelResource.String()),
		zap.String("entailment_label", labels.Entailment),
		zap.String("contradiction_label", labels.Contradiction),
		zap.Int("max_positions", modelCfg.MaxPositionEmbeddings),
	)

	return NewClassifier(l.server, tok, labels, modelCfg.MaxPositionEmbeddings, l.logger), nil
}

// checkServer verifies the server is up and serves the configured weights
func (l *Loader) checkServer(ctx context.Context, weights entity.Resource) error {
	if err := l.server.Health(ctx); err != nil {
		return fmt.Errorf("%w: %v", service.ErrModelLoad, err)
	}

	info, err := l.server.Info(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrModelLoad, err)
	}

	want := weights.Repository()
	if want == "" || info.ModelID == "" {
		l.logger.Debug("Skipping served model check", zap.String("served", info.ModelID), zap.String("configured", weights.String()))
		return nil
	}
	if info.ModelID != want {
		return fmt.Errorf("%w: server runs %q, configuration expects %q", service.ErrModelLoad, info.ModelID, want)
	}
	return nil
}
