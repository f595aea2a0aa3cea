package entity

// ModelType is the architecture family of a checkpoint
type ModelType string

const (
	ModelTypeBart ModelType = "bart"
)

// UsesMerges reports whether the architecture's tokenizer needs a merges file
func (t ModelType) UsesMerges() bool {
	switch t {
	case ModelTypeBart:
		return true
	default:
		return false
	}
}

// ModelConfig selects which pretrained classifier to build
type ModelConfig int

const (
	// ModelConfigDefault uses the library default configuration
	ModelConfigDefault ModelConfig = iota
	// ModelConfigBartMNLI names BART large fine-tuned on MultiNLI
	ModelConfigBartMNLI
)

func (c ModelConfig) String() string {
	switch c {
	case ModelConfigDefault:
		return "default"
	case ModelConfigBartMNLI:
		return "bart-mnli"
	default:
		return "unknown"
	}
}

// Device is a compute device override
type Device string

const (
	DeviceCPU  Device = "cpu"
	DeviceCUDA Device = "cuda"
)

// Precision is a numeric precision override
type Precision string

const (
	PrecisionFP32 Precision = "fp32"
	PrecisionFP16 Precision = "fp16"
)

// ClassificationConfig holds everything needed to load a zero-shot classifier.
// Treat it as immutable once built.
type ClassificationConfig struct {
	ModelType      ModelType
	ModelResource  Resource
	ConfigResource Resource
	VocabResource  Resource
	MergesResource *Resource
	LowerCase      bool
	Device         *Device
	Precision      *Precision
}

// NewClassificationConfig builds a configuration from its parts
func NewClassificationConfig(
	modelType ModelType,
	model, config, vocab Resource,
	merges *Resource,
	lowerCase bool,
	device *Device,
	precision *Precision,
) ClassificationConfig {
	return ClassificationConfig{
		ModelType:      modelType,
		ModelResource:  model,
		ConfigResource: config,
		VocabResource:  vocab,
		MergesResource: merges,
		LowerCase:      lowerCase,
		Device:         device,
		Precision:      precision,
	}
}

// DefaultClassificationConfig is the library default: BART-MNLI, cased
func DefaultClassificationConfig() ClassificationConfig {
	merges := BartMNLIMergesResource
	return NewClassificationConfig(
		ModelTypeBart,
		BartMNLIModelResource,
		BartMNLIConfigResource,
		BartMNLIVocabResource,
		&merges,
		false,
		nil,
		nil,
	)
}
