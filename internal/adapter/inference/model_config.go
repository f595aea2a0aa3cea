package inference

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/krywicki/zeroshot/internal/domain/service"
)

// modelConfig is the subset of a checkpoint's config.json the loader needs
type modelConfig struct {
	ModelType             string            `json:"model_type"`
	ID2Label              map[string]string `json:"id2label"`
	Label2ID              map[string]int    `json:"label2id"`
	MaxPositionEmbeddings int               `json:"max_position_embeddings"`
}

// NLILabels names the classes the entailment score is computed from
type NLILabels struct {
	Entailment    string
	Contradiction string
}

func readModelConfig(path string) (*modelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read model config: %v", service.ErrModelLoad, err)
	}

	var cfg modelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse model config %s: %v", service.ErrModelLoad, path, err)
	}
	return &cfg, nil
}

// classLabels returns the class names ordered by id
func (c *modelConfig) classLabels() ([]string, error) {
	byID := make(map[int]string, len(c.ID2Label))
	for key, label := range c.ID2Label {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid id2label key %q", service.ErrModelLoad, key)
		}
		byID[id] = label
	}
	if len(byID) == 0 {
		for label, id := range c.Label2ID {
			byID[id] = label
		}
	}
	if len(byID) == 0 {
		return nil, fmt.Errorf("%w: model config declares no classes", service.ErrModelLoad)
	}

	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = byID[id]
	}
	return labels, nil
}

// nliLabels finds the entailment and contradiction classes. Without
// recognizable names the last class is taken as entailment and the first
// as contradiction.
func (c *modelConfig) nliLabels() (NLILabels, error) {
	labels, err := c.classLabels()
	if err != nil {
		return NLILabels{}, err
	}
	if len(labels) < 2 {
		return NLILabels{}, fmt.Errorf("%w: NLI model needs at least two classes, got %d", service.ErrModelLoad, len(labels))
	}

	out := NLILabels{
		Entailment:    labels[len(labels)-1],
		Contradiction: labels[0],
	}
	for _, label := range labels {
		lower := strings.ToLower(label)
		switch {
		case strings.HasPrefix(lower, "entail"):
			out.Entailment = label
		case strings.HasPrefix(lower, "contra"):
			out.Contradiction = label
		}
	}
	return out, nil
}
