package analyze

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storyreel/llm"
	"storyreel/prompts"
	"storyreel/types"
)

// IDGenerator assigns ids to extracted elements. Ids are a local concern,
// never requested from the model.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the production IDGenerator.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// Extractor pulls the consistent-element set out of the raw text.
type Extractor struct {
	llm    Completer
	ids    IDGenerator
	logger *zap.Logger
}

// NewExtractor builds a consistency adapter.
func NewExtractor(llm Completer, ids IDGenerator, logger *zap.Logger) *Extractor {
	return &Extractor{llm: llm, ids: ids, logger: logger.Named("elements")}
}

type elementJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Run extracts consistent elements and assigns each a locally generated id.
// Unparseable model output is a *types.ParseError.
func (e *Extractor) Run(ctx context.Context, text string) ([]types.ConsistentElement, error) {
	content, err := e.llm.Complete(ctx, prompts.ElementsSystem, prompts.ElementsUser(text))
	if err != nil {
		return nil, err
	}

	var raw []elementJSON
	if err := llm.DecodeJSON(content, &raw); err != nil {
		return nil, &types.ParseError{Stage: "elements", Raw: content, Err: err}
	}

	elements := make([]types.ConsistentElement, 0, len(raw))
	for _, el := range raw {
		elements = append(elements, types.ConsistentElement{
			ID:          e.ids.NewID(),
			Name:        strings.TrimSpace(el.Name),
			Description: strings.TrimSpace(el.Description),
		})
	}

	e.logger.Info("consistent elements extracted", zap.Int("count", len(elements)))
	return elements, nil
}
