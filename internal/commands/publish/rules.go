package publishcmd

import (
	"strings"

	"github.com/goliatone/go-publish/internal/bulk"
	"github.com/goliatone/go-publish/internal/domain"
)

func kindValues() []any {
	kinds := domain.Kinds()
	values := make([]any, 0, len(kinds))
	for _, kind := range kinds {
		values = append(values, string(kind))
	}
	return values
}

func strategyValues() []any {
	return []any{string(bulk.StrategyDraft), string(bulk.StrategySchedule)}
}

// optionalKind parses a possibly empty kind. Empty means every kind.
func optionalKind(raw string) (*domain.Kind, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	kind, err := domain.ParseKind(raw)
	if err != nil {
		return nil, err
	}
	return &kind, nil
}
