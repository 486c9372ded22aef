package providers

import (
	"fmt"
	"strings"

	"exambank/internal/config"
)

// Manager owns the configured completion and embedding providers. The
// pipeline runs each batch against a single provider of each kind; extra
// entries in the list are spares selectable by name.
type Manager struct {
	completors []namedCompletor
	embedders  []namedEmbedder
}

type namedCompletor struct {
	Ref      ProviderRef
	Provider Completor
}

type namedEmbedder struct {
	Ref      ProviderRef
	Provider Embedder
}

func NewManager(cfg config.Config) (*Manager, error) {
	m := &Manager{}
	for _, ref := range ParseProviderList(cfg.LLMProviders) {
		p, err := buildProvider(ref, cfg.EmbedDim)
		if err != nil {
			return nil, err
		}
		c, ok := p.(Completor)
		if !ok {
			return nil, fmt.Errorf("provider %s does not support completions", ref.Raw)
		}
		m.completors = append(m.completors, namedCompletor{Ref: ref, Provider: c})
	}
	for _, ref := range ParseProviderList(cfg.EmbedProviders) {
		p, err := buildProvider(ref, cfg.EmbedDim)
		if err != nil {
			return nil, err
		}
		e, ok := p.(Embedder)
		if !ok {
			return nil, fmt.Errorf("provider %s does not support embeddings", ref.Raw)
		}
		m.embedders = append(m.embedders, namedEmbedder{Ref: ref, Provider: e})
	}
	return m, nil
}

func (m *Manager) Completor() Completor {
	return m.completors[0].Provider
}

func (m *Manager) Embedder() Embedder {
	return m.embedders[0].Provider
}

func (m *Manager) CompletorByName(name string) (Completor, bool) {
	target := strings.ToLower(strings.TrimSpace(name))
	for i := range m.completors {
		if strings.ToLower(m.completors[i].Ref.Name) == target {
			return m.completors[i].Provider, true
		}
	}
	return nil, false
}

func buildProvider(ref ProviderRef, dim int) (any, error) {
	switch strings.ToLower(ref.Name) {
	case "mock":
		return NewMockProvider(dim), nil
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}
