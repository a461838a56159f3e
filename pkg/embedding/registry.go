package embedding

import (
	"fmt"

	"clara-backend/internal/config"

	"github.com/patrickmn/go-cache"
)

// Registry hands out provider instances keyed by "provider/model",
// constructing each lazily on first use and reusing it afterwards. Handles
// for the same key are substitutable, so a lost race on first access just
// discards a duplicate instance.
type Registry struct {
	cfg       *config.AIConfig
	instances *cache.Cache
}

func NewRegistry(cfg *config.AIConfig) *Registry {
	return &Registry{
		cfg:       cfg,
		instances: cache.New(cache.NoExpiration, 0),
	}
}

// Default returns the provider selected by configuration.
func (r *Registry) Default() (Provider, error) {
	return r.Get(r.cfg.EmbeddingProvider, "")
}

// Put seeds the registry with an already-built provider. Later Get calls
// for the same key reuse it instead of constructing one.
func (r *Registry) Put(name, model string, provider Provider) {
	r.instances.Set(name+"/"+model, provider, cache.NoExpiration)
}

// Get returns the cached provider for name/model, creating it if absent.
func (r *Registry) Get(name, model string) (Provider, error) {
	key := name + "/" + model
	if x, found := r.instances.Get(key); found {
		return x.(Provider), nil
	}

	provider, err := r.build(name, model)
	if err != nil {
		return nil, err
	}

	// Add fails when another goroutine got here first; their instance wins.
	_ = r.instances.Add(key, provider, cache.NoExpiration)

	x, _ := r.instances.Get(key)
	return x.(Provider), nil
}

func (r *Registry) build(name, model string) (Provider, error) {
	switch name {
	case "ollama":
		if model == "" {
			model = r.cfg.OllamaModel
		}
		return NewOllamaProvider(r.cfg.OllamaBaseURL, model), nil
	case "openai":
		if model == "" {
			model = r.cfg.OpenAIModel
		}
		return NewOpenAIProvider(r.cfg.OpenAIAPIKey, model), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", name)
	}
}
