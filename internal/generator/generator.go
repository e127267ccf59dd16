// Package generator selects and constructs the text-completion backend
// used to compose grounded answers.
package generator

import (
	"errors"
	"fmt"
	"os"
	"time"

	"rag-assistant/internal/domain"
	"rag-assistant/internal/generator/google"
	"rag-assistant/internal/generator/openai"
)

// Supported backends, in credential fallback priority order.
const (
	BackendOpenAI = "openai"
	BackendGroq   = "groq"
	BackendGoogle = "google"
)

// ErrNoCredentials is returned when no backend credential can be resolved.
// It is fatal at startup: the assistant must not serve queries without a
// working generator.
var ErrNoCredentials = errors.New("no generator credentials available; set one of OPENAI_API_KEY, GROQ_API_KEY, GOOGLE_API_KEY")

// BackendOptions configures one generator backend. The API key is resolved
// from the environment variable named by APIKeyEnv.
type BackendOptions struct {
	APIKeyEnv string
	Model     string
	BaseURL   string
}

// Options selects the generator backend. When Backend is empty the first
// backend with a resolvable credential wins, in the order openai, groq,
// google. Lookup overrides credential resolution (tests); nil means
// os.Getenv.
type Options struct {
	Backend string
	OpenAI  BackendOptions
	Groq    BackendOptions
	Google  BackendOptions
	Timeout time.Duration
	Lookup  func(string) string
}

func (o *Options) applyDefaults() {
	if o.Lookup == nil {
		o.Lookup = os.Getenv
	}
	if o.OpenAI.APIKeyEnv == "" {
		o.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if o.OpenAI.Model == "" {
		o.OpenAI.Model = "gpt-4o-mini"
	}
	if o.Groq.APIKeyEnv == "" {
		o.Groq.APIKeyEnv = "GROQ_API_KEY"
	}
	if o.Groq.Model == "" {
		o.Groq.Model = "llama-3.1-8b-instant"
	}
	if o.Groq.BaseURL == "" {
		o.Groq.BaseURL = "https://api.groq.com/openai/v1"
	}
	if o.Google.APIKeyEnv == "" {
		o.Google.APIKeyEnv = "GOOGLE_API_KEY"
	}
	if o.Google.Model == "" {
		o.Google.Model = "gemini-2.0-flash"
	}
}

// New builds the configured generator backend.
func New(opts Options) (domain.Generator, error) {
	opts.applyDefaults()
	backend := opts.Backend
	if backend == "" {
		for _, candidate := range []struct {
			name   string
			keyEnv string
		}{
			{BackendOpenAI, opts.OpenAI.APIKeyEnv},
			{BackendGroq, opts.Groq.APIKeyEnv},
			{BackendGoogle, opts.Google.APIKeyEnv},
		} {
			if opts.Lookup(candidate.keyEnv) != "" {
				backend = candidate.name
				break
			}
		}
		if backend == "" {
			return nil, ErrNoCredentials
		}
	}
	switch backend {
	case BackendOpenAI:
		key := opts.Lookup(opts.OpenAI.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("openai backend selected but %s is empty: %w", opts.OpenAI.APIKeyEnv, ErrNoCredentials)
		}
		return openai.NewClient(openai.Config{
			Name:    BackendOpenAI,
			BaseURL: opts.OpenAI.BaseURL,
			APIKey:  key,
			Model:   opts.OpenAI.Model,
			Timeout: opts.Timeout,
		}), nil
	case BackendGroq:
		key := opts.Lookup(opts.Groq.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("groq backend selected but %s is empty: %w", opts.Groq.APIKeyEnv, ErrNoCredentials)
		}
		return openai.NewClient(openai.Config{
			Name:    BackendGroq,
			BaseURL: opts.Groq.BaseURL,
			APIKey:  key,
			Model:   opts.Groq.Model,
			Timeout: opts.Timeout,
		}), nil
	case BackendGoogle:
		key := opts.Lookup(opts.Google.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("google backend selected but %s is empty: %w", opts.Google.APIKeyEnv, ErrNoCredentials)
		}
		return google.NewClient(google.Config{
			BaseURL: opts.Google.BaseURL,
			APIKey:  key,
			Model:   opts.Google.Model,
			Timeout: opts.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown generator backend: %s", backend)
	}
}
