package backends

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/notesmith/autotitle/internal/config"
)

const anthropicVersion = "2023-06-01"

// table is the static backend registry, constructed once at process start
// and immutable thereafter.
var table = map[string]*Descriptor{
	"openai": {
		ID:                      "openai",
		RequiresCredential:      true,
		BuildGenerationRequest:  buildOpenAIGeneration,
		ParseGenerationResponse: parseOpenAIGeneration,
		BuildCatalogRequest:     buildOpenAICatalog,
		ParseCatalogResponse:    parseOpenAICatalog,
	},
	"openrouter": {
		ID:                      "openrouter",
		RequiresCredential:      true,
		BuildGenerationRequest:  buildOpenAIGeneration,
		ParseGenerationResponse: parseOpenAIGeneration,
		BuildCatalogRequest:     buildOpenAICatalog,
		ParseCatalogResponse:    parseOpenAICatalog,
	},
	"anthropic": {
		ID:                      "anthropic",
		RequiresCredential:      true,
		BuildGenerationRequest:  buildAnthropicGeneration,
		ParseGenerationResponse: parseAnthropicGeneration,
		BuildCatalogRequest:     buildAnthropicCatalog,
		ParseCatalogResponse:    parseOpenAICatalog,
	},
	"ollama": {
		ID:                      "ollama",
		RequiresCredential:      false,
		BuildGenerationRequest:  buildOllamaGeneration,
		ParseGenerationResponse: parseOllamaGeneration,
		BuildCatalogRequest:     buildOllamaCatalog,
		ParseCatalogResponse:    parseOllamaCatalog,
	},
	"lmstudio": {
		ID:                      "lmstudio",
		RequiresCredential:      false,
		BuildGenerationRequest:  buildLMStudioGeneration,
		ParseGenerationResponse: parseOpenAIGeneration,
		BuildCatalogRequest:     buildLMStudioCatalog,
		ParseCatalogResponse:    parseOpenAICatalog,
	},
}

func baseURL(settings config.BackendSettings) string {
	return strings.TrimRight(settings.BaseURL, "/")
}

func bearerHeaders(settings config.BackendSettings) map[string]string {
	headers := map[string]string{"Content-Type": "application/json"}
	if settings.APIKey != "" {
		headers["Authorization"] = "Bearer " + settings.APIKey
	}
	return headers
}

// OpenAI-compatible chat completions (openai, openrouter, lmstudio).

func buildOpenAIGeneration(prompt string, cfg config.GenerationConfig, settings config.BackendSettings) (*Request, error) {
	payload := map[string]interface{}{
		"model": settings.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": cfg.Temperature,
		"stream":      false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	return &Request{
		Method:  "POST",
		URL:     baseURL(settings) + "/chat/completions",
		Headers: bearerHeaders(settings),
		Body:    body,
	}, nil
}

func parseOpenAIGeneration(body []byte) (string, error) {
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

func buildOpenAICatalog(settings config.BackendSettings) *Request {
	return &Request{
		Method:  "GET",
		URL:     baseURL(settings) + "/models",
		Headers: bearerHeaders(settings),
	}
}

func parseOpenAICatalog(body []byte) ([]string, error) {
	var result struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}

	models := make([]string, 0, len(result.Data))
	for _, entry := range result.Data {
		models = append(models, entry.ID)
	}

	return dedupeAndSort(models), nil
}

// Anthropic messages API.

func buildAnthropicGeneration(prompt string, cfg config.GenerationConfig, settings config.BackendSettings) (*Request, error) {
	payload := map[string]interface{}{
		"model":      settings.Model,
		"max_tokens": 256,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": cfg.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	return &Request{
		Method: "POST",
		URL:    baseURL(settings) + "/v1/messages",
		Headers: map[string]string{
			"Content-Type":      "application/json",
			"x-api-key":         settings.APIKey,
			"anthropic-version": anthropicVersion,
		},
		Body: body,
	}, nil
}

func parseAnthropicGeneration(body []byte) (string, error) {
	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	for _, block := range result.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("no text content in response")
}

func buildAnthropicCatalog(settings config.BackendSettings) *Request {
	return &Request{
		Method: "GET",
		URL:    baseURL(settings) + "/v1/models",
		Headers: map[string]string{
			"x-api-key":         settings.APIKey,
			"anthropic-version": anthropicVersion,
		},
	}
}

// Ollama local runtime.

func buildOllamaGeneration(prompt string, cfg config.GenerationConfig, settings config.BackendSettings) (*Request, error) {
	payload := map[string]interface{}{
		"model": settings.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"stream": false,
		"options": map[string]interface{}{
			"temperature": cfg.Temperature,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	return &Request{
		Method:  "POST",
		URL:     baseURL(settings) + "/api/chat",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	}, nil
}

func parseOllamaGeneration(body []byte) (string, error) {
	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return result.Message.Content, nil
}

func buildOllamaCatalog(settings config.BackendSettings) *Request {
	return &Request{
		Method: "GET",
		URL:    baseURL(settings) + "/api/tags",
	}
}

func parseOllamaCatalog(body []byte) ([]string, error) {
	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}

	models := make([]string, 0, len(result.Models))
	for _, entry := range result.Models {
		models = append(models, entry.Name)
	}

	return dedupeAndSort(models), nil
}

// LM Studio exposes an OpenAI-compatible API under /v1.

func buildLMStudioGeneration(prompt string, cfg config.GenerationConfig, settings config.BackendSettings) (*Request, error) {
	v1 := settings
	v1.BaseURL = baseURL(settings) + "/v1"
	return buildOpenAIGeneration(prompt, cfg, v1)
}

func buildLMStudioCatalog(settings config.BackendSettings) *Request {
	v1 := settings
	v1.BaseURL = baseURL(settings) + "/v1"
	return buildOpenAICatalog(v1)
}
