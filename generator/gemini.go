// Package generator wraps the external generative model that produces the
// multiple-choice option sets for new associations.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"
)

// Option is one generated candidate answer. Order follows the model's output.
type Option struct {
	Label   string
	Meaning string
	Correct bool
}

// Generator is a single best-effort call with no internal retry.
type Generator interface {
	Generate(ctx context.Context, word string, n int) ([]Option, error)
}

// GenerationError means the model returned output without the required shape.
// Association creation aborts when it occurs.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return "generation failed: " + e.Reason
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// --- Gemini request/response shapes ---

type geminiReq struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
}

type geminiResp struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Gemini calls the Google generative language API.
type Gemini struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewGemini(apiKey, baseURL string) *Gemini {
	return &Gemini{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   "gemini-2.5-flash",
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

const promptTemplate = `This is an association game. Generate a JSON object with a "vocabulary" key and an "options" key, where "options" maps each option word to the meaning of that word.
The game is for the user to associate similar words with the given vocabulary.
Generate %d options based on the vocabulary.

For the correct option:
- The key (word) must be in UPPERCASE
- The value must be its meaning/definition
- It must be a synonym of the vocabulary

For the incorrect options:
- The keys (words) must be in lowercase
- The values must be their meanings/definitions
- They must NOT be synonyms of the vocabulary

The vocabulary is: %s
Return only the JSON object.`

// Generate asks the model for n options for word. Exactly one returned option
// is correct, marked by the model's uppercase-key convention.
func (g *Gemini) Generate(ctx context.Context, word string, n int) ([]Option, error) {
	if g.apiKey == "" {
		return nil, &GenerationError{Reason: "GEMINI_API_KEY not configured"}
	}

	reqBody := geminiReq{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: fmt.Sprintf(promptTemplate, n, word)}}},
		},
		GenerationConfig: geminiGenConfig{
			ResponseMimeType: "application/json",
			Temperature:      0.5,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &GenerationError{Reason: "model unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &GenerationError{Reason: fmt.Sprintf("model returned status %d", resp.StatusCode)}
	}

	var apiResp geminiResp
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, &GenerationError{Reason: "unreadable model response", Err: err}
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return nil, &GenerationError{Reason: "model returned no candidates"}
	}

	content := cleanJSON(apiResp.Candidates[0].Content.Parts[0].Text)
	return parseOptions([]byte(content))
}

// parseOptions decodes the model payload while preserving the order options
// appear in, and enforces the exactly-one-correct invariant.
func parseOptions(content []byte) ([]Option, error) {
	var payload struct {
		Options json.RawMessage `json:"options"`
	}
	if err := json.Unmarshal(content, &payload); err != nil {
		return nil, &GenerationError{Reason: "malformed model output", Err: err}
	}
	if len(payload.Options) == 0 {
		return nil, &GenerationError{Reason: "model output missing options"}
	}

	dec := json.NewDecoder(bytes.NewReader(payload.Options))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, &GenerationError{Reason: "options is not an object", Err: err}
	}

	var options []Option
	correct := 0
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &GenerationError{Reason: "malformed options object", Err: err}
		}
		label, ok := keyTok.(string)
		if !ok || label == "" {
			return nil, &GenerationError{Reason: "empty option label"}
		}

		var meaning string
		if err := dec.Decode(&meaning); err != nil {
			return nil, &GenerationError{Reason: "option meaning is not a string", Err: err}
		}
		if meaning == "" {
			return nil, &GenerationError{Reason: "empty option meaning"}
		}

		isCorrect := isUpper(label)
		if isCorrect {
			correct++
		}
		options = append(options, Option{Label: label, Meaning: meaning, Correct: isCorrect})
	}

	if len(options) == 0 {
		return nil, &GenerationError{Reason: "model returned no options"}
	}
	if correct != 1 {
		return nil, &GenerationError{Reason: fmt.Sprintf("expected exactly one uppercase option, got %d", correct)}
	}
	return options, nil
}

// isUpper mirrors the uppercase-key convention: every cased rune is upper and
// at least one cased rune exists.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func cleanJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
