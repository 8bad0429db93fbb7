package generativeAI

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const StrategyHostedInference = "hosted_inference"

var _ Strategy = (*HostedInference)(nil)

// HostedInference calls the Hugging Face Inference API for a text2text model.
type HostedInference struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewHostedInference(baseURL, model, apiKey string) *HostedInference {
	return &HostedInference{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (h *HostedInference) Name() string { return StrategyHostedInference }

type inferenceParameters struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
}

type inferencePayload struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

func (h *HostedInference) Generate(ctx context.Context, req Request) (string, error) {
	if h.apiKey == "" {
		return "", errors.New("hugging face API key is missing")
	}

	body, err := json.Marshal(inferencePayload{
		Inputs:     req.Prompt,
		Parameters: inferenceParameters{MaxLength: 500, Temperature: 0.7},
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/"+h.model, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading inference response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("inference API returned status %d", resp.StatusCode)
	}
	return parseInferenceResponse(data)
}

// parseInferenceResponse takes generated_text from the first list element,
// or from an object response, falling back to the object's raw JSON.
func parseInferenceResponse(data []byte) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", errors.New("inference response is not valid JSON")
	}
	res := gjson.ParseBytes(data)
	switch {
	case res.IsArray():
		text := res.Get("0.generated_text")
		if !text.Exists() {
			return "", errors.New("inference response has no generated_text")
		}
		return text.String(), nil
	case res.IsObject():
		if text := res.Get("generated_text"); text.Exists() {
			return text.String(), nil
		}
		return res.Raw, nil
	default:
		return res.String(), nil
	}
}
