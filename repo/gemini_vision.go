package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"CourierBot/model"

	"github.com/rs/zerolog/log"
	genai "google.golang.org/genai"
)

const visionService = "vision"

// GeminiVision extracts order fields from a photo with a Gemini model.
type GeminiVision struct {
	cli   *genai.Client
	model string
}

func NewGeminiVision(ctx context.Context, apiKey, modelName string) (*GeminiVision, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %w", err)
	}
	return &GeminiVision{cli: cli, model: modelName}, nil
}

// Extract sends the image with the schema prompt and returns the flat key map
// the model answered with.
func (g *GeminiVision) Extract(ctx context.Context, image []byte, prompt string) (map[string]string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{Data: image, MIMEType: "image/jpeg"}},
		}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		log.Error().Err(err).Str("service", visionService).Str("model", g.model).Msg("generate content failed")
		return nil, model.NewExternalServiceError(visionService, "extract", "The image could not be analysed right now.", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &model.ParseError{Reason: "No details could be read from the image."}
	}
	return ParseExtraction(resp.Candidates[0].Content.Parts[0].Text)
}

// ParseExtraction decodes a model reply into a flat string map. Markdown code
// fences around the JSON are ignored and non-string values are rendered as
// text.
func ParseExtraction(reply string) (map[string]string, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)

	var raw map[string]any
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		return nil, &model.ParseError{Reason: "The details in the image could not be understood. Please try a clearer picture."}
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out, nil
}
