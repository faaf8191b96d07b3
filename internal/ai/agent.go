package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"quote-drafter/internal/core"
	"quote-drafter/internal/metrics"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
	"github.com/rs/zerolog"
)

const serviceName = "ai"

var (
	// ErrEmptyResponse is returned when the model answers with no usable content.
	ErrEmptyResponse = errors.New("empty response content")
	// ErrNotConfigured is returned when no API key was provided.
	ErrNotConfigured = errors.New("OPENAI_API_KEY is not set")
)

// DraftService generates quote text with a language model.
type DraftService interface {
	DraftText(ctx context.Context, req DraftTextRequest) (string, error)
	SuggestImprovements(ctx context.Context, q *core.Quote) ([]string, error)
	DraftItems(ctx context.Context, description string) ([]core.LineItem, error)
}

// DraftTextRequest is either a free-text Prompt or the quote fields to write
// notes for. When Prompt is set the other fields are added as context.
type DraftTextRequest struct {
	Prompt       string          `json:"prompt"`
	CompanyName  string          `json:"companyName"`
	CustomerName string          `json:"customerName"`
	Currency     string          `json:"currency"`
	Items        []core.LineItem `json:"items"`
	Notes        string          `json:"notes"`
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Agent calls the OpenAI Responses API with a strict JSON schema per operation.
type Agent struct {
	model   string
	timeout time.Duration
	log     zerolog.Logger
	metrics *metrics.Metrics
	// complete sends params and returns the output text. Replaced in tests.
	complete func(ctx context.Context, params responses.ResponseNewParams) (string, error)
}

func NewAgent(cfg Config, log zerolog.Logger, m *metrics.Metrics) *Agent {
	a := &Agent{
		model:   cfg.Model,
		timeout: cfg.Timeout,
		log:     log.With().Str("component", "ai").Logger(),
		metrics: m,
	}
	if a.model == "" {
		a.model = string(shared.ChatModelGPT4oMini)
	}
	if cfg.APIKey == "" {
		a.complete = func(context.Context, responses.ResponseNewParams) (string, error) {
			return "", ErrNotConfigured
		}
		return a
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	a.complete = func(ctx context.Context, params responses.ResponseNewParams) (string, error) {
		resp, err := client.Responses.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("openai responses error: %w", err)
		}
		return resp.OutputText(), nil
	}
	return a
}

type draftTextOutput struct {
	Text string `json:"text" jsonschema:"description=The drafted quote notes as plain text"`
}

type suggestionsOutput struct {
	Suggestions []string `json:"suggestions" jsonschema:"description=Short actionable improvements to the quote"`
}

type draftedItem struct {
	Description string `json:"description" jsonschema:"description=What is being sold"`
	Quantity    string `json:"quantity" jsonschema:"description=Decimal quantity such as 2 or 1.5"`
	Unit        string `json:"unit" jsonschema:"description=Unit of measure such as piece or hour"`
	UnitPrice   string `json:"unitPrice" jsonschema:"description=Decimal price per unit without currency symbol"`
	Tax         string `json:"tax" jsonschema:"description=Tax rate percentage between 0 and 100"`
}

type itemsOutput struct {
	Items []draftedItem `json:"items"`
}

func (a *Agent) DraftText(ctx context.Context, req DraftTextRequest) (string, error) {
	var out draftTextOutput
	if err := a.run(ctx, "draft", draftTextPrompt(req), "quote_notes", "Drafted notes for a sales quote", &out); err != nil {
		return "", err
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", a.fail("draft", ErrEmptyResponse)
	}
	return text, nil
}

func (a *Agent) SuggestImprovements(ctx context.Context, q *core.Quote) ([]string, error) {
	var out suggestionsOutput
	if err := a.run(ctx, "suggest", suggestPrompt(q), "quote_suggestions", "Suggestions for improving a sales quote", &out); err != nil {
		return nil, err
	}
	suggestions := make([]string, 0, len(out.Suggestions))
	for _, s := range out.Suggestions {
		if s = strings.TrimSpace(s); s != "" {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions, nil
}

// DraftItems proposes line items for a free-text description of the work.
// Every proposed item goes through the same defaults and validation as user
// input; a model answer that fails validation is an external service error.
func (a *Agent) DraftItems(ctx context.Context, description string) ([]core.LineItem, error) {
	var out itemsOutput
	if err := a.run(ctx, "items", itemsPrompt(description), "quote_items", "Proposed line items for a sales quote", &out); err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, a.fail("items", ErrEmptyResponse)
	}
	items := make([]core.LineItem, 0, len(out.Items))
	for _, it := range out.Items {
		rec := core.Record{"description": strings.TrimSpace(it.Description)}
		for key, v := range map[string]string{"quantity": it.Quantity, "unit": it.Unit, "unitPrice": it.UnitPrice, "tax": it.Tax} {
			if v = strings.TrimSpace(v); v != "" {
				rec[key] = v
			}
		}
		item, err := core.ValidateLineItem(core.ApplyLineItemDefaults(rec))
		if err != nil {
			return nil, a.fail("items", fmt.Errorf("model proposed an invalid item: %w", err))
		}
		items = append(items, *item)
	}
	return items, nil
}

// run sends prompt with a strict schema reflected from out and decodes the answer into out.
func (a *Agent) run(ctx context.Context, op, prompt, schemaName, schemaDesc string, out any) error {
	schema, err := generateSchema(out)
	if err != nil {
		return fmt.Errorf("build %s schema: %w", op, err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(a.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        schemaName,
					Strict:      param.NewOpt(true),
					Schema:      schema,
					Description: param.NewOpt(schemaDesc),
				},
			},
		},
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	content, err := a.complete(ctx, params)
	if err != nil {
		return a.fail(op, err)
	}
	if strings.TrimSpace(content) == "" {
		return a.fail(op, ErrEmptyResponse)
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return a.fail(op, fmt.Errorf("failed to parse completion: %w", err))
	}
	a.metrics.AICall(op, nil)
	a.log.Debug().Str("op", op).Dur("took", time.Since(start)).Msg("ai call ok")
	return nil
}

func (a *Agent) fail(op string, err error) error {
	a.metrics.AICall(op, err)
	a.log.Warn().Err(err).Str("op", op).Msg("ai call failed")
	return &core.ExternalServiceError{Service: serviceName, Err: err}
}

func generateSchema(v any) (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaJSON, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return schemaMap, nil
}
