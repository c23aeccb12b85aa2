// Package provider adapts an OpenAI-compatible Responses endpoint (OpenAI itself,
// or a gateway such as OpenRouter) to journal.Provider, and holds the caller-side
// retry helper.
package provider

import (
	"context"
	"errors"
	"net/http"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/theimaginaryfoundation/bluum-journal/journal"
)

// DefaultModel is used when OpenAI.Model is empty.
const DefaultModel = "gpt-5-mini"

const defaultMaxOutputTokens = 600

// resultRecord mirrors journal.Result for schema generation.
type resultRecord struct {
	Category     journal.Category `json:"category" jsonschema:"required"`
	ResponseText string           `json:"response_text" jsonschema:"required" jsonschema_description:"Supportive reply of at most 100 words that refers back to the current prompt."`
}

// JSONSchemaExtend restricts category to journal.Categories so the schema and
// the decoder share one list.
func (resultRecord) JSONSchemaExtend(s *jsonschema.Schema) {
	prop, ok := s.Properties.Get("category")
	if !ok {
		return
	}
	cats := journal.Categories()
	prop.Enum = make([]any, len(cats))
	for i, c := range cats {
		prop.Enum[i] = string(c)
	}
}

var resultSchema = MustGenerateSchema[resultRecord]()

// ResultSchema returns the structured output schema sent with every call.
// Callers must not modify it.
func ResultSchema() map[string]any {
	return resultSchema
}

// Options configures NewClient.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a client that is safe to share across goroutines. SDK-level
// retries are disabled; retrying is left to the caller (see Retry).
func NewClient(opts Options) *openai.Client {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	client := openai.NewClient(reqOpts...)
	return &client
}

// OpenAI implements journal.Provider on the Responses API with a strict JSON schema.
type OpenAI struct {
	Client          *openai.Client
	Model           string
	MaxOutputTokens int64
}

var _ journal.Provider = OpenAI{}

func (p OpenAI) Complete(ctx context.Context, c journal.Completion) (string, error) {
	if p.Client == nil {
		return "", errors.New("provider: openai client is nil")
	}
	model := p.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := p.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "JournalClassification",
			Schema:      resultSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Journal entry category and reply"),
			Type:        "json_schema",
		},
	}
	params := responses.ResponseNewParams{
		Model:           model,
		MaxOutputTokens: openai.Int(maxTokens),
		Instructions:    openai.String(c.Instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(c.Input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := p.Client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}
