package llm

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ledgerline/ingest-cli/internal/model"
)

const systemPrompt = `You extract structured fields from financial documents
(invoices, bills, receipts). Respond with a single JSON object and nothing
else: no prose, no markdown fences. Omit fields you cannot find; never
invent values. Monetary amounts are strings exactly as printed. Dates keep
their printed format. Include a "confidence" object mapping each returned
field name to a value between 0 and 1.`

var kindFields = map[model.DocumentKind]string{
	model.KindInvoice: `vendor_name, invoice_number, date, due_date, currency, subtotal, tax_total, total, notes, line_items`,
	model.KindReceipt: `vendor_name, date, currency, total, tax_total, payment_method, category, notes, line_items`,
}

// AnthropicConfig configures the Claude-backed provider.
type AnthropicConfig struct {
	Key       string
	Model     string
	MaxTokens int
}

// Anthropic implements Provider using the Anthropic SDK.
type Anthropic struct {
	client sdk.Client
	cfg    AnthropicConfig
}

// NewAnthropic creates a Claude-backed extraction provider.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	return &Anthropic{
		client: sdk.NewClient(option.WithAPIKey(cfg.Key)),
		cfg:    cfg,
	}
}

var _ Provider = (*Anthropic)(nil)

// Extract sends the document text to Claude and parses the JSON reply
// leniently. The result's Meta records provider, model and duration.
func (a *Anthropic) Extract(ctx context.Context, text string, kind model.DocumentKind, locale string) (*model.ExtractionResult, error) {
	fields, ok := kindFields[kind]
	if !ok {
		fields = kindFields[model.KindInvoice]
	}

	user := fmt.Sprintf(
		"Document type hint: %s. Document locale: %s.\nExtract these fields when present: %s.\n\nDocument text:\n%s",
		kind, locale, fields, text,
	)

	start := time.Now()
	msg, err := a.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(a.cfg.Model),
		MaxTokens: int64(a.cfg.MaxTokens),
		System:    []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(user)),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "llm: create message")
	}

	var reply string
	for _, block := range msg.Content {
		if block.Type == "text" {
			reply += block.Text
		}
	}

	result, warnings, err := ParseExtraction([]byte(reply))
	if err != nil {
		return nil, eris.Wrap(err, "llm: parse model output")
	}
	if len(warnings) > 0 {
		zap.L().Debug("sanitized model output",
			zap.String("model", a.cfg.Model),
			zap.Strings("warnings", warnings),
		)
	}

	result.Meta = &model.ExtractionMeta{
		Mode:       "text",
		Provider:   "anthropic",
		Model:      string(msg.Model),
		Locale:     locale,
		Warnings:   warnings,
		DurationMS: time.Since(start).Milliseconds(),
	}
	return result, nil
}
