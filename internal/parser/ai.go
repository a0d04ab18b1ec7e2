package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/asharma-dev/statement-pipeline/internal/categorize"
	"github.com/asharma-dev/statement-pipeline/internal/domain"
	"github.com/asharma-dev/statement-pipeline/internal/intake"
	"github.com/asharma-dev/statement-pipeline/internal/normalize"
)

// AIExtractor is the last parser in the chain. It asks Gemini for a
// strict JSON array of transactions, in text mode when the document has
// usable text and in vision mode (inline image/PDF bytes) when it does
// not.
type AIExtractor struct {
	model   string
	timeout time.Duration

	// generate is swapped out in tests; nil means call Gemini.
	generate func(ctx context.Context, contents []*genai.Content) (string, error)
}

// NewAIExtractor builds an extractor for the given model name.
func NewAIExtractor(model string, timeout time.Duration) *AIExtractor {
	return &AIExtractor{model: model, timeout: timeout}
}

func (e *AIExtractor) Name() string { return "ai_fallback" }

func buildPrompt(categories []string) string {
	return "You are a bank statement transaction extractor.\n\n" +
		"Task:\n" +
		"- Extract ALL transactions from the attached bank statement.\n" +
		"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
		"- Output a JSON array of objects.\n\n" +
		"Each object must have these fields:\n" +
		"- \"date\": string, ISO format \"YYYY-MM-DD\"\n" +
		"- \"description\": string\n" +
		"- \"amount\": number (always positive)\n" +
		"- \"type\": string, either \"credit\" or \"debit\"\n" +
		"- \"category\": string, one of: " + strings.Join(categories, ", ") + "\n\n" +
		"Rules:\n" +
		"- Skip opening/closing balance lines; they are not transactions.\n" +
		"- If a category does not clearly apply, use \"others\".\n" +
		"Return ONLY valid raw JSON.\n" +
		"Do NOT wrap the response in code fences.\n" +
		"Do NOT use ```json or any Markdown.\n" +
		"Output must begin with \"[\" and end with \"]\".\n"
}

// Parse sends the document to the model and converts the validated
// entries into transactions. Transport failures surface as
// domain.ErrExternalService and malformed responses as
// domain.ErrSchemaMismatch; both are recoverable to the chain.
func (e *AIExtractor) Parse(ctx context.Context, doc *intake.RawDocument) ([]domain.Transaction, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	contents, err := e.buildContents(doc)
	if err != nil {
		return nil, err
	}

	generate := e.generate
	if generate == nil {
		generate = e.callModel
	}

	raw, err := generate(ctx, contents)
	if err != nil {
		return nil, fmt.Errorf("ai extract %q: %v: %w", doc.Filename, err, domain.ErrExternalService)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("ai extract %q: empty model response: %w", doc.Filename, domain.ErrExternalService)
	}

	entries, err := decodeEntries(raw)
	if err != nil {
		return nil, fmt.Errorf("ai extract %q: %v: %w", doc.Filename, err, domain.ErrSchemaMismatch)
	}

	var txs []domain.Transaction
	for _, entry := range entries {
		tx, ok := entry.toTransaction()
		if !ok {
			// Bad entries are dropped one by one, never the batch.
			continue
		}
		tx.SourceParser = e.Name()
		txs = append(txs, tx)
	}
	return txs, nil
}

// buildContents picks text or vision mode based on what intake found.
func (e *AIExtractor) buildContents(doc *intake.RawDocument) ([]*genai.Content, error) {
	prompt := buildPrompt(categorize.Categories)

	parts := []*genai.Part{{Text: prompt}}
	if doc.HasText() {
		parts = append(parts, &genai.Part{Text: "Statement text:\n" + doc.Text()})
	} else {
		mime, ok := inlineMIMEType(doc)
		if !ok {
			return nil, fmt.Errorf("ai extract %q: no text and no inline representation: %w", doc.Filename, domain.ErrEmptyResult)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: mime, Data: doc.Bytes},
		})
	}

	return []*genai.Content{{Role: "user", Parts: parts}}, nil
}

func inlineMIMEType(doc *intake.RawDocument) (string, bool) {
	switch doc.Format {
	case intake.FormatPDF:
		return "application/pdf", true
	case intake.FormatImage:
		if strings.HasSuffix(strings.ToLower(doc.Filename), ".png") {
			return "image/png", true
		}
		return "image/jpeg", true
	default:
		return "", false
	}
}

func (e *AIExtractor) callModel(ctx context.Context, contents []*genai.Content) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// modelEntry is one element of the model's JSON array.
type modelEntry struct {
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
}

// toTransaction validates one model entry. Entries missing required
// fields, with non-positive amounts, unparseable dates or an unknown
// direction are rejected individually.
func (m modelEntry) toTransaction() (domain.Transaction, bool) {
	if m.Date == "" || strings.TrimSpace(m.Description) == "" || m.Amount == "" {
		return domain.Transaction{}, false
	}
	date, err := normalize.ParseDate(m.Date)
	if err != nil {
		return domain.Transaction{}, false
	}
	// The prompt demands positive amounts; a negative one means the
	// model ignored it, so the entry is untrustworthy.
	amount, err := decimal.NewFromString(m.Amount.String())
	if err != nil || !amount.IsPositive() {
		return domain.Transaction{}, false
	}
	amount = amount.Round(2)
	direction := domain.Direction(strings.ToLower(m.Type))
	if !direction.Valid() {
		return domain.Transaction{}, false
	}

	return domain.Transaction{
		Date:        date,
		RawDate:     m.Date,
		Description: strings.TrimSpace(m.Description),
		Amount:      amount,
		RawAmount:   m.Amount.String(),
		Direction:   direction,
		Category:    m.Category,
	}, true
}

func decodeEntries(raw string) ([]modelEntry, error) {
	clean := CleanModelJSON(raw)
	var entries []modelEntry
	if err := json.Unmarshal([]byte(clean), &entries); err != nil {
		return nil, fmt.Errorf("unmarshal model JSON: %w", err)
	}
	return entries, nil
}

// CleanModelJSON strips Markdown fences and surrounding junk when the
// model ignores the raw-JSON instruction, keeping only the outermost
// JSON array.
func CleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
