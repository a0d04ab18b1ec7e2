package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/asharma-dev/statement-pipeline/internal/domain"
	"github.com/asharma-dev/statement-pipeline/internal/intake"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "already clean",
			raw:  `[{"date":"2025-07-01"}]`,
			want: `[{"date":"2025-07-01"}]`,
		},
		{
			name: "json fence",
			raw:  "```json\n[{\"a\":1}]\n```",
			want: `[{"a":1}]`,
		},
		{
			name: "bare fence",
			raw:  "```\n[1,2]\n```",
			want: `[1,2]`,
		},
		{
			name: "prose around the array",
			raw:  "Here are the transactions:\n[{\"a\":1}]\nHope this helps!",
			want: `[{"a":1}]`,
		},
		{
			name: "leading and trailing whitespace",
			raw:  "   [1]   ",
			want: `[1]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanModelJSON(tt.raw))
		})
	}
}

func stubExtractor(response string, err error) *AIExtractor {
	e := NewAIExtractor("test-model", 0)
	e.generate = func(ctx context.Context, contents []*genai.Content) (string, error) {
		return response, err
	}
	return e
}

func TestAIParseValidEntries(t *testing.T) {
	response := "```json\n" + `[
		{"date":"2025-07-01","description":"SALARY CREDIT","amount":75000,"type":"credit","category":"salary"},
		{"date":"2025-07-09","description":"UPI-SWIGGY-FOOD ORDER","amount":450.5,"type":"debit","category":"food_dining"}
	]` + "\n```"

	txs, err := stubExtractor(response, nil).Parse(context.Background(), textDoc("some statement text"))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "SALARY CREDIT", txs[0].Description)
	assert.Equal(t, domain.DirectionCredit, txs[0].Direction)
	assert.Equal(t, "75000.00", txs[0].Amount.StringFixed(2))
	assert.Equal(t, "salary", txs[0].Category)
	assert.Equal(t, "ai_fallback", txs[0].SourceParser)
	assert.Equal(t, "450.50", txs[1].Amount.StringFixed(2))
}

// Invalid entries are dropped one by one; the batch survives.
func TestAIParseDropsBadEntriesIndividually(t *testing.T) {
	response := `[
		{"date":"2025-07-01","description":"GOOD","amount":100,"type":"debit","category":"others"},
		{"date":"","description":"missing date","amount":100,"type":"debit"},
		{"date":"2025-07-02","description":"","amount":100,"type":"debit"},
		{"date":"2025-07-03","description":"zero amount","amount":0,"type":"debit"},
		{"date":"2025-07-04","description":"negative amount","amount":-5,"type":"debit"},
		{"date":"2025-07-05","description":"bad direction","amount":10,"type":"sideways"},
		{"date":"not a date","description":"bad date","amount":10,"type":"credit"},
		{"date":"2025-07-06","description":"ALSO GOOD","amount":20,"type":"credit","category":"others"}
	]`

	txs, err := stubExtractor(response, nil).Parse(context.Background(), textDoc("text"))
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "GOOD", txs[0].Description)
	assert.Equal(t, "ALSO GOOD", txs[1].Description)
}

func TestAIParseSchemaMismatch(t *testing.T) {
	_, err := stubExtractor(`{"not":"an array"`, nil).Parse(context.Background(), textDoc("text"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSchemaMismatch))
	assert.True(t, domain.Recoverable(err))
}

func TestAIParseTransportError(t *testing.T) {
	_, err := stubExtractor("", errors.New("connection refused")).Parse(context.Background(), textDoc("text"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExternalService))
	assert.True(t, domain.Recoverable(err))
}

func TestAIParseEmptyResponse(t *testing.T) {
	_, err := stubExtractor("   ", nil).Parse(context.Background(), textDoc("text"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExternalService))
}

// Documents without text go through vision mode with inline bytes.
func TestAIBuildContentsVisionMode(t *testing.T) {
	e := NewAIExtractor("test-model", 0)

	doc := &intake.RawDocument{
		Format:   intake.FormatImage,
		Filename: "scan.png",
		Bytes:    []byte{0x89, 0x50},
	}
	contents, err := e.buildContents(doc)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	require.Len(t, contents[0].Parts, 2)

	blob := contents[0].Parts[1].InlineData
	require.NotNil(t, blob)
	assert.Equal(t, "image/png", blob.MIMEType)
	assert.Equal(t, doc.Bytes, blob.Data)
}

func TestAIBuildContentsTextMode(t *testing.T) {
	e := NewAIExtractor("test-model", 0)

	contents, err := e.buildContents(textDoc("01/07/2025 something ₹1.00"))
	require.NoError(t, err)
	require.Len(t, contents[0].Parts, 2)
	assert.Nil(t, contents[0].Parts[1].InlineData)
	assert.Contains(t, contents[0].Parts[1].Text, "01/07/2025 something")
}
