package compare

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/llm"
	"github.com/freightlens/freightlens/internal/observability"
)

type fakeCompleter struct {
	requests []llm.StructuredRequest
	reply    json.RawMessage
	err      error
}

func (f *fakeCompleter) CompleteStructured(_ context.Context, req llm.StructuredRequest) (json.RawMessage, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

const comparisonReply = `{
	"discrepancies": [
		{"field": "trackingNumber", "order1Value": "JD01", "order2Value": "JD02", "severity": "critical", "description": "Tracking numbers differ"}
	],
	"matches": [
		{"field": "shipTo.city", "value": "Gdansk", "confidence": 0.97}
	],
	"analysis": {
		"overallConfidence": 0.72,
		"dataQuality": "fair",
		"potentialIssues": ["order 2 is missing the ship date"],
		"recommendation": "Manual review recommended"
	},
	"summary": "The records describe the same shipment but tracking numbers differ."
}`

func TestCompare_RejectsMissingInputsWithoutUpstreamCall(t *testing.T) {
	fake := &fakeCompleter{reply: json.RawMessage(comparisonReply)}
	svc := NewService(fake, observability.Nop())

	order := json.RawMessage(`{"carrier": "DHL"}`)

	tests := []struct {
		name           string
		order1, order2 json.RawMessage
	}{
		{"both nil", nil, nil},
		{"first nil", nil, order},
		{"second nil", order, nil},
		{"first empty object", json.RawMessage(`{}`), order},
		{"second null", order, json.RawMessage(`null`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Compare(context.Background(), tt.order1, tt.order2)
			require.Error(t, err)
			assert.Equal(t, domain.KindComparison, domain.KindOf(err))
		})
	}
	assert.Empty(t, fake.requests)
}

func TestCompare_ParsesStructuredResult(t *testing.T) {
	fake := &fakeCompleter{reply: json.RawMessage(comparisonReply)}
	svc := NewService(fake, observability.Nop())

	got, err := svc.Compare(context.Background(),
		json.RawMessage(`{"trackingNumber": "JD01"}`),
		json.RawMessage(`{"trackingNumber": "JD02"}`),
	)
	require.NoError(t, err)

	require.Len(t, got.Discrepancies, 1)
	assert.Equal(t, "trackingNumber", got.Discrepancies[0].Field)
	assert.Equal(t, domain.SeverityCritical, got.Discrepancies[0].Severity)

	require.Len(t, got.Matches, 1)
	assert.InDelta(t, 0.97, got.Matches[0].Confidence, 1e-9)

	assert.Equal(t, domain.QualityFair, got.Analysis.Quality)
	assert.True(t, got.NeedsManualReview(), "confidence 0.72 is below the 0.8 threshold")
}

func TestCompare_SendsBothRecordsAndSeverityTiers(t *testing.T) {
	fake := &fakeCompleter{reply: json.RawMessage(comparisonReply)}
	svc := NewService(fake, observability.Nop())

	_, err := svc.Compare(context.Background(),
		json.RawMessage(`{"carrier": "DHL"}`),
		json.RawMessage(`{"carrier": "UPS"}`),
	)
	require.NoError(t, err)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, "order_comparison", req.SchemaName)
	assert.Contains(t, req.System, "critical")
	assert.Contains(t, req.System, "tracking number")
	assert.Contains(t, req.System, "0.8")
	require.Len(t, req.Parts, 1)
	assert.Contains(t, req.Parts[0].Text, `"DHL"`)
	assert.Contains(t, req.Parts[0].Text, `"UPS"`)
}

func TestCompare_UpstreamFailure(t *testing.T) {
	fake := &fakeCompleter{err: domain.UpstreamError("model call failed", nil)}
	svc := NewService(fake, observability.Nop())

	_, err := svc.Compare(context.Background(),
		json.RawMessage(`{"carrier": "DHL"}`),
		json.RawMessage(`{"carrier": "UPS"}`),
	)
	require.Error(t, err)
	assert.Equal(t, domain.KindComparison, domain.KindOf(err))
}
