package extract

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/llm"
	"github.com/freightlens/freightlens/internal/observability"
)

// fakeCompleter scripts per-call outcomes and records requests.
type fakeCompleter struct {
	requests []llm.StructuredRequest
	// failOn maps call index (0-based) to an error.
	failOn map[int]error
	reply  json.RawMessage
}

func (f *fakeCompleter) CompleteStructured(_ context.Context, req llm.StructuredRequest) (json.RawMessage, error) {
	idx := len(f.requests)
	f.requests = append(f.requests, req)
	if err, ok := f.failOn[idx]; ok {
		return nil, err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return json.RawMessage(`{"carrier": "DHL"}`), nil
}

func pagesNumbered(nums ...int) []domain.PageImage {
	pages := make([]domain.PageImage, 0, len(nums))
	for _, n := range nums {
		pages = append(pages, domain.PageImage{
			PageNumber:   n,
			ImageDataURL: "data:image/png;base64,AAAA",
			Selected:     true,
		})
	}
	return pages
}

func TestExtractPages_ZeroPagesIssuesNoCalls(t *testing.T) {
	fake := &fakeCompleter{}
	svc := NewService(fake, observability.Nop())

	_, err := svc.ExtractPages(context.Background(), nil, SchemaShippingOrder)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Empty(t, fake.requests)
}

func TestExtractPages_ResultPerSelectedPage(t *testing.T) {
	fake := &fakeCompleter{}
	svc := NewService(fake, observability.Nop())

	results, err := svc.ExtractPages(context.Background(), pagesNumbered(1, 3), SchemaShippingOrder)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].PageNumber)
	assert.Equal(t, 3, results[1].PageNumber)
	for _, r := range results {
		assert.True(t, r.Success)
		assert.JSONEq(t, `{"carrier": "DHL"}`, string(r.Data))
		assert.False(t, r.ExtractedAt.IsZero())
	}
	assert.Len(t, fake.requests, 2)
}

func TestExtractPages_FailureDoesNotAbortSiblings(t *testing.T) {
	fake := &fakeCompleter{failOn: map[int]error{1: errors.New("upstream timeout")}}
	svc := NewService(fake, observability.Nop())

	results, err := svc.ExtractPages(context.Background(), pagesNumbered(1, 3), SchemaShippingOrder)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Success)
	assert.Equal(t, 1, results[0].PageNumber)

	assert.False(t, results[1].Success)
	assert.Equal(t, 3, results[1].PageNumber)
	assert.Contains(t, results[1].Error, "upstream timeout")
	assert.Empty(t, results[1].Data)
}

func TestExtractPages_SequentialInPageOrder(t *testing.T) {
	fake := &fakeCompleter{}
	svc := NewService(fake, observability.Nop())

	_, err := svc.ExtractPages(context.Background(), pagesNumbered(2, 5, 7), SchemaShippingOrder)
	require.NoError(t, err)

	// One outbound call per page, issued in page order.
	require.Len(t, fake.requests, 3)
	for _, req := range fake.requests {
		require.Len(t, req.Parts, 1)
		assert.Equal(t, "image_url", req.Parts[0].Type)
	}
}

func TestExtractImage_VariantSelectsSchema(t *testing.T) {
	fake := &fakeCompleter{reply: json.RawMessage(`{"invoiceNumber": "FV/1"}`)}
	svc := NewService(fake, observability.Nop())

	_, err := svc.ExtractImage(context.Background(), "data:image/png;base64,AAAA", SchemaInvoice)
	require.NoError(t, err)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, "invoice", fake.requests[0].SchemaName)
	assert.Contains(t, fake.requests[0].System, "invoice parser")
}

func TestExtractText(t *testing.T) {
	fake := &fakeCompleter{}
	svc := NewService(fake, observability.Nop())

	_, err := svc.ExtractText(context.Background(), "", SchemaShippingOrder)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Empty(t, fake.requests)

	out, err := svc.ExtractText(context.Background(), "DHL waybill 123", SchemaShippingOrder)
	require.NoError(t, err)
	assert.JSONEq(t, `{"carrier": "DHL"}`, string(out))
	assert.Equal(t, "text", fake.requests[0].Parts[0].Type)
}

func TestExtractImage_WrapsUpstreamFailure(t *testing.T) {
	fake := &fakeCompleter{failOn: map[int]error{0: domain.UpstreamError("model call failed", nil)}}
	svc := NewService(fake, observability.Nop())

	_, err := svc.ExtractImage(context.Background(), "data:image/png;base64,AAAA", SchemaShippingOrder)
	require.Error(t, err)
	assert.Equal(t, domain.KindExtraction, domain.KindOf(err))
}
