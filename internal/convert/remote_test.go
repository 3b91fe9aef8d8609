package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/observability"
)

// testPNG returns an encoded PNG of the given dimensions.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func conversionBody(t *testing.T, pageCount int) []byte {
	t.Helper()
	type file struct {
		FileName string `json:"FileName"`
		FileExt  string `json:"FileExt"`
		FileSize int    `json:"FileSize"`
		FileData string `json:"FileData"`
	}
	files := make([]file, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		data := testPNG(t, 200+i, 300)
		files = append(files, file{
			FileName: fmt.Sprintf("document_%d.png", i+1),
			FileExt:  "png",
			FileSize: len(data),
			FileData: base64.StdEncoding.EncodeToString(data),
		})
	}
	body, err := json.Marshal(map[string]any{"Files": files})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return body
}

func TestRemoteConverter_OnePageImagePerSourcePage(t *testing.T) {
	const pageCount = 3

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.Header.Get("Authorization"); got != "Bearer secret-1" {
			t.Errorf("Authorization = %q, want bearer secret", got)
		}
		if !strings.Contains(r.URL.Path, "/convert/pdf/to/png") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(conversionBody(t, pageCount))
	}))
	defer srv.Close()

	c := NewRemoteConverter(RemoteConfig{BaseURL: srv.URL, Secret: "secret-1"}, observability.Nop())

	pages, err := c.Convert(context.Background(), []byte("%PDF-1.7 fake"))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(pages) != pageCount {
		t.Fatalf("got %d pages, want %d", len(pages), pageCount)
	}
	// Numbered 1..N with no gaps or duplicates, in source order.
	for i, p := range pages {
		if p.PageNumber != i+1 {
			t.Errorf("page %d has PageNumber %d", i, p.PageNumber)
		}
		if !strings.HasPrefix(p.ImageDataURL, "data:image/png;base64,") {
			t.Errorf("page %d image is not a png data URL", p.PageNumber)
		}
		if p.Width != 200+i || p.Height != 300 {
			t.Errorf("page %d dims = %dx%d, want %dx300", p.PageNumber, p.Width, p.Height, 200+i)
		}
		if p.Selected {
			t.Errorf("page %d should start unselected", p.PageNumber)
		}
	}
	if calls != 1 {
		t.Errorf("upstream called %d times, want 1", calls)
	}
}

func TestRemoteConverter_RejectsInvalidInputWithoutUpstreamCall(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := NewRemoteConverter(RemoteConfig{BaseURL: srv.URL, Secret: "s"}, observability.Nop())

	for _, payload := range [][]byte{nil, []byte("not a pdf")} {
		_, err := c.Convert(context.Background(), payload)
		if domain.KindOf(err) != domain.KindValidation {
			t.Errorf("payload %q: kind = %q, want validation", payload, domain.KindOf(err))
		}
	}
	if calls != 0 {
		t.Errorf("upstream called %d times, want 0", calls)
	}
}

func TestRemoteConverter_UpstreamFailureSurfacesConversionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewRemoteConverter(RemoteConfig{BaseURL: srv.URL, Secret: "s"}, observability.Nop())

	_, err := c.Convert(context.Background(), []byte("%PDF-1.4"))
	if domain.KindOf(err) != domain.KindConversion {
		t.Fatalf("kind = %q, want conversion", domain.KindOf(err))
	}
}

func TestRemoteConverter_MissingPageListIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ConversionCost": 1}`))
	}))
	defer srv.Close()

	c := NewRemoteConverter(RemoteConfig{BaseURL: srv.URL, Secret: "s"}, observability.Nop())

	_, err := c.Convert(context.Background(), []byte("%PDF-1.4"))
	if domain.KindOf(err) != domain.KindConversion {
		t.Fatalf("kind = %q, want conversion", domain.KindOf(err))
	}
}

func TestDecodeBase64Image(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	enc := base64.StdEncoding.EncodeToString(raw)

	for _, input := range []string{enc, "data:image/png;base64," + enc} {
		got, err := decodeBase64Image(input)
		if err != nil {
			t.Fatalf("decodeBase64Image(%q) error = %v", input, err)
		}
		if !bytes.Equal(got, raw) {
			t.Errorf("decodeBase64Image(%q) = %v, want %v", input, got, raw)
		}
	}
}
