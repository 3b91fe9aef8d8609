package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightlens/freightlens/internal/domain"
)

func TestParsePages(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []int
		wantErr bool
	}{
		{"empty means all", "", nil, false},
		{"single", "2", []int{2}, false},
		{"list", "3,1,2", []int{1, 2, 3}, false},
		{"spaces and duplicates", " 1, 3 ,1", []int{1, 3}, false},
		{"not a number", "1,x", nil, true},
		{"zero page", "0", nil, true},
		{"negative page", "-1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePages(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectPages(t *testing.T) {
	pages := []domain.PageImage{
		{PageNumber: 1, ImageDataURL: "data:image/png;base64,YQ=="},
		{PageNumber: 2, ImageDataURL: "data:image/png;base64,Yg=="},
		{PageNumber: 3, ImageDataURL: "data:image/png;base64,Yw=="},
	}

	t.Run("empty selects all", func(t *testing.T) {
		got, err := selectPages(pages, nil)
		require.NoError(t, err)
		require.Len(t, got, 3)
		for _, p := range got {
			assert.True(t, p.Selected)
		}
		assert.False(t, pages[0].Selected, "input slice is not mutated")
	})

	t.Run("subset in order", func(t *testing.T) {
		got, err := selectPages(pages, []int{1, 3})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 1, got[0].PageNumber)
		assert.Equal(t, 3, got[1].PageNumber)
	})

	t.Run("unknown page", func(t *testing.T) {
		_, err := selectPages(pages, []int{4})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "page 4 does not exist")
	})
}

func TestSummarizeValue(t *testing.T) {
	assert.Equal(t, "-", summarizeValue(nil))
	assert.Equal(t, "DHL", summarizeValue("DHL"))
	assert.Equal(t, "42.5", summarizeValue(42.5))
	assert.Equal(t, "true", summarizeValue(true))
	assert.Equal(t, "(2 items)", summarizeValue([]any{1, 2}))
	assert.Equal(t, "Gdansk, Acme", summarizeValue(map[string]any{"name": "Acme", "city": "Gdansk"}))
}
