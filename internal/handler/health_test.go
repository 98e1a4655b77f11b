package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/kyiku/ptera-captcha/internal/render"
	"github.com/kyiku/ptera-captcha/internal/testutil"
)

func TestHealthHandler_Check(t *testing.T) {
	withIdeograph := render.NewFontBook()
	require.NoError(t, withIdeograph.Register(render.FamilyIdeograph, render.Regular, goregular.TTF))

	tests := []struct {
		name          string
		fonts         *render.FontBook
		wantIdeograph bool
	}{
		{
			name:          "正常系: 漢字フォントなし",
			fonts:         render.NewFontBook(),
			wantIdeograph: false,
		},
		{
			name:          "正常系: 漢字フォントあり",
			fonts:         withIdeograph,
			wantIdeograph: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContext(http.MethodGet, "/health", nil)

			h := NewHealthHandler(tt.fonts)
			err := h.Check(tc.Context)

			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, tc.Recorder.Code)

			var resp map[string]interface{}
			err = json.Unmarshal(tc.Recorder.Body.Bytes(), &resp)
			require.NoError(t, err)

			assert.Equal(t, "ok", resp["status"])
			assert.Equal(t, tt.wantIdeograph, resp["ideograph_font"])
			assert.Contains(t, resp["fonts"], render.FamilyGo)
		})
	}
}
