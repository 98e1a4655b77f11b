package testutil

import (
	"bytes"
	"image"
	"image/color/palette"
	"image/gif"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockS3Client_GetObject(t *testing.T) {
	client := NewMockS3Client()
	client.Objects["test-key"] = []byte("test-content")

	data, err := client.GetObject("test-key")
	require.NoError(t, err)
	assert.Equal(t, []byte("test-content"), data)

	// Not found
	_, err = client.GetObject("nonexistent")
	assert.Error(t, err)
	assert.IsType(t, &ObjectNotFoundError{}, err)
}

func TestMockS3Client_PutObject(t *testing.T) {
	client := NewMockS3Client()

	err := client.PutObject("captcha/a.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"captcha/a.png": []byte("png")}, client.Uploaded())
}

func TestMockS3Client_ListObjects(t *testing.T) {
	client := NewMockS3Client()
	client.Objects["fonts/a.ttf"] = []byte("a")
	client.Objects["fonts/b.ttf"] = []byte("b")
	client.Objects["captcha/c.png"] = []byte("c")

	keys, err := client.ListObjects("fonts/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fonts/a.ttf", "fonts/b.ttf"}, keys)
}

func TestTestContext(t *testing.T) {
	tc := NewTestContext(http.MethodGet, "/test", nil)

	assert.NotNil(t, tc.Echo)
	assert.NotNil(t, tc.Context)
	assert.NotNil(t, tc.Request)
	assert.NotNil(t, tc.Recorder)
}

func TestTestContext_SetParams(t *testing.T) {
	tc := NewTestContext(http.MethodGet, "/api/captcha/gif", nil)
	tc.SetParams([]string{"preset"}, []string{"gif"})

	assert.Equal(t, "gif", tc.Context.Param("preset"))
}

func TestTestContext_GetResponseBody(t *testing.T) {
	tc := NewTestContext(http.MethodGet, "/test", nil)
	tc.Recorder.WriteHeader(http.StatusOK)
	_, _ = tc.Recorder.Write([]byte(`{"status":"ok"}`))

	body := tc.GetResponseBody()
	assert.Equal(t, "ok", body["status"])
}

func TestTestContext_GetResponseCode(t *testing.T) {
	tc := NewTestContext(http.MethodGet, "/test", nil)
	tc.Recorder.WriteHeader(http.StatusCreated)

	assert.Equal(t, http.StatusCreated, tc.GetResponseCode())
}

func TestCreateTestPNG(t *testing.T) {
	data := CreateTestPNG(100, 100)
	assert.NotEmpty(t, data)
	// PNG files start with specific bytes
	assert.Equal(t, uint8(0x89), data[0])
	assert.Equal(t, uint8('P'), data[1])

	img, err := DecodePNG(data)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
}

func TestDecodeGIF(t *testing.T) {
	frame := image.NewPaletted(image.Rect(0, 0, 4, 3), palette.Plan9)
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, &gif.GIF{
		Image: []*image.Paletted{frame, frame},
		Delay: []int{50, 50},
	}))

	g, err := DecodeGIF(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, g.Image, 2)
}

func TestDecodeDataURI(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		wantMIME string
		wantData []byte
		wantErr  bool
	}{
		{
			name:     "正常系: PNGのデータURI",
			uri:      "data:image/png;base64,aGVsbG8=",
			wantMIME: "image/png",
			wantData: []byte("hello"),
		},
		{
			name:    "異常系: data:で始まらない",
			uri:     "image/png;base64,aGVsbG8=",
			wantErr: true,
		},
		{
			name:    "異常系: base64指定がない",
			uri:     "data:image/png,hello",
			wantErr: true,
		},
		{
			name:    "異常系: base64が壊れている",
			uri:     "data:image/png;base64,!!!",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, data, err := DecodeDataURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, mime)
			assert.Equal(t, tt.wantData, data)
		})
	}
}
