package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/ptera-captcha/internal/testutil"
)

func TestS3Client_UploadCaptcha(t *testing.T) {
	tests := []struct {
		name       string
		ext        string
		setupMock  func(*testutil.MockS3Client)
		wantErr    bool
		wantURLPre string
		wantSuffix string
	}{
		{
			name:       "正常系: PNGをアップロード",
			ext:        "png",
			setupMock:  func(m *testutil.MockS3Client) {},
			wantURLPre: "https://test.cloudfront.net/captcha/",
			wantSuffix: ".png",
		},
		{
			name:       "正常系: 拡張子のドットと大文字を許容する",
			ext:        ".GIF",
			setupMock:  func(m *testutil.MockS3Client) {},
			wantURLPre: "https://test.cloudfront.net/captcha/",
			wantSuffix: ".gif",
		},
		{
			name:      "異常系: 非対応の形式",
			ext:       "jpg",
			setupMock: func(m *testutil.MockS3Client) {},
			wantErr:   true,
		},
		{
			name: "異常系: アップロード失敗",
			ext:  "png",
			setupMock: func(m *testutil.MockS3Client) {
				m.PutErr = errors.New("put failed")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockS3 := testutil.NewMockS3Client()
			tt.setupMock(mockS3)

			client := NewS3Client(mockS3, "test-bucket", "https://test.cloudfront.net/")

			url, err := client.UploadCaptcha(testutil.CreateTestPNG(4, 4), tt.ext)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, mockS3.UploadedData)
				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(url, tt.wantURLPre), url)
			assert.True(t, strings.HasSuffix(url, tt.wantSuffix), url)

			// アップロードされたキーがURLと一致することを確認
			require.Len(t, mockS3.UploadedData, 1)
			for key := range mockS3.UploadedData {
				assert.Equal(t, client.URL(key), url)
			}
		})
	}

	t.Run("正常系: 毎回異なるキーになる", func(t *testing.T) {
		mockS3 := testutil.NewMockS3Client()
		client := NewS3Client(mockS3, "test-bucket", "https://test.cloudfront.net")

		a, err := client.UploadCaptcha([]byte("a"), "png")
		require.NoError(t, err)
		b, err := client.UploadCaptcha([]byte("b"), "png")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestS3Client_LoadFont(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		objects map[string][]byte
		want    []byte
		wantErr bool
	}{
		{
			name:    "正常系: ファイル名だけならfonts/から取得",
			key:     "ideograph.ttf",
			objects: map[string][]byte{"fonts/ideograph.ttf": []byte("ttf")},
			want:    []byte("ttf"),
		},
		{
			name:    "正常系: フルキーで取得",
			key:     "custom/ideograph.ttf",
			objects: map[string][]byte{"custom/ideograph.ttf": []byte("ttf")},
			want:    []byte("ttf"),
		},
		{
			name:    "異常系: 存在しない",
			key:     "missing.ttf",
			objects: map[string][]byte{},
			wantErr: true,
		},
		{
			name:    "異常系: 空のファイル",
			key:     "empty.ttf",
			objects: map[string][]byte{"fonts/empty.ttf": {}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockS3 := testutil.NewMockS3Client()
			mockS3.Objects = tt.objects
			client := NewS3Client(mockS3, "test-bucket", "https://test.cloudfront.net")

			data, err := client.LoadFont(tt.key)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, data)
		})
	}
}

func TestS3Client_ListFonts(t *testing.T) {
	t.Run("正常系: TrueTypeだけを名前順で返す", func(t *testing.T) {
		mockS3 := testutil.NewMockS3Client()
		mockS3.Objects = map[string][]byte{
			"fonts/zh.ttf":     []byte("a"),
			"fonts/Ideo.TTF":   []byte("b"),
			"fonts/readme.txt": []byte("c"),
			"captcha/x.png":    []byte("d"),
		}
		client := NewS3Client(mockS3, "test-bucket", "https://test.cloudfront.net")

		names, err := client.ListFonts()

		require.NoError(t, err)
		assert.Equal(t, []string{"Ideo.TTF", "zh.ttf"}, names)
	})

	t.Run("異常系: 一覧取得に失敗", func(t *testing.T) {
		mockS3 := testutil.NewMockS3Client()
		mockS3.ListErr = errors.New("list failed")
		client := NewS3Client(mockS3, "test-bucket", "https://test.cloudfront.net")

		_, err := client.ListFonts()
		assert.Error(t, err)
	})
}
