package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kyiku/ptera-captcha/internal/captcha"
	"github.com/kyiku/ptera-captcha/internal/challenge"
	"github.com/kyiku/ptera-captcha/internal/logging"
	"github.com/kyiku/ptera-captcha/internal/render"
	"github.com/kyiku/ptera-captcha/internal/response"
)

var logger = logging.New("handler")

// Upper bounds of the query overrides.
const (
	MaxWidth  = 1000
	MaxHeight = 500
	MaxLength = 12
)

// CaptchaUploader stores an encoded captcha and returns its public URL.
type CaptchaUploader interface {
	UploadCaptcha(data []byte, ext string) (string, error)
}

// RenderObserver records render and upload outcomes.
type RenderObserver interface {
	ObserveRender(preset string, d time.Duration, passes int, err error)
	ObserveUpload(err error)
}

// CaptchaDefaults are applied to every preset. Zero values keep the
// preset's own setting.
type CaptchaDefaults struct {
	Width  int
	Height int
	Length int
}

// CaptchaHandler renders captchas. Verification belongs to the caller: the
// answer is returned alongside the image.
type CaptchaHandler struct {
	fonts    *render.FontBook
	defaults CaptchaDefaults
	uploader CaptchaUploader
	metrics  RenderObserver
}

// NewCaptchaHandler creates a new CaptchaHandler.
func NewCaptchaHandler(fonts *render.FontBook, defaults CaptchaDefaults) *CaptchaHandler {
	if fonts == nil {
		fonts = render.DefaultFontBook()
	}
	return &CaptchaHandler{
		fonts:    fonts,
		defaults: defaults,
	}
}

// SetUploader makes Generate upload images instead of inlining them.
func (h *CaptchaHandler) SetUploader(u CaptchaUploader) {
	h.uploader = u
}

// SetMetrics sets the render observer.
func (h *CaptchaHandler) SetMetrics(m RenderObserver) {
	h.metrics = m
}

// Presets lists the presets the registered fonts can draw.
func (h *CaptchaHandler) Presets(c echo.Context) error {
	presets := captcha.Presets()
	out := make([]map[string]interface{}, 0, len(presets))
	for _, p := range presets {
		if err := p.Supported(h.fonts); err != nil {
			continue
		}
		v := p.Variant()
		out = append(out, map[string]interface{}{
			"name":     string(p),
			"policy":   v.Policy.String(),
			"animated": v.Animated,
			"mime":     v.MIME(),
		})
	}
	return response.Success(c, map[string]interface{}{
		"presets": out,
	})
}

// Generate renders a new captcha and returns it as JSON, either as a data
// URI or, when an uploader is set, as a URL.
func (h *CaptchaHandler) Generate(c echo.Context) error {
	cp, apiErr := h.build(c)
	if apiErr != nil {
		return apiErr.write(c)
	}

	res, err := h.render(cp)
	if err != nil {
		return response.ErrorWithCode(c, http.StatusInternalServerError, response.CodeRenderFailed,
			"CAPTCHA生成に失敗しました")
	}

	body := map[string]interface{}{
		"id":     uuid.New().String(),
		"preset": string(cp.Preset()),
		"policy": cp.Challenge().Policy().String(),
		"answer": cp.Answer(),
		"mime":   res.MIME,
		"width":  res.Width,
		"height": res.Height,
		"frames": res.Frames,
	}

	if h.uploader == nil {
		body["image"] = captcha.EncodeDataURI(res)
		return response.Success(c, body)
	}

	url, err := h.uploader.UploadCaptcha(res.Data, cp.Variant().Ext())
	if h.metrics != nil {
		h.metrics.ObserveUpload(err)
	}
	if err != nil {
		logger.Errorf("failed to upload captcha: %v", err)
		return response.ErrorWithCode(c, http.StatusBadGateway, response.CodeUploadFailed,
			"CAPTCHA画像のアップロードに失敗しました")
	}
	body["image_url"] = url
	return response.Success(c, body)
}

// Image renders a new captcha and returns the raw image. The id and answer
// travel in headers.
func (h *CaptchaHandler) Image(c echo.Context) error {
	cp, apiErr := h.build(c)
	if apiErr != nil {
		return apiErr.write(c)
	}

	res, err := h.render(cp)
	if err != nil {
		return response.ErrorWithCode(c, http.StatusInternalServerError, response.CodeRenderFailed,
			"CAPTCHA生成に失敗しました")
	}

	return response.Image(c, res.MIME, res.Data, map[string]string{
		"X-Captcha-Id":     uuid.New().String(),
		"X-Captcha-Answer": cp.Answer(),
	})
}

func (h *CaptchaHandler) render(cp *captcha.Captcha) (*captcha.Result, error) {
	start := time.Now()
	res, err := cp.Encode()

	passes := 0
	if res != nil {
		passes = res.Passes
	}
	if h.metrics != nil {
		h.metrics.ObserveRender(string(cp.Preset()), time.Since(start), passes, err)
	}
	if err != nil {
		logger.Errorf("failed to render %s captcha: %v", cp.Preset(), err)
	}
	return res, err
}

// apiError is an error response that has not been written yet.
type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) write(c echo.Context) error {
	return response.ErrorWithCode(c, e.status, e.code, e.message)
}

// build creates the captcha requested by the path and query.
func (h *CaptchaHandler) build(c echo.Context) (*captcha.Captcha, *apiError) {
	preset, err := captcha.ParsePreset(c.Param("preset"))
	if err != nil {
		return nil, &apiError{http.StatusNotFound, response.CodeUnknownPreset, "不明なプリセットです"}
	}

	cfg := preset.Config()
	width, height, length := cfg.Width, cfg.Height, cfg.Length
	if h.defaults.Width > 0 {
		width = h.defaults.Width
	}
	if h.defaults.Height > 0 {
		height = h.defaults.Height
	}
	if h.defaults.Length > 0 {
		length = h.defaults.Length
	}

	for _, q := range []struct {
		name string
		max  int
		dst  *int
	}{
		{"width", MaxWidth, &width},
		{"height", MaxHeight, &height},
		{"length", MaxLength, &length},
	} {
		v, ok, err := queryInt(c, q.name, q.max)
		if err != nil {
			return nil, &apiError{http.StatusBadRequest, response.CodeInvalidParam, q.name + "が不正です"}
		}
		if ok {
			*q.dst = v
		}
	}

	opts := []captcha.Option{
		captcha.WithSize(width, height),
		captcha.WithLength(length),
		captcha.WithFontBook(h.fonts),
	}
	if name := c.QueryParam("policy"); name != "" {
		policy, err := challenge.ParsePolicy(name)
		if err != nil {
			return nil, &apiError{http.StatusBadRequest, response.CodeInvalidParam, "policyが不正です"}
		}
		opts = append(opts, captcha.WithPolicy(policy))
		if policy == challenge.Ideograph && cfg.Font == nil {
			opts = append(opts, captcha.WithFont(render.Font{
				Family: render.FamilyIdeograph,
				Style:  render.Bold,
				Size:   captcha.IdeographFontSize,
			}))
		}
	}

	cp, err := captcha.New(preset, opts...)
	if errors.Is(err, captcha.ErrMissingFont) {
		logger.Warnf("no font for %s captcha: %v", preset, err)
		return nil, &apiError{http.StatusServiceUnavailable, response.CodeFontMissing, "文字を描画できるフォントがありません"}
	}
	if err != nil {
		logger.Warnf("rejected %s captcha config: %v", preset, err)
		return nil, &apiError{http.StatusBadRequest, response.CodeInvalidParam, "CAPTCHAの設定が不正です"}
	}
	return cp, nil
}

// queryInt parses an optional positive integer query parameter.
func queryInt(c echo.Context, name string, max int) (int, bool, error) {
	s := c.QueryParam(name)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 || v > max {
		return 0, false, errors.New("out of range")
	}
	return v, true, nil
}
