package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kyiku/ptera-captcha/internal/captcha"
	"github.com/kyiku/ptera-captcha/internal/config"
	"github.com/kyiku/ptera-captcha/internal/handler"
	"github.com/kyiku/ptera-captcha/internal/logging"
	"github.com/kyiku/ptera-captcha/internal/metrics"
	appmw "github.com/kyiku/ptera-captcha/internal/middleware"
	"github.com/kyiku/ptera-captcha/internal/render"
	"github.com/kyiku/ptera-captcha/internal/storage"
)

// S3Adapter adapts AWS S3 client to our interface
type S3Adapter struct {
	client *s3.Client
	bucket string
}

func (a *S3Adapter) GetObject(key string) ([]byte, error) {
	output, err := a.client.GetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: &a.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer output.Body.Close()
	return io.ReadAll(output.Body)
}

func (a *S3Adapter) PutObject(key string, data []byte) error {
	contentType := contentTypeOf(key)
	_, err := a.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      &a.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	return err
}

func (a *S3Adapter) ListObjects(prefix string) ([]string, error) {
	output, err := a.client.ListObjectsV2(context.TODO(), &s3.ListObjectsV2Input{
		Bucket: &a.bucket,
		Prefix: &prefix,
	})
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(output.Contents))
	for _, obj := range output.Contents {
		keys = append(keys, *obj.Key)
	}
	return keys, nil
}

func contentTypeOf(key string) string {
	switch path.Ext(key) {
	case ".png":
		return render.MIMEPNG
	case ".gif":
		return render.MIMEGIF
	case ".ttf":
		return "font/ttf"
	default:
		return "application/octet-stream"
	}
}

func main() {
	logger := logging.New("server")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger

	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			e.Logger.Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(appmw.CORSMiddleware(cfg.AllowedOrigins))

	// S3 client
	var s3Client *storage.S3Client
	if cfg.S3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Warnf("failed to load AWS config: %v (uploads and S3 fonts disabled)", err)
		} else {
			s3Client = storage.NewS3Client(&S3Adapter{
				client: s3.NewFromConfig(awsCfg),
				bucket: cfg.S3Bucket,
			}, cfg.S3Bucket, cfg.CloudfrontDomain)
			logger.Infof("using S3 bucket %s", s3Client.Bucket())
		}
	}

	fonts := render.DefaultFontBook()
	if err := registerIdeographFont(fonts, cfg, s3Client); err != nil {
		logger.Warnf("ideograph font not loaded: %v", err)
	}
	if err := captcha.PresetChinese.Supported(fonts); err != nil {
		logger.Warnf("ideograph presets disabled: %v", err)
	}

	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(fonts)
	captchaHandler := handler.NewCaptchaHandler(fonts, handler.CaptchaDefaults{
		Width:  cfg.CaptchaWidth,
		Height: cfg.CaptchaHeight,
		Length: cfg.CaptchaLength,
	})
	captchaHandler.SetMetrics(recorder)
	if s3Client != nil && cfg.UploadEnabled() {
		captchaHandler.SetUploader(s3Client)
	}

	// Health check (root level for ALB)
	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API routes
	api := e.Group("/api")
	api.GET("/health", healthHandler.Check)

	limiter := appmw.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer limiter.Stop()

	captchaGroup := api.Group("/captcha")
	captchaGroup.GET("/presets", captchaHandler.Presets)
	captchaGroup.POST("/:preset", captchaHandler.Generate, appmw.RateLimitWith(limiter))
	captchaGroup.GET("/:preset/image", captchaHandler.Image, appmw.RateLimitWith(limiter))

	// Log registered endpoints
	for _, r := range e.Routes() {
		logger.Debugf("route %-6s %s", r.Method, r.Path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("starting server on :%s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("failed to shut down: %v", err)
	}
}

// registerIdeographFont registers the configured CJK font, preferring a
// local file over S3. Without a configured key the first font stored in
// the bucket is used.
func registerIdeographFont(fonts *render.FontBook, cfg *config.Config, s3Client *storage.S3Client) error {
	if cfg.CaptchaFontPath != "" {
		return fonts.RegisterFile(render.FamilyIdeograph, render.Regular, cfg.CaptchaFontPath)
	}
	if s3Client == nil {
		if cfg.CaptchaFontKey != "" {
			return errors.New("S3 is not available")
		}
		return nil
	}

	key := cfg.CaptchaFontKey
	if key == "" {
		names, err := s3Client.ListFonts()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			return nil
		}
		key = names[0]
	}
	data, err := s3Client.LoadFont(key)
	if err != nil {
		return err
	}
	logger := logging.New("server")
	logger.Infof("registered ideograph font %s", key)
	return fonts.Register(render.FamilyIdeograph, render.Regular, data)
}
