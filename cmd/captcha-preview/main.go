// CAPTCHA preview server. Renders every preset locally without AWS.
//
// With -out the presets are written to a directory instead and the
// program exits.
package main

import (
	"flag"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kyiku/ptera-captcha/internal/captcha"
	"github.com/kyiku/ptera-captcha/internal/handler"
	"github.com/kyiku/ptera-captcha/internal/logging"
	appmw "github.com/kyiku/ptera-captcha/internal/middleware"
	"github.com/kyiku/ptera-captcha/internal/render"
)

const page = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>CAPTCHA preview</title></head>
<body>
<h1>CAPTCHA preview</h1>
<div id="presets"></div>
<script>
async function load() {
  const res = await fetch("/api/captcha/presets");
  const body = await res.json();
  const root = document.getElementById("presets");
  for (const p of body.presets) {
    const row = document.createElement("p");
    const img = document.createElement("img");
    const label = document.createElement("code");
    const refresh = async () => {
      const r = await fetch("/api/captcha/" + p.name, {method: "POST"});
      const c = await r.json();
      img.src = c.image;
      label.textContent = p.name + ": " + c.answer;
    };
    img.onclick = refresh;
    row.append(img, " ", label);
    root.append(row);
    refresh();
  }
}
load();
</script>
</body>
</html>`

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	fontPath := flag.String("font", "", "TrueType font for ideograph presets")
	out := flag.String("out", "", "write one image per preset to this directory and exit")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	logger := logging.New("preview")
	if *debug {
		logging.SetLevel(logging.ParseLevel("debug"))
	}

	fonts := render.DefaultFontBook()
	if *fontPath != "" {
		if err := fonts.RegisterFile(render.FamilyIdeograph, render.Regular, *fontPath); err != nil {
			logger.Fatalf("failed to register font: %v", err)
		}
	}

	if *out != "" {
		if err := writeAll(*out, fonts); err != nil {
			logger.Fatalf("%v", err)
		}
		return
	}

	captchaHandler := handler.NewCaptchaHandler(fonts, handler.CaptchaDefaults{})

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(appmw.CORSMiddleware([]string{"*"}))

	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, page)
	})
	e.GET("/health", handler.NewHealthHandler(fonts).Check)
	e.GET("/api/captcha/presets", captchaHandler.Presets)
	e.POST("/api/captcha/:preset", captchaHandler.Generate)
	e.GET("/api/captcha/:preset/image", captchaHandler.Image)

	logger.Infof("open http://localhost%s/", *addr)
	logger.Fatal(e.Start(*addr))
}

// writeAll renders every preset into dir, named after the preset.
func writeAll(dir string, fonts *render.FontBook) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	logger := logging.New("preview")
	for _, p := range captcha.Presets() {
		if err := p.Supported(fonts); err != nil {
			logger.Warnf("skipping %s: %v", p, err)
			continue
		}
		cp, err := captcha.New(p, captcha.WithFontBook(fonts))
		if err != nil {
			return err
		}
		name := filepath.Join(dir, string(p)+"."+cp.Variant().Ext())
		if err := cp.WriteFile(name); err != nil {
			return err
		}
		logger.Infof("%s %s", name, cp.Answer())
	}
	return nil
}
