package main

import (
	"context"
	"embed"
	"flag"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dpetrashka/kanaweb/cmd/kanad/handlers"
	kcf "github.com/dpetrashka/kanaweb/pkg/configs/server"
	"github.com/dpetrashka/kanaweb/pkg/ocr/mangaocr"
	"github.com/dpetrashka/kanaweb/pkg/session"
	"github.com/dpetrashka/kanaweb/pkg/utils/echoutil"
	"github.com/dpetrashka/kanaweb/pkg/utils/filewatch"
)

//go:embed web
var webUI embed.FS

const (
	defaultPort       = "8501"
	defaultSessionTTL = 30 * time.Minute
)

func main() {

	configPath := flag.String("config-path", "", "kanad config path")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	flag.Parse()

	e := echo.New()

	// set log
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	// read configfile
	conf, err := kcf.LoadServerConfig(*configPath)
	if err != nil {
		log.Fatalf("can not read configration: %s", err)
	}
	port := conf.ServerPort
	if port == "" {
		port = defaultPort
	}
	ttl := conf.SessionTTL.Std()
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	secret := []byte(conf.SessionSecret)

	{
		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), *configPath)
		if err != nil {
			log.Fatalf("can not watch configration: %s", err)
		}
		defer cancel()
		context.AfterFunc(ctx, func() {
			log.Println("config file is updated. quit to restart server.")
			graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := e.Shutdown(graceful); err != nil {
				log.Printf("error on shutdown by config update: %s", err)
			}
		})
	}

	store := session.NewStore(ttl)
	recognizer := mangaocr.New(mangaocr.Config{
		Endpoint:         conf.Recognizer.Endpoint,
		ModelRepo:        conf.Recognizer.ModelRepo,
		WarmupTimeout:    conf.Recognizer.WarmupTimeout.Std(),
		RecognizeTimeout: conf.Recognizer.RecognizeTimeout.Std(),
	})

	// start loading model weights now, instead of at the first drawing.
	// failure here is fine; recognition retries the warmup on demand.
	go func() {
		if err := recognizer.EnsureReady(context.Background()); err != nil {
			e.Logger.Warnf("model warmup at boot did not finish: %s", err)
		} else {
			e.Logger.Info("recognition model is loaded")
		}
	}()

	// handlers
	{
		e.POST("/api/sessions", handlers.CreateSessionHandler(store, secret, ttl))
		e.GET("/api/sessions/current", handlers.GetSessionHandler(store, secret))
		e.PUT("/api/sessions/current/mode", handlers.SwitchModeHandler(store, secret))
		e.PUT("/api/sessions/current/prompt", handlers.NewPromptHandler(store, secret))
	}
	{
		e.POST("/api/writing/submissions", handlers.SubmitDrawingHandler(store, secret, recognizer))
		e.POST("/api/reading/answers", handlers.SubmitAnswerHandler(store, secret))
	}
	e.GET("/api/health", handlers.HealthHandler(recognizer))

	e.StaticFS("/", echo.MustSubFS(webUI, "web"))

	log.Println("registred routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	cert, key := *pcert, *pkey
	if cert != "" && key != "" {
		e.Logger.Fatal(e.StartTLS(":"+port, cert, key))
	} else {
		e.Logger.Fatal(e.Start(":" + port))
	}
}
