// Package mangaocr talks to a manga-ocr model server over HTTP.
//
// The server is expected to run next to this app (a sidecar container
// in the deployed setup) and to expose:
//
//   - POST /warmup    : load model weights. Body selects the source.
//   - GET  /health    : {"ready": bool}
//   - POST /recognize : image/png body -> {"text": "..."}
//
// Loading weights is the one slow operation in the system. It may
// include a network fetch of the published snapshot, so warmup runs
// under its own timeout with bounded retry, and happens at most once
// per loaded model.
package mangaocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	xerrors "github.com/dpetrashka/kanaweb/pkg/errors"
	"github.com/dpetrashka/kanaweb/pkg/ocr"
	"github.com/dpetrashka/kanaweb/pkg/utils/retry"
)

// DefaultModelRepo is the published manga-ocr snapshot, fetched by the
// model server when no local weights directory is given.
const DefaultModelRepo = "TareHimself/manga-ocr-base"

// ModelPathEnv names a local weights directory. When set, no remote
// fetch happens.
const ModelPathEnv = "MANGA_OCR_PRETRAINED_MODEL_PATH"

type Config struct {
	// Endpoint is the base URL of the model server.
	Endpoint string

	// ModelRepo identifies the remote snapshot. Empty = DefaultModelRepo.
	ModelRepo string

	// ModelPath is a local weights directory. Empty = $MANGA_OCR_PRETRAINED_MODEL_PATH,
	// and when that is empty too, the server fetches ModelRepo.
	ModelPath string

	// WarmupTimeout bounds model loading, including the snapshot fetch.
	WarmupTimeout time.Duration

	// RecognizeTimeout bounds a single recognition call.
	RecognizeTimeout time.Duration
}

const (
	defaultWarmupTimeout    = 5 * time.Minute
	defaultRecognizeTimeout = 30 * time.Second
)

type Client struct {
	conf Config
	http *http.Client

	mu     sync.Mutex
	loaded bool
}

var _ ocr.Recognizer = &Client{}

func New(conf Config) *Client {
	if conf.ModelRepo == "" {
		conf.ModelRepo = DefaultModelRepo
	}
	if conf.ModelPath == "" {
		conf.ModelPath = os.Getenv(ModelPathEnv)
	}
	if conf.WarmupTimeout <= 0 {
		conf.WarmupTimeout = defaultWarmupTimeout
	}
	if conf.RecognizeTimeout <= 0 {
		conf.RecognizeTimeout = defaultRecognizeTimeout
	}
	return &Client{
		conf: conf,
		http: &http.Client{},
	}
}

// EnsureReady loads the model if it is not loaded yet.
//
// A loaded model is never reloaded. A failed warmup does not poison the
// client; the next call tries again.
func (c *Client) EnsureReady(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}
	if err := c.warmup(ctx); err != nil {
		return fmt.Errorf("%w: %s", ocr.ErrModelUnavailable, err)
	}
	c.loaded = true
	return nil
}

func (c *Client) warmup(ctx context.Context) error {
	wctx, cancel := context.WithTimeout(ctx, c.conf.WarmupTimeout)
	defer cancel()

	source := struct {
		ModelPath string `json:"modelPath,omitempty"`
		ModelRepo string `json:"modelRepo,omitempty"`
	}{}
	if c.conf.ModelPath != "" {
		source.ModelPath = c.conf.ModelPath
	} else {
		source.ModelRepo = c.conf.ModelRepo
	}
	body, err := json.Marshal(source)
	if err != nil {
		return xerrors.Wrap(err)
	}

	req, err := http.NewRequestWithContext(
		wctx, http.MethodPost, c.conf.Endpoint+"/warmup", bytes.NewReader(body),
	)
	if err != nil {
		return xerrors.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return xerrors.WrapWithNote("model server is not reachable", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return xerrors.New(fmt.Sprintf("warmup rejected: status %d", resp.StatusCode))
	}

	// The snapshot fetch can take a while. Poll readiness with backoff
	// until the server reports the model is loaded, or the warmup
	// timeout runs out. This is the only retry in the app.
	_, err = retry.Blocking(wctx, retry.ExponentialBackoff(time.Second, 1.5), func() (struct{}, error) {
		if c.ready(wctx) {
			return struct{}{}, nil
		}
		return struct{}{}, fmt.Errorf("%w: model is not loaded yet", retry.ErrRetry)
	})
	if err != nil {
		return xerrors.WrapWithNote("model did not become ready", err)
	}
	return nil
}

func (c *Client) ready(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.conf.Endpoint+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	status := struct {
		Ready bool `json:"ready"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false
	}
	return status.Ready
}

func (c *Client) Recognize(ctx context.Context, png []byte) (string, error) {
	if len(png) == 0 {
		return "", ocr.ErrEmptyImage
	}
	if err := c.EnsureReady(ctx); err != nil {
		return "", err
	}

	rctx, cancel := context.WithTimeout(ctx, c.conf.RecognizeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(
		rctx, http.MethodPost, c.conf.Endpoint+"/recognize", bytes.NewReader(png),
	)
	if err != nil {
		return "", xerrors.Wrap(err)
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ocr.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf(
			"%w: recognize returned status %d: %s",
			ocr.ErrModelUnavailable, resp.StatusCode, strings.TrimSpace(string(payload)),
		)
	}

	result := struct {
		Text string `json:"text"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", xerrors.WrapWithNote("broken recognize response", err)
	}

	trimmed := strings.TrimSpace(result.Text)
	if trimmed == "" {
		return "", ocr.ErrEmptyRecognition
	}
	// The model may guess a longer string; only the first character
	// takes part in grading.
	return string([]rune(trimmed)[0]), nil
}

func (c *Client) Health(ctx context.Context) ocr.Health {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()

	if c.ready(ctx) {
		return ocr.Health{Healthy: true, ModelLoaded: true}
	}
	return ocr.Health{
		Healthy:     false,
		ModelLoaded: loaded,
		Message:     "model server is not ready",
	}
}
