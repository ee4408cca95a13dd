package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dpetrashka/kanaweb/cmd/kanad/handlers"
	httptestutil "github.com/dpetrashka/kanaweb/internal/testutils/http"
	"github.com/dpetrashka/kanaweb/pkg/kana"
	"github.com/dpetrashka/kanaweb/pkg/ocr"
	ocrmocks "github.com/dpetrashka/kanaweb/pkg/ocr/mocks"
	"github.com/dpetrashka/kanaweb/pkg/session"
	"github.com/dpetrashka/kanaweb/pkg/session/mocks"
)

// drawingPNG encodes a small white canvas with a black dot,
// standing in for a user drawing.
func drawingPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := range 32 {
		for x := range 32 {
			img.Set(x, y, color.White)
		}
	}
	img.Set(16, 16, color.Black)

	buf := bytes.Buffer{}
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writingStore(prompt string) *mocks.Store {
	mckstore := mocks.NewStore()
	mckstore.Impl.Get = func(id string) (session.Session, error) {
		return session.Session{
			ID: id, Practice: session.Writing, Mode: kana.Hiragana, Prompt: prompt,
		}, nil
	}
	return mckstore
}

func TestSubmitDrawingHandler(t *testing.T) {

	t.Run("a drawing recognized as the expected glyph grades correct", func(t *testing.T) {
		mckstore := writingStore("ka")
		mckrec := ocrmocks.NewRecognizer()
		mckrec.Impl.Recognize = func(ctx context.Context, png []byte) (string, error) {
			return "か", nil
		}

		e := echo.New()
		c, respRec := httptestutil.Post(
			e, "/api/writing/submissions", bytes.NewReader(drawingPNG(t)),
			httptestutil.ContentType("image/png"),
			httptestutil.WithCookie(sessionCookie(t, "session-1")),
		)

		testee := handlers.SubmitDrawingHandler(mckstore, testSecret, mckrec)
		if err := testee(c); err != nil {
			t.Fatal(err)
		}

		view := handlers.GradeView{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &view); err != nil {
			t.Fatal(err)
		}
		if !view.Correct {
			t.Error("grade is incorrect, unexpectedly")
		}
		if view.Expected != "か" || view.Given != "か" || view.Prompt != "ka" {
			t.Errorf("unexpected response: %+v", view)
		}
		if len(mckrec.Calls.Recognize) != 1 {
			t.Errorf("recognizer is called %d times, expected 1", len(mckrec.Calls.Recognize))
		}
	})

	t.Run("any other recognized character grades incorrect", func(t *testing.T) {
		mckstore := writingStore("ka")
		mckrec := ocrmocks.NewRecognizer()
		mckrec.Impl.Recognize = func(ctx context.Context, png []byte) (string, error) {
			return "き", nil
		}

		e := echo.New()
		c, respRec := httptestutil.Post(
			e, "/api/writing/submissions", bytes.NewReader(drawingPNG(t)),
			httptestutil.ContentType("image/png"),
			httptestutil.WithCookie(sessionCookie(t, "session-1")),
		)

		testee := handlers.SubmitDrawingHandler(mckstore, testSecret, mckrec)
		if err := testee(c); err != nil {
			t.Fatal(err)
		}

		view := handlers.GradeView{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &view); err != nil {
			t.Fatal(err)
		}
		if view.Correct {
			t.Error("grade is correct, unexpectedly")
		}
	})

	t.Run("empty recognition grades incorrect instead of failing", func(t *testing.T) {
		mckstore := writingStore("ka")
		mckrec := ocrmocks.NewRecognizer()
		mckrec.Impl.Recognize = func(ctx context.Context, png []byte) (string, error) {
			return "", ocr.ErrEmptyRecognition
		}

		e := echo.New()
		c, respRec := httptestutil.Post(
			e, "/api/writing/submissions", bytes.NewReader(drawingPNG(t)),
			httptestutil.ContentType("image/png"),
			httptestutil.WithCookie(sessionCookie(t, "session-1")),
		)

		testee := handlers.SubmitDrawingHandler(mckstore, testSecret, mckrec)
		if err := testee(c); err != nil {
			t.Fatal(err)
		}

		if respRec.Code != http.StatusOK {
			t.Errorf("status is %d, expected %d", respRec.Code, http.StatusOK)
		}
		view := handlers.GradeView{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &view); err != nil {
			t.Fatal(err)
		}
		if view.Correct {
			t.Error("grade is correct, unexpectedly")
		}
		if view.Given != "" {
			t.Errorf("unexpected response: %+v", view)
		}
	})

	t.Run("when the model is unavailable, it responds 503", func(t *testing.T) {
		mckstore := writingStore("ka")
		mckrec := ocrmocks.NewRecognizer()
		mckrec.Impl.Recognize = func(ctx context.Context, png []byte) (string, error) {
			return "", fmt.Errorf("%w: weights not fetched", ocr.ErrModelUnavailable)
		}

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/writing/submissions", bytes.NewReader(drawingPNG(t)),
			httptestutil.ContentType("image/png"),
			httptestutil.WithCookie(sessionCookie(t, "session-1")),
		)

		testee := handlers.SubmitDrawingHandler(mckstore, testSecret, mckrec)
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusServiceUnavailable {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("an empty body is rejected before any recognition", func(t *testing.T) {
		mckstore := writingStore("ka")
		mckrec := ocrmocks.NewRecognizer()

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/writing/submissions", bytes.NewReader(nil),
			httptestutil.ContentType("image/png"),
			httptestutil.WithCookie(sessionCookie(t, "session-1")),
		)

		testee := handlers.SubmitDrawingHandler(mckstore, testSecret, mckrec)
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusBadRequest {
			t.Errorf("unexpected error: %v", err)
		}
		if len(mckrec.Calls.Recognize) != 0 {
			t.Error("recognizer is called for an empty submission")
		}
	})

	t.Run("an oversized body is rejected before any recognition", func(t *testing.T) {
		mckstore := writingStore("ka")
		mckrec := ocrmocks.NewRecognizer()

		// a valid PNG header with multi-megabyte padding behind it;
		// truncating it would still decode, so the size check has to
		// fire first.
		oversized := append(drawingPNG(t), make([]byte, 4<<20)...)

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/writing/submissions", bytes.NewReader(oversized),
			httptestutil.ContentType("image/png"),
			httptestutil.WithCookie(sessionCookie(t, "session-1")),
		)

		testee := handlers.SubmitDrawingHandler(mckstore, testSecret, mckrec)
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusBadRequest {
			t.Errorf("unexpected error: %v", err)
		}
		if len(mckrec.Calls.Recognize) != 0 {
			t.Error("recognizer is called for an oversized submission")
		}
	})

	t.Run("a non-PNG body is rejected before any recognition", func(t *testing.T) {
		mckstore := writingStore("ka")
		mckrec := ocrmocks.NewRecognizer()

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/writing/submissions", strings.NewReader("this is not an image"),
			httptestutil.ContentType("image/png"),
			httptestutil.WithCookie(sessionCookie(t, "session-1")),
		)

		testee := handlers.SubmitDrawingHandler(mckstore, testSecret, mckrec)
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusBadRequest {
			t.Errorf("unexpected error: %v", err)
		}
		if len(mckrec.Calls.Recognize) != 0 {
			t.Error("recognizer is called for a non-PNG submission")
		}
	})

	t.Run("a reading session cannot submit drawings", func(t *testing.T) {
		mckstore := mocks.NewStore()
		mckstore.Impl.Get = func(id string) (session.Session, error) {
			return session.Session{
				ID: id, Practice: session.Reading, Mode: kana.Hiragana, Prompt: "あ",
			}, nil
		}
		mckrec := ocrmocks.NewRecognizer()

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/writing/submissions", bytes.NewReader(drawingPNG(t)),
			httptestutil.ContentType("image/png"),
			httptestutil.WithCookie(sessionCookie(t, "session-1")),
		)

		testee := handlers.SubmitDrawingHandler(mckstore, testSecret, mckrec)
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusConflict {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
