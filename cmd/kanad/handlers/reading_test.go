package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dpetrashka/kanaweb/cmd/kanad/handlers"
	httptestutil "github.com/dpetrashka/kanaweb/internal/testutils/http"
	"github.com/dpetrashka/kanaweb/pkg/kana"
	"github.com/dpetrashka/kanaweb/pkg/session"
	"github.com/dpetrashka/kanaweb/pkg/session/mocks"
)

func readingStore(mode kana.Script, prompt string) *mocks.Store {
	mckstore := mocks.NewStore()
	mckstore.Impl.Get = func(id string) (session.Session, error) {
		return session.Session{
			ID: id, Practice: session.Reading, Mode: mode, Prompt: prompt,
		}, nil
	}
	return mckstore
}

func submitAnswer(t *testing.T, mckstore *mocks.Store, answer string) (error, *handlers.GradeView, int) {
	t.Helper()

	e := echo.New()
	c, respRec := httptestutil.Post(
		e, "/api/reading/answers",
		strings.NewReader(`{"answer":`+jsonString(answer)+`}`),
		httptestutil.ContentType("application/json"),
		httptestutil.WithCookie(sessionCookie(t, "session-1")),
	)

	testee := handlers.SubmitAnswerHandler(mckstore, testSecret)
	if err := testee(c); err != nil {
		return err, nil, 0
	}

	view := &handlers.GradeView{}
	if err := json.Unmarshal(respRec.Body.Bytes(), view); err != nil {
		t.Fatal(err)
	}
	return nil, view, respRec.Code
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestSubmitAnswerHandler(t *testing.T) {

	t.Run("the exact expected romaji grades correct", func(t *testing.T) {
		err, view, code := submitAnswer(t, readingStore(kana.Hiragana, "あ"), "a")
		if err != nil {
			t.Fatal(err)
		}
		if code != http.StatusOK {
			t.Errorf("status is %d, expected %d", code, http.StatusOK)
		}
		if !view.Correct {
			t.Error("grade is incorrect, unexpectedly")
		}
		if view.Expected != "a" || view.Prompt != "あ" {
			t.Errorf("unexpected response: %+v", view)
		}
	})

	t.Run("any other string grades incorrect, still a normal response", func(t *testing.T) {
		for _, answer := range []string{"aa", "A", ""} {
			err, view, code := submitAnswer(t, readingStore(kana.Hiragana, "あ"), answer)
			if err != nil {
				t.Fatal(err)
			}
			if code != http.StatusOK {
				t.Errorf("status is %d, expected %d", code, http.StatusOK)
			}
			if view.Correct {
				t.Errorf("answer %q grades correct, unexpectedly", answer)
			}
		}
	})

	t.Run("katakana prompts are graded against the katakana table", func(t *testing.T) {
		err, view, _ := submitAnswer(t, readingStore(kana.Katakana, "ツ"), "tsu")
		if err != nil {
			t.Fatal(err)
		}
		if !view.Correct {
			t.Error("grade is incorrect, unexpectedly")
		}
	})

	t.Run("a writing session cannot submit typed answers", func(t *testing.T) {
		mckstore := mocks.NewStore()
		mckstore.Impl.Get = func(id string) (session.Session, error) {
			return session.Session{
				ID: id, Practice: session.Writing, Mode: kana.Hiragana, Prompt: "ka",
			}, nil
		}

		err, _, _ := submitAnswer(t, mckstore, "ka")
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusConflict {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("without a session, it responds 404", func(t *testing.T) {
		mckstore := mocks.NewStore()

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/reading/answers",
			strings.NewReader(`{"answer":"a"}`),
			httptestutil.ContentType("application/json"),
		)

		testee := handlers.SubmitAnswerHandler(mckstore, testSecret)
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusNotFound {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
