package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/dpetrashka/kanaweb/pkg/api/types/errors"
	"github.com/dpetrashka/kanaweb/pkg/kana"
	"github.com/dpetrashka/kanaweb/pkg/practice"
	"github.com/dpetrashka/kanaweb/pkg/session"
)

type AnswerRequest struct {
	Answer string `json:"answer"`
}

// SubmitAnswerHandler grades one reading-practice answer: the typed
// romaji for the session's current kana prompt. A wrong answer is a
// normal 200 response with Correct=false.
func SubmitAnswerHandler(store session.Store, secret []byte) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := currentSession(c, store, secret)
		if err != nil {
			return err
		}
		if sess.Practice != session.Reading {
			return apierr.Conflict("this session is for writing practice")
		}

		req := AnswerRequest{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			return apierr.BadRequest("format error", err)
		}

		result, err := practice.GradeReading(sess.Mode, kana.Glyph(sess.Prompt), req.Answer)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusOK, GradeView{
			Result: result,
			Mode:   string(sess.Mode),
			Prompt: sess.Prompt,
		})
	}
}
