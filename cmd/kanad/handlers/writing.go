package handlers

import (
	"bytes"
	"errors"
	"image/png"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/dpetrashka/kanaweb/pkg/api/types/errors"
	"github.com/dpetrashka/kanaweb/pkg/kana"
	"github.com/dpetrashka/kanaweb/pkg/ocr"
	"github.com/dpetrashka/kanaweb/pkg/practice"
	"github.com/dpetrashka/kanaweb/pkg/session"
)

// a 300px canvas PNG is a few kB; anything near this limit is not a drawing.
const maxDrawingBytes = 4 << 20

type GradeView struct {
	practice.Result
	Mode   string `json:"mode"`
	Prompt string `json:"prompt"`
}

// SubmitDrawingHandler grades one writing-practice submission: the
// request body is the PNG the user drew for the session's current
// romaji prompt. The drawing stays in memory; it is passed to the
// recognizer as bytes and never written to disk.
func SubmitDrawingHandler(store session.Store, secret []byte, rec ocr.Recognizer) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := currentSession(c, store, secret)
		if err != nil {
			return err
		}
		if sess.Practice != session.Writing {
			return apierr.Conflict("this session is for reading practice")
		}

		// read one byte past the limit, so an oversized submission is
		// told apart from one that just fits.
		drawing, err := io.ReadAll(io.LimitReader(c.Request().Body, maxDrawingBytes+1))
		if err != nil {
			return apierr.InternalServerError(err)
		}
		if maxDrawingBytes < len(drawing) {
			return apierr.BadRequest("the submission is too large for a drawing", nil)
		}
		if len(drawing) == 0 {
			return apierr.BadRequest("the canvas is empty; draw the character first", nil)
		}
		if conf, err := png.DecodeConfig(bytes.NewReader(drawing)); err != nil {
			return apierr.BadRequest("the submission is not a PNG image", err)
		} else if conf.Width == 0 || conf.Height == 0 {
			return apierr.BadRequest("the submitted image has no pixels", nil)
		}

		expected, err := kana.Check(sess.Mode, kana.Syllable(sess.Prompt))
		if err != nil {
			// the prompt came out of the reference table; failing to look
			// it up again means the table and the session disagree.
			return apierr.InternalServerError(err)
		}

		recognized, err := rec.Recognize(c.Request().Context(), drawing)
		switch {
		case errors.Is(err, ocr.ErrEmptyRecognition):
			// the model saw nothing readable; grade it as a miss.
			recognized = ""
		case errors.Is(err, ocr.ErrModelUnavailable):
			return apierr.ServiceUnavailable(
				"the recognition model is loading or unreachable; try again in a moment", err,
			)
		case err != nil:
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusOK, GradeView{
			Result: practice.GradeWriting(expected, recognized),
			Mode:   string(sess.Mode),
			Prompt: sess.Prompt,
		})
	}
}
