package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierr "github.com/dpetrashka/kanaweb/pkg/api/types/errors"
	"github.com/dpetrashka/kanaweb/pkg/kana"
	"github.com/dpetrashka/kanaweb/pkg/session"
)

// SessionCookie carries the signed session token.
const SessionCookie = "kana_session"

type SessionRequest struct {
	Practice string `json:"practice"`
	Mode     string `json:"mode"`
}

type ModeRequest struct {
	Mode string `json:"mode"`
}

type SessionView struct {
	Practice string `json:"practice"`
	Mode     string `json:"mode"`
	Prompt   string `json:"prompt"`
}

func ComposeSessionView(s session.Session) SessionView {
	return SessionView{
		Practice: string(s.Practice),
		Mode:     string(s.Mode),
		Prompt:   s.Prompt,
	}
}

func CreateSessionHandler(store session.Store, secret []byte, ttl time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := SessionRequest{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			return apierr.BadRequest("format error", err)
		}

		sess, err := store.New(session.Practice(req.Practice), kana.Script(req.Mode))
		if errors.Is(err, session.ErrUnknownPractice) {
			return apierr.BadRequest(`practice should be "writing" or "reading"`, err)
		}
		if errors.Is(err, kana.ErrUnknownScript) {
			return apierr.BadRequest(`mode should be "hiragana" or "katakana"`, err)
		}
		if err != nil {
			return apierr.InternalServerError(err)
		}

		token, err := session.SignToken(secret, sess.ID, ttl, time.Now())
		if err != nil {
			return apierr.InternalServerError(err)
		}
		cookie := &http.Cookie{
			Name:     SessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		if ttl > 0 {
			cookie.MaxAge = int(ttl.Seconds())
		}
		c.SetCookie(cookie)

		return c.JSON(http.StatusCreated, ComposeSessionView(sess))
	}
}

// currentSession resolves the session the request's cookie points at.
// Missing, forged or expired cookies all read as "no session".
func currentSession(c echo.Context, store session.Store, secret []byte) (session.Session, error) {
	noSession := apierr.NewErrorMessage(
		http.StatusNotFound, "no session",
		apierr.WithAdvice("create a session first"),
	)

	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return session.Session{}, noSession
	}
	id, err := session.VerifyToken(secret, cookie.Value)
	if err != nil {
		return session.Session{}, noSession
	}
	sess, err := store.Get(id)
	if errors.Is(err, session.ErrNotFound) {
		return session.Session{}, noSession
	}
	if err != nil {
		return session.Session{}, apierr.InternalServerError(err)
	}
	return sess, nil
}

func GetSessionHandler(store session.Store, secret []byte) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := currentSession(c, store, secret)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, ComposeSessionView(sess))
	}
}

func SwitchModeHandler(store session.Store, secret []byte) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := currentSession(c, store, secret)
		if err != nil {
			return err
		}

		req := ModeRequest{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			return apierr.BadRequest("format error", err)
		}

		switched, err := store.SwitchMode(sess.ID, kana.Script(req.Mode))
		if errors.Is(err, kana.ErrUnknownScript) {
			return apierr.BadRequest(`mode should be "hiragana" or "katakana"`, err)
		}
		if errors.Is(err, session.ErrNotFound) {
			return apierr.NotFound()
		}
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, ComposeSessionView(switched))
	}
}

func NewPromptHandler(store session.Store, secret []byte) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := currentSession(c, store, secret)
		if err != nil {
			return err
		}

		next, err := store.NewPrompt(sess.ID)
		if errors.Is(err, session.ErrNotFound) {
			return apierr.NotFound()
		}
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, ComposeSessionView(next))
	}
}
