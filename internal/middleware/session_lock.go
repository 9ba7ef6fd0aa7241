package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"
)

// SessionLock はレジのセッション（カート）を触るリクエストを1つずつ通す。
// 待っている間にクライアントが切れたら 503 を返す。
func SessionLock(sem *semaphore.Weighted) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := sem.Acquire(c.Request().Context(), 1); err != nil {
				return c.JSON(http.StatusServiceUnavailable, errorJSON("session busy"))
			}
			defer sem.Release(1)

			return next(c)
		}
	}
}

// NewSessionSemaphore は SessionLock に渡す1枠のセマフォ
func NewSessionSemaphore() *semaphore.Weighted {
	return semaphore.NewWeighted(1)
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
