package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"kasir/internal/handler"
	"kasir/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Handlers はルートに載せるハンドラ一式
type Handlers struct {
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Sale    *handler.SaleHandler
}

// DB疎通確認（*sql.DB が満たす）
type Pinger interface {
	PingContext(ctx context.Context) error
}

// New は echo を組み立てる。
func New(h Handlers, db Pinger, log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))

	RegisterRoutes(e, h, db)
	return e
}

// Run は ctx が終わるまで待ち受け、終わったら処理中のリクエストを待って止める。
func Run(ctx context.Context, e *echo.Echo, addr string, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}
