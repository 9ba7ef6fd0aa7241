package handler

import (
	"net/http"
	"strings"
	"time"

	"kasir/internal/usecase"

	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

// /sales（会計履歴・レシート再発行）
type SaleHandler struct {
	uc *usecase.SaleUsecase
}

func NewSaleHandler(uc *usecase.SaleUsecase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

func (h *SaleHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/sales")

	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.GET("/:id/receipt", h.receipt)
}

// from/to は YYYY-MM-DD（to はその日の終わりまで）か RFC3339
func (h *SaleHandler) list(c echo.Context) error {
	from, err := parseTimeParam(c.QueryParam("from"), false)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
	}
	to, err := parseTimeParam(c.QueryParam("to"), true)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
	}

	out, err := h.uc.List(c.Request().Context(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SaleHandler) detail(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SaleHandler) receipt(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	text, err := h.uc.Receipt(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.String(http.StatusOK, text+"\n")
}

func parseTimeParam(v string, endOfDay bool) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}

	if t, err := time.ParseInLocation(dateLayout, v, time.Local); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t, nil
	}

	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	t = t.In(time.Local)
	return &t, nil
}
