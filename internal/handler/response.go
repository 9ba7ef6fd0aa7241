package handler

import (
	"errors"
	"net/http"

	"kasir/internal/middleware"
	"kasir/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	// 在庫不足のときだけ
	Shortage *ShortageResponse `json:"shortage,omitempty"`
}

type ShortageResponse struct {
	ProductID int64  `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// エラーの種類 → HTTPステータス
var kindStatus = map[usecase.ErrorKind]int{
	usecase.KindValidation:        http.StatusBadRequest,
	usecase.KindDuplicateKey:      http.StatusConflict,
	usecase.KindNotFound:          http.StatusNotFound,
	usecase.KindInsufficientStock: http.StatusConflict,
	usecase.KindEmptyCart:         http.StatusBadRequest,
	usecase.KindPersistence:       http.StatusInternalServerError,
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	//ログはmiddlewareで出す
	c.Set(middleware.CtxErrorKey, err)

	ae, ok := usecase.AsAppError(err)
	if !ok {
		//500
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	status, ok := kindStatus[ae.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	res := ErrorResponse{Error: ae.Message, Kind: string(ae.Kind)}
	if status == http.StatusInternalServerError {
		//DBの中身は返さない
		res.Error = "internal error"
	}

	var shortage *usecase.StockShortage
	if ae.Kind == usecase.KindInsufficientStock && errors.As(err, &shortage) {
		res.Error = shortage.Error()
		res.Shortage = &ShortageResponse{
			ProductID: shortage.ProductID,
			SKU:       shortage.SKU,
			Name:      shortage.Name,
			Requested: shortage.Requested,
			Available: shortage.Available,
		}
	}

	return c.JSON(status, res)
}
