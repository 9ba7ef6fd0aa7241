package handler

import (
	"net/http"
	"strings"

	"kasir/internal/pricing"
	"kasir/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /cart と /checkout のHTTP（レジ1台分のセッション）
type CartHandler struct {
	uc         *usecase.CartUsecase
	checkoutUC *usecase.CheckoutUsecase
	defaultTax decimal.Decimal
}

// DI
func NewCartHandler(uc *usecase.CartUsecase, checkoutUC *usecase.CheckoutUsecase, defaultTax decimal.Decimal) *CartHandler {
	return &CartHandler{uc: uc, checkoutUC: checkoutUC, defaultTax: defaultTax}
}

type AddCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// /cart, /cart/items/{product_id}, /checkout を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, mws ...echo.MiddlewareFunc) {
	g := e.Group("/cart", mws...)
	g.GET("", h.getCart)
	g.DELETE("", h.clear)
	g.POST("/items", h.addItem)
	g.PATCH("/items/:product_id", h.patchItem)
	g.DELETE("/items/:product_id", h.deleteItem)

	e.POST("/checkout", h.checkout, mws...)
}

func (h *CartHandler) getCart(c echo.Context) error {
	out, err := h.uc.View(c.Request().Context(), h.taxFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Add(c.Request().Context(), req.ProductID, req.Quantity, h.taxFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) patchItem(c echo.Context) error {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateQuantity(c.Request().Context(), productID, req.Quantity, h.taxFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	out, err := h.uc.Remove(c.Request().Context(), productID, h.taxFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	out, err := h.uc.Clear(c.Request().Context(), h.taxFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// body の tax_percent（文字列でも数値でも可）。無ければ既定の税率。
func (h *CartHandler) checkout(c echo.Context) error {
	fields, err := bindFields(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.checkoutUC.Checkout(c.Request().Context(), h.uc.Cart(), h.resolveTax(fields["tax_percent"]))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CartHandler) taxFromQuery(c echo.Context) decimal.Decimal {
	return h.resolveTax(c.QueryParam("tax"))
}

// 空なら既定値、それ以外は解釈できなければ0
func (h *CartHandler) resolveTax(raw string) decimal.Decimal {
	if strings.TrimSpace(raw) == "" {
		return h.defaultTax
	}
	return pricing.ParseTaxPercent(raw)
}
