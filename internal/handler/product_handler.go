package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"kasir/internal/usecase"

	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// /products（カタログ管理・取り込み）
type ProductHandler struct {
	uc       *usecase.ProductUsecase
	importUC *usecase.ImportUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase, importUC *usecase.ImportUsecase) *ProductHandler {
	return &ProductHandler{uc: uc, importUC: importUC}
}

type StockRequest struct {
	Stock int64 `json:"stock"`
}

type RestockRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/products")

	g.GET("", h.search)
	g.POST("", h.create)
	//静的パスを先に
	g.POST("/import", h.importFile)
	g.GET("/export", h.export)
	g.GET("/:id", h.detail)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.PUT("/:id/stock", h.setStock)
	g.POST("/:id/restock", h.restock)
}

func (h *ProductHandler) search(c echo.Context) error {
	items, err := h.uc.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	p, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) create(c echo.Context) error {
	in, err := bindProductInput(c)
	if err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	in, err := bindProductInput(c)
	if err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.Update(c.Request().Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *ProductHandler) setStock(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req StockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.AdjustStock(c.Request().Context(), id, req.Stock)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) restock(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req RestockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.Restock(c.Request().Context(), id, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// multipart の file（.csv / .xlsx）
func (h *ProductHandler) importFile(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot open file"})
	}
	defer f.Close()

	ctx := c.Request().Context()

	var res usecase.ImportResult
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".csv":
		res, err = h.importUC.ImportCSV(ctx, f)
	case ".xlsx":
		res, err = h.importUC.ImportXLSX(ctx, f, fh.Size)
	default:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file must be .csv or .xlsx"})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ProductHandler) export(c echo.Context) error {
	//途中で失敗したときに壊れたファイルを返さないよう一度バッファに書く
	var buf bytes.Buffer
	if err := h.importUC.ExportXLSX(c.Request().Context(), &buf); err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// 数値は文字列でも数値でも受ける
func bindProductInput(c echo.Context) (usecase.ProductInput, error) {
	fields, err := bindFields(c)
	if err != nil {
		return usecase.ProductInput{}, err
	}
	return usecase.ProductInputFromFields(fields)
}

// bindFields は JSON / form の値をすべて文字列にそろえる。
func bindFields(c echo.Context) (map[string]string, error) {
	body := map[string]any{}
	if err := c.Bind(&body); err != nil {
		return nil, usecase.NewAppError(usecase.KindValidation, "invalid body")
	}

	out := make(map[string]string, len(body))
	for k, v := range body {
		switch x := v.(type) {
		case nil:
		case string:
			out[k] = x
		case float64:
			out[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case json.Number:
			out[k] = x.String()
		case []string:
			if len(x) > 0 {
				out[k] = x[0]
			}
		default:
			out[k] = ""
		}
	}
	return out, nil
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
