package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"kasir/internal/domain/model"
	"kasir/internal/logger"
	repo "kasir/internal/repository"

	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
)

// 取り込み・書き出しの列
var catalogColumns = []string{"sku", "name", "price", "stock"}

// 起動時に入れるサンプル商品
var SampleProducts = []model.Product{
	{SKU: "E026", Name: "Mizone", Price: 3000, Stock: 20},
	{SKU: "E027", Name: "Bubble Gum", Price: 4000, Stock: 15},
	{SKU: "E028", Name: "Sunpride Banana", Price: 5000, Stock: 10},
	{SKU: "B051", Name: "Crackers", Price: 12000, Stock: 30},
	{SKU: "C076", Name: "Ketchup", Price: 12000, Stock: 25},
}

type ImportResult struct {
	Imported int `json:"imported"`
	// 既存SKU（ファイル内の重複も含む）で飛ばした行
	Skipped int `json:"skipped"`
	// sku/name が無い行
	Invalid int `json:"invalid"`
}

// ImportUsecase は商品の一括登録と書き出し。
type ImportUsecase struct {
	tx          repo.TransactionManager
	productRepo repo.ProductRepository
	logger      *zap.Logger
}

func NewImportUsecase(tx repo.TransactionManager, productRepo repo.ProductRepository, log *zap.Logger) *ImportUsecase {
	return &ImportUsecase{
		tx:          tx,
		productRepo: productRepo,
		logger:      logger.OrNop(log),
	}
}

// ImportRows は1行＝列名→値の形で受け取り、1トランザクションで登録する。
// 既にあるSKUは上書きせずに飛ばす。価格・在庫が数値でなければ0。
func (u *ImportUsecase) ImportRows(ctx context.Context, rows []map[string]string) (ImportResult, error) {
	var res ImportResult

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		res = ImportResult{}
		seen := make(map[string]bool, len(rows))

		for _, row := range rows {
			p, err := model.ProductFromFields(normalizeRow(row))
			if err != nil {
				res.Invalid++
				continue
			}

			if seen[p.SKU] {
				res.Skipped++
				continue
			}
			seen[p.SKU] = true

			_, err = r.Products().FindBySKU(ctx, p.SKU)
			if err == nil {
				res.Skipped++
				continue
			}
			if !errors.Is(err, repo.ErrNotFound) {
				return persistenceError(err)
			}

			if _, err := r.Products().Create(ctx, p); err != nil {
				return persistenceError(err)
			}
			res.Imported++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	u.logger.Info("catalog import finished",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Int("invalid", res.Invalid))
	return res, nil
}

// ImportCSV はヘッダ付きCSV（sku,name,price,stock）を取り込む。
func (u *ImportUsecase) ImportCSV(ctx context.Context, src io.Reader) (ImportResult, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return ImportResult{}, wrapAppError(KindValidation, "invalid csv", err)
	}
	rows, err := recordsToRows(records)
	if err != nil {
		return ImportResult{}, err
	}
	return u.ImportRows(ctx, rows)
}

// ImportXLSX は1枚目のシートを取り込む。1行目はヘッダ。
func (u *ImportUsecase) ImportXLSX(ctx context.Context, src io.ReaderAt, size int64) (ImportResult, error) {
	book, err := xlsx.OpenReaderAt(src, size)
	if err != nil {
		return ImportResult{}, wrapAppError(KindValidation, "invalid xlsx", err)
	}
	if len(book.Sheets) == 0 {
		return ImportResult{}, NewAppError(KindValidation, "xlsx has no sheet")
	}

	sheet := book.Sheets[0]
	records := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			continue
		}
		rec := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			rec = append(rec, cell.String())
		}
		records = append(records, rec)
	}

	rows, err := recordsToRows(records)
	if err != nil {
		return ImportResult{}, err
	}
	return u.ImportRows(ctx, rows)
}

// ExportXLSX は全商品をxlsxで書き出す。
func (u *ImportUsecase) ExportXLSX(ctx context.Context, w io.Writer) error {
	products, err := u.productRepo.ListAll(ctx)
	if err != nil {
		return persistenceError(err)
	}

	book := xlsx.NewFile()
	sheet, err := book.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, col := range catalogColumns {
		header.AddCell().SetValue(col)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.SKU)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Price)
		row.AddCell().SetValue(p.Stock)
	}

	if err := book.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// SeedSample はサンプル商品を、無いものだけ登録する。
func (u *ImportUsecase) SeedSample(ctx context.Context) (ImportResult, error) {
	rows := make([]map[string]string, 0, len(SampleProducts))
	for _, p := range SampleProducts {
		rows = append(rows, map[string]string{
			"sku":   p.SKU,
			"name":  p.Name,
			"price": strconv.FormatInt(p.Price, 10),
			"stock": strconv.FormatInt(p.Stock, 10),
		})
	}
	return u.ImportRows(ctx, rows)
}

// 1行目をヘッダとして列名→値にする
func recordsToRows(records [][]string) ([]map[string]string, error) {
	if len(records) == 0 {
		return nil, NewAppError(KindValidation, "file is empty or missing header row")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	hasSKU := false
	for _, h := range header {
		if h == "sku" {
			hasSKU = true
		}
	}
	if !hasSKU {
		return nil, NewAppError(KindValidation, "header must contain sku,name,price,stock")
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlankRecord(rec) {
			continue
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// 価格・在庫が数値でない（負も含む）なら0にする
func normalizeRow(row map[string]string) map[string]string {
	out := make(map[string]string, len(catalogColumns))
	for _, col := range catalogColumns {
		out[col] = strings.TrimSpace(row[col])
	}
	for _, col := range []string{"price", "stock"} {
		if n, err := strconv.ParseInt(out[col], 10, 64); err != nil || n < 0 {
			out[col] = "0"
		}
	}
	return out
}
