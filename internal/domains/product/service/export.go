package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"shop-backend/internal/domains/product/model"
	"shop-backend/internal/shared/query"
)

const (
	exportSheet    = "Products"
	exportPageSize = 100
	exportMaxRows  = 50000
)

var exportHeaders = []string{
	"ID", "Name", "Slug", "SKU", "Brand", "Category",
	"Price", "Compare At Price", "Cost Price", "Stock",
	"Active", "Featured", "Created At",
}

// ExportProductsToExcel writes every product matching filter to a workbook.
// It returns the workbook and the number of exported rows.
func (s *ProductService) ExportProductsToExcel(ctx context.Context, filter model.ProductFilter) (*excelize.File, int, error) {
	filter.ActiveOnly = false
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, 0, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, 0, fmt.Errorf("write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		_ = f.SetCellStyle(exportSheet, "A1", last, style)
	}

	rowNum := 2
	for page := 1; rowNum-2 < exportMaxRows; page++ {
		filter.Page = query.Page{Page: page, Limit: exportPageSize}
		products, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, 0, err
		}

		for _, p := range products {
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			row := productRow(p)
			if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
				return nil, 0, fmt.Errorf("write row %d: %w", rowNum, err)
			}
			rowNum++
		}

		if len(products) < exportPageSize || int64(page*exportPageSize) >= total {
			break
		}
	}

	return f, rowNum - 2, nil
}

func productRow(p model.Product) []interface{} {
	price, _ := p.Price.Float64()
	return []interface{}{
		p.ID.String(),
		p.Name,
		p.Slug,
		deref(p.SKU),
		deref(p.Brand),
		deref(p.CategoryName),
		price,
		decimalCell(p.CompareAtPrice),
		decimalCell(p.CostPrice),
		p.Stock,
		p.IsActive,
		p.IsFeatured,
		p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func decimalCell(d *decimal.Decimal) interface{} {
	if d == nil {
		return ""
	}
	v, _ := d.Float64()
	return v
}
