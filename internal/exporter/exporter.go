package exporter

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/view"
)

const (
	planSheetName   = "衛生管理計画"
	recordSheetName = "衛生管理記録"

	labelColWidth = 20
	dateColWidth  = 15
)

// Exporter 計画と記録を Excel ブック（2シート）へ書き出す。
// 射影が返す行タプルをそのまま埋めるだけで、状態は変更しない。
type Exporter struct {
	projector *view.Projector
}

// New エクスポータを作る
func New(p *view.Projector) *Exporter {
	return &Exporter{projector: p}
}

// Export ブックを組み立てる
func (e *Exporter) Export() (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", planSheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("計画シートの作成失敗: %w", err)
	}
	if err := writeRows(f, planSheetName, e.projector.PlanSummaryRows()); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.SetColWidth(planSheetName, "A", "B", labelColWidth); err != nil {
		_ = f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(recordSheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("記録シートの作成失敗: %w", err)
	}
	recordRows := e.projector.RecordSheetRows()
	if err := writeRows(f, recordSheetName, recordRows); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := setRecordColWidths(f, recordRows); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

// ExportBytes ブックをダウンロード用のバイト列にする
func (e *Exporter) ExportBytes() ([]byte, error) {
	f, err := e.Export()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("Excel 書き出し失敗: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName ダウンロードファイル名。店名が空なら「衛生管理」。
func FileName(restaurantName string) string {
	if restaurantName == "" {
		restaurantName = "衛生管理"
	}
	return restaurantName + "_記録.xlsx"
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for ri, row := range rows {
		for ci, value := range row {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return fmt.Errorf("セル座標の変換失敗: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("セル書き込み失敗 %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

// setRecordColWidths 先頭2列はラベル幅、以降の営業日列は日付幅
func setRecordColWidths(f *excelize.File, rows [][]string) error {
	if err := f.SetColWidth(recordSheetName, "A", "B", labelColWidth); err != nil {
		return err
	}
	if len(rows) == 0 || len(rows[0]) <= 2 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	return f.SetColWidth(recordSheetName, "C", last, dateColWidth)
}
