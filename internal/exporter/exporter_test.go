package exporter

import (
	"strings"
	"testing"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/classifier"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/kb"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/model"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/plan"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/record"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/view"
)

func newTestProjector(t *testing.T) *view.Projector {
	t.Helper()

	k := kb.Empty()
	c := classifier.New()
	plans := plan.NewStore(k, c)
	records := record.NewStore()

	header := plan.Header{RestaurantName: "屋台あおもり", Preparer: "山田", Date: "2025-07-01"}
	if err := plans.StageClassification(header, []string{"からあげ"}, map[int]model.Group{0: model.GroupHeated}); err != nil {
		t.Fatalf("StageClassification() error = %v", err)
	}

	rec := records.AddRecord("2025-07-10", "夏祭り", "佐藤")
	if err := records.SetCheckStatus(rec.ID, model.ItemCoolerTemp, model.StatusBad); err != nil {
		t.Fatalf("SetCheckStatus() error = %v", err)
	}
	if err := records.SetTemperature(rec.ID, model.ItemGroup1, "8.5"); err != nil {
		t.Fatalf("SetTemperature() error = %v", err)
	}

	return view.New(plans, records, k)
}

func TestExportSheets(t *testing.T) {
	e := New(newTestProjector(t))
	f, err := e.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "衛生管理計画" || sheets[1] != "衛生管理記録" {
		t.Errorf("GetSheetList() = %v, want [衛生管理計画 衛生管理記録]", sheets)
	}

	got, err := f.GetCellValue("衛生管理計画", "A1")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if got != "【衛生管理計画】" {
		t.Errorf("計画 A1 = %q, want 【衛生管理計画】", got)
	}

	// 記録シート: 1行目は日付列、2行目は催事名
	if got, _ := f.GetCellValue("衛生管理記録", "C1"); got != "2025-07-10" {
		t.Errorf("記録 C1 = %q, want 2025-07-10", got)
	}
	if got, _ := f.GetCellValue("衛生管理記録", "C2"); got != "夏祭り" {
		t.Errorf("記録 C2 = %q, want 夏祭り", got)
	}
}

func TestExportMarks(t *testing.T) {
	e := New(newTestProjector(t))
	f, err := e.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("衛生管理記録")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}

	var sawBad, sawTemp bool
	for _, row := range rows {
		for _, cell := range row {
			if cell == "❌" {
				sawBad = true
			}
			if strings.Contains(cell, "(8.5℃)") {
				sawTemp = true
			}
		}
	}
	if !sawBad {
		t.Error("不良マーク ❌ がシートに見つからない")
	}
	if !sawTemp {
		t.Error("温度付きマーク (8.5℃) がシートに見つからない")
	}
}

func TestExportBytes(t *testing.T) {
	e := New(newTestProjector(t))
	b, err := e.ExportBytes()
	if err != nil {
		t.Fatalf("ExportBytes() error = %v", err)
	}
	// xlsx は ZIP コンテナ
	if len(b) < 4 || b[0] != 'P' || b[1] != 'K' {
		t.Errorf("ExportBytes() の先頭 = %v, want ZIP シグネチャ PK", b[:min(4, len(b))])
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"屋台あおもり", "屋台あおもり_記録.xlsx"},
		{"", "衛生管理_記録.xlsx"},
	}
	for _, tt := range tests {
		if got := FileName(tt.name); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
