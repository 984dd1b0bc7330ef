package view

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/kb"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/model"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/plan"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/record"
)

// DefaultPageSize 印刷1ページに収める営業日列の数
const DefaultPageSize = 5

// recordRow 記録表の固定行定義（管理項目 + 基準）
type recordRow struct {
	itemID    string
	label     string
	criterion string
}

// 記録表の必須9行。分類に該当メニューが無くても行は出る。
var mandatoryRows = []recordRow{
	{model.ItemMaterials, "①原材料受入", "品温/異物/期限"},
	{model.ItemCoolerTemp, "②冷蔵庫等温度", "適切に冷却"},
	{model.ItemCrossContamination, "③交差汚染防止", "器具区別/洗浄"},
	{model.ItemEquipmentCleaning, "④器具等の洗浄", "手順通り実施"},
	{model.ItemEmployeeHealth, "⑤従事者健康", "健康状態良好"},
	{model.ItemHandwashing, "⑥手洗い", "手順通り実施"},
	{model.ItemGroup1, "【重】非加熱品", "10℃以下保管"},
	{model.ItemGroup2, "【重】加熱品", "中心部まで加熱"},
	{model.ItemGroup3, "【重】物品販売", "適切温度保管"},
}

// 自由記入の4行
var freeTextRows = []recordRow{
	{model.FieldSpecialNotes, "特記事項", ""},
	{model.FieldReviewNotes, "振り返り", ""},
	{model.FieldCheckerName, "チェック者", ""},
	{model.FieldConfirmerName, "確認者", ""},
}

// MatrixCell 記録表の1セル
type MatrixCell struct {
	RecordID    int64             `json:"recordId"`
	Status      model.CheckStatus `json:"status,omitempty"`
	Temperature string            `json:"temperature,omitempty"`
	Text        string            `json:"text,omitempty"`
}

// MatrixRow 記録表の1行（ラベル・基準 + 営業日ごとのセル）
type MatrixRow struct {
	ItemID      string       `json:"itemId"`
	Label       string       `json:"label"`
	Criterion   string       `json:"criterion"`
	IsGroupRow  bool         `json:"isGroupRow"`
	GroupActive bool         `json:"groupActive"`
	Cells       []MatrixCell `json:"cells"`
}

// Matrix 記録表全体の射影
type Matrix struct {
	RecordIDs  []int64     `json:"recordIds"`
	Dates      []string    `json:"dates"`
	EventNames []string    `json:"eventNames"`
	Rows       []MatrixRow `json:"rows"`
}

// Page 印刷分割の1ページ分（営業日列の範囲）。
// 先頭2列（管理項目・基準）は全ページに付く。
type Page struct {
	Start int `json:"start"`
	Size  int `json:"size"`
}

// Projector 計画と記録の読み取り専用射影。状態は持たない。
// 参照データは起動後に非同期で差し替わるため、読み書きをロックで守る。
type Projector struct {
	plans   *plan.Store
	records *record.Store

	mu sync.RWMutex
	kb *kb.KnowledgeBase
}

// New 射影を作る
func New(plans *plan.Store, records *record.Store, k *kb.KnowledgeBase) *Projector {
	return &Projector{plans: plans, records: records, kb: k}
}

// SetKnowledgeBase 参照データ読み込み完了時に差し替える
func (p *Projector) SetKnowledgeBase(k *kb.KnowledgeBase) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kb = k
}

func (p *Projector) knowledgeBase() *kb.KnowledgeBase {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.kb
}

// SortedRecords 日付降順の記録。同じ日付は追加順のまま（安定ソート）。
func (p *Projector) SortedRecords() []*model.DailyRecord {
	records := p.records.Records()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
	return records
}

// RecordMatrix 必須9行 + 自由記入4行 × 営業日列 の射影。
// 帳票・印刷レンダラが消費する純粋な表データで、ここでは状態を変更しない。
func (p *Projector) RecordMatrix() *Matrix {
	sorted := p.SortedRecords()
	classification := p.plans.Plan().Classification

	m := &Matrix{
		RecordIDs:  make([]int64, 0, len(sorted)),
		Dates:      make([]string, 0, len(sorted)),
		EventNames: make([]string, 0, len(sorted)),
	}
	for _, r := range sorted {
		m.RecordIDs = append(m.RecordIDs, r.ID)
		m.Dates = append(m.Dates, r.Date)
		m.EventNames = append(m.EventNames, r.EventName)
	}

	for _, row := range mandatoryRows {
		g, isGroup := groupOfItem(row.itemID)
		label := row.label
		active := false
		if isGroup {
			names := classification[g]
			active = len(names) > 0
			if active {
				label = fmt.Sprintf("%s (%s)", row.label, strings.Join(names, ", "))
			}
		}

		mr := MatrixRow{
			ItemID:      row.itemID,
			Label:       label,
			Criterion:   row.criterion,
			IsGroupRow:  isGroup,
			GroupActive: active,
		}
		for _, r := range sorted {
			c := r.Checks[row.itemID]
			mr.Cells = append(mr.Cells, MatrixCell{
				RecordID:    r.ID,
				Status:      c.Status,
				Temperature: c.Temperature,
			})
		}
		m.Rows = append(m.Rows, mr)
	}

	for _, row := range freeTextRows {
		mr := MatrixRow{ItemID: row.itemID, Label: row.label}
		for _, r := range sorted {
			mr.Cells = append(mr.Cells, MatrixCell{
				RecordID: r.ID,
				Text:     freeTextValue(r, row.itemID),
			})
		}
		m.Rows = append(m.Rows, mr)
	}

	return m
}

// Paginate 営業日列を pageSize 列ずつのページへ分割する。
// pageSize が 0 以下なら DefaultPageSize。列数 0 はページなし。
func Paginate(columnCount, pageSize int) []Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var pages []Page
	for start := 0; start < columnCount; start += pageSize {
		size := pageSize
		if start+size > columnCount {
			size = columnCount - start
		}
		pages = append(pages, Page{Start: start, Size: size})
	}
	return pages
}

// PlanSummaryRows 計画シートの行タプル列（ラベル + 最大3セル）
func (p *Projector) PlanSummaryRows() [][]string {
	pl := p.plans.Plan()

	rows := [][]string{
		{"【衛生管理計画】"},
		{"店名", pl.RestaurantName},
		{"作成者", pl.Preparer},
		{"作成日", pl.Date},
		{},
		{"[一般衛生管理]"},
	}
	k := p.knowledgeBase()
	for _, item := range k.GeneralItems {
		d := p.plans.EffectiveGeneralDetail(item.ID)
		rows = append(rows, []string{
			item.Name,
			"いつ:" + d.When,
			"誰が:" + d.Responsible,
			"対応:" + d.Response,
		})
	}
	rows = append(rows, []string{}, []string{"[重要管理]"})
	for _, g := range model.Groups() {
		names := pl.Classification[g]
		if len(names) == 0 {
			continue
		}
		item, _ := k.CriticalItem(g)
		d := p.plans.EffectiveCriticalDetail(g)
		rows = append(rows, []string{
			item.Title,
			"対象:" + strings.Join(names, ", "),
			"いつ:" + d.When,
			"対応:" + d.Response,
		})
	}
	return rows
}

// RecordSheetRows 記録シートの行タプル列。
// 1行目: 項目/基準 + 日付、2行目: イベント名、以降は ✅/❌ 表記のセル。
// 非加熱品の行は温度があれば「✅(8.5℃)」の形式になる。
func (p *Projector) RecordSheetRows() [][]string {
	sorted := p.SortedRecords()

	header := []string{"項目", "基準"}
	events := []string{"", ""}
	for _, r := range sorted {
		header = append(header, r.Date)
		events = append(events, r.EventName)
	}
	rows := [][]string{header, events}

	for _, row := range mandatoryRows {
		cells := []string{row.label, row.criterion}
		for _, r := range sorted {
			c := r.Checks[row.itemID]
			mark := statusMark(c.Status)
			if row.itemID == model.ItemGroup1 && c.Temperature != "" {
				mark = fmt.Sprintf("%s(%s℃)", mark, c.Temperature)
			}
			cells = append(cells, mark)
		}
		rows = append(rows, cells)
	}

	for _, row := range freeTextRows {
		cells := []string{row.label, ""}
		for _, r := range sorted {
			cells = append(cells, freeTextValue(r, row.itemID))
		}
		rows = append(rows, cells)
	}

	return rows
}

func statusMark(s model.CheckStatus) string {
	switch s {
	case model.StatusGood:
		return "✅"
	case model.StatusBad:
		return "❌"
	default:
		return ""
	}
}

func freeTextValue(r *model.DailyRecord, field string) string {
	switch field {
	case model.FieldSpecialNotes:
		return r.SpecialNotes
	case model.FieldReviewNotes:
		return r.ReviewNotes
	case model.FieldCheckerName:
		return r.CheckerName
	case model.FieldConfirmerName:
		return r.ConfirmerName
	default:
		return ""
	}
}

func groupOfItem(itemID string) (model.Group, bool) {
	switch itemID {
	case model.ItemGroup1:
		return model.GroupNonHeated, true
	case model.ItemGroup2:
		return model.GroupHeated, true
	case model.ItemGroup3:
		return model.GroupRetail, true
	default:
		return 0, false
	}
}
