package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/model"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/record"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/view"
)

func recordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorResponse(c, 1001, "記録IDが不正です")
		return 0, false
	}
	return id, true
}

// ListRecords 記録一覧（日付降順）
// GET /api/records
func (h *Handlers) ListRecords(c *gin.Context) {
	records := h.sess.Projector.SortedRecords()

	type recordSummary struct {
		*model.DailyRecord
		NeedsConfirmation bool `json:"needsConfirmation"`
		NeedsAttention    bool `json:"needsAttention"`
	}
	items := make([]recordSummary, 0, len(records))
	for _, r := range records {
		items = append(items, recordSummary{
			DailyRecord:       r,
			NeedsConfirmation: h.sess.Records.NeedsConfirmation(r.ID),
			NeedsAttention:    h.sess.Records.NeedsAttention(r.ID),
		})
	}

	success(c, gin.H{
		"total": len(items),
		"items": items,
	})
}

// CreateRecord 営業日記録の新規作成。催事名と記録者は直近の記録から
// 引き継げるため、空のまま送ってもよい。
// POST /api/records
func (h *Handlers) CreateRecord(c *gin.Context) {
	var req struct {
		Date        string `json:"date"`
		EventName   string `json:"eventName"`
		CheckerName string `json:"checkerName"`
		Force       bool   `json:"force"` // 同日重複の確認済みフラグ
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, 1001, "パラメータ誤り")
		return
	}
	if req.Date == "" {
		errorResponse(c, 1001, "日付は必須です")
		return
	}

	if !req.Force && h.sess.Records.HasDate(req.Date) {
		errorResponse(c, 4002, "同じ日付の記録が既にあります")
		return
	}

	eventName, checkerName := h.sess.Records.LatestDefaults()
	if req.EventName != "" {
		eventName = req.EventName
	}
	if req.CheckerName != "" {
		checkerName = req.CheckerName
	}

	rec := h.sess.Records.AddRecord(req.Date, eventName, checkerName)
	h.saveState()
	success(c, rec)
}

// UpdateRecordMeta 日付・催事名の変更
// PATCH /api/records/:id
func (h *Handlers) UpdateRecordMeta(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	var req struct {
		Date      *string `json:"date"`
		EventName *string `json:"eventName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, 1001, "パラメータ誤り")
		return
	}
	if req.Date == nil && req.EventName == nil {
		errorResponse(c, 1001, "パラメータ誤り")
		return
	}

	if _, found := h.sess.Records.Get(id); !found {
		errorResponse(c, 2001, "記録が存在しません")
		return
	}

	if req.Date != nil {
		h.sess.Records.SetDate(id, *req.Date)
	}
	if req.EventName != nil {
		h.sess.Records.SetEventName(id, *req.EventName)
	}

	h.saveState()
	success(c, gin.H{"updated": true})
}

// UpdateRecordCheck 点検項目の良・否の切り替え
// PATCH /api/records/:id/check
func (h *Handlers) UpdateRecordCheck(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	var req struct {
		ItemID string            `json:"itemId"`
		Status model.CheckStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, 1001, "パラメータ誤り")
		return
	}

	if err := h.sess.Records.SetCheckStatus(id, req.ItemID, req.Status); err != nil {
		handleRecordError(c, err)
		return
	}

	h.saveState()
	success(c, gin.H{"needsAttention": h.sess.Records.NeedsAttention(id)})
}

// UpdateRecordTemperature 温度実測値の入力。判定は温度から導出される。
// PATCH /api/records/:id/temperature
func (h *Handlers) UpdateRecordTemperature(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	var req struct {
		ItemID string `json:"itemId"`
		Value  string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, 1001, "パラメータ誤り")
		return
	}

	if err := h.sess.Records.SetTemperature(id, req.ItemID, req.Value); err != nil {
		handleRecordError(c, err)
		return
	}

	h.saveState()

	rec, _ := h.sess.Records.Get(id)
	var result model.CheckResult
	if rec != nil {
		result = rec.Checks[req.ItemID]
	}
	success(c, gin.H{
		"check":          result,
		"needsAttention": h.sess.Records.NeedsAttention(id),
	})
}

// UpdateRecordText 自由記入欄（特記事項・振り返り・記録者）の編集。
// 確認者名はここでは受け付けず、確認操作でのみ設定される。
// PATCH /api/records/:id/text
func (h *Handlers) UpdateRecordText(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, 1001, "パラメータ誤り")
		return
	}

	if err := h.sess.Records.SetText(id, req.Field, req.Value); err != nil {
		handleRecordError(c, err)
		return
	}

	h.saveState()
	success(c, gin.H{"updated": true})
}

// ConfirmRecord 記録の確認サイン。全項目記入済みのときだけ通る。
// POST /api/records/:id/confirm
func (h *Handlers) ConfirmRecord(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	var req struct {
		ConfirmerName string `json:"confirmerName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, 1001, "パラメータ誤り")
		return
	}

	if err := h.sess.Records.ConfirmRecord(id, req.ConfirmerName); err != nil {
		handleRecordError(c, err)
		return
	}

	h.saveState()
	success(c, gin.H{"confirmed": true})
}

// DeleteRecord 記録の削除
// DELETE /api/records/:id
func (h *Handlers) DeleteRecord(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	h.sess.Records.DeleteRecord(id)
	h.saveState()
	success(c, gin.H{"deleted": true})
}

// AppendMonthlyReview 月次振り返りを最新の記録の振り返り欄へ追記する
// POST /api/review
func (h *Handlers) AppendMonthlyReview(c *gin.Context) {
	var review record.MonthlyReview
	if err := c.ShouldBindJSON(&review); err != nil {
		errorResponse(c, 1001, "パラメータ誤り")
		return
	}

	id, ok := h.sess.Records.AppendReview(review.Format())
	if !ok {
		errorResponse(c, 2001, "追記先の記録がありません")
		return
	}

	h.saveState()
	success(c, gin.H{"recordId": id})
}

// GetRecordMatrix 点検表プレビュー用の行列とページ割り
// GET /api/records/matrix
func (h *Handlers) GetRecordMatrix(c *gin.Context) {
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))

	matrix := h.sess.Projector.RecordMatrix()
	pages := view.Paginate(len(matrix.Dates), pageSize)

	success(c, gin.H{
		"matrix": matrix,
		"pages":  pages,
	})
}

func handleRecordError(c *gin.Context, err error) {
	var perr *record.PreconditionError
	if errors.As(err, &perr) {
		errorResponse(c, 4002, perr.Message)
		return
	}
	errorResponse(c, 4001, err.Error())
}
