package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/session"
)

// Handlers API処理器。セッション（計画・記録・分類器・永続化の束）への
// コマンド呼び出しに徹し、業務判断は各ストアに置く。
type Handlers struct {
	sess      *session.Session
	downloads *exportDownloadStore
}

// NewHandlers 処理器を作る
func NewHandlers(sess *session.Session) *Handlers {
	return &Handlers{
		sess:      sess,
		downloads: newExportDownloadStore(),
	}
}

// RegisterRoutes API ルートを登録する
func (h *Handlers) RegisterRoutes(router *gin.RouterGroup) {
	// 状態
	router.GET("/status", h.GetStatus)

	// メニュー分類
	router.POST("/classify", h.Classify)

	// 衛生管理計画
	router.GET("/plan", h.GetPlan)
	router.POST("/plan", h.StagePlan)
	router.PATCH("/plan/details", h.UpdateScheduleDetail)

	// 実施記録
	router.GET("/records", h.ListRecords)
	router.POST("/records", h.CreateRecord)
	router.GET("/records/matrix", h.GetRecordMatrix)
	router.PATCH("/records/:id", h.UpdateRecordMeta)
	router.PATCH("/records/:id/check", h.UpdateRecordCheck)
	router.PATCH("/records/:id/temperature", h.UpdateRecordTemperature)
	router.PATCH("/records/:id/text", h.UpdateRecordText)
	router.POST("/records/:id/confirm", h.ConfirmRecord)
	router.DELETE("/records/:id", h.DeleteRecord)

	// 月次振り返り
	router.POST("/review", h.AppendMonthlyReview)

	// バックアップ
	router.GET("/backup", h.ExportBackup)
	router.POST("/backup", h.ImportBackup)
	router.POST("/clear", h.ClearAll)

	// Excel エクスポート
	router.POST("/export", h.ExportExcel)
	router.GET("/export/download/:token", h.DownloadExport)
}

// Response 汎用レスポンス
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// saveState 変更のたびに永続化する。失敗してもリクエストは成功扱い。
func (h *Handlers) saveState() {
	if err := h.sess.SaveState(); err != nil {
		log.Printf("状態保存失敗: %v", err)
	}
}

// GetStatus セッション状態の取得
// GET /api/status
func (h *Handlers) GetStatus(c *gin.Context) {
	success(c, h.sess.CurrentStatus())
}
