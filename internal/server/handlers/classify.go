package handlers

import (
	"github.com/gin-gonic/gin"
)

// Classify メニュー名一覧の一括分類
// POST /api/classify
func (h *Handlers) Classify(c *gin.Context) {
	var req struct {
		Names []string `json:"names"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, 1001, "パラメータ誤り")
		return
	}
	if len(req.Names) == 0 {
		errorResponse(c, 1001, "メニューが1品もありません")
		return
	}

	items, alerts := h.sess.Classifier.ClassifyBatch(req.Names)
	success(c, gin.H{
		"items":  items,
		"alerts": alerts,
	})
}
