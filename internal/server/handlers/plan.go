package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/model"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/plan"
)

// GetPlan 現在の計画と、参照データの既定値を埋めた実施詳細の取得
// GET /api/plan
func (h *Handlers) GetPlan(c *gin.Context) {
	p := h.sess.Plans.Plan()

	generalDetails := make(map[string]model.ScheduleDetail)
	for _, item := range h.sess.KB().GeneralItems {
		generalDetails[item.ID] = h.sess.Plans.EffectiveGeneralDetail(item.ID)
	}

	criticalDetails := make(map[string]model.CriticalDetail)
	for _, g := range model.Groups() {
		if len(p.Classification[g]) == 0 {
			continue
		}
		criticalDetails[strconv.Itoa(int(g))] = h.sess.Plans.EffectiveCriticalDetail(g)
	}

	success(c, gin.H{
		"plan":            p,
		"generalDetails":  generalDetails,
		"criticalDetails": criticalDetails,
	})
}

// StagePlan 分類確認後の計画生成（Step1〜2 の確定）
// POST /api/plan
func (h *Handlers) StagePlan(c *gin.Context) {
	var req struct {
		RestaurantName string              `json:"restaurantName"`
		Preparer       string              `json:"planPreparer"`
		Date           string              `json:"planDate"`
		MenuItems      []string            `json:"menuItems"`
		Overrides      map[int]model.Group `json:"overrides"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, 1001, "パラメータ誤り")
		return
	}

	header := plan.Header{
		RestaurantName: req.RestaurantName,
		Preparer:       req.Preparer,
		Date:           req.Date,
	}
	if err := h.sess.Plans.StageClassification(header, req.MenuItems, req.Overrides); err != nil {
		var verr *plan.ValidationError
		if errors.As(err, &verr) {
			errorResponse(c, 4001, verr.Message)
			return
		}
		errorResponse(c, 5001, err.Error())
		return
	}

	h.saveState()
	success(c, h.sess.Plans.Plan())
}

// UpdateScheduleDetail 実施計画詳細（いつ・どうやって・誰が）の更新
// PATCH /api/plan/details
func (h *Handlers) UpdateScheduleDetail(c *gin.Context) {
	var req struct {
		Kind   string               `json:"kind"` // general / critical
		ID     string               `json:"id"`   // 項目ID または 分類番号
		Detail model.ScheduleDetail `json:"detail"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, 1001, "パラメータ誤り")
		return
	}

	if err := h.sess.Plans.UpdateScheduleDetail(req.Kind, req.ID, req.Detail); err != nil {
		var verr *plan.ValidationError
		if errors.As(err, &verr) {
			errorResponse(c, 4001, verr.Message)
			return
		}
		errorResponse(c, 5001, err.Error())
		return
	}

	h.saveState()
	success(c, gin.H{"updated": true})
}
