package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/session"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/storage"
)

// 取り込むバックアップの上限。手書きの記録数ヶ月分でも到底届かない。
const maxBackupBytes = 4 << 20

// ExportBackup バックアップJSONのダウンロード
// GET /api/backup
func (h *Handlers) ExportBackup(c *gin.Context) {
	bundle, err := h.sess.ExportBundle()
	if err != nil {
		errorResponse(c, 3001, "バックアップの作成失敗: "+err.Error())
		return
	}

	data, err := session.MarshalBundle(bundle)
	if err != nil {
		errorResponse(c, 3001, "バックアップの作成失敗: "+err.Error())
		return
	}

	name := fmt.Sprintf("haccp_backup_%s.json", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// ImportBackup バックアップJSONの取り込み。形式が不正なら一切変更しない。
// POST /api/backup
func (h *Handlers) ImportBackup(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		errorResponse(c, 1001, "ファイルをアップロードしてください")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBackupBytes+1))
	if err != nil {
		errorResponse(c, 1002, "ファイルの読み取り失敗")
		return
	}
	if len(data) > maxBackupBytes {
		errorResponse(c, 1003, "ファイルが大きすぎます")
		return
	}

	if err := h.sess.ImportBundle(data); err != nil {
		var ferr *storage.FormatError
		if errors.As(err, &ferr) {
			errorResponse(c, 4003, "バックアップ形式が不正です: "+ferr.Message)
			return
		}
		errorResponse(c, 5001, "取り込み失敗: "+err.Error())
		return
	}

	success(c, h.sess.CurrentStatus())
}

// ClearAll 計画・記録の全削除
// POST /api/clear
func (h *Handlers) ClearAll(c *gin.Context) {
	if err := h.sess.ClearAll(); err != nil {
		errorResponse(c, 5001, "削除失敗: "+err.Error())
		return
	}
	success(c, gin.H{"cleared": true})
}
