package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/exporter"
)

const exportTTL = time.Hour

// ExportExcel 計画と記録の Excel ブックを生成し、ダウンロード用トークンを返す
// POST /api/export
func (h *Handlers) ExportExcel(c *gin.Context) {
	ex := exporter.New(h.sess.Projector)
	f, err := ex.Export()
	if err != nil {
		errorResponse(c, 3001, "エクスポート失敗: "+err.Error())
		return
	}
	defer f.Close()

	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("haccp_export_%s.xlsx", uuid.New().String()))
	if err := f.SaveAs(tmpPath); err != nil {
		errorResponse(c, 3001, "一時ファイルの保存失敗")
		return
	}

	fileName := exporter.FileName(h.sess.Plans.Plan().RestaurantName)
	token := h.downloads.put(tmpPath, fileName, exportTTL)

	success(c, gin.H{
		"downloadUrl": "/api/export/download/" + token,
		"fileName":    fileName,
		"expiresAt":   time.Now().Add(exportTTL).Format(time.RFC3339),
	})
}

// DownloadExport トークンでブックをダウンロードする
// GET /api/export/download/:token
func (h *Handlers) DownloadExport(c *gin.Context) {
	token := c.Param("token")

	dl, ok := h.downloads.get(token)
	if !ok {
		c.String(http.StatusNotFound, "ファイルが存在しないか期限切れです")
		return
	}

	// 日本語ファイル名は RFC 5987 形式で渡す
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(dl.fileName)))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.File(dl.filePath)
}
