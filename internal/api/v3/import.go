package v3

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/importer"
)

// HandleImport 导入预订表格
// POST /api/import
func (h *Handler) HandleImport(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的表单数据"})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	uploadedFile := files[0]
	f, err := uploadedFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败"})
		return
	}

	sum := sha256.Sum256(data)
	fileHash := hex.EncodeToString(sum[:])

	report, err := h.coordinator.Import(c.Request.Context(), data, uploadedFile.Filename)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, importer.ErrUnreadableInput) || errors.Is(err, importer.ErrNoUsableBlock) {
			status = http.StatusUnprocessableEntity
		}
		// 致命失败没有运行报告，补一个批次号，计数全零入日志
		if h.store != nil {
			logID, logErr := h.store.CreateImportLog(uuid.New().String(), uploadedFile.Filename, int64(len(data)), fileHash)
			if logErr == nil {
				_ = h.store.CompleteImportLog(logID, nil, "failed", err.Error())
			}
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if h.store != nil {
		logID, logErr := h.store.CreateImportLog(report.BatchID, uploadedFile.Filename, int64(len(data)), fileHash)
		if logErr == nil {
			_ = h.store.CompleteImportLog(logID, report, "completed", "")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"batchId":  report.BatchID,
		"filename": report.Filename,
		"sheets":   report.Sheets,
		"blocks":   report.Blocks,
		"created":  report.Created,
		"updated":  report.Updated,
		"skipped":  report.Skipped,
		"records":  report.Snapshots,
		"duration": report.Duration.String(),
	})
}
