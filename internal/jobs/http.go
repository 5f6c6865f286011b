package jobs

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Enqueuer はジョブをキューへ投入できるコンポーネントが実装します。
type Enqueuer interface {
	Enqueue(ctx context.Context, filename string, content []byte, asBase64 bool) (string, error)
}

// SubmitHandler は POST /api/convert/async のハンドラーを返します。
// サイズ上限を超える入力はキューに入る前に拒否します。
func SubmitHandler(q Enqueuer, maxFileSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "multipart/form-data でファイルを送信してください。",
			})
			return
		}
		defer form.RemoveAll()

		file, err := extractSingleFile(form)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": err.Error(),
			})
			return
		}

		if maxFileSize > 0 && file.Size > maxFileSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"code":    "PAYLOAD_TOO_LARGE",
				"message": fmt.Sprintf("ファイルが大きすぎます。最大 %d バイトまで受け付けます。", maxFileSize),
			})
			return
		}

		content, err := readMultipartFile(file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "アップロードされたファイルの読み込みに失敗しました。",
			})
			return
		}
		if maxFileSize > 0 && int64(len(content)) > maxFileSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"code":    "PAYLOAD_TOO_LARGE",
				"message": fmt.Sprintf("ファイルが大きすぎます。最大 %d バイトまで受け付けます。", maxFileSize),
			})
			return
		}

		asBase64, _ := strconv.ParseBool(c.PostForm("as_base64"))

		jobID, err := q.Enqueue(c.Request.Context(), file.Filename, content, asBase64)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ジョブの投入に失敗しました。",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"job_id":     jobID,
			"filename":   file.Filename,
			"status_url": fmt.Sprintf("/api/jobs/%s", jobID),
			"result_url": fmt.Sprintf("/api/jobs/%s/result", jobID),
		})
	}
}

// StatusHandler は GET /api/jobs/:id のハンドラーを返します。
func StatusHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := strings.TrimSpace(c.Param("id"))
		if jobID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "job_id を指定してください。",
			})
			return
		}

		record, err := store.GetStatus(c.Request.Context(), jobID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ジョブ情報の取得に失敗しました。",
			})
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "JOB_NOT_FOUND",
				"message": "指定されたジョブは存在しないか、期限切れです。",
			})
			return
		}

		c.JSON(http.StatusOK, record)
	}
}

// ResultHandler は GET /api/jobs/:id/result のハンドラーを返します。
// 処理中は202、失敗は500、完了はPDFバイト列または base64 JSON を返します。
func ResultHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := strings.TrimSpace(c.Param("id"))
		if jobID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "job_id を指定してください。",
			})
			return
		}

		record, err := store.GetStatus(c.Request.Context(), jobID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ジョブ情報の取得に失敗しました。",
			})
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "JOB_NOT_FOUND",
				"message": "指定されたジョブは存在しないか、期限切れです。",
			})
			return
		}

		switch record.Status {
		case StatusProcessing:
			c.JSON(http.StatusAccepted, gin.H{
				"job_id": jobID,
				"status": record.Status,
			})
			return
		case StatusFailed:
			c.JSON(http.StatusInternalServerError, gin.H{
				"job_id": jobID,
				"status": record.Status,
				"error":  record.Error,
				"trace":  record.Trace,
			})
			return
		}

		data, err := store.GetResult(c.Request.Context(), jobID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ジョブ結果の取得に失敗しました。",
			})
			return
		}
		if data == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "JOB_RESULT_NOT_FOUND",
				"message": "ジョブの成果物が見つかりませんでした。",
			})
			return
		}

		filename := pdfFilename(record.Filename)

		if record.AsBase64 {
			c.JSON(http.StatusOK, gin.H{
				"job_id":     jobID,
				"filename":   filename,
				"pdf_base64": base64.StdEncoding.EncodeToString(data),
				"status":     record.Status,
			})
			return
		}

		encodedName := url.PathEscape(filename)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", filename, encodedName))
		c.Header("Cache-Control", "no-store")
		c.Header("X-Job-Id", jobID)
		c.Data(http.StatusOK, "application/pdf", data)
	}
}

// DeleteHandler は DELETE /api/jobs/:id のハンドラーを返します。
func DeleteHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := strings.TrimSpace(c.Param("id"))
		if jobID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "job_id を指定してください。",
			})
			return
		}

		deleted, err := store.Delete(c.Request.Context(), jobID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ジョブの削除に失敗しました。",
			})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "JOB_NOT_FOUND",
				"message": "指定されたジョブは存在しないか、期限切れです。",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"job_id":  jobID,
			"deleted": true,
		})
	}
}

func extractSingleFile(form *multipart.Form) (*multipart.FileHeader, error) {
	if form == nil {
		return nil, fmt.Errorf("変換するファイルを選択してください。")
	}
	if file := form.File["file"]; len(file) > 0 {
		return file[0], nil
	}
	if file := form.File["file[]"]; len(file) > 0 {
		return file[0], nil
	}
	if files := form.File["files"]; len(files) > 0 {
		return files[0], nil
	}
	return nil, fmt.Errorf("変換するファイルを選択してください。")
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// pdfFilename は出力ファイル名の拡張子を .pdf に正規化します。
func pdfFilename(name string) string {
	if name == "" {
		return "document.pdf"
	}
	ext := filepath.Ext(name)
	if strings.EqualFold(ext, ".pdf") {
		return name
	}
	return strings.TrimSuffix(name, ext) + ".pdf"
}
