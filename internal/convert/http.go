package convert

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConvertHandler は POST /api/convert のハンドラーを返します。
// 小さなHTMLを同期的にPDF化してそのまま返します。
func ConvertHandler(renderer Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload struct {
			HTML string `json:"html"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "JSONボディの html フィールドに変換対象を指定してください。",
			})
			return
		}
		if payload.HTML == "" {
			payload.HTML = "<p>No HTML provided</p>"
		}

		pdfBytes, err := renderer.Convert(c.Request.Context(), []byte(payload.HTML), "document.html")
		if err != nil {
			var convErr *Error
			if errors.As(err, &convErr) {
				c.JSON(http.StatusInternalServerError, gin.H{
					"code":    "CONVERSION_FAILED",
					"message": convErr.Message,
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "PDFの生成に失敗しました。",
			})
			return
		}

		c.Header("Content-Disposition", `attachment; filename="document.pdf"`)
		c.Data(http.StatusOK, "application/pdf", pdfBytes)
	}
}
