package convert

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// HTMLConverter はHTMLレンダラー（wkhtmltopdf互換の外部コマンド）で
// HTMLをPDFへ変換します。入力は標準入力、出力は標準出力を使用します。
type HTMLConverter struct {
	binPath string
	timeout time.Duration
}

// NewHTMLConverter は HTMLConverter を作成します。
func NewHTMLConverter(binPath string, timeout time.Duration) *HTMLConverter {
	return &HTMLConverter{
		binPath: binPath,
		timeout: timeout,
	}
}

// Convert はHTMLバイト列をPDFへ変換します。
func (c *HTMLConverter) Convert(ctx context.Context, content []byte, filename string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// "-" で stdin から読み、stdout へ書かせる
	cmd := exec.CommandContext(ctx, c.binPath, "--quiet", "-", "-")
	cmd.Stdin = bytes.NewReader(content)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, newError(
			fmt.Sprintf("HTMLレンダラーの実行に失敗しました: %v", err),
			stderr.String(),
			err,
		)
	}

	if stdout.Len() == 0 {
		return nil, newError("HTMLレンダラーがPDFを出力しませんでした", stderr.String(), nil)
	}
	return stdout.Bytes(), nil
}
