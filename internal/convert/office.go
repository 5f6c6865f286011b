package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// OfficeConverter は LibreOffice のヘッドレス変換でDOCX/ODT等をPDFへ変換します。
// LibreOfficeはファイル入出力しか受け付けないため、一時ディレクトリを介します。
type OfficeConverter struct {
	binPath string
	timeout time.Duration
}

// NewOfficeConverter は OfficeConverter を作成します。
func NewOfficeConverter(binPath string, timeout time.Duration) *OfficeConverter {
	return &OfficeConverter{
		binPath: binPath,
		timeout: timeout,
	}
}

// Convert は入力バイト列をPDFへ変換します。filename は入力形式の判定に
// LibreOffice自身が利用するため、元のファイル名をそのまま渡します。
func (c *OfficeConverter) Convert(ctx context.Context, content []byte, filename string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	tmpDir, err := os.MkdirTemp("", "pdf-mill-office-")
	if err != nil {
		return nil, newError(fmt.Sprintf("一時ディレクトリの作成に失敗しました: %v", err), "", err)
	}
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()

	// 入力が .pdf の場合に出力走査が入力自身を拾わないよう、
	// 入力と出力はディレクトリを分ける
	inDir := filepath.Join(tmpDir, "in")
	outDir := filepath.Join(tmpDir, "out")
	for _, dir := range []string{inDir, outDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, newError(fmt.Sprintf("一時ディレクトリの作成に失敗しました: %v", err), "", err)
		}
	}

	inputPath := filepath.Join(inDir, filepath.Base(filename))
	if err := os.WriteFile(inputPath, content, 0o640); err != nil {
		return nil, newError(fmt.Sprintf("入力ファイルの保存に失敗しました: %v", err), "", err)
	}

	cmd := exec.CommandContext(ctx, c.binPath,
		"--headless",
		"--convert-to", "pdf",
		inputPath,
		"--outdir", outDir,
	)
	var stderr bytes.Buffer
	cmd.Stdout = &stderr
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, newError(
			fmt.Sprintf("LibreOfficeによる変換に失敗しました: %v", err),
			stderr.String(),
			err,
		)
	}

	output, err := findProducedPDF(outDir)
	if err != nil {
		return nil, newError(err.Error(), stderr.String(), nil)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		return nil, newError(fmt.Sprintf("変換結果の読み込みに失敗しました: %v", err), "", err)
	}
	if len(data) == 0 {
		return nil, newError("LibreOfficeが空のPDFを出力しました", stderr.String(), nil)
	}
	return data, nil
}

// findProducedPDF は変換先ディレクトリから生成されたPDFを探します。
func findProducedPDF(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("変換先ディレクトリの走査に失敗しました: %v", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("PDFが生成されませんでした")
}
