// Package convert はドキュメントをPDFへ変換するバックエンド群を提供します。
package convert

import (
	"path/filepath"
	"strings"
)

// Format は入力ドキュメントの変換経路を表す閉じた種別です。
type Format int

const (
	// FormatHTML はHTMLレンダラーで処理する入力（.html / .htm）です。
	FormatHTML Format = iota
	// FormatOffice はLibreOfficeで処理する入力（上記以外すべて）です。
	FormatOffice
)

// DetectFormat はファイル名の拡張子から変換経路を決定します。
// 未知の拡張子や拡張子なしは FormatOffice にフォールバックします。
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatOffice
	}
}

func (f Format) String() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatOffice:
		return "office"
	default:
		return "unknown"
	}
}
