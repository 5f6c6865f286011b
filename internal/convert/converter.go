package convert

import "context"

// Converter はドキュメントのバイト列をPDFのバイト列へ変換します。
type Converter interface {
	Convert(ctx context.Context, content []byte, filename string) ([]byte, error)
}

// Backends は変換経路ごとのバックエンドを保持します。
type Backends struct {
	HTML   Converter
	Office Converter
}

// For は Format に対応するバックエンドを返します。
func (b Backends) For(f Format) Converter {
	switch f {
	case FormatHTML:
		return b.HTML
	default:
		return b.Office
	}
}

// Error は変換失敗を表します。Trace には外部コマンドの標準エラー出力など
// 診断用の詳細を保持します。
type Error struct {
	Message string
	Trace   string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(message, trace string, cause error) *Error {
	return &Error{
		Message: message,
		Trace:   trace,
		cause:   cause,
	}
}
