// Package jobs は非同期PDF変換ジョブのキュー投入・状態管理・結果配信を提供します。
package jobs

import "time"

// Status はジョブの実行状態を表します。
// 投入直後のジョブにはレコードが存在せず、ワーカーが取得して初めて
// processing として観測可能になります（queued 状態は永続化しません）。
type Status string

const (
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Record はジョブの現在状態を表します。ワイヤ形式は snake_case です。
type Record struct {
	Status      Status    `json:"status"`
	Filename    string    `json:"filename,omitempty"`
	AsBase64    bool      `json:"as_base64,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes,omitempty"` // done のときのみ
	Pages       int       `json:"pages,omitempty"`      // done のときのみ（判定できた場合）
	Error       string    `json:"error,omitempty"`      // failed のときのみ
	Trace       string    `json:"trace,omitempty"`      // failed のときのみ
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskPayload は変換ジョブのペイロードです。Content はキューへコピーされ、
// 投入後にディスクリプタが変更されることはありません。
type TaskPayload struct {
	JobID       string `json:"job_id"`
	Filename    string `json:"filename"`
	Content     []byte `json:"content"`
	AsBase64    bool   `json:"as_base64"`
	ContentType string `json:"content_type,omitempty"`
}
