package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/yourusername/pdf-mill/internal/config"
	"github.com/yourusername/pdf-mill/internal/convert"
)

const (
	taskTypeConvert = "convert:document"
	queueName       = "convert"
)

// Manager はジョブの投入とワーカー側の実行を担います。
// NewManager で作るとキュー投入専用、NewWorkerManager で作ると
// Asynqサーバー込みのワーカーになります。
type Manager struct {
	cfg      *config.Config
	client   *asynq.Client
	server   *asynq.Server
	mux      *asynq.ServeMux
	store    Store
	backends convert.Backends
	logger   *log.Logger
}

// NewManager はキュー投入専用の Manager を初期化します（APIプロセス用）。
// ワーカーサーバーは持たないため Run はできません。
func NewManager(cfg *config.Config, store Store, logger *log.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	return &Manager{
		cfg:    cfg,
		client: asynq.NewClient(opt),
		store:  store,
		logger: logger,
	}, nil
}

// NewWorkerManager はAsynqサーバー込みの Manager を初期化します（ワーカープロセス用）。
func NewWorkerManager(cfg *config.Config, backends convert.Backends, store Store, logger *log.Logger) (*Manager, error) {
	manager, err := NewManager(cfg, store, logger)
	if err != nil {
		return nil, err
	}

	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	manager.backends = backends
	manager.server = asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				queueName: 1,
			},
		},
	)
	manager.mux = asynq.NewServeMux()
	manager.mux.HandleFunc(taskTypeConvert, manager.handleConvertTask)
	return manager, nil
}

// Run はAsynqサーバーを起動し、停止するまでブロックします。
// キューやストアへの接続断は致命的エラーとして呼び出し元に返します。
func (m *Manager) Run() error {
	if m.server == nil {
		return errors.New("manager has no worker server (use NewWorkerManager)")
	}
	return m.server.Run(m.mux)
}

// Shutdown はサーバー（あれば）とクライアントを閉じます。
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.server != nil {
		m.server.Shutdown()
	}
	m.client.Close()
	return nil
}

// Enqueue は変換ジョブをキューに投入し、採番したジョブIDを返します。
// ステータスレコードはここでは書きません。ワーカーが取得するまで
// ジョブは外部から観測できないのが仕様です。
func (m *Manager) Enqueue(ctx context.Context, filename string, content []byte, asBase64 bool) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}

	jobID := uuid.NewString()
	payload := &TaskPayload{
		JobID:       jobID,
		Filename:    filename,
		Content:     content,
		AsBase64:    asBase64,
		ContentType: mimetype.Detect(content).String(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	task := asynq.NewTask(taskTypeConvert, body, asynq.Queue(queueName))
	timeout := time.Duration(m.cfg.ConvertTimeoutSeconds)*time.Second + 30*time.Second
	// 失敗したジョブは failed のまま終端する（自動リトライなし）
	_, err = m.client.EnqueueContext(ctx, task,
		asynq.TaskID(jobID),
		asynq.MaxRetry(0),
		asynq.Timeout(timeout),
	)
	if err != nil {
		return "", err
	}
	return jobID, nil
}

// handleConvertTask は1件の変換ジョブを状態機械として実行します。
//
//	claim(processing) → dispatch → convert → result書き込み → done
//	                                       → failed（結果は書かない）
func (m *Manager) handleConvertTask(ctx context.Context, task *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}
	if payload.JobID == "" {
		return fmt.Errorf("missing job_id in payload")
	}

	// claim: ここで初めてジョブが観測可能になる
	if err := m.store.PutStatus(ctx, payload.JobID, &Record{
		Status:      StatusProcessing,
		Filename:    payload.Filename,
		AsBase64:    payload.AsBase64,
		ContentType: payload.ContentType,
	}); err != nil {
		return err
	}

	format := convert.DetectFormat(payload.Filename)
	backend := m.backends.For(format)

	pdfBytes, err := backend.Convert(ctx, payload.Content, payload.Filename)
	if err == nil && !isPDF(pdfBytes) {
		err = fmt.Errorf("変換結果がPDF形式ではありません")
	}
	if err != nil {
		if m.logger != nil {
			m.logger.Printf("job %s failed (format=%s): %v", payload.JobID, format, err)
		}
		if ferr := m.failJob(ctx, payload.JobID, err); ferr != nil {
			return ferr
		}
		// Asynq側の失敗記録にも残すため、エラーを返して終端する
		return err
	}

	// 結果を書いてから done へ遷移する。逆順にすると done を観測した
	// 読み手が結果を取れない瞬間が生まれる。
	if err := m.store.PutResult(ctx, payload.JobID, pdfBytes); err != nil {
		return err
	}
	if err := m.store.PutStatus(ctx, payload.JobID, &Record{
		Status:      StatusDone,
		Filename:    payload.Filename,
		AsBase64:    payload.AsBase64,
		ContentType: payload.ContentType,
		SizeBytes:   int64(len(pdfBytes)),
		Pages:       pageCount(pdfBytes),
	}); err != nil {
		return err
	}

	if m.logger != nil {
		m.logger.Printf("job %s done (format=%s, %d bytes)", payload.JobID, format, len(pdfBytes))
	}
	return nil
}

func (m *Manager) failJob(ctx context.Context, jobID string, err error) error {
	record := &Record{
		Status: StatusFailed,
		Error:  err.Error(),
	}
	var convErr *convert.Error
	if errors.As(err, &convErr) {
		record.Error = convErr.Message
		record.Trace = convErr.Trace
	}
	return m.store.PutStatus(ctx, jobID, record)
}

func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}

// pageCount は生成されたPDFのページ数を返します。判定できない場合は 0 を返し、
// ジョブ自体は成功扱いのままにします。
func pageCount(data []byte) int {
	n, err := pdfapi.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0
	}
	return n
}
