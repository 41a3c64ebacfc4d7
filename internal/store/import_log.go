package store

import (
	"database/sql"
	"fmt"

	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/model"
)

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(batchID, filename string, fileSize int64, fileHash string) (int64, error) {
	res, err := s.q.Exec(`
		INSERT INTO import_logs (batch_id, filename, file_size, file_hash, status)
		VALUES (?, ?, ?, ?, 'processing')
	`, batchID, filename, fileSize, fileHash)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// CompleteImportLog 按运行报告完成导入日志
func (s *Store) CompleteImportLog(id int64, report *model.RunReport, status, errorMessage string) error {
	sheets, blocks, created, updated, skipped := 0, 0, 0, 0, 0
	if report != nil {
		sheets = report.Sheets
		blocks = report.Blocks
		created = len(report.Created)
		updated = len(report.Updated)
		skipped = len(report.Skipped)
	}
	_, err := s.q.Exec(`
		UPDATE import_logs SET
			sheets = ?, blocks = ?,
			created_rows = ?, updated_rows = ?, skipped_rows = ?,
			status = ?, error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, sheets, blocks, created, updated, skipped, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// LastImportTime 最近一次完成导入的时间（无记录返回空串）
func (s *Store) LastImportTime() (string, error) {
	var t sql.NullString
	err := s.q.QueryRow(`
		SELECT completed_at FROM import_logs
		WHERE completed_at IS NOT NULL
		ORDER BY id DESC LIMIT 1
	`).Scan(&t)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query last import time: %w", err)
	}
	return t.String, nil
}
