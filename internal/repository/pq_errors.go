package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
)

// PostgreSQLエラーコード
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqSerializationFail   = "40001"
	pqDeadlockDetected    = "40P01"
)

// トランザクション競合時のリトライ上限と待ち時間
const (
	maxTxRetries = 3
	txRetryDelay = 50 * time.Millisecond
)

// pqErrorCode はエラーからPostgreSQLのSQLSTATEコードを取り出す。
// pq.Error以外のエラーには空文字を返す。
func pqErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// isUniqueViolation は一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	return pqErrorCode(err) == pqUniqueViolation
}

// isForeignKeyViolation は外部キー制約違反かどうかを判定する。
func isForeignKeyViolation(err error) bool {
	return pqErrorCode(err) == pqForeignKeyViolation
}

// isTransient はリトライで解消しうる一時的な競合エラーかどうかを判定する。
// 一意制約違反・外部キー制約違反は何度実行しても失敗するため対象外。
func isTransient(err error) bool {
	code := pqErrorCode(err)
	return code == pqSerializationFail || code == pqDeadlockDetected
}

// withTxRetry はfnを実行し、一時的な競合エラーの場合のみ限られた回数リトライする。
// 制約違反などの恒久的なエラーは即座に返す。
func withTxRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		if err = fn(); err == nil || !isTransient(err) {
			return err
		}
		select {
		case <-time.After(txRetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
