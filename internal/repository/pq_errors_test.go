package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

// SQLSTATEコードによるエラー分類を検証する。
func TestErrorClassification(t *testing.T) {
	uniqueErr := &pq.Error{Code: "23505"}
	fkErr := &pq.Error{Code: "23503"}
	serializationErr := &pq.Error{Code: "40001"}
	deadlockErr := &pq.Error{Code: "40P01"}
	plainErr := errors.New("connection refused")

	if !isUniqueViolation(uniqueErr) {
		t.Error("23505 must be classified as a unique violation")
	}
	if isUniqueViolation(fkErr) || isUniqueViolation(plainErr) {
		t.Error("non-23505 errors must not be classified as unique violations")
	}

	if !isForeignKeyViolation(fkErr) {
		t.Error("23503 must be classified as a foreign key violation")
	}
	if isForeignKeyViolation(uniqueErr) || isForeignKeyViolation(plainErr) {
		t.Error("non-23503 errors must not be classified as foreign key violations")
	}

	if !isTransient(serializationErr) || !isTransient(deadlockErr) {
		t.Error("40001 and 40P01 must be classified as transient")
	}
	if isTransient(uniqueErr) || isTransient(fkErr) || isTransient(plainErr) {
		t.Error("constraint violations and plain errors must not be classified as transient")
	}
}

// ラップされたpq.Errorからもコードが取り出せることを検証する。
func TestPqErrorCode_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("failed to insert: %w", &pq.Error{Code: "23505"})
	if code := pqErrorCode(wrapped); code != "23505" {
		t.Errorf("code = %q, want %q", code, "23505")
	}
	if code := pqErrorCode(errors.New("plain")); code != "" {
		t.Errorf("code = %q, want empty", code)
	}
}

// 一時的な競合エラーが上限回数までリトライされることを検証する。
func TestWithTxRetry_TransientError_Retried(t *testing.T) {
	attempts := 0
	err := withTxRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return &pq.Error{Code: "40001"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

// 一時的な競合が続いた場合に上限回数で打ち切られることを検証する。
func TestWithTxRetry_ExhaustsRetries(t *testing.T) {
	attempts := 0
	err := withTxRetry(context.Background(), func() error {
		attempts++
		return &pq.Error{Code: "40P01"}
	})
	if !isTransient(err) {
		t.Errorf("error = %v, want the last transient error", err)
	}
	if attempts != maxTxRetries {
		t.Errorf("attempts = %d, want %d", attempts, maxTxRetries)
	}
}

// 恒久的なエラーが一度もリトライされないことを検証する。
func TestWithTxRetry_PermanentError_NotRetried(t *testing.T) {
	attempts := 0
	uniqueErr := &pq.Error{Code: "23505"}
	err := withTxRetry(context.Background(), func() error {
		attempts++
		return uniqueErr
	})
	if !errors.Is(err, uniqueErr) {
		t.Errorf("error = %v, want %v", err, uniqueErr)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

// コンテキストのキャンセルでリトライ待ちが中断されることを検証する。
func TestWithTxRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withTxRetry(ctx, func() error {
		return &pq.Error{Code: "40001"}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
