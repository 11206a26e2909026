// Package password はパスワードのハッシュ化と検証を提供する。
// bcrypt（ソルト付き・計算コスト調整可能な一方向関数）を使用し、
// 平文パスワードは一切永続化しない。
package password

import (
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptが受け付ける平文の最大バイト数。超過分は無視されるため、
// 黙って切り詰めるのではなく入力エラーとして拒否する。
const maxPasswordBytes = 72

var (
	// ErrNullInPassword はヌルバイトを含むパスワードに対して返される。
	// bcryptはC文字列由来の実装が多く、ヌルバイト以降を無視する恐れがある。
	ErrNullInPassword = errors.New("password contains null byte")

	// ErrPasswordTooLong は72バイトを超えるパスワードに対して返される。
	ErrPasswordTooLong = errors.New("password longer than 72 bytes")
)

// Hasher はパスワードハッシュ化の設定を保持する。
// 共有可変状態を持たないため、複数goroutineから同時に使用できる。
type Hasher struct {
	cost int
}

// NewHasher はHasherを生成する。costが範囲外の場合はbcrypt.DefaultCostを使う。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash は平文パスワードをハッシュ化する。
// 呼び出しごとに新しいランダムソルトが使われるため、同じ平文でも出力は毎回異なる。
// 出力はアルゴリズム識別子・コスト・ソルト・ダイジェストを自己完結的に含む。
func (h *Hasher) Hash(plaintext string) (string, error) {
	if strings.ContainsRune(plaintext, '\x00') {
		return "", ErrNullInPassword
	}
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify は平文パスワードが保存済みハッシュと一致するか検証する。
// ハッシュ形式の破損や未対応アルゴリズムを含む内部エラーはすべてfalseとして扱い、
// 呼び出し側から「パスワード不一致」と区別できないようにする（オラクル化の防止）。
// 比較はbcrypt内部で定数時間に行われる。
func Verify(plaintext, storedHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext))
	if err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			// 不一致以外の失敗（ハッシュ破損等）は診断用にログだけ残す
			slog.Error("password hash verification error", slog.String("error", err.Error()))
		}
		return false
	}
	return true
}
