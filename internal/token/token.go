// Package token は署名付きアクセストークンのエンコード・デコードを提供する。
// トークンはユーザーIDと有効期限を自己完結的に含み、サーバー側の
// セッションストアなしで検証できる。
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired は有効期限切れのトークンに対して返される。
	ErrExpired = errors.New("token is expired")

	// ErrMalformed は構造的に不正なトークンに対して返される。
	// subjectが正の整数として解釈できない場合も含む。
	ErrMalformed = errors.New("token is malformed")

	// ErrSignatureInvalid は署名検証に失敗したトークンに対して返される。
	ErrSignatureInvalid = errors.New("token signature is invalid")
)

// Codec はトークンのエンコード・デコード設定を保持する。
// イミュータブルであり、複数goroutineから同時に使用できる。
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewCodec はCodecを生成する。
// algorithmはHMAC系（HS256/HS384/HS512）のみ受け付ける。
func NewCodec(secret, algorithm string, ttl time.Duration) (*Codec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm: %s", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}
	return &Codec{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
	}, nil
}

// Encode はユーザーIDをsubjectとする署名付きトークンを発行する。
// 有効期限は現在時刻 + 設定TTL。
func (c *Codec) Encode(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// Decode はトークンを検証し、subjectのユーザーIDを返す。
// 失敗はErrExpired、ErrSignatureInvalid、ErrMalformedのいずれかに分類される。
// 呼び出し側はこの3種を外部に対して同一の認証エラーとして扱わなければならない。
// 区別は内部ログ用にのみ残す。
func (c *Codec) Decode(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return 0, ErrSignatureInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrExpired
		default:
			return 0, ErrMalformed
		}
	}
	if !parsed.Valid {
		return 0, ErrSignatureInvalid
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrMalformed
	}
	return userID, nil
}

// TTL は設定されたトークン有効期間を返す。
func (c *Codec) TTL() time.Duration {
	return c.ttl
}
