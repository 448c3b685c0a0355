// Package token は署名付きアクセストークン・リフレッシュトークンの発行と検証を提供する。
// トークンはHS256で署名されたJWTであり、サーバー側には一切永続化されない（ステートレス）。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind はトークンの種別を表す。
type Kind string

const (
	// KindAccess は短寿命のアクセストークン。保護されたリクエストの認可に使用する。
	KindAccess Kind = "access"
	// KindRefresh は長寿命のリフレッシュトークン。アクセストークンの再発行のみに使用する。
	KindRefresh Kind = "refresh"
)

var (
	// ErrInvalidToken は署名不一致・不正形式・種別不一致のトークンを表す。
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired は有効期限切れのトークンを表す。
	ErrTokenExpired = errors.New("token expired")
)

// Claims はJWTのクレーム構造。標準クレームにトークン種別を加える。
// ユーザーIDはSubjectに格納する。
type Claims struct {
	jwt.RegisteredClaims
	Kind Kind `json:"kind"`
}

// Codec はトークンの発行・検証を行う。
// secretはプロセス全体で共有される読み取り専用の署名鍵であり、起動時に1回だけ注入される。
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec はCodecを生成する。
func NewCodec(secret []byte, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue は指定ユーザーID・種別の署名付きトークン文字列を発行する。
// 有効期限は種別ごとのTTL（アクセス: 分単位、リフレッシュ: 日単位）で決まる。
func (c *Codec) Issue(userID string, kind Kind) (string, error) {
	ttl := c.accessTTL
	if kind == KindRefresh {
		ttl = c.refreshTTL
	}

	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	})

	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify は署名・有効期限・種別を検証し、トークンに含まれるユーザーIDを返す。
// 不正形式の入力でもpanicせず、ErrInvalidTokenまたはErrTokenExpiredを返す。
func (c *Codec) Verify(tokenString string, kind Kind) (string, error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	if !t.Valid || claims.Kind != kind || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
