package jwt

import (
	"crypto/rsa"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims 身份提供方签发的令牌声明，Subject 即稳定用户标识
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// ParsePublicKey 解析 PEM 公钥。环境变量里的密钥常把换行写成字面 \n，这里先还原
func ParsePublicKey(keyPEM string) (*rsa.PublicKey, error) {
	if !strings.Contains(keyPEM, "\n") || strings.Contains(keyPEM, `\n`) {
		keyPEM = strings.ReplaceAll(keyPEM, `\n`, "\n")
	}
	return jwt.ParseRSAPublicKeyFromPEM([]byte(keyPEM))
}

// ParseToken 验证 RS256 令牌并返回声明
func ParseToken(tokenString string, key *rsa.PublicKey) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrInvalidToken
		}
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
