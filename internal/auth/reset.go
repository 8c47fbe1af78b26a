package auth

import (
	"errors"
	"time"

	"ailablog/config"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidResetToken covers every failure mode of reset-token verification.
// 过期、篡改、格式错误一律归并为同一个错误，不向调用方泄露差异。
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

const resetPurpose = "pwreset"

// ResetClaims is the payload of a password-reset token: the user it was
// issued to plus a purpose marker so access tokens can never be replayed here.
type ResetClaims struct {
	UserID  uint64 `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// GenerateResetToken issues a short-lived signed token for the given user.
func GenerateResetToken(userID uint64) (string, error) {
	now := time.Now()
	claims := ResetClaims{
		UserID:  userID,
		Purpose: resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(config.GlobalConfig.JWT.ResetExpire) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.GlobalConfig.JWT.Secret))
}

// ParseResetToken verifies signature, expiry and purpose. Fails closed:
// any problem yields ErrInvalidResetToken and no user id.
func ParseResetToken(tokenStr string) (uint64, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ResetClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.GlobalConfig.JWT.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, ErrInvalidResetToken
	}
	claims, ok := token.Claims.(*ResetClaims)
	if !ok || !token.Valid || claims.Purpose != resetPurpose || claims.UserID == 0 {
		return 0, ErrInvalidResetToken
	}
	return claims.UserID, nil
}
