package domain

import (
	"github.com/golang-jwt/jwt"
	"github.com/x-xyz/escrow/base/ctx"
)

type JwtCustomClaims struct {
	Address string `json:"data"`
	jwt.StandardClaims
}

type AuthUsecase interface {
	// GetNonce issues a one time nonce the wallet has to sign
	GetNonce(ctx ctx.Ctx, address Address) (string, error)
	// SignIn verifies the signed nonce and returns a jwt
	SignIn(ctx ctx.Ctx, address Address, signature string) (string, error)
	SignToken(ctx ctx.Ctx, address Address) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (address string, err error)
}
