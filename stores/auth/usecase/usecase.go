package usecase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/ethereum"
	"github.com/x-xyz/escrow/base/validator"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/service/cache"
)

const defaultTokenTTL = 24 * time.Hour

var timeNow = time.Now

type Config struct {
	JwtSecret string
	// SigningMsgTemplate holds one %s the nonce is put in
	SigningMsgTemplate string
	// Nonces keeps the issued nonce per address, its ttl bounds the sign-in window
	Nonces   cache.Service
	TokenTTL time.Duration
}

type impl struct {
	jwtSecret []byte
	template  string
	nonces    cache.Service
	tokenTTL  time.Duration
}

func New(cfg *Config) domain.AuthUsecase {
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = defaultTokenTTL
	}
	return &impl{
		jwtSecret: []byte(cfg.JwtSecret),
		template:  cfg.SigningMsgTemplate,
		nonces:    cfg.Nonces,
		tokenTTL:  ttl,
	}
}

func (im *impl) GetNonce(ctx ctx.Ctx, address domain.Address) (string, error) {
	if !validator.IsValidAddress(string(address)) {
		return "", domain.ErrInvalidAddress
	}

	nonce := uuid.NewString()
	if err := im.nonces.Set(ctx, address.ToLowerStr(), nonce); err != nil {
		ctx.WithField("err", err).Error("nonces.Set failed")
		return "", err
	}
	return nonce, nil
}

func (im *impl) SignIn(ctx ctx.Ctx, address domain.Address, signature string) (string, error) {
	if !validator.IsValidAddress(string(address)) {
		return "", domain.ErrInvalidAddress
	}

	var nonce string
	if err := im.nonces.Get(ctx, address.ToLowerStr(), &nonce); err == cache.ErrNotFound {
		return "", domain.ErrInvalidNonce
	} else if err != nil {
		ctx.WithField("err", err).Error("nonces.Get failed")
		return "", err
	}

	msg := fmt.Sprintf(im.template, nonce)
	if ok, err := ethereum.ValidateMsgSignature([]byte(msg), signature, string(address)); err != nil {
		return "", xerrors.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	} else if !ok {
		return "", domain.ErrInvalidSignature
	}

	// a nonce signs in once
	if err := im.nonces.Del(ctx, address.ToLowerStr()); err != nil {
		ctx.WithField("err", err).Error("nonces.Del failed")
		return "", err
	}

	return im.SignToken(ctx, address)
}

func (im *impl) SignToken(ctx ctx.Ctx, address domain.Address) (string, error) {
	claims := domain.JwtCustomClaims{
		Address: address.ToLowerStr(),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: timeNow().Add(im.tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		ctx.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(ctx ctx.Ctx, str string) (string, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid {
		return claims.Address, nil
	}

	return "", domain.ErrInvalidSignature
}
