package usecase

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/ethereum"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/keys"
	"github.com/x-xyz/escrow/service/cache"
	"github.com/x-xyz/escrow/service/cache/provider/primitive"
)

const template = "Sign in to escrow, nonce: %s"

type authSuite struct {
	suite.Suite
	ctx ctx.Ctx
	im  domain.AuthUsecase
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(authSuite))
}

func (s *authSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.im = New(&Config{
		JwtSecret:          "jwt-secret",
		SigningMsgTemplate: template,
		Nonces: cache.New(cache.ServiceConfig{
			Ttl:   time.Minute,
			Pfx:   keys.PfxNonce,
			Cache: primitive.NewPrimitive("nonce", 1),
		}),
	})
}

func (s *authSuite) signer() (string, func(msg string) string) {
	key, address, err := ethereum.NewAccount()
	s.Require().NoError(err)
	return string(address), func(msg string) string {
		sig, err := ethereum.SignMsg([]byte(msg), key)
		s.Require().NoError(err)
		return sig
	}
}

func (s *authSuite) TestSignIn() {
	address, sign := s.signer()

	nonce, err := s.im.GetNonce(s.ctx, domain.Address(address))
	s.Require().NoError(err)
	s.NotEmpty(nonce)

	tkn, err := s.im.SignIn(s.ctx, domain.Address(address), sign(fmt.Sprintf(template, nonce)))
	s.Require().NoError(err)

	ads, err := s.im.ParseToken(s.ctx, tkn)
	s.NoError(err)
	s.Equal(strings.ToLower(address), ads)
}

func (s *authSuite) TestNonceIsUsedOnce() {
	address, sign := s.signer()

	nonce, err := s.im.GetNonce(s.ctx, domain.Address(address))
	s.Require().NoError(err)
	sig := sign(fmt.Sprintf(template, nonce))

	_, err = s.im.SignIn(s.ctx, domain.Address(address), sig)
	s.Require().NoError(err)

	_, err = s.im.SignIn(s.ctx, domain.Address(address), sig)
	s.Equal(domain.ErrInvalidNonce, err)
}

func (s *authSuite) TestNewNonceReplacesOld() {
	address, sign := s.signer()

	old, err := s.im.GetNonce(s.ctx, domain.Address(address))
	s.Require().NoError(err)
	_, err = s.im.GetNonce(s.ctx, domain.Address(address))
	s.Require().NoError(err)

	_, err = s.im.SignIn(s.ctx, domain.Address(address), sign(fmt.Sprintf(template, old)))
	s.Equal(domain.ErrInvalidSignature, err)
}

func (s *authSuite) TestSignInRejects() {
	address, _ := s.signer()
	_, other := s.signer()

	_, err := s.im.SignIn(s.ctx, domain.Address(address), "0x")
	s.Equal(domain.ErrInvalidNonce, err, "no nonce issued")

	nonce, err := s.im.GetNonce(s.ctx, domain.Address(address))
	s.Require().NoError(err)

	_, err = s.im.SignIn(s.ctx, domain.Address(address), other(fmt.Sprintf(template, nonce)))
	s.Equal(domain.ErrInvalidSignature, err, "signed by someone else")

	_, err = s.im.SignIn(s.ctx, domain.Address(address), "not-hex")
	s.True(errors.Is(err, domain.ErrInvalidSignature), "malformed signature")

	_, err = s.im.SignIn(s.ctx, "0x1234", "0x")
	s.Equal(domain.ErrInvalidAddress, err)

	_, err = s.im.GetNonce(s.ctx, "nope")
	s.Equal(domain.ErrInvalidAddress, err)
}

func (s *authSuite) TestExpiredToken() {
	defer func() { timeNow = time.Now }()
	timeNow = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	tkn, err := s.im.SignToken(s.ctx, "0xabc")
	s.Require().NoError(err)

	_, err = s.im.ParseToken(s.ctx, tkn)
	s.Error(err)
}

func (s *authSuite) TestForeignSecret() {
	other := New(&Config{JwtSecret: "other-secret"})
	tkn, err := other.SignToken(s.ctx, "0xabc")
	s.Require().NoError(err)

	_, err = s.im.ParseToken(s.ctx, tkn)
	s.Error(err)
}
