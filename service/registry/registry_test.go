package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/journal"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/asset"
)

const (
	collection = domain.Address("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	alice      = domain.Address("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	bob        = domain.Address("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
	market     = domain.Address("0x90f79bf6eb2c4f870365e785982e1f101e93b906")
)

type registrySuite struct {
	suite.Suite
	ctx ctx.Ctx
	reg asset.SandboxRegistry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(registrySuite))
}

func (s *registrySuite) SetupTest() {
	s.ctx = ctx.Background()
	s.reg = New()
	s.Require().NoError(s.reg.Mint(s.ctx, collection, alice, "7"))
}

func (s *registrySuite) TestJournaled() {
	s.True(journal.Journaled(s.reg))
}

func (s *registrySuite) TestMint() {
	owner, err := s.reg.OwnerOf(s.ctx, collection, "7")
	s.NoError(err)
	s.Equal(alice, owner)

	s.ErrorIs(s.reg.Mint(s.ctx, collection, bob, "007"), asset.ErrTokenExists)
	s.ErrorIs(s.reg.Mint(s.ctx, collection, "", "8"), asset.ErrInvalidRecipient)

	_, err = s.reg.OwnerOf(s.ctx, collection, "8")
	s.ErrorIs(err, asset.ErrNonexistentToken)
}

func (s *registrySuite) TestTransferRequiresAuthorization() {
	err := s.reg.TransferCustody(s.ctx, collection, market, alice, market, "7")
	s.ErrorIs(err, asset.ErrNotAuthorized)

	err = s.reg.TransferCustody(s.ctx, collection, bob, bob, market, "7")
	s.ErrorIs(err, asset.ErrNotTokenHolder)

	s.NoError(s.reg.Approve(s.ctx, collection, alice, market, "7"))
	s.NoError(s.reg.TransferCustody(s.ctx, collection, market, alice, market, "7"))

	owner, err := s.reg.OwnerOf(s.ctx, collection, "7")
	s.NoError(err)
	s.Equal(market, owner)

	// approval is cleared by the transfer
	s.NoError(s.reg.TransferCustody(s.ctx, collection, market, market, alice, "7"))
	err = s.reg.TransferCustody(s.ctx, collection, market, alice, market, "7")
	s.ErrorIs(err, asset.ErrNotAuthorized)
}

func (s *registrySuite) TestApproveOnlyByHolder() {
	s.ErrorIs(s.reg.Approve(s.ctx, collection, bob, market, "7"), asset.ErrNotAuthorized)
	s.ErrorIs(s.reg.Approve(s.ctx, collection, alice, market, "9"), asset.ErrNonexistentToken)
}

func (s *registrySuite) TestApprovalForAll() {
	s.NoError(s.reg.SetApprovalForAll(s.ctx, collection, alice, market, true))
	s.NoError(s.reg.TransferCustody(s.ctx, collection, market, alice, bob, "7"))

	s.NoError(s.reg.SetApprovalForAll(s.ctx, collection, bob, market, false))
	err := s.reg.TransferCustody(s.ctx, collection, market, bob, alice, "7")
	s.ErrorIs(err, asset.ErrNotAuthorized)
}

func (s *registrySuite) TestReceiverAccepts() {
	received := 0
	s.reg.RegisterReceiver(market, asset.ReceiverFunc(func(c ctx.Ctx, operator, from, coll domain.Address, tokenId domain.TokenId, data []byte) (asset.Selector, error) {
		received++
		s.Equal(alice, from)
		s.Equal(collection, coll)
		s.Equal(domain.TokenId("7"), tokenId)
		return asset.ReceivedSelector, nil
	}))

	s.NoError(s.reg.TransferCustody(s.ctx, collection, alice, alice, market, "7"))
	s.Equal(1, received)
}

func (s *registrySuite) TestReceiverRejects() {
	s.reg.RegisterReceiver(market, asset.ReceiverFunc(func(c ctx.Ctx, operator, from, coll domain.Address, tokenId domain.TokenId, data []byte) (asset.Selector, error) {
		return asset.Selector{}, errors.New("not accepting")
	}))

	err := s.reg.TransferCustody(s.ctx, collection, alice, alice, market, "7")
	s.ErrorIs(err, asset.ErrReceiverRejected)

	owner, err := s.reg.OwnerOf(s.ctx, collection, "7")
	s.NoError(err)
	s.Equal(alice, owner)
}

func (s *registrySuite) TestReceiverWrongSelector() {
	s.reg.RegisterReceiver(market, asset.ReceiverFunc(func(c ctx.Ctx, operator, from, coll domain.Address, tokenId domain.TokenId, data []byte) (asset.Selector, error) {
		return asset.Selector{0xde, 0xad, 0xbe, 0xef}, nil
	}))

	err := s.reg.TransferCustody(s.ctx, collection, alice, alice, market, "7")
	s.ErrorIs(err, asset.ErrReceiverRejected)

	owner, _ := s.reg.OwnerOf(s.ctx, collection, "7")
	s.Equal(alice, owner)
}

func (s *registrySuite) TestReceiverEffectsRevertedWithTransfer() {
	s.NoError(s.reg.Mint(s.ctx, collection, bob, "8"))
	s.reg.RegisterReceiver(market, asset.ReceiverFunc(func(c ctx.Ctx, operator, from, coll domain.Address, tokenId domain.TokenId, data []byte) (asset.Selector, error) {
		// the hook mints in the same transfer and then refuses
		if err := s.reg.Mint(c, collection, market, "100"); err != nil {
			return asset.Selector{}, err
		}
		return asset.Selector{}, errors.New("changed my mind")
	}))

	err := s.reg.TransferCustody(s.ctx, collection, alice, alice, market, "7")
	s.ErrorIs(err, asset.ErrReceiverRejected)

	_, err = s.reg.OwnerOf(s.ctx, collection, "100")
	s.ErrorIs(err, asset.ErrNonexistentToken)
}

func (s *registrySuite) TestJournalRevert() {
	j := journal.New()
	c := journal.With(s.ctx, j)

	s.NoError(s.reg.Approve(c, collection, alice, market, "7"))
	s.NoError(s.reg.TransferCustody(c, collection, market, alice, bob, "7"))
	s.NoError(s.reg.Mint(c, collection, bob, "8"))

	j.RevertToSnapshot(0)

	owner, err := s.reg.OwnerOf(s.ctx, collection, "7")
	s.NoError(err)
	s.Equal(alice, owner)
	_, err = s.reg.OwnerOf(s.ctx, collection, "8")
	s.ErrorIs(err, asset.ErrNonexistentToken)
	// approval is gone again as well
	s.ErrorIs(s.reg.TransferCustody(s.ctx, collection, market, alice, bob, "7"), asset.ErrNotAuthorized)
}
