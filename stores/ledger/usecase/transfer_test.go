package usecase

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/metrics"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/domain/ledger"
	"github.com/x-xyz/settlement/domain/transfer"
	"github.com/x-xyz/settlement/service/kv/memory"
	ledgerService "github.com/x-xyz/settlement/service/ledger"
	adminRepository "github.com/x-xyz/settlement/stores/admin/repository"
	adminUsecase "github.com/x-xyz/settlement/stores/admin/usecase"
	eventRepository "github.com/x-xyz/settlement/stores/event/repository"
	eventUsecase "github.com/x-xyz/settlement/stores/event/usecase"
	"github.com/x-xyz/settlement/stores/ledger/repository"
)

var (
	owner      = domain.Address("0x00000000000000000000000000000000000000d1")
	alice      = domain.Address("0x00000000000000000000000000000000000000a1")
	bob        = domain.Address("0x00000000000000000000000000000000000000b1")
	erc721     = domain.Address("0x0000000000000000000000000000000000000721")
	erc1155    = domain.Address("0x0000000000000000000000000000000000001155")
	unknown    = domain.Address("0x0000000000000000000000000000000000000999")
	manager721 = domain.Address("0x00000000000000000000000000000000000007f1")
	manager115 = domain.Address("0x00000000000000000000000000000000000011f5")
)

type transferSuite struct {
	suite.Suite

	ctx      ctx.Ctx
	assets   ledger.AssetLedger
	selector transfer.Selector
	batch    transfer.BatchTransferer
}

func TestTransferSuite(t *testing.T) {
	suite.Run(t, new(transferSuite))
}

func (s *transferSuite) SetupTest() {
	req := s.Require()
	s.ctx = ctx.Background()
	store := memory.New()
	emitter := eventUsecase.NewEmitter(&eventUsecase.EmitterCfg{
		Store:      store,
		Publishers: []event.Publisher{eventRepository.NewMemoryPublisher(10)},
		Metrics:    metrics.New("test"),
	})
	adminUC := adminUsecase.New(&adminUsecase.UseCaseCfg{Store: store, Repo: adminRepository.New(store)})
	req.NoError(adminUC.Init(s.ctx, admin.ContractTransferSelector, owner))

	s.assets = ledgerService.NewAssetLedger(store)
	req.NoError(s.assets.RegisterCollection(s.ctx, ledger.Collection{Address: erc721, Standard: domain.TokenType721, Owner: owner}))
	req.NoError(s.assets.RegisterCollection(s.ctx, ledger.Collection{Address: erc1155, Standard: domain.TokenType1155, Owner: owner}))

	s.selector = NewTransferSelector(&TransferSelectorCfg{
		Store:   store,
		Repo:    repository.NewTransferManagerRepo(store),
		Admin:   adminUC,
		Emitter: emitter,
		Assets:  s.assets,
		ERC721:  NewERC721TransferManager(manager721, s.assets),
		ERC1155: NewERC1155TransferManager(manager115, s.assets),
	})
	s.batch = NewBatchTransferer(&BatchTransfererCfg{Store: store, Transfers: s.selector})
}

func (s *transferSuite) TestManagerFor() {
	req := s.Require()
	m, err := s.selector.ManagerFor(s.ctx, erc721)
	req.NoError(err)
	req.True(m.Address().Equals(manager721))

	m, err = s.selector.ManagerFor(s.ctx, erc1155)
	req.NoError(err)
	req.True(m.Address().Equals(manager115))

	_, err = s.selector.ManagerFor(s.ctx, unknown)
	req.ErrorIs(err, domain.ErrNoTransferManager)
	req.ErrorIs(err, domain.ErrTransfer)
}

func (s *transferSuite) TestOverride() {
	req := s.Require()
	req.ErrorIs(s.selector.AddCollectionTransferManager(s.ctx, alice, erc721, manager115), domain.ErrNotOwner)
	req.ErrorIs(s.selector.AddCollectionTransferManager(s.ctx, owner, domain.EmptyAddress, manager115), domain.ErrExpectedNonNullAddress)
	req.ErrorIs(s.selector.AddCollectionTransferManager(s.ctx, owner, erc721, unknown), domain.ErrNoTransferManager)

	req.NoError(s.selector.AddCollectionTransferManager(s.ctx, owner, unknown, manager721))
	m, err := s.selector.ManagerFor(s.ctx, unknown)
	req.NoError(err)
	req.True(m.Address().Equals(manager721))

	req.NoError(s.selector.RemoveCollectionTransferManager(s.ctx, owner, unknown))
	req.ErrorIs(s.selector.RemoveCollectionTransferManager(s.ctx, owner, unknown), domain.ErrNoTransferManager)
}

func (s *transferSuite) TestManagersMoveTokens() {
	req := s.Require()
	one := big.NewInt(1)
	req.NoError(s.assets.Mint(s.ctx, erc721, alice, one, one))
	req.NoError(s.assets.Mint(s.ctx, erc1155, alice, one, big.NewInt(5)))

	m721, err := s.selector.ManagerFor(s.ctx, erc721)
	req.NoError(err)
	req.ErrorIs(m721.TransferNonFungibleToken(s.ctx, erc721, alice, bob, one, one), domain.ErrTransferNotApproved)

	req.NoError(s.assets.SetApprovalForAll(s.ctx, erc721, alice, manager721, true))
	req.NoError(m721.TransferNonFungibleToken(s.ctx, erc721, alice, bob, one, big.NewInt(7)))
	holder, err := s.assets.OwnerOf(s.ctx, erc721, one)
	req.NoError(err)
	req.True(holder.Equals(bob))

	m1155, err := s.selector.ManagerFor(s.ctx, erc1155)
	req.NoError(err)
	req.NoError(s.assets.SetApprovalForAll(s.ctx, erc1155, alice, manager115, true))
	req.ErrorIs(m1155.TransferNonFungibleToken(s.ctx, erc1155, alice, bob, one, big.NewInt(6)), domain.ErrTransferNotEnoughToken)
	req.NoError(m1155.TransferNonFungibleToken(s.ctx, erc1155, alice, bob, one, big.NewInt(2)))
	bal, err := s.assets.BalanceOf(s.ctx, erc1155, bob, one)
	req.NoError(err)
	req.Equal(int64(2), bal.Int64())
}

func (s *transferSuite) mintBatch() []transfer.Item {
	req := s.Require()
	for i := int64(1); i <= 2; i++ {
		req.NoError(s.assets.Mint(s.ctx, erc721, alice, big.NewInt(i), big.NewInt(1)))
	}
	req.NoError(s.assets.Mint(s.ctx, erc1155, alice, big.NewInt(1), big.NewInt(5)))
	req.NoError(s.assets.Mint(s.ctx, erc1155, alice, big.NewInt(2), big.NewInt(2)))
	return []transfer.Item{
		{Collection: erc721, Recipient: bob, TokenId: big.NewInt(1)},
		{Collection: erc721, Recipient: bob, TokenId: big.NewInt(2)},
		{Collection: erc1155, Recipient: bob, TokenId: big.NewInt(1), Amount: big.NewInt(4)},
		{Collection: erc1155, Recipient: bob, TokenId: big.NewInt(2), Amount: big.NewInt(2)},
	}
}

func (s *transferSuite) balance(collection, holder domain.Address, tokenId int64) int64 {
	bal, err := s.assets.BalanceOf(s.ctx, collection, holder, big.NewInt(tokenId))
	s.Require().NoError(err)
	return bal.Int64()
}

func (s *transferSuite) TestBatchTransfer() {
	req := s.Require()
	items := s.mintBatch()
	req.ErrorIs(s.batch.BatchTransfer(s.ctx, alice, nil), domain.ErrEmptyTransfers)
	req.ErrorIs(s.batch.BatchTransfer(s.ctx, alice, items), domain.ErrTransferNotApproved)

	req.NoError(s.assets.SetApprovalForAll(s.ctx, erc721, alice, manager721, true))
	req.ErrorIs(s.batch.BatchTransfer(s.ctx, alice, items), domain.ErrTransferNotApproved)
	holder, err := s.assets.OwnerOf(s.ctx, erc721, big.NewInt(1))
	req.NoError(err)
	req.True(holder.Equals(alice), "a failed item reverts the whole batch")

	req.NoError(s.assets.SetApprovalForAll(s.ctx, erc1155, alice, manager115, true))
	req.NoError(s.batch.BatchTransfer(s.ctx, alice, items))
	for i := int64(1); i <= 2; i++ {
		holder, err := s.assets.OwnerOf(s.ctx, erc721, big.NewInt(i))
		req.NoError(err)
		req.True(holder.Equals(bob))
	}
	req.Equal(int64(4), s.balance(erc1155, bob, 1))
	req.Equal(int64(1), s.balance(erc1155, alice, 1))
	req.Equal(int64(2), s.balance(erc1155, bob, 2))
	req.Equal(int64(0), s.balance(erc1155, alice, 2))
}

func (s *transferSuite) TestBatchTransferOthersAssets() {
	req := s.Require()
	items := s.mintBatch()
	req.NoError(s.assets.SetApprovalForAll(s.ctx, erc721, alice, manager721, true))
	req.NoError(s.assets.SetApprovalForAll(s.ctx, erc721, bob, manager721, true))

	// bob can only move his own tokens even when alice approved the manager
	req.ErrorIs(s.batch.BatchTransfer(s.ctx, bob, items[:1]), domain.ErrTransferNotOwner)
	req.ErrorIs(s.batch.BatchTransferNonFungibleTokens(s.ctx, bob, alice, bob, items[:1]), domain.ErrOnlyAssetsOwner)

	req.NoError(s.batch.BatchTransferNonFungibleTokens(s.ctx, alice, alice, owner, items[:2]))
	for i := int64(1); i <= 2; i++ {
		holder, err := s.assets.OwnerOf(s.ctx, erc721, big.NewInt(i))
		req.NoError(err)
		req.True(holder.Equals(owner))
	}
}
