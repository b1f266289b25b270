package usecase

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/ethereum"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/order"
	"github.com/x-xyz/settlement/service/chain/contract"
)

type ecdsaVerifier struct{}

// NewECDSAVerifier accepts an order whose signature recovers to its signer
func NewECDSAVerifier() order.Verifier {
	return &ecdsaVerifier{}
}

func (v *ecdsaVerifier) Verify(ctx ctx.Ctx, o *order.MakerOrder, digest []byte) error {
	if len(o.Signature) == 0 {
		return domain.ErrInvalidSignature
	}
	recovered, err := ethereum.RecoverHashSigner(digest, o.Signature)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"signer": o.Signer,
		}).Info("ethereum.RecoverHashSigner failed")
		return domain.ErrInvalidSignature
	}
	if !domain.NewAddress(recovered).Equals(o.Signer) {
		return domain.ErrInvalidSigner
	}
	return nil
}

type registryVerifier struct {
	repo order.RegisteredOrderRepo
}

// NewRegistryVerifier accepts an order its signer registered in advance
func NewRegistryVerifier(repo order.RegisteredOrderRepo) order.Verifier {
	return &registryVerifier{repo}
}

func (v *registryVerifier) Verify(ctx ctx.Ctx, o *order.MakerOrder, digest []byte) error {
	reg, err := v.repo.FindOne(ctx, domain.OrderHash(hexutil.Encode(digest)))
	if err == domain.ErrNotFound {
		return domain.ErrInvalidSignature
	} else if err != nil {
		return err
	}
	if !reg.Signer.Equals(o.Signer) {
		return domain.ErrInvalidSigner
	}
	return nil
}

type ERC1271VerifierCfg struct {
	ChainId  domain.ChainId
	Contract contract.Erc1271Contract
}

type erc1271Verifier struct {
	chainId  domain.ChainId
	contract contract.Erc1271Contract
}

// NewERC1271Verifier asks a contract signer whether it vouches for the digest
func NewERC1271Verifier(cfg *ERC1271VerifierCfg) order.Verifier {
	return &erc1271Verifier{cfg.ChainId, cfg.Contract}
}

func (v *erc1271Verifier) Verify(ctx ctx.Ctx, o *order.MakerOrder, digest []byte) error {
	isContract, err := v.contract.IsContract(ctx, int32(v.chainId), o.Signer.ToLowerStr())
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"signer": o.Signer,
		}).Error("contract.IsContract failed")
		return err
	}
	if !isContract {
		return domain.ErrInvalidSignature
	}
	ok, err := v.contract.IsValidSignature(ctx, int32(v.chainId), o.Signer.ToLowerStr(), common.BytesToHash(digest), o.Signature)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"signer": o.Signer,
		}).Warn("contract.IsValidSignature failed")
		return domain.ErrInvalidSignature
	}
	if !ok {
		return domain.ErrInvalidSignature
	}
	return nil
}

type chainVerifier struct {
	verifiers []order.Verifier
}

// NewVerifierChain tries verifiers in order and accepts on the first success,
// the first rejection is reported when all of them refuse
func NewVerifierChain(verifiers ...order.Verifier) order.Verifier {
	return &chainVerifier{verifiers}
}

func (v *chainVerifier) Verify(ctx ctx.Ctx, o *order.MakerOrder, digest []byte) error {
	var first error
	for _, verifier := range v.verifiers {
		err := verifier.Verify(ctx, o, digest)
		if err == nil {
			return nil
		}
		if _, ok := domain.KindOf(err); !ok {
			return err
		}
		if first == nil {
			first = err
		}
	}
	if first == nil {
		return domain.ErrInvalidSignature
	}
	return first
}
