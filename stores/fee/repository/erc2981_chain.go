package repository

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/fee"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/service/cache"
	"github.com/x-xyz/settlement/service/chain/contract"
)

type ChainERC2981Cfg struct {
	ChainId  domain.ChainId
	Contract contract.Erc2981Contract
	// Cache keeps the supportsInterface answer of each collection
	Cache cache.Service
}

type chainERC2981 struct {
	chainId  domain.ChainId
	contract contract.Erc2981Contract
	cache    cache.Service
}

// NewChainERC2981 queries deployed collections through the rpc client
func NewChainERC2981(cfg *ChainERC2981Cfg) fee.ERC2981 {
	return &chainERC2981{
		chainId:  cfg.ChainId,
		contract: cfg.Contract,
		cache:    cfg.Cache,
	}
}

func (im *chainERC2981) SupportsERC2981(ctx ctx.Ctx, collection domain.Address) (bool, error) {
	var supported bool
	key := keys.RedisKey("erc2981", keys.AddressKey(collection))
	err := im.cache.GetByFunc(ctx, key, &supported, func() (interface{}, error) {
		ok, err := im.contract.SupportsERC2981(ctx, int32(im.chainId), collection.ToLowerStr())
		if err != nil {
			// contracts without erc165 revert on supportsInterface
			ctx.WithFields(log.Fields{
				"err":        err,
				"collection": collection,
			}).Warn("contract.SupportsERC2981 failed")
			ok = false
		}
		return &ok, nil
	})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Error("cache.GetByFunc failed")
		return false, err
	}
	return supported, nil
}

func (im *chainERC2981) RoyaltyInfo(ctx ctx.Ctx, collection domain.Address, tokenId, price *big.Int) (domain.Address, *big.Int, error) {
	receiver, amount, err := im.contract.RoyaltyInfo(ctx, int32(im.chainId), collection.ToLowerStr(), tokenId, price)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"tokenId":    tokenId.String(),
		}).Error("contract.RoyaltyInfo failed")
		return "", nil, err
	}
	return domain.Address(receiver).ToLower(), amount, nil
}
