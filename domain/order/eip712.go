package order

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/x-xyz/settlement/domain"
)

const (
	PrimaryType      = "MakerOrder"
	Eip712DomainName = "EIP712Domain"

	DomainName    = "SettlementExchange"
	DomainVersion = "1"
)

func GetDomainSeparator(chainId domain.ChainId, verifyingContract domain.Address) apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              DomainName,
		Version:           DomainVersion,
		ChainId:           math.NewHexOrDecimal256(int64(chainId)),
		VerifyingContract: verifyingContract.ToLowerStr(),
	}
}

var OrderTypes = apitypes.Types{
	"MakerOrder": {
		{Name: "isOrderAsk", Type: "bool"},
		{Name: "signer", Type: "address"},
		{Name: "collection", Type: "address"},
		{Name: "price", Type: "uint256"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "amount", Type: "uint256"},
		{Name: "strategy", Type: "address"},
		{Name: "currency", Type: "address"},
		{Name: "nonce", Type: "uint256"},
		{Name: "startTime", Type: "uint256"},
		{Name: "endTime", Type: "uint256"},
		{Name: "minPercentageToAsk", Type: "uint256"},
		{Name: "params", Type: "bytes"},
	},
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
}

func (o *MakerOrder) ToMessage() apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"isOrderAsk":         o.IsOrderAsk,
		"signer":             o.Signer.ToLowerStr(),
		"collection":         o.Collection.ToLowerStr(),
		"price":              domain.BigString(o.Price),
		"tokenId":            domain.BigString(o.TokenId),
		"amount":             domain.BigString(o.Amount),
		"strategy":           o.Strategy.ToLowerStr(),
		"currency":           o.Currency.ToLowerStr(),
		"nonce":              domain.BigString(o.Nonce),
		"startTime":          fmt.Sprint(o.StartTime),
		"endTime":            fmt.Sprint(o.EndTime),
		"minPercentageToAsk": fmt.Sprint(o.MinPercentageToAsk),
		"params":             hexutil.Encode(o.Params),
	}
}

// Hash is the EIP-712 struct hash of the order
func (o *MakerOrder) Hash() ([]byte, error) {
	// the domain is not part of the struct hash but EncodeData rejects an empty one
	typedData := apitypes.TypedData{
		Types:       OrderTypes,
		PrimaryType: PrimaryType,
		Domain:      GetDomainSeparator(1, domain.EmptyAddress),
		Message:     o.ToMessage(),
	}
	return typedData.HashStruct(typedData.PrimaryType, typedData.Message)
}

// Digest is the value a signer signs: keccak256("\x19\x01" ‖ domainSeparator ‖ structHash)
func (o *MakerOrder) Digest(separator apitypes.TypedDataDomain) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types:       OrderTypes,
		PrimaryType: PrimaryType,
		Domain:      separator,
		Message:     o.ToMessage(),
	}
	domainSeparator, err := typedData.HashStruct(Eip712DomainName, typedData.Domain.Map())
	if err != nil {
		return nil, err
	}
	dataHash, err := o.Hash()
	if err != nil {
		return nil, err
	}
	rawData := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeparator), string(dataHash)))
	return crypto.Keccak256(rawData), nil
}
