package keys

import (
	"crypto/md5"
	"fmt"
	"math/big"
	"strings"

	"github.com/x-xyz/settlement/domain"
)

const (
	// PfxEvents is used for prefixing the redis event channel
	PfxEvents = "events"
	// PfxDefault keys the singleton record of a table
	PfxDefault = "default"
	// PfxHealthCheck is used for prefixing the redis health probe key
	PfxHealthCheck = "healthcheck"
)

// MD5 hashes the data with md5
func MD5(data string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(data)))
}

// CustomKey is used to join the customized key by componets with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by componets
func RedisKey(components ...string) string {
	return CustomKey(":", components...)
}

// StoreKey joins the key of a kv record, addresses are lower cased so that
// checksummed and plain forms address the same record
func StoreKey(components ...string) string {
	return CustomKey("/", components...)
}

func AddressKey(addr domain.Address) string {
	return addr.ToLowerStr()
}

// TokenKey is the auction slot key of (collection, tokenId)
func TokenKey(collection domain.Address, tokenId *big.Int) string {
	return StoreKey(collection.ToLowerStr(), domain.BigString(tokenId))
}

func NonceKey(signer domain.Address, nonce *big.Int) string {
	return StoreKey(signer.ToLowerStr(), domain.BigString(nonce))
}

// Prefix turns components into a scan prefix that only matches their children
func Prefix(components ...string) string {
	return StoreKey(components...) + "/"
}
