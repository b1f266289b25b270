package event

import (
	"github.com/x-xyz/settlement/base/ctx"
)

type Name string

const (
	NameTakerAsk                         Name = "TakerAsk"
	NameTakerBid                         Name = "TakerBid"
	NameRoyaltyPayment                   Name = "RoyaltyPayment"
	NameCancelAllOrders                  Name = "CancelAllOrders"
	NameCancelMultipleOrders             Name = "CancelMultipleOrders"
	NameOrderRegistered                  Name = "OrderRegistered"
	NameNotificationFailed               Name = "NotificationFailed"
	NameEnglishAuctionStart              Name = "EnglishAuctionStart"
	NameEnglishAuctionPlaceBid           Name = "EnglishAuctionPlaceBid"
	NameEnglishAuctionSettle             Name = "EnglishAuctionSettle"
	NameEnglishAuctionCancel             Name = "EnglishAuctionCancel"
	NameDutchAuctionStart                Name = "DutchAuctionStart"
	NameDutchAuctionSettle               Name = "DutchAuctionSettle"
	NameDutchAuctionCancel               Name = "DutchAuctionCancel"
	NameConfigUpdated                    Name = "ConfigUpdated"
	NameNotifiableAdded                  Name = "NotifiableAdded"
	NameNotifiableRemoved                Name = "NotifiableRemoved"
	NameProtocolFeeUpdated               Name = "ProtocolFeeUpdated"
	NameRoyaltyFeeUpdated                Name = "RoyaltyFeeUpdated"
	NameRoyaltyConfigUpdated             Name = "RoyaltyConfigUpdated"
	NameOwnershipTransferred             Name = "OwnershipTransferred"
	NamePendingOwnerSet                  Name = "PendingOwnerSet"
	NamePaused                           Name = "Paused"
	NameUnpaused                         Name = "Unpaused"
	NamePauseAdminAdded                  Name = "PauseAdminAdded"
	NamePauseAdminRemoved                Name = "PauseAdminRemoved"
	NameCurrencyAdded                    Name = "CurrencyWhitelisted"
	NameCurrencyRemoved                  Name = "CurrencyRemoved"
	NameStrategyAdded                    Name = "StrategyWhitelisted"
	NameStrategyRemoved                  Name = "StrategyRemoved"
	NameCollectionTransferManagerAdded   Name = "CollectionTransferManagerAdded"
	NameCollectionTransferManagerRemoved Name = "CollectionTransferManagerRemoved"
)

type Fields map[string]interface{}

// Event is the structured record of one state transition
type Event struct {
	Id       string `json:"id"`
	Name     Name   `json:"name"`
	Contract string `json:"contract"`
	Time     int64  `json:"time"`
	Fields   Fields `json:"fields"`
}

// Publisher delivers committed events to one sink
type Publisher interface {
	Name() string
	Publish(c ctx.Ctx, e *Event) error
}

// Emitter queues an event for delivery once the running transaction commits
type Emitter interface {
	Emit(c ctx.Ctx, contract string, name Name, fields Fields)
}

// Reader lists recently published events, newest first
type Reader interface {
	Recent(c ctx.Ctx, offset, limit int) ([]*Event, error)
}
