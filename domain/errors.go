package domain

import "errors"

// ErrorKind groups engine errors into the classes callers react to.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindState         ErrorKind = "state"
	KindFunds         ErrorKind = "funds"
	KindAuthorization ErrorKind = "authorization"
	KindTransfer      ErrorKind = "transfer"
)

// Error is a classified engine error. errors.Is matches either the exact
// sentinel (same Code) or the bare kind sentinel (empty Code).
type Error struct {
	Kind ErrorKind
	Code string
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == "" {
		return e.Kind == t.Kind
	}
	return e.Code == t.Code
}

func newError(kind ErrorKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

// KindOf returns the kind of the first classified error in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

var (
	ErrValidation    = &Error{Kind: KindValidation, Msg: "validation error"}
	ErrState         = &Error{Kind: KindState, Msg: "state error"}
	ErrFunds         = &Error{Kind: KindFunds, Msg: "insufficient funds"}
	ErrAuthorization = &Error{Kind: KindAuthorization, Msg: "unauthorized"}
	ErrTransfer      = &Error{Kind: KindTransfer, Msg: "transfer error"}
)

var (
	ErrNotFound            = errors.New("Your requested Item is not found")
	ErrInvalidNumberFormat = errors.New("invalid number format")
	ErrBadParamInput       = newError(KindValidation, "BadParamInput", "Given Param is not valid")
	ErrInvalidAddress      = newError(KindValidation, "InvalidAddress", "Invalid address")
)

// validation
var (
	ErrUnsupportedCurrency           = newError(KindValidation, "UnsupportedCurrency", "currency is not whitelisted")
	ErrUnsupportedStrategy           = newError(KindValidation, "UnsupportedStrategy", "strategy is not whitelisted")
	ErrCurrencyMismatch              = newError(KindValidation, "CurrencyMismatch", "currency mismatch")
	ErrInvalidSignature              = newError(KindValidation, "InvalidSignature", "invalid signature")
	ErrInvalidSigner                 = newError(KindValidation, "InvalidSigner", "invalid signer")
	ErrInvalidOrderSide              = newError(KindValidation, "InvalidOrderSide", "maker and taker sides do not match")
	ErrInvalidAmount                 = newError(KindValidation, "InvalidAmount", "amount must be positive")
	ErrInvalidPrice                  = newError(KindValidation, "InvalidPrice", "price must be positive")
	ErrInvalidMinPercentageToAsk     = newError(KindValidation, "InvalidMinPercentageToAsk", "minPercentageToAsk must be in (0, 10000]")
	ErrTakerMakerMismatch            = newError(KindValidation, "ExecutionInvalid", "strategy execution invalid")
	ErrOrderNotStarted               = newError(KindValidation, "OrderNotStarted", "order is not active yet")
	ErrFeesHigherThanExpected        = newError(KindValidation, "FeesHigherThanExpected", "fees higher than expected")
	ErrOrderNonceLowerThanCurrent    = newError(KindValidation, "OrderNonceLowerThanCurrent", "order nonce lower than current")
	ErrOrderNonceTooHigh             = newError(KindValidation, "OrderNonceTooHigh", "cannot cancel more orders")
	ErrEmptyNonces                   = newError(KindValidation, "EmptyNonces", "cannot be empty")
	ErrEmptyTrades                   = newError(KindValidation, "EmptyTrades", "no trade to execute")
	ErrEmptyTransfers                = newError(KindValidation, "EmptyTransfers", "no asset to transfer")
	ErrExpectedNonNullAddress        = newError(KindValidation, "ExpectedNonNullAddress", "expected non-null address")
	ErrInvalidDuration               = newError(KindValidation, "InvalidDuration", "invalid duration")
	ErrInvalidDropInterval           = newError(KindValidation, "InvalidDropInterval", "invalid drop interval")
	ErrInvalidStartPrice             = newError(KindValidation, "InvalidStartPrice", "start price must be positive")
	ErrDutchAuctionInvalidStartEnd   = newError(KindValidation, "DutchAuctionInvalidStartEndPrice", "start price must be greater than end price and end price must be positive")
	ErrInvalidMinBidIncrementPct     = newError(KindValidation, "EnglishAuctionInvalidMinBidIncrementPct", "min bid increment pct must be in (0, 10000]")
	ErrInvalidRefreshTime            = newError(KindValidation, "EnglishAuctionInvalidRefreshTime", "refresh time must be positive")
	ErrInsufficientBidAmount         = newError(KindValidation, "EnglishAuctionInsufficientBidAmount", "insufficient bid amount")
	ErrInvalidProtocolFee            = newError(KindValidation, "InvalidProtocolFee", "protocol fee exceeds 10000")
	ErrRoyaltyFeeLimitTooHigh        = newError(KindValidation, "RoyaltyFeeLimitTooHigh", "royalty fee limit too high")
	ErrInvalidMaxNumRecipients       = newError(KindValidation, "InvalidMaxNumRecipients", "max number of recipients must be positive")
	ErrTooManyFeeRecipients          = newError(KindValidation, "TooManyFeeRecipients", "too many fee recipients")
	ErrInvalidRoyaltyFee             = newError(KindValidation, "InvalidRoyaltyFee", "royalty fee must be positive")
	ErrRoyaltyFeeTooHigh             = newError(KindValidation, "RoyaltyFeeTooHigh", "royalty fee too high")
	ErrCollectionSupportsERC2981     = newError(KindValidation, "CollectionSupportsERC2981", "collection must not support ERC2981")
	ErrInvalidNativeValue            = newError(KindValidation, "InvalidNativeValue", "native value exceeds the trade total")
	ErrUnsupportedCollectionStandard = newError(KindValidation, "UnsupportedCollectionStandard", "collection standard not supported")
)

// state
var (
	ErrPaused                             = newError(KindState, "Paused", "Pausable: paused")
	ErrAlreadyPaused                      = newError(KindState, "AlreadyPaused", "already paused")
	ErrAlreadyUnpaused                    = newError(KindState, "AlreadyUnpaused", "already unpaused")
	ErrOrderExpired                       = newError(KindState, "MatchingOrderExpired", "Order: Matching order expired")
	ErrOrderAlreadyRegistered             = newError(KindState, "OrderAlreadyRegistered", "order already registered")
	ErrNoAuctionExists                    = newError(KindState, "NoAuctionExists", "no auction exists")
	ErrAuctionAlreadyExists               = newError(KindState, "AuctionAlreadyExists", "auction already exists")
	ErrCreatorCannotPlaceBid              = newError(KindState, "EnglishAuctionCreatorCannotPlaceBid", "creator cannot place bid")
	ErrCannotBidOnEndedAuction            = newError(KindState, "EnglishAuctionCannotBidOnEndedAuction", "cannot bid on ended auction")
	ErrCannotSettleWithoutBid             = newError(KindState, "EnglishAuctionCannotSettleWithoutBid", "cannot settle without bid")
	ErrCannotCancelWithExistingBid        = newError(KindState, "EnglishAuctionCannotCancelWithExistingBid", "cannot cancel with existing bid")
	ErrOnlyCreatorCanSettleBeforeEndTime  = newError(KindState, "EnglishAuctionOnlyCreatorCanSettleBeforeEndTime", "only creator can settle before end time")
	ErrOnlyAuctionCreatorCanCancel        = newError(KindState, "OnlyAuctionCreatorCanCancel", "only auction creator can cancel")
	ErrDutchAuctionCreatorCannotSettle    = newError(KindState, "DutchAuctionCreatorCannotSettle", "creator cannot settle")
	ErrPendingOwnerAlreadySet             = newError(KindState, "PendingOwnerAlreadySet", "pending owner already set")
	ErrNoPendingOwner                     = newError(KindState, "NoPendingOwner", "no pending owner")
	ErrRoyaltyFeeRegistryV2AlreadyInitial = newError(KindState, "RoyaltyFeeRegistryV2AlreadyInitialized", "royalty fee registry v2 already initialized")
	ErrCurrencyAlreadyWhitelisted         = newError(KindState, "CurrencyAlreadyWhitelisted", "currency already whitelisted")
	ErrCurrencyNotWhitelisted             = newError(KindState, "CurrencyNotWhitelisted", "currency not whitelisted")
	ErrStrategyAlreadyWhitelisted         = newError(KindState, "StrategyAlreadyWhitelisted", "strategy already whitelisted")
	ErrStrategyNotWhitelisted             = newError(KindState, "StrategyNotWhitelisted", "strategy not whitelisted")
)

// funds
var (
	ErrInsufficientBalance   = newError(KindFunds, "InsufficientBalance", "transfer amount exceeds balance")
	ErrInsufficientAllowance = newError(KindFunds, "InsufficientAllowance", "insufficient allowance")
)

// authorization
var (
	ErrNotOwner               = newError(KindAuthorization, "NotOwner", "PendingOwnable__NotOwner")
	ErrNotPendingOwner        = newError(KindAuthorization, "NotPendingOwner", "PendingOwnable__NotPendingOwner")
	ErrOnlyPauseAdmin         = newError(KindAuthorization, "OnlyPauseAdmin", "caller is not a pause admin")
	ErrAddressIsNotPauseAdmin = newError(KindAuthorization, "AddressIsNotPauseAdmin", "address is not a pause admin")
	ErrNotCollectionAdmin     = newError(KindAuthorization, "NotCollectionAdmin", "caller is not collection owner, admin or setter")
	ErrUnauthorized           = newError(KindAuthorization, "Unauthorized", "missing caller identity")
	ErrOnlyAssetsOwner        = newError(KindAuthorization, "OnlyAssetsOwner", "Only assets owner can transfer")
)

// transfer
var (
	ErrNoTransferManager      = newError(KindTransfer, "NoTransferManager", "no transfer manager available")
	ErrTransferNotApproved    = newError(KindTransfer, "TransferNotApproved", "transfer caller is not owner nor approved")
	ErrTransferNotOwner       = newError(KindTransfer, "TransferNotOwner", "transfer from incorrect owner")
	ErrTransferNotEnoughToken = newError(KindTransfer, "TransferNotEnoughToken", "insufficient token balance for transfer")
)
