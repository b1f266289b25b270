package domain

type Table string

const (
	TableOrderNonces         Table = "order_nonces"
	TableExecutedNonces      Table = "executed_order_nonces"
	TableRegisteredOrders    Table = "registered_orders"
	TableEnglishAuctions     Table = "english_auctions"
	TableDutchAuctions       Table = "dutch_auctions"
	TableAuctionHouseConfigs Table = "auction_house_configs"
	TableAuctionNonces       Table = "auction_nonces"
	TableExchangeConfigs     Table = "exchange_configs"
	TableNotifiables         Table = "notifiable_contracts"
	TableProtocolFees        Table = "protocol_fees"
	TableRoyaltyFeesV1       Table = "royalty_fees_v1"
	TableRoyaltyFeesV2       Table = "royalty_fees_v2"
	TableRoyaltyConfigs      Table = "royalty_configs"
	TableCurrencies          Table = "whitelisted_currencies"
	TableStrategies          Table = "whitelisted_strategies"
	TableOwnerships          Table = "ownerships"
	TablePauseAdmins         Table = "pause_admins"
	TableBalances            Table = "ledger_balances"
	TableAllowances          Table = "ledger_allowances"
	TableNativeBalances      Table = "ledger_native_balances"
	TableTokenOwners         Table = "ledger_token_owners"
	TableTokenBalances       Table = "ledger_token_balances"
	TableOperatorApprovals   Table = "ledger_operator_approvals"
	TableCollections         Table = "ledger_collections"
	TableTransferManagers    Table = "transfer_managers"
	TableAuthNonces          Table = "auth_nonces"
)
