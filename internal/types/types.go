package types

type OrderSide string

type OrderType string

type TimeInForce string

type TransferDirection string

type TransactionKind string

type TransactionStatus string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"
)

const (
	TimeInForceDay TimeInForce = "day"
	TimeInForceGTC TimeInForce = "gtc"
	TimeInForceIOC TimeInForce = "ioc"
)

const (
	TransferDirectionIncoming TransferDirection = "INCOMING"
	TransferDirectionOutgoing TransferDirection = "OUTGOING"
)

const (
	TransactionKindFunding TransactionKind = "funding"
	TransactionKindOrder   TransactionKind = "order"
)

const (
	TransactionStatusSubmitted TransactionStatus = "submitted"
	TransactionStatusSettled   TransactionStatus = "settled"
	TransactionStatusFailed    TransactionStatus = "failed"
)
