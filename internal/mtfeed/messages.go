package mtfeed

import "encoding/json"

// Channels carried by the public Bitstamp feed.
const (
	ChannelLiveOrdersBTCEUR = "live_orders_btceur"
	ChannelLiveTradesBTCEUR = "live_trades_btceur"
)

// Event names in the feed envelope.
const (
	eventSubscribe               = "bts:subscribe"
	eventSubscriptionSucceeded   = "bts:subscription_succeeded"
	eventUnsubscriptionSucceeded = "bts:unsubscription_succeeded"
	eventRequestReconnect        = "bts:request_reconnect"

	eventOrderCreated = "order_created"
	eventOrderChanged = "order_changed"
	eventOrderDeleted = "order_deleted"
	eventTrade        = "trade"
)

// Order is a live order event.
type Order struct {
	ID             uint64  `json:"id"`
	Amount         float64 `json:"amount"`
	AmountStr      string  `json:"amount_str"`
	Price          float64 `json:"price"`
	PriceStr       string  `json:"price_str"`
	OrderType      uint8   `json:"order_type"`
	Datetime       string  `json:"datetime"`
	Microtimestamp string  `json:"microtimestamp"`
}

// Trade is a live trade event.
type Trade struct {
	ID             uint64  `json:"id"`
	Amount         float64 `json:"amount"`
	AmountStr      string  `json:"amount_str"`
	Price          float64 `json:"price"`
	PriceStr       string  `json:"price_str"`
	BuyOrderID     uint64  `json:"buy_order_id"`
	SellOrderID    uint64  `json:"sell_order_id"`
	Timestamp      string  `json:"timestamp"`
	Microtimestamp string  `json:"microtimestamp"`

	// 0 for a buy, 1 for a sell.
	Type uint8 `json:"type"`
}

// envelope is the outer shape of every feed message.
type envelope struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

type subscribeData struct {
	Channel string `json:"channel"`
}

type subscribeRequest struct {
	Event string        `json:"event"`
	Data  subscribeData `json:"data"`
}
