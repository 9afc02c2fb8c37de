package mtfeed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/civisgrid/merkletree"
	"github.com/civisgrid/merkletree/internal/mtfeed"
	"github.com/civisgrid/merkletree/internal/mttest"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const (
	subscribedTrades = `{"event":"bts:subscription_succeeded","channel":"live_trades_btceur","data":{}}`

	orderCreated = `{"event":"order_created","channel":"live_orders_btceur","data":{` +
		`"id":1588732397387776,"id_str":"1588732397387776","order_type":1,"datetime":"1676587789",` +
		`"microtimestamp":"1676587789123456","amount":0.05,"amount_str":"0.05000000",` +
		`"price":22123.5,"price_str":"22123.5"}}`

	orderChanged = `{"event":"order_changed","channel":"live_orders_btceur","data":{"id":1}}`

	tradeData0 = `{"id":271130170,"timestamp":"1676587790","amount":0.0123,"amount_str":"0.01230000",` +
		`"price":22120,"price_str":"22120","type":0,"microtimestamp":"1676587790000001",` +
		`"buy_order_id":1588732400000001,"sell_order_id":1588732300000001}`
	tradeData1 = `{"id":271130171,"timestamp":"1676587791","amount":0.5,"amount_str":"0.50000000",` +
		`"price":22121,"price_str":"22121","type":1,"microtimestamp":"1676587791000001",` +
		`"buy_order_id":1588732400000002,"sell_order_id":1588732300000002}`
	tradeData2 = `{"id":271130172,"timestamp":"1676587792","amount":1,"amount_str":"1.00000000",` +
		`"price":22122,"price_str":"22122","type":0,"microtimestamp":"1676587792000001",` +
		`"buy_order_id":1588732400000003,"sell_order_id":1588732300000003}`
)

func tradeMessage(data string) string {
	return `{"event":"trade","channel":"live_trades_btceur","data":` + data + `}`
}

// feedServer starts a websocket server that runs serve against each accepted connection,
// and returns the websocket URL of the server.
func feedServer(t *testing.T, serve func(*websocket.Conn)) string {
	t.Helper()

	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		serve(conn)
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readSubscriptions(conn *websocket.Conn, n int, out chan<- map[string]any) bool {
	for range n {
		var req map[string]any
		if err := conn.ReadJSON(&req); err != nil {
			return false
		}
		out <- req
	}
	return true
}

func closeNormally(conn *websocket.Conn) {
	_ = conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	// Give the client a chance to read the close frame.
	_, _, _ = conn.ReadMessage()
}

func TestStream_tradesAndOrders(t *testing.T) {
	t.Parallel()

	subCh := make(chan map[string]any, 4)
	url := feedServer(t, func(conn *websocket.Conn) {
		if !readSubscriptions(conn, 2, subCh) {
			return
		}
		for _, msg := range []string{
			subscribedTrades,
			orderCreated,
			tradeMessage(tradeData0),
			orderChanged,
			tradeMessage(tradeData1),
			tradeMessage(tradeData2),
		} {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		closeNormally(conn)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log := mttest.NewLogger(t)
	conn, err := mtfeed.Dial(ctx, log, mtfeed.Config{
		URL: url,
		Channels: []string{
			mtfeed.ChannelLiveOrdersBTCEUR,
			mtfeed.ChannelLiveTradesBTCEUR,
		},
	})
	require.NoError(t, err)
	defer conn.Close()

	var trees []*merkletree.Tree
	var batches [][][]byte
	b := mtfeed.NewBatcher(mtfeed.BatcherConfig{Size: 2, Log: log}, func(tree *merkletree.Tree, items [][]byte) error {
		trees = append(trees, tree)
		batches = append(batches, items)
		return nil
	})

	var orders []mtfeed.Order
	var trades []mtfeed.Trade
	err = mtfeed.Stream(ctx, log, conn, mtfeed.Callbacks{
		Order: func(channel string, o mtfeed.Order) error {
			require.Equal(t, mtfeed.ChannelLiveOrdersBTCEUR, channel)
			orders = append(orders, o)
			return nil
		},
		Trade: func(channel string, tr mtfeed.Trade, raw []byte) error {
			require.Equal(t, mtfeed.ChannelLiveTradesBTCEUR, channel)
			trades = append(trades, tr)
			return b.Add(raw)
		},
	})
	require.NoError(t, err)

	require.Equal(t, map[string]any{
		"event": "bts:subscribe",
		"data":  map[string]any{"channel": "live_orders_btceur"},
	}, <-subCh)
	require.Equal(t, map[string]any{
		"event": "bts:subscribe",
		"data":  map[string]any{"channel": "live_trades_btceur"},
	}, <-subCh)

	require.Len(t, orders, 1)
	require.Equal(t, uint64(1588732397387776), orders[0].ID)
	require.Equal(t, "22123.5", orders[0].PriceStr)
	require.Equal(t, uint8(1), orders[0].OrderType)

	require.Len(t, trades, 3)
	require.Equal(t, uint64(271130171), trades[1].ID)
	require.Equal(t, uint8(1), trades[1].Type)
	require.Equal(t, 0.5, trades[1].Amount)
	require.Equal(t, uint64(1588732300000003), trades[2].SellOrderID)

	// Two trades filled one batch; the third is still pending.
	require.Len(t, trees, 1)
	require.Equal(t, 1, b.Pending())
	require.NoError(t, b.Flush())
	require.Len(t, trees, 2)
	require.Zero(t, b.Pending())

	require.Equal(t, [][]byte{[]byte(tradeData0), []byte(tradeData1)}, batches[0])
	require.Equal(t, [][]byte{[]byte(tradeData2)}, batches[1])

	for i, tree := range trees {
		for j, item := range batches[i] {
			proof, err := tree.MakeProof(item)
			require.NoError(t, err)
			require.Equal(t, tree.LeafProof(j), proof)
			require.True(t, merkletree.Verify(item, proof, tree.RootLabel()))
		}
	}
}

func TestStream_unknownEvent(t *testing.T) {
	t.Parallel()

	url := feedServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"mystery","channel":"x"}`))
		closeNormally(conn)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := mtfeed.Dial(ctx, mttest.NewLogger(t), mtfeed.Config{URL: url})
	require.NoError(t, err)
	defer conn.Close()

	err = mtfeed.Stream(ctx, mttest.NewLogger(t), conn, mtfeed.Callbacks{})
	require.ErrorAs(t, err, new(mtfeed.UnknownEventError))
}

func TestStream_binaryMessage(t *testing.T) {
	t.Parallel()

	url := feedServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0xde, 0xad})
		closeNormally(conn)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := mtfeed.Dial(ctx, mttest.NewLogger(t), mtfeed.Config{URL: url})
	require.NoError(t, err)
	defer conn.Close()

	err = mtfeed.Stream(ctx, mttest.NewLogger(t), conn, mtfeed.Callbacks{})
	require.Equal(t, mtfeed.UnexpectedMessageTypeError{Type: websocket.BinaryMessage}, err)
}

func TestStream_reconnectRequested(t *testing.T) {
	t.Parallel()

	url := feedServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"bts:request_reconnect","channel":"","data":""}`))
		closeNormally(conn)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := mtfeed.Dial(ctx, mttest.NewLogger(t), mtfeed.Config{URL: url})
	require.NoError(t, err)
	defer conn.Close()

	err = mtfeed.Stream(ctx, mttest.NewLogger(t), conn, mtfeed.Callbacks{})
	require.ErrorIs(t, err, mtfeed.ErrReconnectRequested)
}

func TestStream_contextCanceled(t *testing.T) {
	t.Parallel()

	serverDone := make(chan struct{})
	url := feedServer(t, func(conn *websocket.Conn) {
		// Never send anything; wait for the client to go away.
		_, _, _ = conn.ReadMessage()
		close(serverDone)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := mtfeed.Dial(ctx, mttest.NewLogger(t), mtfeed.Config{URL: url})
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- mtfeed.Stream(ctx, mttest.NewLogger(t), conn, mtfeed.Callbacks{})
	}()

	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Stream did not return after cancellation")
	}

	select {
	case <-serverDone:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not observe closed connection")
	}
}

func TestNewBatcher_invalidSize(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		mtfeed.NewBatcher(mtfeed.BatcherConfig{}, nil)
	})
}
