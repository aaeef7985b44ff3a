package display

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/pkg/enums"
	"github.com/angelmondragon/stallpos/pkg/logger"
)

func order(id string, status enums.OrderStatus, history ...orders.StatusEntry) orders.Order {
	if len(history) == 0 {
		history = []orders.StatusEntry{{Status: status, At: 1}}
	}
	return orders.Order{
		ID:              id,
		Number:          id,
		Status:          status,
		CreatedAt:       history[0].At,
		PrimaryCategory: enums.ProductCategoryPancake,
		StatusHistory:   history,
	}
}

func entry(status enums.OrderStatus, at int64) orders.StatusEntry {
	return orders.StatusEntry{Status: status, At: at}
}

func TestBuildBoardFullFlow(t *testing.T) {
	list := []orders.Order{
		order("0003", enums.OrderStatusQueued, entry(enums.OrderStatusQueued, 30)),
		order("0001", enums.OrderStatusInProgress, entry(enums.OrderStatusQueued, 10), entry(enums.OrderStatusInProgress, 50)),
		order("0002", enums.OrderStatusInProgress, entry(enums.OrderStatusQueued, 20), entry(enums.OrderStatusInProgress, 40)),
		order("0004", enums.OrderStatusPickedUp, entry(enums.OrderStatusQueued, 5), entry(enums.OrderStatusPickedUp, 6)),
	}

	board := BuildBoard(orders.FullFlow(), list, orders.Filter{Status: enums.OrderStatusQueued})
	require.Len(t, board.Columns, 3)
	assert.Equal(t, enums.OrderStatusQueued, board.Columns[0].Status)
	assert.Equal(t, enums.OrderStatusReady, board.Columns[2].Status)
	require.Len(t, board.Columns[1].Orders, 2)
	assert.Equal(t, "0002", board.Columns[1].Orders[0].ID)
	assert.Equal(t, 3, board.Count())
	assert.Len(t, board.Flow, 4)
}

func TestBuildBoardCompactFlowAndFilters(t *testing.T) {
	drink := order("0002", enums.OrderStatusQueued)
	drink.PrimaryCategory = enums.ProductCategoryDrink
	drink.CustomerName = "Mika"
	list := []orders.Order{order("0001", enums.OrderStatusQueued), drink}

	board := BuildBoard(orders.CompactFlow(), list, orders.Filter{Category: enums.ProductCategoryDrink})
	require.Len(t, board.Columns, 2)
	require.Len(t, board.Columns[0].Orders, 1)
	assert.Equal(t, "0002", board.Columns[0].Orders[0].ID)

	board = BuildBoard(orders.CompactFlow(), list, orders.Filter{Query: "mika"})
	assert.Equal(t, 1, board.Count())
}

func TestBuildCallView(t *testing.T) {
	var list []orders.Order
	for i := 0; i < 12; i++ {
		o := order(orders.FormatNumber(int64(i+1)), enums.OrderStatusReady,
			entry(enums.OrderStatusQueued, 1), entry(enums.OrderStatusReady, int64(100-i)))
		o.ReadyAcknowledged = i%2 == 0
		list = append(list, o)
	}
	picked := int64(500)
	done := order("0099", enums.OrderStatusPickedUp, entry(enums.OrderStatusQueued, 1), entry(enums.OrderStatusPickedUp, 200))
	older := order("0098", enums.OrderStatusPickedUp, entry(enums.OrderStatusQueued, 1), entry(enums.OrderStatusPickedUp, 300))
	done.PickedUpAt = &picked
	list = append(list, done, older)

	view := BuildCallView(list, Limits{})
	require.Len(t, view.Ready, orders.DefaultReadyLimit)
	assert.Equal(t, "0012", view.Ready[0].ID, "earliest ready first")
	for _, id := range view.Pending {
		o := findOrder(view.Ready, id)
		require.NotNil(t, o)
		assert.False(t, o.ReadyAcknowledged)
	}
	require.Len(t, view.Recent, 2)
	assert.Equal(t, "0099", view.Recent[0].ID)

	limited := BuildCallView(list, Limits{Ready: 2, Recent: 1})
	assert.Len(t, limited.Ready, 2)
	assert.Len(t, limited.Recent, 1)
}

func findOrder(list []orders.Order, id string) *orders.Order {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

type fakeAcknowledger struct {
	calls []string
	fail  map[string]error
}

func (f *fakeAcknowledger) AcknowledgeOrder(_ context.Context, id string) (orders.Order, error) {
	f.calls = append(f.calls, id)
	if err := f.fail[id]; err != nil {
		return orders.Order{}, err
	}
	return orders.Order{ID: id, ReadyAcknowledged: true}, nil
}

func newAnnouncer(t *testing.T, ack Acknowledger, hook AnnounceFunc) *Announcer {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "display-test", Output: &bytes.Buffer{}})
	a, err := NewAnnouncer(ack, logg, hook)
	require.NoError(t, err)
	return a
}

func TestAnnouncerAnnouncesOncePerReadyEntry(t *testing.T) {
	ack := &fakeAcknowledger{}
	var heard []string
	a := newAnnouncer(t, ack, func(_ context.Context, o orders.Order) { heard = append(heard, o.Number) })
	ctx := context.Background()

	fresh := order("0001", enums.OrderStatusReady, entry(enums.OrderStatusQueued, 1), entry(enums.OrderStatusReady, 10))
	seen := order("0002", enums.OrderStatusReady, entry(enums.OrderStatusQueued, 1), entry(enums.OrderStatusReady, 11))
	seen.ReadyAcknowledged = true
	view := BuildCallView([]orders.Order{fresh, seen}, Limits{})

	n, err := a.Announce(ctx, view)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"0001"}, heard)
	assert.Equal(t, []string{"0001"}, ack.calls)

	n, err = a.Announce(ctx, view)
	require.NoError(t, err)
	assert.Zero(t, n, "stale snapshot must not re-announce")

	again := fresh
	again.StatusHistory = append(again.StatusHistory, entry(enums.OrderStatusInProgress, 20), entry(enums.OrderStatusReady, 30))
	n, err = a.Announce(ctx, BuildCallView([]orders.Order{again}, Limits{}))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAnnouncerRetriesFailedAcknowledgements(t *testing.T) {
	ack := &fakeAcknowledger{fail: map[string]error{"0001": errors.New("offline")}}
	a := newAnnouncer(t, ack, nil)
	view := BuildCallView([]orders.Order{order("0001", enums.OrderStatusReady)}, Limits{})

	_, err := a.Announce(context.Background(), view)
	require.Error(t, err)

	delete(ack.fail, "0001")
	n, err := a.Announce(context.Background(), view)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"0001", "0001"}, ack.calls)
}

func TestNewAnnouncerRequiresCollaborators(t *testing.T) {
	_, err := NewAnnouncer(nil, logger.New(logger.Options{}), nil)
	assert.Error(t, err)
	_, err = NewAnnouncer(&fakeAcknowledger{}, nil, nil)
	assert.Error(t, err)
}

type fakeBoards struct {
	board Board
	err   error
	calls int
}

func (f *fakeBoards) KitchenBoard(context.Context, orders.Filter) (Board, error) {
	f.calls++
	return f.board, f.err
}

func TestServerFlowFollowsAPI(t *testing.T) {
	src := &fakeBoards{err: errors.New("offline")}
	sf := NewServerFlow(src, orders.FullFlow(), nil)
	ctx := context.Background()

	assert.Equal(t, orders.FullFlow().Statuses(), sf.Flow(ctx).Statuses(), "fallback while the API is down")

	src.err = nil
	src.board = Board{Flow: orders.CompactFlow().Statuses()}
	assert.Equal(t, orders.CompactFlow().Statuses(), sf.Flow(ctx).Statuses())
	assert.Equal(t, orders.CompactFlow().Statuses(), sf.Flow(ctx).Statuses())
	assert.Equal(t, 2, src.calls, "resolved flow is cached")
}

func TestServerFlowIgnoresInvalidFlow(t *testing.T) {
	src := &fakeBoards{board: Board{Flow: []enums.OrderStatus{enums.OrderStatusReady}}}
	sf := NewServerFlow(src, orders.CompactFlow(), nil)

	assert.Equal(t, orders.CompactFlow().Statuses(), sf.Flow(context.Background()).Statuses())
	sf.Flow(context.Background())
	assert.Equal(t, 2, src.calls, "keeps asking until the API answers with a usable flow")
}
