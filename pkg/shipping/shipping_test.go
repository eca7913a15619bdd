package shipping_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/fba/pkg/buyer"
	"github.com/tournevent/fba/pkg/fulfillment"
	"github.com/tournevent/fba/pkg/fulfillment/network"
	"github.com/tournevent/fba/pkg/fulfillment/stub"
	"github.com/tournevent/fba/pkg/order"
	"github.com/tournevent/fba/pkg/shipping"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const mockDir = "testdata/mock"

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Name() string {
	return "mock"
}

func (m *mockClient) Fulfill(ctx context.Context, o fulfillment.OrderData, b fulfillment.BuyerData) (*fulfillment.Result, error) {
	args := m.Called(ctx, o, b)
	res, _ := args.Get(0).(*fulfillment.Result)
	return res, args.Error(1)
}

func newStubOrchestrator(dir string) *shipping.Orchestrator {
	client := stub.New(stub.Config{MockDir: dir}, fulfillment.NewMemoryStore(), nil, nil)
	return shipping.New(client, otelzap.New(zap.NewNop()), nil)
}

func testOrder(id int) *order.Order {
	return order.New(id, order.NewFileLoader(nil, mockDir))
}

func testBuyer(t *testing.T) buyer.Map {
	t.Helper()
	b, err := buyer.LoadFile(nil, mockDir+"/buyer.29664.json")
	require.NoError(t, err)
	return b
}

func TestShip_ReturnsTrackingNumber(t *testing.T) {
	svc := newStubOrchestrator(mockDir)

	tracking, err := svc.Ship(context.Background(), testOrder(16400), testBuyer(t))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tracking, fulfillment.TrackingPrefix))
	assert.Len(t, tracking, len(fulfillment.TrackingPrefix)+8)
}

func TestShip_SameOrderSameTracking(t *testing.T) {
	svc := newStubOrchestrator(mockDir)
	ctx := context.Background()

	first, err := svc.Ship(ctx, testOrder(16400), testBuyer(t))
	require.NoError(t, err)
	second, err := svc.Ship(ctx, testOrder(16400), testBuyer(t))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestShip_MissingEmail(t *testing.T) {
	svc := newStubOrchestrator(mockDir)
	b := testBuyer(t)
	b.Unset("email")

	_, err := svc.Ship(context.Background(), testOrder(16400), b)

	var shipErr *shipping.ShippingError
	require.ErrorAs(t, err, &shipErr)
	assert.Equal(t, "buyer data missing required fields: email", shipErr.Message)
}

func TestShip_MissingBuyerFieldsListedInOrder(t *testing.T) {
	tests := []struct {
		name    string
		unset   []string
		blank   []string
		missing string
	}{
		{name: "country code", unset: []string{"country_code"}, missing: "country_code"},
		{name: "address and email", unset: []string{"email", "address"}, missing: "address,email"},
		{name: "all", unset: []string{"email", "country_code", "address"}, missing: "country_code,address,email"},
		{name: "blank string counts as missing", blank: []string{"address"}, missing: "address"},
		{name: "country code and email", unset: []string{"email"}, blank: []string{"country_code"}, missing: "country_code,email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{}
			svc := shipping.New(client, nil, nil)
			b := testBuyer(t)
			for _, k := range tt.unset {
				b.Unset(k)
			}
			for _, k := range tt.blank {
				b.Set(k, "")
			}

			_, err := svc.Ship(context.Background(), testOrder(16400), b)

			var shipErr *shipping.ShippingError
			require.ErrorAs(t, err, &shipErr)
			assert.Equal(t, "buyer data missing required fields: "+tt.missing, shipErr.Error())
			client.AssertNotCalled(t, "Fulfill", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestShip_EmptyProducts(t *testing.T) {
	svc := newStubOrchestrator(mockDir)
	files := order.NewFileLoader(nil, mockDir)
	ord := order.New(16400, order.LoaderFunc(func(ctx context.Context, id int) (map[string]any, error) {
		data, err := files.LoadOrderData(ctx, id)
		if err != nil {
			return nil, err
		}
		data["products"] = []any{}
		return data, nil
	}))

	_, err := svc.Ship(context.Background(), ord, testBuyer(t))

	require.Error(t, err)
	assert.True(t, shipping.IsShippingError(err))
	assert.True(t, errors.Is(err, fulfillment.ErrMissingProducts))
	assert.Contains(t, err.Error(), "FBA call failed: ")
	assert.Contains(t, err.Error(), "missing products")
}

func TestShip_MockDirectoryMissing(t *testing.T) {
	for _, id := range []int{16400, 99999} {
		svc := newStubOrchestrator("testdata/mock_missing")
		b := buyer.Map{
			"country_code": "US",
			"address":      "123 Test St",
			"email":        "t@example.com",
		}
		ord := order.New(id, order.NewFileLoader(nil, mockDir))
		if id == 99999 {
			ord = order.New(id, order.LoaderFunc(func(ctx context.Context, id int) (map[string]any, error) {
				return map[string]any{"order_id": id, "products": []any{map[string]any{"sku": "A", "ammount": 1}}}, nil
			}))
		}

		_, err := svc.Ship(context.Background(), ord, b)

		var provErr *fulfillment.ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, fulfillment.CodeMockNotFound, provErr.Code)
		assert.True(t, errors.Is(err, fulfillment.ErrMockNotFound))
	}
}

func TestShip_EmptyOrderData(t *testing.T) {
	client := &mockClient{}
	svc := shipping.New(client, nil, nil)
	ord := order.New(42, order.NewFileLoader(nil, mockDir))

	_, err := svc.Ship(context.Background(), ord, testBuyer(t))

	var shipErr *shipping.ShippingError
	require.ErrorAs(t, err, &shipErr)
	assert.Equal(t, "order or buyer data is empty", shipErr.Message)
	client.AssertNotCalled(t, "Fulfill", mock.Anything, mock.Anything, mock.Anything)
}

func TestShip_LoadError(t *testing.T) {
	svc := shipping.New(&mockClient{}, nil, nil)
	loadErr := errors.New("connection refused")
	ord := order.New(1, order.LoaderFunc(func(ctx context.Context, id int) (map[string]any, error) {
		return nil, loadErr
	}))

	_, err := svc.Ship(context.Background(), ord, testBuyer(t))

	assert.True(t, shipping.IsShippingError(err))
	assert.ErrorIs(t, err, loadErr)
}

func TestShip_LoadsOnlyWhenEmpty(t *testing.T) {
	calls := 0
	files := order.NewFileLoader(nil, mockDir)
	ord := order.New(16400, order.LoaderFunc(func(ctx context.Context, id int) (map[string]any, error) {
		calls++
		return files.LoadOrderData(ctx, id)
	}))
	require.NoError(t, ord.Load(context.Background()))
	require.Equal(t, 1, calls)

	svc := newStubOrchestrator(mockDir)
	_, err := svc.Ship(context.Background(), ord, testBuyer(t))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestShip_TrackingNotFound(t *testing.T) {
	client := &mockClient{}
	client.On("Fulfill", mock.Anything, mock.Anything, mock.Anything).
		Return(&fulfillment.Result{Status: fulfillment.StatusSuccess, OrderID: "16400"}, nil)
	svc := shipping.New(client, nil, nil)

	_, err := svc.Ship(context.Background(), testOrder(16400), testBuyer(t))

	var notFound *shipping.TrackingNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "16400", notFound.OrderID)
	assert.Equal(t, "tracking not returned by provider", err.Error())
	assert.False(t, shipping.IsShippingError(err))
	client.AssertExpectations(t)
}

func TestShip_NilResultIsTrackingNotFound(t *testing.T) {
	client := &mockClient{}
	client.On("Fulfill", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	svc := shipping.New(client, nil, nil)

	_, err := svc.Ship(context.Background(), testOrder(16400), testBuyer(t))

	assert.True(t, shipping.IsTrackingNotFound(err))
}

func TestShip_ForeignClientErrorIsNormalized(t *testing.T) {
	client := &mockClient{}
	cause := errors.New("connection reset by peer")
	client.On("Fulfill", mock.Anything, mock.Anything, mock.Anything).Return(nil, cause)
	svc := shipping.New(client, nil, nil)

	_, err := svc.Ship(context.Background(), testOrder(16400), testBuyer(t))

	var shipErr *shipping.ShippingError
	require.ErrorAs(t, err, &shipErr)
	assert.True(t, errors.Is(err, fulfillment.ErrUnavailable))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, shipErr.Message, "connection reset by peer")
}

func TestShip_PassesNormalizedBuyer(t *testing.T) {
	client := &mockClient{}
	client.On("Fulfill", mock.Anything, mock.Anything, mock.MatchedBy(func(b fulfillment.BuyerData) bool {
		_, hasName := b["name"]
		return len(b) == len(fulfillment.BuyerKeys) && !hasName && b["country_code"] == "US"
	})).Return(&fulfillment.Result{Status: fulfillment.StatusSuccess, TrackingNumber: "AMZ-0000BEEF"}, nil)
	svc := shipping.New(client, nil, nil)

	tracking, err := svc.Ship(context.Background(), testOrder(16400), testBuyer(t))

	require.NoError(t, err)
	assert.Equal(t, "AMZ-0000BEEF", tracking)
	client.AssertExpectations(t)
}

func TestShip_NetworkClient(t *testing.T) {
	client := network.New(network.Config{BaseURL: "https://sellingpartnerapi-na.amazon.com"}, nil, nil)
	svc := shipping.New(client, nil, nil)

	tracking, err := svc.Ship(context.Background(), testOrder(16400), testBuyer(t))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tracking, fulfillment.TrackingPrefix))
}

func TestShip_LogsEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	client := stub.New(stub.Config{MockDir: mockDir}, nil, nil, nil)
	svc := shipping.New(client, otelzap.New(zap.New(core)), nil)

	tracking, err := svc.Ship(context.Background(), testOrder(16400), testBuyer(t))
	require.NoError(t, err)

	prepared := logs.FilterMessage("FBA ship request prepared").All()
	require.Len(t, prepared, 1)
	fields := prepared[0].ContextMap()
	assert.Equal(t, "16400", fields["order_id"])
	assert.EqualValues(t, 3, fields["products_count"])
	assert.Equal(t, "US", fields["country_code"])

	succeeded := logs.FilterMessage("FBA ship succeeded").All()
	require.Len(t, succeeded, 1)
	assert.Equal(t, tracking[:4], succeeded[0].ContextMap()["tracking_prefix"])
}

func TestShip_LogsProviderFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := shipping.New(stub.New(stub.Config{MockDir: "testdata/mock_missing"}, nil, nil, nil), otelzap.New(zap.New(core)), nil)

	_, err := svc.Ship(context.Background(), testOrder(16400), testBuyer(t))

	require.Error(t, err)
	failed := logs.FilterMessage("FBA call failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
}
