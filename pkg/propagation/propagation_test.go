package propagation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/example/weekmarket/pkg/models"
)

type fakeCatalog struct {
	products map[string]*models.Product
}

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, mongo.ErrNoDocuments
}

type fakeOrders struct {
	orders    []models.Order
	batches   [][]ItemsUpdate
	failBatch bool
}

func (f *fakeOrders) OrdersForWeek(_ context.Context, weekCode string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.WeekCode == weekCode {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) UpdateItemsBatch(_ context.Context, updates []ItemsUpdate) error {
	if f.failBatch {
		return errors.New("transaction aborted")
	}
	f.batches = append(f.batches, updates)
	// Mirror the write back so repeated Apply calls see updated state.
	for _, u := range updates {
		for i := range f.orders {
			if f.orders[i].ID == u.OrderID {
				f.orders[i].Items = u.Items
				f.orders[i].UpdatedAt = u.UpdatedAt
			}
		}
	}
	return nil
}

func price(v float64) *float64 { return &v }

func entry(productID string, newPrice *float64) *models.ChecklistEntry {
	return &models.ChecklistEntry{
		WeekCode:  "09-2025",
		ProductID: productID,
		NewPrice:  newPrice,
	}
}

func activeOrder(id string, items ...models.LineItem) models.Order {
	return models.Order{ID: id, WeekCode: "09-2025", Status: models.StatusOpen, Items: items}
}

func lineItem(productID string, qty int, p float64) models.LineItem {
	return models.LineItem{ID: productID, Name: "Product " + productID, Price: p, Quantity: qty, Supplier: "supplierX"}
}

func newTestEngine(catalog *fakeCatalog, orders *fakeOrders) *Engine {
	e := NewEngine(catalog, orders, zap.NewNop())
	e.now = func() time.Time { return time.Date(2025, time.February, 25, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestOverridePropagatesToActiveOrders(t *testing.T) {
	delivered := activeOrder("O3", lineItem("P1", 1, 10))
	delivered.DeliveryStatus = models.StatusDelivered

	orders := &fakeOrders{orders: []models.Order{
		activeOrder("O1", lineItem("P1", 3, 10)),
		activeOrder("O2", lineItem("P1", 2, 10), lineItem("P2", 1, 4)),
		delivered,
	}}
	engine := newTestEngine(&fakeCatalog{}, orders)

	err := engine.Apply(context.Background(), nil, entry("P1", price(15)))
	require.NoError(t, err)

	require.Len(t, orders.batches, 1)
	batch := orders.batches[0]
	require.Len(t, batch, 2)

	for _, u := range batch {
		assert.NotEqual(t, "O3", u.OrderID, "delivered order must not be staged")
		for _, it := range u.Items {
			if it.ID == "P1" {
				assert.Equal(t, 15.0, it.Price)
			} else {
				assert.Equal(t, 4.0, it.Price, "other items untouched")
			}
		}
	}

	// Delivered order remains as it was.
	assert.Equal(t, 10.0, orders.orders[2].Items[0].Price)
}

func TestUnchangedOverrideIsNoOp(t *testing.T) {
	orders := &fakeOrders{orders: []models.Order{activeOrder("O1", lineItem("P1", 3, 10))}}
	engine := newTestEngine(&fakeCatalog{}, orders)

	require.NoError(t, engine.Apply(context.Background(), nil, entry("P1", price(15))))
	require.Len(t, orders.batches, 1)

	// Redelivered identical event: same value on both sides.
	require.NoError(t, engine.Apply(context.Background(), entry("P1", price(15)), entry("P1", price(15))))
	assert.Len(t, orders.batches, 1, "second identical event must write nothing")
}

func TestClearedOverrideRevertsToCatalogPrice(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*models.Product{
		"P1": {ID: "P1", Name: "Product P1", Price: 8, Supplier: "supplierX"},
	}}
	orders := &fakeOrders{orders: []models.Order{activeOrder("O1", lineItem("P1", 3, 15))}}
	engine := newTestEngine(catalog, orders)

	err := engine.Apply(context.Background(), entry("P1", price(15)), entry("P1", nil))
	require.NoError(t, err)

	require.Len(t, orders.batches, 1)
	assert.Equal(t, 8.0, orders.batches[0][0].Items[0].Price)
}

func TestSetThenClearRoundTrip(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*models.Product{
		"P1": {ID: "P1", Price: 8},
	}}
	orders := &fakeOrders{orders: []models.Order{activeOrder("O1", lineItem("P1", 2, 8))}}
	engine := newTestEngine(catalog, orders)

	require.NoError(t, engine.Apply(context.Background(), nil, entry("P1", price(12.50))))
	assert.Equal(t, 12.50, orders.orders[0].Items[0].Price)

	require.NoError(t, engine.Apply(context.Background(), entry("P1", price(12.50)), entry("P1", nil)))
	assert.Equal(t, 8.0, orders.orders[0].Items[0].Price)
}

func TestClearWithoutPriorOverrideSkips(t *testing.T) {
	orders := &fakeOrders{orders: []models.Order{activeOrder("O1", lineItem("P1", 3, 10))}}
	engine := newTestEngine(&fakeCatalog{}, orders)

	// First edit of an unrelated field creates the entry with no override;
	// nothing may be written.
	prev := entry("P1", nil)
	curr := entry("P1", nil)
	curr.CollectedQuantity = 4

	require.NoError(t, engine.Apply(context.Background(), prev, curr))
	assert.Empty(t, orders.batches)

	require.NoError(t, engine.Apply(context.Background(), nil, curr))
	assert.Empty(t, orders.batches)
}

func TestRevertAbortsWhenProductMissing(t *testing.T) {
	orders := &fakeOrders{orders: []models.Order{activeOrder("O1", lineItem("P1", 3, 15))}}
	engine := newTestEngine(&fakeCatalog{}, orders)

	err := engine.Apply(context.Background(), entry("P1", price(15)), entry("P1", nil))
	require.NoError(t, err, "lookup miss is not fatal to the caller")
	assert.Empty(t, orders.batches)
}

func TestNoMatchingItemsMeansNoWrites(t *testing.T) {
	orders := &fakeOrders{orders: []models.Order{activeOrder("O1", lineItem("P2", 3, 10))}}
	engine := newTestEngine(&fakeCatalog{}, orders)

	require.NoError(t, engine.Apply(context.Background(), nil, entry("P1", price(15))))
	assert.Empty(t, orders.batches)
}

func TestMissingRequiredFieldsSkip(t *testing.T) {
	orders := &fakeOrders{orders: []models.Order{activeOrder("O1", lineItem("P1", 3, 10))}}
	engine := newTestEngine(&fakeCatalog{}, orders)

	noProduct := entry("", price(15))
	require.NoError(t, engine.Apply(context.Background(), nil, noProduct))

	noWeek := entry("P1", price(15))
	noWeek.WeekCode = ""
	require.NoError(t, engine.Apply(context.Background(), nil, noWeek))

	require.NoError(t, engine.Apply(context.Background(), nil, nil))

	assert.Empty(t, orders.batches)
}

func TestBatchFailureIsSurfaced(t *testing.T) {
	orders := &fakeOrders{
		orders:    []models.Order{activeOrder("O1", lineItem("P1", 3, 10))},
		failBatch: true,
	}
	engine := newTestEngine(&fakeCatalog{}, orders)

	err := engine.Apply(context.Background(), nil, entry("P1", price(15)))
	assert.Error(t, err, "a failed batch must reach the caller for retry")
}

func TestPriceChanged(t *testing.T) {
	tests := []struct {
		name     string
		previous *models.ChecklistEntry
		current  *models.ChecklistEntry
		want     bool
	}{
		{"both absent", entry("P1", nil), entry("P1", nil), false},
		{"created without override", nil, entry("P1", nil), false},
		{"same value", entry("P1", price(15)), entry("P1", price(15)), false},
		{"different value", entry("P1", price(15)), entry("P1", price(16)), true},
		{"newly set", nil, entry("P1", price(15)), true},
		{"cleared", entry("P1", price(15)), entry("P1", nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriceChanged(tt.previous, tt.current))
		})
	}
}
