package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/weekmarket/pkg/models"
)

func order(company string, items ...models.LineItem) models.Order {
	return models.Order{
		CompanyName: company,
		WeekCode:    "09-2025",
		Status:      models.StatusOpen,
		Items:       items,
	}
}

func item(id, supplier string, qty int) models.LineItem {
	return models.LineItem{ID: id, Name: "Product " + id, Price: 10, Quantity: qty, Supplier: supplier}
}

func TestQuantitiesSumAcrossOrders(t *testing.T) {
	orders := []models.Order{
		order("Acme", item("P1", "supplierX", 3)),
		order("Beta", item("P1", "supplierX", 2)),
	}

	result := Orders(orders)

	require.Contains(t, result, "supplierX")
	require.Contains(t, result["supplierX"], "P1")
	assert.Equal(t, 5, result["supplierX"]["P1"].Quantity)
}

func TestOrderIndependence(t *testing.T) {
	a := order("Acme", item("P1", "supplierX", 1), item("P2", "supplierY", 4))
	b := order("Beta", item("P1", "supplierX", 2))
	c := order("Gamma", item("P1", "supplierX", 2), item("P2", "supplierY", 1))

	forward := Orders([]models.Order{a, b, c})
	backward := Orders([]models.Order{c, b, a})

	for supplier, byProduct := range forward {
		for id, entry := range byProduct {
			assert.Equal(t, entry.Quantity, backward[supplier][id].Quantity,
				"%s/%s", supplier, id)
		}
	}
	assert.Equal(t, 5, forward["supplierX"]["P1"].Quantity)
	assert.Equal(t, 5, forward["supplierY"]["P2"].Quantity)
}

func TestDeliveredOrdersIncluded(t *testing.T) {
	delivered := order("Acme", item("P1", "supplierX", 3))
	delivered.DeliveryStatus = models.StatusDelivered

	result := Orders([]models.Order{delivered, order("Beta", item("P1", "supplierX", 2))})

	assert.Equal(t, 5, result["supplierX"]["P1"].Quantity)
}

func TestMissingSupplierGroupsUnderUnknown(t *testing.T) {
	result := Orders([]models.Order{order("Acme", item("P1", "", 2))})

	require.Contains(t, result, UnknownSupplier)
	assert.Equal(t, 2, result[UnknownSupplier]["P1"].Quantity)
}

func TestNegativeQuantityContributesNothing(t *testing.T) {
	orders := []models.Order{
		order("Acme", item("P1", "supplierX", -4)),
		order("Beta", item("P1", "supplierX", 3)),
	}

	result := Orders(orders)
	assert.Equal(t, 3, result["supplierX"]["P1"].Quantity)
}

func TestFirstSnapshotWins(t *testing.T) {
	first := item("P1", "supplierX", 1)
	first.Price = 10
	second := item("P1", "supplierX", 1)
	second.Price = 99

	result := Orders([]models.Order{order("Acme", first), order("Beta", second)})

	assert.Equal(t, 10.0, result["supplierX"]["P1"].Item.Price)
	assert.Equal(t, 2, result["supplierX"]["P1"].Quantity)
}

func TestCommentsAccumulateWithAttribution(t *testing.T) {
	withComment := item("P1", "supplierX", 1)
	withComment.Comment = "ripe ones please"
	other := item("P1", "supplierX", 2)
	other.Comment = "  half crates  "
	silent := item("P1", "supplierX", 1)

	byEmail := order("", withComment)
	byEmail.Email = "shop@example.com"

	result := Orders([]models.Order{
		byEmail,
		order("Beta", other),
		order("Gamma", silent),
	})

	comments := result["supplierX"]["P1"].Comments
	require.Len(t, comments, 2)
	assert.Equal(t, Comment{Company: "shop@example.com", Comment: "ripe ones please"}, comments[0])
	assert.Equal(t, Comment{Company: "Beta", Comment: "half crates"}, comments[1])
}

func TestAnonymousOrderCommentAttribution(t *testing.T) {
	it := item("P1", "supplierX", 1)
	it.Comment = "no substitutions"
	anon := order("", it)

	result := Orders([]models.Order{anon})

	comments := result["supplierX"]["P1"].Comments
	require.Len(t, comments, 1)
	assert.Equal(t, UnknownSupplier, comments[0].Company)
}

func TestEmptyInput(t *testing.T) {
	assert.Empty(t, Orders(nil))
	assert.Empty(t, Orders([]models.Order{{WeekCode: "09-2025"}}))
}

func TestResultHelpers(t *testing.T) {
	result := Orders([]models.Order{
		order("Acme", item("P2", "supplierY", 1), item("P1", "supplierX", 1)),
	})

	assert.Equal(t, []string{"supplierX", "supplierY"}, result.Suppliers())
	assert.Equal(t, []string{"P1", "P2"}, result.ProductIDs())
}

func TestEntriesStableOrder(t *testing.T) {
	result := Orders([]models.Order{
		order("Acme", item("P3", "supplierX", 1), item("P1", "supplierX", 2)),
		order("Beta", item("P2", "supplierX", 4)),
	})

	entries := result.Entries("supplierX")
	require.Len(t, entries, 3)

	ids := []string{entries[0].Item.ID, entries[1].Item.ID, entries[2].Item.ID}
	assert.Equal(t, []string{"P1", "P2", "P3"}, ids)

	// Rebuilding from the same orders yields the same sequence.
	again := Orders([]models.Order{
		order("Beta", item("P2", "supplierX", 4)),
		order("Acme", item("P3", "supplierX", 1), item("P1", "supplierX", 2)),
	}).Entries("supplierX")
	for i := range entries {
		assert.Equal(t, entries[i].Item.ID, again[i].Item.ID)
	}

	assert.Empty(t, result.Entries("nobody"))
}
