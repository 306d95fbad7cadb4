package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDBQuery(t *testing.T) {
	m := New("test")

	m.RecordDBQuery(0.005)
	m.RecordDBQuery(0.010)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DBQueriesTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DBQueryDuration))
}

func TestSetProductsTotal(t *testing.T) {
	m := New("test")

	m.SetProductsTotal(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ProductsTotal))

	m.SetProductsTotal(2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProductsTotal))
}

func TestRecordOrder(t *testing.T) {
	m := New("test")

	m.RecordOrder(199.98)
	m.RecordOrder(50)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrdersTotal))
	assert.InDelta(t, 249.98, testutil.ToFloat64(m.OrderAmountTotal), 0.001)
}
