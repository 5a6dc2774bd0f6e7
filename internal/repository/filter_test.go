package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoparts-tn/orders-api/internal/models"
)

func TestListFilterOffset(t *testing.T) {
	assert.Equal(t, 0, ListFilter{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, ListFilter{Page: 3, Limit: 10}.Offset())
	// Pages below 1 clamp to the first page.
	assert.Equal(t, 0, ListFilter{Page: 0, Limit: 10}.Offset())
	assert.Equal(t, 0, ListFilter{Page: -4, Limit: 10}.Offset())
}

func TestBuildWhereEmpty(t *testing.T) {
	where, args := ListFilter{}.buildWhere()
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildWhereStatusAllIsNoFilter(t *testing.T) {
	where, args := ListFilter{Status: "all"}.buildWhere()
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildWhereStatus(t *testing.T) {
	where, args := ListFilter{Status: models.OrderStatusShipped}.buildWhere()

	assert.Equal(t, "WHERE o.status = $1", where)
	require.Len(t, args, 1)
	assert.Equal(t, models.OrderStatusShipped, args[0])
}

func TestBuildWhereSearch(t *testing.T) {
	where, args := ListFilter{Search: "mahle"}.buildWhere()

	assert.Contains(t, where, "o.order_number ILIKE $1")
	assert.Contains(t, where, "o.customer_first_name ILIKE $1")
	assert.Contains(t, where, "o.customer_last_name ILIKE $1")
	assert.Contains(t, where, "o.customer_email ILIKE $1")
	assert.Contains(t, where, "EXISTS (SELECT 1 FROM order_items i WHERE i.order_id = o.id AND i.name ILIKE $1)")
	require.Len(t, args, 1)
	assert.Equal(t, "%mahle%", args[0])
}

func TestBuildWhereDateRange(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	where, args := ListFilter{StartDate: &start, EndDate: &end}.buildWhere()

	assert.Contains(t, where, "o.created_at >= $1")
	assert.Contains(t, where, "o.created_at <= $2")
	require.Len(t, args, 2)
	assert.Equal(t, start, args[0])
	assert.Equal(t, end, args[1])
}

func TestBuildWhereHalfRangeIgnored(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	where, args := ListFilter{StartDate: &start}.buildWhere()
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildWhereCombinedPlaceholderNumbering(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	where, args := ListFilter{
		Status:    models.OrderStatusPending,
		Search:    "brake",
		StartDate: &start,
		EndDate:   &end,
	}.buildWhere()

	assert.Contains(t, where, "o.status = $1")
	assert.Contains(t, where, "ILIKE $2")
	assert.Contains(t, where, "o.created_at >= $3")
	assert.Contains(t, where, "o.created_at <= $4")
	assert.Len(t, args, 4)
}
