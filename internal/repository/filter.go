package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/autoparts-tn/orders-api/internal/models"
)

// ListFilter narrows the admin order listing. Zero values mean "no filter".
type ListFilter struct {
	Status    models.OrderStatus
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// Offset converts the 1-based page to a row offset.
func (f ListFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit
}

// buildWhere renders the filter as a WHERE clause over orders aliased "o",
// with positional args. Search matches order number, customer name/email or
// any item name, case-insensitively. The date range bounds created_at
// inclusively.
func (f ListFilter) buildWhere() (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.Status != "" && f.Status != "all" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("o.status = $%d", len(args)))
	}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(o.order_number ILIKE $%d OR o.customer_first_name ILIKE $%d OR o.customer_last_name ILIKE $%d OR o.customer_email ILIKE $%d OR EXISTS (SELECT 1 FROM order_items i WHERE i.order_id = o.id AND i.name ILIKE $%d))",
			n, n, n, n, n))
	}

	if f.StartDate != nil && f.EndDate != nil {
		args = append(args, *f.StartDate)
		conds = append(conds, fmt.Sprintf("o.created_at >= $%d", len(args)))
		args = append(args, *f.EndDate)
		conds = append(conds, fmt.Sprintf("o.created_at <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}
