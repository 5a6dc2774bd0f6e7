package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/autoparts-tn/orders-api/internal/models"
	"github.com/autoparts-tn/orders-api/internal/repository"
	"github.com/autoparts-tn/orders-api/pkg/logger"
)

// CreateOrderData is the pre-validated checkout payload. The HTTP boundary
// owns required-field validation; the service assumes it and persists.
type CreateOrderData struct {
	UserID            *string                 `json:"userId,omitempty"`
	CustomerEmail     string                  `json:"customerEmail"`
	CustomerFirstName string                  `json:"customerFirstName"`
	CustomerLastName  string                  `json:"customerLastName"`
	CustomerPhone     *string                 `json:"customerPhone,omitempty"`
	ShippingAddress   *models.AddressInput    `json:"shippingAddress"`
	BillingAddress    *models.AddressInput    `json:"billingAddress,omitempty"`
	Items             []models.OrderItemInput `json:"orderItems"`
	Subtotal          float64                 `json:"subtotal"`
	ShippingCost      float64                 `json:"shippingCost"`
	TaxAmount         float64                 `json:"taxAmount"`
	TotalAmount       float64                 `json:"totalAmount"`
	Currency          string                  `json:"currency,omitempty"`
	PaymentMethod     *string                 `json:"paymentMethod,omitempty"`
	Notes             *string                 `json:"notes,omitempty"`
	Source            models.OrderSource      `json:"source,omitempty"`
}

// UpdateOrderStatusData describes a status transition request.
type UpdateOrderStatusData struct {
	OrderID   string
	Status    models.OrderStatus
	Notes     *string
	CreatedBy string
}

// OrderPage is one page of an order listing.
type OrderPage struct {
	Orders      []*models.Order `json:"orders"`
	Total       int             `json:"total"`
	Pages       int             `json:"pages"`
	CurrentPage int             `json:"currentPage"`
}

// OrderService exposes the order lifecycle operations and owns their
// transaction boundaries: every compound write (order creation, status
// transition, payment update) commits atomically together with its outbox
// row.
type OrderService struct {
	orderRepo   *repository.OrderRepository
	addressRepo *repository.AddressRepository
	outboxRepo  *repository.OutboxRepository
	logger      logger.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo *repository.OrderRepository,
	addressRepo *repository.AddressRepository,
	outboxRepo *repository.OutboxRepository,
	logger logger.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		addressRepo: addressRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

// orderAggregate holds the rows a single checkout produces.
type orderAggregate struct {
	order    *models.Order
	shipping *models.Address
	// billing is nil when the shipping address doubles as billing.
	billing *models.Address
	items   []*models.OrderItem
	history *models.OrderStatusHistory
}

// buildAggregate assembles the rows for a new order without touching the
// database. Billing falls back to the shipping address id when no distinct
// billing address is supplied, so BillingAddressID is never empty.
func buildAggregate(data *CreateOrderData, now time.Time) *orderAggregate {
	shipping := models.NewAddress(models.AddressTypeShipping, data.UserID, *data.ShippingAddress)

	var billing *models.Address
	billingID := shipping.ID
	if data.BillingAddress != nil {
		billing = models.NewAddress(models.AddressTypeBilling, data.UserID, *data.BillingAddress)
		billingID = billing.ID
	}

	currency := data.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}

	source := data.Source
	if source == "" {
		source = models.OrderSourceWebsite
	}

	order := &models.Order{
		ID:                models.GenerateID("ord"),
		OrderNumber:       models.GenerateOrderNumber(now),
		UserID:            data.UserID,
		CustomerEmail:     data.CustomerEmail,
		CustomerFirstName: data.CustomerFirstName,
		CustomerLastName:  data.CustomerLastName,
		CustomerPhone:     data.CustomerPhone,
		ShippingAddressID: shipping.ID,
		BillingAddressID:  billingID,
		Subtotal:          data.Subtotal,
		ShippingCost:      data.ShippingCost,
		TaxAmount:         data.TaxAmount,
		TotalAmount:       data.TotalAmount,
		Currency:          currency,
		Status:            models.OrderStatusPending,
		PaymentStatus:     models.PaymentStatusPending,
		PaymentMethod:     data.PaymentMethod,
		Notes:             data.Notes,
		Source:            source,
		CreatedAt:         now,
		UpdatedAt:         now,
		PlacedAt:          &now,
	}

	items := make([]*models.OrderItem, 0, len(data.Items))
	for _, in := range data.Items {
		items = append(items, models.NewOrderItem(order.ID, in))
	}

	createdBy := "guest"
	if data.UserID != nil && *data.UserID != "" {
		createdBy = *data.UserID
	}
	notes := "Order created"
	history := models.NewStatusHistory(order.ID, models.OrderStatusPending, &notes, createdBy)

	return &orderAggregate{
		order:    order,
		shipping: shipping,
		billing:  billing,
		items:    items,
		history:  history,
	}
}

// CreateOrder persists a new order, its addresses, items, initial PENDING
// history entry and an order_created outbox row in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, data *CreateOrderData) (*models.Order, error) {
	agg := buildAggregate(data, models.Now())

	outboxMsg, err := models.NewOrderCreatedEvent(agg.order)
	if err != nil {
		s.logger.Error("Failed to create outbox message", "error", err)
		return nil, fmt.Errorf("failed to create outbox message: %w", err)
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	if err = s.addressRepo.CreateInTx(tx, agg.shipping); err != nil {
		return nil, err
	}
	if agg.billing != nil {
		if err = s.addressRepo.CreateInTx(tx, agg.billing); err != nil {
			return nil, err
		}
	}

	if err = s.orderRepo.CreateInTx(tx, agg.order); err != nil {
		return nil, err
	}
	if err = s.orderRepo.CreateItemsInTx(tx, agg.items); err != nil {
		return nil, err
	}
	if err = s.orderRepo.AppendHistoryInTx(tx, agg.history); err != nil {
		return nil, err
	}

	if err = s.outboxRepo.CreateInTx(tx, outboxMsg); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	agg.order.ShippingAddress = agg.shipping
	if agg.billing != nil {
		agg.order.BillingAddress = agg.billing
	} else {
		agg.order.BillingAddress = agg.shipping
	}
	agg.order.Items = agg.items
	agg.order.History = []*models.OrderStatusHistory{agg.history}

	s.logger.Info("Order created",
		"orderID", agg.order.ID,
		"orderNumber", agg.order.OrderNumber,
		"items", len(agg.items),
		"outboxID", outboxMsg.ID)

	return agg.order, nil
}

// GetOrderByID fetches an order with addresses, items and full history.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// GetOrderByNumber fetches an order by its human-readable number.
func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return s.orderRepo.GetByNumber(ctx, orderNumber)
}

// GetUserOrders returns a user's orders newest first, each with items and
// its latest history entry.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// GetAllOrders returns an admin page of orders with an optional exact
// status filter.
func (s *OrderService) GetAllOrders(ctx context.Context, page, limit int, status models.OrderStatus) (*OrderPage, error) {
	return s.ListOrders(ctx, repository.ListFilter{
		Status: status,
		Page:   page,
		Limit:  limit,
	})
}

// ListOrders returns a page of orders matching the filter.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.ListFilter) (*OrderPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &OrderPage{
		Orders:      orders,
		Total:       total,
		Pages:       int(math.Ceil(float64(total) / float64(filter.Limit))),
		CurrentPage: filter.Page,
	}, nil
}

// UpdateOrderStatus sets the order's status, stamps the matching lifecycle
// timestamp, appends a history entry and writes an outbox row, all in one
// transaction. Transition legality is not enforced; any status from the
// enum is accepted. Concurrent updates race last-write-wins on the order
// row while both history entries persist.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, data *UpdateOrderStatusData) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, data.OrderID)
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status
	order.ApplyStatus(data.Status, models.Now())

	createdBy := data.CreatedBy
	if createdBy == "" {
		createdBy = "admin"
	}
	entry := models.NewStatusHistory(order.ID, data.Status, data.Notes, createdBy)

	outboxMsg, err := models.NewOrderStatusChangedEvent(order, oldStatus)
	if err != nil {
		s.logger.Error("Failed to create outbox message", "error", err)
		return nil, fmt.Errorf("failed to create outbox message: %w", err)
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	if err = s.orderRepo.UpdateStatusInTx(tx, order); err != nil {
		return nil, err
	}
	if err = s.orderRepo.AppendHistoryInTx(tx, entry); err != nil {
		return nil, err
	}
	if err = s.outboxRepo.CreateInTx(tx, outboxMsg); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Order status updated",
		"orderID", order.ID,
		"oldStatus", oldStatus,
		"newStatus", data.Status,
		"outboxID", outboxMsg.ID)

	// Reload so the caller sees the full trail including the new entry.
	return s.orderRepo.GetByID(ctx, order.ID)
}

// UpdatePaymentStatus updates the payment side of an order. Unlike the
// source storefront it also appends a history entry and emits an event,
// keeping the audit trail symmetric with order-status changes.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID string, paymentStatus models.PaymentStatus, paymentIntentID *string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	oldStatus := order.PaymentStatus
	order.PaymentStatus = paymentStatus
	if paymentIntentID != nil {
		order.PaymentIntentID = paymentIntentID
	}
	order.UpdatedAt = models.Now()

	notes := fmt.Sprintf("Payment status updated to %s", paymentStatus)
	entry := models.NewStatusHistory(order.ID, order.Status, &notes, "system")

	outboxMsg, err := models.NewPaymentStatusChangedEvent(order, oldStatus)
	if err != nil {
		s.logger.Error("Failed to create outbox message", "error", err)
		return nil, fmt.Errorf("failed to create outbox message: %w", err)
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	if err = s.orderRepo.UpdatePaymentInTx(tx, order); err != nil {
		return nil, err
	}
	if err = s.orderRepo.AppendHistoryInTx(tx, entry); err != nil {
		return nil, err
	}
	if err = s.outboxRepo.CreateInTx(tx, outboxMsg); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Payment status updated",
		"orderID", order.ID,
		"oldStatus", oldStatus,
		"newStatus", paymentStatus,
		"outboxID", outboxMsg.ID)

	return order, nil
}

// Stats computes the admin dashboard rollup.
func (s *OrderService) Stats(ctx context.Context) (*models.OrderStats, error) {
	return s.orderRepo.Stats(ctx)
}
