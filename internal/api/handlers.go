package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/autoparts-tn/orders-api/internal/models"
	"github.com/autoparts-tn/orders-api/internal/repository"
	"github.com/autoparts-tn/orders-api/internal/service"
)

// OrderService is the order surface the HTTP handlers depend on.
type OrderService interface {
	CreateOrder(ctx context.Context, data *service.CreateOrderData) (*models.Order, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	GetUserOrders(ctx context.Context, userID string) ([]*models.Order, error)
	GetAllOrders(ctx context.Context, page, limit int, status models.OrderStatus) (*service.OrderPage, error)
	ListOrders(ctx context.Context, filter repository.ListFilter) (*service.OrderPage, error)
	UpdateOrderStatus(ctx context.Context, data *service.UpdateOrderStatusData) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID string, paymentStatus models.PaymentStatus, paymentIntentID *string) (*models.Order, error)
	Stats(ctx context.Context) (*models.OrderStats, error)
}

// Health represents the health check response
type Health struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// healthCheckHandler handles the health check endpoint
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, Health{
		Status:    "ok",
		Version:   "0.1.0",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// createOrderHandler handles checkout submissions.
func (s *Server) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	var data service.CreateOrderData
	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(&data); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if data.CustomerEmail == "" || data.CustomerFirstName == "" || data.CustomerLastName == "" {
		s.respondWithError(w, http.StatusBadRequest, "Missing required customer information")
		return
	}

	if data.ShippingAddress == nil || len(data.Items) == 0 {
		s.respondWithError(w, http.StatusBadRequest, "Missing shipping address or order items")
		return
	}

	order, err := s.orderService.CreateOrder(r.Context(), &data)
	if err != nil {
		if stderrors.Is(err, repository.ErrDuplicateOrderNumber) {
			s.respondWithError(w, http.StatusConflict, "Order number conflict")
			return
		}
		s.logger.Error("Failed to create order", "error", err)
		s.respondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":     "Failed to create order",
			"details":   err.Error(),
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}

	s.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"order": map[string]interface{}{
			"id":          order.ID,
			"orderNumber": order.OrderNumber,
			"status":      order.Status,
			"totalAmount": order.TotalAmount,
			"currency":    order.Currency,
		},
		"message": "Order created successfully",
	})
}

// getOrdersHandler returns one user's orders when userId is given,
// otherwise a page of all orders.
func (s *Server) getOrdersHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if userID := query.Get("userId"); userID != "" {
		orders, err := s.orderService.GetUserOrders(r.Context(), userID)
		if err != nil {
			s.logger.Error("Failed to fetch user orders", "error", err, "userID", userID)
			s.respondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
			return
		}

		s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"orders":  orders,
		})
		return
	}

	page := intParam(query.Get("page"), 1)
	limit := intParam(query.Get("limit"), 20)
	status := models.OrderStatus(query.Get("status"))

	result, err := s.orderService.GetAllOrders(r.Context(), page, limit, status)
	if err != nil {
		s.logger.Error("Failed to fetch orders", "error", err)
		s.respondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"orders":      result.Orders,
		"total":       result.Total,
		"pages":       result.Pages,
		"currentPage": result.CurrentPage,
	})
}

// getOrderByNumberHandler resolves an order by its human-readable number,
// the lookup customers get on their confirmation page.
func (s *Server) getOrderByNumberHandler(w http.ResponseWriter, r *http.Request) {
	orderNumber := mux.Vars(r)["orderNumber"]

	order, err := s.orderService.GetOrderByNumber(r.Context(), orderNumber)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			s.respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		s.logger.Error("Failed to fetch order", "error", err, "orderNumber", orderNumber)
		s.respondWithError(w, http.StatusInternalServerError, "Failed to fetch order")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// respondWithError sends a JSON response with an error message
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response
func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
