package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/autoparts-tn/orders-api/internal/models"
	"github.com/autoparts-tn/orders-api/internal/repository"
	"github.com/autoparts-tn/orders-api/internal/service"
)

// getAdminOrdersHandler lists orders for the back office with search,
// status and date-range filters.
func (s *Server) getAdminOrdersHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repository.ListFilter{
		Status: models.OrderStatus(query.Get("status")),
		Search: query.Get("search"),
		Page:   intParam(query.Get("page"), 1),
		Limit:  intParam(query.Get("limit"), 10),
	}

	// The range filter only applies when both bounds are present.
	startDate, startErr := parseDateParam(query.Get("startDate"))
	endDate, endErr := parseDateParam(query.Get("endDate"))
	if startErr == nil && endErr == nil && startDate != nil && endDate != nil {
		filter.StartDate = startDate
		filter.EndDate = endDate
	}

	result, err := s.orderService.ListOrders(r.Context(), filter)
	if err != nil {
		s.logger.Error("Failed to fetch admin orders", "error", err)
		s.respondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"orders": result.Orders,
		"pagination": map[string]interface{}{
			"page":       result.CurrentPage,
			"limit":      filter.Limit,
			"total":      result.Total,
			"totalPages": result.Pages,
		},
	})
}

// getAdminOrderHandler returns one order with its full history.
func (s *Server) getAdminOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	order, err := s.orderService.GetOrderByID(r.Context(), orderID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			s.respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		s.logger.Error("Failed to fetch order", "error", err, "orderID", orderID)
		s.respondWithError(w, http.StatusInternalServerError, "Failed to fetch order")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

// updateOrderStatusHandler moves an order through its lifecycle.
func (s *Server) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var body struct {
		Status models.OrderStatus `json:"status"`
		Notes  *string            `json:"notes,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if body.Status == "" {
		s.respondWithError(w, http.StatusBadRequest, "Status is required")
		return
	}
	if !body.Status.Valid() {
		s.respondWithError(w, http.StatusBadRequest, "Invalid status value")
		return
	}

	notes := body.Notes
	if notes == nil {
		n := fmt.Sprintf("Status updated to %s", body.Status)
		notes = &n
	}

	order, err := s.orderService.UpdateOrderStatus(r.Context(), &service.UpdateOrderStatusData{
		OrderID:   orderID,
		Status:    body.Status,
		Notes:     notes,
		CreatedBy: "admin",
	})
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			s.respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		s.logger.Error("Failed to update order", "error", err, "orderID", orderID)
		s.respondWithError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

// updatePaymentStatusHandler updates the payment side of an order.
func (s *Server) updatePaymentStatusHandler(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var body struct {
		PaymentStatus   models.PaymentStatus `json:"paymentStatus"`
		PaymentIntentID *string              `json:"paymentIntentId,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if body.PaymentStatus == "" {
		s.respondWithError(w, http.StatusBadRequest, "Payment status is required")
		return
	}
	if !body.PaymentStatus.Valid() {
		s.respondWithError(w, http.StatusBadRequest, "Invalid payment status value")
		return
	}

	order, err := s.orderService.UpdatePaymentStatus(r.Context(), orderID, body.PaymentStatus, body.PaymentIntentID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			s.respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		s.logger.Error("Failed to update payment status", "error", err, "orderID", orderID)
		s.respondWithError(w, http.StatusInternalServerError, "Failed to update payment status")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

// getStatsHandler returns the dashboard rollup.
func (s *Server) getStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.orderService.Stats(r.Context())
	if err != nil {
		s.logger.Error("Failed to compute order stats", "error", err)
		s.respondWithError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	s.respondWithJSON(w, http.StatusOK, stats)
}

// parseDateParam accepts RFC 3339 timestamps and bare dates.
func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
