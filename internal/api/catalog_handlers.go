package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/autoparts-tn/orders-api/internal/clients"
)

// CatalogService is the parts-catalog surface the handlers depend on.
type CatalogService interface {
	GetManufacturers(ctx context.Context) ([]clients.Manufacturer, error)
	GetModels(ctx context.Context, manufacturerID int64) ([]clients.Model, error)
	GetVehicles(ctx context.Context, manufacturerID, modelID int64) ([]clients.Vehicle, error)
	GetCategories(ctx context.Context, manufacturerID, vehicleID int64) ([]clients.Category, error)
	GetArticles(ctx context.Context, manufacturerID, vehicleID, productGroupID int64) ([]clients.Article, error)
	SearchArticles(ctx context.Context, articleNo string) ([]clients.Article, error)
}

// catalogResponse mirrors the storefront's lookup contract: data is always
// present, error only on failure, so the vehicle selector can degrade to
// an empty list.
type catalogResponse struct {
	Data  interface{} `json:"data"`
	Error string      `json:"error,omitempty"`
}

func (s *Server) respondCatalog(w http.ResponseWriter, data interface{}, err error) {
	if err != nil {
		s.logger.Error("Catalog lookup failed", "error", err)
		s.respondWithJSON(w, http.StatusOK, catalogResponse{
			Data:  []interface{}{},
			Error: err.Error(),
		})
		return
	}
	s.respondWithJSON(w, http.StatusOK, catalogResponse{Data: data})
}

func (s *Server) getManufacturersHandler(w http.ResponseWriter, r *http.Request) {
	manufacturers, err := s.catalog.GetManufacturers(r.Context())
	s.respondCatalog(w, manufacturers, err)
}

func (s *Server) getModelsHandler(w http.ResponseWriter, r *http.Request) {
	manufacturerID, ok := s.int64Param(w, r, "manufacturerId")
	if !ok {
		return
	}

	models, err := s.catalog.GetModels(r.Context(), manufacturerID)
	s.respondCatalog(w, models, err)
}

func (s *Server) getVehiclesHandler(w http.ResponseWriter, r *http.Request) {
	manufacturerID, ok := s.int64Param(w, r, "manufacturerId")
	if !ok {
		return
	}
	modelID, ok := s.int64Param(w, r, "modelId")
	if !ok {
		return
	}

	vehicles, err := s.catalog.GetVehicles(r.Context(), manufacturerID, modelID)
	s.respondCatalog(w, vehicles, err)
}

func (s *Server) getCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	manufacturerID, ok := s.int64Param(w, r, "manufacturerId")
	if !ok {
		return
	}
	vehicleID, ok := s.int64Param(w, r, "vehicleId")
	if !ok {
		return
	}

	categories, err := s.catalog.GetCategories(r.Context(), manufacturerID, vehicleID)
	s.respondCatalog(w, categories, err)
}

func (s *Server) getArticlesHandler(w http.ResponseWriter, r *http.Request) {
	// An article-number search takes precedence over the drill-down lookup.
	if articleNo := r.URL.Query().Get("articleNo"); articleNo != "" {
		articles, err := s.catalog.SearchArticles(r.Context(), articleNo)
		s.respondCatalog(w, articles, err)
		return
	}

	manufacturerID, ok := s.int64Param(w, r, "manufacturerId")
	if !ok {
		return
	}
	vehicleID, ok := s.int64Param(w, r, "vehicleId")
	if !ok {
		return
	}
	productGroupID, ok := s.int64Param(w, r, "productGroupId")
	if !ok {
		return
	}

	articles, err := s.catalog.GetArticles(r.Context(), manufacturerID, vehicleID, productGroupID)
	s.respondCatalog(w, articles, err)
}

// int64Param reads a required numeric query parameter, answering 400 when
// it is absent or malformed.
func (s *Server) int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		s.respondWithError(w, http.StatusBadRequest, name+" is required")
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, name+" must be a number")
		return 0, false
	}
	return v, true
}
