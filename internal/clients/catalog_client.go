package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/autoparts-tn/orders-api/internal/config"
	"github.com/autoparts-tn/orders-api/pkg/circuitbreaker"
	"github.com/autoparts-tn/orders-api/pkg/errors"
	"github.com/autoparts-tn/orders-api/pkg/logger"
	"github.com/autoparts-tn/orders-api/pkg/retry"
)

// Default TecDoc lookup scope: passenger cars, French, Tunisia.
const (
	defaultTypeID    = 1
	defaultLangID    = 6
	defaultCountryID = 6
)

// CatalogClient calls the parts-catalog actor that fronts the TecDoc
// database. Every lookup is a synchronous actor run returning its dataset
// items. Calls are retried on transient failure and guarded by a circuit
// breaker so a stuck actor does not pile up long-running requests.
type CatalogClient struct {
	baseURL     string
	actorID     string
	token       string
	timeout     time.Duration
	httpClient  *http.Client
	logger      logger.Logger
	retryConfig *retry.Config
	breaker     *circuitbreaker.Breaker
}

// actorInput is the request body of a catalog actor run. selectPageType
// picks the lookup; the remaining fields narrow it.
type actorInput struct {
	SelectPageType string `json:"selectPageType"`
	TypeID         int    `json:"typeId,omitempty"`
	LangID         int    `json:"langId,omitempty"`
	CountryID      int    `json:"countryId,omitempty"`
	ManufacturerID int64  `json:"manufacturerId,omitempty"`
	ModelID        int64  `json:"modelId,omitempty"`
	VehicleID      int64  `json:"vehicleId,omitempty"`
	ProductGroupID int64  `json:"productGroupId,omitempty"`
	ArticleID      int64  `json:"articleId,omitempty"`
	ArticleNo      string `json:"articleNo,omitempty"`
	SupplierID     int64  `json:"supplierId,omitempty"`
}

// NewCatalogClient creates a new CatalogClient instance.
func NewCatalogClient(cfg config.CatalogConfig, logger logger.Logger) *CatalogClient {
	httpClient := &http.Client{
		// Synchronous actor runs can take most of the actor timeout.
		Timeout: cfg.Timeout + 10*time.Second,
	}

	retryConfig := &retry.Config{
		MaxAttempts: 3,
		BackoffStrategy: &retry.ExponentialBackoff{
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      1.5,
			JitterFactor:    0.2,
		},
		Logger: logger,
		RetryableErrors: []error{
			errors.ErrTimeout,
			errors.ErrTemporaryFailure,
			errors.ErrServiceUnavailable,
		},
	}

	breaker := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMaxCalls: 2,
	})

	return &CatalogClient{
		baseURL:     cfg.BaseURL,
		actorID:     cfg.ActorID,
		token:       cfg.Token,
		timeout:     cfg.Timeout,
		httpClient:  httpClient,
		logger:      logger,
		retryConfig: retryConfig,
		breaker:     breaker,
	}
}

// runActor executes one synchronous actor run and returns the raw dataset
// body. The token travels only in the query string and is never logged.
func (c *CatalogClient) runActor(ctx context.Context, input actorInput) ([]byte, error) {
	if !c.breaker.Allow() {
		return nil, errors.NewTemporaryError("catalog service circuit open")
	}

	url := fmt.Sprintf("%s/%s/run-sync-get-dataset-items?token=%s&timeout=%d",
		c.baseURL, c.actorID, neturl.QueryEscape(c.token), int(c.timeout.Seconds()))

	var body []byte

	retryFunc := func() error {
		reqBody, err := json.Marshal(input)
		if err != nil {
			return errors.NewInternalError(fmt.Sprintf("failed to marshal request: %v", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
		if err != nil {
			return errors.NewInternalError(fmt.Sprintf("failed to create request: %v", err))
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return errors.NewTimeoutError("catalog request timed out")
			}
			return errors.NewTemporaryError(fmt.Sprintf("failed to send request: %v", err))
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return errors.NewInternalError(fmt.Sprintf("failed to read response body: %v", err))
		}

		if resp.StatusCode >= 400 {
			if resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout {
				return errors.NewTimeoutError("catalog request timed out")
			}

			if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusInternalServerError {
				return errors.NewTemporaryError(fmt.Sprintf("catalog service error: %d", resp.StatusCode))
			}

			return errors.New(
				errors.ErrInternal,
				fmt.Sprintf("catalog service returned error: %d", resp.StatusCode),
				resp.StatusCode,
				false,
			)
		}

		return nil
	}

	if err := retry.Do(ctx, retryFunc, c.retryConfig); err != nil {
		c.breaker.Failure()
		c.logger.Error("Catalog actor run failed after retries",
			"error", err,
			"selectPageType", input.SelectPageType)
		return nil, err
	}

	c.breaker.Success()
	return body, nil
}

// GetManufacturers lists the vehicle manufacturers for the default scope.
func (c *CatalogClient) GetManufacturers(ctx context.Context) ([]Manufacturer, error) {
	body, err := c.runActor(ctx, actorInput{
		SelectPageType: "get-manufacturers-by-type-id-lang-id-country-id",
		TypeID:         defaultTypeID,
		LangID:         defaultLangID,
		CountryID:      defaultCountryID,
	})
	if err != nil {
		return nil, err
	}

	var manufacturers []Manufacturer
	if err := decodeItemField(body, "manufacturers", &manufacturers); err != nil {
		return nil, errors.NewInternalError(fmt.Sprintf("failed to parse manufacturers: %v", err))
	}
	return manufacturers, nil
}

// GetModels lists a manufacturer's models.
func (c *CatalogClient) GetModels(ctx context.Context, manufacturerID int64) ([]Model, error) {
	body, err := c.runActor(ctx, actorInput{
		SelectPageType: "get-models",
		TypeID:         defaultTypeID,
		LangID:         defaultLangID,
		CountryID:      defaultCountryID,
		ManufacturerID: manufacturerID,
	})
	if err != nil {
		return nil, err
	}

	var models []Model
	if err := decodeItemField(body, "models", &models); err != nil {
		return nil, errors.NewInternalError(fmt.Sprintf("failed to parse models: %v", err))
	}
	return models, nil
}

// GetVehicles lists the engine variants of a model. The actor publishes
// them under the modelTypes key.
func (c *CatalogClient) GetVehicles(ctx context.Context, manufacturerID, modelID int64) ([]Vehicle, error) {
	body, err := c.runActor(ctx, actorInput{
		SelectPageType: "get-all-vehicle-engine-types",
		TypeID:         defaultTypeID,
		LangID:         defaultLangID,
		CountryID:      defaultCountryID,
		ManufacturerID: manufacturerID,
		ModelID:        modelID,
	})
	if err != nil {
		return nil, err
	}

	var vehicles []Vehicle
	if err := decodeItemField(body, "modelTypes", &vehicles); err != nil {
		return nil, errors.NewInternalError(fmt.Sprintf("failed to parse vehicles: %v", err))
	}
	return vehicles, nil
}

// GetCategories returns the flat part-category rows for a vehicle. The
// actor exposes three category page types with different shapes; v1 is
// tried first, then v2 and v3 with their trees flattened to the v1 rows.
func (c *CatalogClient) GetCategories(ctx context.Context, manufacturerID, vehicleID int64) ([]Category, error) {
	for _, version := range []string{"v1", "v2", "v3"} {
		body, err := c.runActor(ctx, actorInput{
			SelectPageType: "get-categories-" + version,
			TypeID:         defaultTypeID,
			LangID:         defaultLangID,
			CountryID:      defaultCountryID,
			ManufacturerID: manufacturerID,
			VehicleID:      vehicleID,
		})
		if err != nil {
			return nil, err
		}

		categories, err := decodeCategories(body, version)
		if err != nil {
			c.logger.Warn("Failed to parse categories, trying next version",
				"version", version,
				"error", err)
			continue
		}
		if len(categories) > 0 {
			return categories, nil
		}
	}

	return nil, errors.NewNotFoundError("no categories found for vehicle")
}

// GetArticles lists the catalog articles of a product group for a vehicle.
func (c *CatalogClient) GetArticles(ctx context.Context, manufacturerID, vehicleID, productGroupID int64) ([]Article, error) {
	body, err := c.runActor(ctx, actorInput{
		SelectPageType: "get-article-list",
		TypeID:         defaultTypeID,
		LangID:         defaultLangID,
		CountryID:      defaultCountryID,
		ManufacturerID: manufacturerID,
		VehicleID:      vehicleID,
		ProductGroupID: productGroupID,
	})
	if err != nil {
		return nil, err
	}

	var articles []Article
	if err := decodeItemField(body, "articles", &articles); err != nil {
		return nil, errors.NewInternalError(fmt.Sprintf("failed to parse articles: %v", err))
	}
	return articles, nil
}

// SearchArticles looks up articles by article number across suppliers.
func (c *CatalogClient) SearchArticles(ctx context.Context, articleNo string) ([]Article, error) {
	body, err := c.runActor(ctx, actorInput{
		SelectPageType: "search-articles-by-article-number",
		ArticleNo:      articleNo,
		LangID:         4,
		CountryID:      62,
	})
	if err != nil {
		return nil, err
	}

	var articles []Article
	if err := decodeItemField(body, "articles", &articles); err != nil {
		return nil, errors.NewInternalError(fmt.Sprintf("failed to parse articles: %v", err))
	}
	return articles, nil
}
