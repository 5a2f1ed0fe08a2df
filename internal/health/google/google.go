// Package google mirrors daily water totals into Google Fit via the
// Fitness REST API.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	fitness "google.golang.org/api/fitness/v1"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"

	"sorso/internal/health"
)

const (
	hydrationDataType = "com.google.hydration"
	dataStreamName    = "sorso-water-intake"
	userID            = "me"
)

type Client struct {
	svc          *fitness.Service
	dataSourceID string
}

var _ health.WaterWriter = (*Client)(nil)

// NewFromEnv creates a Fitness client from environment variables.
// Required: an OAuth client (GOOGLE_OAUTH_CLIENT_JSON or
// GOOGLE_OAUTH_CLIENT_FILE) and a stored user token
// (GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE); generate the
// token with cmd/sorso-oauth.
func NewFromEnv(ctx context.Context) (*Client, error) {
	clientJSON, err := readEnvJSON("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, fmt.Errorf("oauth client credentials: %w", err)
	}

	cfg, err := oauthgoogle.ConfigFromJSON(clientJSON, fitness.FitnessNutritionWriteScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth config: %w", err)
	}

	tokenJSON, err := readEnvJSON("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	svc, err := fitness.NewService(ctx, goption.WithHTTPClient(cfg.Client(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("create fitness service: %w", err)
	}

	c := &Client{svc: svc}
	if err := c.ensureDataSource(ctx); err != nil {
		return nil, fmt.Errorf("ensure data source: %w", err)
	}

	slog.InfoContext(ctx, "Google Fit client initialized",
		"data_source", c.dataSourceID)
	return c, nil
}

func readEnvJSON(jsonKey, fileKey string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(jsonKey)); v != "" {
		return []byte(v), nil
	}
	if path := strings.TrimSpace(os.Getenv(fileKey)); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("set %s or %s", jsonKey, fileKey)
}

// ensureDataSource creates the hydration data stream, or locates it if a
// previous run already created it.
func (c *Client) ensureDataSource(ctx context.Context) error {
	ds := &fitness.DataSource{
		DataStreamName: dataStreamName,
		Type:           "raw",
		DataType: &fitness.DataType{
			Name: hydrationDataType,
			Field: []*fitness.DataTypeField{
				{Name: "volume", Format: "floatPoint"},
			},
		},
		Application: &fitness.Application{Name: "sorso"},
	}

	created, err := c.svc.Users.DataSources.Create(userID, ds).Context(ctx).Do()
	if err == nil {
		c.dataSourceID = created.DataStreamId
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != 409 {
		return err
	}

	// Already exists from an earlier run; find it.
	list, err := c.svc.Users.DataSources.List(userID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("list data sources: %w", err)
	}
	for _, existing := range list.DataSource {
		if existing.DataStreamName == dataStreamName &&
			existing.DataType != nil && existing.DataType.Name == hydrationDataType {
			c.dataSourceID = existing.DataStreamId
			return nil
		}
	}
	return errors.New("hydration data source exists but was not found")
}

// SaveWater records the day's total as a single hydration point spanning
// one nanosecond at the archived day's midnight, in liters.
func (c *Client) SaveWater(ctx context.Context, amountML int, day time.Time) error {
	if c.svc == nil {
		return errors.New("fitness service not initialized")
	}

	startNs := day.UnixNano()
	endNs := startNs + 1
	liters := float64(amountML) / 1000.0

	dataset := &fitness.Dataset{
		DataSourceId:   c.dataSourceID,
		MinStartTimeNs: startNs,
		MaxEndTimeNs:   endNs,
		Point: []*fitness.DataPoint{
			{
				DataTypeName:   hydrationDataType,
				StartTimeNanos: startNs,
				EndTimeNanos:   endNs,
				Value:          []*fitness.Value{{FpVal: liters}},
			},
		},
	}

	datasetID := fmt.Sprintf("%d-%d", startNs, endNs)
	_, err := c.svc.Users.DataSources.Datasets.
		Patch(userID, c.dataSourceID, datasetID, dataset).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("patch hydration dataset: %w", err)
	}

	slog.InfoContext(ctx, "Saved water to Google Fit",
		"day", day.Format("2006-01-02"),
		"amount_ml", amountML)
	return nil
}
