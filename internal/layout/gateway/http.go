package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"floor-layout/internal/layout/models"

	"github.com/hashicorp/go-retryablehttp"
)

// ============================================================
// HTTP Commit Client
// ============================================================

var ErrCommitRejected = errors.New("commit rejected")

type positionRequest struct {
	Position models.Point `json:"position"`
	Rotation float64      `json:"rotation"`
}

type batchRequest struct {
	Updates []models.Update `json:"updates"`
}

// HTTPClient реализует CommitGateway поверх REST API столов.
type HTTPClient struct {
	baseURL string
	client  *retryablehttp.Client
}

// NewHTTPClient создаёт клиент. retries - число повторов транспортного уровня,
// по умолчанию 0.
func NewHTTPClient(baseURL string, retries int) *HTTPClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = max(retries, 0)
	rc.Logger = log.New(os.Stderr, "[COMMIT] ", log.LstdFlags)
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  rc,
	}
}

func (c *HTTPClient) UpdateEntity(ctx context.Context, u models.Update) error {
	target := fmt.Sprintf("%s/tables/%s/position", c.baseURL, url.PathEscape(u.ID))
	return c.put(ctx, target, positionRequest{Position: u.Position, Rotation: u.Rotation})
}

func (c *HTTPClient) UpdateEntities(ctx context.Context, updates []models.Update) error {
	return c.put(ctx, c.baseURL+"/tables/positions", batchRequest{Updates: updates})
}

func (c *HTTPClient) put(ctx context.Context, target string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("put %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrCommitRejected, readError(resp))
}

func readError(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return fmt.Sprintf("%d %s", resp.StatusCode, payload.Error)
	}
	return resp.Status
}
