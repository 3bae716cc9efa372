// internal/adapters/out/http/storeapi_client.go
package httpout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	cartdom "storefront/internal/domain/cart"
	catalogdom "storefront/internal/domain/catalog"
	sessiondom "storefront/internal/domain/session"
)

const (
	DefaultTimeout = 15 * time.Second

	maxErrorBody = 1 << 20
)

var (
	ErrEmptyToken      = errors.New("storeapi: login returned no token")
	ErrCartNotAccepted = errors.New("storeapi: cart response not successful")
)

// APIError is a non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storeapi: %s %s failed status=%d body=%s", e.Method, e.Path, e.StatusCode, e.Body)
}

// StatusCodeOf returns the HTTP status of an *APIError in err's chain, or 0.
func StatusCodeOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// StoreAPIClient talks to the remote storefront API.
// It implements session.APIAuthenticator, catalog.Gateway and cart.Gateway.
type StoreAPIClient struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
}

var (
	_ sessiondom.APIAuthenticator = (*StoreAPIClient)(nil)
	_ catalogdom.Gateway          = (*StoreAPIClient)(nil)
	_ cartdom.Gateway             = (*StoreAPIClient)(nil)
)

// baseURL example:
// - local dev API: http://localhost:8081
func NewStoreAPIClient(baseURL string, timeout time.Duration, tokens TokenSource) *StoreAPIClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &StoreAPIClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// WithHTTPClient swaps the transport (tests).
func (c *StoreAPIClient) WithHTTPClient(hc *http.Client) *StoreAPIClient {
	if c != nil && hc != nil {
		c.client = hc
	}
	return c
}

// ----------------------------
// wire DTOs
// ----------------------------

type loginResponse struct {
	Token string `json:"token"`
}

type groupsResponse struct {
	Items []catalogdom.Group `json:"items"`
}

type stocksResponse struct {
	Items []catalogdom.Stock `json:"items"`
}

type cartResponse struct {
	Success bool           `json:"success"`
	Items   []cartdom.Item `json:"items"`
}

// ----------------------------
// session.APIAuthenticator
// ----------------------------

func (c *StoreAPIClient) Login(ctx context.Context, creds sessiondom.APICredentials) (string, error) {
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/login", nil, creds, &out); err != nil {
		return "", err
	}
	tok := strings.TrimSpace(out.Token)
	if tok == "" {
		return "", ErrEmptyToken
	}
	log.Printf("[storeapi] login ok tokenLen=%d", len(tok))
	return tok, nil
}

// ----------------------------
// catalog.Gateway
// ----------------------------

func (c *StoreAPIClient) Groups(ctx context.Context) ([]catalogdom.Group, error) {
	var out groupsResponse
	if err := c.do(ctx, http.MethodGet, "/groups", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []catalogdom.Group{}
	}
	return out.Items, nil
}

func (c *StoreAPIClient) Products(ctx context.Context, q catalogdom.StocksQuery) ([]catalogdom.Stock, error) {
	if q.StockList == nil {
		q.StockList = []int64{}
	}
	var out stocksResponse
	if err := c.do(ctx, http.MethodPost, "/getstockslite", nil, q, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []catalogdom.Stock{}
	}
	return out.Items, nil
}

// ----------------------------
// cart.Gateway
// ----------------------------

func (c *StoreAPIClient) Cart(ctx context.Context, sessionID, customerID int64) ([]cartdom.Item, error) {
	query := url.Values{}
	query.Set("sessionID", strconv.FormatInt(sessionID, 10))
	query.Set("customerID", strconv.FormatInt(customerID, 10))

	var out cartResponse
	if err := c.do(ctx, http.MethodGet, "/cart", query, nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, ErrCartNotAccepted
	}

	items := make([]cartdom.Item, 0, len(out.Items))
	for _, it := range out.Items {
		if it.SumPrice == 0 {
			it.SumPrice = cartdom.LineTotal(it.Price, it.Quantity)
		}
		items = append(items, it)
	}
	return items, nil
}

func (c *StoreAPIClient) AddCartItem(ctx context.Context, req cartdom.AddRequest) error {
	if req.Additions == nil {
		req.Additions = []int64{}
	}
	return c.do(ctx, http.MethodPost, "/cart", nil, req, nil)
}

func (c *StoreAPIClient) UpdateCartItem(ctx context.Context, req cartdom.UpdateRequest) error {
	return c.do(ctx, http.MethodPut, "/cart", nil, req, nil)
}

// DeleteCartItem sends the line id in a JSON body, as the API expects.
func (c *StoreAPIClient) DeleteCartItem(ctx context.Context, req cartdom.DeleteRequest) error {
	return c.do(ctx, http.MethodDelete, "/cart", nil, req, nil)
}

// ----------------------------
// transport
// ----------------------------

func (c *StoreAPIClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c == nil {
		return fmt.Errorf("storeapi client is nil")
	}
	if c.baseURL == "" {
		return fmt.Errorf("storeapi client baseURL is empty")
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("storeapi: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		tok, ok, err := c.tokens.Token(ctx)
		if err != nil {
			// a token read failure should not block catalog browsing
			log.Printf("[storeapi] WARN: token read failed: %v", err)
		} else if ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("storeapi: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: res.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxErrorBody))
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("storeapi: decode %s %s: %w", method, path, err)
	}
	return nil
}
