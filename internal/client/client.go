// Package client talks to the Fakturera API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wichananm65/fakturera/internal/auth"
	"github.com/wichananm65/fakturera/internal/product"
	"github.com/wichananm65/fakturera/internal/terms"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Type    string
	Message string
	Extra   map[string]any
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.Status)
	}
	return fmt.Sprintf("api returned status %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type LoginResult struct {
	Token string        `json:"token"`
	User  auth.Identity `json:"user"`
}

type ProductQuery struct {
	Lang  string
	Sort  string
	Order string
}

type ProductList struct {
	LanguageCode string            `json:"language_code"`
	Products     []product.Product `json:"products"`
	Count        int               `json:"count"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var out LoginResult
	body := map[string]string{"username": username, "password": password}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", nil, body, &out)
	return out, err
}

func (c *Client) Verify(ctx context.Context, token string) (auth.Identity, error) {
	var out struct {
		Valid bool          `json:"valid"`
		User  auth.Identity `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify", token, nil, nil, &out); err != nil {
		return auth.Identity{}, err
	}
	if !out.Valid {
		return auth.Identity{}, &APIError{Status: http.StatusUnauthorized, Message: "token rejected"}
	}
	return out.User, nil
}

func (c *Client) Terms(ctx context.Context, lang string) (terms.Terms, error) {
	var out terms.Terms
	err := c.do(ctx, http.MethodGet, "/api/terms", "", langQuery(lang), nil, &out)
	return out, err
}

func (c *Client) Products(ctx context.Context, token string, q ProductQuery) (ProductList, error) {
	v := langQuery(q.Lang)
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	var out ProductList
	err := c.do(ctx, http.MethodGet, "/api/products", token, v, nil, &out)
	return out, err
}

// UpdateProduct sends only the given fields and returns the product as
// stored after the write.
func (c *Client) UpdateProduct(ctx context.Context, token string, id int, lang string, fields map[string]any) (product.Product, error) {
	var out struct {
		Message string          `json:"message"`
		Product product.Product `json:"product"`
	}
	path := "/api/products/" + strconv.Itoa(id)
	if err := c.do(ctx, http.MethodPut, path, token, langQuery(lang), fields, &out); err != nil {
		return product.Product{}, err
	}
	return out.Product, nil
}

func langQuery(lang string) url.Values {
	v := url.Values{}
	if lang != "" {
		v.Set("lang", lang)
	}
	return v
}

func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, in, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	env := map[string]any{}
	if err := json.Unmarshal(b, &env); err != nil {
		apiErr.Message = strings.TrimSpace(string(b))
		return apiErr
	}
	for k, v := range env {
		switch k {
		case "error":
			apiErr.Type, _ = v.(string)
		case "message":
			apiErr.Message, _ = v.(string)
		default:
			if apiErr.Extra == nil {
				apiErr.Extra = map[string]any{}
			}
			apiErr.Extra[k] = v
		}
	}
	return apiErr
}
