// Package client provides a Go HTTP client for the agenda API.
//
// The client mirrors the server's endpoint structure with strongly-typed
// methods over the shared [agenda/pkg/models] entities. Authentication
// tokens obtained via [Client.SignIn] are sent automatically on subsequent
// requests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"agenda/pkg/models"
)

// Client is an HTTP client for the agenda API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

// NewClient creates an API client. baseURL should include protocol and
// host without a trailing slash, e.g. "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetAuthToken sets the authentication token for the client
func (c *Client) SetAuthToken(token string) {
	c.authToken = token
}

// doRequest performs an HTTP request with proper headers
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	return c.httpClient.Do(req)
}

// decodeResponse decodes the JSON response into the target struct
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	if target != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Health checks the health status of the server
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Department management

func (c *Client) CreateDepartment(ctx context.Context, form models.DepartmentForm) (*models.Department, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/departments", form)
	if err != nil {
		return nil, err
	}

	var result models.Department
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListDepartments(ctx context.Context) ([]models.Department, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/departments", nil)
	if err != nil {
		return nil, err
	}

	var result []models.Department
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) UpdateDepartment(ctx context.Context, id models.DepartmentID, patch models.DepartmentPatch) (*models.Department, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, "/api/departments/"+id.String(), patch)
	if err != nil {
		return nil, err
	}

	var result models.Department
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteDepartment(ctx context.Context, id models.DepartmentID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/api/departments/"+id.String(), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// Contact management

func (c *Client) CreateContact(ctx context.Context, form models.ContactForm) (*models.Contact, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/contacts", form)
	if err != nil {
		return nil, err
	}

	var result models.Contact
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListContacts fetches contacts through the browsing filter. Zero-value
// options return the full ordered list.
func (c *Client) ListContacts(ctx context.Context, opts ContactQuery) ([]models.Contact, error) {
	values := url.Values{}
	if opts.DepartmentID != nil {
		values.Set("departmentId", opts.DepartmentID.String())
	}
	if opts.Query != "" {
		values.Set("q", opts.Query)
	}
	if opts.Lookup {
		values.Set("mode", "lookup")
	}
	path := "/api/contacts"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result []models.Contact
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) UpdateContact(ctx context.Context, id models.ContactID, patch models.ContactPatch) (*models.Contact, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, "/api/contacts/"+id.String(), patch)
	if err != nil {
		return nil, err
	}

	var result models.Contact
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteContact(ctx context.Context, id models.ContactID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/api/contacts/"+id.String(), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// ContactQuery selects the server-side filter applied by ListContacts.
type ContactQuery struct {
	DepartmentID *models.DepartmentID
	Query        string
	// Lookup switches to the reception prefix search; DepartmentID is
	// ignored in that mode.
	Lookup bool
}

// Directory

// DirectorySnapshot mirrors the server's synchronized directory state.
type DirectorySnapshot struct {
	Departments        []models.Department `json:"departments"`
	Contacts           []models.Contact    `json:"contacts"`
	SelectedDepartment *models.Department  `json:"selectedDepartment,omitempty"`
	Loading            bool                `json:"loading"`
	Error              string              `json:"error,omitempty"`
}

func (c *Client) Directory(ctx context.Context) (*DirectorySnapshot, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/directory", nil)
	if err != nil {
		return nil, err
	}

	var result DirectorySnapshot
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) RefreshDirectory(ctx context.Context) (*DirectorySnapshot, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/directory/refresh", nil)
	if err != nil {
		return nil, err
	}

	var result DirectorySnapshot
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
