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
	"time"
)

// Config represents the configuration for the peloton client
type Config struct {
	// BaseURL is the base URL of the peloton API
	BaseURL string
	// Token is the bearer token sent with every request
	Token string
	// HTTPClient is an optional custom HTTP client
	HTTPClient *http.Client
	// Timeout is the default request timeout
	Timeout time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "http://localhost:8080",
		HTTPClient: http.DefaultClient,
		Timeout:    10 * time.Second,
	}
}

// Client is the peloton API client
type Client struct {
	config *Config
	client *http.Client
}

// NewClient creates a new client with the given configuration
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	client := config.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		config: config,
		client: client,
	}
}

// WithToken returns a client that authenticates as another caller.
func (c *Client) WithToken(token string) *Client {
	config := *c.config
	config.Token = token
	return &Client{config: &config, client: c.client}
}

type Rider struct {
	ID            string    `json:"id"`
	ExternalID    string    `json:"external_id"`
	DisplayName   string    `json:"display_name"`
	PlatformName  string    `json:"platform_name,omitempty"`
	RatingID      int64     `json:"rating_id"`
	TermsAccepted bool      `json:"terms_accepted"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Organization struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Name          string    `json:"name"`
	ExternalRefID *int64    `json:"external_ref_id,omitempty"`
	ParentID      *string   `json:"parent_id,omitempty"`
	CreatedByID   string    `json:"created_by_id"`
	Active        bool      `json:"active"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Membership struct {
	ID             string    `json:"id"`
	RiderID        string    `json:"rider_id"`
	OrganizationID string    `json:"organization_id"`
	Kind           string    `json:"kind"`
	State          string    `json:"state"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Standing is a rider's position in one organization.
type Standing struct {
	Organization Organization `json:"organization"`
	State        string       `json:"state"`
	Admin        bool         `json:"admin"`
}

type Profile struct {
	Rider            Rider     `json:"rider"`
	Club             *Standing `json:"club,omitempty"`
	Team             *Standing `json:"team,omitempty"`
	PowerProfileURL  string    `json:"power_profile_url"`
	RacingProfileURL string    `json:"racing_profile_url"`
}

type Member struct {
	Rider Rider     `json:"rider"`
	Admin bool      `json:"admin"`
	Since time.Time `json:"since"`
}

type Event struct {
	ID              string                 `json:"id"`
	Timestamp       time.Time              `json:"timestamp"`
	ActorID         *string                `json:"actor_id,omitempty"`
	ActorExternalID string                 `json:"actor_external_id,omitempty"`
	Operation       string                 `json:"operation"`
	OrganizationID  *string                `json:"organization_id,omitempty"`
	TargetRiderID   *string                `json:"target_rider_id,omitempty"`
	Outcome         string                 `json:"outcome"`
	Context         map[string]interface{} `json:"context,omitempty"`
	RequestID       string                 `json:"request_id,omitempty"`
}

type RegisterRequest struct {
	DisplayName   string `json:"display_name"`
	PlatformName  string `json:"platform_name,omitempty"`
	RatingID      int64  `json:"rating_id"`
	TermsAccepted bool   `json:"terms_accepted"`
}

// Register signs up the caller identified by the client's token.
func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*Rider, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	var resp struct {
		Rider *Rider `json:"rider"`
	}
	if err := c.post(ctx, "/api/riders", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to register rider: %w", err)
	}
	return resp.Rider, nil
}

func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var resp struct {
		Profile *Profile `json:"profile"`
	}
	if err := c.get(ctx, "/api/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

// MyMemberships lists the caller's approved organizations, optionally
// narrowed to membership kinds such as "club_admin".
func (c *Client) MyMemberships(ctx context.Context, kinds ...string) ([]Organization, error) {
	query := url.Values{}
	for _, k := range kinds {
		query.Add("kind", k)
	}
	var resp struct {
		Organizations []Organization `json:"organizations"`
	}
	if err := c.get(ctx, "/api/me/memberships", query, &resp); err != nil {
		return nil, err
	}
	return resp.Organizations, nil
}

func (c *Client) Profile(ctx context.Context, riderID string) (*Profile, error) {
	var resp struct {
		Profile *Profile `json:"profile"`
	}
	if err := c.get(ctx, "/api/riders/"+url.PathEscape(riderID)+"/profile", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

type CreateOrganizationRequest struct {
	Kind          string  `json:"kind"`
	Name          string  `json:"name"`
	ParentID      *string `json:"parent_id,omitempty"`
	ExternalRefID *int64  `json:"external_ref_id,omitempty"`
	Note          string  `json:"note,omitempty"`
}

func (c *Client) CreateOrganization(ctx context.Context, req *CreateOrganizationRequest) (*Organization, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if req.Kind == "" || req.Name == "" {
		return nil, errors.New("kind and name are required")
	}

	var resp organizationResponse
	if err := c.post(ctx, "/api/organizations", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return resp.Organization, nil
}

// ListOptions filters ListOrganizations. Zero values are ignored.
type ListOptions struct {
	Kind       string
	Prefix     string
	ParentID   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

func (c *Client) ListOrganizations(ctx context.Context, opts ListOptions) ([]Organization, int64, error) {
	query := url.Values{}
	setIf(query, "kind", opts.Kind)
	setIf(query, "prefix", opts.Prefix)
	setIf(query, "parent_id", opts.ParentID)
	if opts.ActiveOnly {
		query.Set("active", "true")
	}
	setPage(query, opts.Limit, opts.Offset)

	var resp struct {
		Organizations []Organization `json:"organizations"`
		Total         int64          `json:"total"`
	}
	if err := c.get(ctx, "/api/organizations", query, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Organizations, resp.Total, nil
}

func (c *Client) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	var resp organizationResponse
	if err := c.get(ctx, orgPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Organization, nil
}

func (c *Client) SetActive(ctx context.Context, orgID string, active bool) (*Organization, error) {
	var resp organizationResponse
	body := map[string]bool{"active": active}
	if err := c.send(ctx, http.MethodPut, orgPath(orgID)+"/active", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.Organization, nil
}

func (c *Client) Members(ctx context.Context, orgID string) ([]Member, error) {
	var resp struct {
		Members []Member `json:"members"`
	}
	if err := c.get(ctx, orgPath(orgID)+"/members", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

// PendingRequests lists riders awaiting approval. Admins only.
func (c *Client) PendingRequests(ctx context.Context, orgID string) ([]Rider, error) {
	var resp struct {
		Riders []Rider `json:"riders"`
	}
	if err := c.get(ctx, orgPath(orgID)+"/requests", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Riders, nil
}

// RequestJoin files a join request. kind may be empty.
func (c *Client) RequestJoin(ctx context.Context, orgID, kind string) (*Membership, error) {
	var body interface{}
	if kind != "" {
		body = map[string]string{"kind": kind}
	}
	var resp membershipResponse
	if err := c.post(ctx, orgPath(orgID)+"/join", body, &resp); err != nil {
		return nil, err
	}
	return resp.Membership, nil
}

func (c *Client) ApproveJoin(ctx context.Context, orgID, riderID string) (*Membership, error) {
	var resp membershipResponse
	if err := c.post(ctx, orgPath(orgID)+"/requests/"+url.PathEscape(riderID)+"/approve", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Membership, nil
}

func (c *Client) RejectJoin(ctx context.Context, orgID, riderID string) error {
	return c.post(ctx, orgPath(orgID)+"/requests/"+url.PathEscape(riderID)+"/reject", nil, nil)
}

func (c *Client) AddMember(ctx context.Context, orgID, riderID string) (*Membership, error) {
	return c.grant(ctx, orgPath(orgID)+"/members", riderID)
}

func (c *Client) AddAdmin(ctx context.Context, orgID, riderID string) (*Membership, error) {
	return c.grant(ctx, orgPath(orgID)+"/admins", riderID)
}

func (c *Client) grant(ctx context.Context, path, riderID string) (*Membership, error) {
	var resp membershipResponse
	if err := c.post(ctx, path, map[string]string{"rider_id": riderID}, &resp); err != nil {
		return nil, err
	}
	return resp.Membership, nil
}

func (c *Client) RemoveMember(ctx context.Context, orgID, riderID string) error {
	return c.delete(ctx, orgPath(orgID)+"/members/"+url.PathEscape(riderID))
}

func (c *Client) RemoveAdmin(ctx context.Context, orgID, riderID string) error {
	return c.delete(ctx, orgPath(orgID)+"/admins/"+url.PathEscape(riderID))
}

// Leave drops the caller's membership of kind ("club_member", "team_admin", ...).
func (c *Client) Leave(ctx context.Context, orgID, kind string) error {
	if kind == "" {
		return errors.New("kind is required")
	}
	return c.post(ctx, orgPath(orgID)+"/leave", map[string]string{"kind": kind}, nil)
}

type ActivityQuery struct {
	OrganizationID string
	ActorID        string
	Operation      string
	Outcome        string
	StartTime      time.Time
	EndTime        time.Time
	Limit          int
	Offset         int
}

func (c *Client) Activity(ctx context.Context, q ActivityQuery) ([]Event, int64, error) {
	query := url.Values{}
	setIf(query, "organization_id", q.OrganizationID)
	setIf(query, "actor_id", q.ActorID)
	setIf(query, "operation", q.Operation)
	setIf(query, "outcome", q.Outcome)
	if !q.StartTime.IsZero() {
		query.Set("start_time", q.StartTime.Format(time.RFC3339))
	}
	if !q.EndTime.IsZero() {
		query.Set("end_time", q.EndTime.Format(time.RFC3339))
	}
	setPage(query, q.Limit, q.Offset)

	var resp struct {
		Events []Event `json:"events"`
		Total  int64   `json:"total"`
	}
	if err := c.get(ctx, "/api/activity", query, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Events, resp.Total, nil
}

// Health reports whether the service answers its health check.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/health", nil, nil)
}

type organizationResponse struct {
	Organization *Organization `json:"organization"`
}

type membershipResponse struct {
	Membership *Membership `json:"membership"`
}

func orgPath(id string) string {
	return "/api/organizations/" + url.PathEscape(id)
}

func setIf(query url.Values, key, value string) {
	if value != "" {
		query.Set(key, value)
	}
}

func setPage(query url.Values, limit, offset int) {
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
}

// APIError represents an error returned by the API
type APIError struct {
	StatusCode int      `json:"-"`
	Code       string   `json:"error_code"`
	Message    string   `json:"error"`
	Details    []string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s (Status: %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s (Status: %d)", e.Message, e.StatusCode)
}

// IsCode reports whether err is an APIError carrying code, for example
// "last_admin_violation" or "duplicate_name".
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// post performs a POST request to the specified path with the given request and unmarshals the response into the specified response object
func (c *Client) post(ctx context.Context, path string, req interface{}, resp interface{}) error {
	return c.send(ctx, http.MethodPost, path, nil, req, resp)
}

// get performs a GET request to the specified path and unmarshals the response into the specified response object
func (c *Client) get(ctx context.Context, path string, query url.Values, resp interface{}) error {
	return c.send(ctx, http.MethodGet, path, query, nil, resp)
}

// delete performs a DELETE request to the specified path
func (c *Client) delete(ctx context.Context, path string) error {
	return c.send(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, req interface{}, resp interface{}) error {
	// Set up context with timeout
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if req != nil {
		reqBody, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(reqBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	// Send request
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	// Check for non-success status code
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		// Try to decode error response
		var apiErr APIError
		if err := json.NewDecoder(httpResp.Body).Decode(&apiErr); err != nil {
			// If we can't decode the error, create a generic one
			return &APIError{
				StatusCode: httpResp.StatusCode,
				Message:    fmt.Sprintf("request failed with status code %d", httpResp.StatusCode),
			}
		}

		apiErr.StatusCode = httpResp.StatusCode
		return &apiErr
	}

	if resp == nil || httpResp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
