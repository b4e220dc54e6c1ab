package backoffice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// maxResponseBytes caps how much of a remote response body is read when
// extracting error details.
const maxResponseBytes = 1 << 20

// tokenSource supplies the bearer credential for authenticated calls and
// receives the session-wide invalidation signal on 401 responses. It is
// implemented by SessionStore.
type tokenSource interface {
	Token() string
	Invalidate()
}

// Client talks to the remote hotel REST API. It injects the current session
// token into every authenticated request and reports authentication
// rejections back to the session store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   tokenSource
}

// NewClient creates a Client for the API rooted at baseURL. A nil httpClient
// falls back to http.DefaultClient; timeout policy belongs to the injected
// client, not to this package. A Client built directly stays unbound: calls
// go out without a bearer token and a 401 only surfaces as an error, since
// there is no session to invalidate.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// bind attaches the session store after construction; the store and client
// reference each other, so one side has to be wired late.
func (c *Client) bind(sessions tokenSource) {
	c.sessions = sessions
}

// loginPayload is the wire shape of the login response. Older backend
// generations omit the success flag and answer 401 with just an error
// message, so Success stays a pointer until normalized.
type loginPayload struct {
	Success *bool  `json:"success"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
	Error   string `json:"error"`
}

// login performs the remote login call. A returned error means the API could
// not be reached or answered garbage; a well-formed rejection comes back as
// a payload with Success=false.
func (c *Client) login(ctx context.Context, creds Credentials) (*loginPayload, error) {
	resp, err := c.postJSON(ctx, "/auth/login/", creds, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload loginPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}

	if payload.Success == nil {
		ok := resp.StatusCode == http.StatusOK && payload.Token != "" && payload.User != nil
		payload.Success = &ok
	}
	if !*payload.Success && payload.Error == "" {
		payload.Error = ErrInvalidCredentials.Error()
	}
	if *payload.Success && (payload.User == nil || payload.Token == "") {
		return nil, fmt.Errorf("login response missing user or token")
	}
	return &payload, nil
}

// registerPayload is the wire shape of a successful register response.
type registerPayload struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// register performs the remote register call. On a non-201 status the raw
// body is returned for error normalization.
func (c *Client) register(ctx context.Context, profile Profile) (payload *registerPayload, status int, errBody []byte, err error) {
	resp, err := c.postJSON(ctx, "/auth/register/", profile, false)
	if err != nil {
		return nil, 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to read register response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, resp.StatusCode, body, nil
	}

	var created registerPayload
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, 0, nil, fmt.Errorf("failed to decode register response: %w", err)
	}
	if created.User == nil || created.Token == "" {
		return nil, 0, nil, fmt.Errorf("register response missing user or token")
	}
	return &created, resp.StatusCode, nil, nil
}

// do issues an authenticated JSON request and decodes the response into out
// (which may be nil). A 401 response invalidates the whole session before
// the error is returned.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.sessions != nil {
		if token := c.sessions.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.sessions != nil {
			slog.Info("Remote API rejected session token, invalidating session", "path", path)
			c.sessions.Invalidate()
		}
		return &APIError{StatusCode: resp.StatusCode, Message: "session expired"}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// postJSON issues an unauthenticated (or authenticated, per withAuth) POST
// without interpreting the response status.
func (c *Client) postJSON(ctx context.Context, path string, in any, withAuth bool) (*http.Response, error) {
	encoded, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if withAuth && c.sessions != nil {
		if token := c.sessions.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return resp, nil
}

// readErrorMessage pulls a usable message out of an error response body.
func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxResponseBytes))
	if err != nil {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	switch {
	case payload.Error != "":
		return payload.Error
	case payload.Message != "":
		return payload.Message
	default:
		return payload.Detail
	}
}

// Hotel operations.

func (c *Client) Hotels(ctx context.Context) ([]Hotel, error) {
	var hotels []Hotel
	err := c.do(ctx, http.MethodGet, "/hotels/", nil, &hotels)
	return hotels, err
}

func (c *Client) Hotel(ctx context.Context, id string) (*Hotel, error) {
	var hotel Hotel
	if err := c.do(ctx, http.MethodGet, "/hotels/"+id+"/", nil, &hotel); err != nil {
		return nil, err
	}
	return &hotel, nil
}

func (c *Client) CreateHotel(ctx context.Context, hotel Hotel) (*Hotel, error) {
	var created Hotel
	if err := c.do(ctx, http.MethodPost, "/hotels/", hotel, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateHotel(ctx context.Context, id string, hotel Hotel) (*Hotel, error) {
	var updated Hotel
	if err := c.do(ctx, http.MethodPut, "/hotels/"+id+"/", hotel, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteHotel(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/hotels/"+id+"/", nil, nil)
}

// Room operations.

func (c *Client) Rooms(ctx context.Context) ([]Room, error) {
	var rooms []Room
	err := c.do(ctx, http.MethodGet, "/rooms/", nil, &rooms)
	return rooms, err
}

func (c *Client) Room(ctx context.Context, id string) (*Room, error) {
	var room Room
	if err := c.do(ctx, http.MethodGet, "/rooms/"+id+"/", nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *Client) CreateRoom(ctx context.Context, room Room) (*Room, error) {
	var created Room
	if err := c.do(ctx, http.MethodPost, "/rooms/", room, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateRoom(ctx context.Context, id string, room Room) (*Room, error) {
	var updated Room
	if err := c.do(ctx, http.MethodPut, "/rooms/"+id+"/", room, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteRoom(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rooms/"+id+"/", nil, nil)
}

// Booking operations.

func (c *Client) Bookings(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	err := c.do(ctx, http.MethodGet, "/bookings/", nil, &bookings)
	return bookings, err
}

func (c *Client) Booking(ctx context.Context, id string) (*Booking, error) {
	var booking Booking
	if err := c.do(ctx, http.MethodGet, "/bookings/"+id+"/", nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) CreateBooking(ctx context.Context, booking Booking) (*Booking, error) {
	var created Booking
	if err := c.do(ctx, http.MethodPost, "/bookings/", booking, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateBooking(ctx context.Context, id string, booking Booking) (*Booking, error) {
	var updated Booking
	if err := c.do(ctx, http.MethodPut, "/bookings/"+id+"/", booking, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteBooking(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/bookings/"+id+"/", nil, nil)
}

// User-account operations.

func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	err := c.do(ctx, http.MethodGet, "/users/", nil, &users)
	return users, err
}

func (c *Client) UserByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/"+id+"/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CreateUser(ctx context.Context, user User) (*User, error) {
	var created User
	if err := c.do(ctx, http.MethodPost, "/users/", user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, user User) (*User, error) {
	var updated User
	if err := c.do(ctx, http.MethodPut, "/users/"+id+"/", user, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+id+"/", nil, nil)
}
