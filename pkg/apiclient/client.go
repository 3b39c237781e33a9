// Package apiclient talks to the QAWala API's like endpoints. *Client satisfies
// likebutton.Store.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"qawala/internal/models"
	"qawala/pkg/identity"

	"github.com/gofiber/fiber/v2"
)

const DefaultTimeout = 5 * time.Second

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	timeout time.Duration
}

type Option func(*Client)

// WithTimeout bounds requests whose context has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Likes is a post's public count plus the caller's liked state.
type Likes struct {
	PostID string `json:"post_id"`
	Count  int64  `json:"count"`
	Liked  bool   `json:"liked"`
}

type toggleResponse struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

// Snapshot fetches the count and, when token is set, the caller's liked state.
// A token the server rejects yields a 401 StatusError rather than an anonymous read.
func (c *Client) Snapshot(ctx context.Context, postID, token string) (Likes, error) {
	var snap Likes
	if err := c.do(ctx, fiber.MethodGet, c.postURL(postID)+"/likes", token, &snap); err != nil {
		return Likes{}, err
	}
	return snap, nil
}

func (c *Client) Count(ctx context.Context, postID string) (int64, error) {
	snap, err := c.Snapshot(ctx, postID, "")
	if err != nil {
		return 0, readError(err)
	}
	return snap.Count, nil
}

func (c *Client) Liked(ctx context.Context, postID string, who identity.Snapshot) (bool, error) {
	if !who.Resolved() {
		return false, nil
	}
	snap, err := c.Snapshot(ctx, postID, who.Token)
	if err != nil {
		return false, readError(err)
	}
	return snap.Liked, nil
}

// Toggle flips who's like and returns the new liked state.
func (c *Client) Toggle(ctx context.Context, postID string, who identity.Snapshot) (bool, error) {
	if !who.Resolved() {
		return false, models.NewUnauthenticatedError("sign in to like posts")
	}
	var out toggleResponse
	if err := c.do(ctx, fiber.MethodPost, c.postURL(postID)+"/like", who.Token, &out); err != nil {
		return false, writeError(err)
	}
	return out.Liked, nil
}

func (c *Client) postURL(postID string) string {
	return c.baseURL + "/api/blogs/" + url.PathEscape(postID)
}

// StatusError is a non-2xx response.
type StatusError struct {
	Status int
	Code   string
	Msg    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Msg)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Msg)
}

func (c *Client) do(ctx context.Context, method, target, token string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if until := time.Until(dl); until < timeout {
			timeout = until
		}
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(target)
	a.Timeout(timeout)
	if token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return err
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errs[0]
	}
	if code < 200 || code >= 300 {
		var apiErr models.ErrorResponse
		_ = json.Unmarshal(body, &apiErr)
		return &StatusError{Status: code, Code: apiErr.Code, Msg: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func isUnauthenticated(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == fiber.StatusUnauthorized
}

func unauthenticated(err error) error {
	appErr := models.NewUnauthenticatedError("session rejected")
	appErr.Err = err
	return appErr
}

func readError(err error) error {
	if isUnauthenticated(err) {
		return unauthenticated(err)
	}
	return models.NewReadFailure(err)
}

func writeError(err error) error {
	if isUnauthenticated(err) {
		return unauthenticated(err)
	}
	return models.NewWriteFailure(err)
}
