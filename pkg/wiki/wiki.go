// Package wiki talks to the MediaWiki OAuth 1.0a provider: it runs the
// three-legged handshake and resolves the username behind an access token.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dghubble/oauth1"
)

// ErrAnonymous is returned when the provider answers for an anonymous user.
var ErrAnonymous = errors.New("wiki reports an anonymous user")

// Config describes the consumer registered on the wiki.
type Config struct {
	// BaseURL is the wiki root, e.g. https://pt.wikiversity.org
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
}

// Client runs the OAuth handshake against one wiki.
type Client struct {
	oauth   *oauth1.Config
	baseURL string
}

// NewClient creates a Client. MediaWiki only accepts out-of-band callbacks;
// the provider redirects to the callback URL registered for the consumer.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		baseURL: base,
		oauth: &oauth1.Config{
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
			CallbackURL:    "oob",
			Endpoint: oauth1.Endpoint{
				RequestTokenURL: base + "/w/index.php?title=Special%3AOAuth%2Finitiate",
				AuthorizeURL:    base + "/wiki/Special:OAuth/authorize",
				AccessTokenURL:  base + "/w/index.php?title=Special%3AOAuth%2Ftoken",
			},
		},
	}
}

// Begin fetches a request token and returns it with the URL the user must
// visit to authorize it.
func (c *Client) Begin(_ context.Context) (requestToken, requestSecret, authorizeURL string, err error) {
	requestToken, requestSecret, err = c.oauth.RequestToken()
	if err != nil {
		return "", "", "", fmt.Errorf("fetching request token: %w", err)
	}

	u, err := c.oauth.AuthorizationURL(requestToken)
	if err != nil {
		return "", "", "", fmt.Errorf("building authorization url: %w", err)
	}
	q := u.Query()
	q.Set("oauth_consumer_key", c.oauth.ConsumerKey)
	u.RawQuery = q.Encode()

	return requestToken, requestSecret, u.String(), nil
}

// Complete exchanges the verified request token for an access token and
// returns the wiki username it belongs to.
func (c *Client) Complete(ctx context.Context, requestToken, requestSecret, verifier string) (string, error) {
	accessToken, accessSecret, err := c.oauth.AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		return "", fmt.Errorf("fetching access token: %w", err)
	}
	return c.Username(ctx, accessToken, accessSecret)
}

type userInfoResponse struct {
	Query struct {
		UserInfo struct {
			ID   int64   `json:"id"`
			Name string  `json:"name"`
			Anon *string `json:"anon"`
		} `json:"userinfo"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Username asks the wiki API who owns the access token.
func (c *Client) Username(ctx context.Context, accessToken, accessSecret string) (string, error) {
	httpClient := c.oauth.Client(ctx, oauth1.NewToken(accessToken, accessSecret))

	params := url.Values{
		"action": {"query"},
		"meta":   {"userinfo"},
		"format": {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/w/api.php?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying userinfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("querying userinfo: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var info userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decoding userinfo: %w", err)
	}
	if info.Error != nil {
		return "", fmt.Errorf("userinfo: %s: %s", info.Error.Code, info.Error.Info)
	}

	user := info.Query.UserInfo
	if user.Anon != nil || user.ID == 0 || user.Name == "" {
		return "", ErrAnonymous
	}
	return user.Name, nil
}

// ParseCallback extracts the request token and verifier from the provider's
// redirect to /oauth-callback.
func ParseCallback(r *http.Request) (requestToken, verifier string, err error) {
	return oauth1.ParseAuthorizationCallback(r)
}
