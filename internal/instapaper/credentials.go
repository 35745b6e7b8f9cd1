// file: internal/instapaper/credentials.go
package instapaper

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dghubble/oauth1"
	"github.com/dkoosis/instapaper-mcp/internal/fsm"
)

const (
	accessTokenEndpoint = "/oauth/access_token"
	authFlightKey       = "xauth"
)

// Credentials are the consumer pair and account used for the xAuth exchange.
// They are never logged; String redacts them.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	Username       string
	Password       string
}

// String implements fmt.Stringer without exposing any secret.
func (c Credentials) String() string {
	return "instapaper.Credentials{<redacted>}"
}

// GoString keeps %#v from printing secrets.
func (c Credentials) GoString() string {
	return c.String()
}

// AuthState is the credential manager's lifecycle state.
type AuthState = fsm.State

// Authentication lifecycle.
const (
	StateUnauthenticated AuthState = "unauthenticated"
	StateAuthenticating  AuthState = "authenticating"
	StateAuthenticated   AuthState = "authenticated"

	eventAuthBegin   fsm.Event = "begin"
	eventAuthSucceed fsm.Event = "succeed"
	eventAuthFail    fsm.Event = "fail"
	eventAuthKeep    fsm.Event = "keep"
)

func (c *Client) newAuthFSM() fsm.FSM {
	m := fsm.NewFSM(StateUnauthenticated, c.logger)
	m.AddTransition(fsm.Transition{
		From:  []fsm.State{StateUnauthenticated, StateAuthenticated},
		Event: eventAuthBegin,
		To:    StateAuthenticating,
	})
	m.AddTransition(fsm.Transition{
		From:  []fsm.State{StateAuthenticating},
		Event: eventAuthSucceed,
		To:    StateAuthenticated,
		OnEnter: func(_ context.Context, _, _ fsm.State) {
			c.logger.Info("Authenticated with Instapaper.")
		},
	})
	m.AddTransition(fsm.Transition{
		From:  []fsm.State{StateAuthenticating},
		Event: eventAuthFail,
		To:    StateUnauthenticated,
	})
	m.AddTransition(fsm.Transition{
		From:  []fsm.State{StateAuthenticating},
		Event: eventAuthKeep,
		To:    StateAuthenticated,
	})
	if err := m.Build(); err != nil {
		// The table above is static; a failure here is a programming error.
		panic(err)
	}
	return m
}

// AuthState returns the current lifecycle state.
func (c *Client) AuthState() AuthState {
	return c.auth.CurrentState()
}

// IsAuthenticated reports whether a token pair is held.
func (c *Client) IsAuthenticated() bool {
	return c.tokenPair() != nil
}

func (c *Client) tokenPair() *oauth1.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setTokenPair(token *oauth1.Token) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Authenticate performs the xAuth exchange and stores the resulting token pair,
// replacing any held pair. A failed exchange leaves a held pair in place.
// Concurrent callers share one exchange.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err, _ := c.authGroup.Do(authFlightKey, func() (interface{}, error) {
		return nil, c.authenticate(ctx)
	})
	return err
}

// ensureAuthenticated returns the held token pair, authenticating first if
// none is held. Concurrent first calls trigger a single exchange.
func (c *Client) ensureAuthenticated(ctx context.Context) (*oauth1.Token, error) {
	if token := c.tokenPair(); token != nil {
		return token, nil
	}
	_, err, _ := c.authGroup.Do(authFlightKey, func() (interface{}, error) {
		if c.tokenPair() != nil {
			return nil, nil
		}
		return nil, c.authenticate(ctx)
	})
	if err != nil {
		return nil, err
	}
	token := c.tokenPair()
	if token == nil {
		return nil, errors.Mark(errors.New("no token pair after authentication"), ErrAuthentication)
	}
	return token, nil
}

func (c *Client) authenticate(ctx context.Context) error {
	c.transition(ctx, eventAuthBegin)
	start := time.Now()
	token, err := c.exchangeToken(ctx)
	c.metrics.RecordAuthentication(ctx, time.Since(start), err)
	if err != nil {
		if c.tokenPair() != nil {
			c.transition(ctx, eventAuthKeep)
			c.logger.Warn("Instapaper re-authentication failed; keeping the held token pair.", "error", err)
			return err
		}
		c.transition(ctx, eventAuthFail)
		c.logger.Warn("Instapaper authentication failed.", "error", err)
		return err
	}
	c.setTokenPair(token)
	c.transition(ctx, eventAuthSucceed)
	return nil
}

func (c *Client) transition(ctx context.Context, event fsm.Event) {
	if err := c.auth.Transition(ctx, event); err != nil {
		c.logger.Debug("Auth state transition rejected.", "event", event, "error", err)
	}
}

// exchangeToken posts the xAuth parameters signed without a token and parses
// the url-encoded token pair from the response.
func (c *Client) exchangeToken(ctx context.Context) (*oauth1.Token, error) {
	body := url.Values{}
	body.Set("x_auth_username", c.creds.Username)
	body.Set("x_auth_password", c.creds.Password)
	body.Set("x_auth_mode", "client_auth")

	endpointURL := c.endpointURL(accessTokenEndpoint)
	signed, err := c.signer.Sign(http.MethodPost, endpointURL, body, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, endpointURL, signed)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read access token response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Mark(errors.Newf("authentication failed: %s", resp.Status), ErrAuthentication)
	}

	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to obtain OAuth tokens"), ErrTokenParse)
	}
	token, secret := values.Get(paramToken), values.Get(paramTokenSecret)
	if token == "" || secret == "" {
		return nil, errors.Mark(errors.New("failed to obtain OAuth tokens"), ErrTokenParse)
	}
	return oauth1.NewToken(token, secret), nil
}
