// file: internal/instapaper/signer_test.go
package instapaper

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // protocol algorithm.
	"encoding/base64"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/dkoosis/instapaper-mcp/internal/instapaper/instapapertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listURL = "https://www.instapaper.com/api/1/bookmarks/list"

func fixedSigner(key, secret string) *Signer {
	s := NewSigner(key, secret)
	s.now = func() time.Time { return fixedNow }
	s.nonce = func() (string, error) { return "0123456789abcdef0123456789abcdef", nil }
	return s
}

func TestSignMatchesIndependentComputation(t *testing.T) {
	s := fixedSigner(instapapertest.ConsumerKey, instapapertest.ConsumerSecret)
	body := url.Values{}
	body.Set("folder_id", "starred")
	body.Set("limit", "10")

	t.Run("WithToken", func(t *testing.T) {
		signed, err := s.Sign(http.MethodPost, listURL, body, oauth1.NewToken(instapapertest.Token, instapapertest.TokenSecret))
		require.NoError(t, err)
		want := instapapertest.Signature(http.MethodPost, listURL, signed, instapapertest.ConsumerSecret, instapapertest.TokenSecret)
		assert.Equal(t, want, signed.Get(paramSignature))
		assert.Equal(t, instapapertest.Token, signed.Get(paramToken))
	})

	t.Run("WithoutToken", func(t *testing.T) {
		signed, err := s.Sign(http.MethodPost, listURL, body, nil)
		require.NoError(t, err)
		want := instapapertest.Signature(http.MethodPost, listURL, signed, instapapertest.ConsumerSecret, "")
		assert.Equal(t, want, signed.Get(paramSignature))
		_, hasToken := signed[paramToken]
		assert.False(t, hasToken, "oauth_token must be omitted without a token pair")
	})
}

func TestSignIncludesProtocolAndBodyParameters(t *testing.T) {
	s := fixedSigner("ck", "cs")
	body := url.Values{}
	body.Set("bookmark_id", "42")

	signed, err := s.Sign(http.MethodPost, listURL, body, nil)
	require.NoError(t, err)

	assert.Equal(t, "ck", signed.Get(paramConsumerKey))
	assert.Equal(t, "0123456789abcdef0123456789abcdef", signed.Get(paramNonce))
	assert.Equal(t, "HMAC-SHA1", signed.Get(paramSignatureMethod))
	assert.Equal(t, "1742040000", signed.Get(paramTimestamp))
	assert.Equal(t, "1.0", signed.Get(paramVersion))
	assert.Equal(t, "42", signed.Get("bookmark_id"))
	assert.NotEmpty(t, signed.Get(paramSignature))
	assert.Equal(t, "42", body.Get("bookmark_id"))
	assert.Len(t, body, 1, "Sign must not mutate the body")
}

func TestSigningKeyEncodesSecrets(t *testing.T) {
	s := fixedSigner("ck", "secret&with space")
	token := oauth1.NewToken("tok", "token/secret")

	signed, err := s.Sign(http.MethodPost, listURL, nil, token)
	require.NoError(t, err)

	params := url.Values{}
	for k, v := range signed {
		if k != paramSignature {
			params[k] = v
		}
	}
	base := signatureBase(http.MethodPost, listURL, normalizeParameters(params))
	mac := hmac.New(sha1.New, []byte("secret%26with%20space&token%2Fsecret"))
	mac.Write([]byte(base))
	assert.Equal(t, base64.StdEncoding.EncodeToString(mac.Sum(nil)), signed.Get(paramSignature))
}

func TestSignatureChangesWithEveryInput(t *testing.T) {
	body := url.Values{"bookmark_id": {"1"}}
	sign := func(s *Signer, method, u string, b url.Values, tok *oauth1.Token) string {
		signed, err := s.Sign(method, u, b, tok)
		require.NoError(t, err)
		return signed.Get(paramSignature)
	}
	base := sign(fixedSigner("ck", "cs"), http.MethodPost, listURL, body, nil)

	assert.NotEqual(t, base, sign(fixedSigner("ck", "other"), http.MethodPost, listURL, body, nil))
	assert.NotEqual(t, base, sign(fixedSigner("ck", "cs"), http.MethodGet, listURL, body, nil))
	assert.NotEqual(t, base, sign(fixedSigner("ck", "cs"), http.MethodPost, listURL+"x", body, nil))
	assert.NotEqual(t, base, sign(fixedSigner("ck", "cs"), http.MethodPost, listURL, url.Values{"bookmark_id": {"2"}}, nil))
	assert.NotEqual(t, base, sign(fixedSigner("ck", "cs"), http.MethodPost, listURL, body, oauth1.NewToken("t", "s")))
}

func TestNormalizeParameters(t *testing.T) {
	t.Run("SortsByKeyThenValue", func(t *testing.T) {
		params := url.Values{"b": {"2"}, "a": {"3", "1"}, "a_b": {"0"}}
		assert.Equal(t, "a=1&a=3&a_b=0&b=2", normalizeParameters(params))
	})

	t.Run("PercentEncodesReservedCharacters", func(t *testing.T) {
		params := url.Values{"title": {"a b!*'()~-._"}}
		assert.Equal(t, "title=a%20b%21%2A%27%28%29~-._", normalizeParameters(params))
	})

	t.Run("EncodesNonASCII", func(t *testing.T) {
		params := url.Values{"q": {"é"}}
		assert.Equal(t, "q=%C3%A9", normalizeParameters(params))
	})
}

func TestSignatureBase(t *testing.T) {
	got := signatureBase("post", listURL, "a=1&b=x%20y")
	assert.Equal(t, "POST&https%3A%2F%2Fwww.instapaper.com%2Fapi%2F1%2Fbookmarks%2Flist&a%3D1%26b%3Dx%2520y", got)
}

func TestRandomNonce(t *testing.T) {
	a, err := randomNonce()
	require.NoError(t, err)
	b, err := randomNonce()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.Regexp(t, "^[0-9a-f]{32}$", a)
	assert.NotEqual(t, a, b)
}

func TestSignatureIsDeterministicForFixedNonceAndTimestamp(t *testing.T) {
	body := url.Values{"bookmark_id": {"1"}}
	token := oauth1.NewToken("tok", "tsecret")
	sign := func(s *Signer) string {
		signed, err := s.Sign(http.MethodPost, listURL, body, token)
		require.NoError(t, err)
		return signed.Get(paramSignature)
	}

	first := sign(fixedSigner("ck", "cs"))
	assert.Equal(t, first, sign(fixedSigner("ck", "cs")))

	otherNonce := fixedSigner("ck", "cs")
	otherNonce.nonce = func() (string, error) { return "fedcba9876543210fedcba9876543210", nil }
	assert.NotEqual(t, first, sign(otherNonce))

	otherTime := fixedSigner("ck", "cs")
	otherTime.now = func() time.Time { return fixedNow.Add(time.Second) }
	assert.NotEqual(t, first, sign(otherTime))
}

// Request from the widely published HMAC-SHA1 worked example.
func TestSignKnownVector(t *testing.T) {
	const endpoint = "https://api.twitter.com/1.1/statuses/update.json"
	body := url.Values{}
	body.Set("status", "Hello Ladies + Gentlemen, a signed OAuth request!")
	body.Set("include_entities", "true")
	token := "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb"

	tests := []struct {
		name           string
		consumerSecret string
		tokenSecret    string
		want           string
	}{
		{
			name:           "Published",
			consumerSecret: "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
			tokenSecret:    "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
			want:           "hCtSmYh+iHYCEqBWrE7C7hYmtUk=",
		},
		{
			name:           "ReservedCharactersInSecrets",
			consumerSecret: "a&b",
			tokenSecret:    "s/t",
			want:           "y52COqI+NqIV2duYUNy8SbA8/l8=",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSigner("xvz1evFS4wEEPTGEFPHBog", tc.consumerSecret)
			s.now = func() time.Time { return time.Unix(1318622958, 0) }
			s.nonce = func() (string, error) { return "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg", nil }

			signed, err := s.Sign(http.MethodPost, endpoint, body, oauth1.NewToken(token, tc.tokenSecret))
			require.NoError(t, err)
			assert.Equal(t, tc.want, signed.Get(paramSignature))
		})
	}
}
