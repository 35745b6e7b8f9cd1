// file: internal/instapaper/signer.go
package instapaper

import (
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dghubble/oauth1"
)

// OAuth protocol parameter names.
const (
	paramConsumerKey     = "oauth_consumer_key"
	paramNonce           = "oauth_nonce"
	paramSignature       = "oauth_signature"
	paramSignatureMethod = "oauth_signature_method"
	paramTimestamp       = "oauth_timestamp"
	paramToken           = "oauth_token"
	paramTokenSecret     = "oauth_token_secret"
	paramVersion         = "oauth_version"

	signatureMethod = "HMAC-SHA1"
	oauthVersion    = "1.0"
)

// Signer produces OAuth 1.0a HMAC-SHA1 signed parameter sets.
// Parameters travel in the form body, not an Authorization header.
type Signer struct {
	consumerKey    string
	consumerSecret string
	now            func() time.Time
	nonce          func() (string, error)
}

// NewSigner returns a Signer for the given consumer pair.
func NewSigner(consumerKey, consumerSecret string) *Signer {
	return &Signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		now:            time.Now,
		nonce:          randomNonce,
	}
}

// Sign returns the protocol parameters, the signature and the body parameters
// merged into one set ready to be form-encoded. A nil token signs with an
// empty token secret and omits oauth_token.
func (s *Signer) Sign(method, endpointURL string, body url.Values, token *oauth1.Token) (url.Values, error) {
	nonce, err := s.nonce()
	if err != nil {
		return nil, errors.Wrap(err, "generate oauth nonce")
	}

	params := url.Values{}
	params.Set(paramConsumerKey, s.consumerKey)
	params.Set(paramNonce, nonce)
	params.Set(paramSignatureMethod, signatureMethod)
	params.Set(paramTimestamp, strconv.FormatInt(s.now().Unix(), 10))
	params.Set(paramVersion, oauthVersion)
	tokenSecret := ""
	if token != nil {
		params.Set(paramToken, token.Token)
		tokenSecret = token.TokenSecret
	}
	for key, values := range body {
		for _, v := range values {
			params.Add(key, v)
		}
	}

	base := signatureBase(method, endpointURL, normalizeParameters(params))
	// HMACSigner percent-encodes both secrets when it builds the key.
	signer := &oauth1.HMACSigner{ConsumerSecret: s.consumerSecret}
	signature, err := signer.Sign(tokenSecret, base)
	if err != nil {
		return nil, errors.Wrap(err, "sign request")
	}
	params.Set(paramSignature, signature)
	return params, nil
}

// normalizeParameters sorts parameters bytewise by key, then value, and joins
// the percent-encoded pairs with '&'.
func normalizeParameters(params url.Values) string {
	type pair struct{ key, value string }
	pairs := make([]pair, 0, len(params))
	for key, values := range params {
		for _, v := range values {
			pairs = append(pairs, pair{key, v})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	encoded := make([]string, len(pairs))
	for i, p := range pairs {
		encoded[i] = oauth1.PercentEncode(p.key) + "=" + oauth1.PercentEncode(p.value)
	}
	return strings.Join(encoded, "&")
}

func signatureBase(method, endpointURL, normalized string) string {
	return strings.ToUpper(method) + "&" + oauth1.PercentEncode(endpointURL) + "&" + oauth1.PercentEncode(normalized)
}

func randomNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
