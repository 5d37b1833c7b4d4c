package sessiontoken

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateAndParse(t *testing.T) {
	tok, err := GenerateToken("abc", secret, time.Hour)
	require.NoError(t, err)

	p, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "abc", p.SessionID)
	assert.Equal(t, TokenIssuer, p.Issuer)
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := GenerateToken("abc", secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, "other")
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	tok, err := GenerateToken("abc", secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	assert.Error(t, err)
}

func TestCookieRoundTrip(t *testing.T) {
	tok, err := GenerateToken("sid-1", secret, time.Hour)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	SetCookie(rr, tok, time.Hour, false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		r.AddCookie(c)
	}

	p, err := FromRequest(r, secret)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", p.SessionID)
}

func TestFromRequest_NoCookie(t *testing.T) {
	_, err := FromRequest(httptest.NewRequest(http.MethodGet, "/", nil), secret)
	assert.ErrorIs(t, err, http.ErrNoCookie)
}
