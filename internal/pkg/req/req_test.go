package req

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdir/internal/pkg/errs"
)

type payload struct {
	Name string `json:"name"`
}

func newJSONRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		ctype    string
		wantCode int
	}{
		{"ok", `{"name":"Ann"}`, "application/json", 0},
		{"wrong content type", `{"name":"Ann"}`, "text/plain", errs.ErrUnsupportedMediaType},
		{"bad json", `{"name":`, "application/json", errs.ErrInvalidJSONFormat},
		{"unknown field", `{"nope":1}`, "application/json", errs.ErrInvalidJSONFormat},
		{"trailing data", `{"name":"Ann"}{"name":"Bob"}`, "application/json", errs.ErrExtraContentInBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newJSONRequest(tt.body)
			r.Header.Set("Content-Type", tt.ctype)

			var dst payload
			err := BindJSON(httptest.NewRecorder(), r, &dst)

			if tt.wantCode == 0 {
				require.Nil(t, err)
				assert.Equal(t, "Ann", dst.Name)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}
}

func TestBindJSON_TooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("a", int(MaxBodySize)) + `"}`

	var dst payload
	err := BindJSON(httptest.NewRecorder(), newJSONRequest(body), &dst)

	require.NotNil(t, err)
	assert.Equal(t, errs.ErrRequestEntityTooLarge, err.Code)
}

func TestParseForm(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=Jane+Doe&city=Metropolis"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	err := ParseForm(httptest.NewRecorder(), r)

	require.Nil(t, err)
	assert.Equal(t, "Jane Doe", r.PostForm.Get("name"))
	assert.Equal(t, "Metropolis", r.PostForm.Get("city"))
}
