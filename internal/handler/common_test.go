package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagepass/stagepass/internal/repository"
	"github.com/stagepass/stagepass/internal/service"
)

// The status mapping is the externally observable error contract, so it
// is pinned down here for every branch of respondError.

func callRespondError(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, respondError(c, err))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestRespondErrorNotFound(t *testing.T) {
	// Every not-found sentinel maps to 404, cross-tenant rows included
	// since they surface as the same sentinels.
	for _, err := range []error{
		repository.ErrTenantNotFound,
		repository.ErrVenueNotFound,
		repository.ErrActNotFound,
		repository.ErrShowNotFound,
		repository.ErrOfferNotFound,
	} {
		code, body := callRespondError(t, err)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, err.Error(), body["error"])
	}
}

func TestRespondErrorInvalidArgument(t *testing.T) {
	wrapped := fmt.Errorf("%w: ticket_count must be positive", service.ErrInvalidArgument)

	code, body := callRespondError(t, wrapped)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, wrapped.Error(), body["error"])
}

func TestRespondErrorCapacity(t *testing.T) {
	code, body := callRespondError(t, &repository.CapacityError{Available: 400})

	// 422 with the remaining count in the body so clients can retry with
	// a corrected value.
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, float64(400), body["available"])
	assert.Contains(t, body["error"], "400")
}

func TestRespondErrorUnknown(t *testing.T) {
	code, body := callRespondError(t, errors.New("driver: bad connection"))

	// Internal details never leak to the client.
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal error", body["error"])
}
