package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTagAndDuplicate(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/tags", map[string]any{"name": "wellness"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var tag TagResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tag))
	assert.NotZero(t, tag.ID)

	resp = ts.api.Post("/api/v1/tags", map[string]any{"name": "wellness"})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "DUPLICATE_KEY")
}

func TestUpdateTagUnsupported(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/tags", map[string]any{"name": "fixed"})
	require.Equal(t, http.StatusCreated, resp.Code)

	var tag TagResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tag))

	resp = ts.api.Patch("/api/v1/tags/"+itoa(tag.ID), map[string]any{"name": "renamed"})
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
	assert.Contains(t, resp.Body.String(), "UNSUPPORTED_OPERATION")
}

func TestDeleteTagNotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Delete("/api/v1/tags/9999")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "WRONG_ID")
}

func TestUserOrdersRoundTrip(t *testing.T) {
	ts := setupTestServer(t)

	u := ts.seedUser(t, "buyer")
	c := createCertificate(t, ts, "orderable", 2500)

	resp := ts.api.Post("/api/v1/users/"+itoa(u.ID)+"/orders", map[string]any{
		"gift_certificate_id": c.ID,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var order OrderResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &order))
	assert.EqualValues(t, 2500, order.Cost)
	assert.False(t, order.PurchaseDate.IsZero())

	resp = ts.api.Get("/api/v1/users/" + itoa(u.ID) + "/orders/" + itoa(order.ID))
	assert.Equal(t, http.StatusOK, resp.Code)

	// Another user's id hides the order.
	other := ts.seedUser(t, "other")
	resp = ts.api.Get("/api/v1/users/" + itoa(other.ID) + "/orders/" + itoa(order.ID))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "WRONG_ORDER_ID_FOR_USER")

	// Ordering an unknown certificate fails as a field error, not a 404.
	resp = ts.api.Post("/api/v1/users/"+itoa(u.ID)+"/orders", map[string]any{
		"gift_certificate_id": 9999,
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "WRONG_ORDER_FIELDS")
}

func TestMostUsedTagEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	u := ts.seedUser(t, "collector")
	ab := createCertificate(t, ts, "dual", 100, "A", "B")
	b := createCertificate(t, ts, "single", 25, "B")

	for _, certID := range []int64{ab.ID, b.ID, b.ID} {
		resp := ts.api.Post("/api/v1/users/"+itoa(u.ID)+"/orders", map[string]any{
			"gift_certificate_id": certID,
		})
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	resp := ts.api.Get("/api/v1/users/" + itoa(u.ID) + "/tags/most-used")
	require.Equal(t, http.StatusOK, resp.Code)

	var tag TagResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tag))
	assert.Equal(t, "B", tag.Name)

	// A user without orders gets a distinct not-found error.
	idle := ts.seedUser(t, "idle")
	resp = ts.api.Get("/api/v1/users/" + itoa(idle.ID) + "/tags/most-used")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "TAG_FOR_USER_NOT_FOUND")
}
