package api

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	"github.com/Vyacheslaf/giftcert-server/internal/service"
	"github.com/Vyacheslaf/giftcert-server/internal/store"
	"github.com/Vyacheslaf/giftcert-server/internal/store/sqlite"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api   humatest.TestAPI
	store store.Store
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	services := &Services{
		Certificate: service.NewCertificateService(st, logger),
		Tag:         service.NewTagService(st, logger),
		User:        service.NewUserService(st, logger),
		Order:       service.NewOrderService(st, logger),
	}

	s := NewServer(st, services, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
		store:  st,
	}
}

func (ts *testServer) seedUser(t *testing.T, username string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, ts.store.CreateUser(context.Background(), u))
	return u
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"healthy"`)
}
