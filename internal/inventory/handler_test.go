package inventory

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(store *memoryStore) http.Handler {
	r := chi.NewRouter()
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), newTestService(store, nil))
	r.Route("/catalog", h.MountRoutes)
	return r
}

func TestPutProductMatchesTrimmedID(t *testing.T) {
	store := newMemoryStore()
	router := newTestRouter(store)

	body := `{"product_id":" P1 ","name":"Hammer","unit_price":250}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/catalog/products/P1", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, store.products, "P1")

	body = `{"product_id":"P2","name":"Saw"}`
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/catalog/products/P1", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPutTransactionMatchesTrimmedID(t *testing.T) {
	store := newMemoryStore()
	router := newTestRouter(store)

	body := `{"tx_id":"T1 ","product_id":"P1","kind":"sale","qty":2,"unit_price":10}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/catalog/transactions/T1", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, store.transactions, "T1")
}
