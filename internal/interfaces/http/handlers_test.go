package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/inventario-salidas/internal/application/alerts"
	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	"github.com/jhoicas/inventario-salidas/internal/application/exitrequest"
	"github.com/jhoicas/inventario-salidas/internal/application/inventory"
	"github.com/jhoicas/inventario-salidas/internal/application/usecase"
	domainalerts "github.com/jhoicas/inventario-salidas/internal/domain/alerts"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-salidas/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/inventario-salidas/internal/interfaces/http"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

type nopSender struct{ sent []alerts.Message }

func (s *nopSender) Send(_ context.Context, msg alerts.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

type stubPDF struct{}

func (stubPDF) AlertReport(string, dto.AlertReportDTO) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

type testServer struct {
	app    *fiber.App
	store  *memory.Store
	sender *nopSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.Nop()
	store := memory.NewStore()
	store.SeedUser(entity.User{ID: testUserID, Name: testUserName, Email: "gina@example.com", Role: entity.RoleGerente, Status: "active"})

	products := memory.NewProductRepository(store)
	requests := memory.NewExitRequestRepository(store)
	movements := memory.NewStockMovementRepository(store)
	users := memory.NewUserRepository(store)
	tx := memory.NewTxRunner(store)
	reportCache := cache.NewLocalReportCache(0)

	renderer, err := alerts.NewRenderer(language.Spanish)
	require.NoError(t, err)
	sender := &nopSender{}
	detection := alerts.NewDetectionUseCase(products, movements, domainalerts.DefaultThresholds(), reportCache, log)
	dispatcher := alerts.NewDispatcher(users, renderer, sender, nil, log)
	service := alerts.NewService(detection, dispatcher, log)
	monitor := alerts.NewMonitor(service.RunCycle, cache.LocalCycleLock{},
		alerts.MonitorSettings{WarmUp: time.Hour, Interval: time.Hour}, log)
	t.Cleanup(func() { monitor.Deactivate(); monitor.Wait() })

	app := apphttp.NewApp(apphttp.AppOptions{Name: "test"})
	require.NoError(t, apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:     usecase.NewProductUseCase(products),
		PreferencesUC: usecase.NewAlertPreferencesUseCase(users),
		Stock:         inventory.NewStockUseCase(tx, products, movements, reportCache),
		ExitRequests:  exitrequest.NewUseCase(tx, products, requests, reportCache),
		Detection:     detection,
		Monitor:       monitor,
		PDF:           stubPDF{},
		JWTSecret:     testJWTSecret,
		WriteRate:     "1000-M",
	}))
	return &testServer{app: app, store: store, sender: sender}
}

func (s *testServer) do(t *testing.T, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (s *testServer) createProduct(t *testing.T, ref string, initial, minStock int64) dto.ProductResponse {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/api/products", "bodeguero", map[string]any{
		"reference":     ref,
		"designation":   "Producto " + ref,
		"unit":          "und",
		"initial_stock": initial,
		"min_stock":     minStock,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &p))
	return p
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e.Code
}

func TestHealth_Publico(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExitRequests_FlujoCompletoAprobacion(t *testing.T) {
	s := newTestServer(t)
	p := s.createProduct(t, "P-100", 100, 10)

	resp, body := s.do(t, http.MethodPost, "/api/exit-requests", "bodeguero", map[string]any{
		"productId": p.ID, "quantity": 30, "requestedBy": "Bruno", "reason": "obra norte",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created dto.IDResponse
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)

	decide := map[string]any{"status": "approved", "approvedBy": "Gina"}
	resp, body = s.do(t, http.MethodPut, "/api/exit-requests/"+created.ID, "gerente", decide)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var decided dto.ExitRequestResponse
	require.NoError(t, json.Unmarshal(body, &decided))
	assert.Equal(t, "approved", decided.Status)
	assert.Equal(t, "Gina", decided.ApprovedBy)
	assert.NotNil(t, decided.ApprovedAt)

	resp, body = s.do(t, http.MethodGet, "/api/products/"+p.ID, "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(70)), got.CurrentStock.String())

	resp, body = s.do(t, http.MethodPut, "/api/exit-requests/"+created.ID, "gerente", decide)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NOT_PENDING", errorCode(t, body))

	resp, body = s.do(t, http.MethodGet, "/api/products/"+p.ID+"/ledger/verify", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v dto.LedgerVerification
	require.NoError(t, json.Unmarshal(body, &v))
	assert.True(t, v.Consistent, v.Problem)
	assert.Equal(t, 2, v.Movements)
}

func TestExitRequests_DecisionRequiereRolPrivilegiado(t *testing.T) {
	s := newTestServer(t)
	p := s.createProduct(t, "P-1", 10, 0)
	_, body := s.do(t, http.MethodPost, "/api/exit-requests", "vendedor", map[string]any{
		"productId": p.ID, "quantity": 1, "requestedBy": "Vera",
	})
	var created dto.IDResponse
	require.NoError(t, json.Unmarshal(body, &created))

	resp, body := s.do(t, http.MethodPut, "/api/exit-requests/"+created.ID, "vendedor",
		map[string]any{"status": "approved", "approvedBy": "Vera"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))
}

func TestExitRequests_Errores(t *testing.T) {
	s := newTestServer(t)
	p := s.createProduct(t, "P-2", 5, 0)

	resp, body := s.do(t, http.MethodPost, "/api/exit-requests", "bodeguero", map[string]any{
		"productId": p.ID, "quantity": 0, "requestedBy": "Bruno",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	resp, body = s.do(t, http.MethodPost, "/api/exit-requests", "bodeguero", map[string]any{
		"productId": "no-existe", "quantity": 1, "requestedBy": "Bruno",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	resp, body = s.do(t, http.MethodPost, "/api/exit-requests", "bodeguero", map[string]any{
		"productId": p.ID, "quantity": 6, "requestedBy": "Bruno",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, body))

	resp, _ = s.do(t, http.MethodDelete, "/api/exit-requests/no-existe", "bodeguero", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp, body = s.do(t, method, "/api/exit-requests/not-a-uuid", "gerente", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, method)
		assert.Equal(t, "NOT_FOUND", errorCode(t, body))
	}
	resp, body = s.do(t, http.MethodPut, "/api/exit-requests/not-a-uuid", "gerente",
		map[string]any{"status": "approved", "approvedBy": "mgr"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	resp, _ = s.do(t, http.MethodGet, "/api/exit-requests?status=otro", "bodeguero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExitRequests_CamposObligatorios(t *testing.T) {
	s := newTestServer(t)
	p := s.createProduct(t, "P-5", 20, 0)

	// El token trae nombre, pero requestedBy se exige en el body.
	resp, body := s.do(t, http.MethodPost, "/api/exit-requests", "bodeguero", map[string]any{
		"productId": p.ID, "quantity": 2,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	resp, body = s.do(t, http.MethodPost, "/api/exit-requests", "bodeguero", map[string]any{
		"productId": p.ID, "productReference": "P-5", "productDesignation": "Producto P-5",
		"quantity": 2, "requestedBy": "Bruno", "reason": "mantenimiento",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created dto.IDResponse
	require.NoError(t, json.Unmarshal(body, &created))

	resp, body = s.do(t, http.MethodPut, "/api/exit-requests/"+created.ID, "gerente", map[string]any{"status": "approved"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	resp, body = s.do(t, http.MethodPut, "/api/exit-requests/"+created.ID, "gerente", map[string]any{"approvedBy": "mgr"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	resp, body = s.do(t, http.MethodGet, "/api/exit-requests/"+created.ID, "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, "Bruno", got["requestedBy"])
	assert.Equal(t, p.ID, got["productId"])

	resp, body = s.do(t, http.MethodGet, "/api/products/"+p.ID, "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var prod dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &prod))
	assert.True(t, prod.CurrentStock.Equal(decimal.NewFromInt(20)), "las decisiones inválidas no tocan stock")
}

func TestExitRequests_ListYDelete(t *testing.T) {
	s := newTestServer(t)
	p := s.createProduct(t, "P-3", 50, 0)
	for _, who := range []string{"Ana", "Bruno", "Ana"} {
		resp, body := s.do(t, http.MethodPost, "/api/exit-requests", "bodeguero", map[string]any{
			"productId": p.ID, "quantity": 1, "requestedBy": who,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}

	resp, body := s.do(t, http.MethodGet, "/api/exit-requests?status=pending&requestedBy=Ana", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []dto.ExitRequestResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 2)

	resp, _ = s.do(t, http.MethodDelete, "/api/exit-requests/"+list[0].ID, "bodeguero", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/api/exit-requests/"+list[0].ID, "bodeguero", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProducts_UpdateRechazaCamposFueraDeListaBlanca(t *testing.T) {
	s := newTestServer(t)
	p := s.createProduct(t, "P-4", 10, 2)

	resp, body := s.do(t, http.MethodPut, "/api/products/"+p.ID, "bodeguero", map[string]any{"current_stock": 999})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", errorCode(t, body))

	resp, body = s.do(t, http.MethodPut, "/api/products/"+p.ID, "bodeguero", map[string]any{"location": "Estante 9"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var got dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Estante 9", got.Location)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(10)))
}

func TestProducts_ReferenciaDuplicada(t *testing.T) {
	s := newTestServer(t)
	s.createProduct(t, "DUP", 1, 0)
	resp, body := s.do(t, http.MethodPost, "/api/products", "bodeguero", map[string]any{
		"reference": "DUP", "designation": "otra",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", errorCode(t, body))
}

func TestProducts_BajaLogicaSoloPrivilegiados(t *testing.T) {
	s := newTestServer(t)
	p := s.createProduct(t, "P-5", 1, 0)

	resp, _ := s.do(t, http.MethodDelete, "/api/products/"+p.ID, "bodeguero", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/products/"+p.ID, "admin", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/products/"+p.ID, "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMovements_EntradaYHistorial(t *testing.T) {
	s := newTestServer(t)
	p := s.createProduct(t, "P-6", 10, 0)

	resp, body := s.do(t, http.MethodPost, "/api/products/"+p.ID+"/movements", "bodeguero", map[string]any{
		"type": "entry", "quantity": 5, "reason": "compra",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var m dto.MovementResponse
	require.NoError(t, json.Unmarshal(body, &m))
	assert.True(t, m.PreviousStock.Equal(decimal.NewFromInt(10)))
	assert.True(t, m.NewStock.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, testUserName, m.UserName)

	resp, body = s.do(t, http.MethodPost, "/api/products/"+p.ID+"/movements", "bodeguero", map[string]any{
		"type": "exit", "quantity": -1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = s.do(t, http.MethodGet, "/api/products/"+p.ID+"/movements", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hist []dto.MovementResponse
	require.NoError(t, json.Unmarshal(body, &hist))
	require.Len(t, hist, 2)
	assert.Equal(t, "initial", hist[0].Type)
	assert.Equal(t, "entry", hist[1].Type)

	resp, body = s.do(t, http.MethodGet, "/api/movements?type=entry", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var byRange []dto.MovementResponse
	require.NoError(t, json.Unmarshal(body, &byRange))
	assert.Len(t, byRange, 1)

	resp, _ = s.do(t, http.MethodGet, "/api/movements?from=ayer", "bodeguero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAlerts_ReporteYEscaneoManual(t *testing.T) {
	s := newTestServer(t)
	s.createProduct(t, "BAJO", 5, 10)

	_, body := s.do(t, http.MethodPut, "/api/users/me/alert-preferences", "gerente", map[string]any{
		"notification_email": "gina@example.com", "stock_alerts": true,
	})
	var prefs dto.AlertPreferencesDTO
	require.NoError(t, json.Unmarshal(body, &prefs), string(body))
	assert.Equal(t, "gina@example.com", prefs.NotificationEmail)

	resp, body := s.do(t, http.MethodGet, "/api/alerts", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rep dto.AlertReportDTO
	require.NoError(t, json.Unmarshal(body, &rep))
	require.Len(t, rep.StockAlerts, 1)
	assert.Equal(t, "critical", rep.StockAlerts[0].Severity)

	resp, _ = s.do(t, http.MethodPost, "/api/alerts/scan", "bodeguero", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = s.do(t, http.MethodPost, "/api/alerts/scan", "gerente", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var res dto.DispatchResultDTO
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, 1, res.Findings)
	assert.Equal(t, 1, res.Sent)
	require.Len(t, s.sender.sent, 1)
	assert.Equal(t, "gina@example.com", s.sender.sent[0].To)

	resp, body = s.do(t, http.MethodGet, "/api/alerts/report.pdf", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestAlerts_ControlDelMonitor(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodPost, "/api/alerts/monitor/start", "vendedor", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/api/alerts/monitor/start", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st dto.MonitorStatusDTO
	require.NoError(t, json.Unmarshal(body, &st))
	assert.True(t, st.Active)
	assert.Equal(t, testUserName, st.ActivatedBy)
	assert.NotNil(t, st.NextRunAt)

	resp, body = s.do(t, http.MethodPost, "/api/alerts/monitor/stop", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &st))
	assert.False(t, st.Active)
}

func TestPreferencias_ClaveDesconocida(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, http.MethodPut, "/api/users/me/alert-preferences", "gerente", map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRateLimit_RechazaExceso(t *testing.T) {
	app := fiber.New()
	limit, err := apphttp.RateLimit("2-M")
	require.NoError(t, err)
	app.Post("/w", limit, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/w", nil), -1)
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
