package controllers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Govind-619/JewelSphere/events"
	"github.com/Govind-619/JewelSphere/gateway"
	"github.com/Govind-619/JewelSphere/models"
	"github.com/Govind-619/JewelSphere/payments"
	"github.com/Govind-619/JewelSphere/repository"
	"github.com/Govind-619/JewelSphere/routes"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jwtSecret      = "test-jwt-secret"
	callbackSecret = "test-callback-secret"
)

var (
	customer = models.Identity{UserID: "user-7", Role: models.RoleCustomer}
	stranger = models.Identity{UserID: "user-8", Role: models.RoleCustomer}
	admin    = models.Identity{UserID: "admin-1", Role: models.RoleAdmin}
)

func init() {
	gin.SetMode(gin.TestMode)
}

type api struct {
	router *gin.Engine
	sim    *gateway.Simulator
	events *events.MemoryPublisher
}

func newAPI(t *testing.T) *api {
	t.Helper()
	a := &api{
		sim:    gateway.NewSimulator("http://shop.test", callbackSecret),
		events: &events.MemoryPublisher{},
	}
	svc := payments.NewService(repository.NewMemoryStore(), a.sim, payments.WithPublisher(a.events))
	a.router = routes.SetupRouter(svc, jwtSecret)
	return a
}

func (a *api) do(t *testing.T, method, path string, body interface{}, who *models.Identity) utils.TestResponse {
	t.Helper()
	req := utils.TestRequest{Method: method, Path: path, Body: body}
	if who != nil {
		req.Headers = utils.BearerHeader(utils.GetTestToken(t, jwtSecret, *who))
	}
	return utils.MakeTestRequest(t, a.router, req)
}

func (a *api) callback(t *testing.T, txRef, status string) utils.TestResponse {
	t.Helper()
	body, err := json.Marshal(gateway.SimulatorCallback{TxRef: txRef, Status: status, TransactionID: "sim_" + status})
	require.NoError(t, err)
	return utils.MakeTestRequest(t, a.router, utils.TestRequest{
		Method:  http.MethodPost,
		Path:    "/payments/callback/" + gateway.SimulatorName,
		RawBody: body,
		Headers: map[string]string{gateway.SimulatorSignatureHeader: gateway.Sign(body, callbackSecret)},
	})
}

func checkoutBody() map[string]interface{} {
	return map[string]interface{}{
		"customer": map[string]string{"name": "Asha Rao", "email": "asha@example.com", "phone": "+919800000000"},
		"items": []map[string]interface{}{
			{"product_id": "ring-22k", "name": "22K gold ring", "unit_price": "1250.00", "quantity": 2},
		},
	}
}

// checkout places an order and returns its id.
func (a *api) checkout(t *testing.T, who *models.Identity) string {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/orders/checkout", checkoutBody(), who)
	utils.AssertResponse(t, resp, http.StatusCreated, "Order placed successfully")
	order := resp.Data()["order"].(map[string]interface{})
	return order["id"].(string)
}

// latestTxRef returns the tx_ref of the newest attempt in the order's chain.
func (a *api) latestTxRef(t *testing.T, orderID string, who *models.Identity) string {
	t.Helper()
	resp := a.do(t, http.MethodGet, fmt.Sprintf("/orders/%s/payments/chain", orderID), nil, who)
	utils.AssertResponse(t, resp, http.StatusOK, "Payment chain retrieved successfully")
	attempts := resp.Data()["attempts"].([]interface{})
	require.NotEmpty(t, attempts)
	return attempts[len(attempts)-1].(map[string]interface{})["tx_ref"].(string)
}

func TestCheckoutEndpoint(t *testing.T) {
	a := newAPI(t)

	resp := a.do(t, http.MethodPost, "/orders/checkout", checkoutBody(), nil)

	utils.AssertResponse(t, resp, http.StatusCreated, "Order placed successfully")
	data := resp.Data()
	order := data["order"].(map[string]interface{})
	assert.Equal(t, "PENDING", order["status"])
	assert.Equal(t, "PENDING", order["payment_status"])
	assert.Contains(t, data["paymentLink"], "http://shop.test/payments/simulate/")
	assert.Len(t, order["payments"], 1)
}

func TestCheckoutEndpointValidation(t *testing.T) {
	a := newAPI(t)
	body := checkoutBody()
	body["items"] = []map[string]interface{}{{"product_id": "ring-22k", "unit_price": "0", "quantity": 0}}

	resp := a.do(t, http.MethodPost, "/orders/checkout", body, nil)

	utils.AssertResponse(t, resp, http.StatusBadRequest, "Invalid checkout request")
	fields := resp.Data()["fields"].(map[string]interface{})
	assert.Contains(t, fields, "items[0].quantity")
	assert.Contains(t, fields, "items[0].unit_price")

	resp = utils.MakeTestRequest(t, a.router, utils.TestRequest{Method: http.MethodPost, Path: "/orders/checkout", RawBody: []byte("{")})
	utils.AssertResponse(t, resp, http.StatusBadRequest, "Invalid request body")
}

func TestCallbackResolvesPaymentOnce(t *testing.T) {
	a := newAPI(t)
	orderID := a.checkout(t, nil)
	txRef := a.latestTxRef(t, orderID, nil)

	resp := a.callback(t, txRef, "SUCCESSFUL")
	utils.AssertResponse(t, resp, http.StatusOK, "Notification processed")
	assert.Equal(t, "applied", resp.Data()["outcome"])

	resp = a.callback(t, txRef, "SUCCESSFUL")
	utils.AssertResponse(t, resp, http.StatusOK, "Notification processed")
	assert.Equal(t, "duplicate", resp.Data()["outcome"])

	resp = a.do(t, http.MethodGet, "/orders/"+orderID, nil, nil)
	utils.AssertResponse(t, resp, http.StatusOK, "Order details retrieved successfully")
	assert.Equal(t, "SUCCESSFUL", resp.Data()["payment_status"])
	assert.Equal(t, "COMPLETED", resp.Data()["status"])
	assert.Len(t, a.events.OfType(events.PaymentResolved), 1)

	resp = a.do(t, http.MethodPost, "/payments/retry/"+orderID, nil, nil)
	utils.AssertResponse(t, resp, http.StatusConflict, "Order has already been paid")
}

func TestCallbackRejections(t *testing.T) {
	a := newAPI(t)
	orderID := a.checkout(t, nil)
	txRef := a.latestTxRef(t, orderID, nil)

	resp := a.callback(t, txRef, "PENDING")
	utils.AssertResponse(t, resp, http.StatusOK, "Notification ignored")

	resp = a.callback(t, "JS-unknown", "FAILED")
	utils.AssertResponse(t, resp, http.StatusOK, "Notification processed")
	assert.Equal(t, "ignored", resp.Data()["outcome"])

	resp = utils.MakeTestRequest(t, a.router, utils.TestRequest{
		Method:  http.MethodPost,
		Path:    "/payments/callback/" + gateway.SimulatorName,
		RawBody: []byte(`{"tx_ref":"` + txRef + `","status":"SUCCESSFUL"}`),
		Headers: map[string]string{gateway.SimulatorSignatureHeader: "forged"},
	})
	utils.AssertResponse(t, resp, http.StatusBadRequest, "Invalid gateway notification")

	resp = utils.MakeTestRequest(t, a.router, utils.TestRequest{
		Method:  http.MethodPost,
		Path:    "/payments/callback/razorpay",
		RawBody: []byte(`{}`),
	})
	utils.AssertResponse(t, resp, http.StatusBadRequest, "Invalid gateway notification")

	resp = a.do(t, http.MethodGet, "/orders/"+orderID, nil, nil)
	assert.Equal(t, "PENDING", resp.Data()["payment_status"])
}

func TestRetryEndpoint(t *testing.T) {
	a := newAPI(t)
	a.sim.RejectReason = "card network unavailable"

	resp := a.do(t, http.MethodPost, "/orders/checkout", checkoutBody(), nil)
	utils.AssertResponse(t, resp, http.StatusUnprocessableEntity, "Payment gateway rejected the payment")
	assert.Equal(t, "GatewayRejected", resp.Data()["error_kind"])
	assert.Equal(t, "card network unavailable", resp.Data()["reason"])
	assert.Equal(t, true, resp.Data()["retryable"])
	orderID := resp.Data()["order_id"].(string)

	a.sim.RejectReason = ""
	resp = a.do(t, http.MethodPost, "/payments/retry/"+orderID, nil, nil)
	utils.AssertResponse(t, resp, http.StatusOK, "Payment retry initiated successfully")
	assert.NotEmpty(t, resp.Data()["retryPaymentId"])
	assert.Contains(t, resp.Data()["link"], "/payments/simulate/")

	resp = a.do(t, http.MethodPost, "/payments/retry/"+orderID, nil, nil)
	utils.AssertResponse(t, resp, http.StatusConflict, "A payment attempt is already in progress for this order")

	resp = a.do(t, http.MethodPost, "/payments/retry/missing", nil, nil)
	utils.AssertResponse(t, resp, http.StatusNotFound, "Order not found")

	resp = a.do(t, http.MethodGet, fmt.Sprintf("/orders/%s/payments/chain", orderID), nil, nil)
	utils.AssertResponse(t, resp, http.StatusOK, "")
	attempts := resp.Data()["attempts"].([]interface{})
	require.Len(t, attempts, 2)
	root := attempts[0].(map[string]interface{})
	retry := attempts[1].(map[string]interface{})
	assert.Equal(t, "FAILED", root["status"])
	assert.Equal(t, root["id"], retry["retry_of_payment_id"])
	assert.Equal(t, "PENDING", resp.Data()["payment_status"])
}

// hangingGateway accepts nothing until the caller gives up.
type hangingGateway struct {
	*gateway.Simulator
}

func (h hangingGateway) Initiate(ctx context.Context, _ gateway.InitiateRequest) (gateway.InitiateResult, error) {
	<-ctx.Done()
	return gateway.InitiateResult{}, ctx.Err()
}

func TestGatewayTimeoutIsRetryableClientError(t *testing.T) {
	svc := payments.NewService(repository.NewMemoryStore(),
		hangingGateway{gateway.NewSimulator("http://shop.test", callbackSecret)},
		payments.WithGatewayTimeout(20*time.Millisecond))
	router := routes.SetupRouter(svc, jwtSecret)

	resp := utils.MakeTestRequest(t, router, utils.TestRequest{Method: http.MethodPost, Path: "/orders/checkout", Body: checkoutBody()})

	utils.AssertResponse(t, resp, http.StatusFailedDependency, "Payment gateway did not respond in time")
	assert.Equal(t, "GatewayTimeout", resp.Data()["error_kind"])
	assert.Equal(t, true, resp.Data()["retryable"])
	assert.NotEmpty(t, resp.Data()["order_id"])
	assert.NotEmpty(t, resp.Data()["payment_id"])
}

func TestSimulateEndpoint(t *testing.T) {
	a := newAPI(t)
	orderID := a.checkout(t, nil)
	txRef := a.latestTxRef(t, orderID, nil)

	resp := a.do(t, http.MethodGet, "/payments/simulate/"+txRef+"?outcome=failure", nil, nil)
	utils.AssertResponse(t, resp, http.StatusOK, "Simulated payment processed")

	resp = a.do(t, http.MethodGet, "/orders/"+orderID, nil, nil)
	assert.Equal(t, "FAILED", resp.Data()["payment_status"])

	resp = a.do(t, http.MethodGet, "/payments/simulate/"+txRef+"?outcome=bogus", nil, nil)
	utils.AssertResponse(t, resp, http.StatusBadRequest, "Invalid gateway notification")
}

func TestSimulateRouteOnlyWithSimulatorGateway(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := payments.NewService(store, gateway.NewRazorpay(gateway.RazorpayConfig{WebhookSecret: callbackSecret}))
	router := routes.SetupRouter(svc, jwtSecret)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payments/simulate/JS-20240301-ABCDEF0123456789", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderAccessControl(t *testing.T) {
	a := newAPI(t)
	orderID := a.checkout(t, &customer)

	resp := a.do(t, http.MethodGet, "/orders/"+orderID, nil, &customer)
	utils.AssertResponse(t, resp, http.StatusOK, "")
	assert.Equal(t, customer.UserID, resp.Data()["user_id"])

	resp = a.do(t, http.MethodGet, "/orders/"+orderID, nil, &stranger)
	utils.AssertResponse(t, resp, http.StatusForbidden, "You do not have access to this order")

	resp = a.do(t, http.MethodGet, "/orders/"+orderID, nil, nil)
	utils.AssertResponse(t, resp, http.StatusForbidden, "")

	resp = a.do(t, http.MethodGet, "/orders/"+orderID, nil, &admin)
	utils.AssertResponse(t, resp, http.StatusOK, "")

	resp = utils.MakeTestRequest(t, a.router, utils.TestRequest{
		Method:  http.MethodGet,
		Path:    "/orders/" + orderID,
		Headers: utils.BearerHeader("not-a-token"),
	})
	utils.AssertResponse(t, resp, http.StatusUnauthorized, "Please login for access")

	resp = a.do(t, http.MethodGet, "/orders/missing", nil, &admin)
	utils.AssertResponse(t, resp, http.StatusNotFound, "Order not found")
}

func TestListOrderEndpoints(t *testing.T) {
	a := newAPI(t)
	a.checkout(t, &customer)
	a.checkout(t, &customer)
	a.checkout(t, &stranger)

	resp := a.do(t, http.MethodGet, "/orders", nil, nil)
	utils.AssertResponse(t, resp, http.StatusUnauthorized, "")

	resp = a.do(t, http.MethodGet, "/orders", nil, &customer)
	utils.AssertResponse(t, resp, http.StatusForbidden, "Admin access required")

	resp = a.do(t, http.MethodGet, "/orders?page=1&limit=2", nil, &admin)
	utils.AssertResponse(t, resp, http.StatusOK, "Orders retrieved successfully")
	assert.Len(t, resp.Body["data"], 2)
	pagination := resp.Body["pagination"].(map[string]interface{})
	assert.EqualValues(t, 3, pagination["total"])
	assert.EqualValues(t, 2, pagination["total_pages"])

	resp = a.do(t, http.MethodGet, "/orders/user/"+customer.UserID, nil, &customer)
	utils.AssertResponse(t, resp, http.StatusOK, "Orders retrieved successfully")
	assert.Len(t, resp.Body["data"], 2)

	resp = a.do(t, http.MethodGet, "/orders/user/"+customer.UserID, nil, &stranger)
	utils.AssertResponse(t, resp, http.StatusForbidden, "")

	resp = a.do(t, http.MethodGet, "/orders/user/"+customer.UserID, nil, nil)
	utils.AssertResponse(t, resp, http.StatusUnauthorized, "")
}

func TestAdminUpdateOrderStatusEndpoint(t *testing.T) {
	a := newAPI(t)
	orderID := a.checkout(t, nil)
	path := fmt.Sprintf("/admin/orders/%s/status", orderID)

	resp := a.do(t, http.MethodPatch, path, map[string]string{"status": "cancelled"}, &customer)
	utils.AssertResponse(t, resp, http.StatusForbidden, "Admin access required")

	resp = a.do(t, http.MethodPatch, path, map[string]string{"status": "cancelled"}, &admin)
	utils.AssertResponse(t, resp, http.StatusConflict, "Order status change not allowed")

	resp = a.do(t, http.MethodPatch, path, map[string]string{}, &admin)
	utils.AssertResponse(t, resp, http.StatusBadRequest, "Status is required")

	txRef := a.latestTxRef(t, orderID, nil)
	utils.AssertResponse(t, a.callback(t, txRef, "FAILED"), http.StatusOK, "")

	resp = a.do(t, http.MethodPatch, path, map[string]string{"status": "cancelled"}, &admin)
	utils.AssertResponse(t, resp, http.StatusOK, "Order status updated successfully")
	assert.Equal(t, "CANCELLED", resp.Data()["status"])
	assert.Equal(t, "FAILED", resp.Data()["payment_status"])

	resp = a.do(t, http.MethodPost, "/payments/retry/"+orderID, nil, nil)
	utils.AssertResponse(t, resp, http.StatusConflict, "Order cannot accept a payment attempt")
}
