package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinyngg/account/shared/apperror"
	"github.com/jinyngg/account/shared/cqrs"
	"github.com/jinyngg/account/shared/models"
)

// ---- mock implementations ----

type mockAccountCommander struct {
	createFn func(cqrs.CreateAccountCommand) (*models.Account, error)
	deleteFn func(cqrs.DeleteAccountCommand) (*models.Account, error)
}

func (m *mockAccountCommander) CreateAccount(_ context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockAccountCommander) DeleteAccount(_ context.Context, cmd cqrs.DeleteAccountCommand) (*models.Account, error) {
	if m.deleteFn != nil {
		return m.deleteFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockAccountQuerier struct {
	getFn  func(cqrs.GetAccountQuery) (*models.AccountView, error)
	listFn func(cqrs.ListAccountsQuery) ([]models.AccountView, error)
}

func (m *mockAccountQuerier) GetAccount(_ context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockAccountQuerier) ListAccounts(_ context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func fakeAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	}
}

func newAccountTestRouter(cmds AccountCommander, qrys AccountQuerier, authUserID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuth(authUserID))
	h := NewAccountHandler(cmds, qrys)
	r.POST("/account", h.CreateAccount)
	r.DELETE("/account", h.DeleteAccount)
	r.GET("/account", h.ListAccounts)
	r.GET("/account/:id", h.GetAccount)
	return r
}

func doRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		ErrorCode string `json:"errorCode"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.ErrorCode
}

// ---- test data ----

var aTestUser = models.AccountUser{ID: 12, Name: "Pobi"}

var aTestAccount = &models.Account{
	ID: 1, AccountNumber: "1000000012", AccountUser: aTestUser,
	Status: models.AccountStatusInUse, Balance: 10000,
	RegisteredAt: time.Now(), CreatedAt: time.Now(), UpdatedAt: time.Now(),
}

var aTestAccountView = &models.AccountView{
	ID: 1, AccountNumber: "1000000012", UserID: 12,
	Status: models.AccountStatusInUse, Balance: 10000, RegisteredAt: time.Now(),
}

// ---- tests ----

func TestCreateAccount(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(cqrs.CreateAccountCommand) (*models.Account, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "success - open account",
			body: map[string]interface{}{"initialBalance": 10000},
			createFn: func(cmd cqrs.CreateAccountCommand) (*models.Account, error) {
				if cmd.UserID != 12 || cmd.InitialBalance != 10000 {
					return nil, fmt.Errorf("unexpected command %+v", cmd)
				}
				return aTestAccount, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - initial balance below minimum",
			body:           map[string]interface{}{"initialBalance": 50},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - malformed body",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unprocessable - too many accounts",
			body: map[string]interface{}{"initialBalance": 10000},
			createFn: func(cmd cqrs.CreateAccountCommand) (*models.Account, error) {
				return nil, apperror.New(apperror.MaxAccountPerUser)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "MAX_ACCOUNT_PER_USER_10",
		},
		{
			name: "not found - user does not exist",
			body: map[string]interface{}{"initialBalance": 10000},
			createFn: func(cmd cqrs.CreateAccountCommand) (*models.Account, error) {
				return nil, apperror.New(apperror.UserNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "USER_NOT_FOUND",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockAccountCommander{createFn: tt.createFn}
			router := newAccountTestRouter(cmds, &mockAccountQuerier{}, 12)
			w := doRequest(router, http.MethodPost, "/account", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedCode != "" && errorCodeOf(t, w) != tt.expectedCode {
				t.Errorf("[%s] expected error code %s; body: %s", tt.name, tt.expectedCode, w.Body.String())
			}
		})
	}
}

func TestDeleteAccount(t *testing.T) {
	unregisteredAt := time.Now()
	unregistered := *aTestAccount
	unregistered.Status = models.AccountStatusUnregistered
	unregistered.UnregisteredAt = &unregisteredAt

	tests := []struct {
		name           string
		body           interface{}
		deleteFn       func(cqrs.DeleteAccountCommand) (*models.Account, error)
		expectedStatus int
	}{
		{
			name:           "success - unregister own account",
			body:           map[string]interface{}{"accountNumber": "1000000012"},
			deleteFn:       func(cmd cqrs.DeleteAccountCommand) (*models.Account, error) { return &unregistered, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - malformed account number",
			body:           map[string]interface{}{"accountNumber": "12-34"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "forbidden - another user's account",
			body: map[string]interface{}{"accountNumber": "1000000012"},
			deleteFn: func(cmd cqrs.DeleteAccountCommand) (*models.Account, error) {
				return nil, apperror.New(apperror.UserAccountUnMatch)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "unprocessable - balance left",
			body: map[string]interface{}{"accountNumber": "1000000012"},
			deleteFn: func(cmd cqrs.DeleteAccountCommand) (*models.Account, error) {
				return nil, apperror.New(apperror.BalanceNotEmpty)
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "service unavailable - account busy",
			body: map[string]interface{}{"accountNumber": "1000000012"},
			deleteFn: func(cmd cqrs.DeleteAccountCommand) (*models.Account, error) {
				return nil, apperror.New(apperror.LockUnavailable)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockAccountCommander{deleteFn: tt.deleteFn}
			router := newAccountTestRouter(cmds, &mockAccountQuerier{}, 12)
			w := doRequest(router, http.MethodDelete, "/account", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListAccounts(t *testing.T) {
	listFn := func(q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
		return []models.AccountView{*aTestAccountView}, nil
	}

	tests := []struct {
		name           string
		url            string
		expectedStatus int
	}{
		{name: "success - implicit caller", url: "/account", expectedStatus: http.StatusOK},
		{name: "success - explicit caller", url: "/account?user_id=12", expectedStatus: http.StatusOK},
		{name: "forbidden - another user", url: "/account?user_id=13", expectedStatus: http.StatusForbidden},
		{name: "bad request - non-numeric user", url: "/account?user_id=pobi", expectedStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockAccountCommander{}, &mockAccountQuerier{listFn: listFn}, 12)
			w := doRequest(router, http.MethodGet, tt.url, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetAccount(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		getFn          func(cqrs.GetAccountQuery) (*models.AccountView, error)
		expectedStatus int
	}{
		{
			name:           "success - fetch own account",
			id:             "1",
			getFn:          func(q cqrs.GetAccountQuery) (*models.AccountView, error) { return aTestAccountView, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name: "forbidden - another user's account",
			id:   "2",
			getFn: func(q cqrs.GetAccountQuery) (*models.AccountView, error) {
				return nil, apperror.New(apperror.UserAccountUnMatch)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "not found - account does not exist",
			id:   "3",
			getFn: func(q cqrs.GetAccountQuery) (*models.AccountView, error) {
				return nil, apperror.New(apperror.AccountNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - non-numeric id",
			id:             "abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "internal error - storage failure",
			id:   "1",
			getFn: func(q cqrs.GetAccountQuery) (*models.AccountView, error) {
				return nil, fmt.Errorf("failed to get account: connection refused")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockAccountCommander{}, &mockAccountQuerier{getFn: tt.getFn}, 12)
			w := doRequest(router, http.MethodGet, "/account/"+tt.id, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if strings.Contains(w.Body.String(), "connection refused") {
				t.Errorf("[%s] storage error leaked: %s", tt.name, w.Body.String())
			}
		})
	}
}
