package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/dto"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/http/handlers/testutil"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
)

type mockListAccountsUC struct {
	result *dto.ListAccountsResponse
	err    error
	got    dto.ListAccountsRequest
}

func (m *mockListAccountsUC) Execute(ctx context.Context, req dto.ListAccountsRequest) (*dto.ListAccountsResponse, error) {
	m.got = req
	return m.result, m.err
}

type mockDeleteAccountUC struct {
	err      error
	gotActor string
	gotSID   string
}

func (m *mockDeleteAccountUC) ExecuteBySID(ctx context.Context, actorSID, sid string) error {
	m.gotActor = actorSID
	m.gotSID = sid
	return m.err
}

type listPayload struct {
	Items      []dto.AdminAccountResponse `json:"items"`
	Total      int64                      `json:"total"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"page_size"`
	TotalPages int                        `json:"total_pages"`
}

func TestAccountHandler_List(t *testing.T) {
	mockUC := &mockListAccountsUC{result: &dto.ListAccountsResponse{
		Accounts: []*dto.AdminAccountResponse{
			{AccountResponse: dto.AccountResponse{ID: "acct_a", Email: "a@example.com"}},
			{AccountResponse: dto.AccountResponse{ID: "acct_b", Email: "b@example.com"}, IsSuperuser: true},
		},
		Total:    3,
		Page:     1,
		PageSize: 2,
	}}
	handler := NewAccountHandler(mockUC, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/admin/accounts", nil)
	testutil.SetQueryParams(c, map[string]string{"page_size": "2", "active": "true", "search": "example"})

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, mockUC.got.PageSize)
	assert.Equal(t, 1, mockUC.got.Page)
	assert.Equal(t, "example", mockUC.got.Search)
	require.NotNil(t, mockUC.got.Active)
	assert.True(t, *mockUC.got.Active)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data listPayload
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Len(t, data.Items, 2)
	assert.Equal(t, int64(3), data.Total)
	assert.Equal(t, 2, data.TotalPages)
	assert.True(t, data.Items[1].IsSuperuser)
}

func TestAccountHandler_List_InvalidOrder(t *testing.T) {
	handler := NewAccountHandler(&mockListAccountsUC{}, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/admin/accounts", nil)
	testutil.SetQueryParams(c, map[string]string{"order": "sideways"})

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccountHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockUC := &mockDeleteAccountUC{}
		handler := NewAccountHandler(nil, mockUC, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodDelete, "/api/admin/accounts/acct_target1", nil)
		testutil.SetURLParam(c, "sid", "acct_target1")
		testutil.SetAuthContext(c, "acct_admin1")

		handler.Delete(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "acct_target1", mockUC.gotSID)
		assert.Equal(t, "acct_admin1", mockUC.gotActor)
	})

	t.Run("malformed id", func(t *testing.T) {
		mockUC := &mockDeleteAccountUC{}
		handler := NewAccountHandler(nil, mockUC, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodDelete, "/api/admin/accounts/42", nil)
		testutil.SetURLParam(c, "sid", "42")

		handler.Delete(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, mockUC.gotSID)
	})

	t.Run("not found", func(t *testing.T) {
		handler := NewAccountHandler(nil, &mockDeleteAccountUC{err: errors.NewNotFoundError("account not found")}, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodDelete, "/api/admin/accounts/acct_missing", nil)
		testutil.SetURLParam(c, "sid", "acct_missing")

		handler.Delete(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
