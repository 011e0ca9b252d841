package leavetype_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-erp/internal/leavetype"
	leavetypeerrors "go-erp/internal/leavetype/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeLeaveTypeService struct {
	createFn  func(ctx context.Context, companyID string, req leavetype.CreateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error)
	getAllFn  func(ctx context.Context, companyID string) ([]leavetype.LeaveTypeResponse, error)
	getByIDFn func(ctx context.Context, companyID, id string) (leavetype.LeaveTypeResponse, error)
	updateFn  func(ctx context.Context, companyID, id string, req leavetype.UpdateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error)
	deleteFn  func(ctx context.Context, companyID, id string) error
}

func (f *fakeLeaveTypeService) Create(ctx context.Context, companyID string, req leavetype.CreateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
	return f.createFn(ctx, companyID, req)
}
func (f *fakeLeaveTypeService) GetAll(ctx context.Context, companyID string) ([]leavetype.LeaveTypeResponse, error) {
	return f.getAllFn(ctx, companyID)
}
func (f *fakeLeaveTypeService) GetByID(ctx context.Context, companyID, id string) (leavetype.LeaveTypeResponse, error) {
	return f.getByIDFn(ctx, companyID, id)
}
func (f *fakeLeaveTypeService) Update(ctx context.Context, companyID, id string, req leavetype.UpdateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
	return f.updateFn(ctx, companyID, id, req)
}
func (f *fakeLeaveTypeService) Delete(ctx context.Context, companyID, id string) error {
	return f.deleteFn(ctx, companyID, id)
}

func TestLeaveTypeHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()

		svc := &fakeLeaveTypeService{
			createFn: func(ctx context.Context, cid string, req leavetype.CreateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, "ANNUAL", req.Code)
				return leavetype.LeaveTypeResponse{
					ID:             uuid.New().String(),
					Code:           req.Code,
					Name:           req.Name,
					MaxDaysPerYear: "12",
					IsPaid:         true,
					IsActive:       true,
				}, nil
			},
		}

		h := leavetype.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"name":"Annual Leave","code":"ANNUAL","max_days_per_year":12}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-types", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", companyID)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leavetype.LeaveTypeResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Equal(t, "ANNUAL", got.Code)
	})

	t.Run("negative lowercase code", func(t *testing.T) {
		h := leavetype.NewHandler(&fakeLeaveTypeService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"name":"Annual Leave","code":"annual","max_days_per_year":12}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-types", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("negative duplicate code", func(t *testing.T) {
		svc := &fakeLeaveTypeService{
			createFn: func(ctx context.Context, cid string, req leavetype.CreateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
				return leavetype.LeaveTypeResponse{}, leavetypeerrors.ErrDuplicateCode
			},
		}

		h := leavetype.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"name":"Annual Leave","code":"ANNUAL","max_days_per_year":12}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-types", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})
}

func TestLeaveTypeHandler_Delete(t *testing.T) {
	t.Run("negative type in use", func(t *testing.T) {
		svc := &fakeLeaveTypeService{
			deleteFn: func(ctx context.Context, cid, id string) error {
				return leavetypeerrors.ErrLeaveTypeInUse
			},
		}

		h := leavetype.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/leave-types/abc", nil)
		c.Params = gin.Params{{Key: "id", Value: "abc"}}

		h.Delete(c)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
