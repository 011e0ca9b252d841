package leaverequest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-erp/internal/leaverequest"
	leaverequesterrors "go-erp/internal/leaverequest/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
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

type fakeLeaveRequestService struct {
	createFn       func(ctx context.Context, companyID, actorID, actorRole string, req leaverequest.CreateLeaveRequestRequest) (*leaverequest.LeaveRequestResponse, error)
	recordActionFn func(ctx context.Context, companyID, actorID, actorRole, id string, req leaverequest.ApproverActionRequest) (*leaverequest.LeaveRequestResponse, error)
	cancelFn       func(ctx context.Context, companyID, actorID, actorRole, id string) (*leaverequest.LeaveRequestResponse, error)
	addCommentFn   func(ctx context.Context, companyID, actorID, actorRole, id string, req leaverequest.AddCommentRequest) (*leaverequest.RequestCommentResponse, error)
	getAllFn       func(ctx context.Context, companyID string, filter leaverequest.ListFilter) ([]leaverequest.LeaveRequestResponse, int64, error)
	getByIDFn      func(ctx context.Context, companyID, id string) (*leaverequest.LeaveRequestResponse, error)
	deleteFn       func(ctx context.Context, companyID, id string) error
}

func (f *fakeLeaveRequestService) Create(ctx context.Context, companyID, actorID, actorRole string, req leaverequest.CreateLeaveRequestRequest) (*leaverequest.LeaveRequestResponse, error) {
	return f.createFn(ctx, companyID, actorID, actorRole, req)
}
func (f *fakeLeaveRequestService) RecordAction(ctx context.Context, companyID, actorID, actorRole, id string, req leaverequest.ApproverActionRequest) (*leaverequest.LeaveRequestResponse, error) {
	return f.recordActionFn(ctx, companyID, actorID, actorRole, id, req)
}
func (f *fakeLeaveRequestService) Cancel(ctx context.Context, companyID, actorID, actorRole, id string) (*leaverequest.LeaveRequestResponse, error) {
	return f.cancelFn(ctx, companyID, actorID, actorRole, id)
}
func (f *fakeLeaveRequestService) AddComment(ctx context.Context, companyID, actorID, actorRole, id string, req leaverequest.AddCommentRequest) (*leaverequest.RequestCommentResponse, error) {
	return f.addCommentFn(ctx, companyID, actorID, actorRole, id, req)
}
func (f *fakeLeaveRequestService) GetAll(ctx context.Context, companyID string, filter leaverequest.ListFilter) ([]leaverequest.LeaveRequestResponse, int64, error) {
	return f.getAllFn(ctx, companyID, filter)
}
func (f *fakeLeaveRequestService) GetByID(ctx context.Context, companyID, id string) (*leaverequest.LeaveRequestResponse, error) {
	return f.getByIDFn(ctx, companyID, id)
}
func (f *fakeLeaveRequestService) Delete(ctx context.Context, companyID, id string) error {
	return f.deleteFn(ctx, companyID, id)
}

func TestLeaveRequestHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()
		actorID := uuid.New().String()
		employeeID := uuid.New().String()
		leaveTypeID := uuid.New().String()

		svc := &fakeLeaveRequestService{
			createFn: func(ctx context.Context, cid, aid, role string, req leaverequest.CreateLeaveRequestRequest) (*leaverequest.LeaveRequestResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, actorID, aid)
				assert.Equal(t, "EMPLOYEE", role)
				assert.Equal(t, employeeID, req.EmployeeID)
				return &leaverequest.LeaveRequestResponse{
					ID:            uuid.New().String(),
					CompanyID:     cid,
					EmployeeID:    req.EmployeeID,
					RequestNumber: "LR-2026-0001",
					LeaveTypeID:   req.LeaveTypeID,
					StartDate:     req.StartDate,
					EndDate:       req.EndDate,
					TotalDays:     "3",
					Status:        leaverequest.StatusPending,
					CurrentLevel:  1,
				}, nil
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employeeId":"` + employeeID + `","leaveTypeId":"` + leaveTypeID + `","startDate":"2026-03-02","endDate":"2026-03-04","reason":"Family event"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", companyID)
		c.Set("employee_id", actorID)
		c.Set("role", "EMPLOYEE")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leaverequest.LeaveRequestResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Equal(t, "LR-2026-0001", got.RequestNumber)
		assert.Equal(t, leaverequest.StatusPending, got.Status)
		assert.Equal(t, "3", got.TotalDays)
	})

	t.Run("success stores the response for replay and releases the lock", func(t *testing.T) {
		companyID := uuid.New().String()
		actorID := uuid.New().String()
		employeeID := uuid.New().String()
		leaveTypeID := uuid.New().String()

		resp := &leaverequest.LeaveRequestResponse{
			ID:            uuid.New().String(),
			CompanyID:     companyID,
			EmployeeID:    employeeID,
			RequestNumber: "LR-2026-0007",
			LeaveTypeID:   leaveTypeID,
			StartDate:     "2026-03-02",
			EndDate:       "2026-03-04",
			TotalDays:     "3",
			Status:        leaverequest.StatusPending,
			CurrentLevel:  1,
		}
		svc := &fakeLeaveRequestService{
			createFn: func(ctx context.Context, cid, aid, role string, req leaverequest.CreateLeaveRequestRequest) (*leaverequest.LeaveRequestResponse, error) {
				return resp, nil
			},
		}

		rdb, redisMock := redismock.NewClientMock()
		cacheKey := "idemp:/api/v1/leave-requests:" + actorID + ":retry-1"
		lockKey := cacheKey + ":lock"
		payload, err := json.Marshal(resp)
		assert.NoError(t, err)
		redisMock.ExpectSet(cacheKey, payload, 24*time.Hour).SetVal("OK")
		redisMock.ExpectDel(lockKey).SetVal(1)

		h := leaverequest.NewHandlerWithRedis(svc, rdb)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employeeId":"` + employeeID + `","leaveTypeId":"` + leaveTypeID + `","startDate":"2026-03-02","endDate":"2026-03-04","reason":"Family event"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", companyID)
		c.Set("employee_id", actorID)
		c.Set("role", "EMPLOYEE")
		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", lockKey)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := leaverequest.NewHandler(&fakeLeaveRequestService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("negative overlap conflict", func(t *testing.T) {
		employeeID := uuid.New().String()
		leaveTypeID := uuid.New().String()
		svc := &fakeLeaveRequestService{
			createFn: func(ctx context.Context, cid, aid, role string, req leaverequest.CreateLeaveRequestRequest) (*leaverequest.LeaveRequestResponse, error) {
				return nil, leaverequesterrors.ErrLeaveOverlap
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employeeId":"` + employeeID + `","leaveTypeId":"` + leaveTypeID + `","startDate":"2026-03-02","endDate":"2026-03-04","reason":"Family event"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})

	t.Run("negative unexpected error hides details", func(t *testing.T) {
		employeeID := uuid.New().String()
		leaveTypeID := uuid.New().String()
		svc := &fakeLeaveRequestService{
			createFn: func(ctx context.Context, cid, aid, role string, req leaverequest.CreateLeaveRequestRequest) (*leaverequest.LeaveRequestResponse, error) {
				return nil, errors.New("pq: connection refused")
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"employeeId":"` + employeeID + `","leaveTypeId":"` + leaveTypeID + `","startDate":"2026-03-02","endDate":"2026-03-04","reason":"Family event"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
		assert.Equal(t, "An unexpected error occurred", env.Error.Message)
	})
}

func TestLeaveRequestHandler_GetAll(t *testing.T) {
	t.Run("success forwards pagination and filters", func(t *testing.T) {
		companyID := uuid.New().String()
		employeeID := uuid.New().String()

		svc := &fakeLeaveRequestService{
			getAllFn: func(ctx context.Context, cid string, filter leaverequest.ListFilter) ([]leaverequest.LeaveRequestResponse, int64, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, employeeID, filter.EmployeeID)
				assert.Equal(t, leaverequest.StatusPending, filter.Status)
				assert.Equal(t, 10, filter.Limit)
				assert.Equal(t, 10, filter.Offset)
				return []leaverequest.LeaveRequestResponse{{RequestNumber: "LR-2026-0001"}}, 11, nil
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet,
			"/leave-requests?page=2&limit=10&employee_id="+employeeID+"&status=PENDING", nil)
		c.Set("company_id", companyID)

		h.GetAll(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("negative service error", func(t *testing.T) {
		svc := &fakeLeaveRequestService{
			getAllFn: func(ctx context.Context, cid string, filter leaverequest.ListFilter) ([]leaverequest.LeaveRequestResponse, int64, error) {
				return nil, 0, errors.New("db down")
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-requests", nil)

		h.GetAll(c)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestLeaveRequestHandler_Action(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()
		approverID := uuid.New().String()
		requestID := uuid.New().String()

		svc := &fakeLeaveRequestService{
			recordActionFn: func(ctx context.Context, cid, aid, role, id string, req leaverequest.ApproverActionRequest) (*leaverequest.LeaveRequestResponse, error) {
				assert.Equal(t, approverID, aid)
				assert.Equal(t, requestID, id)
				assert.Equal(t, leaverequest.StepApproved, req.Action)
				return &leaverequest.LeaveRequestResponse{
					ID:     id,
					Status: leaverequest.StatusApproved,
				}, nil
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPut, "/leave-requests/"+requestID+"/action",
			strings.NewReader(`{"action":"APPROVED"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: requestID}}
		c.Set("company_id", companyID)
		c.Set("employee_id", approverID)
		c.Set("role", "MANAGER")

		h.Action(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("negative invalid action value", func(t *testing.T) {
		h := leaverequest.NewHandler(&fakeLeaveRequestService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPut, "/leave-requests/abc/action",
			strings.NewReader(`{"action":"MAYBE"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Action(c)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative wrong approver", func(t *testing.T) {
		svc := &fakeLeaveRequestService{
			recordActionFn: func(ctx context.Context, cid, aid, role, id string, req leaverequest.ApproverActionRequest) (*leaverequest.LeaveRequestResponse, error) {
				return nil, leaverequesterrors.ErrNotCurrentApprover
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPut, "/leave-requests/abc/action",
			strings.NewReader(`{"action":"APPROVED"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Action(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})
}

func TestLeaveRequestHandler_Cancel(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		requestID := uuid.New().String()
		svc := &fakeLeaveRequestService{
			cancelFn: func(ctx context.Context, cid, aid, role, id string) (*leaverequest.LeaveRequestResponse, error) {
				assert.Equal(t, requestID, id)
				return &leaverequest.LeaveRequestResponse{ID: id, Status: leaverequest.StatusCancelled}, nil
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/"+requestID+"/cancel", nil)
		c.Params = gin.Params{{Key: "id", Value: requestID}}

		h.Cancel(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("negative not owner", func(t *testing.T) {
		svc := &fakeLeaveRequestService{
			cancelFn: func(ctx context.Context, cid, aid, role, id string) (*leaverequest.LeaveRequestResponse, error) {
				return nil, leaverequesterrors.ErrNotRequestOwner
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/abc/cancel", nil)

		h.Cancel(c)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestLeaveRequestHandler_AddComment(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		requestID := uuid.New().String()
		svc := &fakeLeaveRequestService{
			addCommentFn: func(ctx context.Context, cid, aid, role, id string, req leaverequest.AddCommentRequest) (*leaverequest.RequestCommentResponse, error) {
				assert.Equal(t, "please expedite", req.Message)
				return &leaverequest.RequestCommentResponse{
					ID:      uuid.New().String(),
					Message: req.Message,
				}, nil
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/"+requestID+"/comments",
			strings.NewReader(`{"message":"please expedite"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: requestID}}

		h.AddComment(c)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("negative empty message", func(t *testing.T) {
		h := leaverequest.NewHandler(&fakeLeaveRequestService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/abc/comments", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.AddComment(c)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLeaveRequestHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		requestID := uuid.New().String()
		svc := &fakeLeaveRequestService{
			deleteFn: func(ctx context.Context, cid, id string) error {
				assert.Equal(t, requestID, id)
				return nil
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/leave-requests/"+requestID, nil)
		c.Params = gin.Params{{Key: "id", Value: requestID}}

		h.Delete(c)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative still pending", func(t *testing.T) {
		svc := &fakeLeaveRequestService{
			deleteFn: func(ctx context.Context, cid, id string) error {
				return leaverequesterrors.ErrDeleteNotAllowed
			},
		}

		h := leaverequest.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/leave-requests/abc", nil)

		h.Delete(c)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
