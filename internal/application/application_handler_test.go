package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-tams/internal/application"
	applicationerrors "go-tams/internal/application/errors"

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

type fakeApplicationService struct {
	submitFn        func(ctx context.Context, applicantID string, req application.SubmitApplicationRequest) (application.ApplicationResponse, error)
	getMineFn       func(ctx context.Context, applicantID string) ([]application.ApplicationResponse, error)
	getByPositionFn func(ctx context.Context, facultyID, positionID string) ([]application.ApplicationResponse, error)
	startReviewFn   func(ctx context.Context, reviewerID, id string) (application.ApplicationResponse, error)
	reviewFn        func(ctx context.Context, reviewerID, id string, req application.ReviewApplicationRequest) (application.ApplicationResponse, error)
	revokeFn        func(ctx context.Context, reviewerID, id string) (application.ApplicationResponse, error)
}

func (f *fakeApplicationService) Submit(ctx context.Context, applicantID string, req application.SubmitApplicationRequest) (application.ApplicationResponse, error) {
	return f.submitFn(ctx, applicantID, req)
}
func (f *fakeApplicationService) GetMine(ctx context.Context, applicantID string) ([]application.ApplicationResponse, error) {
	return f.getMineFn(ctx, applicantID)
}
func (f *fakeApplicationService) GetByPosition(ctx context.Context, facultyID, positionID string) ([]application.ApplicationResponse, error) {
	return f.getByPositionFn(ctx, facultyID, positionID)
}
func (f *fakeApplicationService) StartReview(ctx context.Context, reviewerID, id string) (application.ApplicationResponse, error) {
	return f.startReviewFn(ctx, reviewerID, id)
}
func (f *fakeApplicationService) Review(ctx context.Context, reviewerID, id string, req application.ReviewApplicationRequest) (application.ApplicationResponse, error) {
	return f.reviewFn(ctx, reviewerID, id, req)
}
func (f *fakeApplicationService) Revoke(ctx context.Context, reviewerID, id string) (application.ApplicationResponse, error) {
	return f.revokeFn(ctx, reviewerID, id)
}

func TestApplicationHandler_Submit(t *testing.T) {
	resume := strings.Repeat("Teaching experience. ", 5)

	t.Run("success", func(t *testing.T) {
		applicantID := uuid.New().String()
		positionID := uuid.New().String()

		svc := &fakeApplicationService{
			submitFn: func(ctx context.Context, aid string, req application.SubmitApplicationRequest) (application.ApplicationResponse, error) {
				assert.Equal(t, applicantID, aid)
				assert.Equal(t, positionID, req.PositionID)
				return application.ApplicationResponse{
					ID:          uuid.New().String(),
					PositionID:  req.PositionID,
					ApplicantID: aid,
					Status:      application.StatusSubmitted,
				}, nil
			},
		}

		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"position_id":"` + positionID + `","resume_text":"` + resume + `"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("user_id", applicantID)

		h.Submit(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got application.ApplicationResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Equal(t, positionID, got.PositionID)
		assert.Equal(t, application.StatusSubmitted, got.Status)
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := application.NewHandler(&fakeApplicationService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Submit(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("negative duplicate returns conflict", func(t *testing.T) {
		svc := &fakeApplicationService{
			submitFn: func(ctx context.Context, applicantID string, req application.SubmitApplicationRequest) (application.ApplicationResponse, error) {
				return application.ApplicationResponse{}, applicationerrors.ErrDuplicateApplication
			},
		}
		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"position_id":"` + uuid.New().String() + `","resume_text":"` + resume + `"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("user_id", uuid.New().String())

		h.Submit(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "CONFLICT", env.Error.Code)
		assert.Equal(t, "an application for this position already exists", env.Error.Message)
	})

	t.Run("negative service error", func(t *testing.T) {
		svc := &fakeApplicationService{
			submitFn: func(ctx context.Context, applicantID string, req application.SubmitApplicationRequest) (application.ApplicationResponse, error) {
				return application.ApplicationResponse{}, errors.New("db down")
			},
		}
		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"position_id":"` + uuid.New().String() + `","resume_text":"` + resume + `"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("user_id", uuid.New().String())

		h.Submit(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	})
}

func TestApplicationHandler_Review(t *testing.T) {
	t.Run("accept success", func(t *testing.T) {
		reviewerID := uuid.New().String()
		applicationID := uuid.New().String()

		svc := &fakeApplicationService{
			reviewFn: func(ctx context.Context, rid, id string, req application.ReviewApplicationRequest) (application.ApplicationResponse, error) {
				assert.Equal(t, reviewerID, rid)
				assert.Equal(t, applicationID, id)
				assert.Equal(t, application.ActionAccept, req.Action)
				return application.ApplicationResponse{ID: id, Status: application.StatusAccepted}, nil
			},
		}
		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/applications/"+applicationID+"/review", strings.NewReader(`{"action":"accept"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "id", Value: applicationID}}
		c.Set("user_id", reviewerID)

		h.Review(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got application.ApplicationResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Equal(t, application.StatusAccepted, got.Status)
	})

	t.Run("negative invalid action rejected by binding", func(t *testing.T) {
		h := application.NewHandler(&fakeApplicationService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/applications/"+uuid.New().String()+"/review", strings.NewReader(`{"action":"maybe"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "id", Value: uuid.New().String()}}
		c.Set("user_id", uuid.New().String())

		h.Review(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("negative non-owner forbidden", func(t *testing.T) {
		svc := &fakeApplicationService{
			reviewFn: func(ctx context.Context, reviewerID, id string, req application.ReviewApplicationRequest) (application.ApplicationResponse, error) {
				return application.ApplicationResponse{}, applicationerrors.ErrNotReviewer
			},
		}
		h := application.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/applications/"+uuid.New().String()+"/review", strings.NewReader(`{"action":"reject"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "id", Value: uuid.New().String()}}
		c.Set("user_id", uuid.New().String())

		h.Review(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})
}

func TestApplicationHandler_GetMine(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		applicantID := uuid.New().String()
		svc := &fakeApplicationService{
			getMineFn: func(ctx context.Context, aid string) ([]application.ApplicationResponse, error) {
				assert.Equal(t, applicantID, aid)
				return []application.ApplicationResponse{
					{ID: uuid.New().String(), ApplicantID: aid, Status: application.StatusReviewing},
				}, nil
			},
		}

		h := application.NewHandler(svc)
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set("user_id", applicantID)
			c.Next()
		})
		r.GET("/applications/mine", h.GetMine)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/applications/mine", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got []application.ApplicationResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, application.StatusReviewing, got[0].Status)
	})
}
