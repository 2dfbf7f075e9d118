package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deptsurvey/services"
	"deptsurvey/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("bad: %w", services.ErrValidation), http.StatusBadRequest, "validation_error"},
		{fmt.Errorf("who: %w", services.ErrUnauthenticated), http.StatusUnauthorized, "unauthenticated"},
		{fmt.Errorf("own: %w", services.ErrSelfRating), http.StatusForbidden, "self_rating"},
		{fmt.Errorf("no: %w", services.ErrForbidden), http.StatusForbidden, "forbidden"},
		{fmt.Errorf("gone: %w", services.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("again: %w", services.ErrDuplicateSubmission), http.StatusConflict, "already_submitted"},
		{fmt.Errorf("taken: %w", services.ErrConflict), http.StatusConflict, "conflict"},
		{services.NewError(services.ErrSelfRating, "own department"), http.StatusForbidden, "self_rating"},
		{services.NewError(services.ErrNotFound, "survey %d not found", 4), http.StatusNotFound, "not_found"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, code := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestRespondError_HidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, utils.NewDiscardLogger(), errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal server error","error":"internal_error"}`, rec.Body.String())
}

func TestRespondError_DetailIsMessageOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, utils.NewDiscardLogger(), services.NewError(services.ErrValidation, "expected %d answers, got %d", 3, 2))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"expected 3 answers, got 2","error":"validation_error"}`, rec.Body.String())
}

func TestIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	for path, want := range map[string]int{
		"/items/42":  http.StatusOK,
		"/items/0":   http.StatusBadRequest,
		"/items/-1":  http.StatusBadRequest,
		"/items/abc": http.StatusBadRequest,
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}
}

func TestRequestID_ReusesValidHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "3f1c1d7e-8a64-4c4b-9a43-0a3c1f0e9b11")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "3f1c1d7e-8a64-4c4b-9a43-0a3c1f0e9b11", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "<script>")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.NotEqual(t, "<script>", rec.Body.String())
	assert.Equal(t, rec.Body.String(), rec.Header().Get(requestIDHeader))
}

func TestQueryDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(QueryDeadline(time.Minute))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"deadline":true}`, rec.Body.String())
}
