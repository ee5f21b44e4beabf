package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	coinmodel "novelhub-backend/internal/domains/coin/model"
	"novelhub-backend/internal/domains/subscription/model"
	"novelhub-backend/internal/domains/subscription/service"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/middleware"
)

type stubService struct {
	service.ServiceInterface
	err error
}

func (s stubService) Subscribe(context.Context, shared.Actor, uuid.UUID) (*model.Subscription, error) {
	return nil, s.err
}

func TestSubscribe_ErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		want int
	}{
		{coinmodel.NewInsufficientCoinsError(1, 30), http.StatusPaymentRequired},
		{model.NewSelfSubscriptionError(), http.StatusBadRequest},
		{model.NewAuthorNotFoundError(), http.StatusNotFound},
	}
	for _, tc := range cases {
		r := gin.New()
		h := NewSubscriptionHandler(stubService{err: tc.err})
		r.POST("/api/subscriptions/:author_id", func(c *gin.Context) {
			c.Set(middleware.CtxUserID, uuid.New())
			c.Next()
		}, h.Subscribe)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/subscriptions/"+uuid.NewString(), nil))
		assert.Equal(t, tc.want, w.Code, tc.err.Error())
	}
}
