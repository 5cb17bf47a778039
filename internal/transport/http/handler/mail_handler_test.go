package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"go-gin-shop-api/internal/core/mailer"
)

func TestMailHandler_Deliver(t *testing.T) {
	s := new(MockSender)
	s.On("Send", mock.Anything, mailer.Message{To: "a@x.com", Subject: "Hi", HTML: "<p>hi</p>"}).Return(nil).Once()

	w, b := do(t, engine(NewMailHandler(s, zap.NewNop())),
		jsonReq(http.MethodPost, "/api/deliver", `{"to":"a@x.com","subject":"Hi","html":"<p>hi</p>"}`))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Email sent successfully", b.Message)
	s.AssertExpectations(t)
}

func TestMailHandler_MissingFields(t *testing.T) {
	s := new(MockSender)
	w, b := do(t, engine(NewMailHandler(s, zap.NewNop())),
		jsonReq(http.MethodPost, "/api/deliver", `{"to":"a@x.com","subject":"Hi"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields", b.Message)
	s.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestMailHandler_SendFails(t *testing.T) {
	for _, err := range []error{errors.New("dial tcp: refused"), mailer.ErrNoSender} {
		s := new(MockSender)
		s.On("Send", mock.Anything, mock.Anything).Return(err)

		w, b := do(t, engine(NewMailHandler(s, zap.NewNop())),
			jsonReq(http.MethodPost, "/api/deliver", `{"to":"a@x.com","subject":"Hi","html":"x"}`))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to send email", b.Message)
	}
}
