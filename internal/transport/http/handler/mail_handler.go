package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-shop-api/internal/core/mailer"
	"go-gin-shop-api/internal/transport/http/ez"
	resp "go-gin-shop-api/internal/transport/http/response"
)

type MailHandler struct {
	sender mailer.Sender
	log    *zap.Logger
}

func NewMailHandler(s mailer.Sender, l *zap.Logger) *MailHandler {
	return &MailHandler{sender: s, log: l}
}

func (h *MailHandler) Priority() int { return 30 }

func (h *MailHandler) MountAPI(_, authed *gin.RouterGroup) {
	ez.RegisterAction(authed, h.log, ez.Action[deliverIn]{
		Method:  http.MethodPost,
		Path:    "/deliver",
		Binder:  ez.BindJSON,
		Invalid: "Missing required fields",
		Handler: h.deliver,
	})
}

type deliverIn struct {
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	HTML    string `json:"html" binding:"required"`
}

func (h *MailHandler) deliver(c *gin.Context, in *deliverIn) (resp.Body, error) {
	err := h.sender.Send(c.Request.Context(), mailer.Message{To: in.To, Subject: in.Subject, HTML: in.HTML})
	if err != nil {
		if errors.Is(err, mailer.ErrNoSender) {
			h.log.Warn("mail.username is not configured")
		}
		return resp.Body{}, ez.Internal("Failed to send email", err)
	}
	return resp.OK("Email sent successfully", nil), nil
}
