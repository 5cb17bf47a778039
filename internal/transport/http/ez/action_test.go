package ez

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	resp "go-gin-shop-api/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type deliverIn struct {
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject" binding:"required"`
}

func serve(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, resp.Body) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var b resp.Body
	_ = json.Unmarshal(w.Body.Bytes(), &b)
	return w, b
}

func newEngine(l *zap.Logger, handler func(*gin.Context, *deliverIn) (resp.Body, error)) *gin.Engine {
	r := gin.New()
	RegisterAction(r, l, Action[deliverIn]{
		Method:  http.MethodPost,
		Path:    "/deliver",
		Binder:  BindJSON,
		Status:  http.StatusCreated,
		Invalid: "Missing required fields",
		Handler: handler,
	})
	return r
}

func TestRegisterAction_Success(t *testing.T) {
	r := newEngine(zap.NewNop(), func(_ *gin.Context, in *deliverIn) (resp.Body, error) {
		return resp.OK("sent", gin.H{"to": in.To}), nil
	})
	w, b := serve(r, http.MethodPost, "/deliver", `{"to":"a@x.com","subject":"hi"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "sent", b.Message)
	assert.Equal(t, map[string]any{"to": "a@x.com"}, b.Data)
}

func TestRegisterAction_ValidationDetails(t *testing.T) {
	r := newEngine(zap.NewNop(), func(*gin.Context, *deliverIn) (resp.Body, error) {
		t.Fatal("handler must not run")
		return resp.Body{}, nil
	})

	for _, body := range []string{`{"to":"a@x.com"}`, ``} {
		w, b := serve(r, http.MethodPost, "/deliver", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing required fields", b.Message)
		assert.Equal(t, "Bad Request", b.Error)
		assert.Equal(t, "required", b.Details["subject"])
	}
}

func TestRegisterAction_Malformed(t *testing.T) {
	r := newEngine(zap.NewNop(), func(*gin.Context, *deliverIn) (resp.Body, error) { return resp.Body{}, nil })
	w, b := serve(r, http.MethodPost, "/deliver", `{"to":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, MsgInvalidPayload, b.Message)
}

func TestRegisterAction_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
		kind   string
	}{
		{"conflict", Conflict("taken"), http.StatusConflict, "taken", "Conflict"},
		{"not found", NotFound("gone"), http.StatusNotFound, "gone", "Not Found"},
		{"custom kind", &AErr{Code: 401, Msg: "Invalid token.", Kind: "check the token"}, 401, "Invalid token.", "check the token"},
		{"internal", Internal("Error creating user.", errors.New("db down")), 500, "Error creating user.", "Internal Server Error"},
		{"untyped", errors.New("boom"), 500, "Internal server error.", "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.ErrorLevel)
			r := newEngine(zap.New(core), func(*gin.Context, *deliverIn) (resp.Body, error) { return resp.Body{}, tc.err })

			w, b := serve(r, http.MethodPost, "/deliver", `{"to":"a","subject":"b"}`)
			require.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.msg, b.Message)
			assert.Equal(t, tc.kind, b.Error)
			assert.Equal(t, tc.status >= 500, logs.Len() == 1)
			assert.NotContains(t, w.Body.String(), "db down")
		})
	}
}

func TestAErr_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	assert.ErrorIs(t, Internal("x", cause), cause)
	assert.Equal(t, "x", Internal("x", cause).Error())
	assert.Equal(t, "cause", (&AErr{Err: cause}).Error())
}
