package ez

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	resp "go-gin-shop-api/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindForm  Binder = "form" // multipart/form-data，含文件
	BindNone  Binder = "none" // 自己从 c.Param / c.Query 取
)

const (
	MsgInvalidPayload = "Invalid request payload."
	MsgTooLarge       = "Request body too large."
)

// Action 描述一个接口：I 为入参
type Action[I any] struct {
	Method  string // GET | POST | PUT | DELETE
	Path    string
	Binder  Binder
	Status  int    // 成功状态码，默认 200
	Invalid string // 校验失败时的 message，默认 MsgInvalidPayload
	Handler func(c *gin.Context, in *I) (resp.Body, error)
}

func init() {
	// details 里用 json/form 字段名而不是 Go 字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func RegisterAction[I any](g gin.IRoutes, l *zap.Logger, a Action[I]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		var in I
		if err := bind(c, a.Binder, &in, a.Invalid); err != nil {
			Fail(c, l, err)
			return
		}
		body, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, l, err)
			return
		}
		c.JSON(status, body)
	}
	g.Handle(strings.ToUpper(a.Method), a.Path, h)
}

// Fail writes err as an envelope. Errors that are not *AErr become 500s.
func Fail(c *gin.Context, l *zap.Logger, err error) {
	var ae *AErr
	if !errors.As(err, &ae) {
		ae = &AErr{Code: http.StatusInternalServerError, Msg: "Internal server error.", Err: err}
	}
	if ae.Code >= http.StatusInternalServerError {
		l.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", ae.Code),
			zap.Error(ae.Err),
		)
	}
	body := resp.Fail(ae.Code, ae.Msg, ae.Kind)
	body.Details = ae.Details
	c.AbortWithStatusJSON(ae.Code, body)
}

func bind[I any](c *gin.Context, b Binder, in *I, invalidMsg string) error {
	var err error
	switch b {
	case BindJSON:
		err = c.ShouldBindJSON(in)
		if errors.Is(err, io.EOF) {
			// 空 body 按零值处理，仍做校验
			err = binding.Validator.ValidateStruct(in)
		}
	case BindQuery:
		err = c.ShouldBindQuery(in)
	case BindForm:
		err = c.ShouldBindWith(in, binding.FormMultipart)
	default:
		return nil
	}
	if err == nil {
		return nil
	}

	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
		return &AErr{Code: http.StatusRequestEntityTooLarge, Msg: MsgTooLarge, Err: err}
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		if invalidMsg == "" {
			invalidMsg = MsgInvalidPayload
		}
		return &AErr{Code: http.StatusBadRequest, Msg: invalidMsg, Err: err, Details: details(ve)}
	}
	return &AErr{Code: http.StatusBadRequest, Msg: MsgInvalidPayload, Err: err}
}

func details(ve validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[fe.Field()] = rule
	}
	return out
}
