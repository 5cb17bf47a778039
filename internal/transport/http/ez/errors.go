package ez

import "net/http"

// AErr 统一错误对象：Code 为 HTTP 状态码，Kind 覆盖 body 里的 error 字段
type AErr struct {
	Code    int
	Msg     string
	Kind    string
	Err     error
	Details map[string]string
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: http.StatusUnauthorized, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func Conflict(msg string) error     { return &AErr{Code: http.StatusConflict, Msg: msg} }
func TooLarge(msg string) error     { return &AErr{Code: http.StatusRequestEntityTooLarge, Msg: msg} }

func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}
