package mabinogi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrFatal 需要终止整次运行的错误（凭证无效、参数无效达到阈值、配额耗尽）
	ErrFatal = errors.New("致命错误")
	// ErrRetriesExhausted 瞬时错误重试用尽且没有可用的旧快照
	ErrRetriesExhausted = errors.New("重试次数已用尽")
)

// ErrorClass 错误分类
type ErrorClass int

const (
	ClassTransient ErrorClass = iota + 1 // 可重试：5xx、429、维护、限流
	ClassFatal                           // 凭证/参数错误，连续达到阈值后终止运行
	ClassPermanent                       // 其它 4xx 或响应无法解析，仅影响当前分类
)

func (c ErrorClass) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassFatal:
		return "fatal"
	case ClassPermanent:
		return "permanent"
	}
	return "unknown"
}

// Nexon Open API 错误码
const (
	CodeServerError     = "OPENAPI00001"
	CodeUnauthorized    = "OPENAPI00002"
	CodeInvalidID       = "OPENAPI00003"
	CodeInvalidParam    = "OPENAPI00004"
	CodeInvalidAPIKey   = "OPENAPI00005"
	CodeRateLimited     = "OPENAPI00007"
	CodeDataPreparing   = "OPENAPI00009"
	CodeGameMaintenance = "OPENAPI00010"
	CodeAPIMaintenance  = "OPENAPI00011"
)

var codeClasses = map[string]ErrorClass{
	CodeServerError:     ClassTransient,
	CodeRateLimited:     ClassTransient,
	CodeDataPreparing:   ClassTransient,
	CodeGameMaintenance: ClassTransient,
	CodeAPIMaintenance:  ClassTransient,
	CodeUnauthorized:    ClassFatal,
	CodeInvalidAPIKey:   ClassFatal,
	CodeInvalidID:       ClassFatal,
	CodeInvalidParam:    ClassFatal,
}

// APIError 单次调用失败的详情
type APIError struct {
	Status  int // HTTP 状态码，传输层错误时为 0
	Code    string
	Message string
	Class   ErrorClass
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("拍卖行接口错误(status=%d, code=%s, class=%s): %s", e.Status, e.Code, e.Class, e.Message)
	}
	return fmt.Sprintf("拍卖行接口错误(status=%d, class=%s): %s", e.Status, e.Class, e.Message)
}

// FatalError 终止运行的错误，errors.Is(err, ErrFatal) 为 true
type FatalError struct {
	Cause error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%v: %v", ErrFatal, e.Cause)
}

func (e *FatalError) Unwrap() []error {
	return []error{ErrFatal, e.Cause}
}

// IsFatal 判断错误是否需要终止运行
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// ClassifyResponse 根据状态码和错误响应体对失败响应分类
// 错误码优先于状态码
func ClassifyResponse(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}

	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Name != "" {
		apiErr.Code = er.Error.Name
		if er.Error.Message != "" {
			apiErr.Message = er.Error.Message
		}
		if class, ok := codeClasses[apiErr.Code]; ok {
			apiErr.Class = class
			return apiErr
		}
	}

	switch {
	case status >= 500, status == http.StatusTooManyRequests:
		apiErr.Class = ClassTransient
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		apiErr.Class = ClassFatal
	default:
		apiErr.Class = ClassPermanent
	}
	return apiErr
}
