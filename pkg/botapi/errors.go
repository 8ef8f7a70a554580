package botapi

import (
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// maxErrorBody 错误信息里保留的 body 长度上限
const maxErrorBody = 256

// HTTPError 非 2xx 应答
type HTTPError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: http %d", e.Method, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: http %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

func newHTTPError(method, endpoint string, resp *resty.Response) error {
	body := strings.TrimSpace(string(resp.Body()))
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return errors.WithStack(&HTTPError{
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode(),
		Body:       body,
	})
}

// isHTTPStatus 判断错误是否为指定状态码的 HTTPError
func isHTTPStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}
