// Package api 封装 fishpi REST 接口
package api

import (
	"errors"
	"strings"
)

// 领域错误，调用方通过 errors.Is 区分失败原因
var (
	// ErrUnauthenticated 未登录或 token 失效，连接前快速失败
	ErrUnauthenticated = errors.New("api: unauthenticated")

	// ErrPacketExhausted 红包已被领完或重复领取，属于正常业务结果
	ErrPacketExhausted = errors.New("api: red packet exhausted")

	// ErrNotEligible 专属红包的接收者不包含当前用户
	ErrNotEligible = errors.New("api: not an eligible receiver")

	// ErrGestureRequired 猜拳红包必须携带手势
	ErrGestureRequired = errors.New("api: gesture required")
)

// Error REST 业务错误，携带服务端返回的原始提示
type Error struct {
	Endpoint string
	Code     int
	Msg      string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Endpoint + ": request failed"
	}
	return e.Endpoint + ": " + e.Msg
}

// Is 将服务端提示映射到领域错误
//
// 服务端只给中文文案，没有稳定的错误码，这里按文案匹配。
func (e *Error) Is(target error) bool {
	switch target {
	case ErrPacketExhausted:
		return strings.Contains(e.Msg, "已被领完") || strings.Contains(e.Msg, "已领取")
	case ErrNotEligible:
		return strings.Contains(e.Msg, "专属") && strings.Contains(e.Msg, "不是")
	case ErrUnauthenticated:
		return e.Code == 401 || strings.Contains(e.Msg, "未登录")
	}
	return false
}
