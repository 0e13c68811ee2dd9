package api

import (
	"net/http"

	applog "github.com/darkkaiser/partscout/pkg/log"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// errorHandler Echo 프레임워크의 전역 에러 핸들러입니다.
//
// 모든 HTTP 에러를 가로채서 표준 ErrorResponse JSON 형식으로 변환하여 반환합니다.
func errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "서버 내부 오류가 발생했습니다"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else if resp, ok := he.Message.(ErrorResponse); ok {
			message = resp.Message
		}
	}

	// 404 에러는 사용자 친화적인 메시지로 통일
	if code == http.StatusNotFound {
		message = "요청하신 경로를 찾을 수 없습니다"
	}

	fields := log.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}

	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields(componentErrorHandler, fields).Error("HTTP 요청 처리 중 서버 오류가 발생했습니다")
	} else if code >= http.StatusBadRequest {
		applog.WithComponentAndFields(componentErrorHandler, fields).Warn("HTTP 요청이 거부되었습니다")
	}

	// 이중 응답 방지: 이미 응답이 전송된 경우 추가 응답 시도하지 않음
	if c.Response().Committed {
		return
	}

	// HEAD 요청은 HTTP 명세에 따라 본문 없이 헤더만 반환
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	_ = c.JSON(code, ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}
