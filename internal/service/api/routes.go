package api

import (
	"github.com/labstack/echo/v4"
)

// SetupRoutes API 서비스의 라우트를 등록합니다.
//
//   - 시스템 엔드포인트: 서비스 상태 확인(/health) (인증 불필요)
//   - v1 API: 상품 통합 검색 및 제조사 후보 조회
func SetupRoutes(e *echo.Echo, h *Handler) {
	e.GET("/health", h.HealthCheckHandler)

	v1 := e.Group("/api/v1")
	v1.GET("/search", h.SearchHandler)
	v1.GET("/manufacturers", h.ManufacturersHandler)
}
