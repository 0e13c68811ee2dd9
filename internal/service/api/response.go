package api

import (
	"net/http"

	"github.com/darkkaiser/partscout/internal/service/parser"
	"github.com/darkkaiser/partscout/internal/service/search"
	"github.com/labstack/echo/v4"
)

// ErrorResponse API 에러 응답의 표준 형식입니다.
type ErrorResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}

// SearchResponse 상품 검색 결과 응답입니다.
// 그룹핑 요청 여부에 따라 Groups 또는 Products 중 하나만 채워집니다.
type SearchResponse struct {
	Keyword  string                `json:"keyword"`
	Count    int                   `json:"count"`
	Products []parser.Product      `json:"products,omitempty"`
	Cheapest []parser.Product      `json:"cheapest,omitempty"`
	Groups   []search.ProductGroup `json:"groups,omitempty"`
}

// ManufacturersResponse 제조사 후보 목록 응답입니다.
type ManufacturersResponse struct {
	Keyword       string                `json:"keyword"`
	Count         int                   `json:"count"`
	Manufacturers []parser.Manufacturer `json:"manufacturers"`
}

// HealthResponse 헬스체크 응답입니다.
type HealthResponse struct {
	Status string   `json:"status"`
	Uptime int64    `json:"uptime"`
	Sites  []string `json:"sites"`
}

// newBadRequestError 400 Bad Request 에러를 생성합니다.
func newBadRequestError(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{
		ResultCode: http.StatusBadRequest,
		Message:    message,
	})
}
