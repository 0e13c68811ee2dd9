package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/darkkaiser/partscout/internal/service/parser"
	"github.com/darkkaiser/partscout/internal/service/search"
	"github.com/darkkaiser/partscout/pkg/strutil"
	"github.com/labstack/echo/v4"
)

// Handler 검색 API의 핸들러입니다.
type Handler struct {
	searcher *search.Searcher

	// groupThreshold 유사 상품 그룹핑 시 사용하는 유사도 임계값
	groupThreshold float64

	// maxPages 사이트별 검색 결과 수집 페이지 수 상한
	maxPages int

	serverStartTime time.Time
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(searcher *search.Searcher, groupThreshold float64, maxPages int) *Handler {
	if searcher == nil {
		panic("Searcher는 필수입니다")
	}

	return &Handler{
		searcher: searcher,

		groupThreshold: groupThreshold,

		maxPages: maxPages,

		serverStartTime: time.Now(),
	}
}

// SearchHandler 상품 통합 검색을 처리합니다.
//
// GET /api/v1/search?keyword=SSD&brands=삼성,wd&maker=2,24&capacity=1TB&group=true
//
// 쿼리 파라미터:
//   - keyword: 검색어 (필수)
//   - brands: 브랜드 이름 필터 (쉼표 구분, 선택)
//   - maker: 제조사 코드 필터 (쉼표 구분, 선택)
//   - capacity: 용량 필터 (예: 1TB, 선택)
//   - group: true면 유사 상품 그룹핑 결과 반환 (선택, 기본 false)
func (h *Handler) SearchHandler(c echo.Context) error {
	keyword := strutil.NormalizeSpaces(c.QueryParam("keyword"))
	if keyword == "" {
		return newBadRequestError("검색어(keyword)는 필수입니다")
	}

	query := parser.SearchQuery{
		Keyword:    keyword,
		Brands:     splitParam(c.QueryParam("brands")),
		MakerCodes: splitParam(c.QueryParam("maker")),
		Capacity:   strings.TrimSpace(c.QueryParam("capacity")),
		MaxPages:   h.maxPages,
	}

	products := h.searcher.SearchAllSites(c.Request().Context(), query)

	response := SearchResponse{
		Keyword: keyword,
		Count:   len(products),
	}

	if grouped, _ := strconv.ParseBool(c.QueryParam("group")); grouped {
		response.Groups = search.GroupSimilar(products, h.groupThreshold)
	} else {
		search.SortByPriceRank(products)
		response.Products = products
		response.Cheapest = search.CheapestSet(products)
	}

	return c.JSON(http.StatusOK, response)
}

// ManufacturersHandler 검색어에 대한 제조사 후보 목록을 반환합니다.
//
// GET /api/v1/manufacturers?keyword=SSD
func (h *Handler) ManufacturersHandler(c echo.Context) error {
	keyword := strutil.NormalizeSpaces(c.QueryParam("keyword"))
	if keyword == "" {
		return newBadRequestError("검색어(keyword)는 필수입니다")
	}

	manufacturers := h.searcher.AllBrands(c.Request().Context(), keyword)

	return c.JSON(http.StatusOK, ManufacturersResponse{
		Keyword:       keyword,
		Count:         len(manufacturers),
		Manufacturers: manufacturers,
	})
}

// HealthCheckHandler 서버 상태를 반환합니다. 인증 없이 호출 가능합니다.
//
// GET /health
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
		Uptime: int64(time.Since(h.serverStartTime).Seconds()),
		Sites:  h.searcher.Sites(),
	})
}

// splitParam 쉼표로 구분된 쿼리 파라미터를 목록으로 변환합니다.
func splitParam(value string) []string {
	return strutil.SplitAndTrim(value, ",")
}
