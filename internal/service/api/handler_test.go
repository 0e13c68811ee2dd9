package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/partscout/internal/service/parser"
	"github.com/darkkaiser/partscout/internal/service/search"
)

// stubParser 테스트용 사이트 파서입니다. 마지막으로 수신한 검색 요청을 기록합니다.
type stubParser struct {
	site          string
	products      []parser.Product
	manufacturers []parser.Manufacturer

	lastQuery parser.SearchQuery
}

func (p *stubParser) Site() string {
	return p.site
}

func (p *stubParser) DiscoverManufacturers(_ context.Context, _ string) ([]parser.Manufacturer, error) {
	return p.manufacturers, nil
}

func (p *stubParser) SearchProducts(_ context.Context, query parser.SearchQuery) ([]parser.Product, error) {
	p.lastQuery = query
	return p.products, nil
}

func mustProduct(t *testing.T, name, price string) parser.Product {
	t.Helper()

	product, err := parser.NewProduct(name, price, "사양", "", parser.SiteCompuzone)
	require.NoError(t, err)
	return product
}

// testMaxPages 테스트 서버에 설정하는 검색 결과 수집 페이지 수 상한
const testMaxPages = 3

func newTestServer(t *testing.T, parsers ...parser.SiteParser) *echo.Echo {
	t.Helper()

	searcher := search.NewSearcher(parsers...)
	handler := NewHandler(searcher, search.DefaultGroupThreshold, testMaxPages)

	e := NewHTTPServer(HTTPServerConfig{AllowOrigins: []string{"*"}})
	SetupRoutes(e, handler)
	return e
}

func TestSearchHandler(t *testing.T) {
	t.Run("성공: 검색 결과가 가격 오름차순으로 반환된다", func(t *testing.T) {
		e := newTestServer(t, &stubParser{
			site: parser.SiteCompuzone,
			products: []parser.Product{
				mustProduct(t, "삼성전자 990 PRO 1TB", "139,000"),
				mustProduct(t, "삼성전자 990 EVO 1TB", "89,900"),
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/search?keyword=SSD", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		assert.Equal(t, "SSD", resp.Keyword)
		assert.Equal(t, 2, resp.Count)
		require.Len(t, resp.Products, 2)
		assert.Equal(t, "89,900원", resp.Products[0].Price)

		// 최저가 집합에는 가장 싼 상품만 포함된다.
		require.Len(t, resp.Cheapest, 1)
		assert.Equal(t, "삼성전자 990 EVO 1TB", resp.Cheapest[0].Name)
	})

	t.Run("성공: group=true면 유사 상품 그룹핑 결과가 반환된다", func(t *testing.T) {
		e := newTestServer(t, &stubParser{
			site: parser.SiteCompuzone,
			products: []parser.Product{
				mustProduct(t, "삼성전자 990 EVO 1TB", "89,900"),
				mustProduct(t, "삼성전자 990 EVO 1TB 정품", "95,000"),
				mustProduct(t, "갤럭시 RTX 4070 SUPER", "850,000"),
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/search?keyword=SSD&group=true", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		assert.Empty(t, resp.Products)
		require.Len(t, resp.Groups, 2)
		assert.Equal(t, "89,900원", resp.Groups[0].LowestPrice)
	})

	t.Run("성공: 설정된 페이지 수 상한이 검색 요청에 전달된다", func(t *testing.T) {
		stub := &stubParser{site: parser.SiteCompuzone}
		e := newTestServer(t, stub)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/search?keyword=SSD&brands=삼성&capacity=1TB", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, testMaxPages, stub.lastQuery.MaxPages)
		assert.Equal(t, "SSD", stub.lastQuery.Keyword)
		assert.Equal(t, []string{"삼성"}, stub.lastQuery.Brands)
		assert.Equal(t, "1TB", stub.lastQuery.Capacity)
	})

	t.Run("실패: 검색어가 없으면 400 에러를 반환한다", func(t *testing.T) {
		e := newTestServer(t, &stubParser{site: parser.SiteCompuzone})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusBadRequest, resp.ResultCode)
		assert.Contains(t, resp.Message, "keyword")
	})
}

func TestManufacturersHandler(t *testing.T) {
	t.Run("성공: 사이트별 제조사가 병합되어 반환된다", func(t *testing.T) {
		e := newTestServer(t,
			&stubParser{
				site: parser.SiteCompuzone,
				manufacturers: []parser.Manufacturer{
					parser.NewManufacturer("삼성전자", "2"),
				},
			},
			&stubParser{
				site: parser.SiteGuidecom,
				manufacturers: []parser.Manufacturer{
					parser.NewManufacturer("삼성전자", "삼성전자"),
					parser.NewManufacturer("Western Digital", "western_digital"),
				},
			},
		)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/manufacturers?keyword=SSD", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp ManufacturersResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		assert.Equal(t, 2, resp.Count)
		require.Len(t, resp.Manufacturers, 2)
	})

	t.Run("실패: 검색어가 없으면 400 에러를 반환한다", func(t *testing.T) {
		e := newTestServer(t, &stubParser{site: parser.SiteCompuzone})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/manufacturers", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthCheckHandler(t *testing.T) {
	t.Run("성공: 서버 상태와 등록된 사이트 목록이 반환된다", func(t *testing.T) {
		e := newTestServer(t,
			&stubParser{site: parser.SiteCompuzone},
			&stubParser{site: parser.SiteGuidecom},
		)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, []string{parser.SiteCompuzone, parser.SiteGuidecom}, resp.Sites)
	})
}

func TestErrorHandler(t *testing.T) {
	t.Run("실패: 존재하지 않는 경로는 404 표준 에러 형식으로 응답한다", func(t *testing.T) {
		e := newTestServer(t, &stubParser{site: parser.SiteCompuzone})

		req := httptest.NewRequest(http.MethodGet, "/no-such-path", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusNotFound, resp.ResultCode)
	})
}
