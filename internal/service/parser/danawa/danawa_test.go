package danawa

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/partscout/internal/service/parser"
)

const searchResultFixture = `
<html>
<body>
<div class="filter_brand">
	<div class="filter_item"><input type="checkbox" data-brand-name="삼성전자" value="samsung"></div>
	<div class="filter_item"><input type="checkbox" data-brand-name="Western Digital" value="wd"></div>
	<div class="filter_item"><input type="checkbox" value="SK하이닉스"></div>
	<div class="filter_item"><input type="checkbox" data-brand-name="무료배송" value="event"></div>
</div>
<ul class="product_list">
	<li class="prod_item">
		<p class="prod_name"><a href="/product/12345">삼성전자   990 EVO M.2 NVMe (1TB)</a></p>
		<div class="spec_list">M.2 NVMe / PCIe4.0 / TLC / DRAM 탑재</div>
		<p class="price_sect"><em>89,900</em></p>
	</li>
	<li class="prod_item">
		<p class="prod_name"><a href="//prod.danawa.com/info/?pcode=222">WD BLACK SN850X (1TB)</a></p>
		<div class="spec_list">M.2 NVMe / PCIe4.0</div>
		<p class="price_sect"><em>152,000</em></p>
	</li>
	<li class="prod_item">
		<p class="prod_name"><a href="/product/333">삼성전자 990 PRO (2TB)</a></p>
		<div class="spec_list">M.2 NVMe / PCIe4.0 / MLC</div>
		<p class="price_sect"><em>239,000</em></p>
	</li>
	<li class="prod_item">
		<p class="prod_name"><a href="/product/444">SK하이닉스 Platinum P41 (1TB)</a></p>
		<p class="price_sect"><em>일시품절</em></p>
	</li>
	<li class="prod_item">
		<p class="prod_name"><a href="/product/12345">삼성전자 990 EVO M.2 NVMe (1TB)</a></p>
		<div class="spec_list">M.2 NVMe</div>
		<p class="price_sect"><em>91,000</em></p>
	</li>
</ul>
</body>
</html>`

func newTestServer(t *testing.T, searchHTML, brandJSON string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(searchPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(searchHTML))
	})
	mux.HandleFunc(brandAjaxPath, func(w http.ResponseWriter, r *http.Request) {
		if brandJSON == "" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(brandJSON))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestParser(server *httptest.Server) *Parser {
	return New(parser.NewHTTPFetcher(5*time.Second), server.URL)
}

func TestSearchProducts(t *testing.T) {
	t.Run("성공: 검색 결과의 상품명/가격/링크가 정규화된다", func(t *testing.T) {
		server := newTestServer(t, searchResultFixture, "")
		p := newTestParser(server)

		products, err := p.SearchProducts(context.Background(), parser.SearchQuery{Keyword: "SSD"})
		require.NoError(t, err)
		require.Len(t, products, 4)

		assert.Equal(t, "삼성전자 990 EVO M.2 NVMe (1TB)", products[0].Name)
		assert.Equal(t, "89,900원", products[0].Price)
		assert.Equal(t, "M.2 NVMe / PCIe4.0 / TLC / DRAM 탑재", products[0].Specifications)
		assert.Equal(t, server.URL+"/product/12345", products[0].ProductLink)
		assert.Equal(t, parser.SiteDanawa, products[0].Site)

		// 프로토콜 상대 링크는 https로 보정된다.
		assert.Equal(t, "https://prod.danawa.com/info/?pcode=222", products[1].ProductLink)
	})

	t.Run("성공: 품절 상품은 품절로, 사양이 없으면 기본 사양으로 채워진다", func(t *testing.T) {
		server := newTestServer(t, searchResultFixture, "")
		p := newTestParser(server)

		products, err := p.SearchProducts(context.Background(), parser.SearchQuery{Keyword: "SSD"})
		require.NoError(t, err)
		require.Len(t, products, 4)

		assert.Equal(t, parser.PriceSoldOut, products[3].Price)
		assert.Equal(t, "다나와 상품", products[3].Specifications)
	})

	t.Run("성공: 동일한 상품명은 중복 제거된다", func(t *testing.T) {
		server := newTestServer(t, searchResultFixture, "")
		p := newTestParser(server)

		products, err := p.SearchProducts(context.Background(), parser.SearchQuery{Keyword: "SSD"})
		require.NoError(t, err)

		names := make(map[string]int)
		for _, product := range products {
			names[product.Name]++
		}
		assert.Equal(t, 1, names["삼성전자 990 EVO M.2 NVMe (1TB)"])
	})

	t.Run("성공: 브랜드 필터로 WD 상품만 남는다", func(t *testing.T) {
		server := newTestServer(t, searchResultFixture, "")
		p := newTestParser(server)

		products, err := p.SearchProducts(context.Background(), parser.SearchQuery{
			Keyword: "SSD",
			Brands:  []string{"western digital"},
		})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Contains(t, products[0].Name, "WD")
	})

	t.Run("성공: 제조사 코드 필터는 상품명에서 추출한 제조사와 비교한다", func(t *testing.T) {
		server := newTestServer(t, searchResultFixture, "")
		p := newTestParser(server)

		products, err := p.SearchProducts(context.Background(), parser.SearchQuery{
			Keyword:    "SSD",
			MakerCodes: []string{"삼성전자"},
		})
		require.NoError(t, err)
		require.Len(t, products, 2)
		for _, product := range products {
			assert.Contains(t, product.Name, "삼성전자")
		}
	})

	t.Run("성공: 용량 필터로 2TB 상품이 제외된다", func(t *testing.T) {
		server := newTestServer(t, searchResultFixture, "")
		p := newTestParser(server)

		products, err := p.SearchProducts(context.Background(), parser.SearchQuery{
			Keyword:  "SSD",
			Capacity: "1TB",
		})
		require.NoError(t, err)
		require.Len(t, products, 3)
		for _, product := range products {
			assert.NotContains(t, product.Name, "2TB")
		}
	})

}

func TestDiscoverManufacturers(t *testing.T) {
	t.Run("성공: 브랜드 목록 AJAX 응답(JSON)을 우선 사용한다", func(t *testing.T) {
		brandJSON := `{
			"brandList": [
				{"brandName": "삼성전자", "brandCode": "702"},
				{"brandName": "Western Digital", "brandCode": "3063"},
				{"brandName": "무료배송", "brandCode": "999"}
			]
		}`
		server := newTestServer(t, searchResultFixture, brandJSON)
		p := newTestParser(server)

		manufacturers, err := p.DiscoverManufacturers(context.Background(), "SSD")
		require.NoError(t, err)
		require.Len(t, manufacturers, 2)

		byName := make(map[string][]string)
		for _, m := range manufacturers {
			byName[m.Name] = m.Codes
		}
		assert.Equal(t, []string{"702"}, byName["삼성전자"])
		assert.Equal(t, []string{"3063"}, byName["Western Digital"])
	})

	t.Run("성공: AJAX 실패 시 필터 체크박스에서 추출한다", func(t *testing.T) {
		server := newTestServer(t, searchResultFixture, "")
		p := newTestParser(server)

		manufacturers, err := p.DiscoverManufacturers(context.Background(), "SSD")
		require.NoError(t, err)
		require.Len(t, manufacturers, 3)

		names := make([]string, 0, len(manufacturers))
		for _, m := range manufacturers {
			names = append(names, m.Name)
		}
		assert.Contains(t, names, "삼성전자")
		assert.Contains(t, names, "Western Digital")
		assert.Contains(t, names, "SK하이닉스")
		assert.NotContains(t, names, "무료배송")
	})

	t.Run("성공: 필터가 전혀 없으면 정적 목록을 반환한다", func(t *testing.T) {
		server := newTestServer(t, "<html><body></body></html>", "")
		p := newTestParser(server)

		manufacturers, err := p.DiscoverManufacturers(context.Background(), "SSD")
		require.NoError(t, err)
		require.Len(t, manufacturers, 4)
		assert.Equal(t, "삼성전자", manufacturers[0].Name)
	})
}
