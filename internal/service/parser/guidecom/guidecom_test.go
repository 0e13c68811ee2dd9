package guidecom

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

const goodsRowsFixture = `
<div id="goods-list">
  <div class="goods-row">
    <div class="desc">
      <h4 class="title"><a href="/shop/goods.html?no=1"><span class="goodsname1">삼성전자 990 EVO 1TB</span></a></h4>
      <div class="feature">NVMe M.2 / PCIe 4.0 / TLC</div>
    </div>
    <div class="prices"><div class="price-large"><span>89,900</span></div></div>
  </div>
  <div class="goods-row">
    <div class="desc">
      <h4 class="title"><a href="/shop/goods.html?no=2"><span class="goodsname1">Western Digital WD BLACK SN850X 1TB</span></a></h4>
      <div class="feature">NVMe M.2 / PCIe 4.0</div>
    </div>
    <div class="prices"><div class="price-large"><span>119,000</span></div></div>
  </div>
  <div class="goods-row">
    <div class="desc">
      <h4 class="title"><a href="/shop/goods.html?no=3"><span class="goodsname1">신제품 SK하이닉스 Platinum P41 2TB</span></a></h4>
      <div class="feature">NVMe M.2 / PCIe 4.0</div>
    </div>
    <div class="prices"><div class="price-large"><span>199,000</span></div></div>
  </div>
  <div class="goods-row">
    <div class="desc">
      <h4 class="title"><a href="/shop/goods.html?no=4"><span class="goodsname1">삼성전자 990 PRO 1TB</span></a></h4>
      <div class="feature">NVMe M.2 / PCIe 4.0 / MLC</div>
    </div>
    <div class="prices"><div class="price-large"><span>품절</span></div></div>
  </div>
</div>`

// newTestServer 검색 페이지와 list.php API를 흉내내는 테스트 서버를 생성합니다.
// orders에는 POST 요청이 수신된 order 파라미터가 순서대로 기록됩니다.
func newTestServer(t *testing.T, orders *[]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(searchPagePath, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>template</body></html>`))
	})
	mux.HandleFunc(listAPIPath, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if orders != nil {
			*orders = append(*orders, r.PostFormValue("order"))
		}
		_, _ = w.Write([]byte(goodsRowsFixture))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestParser_SearchProducts(t *testing.T) {
	t.Run("성공: 기본 검색은 세 카테고리를 조합한다", func(t *testing.T) {
		var orders []string
		p := New(parser.NewHTTPFetcher(5*time.Second), newTestServer(t, &orders).URL)

		products, err := p.SearchProducts(context.Background(), parser.SearchQuery{Keyword: "SSD"})
		require.NoError(t, err)
		require.NotEmpty(t, products)
		assert.LessOrEqual(t, len(products), 10)

		assert.Contains(t, orders, orderLowPrice)
		assert.Contains(t, orders, orderPopular)
		assert.Contains(t, orders, orderEvent)
	})

	t.Run("성공: 상품 필드가 정규화되어 파싱된다", func(t *testing.T) {
		p := New(parser.NewHTTPFetcher(5*time.Second), newTestServer(t, nil).URL)

		products, err := p.SearchProducts(context.Background(), parser.SearchQuery{Keyword: "SSD", Sort: parser.SortLowPrice})
		require.NoError(t, err)
		require.NotEmpty(t, products)

		first := products[0]
		assert.Equal(t, "삼성전자 990 EVO 1TB", first.Name)
		assert.Equal(t, "89,900원", first.Price)
		assert.Equal(t, "NVMe M.2 / PCIe 4.0 / TLC", first.Specifications)
		assert.Contains(t, first.ProductLink, "/shop/goods.html?no=1")
		assert.Equal(t, parser.SiteGuidecom, first.Site)
	})

	t.Run("성공: 품절 상품은 품절 표기로 정규화된다", func(t *testing.T) {
		p := New(parser.NewHTTPFetcher(5*time.Second), newTestServer(t, nil).URL)

		products, err := p.SearchProducts(context.Background(), parser.SearchQuery{Keyword: "SSD", Sort: parser.SortLowPrice})
		require.NoError(t, err)

		var soldOut *parser.Product
		for i := range products {
			if products[i].Name == "삼성전자 990 PRO 1TB" {
				soldOut = &products[i]
			}
		}
		require.NotNil(t, soldOut)
		assert.Equal(t, parser.PriceSoldOut, soldOut.Price)
	})

	t.Run("성공: 제조사 코드 필터가 적용된다", func(t *testing.T) {
		p := New(parser.NewHTTPFetcher(5*time.Second), newTestServer(t, nil).URL)

		products, err := p.SearchProducts(context.Background(), parser.SearchQuery{
			Keyword:    "SSD",
			Sort:       parser.SortLowPrice,
			MakerCodes: []string{"western_digital"},
		})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Contains(t, products[0].Name, "WD BLACK")
	})

	t.Run("성공: 용량 필터가 적용된다", func(t *testing.T) {
		p := New(parser.NewHTTPFetcher(5*time.Second), newTestServer(t, nil).URL)

		products, err := p.SearchProducts(context.Background(), parser.SearchQuery{
			Keyword:  "SSD",
			Sort:     parser.SortLowPrice,
			Capacity: "2TB",
		})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Contains(t, products[0].Name, "P41 2TB")
	})
}

func TestParser_DiscoverManufacturers(t *testing.T) {
	t.Run("성공: 상품명 선두 토큰에서 제조사가 추출된다", func(t *testing.T) {
		p := New(parser.NewHTTPFetcher(5*time.Second), newTestServer(t, nil).URL)

		manufacturers, err := p.DiscoverManufacturers(context.Background(), "SSD")
		require.NoError(t, err)
		require.NotEmpty(t, manufacturers)

		byName := map[string][]string{}
		for _, m := range manufacturers {
			byName[m.Name] = m.Codes
		}

		// 홍보 문구(신제품)는 건너뛰고 제조사가 추출되어야 함
		assert.Contains(t, byName, "삼성전자")
		assert.Contains(t, byName, "SK하이닉스")
		assert.Equal(t, []string{"삼성전자"}, byName["삼성전자"])

		// 한글 제조사가 영문 제조사보다 앞에 정렬되어야 함
		assert.Equal(t, "Western Digital", manufacturers[len(manufacturers)-1].Name)
	})
}

func TestNormalizeBrandCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"약어 변환", "WD", "western digital"},
		{"한글 별칭 변환", "삼성", "삼성전자"},
		{"구분 기호 통일", "G.SKILL", "gskill"},
		{"일반 브랜드는 소문자화", "SEAGATE", "seagate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeBrandCode(tt.input))
		})
	}
}
