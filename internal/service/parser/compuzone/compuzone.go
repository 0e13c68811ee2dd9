// Package compuzone 컴퓨존(www.compuzone.co.kr) 검색 결과 파서를 제공합니다.
//
// 컴퓨존은 검색 페이지 방문으로 세션을 설정한 뒤 search_list.php API를 호출하는 구조이며,
// 카테고리 한정 검색부터 통합 검색까지 3단계 검색 전략을 순차적으로 시도합니다.
// 응답은 EUC-KR로 인코딩되어 있습니다.
package compuzone

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/darkkaiser/partscout/internal/service/parser"
	applog "github.com/darkkaiser/partscout/pkg/log"
	"github.com/darkkaiser/partscout/pkg/strutil"
	log "github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://www.compuzone.co.kr"

	searchPagePath = "/search/search.htm"
	searchAPIPath  = "/search/search_list.php"

	// 컴퓨터부품 대분류 코드
	categoryPCParts = "4"

	// 검색 전략당 페이지당 상품 수
	pageCount = 30

	// 제조사 후보 최대 개수
	maxManufacturers = 20
)

// bracketBrandRegexp 상품명 선두의 "[브랜드]" 태그를 추출하는 정규식
var bracketBrandRegexp = regexp.MustCompile(`\[([^\]]+)\]`)

// Parser 컴퓨존 사이트 파서입니다. parser.SiteParser를 구현합니다.
type Parser struct {
	fetcher parser.Fetcher
	baseURL string
	logger  *log.Entry
}

// New 새로운 컴퓨존 파서를 생성합니다. baseURL이 비어있으면 기본 주소를 사용합니다.
func New(fetcher parser.Fetcher, baseURL string) *Parser {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Parser{
		fetcher: fetcher,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  applog.WithComponent("parser.compuzone"),
	}
}

// Site 사이트 표시 이름을 반환합니다.
func (p *Parser) Site() string {
	return parser.SiteCompuzone
}

// searchPageURL 세션 설정에 사용하는 메인 검색 페이지 URL을 만듭니다.
func (p *Parser) searchPageURL(keyword string) string {
	return fmt.Sprintf("%s%s?SearchProductKey=%s", p.baseURL, searchPagePath, url.QueryEscape(keyword))
}

// visitSearchPage 메인 검색 페이지를 방문하여 세션 쿠키를 설정합니다.
// API 호출 전에 수행하지 않으면 빈 응답이 반환됩니다.
func (p *Parser) visitSearchPage(ctx context.Context, keyword string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.searchPageURL(keyword), nil)
	if err != nil {
		return err
	}

	resp, err := p.fetcher.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return nil
}

// apiParams 검색 API의 공통 파라미터를 구성합니다.
func apiParams(keyword string, sortOrder string, bigDivNo string, searchType string, count int) url.Values {
	if sortOrder == "" {
		sortOrder = "sale_order"
	}

	return url.Values{
		"actype":      {"list"},
		"SearchType":  {searchType},
		"SearchText":  {keyword},
		"PreOrder":    {sortOrder},
		"PageCount":   {fmt.Sprintf("%d", count)},
		"StartNum":    {"0"},
		"PageNum":     {"1"},
		"ListType":    {"0"},
		"BigDivNo":    {bigDivNo},
		"MediumDivNo": {""},
		"DivNo":       {""},
		"MinPrice":    {"0"},
		"MaxPrice":    {"0"},
		"ChkMakerNo":  {""},
	}
}

// fetchAPIDocument 검색 API를 호출하고 응답 HTML을 파싱합니다.
// 실제 브라우저의 AJAX 요청을 모방한 헤더를 함께 전송합니다.
func (p *Parser) fetchAPIDocument(ctx context.Context, keyword string, params url.Values) (*goquery.Document, error) {
	apiURL := fmt.Sprintf("%s%s?%s", p.baseURL, searchAPIPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Referer", p.searchPageURL(keyword))
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	return parser.FetchHTMLDocumentByRequest(p.fetcher, req)
}

// sortOrderOf 공통 정렬 힌트를 컴퓨존 API의 정렬 파라미터로 변환합니다.
func sortOrderOf(hint parser.SortHint) string {
	switch hint {
	case parser.SortLowPrice:
		return "price_order"
	case parser.SortNewest:
		return "new_order"
	default:
		return "sale_order"
	}
}

// SearchProducts 컴퓨존에서 상품을 검색합니다.
//
// 컴퓨터부품 카테고리 한정 검색, 전체 카테고리 검색, 통합 검색의 순서로 시도하며
// 첫 번째로 상품이 파싱된 전략의 결과를 사용합니다. 옵션(용량별, 팩 단위)이 있는
// 상품은 옵션별로 개별 상품으로 전개됩니다.
func (p *Parser) SearchProducts(ctx context.Context, query parser.SearchQuery) ([]parser.Product, error) {
	if err := p.visitSearchPage(ctx, query.Keyword); err != nil {
		return nil, err
	}

	// 검색 API는 PageCount 파라미터로 응답 상품 수를 조절할 수 있으므로,
	// 페이지 순회 대신 한 번의 호출에 페이지 수 상한만큼의 상품을 요청합니다.
	limit := query.MaxPages * pageCount
	if limit <= 0 {
		limit = pageCount
	}

	sortOrder := sortOrderOf(query.Sort)

	// 정확도가 높은 전략부터 순서대로 시도
	strategies := []struct {
		name   string
		params url.Values
	}{
		{"컴퓨터부품 카테고리", apiParams(query.Keyword, sortOrder, categoryPCParts, "small", limit)},
		{"전체 카테고리", apiParams(query.Keyword, sortOrder, "", "small", limit)},
		{"통합 검색", apiParams(query.Keyword, sortOrder, "", "total", limit)},
	}

	var lastErr error
	for _, strategy := range strategies {
		doc, err := p.fetchAPIDocument(ctx, query.Keyword, strategy.params)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			p.logger.WithField("strategy", strategy.name).WithError(err).Warn("검색 API 호출 실패, 다음 전략으로 전환")
			continue
		}

		items := selectProductItems(doc)
		if items == nil {
			p.logger.WithField("strategy", strategy.name).Debug("상품 요소를 찾을 수 없음, 다음 전략으로 전환")
			continue
		}

		products := p.parseProductItems(items, query, limit)
		if len(products) > 0 {
			p.logger.WithFields(log.Fields{
				"strategy": strategy.name,
				"count":    len(products),
			}).Debug("검색 성공")

			products = parser.DeduplicateByName(products)
			if len(products) > limit {
				products = products[:limit]
			}
			return products, nil
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return []parser.Product{}, nil
}

// productItemSelectors 상품 목록 요소 추출에 시도하는 CSS 선택자 목록 (확실한 것부터)
var productItemSelectors = []string{
	"li.li-obj",
	".product-item",
	".prd-item",
	".goods-item",
	"li[class*='item']",
}

// selectProductItems 응답 문서에서 상품 목록 요소를 찾습니다. 없으면 nil을 반환합니다.
func selectProductItems(doc *goquery.Document) *goquery.Selection {
	for _, selector := range productItemSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// parseProductItems 상품 목록 요소들을 순회하며 브랜드/용량 필터를 적용한 상품들을 파싱합니다.
func (p *Parser) parseProductItems(items *goquery.Selection, query parser.SearchQuery, limit int) []parser.Product {
	capacity, hasCapacity := parser.ExtractCapacity(query.Keyword)

	var products []parser.Product
	items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
		name := strutil.NormalizeSpaces(item.Find(".prd_info_name").First().Text())
		if name == "" {
			return true
		}

		if !p.matchesMakerFilter(name, query) {
			return true
		}

		// 옵션 상품은 옵션별로 전개, 일반 상품은 단일 파싱
		if item.Find(".prd_option_wrap").Length() > 0 {
			products = append(products, p.parseProductOptions(item, name, capacity, hasCapacity)...)
		} else if product, ok := p.parseSingleProduct(item, name, capacity, hasCapacity); ok {
			products = append(products, product)
		}

		// 중복 제거 여유분을 고려하여 충분히 확보되면 중단
		return len(products) < limit*3
	})

	return products
}

// matchesMakerFilter 상품명이 검색 요청의 브랜드/제조사 필터에 부합하는지 확인합니다.
// 제조사 코드는 브랜드명으로 변환한 뒤 브랜드 동의어 테이블로 매칭합니다.
func (p *Parser) matchesMakerFilter(productName string, query parser.SearchQuery) bool {
	if !parser.MatchesBrands(productName, query.Brands) {
		return false
	}

	if len(query.MakerCodes) == 0 {
		return true
	}

	for _, code := range query.MakerCodes {
		brand := brandNameOfCode(code)
		if parser.MatchesBrands(productName, []string{brand}) {
			return true
		}
	}
	return false
}

// resolveProductLink 상품 상세 페이지 링크를 절대 URL로 변환합니다.
func (p *Parser) resolveProductLink(href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "/"):
		return p.baseURL + href
	case strings.HasPrefix(href, "../"):
		return p.baseURL + "/" + strings.TrimPrefix(href, "../")
	default:
		return p.baseURL + "/" + href
	}
}
