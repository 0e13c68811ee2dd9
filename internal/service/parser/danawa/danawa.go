// Package danawa 다나와(search.danawa.com) 검색 결과 파서를 제공합니다.
//
// 다나와는 dsearch.php 검색 페이지의 HTML을 직접 파싱합니다. 제조사 필터는
// 브랜드 목록 AJAX 응답(JSON), 검색 페이지의 필터 체크박스, 정적 목록의 순서로 수집합니다.
package danawa

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/darkkaiser/partscout/internal/service/parser"
	applog "github.com/darkkaiser/partscout/pkg/log"
	"github.com/darkkaiser/partscout/pkg/strutil"
	log "github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://search.danawa.com"

	searchPath    = "/dsearch.php"
	brandAjaxPath = "/ajax/getBrandList.ajax.php"

	// 제조사 후보 최대 개수
	maxManufacturers = 10
)

// Parser 다나와 사이트 파서입니다. parser.SiteParser를 구현합니다.
type Parser struct {
	fetcher parser.Fetcher
	baseURL string
	logger  *log.Entry
}

// New 새로운 다나와 파서를 생성합니다. baseURL이 비어있으면 기본 주소를 사용합니다.
func New(fetcher parser.Fetcher, baseURL string) *Parser {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Parser{
		fetcher: fetcher,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  applog.WithComponent("parser.danawa"),
	}
}

// Site 사이트 표시 이름을 반환합니다.
func (p *Parser) Site() string {
	return parser.SiteDanawa
}

// searchURL 검색 페이지 URL을 만듭니다.
func (p *Parser) searchURL(query url.Values) string {
	return p.baseURL + searchPath + "?" + query.Encode()
}

// DiscoverManufacturers 검색어에 대한 제조사 필터 후보를 수집합니다.
//
// 1단계로 브랜드 목록 AJAX 응답(JSON)에서 추출하고, 2단계로 검색 페이지의
// 제조사 필터 체크박스에서 추출하며, 모두 실패하면 정적 목록을 반환합니다.
// 다나와는 별도 코드 체계가 없어 브랜드명 자체를 코드로 사용합니다.
func (p *Parser) DiscoverManufacturers(ctx context.Context, keyword string) ([]parser.Manufacturer, error) {
	if manufacturers := p.discoverFromBrandAjax(ctx, keyword); len(manufacturers) > 0 {
		return manufacturers, nil
	}

	doc, err := parser.FetchHTMLDocument(ctx, p.fetcher, p.searchURL(url.Values{"query": {keyword}}))
	if err != nil {
		return nil, err
	}

	if manufacturers := discoverFromFilterCheckboxes(doc); len(manufacturers) > 0 {
		return manufacturers, nil
	}

	p.logger.Debug("제조사 필터를 찾지 못함, 정적 목록 반환")
	return staticManufacturers(), nil
}

// discoverFromBrandAjax 브랜드 목록 AJAX 응답(JSON)에서 제조사를 추출합니다.
func (p *Parser) discoverFromBrandAjax(ctx context.Context, keyword string) []parser.Manufacturer {
	ajaxURL := p.baseURL + brandAjaxPath + "?" + url.Values{"query": {keyword}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ajaxURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := p.fetcher.Do(req)
	if err != nil {
		p.logger.WithError(err).Debug("브랜드 목록 AJAX 호출 실패")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil || !gjson.ValidBytes(body) {
		return nil
	}

	var manufacturers []parser.Manufacturer
	gjson.GetBytes(body, "brandList").ForEach(func(_, brand gjson.Result) bool {
		name := strutil.NormalizeSpaces(brand.Get("brandName").String())
		if name == "" || parser.IsGenericTerm(name) {
			return true
		}

		code := brand.Get("brandCode").String()
		if code == "" {
			code = name
		}

		manufacturers = append(manufacturers, parser.NewManufacturer(name, code))
		return len(manufacturers) < maxManufacturers
	})

	return parser.MergeManufacturers(manufacturers)
}

// discoverFromFilterCheckboxes 검색 페이지의 제조사 필터 체크박스에서 제조사를 추출합니다.
func discoverFromFilterCheckboxes(doc *goquery.Document) []parser.Manufacturer {
	var manufacturers []parser.Manufacturer

	doc.Find(`.filter_brand .filter_item input[type='checkbox']`).EachWithBreak(func(_ int, checkbox *goquery.Selection) bool {
		name, ok := checkbox.Attr("data-brand-name")
		if !ok {
			name, _ = checkbox.Attr("value")
		}

		name = strutil.NormalizeSpaces(name)
		if name == "" || parser.IsGenericTerm(name) {
			return true
		}

		manufacturers = append(manufacturers, parser.NewManufacturer(name, name))
		return len(manufacturers) < maxManufacturers
	})

	return parser.MergeManufacturers(manufacturers)
}

// staticManufacturers 필터 추출이 모두 실패했을 때 반환하는 정적 제조사 목록입니다.
func staticManufacturers() []parser.Manufacturer {
	brands := []string{"삼성전자", "LG전자", "ASUS", "MSI"}

	manufacturers := make([]parser.Manufacturer, 0, len(brands))
	for _, brand := range brands {
		manufacturers = append(manufacturers, parser.NewManufacturer(brand, brand))
	}
	return manufacturers
}

// 상품명 요소 추출에 시도하는 CSS 선택자 목록 (확실한 것부터)
var nameSelectors = []string{
	".prod_name a",
	".product_name",
	".name a",
	"h3 a",
}

// 가격 요소 추출에 시도하는 CSS 선택자 목록
var priceSelectors = []string{
	".price_sect em",
	".price em",
	".prod_pricelist .price",
	".price_area .price",
}

// 사양 요소 추출에 시도하는 CSS 선택자 목록
var specSelectors = []string{
	".spec_list",
	".prod_spec",
	".product_spec",
}

// SearchProducts 다나와에서 상품을 검색합니다. 결과는 가격순으로 요청합니다.
func (p *Parser) SearchProducts(ctx context.Context, query parser.SearchQuery) ([]parser.Product, error) {
	limit := 20
	if query.MaxPages > 0 {
		limit = query.MaxPages * 20
	}

	params := url.Values{
		"query": {query.Keyword},
		"sort":  {sortOf(query.Sort)},
	}
	if len(query.MakerCodes) > 0 {
		params.Set("brand", strings.Join(query.MakerCodes, ","))
	}

	doc, err := parser.FetchHTMLDocument(ctx, p.fetcher, p.searchURL(params))
	if err != nil {
		return nil, err
	}

	var products []parser.Product
	doc.Find(".prod_item, .product_list > li, .search_result .item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		product, ok := p.parseProductItem(item)
		if !ok {
			return true
		}
		if !matchesMakerFilter(product.Name, query) {
			return true
		}

		products = append(products, product)
		return len(products) < limit
	})

	products = parser.DeduplicateByName(products)
	if query.Capacity != "" {
		products = parser.FilterByCapacity(products, query.Capacity)
	}
	return products, nil
}

// sortOf 공통 정렬 힌트를 다나와의 정렬 파라미터로 변환합니다.
func sortOf(hint parser.SortHint) string {
	switch hint {
	case parser.SortPopularity:
		return "opinionDESC"
	case parser.SortNewest:
		return "dateDESC"
	default:
		return "price"
	}
}

// parseProductItem 하나의 상품 요소를 파싱합니다.
func (p *Parser) parseProductItem(item *goquery.Selection) (parser.Product, bool) {
	var name, link string
	for _, selector := range nameSelectors {
		nameEl := item.Find(selector).First()
		if nameEl.Length() == 0 {
			continue
		}

		name = strutil.NormalizeSpaces(nameEl.Text())
		if name == "" {
			continue
		}

		if href, ok := nameEl.Attr("href"); ok {
			link = p.resolveProductLink(href)
		}
		break
	}
	if name == "" {
		return parser.Product{}, false
	}

	price := parser.PriceSoldOut
	for _, selector := range priceSelectors {
		if text := strutil.NormalizeSpaces(item.Find(selector).First().Text()); strutil.ExtractDigits(text) != "" {
			price = text
			break
		}
	}

	specs := "다나와 상품"
	for _, selector := range specSelectors {
		if text := strutil.NormalizeSpaces(item.Find(selector).First().Text()); text != "" {
			// 사양 목록이 매우 길 수 있으므로 적당한 길이로 자릅니다.
			if runes := []rune(text); len(runes) > 100 {
				text = strings.TrimSpace(string(runes[:100])) + "..."
			}
			specs = text
			break
		}
	}

	product, err := parser.NewProduct(name, price, specs, link, parser.SiteDanawa)
	if err != nil {
		return parser.Product{}, false
	}
	return product, true
}

// matchesMakerFilter 상품명에서 추출한 제조사가 필터에 부합하는지 확인합니다.
func matchesMakerFilter(productName string, query parser.SearchQuery) bool {
	if !parser.MatchesBrands(productName, query.Brands) {
		return false
	}

	if len(query.MakerCodes) == 0 {
		return true
	}

	maker := parser.ExtractManufacturerFromName(productName)
	if maker == "" {
		return false
	}

	makerNormalized := strings.ToLower(parser.NormalizeManufacturerName(maker))
	for _, code := range query.MakerCodes {
		codeNormalized := strings.ToLower(parser.NormalizeManufacturerName(strings.ReplaceAll(code, "_", " ")))
		if makerNormalized == codeNormalized ||
			strings.Contains(makerNormalized, codeNormalized) ||
			strings.Contains(codeNormalized, makerNormalized) {
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
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return p.baseURL + href
	default:
		return p.baseURL + "/" + href
	}
}
