// Package guidecom 가이드컴(www.guidecom.co.kr) 검색 결과 파서를 제공합니다.
//
// 가이드컴은 검색 페이지 방문으로 세션을 설정한 뒤 list.php로 POST 요청을 보내
// goods-row HTML 조각을 받는 구조입니다. 카테고리 필터를 적용한 POST, 무필터 POST,
// GET 폴백의 순서로 시도하며, 응답은 EUC-KR로 인코딩되어 있습니다.
package guidecom

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/darkkaiser/partscout/internal/service/parser"
	applog "github.com/darkkaiser/partscout/pkg/log"
	"github.com/darkkaiser/partscout/pkg/strutil"
	log "github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://www.guidecom.co.kr"

	searchPagePath = "/search/index.html"
	listAPIPath    = "/search/list.php"

	// 페이지당 상품 수
	listPerPage = "30"
)

// 정렬(카테고리) 파라미터
const (
	orderLowPrice = "price_0"     // 낮은가격
	orderPopular  = "reco_goods"  // 인기상품
	orderEvent    = "event_goods" // 행사상품
)

// categoryIDs 컴퓨터주요부품 카테고리 필터 코드입니다. 검색어와 관련성이 높은 것부터 시도합니다.
var categoryIDs = map[string]string{
	"ssd": "8855",
	"gpu": "8803",
	"ram": "8802",
	"cpu": "8800",
	"hdd": "8804",
}

// Parser 가이드컴 사이트 파서입니다. parser.SiteParser를 구현합니다.
type Parser struct {
	fetcher parser.Fetcher
	baseURL string
	logger  *log.Entry
}

// New 새로운 가이드컴 파서를 생성합니다. baseURL이 비어있으면 기본 주소를 사용합니다.
func New(fetcher parser.Fetcher, baseURL string) *Parser {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Parser{
		fetcher: fetcher,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  applog.WithComponent("parser.guidecom"),
	}
}

// Site 사이트 표시 이름을 반환합니다.
func (p *Parser) Site() string {
	return parser.SiteGuidecom
}

// priorityCategories 검색어의 카테고리 추정에 따라 시도할 카테고리 코드 목록을 반환합니다.
func priorityCategories(keyword string) []string {
	keywordLower := strings.ToLower(keyword)

	containsAny := func(terms ...string) bool {
		for _, term := range terms {
			if strings.Contains(keywordLower, term) {
				return true
			}
		}
		return false
	}

	switch {
	case containsAny("ssd", "nvme", "m.2", "solid"):
		return []string{categoryIDs["ssd"]}
	case containsAny("rtx", "gtx", "그래픽", "gpu", "vga"):
		return []string{categoryIDs["gpu"]}
	case containsAny("ram", "메모리", "ddr"):
		return []string{categoryIDs["ram"]}
	case containsAny("cpu", "프로세서", "intel", "amd", "라이젠"):
		return []string{categoryIDs["cpu"]}
	case containsAny("hdd", "하드", "wd", "seagate"):
		return []string{categoryIDs["hdd"]}
	default:
		// 카테고리를 특정할 수 없으면 주요 3개 카테고리를 시도
		return []string{categoryIDs["ssd"], categoryIDs["gpu"], categoryIDs["ram"]}
	}
}

// searchPageURL 세션 설정에 사용하는 검색 페이지 URL을 만듭니다.
func (p *Parser) searchPageURL(keyword, order string) string {
	return p.baseURL + searchPagePath + "?" + url.Values{"keyword": {keyword}, "order": {order}}.Encode()
}

// visitSearchPage 검색 페이지를 방문하여 세션 쿠키를 설정합니다. 실패해도 검색은 계속 진행합니다.
func (p *Parser) visitSearchPage(ctx context.Context, keyword, order string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.searchPageURL(keyword, order), nil)
	if err != nil {
		return
	}

	resp, err := p.fetcher.Do(req)
	if err != nil {
		p.logger.WithError(err).Debug("세션 설정용 검색 페이지 방문 실패")
		return
	}
	resp.Body.Close()
}

// postList list.php로 POST 요청을 보내 goods-row HTML 조각을 받습니다.
// categoryID가 비어있지 않으면 해당 카테고리로 한정하여 검색합니다.
func (p *Parser) postList(ctx context.Context, keyword, order, categoryID string) (*goquery.Document, error) {
	form := url.Values{
		"keyword": {keyword},
		"order":   {order},
		"lpp":     {listPerPage},
		"page":    {"1"},
		"y":       {"0"},
	}
	if categoryID != "" {
		form.Set("cid", categoryID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+listAPIPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Referer", p.searchPageURL(keyword, order))
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	return parser.FetchHTMLDocumentByRequest(p.fetcher, req)
}

// fetchGoodsRows 카테고리 필터 POST, 무필터 POST, GET 폴백의 순서로 상품 행을 가져옵니다.
func (p *Parser) fetchGoodsRows(ctx context.Context, keyword, order string) (*goquery.Selection, error) {
	p.visitSearchPage(ctx, keyword, order)

	var lastErr error

	// 1단계: 카테고리 필터를 적용한 POST
	for _, categoryID := range priorityCategories(keyword) {
		doc, err := p.postList(ctx, keyword, order, categoryID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if rows := findGoodsRows(doc); rows != nil {
			p.logger.WithFields(log.Fields{"category": categoryID, "rows": rows.Length()}).Debug("카테고리 검색 성공")
			return rows, nil
		}
	}

	// 2단계: 카테고리 필터 없는 POST
	doc, err := p.postList(ctx, keyword, order, "")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	} else if rows := findGoodsRows(doc); rows != nil {
		return rows, nil
	}

	// 3단계: GET 폴백 (보통 빈 템플릿만 반환되지만 마지막으로 시도)
	doc, err = parser.FetchHTMLDocument(ctx, p.fetcher, p.searchPageURL(keyword, order))
	if err != nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, err
	}
	if rows := findGoodsRows(doc); rows != nil {
		return rows, nil
	}

	return nil, lastErr
}

// findGoodsRows 문서에서 goods-row 상품 행 목록을 찾습니다. 없으면 nil을 반환합니다.
// #goods-list, #goods-placeholder 내부, 문서 전체의 순서로 탐색합니다.
func findGoodsRows(doc *goquery.Document) *goquery.Selection {
	containers := []*goquery.Selection{
		doc.Find("#goods-list").First(),
		doc.Find("#goods-placeholder #goods-list").First(),
		doc.Selection,
	}

	for _, container := range containers {
		if rows := container.Find("div.goods-row"); rows.Length() > 0 {
			return rows
		}
	}
	return nil
}

// searchBucket 하나의 정렬 기준으로 상품을 검색합니다.
func (p *Parser) searchBucket(ctx context.Context, query parser.SearchQuery, order string, limit int) ([]parser.Product, error) {
	rows, err := p.fetchGoodsRows(ctx, query.Keyword, order)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, nil
	}

	var products []parser.Product
	rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		product, ok := p.parseGoodsRow(row)
		if !ok {
			return true
		}
		if !matchesMakerFilter(product.Name, query) {
			return true
		}

		products = append(products, product)
		return len(products) < limit
	})

	return products, nil
}

// SearchProducts 가이드컴에서 상품을 검색합니다.
//
// 정렬 힌트가 없으면 낮은가격 3개, 인기상품 4개, 행사상품 3개의 세 카테고리를 조합하여
// 중복 없는 최대 10개의 상품을 반환합니다. 특정 카테고리의 검색이 실패해도 나머지
// 카테고리는 계속 진행합니다. 정렬 힌트가 지정되면 해당 정렬로 단일 검색을 수행합니다.
func (p *Parser) SearchProducts(ctx context.Context, query parser.SearchQuery) ([]parser.Product, error) {
	if query.Sort != parser.SortDefault {
		limit := 10
		if query.MaxPages > 0 {
			limit = query.MaxPages * 10
		}
		products, err := p.searchBucket(ctx, query, orderOf(query.Sort), limit)
		if err != nil {
			return nil, err
		}
		return applyCapacityFilter(products, query), nil
	}

	buckets := []struct {
		order string
		count int
	}{
		{orderLowPrice, 3},
		{orderPopular, 4},
		{orderEvent, 3},
	}

	var merged []parser.Product
	seen := make(map[string]struct{})
	var lastErr error

	for _, bucket := range buckets {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// 중복 선별 여유분을 위해 목표보다 넉넉히 가져온다
		candidates, err := p.searchBucket(ctx, query, bucket.order, bucket.count*10)
		if err != nil {
			lastErr = err
			p.logger.WithField("order", bucket.order).WithError(err).Warn("카테고리 검색 실패, 다음 카테고리 계속 진행")
			continue
		}

		added := 0
		for _, product := range candidates {
			if _, ok := seen[product.Name]; ok {
				continue
			}
			seen[product.Name] = struct{}{}
			merged = append(merged, product)
			if added++; added >= bucket.count {
				break
			}
		}
	}

	if len(merged) == 0 && lastErr != nil {
		return nil, lastErr
	}

	if len(merged) > 10 {
		merged = merged[:10]
	}
	return applyCapacityFilter(merged, query), nil
}

// orderOf 공통 정렬 힌트를 가이드컴의 정렬 파라미터로 변환합니다.
func orderOf(hint parser.SortHint) string {
	switch hint {
	case parser.SortLowPrice:
		return orderLowPrice
	case parser.SortNewest:
		return orderEvent
	default:
		return orderPopular
	}
}

// applyCapacityFilter 검색 요청에 용량 필터가 지정된 경우에만 적용합니다.
func applyCapacityFilter(products []parser.Product, query parser.SearchQuery) []parser.Product {
	if query.Capacity != "" {
		return parser.FilterByCapacity(products, query.Capacity)
	}
	return products
}

// matchesMakerFilter 상품명이 브랜드/제조사 필터에 부합하는지 확인합니다.
// 가이드컴의 제조사 코드는 정규화된 브랜드명(언더스코어 구분)이므로 공백으로 복원하여 비교합니다.
func matchesMakerFilter(productName string, query parser.SearchQuery) bool {
	if !parser.MatchesBrands(productName, query.Brands) {
		return false
	}

	if len(query.MakerCodes) == 0 {
		return true
	}

	for _, code := range query.MakerCodes {
		brand := strings.ReplaceAll(code, "_", " ")
		if parser.MatchesBrands(productName, []string{brand}) {
			return true
		}
	}
	return false
}

// 상품명 요소 추출에 시도하는 CSS 선택자 목록 (확실한 것부터)
var nameSelectors = []string{
	".desc .goodsname1",
	".desc h4.title a",
	"h4.title a",
	".desc .title a",
	".title a",
	".desc a",
}

// 사양 요소 추출에 시도하는 CSS 선택자 목록
var specSelectors = []string{
	".desc .feature",
	".feature",
	".desc .spec",
	".spec",
	".desc .summary",
	".summary",
	".goodsinfo",
}

// 가격 요소 추출에 시도하는 CSS 선택자 목록
var priceSelectors = []string{
	".prices .price-large span",
	".price-large span",
	".price-large",
	".prices .price span",
	".price span",
	".price",
}

// parseGoodsRow 하나의 goods-row 요소를 상품으로 파싱합니다.
func (p *Parser) parseGoodsRow(row *goquery.Selection) (parser.Product, bool) {
	var name, link string
	for _, selector := range nameSelectors {
		nameEl := row.Find(selector).First()
		if nameEl.Length() == 0 {
			continue
		}

		name = strutil.NormalizeSpaces(nameEl.Text())
		if name == "" {
			continue
		}

		// 상품명 요소 자체가 링크가 아니면 행 내의 링크 요소에서 추출
		if href, ok := nameEl.Attr("href"); ok {
			link = p.resolveProductLink(href)
		} else if href, ok := row.Find(".desc a, a").First().Attr("href"); ok {
			link = p.resolveProductLink(href)
		}
		break
	}
	if name == "" {
		return parser.Product{}, false
	}

	var specs string
	for _, selector := range specSelectors {
		if text := strutil.NormalizeSpaces(row.Find(selector).First().Text()); text != "" && text != name {
			specs = text
			break
		}
	}

	var price string
	for _, selector := range priceSelectors {
		text := strutil.NormalizeSpaces(row.Find(selector).First().Text())
		// 숫자 가격 또는 판매 상태 문구(품절, 문의 등)만 가격으로 인정
		if strutil.ExtractDigits(text) != "" || strutil.ContainsFold(text, "품절") || strutil.ContainsFold(text, "문의") {
			price = text
			break
		}
	}

	product, err := parser.NewProduct(name, price, specs, link, parser.SiteGuidecom)
	if err != nil {
		return parser.Product{}, false
	}
	return product, true
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
	default:
		return p.baseURL + "/" + href
	}
}
