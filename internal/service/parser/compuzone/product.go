package compuzone

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/darkkaiser/partscout/internal/service/parser"
	"github.com/darkkaiser/partscout/pkg/strutil"
)

// 가격 요소 추출에 시도하는 CSS 선택자 목록 (확실한 것부터)
var priceSelectors = []string{
	".prd_price .number",
	".prd_price .price",
	".price_sect .number",
	".price .number",
	".prd_price",
}

var parenthesesRegexp = regexp.MustCompile(`\(([^)]+)\)`)

// parseSingleProduct 옵션이 없는 일반 상품을 파싱합니다.
// 검색어에 용량이 지정된 경우 상품명이 해당 용량과 일치하지 않으면 제외됩니다.
func (p *Parser) parseSingleProduct(item *goquery.Selection, name string, capacity parser.Capacity, hasCapacity bool) (parser.Product, bool) {
	if hasCapacity && !capacity.MatchesText(name) {
		return parser.Product{}, false
	}

	price := parser.PriceSoldOut
	for _, selector := range priceSelectors {
		if tag := item.Find(selector).First(); tag.Length() > 0 {
			price = strutil.NormalizeSpaces(tag.Text())
			break
		}
	}

	link, _ := item.Find(".prd_info_name").First().Attr("href")

	specs := extractBaseSpecs(item)
	specsText := strings.Join(specs, " / ")
	if specsText == "" {
		specsText = "컴퓨존 상품"
	}

	product, err := parser.NewProduct(name, price, specsText, p.resolveProductLink(link), parser.SiteCompuzone)
	if err != nil {
		return parser.Product{}, false
	}
	return product, true
}

// parseProductOptions 옵션 상품을 옵션별 개별 상품으로 전개합니다.
//
// 컴퓨존은 옵션 구조가 두 가지입니다. HDD 타입은 .op_name에 용량 정보가 있고,
// SSD 타입은 .opt_name에 상세 정보가 있습니다. 일부 옵션은 .op_list_area 아래에
// 세부 옵션(개별/5PACK/10PACK)을 추가로 가집니다.
func (p *Parser) parseProductOptions(item *goquery.Selection, baseName string, capacity parser.Capacity, hasCapacity bool) []parser.Product {
	var products []parser.Product

	item.Find(".prd_option").Each(func(_ int, option *goquery.Selection) {
		optionName := strutil.NormalizeSpaces(option.Find(".op_name").First().Text())
		if optionName == "" {
			optionName = strutil.NormalizeSpaces(option.Find(".opt_name").First().Text())
		}
		if optionName == "" {
			return
		}

		if hasCapacity && !capacity.MatchesText(optionName) {
			return
		}

		if listArea := option.Find(".op_list_area"); listArea.Length() > 0 {
			listArea.Find(".op_list").Each(func(_ int, subOption *goquery.Selection) {
				if product, ok := p.parseSubOption(item, subOption, baseName, optionName); ok {
					products = append(products, product)
				}
			})
			return
		}

		if product, ok := p.parseRegularOption(item, option, baseName, optionName); ok {
			products = append(products, product)
		}
	})

	return products
}

// parseSubOption 세부 옵션(개별/5PACK/10PACK)을 하나의 상품으로 파싱합니다.
func (p *Parser) parseSubOption(item, subOption *goquery.Selection, baseName, optionName string) (parser.Product, bool) {
	subOptionName := strutil.NormalizeSpaces(subOption.Find(".opt_name").First().Text())
	if subOptionName == "" {
		return parser.Product{}, false
	}

	// 세부 옵션의 상품 번호로 상세 페이지 링크 구성
	var link string
	if productNo, ok := subOption.Find(".SelGroupProductNo").First().Attr("value"); ok && productNo != "" {
		link = p.baseURL + "/product/product_detail.htm?ProductNo=" + productNo
	}

	price := strutil.NormalizeSpaces(subOption.Find(".op_price .f_black").First().Text())
	if price == "" {
		if !strings.Contains(subOption.Text(), "품절") && !strings.Contains(subOption.Text(), "재입고") {
			return parser.Product{}, false
		}
		price = parser.PriceSoldOut
	}

	specs := []string{optionName}
	if match := parenthesesRegexp.FindStringSubmatch(subOptionName); match != nil {
		specs = append(specs, match[1])
	}

	packInfo := ""
	switch {
	case strings.Contains(subOptionName, "5PACK"):
		packInfo = " (5개 팩)"
		specs = append(specs, "5개 팩")
	case strings.Contains(subOptionName, "10PACK"):
		packInfo = " (10개 팩)"
		specs = append(specs, "10개 팩")
	}

	if baseSpecs := extractBaseSpecs(item); len(baseSpecs) > 0 {
		specs = append(specs, baseSpecs[0])
	}

	product, err := parser.NewProduct(
		baseName+" "+optionName+packInfo,
		price,
		strings.Join(specs, " / "),
		link,
		parser.SiteCompuzone,
	)
	if err != nil {
		return parser.Product{}, false
	}
	return product, true
}

// parseRegularOption 세부 옵션이 없는 일반 옵션을 하나의 상품으로 파싱합니다.
func (p *Parser) parseRegularOption(item, option *goquery.Selection, baseName, optionName string) (parser.Product, bool) {
	href, _ := item.Find(".prd_info_name").First().Attr("href")
	link := p.resolveProductLink(href)

	priceTag := option.Find(".op_price .f_black").First()
	if priceTag.Length() == 0 {
		priceTag = option.Find(".op_price span").First()
	}
	if priceTag.Length() == 0 {
		return parser.Product{}, false
	}

	price := strutil.NormalizeSpaces(priceTag.Text())

	// 범위 가격(예: "146,000원~ 1,416,200원")은 시작 가격만 사용
	if idx := strings.Index(price, "~"); idx >= 0 {
		price = strings.TrimSpace(price[:idx])
	}
	if price == "" {
		if !strings.Contains(option.Text(), "품절") {
			return parser.Product{}, false
		}
		price = parser.PriceSoldOut
	}

	specs := []string{optionName}
	if detail := strutil.NormalizeSpaces(option.Find(".opt_name").First().Text()); detail != "" {
		if match := parenthesesRegexp.FindStringSubmatch(detail); match != nil {
			specs = append(specs, match[1])
		}
	}
	if baseSpecs := extractBaseSpecs(item); len(baseSpecs) > 0 {
		if len(baseSpecs) > 2 {
			baseSpecs = baseSpecs[:2]
		}
		specs = append(specs, baseSpecs...)
	}

	product, err := parser.NewProduct(
		baseName+" "+optionName,
		price,
		strings.Join(specs, " / "),
		link,
		parser.SiteCompuzone,
	)
	if err != nil {
		return parser.Product{}, false
	}
	return product, true
}

// extractBaseSpecs 상품 요소에서 기본 사양 정보를 추출합니다.
// .prd_subTxt가 가장 정확하며, 없으면 .prd_info 텍스트의 사양 구간에서 추출합니다.
func extractBaseSpecs(item *goquery.Selection) []string {
	if subText := strutil.NormalizeSpaces(item.Find(".prd_subTxt").First().Text()); len(subText) > 10 {
		specs := strutil.SplitAndTrim(subText, "/")
		if len(specs) > 3 {
			specs = specs[:3]
		}
		return specs
	}

	info := item.Find(".prd_info").First()
	if info.Length() == 0 {
		return nil
	}

	parts := strutil.SplitAndTrim(strutil.NormalizeSpaces(info.Text()), "|")
	if len(parts) <= 3 {
		return nil
	}

	specPart := parts[3]
	if len(specPart) <= 10 {
		return nil
	}
	for _, skip := range []string{"토스", "확정발주", "입고지연"} {
		if strings.Contains(specPart, skip) {
			return nil
		}
	}

	var specs []string
	for _, s := range strutil.SplitAndTrim(specPart, "/") {
		if len([]rune(s)) > 2 {
			specs = append(specs, s)
		}
		if len(specs) == 3 {
			break
		}
	}
	return specs
}
