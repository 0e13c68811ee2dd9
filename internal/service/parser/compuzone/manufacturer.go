package compuzone

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/darkkaiser/partscout/internal/service/parser"
	"github.com/darkkaiser/partscout/pkg/strutil"
)

// codeToBrand 사이트 분석으로 확인된 컴퓨존 제조사 코드와 브랜드명 매핑입니다.
var codeToBrand = map[string]string{
	// CPU
	"8": "AMD",
	"1": "INTEL",

	// 저장장치
	"2": "삼성전자", "6202": "삼성전자",
	"24": "Western Digital", "25": "SEAGATE",
	"6348": "Crucial", "18": "Kingston", "242": "Transcend",
	"3400": "ADATA", "20": "마이크론", "566": "하이디스크",
	"6549": "티맥스솔루션", "14948": "SK hynix",

	// 그래픽카드
	"14": "GIGABYTE", "9": "ASUS", "475": "MSI",
	"1111": "PNY", "8842": "PALIT", "2416": "ZOTAC",
	"6238": "INNO3D", "32": "GAINWARD", "3169": "MANLI",

	// 기타 PC부품
	"99": "HP", "763": "Corsair", "1046": "Patriot",
	"1419": "G.SKILL", "4629": "레노버",
}

// brandToCode codeToBrand의 역방향 매핑 (브랜드명 소문자 기준)
var brandToCode = func() map[string]string {
	m := make(map[string]string, len(codeToBrand))
	for code, brand := range codeToBrand {
		key := strings.ToLower(brand)
		// 같은 브랜드에 코드가 여러 개인 경우 작은 코드를 대표로 사용
		if existing, ok := m[key]; !ok || code < existing {
			m[key] = code
		}
	}
	return m
}()

// brandNameOfCode 제조사 코드를 브랜드명으로 변환합니다.
// 매핑에 없는 코드는 코드 자체를 브랜드명으로 취급합니다. (언더스코어는 공백으로 복원)
func brandNameOfCode(code string) string {
	if brand, ok := codeToBrand[code]; ok {
		return brand
	}
	return strings.ReplaceAll(code, "_", " ")
}

// knownManufacturersByCategory 검색어의 카테고리 추정에 따라 반환하는 정적 제조사 목록입니다.
// API와 상품 목록 양쪽에서 제조사를 얻지 못했을 때의 최후 수단입니다.
func knownManufacturersByCategory(keyword string) []parser.Manufacturer {
	keywordLower := strings.ToLower(keyword)

	containsAny := func(terms ...string) bool {
		for _, term := range terms {
			if strings.Contains(keywordLower, term) {
				return true
			}
		}
		return false
	}

	var brands []string
	switch {
	case containsAny("ssd", "nvme", "storage", "저장", "hdd", "하드"):
		brands = []string{"삼성전자", "Western Digital", "SEAGATE", "Kingston", "Crucial"}
	case containsAny("cpu", "processor", "프로세서"):
		brands = []string{"INTEL", "AMD"}
	case containsAny("gpu", "graphic", "그래픽"):
		brands = []string{"ASUS", "MSI", "GIGABYTE"}
	case containsAny("ram", "메모리", "ddr"):
		brands = []string{"삼성전자", "SK hynix", "Crucial", "G.SKILL", "Corsair"}
	default:
		brands = []string{"삼성전자", "Western Digital", "SEAGATE", "INTEL", "AMD", "ASUS", "MSI", "GIGABYTE"}
	}

	manufacturers := make([]parser.Manufacturer, 0, len(brands))
	for _, brand := range brands {
		m := parser.NewManufacturer(brand)
		if code, ok := brandToCode[strings.ToLower(brand)]; ok {
			m = m.WithCode(code)
		}
		manufacturers = append(manufacturers, m)
	}
	return manufacturers
}

// 제조사 체크박스 추출에 시도하는 CSS 선택자 목록
var makerCheckboxSelectors = []string{
	`input[name_vals*='|'][vals]`,
	`input[class*='chkMedium'][vals]`,
	`input[onclick*='chk_maker'][vals]`,
	`input[id^='chk'][vals]`,
}

var (
	digitsOnlyRegexp = regexp.MustCompile(`^\d+$`)
	labelCountRegexp = regexp.MustCompile(`\s*\(\d+\)\s*$`)
)

// DiscoverManufacturers 검색어에 대한 제조사 필터 후보를 수집합니다.
//
// 1단계로 검색 API의 제조사 체크박스에서 브랜드명과 코드를 추출하고,
// 2단계로 실제 검색된 상품명의 "[브랜드]" 태그에서 브랜드를 추출하며,
// 모두 실패하면 카테고리별 정적 제조사 목록을 반환합니다. 잡음 토큰은 걸러집니다.
func (p *Parser) DiscoverManufacturers(ctx context.Context, keyword string) ([]parser.Manufacturer, error) {
	if err := p.visitSearchPage(ctx, keyword); err != nil {
		return nil, err
	}

	if manufacturers := p.discoverFromSearchAPI(ctx, keyword); len(manufacturers) > 0 {
		return manufacturers, nil
	}

	p.logger.Debug("API 제조사 수집 실패, 상품명에서 브랜드 추출 시도")
	if manufacturers := p.discoverFromProducts(ctx, keyword); len(manufacturers) > 0 {
		return manufacturers, nil
	}

	p.logger.Debug("상품명 브랜드 추출 실패, 정적 제조사 목록 반환")
	return knownManufacturersByCategory(keyword), nil
}

// discoverFromSearchAPI 검색 API 응답의 제조사 체크박스에서 브랜드명과 코드를 추출합니다.
func (p *Parser) discoverFromSearchAPI(ctx context.Context, keyword string) []parser.Manufacturer {
	params := apiParams(keyword, "sale_order", categoryPCParts, "small", 20)
	params.Set("sub_actype", "maker")

	doc, err := p.fetchAPIDocument(ctx, keyword, params)
	if err != nil {
		p.logger.WithError(err).Debug("제조사 API 호출 실패")
		return nil
	}

	var manufacturers []parser.Manufacturer
	for _, selector := range makerCheckboxSelectors {
		doc.Find(selector).Each(func(_ int, checkbox *goquery.Selection) {
			code, _ := checkbox.Attr("vals")
			if !digitsOnlyRegexp.MatchString(code) {
				return
			}

			// name_vals 형식: "브랜드|ID"
			name := ""
			if nameVals, ok := checkbox.Attr("name_vals"); ok && strings.Contains(nameVals, "|") {
				name = strings.SplitN(nameVals, "|", 2)[0]
			}

			// name_vals가 없으면 연결된 label에서 추출 (괄호 안의 상품 수 제거)
			if name == "" {
				if id, ok := checkbox.Attr("id"); ok && id != "" {
					labelText := doc.Find(`label[for='` + id + `']`).First().Text()
					name = labelCountRegexp.ReplaceAllString(strings.TrimSpace(labelText), "")
				}
			}

			name = strutil.NormalizeSpaces(name)
			if name == "" || parser.IsGenericTerm(name) {
				return
			}

			manufacturers = append(manufacturers, parser.NewManufacturer(name, code))
		})

		if len(manufacturers) > 0 {
			break
		}
	}

	manufacturers = parser.MergeManufacturers(manufacturers)
	if len(manufacturers) > maxManufacturers {
		manufacturers = manufacturers[:maxManufacturers]
	}
	return manufacturers
}

// discoverFromProducts 실제 검색된 상품명의 "[브랜드]" 태그에서 브랜드를 추출합니다.
// 상품 수가 많은 브랜드부터 최대 12개까지 반환합니다.
func (p *Parser) discoverFromProducts(ctx context.Context, keyword string) []parser.Manufacturer {
	doc, err := p.fetchAPIDocument(ctx, keyword, apiParams(keyword, "sale_order", categoryPCParts, "small", 100))
	if err != nil {
		p.logger.WithError(err).Debug("상품 목록 호출 실패")
		return nil
	}

	items := selectProductItems(doc)
	if items == nil {
		return nil
	}

	counts := make(map[string]int)
	items.Each(func(_ int, item *goquery.Selection) {
		name := strutil.NormalizeSpaces(item.Find(".prd_info_name").First().Text())
		match := bracketBrandRegexp.FindStringSubmatch(name)
		if match == nil {
			return
		}

		brand := strings.TrimSpace(match[1])
		if len([]rune(brand)) <= 1 || parser.IsGenericTerm(brand) {
			return
		}
		counts[brand]++
	})

	brands := make([]string, 0, len(counts))
	for brand := range counts {
		brands = append(brands, brand)
	}
	sort.Slice(brands, func(i, j int) bool {
		if counts[brands[i]] != counts[brands[j]] {
			return counts[brands[i]] > counts[brands[j]]
		}
		return brands[i] < brands[j]
	})

	if len(brands) > 12 {
		brands = brands[:12]
	}

	manufacturers := make([]parser.Manufacturer, 0, len(brands))
	for _, brand := range brands {
		m := parser.NewManufacturer(brand)
		if code, ok := brandToCode[strings.ToLower(brand)]; ok {
			m = m.WithCode(code)
		}
		manufacturers = append(manufacturers, m)
	}
	return manufacturers
}
