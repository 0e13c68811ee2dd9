package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/darkkaiser/partscout/pkg/errors"
	"github.com/darkkaiser/partscout/pkg/strutil"
)

// 가격 필드에 사용되는 상태 표기값입니다.
// 가격 필드는 어떤 경우에도 빈 문자열이 되지 않으며, 값이 없을 때는 아래 표기값으로 대체됩니다.
const (
	// PriceSoldOut 품절 상태
	PriceSoldOut = "품절"

	// PriceInquiry 가격 문의 상태 (전화/상담 필요)
	PriceInquiry = "가격 문의"

	// PriceUnknown 가격 정보를 얻지 못한 상태
	PriceUnknown = "가격 정보 없음"

	// SpecUnknown 사양 정보를 얻지 못한 상태
	SpecUnknown = "사양 정보 없음"
)

var (
	// 사양 문자열에서 용량(숫자+단위)을 추출하는 정규식
	specCapacityRegexp = regexp.MustCompile(`(\d+)\s*([KMGT]?B)`)

	// 사양 문자열에서 그래픽카드 시리즈(RTX 5080 등)를 추출하는 정규식
	specSeriesRegexp = regexp.MustCompile(`(RTX|GTX|RX|ARC)\s*(\d+)`)

	// 가격 문자열에서 연속된 숫자를 추출하는 정규식
	priceDigitsRegexp = regexp.MustCompile(`\d+`)
)

// Product 하나의 사이트에 게시된 단일 상품 정보를 표현하는 값 객체입니다.
//
// NewProduct를 통해 생성되는 시점에 검증과 정규화가 모두 수행되며, 이후에는 변경되지 않습니다.
// 어디에도 저장되지 않고 하나의 검색 요청 동안에만 유지됩니다.
type Product struct {
	// Name 상품명. 대괄호로 감싼 제조사 태그를 포함할 수 있습니다. (예: "[삼성전자] 990 EVO 1TB")
	Name string `json:"name"`

	// Price 가격 표시 문자열. 원화 형식("89,900원") 또는 상태 표기값(품절 등)입니다.
	Price string `json:"price"`

	// Specifications "/"로 구분된 사양 목록. 값이 없으면 SpecUnknown입니다.
	Specifications string `json:"specifications"`

	// ProductLink 상품 상세 페이지의 절대 URL. 알 수 없으면 빈 문자열입니다.
	ProductLink string `json:"product_link"`

	// Site 출처 사이트 표기 (예: "컴퓨존", "가이드컴", "다나와")
	Site string `json:"site"`
}

// NewProduct 파싱된 원본 값으로부터 정규화된 Product를 생성합니다.
//
// 수행하는 작업:
//  1. 필수 필드(상품명) 유효성 검사
//  2. 모든 필드의 공백 정리
//  3. 가격 형식 표준화 (상태 표기값 변환, 원화 형식 변환)
//  4. 사양 정보 정리 (의미 기반 중복 제거)
func NewProduct(name, price, specifications, productLink, site string) (Product, error) {
	name = strutil.NormalizeSpaces(name)
	if name == "" {
		return Product{}, apperrors.New(apperrors.InvalidInput, "상품명은 비어있을 수 없습니다")
	}

	return Product{
		Name:           name,
		Price:          standardizePrice(strutil.NormalizeSpaces(price)),
		Specifications: cleanSpecifications(strutil.NormalizeSpaces(specifications)),
		ProductLink:    strings.TrimSpace(productLink),
		Site:           strutil.NormalizeSpaces(site),
	}, nil
}

// standardizePrice 가격 문자열을 표준 형식으로 변환합니다.
//
// 변환 규칙:
//   - 빈 문자열: PriceUnknown
//   - 품절 관련 문구 포함: PriceSoldOut
//   - 문의 관련 문구 포함: PriceInquiry
//   - 숫자 포함: 천 단위 구분 기호가 있는 원화 형식 ("89,900원")
//   - 그 외: 원본 그대로 유지
func standardizePrice(price string) string {
	if price == "" {
		return PriceUnknown
	}

	if strutil.ContainsFold(price, "품절") || strutil.ContainsFold(price, "재고없음") || strutil.ContainsFold(price, "일시품절") {
		return PriceSoldOut
	}

	if strutil.ContainsFold(price, "문의") || strutil.ContainsFold(price, "전화") || strutil.ContainsFold(price, "상담") {
		return PriceInquiry
	}

	digits := strutil.ExtractDigits(price)
	if digits != "" {
		// 이미 "원"으로 끝나면 형식이 갖춰진 것으로 간주
		if strings.HasSuffix(price, "원") {
			return price
		}

		if num, err := strconv.ParseInt(digits, 10, 64); err == nil {
			return strutil.FormatCommas(num) + "원"
		}
	}

	return price
}

// cleanSpecifications "/"로 구분된 사양 목록을 정리합니다.
//
// 각 항목의 공백을 정리하고, 의미적으로 중복되는 항목(동일 용량, 동일 제품 시리즈)을 제거합니다.
// 중복 항목 중에서는 더 많은 정보를 담은(더 긴) 항목이 유지됩니다. 이 연산은 멱등합니다.
func cleanSpecifications(specs string) string {
	if specs == "" {
		return SpecUnknown
	}

	parts := strutil.SplitAndTrim(specs, "/")
	if parts == nil {
		return SpecUnknown
	}

	var unique []string
	for _, part := range parts {
		duplicated := false
		for i, existing := range unique {
			if isSemanticDuplicateSpec(part, existing) {
				// 더 정보가 많은(긴) 항목을 유지
				if len(part) > len(existing) {
					unique[i] = part
				}
				duplicated = true
				break
			}
		}
		if !duplicated {
			unique = append(unique, part)
		}
	}

	return strings.Join(unique, " / ")
}

// isSemanticDuplicateSpec 두 사양 항목이 의미적으로 동일한 정보를 담고 있는지 판단합니다.
func isSemanticDuplicateSpec(a, b string) bool {
	ta := strings.ToLower(strings.TrimSpace(a))
	tb := strings.ToLower(strings.TrimSpace(b))

	if ta == tb {
		return true
	}

	// 숫자+단위 패턴으로 용량 비교 (같은 용량의 메모리/저장장치 표기이면 중복)
	capA := specCapacityRegexp.FindStringSubmatch(strings.ToUpper(a))
	capB := specCapacityRegexp.FindStringSubmatch(strings.ToUpper(b))
	if capA != nil && capB != nil && capA[1] == capB[1] && capA[2] == capB[2] {
		return true
	}

	// 제품 시리즈 중복 (RTX 5080 등)
	serA := specSeriesRegexp.FindStringSubmatch(strings.ToUpper(a))
	serB := specSeriesRegexp.FindStringSubmatch(strings.ToUpper(b))
	if serA != nil && serB != nil && serA[1] == serB[1] && serA[2] == serB[2] {
		return true
	}

	return false
}

// IsPriceAvailable 가격이 실제 구매 가능한 상태인지 확인합니다.
func (p Product) IsPriceAvailable() bool {
	for _, term := range []string{PriceSoldOut, PriceInquiry, PriceUnknown, "재고없음"} {
		if strings.Contains(p.Price, term) {
			return false
		}
	}
	return true
}

// PriceRank 정렬에 사용하는 가격 순위값을 반환합니다.
//
// 가격 문자열에서 숫자만 추출하여 정수로 해석하며, 숫자가 없는 상태 표기값(품절, 가격 문의 등)은
// 항상 목록의 끝에 정렬되도록 +Inf를 반환합니다. 파싱 가능한 모든 가격에 대해 숫자 크기와
// 순위가 단조(monotonic) 관계를 유지합니다.
func (p Product) PriceRank() float64 {
	if !p.IsPriceAvailable() {
		return math.Inf(1)
	}

	digits := strings.Join(priceDigitsRegexp.FindAllString(p.Price, -1), "")
	if digits == "" {
		return math.Inf(1)
	}

	num, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return math.Inf(1)
	}
	return num
}

// ShortName 긴 상품명을 UI 표시에 맞게 축약하여 반환합니다.
func (p Product) ShortName(maxLength int) string {
	runes := []rune(p.Name)
	if len(runes) <= maxLength {
		return p.Name
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}

// DeduplicateByName 상품명이 정확히 일치하는 중복 상품을 제거합니다. (최초 등장 순서 유지)
func DeduplicateByName(products []Product) []Product {
	if len(products) == 0 {
		return products
	}

	seen := make(map[string]struct{}, len(products))
	unique := make([]Product, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}
