package guidecom

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/darkkaiser/partscout/internal/service/parser"
	"github.com/darkkaiser/partscout/pkg/strutil"
)

var (
	hangulRegexp         = regexp.MustCompile(`[가-힣]`)
	brandSeparatorRegexp = regexp.MustCompile(`[\s._/-]+`)
)

// normalizeBrandCode 제조사 이름을 가이드컴 필터 코드 표기로 정규화합니다.
// 소문자 변환 후 구분 기호를 공백으로 통일하고, 알려진 별칭은 대표 표기로 바꿉니다.
func normalizeBrandCode(name string) string {
	normalized := brandSeparatorRegexp.ReplaceAllString(strings.ToLower(name), " ")
	normalized = strings.TrimSpace(normalized)

	aliases := map[string]string{
		"wd":      "western digital",
		"웨스턴 디지털": "western digital",
		"에이수스":    "asus",
		"기가바이트":   "gigabyte",
		"조텍":      "zotac",
		"엔비디아":    "nvidia",
		"삼성":      "삼성전자",
		"samsung": "삼성전자",
		"g skill": "gskill",
		"tp link": "tp link",
	}
	if canonical, ok := aliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// DiscoverManufacturers 검색 결과 상품명에서 제조사 필터 후보를 수집합니다.
//
// 가이드컴은 제조사 필터 UI가 없으므로, 인기상품 검색 결과의 상품명 선두 토큰에서
// 제조사를 추출합니다. 잡음 토큰을 거른 뒤 한글 제조사 우선으로 정렬하여 최대 12개를
// 반환하며, 각 제조사의 코드는 정규화된 이름(공백은 언더스코어)입니다.
func (p *Parser) DiscoverManufacturers(ctx context.Context, keyword string) ([]parser.Manufacturer, error) {
	rows, err := p.fetchGoodsRows(ctx, keyword, orderPopular)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return []parser.Manufacturer{}, nil
	}

	seen := make(map[string]struct{})
	var names []string

	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		// 상위 50개 상품만 검사
		if i >= 50 {
			return false
		}

		var productName string
		for _, selector := range nameSelectors {
			if productName = strutil.NormalizeSpaces(row.Find(selector).First().Text()); productName != "" {
				break
			}
		}

		maker := parser.ExtractManufacturerFromName(productName)
		if maker == "" || parser.IsGenericTerm(maker) {
			return true
		}

		if _, ok := seen[maker]; !ok {
			seen[maker] = struct{}{}
			names = append(names, maker)
		}
		return true
	})

	// 한글 제조사 우선, 그 다음 정규화된 이름의 사전순
	sort.SliceStable(names, func(i, j int) bool {
		iHangul := hangulRegexp.MatchString(names[i])
		jHangul := hangulRegexp.MatchString(names[j])
		if iHangul != jHangul {
			return iHangul
		}
		return normalizeBrandCode(names[i]) < normalizeBrandCode(names[j])
	})

	if len(names) > 12 {
		names = names[:12]
	}

	manufacturers := make([]parser.Manufacturer, 0, len(names))
	for _, name := range names {
		code := strings.ReplaceAll(normalizeBrandCode(name), " ", "_")
		manufacturers = append(manufacturers, parser.NewManufacturer(name, code))
	}
	return manufacturers, nil
}
