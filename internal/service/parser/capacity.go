package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/darkkaiser/partscout/pkg/strutil"
)

// capacityRegexp 검색어나 상품명에서 용량(숫자+단위)을 추출하는 정규식
var capacityRegexp = regexp.MustCompile(`(?i)(\d+)\s*(TB|GB|MB)`)

// Capacity 저장 용량을 표현합니다. 단위가 달라도 동등성을 비교할 수 있도록
// 추출 당시의 표기(Amount, Unit)를 그대로 보존합니다.
type Capacity struct {
	Amount int64
	Unit   string // "TB", "GB", "MB"
}

// ExtractCapacity 문자열에서 첫 번째 용량 표기를 추출합니다.
// 용량 표기가 없으면 두 번째 반환값이 false입니다.
func ExtractCapacity(s string) (Capacity, bool) {
	match := capacityRegexp.FindStringSubmatch(s)
	if match == nil {
		return Capacity{}, false
	}

	amount, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return Capacity{}, false
	}

	return Capacity{Amount: amount, Unit: strings.ToUpper(match[2])}, true
}

// String 용량의 표준 표기("1TB")를 반환합니다.
func (c Capacity) String() string {
	return fmt.Sprintf("%d%s", c.Amount, c.Unit)
}

// Megabytes 단위 환산을 위한 MB 기준 크기를 반환합니다. (1TB = 1024GB = 1048576MB)
func (c Capacity) Megabytes() int64 {
	switch c.Unit {
	case "TB":
		return c.Amount * 1024 * 1024
	case "GB":
		return c.Amount * 1024
	default:
		return c.Amount
	}
}

// Equal 표기 단위가 달라도 실제 크기가 같으면 동일한 용량으로 판단합니다.
// (예: 1TB == 1024GB)
func (c Capacity) Equal(other Capacity) bool {
	return c.Megabytes() == other.Megabytes()
}

// MatchesText 주어진 텍스트(상품명, 옵션명)가 이 용량에 해당하는지 확인합니다.
//
// 단어 경계를 존중하는 검사를 수행하므로 "8GB"가 "128GB"에 오검출되지 않으며,
// 텍스트에 등장하는 모든 용량 표기에 대해 단위 환산 동등성도 함께 확인합니다.
func (c Capacity) MatchesText(text string) bool {
	// 동일 표기가 단어 단위로 존재하는지 (공백 유무 변형 포함)
	if strutil.ContainsWordFold(text, c.String()) ||
		strutil.ContainsWordFold(text, fmt.Sprintf("%d %s", c.Amount, c.Unit)) {
		return true
	}

	// 단위가 다른 동등 용량 확인 (1TB == 1024GB)
	for _, match := range capacityRegexp.FindAllStringSubmatch(text, -1) {
		amount, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			continue
		}
		if c.Equal(Capacity{Amount: amount, Unit: strings.ToUpper(match[2])}) {
			return true
		}
	}

	return false
}

// FilterByCapacity 용량 필터 문자열로 상품 목록을 걸러냅니다.
//
// 필터 문자열에서 용량이 추출되지 않으면 필터링 없이 원본을 그대로 반환합니다.
// 상품명과 사양 어느 쪽에든 해당 용량이 있으면 일치로 판단합니다.
func FilterByCapacity(products []Product, capacityFilter string) []Product {
	target, ok := ExtractCapacity(capacityFilter)
	if !ok {
		return products
	}

	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if target.MatchesText(p.Name) || target.MatchesText(p.Specifications) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
