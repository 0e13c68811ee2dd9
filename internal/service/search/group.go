package search

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/darkkaiser/partscout/internal/service/parser"
	"github.com/darkkaiser/partscout/pkg/strutil"
)

// DefaultGroupThreshold 동일 그룹으로 판단하는 기본 유사도 임계값
const DefaultGroupThreshold = 0.6

// representativeNameMaxLength 그룹 대표 이름의 최대 길이 (rune 기준)
const representativeNameMaxLength = 50

// ProductGroup 유사한 상품들을 하나로 묶은 그룹입니다.
type ProductGroup struct {
	// Representative 그룹을 대표하는 정리된 상품명
	Representative string `json:"representative"`

	// Products 그룹에 속한 상품 목록 (가격 오름차순)
	Products []parser.Product `json:"products"`

	// LowestPrice 그룹 내 최저가 표시 문자열 (가격 정보가 전혀 없으면 빈 문자열)
	LowestPrice string `json:"lowest_price,omitempty"`
}

var (
	bracketTagRegexp  = regexp.MustCompile(`\[[^\]]*\]`)
	parenthesesRegexp = regexp.MustCompile(`\([^)]*\)`)
	punctuationRegexp = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
)

// normalizeForSimilarity 유사도 비교용으로 상품명을 정규화합니다.
// 대괄호/소괄호 태그와 구두점을 제거하고 공백을 정리한 뒤 소문자로 변환합니다.
func normalizeForSimilarity(name string) string {
	name = bracketTagRegexp.ReplaceAllString(name, " ")
	name = parenthesesRegexp.ReplaceAllString(name, " ")
	name = punctuationRegexp.ReplaceAllString(name, " ")
	return strings.ToLower(strutil.NormalizeSpaces(name))
}

// cleanRepresentativeName 그룹 대표 이름을 만듭니다.
// 대괄호 태그를 제거하고 공백을 정리한 뒤 최대 길이로 자릅니다.
func cleanRepresentativeName(name string) string {
	cleaned := strutil.NormalizeSpaces(bracketTagRegexp.ReplaceAllString(name, " "))
	if cleaned == "" {
		cleaned = strutil.NormalizeSpaces(name)
	}

	if runes := []rune(cleaned); len(runes) > representativeNameMaxLength {
		cleaned = strings.TrimSpace(string(runes[:representativeNameMaxLength]))
	}
	return cleaned
}

// Similarity 두 상품명의 유사도를 [0, 1] 범위로 계산합니다.
//
// 정규화된 이름에 대해 공통 문자열 조각(매칭 런)의 총 길이를 구하는
// Ratcliff/Obershelp 방식을 사용합니다. 결과는 대칭적입니다.
func Similarity(name1, name2 string) float64 {
	a := []rune(normalizeForSimilarity(name1))
	b := []rune(normalizeForSimilarity(name2))

	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	matches := matchingRunes(a, b)
	return 2 * float64(matches) / float64(len(a)+len(b))
}

// matchingRunes 두 rune 시퀀스에서 매칭되는 문자의 총 개수를 계산합니다.
// 가장 긴 공통 부분 문자열을 찾고, 그 좌우 구간에 대해 재귀적으로 반복합니다.
func matchingRunes(a, b []rune) int {
	aStart, bStart, size := longestCommonRun(a, b)
	if size == 0 {
		return 0
	}

	matches := size
	matches += matchingRunes(a[:aStart], b[:bStart])
	matches += matchingRunes(a[aStart+size:], b[bStart+size:])
	return matches
}

// longestCommonRun 두 rune 시퀀스의 가장 긴 공통 부분 문자열 위치와 길이를 찾습니다.
func longestCommonRun(a, b []rune) (aStart, bStart, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// runLengths[j]: a[i]와 b[j]에서 끝나는 공통 런의 길이
	runLengths := make([]int, len(b)+1)
	for i := range a {
		// 뒤에서부터 갱신하여 이전 행의 값을 재사용합니다.
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				length := runLengths[j] + 1
				runLengths[j+1] = length
				if length > size {
					size = length
					aStart = i - length + 1
					bStart = j - length + 1
				}
			} else {
				runLengths[j+1] = 0
			}
		}
	}
	return aStart, bStart, size
}

// GroupSimilar 상품 목록을 유사도 기준으로 그룹핑합니다.
//
// 아직 그룹에 속하지 않은 첫 번째 상품이 새 그룹의 대표가 되고, 나머지 상품 중
// 대표와의 유사도가 threshold 이상인 상품들이 같은 그룹으로 묶입니다.
// 모든 상품은 정확히 하나의 그룹에 속합니다. threshold가 범위를 벗어나면
// 기본값(0.6)을 사용합니다.
func GroupSimilar(products []parser.Product, threshold float64) []ProductGroup {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultGroupThreshold
	}

	var groups []ProductGroup
	grouped := make([]bool, len(products))

	for i, representative := range products {
		if grouped[i] {
			continue
		}
		grouped[i] = true

		group := ProductGroup{
			Representative: cleanRepresentativeName(representative.Name),
			Products:       []parser.Product{representative},
		}

		for j := i + 1; j < len(products); j++ {
			if grouped[j] {
				continue
			}
			if Similarity(representative.Name, products[j].Name) >= threshold {
				grouped[j] = true
				group.Products = append(group.Products, products[j])
			}
		}

		SortByPriceRank(group.Products)
		if len(group.Products) > 0 && group.Products[0].IsPriceAvailable() {
			group.LowestPrice = group.Products[0].Price
		}

		groups = append(groups, group)
	}

	return groups
}

// SortByPriceRank 상품 목록을 가격 오름차순으로 정렬합니다.
// 가격 정보가 없는 상품(품절, 가격 문의 등)은 항상 마지막에 위치합니다.
func SortByPriceRank(products []parser.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].PriceRank() < products[j].PriceRank()
	})
}

// CheapestSet 가격이 가장 낮은 상품들의 집합을 반환합니다.
// 최저가가 동일한 상품이 여러 개면 모두 포함되며, 가격 정보가 있는 상품이
// 하나도 없으면 빈 목록을 반환합니다.
func CheapestSet(products []parser.Product) []parser.Product {
	lowest := math.Inf(1)
	for _, product := range products {
		if rank := product.PriceRank(); rank < lowest {
			lowest = rank
		}
	}
	if math.IsInf(lowest, 1) {
		return nil
	}

	var cheapest []parser.Product
	for _, product := range products {
		if product.PriceRank() == lowest {
			cheapest = append(cheapest, product)
		}
	}
	return cheapest
}
