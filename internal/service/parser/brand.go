package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/darkkaiser/partscout/pkg/strutil"
)

// brandAliasTable 브랜드별 동의어 테이블입니다.
//
// 사용자가 어떤 표기(한글명, 영문명, 대표 제품군명)로 브랜드를 지정하더라도 동일한 브랜드로
// 인식되도록, 모든 사이트 파서가 이 테이블 하나를 공유합니다. 각 그룹의 첫 항목이 대표 표기입니다.
var brandAliasTable = [][]string{
	{"amd", "라이젠", "ryzen"},
	{"intel", "인텔", "코어", "core"},
	{"samsung", "삼성", "삼성전자"},
	{"nvidia", "지포스", "geforce", "rtx", "gtx"},
	{"western digital", "wd", "웨스턴디지털"},
	{"seagate", "시게이트"},
	{"sk hynix", "hynix", "하이닉스", "sk하이닉스"},
	{"micron", "마이크론", "crucial", "크루셜"},
	{"kingston", "킹스톤"},
}

var (
	// 홍보 문구 등 브랜드가 될 수 없는 토큰 (상품명 첫 단어에 자주 등장)
	marketingWords = map[string]struct{}{
		"신제품": {}, "병행수입": {}, "벌크": {}, "정품": {}, "특가": {},
		"할인": {}, "무료배송": {}, "당일발송": {}, "단독특가": {}, "한정수량": {},
		"1월": {}, "2월": {}, "3월": {}, "4월": {}, "5월": {}, "6월": {},
		"7월": {}, "8월": {}, "9월": {}, "10월": {}, "11월": {}, "12월": {},
	}

	// 두 단어로 이루어진 브랜드명 (첫 단어만으로는 식별 불가)
	twoWordBrands = map[string]string{
		"western": "digital",
		"tp":      "link",
		"g":       "skill",
		"team":    "group",
	}

	genericTermPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d+$`),               // 순수 숫자
		regexp.MustCompile(`^[^\p{L}\p{N}]+$`),    // 순수 기호
		regexp.MustCompile(`신.*품`),                // 신제품, 신상품 류
		regexp.MustCompile(`.*가격`),                // 최저가격 류
		regexp.MustCompile(`.*배송`),                // 무료배송 류
		regexp.MustCompile(`^\d{1,2}[./]\d{1,2}`), // 날짜 표기
	}

	koreanParticleSuffixes = []string{"은", "는", "이", "가", "을", "를", "의", "에"}
)

// AliasesOf 주어진 브랜드 표기가 속한 동의어 그룹 전체를 반환합니다.
// 테이블에 없는 브랜드는 자기 자신만 담은 그룹을 반환합니다.
func AliasesOf(brand string) []string {
	brand = strings.ToLower(strings.TrimSpace(brand))
	if brand == "" {
		return nil
	}

	for _, group := range brandAliasTable {
		for _, alias := range group {
			if alias == brand {
				return group
			}
		}
	}
	return []string{brand}
}

// CanonicalBrand 브랜드 표기를 동의어 그룹의 대표 표기로 정규화합니다.
func CanonicalBrand(brand string) string {
	normalized := strings.ToLower(strings.TrimSpace(brand))
	for _, group := range brandAliasTable {
		for _, alias := range group {
			if alias == normalized {
				return group[0]
			}
		}
	}
	return normalized
}

// MatchesBrands 상품명이 지정된 브랜드 중 하나에 해당하는지 확인합니다.
//
// 브랜드 목록이 비어있으면 필터링하지 않는 것으로 간주하여 항상 true를 반환합니다.
// 각 브랜드의 모든 동의어에 대해 대소문자 무시 부분 문자열 검사를 수행하므로,
// "amd"를 지정하면 "AMD 라이젠 9 9950X"도 일치합니다.
func MatchesBrands(productName string, brands []string) bool {
	if len(brands) == 0 {
		return true
	}

	for _, brand := range brands {
		for _, alias := range AliasesOf(brand) {
			if strutil.ContainsFold(productName, alias) {
				return true
			}
		}
	}
	return false
}

// NormalizeManufacturerName 사이트마다 다른 제조사 표기를 통일된 표시 이름으로 변환합니다.
func NormalizeManufacturerName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "wd":
		return "Western Digital"
	case "삼성", "samsung":
		return "삼성전자"
	}
	return strings.TrimSpace(name)
}

// IsGenericTerm 제조사 이름으로 쓰일 수 없는 일반 명사성 토큰인지 판단합니다.
//
// 순수 숫자/기호, 홍보 문구 패턴, 날짜 표기, 너무 짧은 한글 단어, 조사로 끝나는 한글
// 단어를 걸러냅니다. 제조사 후보 목록에 잡음이 섞이는 것을 막기 위한 최종 관문입니다.
func IsGenericTerm(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return true
	}

	if _, ok := marketingWords[token]; ok {
		return true
	}

	for _, pattern := range genericTermPatterns {
		if pattern.MatchString(token) {
			return true
		}
	}

	if isHangul(token) {
		runes := []rune(token)
		if len(runes) <= 2 {
			return true
		}
		for _, suffix := range koreanParticleSuffixes {
			if strings.HasSuffix(token, suffix) {
				return true
			}
		}
	}

	return false
}

// isHangul 문자열이 한글로만 이루어져 있는지 확인합니다.
func isHangul(s string) bool {
	for _, r := range s {
		if !unicode.Is(unicode.Hangul, r) {
			return false
		}
	}
	return s != ""
}

// ExtractManufacturerFromName 상품명에서 제조사로 추정되는 선두 토큰을 추출합니다.
//
// 상품명 맨 앞의 홍보 문구(신제품, 병행수입 등)를 건너뛰고 첫 실질 토큰을 취하며,
// 두 단어짜리 브랜드(Western Digital 등)는 다음 토큰과 결합합니다.
// 제조사를 찾지 못하면 빈 문자열을 반환합니다.
func ExtractManufacturerFromName(productName string) string {
	fields := strings.Fields(productName)

	for i, field := range fields {
		token := strings.Trim(field, "[]()")
		if token == "" {
			continue
		}
		if _, skip := marketingWords[token]; skip {
			continue
		}

		// 정규화 테이블에 등재된 표기("삼성", "WD" 등)는 짧더라도 제조사로 인정
		if normalized := NormalizeManufacturerName(token); normalized != strings.TrimSpace(token) {
			return normalized
		}

		if IsGenericTerm(token) {
			continue
		}

		// 두 단어 브랜드 결합
		if next, ok := twoWordBrands[strings.ToLower(token)]; ok && i+1 < len(fields) {
			if strings.EqualFold(strings.Trim(fields[i+1], "[]()"), next) {
				return NormalizeManufacturerName(token + " " + strings.Trim(fields[i+1], "[]()"))
			}
		}

		return NormalizeManufacturerName(token)
	}

	return ""
}
