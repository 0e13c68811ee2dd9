// Package strutil은 문자열 처리를 위한 다양한 유틸리티 함수들을 제공합니다.
package strutil

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	// HTML 태그 제거에 사용하는 정규식
	// < 다음에 영문자가 오는 경우만 태그로 인식하여 수학 기호(<) 오탐지를 방지합니다.
	// 예: "3 < 5"는 유지되고, "<br>"이나 "<b>"는 제거됩니다.
	htmlTagRegexp = regexp.MustCompile(`</?([a-zA-Z]+)[^>]*>`)
)

// NormalizeSpaces 문자열의 앞뒤 공백을 제거하고 연속된 공백을 하나로 축약합니다.
// 예: "  hello   world  " -> "hello world"
func NormalizeSpaces(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

// Integer 모든 정수 타입을 포괄하는 제네릭 인터페이스
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// FormatCommas 숫자를 천 단위 구분 기호(,)가 포함된 문자열로 변환합니다.
// 예: 1234567 -> "1,234,567"
func FormatCommas[T Integer](num T) string {
	str := fmt.Sprintf("%d", num)

	// 음수 처리 (문자열 기반으로 판단)
	startOffset := 0
	if strings.HasPrefix(str, "-") {
		startOffset = 1
	}

	// 콤마가 필요 없는 경우 (3자리 이하)
	if len(str)-startOffset <= 3 {
		return str
	}

	var builder strings.Builder

	// 예상 크기 미리 할당: 원래 길이 + 콤마 개수
	commaCount := (len(str) - startOffset - 1) / 3
	builder.Grow(len(str) + commaCount)

	if startOffset == 1 {
		builder.WriteByte('-')
		str = str[1:]
	}

	// 첫 번째 그룹 (1~3자리)
	firstGroupLen := len(str) % 3
	if firstGroupLen == 0 {
		firstGroupLen = 3
	}

	builder.WriteString(str[:firstGroupLen])

	// 나머지 그룹들 (3자리씩)
	for i := firstGroupLen; i < len(str); i += 3 {
		builder.WriteByte(',')
		builder.WriteString(str[i : i+3])
	}

	return builder.String()
}

// SplitAndTrim 주어진 구분자로 문자열을 분리한 후, 각 항목의 앞뒤 공백을 제거하고 빈 문자열을 제외한 슬라이스를 반환합니다.
// 결과가 없거나 입력 문자열이 비어있는 경우 nil을 반환합니다.
// 예: "a, , b,c" (구분자 ",") -> ["a", "b", "c"]
func SplitAndTrim(s, sep string) []string {
	tokens := strings.Split(s, sep)
	if len(tokens) == 0 {
		return nil
	}

	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token != "" {
			result = append(result, token)
		}
	}

	if len(result) == 0 {
		return nil
	}

	return result
}

// ExtractDigits 문자열에서 숫자(0-9)만 추출하여 반환합니다.
// 예: "1,234,560원" -> "1234560"
func ExtractDigits(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// StripHTMLTags 문자열에서 HTML 태그를 제거하고, HTML 엔티티를 디코딩하여 순수한 텍스트를 반환합니다.
// 예: "<b>Hello</b> &amp; World" -> "Hello & World"
func StripHTMLTags(s string) string {
	stripped := htmlTagRegexp.ReplaceAllString(s, "")
	return html.UnescapeString(stripped)
}

// ContainsFold 문자열 s가 substr을 대소문자 구분 없이 포함하는지 검사합니다.
//
// 표준 라이브러리의 strings.ToLower(s)를 사용할 경우, 매 호출마다 전체 문자열의 복사본을
// 힙에 할당하게 됩니다. 이 함수는 원본 문자열을 순회하며 필요한 부분만 슬라이싱하여
// strings.EqualFold로 비교하는 방식으로 메모리 할당을 억제합니다.
//
// 이 최적화는 대소문자 변환 시 바이트 길이가 동일하다는 가정에 의존합니다.
// ASCII와 한글에서는 정상 동작합니다.
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	if len(s) < len(substr) {
		return false
	}

	for i := range s {
		if i+len(substr) > len(s) {
			break
		}
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return true
		}
	}
	return false
}

// ContainsWordFold 문자열 s가 word를 대소문자 구분 없이 '단어 단위'로 포함하는지 검사합니다.
//
// 단어 경계는 영문자/숫자가 아닌 문자(공백, 괄호, 하이픈 등) 또는 문자열의 시작/끝입니다.
// 예: "Samsung 980 1TB"는 "1TB"를 포함하지만, "11TB"는 "1TB"를 포함하지 않습니다.
func ContainsWordFold(s, word string) bool {
	if word == "" {
		return true
	}

	for i := range s {
		if i+len(word) > len(s) {
			break
		}
		if !strings.EqualFold(s[i:i+len(word)], word) {
			continue
		}

		// 앞쪽 경계 검사
		if i > 0 {
			prev, _ := lastRune(s[:i])
			if isWordRune(prev) {
				continue
			}
		}

		// 뒤쪽 경계 검사
		if i+len(word) < len(s) {
			next := firstRune(s[i+len(word):])
			if isWordRune(next) {
				continue
			}
		}

		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) (rune, int) {
	var last rune
	var size int
	for i, r := range s {
		last = r
		size = len(s) - i
	}
	return last, size
}
