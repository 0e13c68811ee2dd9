package parser

import (
	"sort"
	"strings"
)

// Manufacturer 검색 결과에서 발견된 제조사와, 해당 제조사를 가리키는 사이트별 필터 코드 집합입니다.
//
// 같은 제조사가 여러 사이트에서 서로 다른 코드로 표현되므로, 이름을 기준으로 병합하여
// 코드 집합을 누적합니다. 코드가 없는 사이트(이름 기반 필터링)는 빈 집합을 가집니다.
type Manufacturer struct {
	// Name 제조사 표시 이름 (예: "삼성전자", "Western Digital")
	Name string `json:"name"`

	// Codes 사이트별 제조사 필터 코드 집합 (정렬된 상태로 유지)
	Codes []string `json:"codes"`
}

// NewManufacturer 이름과 코드 목록으로 Manufacturer를 생성합니다. 중복 코드는 제거됩니다.
func NewManufacturer(name string, codes ...string) Manufacturer {
	m := Manufacturer{Name: strings.TrimSpace(name)}
	for _, code := range codes {
		m = m.WithCode(code)
	}
	return m
}

// WithCode 코드를 추가한 새 Manufacturer를 반환합니다. 이미 포함된 코드이면 그대로 반환합니다.
func (m Manufacturer) WithCode(code string) Manufacturer {
	code = strings.TrimSpace(code)
	if code == "" || m.HasCode(code) {
		return m
	}

	codes := make([]string, 0, len(m.Codes)+1)
	codes = append(codes, m.Codes...)
	codes = append(codes, code)
	sort.Strings(codes)

	return Manufacturer{Name: m.Name, Codes: codes}
}

// HasCode 해당 코드가 집합에 포함되어 있는지 확인합니다.
func (m Manufacturer) HasCode(code string) bool {
	for _, c := range m.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// manufacturerKey 병합시 동일 제조사로 취급할 키를 반환합니다. (대소문자, 공백 무시)
func manufacturerKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// MergeManufacturers 여러 사이트에서 수집한 제조사 목록을 이름 기준으로 병합합니다.
//
// 대소문자와 공백 차이만 있는 이름("Western Digital"과 "western digital")은 같은 제조사로
// 취급하여 코드 집합을 합치며, 표시 이름은 먼저 발견된 것을 유지합니다. 결과는 이름의
// 사전순으로 정렬되므로 입력 순서와 무관하게 동일한 결과를 반환합니다. (교환법칙 성립)
func MergeManufacturers(lists ...[]Manufacturer) []Manufacturer {
	byKey := make(map[string]Manufacturer)
	for _, list := range lists {
		for _, m := range list {
			if m.Name == "" {
				continue
			}

			key := manufacturerKey(m.Name)
			existing, ok := byKey[key]
			if !ok {
				byKey[key] = m
				continue
			}

			for _, code := range m.Codes {
				existing = existing.WithCode(code)
			}
			byKey[key] = existing
		}
	}

	merged := make([]Manufacturer, 0, len(byKey))
	for _, m := range byKey {
		merged = append(merged, m)
	}
	sort.Slice(merged, func(i, j int) bool {
		return strings.ToLower(merged[i].Name) < strings.ToLower(merged[j].Name)
	})
	return merged
}
