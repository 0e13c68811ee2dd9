// Package parser 국내 PC 부품 판매 사이트의 검색 결과를 수집하고 정규화하는 기능을 제공합니다.
//
// 각 사이트별 구현(compuzone, guidecom, danawa)은 SiteParser 인터페이스를 통해 동일한
// 방식으로 호출되며, 상품 정보는 생성 시점에 정규화된 Product 값으로 반환됩니다.
package parser

import (
	"context"
)

// 사이트 표시 이름
const (
	SiteCompuzone = "컴퓨존"
	SiteGuidecom  = "가이드컴"
	SiteDanawa    = "다나와"
)

// SortHint 검색 결과 정렬 방식에 대한 힌트입니다.
// 사이트마다 지원하는 정렬 방식이 다르므로, 각 파서는 지원하지 않는 힌트를 무시할 수 있습니다.
type SortHint string

const (
	// SortDefault 사이트 기본 정렬
	SortDefault SortHint = ""

	// SortLowPrice 낮은 가격순
	SortLowPrice SortHint = "low_price"

	// SortPopularity 인기순
	SortPopularity SortHint = "popularity"

	// SortNewest 신상품순
	SortNewest SortHint = "newest"
)

// SearchQuery 사이트 검색 요청 하나를 표현합니다.
type SearchQuery struct {
	// Keyword 검색어 (예: "SSD 1TB")
	Keyword string

	// Brands 브랜드 필터 목록. 비어있으면 필터링하지 않습니다.
	Brands []string

	// MakerCodes 사이트별 제조사 필터 코드. 파서가 자체 수집한 코드가 우선합니다.
	MakerCodes []string

	// Capacity 용량 필터 문자열 (예: "1TB"). 비어있으면 필터링하지 않습니다.
	Capacity string

	// Sort 정렬 힌트
	Sort SortHint

	// MaxPages 수집 결과 수 상한을 정하는 페이지 수입니다. 각 파서는 자신의 페이지당
	// 상품 수에 이 값을 곱한 만큼만 수집하며, 0이면 파서 기본값(1페이지 분량)을 사용합니다.
	MaxPages int
}

// SiteParser 하나의 판매 사이트에 대한 검색 파서입니다.
//
// 모든 메서드는 호출자가 전달한 컨텍스트를 존중해야 하며, 네트워크 오류나 파싱 실패는
// 오류로 반환합니다. 사이트 간 실패 격리는 호출자(searcher)의 책임입니다.
type SiteParser interface {
	// Site 이 파서가 담당하는 사이트의 표시 이름을 반환합니다.
	Site() string

	// DiscoverManufacturers 검색어에 대한 검색 결과에서 제조사 필터 후보를 수집합니다.
	DiscoverManufacturers(ctx context.Context, keyword string) ([]Manufacturer, error)

	// SearchProducts 검색을 수행하고 정규화된 상품 목록을 반환합니다.
	SearchProducts(ctx context.Context, query SearchQuery) ([]Product, error)
}
