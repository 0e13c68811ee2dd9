package parser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/darkkaiser/partscout/pkg/errors"
)

func TestNewProduct(t *testing.T) {
	t.Run("성공: 모든 필드가 정규화되어 생성된다", func(t *testing.T) {
		p, err := NewProduct("  삼성전자   990 EVO  1TB ", "89900", " NVMe / 1TB ", " https://example.com/1 ", " 컴퓨존 ")
		require.NoError(t, err)

		assert.Equal(t, "삼성전자 990 EVO 1TB", p.Name)
		assert.Equal(t, "89,900원", p.Price)
		assert.Equal(t, "NVMe / 1TB", p.Specifications)
		assert.Equal(t, "https://example.com/1", p.ProductLink)
		assert.Equal(t, "컴퓨존", p.Site)
	})

	t.Run("실패: 상품명이 비어있으면 에러를 반환한다", func(t *testing.T) {
		_, err := NewProduct("   ", "1000", "", "", SiteCompuzone)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})
}

func TestStandardizePrice(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		expected string
	}{
		{"빈 문자열은 가격 정보 없음", "", PriceUnknown},
		{"품절 문구 포함", "품절된 상품입니다", PriceSoldOut},
		{"재고없음 문구 포함", "현재 재고없음", PriceSoldOut},
		{"일시품절 문구 포함", "일시품절", PriceSoldOut},
		{"문의 문구 포함", "가격은 문의 바랍니다", PriceInquiry},
		{"전화 문구 포함", "전화 주세요", PriceInquiry},
		{"숫자만 있으면 원화 형식으로 변환", "89900", "89,900원"},
		{"구분 기호가 섞인 숫자", "1,234,000", "1,234,000원"},
		{"이미 원으로 끝나면 그대로 유지", "89,900원", "89,900원"},
		{"숫자가 없는 일반 문자열은 그대로 유지", "오픈 예정", "오픈 예정"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, standardizePrice(tt.price))
		})
	}
}

func TestCleanSpecifications(t *testing.T) {
	tests := []struct {
		name     string
		specs    string
		expected string
	}{
		{"빈 문자열은 사양 정보 없음", "", SpecUnknown},
		{"단일 항목", "NVMe", "NVMe"},
		{"공백 정리 및 구분자 재결합", " NVMe /  PCIe 4.0 ", "NVMe / PCIe 4.0"},
		{"동일 용량 표기는 긴 항목만 유지", "1TB / DDR5 1TB 메모리", "DDR5 1TB 메모리"},
		{"시리즈 중복은 긴 항목만 유지", "RTX 5080 / 지포스 RTX5080 그래픽카드", "지포스 RTX5080 그래픽카드"},
		{"서로 다른 용량은 모두 유지", "8GB / 16GB", "8GB / 16GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanSpecifications(tt.specs))
		})
	}

	t.Run("성공: 중복 제거는 멱등하다", func(t *testing.T) {
		once := cleanSpecifications("1TB / NVMe 1TB SSD / PCIe 4.0")
		twice := cleanSpecifications(once)
		assert.Equal(t, once, twice)
	})
}

func TestProduct_PriceRank(t *testing.T) {
	rank := func(price string) float64 {
		return Product{Name: "테스트", Price: price}.PriceRank()
	}

	t.Run("성공: 숫자 가격은 크기 순서를 유지한다", func(t *testing.T) {
		assert.Less(t, rank("89,900원"), rank("129,000원"))
		assert.Less(t, rank("1,000원"), rank("999,000원"))
	})

	t.Run("성공: 구매 불가 상태는 항상 마지막에 정렬된다", func(t *testing.T) {
		assert.True(t, math.IsInf(rank(PriceSoldOut), 1))
		assert.True(t, math.IsInf(rank(PriceInquiry), 1))
		assert.True(t, math.IsInf(rank(PriceUnknown), 1))
		assert.Greater(t, rank(PriceSoldOut), rank("99,999,999원"))
	})
}

func TestProduct_IsPriceAvailable(t *testing.T) {
	assert.True(t, Product{Price: "89,900원"}.IsPriceAvailable())
	assert.False(t, Product{Price: PriceSoldOut}.IsPriceAvailable())
	assert.False(t, Product{Price: PriceInquiry}.IsPriceAvailable())
	assert.False(t, Product{Price: PriceUnknown}.IsPriceAvailable())
}

func TestDeduplicateByName(t *testing.T) {
	t.Run("성공: 이름이 같은 상품은 최초 항목만 유지된다", func(t *testing.T) {
		products := []Product{
			{Name: "A", Price: "1,000원"},
			{Name: "B", Price: "2,000원"},
			{Name: "A", Price: "3,000원"},
		}

		unique := DeduplicateByName(products)
		require.Len(t, unique, 2)
		assert.Equal(t, "A", unique[0].Name)
		assert.Equal(t, "1,000원", unique[0].Price)
		assert.Equal(t, "B", unique[1].Name)
	})
}
