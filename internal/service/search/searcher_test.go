package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/darkkaiser/partscout/pkg/errors"

	"github.com/darkkaiser/partscout/internal/service/parser"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeParser 테스트용 사이트 파서입니다.
type fakeParser struct {
	site          string
	products      []parser.Product
	manufacturers []parser.Manufacturer
	err           error

	// delay 응답 전 대기 시간 (느린 사이트 시뮬레이션)
	delay time.Duration
}

func (p *fakeParser) Site() string {
	return p.site
}

func (p *fakeParser) DiscoverManufacturers(ctx context.Context, _ string) ([]parser.Manufacturer, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.manufacturers, p.err
}

func (p *fakeParser) SearchProducts(ctx context.Context, _ parser.SearchQuery) ([]parser.Product, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.products, p.err
}

func (p *fakeParser) wait(ctx context.Context) error {
	if p.delay == 0 {
		return nil
	}
	select {
	case <-time.After(p.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func mustProduct(t *testing.T, name, price, site string) parser.Product {
	t.Helper()

	product, err := parser.NewProduct(name, price, "사양", "", site)
	require.NoError(t, err)
	return product
}

func TestSearchAllSites(t *testing.T) {
	t.Run("성공: 모든 사이트의 결과가 병합된다", func(t *testing.T) {
		s := NewSearcher(
			&fakeParser{site: parser.SiteCompuzone, products: []parser.Product{
				mustProduct(t, "삼성전자 990 EVO 1TB", "89,900", parser.SiteCompuzone),
			}},
			&fakeParser{site: parser.SiteGuidecom, products: []parser.Product{
				mustProduct(t, "WD BLACK SN850X 1TB", "152,000", parser.SiteGuidecom),
				mustProduct(t, "삼성전자 990 PRO 1TB", "139,000", parser.SiteGuidecom),
			}},
		)

		products := s.SearchAllSites(context.Background(), parser.SearchQuery{Keyword: "SSD"})
		require.Len(t, products, 3)
		assert.Equal(t, parser.SiteCompuzone, products[0].Site)
	})

	t.Run("성공: 한 사이트가 실패해도 다른 사이트의 결과는 유지된다", func(t *testing.T) {
		s := NewSearcher(
			&fakeParser{site: parser.SiteCompuzone, err: apperrors.New(apperrors.ExecutionFailed, "접속 실패")},
			&fakeParser{site: parser.SiteGuidecom, products: []parser.Product{
				mustProduct(t, "삼성전자 990 EVO 1TB", "89,900", parser.SiteGuidecom),
			}},
		)

		products := s.SearchAllSites(context.Background(), parser.SearchQuery{Keyword: "SSD"})
		require.Len(t, products, 1)
		assert.Equal(t, parser.SiteGuidecom, products[0].Site)
	})

	t.Run("성공: 느린 사이트는 타임아웃으로 제외되고 나머지는 수집된다", func(t *testing.T) {
		s := NewSearcher(
			&fakeParser{site: parser.SiteCompuzone, delay: 5 * time.Second, products: []parser.Product{
				mustProduct(t, "응답 못하는 상품", "1,000", parser.SiteCompuzone),
			}},
			&fakeParser{site: parser.SiteGuidecom, products: []parser.Product{
				mustProduct(t, "삼성전자 990 EVO 1TB", "89,900", parser.SiteGuidecom),
			}},
		)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		products := s.SearchAllSites(ctx, parser.SearchQuery{Keyword: "SSD"})
		require.Len(t, products, 1)
		assert.Equal(t, "삼성전자 990 EVO 1TB", products[0].Name)
	})

	t.Run("성공: 등록된 파서가 없으면 빈 결과를 반환한다", func(t *testing.T) {
		s := NewSearcher()

		products := s.SearchAllSites(context.Background(), parser.SearchQuery{Keyword: "SSD"})
		assert.Empty(t, products)
	})
}

func TestAllBrands(t *testing.T) {
	t.Run("성공: 사이트별 제조사가 이름 기준으로 병합된다", func(t *testing.T) {
		s := NewSearcher(
			&fakeParser{site: parser.SiteCompuzone, manufacturers: []parser.Manufacturer{
				parser.NewManufacturer("삼성전자", "2"),
				parser.NewManufacturer("Western Digital", "24"),
			}},
			&fakeParser{site: parser.SiteGuidecom, manufacturers: []parser.Manufacturer{
				parser.NewManufacturer("삼성전자", "삼성전자"),
			}},
		)

		manufacturers := s.AllBrands(context.Background(), "SSD")
		require.Len(t, manufacturers, 2)

		byName := make(map[string][]string)
		for _, m := range manufacturers {
			byName[m.Name] = m.Codes
		}
		assert.ElementsMatch(t, []string{"2", "삼성전자"}, byName["삼성전자"])
		assert.Equal(t, []string{"24"}, byName["Western Digital"])
	})

	t.Run("성공: 실패한 사이트는 제외하고 병합한다", func(t *testing.T) {
		s := NewSearcher(
			&fakeParser{site: parser.SiteCompuzone, err: apperrors.New(apperrors.ExecutionFailed, "접속 실패")},
			&fakeParser{site: parser.SiteGuidecom, manufacturers: []parser.Manufacturer{
				parser.NewManufacturer("삼성전자", "삼성전자"),
			}},
		)

		manufacturers := s.AllBrands(context.Background(), "SSD")
		require.Len(t, manufacturers, 1)
		assert.Equal(t, "삼성전자", manufacturers[0].Name)
	})
}
