// Package search 여러 사이트 파서를 묶어 통합 검색을 제공합니다.
//
// 사이트별 검색은 고루틴으로 동시에 실행되며, 한 사이트의 실패나 지연이
// 다른 사이트의 결과 수집을 막지 않습니다. 실패한 사이트는 빈 결과로 처리됩니다.
package search

import (
	"context"
	"sync"

	"github.com/darkkaiser/partscout/internal/service/parser"
	applog "github.com/darkkaiser/partscout/pkg/log"
	log "github.com/sirupsen/logrus"
)

// component 통합 검색의 로깅용 컴포넌트 이름
const component = "search.searcher"

// Searcher 등록된 사이트 파서들에 대한 통합 검색기입니다.
type Searcher struct {
	parsers []parser.SiteParser
}

// NewSearcher 새로운 통합 검색기를 생성합니다.
func NewSearcher(parsers ...parser.SiteParser) *Searcher {
	return &Searcher{
		parsers: parsers,
	}
}

// Sites 등록된 사이트 이름 목록을 반환합니다.
func (s *Searcher) Sites() []string {
	sites := make([]string, 0, len(s.parsers))
	for _, p := range s.parsers {
		sites = append(sites, p.Site())
	}
	return sites
}

// siteResult 사이트별 검색 고루틴의 수집 결과입니다.
type siteResult struct {
	site          string
	products      []parser.Product
	manufacturers []parser.Manufacturer
	err           error
}

// SearchAllSites 등록된 모든 사이트에서 동시에 상품을 검색하고 결과를 병합합니다.
//
// 사이트별로 고루틴 하나씩을 실행하며, 실패한 사이트는 경고 로그만 남기고
// 빈 결과로 취급합니다. 모든 고루틴이 종료된 후 사이트 등록 순서대로 병합합니다.
func (s *Searcher) SearchAllSites(ctx context.Context, query parser.SearchQuery) []parser.Product {
	results := make([]siteResult, len(s.parsers))

	var wg sync.WaitGroup
	for i, p := range s.parsers {
		wg.Add(1)
		go func(i int, p parser.SiteParser) {
			defer wg.Done()

			products, err := p.SearchProducts(ctx, query)
			results[i] = siteResult{site: p.Site(), products: products, err: err}
		}(i, p)
	}
	wg.Wait()

	var merged []parser.Product
	for _, result := range results {
		if result.err != nil {
			applog.WithComponentAndFields(component, log.Fields{
				"site":    result.site,
				"keyword": query.Keyword,
				"error":   result.err,
			}).Warn("사이트 상품 검색 실패, 해당 사이트는 결과에서 제외됩니다")
			continue
		}
		merged = append(merged, result.products...)
	}

	applog.WithComponentAndFields(component, log.Fields{
		"keyword": query.Keyword,
		"sites":   len(s.parsers),
		"count":   len(merged),
	}).Debug("통합 상품 검색 완료")

	return merged
}

// AllBrands 등록된 모든 사이트에서 동시에 제조사 후보를 수집하고 병합합니다.
//
// 제조사는 이름(공백/대소문자 무시) 기준으로 병합되며 사이트별 코드가 합쳐집니다.
// 실패한 사이트는 경고 로그만 남기고 빈 결과로 취급합니다.
func (s *Searcher) AllBrands(ctx context.Context, keyword string) []parser.Manufacturer {
	results := make([]siteResult, len(s.parsers))

	var wg sync.WaitGroup
	for i, p := range s.parsers {
		wg.Add(1)
		go func(i int, p parser.SiteParser) {
			defer wg.Done()

			manufacturers, err := p.DiscoverManufacturers(ctx, keyword)
			results[i] = siteResult{site: p.Site(), manufacturers: manufacturers, err: err}
		}(i, p)
	}
	wg.Wait()

	lists := make([][]parser.Manufacturer, 0, len(results))
	for _, result := range results {
		if result.err != nil {
			applog.WithComponentAndFields(component, log.Fields{
				"site":    result.site,
				"keyword": keyword,
				"error":   result.err,
			}).Warn("사이트 제조사 수집 실패, 해당 사이트는 결과에서 제외됩니다")
			continue
		}
		lists = append(lists, result.manufacturers)
	}

	return parser.MergeManufacturers(lists...)
}
