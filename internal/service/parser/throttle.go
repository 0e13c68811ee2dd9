package parser

import (
	"math/rand/v2"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// userAgents 요청마다 번갈아 사용할 브라우저 User-Agent 목록입니다.
// 동일한 User-Agent로 반복 요청 시 봇으로 차단될 수 있어 무작위로 순환합니다.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// ThrottledFetcher 요청 간 최소 간격을 보장하는 Fetcher 구현체입니다.
//
// 파서마다 하나씩 소유하며, 같은 사이트로 향하는 모든 요청(페이지네이션, 제조사 수집 포함)이
// 설정된 간격을 넘지 않도록 토큰 버킷 리미터로 제어합니다. 대기 중 요청 컨텍스트가
// 취소되면 즉시 중단됩니다. 요청마다 User-Agent를 무작위로 회전시킵니다.
type ThrottledFetcher struct {
	delegate Fetcher
	limiter  *rate.Limiter
	rotateUA bool
}

// NewThrottledFetcher 요청 간격(interval)이 적용된 새로운 ThrottledFetcher 인스턴스를 생성합니다.
// 간격이 0 이하이면 속도 제한 없이 User-Agent 회전만 수행합니다.
func NewThrottledFetcher(delegate Fetcher, interval time.Duration) *ThrottledFetcher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &ThrottledFetcher{
		delegate: delegate,
		limiter:  rate.NewLimiter(limit, 1),
		rotateUA: true,
	}
}

// Do 속도 제한을 적용한 후 위임 Fetcher로 요청을 전달합니다.
func (f *ThrottledFetcher) Do(req *http.Request) (*http.Response, error) {
	if err := f.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	if f.rotateUA {
		req.Header.Set("User-Agent", userAgents[rand.IntN(len(userAgents))])
	}

	return f.delegate.Do(req)
}
