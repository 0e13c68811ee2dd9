package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/partscout/internal/config"
	"github.com/darkkaiser/partscout/internal/service/parser"
	"github.com/darkkaiser/partscout/internal/service/search"
)

func newTestConfig() *config.AppConfig {
	return &config.AppConfig{
		Search: config.SearchConfig{
			GroupThreshold: search.DefaultGroupThreshold,
			MaxPages:       1,
		},
		API: config.APIConfig{
			// 포트 0: 임의의 사용 가능한 포트에 바인딩 (테스트 충돌 방지)
			WS:   config.WSConfig{ListenPort: 0},
			CORS: config.CORSConfig{AllowOrigins: []string{"*"}},
		},
	}
}

func TestServiceLifecycle(t *testing.T) {
	t.Run("성공: 서비스가 시작되고 종료 시그널로 정리된다", func(t *testing.T) {
		s := NewService(newTestConfig(), search.NewSearcher(&stubParser{site: parser.SiteCompuzone}))

		serviceStopCtx, cancel := context.WithCancel(context.Background())
		serviceStopWG := &sync.WaitGroup{}
		serviceStopWG.Add(1)

		require.NoError(t, s.Start(serviceStopCtx, serviceStopWG))

		// 서버 고루틴이 기동될 시간을 준다.
		time.Sleep(100 * time.Millisecond)

		cancel()

		done := make(chan struct{})
		go func() {
			serviceStopWG.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Fatal("서비스가 제한 시간 내에 종료되지 않았습니다")
		}

		s.runningMu.Lock()
		assert.False(t, s.running)
		s.runningMu.Unlock()
	})

	t.Run("성공: 중복 Start 호출은 무시된다", func(t *testing.T) {
		s := NewService(newTestConfig(), search.NewSearcher(&stubParser{site: parser.SiteCompuzone}))

		serviceStopCtx, cancel := context.WithCancel(context.Background())
		serviceStopWG := &sync.WaitGroup{}

		serviceStopWG.Add(1)
		require.NoError(t, s.Start(serviceStopCtx, serviceStopWG))

		serviceStopWG.Add(1)
		require.NoError(t, s.Start(serviceStopCtx, serviceStopWG))

		cancel()
		serviceStopWG.Wait()
	})

	t.Run("실패: 필수 의존성이 없으면 패닉한다", func(t *testing.T) {
		assert.Panics(t, func() {
			NewService(nil, search.NewSearcher())
		})
		assert.Panics(t, func() {
			NewService(newTestConfig(), nil)
		})
	})
}
