// Package watcher 설정 파일에 정의된 검색 감시 작업을 Cron 스케줄에 맞춰
// 주기적으로 실행하는 서비스입니다.
//
// 각 감시 작업은 지정된 검색어로 통합 검색을 다시 실행하고, 결과 건수와
// 최저가 요약을 로그로 남깁니다.
package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/darkkaiser/partscout/internal/config"
	"github.com/darkkaiser/partscout/internal/service/parser"
	"github.com/darkkaiser/partscout/internal/service/search"
	"github.com/darkkaiser/partscout/pkg/cronx"
	applog "github.com/darkkaiser/partscout/pkg/log"
	"github.com/iancoleman/strcase"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// component Watcher 서비스의 로깅용 컴포넌트 이름
const component = "watcher.service"

// watchRunTimeout 감시 작업 1회 실행의 최대 허용 시간
const watchRunTimeout = 2 * time.Minute

// Watcher 설정된 감시 작업들을 Cron 엔진으로 실행하는 서비스입니다.
type Watcher struct {
	watchConfigs []config.WatchConfig

	searcher *search.Searcher

	// groupThreshold 결과 요약 시 유사 상품 그룹핑에 사용하는 임계값
	groupThreshold float64

	// maxPages 사이트별 검색 결과 수집 페이지 수 상한
	maxPages int

	cron *cron.Cron

	running   bool
	runningMu sync.Mutex
}

// NewService 새로운 Watcher 서비스 인스턴스를 생성합니다.
func NewService(watchConfigs []config.WatchConfig, searcher *search.Searcher, groupThreshold float64, maxPages int) *Watcher {
	if searcher == nil {
		panic("Searcher는 필수입니다")
	}

	return &Watcher{
		watchConfigs: watchConfigs,

		searcher: searcher,

		groupThreshold: groupThreshold,

		maxPages: maxPages,
	}
}

// Start 감시 서비스를 시작하고 설정에 정의된 작업들을 Cron 엔진에 등록합니다.
func (w *Watcher) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	w.runningMu.Lock()
	defer w.runningMu.Unlock()

	applog.WithComponent(component).Info("Watcher 서비스를 시작합니다")

	if w.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("Watcher 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	// Cron 엔진 초기화
	// - StandardParser: 초 단위 스케줄링 지원 (6개 필드: 초 분 시 일 월 요일)
	// - Recover: Panic 발생 시 복구하여 다른 작업에 영향을 주지 않음
	// - SkipIfStillRunning: 이전 실행이 끝나지 않았으면 다음 실행을 건너뜀
	w.cron = cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLogger(cron.VerbosePrintfLogger(applog.StandardLogger())),
		cron.WithChain(
			cron.Recover(cron.VerbosePrintfLogger(applog.StandardLogger())),
			cron.SkipIfStillRunning(cron.VerbosePrintfLogger(applog.StandardLogger())),
		),
	)

	w.registerWatches()

	w.cron.Start()
	w.running = true

	applog.WithComponentAndFields(component, log.Fields{
		"registered_watches":    len(w.cron.Entries()),
		"total_defined_watches": len(w.watchConfigs),
	}).Info("Watcher 서비스가 시작되었습니다")

	// 종료 신호 대기 (고루틴)
	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		w.Stop()
	}()

	return nil
}

// Stop 실행 중인 감시 서비스를 안전하게 중지합니다.
// 실행 중인 감시 작업이 있으면 완료될 때까지 대기합니다.
func (w *Watcher) Stop() {
	w.runningMu.Lock()
	defer w.runningMu.Unlock()

	if !w.running {
		return
	}

	applog.WithComponent(component).Info("Watcher 서비스 중지 시그널을 수신했습니다")

	if w.cron != nil {
		ctx := w.cron.Stop()
		<-ctx.Done()
	}

	w.cron = nil
	w.running = false

	applog.WithComponent(component).Info("Watcher 서비스가 종료되었습니다")
}

// registerWatches 설정에 정의된 감시 작업 중 Runnable 플래그가 켜진 작업만
// Cron 스케줄러에 등록합니다.
func (w *Watcher) registerWatches() {
	for _, watchConfig := range w.watchConfigs {
		if !watchConfig.Scheduler.Runnable {
			continue
		}

		// 클로저 캡처 문제 방지를 위해 로컬 변수에 재할당
		watch := watchConfig
		jobName := strcase.ToSnake(watch.ID)

		_, err := w.cron.AddFunc(watch.Scheduler.TimeSpec, func() {
			w.runWatch(jobName, watch)
		})
		if err != nil {
			// 스케줄 파싱 실패 시 해당 작업만 건너뛰고 계속 진행
			applog.WithComponentAndFields(component, log.Fields{
				"watch_id":  watch.ID,
				"time_spec": watch.Scheduler.TimeSpec,
				"error":     err,
			}).Error("감시 작업 스케줄 등록에 실패했습니다 (잘못된 Cron 표현식)")
			continue
		}

		applog.WithComponentAndFields(component, log.Fields{
			"watch_id":  jobName,
			"query":     watch.Query,
			"time_spec": watch.Scheduler.TimeSpec,
		}).Debug("감시 작업이 등록되었습니다")
	}
}

// runWatch 감시 작업 1회를 실행하고 결과 요약을 로그로 남깁니다.
//
// 작업 실행의 생명주기는 서비스 종료 시그널과 분리됩니다. Graceful Shutdown 시
// cron.Stop()이 실행 중인 작업의 완료를 대기하므로, 작업 도중 컨텍스트 취소로
// 인한 강제 중단을 방지합니다.
func (w *Watcher) runWatch(jobName string, watch config.WatchConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), watchRunTimeout)
	defer cancel()

	started := time.Now()

	products := w.searcher.SearchAllSites(ctx, parser.SearchQuery{
		Keyword:  watch.Query,
		Brands:   watch.Brands,
		Capacity: watch.Capacity,
		MaxPages: w.maxPages,
	})

	fields := log.Fields{
		"watch_id":   jobName,
		"title":      watch.Title,
		"query":      watch.Query,
		"count":      len(products),
		"elapsed_ms": time.Since(started).Milliseconds(),
	}

	if len(products) == 0 {
		applog.WithComponentAndFields(component, fields).Warn("감시 작업 실행 완료: 검색 결과가 없습니다")
		return
	}

	groups := search.GroupSimilar(products, w.groupThreshold)
	fields["groups"] = len(groups)

	if cheapest := search.CheapestSet(products); len(cheapest) > 0 {
		fields["lowest_price"] = cheapest[0].Price
		fields["lowest_name"] = cheapest[0].Name
		fields["lowest_site"] = cheapest[0].Site
	}

	applog.WithComponentAndFields(component, fields).Info("감시 작업 실행 완료")
}
