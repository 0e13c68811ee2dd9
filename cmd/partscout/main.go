package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/darkkaiser/partscout/internal/config"
	"github.com/darkkaiser/partscout/internal/service"
	"github.com/darkkaiser/partscout/internal/service/api"
	"github.com/darkkaiser/partscout/internal/service/parser"
	"github.com/darkkaiser/partscout/internal/service/parser/compuzone"
	"github.com/darkkaiser/partscout/internal/service/parser/danawa"
	"github.com/darkkaiser/partscout/internal/service/parser/guidecom"
	"github.com/darkkaiser/partscout/internal/service/search"
	"github.com/darkkaiser/partscout/internal/service/watcher"
	applog "github.com/darkkaiser/partscout/pkg/log"
	log "github.com/sirupsen/logrus"
)

// 빌드 정보 변수 (ldflags로 주입됨)
var (
	Version   = "dev"     // Git 커밋 해시
	BuildDate = "unknown" // 빌드 날짜
)

const (
	banner = `
  ____               _      ____                          _
 |  _ \  __ _  _ __ | |_   / ___|   ___   ___   _   _  | |_
 | |_) |/ _' || '__|| __|  \___ \  / __| / _ \ | | | | | __|
 |  __/| (_| || |   | |_    ___) || (__ | (_) || |_| | | |_
 |_|    \__,_||_|    \__|  |____/  \___| \___/  \__,_|  \__|
                                                 %s
--------------------------------------------------------------------------------
`

	// retryMaxDelay HTTP 재시도 시 지수 백오프의 상한
	retryMaxDelay = 30 * time.Second
)

func main() {
	configFile := flag.String("config", config.DefaultFilename, "설정 파일 경로")
	flag.Parse()

	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	appConfig, err := config.LoadWithFile(*configFile)
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그 시스템 초기화
	logOpts := applog.Options{
		Name:              config.AppName,
		Level:             applog.InfoLevel,
		MaxAge:            30,
		EnableCriticalLog: true,
	}
	if appConfig.Debug {
		logOpts.Level = applog.DebugLevel
		logOpts.EnableConsoleLog = true
		logOpts.ReportCaller = true
		logOpts.CallerPathPrefix = "github.com/darkkaiser"
	}

	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	// 아스키아트 출력(https://ko.rakko.tools/tools/68/, 폰트:standard)
	fmt.Printf(banner, Version)

	applog.WithComponentAndFields("main", log.Fields{
		"version":    Version,
		"build_date": BuildDate,
		"env":        map[bool]string{true: "development", false: "production"}[appConfig.Debug],
	}).Info("서버 초기화 시작")

	// 권장 설정 미준수 항목 진단
	for _, warning := range appConfig.VerifyRecommendations() {
		applog.WithComponent("main").Warn(warning)
	}

	// 사이트 파서 및 통합 검색기 구성
	searcher := search.NewSearcher(buildSiteParsers(appConfig)...)

	// 서비스를 생성하고 초기화한다.
	apiService := api.NewService(appConfig, searcher)
	watcherService := watcher.NewService(appConfig.Watches, searcher, appConfig.Search.GroupThreshold, appConfig.Search.MaxPages)

	serviceStopCtx, cancel := context.WithCancel(context.Background())
	serviceStopWG := &sync.WaitGroup{}

	// 서비스를 시작한다.
	services := []service.Service{apiService, watcherService}
	for _, s := range services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			applog.WithComponentAndFields("main", log.Fields{
				"error": err,
			}).Error("서비스 초기화 실패")

			cancel() // 다른 서비스들도 종료
			serviceStopWG.Wait()

			log.Fatal("서비스 초기화 실패로 프로그램을 종료합니다")
		}
	}

	// 종료 시그널 대기
	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	applog.WithComponent("main").Info("서버 가동 완료")

	<-termC

	applog.WithComponent("main").Info("종료 시그널을 수신했습니다")
	cancel()
	serviceStopWG.Wait()
}

// buildSiteParsers 설정에서 활성화된 사이트들의 파서를 생성합니다.
//
// 각 파서의 HTTP 요청 경로는 쿠키 유지 → 재시도(지수 백오프) → 요청 간격
// 제한(Throttle) 순서로 구성됩니다.
func buildSiteParsers(appConfig *config.AppConfig) []parser.SiteParser {
	var parsers []parser.SiteParser

	if appConfig.Sites.Compuzone.Enabled {
		parsers = append(parsers, compuzone.New(
			buildFetcher(appConfig, appConfig.Sites.Compuzone),
			appConfig.Sites.Compuzone.BaseURL,
		))
	}
	if appConfig.Sites.Guidecom.Enabled {
		parsers = append(parsers, guidecom.New(
			buildFetcher(appConfig, appConfig.Sites.Guidecom),
			appConfig.Sites.Guidecom.BaseURL,
		))
	}
	if appConfig.Sites.Danawa.Enabled {
		parsers = append(parsers, danawa.New(
			buildFetcher(appConfig, appConfig.Sites.Danawa),
			appConfig.Sites.Danawa.BaseURL,
		))
	}

	return parsers
}

// buildFetcher 사이트 설정에 맞는 HTTP Fetcher 체인을 구성합니다.
func buildFetcher(appConfig *config.AppConfig, siteConfig config.SiteConfig) parser.Fetcher {
	// 설정 로드 시 이미 검증된 값이므로 파싱 오류는 무시한다.
	timeout, _ := time.ParseDuration(siteConfig.Timeout)
	interval, _ := time.ParseDuration(siteConfig.RequestInterval)
	retryDelay, _ := time.ParseDuration(appConfig.HTTPRetry.RetryDelay)

	var fetcher parser.Fetcher = parser.NewHTTPFetcher(timeout)
	fetcher = parser.NewRetryFetcher(fetcher, appConfig.HTTPRetry.MaxRetries, retryDelay, retryMaxDelay)
	return parser.NewThrottledFetcher(fetcher, interval)
}
