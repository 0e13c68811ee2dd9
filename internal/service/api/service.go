// Package api 검색 결과를 제공하는 REST API 서버 서비스입니다.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/darkkaiser/partscout/internal/config"
	"github.com/darkkaiser/partscout/internal/service/search"
	applog "github.com/darkkaiser/partscout/pkg/log"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// 로깅용 컴포넌트 이름
const (
	componentService      = "api.service"
	componentHTTPServer   = "api.http_server"
	componentErrorHandler = "api.error_handler"
)

// shutdownTimeout Graceful Shutdown 시 최대 대기 시간
const shutdownTimeout = 5 * time.Second

// Service 검색 API 서버의 생명주기를 관리하는 서비스입니다.
//
// Echo 기반 HTTP/HTTPS 서버의 시작과 종료, 미들웨어/라우트 설정,
// Graceful Shutdown을 담당합니다. 서비스는 고루틴으로 실행되며,
// context를 통해 종료 신호를 받습니다.
type Service struct {
	appConfig *config.AppConfig

	searcher *search.Searcher

	running   bool
	runningMu sync.Mutex
}

// NewService Service 인스턴스를 생성합니다.
func NewService(appConfig *config.AppConfig, searcher *search.Searcher) *Service {
	if appConfig == nil {
		panic("AppConfig는 필수입니다")
	}
	if searcher == nil {
		panic("Searcher는 필수입니다")
	}

	return &Service{
		appConfig: appConfig,

		searcher: searcher,
	}
}

// Start API 서비스를 시작합니다.
//
// 이 함수는 즉시 반환되며, 실제 서버는 고루틴에서 실행됩니다.
// serviceStopCtx가 취소되면 Graceful Shutdown을 수행한 뒤 serviceStopWG에
// 종료 완료를 알립니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(componentService).Info("API 서비스를 시작합니다")

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(componentService).Warn("API 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	s.running = true

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	return nil
}

// runServiceLoop 서비스의 메인 실행 루프입니다.
// 서버 설정, HTTP 서버 시작, Shutdown 대기를 순차적으로 수행합니다.
func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	e := s.setupServer()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

// setupServer Echo 서버 인스턴스를 생성하고 라우트를 등록합니다.
func (s *Service) setupServer() *echo.Echo {
	handler := NewHandler(s.searcher, s.appConfig.Search.GroupThreshold, s.appConfig.Search.MaxPages)

	e := NewHTTPServer(HTTPServerConfig{
		Debug:        s.appConfig.Debug,
		AllowOrigins: s.appConfig.API.CORS.AllowOrigins,
	})

	SetupRoutes(e, handler)

	return e
}

// startHTTPServer HTTP/HTTPS 서버를 시작합니다.
// 이 함수는 블로킹되며, 서버가 종료되면 done 채널을 닫습니다.
func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	port := s.appConfig.API.WS.ListenPort
	applog.WithComponentAndFields(componentService, log.Fields{
		"port": port,
		"tls":  s.appConfig.API.WS.TLSServer,
	}).Info("HTTP 서버를 시작합니다")

	var err error
	if s.appConfig.API.WS.TLSServer {
		err = e.StartTLS(
			fmt.Sprintf(":%d", port),
			s.appConfig.API.WS.TLSCertFile,
			s.appConfig.API.WS.TLSKeyFile,
		)
	} else {
		err = e.Start(fmt.Sprintf(":%d", port))
	}

	s.handleServerError(err)
}

// handleServerError HTTP 서버 종료 시 반환된 에러를 처리합니다.
func (s *Service) handleServerError(err error) {
	if err == nil {
		return
	}

	if errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(componentService).Info("HTTP 서버가 정상적으로 종료되었습니다")
		return
	}

	applog.WithComponentAndFields(componentService, log.Fields{
		"port":  s.appConfig.API.WS.ListenPort,
		"error": err,
	}).Error("HTTP 서버가 예기치 않은 에러로 종료되었습니다")
}

// waitForShutdown 종료 신호를 대기하고 Graceful Shutdown을 수행합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(componentService).Info("API 서비스 중지 시그널을 수신했습니다")
	case <-httpServerDone:
		// HTTP 서버가 예기치 않게 종료됨 (포트 바인딩 실패 등)
		applog.WithComponent(componentService).Error("HTTP 서버가 예기치 않게 종료되어 API 서비스를 정리합니다")

		s.cleanup()

		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(componentService, log.Fields{
			"error": err,
		}).Error("HTTP 서버 Shutdown 중 에러가 발생했습니다")
	}

	<-httpServerDone

	s.cleanup()
}

// cleanup 서비스 종료 후 상태를 정리합니다.
func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(componentService).Info("API 서비스가 종료되었습니다")
}
