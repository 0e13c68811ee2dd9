package api

import (
	"net/http"
	"time"

	applog "github.com/darkkaiser/partscout/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

const (
	// HTTP 서버 타임아웃 기본값
	defaultReadTimeout       = 30 * time.Second
	defaultReadHeaderTimeout = 10 * time.Second
	defaultWriteTimeout      = 120 * time.Second
	defaultIdleTimeout       = 90 * time.Second

	// defaultRequestTimeout 각 HTTP 요청의 최대 처리 시간
	// 통합 검색은 여러 사이트를 순회하므로 일반적인 API보다 길게 설정합니다.
	defaultRequestTimeout = 90 * time.Second

	// IP 기반 Rate Limiting 기본값
	defaultRateLimitPerSecond = 10
	defaultRateLimitBurst     = 20

	// defaultMaxBodySize 요청 본문 최대 크기
	defaultMaxBodySize = "64KB"
)

// HTTPServerConfig HTTP 서버 생성에 필요한 설정을 정의합니다.
type HTTPServerConfig struct {
	// Debug Echo 프레임워크의 디버그 모드 활성화 여부
	Debug bool

	// AllowOrigins CORS에서 허용할 Origin 목록
	AllowOrigins []string

	// RequestTimeout 각 HTTP 요청의 최대 처리 시간 (0이면 기본값 사용)
	RequestTimeout time.Duration
}

// NewHTTPServer 미들웨어가 설정된 Echo 인스턴스를 생성합니다.
//
// 미들웨어는 다음 순서로 적용됩니다.
//
//  1. Recover - 핸들러 패닉 복구 및 로깅 (서버 다운 방지)
//  2. RequestID - 요청별 고유 ID 부여 (X-Request-ID)
//  3. Server 헤더 제거 - 서버 스택 정보 노출 방지
//  4. 요청 로깅 - 구조화된 요청/응답 로그 기록
//  5. Rate Limiting - IP별 초당 요청 수 제한
//  6. BodyLimit - 요청 본문 크기 제한
//  7. Timeout - 요청 처리 시간 제한
//  8. CORS - 교차 출처 요청 처리
//  9. Secure - 보안 응답 헤더 추가
//
// 라우트 설정은 포함되지 않으며, 반환된 Echo 인스턴스에 별도로 설정해야 합니다.
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true

	e.Server.ReadTimeout = defaultReadTimeout
	e.Server.ReadHeaderTimeout = defaultReadHeaderTimeout
	e.Server.WriteTimeout = defaultWriteTimeout
	e.Server.IdleTimeout = defaultIdleTimeout

	// Echo 프레임워크의 내부 로그를 애플리케이션 로거로 통합합니다.
	e.Logger = echoLogger{Logger: applog.StandardLogger()}

	// 전역 HTTP 에러 핸들러 설정
	e.HTTPErrorHandler = errorHandler

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}

	// 1. Panic 복구
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			applog.WithComponentAndFields(componentHTTPServer, log.Fields{
				"path":  c.Request().URL.Path,
				"error": err,
				"stack": string(stack),
			}).Error("핸들러 실행 중 패닉이 발생했습니다")
			return err
		},
	}))
	// 2. Request ID
	e.Use(middleware.RequestID())
	// 3. Server 헤더 제거
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderServer, "")
			return next(c)
		}
	})
	// 4. 요청 로깅 (RateLimit/Timeout 이전에 위치하여 429/503 응답도 기록)
	e.Use(requestLogging())
	// 5. Rate Limiting
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:  defaultRateLimitPerSecond,
		Burst: defaultRateLimitBurst,
	})))
	// 6. Body Limit
	e.Use(middleware.BodyLimit(defaultMaxBodySize))
	// 7. Timeout
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: timeout,
	}))
	// 8. CORS 설정
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
	}))
	// 9. 보안 헤더
	e.Use(middleware.Secure())

	return e
}

// requestLogging 요청/응답 정보를 구조화된 로그로 기록하는 미들웨어를 반환합니다.
func requestLogging() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := log.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"remote_ip":  v.RemoteIP,
				"latency_ms": v.Latency.Milliseconds(),
				"request_id": v.RequestID,
			}
			if v.Error != nil {
				fields["error"] = v.Error
			}

			entry := applog.WithComponentAndFields(componentHTTPServer, fields)
			switch {
			case v.Status >= http.StatusInternalServerError:
				entry.Error("HTTP 요청 처리 실패 (서버 오류)")
			case v.Status >= http.StatusBadRequest:
				entry.Warn("HTTP 요청 거부 (클라이언트 오류)")
			default:
				entry.Info("HTTP 요청 처리 완료")
			}
			return nil
		},
	})
}
