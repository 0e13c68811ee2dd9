// Package config 애플리케이션 설정의 로드와 검증을 담당합니다.
//
// 설정은 다음 우선순위로 병합됩니다. (아래로 갈수록 높은 우선순위)
//
//  1. 기본값 (defaultConfig)
//  2. JSON 설정 파일 (partscout.json)
//  3. 환경 변수 (PARTSCOUT_ 접두사)
package config

import (
	"fmt"
	"os"
	"strings"

	apperrors "github.com/darkkaiser/partscout/pkg/errors"
	"github.com/darkkaiser/partscout/pkg/validation"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "partscout"

	// DefaultFilename 애플리케이션 초기화 시 참조하는 기본 설정 파일명입니다.
	// 실행 인자를 통해 명시적인 경로가 제공되지 않을 경우, 시스템은 이 파일을 탐색하여 구성을 로드합니다.
	DefaultFilename = AppName + ".json"
)

// defaultConfig 설정 파일이나 환경 변수로 재정의되기 전의 기본 설정값입니다.
var defaultConfig = AppConfig{
	HTTPRetry: HTTPRetryConfig{
		MaxRetries: 3,
		RetryDelay: "2s",
	},
	Sites: SitesConfig{
		Compuzone: SiteConfig{Enabled: true, Timeout: "10s", RequestInterval: "500ms"},
		Guidecom:  SiteConfig{Enabled: true, Timeout: "10s", RequestInterval: "500ms"},
		Danawa:    SiteConfig{Enabled: true, Timeout: "10s", RequestInterval: "500ms"},
	},
	Search: SearchConfig{
		GroupThreshold: 0.6,
		MaxPages:       5,
	},
	API: APIConfig{
		WS: WSConfig{
			ListenPort: 8488,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
	},
}

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug     bool            `json:"debug"`
	HTTPRetry HTTPRetryConfig `json:"http_retry"`
	Sites     SitesConfig     `json:"sites"`
	Search    SearchConfig    `json:"search"`
	API       APIConfig       `json:"api"`
	Watches   []WatchConfig   `json:"watches"`
}

// validate 설정 파일 로드 직후, 각 설정 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) validate() error {
	v := newValidator()

	if err := c.HTTPRetry.validate(); err != nil {
		return err
	}

	if err := c.Sites.validate(); err != nil {
		return err
	}

	if err := c.Search.validate(v); err != nil {
		return err
	}

	if err := c.API.validate(v); err != nil {
		return err
	}

	return c.validateWatches(v)
}

func (c *AppConfig) validateWatches(v *validator.Validate) error {
	// Watch 중복 ID 검사
	if err := checkUniqueField(v, c.Watches, "ID", "Watch"); err != nil {
		return err
	}

	for _, w := range c.Watches {
		if err := checkStruct(v, w, fmt.Sprintf("Watch['%s']", w.ID)); err != nil {
			return err
		}

		// Cron 표현식 검증 (Scheduler가 활성화된 경우)
		if w.Scheduler.Runnable {
			if err := validation.ValidateCronExpression(w.Scheduler.TimeSpec); err != nil {
				return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("Watch['%s']의 스케줄러(TimeSpec) 설정이 유효하지 않습니다", w.ID))
			}
		}
	}

	return nil
}

// VerifyRecommendations 서비스 운영의 안정성을 위해 권장되는 설정 준수 여부를 진단합니다.
// 강제적인 에러를 발생시키지는 않으나, 잠재적 위험 요소에 대한 경고 메시지를 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	warnings = append(warnings, c.API.WS.VerifyRecommendations()...)

	if !c.Sites.Compuzone.Enabled && !c.Sites.Guidecom.Enabled && !c.Sites.Danawa.Enabled {
		warnings = append(warnings, "모든 검색 대상 사이트가 비활성화되어 있습니다. 검색 요청은 항상 빈 결과를 반환합니다")
	}

	return warnings
}

// HTTPRetryConfig HTTP 요청 실패 시 재시도 횟수와 대기 시간을 정의하는 설정 구조체
type HTTPRetryConfig struct {
	MaxRetries int    `json:"max_retries"`
	RetryDelay string `json:"retry_delay"`
}

func (c *HTTPRetryConfig) validate() error {
	if c.MaxRetries < 0 {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("HTTP 재시도 횟수(max_retries)는 0 이상이어야 합니다: %d", c.MaxRetries))
	}
	if err := validation.ValidateDuration(c.RetryDelay); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("HTTP 재시도 대기 시간(retry_delay) 설정이 올바르지 않습니다: '%s' (예: 1s, 500ms)", c.RetryDelay))
	}
	return nil
}

// SitesConfig 검색 대상 사이트별 설정을 정의하는 구조체
type SitesConfig struct {
	Compuzone SiteConfig `json:"compuzone"`
	Guidecom  SiteConfig `json:"guidecom"`
	Danawa    SiteConfig `json:"danawa"`
}

func (c *SitesConfig) validate() error {
	for name, site := range map[string]SiteConfig{
		"compuzone": c.Compuzone,
		"guidecom":  c.Guidecom,
		"danawa":    c.Danawa,
	} {
		if err := site.validate(name); err != nil {
			return err
		}
	}
	return nil
}

// SiteConfig 개별 사이트의 활성화 여부와 요청 정책을 정의하는 구조체
type SiteConfig struct {
	Enabled bool `json:"enabled"`

	// Timeout 사이트에 대한 개별 HTTP 요청의 최대 허용 시간
	Timeout string `json:"timeout"`

	// RequestInterval 동일 사이트에 대한 연속 요청 사이의 최소 간격 (과도한 요청 방지)
	RequestInterval string `json:"request_interval"`

	// BaseURL 사이트의 기본 URL을 재정의합니다. (미설정 시 사이트별 기본값 사용, 테스트 용도)
	BaseURL string `json:"base_url"`
}

func (c *SiteConfig) validate(name string) error {
	if err := validation.ValidateDuration(c.Timeout); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("사이트('%s')의 요청 제한 시간(timeout) 설정이 올바르지 않습니다", name))
	}
	if err := validation.ValidateDuration(c.RequestInterval); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("사이트('%s')의 요청 간격(request_interval) 설정이 올바르지 않습니다", name))
	}
	return nil
}

// SearchConfig 통합 검색의 동작 방식을 정의하는 설정 구조체
type SearchConfig struct {
	// GroupThreshold 유사 상품 그룹핑 시 동일 그룹으로 판단하는 유사도 임계값 (0.0 ~ 1.0)
	GroupThreshold float64 `json:"group_threshold" validate:"min=0,max=1"`

	// MaxPages 사이트별 검색 결과 페이지 최대 조회 수
	MaxPages int `json:"max_pages" validate:"min=1"`
}

func (c *SearchConfig) validate(v *validator.Validate) error {
	return checkStruct(v, c, "Search")
}

// APIConfig 검색 결과를 제공하는 REST API 서버 설정 구조체
type APIConfig struct {
	WS   WSConfig   `json:"ws"`
	CORS CORSConfig `json:"cors"`
}

func (c *APIConfig) validate(v *validator.Validate) error {
	if err := c.WS.validate(v); err != nil {
		return err
	}
	return c.CORS.validate(v)
}

// WSConfig 웹서버의 포트 및 TLS(HTTPS) 보안 설정을 정의하는 구조체
type WSConfig struct {
	TLSServer   bool   `json:"tls_server"`
	TLSCertFile string `json:"tls_cert_file" validate:"required_if=TLSServer true,omitempty,file"`
	TLSKeyFile  string `json:"tls_key_file" validate:"required_if=TLSServer true,omitempty,file"`
	ListenPort  int    `json:"listen_port" validate:"min=1,max=65535"`
}

func (c *WSConfig) validate(v *validator.Validate) error {
	if err := v.Struct(c); err != nil {
		// Validator 에러를 사용자 친화적인 메시지로 변환한다.
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range validationErrors {
				switch fieldErr.StructField() {
				case "ListenPort":
					return apperrors.New(apperrors.InvalidInput, "웹 서버 포트(listen_port)는 1에서 65535 사이의 값이어야 합니다")
				case "TLSCertFile":
					if fieldErr.Tag() == "required_if" {
						return apperrors.New(apperrors.InvalidInput, "TLS 서버 활성화 시 인증서 파일 경로(tls_cert_file)는 필수입니다")
					}
					return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("지정된 TLS 인증서 파일(tls_cert_file)을 찾을 수 없습니다: '%v'", fieldErr.Value()))
				case "TLSKeyFile":
					if fieldErr.Tag() == "required_if" {
						return apperrors.New(apperrors.InvalidInput, "TLS 서버 활성화 시 키 파일 경로(tls_key_file)는 필수입니다")
					}
					return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("지정된 TLS 키 파일(tls_key_file)을 찾을 수 없습니다: '%v'", fieldErr.Value()))
				}
			}
		}
		return apperrors.Wrap(err, apperrors.InvalidInput, "웹 서버 설정 검증 중 알 수 없는 오류가 발생했습니다")
	}

	return nil
}

func (c *WSConfig) VerifyRecommendations() []string {
	var warnings []string

	// 시스템 예약 포트(1024 미만) 사용 경고
	if c.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 이 경우 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.ListenPort))
	}

	return warnings
}

// CORSConfig 웹 브라우저의 교차 출처 리소스 공유(CORS) 정책을 설정하는 구조체
type CORSConfig struct {
	AllowOrigins []string `json:"allow_origins" validate:"dive,cors_origin"`
}

func (c *CORSConfig) validate(v *validator.Validate) error {
	if len(c.AllowOrigins) == 0 {
		return apperrors.New(apperrors.InvalidInput, "CORS 허용 도메인(allow_origins) 목록이 비어있습니다")
	}

	for _, origin := range c.AllowOrigins {
		if origin == "*" && len(c.AllowOrigins) > 1 {
			return apperrors.New(apperrors.InvalidInput, "와일드카드(*)는 다른 도메인과 함께 사용할 수 없습니다. 모든 도메인을 허용하려면 와일드카드만 설정하세요")
		}
	}

	if err := v.Struct(c); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range validationErrors {
				if fieldErr.Tag() == "cors_origin" {
					return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("CORS Origin 형식이 올바르지 않습니다: '%v' (형식: Scheme://Host[:Port], 예: https://example.com)", fieldErr.Value()))
				}
			}
		}
		return apperrors.Wrap(err, apperrors.InvalidInput, "CORS 설정 검증 중 알 수 없는 오류가 발생했습니다")
	}
	return nil
}

// WatchConfig 주기적으로 실행할 검색 감시 작업을 정의하는 구조체
type WatchConfig struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title"`

	// Query 감시 대상 검색어
	Query string `json:"query" validate:"required"`

	// Brands 결과를 제한할 브랜드 목록 (비어 있으면 전체)
	Brands []string `json:"brands"`

	// Capacity 결과를 제한할 용량 표기 (예: "1TB", 비어 있으면 전체)
	Capacity string `json:"capacity"`

	Scheduler struct {
		Runnable bool   `json:"runnable"`
		TimeSpec string `json:"time_spec"`
	} `json:"scheduler"`
}

// Load 기본 설정 파일을 읽어 애플리케이션 설정을 로드합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정된 경로의 설정 파일을 읽어 AppConfig 객체를 생성합니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값 로드 (가장 낮은 우선순위)
	if err := k.Load(structs.Provider(defaultConfig, "json"), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일 로드 (기본값 덮어쓰기)
	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
	}

	// 3. 환경 변수 로드 (최우선 순위, JSON 설정 덮어쓰기)
	// 접두사: PARTSCOUT_
	// 구분자: 이중 언더스코어(__)를 점(.)으로 변환 (계층 구조 표현)
	// 예: PARTSCOUT_HTTP_RETRY__MAX_RETRIES -> http_retry.max_retries
	if err := k.Load(env.Provider("PARTSCOUT_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "PARTSCOUT_")
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 4. 구조체 언마샬링 (Strict Validation 적용)
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			ErrorUnused:      true, // 파일에 존재하지만 구조체에 없는 필드가 있을 경우 에러를 발생시킴
			WeaklyTypedInput: true,
		},
	}
	var appConfig AppConfig
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	// 5. 유효성 검사 수행 (정합성 체크)
	if err := appConfig.validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일('%s')의 유효성 검증에 실패했습니다", filename))
	}

	return &appConfig, nil
}
