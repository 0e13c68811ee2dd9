package config

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/darkkaiser/partscout/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseConfig 유효한 설정의 기본 형태를 반환합니다. 각 테스트는 필요한 필드만 변형하여 사용합니다.
func baseConfig() *AppConfig {
	cfg := defaultConfig
	return &cfg
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAppConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(cfg *AppConfig)
		wantErr bool
	}{
		{
			name:    "성공: 기본 설정",
			mutate:  func(cfg *AppConfig) {},
			wantErr: false,
		},
		{
			name: "실패: 잘못된 재시도 대기 시간",
			mutate: func(cfg *AppConfig) {
				cfg.HTTPRetry.RetryDelay = "2초"
			},
			wantErr: true,
		},
		{
			name: "실패: 음수 재시도 횟수",
			mutate: func(cfg *AppConfig) {
				cfg.HTTPRetry.MaxRetries = -1
			},
			wantErr: true,
		},
		{
			name: "실패: 잘못된 사이트 요청 간격",
			mutate: func(cfg *AppConfig) {
				cfg.Sites.Danawa.RequestInterval = "fast"
			},
			wantErr: true,
		},
		{
			name: "실패: 범위를 벗어난 그룹핑 임계값",
			mutate: func(cfg *AppConfig) {
				cfg.Search.GroupThreshold = 1.5
			},
			wantErr: true,
		},
		{
			name: "실패: 범위를 벗어난 포트",
			mutate: func(cfg *AppConfig) {
				cfg.API.WS.ListenPort = 70000
			},
			wantErr: true,
		},
		{
			name: "실패: 와일드카드와 도메인 혼용",
			mutate: func(cfg *AppConfig) {
				cfg.API.CORS.AllowOrigins = []string{"*", "https://example.com"}
			},
			wantErr: true,
		},
		{
			name: "실패: Watch ID 중복",
			mutate: func(cfg *AppConfig) {
				cfg.Watches = []WatchConfig{
					{ID: "w1", Query: "SSD 1TB"},
					{ID: "w1", Query: "DDR5 32GB"},
				}
			},
			wantErr: true,
		},
		{
			name: "실패: 스케줄러 활성화 시 잘못된 Cron 표현식",
			mutate: func(cfg *AppConfig) {
				w := WatchConfig{ID: "w1", Query: "SSD 1TB"}
				w.Scheduler.Runnable = true
				w.Scheduler.TimeSpec = "* * * * *" // 5필드 형식은 미지원
				cfg.Watches = []WatchConfig{w}
			},
			wantErr: true,
		},
		{
			name: "성공: 스케줄러 비활성화 시 Cron 표현식 미검증",
			mutate: func(cfg *AppConfig) {
				w := WatchConfig{ID: "w1", Query: "SSD 1TB"}
				w.Scheduler.Runnable = false
				w.Scheduler.TimeSpec = "invalid"
				cfg.Watches = []WatchConfig{w}
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadWithFile(t *testing.T) {
	t.Run("성공: 설정 파일과 기본값 병합", func(t *testing.T) {
		path := writeConfigFile(t, `{
			"debug": true,
			"search": {"group_threshold": 0.5},
			"sites": {"compuzone": {"enabled": false}}
		}`)

		cfg, err := LoadWithFile(path)

		require.NoError(t, err)
		assert.True(t, cfg.Debug)
		assert.Equal(t, 0.5, cfg.Search.GroupThreshold)
		assert.False(t, cfg.Sites.Compuzone.Enabled)
		// 파일에 없는 값은 기본값 유지
		assert.True(t, cfg.Sites.Guidecom.Enabled)
		assert.Equal(t, 3, cfg.HTTPRetry.MaxRetries)
		assert.Equal(t, "2s", cfg.HTTPRetry.RetryDelay)
	})

	t.Run("성공: 환경 변수가 설정 파일을 덮어씀", func(t *testing.T) {
		path := writeConfigFile(t, `{"http_retry": {"max_retries": 5}}`)

		t.Setenv("PARTSCOUT_HTTP_RETRY__MAX_RETRIES", "7")

		cfg, err := LoadWithFile(path)

		require.NoError(t, err)
		assert.Equal(t, 7, cfg.HTTPRetry.MaxRetries)
	})

	t.Run("실패: 설정 파일 없음", func(t *testing.T) {
		_, err := LoadWithFile(filepath.Join(t.TempDir(), "missing.json"))

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.System))
	})

	t.Run("실패: 알 수 없는 필드 포함", func(t *testing.T) {
		path := writeConfigFile(t, `{"unknown_field": true}`)

		_, err := LoadWithFile(path)

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.System))
	})

	t.Run("실패: 유효성 검증 실패", func(t *testing.T) {
		path := writeConfigFile(t, `{"search": {"group_threshold": 2.0}}`)

		_, err := LoadWithFile(path)

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})
}
