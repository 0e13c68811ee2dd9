// Package service 애플리케이션을 구성하는 서비스들의 공통 생명주기 계약을 정의합니다.
package service

import (
	"context"
	"sync"
)

// Service 애플리케이션 서비스의 생명주기 인터페이스입니다.
//
// Start는 즉시 반환되며 실제 작업은 고루틴에서 실행됩니다. serviceStopCtx가
// 취소되면 서비스는 정리 작업을 수행한 뒤 serviceStopWG에 종료 완료를 알립니다.
type Service interface {
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}
