package errors

// ErrorType 에러의 종류를 나타내는 타입입니다.
type ErrorType string

// 에러 타입 상수
const (
	// Unknown 알 수 없는 에러
	Unknown ErrorType = "Unknown"

	// Internal 내부 로직 오류 (버그 등)
	Internal ErrorType = "Internal"

	// System 시스템 또는 인프라 오류 (디스크, 네트워크 등)
	System ErrorType = "System"

	// InvalidInput 잘못된 입력값 (유효성 검사 실패)
	InvalidInput ErrorType = "InvalidInput"

	// NotFound 리소스를 찾을 수 없음
	NotFound ErrorType = "NotFound"

	// ExecutionFailed 비즈니스 로직 수행 실패 (웹 페이지 요청 실패 등)
	ExecutionFailed ErrorType = "ExecutionFailed"

	// ParsingFailed 데이터 파싱 또는 형식 변환 실패 (HTML/JSON 구조 분석 실패 등)
	ParsingFailed ErrorType = "ParsingFailed"

	// Timeout 작업 시간 초과
	Timeout ErrorType = "Timeout"

	// Unavailable 서비스 일시적 사용 불가 (사이트 점검, 과부하 등)
	Unavailable ErrorType = "Unavailable"
)
