package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	apperrors "github.com/darkkaiser/partscout/pkg/errors"
	"golang.org/x/net/html/charset"
)

// Fetcher HTTP 요청을 수행하는 인터페이스
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFetcher 기본 타임아웃 및 User-Agent 자동 추가 기능이 내장된 HTTP 클라이언트 구현체입니다.
// 세션 쿠키를 유지해야 하는 사이트(가이드컴 등)를 위해 쿠키 저장소를 함께 사용합니다.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher 지정된 타임아웃과 쿠키 저장소가 설정된 새로운 HTTPFetcher 인스턴스를 생성합니다.
// 타임아웃이 0 이하이면 기본값(30초)을 사용합니다.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// cookiejar.New는 Options가 nil이면 에러를 반환하지 않는다.
	jar, _ := cookiejar.New(nil)

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// Do 커스텀 HTTP 요청을 실행합니다.
// 요청 헤더에 User-Agent가 없는 경우, 기본값(Chrome)을 자동으로 추가하여 봇 차단을 방지합니다.
func (h *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	// User-Agent가 설정되지 않은 경우 기본값(Chrome) 설정
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	}
	return h.client.Do(req)
}

// FetchHTMLDocument 지정된 URL로 HTTP GET 요청을 보내 HTML 문서를 가져오고, goquery.Document로 파싱합니다.
// 응답 헤더의 Content-Type을 분석하여, 비 UTF-8 인코딩(예: EUC-KR) 페이지도 자동으로 UTF-8로 변환하여 처리합니다.
func FetchHTMLDocument(ctx context.Context, fetcher Fetcher, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ExecutionFailed, fmt.Sprintf("HTML 페이지(%s) 요청 생성에 실패했습니다.", pageURL))
	}
	return fetchDocument(fetcher, req)
}

// PostFormDocument 지정된 URL로 폼 데이터를 POST 전송하고 응답 HTML을 goquery.Document로 파싱합니다.
// 검색 결과를 POST 방식으로만 제공하는 사이트(가이드컴 list.php 등)에서 사용합니다.
func PostFormDocument(ctx context.Context, fetcher Fetcher, pageURL string, form url.Values) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pageURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ExecutionFailed, fmt.Sprintf("HTML 페이지(%s) 요청 생성에 실패했습니다.", pageURL))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return fetchDocument(fetcher, req)
}

// FetchHTMLDocumentByRequest 커스텀 헤더 등이 설정된 준비된 요청으로 HTML 문서를 가져옵니다.
// 사이트별 API 호출처럼 단순 GET으로 표현할 수 없는 요청에서 사용합니다.
func FetchHTMLDocumentByRequest(fetcher Fetcher, req *http.Request) (*goquery.Document, error) {
	return fetchDocument(fetcher, req)
}

// fetchDocument 준비된 요청을 실행하고 응답 본문을 goquery.Document로 파싱합니다.
func fetchDocument(fetcher Fetcher, req *http.Request) (*goquery.Document, error) {
	pageURL := req.URL.String()

	resp, err := fetcher.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ExecutionFailed, fmt.Sprintf("HTML 페이지(%s) 요청 중 네트워크 또는 클라이언트 에러가 발생했습니다.", pageURL))
	}
	defer resp.Body.Close() // 응답을 받은 즉시 defer 설정하여 메모리 누수 방지

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.ExecutionFailed, fmt.Sprintf("HTML 페이지(%s) 요청이 실패했습니다. 상태 코드: %s", pageURL, resp.Status))
	}

	// Content-Type 헤더를 기반으로 인코딩을 UTF-8로 변환
	utf8Reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, fmt.Sprintf("페이지(%s)의 인코딩 변환이 실패하였습니다.", pageURL))
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, fmt.Sprintf("불러온 페이지(%s)의 데이터 파싱이 실패하였습니다.", pageURL))
	}

	return doc, nil
}

// FetchHTMLSelection 지정된 URL의 HTML 문서에서 CSS 선택자(selector)에 해당하는 요소를 찾습니다.
// 선택된 요소가 없으면 에러를 반환하여, 변경된 웹 페이지 구조를 조기에 감지할 수 있도록 돕습니다.
func FetchHTMLSelection(ctx context.Context, fetcher Fetcher, pageURL string, selector string) (*goquery.Selection, error) {
	doc, err := FetchHTMLDocument(ctx, fetcher, pageURL)
	if err != nil {
		return nil, err
	}

	sel := doc.Find(selector)
	if sel.Length() <= 0 {
		return nil, apperrors.New(apperrors.ParsingFailed, fmt.Sprintf("불러온 페이지(%s)의 문서구조가 변경되었습니다. CSS셀렉터를 확인하세요", pageURL))
	}

	return sel, nil
}

// FetchJSON HTTP 요청을 수행하고 응답 본문(JSON)을 지정된 구조체(v)로 디코딩합니다.
func FetchJSON(ctx context.Context, fetcher Fetcher, method, apiURL string, header map[string]string, body io.Reader, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ExecutionFailed, fmt.Sprintf("JSON 요청 생성에 실패했습니다. (URL: %s)", apiURL))
	}
	for key, value := range header {
		req.Header.Set(key, value)
	}

	resp, err := fetcher.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ExecutionFailed, fmt.Sprintf("JSON API(%s) 요청 전송 중 에러가 발생했습니다.", apiURL))
	}
	defer resp.Body.Close() // 응답을 받은 즉시 defer 설정하여 메모리 누수 방지

	if resp.StatusCode != http.StatusOK {
		return apperrors.New(apperrors.ExecutionFailed, fmt.Sprintf("JSON API(%s) 요청이 실패했습니다. 상태 코드: %s", apiURL, resp.Status))
	}

	// json.Decoder를 사용하여 스트림 방식으로 JSON 파싱 (메모리 효율적)
	if err = json.NewDecoder(resp.Body).Decode(v); err != nil {
		return apperrors.Wrap(err, apperrors.ParsingFailed, fmt.Sprintf("불러온 페이지(%s) 데이터의 JSON 변환이 실패하였습니다.", apiURL))
	}

	return nil
}

// ScrapeHTML 지정된 URL의 HTML 문서에서 CSS 선택자에 해당하는 모든 요소를 순회하며 콜백 함수를 실행합니다.
func ScrapeHTML(ctx context.Context, fetcher Fetcher, pageURL string, selector string, f func(int, *goquery.Selection) bool) error {
	sel, err := FetchHTMLSelection(ctx, fetcher, pageURL, selector)
	if err != nil {
		return err
	}

	sel.EachWithBreak(f)

	return nil
}
