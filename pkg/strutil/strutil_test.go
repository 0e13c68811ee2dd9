package strutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSpaces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "앞뒤 공백 제거",
			input:    "  hello  ",
			expected: "hello",
		},
		{
			name:     "연속된 공백 축약",
			input:    "Samsung   980  PRO",
			expected: "Samsung 980 PRO",
		},
		{
			name:     "탭과 개행 문자 처리",
			input:    "a\t\tb\n c",
			expected: "a b c",
		},
		{
			name:     "빈 문자열",
			input:    "",
			expected: "",
		},
		{
			name:     "공백만 있는 문자열",
			input:    "   \t\n  ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSpaces(tt.input))
		})
	}
}

func TestFormatCommas(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", FormatCommas(0))
	assert.Equal(t, "999", FormatCommas(999))
	assert.Equal(t, "1,000", FormatCommas(1000))
	assert.Equal(t, "1,234,567", FormatCommas(1234567))
	assert.Equal(t, "-1,234", FormatCommas(-1234))
}

func TestSplitAndTrim(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		sep      string
		expected []string
	}{
		{
			name:     "공백과 빈 항목 제거",
			input:    "a, , b,c",
			sep:      ",",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "빈 문자열은 nil 반환",
			input:    "",
			sep:      ",",
			expected: nil,
		},
		{
			name:     "구분자만 있는 문자열은 nil 반환",
			input:    ",,,",
			sep:      ",",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitAndTrim(tt.input, tt.sep))
		})
	}
}

func TestExtractDigits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1234560", ExtractDigits("1,234,560원"))
	assert.Equal(t, "", ExtractDigits("품절"))
	assert.Equal(t, "5600", ExtractDigits("라이젠5 5600"))
}

func TestStripHTMLTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Hello & World", StripHTMLTags("<b>Hello</b> &amp; World"))
	assert.Equal(t, "3 < 5", StripHTMLTags("3 < 5"))
	assert.Equal(t, "SSD 1TB", StripHTMLTags(`<span class="name">SSD 1TB</span>`))
}

func TestContainsFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		s        string
		substr   string
		expected bool
	}{
		{
			name:     "대소문자 무시 매칭",
			s:        "Samsung 980 PRO",
			substr:   "samsung",
			expected: true,
		},
		{
			name:     "한글 매칭",
			s:        "삼성전자 980 PRO",
			substr:   "삼성",
			expected: true,
		},
		{
			name:     "미포함",
			s:        "Western Digital",
			substr:   "samsung",
			expected: false,
		},
		{
			name:     "빈 부분 문자열은 항상 참",
			s:        "anything",
			substr:   "",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsFold(tt.s, tt.substr))
		})
	}
}

func TestContainsWordFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		s        string
		word     string
		expected bool
	}{
		{
			name:     "공백으로 구분된 단어 매칭",
			s:        "Samsung 980 1TB NVMe",
			word:     "1TB",
			expected: true,
		},
		{
			name:     "부분 일치는 단어로 인정하지 않음",
			s:        "Samsung 870 11TB",
			word:     "1TB",
			expected: false,
		},
		{
			name:     "괄호 경계 매칭",
			s:        "MX500 (1TB)",
			word:     "1tb",
			expected: true,
		},
		{
			name:     "문자열 끝 경계 매칭",
			s:        "WD BLUE SN580 2TB",
			word:     "2TB",
			expected: true,
		},
		{
			name:     "숫자가 이어지면 매칭 실패",
			s:        "SN580 2TB5",
			word:     "2TB",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsWordFold(tt.s, tt.word))
		})
	}
}
