package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManufacturer_WithCode(t *testing.T) {
	t.Run("성공: 코드가 정렬된 상태로 추가된다", func(t *testing.T) {
		m := NewManufacturer("삼성전자", "2").WithCode("1")
		assert.Equal(t, []string{"1", "2"}, m.Codes)
	})

	t.Run("성공: 중복 코드와 빈 코드는 무시된다", func(t *testing.T) {
		m := NewManufacturer("삼성전자", "2", "2", "")
		assert.Equal(t, []string{"2"}, m.Codes)
	})
}

func TestMergeManufacturers(t *testing.T) {
	compuzone := []Manufacturer{
		NewManufacturer("삼성전자", "2"),
		NewManufacturer("Western Digital", "24"),
	}
	guidecom := []Manufacturer{
		NewManufacturer("western digital"),
		NewManufacturer("SEAGATE"),
	}
	danawa := []Manufacturer{
		NewManufacturer("삼성전자", "samsung"),
	}

	t.Run("성공: 대소문자 차이는 같은 제조사로 병합된다", func(t *testing.T) {
		merged := MergeManufacturers(compuzone, guidecom, danawa)
		require.Len(t, merged, 3)

		assert.Equal(t, "SEAGATE", merged[0].Name)
		assert.Equal(t, "Western Digital", merged[1].Name)
		assert.Equal(t, []string{"24"}, merged[1].Codes)
		assert.Equal(t, "삼성전자", merged[2].Name)
		assert.Equal(t, []string{"2", "samsung"}, merged[2].Codes)
	})

	t.Run("성공: 병합 결과는 입력 순서와 무관하다", func(t *testing.T) {
		forward := MergeManufacturers(compuzone, guidecom, danawa)
		backward := MergeManufacturers(danawa, guidecom, compuzone)
		require.Len(t, backward, len(forward))

		for i := range forward {
			assert.Equal(t, manufacturerKey(forward[i].Name), manufacturerKey(backward[i].Name))
			assert.Equal(t, forward[i].Codes, backward[i].Codes)
		}
	})

	t.Run("성공: 이름이 빈 제조사는 무시된다", func(t *testing.T) {
		merged := MergeManufacturers([]Manufacturer{{Name: ""}, NewManufacturer("INTEL")})
		require.Len(t, merged, 1)
		assert.Equal(t, "INTEL", merged[0].Name)
	})
}
