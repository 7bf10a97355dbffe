package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"jobscout-engine/internal/domain"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{0, nil},
		{200, nil},
		{304, nil},
		{404, domain.ErrRender},
		{410, domain.ErrRender},
		{429, domain.ErrTransient},
		{502, domain.ErrTransient},
		{503, domain.ErrTransient},
	}
	for _, tc := range cases {
		err := ClassifyStatus("https://example.com/x", tc.status)
		if tc.want == nil {
			assert.NoError(t, err, "status %d", tc.status)
			continue
		}
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
	}
}

func TestClassifyStatusDriftIsNotTransient(t *testing.T) {
	err := ClassifyStatus("https://example.com/x", 404)
	assert.False(t, errors.Is(err, domain.ErrTransient))

	var re *domain.RenderError
	assert.True(t, errors.As(err, &re))
	assert.Equal(t, "https://example.com/x", re.URL)
}
