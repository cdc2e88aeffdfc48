package style_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/ecow/internal/core/domain"
	"go.trai.ch/ecow/internal/ui/style"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		status domain.Status
		icon   string
	}{
		{domain.StatusBuilt, style.Check},
		{domain.StatusUpToDate, style.Tilde},
		{domain.StatusFailed, style.Cross},
		{domain.StatusCancelled, style.Warning},
		{domain.StatusBuilding, style.Dot},
		{domain.StatusUnbuilt, style.Circle},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			icon, color := style.Status(tt.status)
			assert.Equal(t, tt.icon, icon)
			assert.NotEmpty(t, string(color))
		})
	}
}
