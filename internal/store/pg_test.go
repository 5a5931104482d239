package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateSafeBatchSize(t *testing.T) {
	tests := []struct {
		name            string
		totalRecords    int
		fieldsPerRecord int
		want            int
	}{
		{
			name:            "small batch fits entirely",
			totalRecords:    100,
			fieldsPerRecord: 14,
			want:            100,
		},
		{
			name:            "large batch capped by parameter limit",
			totalRecords:    100000,
			fieldsPerRecord: 14,
			want:            (65535 - 1000) / 14,
		},
		{
			name:            "degenerate wide record still inserts one at a time",
			totalRecords:    10,
			fieldsPerRecord: 70000,
			want:            1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateSafeBatchSize(tt.totalRecords, tt.fieldsPerRecord))
		})
	}
}
