package venues

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
)

func TestBybitCategories(t *testing.T) {
	def := &bybitAdapter{}
	assert.Equal(t, []string{"spot", "linear"}, def.categories())
	// The v5 position endpoint only serves derivatives
	assert.Equal(t, []string{"linear"}, def.positionCategories())

	custom := &bybitAdapter{params: domain.VenueParams{
		Categories: []string{"spot", "linear", "inverse"},
	}}
	assert.Equal(t, []string{"spot", "linear", "inverse"}, custom.categories())
	assert.Equal(t, []string{"linear", "inverse"}, custom.positionCategories())
}
