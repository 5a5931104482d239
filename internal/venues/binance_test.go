package venues

import (
	"errors"
	"testing"

	"github.com/adshao/go-binance/v2/common"
	"github.com/stretchr/testify/assert"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
)

func TestClassifyBinanceErr(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantAuth      bool
		wantTransient bool
	}{
		{
			name:     "invalid api key",
			err:      &common.APIError{Code: -2015, Message: "Invalid API-key, IP, or permissions for action."},
			wantAuth: true,
		},
		{
			name:     "signature mismatch",
			err:      &common.APIError{Code: -1022, Message: "Signature for this request is not valid."},
			wantAuth: true,
		},
		{
			name:          "request weight exceeded",
			err:           &common.APIError{Code: -1003, Message: "Too much request weight used."},
			wantTransient: true,
		},
		{
			name:          "transport failure",
			err:           errors.New("connection reset by peer"),
			wantTransient: true,
		},
		{
			name: "other api error stays as-is",
			err:  &common.APIError{Code: -1121, Message: "Invalid symbol."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyBinanceErr(tt.err)
			assert.Equal(t, tt.wantAuth, domain.IsAuth(classified))
			assert.Equal(t, tt.wantTransient, domain.IsTransient(classified))
		})
	}
}

func TestNewBinanceAdapter_TestnetRouting(t *testing.T) {
	creds := domain.Credentials{APIKey: "key", APISecret: "secret"}

	testnet := newBinanceAdapter(creds, domain.VenueParams{Testnet: true}, Deps{})
	assert.Equal(t, binanceSpotTestnetURL, testnet.spot.BaseURL)
	assert.Equal(t, binanceFuturesTestnetURL, testnet.fut.BaseURL)

	// A testnet adapter must not redirect mainnet adapters built after it
	mainnet := newBinanceAdapter(creds, domain.VenueParams{}, Deps{})
	assert.NotEqual(t, binanceSpotTestnetURL, mainnet.spot.BaseURL)
	assert.NotEqual(t, binanceFuturesTestnetURL, mainnet.fut.BaseURL)
}
