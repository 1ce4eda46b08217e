package qrcode

import (
	"testing"

	"cravlr/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		errorCorrectionLevel string
	}{
		{"Low error correction", "L"},
		{"Medium error correction", "M"},
		{"High error correction", "Q"},
		{"Highest error correction", "H"},
		{"Default error correction", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(&config.Config{Referral: &config.ReferralConfig{
				QRSize:                 256,
				QRErrorCorrectionLevel: tt.errorCorrectionLevel,
			}})
			assert.NotNil(t, service)
		})
	}
}

func TestQRCodeService_GenerateReferralQR(t *testing.T) {
	service := NewQRCodeService(nil)

	qrBytes, err := service.GenerateReferralQR("https://cravlr.app/r/abc123")
	require.NoError(t, err)
	assert.NotEmpty(t, qrBytes)

	// Verify it's a valid PNG (starts with PNG magic number)
	assert.Equal(t, byte(0x89), qrBytes[0])
	assert.Equal(t, byte(0x50), qrBytes[1])
	assert.Equal(t, byte(0x4E), qrBytes[2])
	assert.Equal(t, byte(0x47), qrBytes[3])
}

func TestQRCodeService_GenerateReferralQR_DifferentSizes(t *testing.T) {
	for _, size := range []int{128, 256, 512} {
		service := NewQRCodeService(&config.Config{Referral: &config.ReferralConfig{QRSize: size}})

		qrBytes, err := service.GenerateReferralQR("https://cravlr.app/r/abc123")
		require.NoError(t, err)
		assert.NotEmpty(t, qrBytes)
	}
}

func TestQRCodeService_GenerateReferralQR_EmptyURL(t *testing.T) {
	service := NewQRCodeService(nil)

	_, err := service.GenerateReferralQR("")
	assert.Error(t, err)
}
