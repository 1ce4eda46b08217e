package service

// QRCodeService defines the interface for QR code generation.
type QRCodeService interface {
	// GenerateReferralQR renders a referral link URL as a PNG QR code.
	GenerateReferralQR(url string) ([]byte, error)
}
