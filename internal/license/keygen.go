// internal/license/keygen.go
package license

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"

	"github.com/keygen-sh/keygen-go/v3"
	"go.uber.org/zap"
)

var (
	ErrExpired  = errors.New("license has expired")
	ErrNotFound = errors.New("license not found")
)

// KeygenValidator maps Keygen.sh licenses to dashboard tiers
type KeygenValidator struct {
	logger    *zap.Logger
	accountID string
	productID string
}

// NewKeygenValidator creates a new Keygen license validator
func NewKeygenValidator(accountID, productToken, productID string, logger *zap.Logger) *KeygenValidator {
	// Configure global Keygen settings
	keygen.Account = accountID
	keygen.Product = productID
	keygen.Token = productToken
	keygen.PublicKey = "" // Will be fetched automatically

	return &KeygenValidator{
		logger:    logger,
		accountID: accountID,
		productID: productID,
	}
}

// ResolveTier validates licenseKey with Keygen and returns the tier it grants.
// An empty key is the free tier and makes no network call.
func (kv *KeygenValidator) ResolveTier(ctx context.Context, licenseKey string) (Tier, error) {
	if licenseKey == "" {
		kv.logger.Info("No license key configured, using free tier")
		return TierFree, nil
	}
	kv.logger.Info("Validating license", zap.String("key_prefix", keyPrefix(licenseKey)))

	fingerprint, err := kv.generateFingerprint()
	if err != nil {
		return TierFree, fmt.Errorf("failed to generate machine fingerprint: %w", err)
	}

	keygen.LicenseKey = licenseKey

	license, err := keygen.Validate(ctx, fingerprint)
	switch {
	case errors.Is(err, keygen.ErrLicenseNotActivated):
		kv.logger.Info("License not activated, attempting activation")
		machine, activateErr := license.Activate(ctx, fingerprint)
		if activateErr != nil {
			return TierFree, fmt.Errorf("failed to activate license: %w", activateErr)
		}
		kv.logger.Info("License activated successfully",
			zap.String("machine_id", machine.ID),
			zap.String("fingerprint", fingerprint),
		)

	case errors.Is(err, keygen.ErrLicenseExpired):
		return TierFree, ErrExpired

	case err != nil:
		return TierFree, fmt.Errorf("license validation failed: %w", err)
	}

	if license == nil {
		return TierFree, ErrNotFound
	}

	tier := TierFromMetadata(license.Metadata)
	kv.logger.Info("License validation successful",
		zap.String("license_id", license.ID),
		zap.String("tier", string(tier)),
	)
	return tier, nil
}

func keyPrefix(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8] + "..."
}

// generateFingerprint creates a unique machine fingerprint
func (kv *KeygenValidator) generateFingerprint() (string, error) {
	// Get MAC addresses
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}

	var macAddresses []string
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagLoopback == 0 {
			macAddresses = append(macAddresses, iface.HardwareAddr.String())
		}
	}

	if len(macAddresses) == 0 {
		return "", fmt.Errorf("no network interfaces found")
	}

	// Get hostname
	hostname, err := getHostname()
	if err != nil {
		return "", err
	}

	// Create fingerprint from hostname + MAC addresses + OS
	data := fmt.Sprintf("%s-%s-%s", hostname, macAddresses[0], runtime.GOOS)
	hash := sha256.Sum256([]byte(data))

	return fmt.Sprintf("%x", hash), nil
}

// getHostname returns the machine hostname
func getHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return "unknown", nil
	}
	return hostname, nil
}
