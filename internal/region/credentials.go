package region

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jostojic/quotescreen/internal/domain"
	"github.com/jostojic/quotescreen/internal/ports"
)

// MaxCredentialLen is the longest storable network name or credential.
const MaxCredentialLen = CredentialSlotSize - 1

// Credentials are the network join parameters kept in the region header.
type Credentials struct {
	SSID     string
	Password string
}

// LogValue keeps the credential out of logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("ssid", c.SSID),
		slog.String("password", "[REDACTED]"),
	)
}

// Validate rejects values that do not fit their sub-slot.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.SSID) == "" {
		return domain.NewValidationError("ssid", "must not be empty")
	}

	fields := []struct{ name, value string }{
		{"ssid", c.SSID},
		{"password", c.Password},
	}

	for _, f := range fields {
		if len(f.value) > MaxCredentialLen {
			return domain.NewValidationErrorWithValue(f.name,
				fmt.Sprintf("must be at most %d bytes", MaxCredentialLen), len(f.value))
		}

		if strings.IndexByte(f.value, 0) >= 0 {
			return domain.NewValidationError(f.name, "must not contain NUL")
		}
	}

	return nil
}

// ReadCredentials returns the stored credentials and whether the configured
// flag is set. An unset flag yields zero Credentials.
func ReadCredentials(m ports.Medium) (Credentials, bool, error) {
	flag := make([]byte, 1)
	if _, err := m.ReadAt(flag, OffsetConfigured); err != nil {
		return Credentials{}, false, domain.NewStorageReadError(OffsetConfigured, err)
	}

	if flag[0] != ConfiguredMarker {
		return Credentials{}, false, nil
	}

	ssid, err := readCredentialSlot(m, OffsetSSID)
	if err != nil {
		return Credentials{}, false, err
	}

	password, err := readCredentialSlot(m, OffsetPassword)
	if err != nil {
		return Credentials{}, false, err
	}

	return Credentials{SSID: ssid, Password: password}, true, nil
}

// WriteCredentials stores both sub-slots, syncs, then sets the configured
// flag and syncs again.
func WriteCredentials(m ports.Medium, c Credentials) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if _, err := m.WriteAt(EncodeCString(c.SSID, CredentialSlotSize), OffsetSSID); err != nil {
		return domain.NewStorageWriteError(OffsetSSID, err)
	}

	if _, err := m.WriteAt(EncodeCString(c.Password, CredentialSlotSize), OffsetPassword); err != nil {
		return domain.NewStorageWriteError(OffsetPassword, err)
	}

	if err := m.Sync(); err != nil {
		return domain.NewStorageWriteError(OffsetSSID, err)
	}

	if _, err := m.WriteAt([]byte{ConfiguredMarker}, OffsetConfigured); err != nil {
		return domain.NewStorageWriteError(OffsetConfigured, err)
	}

	if err := m.Sync(); err != nil {
		return domain.NewStorageWriteError(OffsetConfigured, err)
	}

	return nil
}

// readCredentialSlot treats a missing terminator as an empty value.
func readCredentialSlot(m ports.Medium, off int64) (string, error) {
	buf := make([]byte, CredentialSlotSize)
	if _, err := m.ReadAt(buf, off); err != nil {
		return "", domain.NewStorageReadError(off, err)
	}

	s, _ := DecodeCString(buf)

	return s, nil
}
