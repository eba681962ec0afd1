package ledger

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
)

// ReadingEnvelope is the decoded form of a gateway telemetry payload.
type ReadingEnvelope struct {
	DeviceID string
	Reading  int64
}

// ParseReadingPayload extracts the device id and reading from a JSON
// telemetry envelope, e.g. {"device_id":"meter-1","reading":90}. Extra
// fields are ignored.
func ParseReadingPayload(payload []byte) (ReadingEnvelope, error) {
	if !gjson.ValidBytes(payload) {
		return ReadingEnvelope{}, fmt.Errorf("%w: malformed telemetry payload", ErrInvalidArgument)
	}

	deviceID := gjson.GetBytes(payload, "device_id")
	if !deviceID.Exists() || deviceID.Type != gjson.String || deviceID.String() == "" {
		return ReadingEnvelope{}, fmt.Errorf("%w: telemetry payload missing device_id", ErrInvalidArgument)
	}

	reading := gjson.GetBytes(payload, "reading")
	if !reading.Exists() || reading.Type != gjson.Number {
		return ReadingEnvelope{}, fmt.Errorf("%w: telemetry payload missing numeric reading", ErrInvalidArgument)
	}

	return ReadingEnvelope{
		DeviceID: deviceID.String(),
		Reading:  reading.Int(),
	}, nil
}

// IngestReading applies a raw gateway telemetry payload on behalf of owner.
// A malformed payload fails without touching any state.
func (s *Service) IngestReading(ctx context.Context, owner string, payload []byte) error {
	envelope, err := ParseReadingPayload(payload)
	if err != nil {
		return fmt.Errorf("ingest reading: %w", err)
	}
	return s.UpdateDeviceReading(ctx, envelope.DeviceID, envelope.Reading, owner)
}
