package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReadingPayload(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		envelope, err := ParseReadingPayload([]byte(`{"device_id":"meter-1","reading":90,"ts":"2026-08-30T10:00:00Z"}`))
		require.NoError(t, err)
		assert.Equal(t, "meter-1", envelope.DeviceID)
		assert.Equal(t, int64(90), envelope.Reading)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := ParseReadingPayload([]byte(`{"device_id":`))
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("MissingDeviceID", func(t *testing.T) {
		_, err := ParseReadingPayload([]byte(`{"reading":90}`))
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("MissingReading", func(t *testing.T) {
		_, err := ParseReadingPayload([]byte(`{"device_id":"meter-1"}`))
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("NonNumericReading", func(t *testing.T) {
		_, err := ParseReadingPayload([]byte(`{"device_id":"meter-1","reading":"high"}`))
		require.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestIngestReading(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.RegisterUser(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.RegisterDevice(ctx, "meter-1", DeviceTypeEnergy, "alice")
	require.NoError(t, err)

	require.NoError(t, svc.IngestReading(ctx, "alice", []byte(`{"device_id":"meter-1","reading":72}`)))

	account, err := svc.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(72), account.EnergyScore)

	t.Run("BadPayloadLeavesStateAlone", func(t *testing.T) {
		require.Error(t, svc.IngestReading(ctx, "alice", []byte(`not json`)))

		account, err := svc.GetAccount(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(72), account.EnergyScore)
	})

	t.Run("UnknownDevice", func(t *testing.T) {
		err := svc.IngestReading(ctx, "alice", []byte(`{"device_id":"nope","reading":50}`))
		require.ErrorIs(t, err, ErrDeviceNotFound)
	})
}
