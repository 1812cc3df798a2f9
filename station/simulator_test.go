package station

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moovolt/csms/ocpp16/core"
)

func TestGenerateFakePAVStaysInEVSERanges(t *testing.T) {
	for i := 0; i < 100; i++ {
		power, voltage, current := generateFakePAV()
		assert.GreaterOrEqual(t, power, 1_000)
		assert.LessOrEqual(t, power, 360_000)
		assert.GreaterOrEqual(t, voltage, 120)
		assert.LessOrEqual(t, voltage, 800)
		assert.GreaterOrEqual(t, current, 1)
		assert.LessOrEqual(t, current, 500)
	}
}

func TestReportConfiguration(t *testing.T) {
	c := &Client{heartbeatInterval: 90 * time.Second}

	response := c.reportConfiguration(&core.GetConfigurationRequest{
		Key: []string{"HeartbeatInterval", "NoSuchKey"},
	})
	require.Len(t, response.ConfigurationKey, 1)
	assert.Equal(t, "HeartbeatInterval", response.ConfigurationKey[0].Key)
	require.NotNil(t, response.ConfigurationKey[0].Value)
	assert.Equal(t, "1m30s", *response.ConfigurationKey[0].Value)
	assert.Equal(t, []string{"NoSuchKey"}, response.UnknownKey)
}

func TestRemoteStopMatchesRunningTransaction(t *testing.T) {
	c := &Client{transactionID: 42, logger: log.NewEntry(log.StandardLogger())}

	rejected := c.remoteStop(&core.RemoteStopTransactionRequest{TransactionId: 7})
	assert.Equal(t, core.RemoteStartStopStatusRejected, rejected.Status)

	c.transactionID = 42
	accepted := c.remoteStop(&core.RemoteStopTransactionRequest{TransactionId: 42})
	assert.Equal(t, core.RemoteStartStopStatusAccepted, accepted.Status)
	assert.Equal(t, 0, c.transactionID)
}
