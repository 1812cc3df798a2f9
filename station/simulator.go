package station

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-faker/faker/v4"

	"github.com/moovolt/csms/ocpp16/core"
	"github.com/moovolt/csms/ocpp16/types"
)

// Boot announces the simulated charger with synthetic hardware identity and
// adopts the heartbeat interval the central system hands back.
func (c *Client) Boot(ctx context.Context) (*core.BootNotificationResponse, error) {
	request := &core.BootNotificationRequest{
		ChargePointVendor:       faker.LastName(),
		ChargePointModel:        faker.FirstName(),
		ChargePointSerialNumber: faker.CCNumber(),
		MeterSerialNumber:       faker.CCNumber(),
		MeterType:               faker.CCNumber(),
		Iccid:                   faker.CCNumber(),
		FirmwareVersion:         "v1.0.0",
	}
	response, err := c.call(ctx, request)
	if err != nil {
		return nil, err
	}
	boot := response.(*core.BootNotificationResponse)
	if boot.Status != core.RegistrationStatusAccepted {
		c.logger.Println("BootNotification rejected", boot.Status)
	}
	if boot.Interval > 0 {
		c.mu.Lock()
		c.heartbeatInterval = time.Duration(boot.Interval) * time.Second
		c.mu.Unlock()
	}
	return boot, nil
}

// StatusNotification reports a connector status change with simulator
// metadata.
func (c *Client) StatusNotification(ctx context.Context, status core.ChargePointStatus, connectorID int) error {
	request := &core.StatusNotificationRequest{
		ConnectorId: connectorID,
		ErrorCode:   core.NoError,
		Status:      status,
		Info:        faker.MonthName(),
		VendorId:    "vendor_" + faker.CCNumber(),
		Timestamp:   types.Now(),
	}
	_, err := c.call(ctx, request)
	return err
}

// Authorize presents an idTag to the central system.
func (c *Client) Authorize(ctx context.Context, idTag string) (*types.IdTagInfo, error) {
	response, err := c.call(ctx, &core.AuthorizeRequest{IdTag: idTag})
	if err != nil {
		return nil, err
	}
	return response.(*core.AuthorizeResponse).IdTagInfo, nil
}

func (c *Client) remoteStart(req *core.RemoteStartTransactionRequest) *core.RemoteStartTransactionResponse {
	c.mu.Lock()
	running := c.transactionID != 0
	c.mu.Unlock()
	if req.ConnectorId == nil || running {
		c.logger.WithField("idTag", req.IdTag).Println("Transaction already running or no connector")
		return core.NewRemoteStartTransactionResponse(core.RemoteStartStopStatusRejected)
	}
	connectorID := *req.ConnectorId
	go c.runChargingScenario(req.IdTag, connectorID)
	return core.NewRemoteStartTransactionResponse(core.RemoteStartStopStatusAccepted)
}

func (c *Client) remoteStop(req *core.RemoteStopTransactionRequest) *core.RemoteStopTransactionResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transactionID == 0 || c.transactionID != req.TransactionId {
		c.logger.Println("No matching transaction running", req.TransactionId)
		return core.NewRemoteStopTransactionResponse(core.RemoteStartStopStatusRejected)
	}
	c.transactionID = 0
	return core.NewRemoteStopTransactionResponse(core.RemoteStartStopStatusAccepted)
}

// runChargingScenario drives a full session: StartTransaction, periodic
// MeterValues while the transaction is live, StopTransaction when the
// central system stops it.
func (c *Client) runChargingScenario(idTag string, connectorID int) {
	ctx, cancel := context.WithTimeout(context.Background(), CallTimeout)
	defer cancel()

	c.StatusNotification(ctx, core.ChargePointStatusPreparing, connectorID)

	c.mu.Lock()
	meterStart := c.meterWh
	c.mu.Unlock()
	response, err := c.call(ctx, &core.StartTransactionRequest{
		ConnectorId: connectorID,
		IdTag:       idTag,
		MeterStart:  meterStart,
		Timestamp:   types.Now(),
	})
	if err != nil {
		c.logger.WithError(err).Error("StartTransaction failed")
		return
	}
	start := response.(*core.StartTransactionResponse)
	if start.IdTagInfo.Status != types.AuthorizationStatusAccepted {
		c.logger.Println("Transaction won't start", start.IdTagInfo.Status)
		return
	}
	c.mu.Lock()
	c.transactionID = start.TransactionId
	c.mu.Unlock()
	c.logger.Infoln("Transaction started", start.TransactionId)

	c.StatusNotification(ctx, core.ChargePointStatusCharging, connectorID)

	for {
		time.Sleep(5 * time.Second)
		select {
		case <-c.stopC:
			return
		default:
		}

		c.mu.Lock()
		txID := c.transactionID
		c.meterWh += fakeNumber(200, 1000)
		meterNow := c.meterWh
		c.mu.Unlock()
		if txID == 0 {
			break
		}

		if err := c.sendMeterValues(txID, connectorID, meterNow); err != nil {
			c.logger.WithError(err).Error("Error sending Energy meter value")
		} else {
			c.logger.WithField("energy_meter_value", meterNow).Info("Energy meter value sent")
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), CallTimeout)
	defer stopCancel()
	c.mu.Lock()
	meterStop := c.meterWh
	c.mu.Unlock()
	_, err = c.call(stopCtx, &core.StopTransactionRequest{
		IdTag:         idTag,
		MeterStop:     meterStop,
		Timestamp:     types.Now(),
		TransactionId: start.TransactionId,
		Reason:        core.ReasonRemote,
	})
	if err != nil {
		c.logger.WithError(err).Error("StopTransaction failed")
	}
	c.StatusNotification(stopCtx, core.ChargePointStatusFinishing, connectorID)
	c.StatusNotification(stopCtx, core.ChargePointStatusAvailable, connectorID)
}

func (c *Client) sendMeterValues(txID, connectorID, energyWh int) error {
	power, voltage, current := generateFakePAV()
	sampled := []core.SampledValue{
		{
			Value:     fmt.Sprintf("%d", energyWh),
			Unit:      core.UnitOfMeasureWh,
			Measurand: core.MeasurandEnergyActiveImportRegister,
			Format:    core.ValueFormatRaw,
			Context:   core.ReadingContextSamplePeriodic,
		},
		{
			Value:     fmt.Sprintf("%d", power),
			Unit:      core.UnitOfMeasureW,
			Measurand: core.MeasurandPowerActiveImport,
			Format:    core.ValueFormatRaw,
			Context:   core.ReadingContextSamplePeriodic,
		},
		{
			Value:     fmt.Sprintf("%d", voltage),
			Unit:      core.UnitOfMeasureV,
			Measurand: core.MeasurandVoltage,
			Format:    core.ValueFormatRaw,
			Context:   core.ReadingContextSamplePeriodic,
		},
		{
			Value:     fmt.Sprintf("%d", current),
			Unit:      core.UnitOfMeasureA,
			Measurand: core.MeasurandCurrentImport,
			Format:    core.ValueFormatRaw,
			Context:   core.ReadingContextSamplePeriodic,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), CallTimeout)
	defer cancel()
	_, err := c.call(ctx, &core.MeterValuesRequest{
		ConnectorId:   connectorID,
		TransactionId: &txID,
		MeterValue: []core.MeterValue{{
			Timestamp:    types.Now(),
			SampledValue: sampled,
		}},
	})
	return err
}

// generateFakePAV keeps power, voltage and current in plausible EVSE ranges.
func generateFakePAV() (int, int, int) {
	var voltage int
	var current int
	power := fakeNumber(1_000, 360_000) // W
	if power < 3_300 {
		voltage = 120
		current = fakeNumber(1, 12)
	} else if power < 19_200 {
		voltage = fakeNumber(208, 240)
		current = fakeNumber(16, 80)
	} else {
		voltage = fakeNumber(380, 800)
		current = fakeNumber(80, 500)
	}
	return power, voltage, current
}

func fakeNumber(min, max int) int {
	v, _ := faker.RandomInt(min, max, 1)
	if len(v) == 0 {
		return min + rand.Intn(max-min+1)
	}
	return v[0]
}
