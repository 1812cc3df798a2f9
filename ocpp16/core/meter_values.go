package core

import (
	"gopkg.in/go-playground/validator.v9"

	"github.com/moovolt/csms/ocpp16/types"
	"github.com/moovolt/csms/ocppj"
)

type Measurand string

type UnitOfMeasure string

type ReadingContext string

type ValueFormat string

const (
	MeasurandCurrentImport              Measurand = "Current.Import"
	MeasurandCurrentOffered             Measurand = "Current.Offered"
	MeasurandEnergyActiveImportRegister Measurand = "Energy.Active.Import.Register"
	MeasurandPowerActiveImport          Measurand = "Power.Active.Import"
	MeasurandSoC                        Measurand = "SoC"
	MeasurandTemperature                Measurand = "Temperature"
	MeasurandVoltage                    Measurand = "Voltage"

	UnitOfMeasureWh      UnitOfMeasure = "Wh"
	UnitOfMeasureW       UnitOfMeasure = "W"
	UnitOfMeasureA       UnitOfMeasure = "A"
	UnitOfMeasureV       UnitOfMeasure = "V"
	UnitOfMeasureCelsius UnitOfMeasure = "Celsius"
	UnitOfMeasurePercent UnitOfMeasure = "Percent"

	ReadingContextSamplePeriodic   ReadingContext = "Sample.Periodic"
	ReadingContextSampleClock      ReadingContext = "Sample.Clock"
	ReadingContextTransactionBegin ReadingContext = "Transaction.Begin"
	ReadingContextTransactionEnd   ReadingContext = "Transaction.End"

	ValueFormatRaw        ValueFormat = "Raw"
	ValueFormatSignedData ValueFormat = "SignedData"
)

// SampledValue is one reading inside a MeterValue. The measurand vocabulary
// above covers what the Moovolt fleet reports; Measurand is an open string so
// stations sending other OCPP measurands still validate.
type SampledValue struct {
	Value     string         `json:"value" validate:"required"`
	Context   ReadingContext `json:"context,omitempty"`
	Format    ValueFormat    `json:"format,omitempty" validate:"omitempty,valueFormat"`
	Measurand Measurand      `json:"measurand,omitempty"`
	Phase     string         `json:"phase,omitempty"`
	Location  string         `json:"location,omitempty"`
	Unit      UnitOfMeasure  `json:"unit,omitempty"`
}

type MeterValue struct {
	Timestamp    *types.DateTime `json:"timestamp" validate:"required"`
	SampledValue []SampledValue  `json:"sampledValue" validate:"required,min=1,dive"`
}

type MeterValuesRequest struct {
	ConnectorId   int          `json:"connectorId" validate:"gte=0"`
	TransactionId *int         `json:"transactionId,omitempty"`
	MeterValue    []MeterValue `json:"meterValue" validate:"required,min=1,dive"`
}

type MeterValuesResponse struct{}

func (r MeterValuesRequest) GetFeatureName() string  { return MeterValuesFeatureName }
func (r MeterValuesResponse) GetFeatureName() string { return MeterValuesFeatureName }

func isValidValueFormat(fl validator.FieldLevel) bool {
	switch ValueFormat(fl.Field().String()) {
	case ValueFormatRaw, ValueFormatSignedData:
		return true
	}
	return false
}

func init() {
	ocppj.Validate.RegisterValidation("valueFormat", isValidValueFormat)
}
