package logger

import (
	"github.com/ThreeDotsLabs/watermill"
)

// WatermillAdapter routes watermill's internal logging into ILogger.
type WatermillAdapter struct {
	logger ILogger
	fields watermill.LogFields
}

func NewWatermillAdapter(l ILogger) watermill.LoggerAdapter {
	return &WatermillAdapter{logger: l, fields: watermill.LogFields{}}
}

func (a *WatermillAdapter) details(fields watermill.LogFields) map[string]interface{} {
	merged := a.fields.Add(fields)
	out := make(map[string]interface{}, len(merged))
	for k, v := range merged {
		out[k] = v
	}
	return out
}

func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	d := a.details(fields)
	if err != nil {
		d["error"] = err.Error()
	}
	a.logger.Error("BUS", msg, d)
}

func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info("BUS", msg, a.details(fields))
}

func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug("BUS", msg, a.details(fields))
}

func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug("BUS", msg, a.details(fields))
}

func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillAdapter{logger: a.logger, fields: a.fields.Add(fields)}
}
