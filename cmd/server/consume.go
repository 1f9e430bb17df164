package main

import (
	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/config"
	"github.com/iliyamo/healthsync/internal/queue"
)

type ConsumeAlertsCmd struct {
	Dir string `help:"Directory for the alert log (defaults to ALERT_LOG_DIR or ./logs)."`
}

func (c *ConsumeAlertsCmd) Run(app *Context) error {
	dir := c.Dir
	if dir == "" {
		dir = config.LoadAlertLogDir()
	}
	url := config.LoadAMQPURL()
	app.Log.Info("consuming health alerts", zap.String("queue", queue.HealthAlertQueue), zap.String("dir", dir))
	return queue.NewConsumer(url, dir, app.Log).Run(app.Ctx)
}
