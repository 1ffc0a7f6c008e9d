package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStockAlertScan is the task type of the low-stock scan.
	TaskStockAlertScan = "panel:stock-alerts:scan"
	// StockAlertCron runs the scan every fifteen minutes.
	StockAlertCron = "*/15 * * * *"
)

// StockAlertPayload describes why a scan was requested.
type StockAlertPayload struct {
	Trigger string `json:"trigger"`
}

// NewStockAlertTask constructs an Asynq task for the low-stock scan.
func NewStockAlertTask(trigger string) (*asynq.Task, error) {
	if trigger == "" {
		trigger = "cron"
	}
	data, err := json.Marshal(StockAlertPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockAlertScan, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
