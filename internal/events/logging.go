package events

import (
	"encoding/json"

	"aichat/internal/logger"
)

// Record 把事件逐条写入 log，直到 ch 被关闭。通常在独立 goroutine 中运行。
func Record(ch <-chan Event, log *logger.LogEntry) {
	for evt := range ch {
		fields := logger.Fields{
			"type":        string(evt.Type),
			"exchange_id": evt.ExchangeID,
		}
		if payload := encodePayload(evt.Payload); payload != "" {
			fields["payload"] = payload
		}
		log.WithFields(fields).Info("conversation event")
	}
}

func encodePayload(payload any) string {
	switch v := payload.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(data)
}
