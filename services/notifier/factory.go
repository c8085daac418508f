package notifier

import (
	"context"
	"time"

	"sjsage522/jobworker/config"
	"sjsage522/jobworker/logger"
	"sjsage522/jobworker/pkg/errors"
)

// New builds the fan-out notifier for every sink named in NOTIFY_SINKS
func New(ctx context.Context, cfg *config.Config) (*Multi, error) {
	var sinks []Notifier
	for _, name := range cfg.NotifySinks {
		switch name {
		case config.SinkTelegram:
			sinks = append(sinks, NewTelegramNotifier(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramChatID))
		case config.SinkRedis:
			r := NewRedisNotifier(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamCount, cfg.RedisStreamMaxLength)
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := r.Ping(pingCtx)
			cancel()
			if err != nil {
				// Sends will fail and be logged per notification
				logger.ForNotifier("redis").Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis not reachable at startup")
			}
			sinks = append(sinks, r)
		default:
			return nil, errors.NewConfiguration("unknown notification sink "+name, nil)
		}
	}
	if len(sinks) == 0 {
		return nil, errors.NewConfiguration("no notification sinks configured", nil)
	}
	return NewMulti(sinks...), nil
}
