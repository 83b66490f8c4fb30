package service

import (
	"github.com/4pisky/voeventhub.go/rabbitmq"
	"github.com/uptrace/bun"
	"github.com/ziflex/lecho/v3"
)

type VoeventhubService struct {
	Config         *Config
	DB             *bun.DB
	Logger         *lecho.Logger
	IngestPubSub   *Pubsub
	RabbitMQClient rabbitmq.Client
}
