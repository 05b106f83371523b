package notifier

import (
	"encoding/json"
	"time"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/notification"
	"github.com/x-xyz/escrow/service/redis"
)

// channelPayload carries the price as a decimal string, it does not survive a
// json number in most consumers
type channelPayload struct {
	Id         string            `json:"id"`
	Type       notification.Type `json:"type"`
	Collection domain.Address    `json:"collection"`
	TokenId    domain.TokenId    `json:"tokenId"`
	Seller     domain.Address    `json:"seller"`
	Buyer      domain.Address    `json:"buyer,omitempty"`
	Price      string            `json:"price,omitempty"`
	Time       time.Time         `json:"time"`
}

type redisChannel struct {
	redis   redis.Service
	channel string
}

// NewRedisChannel publishes every event as json on a redis pub/sub channel
func NewRedisChannel(r redis.Service, channel string) notification.Subscriber {
	return &redisChannel{r, channel}
}

func (im *redisChannel) Name() string {
	return "redis:" + im.channel
}

func (im *redisChannel) Handle(c ctx.Ctx, e notification.Event) error {
	p := channelPayload{
		Id:         e.Id,
		Type:       e.Type,
		Collection: e.Collection,
		TokenId:    e.TokenId,
		Seller:     e.Seller,
		Buyer:      e.Buyer,
		Time:       e.Time,
	}
	if e.Price != nil {
		p.Price = e.Price.String()
	}

	msg, err := json.Marshal(p)
	if err != nil {
		c.WithField("err", err).Error("json.Marshal failed")
		return err
	}

	if _, err := im.redis.Publish(c, im.channel, msg); err != nil {
		c.WithField("err", err).Error("redis.Publish failed")
		return err
	}
	return nil
}
