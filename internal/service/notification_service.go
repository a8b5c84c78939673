package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"talent_match_backend/internal/model"
	"talent_match_backend/internal/repository"
	"talent_match_backend/internal/util"
	"talent_match_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Recipient 通知接收人
type Recipient struct {
	UserID uint
	Name   string
	Email  string
}

// NotificationMessage 一条待投递的通知；Channels 为空时使用默认渠道
type NotificationMessage struct {
	Type     string
	Title    string
	Body     string
	Link     string
	Channels []string
}

// NotificationSender 面试提醒、测试分配等场景依赖的投递能力
type NotificationSender interface {
	Send(ctx context.Context, to Recipient, msg NotificationMessage) error
}

// Channel 单个投递渠道
type Channel interface {
	Name() string
	Deliver(ctx context.Context, to Recipient, msg NotificationMessage) error
}

// MultiChannelNotifier 按渠道名分发，任一渠道失败则整体失败
type MultiChannelNotifier struct {
	channels map[string]Channel
	defaults []string
}

func NewMultiChannelNotifier(defaults []string, channels ...Channel) *MultiChannelNotifier {
	n := &MultiChannelNotifier{
		channels: make(map[string]Channel, len(channels)),
		defaults: defaults,
	}
	for _, ch := range channels {
		n.channels[ch.Name()] = ch
	}
	return n
}

// ChannelSupporter 由能报告已注册渠道的 NotificationSender 实现
type ChannelSupporter interface {
	Supports(channel string) bool
}

// Supports 渠道是否已注册，push 仅在启用 Redis 时注册
func (n *MultiChannelNotifier) Supports(channel string) bool {
	_, ok := n.channels[channel]
	return ok
}

func (n *MultiChannelNotifier) Send(ctx context.Context, to Recipient, msg NotificationMessage) error {
	names := msg.Channels
	if len(names) == 0 {
		names = n.defaults
	}
	if len(names) == 0 {
		names = []string{model.ChannelInApp}
	}

	var err error
	for _, name := range names {
		ch, ok := n.channels[name]
		if !ok {
			err = multierr.Append(err, fmt.Errorf("channel %q not configured", name))
			continue
		}
		if e := ch.Deliver(ctx, to, msg); e != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", name, e))
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrDelivery, err)
	}
	return nil
}

// InAppChannel 写入 notifications 表
type InAppChannel struct {
	Repo *repository.NotificationRepository
}

func (c *InAppChannel) Name() string { return model.ChannelInApp }

func (c *InAppChannel) Deliver(ctx context.Context, to Recipient, msg NotificationMessage) error {
	return c.Repo.Create(ctx, &model.Notification{
		UserID: to.UserID,
		Type:   msg.Type,
		Title:  msg.Title,
		Body:   msg.Body,
		Link:   msg.Link,
	})
}

// EmailChannel 没有接入真实邮件网关，仅记录日志
type EmailChannel struct{}

func (c *EmailChannel) Name() string { return model.ChannelEmail }

func (c *EmailChannel) Deliver(ctx context.Context, to Recipient, msg NotificationMessage) error {
	if to.Email == "" {
		return errors.New("recipient has no email address")
	}
	logger.Log.Info("Email notification",
		zap.String("to", to.Email),
		zap.String("type", msg.Type),
		zap.String("subject", msg.Title),
		zap.String("link", msg.Link),
	)
	return nil
}

type pushPayload struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Link  string `json:"link,omitempty"`
}

// PushChannel 发布到 notifications:<userID>，由推送网关订阅
type PushChannel struct {
	Redis *redis.Client
}

func (c *PushChannel) Name() string { return model.ChannelPush }

func PushTopic(userID uint) string {
	return "notifications:" + strconv.FormatUint(uint64(userID), 10)
}

func (c *PushChannel) Deliver(ctx context.Context, to Recipient, msg NotificationMessage) error {
	if c.Redis == nil {
		return errors.New("push channel requires redis")
	}
	payload, err := json.Marshal(pushPayload{Type: msg.Type, Title: msg.Title, Body: msg.Body, Link: msg.Link})
	if err != nil {
		return err
	}
	return c.Redis.Publish(ctx, PushTopic(to.UserID), payload).Err()
}

// NotificationService 站内通知查询
type NotificationService struct {
	Repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{Repo: repo}
}

func (s *NotificationService) ListMine(userID uint, unreadOnly bool, page, limit int) ([]model.Notification, int64, error) {
	return s.Repo.ListByUser(userID, unreadOnly, page, limit)
}

func (s *NotificationService) MarkRead(userID, id uint) error {
	ok, err := s.Repo.MarkRead(userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrNotificationNotFound
	}
	return nil
}

// recipientOf 把用户转换成通知接收人
func recipientOf(u *model.User) Recipient {
	return Recipient{UserID: u.ID, Name: u.Name, Email: u.Email}
}
