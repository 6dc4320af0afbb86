// Package notify delivers accepted postings to subscribed recipients over
// Telegram, recording a receipt per (record, recipient) pair so nothing is
// ever delivered twice.
package notify

import (
	"context"
	"errors"
	"time"

	tele "gopkg.in/telebot.v4"

	"vacradar/internal/storage"
	"vacradar/pkg/logx"
)

const defaultPartDelay = 500 * time.Millisecond

// Sender sends one text message to a chat. Wrapping telebot behind this
// keeps delivery logic testable without a live bot.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// TelebotSender is the production Sender.
type TelebotSender struct {
	bot *tele.Bot
}

// NewTelebotSender validates the token against the Bot API and returns the
// sender. Long polling is never started; this bot only pushes messages.
func NewTelebotSender(token string) (*TelebotSender, error) {
	b, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, err
	}
	return &TelebotSender{bot: b}, nil
}

func (s *TelebotSender) Send(_ context.Context, chatID int64, text string) error {
	_, err := s.bot.Send(tele.ChatID(chatID), text, &tele.SendOptions{DisableWebPagePreview: true})
	return err
}

// Config controls delivery.
type Config struct {
	// Targets are recipient handles; each must have a registered chat id.
	Targets []string
	// PartDelay paces parts of an oversized message.
	PartDelay time.Duration
}

type Notifier struct {
	cfg    Config
	sender Sender
	store  storage.Store
	log    logx.Logger

	sleep func(ctx context.Context, d time.Duration)
}

func New(cfg Config, sender Sender, store storage.Store, log logx.Logger) *Notifier {
	if cfg.PartDelay <= 0 {
		cfg.PartDelay = defaultPartDelay
	}
	return &Notifier{
		cfg:    cfg,
		sender: sender,
		store:  store,
		log:    log,
		sleep: func(ctx context.Context, d time.Duration) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
			}
		},
	}
}

// SendRecords delivers records to every configured recipient. Per
// recipient: records already receipted are dropped first (at-most-once per
// pair), the remainder is rendered, split when oversized, sent, and
// receipted. An empty records input still sends one "nothing found" notice
// per recipient. Per-recipient failures are logged and never abort delivery
// to the others. Returns true only when at least one recipient actually
// received a message; skipped recipients (no registered chat, nothing left
// to send) do not count.
func (n *Notifier) SendRecords(ctx context.Context, records []storage.Record) (bool, error) {
	delivered := 0
	for _, handle := range n.cfg.Targets {
		sent, err := n.sendToRecipient(ctx, handle, records)
		if err != nil {
			n.log.Error("delivery failed", logx.String("recipient", handle), logx.Err(err))
			continue
		}
		if sent {
			delivered++
		}
	}

	if delivered == 0 {
		n.log.Error("delivery reached no recipients", logx.Int("targets", len(n.cfg.Targets)))
		return false, nil
	}
	n.log.Info("delivery complete",
		logx.Int("recipients", delivered),
		logx.Int("targets", len(n.cfg.Targets)),
		logx.Int("records", len(records)))
	return true, nil
}

// sendToRecipient reports whether the recipient actually received at least
// one message. Skips (unregistered chat, everything already receipted) are
// not errors, but they are not deliveries either.
func (n *Notifier) sendToRecipient(ctx context.Context, handle string, records []storage.Record) (bool, error) {
	recipient, err := n.store.RecipientByHandle(ctx, handle)
	if err != nil {
		return false, err
	}
	if recipient == nil {
		// The recipient has to message the bot once before we can reach them.
		n.log.Warn("recipient has no registered chat, skipping", logx.String("recipient", handle))
		return false, nil
	}

	pending, err := n.unreceipted(ctx, handle, records)
	if err != nil {
		return false, err
	}
	if len(records) > 0 && len(pending) == 0 {
		n.log.Debug("all records already delivered", logx.String("recipient", handle))
		return false, nil
	}

	text := FormatRecords(pending)
	parts := SplitMessage(text, MessageLimit)
	for i, part := range parts {
		if err := n.send(ctx, recipient.ChatID, part); err != nil {
			return false, err
		}
		if i < len(parts)-1 {
			n.sleep(ctx, n.cfg.PartDelay)
		}
	}

	for _, rec := range pending {
		if err := n.store.InsertReceipt(ctx, rec.ID, handle); err != nil {
			return false, err
		}
	}
	n.log.Info("records delivered",
		logx.String("recipient", handle),
		logx.Int("records", len(pending)),
		logx.Int("parts", len(parts)))
	return true, nil
}

func (n *Notifier) unreceipted(ctx context.Context, handle string, records []storage.Record) ([]storage.Record, error) {
	var pending []storage.Record
	for _, rec := range records {
		sent, err := n.store.HasReceipt(ctx, rec.ID, handle)
		if err != nil {
			return nil, err
		}
		if !sent {
			pending = append(pending, rec)
		}
	}
	return pending, nil
}

func (n *Notifier) send(ctx context.Context, chatID int64, text string) error {
	err := n.sender.Send(ctx, chatID, text)
	if err == nil {
		return nil
	}
	// Classify for the log; all recipient-level failures are contained the
	// same way by the caller.
	switch {
	case errors.Is(err, tele.ErrBlockedByUser):
		return errors.New("bot is blocked by the recipient")
	case errors.Is(err, tele.ErrChatNotFound):
		return errors.New("recipient chat not found")
	default:
		return err
	}
}
