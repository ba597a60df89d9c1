package announce

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	// DefaultInterval keeps well under Telegram's per-channel limits.
	DefaultInterval = 3 * time.Second
	queueSize       = 1000
)

// Sender is the part of *tgbotapi.BotAPI the queue needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type request struct {
	message  tgbotapi.Chattable
	response chan response
}

type response struct {
	message tgbotapi.Message
	err     error
}

// Queue serialises sends and keeps at least interval between two messages
// to the same chat.
type Queue struct {
	sender   Sender
	interval time.Duration
	queue    chan request
	lastSent map[int64]time.Time
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	log      *slog.Logger
}

func NewQueue(sender Sender, interval time.Duration, log *slog.Logger) *Queue {
	ctx, cancel := context.WithCancel(context.Background())

	q := &Queue{
		sender:   sender,
		interval: interval,
		queue:    make(chan request, queueSize),
		lastSent: make(map[int64]time.Time),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		log:      log,
	}

	go q.processQueue()

	return q
}

// Send enqueues message and waits for it to be delivered.
func (q *Queue) Send(ctx context.Context, message tgbotapi.Chattable) (tgbotapi.Message, error) {
	req := request{
		message:  message,
		response: make(chan response, 1),
	}

	if err := q.ctx.Err(); err != nil {
		return tgbotapi.Message{}, fmt.Errorf("queue stopped: %w", err)
	}

	select {
	case q.queue <- req:
	case <-q.ctx.Done():
		return tgbotapi.Message{}, fmt.Errorf("queue stopped: %w", q.ctx.Err())
	case <-ctx.Done():
		return tgbotapi.Message{}, ctx.Err()
	}

	select {
	case resp := <-req.response:
		return resp.message, resp.err
	case <-q.done:
		// The request may have been answered while the queue drained.
		select {
		case resp := <-req.response:
			return resp.message, resp.err
		default:
			return tgbotapi.Message{}, fmt.Errorf("queue stopped: %w", q.ctx.Err())
		}
	case <-ctx.Done():
		return tgbotapi.Message{}, ctx.Err()
	}
}

// Stop fails pending requests and waits for the queue goroutine to exit.
func (q *Queue) Stop() {
	q.cancel()
	<-q.done
}

func (q *Queue) processQueue() {
	defer close(q.done)

	for {
		select {
		case req := <-q.queue:
			q.handleRequest(req)
		case <-q.ctx.Done():
			for {
				select {
				case req := <-q.queue:
					req.response <- response{err: q.ctx.Err()}
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) handleRequest(req request) {
	chatID := getChatID(req.message)

	q.mu.Lock()
	lastSent, exists := q.lastSent[chatID]
	q.mu.Unlock()

	if exists {
		if delay := max(q.interval-time.Since(lastSent), 0); delay > 0 {
			q.log.DebugContext(q.ctx, "Rate limiting message",
				"chatID", chatID,
				"delay", delay,
				"queueLen", len(q.queue))

			select {
			case <-time.After(delay):
			case <-q.ctx.Done():
				req.response <- response{err: q.ctx.Err()}

				return
			}
		}
	}

	message, err := q.sender.Send(req.message)

	q.mu.Lock()
	q.lastSent[chatID] = time.Now()
	q.mu.Unlock()

	req.response <- response{message: message, err: err}
}

func getChatID(message tgbotapi.Chattable) int64 {
	switch m := message.(type) {
	case tgbotapi.MessageConfig:
		return m.ChatID
	case tgbotapi.EditMessageTextConfig:
		return m.ChatID
	default:
		return 0
	}
}
