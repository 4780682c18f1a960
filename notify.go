package regauth

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// notification is one queued outbound message.
type notification struct {
	To      string
	Subject string
	Body    string
}

// notifyDispatcher delivers notifications on a background worker so sender
// latency and sender failures never touch the issuance path. A full buffer
// drops the notification (when configured) rather than blocking issuance.
type notifyDispatcher struct {
	sender Sender
	log    *zap.Logger

	cfg       NotifyConfig
	ch        chan notification
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newNotifyDispatcher(cfg NotifyConfig, sender Sender, log *zap.Logger) *notifyDispatcher {
	if sender == nil {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	d := &notifyDispatcher{
		sender: sender,
		log:    log,
		cfg:    cfg,
		ch:     make(chan notification, cfg.BufferSize),
		done:   make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *notifyDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case msg := <-d.ch:
			d.deliver(msg)
		case <-d.done:
			for {
				select {
				case msg := <-d.ch:
					d.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

func (d *notifyDispatcher) deliver(msg notification) {
	if err := d.sender.Send(context.Background(), msg.To, msg.Subject, msg.Body); err != nil {
		d.log.Warn("notification delivery failed",
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
	}
}

// Queue hands the notification to the worker. It never blocks when
// DropIfFull is set; dropped messages are counted and logged.
func (d *notifyDispatcher) Queue(msg notification) {
	if d == nil || d.closed.Load() {
		return
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- msg:
		case <-d.done:
		default:
			d.dropped.Add(1)
			d.log.Warn("notification dropped: buffer full",
				zap.String("subject", msg.Subject),
			)
		}
		return
	}

	select {
	case d.ch <- msg:
	case <-d.done:
	}
}

// Close drains the buffer and stops the worker.
func (d *notifyDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns how many notifications were discarded on a full buffer.
func (d *notifyDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
