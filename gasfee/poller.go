package gasfee

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/goware/logger"
)

var DefaultOptions = Options{
	Logger:          logger.NewLogger(logger.LogLevel_INFO),
	PollingInterval: 10 * time.Second,
	PollingTimeout:  30 * time.Second,
}

type Options struct {
	Logger          logger.Logger
	PollingInterval time.Duration
	PollingTimeout  time.Duration
}

// Poller periodically fetches gas fee estimates from a Source and fans them
// out to subscribers. Consumers register interest with StartPolling, which returns
// a poll token; polling runs for as long as at least one token is connected.
type Poller struct {
	options Options

	log    logger.Logger
	source Source

	ctx     context.Context
	ctxStop context.CancelFunc
	running sync.WaitGroup
	mu      sync.RWMutex

	started     bool
	latest      *Estimates
	tokens      map[string]struct{}
	subscribers []*subscriber
}

type Subscription interface {
	Estimates() <-chan Estimates
	Done() <-chan struct{}
	Unsubscribe()
}

type subscriber struct {
	ch          chan Estimates
	sendCh      chan<- Estimates
	done        chan struct{}
	unsubscribe func()
}

func (s *subscriber) Estimates() <-chan Estimates {
	return s.ch
}

func (s *subscriber) Done() <-chan struct{} {
	return s.done
}

func (s *subscriber) Unsubscribe() {
	s.unsubscribe()
}

func NewPoller(source Source, opts ...Options) (*Poller, error) {
	options := DefaultOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.Logger == nil {
		return nil, fmt.Errorf("gasfee: logger is nil")
	}
	if source == nil {
		return nil, fmt.Errorf("gasfee: source is nil")
	}
	return &Poller{
		options: options,
		log:     options.Logger,
		source:  source,
		tokens:  map[string]struct{}{},
	}, nil
}

// StartPolling registers a consumer and returns its poll token. The first
// registration performs a synchronous fetch so that LatestEstimates has data,
// then starts the polling loop.
func (p *Poller) StartPolling(ctx context.Context) (string, error) {
	p.mu.Lock()
	token := uuid.NewString()
	p.tokens[token] = struct{}{}
	start := !p.started
	if start {
		p.started = true
		p.ctx, p.ctxStop = context.WithCancel(context.Background())
	}
	needsFetch := p.latest == nil
	p.mu.Unlock()

	if needsFetch {
		if estimates, err := p.fetch(ctx); err != nil {
			p.log.Warnf("gasfee: initial estimate fetch failed: %v", err)
		} else {
			p.publish(estimates)
		}
	}

	if start {
		p.running.Add(1)
		go func() {
			defer p.running.Done()
			p.run()
		}()
	}

	return token, nil
}

// StopPolling removes a poll token. Polling stops once the last token is
// disconnected. Unknown tokens are ignored.
func (p *Poller) StopPolling(token string) {
	p.mu.Lock()
	delete(p.tokens, token)
	stop := len(p.tokens) == 0 && p.started
	if stop {
		p.started = false
		p.ctxStop()
	}
	p.mu.Unlock()

	if stop {
		p.running.Wait()
	}
}

// LatestEstimates returns the most recent snapshot, or an EstimateNone value
// when no fetch has succeeded yet.
func (p *Poller) LatestEstimates() Estimates {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latest == nil {
		return Estimates{Type: EstimateNone}
	}
	return *p.latest
}

func (p *Poller) Subscribe() Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub := &subscriber{
		ch:   make(chan Estimates),
		done: make(chan struct{}),
	}
	sub.sendCh = makeUnboundedBuffered(sub.ch, p.log, 100)

	sub.unsubscribe = func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, s := range p.subscribers {
			if s == sub {
				p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
				close(sub.done)
				close(sub.sendCh)
				return
			}
		}
	}

	p.subscribers = append(p.subscribers, sub)
	return sub
}

func (p *Poller) run() {
	ticker := time.NewTicker(p.options.PollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return

		case <-ticker.C:
			estimates, err := p.fetch(p.ctx)
			if err != nil {
				// degrade gracefully, keep the last snapshot
				p.log.Warnf("gasfee: estimate fetch failed: %v", err)
				continue
			}
			p.publish(estimates)
		}
	}
}

func (p *Poller) fetch(ctx context.Context) (*Estimates, error) {
	if p.options.PollingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.options.PollingTimeout)
		defer cancel()
	}
	return p.source.FetchEstimates(ctx)
}

func (p *Poller) publish(estimates *Estimates) {
	if estimates == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latest = estimates
	for _, sub := range p.subscribers {
		sub.sendCh <- *estimates
	}
}
