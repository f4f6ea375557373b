package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/TokenLens/riskgate/internal/model"
	"github.com/TokenLens/riskgate/internal/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	ReconnBaseDelay = 1 * time.Second
	ReconnMaxDelay  = 30 * time.Second
	PingPeriod      = 15 * time.Second // Keep-alive interval

	// A live quote older than this no longer short-circuits the HTTP
	// price provider.
	QuoteFreshness = 30 * time.Second
)

// QuoteStream keeps a live last-price map for subscribed symbols over a
// websocket feed, so the pricing path can skip an HTTP round-trip while the
// feed is healthy. Entirely optional: with no stream URL configured the
// pricing service goes straight to HTTP.
//
// Each reconnect generation owns its *websocket.Conn locally; s.conn is the
// shared handle for Stop and subscription writes and is only touched under
// s.mu.
type QuoteStream struct {
	url    string
	log    *slog.Logger
	mu     sync.RWMutex
	conn   *websocket.Conn
	quotes map[string]model.Quote
	subs   []string
	ctx    context.Context
	cancel context.CancelFunc
}

func NewQuoteStream(url string) *QuoteStream {
	ctx, cancel := context.WithCancel(context.Background())
	return &QuoteStream{
		url:    url,
		log:    logger.Component("quote_stream"),
		quotes: make(map[string]model.Quote),
		subs:   make([]string, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the connection loop in a background goroutine
func (s *QuoteStream) Start() {
	go s.runLoop()
}

// Stop closes the stream
func (s *QuoteStream) Stop() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
	}
}

// Subscribe adds symbols to the subscription list and updates the connection
// if active
func (s *QuoteStream) Subscribe(symbols []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updates := false
	for _, sym := range symbols {
		sym = strings.ToUpper(sym)
		found := false
		for _, existing := range s.subs {
			if existing == sym {
				found = true
				break
			}
		}
		if !found {
			s.subs = append(s.subs, sym)
			updates = true
		}
	}

	if updates && s.conn != nil {
		s.sendSubscribe(s.subs)
	}
}

// Fresh returns the live quote for symbol if one arrived within
// QuoteFreshness.
func (s *QuoteStream) Fresh(symbol string) (model.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[strings.ToUpper(symbol)]
	if !ok || time.Since(q.FetchedAt) > QuoteFreshness {
		return model.Quote{}, false
	}
	return q, true
}

func (s *QuoteStream) runLoop() {
	delay := ReconnBaseDelay

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		conn, err := s.dial()
		if err != nil {
			s.log.Error("Quote stream connection failed", "error", err, "retry_in", delay)
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > ReconnMaxDelay {
				delay = ReconnMaxDelay
			}
			continue
		}

		delay = ReconnBaseDelay

		s.mu.Lock()
		s.conn = conn
		var subErr error
		if len(s.subs) > 0 {
			subErr = s.sendSubscribe(s.subs)
		}
		s.mu.Unlock()

		if subErr != nil {
			s.log.Error("Failed to resubscribe", "error", subErr)
			conn.Close()
			s.release(conn)
			continue
		}

		go s.pingLoop(conn)
		s.readLoop(conn)
		s.release(conn)
	}
}

// release detaches conn from the shared handle if it is still the current
// generation.
func (s *QuoteStream) release(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
}

func (s *QuoteStream) dial() (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	if err != nil {
		return nil, err
	}

	// Zombie check: no data and no pong within the window means dead.
	readTimeout := PingPeriod + 10*time.Second
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})
	return conn, nil
}

// pingLoop keeps one connection generation alive. It exits as soon as the
// generation is superseded; all writes go through s.mu so they never
// interleave with a subscription frame.
func (s *QuoteStream) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.conn != conn {
				s.mu.Unlock()
				return
			}
			err := conn.WriteMessage(websocket.PingMessage, []byte{})
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

type wsTick struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

func (s *QuoteStream) readLoop(conn *websocket.Conn) {
	defer conn.Close()

	readTimeout := PingPeriod + 10*time.Second

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.ctx.Err() == nil {
				s.log.Error("Quote stream read error", "error", err)
			}
			return
		}

		var ticks []wsTick
		if err := json.Unmarshal(message, &ticks); err != nil {
			var single wsTick
			if err2 := json.Unmarshal(message, &single); err2 == nil {
				ticks = []wsTick{single}
			} else {
				// Control or keep-alive frame
				continue
			}
		}

		for _, tick := range ticks {
			s.processTick(tick)
		}
	}
}

func (s *QuoteStream) processTick(tick wsTick) {
	if tick.Symbol == "" {
		return
	}
	price, err := decimal.NewFromString(tick.Price)
	if err != nil {
		return
	}
	priceF, _ := price.Float64()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[strings.ToUpper(tick.Symbol)] = model.Quote{
		Symbol:    strings.ToUpper(tick.Symbol),
		PriceUSD:  priceF,
		Source:    "stream",
		FetchedAt: time.Now(),
	}
}

// sendSubscribe writes the subscription frame. Caller must hold s.mu.
func (s *QuoteStream) sendSubscribe(symbols []string) error {
	msg := map[string]interface{}{
		"type":    "subscribe",
		"symbols": symbols,
		"channel": "ticker",
	}
	if s.conn == nil {
		return fmt.Errorf("no connection")
	}
	return s.conn.WriteJSON(msg)
}
