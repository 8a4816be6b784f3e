package gateway

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	"heimdall/internal/engine"
	"heimdall/internal/perp"
)

const (
	maxRecvSize        = 4 * 1024
	defaultConnTimeout = 5 * time.Second
)

// clientSession is the minimal per-connection state the server tracks: just
// enough to route a report back to the connection that placed the order.
type clientSession struct {
	conn net.Conn
}

type clientMessage struct {
	sessionAddr string
	message     Message
}

// Server accepts NewOrder/OracleUpdate/LogBook frames over TCP and applies
// them to an in-process OrderBook and OraclePrice, writing back execution
// or error reports. It carries no matching logic of its own; everything it
// does is a thin translation to/from the core's in-process API.
type Server struct {
	addr   string
	book   *engine.OrderBook
	oracle *perp.OraclePrice
	rng    perp.RandSource
	pool   *WorkerPool
	log    zerolog.Logger

	sessionsMu sync.Mutex
	sessions   map[string]clientSession
	messages   chan clientMessage

	cancel context.CancelFunc
}

// New constructs a Server bound to addr, driving book and oracle, with
// workerCount connection-handling goroutines.
func New(addr string, book *engine.OrderBook, oracle *perp.OraclePrice, rng perp.RandSource, workerCount int, log zerolog.Logger) *Server {
	return &Server{
		addr:     addr,
		book:     book,
		oracle:   oracle,
		rng:      rng,
		pool:     NewWorkerPool(workerCount, log),
		log:      log,
		sessions: make(map[string]clientSession),
		messages: make(chan clientMessage, 1),
	}
}

// Run starts the listener and blocks until ctx is cancelled or a fatal
// error occurs.
func (s *Server) Run(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()

	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("gateway: listen: %w", err)
	}
	defer listener.Close()
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})
	t.Go(func() error { return s.dispatchLoop(t) })

	s.log.Info().Str("addr", s.addr).Msg("gateway listening")

	for {
		select {
		case <-ctx.Done():
			return t.Wait()
		default:
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return t.Wait()
				}
				s.log.Error().Err(err).Msg("accept failed")
				continue
			}
			s.addSession(conn)
			s.pool.AddTask(conn)
		}
	}
}

// Shutdown stops the server's listener loop.
func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Server) dispatchLoop(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case msg := <-s.messages:
			s.handleMessage(msg)
		}
	}
}

func (s *Server) handleMessage(msg clientMessage) {
	switch m := msg.message.(type) {
	case NewOrderMessage:
		s.handleNewOrder(msg.sessionAddr, m)
	case OracleUpdateMessage:
		if err := s.oracle.Update(m.SpotPrice, s.rng); err != nil {
			s.reportError(msg.sessionAddr, err)
		}
	case LogBookMessage:
		s.logBook()
	default:
		s.log.Error().Msg("unhandled message type")
	}
}

func (s *Server) handleNewOrder(sessionAddr string, m NewOrderMessage) {
	side := engine.Buy
	if m.Side != 0 {
		side = engine.Sell
	}

	id := uuid.New()
	orderID := binary.BigEndian.Uint64(id[:8])
	trades, err := s.book.PlaceOrder(side, m.Price, m.Quantity, orderID)
	if err != nil {
		s.reportError(sessionAddr, err)
		return
	}

	for _, tr := range trades {
		report := &Report{
			Type:         ExecutionReport,
			OrderID:      tr.TakerID,
			Side:         m.Side,
			Price:        tr.Price,
			Quantity:     tr.Quantity,
			Counterparty: tr.MakerID,
		}
		s.write(sessionAddr, report.Serialize())
	}
}

func (s *Server) logBook() {
	bid, _ := s.book.BestBid()
	ask, _ := s.book.BestAsk()
	s.log.Info().
		Str("best_bid", bid.Price.String()).
		Str("best_ask", ask.Price.String()).
		Int("bid_depth", s.book.BidDepth()).
		Int("ask_depth", s.book.AskDepth()).
		Msg("book snapshot")
}

func (s *Server) reportError(sessionAddr string, err error) {
	report := &Report{Type: ErrorReport, Err: err.Error()}
	s.write(sessionAddr, report.Serialize())
}

func (s *Server) write(sessionAddr string, buf []byte) {
	s.sessionsMu.Lock()
	session, ok := s.sessions[sessionAddr]
	s.sessionsMu.Unlock()
	if !ok {
		return
	}
	if _, err := session.conn.Write(buf); err != nil {
		s.log.Error().Err(err).Str("session", sessionAddr).Msg("write failed")
		s.removeSession(sessionAddr)
	}
}

// handleConnection reads exactly one frame off conn, parses it, and hands
// it to the dispatch loop, then re-queues the connection for its next
// frame. Any error here is treated as the connection's end.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return nil
	}

	if err := conn.SetDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		s.removeSession(conn.RemoteAddr().String())
		return nil
	}

	buf := make([]byte, maxRecvSize)
	select {
	case <-t.Dying():
		return nil
	default:
	}

	n, err := conn.Read(buf)
	if err != nil {
		s.removeSession(conn.RemoteAddr().String())
		return nil
	}

	message, err := ParseMessage(buf[:n])
	if err != nil {
		s.log.Error().Err(err).Msg("parse failed")
		return nil
	}
	if message == nil {
		s.pool.AddTask(conn)
		return nil
	}

	s.messages <- clientMessage{sessionAddr: conn.RemoteAddr().String(), message: message}
	s.pool.AddTask(conn)
	return nil
}

func (s *Server) addSession(conn net.Conn) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	s.sessions[conn.RemoteAddr().String()] = clientSession{conn: conn}
}

func (s *Server) removeSession(addr string) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	delete(s.sessions, addr)
}
