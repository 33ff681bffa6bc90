package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"poker-platform/models"

	"github.com/rs/zerolog/log"
)

// TCPServer speaks line-delimited JSON: one Command per line in, one
// Response per line out, in order, per connection.
type TCPServer struct {
	address  string
	listener net.Listener
	handler  *CommandHandler
	conns    map[net.Conn]struct{}
	mu       sync.Mutex
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewTCPServer(address string, handler *CommandHandler) *TCPServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &TCPServer{
		address: address,
		handler: handler,
		conns:   make(map[net.Conn]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Listen binds the address. Serve must be called afterwards.
func (s *TCPServer) Listen() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start command server: %w", err)
	}
	s.listener = listener
	log.Info().Str("component", "tcp").Str("addr", listener.Addr().String()).Msg("command server listening")
	return nil
}

// Addr is the bound address, useful when listening on port 0.
func (s *TCPServer) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until Stop. It returns nil after Stop.
func (s *TCPServer) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warn().Str("component", "tcp").Err(err).Msg("accept failed")
			continue
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *TCPServer) handleConnection(conn net.Conn) {
	logger := log.With().Str("component", "tcp").Str("remote", conn.RemoteAddr().String()).Logger()
	logger.Debug().Msg("client connected")
	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		s.wg.Done()
		logger.Debug().Msg("client disconnected")
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	writer := bufio.NewWriter(conn)

	for scanner.Scan() {
		var cmd models.Command
		var response models.Response
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			response = models.Response{Success: false, Error: fmt.Sprintf("invalid JSON: %v", err)}
		} else {
			response = s.handler.Handle(s.ctx, cmd)
			if !response.Success {
				logger.Debug().Str("command", cmd.Command).Str("error", response.Error).Msg("command failed")
			}
		}

		if err := writeResponse(writer, response); err != nil {
			logger.Warn().Err(err).Msg("failed to write response")
			return
		}
	}

	if err := scanner.Err(); err != nil && s.ctx.Err() == nil {
		logger.Warn().Err(err).Msg("read failed")
	}
}

func writeResponse(w *bufio.Writer, response models.Response) error {
	data, err := json.Marshal(response)
	if err != nil {
		data, _ = json.Marshal(models.Response{Success: false, Error: "failed to encode response"})
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Flush()
}

// Stop closes the listener and every open connection, then waits for the
// connection goroutines to finish.
func (s *TCPServer) Stop() {
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
