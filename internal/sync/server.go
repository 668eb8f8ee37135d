package sync

import (
	"bufio"
	"errors"
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"mangapages/internal/logging"
)

// Server accepts line-oriented TCP subscribers for the hub.
type Server struct {
	Addr string
	Hub  *Hub

	log *logrus.Entry

	mu sync.Mutex
	ln net.Listener
}

func NewServer(addr string, hub *Hub, logger logrus.FieldLogger) *Server {
	return &Server{Addr: addr, Hub: hub, log: logging.Component(logger, "tcp-sync")}
}

func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts on ln until Close is called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.log.Infof("listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			continue
		}

		s.Hub.Add(conn)
		s.log.WithField("remote", conn.RemoteAddr().String()).Info("client connected")

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				s.log.WithField("remote", c.RemoteAddr().String()).Info("client disconnected")
			}()

			// clients never send anything meaningful; drain until EOF
			sc := bufio.NewScanner(c)
			for sc.Scan() {
			}
		}(conn)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}
