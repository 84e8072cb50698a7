// Package guirpctest runs an in-process fake core client speaking the GUI
// RPC framing, for socket-level tests of the session and fleet layers.
package guirpctest

import (
	"bufio"
	"crypto/md5"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/drakej/boinc-cluster/internal/guirpc"
)

const frameTerminator = byte(0x03)

// Server accepts GUI RPC connections and answers from a canned reply table.
// auth1/auth2/exchange_versions are handled built-in so the client handshake
// completes; everything else is looked up by command tag.
type Server struct {
	Password string

	listener net.Listener

	mu       sync.Mutex
	replies  map[string]string
	requests []string
	conns    []net.Conn
	closed   bool
}

// NewServer starts a server on an ephemeral loopback port.
func NewServer(password string) (*Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &Server{
		Password: password,
		listener: listener,
		replies:  make(map[string]string),
	}
	go s.acceptLoop()
	return s, nil
}

// Addr returns host and port to hand to a client.
func (s *Server) Addr() (string, int) {
	addr := s.listener.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

// Reply registers the canned reply fragment for one command tag.
func (s *Server) Reply(commandTag, replyFragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[commandTag] = replyFragment
}

// Requests returns every command element received so far, serialized as tag
// names with the raw request appended for mode commands.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// Close stops the listener and drops every live connection, so clients see
// a transport error on their next round-trip.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()

	_ = s.listener.Close()
	for _, conn := range conns {
		_ = conn.Close()
	}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)

	nonce := fmt.Sprintf("%d", len(s.Password)+1700000000)

	for {
		frame, err := reader.ReadBytes(frameTerminator)
		if err != nil {
			return
		}
		envelope, err := guirpc.ParseElement(frame[:len(frame)-1])
		if err != nil || len(envelope.Children) == 0 {
			s.send(conn, "<error>malformed request</error>")
			continue
		}
		request := envelope.Children[0]

		s.mu.Lock()
		s.requests = append(s.requests, request.Tag)
		canned, hasCanned := s.replies[request.Tag]
		s.mu.Unlock()

		switch {
		case request.Tag == "auth1":
			s.send(conn, fmt.Sprintf("<nonce>%s</nonce>", nonce))
		case request.Tag == "auth2":
			digest := ""
			if h := request.Find("nonce_hash"); h != nil {
				digest = strings.TrimSpace(h.Text)
			}
			expected := fmt.Sprintf("%x", md5.Sum([]byte(nonce+s.Password)))
			if digest == expected {
				s.send(conn, "<authorized/>")
			} else {
				s.send(conn, "<unauthorized/>")
			}
		case request.Tag == "exchange_versions":
			s.send(conn, "<server_version><major>7</major><minor>16</minor><release>20</release></server_version>")
		case hasCanned:
			s.send(conn, canned)
		default:
			s.send(conn, fmt.Sprintf("<unrecognized><request>%s</request></unrecognized>", request.Tag))
		}
	}
}

func (s *Server) send(conn net.Conn, fragment string) {
	fmt.Fprintf(conn, "<boinc_gui_rpc_reply>\n%s\n</boinc_gui_rpc_reply>\n%c", fragment, frameTerminator)
}
