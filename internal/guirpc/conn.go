package guirpc

import (
	"bufio"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// The GUI RPC stream frames each request and reply as a single well-formed
// element wrapped in a fixed envelope and terminated by an ETX byte.
const (
	requestEnvelope = "<boinc_gui_rpc_request>\n%s\n</boinc_gui_rpc_request>\n\x03"
	replyRootTag    = "boinc_gui_rpc_reply"
	frameTerminator = byte(0x03)
)

// conn is the framed stream to one core client. The protocol does not
// support pipelining, so a mutex serializes round-trips.
type conn struct {
	mu     sync.Mutex
	sock   net.Conn
	reader *bufio.Reader
}

func dial(host string, port int, timeout time.Duration) (*conn, error) {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	sock, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", addr)
	}
	return &conn{
		sock:   sock,
		reader: bufio.NewReader(sock),
	}, nil
}

// call performs one synchronous round-trip: write the command element, read
// one complete reply frame, and return the first child of the reply
// envelope. Transport errors leave the connection unusable.
func (c *conn) call(request string) (*Element, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sock == nil {
		return nil, errors.New("connection is closed")
	}

	_, err := fmt.Fprintf(c.sock, requestEnvelope, request)
	if err != nil {
		return nil, errors.Wrap(err, "failed to write request")
	}

	frame, err := c.reader.ReadBytes(frameTerminator)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read reply")
	}
	frame = frame[:len(frame)-1]

	envelope, err := ParseElement(frame)
	if err != nil {
		return nil, err
	}
	if envelope.Tag != replyRootTag {
		return nil, &MalformedPayloadError{Err: fmt.Errorf("unexpected reply root <%s>", envelope.Tag)}
	}

	for _, child := range envelope.Children {
		return child, nil
	}
	return nil, &MalformedPayloadError{Err: fmt.Errorf("empty reply envelope")}
}

func (c *conn) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sock == nil {
		return nil
	}
	err := c.sock.Close()
	c.sock = nil
	return err
}
