package objectstore

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pull"
	"go.nanomsg.org/mangos/v3/protocol/push"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/cluso-rlbwt/pkg/pools"
)

// SocketTimeout bounds how long a socket stream waits for its peer.
var SocketTimeout = 30 * time.Second

// socketLinger is how long Close waits for queued messages to leave
// before closing the socket. mangos drops undelivered messages on close.
var socketLinger = 250 * time.Millisecond

// socketSchemes are the mangos transports accepted as stream URIs.
var socketSchemes = map[string]bool{"tcp": true, "ipc": true, "inproc": true, "ws": true}

// pushStream sends writes as push messages of up to one chunk. Close sends
// an empty message that ends the stream for the puller.
type pushStream struct {
	sock mangos.Socket
	buf  *pools.BufferBuilder
	addr string
}

func dialPush(addr string) (*pushStream, error) {
	sock, err := push.NewSocket()
	if err != nil {
		return nil, err
	}
	if err := sock.SetOption(mangos.OptionSendDeadline, SocketTimeout); err != nil {
		sock.Close()
		return nil, err
	}
	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &pushStream{sock: sock, buf: pools.NewBufferBuilder(pools.ChunkSize), addr: addr}, nil
}

func (s *pushStream) Write(p []byte) (int, error) {
	if s.buf == nil {
		return 0, errors.New("write to closed stream")
	}
	n := 0
	for len(p) > 0 {
		room := pools.ChunkSize - s.buf.Len()
		if room > len(p) {
			room = len(p)
		}
		s.buf.Write(p[:room])
		p = p[room:]
		n += room
		if s.buf.Len() == pools.ChunkSize {
			if err := s.send(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

func (s *pushStream) send() error {
	msg := append([]byte(nil), s.buf.Bytes()...)
	s.buf.Reset()
	if err := s.sock.Send(msg); err != nil {
		return fmt.Errorf("send %s: %w", s.addr, err)
	}
	return nil
}

func (s *pushStream) Close() error {
	if s.buf == nil {
		return nil
	}
	var err error
	if s.buf.Len() > 0 {
		err = s.send()
	}
	if err == nil {
		if serr := s.sock.Send([]byte{}); serr != nil {
			err = fmt.Errorf("send %s: %w", s.addr, serr)
		}
	}
	s.buf.Release()
	s.buf = nil
	if err == nil {
		time.Sleep(socketLinger)
	}
	if cerr := s.sock.Close(); err == nil {
		err = cerr
	}
	return err
}

// pullStream listens for a pusher and reads its messages until the empty
// end message.
type pullStream struct {
	sock mangos.Socket
	msg  []byte
	done bool
	addr string
}

func listenPull(addr string) (*pullStream, error) {
	sock, err := pull.NewSocket()
	if err != nil {
		return nil, err
	}
	if err := sock.SetOption(mangos.OptionRecvDeadline, SocketTimeout); err != nil {
		sock.Close()
		return nil, err
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return &pullStream{sock: sock, addr: addr}, nil
}

func (s *pullStream) Read(p []byte) (int, error) {
	for len(s.msg) == 0 {
		if s.done {
			return 0, io.EOF
		}
		msg, err := s.sock.Recv()
		if err != nil {
			return 0, fmt.Errorf("recv %s: %w", s.addr, err)
		}
		if len(msg) == 0 {
			s.done = true
			continue
		}
		s.msg = msg
	}
	n := copy(p, s.msg)
	s.msg = s.msg[n:]
	return n, nil
}

func (s *pullStream) Close() error {
	return s.sock.Close()
}
