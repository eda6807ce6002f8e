package results

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"
)

// Topic prefixes every published message so subscribers can filter on it.
const Topic = "qos.record "

// PubSink publishes every record on an NNG pub socket as Topic followed by a
// JSON object keyed by the Header columns. Delivery is best effort: records
// sent while no subscriber is connected are dropped by the protocol.
type PubSink struct {
	sock mangos.Socket
}

// IsPubAddress reports whether dest names an NNG transport address.
func IsPubAddress(dest string) bool {
	for _, scheme := range []string{"tcp://", "ipc://", "inproc://", "ws://"} {
		if strings.HasPrefix(dest, scheme) {
			return true
		}
	}
	return false
}

// NewPubSink listens on addr.
func NewPubSink(addr string) (*PubSink, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("create pub socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return &PubSink{sock: sock}, nil
}

// EncodeMessage renders r as a published message.
func EncodeMessage(r Record) ([]byte, error) {
	row := r.Row()
	fields := make(map[string]string, len(Header)+1)
	for i, col := range Header {
		fields[col] = row[i]
	}
	if r.RunID != "" {
		fields["run_id"] = r.RunID
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return append([]byte(Topic), body...), nil
}

// DecodeMessage parses a message produced by EncodeMessage.
func DecodeMessage(msg []byte) (map[string]string, error) {
	body, ok := strings.CutPrefix(string(msg), Topic)
	if !ok {
		return nil, fmt.Errorf("message does not start with topic %q", Topic)
	}
	fields := make(map[string]string)
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Write publishes one record.
func (s *PubSink) Write(_ context.Context, r Record) error {
	msg, err := EncodeMessage(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := s.sock.Send(msg); err != nil {
		return fmt.Errorf("publish record: %w", err)
	}
	return nil
}

// Close closes the socket.
func (s *PubSink) Close() error {
	return s.sock.Close()
}
