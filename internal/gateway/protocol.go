// Package gateway is a thin binary TCP demo harness in front of the
// in-process engine and perp APIs. It carries no invariants of its own;
// it exists to exercise the core end to end, mirroring the teacher's
// internal/net wire protocol generalized from float64 to PriceScalar.
package gateway

import (
	"encoding/binary"
	"errors"
	"fmt"

	"heimdall/internal/pricescalar"
)

var (
	ErrInvalidMessageType = errors.New("gateway: invalid message type")
	ErrMessageTooShort    = errors.New("gateway: message too short")
)

// MessageType tags the opcode of an inbound client message.
type MessageType uint16

const (
	Heartbeat MessageType = iota
	NewOrder
	OracleUpdate
	LogBook
)

// ReportMessageType tags the opcode of an outbound server report.
type ReportMessageType uint8

const (
	ExecutionReport ReportMessageType = iota
	ErrorReport
)

// BaseMessageHeaderLen is the 2-byte opcode every inbound frame starts with.
const BaseMessageHeaderLen = 2

// Message is any parsed inbound frame.
type Message interface {
	Type() MessageType
}

// NewOrderMessage places a limit order: side (1 byte), then two
// length-prefixed decimal strings (price, then quantity). The order ID is
// assigned by the server, not supplied by the client.
type NewOrderMessage struct {
	Side     uint8
	Price    pricescalar.PriceScalar
	Quantity pricescalar.PriceScalar
}

func (NewOrderMessage) Type() MessageType { return NewOrder }

// OracleUpdateMessage feeds a new spot observation into the oracle feed.
type OracleUpdateMessage struct {
	SpotPrice pricescalar.PriceScalar
}

func (OracleUpdateMessage) Type() MessageType { return OracleUpdate }

// LogBookMessage requests a snapshot of book depth be logged server-side.
type LogBookMessage struct{}

func (LogBookMessage) Type() MessageType { return LogBook }

// ParseMessage decodes a single inbound frame (opcode plus body).
func ParseMessage(buf []byte) (Message, error) {
	if len(buf) < BaseMessageHeaderLen {
		return nil, ErrMessageTooShort
	}
	typeOf := MessageType(binary.BigEndian.Uint16(buf[0:2]))
	body := buf[2:]

	switch typeOf {
	case NewOrder:
		return parseNewOrder(body)
	case OracleUpdate:
		return parseOracleUpdate(body)
	case LogBook:
		return LogBookMessage{}, nil
	case Heartbeat:
		return nil, nil
	default:
		return nil, ErrInvalidMessageType
	}
}

func parseNewOrder(body []byte) (NewOrderMessage, error) {
	if len(body) < 1 {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	side := body[0]
	rest := body[1:]

	price, rest, err := readDecimalString(rest)
	if err != nil {
		return NewOrderMessage{}, err
	}
	qty, _, err := readDecimalString(rest)
	if err != nil {
		return NewOrderMessage{}, err
	}

	return NewOrderMessage{Side: side, Price: price, Quantity: qty}, nil
}

func parseOracleUpdate(body []byte) (OracleUpdateMessage, error) {
	spot, _, err := readDecimalString(body)
	if err != nil {
		return OracleUpdateMessage{}, err
	}
	return OracleUpdateMessage{SpotPrice: spot}, nil
}

// readDecimalString decodes a 2-byte big-endian length prefix followed by
// that many ASCII bytes of an exact decimal literal.
func readDecimalString(buf []byte) (pricescalar.PriceScalar, []byte, error) {
	if len(buf) < 2 {
		return pricescalar.Zero, nil, ErrMessageTooShort
	}
	n := int(binary.BigEndian.Uint16(buf[0:2]))
	buf = buf[2:]
	if len(buf) < n {
		return pricescalar.Zero, nil, ErrMessageTooShort
	}

	val, err := pricescalar.FromString(string(buf[:n]))
	if err != nil {
		return pricescalar.Zero, nil, fmt.Errorf("gateway: decode decimal: %w", err)
	}
	return val, buf[n:], nil
}

func writeDecimalString(buf []byte, v pricescalar.PriceScalar) []byte {
	s := v.String()
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(s)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, s...)
	return buf
}

// Report is an outbound execution or error notification.
type Report struct {
	Type         ReportMessageType
	OrderID      uint64
	Side         uint8
	Price        pricescalar.PriceScalar
	Quantity     pricescalar.PriceScalar
	Counterparty uint64
	Err          string
}

// Serialize encodes the report as opcode byte, order ID, side, price,
// quantity, counterparty ID, then a length-prefixed error string (empty on
// success).
func (r *Report) Serialize() []byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, byte(r.Type))

	var idBuf [8]byte
	binary.BigEndian.PutUint64(idBuf[:], r.OrderID)
	buf = append(buf, idBuf[:]...)

	buf = append(buf, r.Side)
	buf = writeDecimalString(buf, r.Price)
	buf = writeDecimalString(buf, r.Quantity)

	binary.BigEndian.PutUint64(idBuf[:], r.Counterparty)
	buf = append(buf, idBuf[:]...)

	var errLen [2]byte
	binary.BigEndian.PutUint16(errLen[:], uint16(len(r.Err)))
	buf = append(buf, errLen[:]...)
	buf = append(buf, r.Err...)

	return buf
}
