package frames

import (
	"time"

	"github.com/wirebroker/amqp/internal/buffer"
	"github.com/wirebroker/amqp/internal/encoding"
)

// property presence flags, high bit first, matching the AMQP 0-9-1
// basic-properties flag word (14 named properties in bits 15..2; bits 1
// and 0 stay clear).
const (
	flagContentType     = 1 << 15
	flagContentEncoding = 1 << 14
	flagHeaders         = 1 << 13
	flagDeliveryMode    = 1 << 12
	flagPriority        = 1 << 11
	flagCorrelationID   = 1 << 10
	flagReplyTo         = 1 << 9
	flagExpiration      = 1 << 8
	flagMessageID       = 1 << 7
	flagTimestamp       = 1 << 6
	flagType            = 1 << 5
	flagUserID          = 1 << 4
	flagAppID           = 1 << 3
	flagClusterID       = 1 << 2
)

// Properties are the basic-class content-header properties carried by
// Publish/Deliver/GetOk/Return content.
type Properties struct {
	ContentType     string
	ContentEncoding string
	Headers         encoding.Table
	DeliveryMode    uint8
	Priority        uint8
	CorrelationID   string
	ReplyTo         string
	Expiration      string
	MessageID       string
	Timestamp       time.Time
	Type            string
	UserID          string
	AppID           string
	ClusterID       string
}

// Marshal encodes the property-flags word followed by each present field,
// in declaration order, mirroring the generated-code style of the teacher's
// marshal(wr *buffer.Buffer) methods in types.go.
func (p Properties) Marshal(w *buffer.Buffer) error {
	var flags uint16
	if p.ContentType != "" {
		flags |= flagContentType
	}
	if p.ContentEncoding != "" {
		flags |= flagContentEncoding
	}
	if p.Headers != nil {
		flags |= flagHeaders
	}
	if p.DeliveryMode != 0 {
		flags |= flagDeliveryMode
	}
	if p.Priority != 0 {
		flags |= flagPriority
	}
	if p.CorrelationID != "" {
		flags |= flagCorrelationID
	}
	if p.ReplyTo != "" {
		flags |= flagReplyTo
	}
	if p.Expiration != "" {
		flags |= flagExpiration
	}
	if p.MessageID != "" {
		flags |= flagMessageID
	}
	if !p.Timestamp.IsZero() {
		flags |= flagTimestamp
	}
	if p.Type != "" {
		flags |= flagType
	}
	if p.UserID != "" {
		flags |= flagUserID
	}
	if p.AppID != "" {
		flags |= flagAppID
	}
	if p.ClusterID != "" {
		flags |= flagClusterID
	}

	w.AppendUint16(flags)

	if flags&flagContentType != 0 {
		if err := encoding.WriteShortString(w, p.ContentType); err != nil {
			return err
		}
	}
	if flags&flagContentEncoding != 0 {
		if err := encoding.WriteShortString(w, p.ContentEncoding); err != nil {
			return err
		}
	}
	if flags&flagHeaders != 0 {
		if err := encoding.WriteTable(w, p.Headers); err != nil {
			return err
		}
	}
	if flags&flagDeliveryMode != 0 {
		w.AppendUint8(p.DeliveryMode)
	}
	if flags&flagPriority != 0 {
		w.AppendUint8(p.Priority)
	}
	if flags&flagCorrelationID != 0 {
		if err := encoding.WriteShortString(w, p.CorrelationID); err != nil {
			return err
		}
	}
	if flags&flagReplyTo != 0 {
		if err := encoding.WriteShortString(w, p.ReplyTo); err != nil {
			return err
		}
	}
	if flags&flagExpiration != 0 {
		if err := encoding.WriteShortString(w, p.Expiration); err != nil {
			return err
		}
	}
	if flags&flagMessageID != 0 {
		if err := encoding.WriteShortString(w, p.MessageID); err != nil {
			return err
		}
	}
	if flags&flagTimestamp != 0 {
		encoding.WriteTimestamp(w, p.Timestamp)
	}
	if flags&flagType != 0 {
		if err := encoding.WriteShortString(w, p.Type); err != nil {
			return err
		}
	}
	if flags&flagUserID != 0 {
		if err := encoding.WriteShortString(w, p.UserID); err != nil {
			return err
		}
	}
	if flags&flagAppID != 0 {
		if err := encoding.WriteShortString(w, p.AppID); err != nil {
			return err
		}
	}
	if flags&flagClusterID != 0 {
		if err := encoding.WriteShortString(w, p.ClusterID); err != nil {
			return err
		}
	}
	return nil
}

// Unmarshal decodes the property-flags word and each present field.
func (p *Properties) Unmarshal(r *buffer.Buffer) error {
	flags, err := r.ReadUint16()
	if err != nil {
		return err
	}

	if flags&flagContentType != 0 {
		if p.ContentType, err = encoding.ReadShortString(r); err != nil {
			return err
		}
	}
	if flags&flagContentEncoding != 0 {
		if p.ContentEncoding, err = encoding.ReadShortString(r); err != nil {
			return err
		}
	}
	if flags&flagHeaders != 0 {
		if p.Headers, err = encoding.ReadTable(r); err != nil {
			return err
		}
	}
	if flags&flagDeliveryMode != 0 {
		if p.DeliveryMode, err = r.ReadByte(); err != nil {
			return err
		}
	}
	if flags&flagPriority != 0 {
		if p.Priority, err = r.ReadByte(); err != nil {
			return err
		}
	}
	if flags&flagCorrelationID != 0 {
		if p.CorrelationID, err = encoding.ReadShortString(r); err != nil {
			return err
		}
	}
	if flags&flagReplyTo != 0 {
		if p.ReplyTo, err = encoding.ReadShortString(r); err != nil {
			return err
		}
	}
	if flags&flagExpiration != 0 {
		if p.Expiration, err = encoding.ReadShortString(r); err != nil {
			return err
		}
	}
	if flags&flagMessageID != 0 {
		if p.MessageID, err = encoding.ReadShortString(r); err != nil {
			return err
		}
	}
	if flags&flagTimestamp != 0 {
		if p.Timestamp, err = encoding.ReadTimestamp(r); err != nil {
			return err
		}
	}
	if flags&flagType != 0 {
		if p.Type, err = encoding.ReadShortString(r); err != nil {
			return err
		}
	}
	if flags&flagUserID != 0 {
		if p.UserID, err = encoding.ReadShortString(r); err != nil {
			return err
		}
	}
	if flags&flagAppID != 0 {
		if p.AppID, err = encoding.ReadShortString(r); err != nil {
			return err
		}
	}
	if flags&flagClusterID != 0 {
		if p.ClusterID, err = encoding.ReadShortString(r); err != nil {
			return err
		}
	}
	return nil
}
