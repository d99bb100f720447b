package frames

import (
	"github.com/wirebroker/amqp/internal/buffer"
	"github.com/wirebroker/amqp/internal/encoding"
)

// ConnectionStart is sent by the server as the first frame after the
// protocol header handshake.
type ConnectionStart struct {
	VersionMajor     uint8
	VersionMinor     uint8
	ServerProperties encoding.Table
	Mechanisms       []byte // space-separated SASL mechanism names
	Locales          []byte // space-separated locale names
}

func (ConnectionStart) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConnection, MethodID: methodConnectionStart}
}

func (m ConnectionStart) Marshal(w *buffer.Buffer) error {
	w.AppendUint8(m.VersionMajor)
	w.AppendUint8(m.VersionMinor)
	if err := encoding.WriteTable(w, m.ServerProperties); err != nil {
		return err
	}
	if err := encoding.WriteLongString(w, m.Mechanisms); err != nil {
		return err
	}
	return encoding.WriteLongString(w, m.Locales)
}

func (m *ConnectionStart) Unmarshal(r *buffer.Buffer) (err error) {
	if m.VersionMajor, err = r.ReadByte(); err != nil {
		return err
	}
	if m.VersionMinor, err = r.ReadByte(); err != nil {
		return err
	}
	if m.ServerProperties, err = encoding.ReadTable(r); err != nil {
		return err
	}
	if m.Mechanisms, err = encoding.ReadLongString(r); err != nil {
		return err
	}
	m.Locales, err = encoding.ReadLongString(r)
	return err
}

// ConnectionStartOk is the client's SASL response to ConnectionStart.
type ConnectionStartOk struct {
	ClientProperties encoding.Table
	Mechanism        string
	Response         []byte
	Locale           string
}

func (ConnectionStartOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConnection, MethodID: methodConnectionStartOk}
}

func (m ConnectionStartOk) Marshal(w *buffer.Buffer) error {
	if err := encoding.WriteTable(w, m.ClientProperties); err != nil {
		return err
	}
	if err := encoding.WriteShortString(w, m.Mechanism); err != nil {
		return err
	}
	if err := encoding.WriteLongString(w, m.Response); err != nil {
		return err
	}
	return encoding.WriteShortString(w, m.Locale)
}

func (m *ConnectionStartOk) Unmarshal(r *buffer.Buffer) (err error) {
	if m.ClientProperties, err = encoding.ReadTable(r); err != nil {
		return err
	}
	if m.Mechanism, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.Response, err = encoding.ReadLongString(r); err != nil {
		return err
	}
	m.Locale, err = encoding.ReadShortString(r)
	return err
}

// ConnectionSecure challenges the client for additional security information.
type ConnectionSecure struct {
	Challenge []byte
}

func (ConnectionSecure) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConnection, MethodID: methodConnectionSecure}
}
func (m ConnectionSecure) Marshal(w *buffer.Buffer) error {
	return encoding.WriteLongString(w, m.Challenge)
}
func (m *ConnectionSecure) Unmarshal(r *buffer.Buffer) (err error) {
	m.Challenge, err = encoding.ReadLongString(r)
	return err
}

// ConnectionSecureOk answers a ConnectionSecure challenge.
type ConnectionSecureOk struct {
	Response []byte
}

func (ConnectionSecureOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConnection, MethodID: methodConnectionSecureOk}
}
func (m ConnectionSecureOk) Marshal(w *buffer.Buffer) error {
	return encoding.WriteLongString(w, m.Response)
}
func (m *ConnectionSecureOk) Unmarshal(r *buffer.Buffer) (err error) {
	m.Response, err = encoding.ReadLongString(r)
	return err
}

// ConnectionTune proposes channel-max/frame-max/heartbeat to the client.
type ConnectionTune struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (ConnectionTune) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConnection, MethodID: methodConnectionTune}
}
func (m ConnectionTune) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(m.ChannelMax)
	w.AppendUint32(m.FrameMax)
	w.AppendUint16(m.Heartbeat)
	return nil
}
func (m *ConnectionTune) Unmarshal(r *buffer.Buffer) (err error) {
	if m.ChannelMax, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.FrameMax, err = r.ReadUint32(); err != nil {
		return err
	}
	m.Heartbeat, err = r.ReadUint16()
	return err
}

// ConnectionTuneOk is the client's negotiated counter-proposal.
type ConnectionTuneOk struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (ConnectionTuneOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConnection, MethodID: methodConnectionTuneOk}
}
func (m ConnectionTuneOk) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(m.ChannelMax)
	w.AppendUint32(m.FrameMax)
	w.AppendUint16(m.Heartbeat)
	return nil
}
func (m *ConnectionTuneOk) Unmarshal(r *buffer.Buffer) (err error) {
	if m.ChannelMax, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.FrameMax, err = r.ReadUint32(); err != nil {
		return err
	}
	m.Heartbeat, err = r.ReadUint16()
	return err
}

// ConnectionOpen selects the virtual host.
type ConnectionOpen struct {
	VirtualHost string
}

func (ConnectionOpen) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConnection, MethodID: methodConnectionOpen}
}
func (m ConnectionOpen) Marshal(w *buffer.Buffer) error {
	if err := encoding.WriteShortString(w, m.VirtualHost); err != nil {
		return err
	}
	if err := encoding.WriteShortString(w, ""); err != nil { // reserved: capabilities
		return err
	}
	w.AppendUint8(0) // reserved: insist
	return nil
}
func (m *ConnectionOpen) Unmarshal(r *buffer.Buffer) (err error) {
	if m.VirtualHost, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if _, err = encoding.ReadShortString(r); err != nil { // reserved
		return err
	}
	_, err = r.ReadByte() // reserved
	return err
}

// ConnectionOpenOk confirms the virtual host selection.
type ConnectionOpenOk struct{}

func (ConnectionOpenOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConnection, MethodID: methodConnectionOpenOk}
}
func (ConnectionOpenOk) Marshal(w *buffer.Buffer) error {
	return encoding.WriteShortString(w, "") // reserved: known-hosts
}
func (m *ConnectionOpenOk) Unmarshal(r *buffer.Buffer) error {
	_, err := encoding.ReadShortString(r)
	return err
}

// ConnectionClose requests an orderly connection shutdown, carrying the
// reason code/text and, if the close was triggered by a failed method, the
// offending class/method id.
type ConnectionClose struct {
	ReplyCode uint16
	ReplyText string
	ClassID   uint16
	MethodID  uint16
}

func (ConnectionClose) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConnection, MethodID: methodConnectionClose}
}
func (m ConnectionClose) Marshal(w *buffer.Buffer) error {
	w.AppendUint16(m.ReplyCode)
	if err := encoding.WriteShortString(w, m.ReplyText); err != nil {
		return err
	}
	w.AppendUint16(m.ClassID)
	w.AppendUint16(m.MethodID)
	return nil
}
func (m *ConnectionClose) Unmarshal(r *buffer.Buffer) (err error) {
	if m.ReplyCode, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.ReplyText, err = encoding.ReadShortString(r); err != nil {
		return err
	}
	if m.ClassID, err = r.ReadUint16(); err != nil {
		return err
	}
	m.MethodID, err = r.ReadUint16()
	return err
}

// ConnectionCloseOk acknowledges a ConnectionClose.
type ConnectionCloseOk struct{}

func (ConnectionCloseOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConnection, MethodID: methodConnectionCloseOk}
}
func (ConnectionCloseOk) Marshal(*buffer.Buffer) error        { return nil }
func (*ConnectionCloseOk) Unmarshal(*buffer.Buffer) error     { return nil }

// ConnectionBlocked notifies the client that the broker has paused
// processing due to a resource alarm.
type ConnectionBlocked struct {
	Reason string
}

func (ConnectionBlocked) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConnection, MethodID: methodConnectionBlocked}
}
func (m ConnectionBlocked) Marshal(w *buffer.Buffer) error {
	return encoding.WriteShortString(w, m.Reason)
}
func (m *ConnectionBlocked) Unmarshal(r *buffer.Buffer) (err error) {
	m.Reason, err = encoding.ReadShortString(r)
	return err
}

// ConnectionUnblocked notifies the client that the resource alarm has cleared.
type ConnectionUnblocked struct{}

func (ConnectionUnblocked) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConnection, MethodID: methodConnectionUnblocked}
}
func (ConnectionUnblocked) Marshal(*buffer.Buffer) error    { return nil }
func (*ConnectionUnblocked) Unmarshal(*buffer.Buffer) error { return nil }

// ConnectionUpdateSecret lets a client refresh a credential (e.g. an OAuth2
// token) on a long-lived connection without reconnecting.
type ConnectionUpdateSecret struct {
	NewSecret []byte
	Reason    string
}

func (ConnectionUpdateSecret) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConnection, MethodID: methodConnectionUpdateSecret}
}
func (m ConnectionUpdateSecret) Marshal(w *buffer.Buffer) error {
	if err := encoding.WriteLongString(w, m.NewSecret); err != nil {
		return err
	}
	return encoding.WriteShortString(w, m.Reason)
}
func (m *ConnectionUpdateSecret) Unmarshal(r *buffer.Buffer) (err error) {
	if m.NewSecret, err = encoding.ReadLongString(r); err != nil {
		return err
	}
	m.Reason, err = encoding.ReadShortString(r)
	return err
}

// ConnectionUpdateSecretOk acknowledges ConnectionUpdateSecret.
type ConnectionUpdateSecretOk struct{}

func (ConnectionUpdateSecretOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConnection, MethodID: methodConnectionUpdateSecretOk}
}
func (ConnectionUpdateSecretOk) Marshal(*buffer.Buffer) error    { return nil }
func (*ConnectionUpdateSecretOk) Unmarshal(*buffer.Buffer) error { return nil }
