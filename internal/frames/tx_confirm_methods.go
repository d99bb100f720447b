package frames

import "github.com/wirebroker/amqp/internal/buffer"

// ConfirmSelect puts the channel into publisher-confirm mode.
type ConfirmSelect struct {
	NoWait bool
}

func (ConfirmSelect) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConfirm, MethodID: methodConfirmSelect}
}
func (m ConfirmSelect) Marshal(w *buffer.Buffer) error {
	if m.NoWait {
		w.AppendUint8(1)
	} else {
		w.AppendUint8(0)
	}
	return nil
}
func (m *ConfirmSelect) Unmarshal(r *buffer.Buffer) error {
	b, err := r.ReadByte()
	m.NoWait = b != 0
	return err
}

// ConfirmSelectOk confirms ConfirmSelect.
type ConfirmSelectOk struct{}

func (ConfirmSelectOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassConfirm, MethodID: methodConfirmSelectOk}
}
func (ConfirmSelectOk) Marshal(*buffer.Buffer) error    { return nil }
func (*ConfirmSelectOk) Unmarshal(*buffer.Buffer) error { return nil }

// TxSelect puts the channel into transactional mode.
type TxSelect struct{}

func (TxSelect) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassTx, MethodID: methodTxSelect}
}
func (TxSelect) Marshal(*buffer.Buffer) error    { return nil }
func (*TxSelect) Unmarshal(*buffer.Buffer) error { return nil }

// TxSelectOk confirms TxSelect.
type TxSelectOk struct{}

func (TxSelectOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassTx, MethodID: methodTxSelectOk}
}
func (TxSelectOk) Marshal(*buffer.Buffer) error    { return nil }
func (*TxSelectOk) Unmarshal(*buffer.Buffer) error { return nil }

// TxCommit commits the current transaction.
type TxCommit struct{}

func (TxCommit) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassTx, MethodID: methodTxCommit}
}
func (TxCommit) Marshal(*buffer.Buffer) error    { return nil }
func (*TxCommit) Unmarshal(*buffer.Buffer) error { return nil }

// TxCommitOk confirms TxCommit.
type TxCommitOk struct{}

func (TxCommitOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassTx, MethodID: methodTxCommitOk}
}
func (TxCommitOk) Marshal(*buffer.Buffer) error    { return nil }
func (*TxCommitOk) Unmarshal(*buffer.Buffer) error { return nil }

// TxRollback rolls back the current transaction.
type TxRollback struct{}

func (TxRollback) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassTx, MethodID: methodTxRollback}
}
func (TxRollback) Marshal(*buffer.Buffer) error    { return nil }
func (*TxRollback) Unmarshal(*buffer.Buffer) error { return nil }

// TxRollbackOk confirms TxRollback.
type TxRollbackOk struct{}

func (TxRollbackOk) MethodHeader() MethodHeader {
	return MethodHeader{ClassID: ClassTx, MethodID: methodTxRollbackOk}
}
func (TxRollbackOk) Marshal(*buffer.Buffer) error    { return nil }
func (*TxRollbackOk) Unmarshal(*buffer.Buffer) error { return nil }
