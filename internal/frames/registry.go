package frames

import "fmt"

// NewMethodBody returns a zero-valued, concrete MethodPayload for the given
// header so ReadFrame can unmarshal into it. An unrecognized (class,method)
// pair is a Serde-level error, not a framing error: the frame boundaries
// were well-formed, only the payload's meaning is unknown.
func NewMethodBody(h MethodHeader) (MethodPayload, error) {
	switch h.ClassID {
	case ClassConnection:
		switch h.MethodID {
		case methodConnectionStart:
			return &ConnectionStart{}, nil
		case methodConnectionStartOk:
			return &ConnectionStartOk{}, nil
		case methodConnectionSecure:
			return &ConnectionSecure{}, nil
		case methodConnectionSecureOk:
			return &ConnectionSecureOk{}, nil
		case methodConnectionTune:
			return &ConnectionTune{}, nil
		case methodConnectionTuneOk:
			return &ConnectionTuneOk{}, nil
		case methodConnectionOpen:
			return &ConnectionOpen{}, nil
		case methodConnectionOpenOk:
			return &ConnectionOpenOk{}, nil
		case methodConnectionClose:
			return &ConnectionClose{}, nil
		case methodConnectionCloseOk:
			return &ConnectionCloseOk{}, nil
		case methodConnectionBlocked:
			return &ConnectionBlocked{}, nil
		case methodConnectionUnblocked:
			return &ConnectionUnblocked{}, nil
		case methodConnectionUpdateSecret:
			return &ConnectionUpdateSecret{}, nil
		case methodConnectionUpdateSecretOk:
			return &ConnectionUpdateSecretOk{}, nil
		}
	case ClassChannel:
		switch h.MethodID {
		case methodChannelOpen:
			return &ChannelOpen{}, nil
		case methodChannelOpenOk:
			return &ChannelOpenOk{}, nil
		case methodChannelFlow:
			return &ChannelFlow{}, nil
		case methodChannelFlowOk:
			return &ChannelFlowOk{}, nil
		case methodChannelClose:
			return &ChannelClose{}, nil
		case methodChannelCloseOk:
			return &ChannelCloseOk{}, nil
		}
	case ClassExchange:
		switch h.MethodID {
		case methodExchangeDeclare:
			return &ExchangeDeclare{}, nil
		case methodExchangeDeclareOk:
			return &ExchangeDeclareOk{}, nil
		case methodExchangeDelete:
			return &ExchangeDelete{}, nil
		case methodExchangeDeleteOk:
			return &ExchangeDeleteOk{}, nil
		case methodExchangeBind:
			return &ExchangeBind{}, nil
		case methodExchangeBindOk:
			return &ExchangeBindOk{}, nil
		case methodExchangeUnbind:
			return &ExchangeUnbind{}, nil
		case methodExchangeUnbindOk:
			return &ExchangeUnbindOk{}, nil
		}
	case ClassQueue:
		switch h.MethodID {
		case methodQueueDeclare:
			return &QueueDeclare{}, nil
		case methodQueueDeclareOk:
			return &QueueDeclareOk{}, nil
		case methodQueueBind:
			return &QueueBind{}, nil
		case methodQueueBindOk:
			return &QueueBindOk{}, nil
		case methodQueuePurge:
			return &QueuePurge{}, nil
		case methodQueuePurgeOk:
			return &QueuePurgeOk{}, nil
		case methodQueueDelete:
			return &QueueDelete{}, nil
		case methodQueueDeleteOk:
			return &QueueDeleteOk{}, nil
		case methodQueueUnbind:
			return &QueueUnbind{}, nil
		case methodQueueUnbindOk:
			return &QueueUnbindOk{}, nil
		}
	case ClassBasic:
		switch h.MethodID {
		case methodBasicQos:
			return &BasicQos{}, nil
		case methodBasicQosOk:
			return &BasicQosOk{}, nil
		case methodBasicConsume:
			return &BasicConsume{}, nil
		case methodBasicConsumeOk:
			return &BasicConsumeOk{}, nil
		case methodBasicCancel:
			return &BasicCancel{}, nil
		case methodBasicCancelOk:
			return &BasicCancelOk{}, nil
		case methodBasicPublish:
			return &BasicPublish{}, nil
		case methodBasicReturn:
			return &BasicReturn{}, nil
		case methodBasicDeliver:
			return &BasicDeliver{}, nil
		case methodBasicGet:
			return &BasicGet{}, nil
		case methodBasicGetOk:
			return &BasicGetOk{}, nil
		case methodBasicGetEmpty:
			return &BasicGetEmpty{}, nil
		case methodBasicAck:
			return &BasicAck{}, nil
		case methodBasicReject:
			return &BasicReject{}, nil
		case methodBasicRecoverAsync:
			return &BasicRecoverAsync{}, nil
		case methodBasicRecover:
			return &BasicRecover{}, nil
		case methodBasicRecoverOk:
			return &BasicRecoverOk{}, nil
		case methodBasicNack:
			return &BasicNack{}, nil
		}
	case ClassConfirm:
		switch h.MethodID {
		case methodConfirmSelect:
			return &ConfirmSelect{}, nil
		case methodConfirmSelectOk:
			return &ConfirmSelectOk{}, nil
		}
	case ClassTx:
		switch h.MethodID {
		case methodTxSelect:
			return &TxSelect{}, nil
		case methodTxSelectOk:
			return &TxSelectOk{}, nil
		case methodTxCommit:
			return &TxCommit{}, nil
		case methodTxCommitOk:
			return &TxCommitOk{}, nil
		case methodTxRollback:
			return &TxRollback{}, nil
		case methodTxRollbackOk:
			return &TxRollbackOk{}, nil
		}
	}
	return nil, fmt.Errorf("frames: unknown method %s", h)
}
