package frames

// Class ids, fixed by the AMQP 0-9-1 specification.
const (
	ClassConnection uint16 = 10
	ClassChannel    uint16 = 20
	ClassExchange   uint16 = 40
	ClassQueue      uint16 = 50
	ClassBasic      uint16 = 60
	ClassConfirm    uint16 = 85
	ClassTx         uint16 = 90
)

// Method ids within each class.
const (
	methodConnectionStart          uint16 = 10
	methodConnectionStartOk        uint16 = 11
	methodConnectionSecure         uint16 = 20
	methodConnectionSecureOk       uint16 = 21
	methodConnectionTune           uint16 = 30
	methodConnectionTuneOk         uint16 = 31
	methodConnectionOpen           uint16 = 40
	methodConnectionOpenOk         uint16 = 41
	methodConnectionClose          uint16 = 50
	methodConnectionCloseOk        uint16 = 51
	methodConnectionBlocked        uint16 = 60
	methodConnectionUnblocked      uint16 = 61
	methodConnectionUpdateSecret   uint16 = 70
	methodConnectionUpdateSecretOk uint16 = 71

	methodChannelOpen    uint16 = 10
	methodChannelOpenOk  uint16 = 11
	methodChannelFlow    uint16 = 20
	methodChannelFlowOk  uint16 = 21
	methodChannelClose   uint16 = 40
	methodChannelCloseOk uint16 = 41

	methodExchangeDeclare   uint16 = 10
	methodExchangeDeclareOk uint16 = 11
	methodExchangeDelete    uint16 = 20
	methodExchangeDeleteOk  uint16 = 21
	methodExchangeBind      uint16 = 30
	methodExchangeBindOk    uint16 = 31
	methodExchangeUnbind    uint16 = 40
	methodExchangeUnbindOk  uint16 = 51

	methodQueueDeclare   uint16 = 10
	methodQueueDeclareOk uint16 = 11
	methodQueueBind      uint16 = 20
	methodQueueBindOk    uint16 = 21
	methodQueuePurge     uint16 = 30
	methodQueuePurgeOk   uint16 = 31
	methodQueueDelete    uint16 = 40
	methodQueueDeleteOk  uint16 = 41
	methodQueueUnbind    uint16 = 50
	methodQueueUnbindOk  uint16 = 51

	methodBasicQos          uint16 = 10
	methodBasicQosOk        uint16 = 11
	methodBasicConsume      uint16 = 20
	methodBasicConsumeOk    uint16 = 21
	methodBasicCancel       uint16 = 30
	methodBasicCancelOk     uint16 = 31
	methodBasicPublish      uint16 = 40
	methodBasicReturn       uint16 = 50
	methodBasicDeliver      uint16 = 60
	methodBasicGet          uint16 = 70
	methodBasicGetOk        uint16 = 71
	methodBasicGetEmpty     uint16 = 72
	methodBasicAck          uint16 = 80
	methodBasicReject       uint16 = 90
	methodBasicRecoverAsync uint16 = 100
	methodBasicRecover      uint16 = 110
	methodBasicRecoverOk    uint16 = 111
	methodBasicNack         uint16 = 120

	methodConfirmSelect   uint16 = 10
	methodConfirmSelectOk uint16 = 11

	methodTxSelect     uint16 = 10
	methodTxSelectOk   uint16 = 11
	methodTxCommit     uint16 = 20
	methodTxCommitOk   uint16 = 21
	methodTxRollback   uint16 = 30
	methodTxRollbackOk uint16 = 31
)
