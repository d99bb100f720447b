package frames

// IsContentBearing reports whether a method heads a content group: it is
// followed on the same channel by exactly one ContentHeader and zero-or-more
// ContentBody frames (spec.md §3 invariant).
func IsContentBearing(h MethodHeader) bool {
	if h.ClassID != ClassBasic {
		return false
	}
	switch h.MethodID {
	case methodBasicDeliver, methodBasicGetOk, methodBasicReturn:
		return true
	default:
		return false
	}
}

// IsConnectionControl reports whether a method is handled directly by the
// reader's connection-control branch rather than forwarded to a responder
// or dispatcher.
func IsConnectionControl(h MethodHeader) bool {
	if h.ClassID != ClassConnection {
		return false
	}
	switch h.MethodID {
	case methodConnectionClose, methodConnectionCloseOk, methodConnectionBlocked, methodConnectionUnblocked:
		return true
	default:
		return false
	}
}

// IsChannelControl reports whether a method is handled directly by the
// reader's channel-control branch.
func IsChannelControl(h MethodHeader) bool {
	return h.ClassID == ClassChannel && (h.MethodID == methodChannelClose || h.MethodID == methodChannelCloseOk)
}

// IsPublisherConfirm reports whether a method is a server-sent publisher
// confirm (Basic.Ack/Basic.Nack sent on a confirm-mode channel), routed to a
// first-class user callback rather than the responder registry since it is
// never a reply to a specific client request.
func IsPublisherConfirm(h MethodHeader) bool {
	return h.ClassID == ClassBasic && (h.MethodID == methodBasicAck || h.MethodID == methodBasicNack)
}

// IsServerAsyncRequest reports whether a method is a server-initiated,
// mid-connection request outside the normal reply-correlation flow. These
// are routed to first-class user callbacks (spec.md §9 open question)
// rather than being treated as protocol violations.
func IsServerAsyncRequest(h MethodHeader) bool {
	switch {
	case h.ClassID == ClassChannel && h.MethodID == methodChannelFlow:
		return true
	case h.ClassID == ClassBasic && h.MethodID == methodBasicRecoverAsync:
		return true
	default:
		return false
	}
}

// IsReplyMethod reports whether a method is a reply a caller correlates
// against a responder registered for it (a *Ok, or Basic.GetEmpty answering
// Basic.Get) rather than a server-initiated request. A reply that arrives
// with no responder waiting is stale or superfluous and gets logged and
// dropped (spec.md §4.4 item 4); anything else unrecognized is a protocol
// violation (item 5).
func IsReplyMethod(h MethodHeader) bool {
	switch h.ClassID {
	case ClassConnection:
		switch h.MethodID {
		case methodConnectionStartOk, methodConnectionSecureOk, methodConnectionTuneOk,
			methodConnectionOpenOk, methodConnectionCloseOk, methodConnectionUpdateSecretOk:
			return true
		}
	case ClassChannel:
		switch h.MethodID {
		case methodChannelOpenOk, methodChannelFlowOk, methodChannelCloseOk:
			return true
		}
	case ClassExchange:
		switch h.MethodID {
		case methodExchangeDeclareOk, methodExchangeDeleteOk, methodExchangeBindOk, methodExchangeUnbindOk:
			return true
		}
	case ClassQueue:
		switch h.MethodID {
		case methodQueueDeclareOk, methodQueueBindOk, methodQueuePurgeOk, methodQueueDeleteOk, methodQueueUnbindOk:
			return true
		}
	case ClassBasic:
		switch h.MethodID {
		case methodBasicQosOk, methodBasicConsumeOk, methodBasicCancelOk, methodBasicGetOk,
			methodBasicGetEmpty, methodBasicRecoverOk:
			return true
		}
	case ClassConfirm:
		if h.MethodID == methodConfirmSelectOk {
			return true
		}
	case ClassTx:
		switch h.MethodID {
		case methodTxSelectOk, methodTxCommitOk, methodTxRollbackOk:
			return true
		}
	}
	return false
}
