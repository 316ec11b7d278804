package nakama

// RPC ids registered with Nakama.
const (
	RpcCreateSession = "durak_create_session"
	RpcJoinSession   = "durak_join_session"
	RpcGetState      = "durak_get_state"
	RpcSubmitMove    = "durak_submit_move"
	RpcStartSession  = "durak_start_session"
)

// Notification codes for session events pushed to seated players.
const (
	NotifyPlayerJoined = 101
	NotifyGameStarted  = 103
	NotifyMovePlayed   = 105
	NotifyGameEnded    = 107
)

// gRPC status codes returned through runtime.NewError.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codePermissionDenied   = 7
	codeResourceExhausted  = 8
	codeFailedPrecondition = 9
	codeInternal           = 13
)
