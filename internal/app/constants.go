package app

const (
	// RoomCodeLength is the number of characters in a session id.
	RoomCodeLength = 6
	// roomCodeAlphabet matches the base-36 codes handed out by the web client.
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// maxRoomCodeAttempts bounds retries on id collisions.
	maxRoomCodeAttempts = 16

	// anonymousPrefix is prepended to generated ids for requests without a token.
	anonymousPrefix = "player_"
)
