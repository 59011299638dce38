package room

// QueueItem is a queued (or currently playing) video as stored, before any
// metadata is resolved. Nonce identifies this item instance for its whole
// life: queued, playing, gone.
type QueueItem struct {
	VideoId     string `json:"videoId"`
	RequestedBy string `json:"requestedBy"`
	Nonce       string `json:"nonce"`
}

type Setting struct {
	QueueLimit  int  `json:"queueLimit"`
	QueueLocked bool `json:"queueLocked"`
	QueueHidden bool `json:"queueHidden"`
	Random      bool `json:"random"`
}

func DefaultSetting() Setting {
	return Setting{
		QueueLimit:  100,
		QueueLocked: false,
		QueueHidden: false,
		Random:      false,
	}
}

// Session is the shared now-playing record for one room. Video is nil
// exactly when the room is idle. StartedAt is unix milliseconds.
type Session struct {
	Video     *QueueItem  `json:"video"`
	StartedAt int64       `json:"startedAt"`
	Queue     []QueueItem `json:"queue"`
	Host      string      `json:"host"`
	Setting   Setting     `json:"setting"`
}

// MemberState is a participant's ephemeral presence within a room. X and Y
// are normalized to [-1, 1].
type MemberState struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Rotate  bool    `json:"rotate"`
	Message string  `json:"message"`
}
