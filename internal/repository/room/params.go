package room

type CreateSessionParams struct {
	RoomId string
	Host   string
}

type SaveSessionParams struct {
	RoomId  string
	Session Session
}

type SetMemberStateParams struct {
	RoomId string
	UserId string
	State  MemberState
}

type GetMemberStatesParams struct {
	RoomId  string
	UserIds []string
}

type KeepAliveMembersParams struct {
	RoomId  string
	UserIds []string
}

type SetAuthTokenParams struct {
	UserId string
	Token  string
}
