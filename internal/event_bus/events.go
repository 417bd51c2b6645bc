package event_bus

const (
	// MemberJoinedEvent is published after a join flow completes, whether the
	// signup was free or paid.
	MemberJoinedEvent EventType = "member.joined"
)

type MemberJoined struct {
	EventId int
	UserId  int
	Paid    bool
}
