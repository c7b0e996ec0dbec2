package domain

import "time"

// User is an account known to the service. Authentication happens upstream;
// this core only needs the identity row.
type User struct {
	ID          int64
	Username    string
	DisplayName string
	Bio         string
	CreatedAt   time.Time
}

// Follow is a directed edge in the social graph: Follower follows Following.
// The pair is unique; self-edges are rejected before any write.
type Follow struct {
	FollowerID  int64
	FollowingID int64
	CreatedAt   time.Time
}
