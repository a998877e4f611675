package domain

import (
	"fmt"
	"strings"
)

// RoomSeparator joins the two usernames of a room key. It is rejected in usernames.
const RoomSeparator = "#"

// RoomKey identifies the conversation between two users. Low <= High.
type RoomKey struct {
	Low  string
	High string
}

// CanonicalRoom derives the room of an unordered pair of users.
// CanonicalRoom(a, b) == CanonicalRoom(b, a) for every valid a, b.
func CanonicalRoom(userA, userB string) (RoomKey, error) {
	if err := checkRoomMember(userA); err != nil {
		return RoomKey{}, err
	}
	if err := checkRoomMember(userB); err != nil {
		return RoomKey{}, err
	}
	if userB < userA {
		userA, userB = userB, userA
	}
	return RoomKey{Low: userA, High: userB}, nil
}

func checkRoomMember(username string) error {
	if username == "" {
		return fmt.Errorf("%w: empty username", ErrInvalidUsername)
	}
	if strings.Contains(username, RoomSeparator) {
		return fmt.Errorf("%w: %q contains %q", ErrInvalidUsername, username, RoomSeparator)
	}
	return nil
}

func (k RoomKey) String() string {
	return k.Low + RoomSeparator + k.High
}

func (k RoomKey) IsZero() bool {
	return k.Low == "" && k.High == ""
}

// Has reports whether username is one of the two members.
func (k RoomKey) Has(username string) bool {
	return k.Low == username || k.High == username
}

// Peer returns the other member of the room.
func (k RoomKey) Peer(username string) string {
	if k.Low == username {
		return k.High
	}
	return k.Low
}

// ParseRoomKey is the inverse of RoomKey.String.
func ParseRoomKey(s string) (RoomKey, error) {
	low, high, ok := strings.Cut(s, RoomSeparator)
	if !ok || strings.Contains(high, RoomSeparator) {
		return RoomKey{}, fmt.Errorf("%w: malformed room key %q", ErrBadRequest, s)
	}
	key, err := CanonicalRoom(low, high)
	if err != nil {
		return RoomKey{}, err
	}
	if key.Low != low {
		return RoomKey{}, fmt.Errorf("%w: room key %q is not canonical", ErrBadRequest, s)
	}
	return key, nil
}

// MarshalText stores the key in its canonical string form.
func (k RoomKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *RoomKey) UnmarshalText(b []byte) error {
	key, err := ParseRoomKey(string(b))
	if err != nil {
		return err
	}
	*k = key
	return nil
}
