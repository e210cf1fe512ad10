package conversation

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// ConversationID derives the stable conversation identifier for a user on a
// channel for one calendar day. Same (user, channel, day) always yields the
// same id; the id rolls over at the UTC day boundary. The digest only needs
// to be stable and low-collision, not cryptographic.
func ConversationID(userID, channelTag string, day time.Time) string {
	key := userID + "_" + channelTag + "_" + day.UTC().Format("20060102")
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}
