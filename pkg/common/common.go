package common

import (
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	"github.com/bwmarrin/snowflake"
	"golang.org/x/crypto/bcrypt"
)

const (
	ENABLED  = 1
	DISABLED = 0
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

func getSnowflakeNode() *snowflake.Node {
	snowflakeOnce.Do(func() {
		nodeID := int64(os.Getpid() % 1024)
		node, err := snowflake.NewNode(nodeID)
		if err != nil {
			node, _ = snowflake.NewNode(rand.Int63n(1023))
		}
		snowflakeNode = node
	})
	return snowflakeNode
}

// UUIDint64 returns a snowflake int64 id
func UUIDint64() int64 {
	return getSnowflakeNode().Generate().Int64()
}

// GenerateDocNo builds a document number like SO20260830123456:
// prefix + current date + the last 6 digits of a snowflake id.
func GenerateDocNo(prefix string) string {
	id := getSnowflakeNode().Generate().Int64()
	return fmt.Sprintf("%s%s%06d", prefix, time.Now().Format("20060102"), id%1000000)
}

// HashPassword hashes a plain password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a plain password against a bcrypt hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ParseDate parses a date string leniently and truncates it to the local day.
func ParseDate(value string) (time.Time, error) {
	t, err := dateparse.ParseIn(value, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
}

// Today returns the local midnight of the current day
func Today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

// EndOfDay returns 23:59:59 of the given day
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
