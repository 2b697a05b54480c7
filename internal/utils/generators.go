package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// GenerateLockToken returns an unguessable hold token, e.g.
// lock_1760645700123_9f86d081884c7d659a2feaa0c55ad015.
func GenerateLockToken() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("lock_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}

func GenerateBookingID() string {
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("booking_%d_%06d", time.Now().UnixMilli(), randomNum.Int64())
}

func GenerateShowID() string {
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("show_%d_%06d", time.Now().Unix(), randomNum.Int64())
}

func GeneratePaymentID() string {
	return "pay_" + uuid.NewString()
}

func GenerateTransactionID() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999999))
	return fmt.Sprintf("txn_%d_%09d", timestamp, randomNum.Int64())
}
