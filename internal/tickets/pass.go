// Package tickets renders the QR pass shown at the theatre entrance.
package tickets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"ms-booking/internal/models"

	"github.com/skip2/go-qrcode"
)

// PassSize is the edge length of the PNG in pixels.
const PassSize = 256

var ErrInvalidPass = errors.New("invalid booking pass")

// Pass is the payload carried, encrypted, inside the QR code.
type Pass struct {
	BookingID string   `json:"b"`
	UserID    string   `json:"u"`
	ShowID    string   `json:"s"`
	Date      string   `json:"d,omitempty"`
	Time      string   `json:"t,omitempty"`
	Seats     []string `json:"seats"`
}

type PassGenerator struct {
	secret []byte
}

func NewPassGenerator(secret string) *PassGenerator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &PassGenerator{secret: hashed[:]}
}

func PassFor(b *models.Booking) Pass {
	return Pass{
		BookingID: b.ID,
		UserID:    b.UserID,
		ShowID:    b.ShowID,
		Date:      b.ShowDate,
		Time:      b.ShowTime,
		Seats:     b.SeatIDs(),
	}
}

// Generate returns the booking's pass as a PNG QR code.
func (g *PassGenerator) Generate(b *models.Booking) ([]byte, error) {
	token, err := g.Token(PassFor(b))
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(token, qrcode.Medium, PassSize)
}

// Token is the string encoded in the QR code.
func (g *PassGenerator) Token(p Pass) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return encryptAES(data, g.secret)
}

// Open decrypts a scanned token.
func (g *PassGenerator) Open(token string) (*Pass, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil || len(raw) < aes.BlockSize {
		return nil, ErrInvalidPass
	}
	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return nil, err
	}

	iv, body := raw[:aes.BlockSize], raw[aes.BlockSize:]
	plain := make([]byte, len(body))
	cipher.NewCFBDecrypter(block, iv).XORKeyStream(plain, body)

	var p Pass
	if err := json.Unmarshal(plain, &p); err != nil || p.BookingID == "" {
		return nil, ErrInvalidPass
	}
	return &p, nil
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("pass cipher: %w", err)
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
