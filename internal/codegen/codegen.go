// Package codegen выдаёт короткие коды доступа, которые удобно набирать вручную.
package codegen

import (
	"crypto/rand"
	"strings"
)

const (
	// Length — фиксированная длина кода.
	Length = 5
	// Alphabet — канонический (верхний) регистр, цифры и латиница.
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// byte values >= rejectFrom are discarded to keep the distribution uniform over Alphabet
const rejectFrom = 256 - 256%len(Alphabet)

// Generator produces candidate codes. Uniqueness is checked by the store.
type Generator interface {
	Generate() string
}

// GeneratorFunc адаптер функции к Generator (используется в тестах для подстановки коллизий).
type GeneratorFunc func() string

func (f GeneratorFunc) Generate() string { return f() }

// Random — генератор на crypto/rand.
type Random struct{}

// NewRandom создаёт генератор кодов.
func NewRandom() Random { return Random{} }

// Generate возвращает Length символов из Alphabet.
func (Random) Generate() string {
	var sb strings.Builder
	sb.Grow(Length)
	buf := make([]byte, Length*2)
	for sb.Len() < Length {
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= rejectFrom {
				continue
			}
			sb.WriteByte(Alphabet[int(b)%len(Alphabet)])
			if sb.Len() == Length {
				break
			}
		}
	}
	return sb.String()
}

// Normalize приводит введённый пользователем код к каноническому виду.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code is already in canonical form.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(Alphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
