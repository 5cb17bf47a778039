package utils

import "golang.org/x/crypto/bcrypt"

// PasswordCost is bcrypt's default work factor (10).
const PasswordCost = bcrypt.DefaultCost

// MaxPasswordBytes is bcrypt's input limit; longer passwords are rejected, not truncated.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
