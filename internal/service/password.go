package service

import (
	"crypto/hmac"
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a valid bcrypt hash that matches no real password. Login runs
// a compare against it when the user is missing or inactive so that the
// failure timing does not reveal which check failed.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// applyPepper applies HMAC-SHA256 using the pepper as the key.
func applyPepper(password, pepper string) []byte {
	h := hmac.New(sha256.New, []byte(pepper))
	h.Write([]byte(password))
	return h.Sum(nil)
}

// hashPassword generates a bcrypt hash of the password after applying the
// pepper. The cost is embedded in the hash string, so it can be raised later
// without a schema change.
func hashPassword(password, pepper string, cost int) (string, error) {
	pepperedPassword := applyPepper(password, pepper)
	bytes, err := bcrypt.GenerateFromPassword(pepperedPassword, cost)
	return string(bytes), err
}

// checkPasswordHash compares a plain text password (after applying pepper)
// with a stored hash. Returns false on any decoding error without exposing
// the failure mode.
func checkPasswordHash(password, hash, pepper string) bool {
	pepperedPassword := applyPepper(password, pepper)
	err := bcrypt.CompareHashAndPassword([]byte(hash), pepperedPassword)
	return err == nil
}
